package assetpath

import (
	"strings"
	"testing"
)

func TestResolveEmptyPathReturnsPlaceholder(t *testing.T) {
	r := NewResolver("https://cdn.example.com")

	got := r.Resolve("", AssetThumbnail, "/placeholder.png")
	if got != "/placeholder.png" {
		t.Fatalf("expected placeholder, got %q", got)
	}
	got = r.Resolve("   ", AssetGame, "fallback")
	if got != "fallback" {
		t.Fatalf("expected placeholder for blank path, got %q", got)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	r := NewResolver("https://cdn.example.com")

	first := r.Resolve("thumbs/space race.png", AssetThumbnail, "")
	second := r.Resolve(first, AssetThumbnail, "")
	if first != second {
		t.Fatalf("resolving twice changed the URL: %q vs %q", first, second)
	}
}

func TestResolveNoDoublePrefix(t *testing.T) {
	r := NewResolver("https://cdn.example.com")

	cases := []struct {
		path string
		typ  AssetType
	}{
		{"public/thumbnail/shot.png", AssetThumbnail},
		{"/public/gif/preview.gif", AssetGIF},
		{"public/games/runner/index.html", AssetGame},
		{"public/banner.png", AssetImage},
	}
	for _, tc := range cases {
		got := r.Resolve(tc.path, tc.typ, "")
		prefix := tc.typ.Prefix()
		if n := strings.Count(got, prefix); n != 1 {
			t.Fatalf("Resolve(%q, %s) = %q: prefix %q occurs %d times", tc.path, tc.typ, got, prefix, n)
		}
	}
}

func TestResolveRedundantPublicPrefixStripped(t *testing.T) {
	r := NewResolver("https://cdn.example.com")

	got := r.Resolve("public/shot.png", AssetThumbnail, "")
	want := "https://cdn.example.com/public/thumbnail/shot.png"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestResolveEncodesSegmentsIndependently(t *testing.T) {
	r := NewResolver("https://cdn.example.com")

	got := r.Resolve("folder name/file (1).png", AssetImage, "")
	want := "https://cdn.example.com/public/folder%20name/file%20%281%29.png"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestStoragePath(t *testing.T) {
	cases := []struct {
		typ  AssetType
		path string
		want string
	}{
		{AssetThumbnail, "shot.png", "public/thumbnail/shot.png"},
		{AssetThumbnail, "/public/shot.png", "public/thumbnail/shot.png"},
		{AssetThumbnail, "public/thumbnail/shot.png", "public/thumbnail/shot.png"},
		{AssetGame, "runner/index.html", "public/games/runner/index.html"},
		{AssetIcon, "icon.png", "public/icon.png"},
	}
	for _, tc := range cases {
		if got := StoragePath(tc.typ, tc.path); got != tc.want {
			t.Fatalf("StoragePath(%s, %q) = %q, want %q", tc.typ, tc.path, got, tc.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Zombie Run 2!":        "zombie-run-2",
		"Space Race":           "space-race",
		"  --Hello  World--  ": "hello-world",
		"ALLCAPS":              "allcaps",
	}
	for name, want := range cases {
		if got := Slugify(name); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestPlayFolder(t *testing.T) {
	cases := map[string]string{
		"Space-Shooter.ZIP": "Space-Shooter",
		"runner.zip":        "runner",
		"bundle.tar":        "bundle.tar",
		"archive.zip.zip":   "archive.zip",
	}
	for in, want := range cases {
		if got := PlayFolder(in); got != want {
			t.Fatalf("PlayFolder(%q) = %q, want %q", in, got, want)
		}
	}
}
