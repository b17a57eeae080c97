package uploader

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func memFile(name, contentType string, size int64) *File {
	return &File{
		Name:        name,
		ContentType: contentType,
		Size:        size,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader([]byte(name))), nil
		},
	}
}

func validDraft() *Draft {
	d := NewDraft()
	d.Metadata = Metadata{
		Name:        "Space Race",
		Description: "An endless arcade racer through the asteroid belt.",
		Categories:  []string{"Arcade"},
		Size:        "medium",
	}
	d.SetFile(SlotThumbnail, memFile("thumb.png", "image/png", 4096))
	d.SetFile(SlotIcon, memFile("icon.png", "image/png", 512))
	d.SetFile(SlotPreview, memFile("preview.gif", "image/gif", 8192))
	d.SetFile(SlotArchive, memFile("Space-Shooter.zip", "application/zip", 1<<16))
	return d
}

func TestValidateDraftHappyPath(t *testing.T) {
	fields := ValidateDraft(validDraft(), Limits{})
	require.Empty(t, fields)
}

func TestValidateDraftReportsEveryProblem(t *testing.T) {
	d := NewDraft()
	d.Metadata = Metadata{
		Name:        "x",
		Description: "short",
		Categories:  []string{"  "},
		Size:        "huge",
	}
	d.SetFile(SlotIcon, memFile("icon.png", "image/png", 2<<20))
	d.SetFile(SlotPreview, memFile("preview.txt", "text/plain", 100))

	fields := ValidateDraft(d, Limits{})

	for _, key := range []string{"name", "description", "categories", "size", "thumbnail", "icon", "gif", "htmlZip"} {
		require.Contains(t, fields, key)
	}
	require.Contains(t, fields["icon"], "exceed")
	require.Contains(t, fields["gif"], "unsupported")
	require.Contains(t, fields["htmlZip"], "required")
}

func TestValidateDraftEditAllowsMissingFiles(t *testing.T) {
	d := NewEditDraft("8d3f6f0a-8f8a-4c4e-9a61-52f1f1a3b001")
	d.Metadata = validDraft().Metadata

	require.Empty(t, ValidateDraft(d, Limits{}))
}

func TestCheckFileSizeBeforeType(t *testing.T) {
	// An oversized file of the wrong type reports the size problem.
	err := CheckFile(SlotIcon, memFile("icon.bmp", "image/bmp", 3<<20), Limits{})
	require.ErrorContains(t, err, "exceed")
}

func TestCheckFileAcceptsByContentType(t *testing.T) {
	// No usable extension, but the declared type is allowed.
	err := CheckFile(SlotPreview, memFile("preview", "video/webm", 1024), Limits{})
	require.NoError(t, err)
}

func TestCheckFileCustomArchiveLimit(t *testing.T) {
	limits := Limits{MaxArchiveBytes: 1024}
	err := CheckFile(SlotArchive, memFile("big.zip", "application/zip", 2048), limits)
	require.ErrorContains(t, err, "1024")
}

func TestSetFileInvalidatesStagedPath(t *testing.T) {
	d := validDraft()
	d.Staged[SlotIcon] = StagedAsset{Path: "public/old-icon.png", OriginalName: "old.png"}

	d.SetFile(SlotIcon, memFile("new-icon.png", "image/png", 256))

	_, ok := d.Staged[SlotIcon]
	require.False(t, ok)
}
