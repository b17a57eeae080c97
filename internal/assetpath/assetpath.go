// Package assetpath maps stored asset paths to their canonical storage
// locations and fully qualified CDN URLs. Everything here is pure string
// manipulation; no I/O.
package assetpath

import (
	"net/url"
	"regexp"
	"strings"
)

// AssetType tags a path with the kind of asset it points at, which decides
// the canonical sub-path it lives under.
type AssetType string

const (
	AssetThumbnail AssetType = "thumbnail"
	AssetIcon      AssetType = "icon"
	AssetGIF       AssetType = "gif"
	AssetGame      AssetType = "game"
	AssetImage     AssetType = "image"
)

const publicPrefix = "public/"

// Prefix returns the canonical sub-path assets of this type are stored
// under. Icons and generic images share the bare public/ root.
func (t AssetType) Prefix() string {
	switch t {
	case AssetThumbnail:
		return "public/thumbnail/"
	case AssetGIF:
		return "public/gif/"
	case AssetGame:
		return "public/games/"
	default:
		return publicPrefix
	}
}

// Resolver builds CDN URLs from stored asset paths. The base URL is injected
// at construction so callers can point it at a fake origin in tests.
type Resolver struct {
	baseURL string
}

// NewResolver constructs a Resolver rooted at the given CDN base URL.
func NewResolver(baseURL string) *Resolver {
	return &Resolver{baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Resolve turns a stored path into a fully qualified CDN URL.
//
// An empty path yields the caller-supplied placeholder. A path that is
// already an absolute http(s) URL is returned unchanged, so the function is
// idempotent. Otherwise the path is normalized onto the canonical sub-path
// for its type and each segment is percent-encoded independently.
func (r *Resolver) Resolve(path string, assetType AssetType, placeholder string) string {
	if strings.TrimSpace(path) == "" {
		return placeholder
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	normalized := StoragePath(assetType, path)
	return r.baseURL + "/" + encodeSegments(normalized)
}

// StoragePath normalizes a relative path onto the canonical sub-path for the
// asset type without qualifying it with the CDN origin. This is the form
// persisted in game records.
func StoragePath(assetType AssetType, path string) string {
	p := strings.TrimPrefix(path, "/")
	prefix := assetType.Prefix()
	if strings.HasPrefix(p, prefix) {
		return p
	}
	p = strings.TrimPrefix(p, publicPrefix)
	return prefix + p
}

func encodeSegments(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a display name: lower-case, runs of
// anything outside [a-z0-9] collapse to a single hyphen, hyphens trimmed
// from both ends.
func Slugify(name string) string {
	slug := nonSlug.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// PlayFolder derives the serving folder for an uploaded game archive from
// the archive's original filename, stripping a .zip suffix case-insensitively.
func PlayFolder(archiveName string) string {
	if len(archiveName) >= 4 && strings.EqualFold(archiveName[len(archiveName)-4:], ".zip") {
		return archiveName[:len(archiveName)-4]
	}
	return archiveName
}
