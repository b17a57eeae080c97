package game

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/adilzhan/gameportal/internal/config"
)

// SlotConstraints defines the validation rules for one upload slot.
type SlotConstraints struct {
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxBytes          int64
}

// SlotRules builds the per-slot constraint table from configured ceilings.
func SlotRules(cfg config.UploadConfig) map[Slot]SlotConstraints {
	imageTypes := map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/webp": true,
	}
	imageExts := map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
	}

	return map[Slot]SlotConstraints{
		SlotThumbnail: {
			AllowedMimeTypes:  imageTypes,
			AllowedExtensions: imageExts,
			MaxBytes:          cfg.MaxThumbnailBytes,
		},
		SlotIcon: {
			AllowedMimeTypes:  imageTypes,
			AllowedExtensions: imageExts,
			MaxBytes:          cfg.MaxIconBytes,
		},
		SlotPreview: {
			AllowedMimeTypes: map[string]bool{
				"image/gif":  true,
				"video/webm": true,
			},
			AllowedExtensions: map[string]bool{
				".gif":  true,
				".webm": true,
			},
			MaxBytes: cfg.MaxPreviewBytes,
		},
		SlotArchive: {
			AllowedMimeTypes: map[string]bool{
				"application/zip":              true,
				"application/x-zip-compressed": true,
				"application/octet-stream":     true,
			},
			AllowedExtensions: map[string]bool{
				".zip": true,
			},
			MaxBytes: cfg.MaxArchiveBytes,
		},
	}
}

// CheckFile validates one uploaded file against its slot's constraints.
func (sc SlotConstraints) CheckFile(header *multipart.FileHeader) error {
	if sc.MaxBytes > 0 && header.Size > sc.MaxBytes {
		return ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if sc.AllowedExtensions[ext] {
		return nil
	}

	contentType := header.Header.Get("Content-Type")
	if mediaType := strings.TrimSpace(strings.Split(contentType, ";")[0]); sc.AllowedMimeTypes[mediaType] {
		return nil
	}

	return ErrUnsupportedFileType
}

// MetadataInput carries the game fields supplied by the submission form.
type MetadataInput struct {
	Name          string
	Description   string
	Categories    []string
	Size          Size
	ThumbnailPath string
	IconPath      string
	PreviewPath   string
	PlayPath      string
	Active        *bool
}

// ValidateMetadata checks the portal's field rules. Every rule is evaluated
// so the caller gets all problems at once; an empty map means valid.
// requireAssets is set on create, where all four asset paths must be present.
func ValidateMetadata(input MetadataInput, requireAssets bool) map[string]string {
	problems := map[string]string{}

	if len(strings.TrimSpace(input.Name)) < 2 {
		problems["name"] = "name must be at least 2 characters"
	}
	if len(strings.TrimSpace(input.Description)) < 10 {
		problems["description"] = "description must be at least 10 characters"
	}
	if len(NormalizeCategories(input.Categories)) == 0 {
		problems["categories"] = "at least one category is required"
	}
	if !input.Size.Valid() {
		problems["size"] = "size must be one of small, medium, large"
	}

	if requireAssets {
		assets := map[string]string{
			"thumbnail": input.ThumbnailPath,
			"icon":      input.IconPath,
			"gif":       input.PreviewPath,
			"htmlZip":   input.PlayPath,
		}
		for field, path := range assets {
			if strings.TrimSpace(path) == "" {
				problems[field] = field + " asset is required"
			}
		}
	}

	return problems
}

// NormalizeCategories trims entries, drops blanks, and removes duplicates
// while preserving order. Legacy records carrying a single value arrive here
// as a one-element slice and pass through unchanged.
func NormalizeCategories(categories []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
