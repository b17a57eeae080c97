package uploader

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Limits caps per-slot file sizes. Zero fields fall back to the defaults
// used by the server.
type Limits struct {
	MaxIconBytes      int64
	MaxThumbnailBytes int64
	MaxPreviewBytes   int64
	MaxArchiveBytes   int64
}

// DefaultLimits mirrors the server-side caps.
func DefaultLimits() Limits {
	return Limits{
		MaxIconBytes:      1 << 20,
		MaxThumbnailBytes: 5 << 20,
		MaxPreviewBytes:   20 << 20,
		MaxArchiveBytes:   100 << 20,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxIconBytes <= 0 {
		l.MaxIconBytes = d.MaxIconBytes
	}
	if l.MaxThumbnailBytes <= 0 {
		l.MaxThumbnailBytes = d.MaxThumbnailBytes
	}
	if l.MaxPreviewBytes <= 0 {
		l.MaxPreviewBytes = d.MaxPreviewBytes
	}
	if l.MaxArchiveBytes <= 0 {
		l.MaxArchiveBytes = d.MaxArchiveBytes
	}
	return l
}

type slotRule struct {
	maxBytes   int64
	extensions []string
	mimeTypes  []string
	label      string
}

func slotRules(l Limits) map[Slot]slotRule {
	l = l.withDefaults()
	return map[Slot]slotRule{
		SlotThumbnail: {
			maxBytes:   l.MaxThumbnailBytes,
			extensions: []string{".png", ".jpg", ".jpeg", ".webp"},
			mimeTypes:  []string{"image/png", "image/jpeg", "image/webp"},
			label:      "thumbnail",
		},
		SlotIcon: {
			maxBytes:   l.MaxIconBytes,
			extensions: []string{".png", ".jpg", ".jpeg", ".webp"},
			mimeTypes:  []string{"image/png", "image/jpeg", "image/webp"},
			label:      "icon",
		},
		SlotPreview: {
			maxBytes:   l.MaxPreviewBytes,
			extensions: []string{".gif", ".webm"},
			mimeTypes:  []string{"image/gif", "video/webm"},
			label:      "preview",
		},
		SlotArchive: {
			maxBytes:   l.MaxArchiveBytes,
			extensions: []string{".zip"},
			mimeTypes:  []string{"application/zip", "application/x-zip-compressed"},
			label:      "game archive",
		},
	}
}

var validSizes = map[string]bool{"small": true, "medium": true, "large": true}

// ValidateMetadata checks the form fields. Every rule is evaluated so the
// returned map names all problems at once; an empty map means valid.
func ValidateMetadata(m Metadata) map[string]string {
	fields := map[string]string{}
	if len(strings.TrimSpace(m.Name)) < 2 {
		fields["name"] = "name must be at least 2 characters"
	}
	if len(strings.TrimSpace(m.Description)) < 10 {
		fields["description"] = "description must be at least 10 characters"
	}
	hasCategory := false
	for _, c := range m.Categories {
		if strings.TrimSpace(c) != "" {
			hasCategory = true
			break
		}
	}
	if !hasCategory {
		fields["categories"] = "at least one category is required"
	}
	if !validSizes[m.Size] {
		fields["size"] = "size must be one of small, medium, large"
	}
	return fields
}

// CheckFile validates a single file against its slot's rule. Size is checked
// before type so an oversized file of the wrong type reports the size.
func CheckFile(slot Slot, file *File, limits Limits) error {
	rule, ok := slotRules(limits)[slot]
	if !ok {
		return fmt.Errorf("unknown slot %q", slot)
	}
	if file.Size > rule.maxBytes {
		return fmt.Errorf("%s must not exceed %d bytes", rule.label, rule.maxBytes)
	}
	ext := strings.ToLower(filepath.Ext(file.Name))
	for _, allowed := range rule.extensions {
		if ext == allowed {
			return nil
		}
	}
	for _, allowed := range rule.mimeTypes {
		if strings.EqualFold(file.ContentType, allowed) {
			return nil
		}
	}
	return fmt.Errorf("%s has an unsupported file type", rule.label)
}

// ValidateFiles checks every assigned file. Slots keyed in the returned map
// use the slot name so callers can show errors next to the right picker.
func ValidateFiles(d *Draft, limits Limits) map[string]string {
	fields := map[string]string{}
	for _, slot := range Slots {
		file := d.Files[slot]
		if file == nil {
			continue
		}
		if err := CheckFile(slot, file, limits); err != nil {
			fields[string(slot)] = err.Error()
		}
	}
	return fields
}

// ValidateDraft runs the full pre-submit check: metadata rules, per-slot
// file rules, and, for a create flow, presence of all four assets. Edits may
// leave slots empty to keep the stored binaries.
func ValidateDraft(d *Draft, limits Limits) map[string]string {
	fields := ValidateMetadata(d.Metadata)
	for k, v := range ValidateFiles(d, limits) {
		fields[k] = v
	}
	if !d.IsEdit() {
		for _, slot := range Slots {
			if d.Files[slot] != nil {
				continue
			}
			if _, ok := d.Staged[slot]; ok {
				continue
			}
			if _, taken := fields[string(slot)]; !taken {
				fields[string(slot)] = slotRules(limits)[slot].label + " is required"
			}
		}
	}
	return fields
}
