package game

import (
	"time"

	"github.com/google/uuid"
)

// Size buckets games for the catalog grid.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Valid reports whether the size is one of the three known buckets.
func (s Size) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

// Slot names one of the four upload positions in a game submission.
type Slot string

const (
	SlotThumbnail Slot = "thumbnail"
	SlotIcon      Slot = "icon"
	SlotPreview   Slot = "gif"
	SlotArchive   Slot = "htmlZip"
)

// Slots lists every slot in a stable order.
var Slots = []Slot{SlotThumbnail, SlotIcon, SlotPreview, SlotArchive}

// Game is a published game record.
type Game struct {
	ID            uuid.UUID `json:"id"`
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Categories    []string  `json:"categories"`
	Size          Size      `json:"size"`
	ThumbnailPath string    `json:"thumbnail_path"`
	IconPath      string    `json:"icon_path"`
	PreviewPath   string    `json:"preview_path"`
	PlayPath      string    `json:"play_path"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// View is a Game decorated with display URLs for the four assets.
type View struct {
	Game
	ThumbnailURL string `json:"thumbnail_url"`
	IconURL      string `json:"icon_url"`
	PreviewURL   string `json:"preview_url"`
	PlayURL      string `json:"play_url"`
}

// UploadedAsset describes one stored binary from an asset upload request.
type UploadedAsset struct {
	Path         string `json:"path"`
	OriginalName string `json:"originalName"`
}
