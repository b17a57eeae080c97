package banner

import (
	"time"

	"github.com/google/uuid"
)

// Banner is a promotional strip shown on the portal home page.
type Banner struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"`
	ImagePath string    `json:"image_path"`
	TargetURL string    `json:"target_url"`
	Active    bool      `json:"active"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// View is a Banner decorated with the display URL for its image.
type View struct {
	Banner
	ImageURL string `json:"image_url"`
}
