package settings

import (
	"encoding/json"
	"time"
)

// Setting is one named piece of site configuration with a free-form JSON value.
type Setting struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AssetLink is the single normalized shape for linked assets (quick links,
// social icons, footer entries). Legacy data stored these as bare URL
// strings; everything is converted to this form the moment it is read.
type AssetLink struct {
	URL    string `json:"url"`
	Icon   string `json:"icon"`
	Active bool   `json:"active"`
	Label  string `json:"label"`
}
