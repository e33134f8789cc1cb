package models

import "time"

// Preset sources.
const (
	PresetSourceConfig    = "config"
	PresetSourceShapefile = "shapefile"
)

// Preset is a named location that fills the weather panel coordinates.
type Preset struct {
	ID        int64     `json:"id"` // Database primary key (0 if not saved)
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Source    string    `json:"source"` // "config" or "shapefile"
	CreatedAt time.Time `json:"created_at"`
}
