package models

import "time"

// Prediction sources recorded in history.
const (
	SourceForm       = "form"
	SourceWeather    = "weather"
	SourceStormglass = "stormglass"
)

// HistoryEntry is a successful prediction kept in the local database.
type HistoryEntry struct {
	ID          int64
	Source      string // which panel ran it
	Region      string
	Lat         *float64
	Lon         *float64
	VisibilityM float64
	DataSource  DataSource
	CreatedAt   time.Time
}
