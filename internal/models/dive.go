package models

import "strings"

// DiveRecord is one logged dive as stored by the backend.
type DiveRecord struct {
	ID             string  `json:"id"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	Date           string  `json:"date,omitempty"` // ISO 8601
	Depth          Measure `json:"depth,omitzero"`            // m
	BreathHoldTime Measure `json:"breath_hold_time,omitzero"` // s
	TideHeight     Measure `json:"tide_height,omitzero"`      // m
	Visibility     Measure `json:"visibility,omitzero"`       // m
	WaterTemp      Measure `json:"water_temp,omitzero"`       // °C
	OutsideTemp    Measure `json:"outside_temp,omitzero"`     // °C
	Notes          string  `json:"notes,omitempty"`
	CreatedAt      string  `json:"created_at,omitempty"`
	UpdatedAt      string  `json:"updated_at,omitempty"`
}

// DateOnly returns the date part of an ISO timestamp ("2024-06-01T10:00" -> "2024-06-01").
func (d DiveRecord) DateOnly() string {
	date, _, _ := strings.Cut(d.Date, "T")
	return date
}

// DiveInput is the body of POST /dives and PUT /dives/{id}. Unset fields are
// omitted; the backend only touches keys that are present on update.
type DiveInput struct {
	Lat            *float64 `json:"lat,omitempty"`
	Lon            *float64 `json:"lon,omitempty"`
	Date           string   `json:"date,omitempty"`
	Depth          Measure  `json:"depth,omitzero"`
	BreathHoldTime Measure  `json:"breath_hold_time,omitzero"`
	TideHeight     Measure  `json:"tide_height,omitzero"`
	Visibility     Measure  `json:"visibility,omitzero"`
	WaterTemp      Measure  `json:"water_temp,omitzero"`
	OutsideTemp    Measure  `json:"outside_temp,omitzero"`
	Notes          string   `json:"notes,omitempty"`
}

// LogbookEntry is one row of GET /dives_data.
type LogbookEntry struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Visibility Measure `json:"visibility,omitzero"`
	Timestamp  string  `json:"timestamp"`
	Notes      string  `json:"notes,omitempty"`
}

// Logbook is the body of GET /dives_data.
type Logbook struct {
	Dives []LogbookEntry `json:"dives"`
}
