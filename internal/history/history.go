// Package history keeps a local record of successful predictions.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ngmaloney/divevis/internal/models"
)

// Recorder appends and reads prediction history
type Recorder struct {
	db  *sql.DB
	now func() time.Time
}

// NewRecorder creates a recorder on an open database whose schema has been
// ensured (see database.Open).
func NewRecorder(db *sql.DB) *Recorder {
	return &Recorder{db: db, now: time.Now}
}

// Record stores a successful prediction made from the given panel. Responses
// without a visibility are not recorded.
func (r *Recorder) Record(source string, p models.Prediction) error {
	if p.Response.VisibilityM == nil {
		return nil
	}

	region := p.Response.Region
	if region == "" {
		region = p.Request.Region
	}

	var lat, lon sql.NullFloat64
	if c, ok := p.Location(); ok {
		lat = sql.NullFloat64{Float64: c.Lat, Valid: true}
		lon = sql.NullFloat64{Float64: c.Lon, Valid: true}
	}

	_, err := r.db.Exec(`
		INSERT INTO prediction_history (source, region, latitude, longitude, visibility_m, data_source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, source, region, lat, lon, *p.Response.VisibilityM, string(p.Response.DataSource), r.now().UTC())
	if err != nil {
		return fmt.Errorf("recording prediction: %w", err)
	}
	return nil
}

// Latest returns up to limit entries, newest first
func (r *Recorder) Latest(limit int) ([]models.HistoryEntry, error) {
	rows, err := r.db.Query(`
		SELECT id, source, region, latitude, longitude, visibility_m, data_source, created_at
		FROM prediction_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		var region, dataSource sql.NullString
		var lat, lon sql.NullFloat64

		if err := rows.Scan(&e.ID, &e.Source, &region, &lat, &lon, &e.VisibilityM, &dataSource, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		e.Region = region.String
		e.DataSource = models.DataSource(dataSource.String)
		if lat.Valid && lon.Valid {
			e.Lat = models.Float(lat.Float64)
			e.Lon = models.Float(lon.Float64)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
