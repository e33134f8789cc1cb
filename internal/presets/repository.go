// Package presets stores the named locations offered by the weather panel.
package presets

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ngmaloney/divevis/internal/config"
	"github.com/ngmaloney/divevis/internal/models"
)

// Repository handles persistence for location presets
type Repository struct {
	db *sql.DB
}

// NewRepository creates a preset repository on an open database whose schema
// has been ensured (see database.Open).
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts a preset, or updates the coordinates of the preset with the
// same name.
func (r *Repository) Save(preset *models.Preset) error {
	query := `
		INSERT INTO presets (name, latitude, longitude, source, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			source = excluded.source
	`

	if preset.CreatedAt.IsZero() {
		preset.CreatedAt = time.Now()
	}
	if preset.Source == "" {
		preset.Source = models.PresetSourceConfig
	}

	_, err := r.db.Exec(query,
		preset.Name,
		preset.Latitude,
		preset.Longitude,
		preset.Source,
		preset.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving preset: %w", err)
	}

	// LastInsertId is unreliable for the update branch of an upsert.
	if err := r.db.QueryRow("SELECT id FROM presets WHERE name = ?", preset.Name).Scan(&preset.ID); err != nil {
		return fmt.Errorf("getting preset id: %w", err)
	}

	return nil
}

// List retrieves all presets ordered by name
func (r *Repository) List() ([]models.Preset, error) {
	rows, err := r.db.Query("SELECT id, name, latitude, longitude, source, created_at FROM presets ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying presets: %w", err)
	}
	defer rows.Close()

	var presets []models.Preset
	for rows.Next() {
		var p models.Preset
		if err := rows.Scan(&p.ID, &p.Name, &p.Latitude, &p.Longitude, &p.Source, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning preset: %w", err)
		}
		presets = append(presets, p)
	}

	return presets, rows.Err()
}

// Delete removes a preset by name
func (r *Repository) Delete(name string) error {
	if _, err := r.db.Exec("DELETE FROM presets WHERE name = ?", name); err != nil {
		return fmt.Errorf("deleting preset: %w", err)
	}
	return nil
}

// Provision inserts the configured presets that are not stored yet and
// returns how many were added. Stored presets with the same name win, so
// edits and imports survive restarts.
func (r *Repository) Provision(configured []config.PresetConfig) (int, error) {
	added := 0
	for _, pc := range configured {
		res, err := r.db.Exec(`
			INSERT INTO presets (name, latitude, longitude, source, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(name) DO NOTHING
		`, pc.Name, pc.Lat, pc.Lon, models.PresetSourceConfig, time.Now())
		if err != nil {
			return added, fmt.Errorf("provisioning preset %s: %w", pc.Name, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}
	return added, nil
}
