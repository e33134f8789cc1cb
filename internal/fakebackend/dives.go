package fakebackend

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ngmaloney/divevis/internal/models"
)

const isoLayout = "2006-01-02T15:04:05.000000"

// diveFields maps the optional measure keys to their record fields.
func diveFields(d *models.DiveRecord) map[string]*models.Measure {
	return map[string]*models.Measure{
		"depth":            &d.Depth,
		"breath_hold_time": &d.BreathHoldTime,
		"tide_height":      &d.TideHeight,
		"visibility":       &d.Visibility,
		"water_temp":       &d.WaterTemp,
		"outside_temp":     &d.OutsideTemp,
	}
}

// textFields maps the free-text keys to their record fields.
func textFields(d *models.DiveRecord) map[string]*string {
	return map[string]*string{
		"date":  &d.Date,
		"notes": &d.Notes,
	}
}

// applyFields copies the keys present in raw onto d. It reports the first key
// whose value has the wrong JSON type.
func applyFields(raw map[string]json.RawMessage, d *models.DiveRecord) (string, error) {
	for key, field := range textFields(d) {
		if v, ok := raw[key]; ok {
			if err := json.Unmarshal(v, field); err != nil {
				return key, err
			}
		}
	}
	for key, field := range diveFields(d) {
		if v, ok := raw[key]; ok {
			if err := json.Unmarshal(v, field); err != nil {
				return key, err
			}
		}
	}
	return "", nil
}

// decodeBody reads a JSON object as raw fields and as loose values.
func decodeBody(r *http.Request) (map[string]json.RawMessage, payload) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return map[string]json.RawMessage{}, payload{}
	}
	raw := map[string]json.RawMessage{}
	loose := payload{}
	if json.Unmarshal(body, &raw) != nil || json.Unmarshal(body, &loose) != nil {
		return map[string]json.RawMessage{}, payload{}
	}
	return raw, loose
}

func (s *Server) handleListDives(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Dives())
}

func (s *Server) handleCreateDive(w http.ResponseWriter, r *http.Request) {
	raw, data := decodeBody(r)

	lat, latErr := data.float("lat")
	lon, lonErr := data.float("lon")
	if data["lat"] == nil || data["lon"] == nil || latErr != nil || lonErr != nil {
		writeError(w, http.StatusBadRequest, "Missing or invalid 'lat'/'lon'")
		return
	}

	now := s.now().UTC()
	dive := models.DiveRecord{
		ID:        uuid.NewString(),
		Lat:       lat,
		Lon:       lon,
		CreatedAt: now.Format(isoLayout),
	}
	if key, err := applyFields(raw, &dive); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+key)
		return
	}
	if dive.Date == "" {
		dive.Date = now.Format(isoLayout)
	}

	s.mu.Lock()
	s.dives = append(s.dives, dive)
	s.mu.Unlock()

	s.logger.Debug("Dive created", zap.String("id", dive.ID))
	writeJSON(w, http.StatusCreated, dive)
}

func (s *Server) handleUpdateDive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	raw, data := decodeBody(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, d := range s.dives {
		if d.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		writeError(w, http.StatusNotFound, "Dive not found")
		return
	}

	// Work on a copy so a rejected update leaves the dive untouched.
	dive := s.dives[idx]
	if _, ok := data["lat"]; ok {
		lat, err := data.float("lat")
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid lat")
			return
		}
		dive.Lat = lat
	}
	if _, ok := data["lon"]; ok {
		lon, err := data.float("lon")
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid lon")
			return
		}
		dive.Lon = lon
	}
	if key, err := applyFields(raw, &dive); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+key)
		return
	}
	dive.UpdatedAt = s.now().UTC().Format(isoLayout)
	s.dives[idx] = dive

	s.logger.Debug("Dive updated", zap.String("id", id))
	writeJSON(w, http.StatusOK, dive)
}

func (s *Server) handleLogbook(w http.ResponseWriter, r *http.Request) {
	dives := s.Dives()
	book := models.Logbook{Dives: make([]models.LogbookEntry, 0, len(dives))}
	for _, d := range dives {
		book.Dives = append(book.Dives, models.LogbookEntry{
			Lat:        d.Lat,
			Lon:        d.Lon,
			Visibility: d.Visibility,
			Timestamp:  d.Date,
			Notes:      d.Notes,
		})
	}
	writeJSON(w, http.StatusOK, book)
}
