package fakebackend

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ngmaloney/divevis/internal/models"
)

const knotToMS = 0.514444

// marine is the synthetic marine data for a grid point.
type marine struct {
	SwellHeight float64
	SwellPeriod float64
	WindSpeedMS float64
	WindDir     float64
	SeaLevel    float64
	Chlorophyll float64
}

// gridPoint snaps a coordinate to the 0.25° marine data grid.
func gridPoint(lat, lon float64) models.Coords {
	return models.Coords{Lat: math.Round(lat*4) / 4, Lon: math.Round(lon*4) / 4}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// marineAt returns deterministic conditions for a grid point.
func marineAt(c models.Coords) marine {
	return marine{
		SwellHeight: round2(0.8 + 0.6*math.Abs(math.Sin(c.Lat*3))),
		SwellPeriod: round2(8 + 4*math.Abs(math.Cos(c.Lon*2))),
		WindSpeedMS: round2(3 + 5*math.Abs(math.Sin((c.Lat+c.Lon)*5))),
		WindDir:     math.Mod(math.Abs(c.Lat*37+c.Lon*11), 360),
		SeaLevel:    round2(1.5 * math.Sin(c.Lon*7)),
		Chlorophyll: round2(0.3 + 0.4*math.Abs(math.Cos(c.Lat*4))),
	}
}

// visibility is the stand-in model: calm, clear water sees furthest.
func visibility(f models.Features) float64 {
	v := 14 - 2.2*f.SwellHeight + 0.15*f.SwellPeriod - 0.35*f.WindSpeedMS -
		1.5*f.Turbidity - 2.0*f.Chlorophyll - 0.3*math.Abs(f.TideHeight)
	return math.Min(25, math.Max(0.5, v))
}

// estimateTurbidity guesses turbidity from wind and tide.
func estimateTurbidity(windMS, tide float64) float64 {
	t := 1.0 + 0.15*math.Max(0, windMS-5.0)
	if tide < 0 {
		t++
	}
	return math.Min(10, math.Max(0.2, t))
}

// payload is a loosely typed JSON object, read the way the real backend does.
type payload map[string]any

// has reports whether key holds a truthy value. Zero, empty and null count as
// missing.
func (p payload) has(key string) bool {
	switch v := p[key].(type) {
	case nil:
		return false
	case float64:
		return v != 0
	case string:
		return v != ""
	case bool:
		return v
	}
	return true
}

// float converts key to a number. A missing key is an error unless a
// default is given.
func (p payload) float(key string, def ...float64) (float64, error) {
	v, ok := p[key]
	if !ok {
		if len(def) > 0 {
			return def[0], nil
		}
		return 0, fmt.Errorf("'%s'", key)
	}
	switch v := v.(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("could not convert string to float: '%s'", v)
		}
		return f, nil
	}
	return 0, fmt.Errorf("float() argument must be a string or a number, not '%v'", v)
}

// override returns the payload value for key when truthy, else fallback.
func (p payload) override(key string, fallback float64) (float64, error) {
	if !p.has(key) {
		return fallback, nil
	}
	return p.float(key)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var data payload
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil || data == nil {
		data = payload{}
	}

	region := "GLOBAL"
	if v, ok := data["region"]; ok && v != nil {
		region = strings.ToUpper(fmt.Sprint(v))
	}

	var (
		grid     *models.Coords
		features models.Features
		source   = models.DataSourceManual
		err      error
	)

	lat, latErr := data.float("lat")
	lon, lonErr := data.float("lon")
	if data["lat"] != nil && data["lon"] != nil && latErr == nil && lonErr == nil {
		c := gridPoint(lat, lon)
		grid = &c
		source = models.DataSourceHybrid
	}

	if grid != nil {
		features, err = hybridFeatures(data, marineAt(*grid))
	} else {
		features, err = manualFeatures(data)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	s.logger.Debug("Predicted",
		zap.String("region", region),
		zap.String("data_source", string(source)),
		zap.Bool("auto_turbidity", data.has("auto_turbidity")))

	writeJSON(w, http.StatusOK, models.PredictionResponse{
		VisibilityM:      models.Float(visibility(features)),
		Region:           region,
		DataSource:       source,
		Features:         &features,
		StormglassCoords: grid,
	})
}

// hybridFeatures uses fetched conditions as defaults for any field the
// request leaves empty.
func hybridFeatures(data payload, m marine) (models.Features, error) {
	var f models.Features
	var err error

	if f.SwellHeight, err = data.override("swell_height", m.SwellHeight); err != nil {
		return f, err
	}
	if f.SwellPeriod, err = data.override("swell_period", m.SwellPeriod); err != nil {
		return f, err
	}
	f.WindSpeedMS = m.WindSpeedMS
	if data.has("wind_speed") {
		knots, err := data.float("wind_speed")
		if err != nil {
			return f, err
		}
		f.WindSpeedMS = knots * knotToMS
	}
	if f.WindDir, err = data.override("wind_dir", m.WindDir); err != nil {
		return f, err
	}
	if f.TideHeight, err = data.override("tide_height", m.SeaLevel); err != nil {
		return f, err
	}
	if f.Chlorophyll, err = data.override("chlorophyll", m.Chlorophyll); err != nil {
		return f, err
	}
	if f.Turbidity, err = data.override("turbidity", estimateTurbidity(f.WindSpeedMS, f.TideHeight)); err != nil {
		return f, err
	}
	return f, nil
}

// manualFeatures requires the core fields from the request itself.
func manualFeatures(data payload) (models.Features, error) {
	var f models.Features

	knots, err := data.float("wind_speed")
	if err != nil {
		return f, err
	}
	f.WindSpeedMS = knots * knotToMS
	if f.SwellHeight, err = data.float("swell_height"); err != nil {
		return f, err
	}
	if f.SwellPeriod, err = data.float("swell_period"); err != nil {
		return f, err
	}
	if f.WindDir, err = data.float("wind_dir", 0); err != nil {
		return f, err
	}
	if f.TideHeight, err = data.float("tide_height"); err != nil {
		return f, err
	}
	if f.Turbidity, err = data.float("turbidity", 1.0); err != nil {
		return f, err
	}
	if f.Chlorophyll, err = data.float("chlorophyll", 0.5); err != nil {
		return f, err
	}
	return f, nil
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	var data payload
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil || data == nil {
		data = payload{}
	}

	lat, latErr := data.float("lat")
	lon, lonErr := data.float("lon")
	if data["lat"] == nil || data["lon"] == nil || latErr != nil || lonErr != nil {
		writeError(w, http.StatusBadRequest, "Missing or invalid 'lat'/'lon'")
		return
	}

	m := marineAt(gridPoint(lat, lon))
	now := s.now().UTC().Truncate(15 * time.Minute)

	writeJSON(w, http.StatusOK, map[string]any{
		"source":             "fakebackend",
		"lat":                lat,
		"lon":                lon,
		"time":               now.Format("2006-01-02T15:04"),
		"temperature_2m":     round2(12 + 4*math.Cos(lat*math.Pi/180)),
		"wind_speed_knots":   round2(m.WindSpeedMS / knotToMS),
		"wind_speed_ms":      m.WindSpeedMS,
		"wind_direction_deg": math.Round(m.WindDir),
	})
}
