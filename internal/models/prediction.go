package models

import (
	"encoding/json"
	"strings"
)

// DataSource names where the backend took the prediction features from.
type DataSource string

const (
	DataSourceHybrid     DataSource = "hybrid"     // fetched marine data plus manual fields
	DataSourceStormglass DataSource = "stormglass" // fetched marine data only
	DataSourceManual     DataSource = "manual"     // form values only
)

// Prediction form keys that carry numbers.
const (
	KeyLat         = "lat"
	KeyLon         = "lon"
	KeySwellHeight = "swell_height"
	KeySwellPeriod = "swell_period"
	KeyWindSpeed   = "wind_speed"
	KeyWindDir     = "wind_dir"
	KeyTideHeight  = "tide_height"
	KeyTurbidity   = "turbidity"
	KeyChlorophyll = "chlorophyll"
	KeyRegion      = "region"
)

// NumericKeys lists the prediction fields that are parsed as numbers, in form order.
var NumericKeys = []string{
	KeyLat, KeyLon, KeySwellHeight, KeySwellPeriod, KeyWindSpeed,
	KeyWindDir, KeyTideHeight, KeyTurbidity, KeyChlorophyll,
}

// PredictionRequest is the body of POST /predict. Every numeric field is a
// pointer so that a blank form value is left out of the JSON entirely and the
// backend can substitute its own default.
type PredictionRequest struct {
	Region        string   `json:"region,omitempty"`
	Lat           *float64 `json:"lat,omitempty"`
	Lon           *float64 `json:"lon,omitempty"`
	SwellHeight   *float64 `json:"swell_height,omitempty"`
	SwellPeriod   *float64 `json:"swell_period,omitempty"`
	WindSpeed     *float64 `json:"wind_speed,omitempty"` // knots
	WindDir       *float64 `json:"wind_dir,omitempty"`   // degrees
	TideHeight    *float64 `json:"tide_height,omitempty"`
	Turbidity     *float64 `json:"turbidity,omitempty"`
	Chlorophyll   *float64 `json:"chlorophyll,omitempty"`
	AutoTurbidity bool     `json:"auto_turbidity,omitempty"`

	// NullCoordinates sends a missing lat or lon as JSON null instead of
	// leaving it out.
	NullCoordinates bool `json:"-"`
}

func (r PredictionRequest) MarshalJSON() ([]byte, error) {
	type plain PredictionRequest
	if !r.NullCoordinates {
		return json.Marshal(plain(r))
	}
	return json.Marshal(struct {
		plain
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	}{plain(r), r.Lat, r.Lon})
}

// NewPredictionRequest builds a request from raw form values keyed by field
// name. Blank or whitespace-only numeric values are omitted; a non-blank value
// without a numeric prefix is a *ValidationError.
func NewPredictionRequest(values map[string]string) (PredictionRequest, error) {
	var req PredictionRequest
	req.Region = strings.TrimSpace(values[KeyRegion])

	for _, key := range NumericKeys {
		raw := values[key]
		if strings.TrimSpace(raw) == "" {
			continue
		}
		f, ok := ParseLooseFloat(raw)
		if !ok {
			return PredictionRequest{}, &ValidationError{Field: key, Message: "not a number: " + strings.TrimSpace(raw)}
		}
		*req.field(key) = Float(f)
	}

	return req, nil
}

// field returns the slot holding the numeric value for key.
func (r *PredictionRequest) field(key string) **float64 {
	switch key {
	case KeyLat:
		return &r.Lat
	case KeyLon:
		return &r.Lon
	case KeySwellHeight:
		return &r.SwellHeight
	case KeySwellPeriod:
		return &r.SwellPeriod
	case KeyWindSpeed:
		return &r.WindSpeed
	case KeyWindDir:
		return &r.WindDir
	case KeyTideHeight:
		return &r.TideHeight
	case KeyTurbidity:
		return &r.Turbidity
	case KeyChlorophyll:
		return &r.Chlorophyll
	}
	panic("models: unknown prediction key " + key)
}

// Value returns the numeric value for key and whether it is present.
func (r PredictionRequest) Value(key string) (float64, bool) {
	p := *r.field(key)
	if p == nil {
		return 0, false
	}
	return *p, true
}

// HasLocation reports whether both coordinates are present, which makes the
// backend fetch marine data for the point.
func (r PredictionRequest) HasLocation() bool {
	return r.Lat != nil && r.Lon != nil
}

// Features are the model inputs the backend actually used.
type Features struct {
	SwellHeight float64 `json:"swell_height"`
	SwellPeriod float64 `json:"swell_period"`
	WindSpeedMS float64 `json:"wind_speed_ms"`
	WindDir     float64 `json:"wind_dir"`
	TideHeight  float64 `json:"tide_height"`
	Turbidity   float64 `json:"turbidity"`
	Chlorophyll float64 `json:"chlorophyll"`
}

// Coords is a plain coordinate pair.
type Coords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PredictionResponse is the body returned by POST /predict.
type PredictionResponse struct {
	VisibilityM      *float64   `json:"visibility_m,omitempty"`
	Region           string     `json:"region,omitempty"`
	DataSource       DataSource `json:"data_source,omitempty"`
	Features         *Features  `json:"features,omitempty"`
	StormglassCoords *Coords    `json:"stormglass_coords,omitempty"`
	Error            string     `json:"error,omitempty"`
}

// Prediction pairs a successful response with the request that produced it.
type Prediction struct {
	Request  PredictionRequest
	Response PredictionResponse
}

// Location returns the coordinates the prediction was made for, preferring the
// marine-data grid point reported by the backend over the submitted ones.
func (p Prediction) Location() (Coords, bool) {
	if c := p.Response.StormglassCoords; c != nil {
		return *c, true
	}
	if p.Request.HasLocation() {
		return Coords{Lat: *p.Request.Lat, Lon: *p.Request.Lon}, true
	}
	return Coords{}, false
}
