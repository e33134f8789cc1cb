package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewPredictionRequest_OmitsBlankNumbers(t *testing.T) {
	blanks := []struct {
		name  string
		value *string
	}{
		{"empty", strPtr("")},
		{"spaces", strPtr("   ")},
		{"tabs and newline", strPtr("\t\n")},
		{"missing", nil},
	}

	for _, key := range NumericKeys {
		for _, b := range blanks {
			t.Run(key+"/"+b.name, func(t *testing.T) {
				values := map[string]string{}
				if b.value != nil {
					values[key] = *b.value
				}

				req, err := NewPredictionRequest(values)
				if err != nil {
					t.Fatalf("NewPredictionRequest() error = %v", err)
				}

				body, err := json.Marshal(req)
				if err != nil {
					t.Fatalf("Marshal() error = %v", err)
				}
				var decoded map[string]any
				if err := json.Unmarshal(body, &decoded); err != nil {
					t.Fatalf("Unmarshal() error = %v", err)
				}
				if _, ok := decoded[key]; ok {
					t.Errorf("payload %s contains %q, want it omitted", body, key)
				}
			})
		}
	}
}

func TestNewPredictionRequest_ParsesNumbers(t *testing.T) {
	req, err := NewPredictionRequest(map[string]string{
		KeyRegion:      " UK ",
		KeyLat:         "49.21",
		KeyLon:         " -2.13 ",
		KeySwellHeight: "1.5m",
		KeyWindSpeed:   "0",
	})
	if err != nil {
		t.Fatalf("NewPredictionRequest() error = %v", err)
	}

	if req.Region != "UK" {
		t.Errorf("Region = %q, want UK", req.Region)
	}
	if v, ok := req.Value(KeyLat); !ok || v != 49.21 {
		t.Errorf("lat = %v (%v), want 49.21", v, ok)
	}
	if v, ok := req.Value(KeyLon); !ok || v != -2.13 {
		t.Errorf("lon = %v (%v), want -2.13", v, ok)
	}
	if v, ok := req.Value(KeySwellHeight); !ok || v != 1.5 {
		t.Errorf("swell_height = %v (%v), want 1.5", v, ok)
	}
	if v, ok := req.Value(KeyWindSpeed); !ok || v != 0 {
		t.Errorf("wind_speed = %v (%v), want explicit 0", v, ok)
	}
	if _, ok := req.Value(KeyTurbidity); ok {
		t.Error("turbidity should be absent")
	}
	if !req.HasLocation() {
		t.Error("HasLocation() = false, want true")
	}
}

func TestNewPredictionRequest_RejectsGarbage(t *testing.T) {
	_, err := NewPredictionRequest(map[string]string{KeyTideHeight: "high"})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if verr.Field != KeyTideHeight {
		t.Errorf("Field = %q, want %q", verr.Field, KeyTideHeight)
	}
}

func TestPredictionRequest_HasLocation(t *testing.T) {
	tests := []struct {
		name string
		req  PredictionRequest
		want bool
	}{
		{"both", PredictionRequest{Lat: Float(1), Lon: Float(2)}, true},
		{"lat only", PredictionRequest{Lat: Float(1)}, false},
		{"lon only", PredictionRequest{Lon: Float(2)}, false},
		{"neither", PredictionRequest{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.HasLocation(); got != tt.want {
				t.Errorf("HasLocation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrediction_Location(t *testing.T) {
	p := Prediction{
		Request:  PredictionRequest{Lat: Float(49.1), Lon: Float(-2.1)},
		Response: PredictionResponse{StormglassCoords: &Coords{Lat: 49.0, Lon: -2.0}},
	}
	if c, ok := p.Location(); !ok || c.Lat != 49.0 || c.Lon != -2.0 {
		t.Errorf("Location() = %+v, %v; want stormglass coords", c, ok)
	}

	p.Response.StormglassCoords = nil
	if c, ok := p.Location(); !ok || c.Lat != 49.1 || c.Lon != -2.1 {
		t.Errorf("Location() = %+v, %v; want submitted coords", c, ok)
	}

	p.Request = PredictionRequest{}
	if _, ok := p.Location(); ok {
		t.Error("Location() ok = true without any coordinates")
	}
}

func strPtr(s string) *string { return &s }
