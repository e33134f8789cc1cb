package weather

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ngmaloney/divevis/internal/api"
	"github.com/ngmaloney/divevis/internal/fakebackend"
	"github.com/ngmaloney/divevis/internal/models"
)

type stubClient struct {
	weatherCalls []models.WeatherRequest
	predictCalls []models.PredictionRequest

	weather    *models.WeatherResponse
	weatherErr error
	predict    *models.PredictionResponse
	predictErr error
}

func (s *stubClient) CurrentWeather(ctx context.Context, req models.WeatherRequest) (*models.WeatherResponse, error) {
	s.weatherCalls = append(s.weatherCalls, req)
	return s.weather, s.weatherErr
}

func (s *stubClient) Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictionResponse, error) {
	s.predictCalls = append(s.predictCalls, req)
	return s.predict, s.predictErr
}

func TestCoordinates_Request(t *testing.T) {
	req := Coordinates{Lat: " 49.2138 ", Lon: "west"}.Request()
	if req.Lat == nil || *req.Lat != 49.2138 {
		t.Errorf("Lat = %v, want 49.2138", req.Lat)
	}
	if req.Lon != nil {
		t.Errorf("Lon = %v, want nil for unparseable text", *req.Lon)
	}
}

func TestApplyPreset(t *testing.T) {
	tests := []struct {
		name     string
		start    Coordinates
		lat, lon string
		want     Coordinates
	}{
		{"both", Coordinates{}, "49.18203", "-2.2", Coordinates{"49.1820", "-2.2000"}},
		{"bad lat keeps field", Coordinates{Lat: "typed", Lon: "x"}, "n/a", "-2.1", Coordinates{"typed", "-2.1000"}},
		{"both bad", Coordinates{Lat: "1", Lon: "2"}, "", "abc", Coordinates{"1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.start.ApplyPreset(tt.lat, tt.lon); got != tt.want {
				t.Errorf("ApplyPreset() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFetchWeather(t *testing.T) {
	knots := 11.0
	client := &stubClient{weather: &models.WeatherResponse{Time: "2024-06-01T10:00", WindSpeedKnots: &knots}}

	out := FetchWeather(context.Background(), client, Coordinates{"49.2", "-2.1"})
	if out.Text() != "⏰ Time: 2024-06-01T10:00 | 💨 Wind: 11 kt" {
		t.Errorf("Text() = %q", out.Text())
	}

	client.weatherErr = &api.APIError{StatusCode: 400, Message: "Missing or invalid 'lat'/'lon'"}
	out = FetchWeather(context.Background(), client, Coordinates{})
	if out.Text() != "Error: Missing or invalid 'lat'/'lon'" {
		t.Errorf("Text() = %q", out.Text())
	}
}

func TestWeatherThenPredict_DefaultWind(t *testing.T) {
	client := &stubClient{
		weather: &models.WeatherResponse{Time: "2024-06-01T10:00"},
		predict: &models.PredictionResponse{VisibilityM: models.Float(8.456)},
	}

	out := WeatherThenPredict(context.Background(), client, Coordinates{"49.2", "-2.1"})

	if len(client.predictCalls) != 1 {
		t.Fatalf("predict calls = %d, want 1", len(client.predictCalls))
	}
	req := client.predictCalls[0]
	if v, _ := req.Value(models.KeyWindSpeed); v != 6.0 {
		t.Errorf("wind_speed = %v, want 6.0", v)
	}
	if v, _ := req.Value(models.KeyWindDir); v != 180 {
		t.Errorf("wind_dir = %v, want 180", v)
	}
	if req.Region != "UK" || *req.Lat != 49.2 || *req.Lon != -2.1 {
		t.Errorf("request = %+v", req)
	}

	want := "Weather: ⏰ 2024-06-01T10:00\n🔮 Predicted Visibility: 8.46 m"
	if out.Text() != want {
		t.Errorf("Text() = %q, want %q", out.Text(), want)
	}
	if out.Prediction == nil {
		t.Error("successful chain should keep the prediction")
	}
}

func TestChainedRequest_NullCoordinates(t *testing.T) {
	c := Coordinates{Lat: "north-ish", Lon: "-2.1"}
	req := ChainedRequest(c.Request(), models.WeatherResponse{})

	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var got map[string]any
	json.Unmarshal(body, &got)

	lat, ok := got["lat"]
	if !ok || lat != nil {
		t.Errorf("lat = %#v (present %v), want null", lat, ok)
	}
	if got["lon"] != -2.1 || got["region"] != "UK" {
		t.Errorf("body = %s", body)
	}

	weatherBody, _ := json.Marshal(c.Request())
	if !strings.Contains(string(weatherBody), `"lat":null`) {
		t.Errorf("weather body = %s, want lat null", weatherBody)
	}
}

func TestWeatherThenPredict_ZeroWindIsKept(t *testing.T) {
	zero := 0.0
	client := &stubClient{
		weather: &models.WeatherResponse{WindSpeedKnots: &zero, WindDirectionDeg: &zero},
		predict: &models.PredictionResponse{VisibilityM: models.Float(10)},
	}

	WeatherThenPredict(context.Background(), client, Coordinates{"49.2", "-2.1"})

	req := client.predictCalls[0]
	if *req.WindSpeed != 0 || *req.WindDir != 0 {
		t.Errorf("wind = %v @ %v, want calm 0 @ 0", *req.WindSpeed, *req.WindDir)
	}
}

func TestWeatherThenPredict_Failures(t *testing.T) {
	t.Run("weather failure stops the chain", func(t *testing.T) {
		client := &stubClient{weatherErr: &api.APIError{StatusCode: 502, Message: "Failed to fetch weather: timeout"}}

		out := WeatherThenPredict(context.Background(), client, Coordinates{"49.2", "-2.1"})

		if len(client.predictCalls) != 0 {
			t.Errorf("predict calls = %d, want 0", len(client.predictCalls))
		}
		if out.Text() != "Error: Failed to fetch weather: timeout" {
			t.Errorf("Text() = %q", out.Text())
		}
	})

	t.Run("prediction error keeps weather", func(t *testing.T) {
		client := &stubClient{
			weather:    &models.WeatherResponse{Time: "t"},
			predictErr: &api.APIError{StatusCode: 500, Message: "Model not found"},
		}

		out := WeatherThenPredict(context.Background(), client, Coordinates{"49.2", "-2.1"})

		if len(out.Lines) != 2 || out.Lines[0] != "Weather: ⏰ t" || out.Lines[1] != "Prediction Error: Model not found" {
			t.Errorf("Lines = %v", out.Lines)
		}
		if out.Prediction != nil {
			t.Error("failed chain should not keep a prediction")
		}
	})

	t.Run("prediction transport failure keeps weather", func(t *testing.T) {
		client := &stubClient{
			weather:    &models.WeatherResponse{Time: "t"},
			predictErr: &api.TransportError{Op: "POST /predict", Err: errors.New("EOF")},
		}

		out := WeatherThenPredict(context.Background(), client, Coordinates{"49.2", "-2.1"})

		if len(out.Lines) != 2 || out.Lines[1] != "Request failed: POST /predict: EOF" {
			t.Errorf("Lines = %v", out.Lines)
		}
	})
}

func TestStormglassPredict(t *testing.T) {
	tests := []struct {
		name         string
		resp         models.PredictionResponse
		wantHeadline string
		wantLines    int
	}{
		{
			"stormglass with features",
			models.PredictionResponse{VisibilityM: models.Float(9), DataSource: models.DataSourceStormglass, Features: &models.Features{}},
			"Region UK: Predicted visibility 9.00 m (Stormglass)",
			7,
		},
		{
			"hybrid region from response",
			models.PredictionResponse{VisibilityM: models.Float(9), Region: "JERSEY", DataSource: models.DataSourceHybrid},
			"Region JERSEY: Predicted visibility 9.00 m (Stormglass + manual)",
			1,
		},
		{
			"no source no features",
			models.PredictionResponse{Features: &models.Features{}},
			"Region UK: Predicted visibility N/A m",
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := tt.resp
			client := &stubClient{predict: &resp}

			out := StormglassPredict(context.Background(), client, Coordinates{"49.2", "-2.1"}, false)

			if out.Lines[0] != tt.wantHeadline {
				t.Errorf("headline = %q, want %q", out.Lines[0], tt.wantHeadline)
			}
			if len(out.Lines) != tt.wantLines {
				t.Errorf("len(Lines) = %d, want %d: %v", len(out.Lines), tt.wantLines, out.Lines)
			}
		})
	}
}

func TestStormglassRequest_AutoTurbidity(t *testing.T) {
	if StormglassRequest(Coordinates{"1", "2"}, false).AutoTurbidity {
		t.Error("auto_turbidity should be off")
	}
	req := StormglassRequest(Coordinates{"1", "2"}, true)
	if !req.AutoTurbidity || req.Region != "UK" {
		t.Errorf("request = %+v", req)
	}
}

func TestWeatherThenPredict_AgainstFakeBackend(t *testing.T) {
	server := httptest.NewServer(fakebackend.New(nil))
	defer server.Close()
	client := api.NewHTTPClient(api.Config{BaseURL: server.URL}, nil)

	out := WeatherThenPredict(context.Background(), client, Coordinates{"49.2138", "-2.1358"})
	if out.Err != nil {
		t.Fatalf("Err = %v", out.Err)
	}
	if !strings.HasPrefix(out.Lines[0], "Weather: ⏰ ") || !strings.HasPrefix(out.Lines[1], "🔮 Predicted Visibility: ") {
		t.Errorf("Lines = %v", out.Lines)
	}

	out = FetchWeather(context.Background(), client, Coordinates{"north", "-2.1"})
	if out.Text() != "Error: Missing or invalid 'lat'/'lon'" {
		t.Errorf("Text() = %q", out.Text())
	}
}
