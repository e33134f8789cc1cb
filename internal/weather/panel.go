// Package weather runs the weather panel: current conditions, the
// weather-then-predict chain and direct marine-data predictions.
package weather

import (
	"context"
	"errors"

	"github.com/ngmaloney/divevis/internal/api"
	"github.com/ngmaloney/divevis/internal/models"
	"github.com/ngmaloney/divevis/internal/prediction"
	"github.com/ngmaloney/divevis/internal/render"
)

// Pending texts shown while an action is in flight.
const (
	StatusFetching   = "Fetching weather..."
	StatusChained    = "Fetching weather and predicting..."
	StatusStormglass = "Fetching Stormglass data and predicting..."
)

// Values used when the panel predicts on its own behalf.
const (
	PanelRegion      = "UK"
	DefaultWindSpeed = 6.0   // knots
	DefaultWindDir   = 180.0 // degrees
)

// Coordinates holds the raw text of the panel's lat/lon inputs.
type Coordinates struct {
	Lat string
	Lon string
}

// parse reads a coordinate with leading-number semantics; nil when unusable.
func parse(s string) *float64 {
	f, ok := models.ParseLooseFloat(s)
	if !ok {
		return nil
	}
	return models.Float(f)
}

// Request builds the /weather payload. Unparseable values become null.
func (c Coordinates) Request() models.WeatherRequest {
	return models.WeatherRequest{Lat: parse(c.Lat), Lon: parse(c.Lon)}
}

// ApplyPreset writes a preset's coordinates into the inputs with 4 decimals.
// A value that does not parse leaves its input unchanged.
func (c Coordinates) ApplyPreset(lat, lon string) Coordinates {
	if v := parse(lat); v != nil {
		c.Lat = render.Coordinate(*v)
	}
	if v := parse(lon); v != nil {
		c.Lon = render.Coordinate(*v)
	}
	return c
}

// Client is what the panel needs from the backend
type Client interface {
	api.WeatherClient
	api.PredictionClient
}

// FetchWeather shows the current conditions at the coordinates.
func FetchWeather(ctx context.Context, client api.WeatherClient, c Coordinates) prediction.Outcome {
	w, err := client.CurrentWeather(ctx, c.Request())
	if err != nil {
		return prediction.Failed(err)
	}
	return prediction.Outcome{Lines: []string{render.WeatherSummary(*w)}}
}

// ChainedRequest builds the prediction that follows a weather lookup, taking
// wind from the weather when it has any. Coordinates go out exactly as they
// went to /weather, null included.
func ChainedRequest(req models.WeatherRequest, w models.WeatherResponse) models.PredictionRequest {
	windSpeed, windDir := DefaultWindSpeed, DefaultWindDir
	if w.WindSpeedKnots != nil {
		windSpeed = *w.WindSpeedKnots
	}
	if w.WindDirectionDeg != nil {
		windDir = *w.WindDirectionDeg
	}
	return models.PredictionRequest{
		Region:    PanelRegion,
		Lat:       req.Lat,
		Lon:       req.Lon,
		WindSpeed: models.Float(windSpeed),
		WindDir:   models.Float(windDir),

		NullCoordinates: true,
	}
}

// WeatherThenPredict fetches the weather, then predicts with its wind. A
// weather failure stops the chain; once weather is known it stays on screen
// whatever the prediction does.
func WeatherThenPredict(ctx context.Context, client Client, c Coordinates) prediction.Outcome {
	weatherReq := c.Request()
	w, err := client.CurrentWeather(ctx, weatherReq)
	if err != nil {
		return prediction.Failed(err)
	}

	summary := render.WeatherCompact(*w)
	req := ChainedRequest(weatherReq, *w)

	resp, err := client.Predict(ctx, req)
	if err != nil {
		second := render.Failure(err)
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			second = "Prediction Error: " + apiErr.Message
		}
		return prediction.Outcome{Lines: []string{summary, second}, Err: err}
	}

	return prediction.Outcome{
		Lines:      []string{summary, render.PredictedVisibility(resp.VisibilityM)},
		Prediction: &models.Prediction{Request: req, Response: *resp},
	}
}

// StormglassRequest builds a prediction from the location alone.
func StormglassRequest(c Coordinates, autoTurbidity bool) models.PredictionRequest {
	return models.PredictionRequest{
		Region:        PanelRegion,
		Lat:           parse(c.Lat),
		Lon:           parse(c.Lon),
		AutoTurbidity: autoTurbidity,
	}
}

// StormglassPredict predicts from fetched marine data only.
func StormglassPredict(ctx context.Context, client api.PredictionClient, c Coordinates, autoTurbidity bool) prediction.Outcome {
	req := StormglassRequest(c, autoTurbidity)
	resp, err := client.Predict(ctx, req)
	if err != nil {
		return prediction.Failed(err)
	}

	lines := []string{render.Headline(
		render.Region(*resp, PanelRegion),
		render.OptionalVisibility(resp.VisibilityM),
		render.SourceSuffix(resp.DataSource),
	)}
	if resp.Features != nil && resp.DataSource != "" {
		lines = append(lines, render.FeaturesDetail(*resp.Features)...)
	}

	return prediction.Outcome{
		Lines:      lines,
		Prediction: &models.Prediction{Request: req, Response: *resp},
	}
}
