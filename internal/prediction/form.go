// Package prediction runs the visibility prediction form.
package prediction

import (
	"context"
	"strings"

	"github.com/ngmaloney/divevis/internal/api"
	"github.com/ngmaloney/divevis/internal/models"
	"github.com/ngmaloney/divevis/internal/render"
)

// Pending texts shown while a prediction is in flight.
const (
	StatusPredicting = "Predicting..."
	StatusFetching   = "Fetching Stormglass data and predicting..."
)

// Field describes one input of the form.
type Field struct {
	Key         string
	Label       string
	Placeholder string
}

// Fields lists the form inputs in display order.
var Fields = []Field{
	{models.KeyRegion, "Region", "e.g. UK (optional)"},
	{models.KeyLat, "Latitude", "49.2138 (optional)"},
	{models.KeyLon, "Longitude", "-2.1358 (optional)"},
	{models.KeySwellHeight, "Swell height (m)", "auto with location"},
	{models.KeySwellPeriod, "Swell period (s)", "auto with location"},
	{models.KeyWindSpeed, "Wind speed (kt)", "auto with location"},
	{models.KeyWindDir, "Wind direction (°)", "auto with location"},
	{models.KeyTideHeight, "Tide height (m)", "auto with location"},
	{models.KeyTurbidity, "Turbidity", "auto with location"},
	{models.KeyChlorophyll, "Chlorophyll (mg/m³)", "auto with location"},
}

// Form holds the raw text of every input, exactly as typed.
type Form struct {
	values map[string]string
}

// NewForm creates an empty form
func NewForm() *Form {
	return &Form{values: make(map[string]string)}
}

// Set stores the raw text for key
func (f *Form) Set(key, value string) {
	f.values[key] = value
}

// Get returns the raw text for key
func (f *Form) Get(key string) string {
	return f.values[key]
}

// Request builds the /predict payload from the form.
func (f *Form) Request() (models.PredictionRequest, error) {
	return models.NewPredictionRequest(f.values)
}

// StatusLine is the pending text for a request: predictions with a location
// fetch marine data first.
func StatusLine(req models.PredictionRequest) string {
	if req.HasLocation() {
		return StatusFetching
	}
	return StatusPredicting
}

// Outcome is the rendered result of an action. Prediction is set only when
// the backend accepted the request.
type Outcome struct {
	Lines      []string
	Prediction *models.Prediction
	Err        error
}

// Text joins the outcome lines for display.
func (o Outcome) Text() string {
	return strings.Join(o.Lines, "\n")
}

// Failed builds the outcome for an error.
func Failed(err error) Outcome {
	return Outcome{Lines: []string{render.Failure(err)}, Err: err}
}

// Submit validates the form, posts it to /predict and renders the result.
// Invalid input is reported without contacting the backend.
func Submit(ctx context.Context, client api.PredictionClient, form *Form) Outcome {
	req, err := form.Request()
	if err != nil {
		return Failed(err)
	}
	return Predict(ctx, client, req)
}

// Predict posts an already built request and renders the result.
func Predict(ctx context.Context, client api.PredictionClient, req models.PredictionRequest) Outcome {
	resp, err := client.Predict(ctx, req)
	if err != nil {
		return Failed(err)
	}

	lines := []string{render.Headline(
		render.Region(*resp, req.Region, render.DefaultRegion),
		render.Visibility(resp.VisibilityM),
		render.HybridSuffix(resp.DataSource),
	)}
	if resp.Features != nil && resp.DataSource == models.DataSourceHybrid {
		lines = append(lines, render.FeaturesInline(*resp.Features))
	}

	return Outcome{
		Lines:      lines,
		Prediction: &models.Prediction{Request: req, Response: *resp},
	}
}
