// Package api talks to the visibility backend's JSON endpoints.
package api

import (
	"context"

	"github.com/ngmaloney/divevis/internal/models"
)

// PredictionClient defines the interface for requesting visibility predictions
type PredictionClient interface {
	// Predict posts a prediction request to /predict
	Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictionResponse, error)
}

// WeatherClient defines the interface for fetching current weather
type WeatherClient interface {
	// CurrentWeather posts a coordinate to /weather
	CurrentWeather(ctx context.Context, req models.WeatherRequest) (*models.WeatherResponse, error)
}

// DiveClient defines the interface for the dive log endpoints
type DiveClient interface {
	// ListDives returns dives in server order. A body that is not a JSON array
	// is reported as a *ShapeError.
	ListDives(ctx context.Context) ([]models.DiveRecord, error)

	// CreateDive posts a new dive. Only 201 Created counts as success.
	CreateDive(ctx context.Context, in models.DiveInput) (*models.DiveRecord, error)

	// UpdateDive puts the present fields of in onto dive id.
	UpdateDive(ctx context.Context, id string, in models.DiveInput) (*models.DiveRecord, error)

	// Logbook fetches the flat dive summary from /dives_data
	Logbook(ctx context.Context) (*models.Logbook, error)
}

// Client is everything the panels need from the backend.
type Client interface {
	PredictionClient
	WeatherClient
	DiveClient
}
