package models

// WeatherRequest is the body of POST /weather. Coordinates that could not be
// parsed are sent as null and rejected by the backend.
type WeatherRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// WeatherResponse holds current conditions. Each field is independently optional.
type WeatherResponse struct {
	Source           string   `json:"source,omitempty"`
	Time             string   `json:"time,omitempty"`
	Temperature2m    *float64 `json:"temperature_2m,omitempty"`    // °C
	WindSpeedKnots   *float64 `json:"wind_speed_knots,omitempty"`  // kt
	WindDirectionDeg *float64 `json:"wind_direction_deg,omitempty"` // degrees
}
