// Package render turns backend responses into the text shown in the panels.
// Every function is pure so the exact wording can be tested without a terminal.
package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/shopspring/decimal"

	"github.com/ngmaloney/divevis/internal/api"
	"github.com/ngmaloney/divevis/internal/models"
)

// NotAvailable stands in for missing values in popups and optional readouts.
const NotAvailable = "N/A"

// Fixed formats f with exactly places decimals, rounding half away from zero
// on the shortest decimal form of f, so 12.345 gives "12.35".
func Fixed(f float64, places int32) string {
	return decimal.NewFromFloat(f).StringFixed(places)
}

// Number formats a plain JSON number (12, 12.5).
func Number(f float64) string {
	return models.FormatNumber(f)
}

// Failure renders any error from an action as a single status line.
func Failure(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return "Error: " + apiErr.Message
	}
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		return "Error: " + validationErr.Error()
	}
	return "Request failed: " + err.Error()
}

// FailureMessage is the bare reason used after a prefix such as
// "Failed to save dive: ".
func FailureMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// Text strips terminal control sequences and line breaks from free text that
// came from the backend.
func Text(s string) string {
	s = ansi.Strip(s)
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(s)
	return s
}

// Coordinate formats one coordinate with 4 decimals.
func Coordinate(f float64) string {
	return Fixed(f, 4)
}

// LatLon formats a coordinate pair.
func LatLon(lat, lon float64) string {
	return fmt.Sprintf("%s, %s", Coordinate(lat), Coordinate(lon))
}
