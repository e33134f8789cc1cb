package render

import (
	"strings"

	"github.com/ngmaloney/divevis/internal/models"
)

// WeatherSummary joins the labeled fields that are present with " | ".
func WeatherSummary(w models.WeatherResponse) string {
	var parts []string
	if w.Time != "" {
		parts = append(parts, "⏰ Time: "+w.Time)
	}
	if w.Temperature2m != nil {
		parts = append(parts, "🌡️ Temp: "+Number(*w.Temperature2m)+" °C")
	}
	if w.WindSpeedKnots != nil {
		parts = append(parts, "💨 Wind: "+Number(*w.WindSpeedKnots)+" kt")
	}
	if w.WindDirectionDeg != nil {
		parts = append(parts, "🧭 Dir: "+Number(*w.WindDirectionDeg)+"°")
	}
	return strings.Join(parts, " | ")
}

// WeatherCompact is the shorter summary shown above a chained prediction.
func WeatherCompact(w models.WeatherResponse) string {
	var parts []string
	if w.Time != "" {
		parts = append(parts, "⏰ "+w.Time)
	}
	if w.Temperature2m != nil {
		parts = append(parts, "🌡️ "+Number(*w.Temperature2m)+"°C")
	}
	if w.WindSpeedKnots != nil {
		parts = append(parts, "💨 "+Number(*w.WindSpeedKnots)+" kt")
	}
	if w.WindDirectionDeg != nil {
		parts = append(parts, "🧭 "+Number(*w.WindDirectionDeg)+"°")
	}
	return "Weather: " + strings.Join(parts, " | ")
}
