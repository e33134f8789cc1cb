package render

import (
	"fmt"

	"github.com/ngmaloney/divevis/internal/models"
)

// DefaultRegion is shown when neither the response nor the request names one.
const DefaultRegion = "GLOBAL"

// Region returns the first non-empty candidate, trying the response's region
// before the given fallbacks.
func Region(resp models.PredictionResponse, fallbacks ...string) string {
	if resp.Region != "" {
		return resp.Region
	}
	for _, f := range fallbacks {
		if f != "" {
			return f
		}
	}
	return ""
}

// Visibility formats a predicted visibility with 2 decimals, or N/A.
func Visibility(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return Fixed(*v, 2)
}

// OptionalVisibility is Visibility for readouts where a zero prediction is
// also shown as N/A.
func OptionalVisibility(v *float64) string {
	if v == nil || *v == 0 {
		return NotAvailable
	}
	return Fixed(*v, 2)
}

// HybridSuffix labels predictions that mixed fetched and manual data.
func HybridSuffix(ds models.DataSource) string {
	if ds == models.DataSourceHybrid {
		return " (Stormglass + manual)"
	}
	return ""
}

// SourceSuffix also labels predictions made purely from fetched data.
func SourceSuffix(ds models.DataSource) string {
	switch ds {
	case models.DataSourceHybrid:
		return " (Stormglass + manual)"
	case models.DataSourceStormglass:
		return " (Stormglass)"
	}
	return ""
}

// Headline is the main prediction line.
func Headline(region, visibility, suffix string) string {
	return fmt.Sprintf("Region %s: Predicted visibility %s m%s", region, visibility, suffix)
}

// FeaturesInline summarizes the model inputs on one line.
func FeaturesInline(f models.Features) string {
	return fmt.Sprintf("📊 Used: Swell %sm/%ss, Wind %sm/s @ %s°, Tide %sm, Turbidity %s, Chlorophyll %smg/m³",
		Fixed(f.SwellHeight, 1), Fixed(f.SwellPeriod, 1),
		Fixed(f.WindSpeedMS, 1), Fixed(f.WindDir, 0),
		Fixed(f.TideHeight, 2), Fixed(f.Turbidity, 2), Fixed(f.Chlorophyll, 2))
}

// FeaturesDetail lists the model inputs one per line.
func FeaturesDetail(f models.Features) []string {
	return []string{
		"📊 Used data:",
		fmt.Sprintf("🌊 Swell: %sm / %ss", Fixed(f.SwellHeight, 1), Fixed(f.SwellPeriod, 1)),
		fmt.Sprintf("💨 Wind: %sm/s @ %s°", Fixed(f.WindSpeedMS, 1), Fixed(f.WindDir, 0)),
		fmt.Sprintf("🌀 Tide: %sm", Fixed(f.TideHeight, 2)),
		fmt.Sprintf("💧 Turbidity: %s", Fixed(f.Turbidity, 2)),
		fmt.Sprintf("🟢 Chlorophyll: %smg/m³", Fixed(f.Chlorophyll, 2)),
	}
}

// PredictedVisibility is the prediction line under a weather summary.
func PredictedVisibility(v *float64) string {
	return fmt.Sprintf("🔮 Predicted Visibility: %s m", OptionalVisibility(v))
}
