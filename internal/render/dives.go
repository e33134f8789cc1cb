package render

import (
	"fmt"
	"time"

	"github.com/ngmaloney/divevis/internal/models"
)

// DiveColumns are the dive table headers, in row order.
var DiveColumns = []string{
	"Date", "Lat", "Lon", "Depth (m)", "Breath hold (s)", "Tide (m)",
	"Visibility (m)", "Water (°C)", "Air (°C)", "Notes",
}

// EmptyDivesMessage fills the table when no dives exist.
const EmptyDivesMessage = "🤿 No dives logged yet. Select a point on the map to add your first dive!"

// Cell renders a measure for the table: the raw value, or "" when unset.
func Cell(m models.Measure) string {
	if !m.IsSet() {
		return ""
	}
	return m.String()
}

// PopupValue renders a measure for a map popup: the raw value, or N/A when
// unset or a JSON number zero. Unlike Cell, a numeric zero depth reads "N/A"
// here and "0" in the table; the text "0" reads "0" in both.
// TODO: settle on one missing-value rule for table cells and popups.
func PopupValue(m models.Measure) string {
	if !m.Truthy() {
		return NotAvailable
	}
	return m.String()
}

// DiveRow renders one table row.
func DiveRow(d models.DiveRecord) []string {
	return []string{
		d.DateOnly(),
		Coordinate(d.Lat),
		Coordinate(d.Lon),
		Cell(d.Depth),
		Cell(d.BreathHoldTime),
		Cell(d.TideHeight),
		Cell(d.Visibility),
		Cell(d.WaterTemp),
		Cell(d.OutsideTemp),
		Text(d.Notes),
	}
}

// DivePopup renders the marker popup lines for a dive.
func DivePopup(d models.DiveRecord) []string {
	return []string{
		d.DateOnly(),
		fmt.Sprintf("Depth: %sm", PopupValue(d.Depth)),
		fmt.Sprintf("Breath hold: %ss", PopupValue(d.BreathHoldTime)),
		fmt.Sprintf("Tide: %sm", PopupValue(d.TideHeight)),
		fmt.Sprintf("Visibility: %sm", PopupValue(d.Visibility)),
		fmt.Sprintf("Water temp: %s°C", PopupValue(d.WaterTemp)),
		fmt.Sprintf("Air temp: %s°C", PopupValue(d.OutsideTemp)),
		Text(d.Notes),
	}
}

// DiveCount is the status line after a successful load.
func DiveCount(n int) string {
	if n == 0 {
		return "No dives recorded yet."
	}
	return fmt.Sprintf("Loaded %d dive(s)", n)
}

// timestampLayouts are the shapes the backend has used for dive timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp shows a backend timestamp in loc. Timestamps without a zone are
// taken to be in loc already. Unparseable text is returned unchanged.
func Timestamp(ts string, loc *time.Location) string {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, ts, loc); err == nil {
			return t.In(loc).Format("2006-01-02 15:04:05")
		}
	}
	return Text(ts)
}

// Logbook renders the /dives_data list, one block of lines per dive.
func Logbook(book models.Logbook, loc *time.Location) []string {
	if len(book.Dives) == 0 {
		return []string{"No dives logged yet."}
	}

	var lines []string
	for i, d := range book.Dives {
		if i > 0 {
			lines = append(lines, "")
		}
		notes := Text(d.Notes)
		if notes == "" {
			notes = "—"
		}
		lines = append(lines,
			"📍 "+LatLon(d.Lat, d.Lon),
			fmt.Sprintf("Visibility: %s m", orNotAvailable(d.Visibility)),
			"Date: "+Timestamp(d.Timestamp, loc),
			"Notes: "+notes,
		)
	}
	return lines
}

func orNotAvailable(m models.Measure) string {
	if !m.IsSet() {
		return NotAvailable
	}
	return m.String()
}
