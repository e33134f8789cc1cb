package divelog

import (
	"context"
	"time"

	"github.com/ngmaloney/divevis/internal/api"
	"github.com/ngmaloney/divevis/internal/render"
)

// LoadLogbook fetches /dives_data and renders it with timestamps in loc. A
// failed fetch renders as a single error line.
func LoadLogbook(ctx context.Context, client api.DiveClient, loc *time.Location) []string {
	book, err := client.Logbook(ctx)
	if err != nil {
		return []string{"Failed to load logbook: " + render.FailureMessage(err)}
	}
	return render.Logbook(*book, loc)
}
