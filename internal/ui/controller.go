package ui

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ngmaloney/divevis/internal/api"
	"github.com/ngmaloney/divevis/internal/config"
	"github.com/ngmaloney/divevis/internal/divelog"
	"github.com/ngmaloney/divevis/internal/history"
	"github.com/ngmaloney/divevis/internal/models"
	"github.com/ngmaloney/divevis/internal/prediction"
	"github.com/ngmaloney/divevis/internal/presets"
	"github.com/ngmaloney/divevis/internal/render"
)

// ErrNoLocation is returned by the coordinate actions before any prediction
// with a location has succeeded.
var ErrNoLocation = errors.New("no prediction with a location")

// Pane identifies a registered panel
type Pane int

const (
	PanePrediction Pane = iota
	PaneWeather
	PaneDives
	PaneLogbook
)

func (p Pane) String() string {
	switch p {
	case PanePrediction:
		return "Prediction"
	case PaneWeather:
		return "Weather"
	case PaneDives:
		return "Dive log"
	case PaneLogbook:
		return "Logbook"
	}
	return "Unknown"
}

// Page declares which panels exist.
type Page struct {
	Prediction bool
	Weather    bool
	Dives      bool
	DiveMap    bool
	Logbook    bool
}

// PageFromConfig builds a page from the [panels] section.
func PageFromConfig(p config.PanelsConfig) Page {
	return Page{
		Prediction: p.Prediction,
		Weather:    p.Weather,
		Dives:      p.Dives,
		DiveMap:    p.DiveMap,
		Logbook:    p.Logbook,
	}
}

// Options are the optional collaborators of a Controller.
type Options struct {
	Page     Page
	Center   models.Coords // initial dive map center
	Zoom     int
	Presets  *presets.Repository // nil disables presets
	History  *history.Recorder   // nil disables history
	Logger   *zap.Logger
	Location *time.Location // logbook timestamps; nil means local time
}

// Controller owns the state shared between panels. Handlers receive it by
// pointer; only the UI update loop mutates it.
type Controller struct {
	Client  api.Client
	Presets *presets.Repository
	History *history.Recorder
	Logger  *zap.Logger

	// DiveLog is nil unless the page has both the dives panel and the map.
	DiveLog *divelog.DiveLog

	// LastPrediction is the most recent successful prediction from the
	// prediction form, replaced wholesale.
	LastPrediction *models.Prediction

	location *time.Location
	panes    []Pane
}

// NewController registers the panels the page declares.
func NewController(client api.Client, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	c := &Controller{
		Client:   client,
		Presets:  opts.Presets,
		History:  opts.History,
		Logger:   logger.Named("ui"),
		location: loc,
	}

	if opts.Page.Prediction {
		c.panes = append(c.panes, PanePrediction)
	}
	if opts.Page.Weather {
		c.panes = append(c.panes, PaneWeather)
	}
	if opts.Page.Dives && opts.Page.DiveMap {
		c.DiveLog = divelog.New(client, opts.Center, opts.Zoom, logger)
		c.panes = append(c.panes, PaneDives)
	}
	if opts.Page.Logbook {
		c.panes = append(c.panes, PaneLogbook)
	}

	c.Logger.Debug("Panels registered", zap.Int("count", len(c.panes)))
	return c
}

// Panes returns the registered panels in display order.
func (c *Controller) Panes() []Pane {
	return c.panes
}

// Has reports whether p is registered.
func (c *Controller) Has(p Pane) bool {
	for _, registered := range c.panes {
		if registered == p {
			return true
		}
	}
	return false
}

// Record stores a successful prediction in the history, if enabled. It runs
// off the update loop.
func (c *Controller) Record(source string, o prediction.Outcome) {
	if c.History == nil || o.Prediction == nil {
		return
	}
	if err := c.History.Record(source, *o.Prediction); err != nil {
		c.Logger.Warn("Failed to record prediction", zap.String("source", source), zap.Error(err))
	}
}

// Remember keeps a form prediction for the coordinate actions. Failed
// outcomes leave the previous prediction in place.
func (c *Controller) Remember(o prediction.Outcome) {
	if o.Prediction != nil {
		c.LastPrediction = o.Prediction
	}
}

// lastLocation is where the last prediction was made.
func (c *Controller) lastLocation() (models.Coords, error) {
	if c.LastPrediction == nil {
		return models.Coords{}, ErrNoLocation
	}
	loc, ok := c.LastPrediction.Location()
	if !ok {
		return models.Coords{}, ErrNoLocation
	}
	return loc, nil
}

// UseCoordinates returns the last prediction's coordinates formatted for the
// form fields.
func (c *Controller) UseCoordinates() (lat, lon string, err error) {
	loc, err := c.lastLocation()
	if err != nil {
		return "", "", err
	}
	return render.Coordinate(loc.Lat), render.Coordinate(loc.Lon), nil
}

// SaveDive prepares the create dialog for a dive at the last prediction's
// location.
func (c *Controller) SaveDive(now time.Time) (models.Coords, divelog.DiveForm, error) {
	loc, err := c.lastLocation()
	if err != nil {
		return models.Coords{}, divelog.DiveForm{}, err
	}
	return loc, divelog.FormFromPrediction(now, c.LastPrediction.Response), nil
}

// ListPresets returns the stored presets, or none when presets are disabled.
func (c *Controller) ListPresets() ([]models.Preset, error) {
	if c.Presets == nil {
		return nil, nil
	}
	return c.Presets.List()
}
