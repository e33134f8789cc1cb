// Package divelog owns the dive map and dive table: loading dives, creating
// them from a map selection and editing them from the table.
//
// Network work and state changes are split so the UI can run the former in a
// command and apply the latter on its update loop: Fetch*/Save* only talk to
// the backend, Apply* only touch state. Load, Create and Edit do both.
package divelog

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ngmaloney/divevis/internal/api"
	"github.com/ngmaloney/divevis/internal/models"
	"github.com/ngmaloney/divevis/internal/render"
)

// Status and notice texts.
const (
	StatusInitialized = "Map initialized. Select a point to add dives."
	StatusUnexpected  = "Unexpected response from /dives"
	NoticeSaved       = "Dive saved successfully! 🎉"
	NoticeUpdated     = "Dive updated successfully! 🎉"
)

// DiveLog is the dive map and table state.
type DiveLog struct {
	client api.DiveClient
	logger *zap.Logger
	now    func() time.Time

	Map    *Map
	Status string // one-line load state under the map
	Notice string // result of the last save or edit

	dives  []models.DiveRecord // newest first
	loaded bool
}

// New creates a dive log whose map starts at center.
func New(client api.DiveClient, center models.Coords, zoom int, logger *zap.Logger) *DiveLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiveLog{
		client: client,
		logger: logger.Named("divelog"),
		now:    time.Now,
		Map:    NewMap(center, zoom),
	}
}

// SetClock replaces the clock used for default dive dates.
func (d *DiveLog) SetClock(now func() time.Time) {
	d.now = now
}

// InitMap resets the map view and marks it ready.
func (d *DiveLog) InitMap() {
	d.Map.BaseLayer = GraticuleLayer
	d.Map.ClearMarkers()
	d.Map.Cursor = d.Map.Center
	d.Status = StatusInitialized
}

// Init readies the map and loads the dives.
func (d *DiveLog) Init(ctx context.Context) {
	d.InitMap()
	d.Load(ctx)
}

// LoadResult is the outcome of fetching the dive list.
type LoadResult struct {
	Dives []models.DiveRecord // server order
	Err   error
}

// FetchDives gets the dive list from the backend.
func (d *DiveLog) FetchDives(ctx context.Context) LoadResult {
	dives, err := d.client.ListDives(ctx)
	return LoadResult{Dives: dives, Err: err}
}

// ApplyLoad updates the table, markers and status from a fetch. A response
// that is not a list leaves the table and markers as they were.
func (d *DiveLog) ApplyLoad(res LoadResult) {
	if res.Err != nil {
		var shapeErr *api.ShapeError
		if errors.As(res.Err, &shapeErr) {
			d.Status = StatusUnexpected
			return
		}
		d.logger.Warn("Failed to load dives", zap.Error(res.Err))
		d.Status = "Failed to load dives: " + res.Err.Error()
		return
	}

	d.Map.ClearMarkers()
	d.dives = make([]models.DiveRecord, 0, len(res.Dives))
	for i := len(res.Dives) - 1; i >= 0; i-- {
		dive := res.Dives[i]
		d.dives = append(d.dives, dive)
		d.Map.AddMarker(Marker{
			DiveID: dive.ID,
			Lat:    dive.Lat,
			Lon:    dive.Lon,
			Popup:  render.DivePopup(dive),
		})
	}
	d.loaded = true
	d.Status = render.DiveCount(len(d.dives))
	d.logger.Debug("Dives loaded", zap.Int("count", len(d.dives)))
}

// Load fetches and shows the dives. Failures end up in Status.
func (d *DiveLog) Load(ctx context.Context) {
	d.ApplyLoad(d.FetchDives(ctx))
}

// Dives returns the loaded dives, newest first.
func (d *DiveLog) Dives() []models.DiveRecord {
	return d.dives
}

// Dive returns the dive with the given id.
func (d *DiveLog) Dive(id string) (models.DiveRecord, bool) {
	for _, dive := range d.dives {
		if dive.ID == id {
			return dive, true
		}
	}
	return models.DiveRecord{}, false
}

// Rows renders the table, newest dive first. A loaded but empty log has a
// single row holding the empty-state message.
func (d *DiveLog) Rows() [][]string {
	if d.loaded && len(d.dives) == 0 {
		row := make([]string, len(render.DiveColumns))
		row[0] = render.EmptyDivesMessage
		return [][]string{row}
	}
	rows := make([][]string, len(d.dives))
	for i, dive := range d.dives {
		rows[i] = render.DiveRow(dive)
	}
	return rows
}

// NewDiveForm starts the create dialog dated today.
func (d *DiveLog) NewDiveForm() DiveForm {
	return NewDiveForm(d.now())
}

// EditForm starts the edit dialog for dive id.
func (d *DiveLog) EditForm(id string) (DiveForm, bool) {
	dive, ok := d.Dive(id)
	if !ok {
		return DiveForm{}, false
	}
	return FormFromRecord(dive), true
}

// SaveResult is the outcome of a create or edit.
type SaveResult struct {
	Cancelled bool
	Notice    string
	Err       error
	Reload    *LoadResult // set when the save succeeded
}

func saveFailure(prefix string, err error) SaveResult {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return SaveResult{Notice: prefix + render.FailureMessage(err), Err: err}
	}
	return SaveResult{Notice: render.Failure(err), Err: err}
}

// SaveNew posts a dive at the selected point and refetches the list. A
// cancelled dialog makes no request.
func (d *DiveLog) SaveNew(ctx context.Context, at models.Coords, dlg DialogResult) SaveResult {
	if !dlg.Confirmed {
		return SaveResult{Cancelled: true}
	}

	in := dlg.Form.Input()
	in.Lat = models.Float(at.Lat)
	in.Lon = models.Float(at.Lon)

	if _, err := d.client.CreateDive(ctx, in); err != nil {
		return saveFailure("Failed to save dive: ", err)
	}

	reload := d.FetchDives(ctx)
	return SaveResult{Notice: NoticeSaved, Reload: &reload}
}

// SaveEdit puts the dialog's fields onto dive id and refetches the list. The
// dive's position is never changed.
func (d *DiveLog) SaveEdit(ctx context.Context, id string, dlg DialogResult) SaveResult {
	if !dlg.Confirmed {
		return SaveResult{Cancelled: true}
	}

	if _, err := d.client.UpdateDive(ctx, id, dlg.Form.Input()); err != nil {
		return saveFailure("Failed to update dive: ", err)
	}

	reload := d.FetchDives(ctx)
	return SaveResult{Notice: NoticeUpdated, Reload: &reload}
}

// ApplySave shows the outcome of a save.
func (d *DiveLog) ApplySave(res SaveResult) {
	if res.Cancelled {
		return
	}
	if res.Reload != nil {
		d.ApplyLoad(*res.Reload)
	}
	if res.Err != nil {
		d.logger.Warn("Dive save failed", zap.Error(res.Err))
	}
	d.Notice = res.Notice
}

// Create saves a new dive from the dialog at the selected point.
func (d *DiveLog) Create(ctx context.Context, at models.Coords, dlg DialogResult) {
	d.ApplySave(d.SaveNew(ctx, at, dlg))
}

// Edit saves the dialog's changes to dive id.
func (d *DiveLog) Edit(ctx context.Context, id string, dlg DialogResult) {
	d.ApplySave(d.SaveEdit(ctx, id, dlg))
}
