package divelog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ngmaloney/divevis/internal/api"
	"github.com/ngmaloney/divevis/internal/fakebackend"
	"github.com/ngmaloney/divevis/internal/models"
	"github.com/ngmaloney/divevis/internal/render"
)

var jersey = models.Coords{Lat: 49.2138, Lon: -2.1358}

// stubDives is a scripted dive client.
type stubDives struct {
	list    []models.DiveRecord
	listErr error
	saveErr error
	calls   int
}

func (s *stubDives) ListDives(ctx context.Context) ([]models.DiveRecord, error) {
	s.calls++
	return s.list, s.listErr
}

func (s *stubDives) CreateDive(ctx context.Context, in models.DiveInput) (*models.DiveRecord, error) {
	s.calls++
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	return &models.DiveRecord{ID: "new"}, nil
}

func (s *stubDives) UpdateDive(ctx context.Context, id string, in models.DiveInput) (*models.DiveRecord, error) {
	s.calls++
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	return &models.DiveRecord{ID: id}, nil
}

func (s *stubDives) Logbook(ctx context.Context) (*models.Logbook, error) {
	s.calls++
	return &models.Logbook{}, s.listErr
}

func newFakeLog(t *testing.T) (*DiveLog, *fakebackend.Server) {
	t.Helper()
	fake := fakebackend.New(nil)
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)

	client := api.NewHTTPClient(api.Config{BaseURL: ts.URL, Timeout: 5 * time.Second}, nil)
	return New(client, jersey, 8, nil), fake
}

func TestInit(t *testing.T) {
	log := New(&stubDives{}, jersey, 8, nil)
	log.InitMap()

	if log.Status != StatusInitialized {
		t.Errorf("Status = %q", log.Status)
	}
	if log.Map.BaseLayer != GraticuleLayer || len(log.Map.Markers()) != 0 {
		t.Errorf("map = %+v", log.Map)
	}
	if log.Map.Zoom != 8 || log.Map.Center != jersey {
		t.Errorf("view = %v @ %d", log.Map.Center, log.Map.Zoom)
	}
}

func TestLoad_Empty(t *testing.T) {
	log := New(&stubDives{list: []models.DiveRecord{}}, jersey, 8, nil)
	log.Init(context.Background())

	if log.Status != "No dives recorded yet." {
		t.Errorf("Status = %q", log.Status)
	}
	rows := log.Rows()
	if len(rows) != 1 || rows[0][0] != render.EmptyDivesMessage {
		t.Errorf("Rows() = %v, want the empty-state row", rows)
	}
}

func TestLoad_NotAList(t *testing.T) {
	stub := &stubDives{list: []models.DiveRecord{{ID: "a", Lat: 49, Lon: -2}}}
	log := New(stub, jersey, 8, nil)
	log.Load(context.Background())

	stub.list = nil
	stub.listErr = &api.ShapeError{Endpoint: "/dives", Reason: "got object"}
	log.Load(context.Background())

	if log.Status != "Unexpected response from /dives" {
		t.Errorf("Status = %q", log.Status)
	}
	if len(log.Dives()) != 1 || len(log.Map.Markers()) != 1 {
		t.Errorf("table or markers changed: %d dives, %d markers", len(log.Dives()), len(log.Map.Markers()))
	}
}

func TestLoad_NotAListOnFirstLoad(t *testing.T) {
	log := New(&stubDives{listErr: &api.ShapeError{Endpoint: "/dives", Reason: "got object"}}, jersey, 8, nil)
	log.Load(context.Background())

	if log.Status != "Unexpected response from /dives" {
		t.Errorf("Status = %q", log.Status)
	}
	if rows := log.Rows(); len(rows) != 0 {
		t.Errorf("Rows() = %v, want none", rows)
	}
}

func TestLoad_TransportFailure(t *testing.T) {
	log := New(&stubDives{listErr: &api.TransportError{Op: "GET /dives", Err: errors.New("connection refused")}}, jersey, 8, nil)
	log.Load(context.Background())

	if log.Status != "Failed to load dives: GET /dives: connection refused" {
		t.Errorf("Status = %q", log.Status)
	}
}

func TestLoad_NewestFirst(t *testing.T) {
	log := New(&stubDives{list: []models.DiveRecord{
		{ID: "old", Lat: 49.1, Lon: -2.1, Date: "2024-05-01T09:00:00"},
		{ID: "new", Lat: 49.2, Lon: -2.2, Date: "2024-06-01T09:00:00", Visibility: models.MeasureOf("7")},
	}}, jersey, 8, nil)
	log.Load(context.Background())

	if log.Status != "Loaded 2 dive(s)" {
		t.Errorf("Status = %q", log.Status)
	}
	rows := log.Rows()
	if rows[0][0] != "2024-06-01" || rows[1][0] != "2024-05-01" {
		t.Errorf("row dates = %q, %q", rows[0][0], rows[1][0])
	}
	markers := log.Map.Markers()
	if len(markers) != 2 || markers[0].DiveID != "new" {
		t.Fatalf("markers = %+v", markers)
	}
	if markers[0].Popup[4] != "Visibility: 7m" {
		t.Errorf("popup = %v", markers[0].Popup)
	}
}

func TestCreate_NewestRowFirst(t *testing.T) {
	log, fake := newFakeLog(t)
	fake.Seed(models.DiveRecord{ID: "seeded", Lat: 49.1, Lon: -2.1, Date: "2024-01-01", Notes: "older"})
	ctx := context.Background()
	log.Init(ctx)

	form := log.NewDiveForm()
	form.Depth = "12"
	form.Notes = "kelp forest"
	log.Create(ctx, models.Coords{Lat: 49.25, Lon: -2.05}, Confirm(form))

	if log.Notice != NoticeSaved {
		t.Errorf("Notice = %q", log.Notice)
	}
	rows := log.Rows()
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if got := rows[0][len(rows[0])-1]; got != "kelp forest" {
		t.Errorf("first row notes = %q, want the new dive", got)
	}
	if rows[0][1] != "49.2500" || rows[0][3] != "12" {
		t.Errorf("first row = %v", rows[0])
	}
	if log.Status != "Loaded 2 dive(s)" {
		t.Errorf("Status = %q", log.Status)
	}
}

func TestCreate_CreatedWithoutBody(t *testing.T) {
	var posted atomic.Bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			posted.Store(true)
			w.WriteHeader(http.StatusCreated)
		default:
			if !posted.Load() {
				w.Write([]byte(`[]`))
				return
			}
			w.Write([]byte(`[{"id":"x","lat":49.25,"lon":-2.05,"depth":"0"}]`))
		}
	}))
	t.Cleanup(ts.Close)

	client := api.NewHTTPClient(api.Config{BaseURL: ts.URL, Timeout: 5 * time.Second}, nil)
	log := New(client, jersey, 8, nil)
	log.Create(context.Background(), models.Coords{Lat: 49.25, Lon: -2.05}, Confirm(DiveForm{Depth: "0"}))

	if log.Notice != NoticeSaved {
		t.Errorf("Notice = %q, want %q", log.Notice, NoticeSaved)
	}
	if log.Status != "Loaded 1 dive(s)" {
		t.Errorf("Status = %q, want a reload after 201", log.Status)
	}
	if markers := log.Map.Markers(); len(markers) != 1 || markers[0].Popup[1] != "Depth: 0m" {
		t.Errorf("markers = %+v", markers)
	}
}

func TestCreate_Cancelled(t *testing.T) {
	log, fake := newFakeLog(t)
	before := fake.Requests()

	log.Create(context.Background(), jersey, Cancelled)

	if got := fake.Requests() - before; got != 0 {
		t.Errorf("cancelled dialog made %d requests", got)
	}
	if log.Notice != "" {
		t.Errorf("Notice = %q, want none", log.Notice)
	}
}

func TestEdit_Cancelled(t *testing.T) {
	stub := &stubDives{}
	log := New(stub, jersey, 8, nil)

	log.Edit(context.Background(), "abc", Cancelled)

	if stub.calls != 0 {
		t.Errorf("cancelled edit made %d calls", stub.calls)
	}
}

func TestSave_Failures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		edit bool
		want string
	}{
		{"create rejected", &api.APIError{StatusCode: 400, Message: "Missing or invalid 'lat'/'lon'"}, false, "Failed to save dive: Missing or invalid 'lat'/'lon'"},
		{"create transport", &api.TransportError{Op: "POST /dives", Err: errors.New("timeout")}, false, "Request failed: POST /dives: timeout"},
		{"edit rejected", &api.APIError{StatusCode: 404, Message: "Dive not found"}, true, "Failed to update dive: Dive not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubDives{saveErr: tt.err}
			log := New(stub, jersey, 8, nil)

			if tt.edit {
				log.Edit(context.Background(), "gone", Confirm(DiveForm{Depth: "3"}))
			} else {
				log.Create(context.Background(), jersey, Confirm(DiveForm{Depth: "3"}))
			}

			if log.Notice != tt.want {
				t.Errorf("Notice = %q, want %q", log.Notice, tt.want)
			}
			if stub.calls != 1 {
				t.Errorf("calls = %d, want 1 (no reload after a failure)", stub.calls)
			}
		})
	}
}

func TestEdit_KeepsPosition(t *testing.T) {
	log, fake := newFakeLog(t)
	fake.Seed(models.DiveRecord{ID: "d1", Lat: 49.1, Lon: -2.1, Date: "2024-01-01T08:00:00", Depth: models.NumberMeasure(0), Visibility: models.MeasureOf("5")})
	ctx := context.Background()
	log.Load(ctx)

	form, ok := log.EditForm("d1")
	if !ok {
		t.Fatal("EditForm() found no dive")
	}
	if form.Depth != "" || form.Visibility != "5" || form.Date != "2024-01-01" {
		t.Errorf("prefill = %+v", form)
	}

	form.Visibility = "9"
	log.Edit(ctx, "d1", Confirm(form))

	if log.Notice != NoticeUpdated {
		t.Errorf("Notice = %q", log.Notice)
	}
	stored := fake.Dives()[0]
	if stored.Lat != 49.1 || stored.Lon != -2.1 {
		t.Errorf("position changed to %v, %v", stored.Lat, stored.Lon)
	}
	if stored.Visibility.String() != "9" {
		t.Errorf("visibility = %q, want 9", stored.Visibility)
	}
	if !strings.HasPrefix(log.Rows()[0][6], "9") {
		t.Errorf("table not reloaded: %v", log.Rows()[0])
	}
}

func TestEditForm_Unknown(t *testing.T) {
	log := New(&stubDives{}, jersey, 8, nil)
	if _, ok := log.EditForm("missing"); ok {
		t.Error("EditForm() should report unknown dives")
	}
}

func TestLoadLogbook(t *testing.T) {
	fake := fakebackend.New(nil)
	fake.Seed(models.DiveRecord{ID: "d1", Lat: 49.1, Lon: -2.2, Date: "2024-05-01T10:00:00Z", Visibility: models.MeasureOf("6")})

	client := api.NewHTTPClient(api.Config{}, nil)
	ts := httptest.NewServer(fake)
	defer ts.Close()
	client.SetBaseURL(ts.URL)

	lines := LoadLogbook(context.Background(), client, time.UTC)
	if len(lines) != 4 || lines[0] != "📍 49.1000, -2.2000" || lines[2] != "Date: 2024-05-01 10:00:00" {
		t.Errorf("LoadLogbook() = %v", lines)
	}

	failing := &stubDives{listErr: &api.APIError{StatusCode: 500, Message: "boom"}}
	if got := LoadLogbook(context.Background(), failing, time.UTC); len(got) != 1 || got[0] != "Failed to load logbook: boom" {
		t.Errorf("LoadLogbook(failing) = %v", got)
	}
}
