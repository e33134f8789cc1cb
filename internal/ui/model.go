package ui

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/ngmaloney/divevis/internal/models"
	"github.com/ngmaloney/divevis/internal/prediction"
	"github.com/ngmaloney/divevis/internal/render"
	"github.com/ngmaloney/divevis/internal/weather"
)

// NoticeNoLocation is shown by the coordinate actions before a usable prediction.
const NoticeNoLocation = "Run a prediction with a location first."

// NoticeNoDiveLog is shown by the save action when the page has no dive log.
const NoticeNoDiveLog = "The dive log is not shown on this page."

// Map grid bounds
const (
	mapMinWidth  = 20
	mapMaxWidth  = 90
	mapHeight    = 15
	presetHeight = 8
)

// Model represents the application's state
type Model struct {
	ctrl   *Controller
	now    func() time.Time
	active int // index into ctrl.Panes()
	width  int
	height int

	// Prediction form
	predInputs  []textinput.Model
	predFocus   int
	predLines   []string
	predPending string

	// Weather panel
	weatherInputs  []textinput.Model // lat, lon
	weatherFocus   int
	presetList     list.Model
	presets        []models.Preset
	autoTurbidity  bool
	weatherLines   []string
	weatherPending string

	// Dive log
	diveTable    table.Model
	tableFocus   bool // table selected instead of map
	dialog       *diveDialog
	divesPending bool

	// Logbook
	logbookLines   []string
	logbookPending bool

	notice  string // result of the last coordinate or dive action
	spinner spinner.Model
}

// NewModel creates a model showing the controller's panels
func NewModel(ctrl *Controller) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := Model{
		ctrl:       ctrl,
		now:        time.Now,
		spinner:    s,
		presetList: createPresetList(nil, 40, presetHeight),
	}

	for i, field := range prediction.Fields {
		m.predInputs = append(m.predInputs, newInput(field.Placeholder, i == 0))
	}
	m.weatherInputs = []textinput.Model{
		newInput("Latitude", true),
		newInput("Longitude", false),
	}

	columns := make([]table.Column, len(render.DiveColumns))
	for i, title := range render.DiveColumns {
		columns[i] = table.Column{Title: title, Width: max(8, lipgloss.Width(title))}
	}
	columns[0].Width = 12
	columns[len(columns)-1].Width = 30
	m.diveTable = table.New(
		table.WithColumns(columns),
		table.WithHeight(8),
	)

	if ctrl.DiveLog != nil {
		ctrl.DiveLog.InitMap()
		m.divesPending = true
	}
	if ctrl.Has(PaneLogbook) {
		m.logbookPending = true
	}

	return m
}

func newInput(placeholder string, focused bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 40
	ti.Width = 30
	if focused {
		ti.Focus()
	}
	return ti
}

// Init starts the initial loads of every registered panel
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	if m.ctrl.Has(PaneWeather) {
		cmds = append(cmds, loadPresets(m.ctrl))
	}
	if m.ctrl.DiveLog != nil {
		cmds = append(cmds, loadDives(m.ctrl.DiveLog))
	}
	if m.ctrl.Has(PaneLogbook) {
		cmds = append(cmds, loadLogbook(m.ctrl))
	}
	return tea.Batch(cmds...)
}

// ActivePane returns the focused panel
func (m Model) ActivePane() Pane {
	panes := m.ctrl.Panes()
	if len(panes) == 0 {
		return -1
	}
	return panes[m.active]
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.presetList.SetSize(min(60, max(20, msg.Width/2)), presetHeight)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case predictionDoneMsg:
		m.predPending = ""
		m.predLines = msg.outcome.Lines
		m.ctrl.Remember(msg.outcome)
		return m, nil

	case weatherDoneMsg:
		m.weatherPending = ""
		m.weatherLines = msg.outcome.Lines
		return m, nil

	case presetsLoadedMsg:
		if msg.err != nil {
			m.ctrl.Logger.Warn("Failed to load presets", zap.Error(msg.err))
			return m, nil
		}
		m.presets = msg.presets
		m.presetList = createPresetList(msg.presets, min(60, max(20, m.width/2)), presetHeight)
		return m, nil

	case divesLoadedMsg:
		m.divesPending = false
		m.ctrl.DiveLog.ApplyLoad(msg.result)
		m.refreshTable()
		return m, nil

	case diveSavedMsg:
		m.divesPending = false
		m.ctrl.DiveLog.ApplySave(msg.result)
		m.notice = m.ctrl.DiveLog.Notice
		m.refreshTable()
		if msg.result.Reload != nil && m.ctrl.Has(PaneLogbook) {
			m.logbookPending = true
			return m, loadLogbook(m.ctrl)
		}
		return m, nil

	case logbookLoadedMsg:
		m.logbookPending = false
		m.logbookLines = msg.lines
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey routes keys: the dialog first, then global keys, then the pane
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.dialog != nil {
		return m.handleDialog(msg)
	}

	switch msg.String() {
	case "tab":
		return m.switchPane(1)
	case "shift+tab":
		return m.switchPane(-1)
	}

	switch m.ActivePane() {
	case PanePrediction:
		return m.handlePrediction(msg)
	case PaneWeather:
		return m.handleWeather(msg)
	case PaneDives:
		return m.handleDives(msg)
	case PaneLogbook:
		return m.handleLogbook(msg)
	}
	return m, nil
}

func (m Model) switchPane(delta int) (tea.Model, tea.Cmd) {
	n := len(m.ctrl.Panes())
	if n == 0 {
		return m, nil
	}
	m.active = (m.active + delta + n) % n
	return m, nil
}

// handlePrediction handles keyboard input in the prediction form
func (m Model) handlePrediction(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up":
		return m, m.focusPrediction(m.predFocus - 1)
	case "down":
		return m, m.focusPrediction(m.predFocus + 1)

	case "enter":
		form := prediction.NewForm()
		for i, field := range prediction.Fields {
			form.Set(field.Key, m.predInputs[i].Value())
		}
		req, err := form.Request()
		if err != nil {
			m.predLines = prediction.Failed(err).Lines
			return m, nil
		}
		m.predPending = prediction.StatusLine(req)
		m.predLines = nil
		return m, submitPrediction(m.ctrl, req)

	case "ctrl+u":
		lat, lon, err := m.ctrl.UseCoordinates()
		if err != nil {
			m.notice = actionNotice(err)
			return m, nil
		}
		m.setPredictionValue(models.KeyLat, lat)
		m.setPredictionValue(models.KeyLon, lon)
		m.weatherInputs[0].SetValue(lat)
		m.weatherInputs[1].SetValue(lon)
		m.notice = ""
		return m, nil

	case "ctrl+s":
		if m.ctrl.DiveLog == nil {
			m.notice = NoticeNoDiveLog
			return m, nil
		}
		at, form, err := m.ctrl.SaveDive(m.now())
		if err != nil {
			m.notice = actionNotice(err)
			return m, nil
		}
		m.dialog = newDiveDialog(dialogCreate, form)
		m.dialog.at = at
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.predInputs[m.predFocus], cmd = m.predInputs[m.predFocus].Update(msg)
	return m, cmd
}

func (m *Model) focusPrediction(i int) tea.Cmd {
	m.predInputs[m.predFocus].Blur()
	m.predFocus = (i + len(m.predInputs)) % len(m.predInputs)
	return m.predInputs[m.predFocus].Focus()
}

func (m *Model) setPredictionValue(key, value string) {
	for i, field := range prediction.Fields {
		if field.Key == key {
			m.predInputs[i].SetValue(value)
		}
	}
}

func (m Model) weatherCoordinates() weather.Coordinates {
	return weather.Coordinates{Lat: m.weatherInputs[0].Value(), Lon: m.weatherInputs[1].Value()}
}

// handleWeather handles keyboard input in the weather panel
func (m Model) handleWeather(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "down":
		m.weatherInputs[m.weatherFocus].Blur()
		m.weatherFocus = 1 - m.weatherFocus
		return m, m.weatherInputs[m.weatherFocus].Focus()

	case "pgup":
		m.presetList.CursorUp()
		return m, nil
	case "pgdown":
		m.presetList.CursorDown()
		return m, nil

	case "ctrl+o":
		preset, ok := selectedPreset(m.presetList)
		if !ok {
			return m, nil
		}
		c := m.weatherCoordinates().ApplyPreset(models.FormatNumber(preset.Latitude), models.FormatNumber(preset.Longitude))
		m.weatherInputs[0].SetValue(c.Lat)
		m.weatherInputs[1].SetValue(c.Lon)
		return m, nil

	case "ctrl+t":
		m.autoTurbidity = !m.autoTurbidity
		return m, nil

	case "enter":
		m.weatherPending = weather.StatusFetching
		m.weatherLines = nil
		return m, fetchWeather(m.ctrl, m.weatherCoordinates())
	case "ctrl+p":
		m.weatherPending = weather.StatusChained
		m.weatherLines = nil
		return m, weatherThenPredict(m.ctrl, m.weatherCoordinates())
	case "ctrl+g":
		m.weatherPending = weather.StatusStormglass
		m.weatherLines = nil
		return m, stormglassPredict(m.ctrl, m.weatherCoordinates(), m.autoTurbidity)
	}

	var cmd tea.Cmd
	m.weatherInputs[m.weatherFocus], cmd = m.weatherInputs[m.weatherFocus].Update(msg)
	return m, cmd
}

func (m Model) mapSize() (int, int) {
	return max(mapMinWidth, min(mapMaxWidth, m.width-8)), mapHeight
}

// handleDives handles keyboard input on the dive map and table
func (m Model) handleDives(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	log := m.ctrl.DiveLog

	switch msg.String() {
	case "f":
		m.tableFocus = !m.tableFocus
		if m.tableFocus {
			m.diveTable.Focus()
		} else {
			m.diveTable.Blur()
		}
		return m, nil
	case "r":
		m.divesPending = true
		return m, loadDives(log)
	}

	if m.tableFocus {
		if msg.String() == "enter" {
			id, ok := m.selectedDiveID()
			if !ok {
				return m, nil
			}
			form, ok := log.EditForm(id)
			if !ok {
				return m, nil
			}
			m.dialog = newDiveDialog(dialogEdit, form)
			m.dialog.diveID = id
			return m, textinput.Blink
		}
		var cmd tea.Cmd
		m.diveTable, cmd = m.diveTable.Update(msg)
		return m, cmd
	}

	w, h := m.mapSize()
	switch msg.String() {
	case "left", "h":
		log.Map.MoveCursor(-1, 0, w, h)
	case "right", "l":
		log.Map.MoveCursor(1, 0, w, h)
	case "up", "k":
		log.Map.MoveCursor(0, -1, w, h)
	case "down", "j":
		log.Map.MoveCursor(0, 1, w, h)
	case "+", "=":
		log.Map.SetZoom(log.Map.Zoom + 1)
	case "-":
		log.Map.SetZoom(log.Map.Zoom - 1)
	case "c":
		log.Map.Recenter()
	case "enter":
		m.dialog = newDiveDialog(dialogCreate, log.NewDiveForm())
		m.dialog.at = log.Map.Cursor
		return m, textinput.Blink
	}
	return m, nil
}

// selectedDiveID maps the table cursor to a dive
func (m Model) selectedDiveID() (string, bool) {
	dives := m.ctrl.DiveLog.Dives()
	i := m.diveTable.Cursor()
	if i < 0 || i >= len(dives) {
		return "", false
	}
	return dives[i].ID, true
}

// handleDialog feeds keys to the open dive dialog
func (m Model) handleDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	result, done, cmd := m.dialog.update(msg)
	if !done {
		return m, cmd
	}

	dlg := m.dialog
	m.dialog = nil
	if !result.Confirmed {
		return m, nil
	}

	m.divesPending = true
	if dlg.mode == dialogEdit {
		return m, saveEditedDive(m.ctrl.DiveLog, dlg.diveID, result)
	}
	return m, saveNewDive(m.ctrl.DiveLog, dlg.at, result)
}

// handleLogbook handles keyboard input in the logbook
func (m Model) handleLogbook(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "r" {
		m.logbookPending = true
		return m, loadLogbook(m.ctrl)
	}
	return m, nil
}

// refreshTable copies the dive log rows into the table widget
func (m *Model) refreshTable() {
	rows := m.ctrl.DiveLog.Rows()
	tableRows := make([]table.Row, len(rows))
	for i, r := range rows {
		tableRows[i] = table.Row(r)
	}
	m.diveTable.SetRows(tableRows)
	if m.diveTable.Cursor() >= len(tableRows) {
		m.diveTable.SetCursor(max(0, len(tableRows)-1))
	}
}

// Dialog reports whether the dive dialog is open
func (m Model) Dialog() bool {
	return m.dialog != nil
}

// Notice returns the last action notice
func (m Model) Notice() string {
	return m.notice
}

// SetClock replaces the clock used for default dive dates
func (m *Model) SetClock(now func() time.Time) {
	m.now = now
	if m.ctrl.DiveLog != nil {
		m.ctrl.DiveLog.SetClock(now)
	}
}

// actionNotice turns a controller action error into the notice line.
func actionNotice(err error) string {
	if errors.Is(err, ErrNoLocation) {
		return NoticeNoLocation
	}
	return err.Error()
}
