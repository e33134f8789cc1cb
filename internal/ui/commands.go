package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/divevis/internal/divelog"
	"github.com/ngmaloney/divevis/internal/models"
	"github.com/ngmaloney/divevis/internal/prediction"
	"github.com/ngmaloney/divevis/internal/weather"
)

// requestTimeout bounds one user action, which may chain two calls.
const requestTimeout = 60 * time.Second

// predictionDoneMsg is sent when the prediction form gets its result
type predictionDoneMsg struct {
	outcome prediction.Outcome
}

// weatherDoneMsg is sent when a weather panel action completes
type weatherDoneMsg struct {
	outcome prediction.Outcome
}

// divesLoadedMsg is sent when the dive list has been fetched
type divesLoadedMsg struct {
	result divelog.LoadResult
}

// diveSavedMsg is sent when a create or edit completes
type diveSavedMsg struct {
	result divelog.SaveResult
}

// logbookLoadedMsg is sent when /dives_data has been rendered
type logbookLoadedMsg struct {
	lines []string
}

// presetsLoadedMsg is sent when the preset store has been read
type presetsLoadedMsg struct {
	presets []models.Preset
	err     error
}

// submitPrediction posts the prediction form
func submitPrediction(c *Controller, req models.PredictionRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		outcome := prediction.Predict(ctx, c.Client, req)
		c.Record(models.SourceForm, outcome)
		return predictionDoneMsg{outcome: outcome}
	}
}

// fetchWeather shows the current weather at the panel coordinates
func fetchWeather(c *Controller, coords weather.Coordinates) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return weatherDoneMsg{outcome: weather.FetchWeather(ctx, c.Client, coords)}
	}
}

// weatherThenPredict chains the weather lookup into a prediction
func weatherThenPredict(c *Controller, coords weather.Coordinates) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		outcome := weather.WeatherThenPredict(ctx, c.Client, coords)
		c.Record(models.SourceWeather, outcome)
		return weatherDoneMsg{outcome: outcome}
	}
}

// stormglassPredict predicts from fetched marine data only
func stormglassPredict(c *Controller, coords weather.Coordinates, autoTurbidity bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		outcome := weather.StormglassPredict(ctx, c.Client, coords, autoTurbidity)
		c.Record(models.SourceStormglass, outcome)
		return weatherDoneMsg{outcome: outcome}
	}
}

// loadDives fetches the dive list
func loadDives(log *divelog.DiveLog) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return divesLoadedMsg{result: log.FetchDives(ctx)}
	}
}

// saveNewDive posts a dive at the selected point
func saveNewDive(log *divelog.DiveLog, at models.Coords, dlg divelog.DialogResult) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return diveSavedMsg{result: log.SaveNew(ctx, at, dlg)}
	}
}

// saveEditedDive puts the dialog's changes onto an existing dive
func saveEditedDive(log *divelog.DiveLog, id string, dlg divelog.DialogResult) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return diveSavedMsg{result: log.SaveEdit(ctx, id, dlg)}
	}
}

// loadLogbook fetches and renders /dives_data
func loadLogbook(c *Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return logbookLoadedMsg{lines: divelog.LoadLogbook(ctx, c.Client, c.location)}
	}
}

// loadPresets reads the preset store
func loadPresets(c *Controller) tea.Cmd {
	return func() tea.Msg {
		list, err := c.ListPresets()
		return presetsLoadedMsg{presets: list, err: err}
	}
}
