package divelog

import (
	"strings"
	"time"

	"github.com/ngmaloney/divevis/internal/models"
	"github.com/ngmaloney/divevis/internal/render"
)

// DiveForm holds the raw text of the dive dialog.
type DiveForm struct {
	Date           string
	Depth          string
	BreathHoldTime string
	TideHeight     string
	Visibility     string
	WaterTemp      string
	OutsideTemp    string
	Notes          string
}

// FormField describes one dialog input.
type FormField struct {
	Label string
	Value func(*DiveForm) *string
}

// FormFields lists the dialog inputs in the order they are asked for.
var FormFields = []FormField{
	{"Date (YYYY-MM-DD)", func(f *DiveForm) *string { return &f.Date }},
	{"Depth (m)", func(f *DiveForm) *string { return &f.Depth }},
	{"Breath hold (s)", func(f *DiveForm) *string { return &f.BreathHoldTime }},
	{"Tide height (m)", func(f *DiveForm) *string { return &f.TideHeight }},
	{"Visibility (m)", func(f *DiveForm) *string { return &f.Visibility }},
	{"Water temperature (°C)", func(f *DiveForm) *string { return &f.WaterTemp }},
	{"Air temperature (°C)", func(f *DiveForm) *string { return &f.OutsideTemp }},
	{"Notes", func(f *DiveForm) *string { return &f.Notes }},
}

// DialogResult is what the dive dialog hands back: the form and whether the
// user confirmed it. A cancelled dialog must not reach the backend.
type DialogResult struct {
	Form      DiveForm
	Confirmed bool
}

// Cancelled is the result of a dismissed dialog.
var Cancelled = DialogResult{}

// Confirm wraps a submitted form.
func Confirm(form DiveForm) DialogResult {
	return DialogResult{Form: form, Confirmed: true}
}

// NewDiveForm starts a dialog for a new dive dated today (UTC).
func NewDiveForm(now time.Time) DiveForm {
	return DiveForm{Date: now.UTC().Format("2006-01-02")}
}

// FormFromRecord pre-fills the dialog for editing. Unset values and numeric
// zeros start blank; text is kept as typed, "0" included.
func FormFromRecord(d models.DiveRecord) DiveForm {
	prefill := func(m models.Measure) string {
		if !m.Truthy() {
			return ""
		}
		return m.String()
	}
	return DiveForm{
		Date:           d.DateOnly(),
		Depth:          prefill(d.Depth),
		BreathHoldTime: prefill(d.BreathHoldTime),
		TideHeight:     prefill(d.TideHeight),
		Visibility:     prefill(d.Visibility),
		WaterTemp:      prefill(d.WaterTemp),
		OutsideTemp:    prefill(d.OutsideTemp),
		Notes:          d.Notes,
	}
}

// FormFromPrediction pre-fills a new dive with what a prediction reported.
func FormFromPrediction(now time.Time, resp models.PredictionResponse) DiveForm {
	form := NewDiveForm(now)
	if resp.VisibilityM != nil {
		form.Visibility = render.Fixed(*resp.VisibilityM, 2)
	}
	if resp.Features != nil {
		form.TideHeight = render.Fixed(resp.Features.TideHeight, 2)
	}
	return form
}

// Input converts the form to a payload. Blank fields are left out.
func (f DiveForm) Input() models.DiveInput {
	return models.DiveInput{
		Date:           strings.TrimSpace(f.Date),
		Depth:          models.MeasureOf(f.Depth),
		BreathHoldTime: models.MeasureOf(f.BreathHoldTime),
		TideHeight:     models.MeasureOf(f.TideHeight),
		Visibility:     models.MeasureOf(f.Visibility),
		WaterTemp:      models.MeasureOf(f.WaterTemp),
		OutsideTemp:    models.MeasureOf(f.OutsideTemp),
		Notes:          strings.TrimSpace(f.Notes),
	}
}
