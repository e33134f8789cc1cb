package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/divevis/internal/divelog"
	"github.com/ngmaloney/divevis/internal/models"
	"github.com/ngmaloney/divevis/internal/render"
)

// dialogMode says what a confirmed dialog does
type dialogMode int

const (
	dialogCreate dialogMode = iota
	dialogEdit
)

// diveDialog collects every dive field in one step
type diveDialog struct {
	mode   dialogMode
	at     models.Coords // create: where the dive goes
	diveID string        // edit: which dive changes
	inputs []textinput.Model
	focus  int
}

func newDiveDialog(mode dialogMode, form divelog.DiveForm) *diveDialog {
	d := &diveDialog{mode: mode}
	for i, field := range divelog.FormFields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 200
		ti.Width = 40
		ti.SetValue(*field.Value(&form))
		if i == 0 {
			ti.Focus()
		}
		d.inputs = append(d.inputs, ti)
	}
	return d
}

// form reads the inputs back into a DiveForm
func (d *diveDialog) form() divelog.DiveForm {
	var form divelog.DiveForm
	for i, field := range divelog.FormFields {
		*field.Value(&form) = d.inputs[i].Value()
	}
	return form
}

func (d *diveDialog) setFocus(i int) tea.Cmd {
	d.inputs[d.focus].Blur()
	d.focus = (i + len(d.inputs)) % len(d.inputs)
	return d.inputs[d.focus].Focus()
}

// update handles a key. done is set once the dialog is confirmed or
// cancelled.
func (d *diveDialog) update(msg tea.KeyMsg) (result divelog.DialogResult, done bool, cmd tea.Cmd) {
	switch msg.String() {
	case "esc":
		return divelog.Cancelled, true, nil
	case "ctrl+s":
		return divelog.Confirm(d.form()), true, nil
	case "enter":
		if d.focus == len(d.inputs)-1 {
			return divelog.Confirm(d.form()), true, nil
		}
		return result, false, d.setFocus(d.focus + 1)
	case "down", "tab":
		return result, false, d.setFocus(d.focus + 1)
	case "up", "shift+tab":
		return result, false, d.setFocus(d.focus - 1)
	}

	d.inputs[d.focus], cmd = d.inputs[d.focus].Update(msg)
	return result, false, cmd
}

func (d *diveDialog) view() string {
	var b strings.Builder
	if d.mode == dialogCreate {
		b.WriteString(titleStyle.Render("New dive at " + render.LatLon(d.at.Lat, d.at.Lon)))
	} else {
		b.WriteString(titleStyle.Render("Edit dive"))
	}
	b.WriteString("\n\n")

	for i, field := range divelog.FormFields {
		fmt.Fprintf(&b, "%s\n%s\n", labelStyle.Render(field.Label), d.inputs[i].View())
	}

	b.WriteString(helpStyle.Render("↑/↓: Field • Enter: Next/Save • Ctrl+S: Save • Esc: Cancel"))
	return dialogStyle.Render(b.String())
}
