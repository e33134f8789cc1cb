package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ngmaloney/divevis/internal/divelog"
	"github.com/ngmaloney/divevis/internal/prediction"
	"github.com/ngmaloney/divevis/internal/render"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if len(m.ctrl.Panes()) == 0 {
		return mutedStyle.Render("No panels are enabled. Check the [panels] section of the config.")
	}

	if m.dialog != nil {
		return m.dialog.view()
	}

	var body string
	switch m.ActivePane() {
	case PanePrediction:
		body = m.viewPrediction()
	case PaneWeather:
		body = m.viewWeather()
	case PaneDives:
		body = m.viewDives()
	case PaneLogbook:
		body = m.viewLogbook()
	}

	sections := []string{
		titleStyle.Render("🤿 Dive Visibility"),
		m.viewTabs(),
		paneStyle.Width(max(40, m.width-4)).Render(body),
	}
	if m.notice != "" {
		sections = append(sections, valueStyle.Render(m.notice))
	}
	sections = append(sections, helpStyle.Render(m.help()))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, p := range m.ctrl.Panes() {
		if i == m.active {
			tabs = append(tabs, activeTabStyle.Render(p.String()))
		} else {
			tabs = append(tabs, tabStyle.Render(p.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) help() string {
	switch m.ActivePane() {
	case PanePrediction:
		return "Tab: Switch panes • ↑/↓: Field • Enter: Predict • Ctrl+U: Use these coordinates • Ctrl+S: Save dive • Ctrl+C: Quit"
	case PaneWeather:
		return "Tab: Switch panes • Enter: Weather • Ctrl+P: Weather + predict • Ctrl+G: Stormglass predict • Ctrl+T: Auto turbidity • PgUp/PgDn: Preset • Ctrl+O: Use preset • Ctrl+C: Quit"
	case PaneDives:
		if m.tableFocus {
			return "Tab: Switch panes • ↑/↓: Dive • Enter: Edit • F: Map • R: Reload • Ctrl+C: Quit"
		}
		return "Tab: Switch panes • Arrows: Move • +/-: Zoom • C: Center • Enter: Add dive here • F: Table • R: Reload • Ctrl+C: Quit"
	case PaneLogbook:
		return "Tab: Switch panes • R: Reload • Ctrl+C: Quit"
	}
	return "Ctrl+C: Quit"
}

// renderLines styles outcome lines, highlighting failures
func renderLines(lines []string) string {
	styled := make([]string, len(lines))
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "Error:"),
			strings.HasPrefix(line, "Request failed:"),
			strings.HasPrefix(line, "Prediction Error:"):
			styled[i] = errorStyle.Render(line)
		case i == 0:
			styled[i] = successStyle.Render(line)
		default:
			styled[i] = valueStyle.Render(line)
		}
	}
	return strings.Join(styled, "\n")
}

func (m Model) pending(text string) string {
	return fmt.Sprintf("%s %s", m.spinner.View(), pendingStyle.Render(text))
}

func (m Model) viewPrediction() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Visibility prediction"))
	b.WriteString("\n\n")

	for i, field := range prediction.Fields {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Width(22).Render(field.Label), m.predInputs[i].View())
	}

	b.WriteString("\n")
	switch {
	case m.predPending != "":
		b.WriteString(m.pending(m.predPending))
	case len(m.predLines) > 0:
		b.WriteString(renderLines(m.predLines))
	}
	return b.String()
}

func (m Model) viewWeather() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Current weather"))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Latitude: "), m.weatherInputs[0].View())
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Longitude:"), m.weatherInputs[1].View())

	toggle := "[ ]"
	if m.autoTurbidity {
		toggle = "[x]"
	}
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Auto turbidity:"), toggle)

	if len(m.presets) > 0 {
		b.WriteString("\n")
		b.WriteString(m.presetList.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.weatherPending != "":
		b.WriteString(m.pending(m.weatherPending))
	case len(m.weatherLines) > 0:
		b.WriteString(renderLines(m.weatherLines))
	}
	return b.String()
}

func (m Model) viewDives() string {
	log := m.ctrl.DiveLog
	var sections []string

	sections = append(sections, titleStyle.Render("Dive map"), m.viewMap())

	status := log.Status
	if m.divesPending {
		status = m.pending("Loading dives...")
	}
	sections = append(sections, mutedStyle.Render(status))

	w, h := m.mapSize()
	if marker, ok := log.Map.UnderCursor(log.Map.Viewport(w, h)); ok && !m.tableFocus {
		sections = append(sections, markerStyle.Render(strings.Join(marker.Popup, "\n")))
	} else {
		sections = append(sections, mutedStyle.Render("📍 "+render.LatLon(log.Map.Cursor.Lat, log.Map.Cursor.Lon)))
	}

	sections = append(sections, sectionHeaderStyle.Render("Dives"), m.diveTable.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// viewMap colors the map grid
func (m Model) viewMap() string {
	w, h := m.mapSize()
	grid := m.ctrl.DiveLog.Map.Grid(w, h)

	lines := make([]string, len(grid))
	for i, row := range grid {
		var b strings.Builder
		for _, cell := range row {
			switch cell {
			case divelog.CellMarker, divelog.CellCursorMarker:
				b.WriteString(markerStyle.Render(string(cell)))
			case divelog.CellCursor:
				b.WriteString(titleStyle.Render(string(cell)))
			case divelog.CellGraticule, divelog.CellCrossing:
				b.WriteString(graticuleStyle.Render(string(cell)))
			default:
				b.WriteRune(cell)
			}
		}
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewLogbook() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Logbook"))
	b.WriteString("\n\n")
	if m.logbookPending {
		b.WriteString(m.pending("Loading logbook..."))
		return b.String()
	}
	b.WriteString(strings.Join(m.logbookLines, "\n"))
	return b.String()
}
