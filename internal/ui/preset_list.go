package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/ngmaloney/divevis/internal/models"
	"github.com/ngmaloney/divevis/internal/render"
)

// presetItem wraps a Preset for use in a list
type presetItem struct {
	preset models.Preset
}

// FilterValue implements list.Item
func (p presetItem) FilterValue() string {
	return p.preset.Name
}

// Title implements list.DefaultItem
func (p presetItem) Title() string {
	return p.preset.Name
}

// Description implements list.DefaultItem
func (p presetItem) Description() string {
	desc := render.LatLon(p.preset.Latitude, p.preset.Longitude)
	if p.preset.Source != "" {
		desc += fmt.Sprintf(" • %s", p.preset.Source)
	}
	return desc
}

// createPresetList creates a list.Model from presets
func createPresetList(presets []models.Preset, width, height int) list.Model {
	items := make([]list.Item, len(presets))
	for i, preset := range presets {
		items[i] = presetItem{preset: preset}
	}

	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Presets"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	return l
}

// selectedPreset returns the highlighted preset, if any
func selectedPreset(l list.Model) (models.Preset, bool) {
	item, ok := l.SelectedItem().(presetItem)
	if !ok {
		return models.Preset{}, false
	}
	return item.preset, true
}
