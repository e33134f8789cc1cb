package divelog

import (
	"math"

	"github.com/ngmaloney/divevis/internal/geo"
	"github.com/ngmaloney/divevis/internal/models"
)

// Map zoom limits
const (
	MinZoom = 1
	MaxZoom = 18
)

// GraticuleLayer is the only base layer: latitude and longitude lines.
const GraticuleLayer = "graticule"

// Marker is a dive plotted on the map.
type Marker struct {
	DiveID string
	Lat    float64
	Lon    float64
	Popup  []string
}

// Map is the dive map: a view center, a zoom level, a base layer, a marker
// layer and a cursor that stands in for the mouse.
type Map struct {
	Center    models.Coords
	Zoom      int
	BaseLayer string
	Cursor    models.Coords

	markers []Marker
}

// NewMap creates a map centered on center with the cursor in the middle.
func NewMap(center models.Coords, zoom int) *Map {
	return &Map{
		Center:    center,
		Zoom:      clampZoom(zoom),
		BaseLayer: GraticuleLayer,
		Cursor:    center,
	}
}

func clampZoom(z int) int {
	return max(MinZoom, min(MaxZoom, z))
}

// Markers returns the marker layer
func (m *Map) Markers() []Marker {
	return m.markers
}

// ClearMarkers empties the marker layer
func (m *Map) ClearMarkers() {
	m.markers = nil
}

// AddMarker adds a marker to the marker layer
func (m *Map) AddMarker(marker Marker) {
	m.markers = append(m.markers, marker)
}

// SetZoom changes the zoom level within limits.
func (m *Map) SetZoom(z int) {
	m.Zoom = clampZoom(z)
}

// MoveCursor moves the cursor by whole map cells at the current zoom. The
// view recenters when the cursor leaves a width x height viewport.
func (m *Map) MoveCursor(dCol, dRow, width, height int) {
	step := geo.DegreesPerCell(m.Zoom)
	m.Cursor.Lon += float64(dCol) * step
	m.Cursor.Lat -= float64(dRow) * 2 * step
	m.Cursor.Lat = math.Max(-85, math.Min(85, m.Cursor.Lat))
	if m.Cursor.Lon > 180 || m.Cursor.Lon < -180 {
		m.Cursor.Lon = math.Mod(m.Cursor.Lon+540, 360) - 180
	}

	if _, _, ok := m.Viewport(width, height).Cell(m.Cursor.Lat, m.Cursor.Lon); !ok {
		m.Center = m.Cursor
	}
}

// Recenter moves the view to the cursor.
func (m *Map) Recenter() {
	m.Center = m.Cursor
}

// Viewport describes the map view for a grid of the given size.
func (m *Map) Viewport(width, height int) geo.Viewport {
	return geo.Viewport{
		CenterLat: m.Center.Lat,
		CenterLon: m.Center.Lon,
		Zoom:      m.Zoom,
		Width:     width,
		Height:    height,
	}
}

// Nearest returns the marker closest to the point within radiusKm.
func (m *Map) Nearest(lat, lon, radiusKm float64) (Marker, bool) {
	best, bestDist := Marker{}, math.Inf(1)
	for _, mk := range m.markers {
		d := geo.HaversineKm(lat, lon, mk.Lat, mk.Lon)
		if d <= radiusKm && d < bestDist {
			best, bestDist = mk, d
		}
	}
	return best, !math.IsInf(bestDist, 1)
}

// UnderCursor returns the marker the cursor is on, if any.
func (m *Map) UnderCursor(vp geo.Viewport) (Marker, bool) {
	return m.Nearest(m.Cursor.Lat, m.Cursor.Lon, vp.CellRadiusKm())
}

// Grid symbols
const (
	CellEmpty        = ' '
	CellGraticule    = '·'
	CellCrossing     = '+'
	CellMarker       = '●'
	CellCursor       = '◎'
	CellCursorMarker = '◉'
)

// graticuleStep picks a line spacing that gives a line every dozen cells or so.
func graticuleStep(zoom int) float64 {
	target := geo.DegreesPerCell(zoom) * 12
	for _, s := range []float64{0.01, 0.02, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 15, 30} {
		if s >= target {
			return s
		}
	}
	return 45
}

// crosses reports whether a multiple of step lies in [lo, hi).
func crosses(lo, hi, step float64) bool {
	return math.Floor(lo/step) != math.Floor(hi/step)
}

// Grid draws the map as rows of runes: graticule, then markers, then cursor.
func (m *Map) Grid(width, height int) [][]rune {
	vp := m.Viewport(width, height)
	step := geo.DegreesPerCell(m.Zoom)
	lineStep := graticuleStep(m.Zoom)

	grid := make([][]rune, height)
	for row := range grid {
		grid[row] = make([]rune, width)
		for col := range grid[row] {
			lat, lon := vp.Coordinate(col, row)
			onLat := crosses(lat-step, lat+step, lineStep)
			onLon := crosses(lon-step/2, lon+step/2, lineStep)
			switch {
			case onLat && onLon:
				grid[row][col] = CellCrossing
			case onLat || onLon:
				grid[row][col] = CellGraticule
			default:
				grid[row][col] = CellEmpty
			}
		}
	}

	for _, mk := range m.markers {
		if col, row, ok := vp.Cell(mk.Lat, mk.Lon); ok {
			grid[row][col] = CellMarker
		}
	}

	if col, row, ok := vp.Cell(m.Cursor.Lat, m.Cursor.Lon); ok {
		if grid[row][col] == CellMarker {
			grid[row][col] = CellCursorMarker
		} else {
			grid[row][col] = CellCursor
		}
	}

	return grid
}
