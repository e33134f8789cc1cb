// Package geo has the small amount of spherical math the dive map needs.
package geo

import "math"

const earthRadiusKm = 6371.0

// HaversineKm calculates the great-circle distance in kilometers between two
// lat/lon points.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	// Convert to radians
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// DegreesPerCell is the span of one map cell at the given zoom. Zoom 8 shows
// roughly the Channel Islands in an 80-column map; each zoom level halves it.
func DegreesPerCell(zoom int) float64 {
	return 360.0 / (256.0 * math.Pow(2, float64(zoom-1)))
}

// Viewport maps coordinates onto a character grid centered on a point.
// Cells are twice as tall as they are wide, so a row spans twice the degrees
// of a column.
type Viewport struct {
	CenterLat float64
	CenterLon float64
	Zoom      int
	Width     int // columns
	Height    int // rows
}

// Cell returns the grid column and row for a coordinate and whether it falls
// inside the viewport.
func (v Viewport) Cell(lat, lon float64) (col, row int, ok bool) {
	step := DegreesPerCell(v.Zoom)
	col = v.Width/2 + int(math.Round((lon-v.CenterLon)/step))
	row = v.Height/2 - int(math.Round((lat-v.CenterLat)/(2*step)))
	ok = col >= 0 && col < v.Width && row >= 0 && row < v.Height
	return col, row, ok
}

// Coordinate returns the coordinate at the center of a grid cell.
func (v Viewport) Coordinate(col, row int) (lat, lon float64) {
	step := DegreesPerCell(v.Zoom)
	lon = v.CenterLon + float64(col-v.Width/2)*step
	lat = v.CenterLat - float64(row-v.Height/2)*2*step
	return lat, lon
}

// CellRadiusKm is roughly how far a single cell reaches at the viewport's
// center, used as the "under the cursor" radius.
func (v Viewport) CellRadiusKm() float64 {
	step := DegreesPerCell(v.Zoom)
	return HaversineKm(v.CenterLat, v.CenterLon, v.CenterLat+2*step, v.CenterLon+step)
}
