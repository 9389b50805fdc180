// Package raster provides the categorical raster model and the windowed
// extraction used to bound a landscape around a sampling site.
package raster

import "math"

// GeoTransform maps cell indices to map coordinates for a north-up grid.
// OriginX/OriginY is the top-left corner of the top-left cell; CellWidth and
// CellHeight are both positive, with row indices increasing southward.
type GeoTransform struct {
	OriginX    float64
	OriginY    float64
	CellWidth  float64
	CellHeight float64
}

// Extent is an axis-aligned bounding rectangle in map coordinates.
type Extent struct {
	MinX, MinY, MaxX, MaxY float64
}

// Intersects reports whether two extents overlap.
func (e Extent) Intersects(o Extent) bool {
	return e.MinX < o.MaxX && o.MinX < e.MaxX && e.MinY < o.MaxY && o.MinY < e.MaxY
}

// Grid is a categorical raster. Cells are stored row-major, north to south.
// A Grid is read-only once loaded; derived grids are fresh allocations.
type Grid struct {
	Cols, Rows int
	Transform  GeoTransform
	NoData     int32
	Cells      []int32
}

// NewGrid allocates a grid with every cell set to the nodata code.
func NewGrid(cols, rows int, tf GeoTransform, noData int32) *Grid {
	cells := make([]int32, cols*rows)
	for i := range cells {
		cells[i] = noData
	}
	return &Grid{Cols: cols, Rows: rows, Transform: tf, NoData: noData, Cells: cells}
}

// At returns the cell value at (col, row).
func (g *Grid) At(col, row int) int32 {
	return g.Cells[row*g.Cols+col]
}

// Set assigns the cell value at (col, row).
func (g *Grid) Set(col, row int, v int32) {
	g.Cells[row*g.Cols+col] = v
}

// Valid reports whether the cell at (col, row) holds a real class code.
func (g *Grid) Valid(col, row int) bool {
	return g.At(col, row) != g.NoData
}

// CellCenter returns the map coordinates of the center of cell (col, row).
func (g *Grid) CellCenter(col, row int) (x, y float64) {
	x = g.Transform.OriginX + (float64(col)+0.5)*g.Transform.CellWidth
	y = g.Transform.OriginY - (float64(row)+0.5)*g.Transform.CellHeight
	return x, y
}

// CellIndex returns the cell containing map coordinate (x, y), which may lie
// outside the grid; callers must range-check the result. Indices are floored,
// not truncated, so points west or north of the origin stay negative rather
// than collapsing onto column/row 0.
func (g *Grid) CellIndex(x, y float64) (col, row int) {
	col = int(math.Floor((x - g.Transform.OriginX) / g.Transform.CellWidth))
	row = int(math.Floor((g.Transform.OriginY - y) / g.Transform.CellHeight))
	return col, row
}

// Extent returns the grid's outer bounding rectangle.
func (g *Grid) Extent() Extent {
	return Extent{
		MinX: g.Transform.OriginX,
		MaxX: g.Transform.OriginX + float64(g.Cols)*g.Transform.CellWidth,
		MinY: g.Transform.OriginY - float64(g.Rows)*g.Transform.CellHeight,
		MaxY: g.Transform.OriginY,
	}
}

// ValidCount returns the number of non-nodata cells.
func (g *Grid) ValidCount() int {
	var n int
	for _, v := range g.Cells {
		if v != g.NoData {
			n++
		}
	}
	return n
}
