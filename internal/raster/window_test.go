package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

// rectPolygon builds an axis-aligned rectangle polygon.
func rectPolygon(minX, minY, maxX, maxY float64) *geom.Polygon {
	return geom.NewPolygonFlat(geom.XY, []float64{
		minX, minY, maxX, minY, maxX, maxY, minX, maxY, minX, minY,
	}, []int{10})
}

// fullGrid builds a 10x10 grid over [0,10]x[0,10] with cell value
// col*100+row, so every cell is identifiable after cropping.
func fullGrid() *Grid {
	g := NewGrid(10, 10, GeoTransform{OriginX: 0, OriginY: 10, CellWidth: 1, CellHeight: 1}, -9999)
	for row := 0; row < 10; row++ {
		for col := 0; col < 10; col++ {
			g.Set(col, row, int32(col*100+row))
		}
	}
	return g
}

func TestWindowCropsToBoundingRectangle(t *testing.T) {
	g := fullGrid()

	win, err := Window(g, rectPolygon(2, 2, 6, 6))
	require.NoError(t, err)

	assert.Equal(t, 4, win.Cols)
	assert.Equal(t, 4, win.Rows)
	assert.InDelta(t, 2.0, win.Transform.OriginX, 1e-9)
	assert.InDelta(t, 6.0, win.Transform.OriginY, 1e-9)

	// Cell values carry over from the same map location.
	x, y := win.CellCenter(0, 0)
	srcCol, srcRow := g.CellIndex(x, y)
	assert.Equal(t, g.At(srcCol, srcRow), win.At(0, 0))
}

func TestWindowMasksOutsidePolygon(t *testing.T) {
	g := fullGrid()

	// Triangle covering only the lower-left half of the [2,6] square.
	tri := geom.NewPolygonFlat(geom.XY, []float64{2, 2, 6, 2, 2, 6, 2, 2}, []int{8})
	win, err := Window(g, tri)
	require.NoError(t, err)

	// Cell (0,3) center (2.5, 2.5) is inside; cell (3,0) center (5.5, 5.5)
	// is outside the hypotenuse.
	assert.True(t, win.Valid(0, 3))
	assert.False(t, win.Valid(3, 0))
}

func TestWindowEmptyIntersection(t *testing.T) {
	g := fullGrid()

	_, err := Window(g, rectPolygon(100, 100, 110, 110))
	require.Error(t, err)
	var empty *EmptyIntersectionError
	assert.ErrorAs(t, err, &empty)
}

func TestWindowPartialOverlapClamps(t *testing.T) {
	g := fullGrid()

	win, err := Window(g, rectPolygon(-5, -5, 3, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, win.Cols)
	assert.Equal(t, 3, win.Rows)
	assert.InDelta(t, 0.0, win.Transform.OriginX, 1e-9)
}

func TestWindowPreservesNoData(t *testing.T) {
	g := fullGrid()
	g.Set(3, 4, g.NoData)

	win, err := Window(g, rectPolygon(2, 2, 6, 6))
	require.NoError(t, err)

	x, y := g.CellCenter(3, 4)
	col, row := win.CellIndex(x, y)
	assert.False(t, win.Valid(col, row))
}

// Windowing a nested polygon from an already-windowed grid must be
// pixel-identical to windowing the source directly, the precondition for
// reusing each scale's raster as the next-smaller scale's input.
func TestWindowHierarchicalEquivalence(t *testing.T) {
	g := fullGrid()

	outer := rectPolygon(1, 1, 9, 9)
	inner := rectPolygon(3, 3, 7, 7)

	parent, err := Window(g, outer)
	require.NoError(t, err)

	direct, err := Window(g, inner)
	require.NoError(t, err)
	chained, err := Window(parent, inner)
	require.NoError(t, err)

	assert.Equal(t, direct.Cols, chained.Cols)
	assert.Equal(t, direct.Rows, chained.Rows)
	assert.Equal(t, direct.Transform, chained.Transform)
	assert.Equal(t, direct.Cells, chained.Cells)
}
