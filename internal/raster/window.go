package raster

import (
	"fmt"
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// EmptyIntersectionError reports that a polygon does not overlap the source
// raster's extent. Callers treat it as a per-landscape failure, not a fatal
// pipeline error.
type EmptyIntersectionError struct {
	Polygon Extent
	Raster  Extent
}

func (e *EmptyIntersectionError) Error() string {
	return fmt.Sprintf("raster: polygon extent [%g,%g,%g,%g] does not intersect raster extent [%g,%g,%g,%g]",
		e.Polygon.MinX, e.Polygon.MinY, e.Polygon.MaxX, e.Polygon.MaxY,
		e.Raster.MinX, e.Raster.MinY, e.Raster.MaxX, e.Raster.MaxY)
}

// Window crops src to the polygon's bounding rectangle and masks every cell
// whose center falls outside the polygon to nodata. The crop is cell-aligned,
// so windowing an already-windowed grid with a nested polygon yields cells
// identical to windowing the original source directly.
func Window(src *Grid, poly *geom.Polygon) (*Grid, error) {
	b := poly.Bounds()
	pext := Extent{MinX: b.Min(0), MinY: b.Min(1), MaxX: b.Max(0), MaxY: b.Max(1)}
	rext := src.Extent()
	if !pext.Intersects(rext) {
		return nil, &EmptyIntersectionError{Polygon: pext, Raster: rext}
	}

	tf := src.Transform
	col0 := int(math.Floor((pext.MinX - tf.OriginX) / tf.CellWidth))
	col1 := int(math.Ceil((pext.MaxX-tf.OriginX)/tf.CellWidth)) - 1
	row0 := int(math.Floor((tf.OriginY - pext.MaxY) / tf.CellHeight))
	row1 := int(math.Ceil((tf.OriginY-pext.MinY)/tf.CellHeight)) - 1

	col0 = max(col0, 0)
	row0 = max(row0, 0)
	col1 = min(col1, src.Cols-1)
	row1 = min(row1, src.Rows-1)
	if col0 > col1 || row0 > row1 {
		return nil, &EmptyIntersectionError{Polygon: pext, Raster: rext}
	}

	out := NewGrid(col1-col0+1, row1-row0+1, GeoTransform{
		OriginX:    tf.OriginX + float64(col0)*tf.CellWidth,
		OriginY:    tf.OriginY - float64(row0)*tf.CellHeight,
		CellWidth:  tf.CellWidth,
		CellHeight: tf.CellHeight,
	}, src.NoData)

	for row := row0; row <= row1; row++ {
		for col := col0; col <= col1; col++ {
			v := src.At(col, row)
			if v == src.NoData {
				continue
			}
			cx, cy := src.CellCenter(col, row)
			if containsPoint(poly, cx, cy) {
				out.Set(col-col0, row-row0, v)
			}
		}
	}

	return out, nil
}

// containsPoint tests whether (x, y) lies inside the polygon, honoring holes.
func containsPoint(poly *geom.Polygon, x, y float64) bool {
	p := geom.Coord{x, y}
	if !xy.IsPointInRing(poly.Layout(), p, poly.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < poly.NumLinearRings(); i++ {
		if xy.IsPointInRing(poly.Layout(), p, poly.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}
