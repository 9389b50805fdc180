package crs

import (
	"math"

	"github.com/terralab/landscape-cli/internal/raster"
)

// Limit on reprojected grid size; a pathological polygon/projection pairing
// must fail instead of exhausting memory.
const maxOutputCells = 64 << 20

// Reproject resamples a geographic categorical grid into the equal-area
// system at cellSize meters using nearest-neighbor lookup. Nearest-neighbor
// is mandatory for categorical data: interpolation would fabricate class
// codes that do not exist in the legend.
func Reproject(src *raster.Grid, proj *Albers, cellSize float64) (*raster.Grid, error) {
	if cellSize <= 0 {
		return nil, &ProjectionError{Reason: "non-positive cell size"}
	}

	ext := src.Extent()
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	// Project a lattice over the extent; conic edges bow, so corners alone
	// under-cover the true projected envelope.
	const envelopeSteps = 16
	for i := 0; i <= envelopeSteps; i++ {
		lon := ext.MinX + (ext.MaxX-ext.MinX)*float64(i)/envelopeSteps
		for j := 0; j <= envelopeSteps; j++ {
			lat := ext.MinY + (ext.MaxY-ext.MinY)*float64(j)/envelopeSteps
			x, y := proj.Forward(lon, lat)
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
	}

	cols := int(math.Ceil((maxX - minX) / cellSize))
	rows := int(math.Ceil((maxY - minY) / cellSize))
	if cols <= 0 || rows <= 0 {
		return nil, &ProjectionError{Reason: "degenerate output grid"}
	}
	if cols*rows > maxOutputCells {
		return nil, &ProjectionError{Reason: "output grid exceeds size limit"}
	}

	out := raster.NewGrid(cols, rows, raster.GeoTransform{
		OriginX:    minX,
		OriginY:    maxY,
		CellWidth:  cellSize,
		CellHeight: cellSize,
	}, src.NoData)

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x, y := out.CellCenter(col, row)
			lon, lat := proj.Inverse(x, y)
			scol, srow := src.CellIndex(lon, lat)
			if scol < 0 || scol >= src.Cols || srow < 0 || srow >= src.Rows {
				continue
			}
			out.Set(col, row, src.At(scol, srow))
		}
	}

	return out, nil
}
