// Package metrics computes class-level landscape composition and
// configuration metrics on binarized, equal-area categorical rasters.
package metrics

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/terralab/landscape-cli/internal/raster"
)

// Metric names accepted by Compute.
const (
	PLand       = "pland"
	PatchCount  = "patch_count"
	EdgeDensity = "edge_density"
)

// Value is one class-level metric value for a single landscape.
type Value struct {
	Class  int32
	Metric string
	Value  float64
}

// Compute evaluates the named metrics for every class present in the grid.
// The grid must be in an equal-area, meters-based system; cell sizes are read
// from its transform. Nodata cells are excluded from landscape area, and
// boundaries against nodata (including the landscape edge) contribute no edge
// length, so a single-class landscape has edge_density 0.
func Compute(g *raster.Grid, names []string) ([]Value, error) {
	for _, name := range names {
		switch name {
		case PLand, PatchCount, EdgeDensity:
		default:
			return nil, eris.Errorf("metrics: unknown metric %q", name)
		}
	}

	classCells := make(map[int32]int)
	for _, v := range g.Cells {
		if v != g.NoData {
			classCells[v]++
		}
	}
	if len(classCells) == 0 {
		return nil, eris.New("metrics: landscape has no valid cells")
	}

	validCells := 0
	for _, n := range classCells {
		validCells += n
	}
	cellW := g.Transform.CellWidth
	cellH := g.Transform.CellHeight
	areaHa := float64(validCells) * cellW * cellH / 10000

	var patches map[int32]int
	var edges map[int32]float64
	for _, name := range names {
		switch name {
		case PatchCount:
			patches = patchCounts(g)
		case EdgeDensity:
			edges = edgeLengths(g)
		}
	}

	classes := make([]int32, 0, len(classCells))
	for c := range classCells {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	out := make([]Value, 0, len(classes)*len(names))
	for _, class := range classes {
		for _, name := range names {
			var v float64
			switch name {
			case PLand:
				v = float64(classCells[class]) / float64(validCells) * 100
			case PatchCount:
				v = float64(patches[class])
			case EdgeDensity:
				v = edges[class] / areaHa
			}
			out = append(out, Value{Class: class, Metric: name, Value: v})
		}
	}
	return out, nil
}

// edgeLengths sums boundary length in meters between each class and other
// valid classes, using 4-adjacency. Each shared boundary is credited to both
// classes; class-to-nodata boundaries are not edges.
func edgeLengths(g *raster.Grid) map[int32]float64 {
	edges := make(map[int32]float64)
	cellW := g.Transform.CellWidth
	cellH := g.Transform.CellHeight

	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			v := g.At(col, row)
			if v == g.NoData {
				continue
			}
			// Right neighbor: shared vertical boundary of length cellH.
			if col+1 < g.Cols {
				r := g.At(col+1, row)
				if r != g.NoData && r != v {
					edges[v] += cellH
					edges[r] += cellH
				}
			}
			// Down neighbor: shared horizontal boundary of length cellW.
			if row+1 < g.Rows {
				d := g.At(col, row+1)
				if d != g.NoData && d != v {
					edges[v] += cellW
					edges[d] += cellW
				}
			}
		}
	}
	return edges
}
