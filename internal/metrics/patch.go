package metrics

import "github.com/terralab/landscape-cli/internal/raster"

// eight-neighbor offsets (queen's case), the FRAGSTATS default for patch
// delineation.
var neighbors8 = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// patchCounts labels connected components of same-class cells using
// 8-connectivity and returns the number of patches per class.
func patchCounts(g *raster.Grid) map[int32]int {
	counts := make(map[int32]int)
	visited := make([]bool, len(g.Cells))
	var stack [][2]int

	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			idx := row*g.Cols + col
			if visited[idx] || !g.Valid(col, row) {
				continue
			}
			class := g.At(col, row)
			counts[class]++

			// Flood-fill this patch.
			visited[idx] = true
			stack = append(stack[:0], [2]int{col, row})
			for len(stack) > 0 {
				c := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for _, d := range neighbors8 {
					nc, nr := c[0]+d[0], c[1]+d[1]
					if nc < 0 || nc >= g.Cols || nr < 0 || nr >= g.Rows {
						continue
					}
					nidx := nr*g.Cols + nc
					if visited[nidx] || g.At(nc, nr) != class {
						continue
					}
					visited[nidx] = true
					stack = append(stack, [2]int{nc, nr})
				}
			}
		}
	}
	return counts
}
