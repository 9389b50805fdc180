// Package assemble pivots per-scale metric records into the final wide
// table, one row per landscape×class.
package assemble

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/terralab/landscape-cli/internal/model"
)

// Table is the assembled wide result: fixed identity columns followed by one
// column per scale×metric combination.
type Table struct {
	Columns []string
	Rows    [][]string
}

type rowKey struct {
	landscape string
	class     int32
}

// Pivot groups records by (landscape, class), pivots metric values into
// {scale}_{metric} columns, and outer-joins across scales: a landscape that
// failed at one scale keeps its row, with empty cells for that scale's
// columns. Row and column order are deterministic, so identical inputs
// produce a bit-identical table.
func Pivot(records []model.MetricRecord, scaleLabels, metricNames []string) *Table {
	columns := []string{"landscape_id", "class"}
	for _, scale := range scaleLabels {
		for _, metric := range metricNames {
			columns = append(columns, fmt.Sprintf("%s_%s", scale, metric))
		}
	}
	colIdx := make(map[string]int, len(columns))
	for i, c := range columns {
		colIdx[c] = i
	}

	cells := make(map[rowKey]map[string]float64)
	for _, rec := range records {
		key := rowKey{landscape: rec.LandscapeID, class: rec.Class}
		if cells[key] == nil {
			cells[key] = make(map[string]float64)
		}
		cells[key][rec.Scale+"_"+rec.Metric] = rec.Value
	}

	keys := make([]rowKey, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].landscape != keys[j].landscape {
			return keys[i].landscape < keys[j].landscape
		}
		return keys[i].class < keys[j].class
	})

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		row := make([]string, len(columns))
		row[0] = key.landscape
		row[1] = strconv.FormatInt(int64(key.class), 10)
		for col, value := range cells[key] {
			idx, ok := colIdx[col]
			if !ok {
				// Metric outside the requested set; not a column.
				continue
			}
			row[idx] = strconv.FormatFloat(value, 'f', -1, 64)
		}
		rows = append(rows, row)
	}

	return &Table{Columns: columns, Rows: rows}
}
