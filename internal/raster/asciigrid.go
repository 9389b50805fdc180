package raster

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ReadASCIIGrid parses an ESRI ASCII grid (.asc) file. fallbackNoData is used
// when the header omits NODATA_value.
func ReadASCIIGrid(path string, fallbackNoData int32) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "raster: open %s", path)
	}
	defer func() { _ = f.Close() }()

	g, err := ParseASCIIGrid(f, fallbackNoData)
	if err != nil {
		return nil, eris.Wrapf(err, "raster: parse %s", path)
	}
	return g, nil
}

// ParseASCIIGrid parses ESRI ASCII grid content from a reader.
func ParseASCIIGrid(r io.Reader, fallbackNoData int32) (*Grid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)

	next := func() (string, bool) {
		if sc.Scan() {
			return sc.Text(), true
		}
		return "", false
	}

	header := map[string]float64{}
	var noData = fallbackNoData
	var firstValue string

	// Header is key/value word pairs until the first bare number.
	for {
		tok, ok := next()
		if !ok {
			return nil, eris.New("raster: truncated header")
		}
		if _, err := strconv.ParseFloat(tok, 64); err == nil {
			firstValue = tok
			break
		}
		val, ok := next()
		if !ok {
			return nil, eris.Errorf("raster: header key %q without value", tok)
		}
		fv, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "raster: header %s", tok)
		}
		key := strings.ToLower(tok)
		if key == "nodata_value" {
			noData = int32(fv)
			continue
		}
		header[key] = fv
	}

	for _, k := range []string{"ncols", "nrows", "cellsize"} {
		if _, ok := header[k]; !ok {
			return nil, eris.Errorf("raster: header missing %s", k)
		}
	}
	cols := int(header["ncols"])
	rows := int(header["nrows"])
	if cols <= 0 || rows <= 0 {
		return nil, eris.Errorf("raster: degenerate dimensions %dx%d", cols, rows)
	}
	cell := header["cellsize"]

	// Origin may be given as the lower-left corner or lower-left cell center.
	xll, xok := header["xllcorner"]
	yll, yok := header["yllcorner"]
	if !xok {
		if c, ok := header["xllcenter"]; ok {
			xll, xok = c-cell/2, true
		}
	}
	if !yok {
		if c, ok := header["yllcenter"]; ok {
			yll, yok = c-cell/2, true
		}
	}
	if !xok || !yok {
		return nil, eris.New("raster: header missing xllcorner/yllcorner")
	}

	tf := GeoTransform{
		OriginX:    xll,
		OriginY:    yll + float64(rows)*cell,
		CellWidth:  cell,
		CellHeight: cell,
	}

	g := &Grid{Cols: cols, Rows: rows, Transform: tf, NoData: noData, Cells: make([]int32, cols*rows)}
	tok := firstValue
	for i := 0; i < cols*rows; i++ {
		if i > 0 {
			var ok bool
			tok, ok = next()
			if !ok {
				return nil, eris.Errorf("raster: expected %d cells, got %d", cols*rows, i)
			}
		}
		fv, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "raster: cell %d", i)
		}
		g.Cells[i] = int32(fv)
	}

	return g, nil
}

// WriteASCIIGrid writes a grid as an ESRI ASCII grid file.
func WriteASCIIGrid(path string, g *Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "raster: create %s", path)
	}
	defer func() { _ = f.Close() }()

	w := bufio.NewWriter(f)
	ext := g.Extent()
	fmt.Fprintf(w, "ncols %d\n", g.Cols)
	fmt.Fprintf(w, "nrows %d\n", g.Rows)
	fmt.Fprintf(w, "xllcorner %g\n", ext.MinX)
	fmt.Fprintf(w, "yllcorner %g\n", ext.MinY)
	fmt.Fprintf(w, "cellsize %g\n", g.Transform.CellWidth)
	fmt.Fprintf(w, "NODATA_value %d\n", g.NoData)
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if col > 0 {
				if err := w.WriteByte(' '); err != nil {
					return eris.Wrap(err, "raster: write")
				}
			}
			if _, err := w.WriteString(strconv.FormatInt(int64(g.At(col, row)), 10)); err != nil {
				return eris.Wrap(err, "raster: write")
			}
		}
		if err := w.WriteByte('\n'); err != nil {
			return eris.Wrap(err, "raster: write")
		}
	}
	return eris.Wrap(w.Flush(), "raster: flush")
}
