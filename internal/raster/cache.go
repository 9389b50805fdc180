package raster

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// MissingYearError reports that no annual raster exists for a site's
// reference year. The affected site is skipped, not the batch.
type MissingYearError struct {
	Year int
}

func (e *MissingYearError) Error() string {
	return fmt.Sprintf("raster: no raster for year %d", e.Year)
}

var yearRe = regexp.MustCompile(`\d{4}`)

// Cache is a read-only, process-wide store of annual rasters keyed by
// calendar year. It is bulk-populated once before worker dispatch begins and
// needs no locking afterwards.
type Cache struct {
	grids map[int]*Grid
}

// NewCache builds a cache from an explicit year mapping.
func NewCache(grids map[int]*Grid) *Cache {
	return &Cache{grids: grids}
}

// LoadDir scans dir for files matching pattern, reading each as an ESRI
// ASCII grid keyed by the first four-digit run in its filename.
func LoadDir(dir, pattern string, fallbackNoData int32) (*Cache, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, eris.Wrapf(err, "raster: glob %s", pattern)
	}
	if len(matches) == 0 {
		return nil, eris.Errorf("raster: no files matching %s in %s", pattern, dir)
	}

	grids := make(map[int]*Grid, len(matches))
	for _, path := range matches {
		m := yearRe.FindString(filepath.Base(path))
		if m == "" {
			zap.L().Warn("raster: no year in filename, skipping", zap.String("file", path))
			continue
		}
		year, _ := strconv.Atoi(m)
		if _, dup := grids[year]; dup {
			return nil, eris.Errorf("raster: duplicate raster for year %d (%s)", year, path)
		}
		g, err := ReadASCIIGrid(path, fallbackNoData)
		if err != nil {
			return nil, err
		}
		grids[year] = g
		zap.L().Info("raster: loaded",
			zap.Int("year", year),
			zap.Int("cols", g.Cols),
			zap.Int("rows", g.Rows),
			zap.String("file", filepath.Base(path)),
		)
	}
	if len(grids) == 0 {
		return nil, eris.Errorf("raster: no usable rasters in %s", dir)
	}
	return &Cache{grids: grids}, nil
}

// Get returns the raster for a calendar year.
func (c *Cache) Get(year int) (*Grid, error) {
	g, ok := c.grids[year]
	if !ok {
		return nil, &MissingYearError{Year: year}
	}
	return g, nil
}

// Years lists the available years in ascending order.
func (c *Cache) Years() []int {
	years := make([]int, 0, len(c.grids))
	for y := range c.grids {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
