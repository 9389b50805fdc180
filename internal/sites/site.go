// Package sites loads sampling sites from CSV, XLSX, and point shapefile
// sources and assigns each one its stable landscape identifier.
package sites

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// SamplingSite is one unique sampling location. Immutable once loaded.
type SamplingSite struct {
	StudyID string
	SiteID  string
	// LandscapeID is assigned exactly once, here at load time, and
	// propagated to every buffer scale. Per-scale identifier generation is
	// how identities silently misalign; it never happens downstream.
	LandscapeID string
	// YearMedian selects which annual raster applies to this site.
	YearMedian int
	Lon, Lat   float64
}

// assignIDs derives landscape identifiers and rejects duplicates, which
// would silently merge two landscapes in the final table.
func assignIDs(sites []SamplingSite) ([]SamplingSite, error) {
	seen := make(map[string]bool, len(sites))
	for i := range sites {
		id := NormalizeID(sites[i].StudyID) + "_" + NormalizeID(sites[i].SiteID)
		if seen[id] {
			return nil, eris.Errorf("sites: duplicate landscape id %q", id)
		}
		seen[id] = true
		sites[i].LandscapeID = id
	}
	return sites, nil
}

// Load reads sites from path, dispatching on file extension
// (.csv, .xlsx, .shp).
func Load(path string) ([]SamplingSite, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".xlsx":
		return LoadXLSX(path)
	case ".shp":
		return LoadShapefile(path)
	default:
		return nil, eris.Errorf("sites: unsupported file type %s", filepath.Ext(path))
	}
}
