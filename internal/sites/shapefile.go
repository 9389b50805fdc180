package sites

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
)

// LoadShapefile reads sampling sites from a point shapefile whose attribute
// table carries study_id, site_id, and year_median fields (CSV loader
// aliases apply). Point coordinates supply the site location.
func LoadShapefile(path string) ([]SamplingSite, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "sites: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	// Build field name → index map. DBF field names are fixed-width and
	// NUL-padded.
	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	find := func(aliases []string) int {
		for _, a := range aliases {
			if idx, ok := fieldIdx[a]; ok {
				return idx
			}
		}
		return -1
	}
	studyIdx := find(studyAliases)
	siteIdx := find(siteAliases)
	yearIdx := find(yearAliases)
	if studyIdx < 0 || siteIdx < 0 || yearIdx < 0 {
		return nil, eris.Errorf("sites: shapefile %s missing study_id/site_id/year_median attributes", path)
	}

	attr := func(idx int) string {
		return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
	}

	var out []SamplingSite
	for n := 0; reader.Next(); n++ {
		_, shape := reader.Shape()
		point, ok := shape.(*shp.Point)
		if !ok {
			return nil, eris.Errorf("sites: shapefile %s record %d is not a point", path, n)
		}

		year, err := strconv.Atoi(attr(yearIdx))
		if err != nil {
			return nil, eris.Wrapf(err, "sites: shapefile %s record %d year", path, n)
		}

		out = append(out, SamplingSite{
			StudyID:    attr(studyIdx),
			SiteID:     attr(siteIdx),
			YearMedian: year,
			Lon:        point.X,
			Lat:        point.Y,
		})
	}

	return assignIDs(out)
}
