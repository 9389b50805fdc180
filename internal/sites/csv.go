package sites

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Column header aliases accepted by the tabular loaders.
var (
	studyAliases = []string{"study_id", "study"}
	siteAliases  = []string{"site_id", "site"}
	yearAliases  = []string{"year_median", "year_med", "year"}
	lonAliases   = []string{"longitude", "lon", "lng", "x"}
	latAliases   = []string{"latitude", "lat", "y"}
)

type columnMap struct {
	study, site, year, lon, lat int
}

func mapColumns(header []string) (columnMap, error) {
	find := func(aliases []string) int {
		for i, h := range header {
			h = strings.ToLower(strings.TrimSpace(h))
			for _, a := range aliases {
				if h == a {
					return i
				}
			}
		}
		return -1
	}

	cm := columnMap{
		study: find(studyAliases),
		site:  find(siteAliases),
		year:  find(yearAliases),
		lon:   find(lonAliases),
		lat:   find(latAliases),
	}
	if cm.study < 0 || cm.site < 0 || cm.year < 0 || cm.lon < 0 || cm.lat < 0 {
		return cm, eris.Errorf("sites: header %v missing one of study_id/site_id/year_median/longitude/latitude", header)
	}
	return cm, nil
}

func rowToSite(row []string, cm columnMap) (SamplingSite, error) {
	var s SamplingSite
	pick := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	s.StudyID = pick(cm.study)
	s.SiteID = pick(cm.site)
	if s.StudyID == "" || s.SiteID == "" {
		return s, eris.New("sites: empty study_id or site_id")
	}

	year, err := strconv.Atoi(pick(cm.year))
	if err != nil {
		return s, eris.Wrapf(err, "sites: parse year %q", pick(cm.year))
	}
	s.YearMedian = year

	if s.Lon, err = strconv.ParseFloat(pick(cm.lon), 64); err != nil {
		return s, eris.Wrapf(err, "sites: parse longitude %q", pick(cm.lon))
	}
	if s.Lat, err = strconv.ParseFloat(pick(cm.lat), 64); err != nil {
		return s, eris.Wrapf(err, "sites: parse latitude %q", pick(cm.lat))
	}
	return s, nil
}

// LoadCSV reads sampling sites from a CSV file with a header row.
func LoadCSV(path string) ([]SamplingSite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "sites: open %s", path)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "sites: read header of %s", path)
	}
	cm, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var out []SamplingSite
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "sites: read %s", path)
		}
		s, err := rowToSite(row, cm)
		if err != nil {
			return nil, eris.Wrapf(err, "sites: %s line %d", path, line)
		}
		out = append(out, s)
	}

	return assignIDs(out)
}
