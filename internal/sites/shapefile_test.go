package sites

import (
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shpSite struct {
	study, site string
	year        int
	lon, lat    float64
}

// createTestShapefile writes a point shapefile with a DBF attribute table.
// DBF field names are capped at ten characters, so the year column uses the
// year_med alias.
func createTestShapefile(t *testing.T, records []shpSite) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sites.shp")

	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{
		shp.StringField("STUDY_ID", 25),
		shp.StringField("SITE_ID", 25),
		shp.NumberField("YEAR_MED", 10),
	}))

	for _, r := range records {
		n := w.Write(&shp.Point{X: r.lon, Y: r.lat})
		require.NoError(t, w.WriteAttribute(int(n), 0, r.study))
		require.NoError(t, w.WriteAttribute(int(n), 1, r.site))
		require.NoError(t, w.WriteAttribute(int(n), 2, r.year))
	}
	w.Close()
	return path
}

func TestLoadShapefile(t *testing.T) {
	path := createTestShapefile(t, []shpSite{
		{study: "MG", site: "P01", year: 2015, lon: -46.5, lat: -19.2},
		{study: "BA", site: "F03", year: 2008, lon: -40.1, lat: -14.8},
	})

	sites, err := LoadShapefile(path)
	require.NoError(t, err)
	require.Len(t, sites, 2)

	assert.Equal(t, "MG_P01", sites[0].LandscapeID)
	assert.Equal(t, 2015, sites[0].YearMedian)
	assert.InDelta(t, -46.5, sites[0].Lon, 1e-6)
	assert.InDelta(t, -19.2, sites[0].Lat, 1e-6)

	assert.Equal(t, "BA_F03", sites[1].LandscapeID)
}

func TestLoadShapefileMissingAttributes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.shp")
	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{shp.StringField("NAME", 25)}))
	n := w.Write(&shp.Point{X: -46.5, Y: -19.2})
	require.NoError(t, w.WriteAttribute(int(n), 0, "P01"))
	w.Close()

	_, err = LoadShapefile(path)
	assert.ErrorContains(t, err, "missing study_id/site_id/year_median")
}
