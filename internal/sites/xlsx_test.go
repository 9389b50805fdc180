package sites

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createTestXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("sites")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			cell := row.AddCell()
			cell.SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "sites.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestLoadXLSX(t *testing.T) {
	path := createTestXLSX(t, [][]string{
		{"study_id", "site_id", "year_median", "longitude", "latitude"},
		{"MG", "P01", "2015", "-46.5", "-19.2"},
		{"BA", "F 03", "2008", "-40.1", "-14.8"},
	})

	sites, err := LoadXLSX(path)
	require.NoError(t, err)
	require.Len(t, sites, 2)

	assert.Equal(t, "MG_P01", sites[0].LandscapeID)
	assert.Equal(t, 2015, sites[0].YearMedian)
	assert.InDelta(t, -46.5, sites[0].Lon, 1e-9)

	assert.Equal(t, "BA_F_03", sites[1].LandscapeID)
	assert.Equal(t, 2008, sites[1].YearMedian)
}

func TestLoadXLSXSkipsBlankRows(t *testing.T) {
	path := createTestXLSX(t, [][]string{
		{"study_id", "site_id", "year_median", "longitude", "latitude"},
		{"MG", "P01", "2015", "-46.5", "-19.2"},
		{"", "", "", "", ""},
		{"MG", "P02", "2016", "-46.6", "-19.3"},
	})

	sites, err := LoadXLSX(path)
	require.NoError(t, err)
	require.Len(t, sites, 2)
	assert.Equal(t, "MG_P02", sites[1].LandscapeID)
}

func TestLoadXLSXMissingColumn(t *testing.T) {
	path := createTestXLSX(t, [][]string{
		{"study_id", "site_id", "longitude", "latitude"},
		{"MG", "P01", "-46.5", "-19.2"},
	})

	_, err := LoadXLSX(path)
	assert.ErrorContains(t, err, "missing one of")
}
