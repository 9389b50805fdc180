package sites

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// LoadXLSX reads sampling sites from the first sheet of an XLSX workbook,
// expecting the same header columns as the CSV loader.
func LoadXLSX(path string) ([]SamplingSite, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "sites: open %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("sites: %s has no sheets", path)
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("sites: %s sheet %q is empty", path, sheet.Name)
	}

	header := rowToStrings(sheet.Rows[0])
	cm, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var out []SamplingSite
	for i, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		if isBlank(cells) {
			continue
		}
		s, err := rowToSite(cells, cm)
		if err != nil {
			return nil, eris.Wrapf(err, "sites: %s row %d", path, i+2)
		}
		out = append(out, s)
	}

	return assignIDs(out)
}

func rowToStrings(row *xlsx.Row) []string {
	out := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		out[i] = cell.String()
	}
	return out
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
