package assemble

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// WriteCSV serializes the assembled table. Absent cells are written as empty
// strings, keeping every joined row present even where a scale failed.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return eris.Wrap(err, "assemble: write header")
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "assemble: write row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "assemble: flush")
}

// WriteCSVFile writes the table to path.
func WriteCSVFile(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "assemble: create %s", path)
	}
	if err := WriteCSV(f, t); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "assemble: close %s", path)
}
