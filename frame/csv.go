package frame

import (
	"encoding/csv"
	"io"
)

// WriteCSV writes t with a header row. Nulls are written as empty fields.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return err
	}
	rec := make([]string, t.Width())
	for i := 0; i < t.Height(); i++ {
		for j := range t.cols {
			rec[j] = t.cols[j][i].String()
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}
