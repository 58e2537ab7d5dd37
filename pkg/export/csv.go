package export

import (
	"encoding/csv"
	"io"
)

func init() { register(csvFormat{}) }

// csvFormat writes RFC 4180 CSV. The title is not part of the output.
type csvFormat struct{}

func (csvFormat) Name() string      { return "csv" }
func (csvFormat) MediaType() string { return "text/csv; charset=utf-8" }

func (csvFormat) Write(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for i := range t.Rows {
		if err := cw.Write(t.Cells(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
