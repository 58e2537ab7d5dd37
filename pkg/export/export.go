// Package export renders tables into downloadable documents.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ErrNoColumns is returned for tables without a header row.
var ErrNoColumns = errors.New("export: table has no columns")

// Table is a titled grid. Short rows are padded with blanks and long rows
// are cut to the column count.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// Cells returns row i sized to the column count.
func (t Table) Cells(i int) []string {
	cells := make([]string, len(t.Columns))
	copy(cells, t.Rows[i])
	return cells
}

// Format writes a table as one document type.
type Format interface {
	Name() string
	MediaType() string
	Write(w io.Writer, t Table) error
}

var formats = map[string]Format{}

func register(f Format) { formats[f.Name()] = f }

// Lookup finds a format by case-insensitive name.
func Lookup(name string) (Format, bool) {
	f, ok := formats[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// Names lists the registered formats alphabetically.
func Names() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render writes t with f into memory.
func Render(f Format, t Table) ([]byte, error) {
	if len(t.Columns) == 0 {
		return nil, ErrNoColumns
	}
	var buf bytes.Buffer
	if err := f.Write(&buf, t); err != nil {
		return nil, fmt.Errorf("export %s: %w", f.Name(), err)
	}
	return buf.Bytes(), nil
}
