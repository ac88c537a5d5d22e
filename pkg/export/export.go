package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/iveel36/spacetime-sim-2020/core/trace"
)

// FormatValue renders a table cell the way it appears in CSV output.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}

// WriteTable writes the table header followed by one line per row.
func WriteTable(w io.Writer, t trace.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	rec := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d values, want %d", i, len(row), len(t.Columns))
		}
		for j, v := range row {
			rec[j] = FormatValue(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// TableWriter encodes a table onto w.
type TableWriter func(w io.Writer, t trace.Table) error

// WriterFor selects the encoding for path by extension: JSON for .json and
// CSV otherwise.
func WriterFor(path string) TableWriter {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return WriteJSON
	}
	return WriteTable
}

// WriteTableFile writes the table to path in the format WriterFor selects.
func WriteTableFile(path string, t trace.Table) error {
	return WriteFile(path, t, WriterFor(path))
}

// WriteFile encodes the table to path with write, creating parent
// directories.
func WriteFile(path string, t trace.Table, write TableWriter) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return write(f, t)
}

// WriteJSON writes the table as a list of column-keyed objects. NaN and
// infinite values are written as null.
func WriteJSON(w io.Writer, t trace.Table) error {
	out := make([]map[string]any, len(t.Rows))
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d values, want %d", i, len(row), len(t.Columns))
		}
		m := make(map[string]any, len(t.Columns))
		for j, c := range t.Columns {
			v := row[j]
			if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
				v = nil
			}
			m[c] = v
		}
		out[i] = m
	}
	return json.NewEncoder(w).Encode(out)
}
