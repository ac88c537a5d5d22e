package sink

import (
	"fmt"
	"strings"

	"github.com/iveel36/spacetime-sim-2020/core/trace"
)

const runIDColumn = "run_id"

// numericColumns reports which columns hold float64 values, judged from the
// first row. Every row of a table shares the same layout.
func numericColumns(t trace.Table) []bool {
	out := make([]bool, len(t.Columns))
	if len(t.Rows) == 0 {
		return out
	}
	for i, v := range t.Rows[0] {
		if i >= len(out) {
			break
		}
		_, out[i] = v.(float64)
	}
	return out
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// createTableSQL builds a CREATE TABLE IF NOT EXISTS statement with a
// leading run_id column.
func createTableSQL(t trace.Table, realType, textType string) string {
	numeric := numericColumns(t)
	defs := make([]string, 0, len(t.Columns)+1)
	defs = append(defs, quoteIdent(runIDColumn)+" "+textType)
	for i, c := range t.Columns {
		typ := textType
		if numeric[i] {
			typ = realType
		}
		defs = append(defs, quoteIdent(c)+" "+typ)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(t.Name), strings.Join(defs, ", "))
}

func checkTable(t trace.Table) error {
	if t.Name == "" {
		return fmt.Errorf("table has no name")
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("table %s row %d has %d values, want %d", t.Name, i, len(row), len(t.Columns))
		}
	}
	return nil
}
