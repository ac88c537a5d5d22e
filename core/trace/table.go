package trace

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/iveel36/spacetime-sim-2020/core/model"
)

// ErrNoRecords is returned when a table would have no rows, so its header
// cannot be derived from a record.
var ErrNoRecords = errors.New("no records to tabulate")

const (
	// StepTableName names tables built from emission logs.
	StepTableName = "emission"
	// TripTableName names tables built from tripinfo logs.
	TripTableName = "tripinfo"
)

// StepColumns is the column order of emission tables.
var StepColumns = []string{
	"time", "CO", "y", "CO2", "electricity", "type", "id", "eclass", "waiting", "NOx",
	"fuel", "HC", "x", "route", "relative_position", "noise", "angle", "PMx", "speed",
	"edge_id", "lane_number",
}

// TripColumns is the column order of tripinfo tables.
var TripColumns = []string{"travel_time", "arrival", "id"}

// Table is a uniform set of rows ready for a Sink. Row values are either
// float64 or string.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
	// RunID tags rows written by sinks that keep several runs together.
	RunID string
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Column returns the index of the named column or -1.
func (t Table) Column(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// StepTable tabulates emission records in their given order.
func StepTable(recs []model.StepRecord) (Table, error) {
	if len(recs) == 0 {
		return Table{}, ErrNoRecords
	}
	rows := make([][]any, len(recs))
	for i, r := range recs {
		rows[i] = []any{
			r.Time, r.CO, r.Y, r.CO2, r.Electricity, r.Type, r.ID, r.EClass, r.Waiting, r.NOx,
			r.Fuel, r.HC, r.X, r.Route, r.RelativePosition, r.Noise, r.Angle, r.PMx, r.Speed,
			r.EdgeID, r.LaneNumber,
		}
	}
	return Table{Name: StepTableName, Columns: StepColumns, Rows: rows}, nil
}

// TripTable tabulates trip records in their given order.
func TripTable(recs []model.TripRecord) (Table, error) {
	if len(recs) == 0 {
		return Table{}, ErrNoRecords
	}
	rows := make([][]any, len(recs))
	for i, r := range recs {
		rows[i] = []any{r.TravelTime, r.Arrival, r.ID}
	}
	return Table{Name: TripTableName, Columns: TripColumns, Rows: rows}, nil
}

// DefaultOutputPath derives the CSV destination for a log at src by
// replacing its extension.
func DefaultOutputPath(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + ".csv"
}
