package export

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iveel36/spacetime-sim-2020/core/model"
	"github.com/iveel36/spacetime-sim-2020/core/trace"
)

func tripTable(t *testing.T) trace.Table {
	t.Helper()
	tbl, err := trace.TripTable([]model.TripRecord{
		{TravelTime: 12.5, Arrival: 40, ID: "a"},
		{TravelTime: 3, Arrival: 7.25, ID: "b,c"},
	})
	require.NoError(t, err)
	return tbl
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, tripTable(t)))
	want := "travel_time,arrival,id\n12.5,40,a\n3,7.25,\"b,c\"\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s", buf.String())
	}
}

func TestWriteTableRowWidth(t *testing.T) {
	tbl := trace.Table{Columns: []string{"a", "b"}, Rows: [][]any{{1.0}}}
	err := WriteTable(&bytes.Buffer{}, tbl)
	assert.Error(t, err)
}

func TestWriteTableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "trips.csv")
	require.NoError(t, WriteTableFile(path, tripTable(t)))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "travel_time,arrival,id")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, tripTable(t)))
	var out []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0]["id"])
	assert.Equal(t, 40.0, out[0]["arrival"])
}

func TestWriteJSONNonFinite(t *testing.T) {
	tbl := trace.Table{Columns: []string{"CO2", "id"}, Rows: [][]any{{math.NaN(), "a"}, {math.Inf(1), "b"}}}
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, tbl))
	assert.JSONEq(t, `[{"CO2":null,"id":"a"},{"CO2":null,"id":"b"}]`, buf.String())
}

func TestWriteJSONRowWidth(t *testing.T) {
	tbl := trace.Table{Columns: []string{"a", "b"}, Rows: [][]any{{1.0}}}
	assert.Error(t, WriteJSON(&bytes.Buffer{}, tbl))
}

func TestWriteTableFileByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trips.JSON")
	require.NoError(t, WriteTableFile(path, tripTable(t)))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "b,c", out[1]["id"])

	csvPath := filepath.Join(dir, "trips.txt")
	require.NoError(t, WriteTableFile(csvPath, tripTable(t)))
	data, err = os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("travel_time,arrival,id\n")))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "0.1", FormatValue(0.1))
	assert.Equal(t, "3", FormatValue(3))
	assert.Equal(t, "x", FormatValue("x"))
}
