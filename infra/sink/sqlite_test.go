package sink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLiteSinkPersistsRows(t *testing.T) {
	s, err := NewSQLiteSink("file:sqlite_rows?mode=memory&cache=shared")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Write(ctx, tripTable(t)))
	second := tripTable(t)
	second.RunID = "run-9"
	require.NoError(t, s.Write(ctx, second))

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM "tripinfo"`).Scan(&n))
	if n != 4 {
		t.Fatalf("expected 4 rows, got %d", n)
	}
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM "tripinfo" WHERE run_id = ?`, "run-9").Scan(&n))
	if n != 2 {
		t.Fatalf("expected 2 rows for run-9, got %d", n)
	}

	var travel float64
	var id string
	require.NoError(t, s.db.QueryRow(`SELECT travel_time, id FROM "tripinfo" WHERE run_id = ? ORDER BY id LIMIT 1`, "run-1").Scan(&travel, &id))
	if travel != 12.5 || id != "a" {
		t.Fatalf("unexpected row: %v %s", travel, id)
	}
}

func TestSQLiteSinkStepTable(t *testing.T) {
	s, err := NewSQLiteSink("file:sqlite_steps?mode=memory&cache=shared")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Write(context.Background(), stepTable(t)))
	var edge, lane string
	var co2 float64
	require.NoError(t, s.db.QueryRow(`SELECT edge_id, lane_number, "CO2" FROM "emission"`).Scan(&edge, &lane, &co2))
	if edge != "e1" || lane != "0" || co2 != 2.5 {
		t.Fatalf("unexpected row: %s %s %v", edge, lane, co2)
	}
}
