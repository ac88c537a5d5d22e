package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(teardown)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTraceTripsCommand(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "tripinfo.xml")
	require.NoError(t, os.WriteFile(src, []byte(`<tripinfos>
  <tripinfo id="b" duration="30" arrival="90"/>
  <tripinfo id="a" duration="12" arrival="50"/>
</tripinfos>`), 0o644))
	out := filepath.Join(dir, "out", "trips.csv")

	stdout, err := execute(t, "trace", "trips", src, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "kept 2 of 2 entries")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "travel_time,arrival,id\n12,50,a\n30,90,b\n", string(data))
}

func TestDemandCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "grid.rou.xml")

	stdout, err := execute(t, "demand",
		"--network", "grid", "-o", out, "--seed", "5", "-n", "8", "--horizon", "60",
		"--mode", "peak", "-r", "A:B", "-r", "C:D", "--no-hist")
	require.NoError(t, err)
	assert.Contains(t, stdout, "(seed 5): 8 vehicles")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 8, strings.Count(string(data), "<vehicle "))
	assert.Regexp(t, `departLane="(A|C)"`, string(data))
	assert.Equal(t, "network", cfg.Demand.Network, "flags must not leak into the loaded configuration")
}
