package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestNewWithWriterComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "trace")
	l.Infof("kept %d records", 3)
	out := buf.String()
	assert.Contains(t, out, `"component":"trace"`)
	assert.Contains(t, out, `"message":"kept 3 records"`)
}

func TestConfigureRotatingFile(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)

	path := filepath.Join(t.TempDir(), "spacetime.log")
	closeFn, err := Configure(Options{Level: "warn", File: path, MaxSizeMB: 1})
	require.NoError(t, err)
	defer func() {
		_, _ = Configure(Options{})
	}()

	l := New("rotate")
	l.Infof("filtered")
	l.Warnf("kept")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "kept"))
	assert.False(t, strings.Contains(string(data), "filtered"))
}

func TestConfigureInvalidLevel(t *testing.T) {
	_, err := Configure(Options{Level: "loud"})
	assert.Error(t, err)
}
