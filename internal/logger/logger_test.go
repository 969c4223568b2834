package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/loyalty-card-report/internal/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestJSONWithRunID(t *testing.T) {
	var buf bytes.Buffer
	l, err := newWithWriter(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)
	defer l.Close()

	log, id := l.WithRun()
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("Run started", slog.Int("files", 2))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Run started", entry["msg"])
	assert.Equal(t, id, entry["run_id"])
	assert.EqualValues(t, 2, entry["files"])
}

func TestFileOutput(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "report.log")
	l, err := newWithWriter(config.LoggingConfig{Level: "debug", Format: "text", File: path, MaxSizeMB: 1}, &buf)
	require.NoError(t, err)

	l.Debug("to both")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, buf.String(), "to both")
}

func TestUnknownFormat(t *testing.T) {
	_, err := newWithWriter(config.LoggingConfig{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}
