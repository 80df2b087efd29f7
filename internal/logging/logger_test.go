package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestLogger_KeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.DebugLevel)

	logger.Info("batch written", "partition", "20260301T101500", "records", 42)

	entry := lastLine(t, &buf)
	assert.Equal(t, "batch written", entry["message"])
	assert.Equal(t, "20260301T101500", entry["partition"])
	assert.Equal(t, float64(42), entry["records"])
	assert.Equal(t, "info", entry["level"])
}

func TestLogger_ErrorValueRendered(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.DebugLevel)

	logger.Error("flush failed", "error", errors.New("backend unavailable"))

	entry := lastLine(t, &buf)
	assert.Equal(t, "backend unavailable", entry["error"])
	assert.Equal(t, "error", entry["level"])
}

func TestLogger_WithBindsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.DebugLevel)

	child := logger.With("component", "sink.scheduler")
	child.Info("started")

	entry := lastLine(t, &buf)
	assert.Equal(t, "sink.scheduler", entry["component"])

	// The parent logger is unaffected
	logger.Info("plain")
	entry = lastLine(t, &buf)
	assert.NotContains(t, entry, "component")
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.WarnLevel)

	logger.Debug("hidden")
	logger.Info("hidden too")
	assert.Zero(t, buf.Len())

	logger.Warn("visible")
	assert.NotZero(t, buf.Len())
}
