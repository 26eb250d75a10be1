package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNewWithWriterJSONKeys(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)
	log.Info("hello")

	entry := parseLine(t, &buf)
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "timestamp")
}

func TestWarnLevelRenamed(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("warn", &buf)
	log.Warn("careful")

	entry := parseLine(t, &buf)
	assert.Equal(t, "warning", entry["level"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("error", &buf)
	log.Info("should not appear")
	assert.Zero(t, buf.Len())

	log.Error("boom")
	assert.NotZero(t, buf.Len())
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)
	log.WithModule("webhook").
		WithEventID("evt-1").
		WithField("count", 3).
		Info("event processed")

	entry := parseLine(t, &buf)
	assert.Equal(t, "webhook", entry["module"])
	assert.Equal(t, "evt-1", entry["event_id"])
	assert.Equal(t, float64(3), entry["count"])
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)
	log.WithError(errors.New("db down")).Error("repository failure")

	entry := parseLine(t, &buf)
	assert.Equal(t, "db down", entry["error"])
}
