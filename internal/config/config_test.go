package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "test-token")
	t.Setenv("LINE_CHANNEL_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, BackendSQLite, cfg.DataBackend)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 5, cfg.Bot.MaxMessagesPerReply)
	assert.Equal(t, 100, cfg.Bot.MaxEventsPerWebhook)
	assert.Equal(t, 300, cfg.Bot.MaxPostbackDataSize)
	assert.Equal(t, 5, cfg.Bot.HistoryLimit)
	assert.Equal(t, 8, cfg.Bot.EventConcurrency)
}

func TestLoadMissingCredentials(t *testing.T) {
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "")
	t.Setenv("LINE_CHANNEL_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LINE_CHANNEL_ACCESS_TOKEN")
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("WEBHOOK_TIMEOUT", "5s")
	t.Setenv("EVENT_CONCURRENCY", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendMemory, cfg.DataBackend)
	assert.Equal(t, 5*time.Second, cfg.Bot.WebhookTimeout)
	assert.Equal(t, 2, cfg.Bot.EventConcurrency)
}

func TestLoadInvalidBackend(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATA_BACKEND", "postgres")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATA_BACKEND")
}

func TestSQLitePath(t *testing.T) {
	cfg := &Config{DataDir: "data"}
	assert.Equal(t, "data/repotomo.db", cfg.SQLitePath())
}

func TestInvalidDurationFallsBack(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}
