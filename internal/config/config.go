// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// server mode, storage backend, timeouts, and LINE API constraints.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backend identifiers for Config.DataBackend.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds all application configuration
type Config struct {
	// LINE Bot Configuration
	LineChannelToken  string
	LineChannelSecret string

	// Sentry Configuration
	SentryDSN         string
	SentryEnvironment string

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir     string // Directory holding the SQLite database file
	DataBackend string // "sqlite" (default) or "memory" for local development

	// Bot Configuration (embedded)
	Bot BotConfig
}

// BotConfig holds bot-specific configuration
type BotConfig struct {
	WebhookTimeout time.Duration // Per-event processing budget
	ReplyTimeout   time.Duration // Budget for one reply delivery call

	EventConcurrency int     // Max events processed in parallel per batch
	GlobalRateRPS    float64 // Global rate limit for outbound reply sends

	// LINE API constraints
	MaxMessagesPerReply int // LINE API limit: 5 messages per reply
	MaxEventsPerWebhook int // Cap on events accepted per webhook call
	MinReplyTokenLength int // Reply tokens shorter than this are dropped
	MaxPostbackDataSize int // LINE API limit: 300 bytes of postback data

	HistoryLimit int // Entries shown by the submission history reply
}

// Load reads configuration from environment variables.
// It attempts to load a .env file first, then reads from env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		LineChannelToken:  getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
		LineChannelSecret: getEnv("LINE_CHANNEL_SECRET", ""),

		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", "production"),

		Port:            getEnv("PORT", "3000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),

		DataDir:     getEnv("DATA_DIR", "data"),
		DataBackend: getEnv("DATA_BACKEND", BackendSQLite),

		Bot: BotConfig{
			WebhookTimeout:      getDurationEnv("WEBHOOK_TIMEOUT", 25*time.Second),
			ReplyTimeout:        getDurationEnv("REPLY_TIMEOUT", 10*time.Second),
			EventConcurrency:    getIntEnv("EVENT_CONCURRENCY", 8),
			GlobalRateRPS:       getFloatEnv("GLOBAL_RATE_RPS", 100.0),
			MaxMessagesPerReply: 5,
			MaxEventsPerWebhook: getIntEnv("MAX_EVENTS_PER_WEBHOOK", 100),
			MinReplyTokenLength: 10,
			MaxPostbackDataSize: 300,
			HistoryLimit:        getIntEnv("HISTORY_LIMIT", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present and consistent.
func (c *Config) Validate() error {
	if c.LineChannelToken == "" {
		return errors.New("LINE_CHANNEL_ACCESS_TOKEN is required")
	}
	if c.LineChannelSecret == "" {
		return errors.New("LINE_CHANNEL_SECRET is required")
	}
	if c.DataBackend != BackendSQLite && c.DataBackend != BackendMemory {
		return fmt.Errorf("invalid DATA_BACKEND %q (want %q or %q)", c.DataBackend, BackendSQLite, BackendMemory)
	}
	if c.Bot.EventConcurrency < 1 {
		return errors.New("EVENT_CONCURRENCY must be at least 1")
	}
	return nil
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "repotomo.db")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
