package api

import (
	"os"
	"strconv"
	"time"

	"github.com/marcus/isle/internal/models"
)

// Config holds the server configuration, loaded from environment variables.
type Config struct {
	ListenAddr      string
	DBPath          string
	ShutdownTimeout time.Duration
	LogFormat       string // "json" (default) or "text"
	LogLevel        string // "debug", "info" (default), "warn", "error"

	MaxTextLen      int           // maximum length of item text (default: models.MaxTextLen)
	ChangeRetention time.Duration // retention period for the changes journal (default: 7 days)
}

// LoadConfig reads configuration from environment variables with sensible defaults.
func LoadConfig() Config {
	cfg := Config{
		ListenAddr:      ":8080",
		DBPath:          "./data/isle.db",
		ShutdownTimeout: 30 * time.Second,
		LogFormat:       "json",
		LogLevel:        "info",
		MaxTextLen:      models.MaxTextLen,
		ChangeRetention: 7 * 24 * time.Hour,
	}

	if v := os.Getenv("ISLE_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("ISLE_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("ISLE_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ShutdownTimeout = d
		}
	}
	if v := os.Getenv("ISLE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("ISLE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ISLE_MAX_TEXT_LEN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTextLen = n
		}
	}
	if v := os.Getenv("ISLE_CHANGE_RETENTION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ChangeRetention = d
		}
	}

	return cfg
}
