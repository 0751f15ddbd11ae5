// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ericfisherdev/docnest/internal/adapter/driven/cipher"
)

// DefaultListenAddr is the bind address used when DOCNEST_LISTEN_ADDR is unset.
const DefaultListenAddr = "127.0.0.1:8000"

// Config holds the application configuration loaded from environment variables.
type Config struct {
	SecretKey  []byte
	ListenAddr string
	DBPath     string
	SessionTTL time.Duration
	LogLevel   slog.Level
	LogFile    string
}

// LogValue implements slog.LogValuer. The secret key is never included.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("listen_addr", c.ListenAddr),
		slog.String("db_path", c.DBPath),
		slog.Duration("session_ttl", c.SessionTTL),
		slog.String("log_level", c.LogLevel.String()),
		slog.String("log_file", c.LogFile),
	)
}

// Load reads configuration from environment variables and returns a validated Config.
// DOCNEST_SECRET_KEY is required and must decode to a 32-byte key; a missing or
// malformed key wraps driven.ErrInvalidKey. Optional variables with defaults:
// DOCNEST_LISTEN_ADDR (127.0.0.1:8000), DOCNEST_DB_PATH (docnest.db),
// DOCNEST_SESSION_TTL (24h), DOCNEST_LOG_LEVEL (info), DOCNEST_LOG_FILE (unset).
func Load() (*Config, error) {
	key, err := cipher.ParseKey(os.Getenv("DOCNEST_SECRET_KEY"))
	if err != nil {
		return nil, fmt.Errorf("DOCNEST_SECRET_KEY: %w", err)
	}

	listenAddr := DefaultListenAddr
	if v, ok := os.LookupEnv("DOCNEST_LISTEN_ADDR"); ok && v != "" {
		listenAddr = v
	}

	dbPath := "docnest.db"
	if v, ok := os.LookupEnv("DOCNEST_DB_PATH"); ok && v != "" {
		dbPath = v
	}

	sessionTTL := 24 * time.Hour
	if v, ok := os.LookupEnv("DOCNEST_SESSION_TTL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("DOCNEST_SESSION_TTL has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("DOCNEST_SESSION_TTL must be positive, got %s", parsed)
		}
		sessionTTL = parsed
	}

	logLevel := slog.LevelInfo
	if v, ok := os.LookupEnv("DOCNEST_LOG_LEVEL"); ok && v != "" {
		if err := logLevel.UnmarshalText([]byte(strings.TrimSpace(v))); err != nil {
			return nil, fmt.Errorf("DOCNEST_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	return &Config{
		SecretKey:  key,
		ListenAddr: listenAddr,
		DBPath:     dbPath,
		SessionTTL: sessionTTL,
		LogLevel:   logLevel,
		LogFile:    os.Getenv("DOCNEST_LOG_FILE"),
	}, nil
}
