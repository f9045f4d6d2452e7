// Package config reads the process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// LogConfig controls the slog handler and optional file rotation.
type LogConfig struct {
	Level      slog.Level
	Dir        string // empty disables file logging
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Config is the full process configuration.
type Config struct {
	Addr        string
	DatabaseURL string // postgres DSN; when empty the sqlite store is used
	SQLitePath  string
	Log         LogConfig
}

// Load reads configuration from a .env file (when present) and the process
// environment.
func Load() (Config, error) {
	if err := LoadDotenvIfPresent(); err != nil {
		return Config{}, err
	}

	level, err := levelFromEnv("LOG_LEVEL", slog.LevelInfo)
	if err != nil {
		return Config{}, err
	}
	maxSize, err := IntFromEnv("LOG_MAX_SIZE_MB", 20)
	if err != nil {
		return Config{}, err
	}
	maxBackups, err := IntFromEnv("LOG_MAX_BACKUPS", 5)
	if err != nil {
		return Config{}, err
	}
	maxAge, err := IntFromEnv("LOG_MAX_AGE_DAYS", 14)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Addr:        StringFromEnv("ADDR", ":8080"),
		DatabaseURL: StringFromEnv("DATABASE_URL", ""),
		SQLitePath:  StringFromEnv("SQLITE_PATH", "fatrate.db"),
		Log: LogConfig{
			Level:      level,
			Dir:        StringFromEnv("LOG_DIR", ""),
			MaxSizeMB:  maxSize,
			MaxBackups: maxBackups,
			MaxAgeDays: maxAge,
		},
	}, nil
}

func levelFromEnv(key string, fallback slog.Level) (slog.Level, error) {
	switch v := strings.ToLower(StringFromEnv(key, "")); v {
	case "":
		return fallback, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return fallback, fmt.Errorf("unknown %s value %q", key, v)
	}
}
