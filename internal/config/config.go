// Package config loads application settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable the application reads at startup.
type Config struct {
	DBType string // "sqlite" or "postgres"
	DBDSN  string // file path for sqlite, connection string for postgres

	HTTPAddr string

	QueueCacheTTL     time.Duration
	QueueDefaultLimit int
	QueueMaxLimit     int

	ReminderStartHour int
	ReminderEndHour   int
	CacheSweepEvery   time.Duration
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored when present and silently skipped when not.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBType:            getEnv("DB_TYPE", "sqlite"),
		DBDSN:             getEnv("DB_DSN", "data/pintrain.db"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		QueueCacheTTL:     time.Duration(getEnvInt("QUEUE_CACHE_TTL_SECONDS", 60)) * time.Second,
		QueueDefaultLimit: getEnvInt("QUEUE_DEFAULT_LIMIT", 20),
		QueueMaxLimit:     getEnvInt("QUEUE_MAX_LIMIT", 100),
		ReminderStartHour: getEnvInt("REMINDER_START_HOUR", 8),
		ReminderEndHour:   getEnvInt("REMINDER_END_HOUR", 22),
		CacheSweepEvery:   time.Duration(getEnvInt("CACHE_SWEEP_SECONDS", 300)) * time.Second,
	}

	if cfg.DBType != "sqlite" && cfg.DBType != "postgres" {
		return nil, fmt.Errorf("config: unsupported DB_TYPE %q", cfg.DBType)
	}
	if cfg.QueueDefaultLimit <= 0 || cfg.QueueMaxLimit <= 0 || cfg.QueueDefaultLimit > cfg.QueueMaxLimit {
		return nil, fmt.Errorf("config: invalid queue limits %d/%d", cfg.QueueDefaultLimit, cfg.QueueMaxLimit)
	}
	if cfg.ReminderStartHour < 0 || cfg.ReminderEndHour > 23 || cfg.ReminderStartHour > cfg.ReminderEndHour {
		return nil, fmt.Errorf("config: invalid reminder window %d-%d", cfg.ReminderStartHour, cfg.ReminderEndHour)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
