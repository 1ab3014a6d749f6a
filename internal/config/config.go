package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the daemon.
type Config struct {
	DatabaseURL  string
	ScanInterval time.Duration
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	cfg := Config{
		DatabaseURL:  strings.TrimSpace(os.Getenv("DATABASE_URL")),
		ScanInterval: parseMinutes(strings.TrimSpace(os.Getenv("SCAN_INTERVAL_MINUTES"))),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "tasks.db"
	}

	if cfg.ScanInterval == 0 {
		cfg.ScanInterval = 5 * time.Minute
	}

	return cfg
}

func parseMinutes(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		return 0
	}
	return time.Duration(minutes) * time.Minute
}
