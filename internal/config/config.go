package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the agenda engine.
type Config struct {
	DatabaseURL     string
	CacheDir        string
	RefreshInterval time.Duration
	TelegramToken   string
	DigestChatID    int64
	DigestTime      string
}

// Load reads configuration from environment variables with sane defaults.
// The Telegram digest is optional: leaving TELEGRAM_TOKEN empty disables it.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		CacheDir:        strings.TrimSpace(os.Getenv("CACHE_DIR")),
		RefreshInterval: parseMinutes(strings.TrimSpace(os.Getenv("REFRESH_INTERVAL_MINUTES"))),
		TelegramToken:   strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DigestTime:      strings.TrimSpace(os.Getenv("DIGEST_TIME")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "crm_agenda.db"
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = ".crm-agenda-cache"
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = 2 * time.Minute
	}
	if cfg.DigestTime == "" {
		cfg.DigestTime = "08:00"
	}

	if raw := strings.TrimSpace(os.Getenv("DIGEST_CHAT_ID")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid DIGEST_CHAT_ID %q: %w", raw, err)
		}
		cfg.DigestChatID = id
	}

	if cfg.TelegramToken != "" && cfg.DigestChatID == 0 {
		return cfg, fmt.Errorf("DIGEST_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	return cfg, nil
}

func parseMinutes(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	minutes, err := time.ParseDuration(raw + "m")
	if err != nil || minutes <= 0 {
		return 0
	}
	return minutes
}
