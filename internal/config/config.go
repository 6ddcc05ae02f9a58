// Package config provides centralized configuration loaded from environment
// variables. Shared by every golfdata subcommand.
package config

import (
	"os"
	"strconv"
)

// Config is populated from environment variables with sensible defaults.
type Config struct {
	// External API credential
	GoogleAPIKey string

	// Enrichment
	ThrottleThreshold int
	CheckpointPath    string
	RequestsPerMinute int

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables. The API key may be
// empty here; commands that call the lookup service enforce its presence.
func Load() *Config {
	return &Config{
		GoogleAPIKey:      envOr("GOOGLE_MAPS_API_KEY", ""),
		ThrottleThreshold: envInt("THROTTLE_THRESHOLD", 100),
		CheckpointPath:    envOr("CHECKPOINT_PATH", "data/enriched_courses.csv"),
		RequestsPerMinute: envInt("PLACES_REQUESTS_PER_MINUTE", 600),
		LogLevel:          envOr("LOG_LEVEL", "info"),
	}
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
