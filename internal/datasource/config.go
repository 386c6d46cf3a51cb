package datasource

import (
	"os"
	"strconv"
)

// Config holds connection settings for the insights API.
type Config struct {
	Endpoint  string
	APIToken  string
	TimeoutMs int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Endpoint:  "http://localhost:8080",
		TimeoutMs: 10000,
	}
}

// LoadConfig reads API configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("COMPASS_API_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("COMPASS_API_TOKEN"); v != "" {
		cfg.APIToken = v
	}
	if v := os.Getenv("COMPASS_API_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}

	return cfg
}
