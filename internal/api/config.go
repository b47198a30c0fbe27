package api

import (
	"os"
	"strconv"
)

// Config holds connection settings for the ops backend.
type Config struct {
	Endpoint  string
	Token     string
	TimeoutMs int
}

// DefaultConfig returns a Config pointed at a local backend.
func DefaultConfig() Config {
	return Config{
		Endpoint:  "http://localhost:8787",
		TimeoutMs: 8000,
	}
}

// ApplyEnv overlays the METRONOME_API_* environment variables onto cfg.
// The base comes from the workspace config file (or DefaultConfig); env
// values win per invocation. A malformed timeout is ignored.
func ApplyEnv(cfg Config) Config {
	if v := os.Getenv("METRONOME_API_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("METRONOME_API_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("METRONOME_API_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	return cfg
}
