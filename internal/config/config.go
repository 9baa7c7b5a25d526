package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// SiteURL is the public base URL used for feed and entry IDs.
	// Always carries a trailing slash.
	SiteURL string

	// DJIA upstream configuration.
	DJIABaseURL string
	DJIATimeout time.Duration

	// SeedFile optionally preloads historical opening values at startup.
	SeedFile string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := durationEnv("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	djiaTimeout, err := durationEnv("DJIA_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		SiteURL:         envOrDefault("SITE_URL", "http://staticfree.info/geohash/"),
		DJIABaseURL:     strings.TrimRight(envOrDefault("DJIA_BASE_URL", "http://geo.crox.net/djia"), "/"),
		DJIATimeout:     djiaTimeout,
		SeedFile:        os.Getenv("SEED_FILE"),
	}

	if cfg.DJIABaseURL == "" {
		return nil, errors.New("DJIA_BASE_URL is required")
	}
	if cfg.SiteURL == "" {
		return nil, errors.New("SITE_URL is required")
	}
	if !strings.HasSuffix(cfg.SiteURL, "/") {
		cfg.SiteURL += "/"
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
