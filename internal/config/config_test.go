package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://staticfree.info/geohash/", cfg.SiteURL)
	assert.Equal(t, "http://geo.crox.net/djia", cfg.DJIABaseURL)
	assert.Equal(t, 5*time.Second, cfg.DJIATimeout)
	assert.Empty(t, cfg.SeedFile)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("SITE_URL", "https://geohash.example.com")
	t.Setenv("DJIA_BASE_URL", "http://localhost:9999/djia/")
	t.Setenv("DJIA_TIMEOUT", "2s")
	t.Setenv("SEED_FILE", "/data/openings.txt")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "https://geohash.example.com/", cfg.SiteURL, "site URL gains a trailing slash")
	assert.Equal(t, "http://localhost:9999/djia", cfg.DJIABaseURL, "base URL loses its trailing slash")
	assert.Equal(t, 2*time.Second, cfg.DJIATimeout)
	assert.Equal(t, "/data/openings.txt", cfg.SeedFile)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeDJIATimeout(t *testing.T) {
	t.Setenv("DJIA_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DJIA_TIMEOUT")
}
