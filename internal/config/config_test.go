package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PACIFIC_EMAIL", "buyer@example.com")
	t.Setenv("PACIFIC_PASSWORD", "hunter2")
}

func TestLoadDefaults(t *testing.T) {
	validEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://www.pacificgiftware.com", cfg.Scraper.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Scraper.RateLimitMin)
	assert.Equal(t, 5*time.Second, cfg.Scraper.RateLimitMax)
	assert.Equal(t, 3, cfg.Scraper.MaxConsecutiveFaults)
	assert.Equal(t, 1, cfg.Scraper.Sessions)
	assert.True(t, cfg.Browser.Headless)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Server.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	validEnv(t)
	t.Setenv("SCRAPER_BASE_URL", "https://staging.example.com")
	t.Setenv("SCRAPER_RATE_LIMIT_MIN", "500ms")
	t.Setenv("SCRAPER_SESSIONS", "4")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://staging.example.com", cfg.Scraper.BaseURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Scraper.RateLimitMin)
	assert.Equal(t, 4, cfg.Scraper.Sessions)
	assert.False(t, cfg.Browser.Headless)
	assert.True(t, cfg.Redis.Enabled)
}

func TestValidateRequiresCredentials(t *testing.T) {
	t.Setenv("PACIFIC_EMAIL", "")
	t.Setenv("PACIFIC_PASSWORD", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsInvertedRateWindow(t *testing.T) {
	validEnv(t)
	t.Setenv("SCRAPER_RATE_LIMIT_MIN", "10s")
	t.Setenv("SCRAPER_RATE_LIMIT_MAX", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroSessions(t *testing.T) {
	validEnv(t)
	t.Setenv("SCRAPER_SESSIONS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Error(t, cfg.Validate())
}

func TestMalformedOverridesFallBackToDefaults(t *testing.T) {
	validEnv(t)
	t.Setenv("SCRAPER_RATE_LIMIT_MIN", "not-a-duration")
	t.Setenv("SCRAPER_SESSIONS", "many")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Scraper.RateLimitMin)
	assert.Equal(t, 1, cfg.Scraper.Sessions)
}
