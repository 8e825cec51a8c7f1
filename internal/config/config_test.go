package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", cfg.BaseURL())
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)

	delays, err := cfg.Delays()
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{250 * time.Millisecond, time.Second, 4 * time.Second}, delays)
}

func TestLoadTrimsTrailingSlash(t *testing.T) {
	t.Setenv("PORTFOLIO_API_URL", "https://api.example.dev/")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.dev/api", cfg.BaseURL())
}

func TestLoadRejectsBadRetryDelays(t *testing.T) {
	t.Setenv("API_RETRY_DELAYS", "100,soon")
	_, err := Load()
	assert.ErrorContains(t, err, "API_RETRY_DELAYS")
}

func TestLoadRejectsNonPositiveRateLimit(t *testing.T) {
	t.Setenv("API_RATE_LIMIT", "0")
	_, err := Load()
	assert.Error(t, err)
}

func TestEmptyRetryDelaysDisablesRetry(t *testing.T) {
	cfg := Config{RetryDelays: " "}
	delays, err := cfg.Delays()
	require.NoError(t, err)
	assert.Empty(t, delays)
}

func TestTrustedProxies(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.TrustedProxies)

	t.Setenv("ADMIN_TRUSTED_PROXIES", "10.0.0.1,10.0.0.0/8")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.0/8"}, cfg.TrustedProxies)
}
