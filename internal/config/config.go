// Package config loads the console configuration from the environment.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every operator-tunable setting of the admin console.
type Config struct {
	APIURL         string        `env:"PORTFOLIO_API_URL"   envDefault:"http://localhost:8080"`
	Port           string        `env:"PORT"                envDefault:"3000"`
	DBPath         string        `env:"ADMIN_DB_PATH"       envDefault:"admin.db"`
	SessionTTL     time.Duration `env:"ADMIN_SESSION_TTL"   envDefault:"24h"`
	CookieSecure   bool          `env:"ADMIN_COOKIE_SECURE" envDefault:"false"`
	APITimeout     time.Duration `env:"API_TIMEOUT"         envDefault:"15s"`
	RateLimit      float64       `env:"API_RATE_LIMIT"      envDefault:"10"`
	RetryDelays    string        `env:"API_RETRY_DELAYS"    envDefault:"250,1000,4000"`
	AuditRetention time.Duration `env:"AUDIT_RETENTION"     envDefault:"8760h"`
	LogLevel       string        `env:"LOG_LEVEL"           envDefault:"info"`

	// Proxies whose X-Forwarded-For is believed. Empty trusts none.
	TrustedProxies []string `env:"ADMIN_TRUSTED_PROXIES" envSeparator:","`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.RateLimit <= 0 {
		return Config{}, fmt.Errorf("API_RATE_LIMIT must be positive, got %v", cfg.RateLimit)
	}
	if _, err := cfg.Delays(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// BaseURL is the REST root every service path is appended to.
func (c Config) BaseURL() string {
	return c.APIURL + "/api"
}

// Delays returns the retry backoff schedule for idempotent reads.
func (c Config) Delays() ([]time.Duration, error) {
	if strings.TrimSpace(c.RetryDelays) == "" {
		return nil, nil
	}
	parts := strings.Split(c.RetryDelays, ",")
	delays := make([]time.Duration, 0, len(parts))
	for _, p := range parts {
		ms, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || ms < 0 {
			return nil, fmt.Errorf("invalid API_RETRY_DELAYS entry %q", p)
		}
		delays = append(delays, time.Duration(ms)*time.Millisecond)
	}
	return delays, nil
}
