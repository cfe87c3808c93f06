// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"shivaccounts.org/internal/obs"
)

// Environment variables consumed by the server.
const (
	EnvSecret = "SHIV_AUTH_SECRET"
	EnvMode   = "SHIV_ENV"
	EnvPgDSN  = "SHIV_PG_DSN"
	EnvAddr   = "SHIV_HTTP_ADDR"
	EnvTTL    = "SHIV_TOKEN_TTL"
)

// minSecretLen is the length below which a secret is accepted with a warning.
const minSecretLen = 32

// Mode selects how much failure detail responses may carry.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// Config holds runtime settings for the API server.
type Config struct {
	// Addr is the HTTP bind address.
	Addr string
	// Secret signs and verifies bearer tokens. Required.
	Secret []byte
	// Mode is the environment mode; production never exposes debug detail.
	Mode Mode
	// DatabaseDSN selects the PostgreSQL account store when set; empty
	// falls back to the in-memory store.
	DatabaseDSN string
	// TokenTTL is the validity window of issued tokens.
	TokenTTL time.Duration
}

// ErrMissingSecret aborts startup when no signing secret is configured.
var ErrMissingSecret = errors.New("config: " + EnvSecret + " is not set")

// Load reads configuration from the environment. The process must not start
// without a signing secret; a short secret is tolerated but logged.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:     ":8080",
		Mode:     ModeProduction,
		TokenTTL: 24 * time.Hour,
	}

	secret := strings.TrimSpace(os.Getenv(EnvSecret))
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if len(secret) < minSecretLen {
		obs.LogRequest(map[string]any{
			"level": "warn",
			"msg":   fmt.Sprintf("%s is shorter than %d characters; use a longer secret", EnvSecret, minSecretLen),
		})
	}
	cfg.Secret = []byte(secret)

	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvMode))) {
	case "", string(ModeProduction):
		cfg.Mode = ModeProduction
	case string(ModeDevelopment), "dev":
		cfg.Mode = ModeDevelopment
	default:
		return nil, fmt.Errorf("config: unknown %s value %q", EnvMode, os.Getenv(EnvMode))
	}

	if addr := strings.TrimSpace(os.Getenv(EnvAddr)); addr != "" {
		cfg.Addr = addr
	}
	cfg.DatabaseDSN = strings.TrimSpace(os.Getenv(EnvPgDSN))

	if raw := strings.TrimSpace(os.Getenv(EnvTTL)); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return nil, fmt.Errorf("config: invalid %s value %q", EnvTTL, raw)
		}
		cfg.TokenTTL = ttl
	}

	return cfg, nil
}

// Debug reports whether responses may include debug detail.
func (c *Config) Debug() bool {
	return c.Mode == ModeDevelopment
}
