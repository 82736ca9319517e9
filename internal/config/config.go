// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

// Package config provides layered configuration for the dashboard,
// loaded via Koanf v2: struct defaults, then an optional YAML file,
// then environment variables (highest priority).
package config

import (
	"fmt"
	"time"
)

// Environment mode values used for security validation.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the root configuration for the dashboard server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Zoom      ZoomConfig      `koanf:"zoom"`
	Cache     CacheConfig     `koanf:"cache"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Push      PushConfig      `koanf:"push"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// ZoomConfig holds upstream Zoom API settings.
type ZoomConfig struct {
	// APIBaseURL is the Zoom REST API base, e.g. https://api.zoom.us/v2
	APIBaseURL string `koanf:"api_base_url"`

	// WebSocketURL is the Zoom events WebSocket endpoint.
	WebSocketURL string `koanf:"websocket_url"`

	// WebhookSecret is the shared secret for inbound webhook signature
	// verification and the url_validation handshake.
	WebhookSecret string `koanf:"webhook_secret"`

	// PageSize controls pagination of upstream list calls.
	PageSize int `koanf:"page_size"`
}

// CacheConfig holds TTLs and refresh scheduling for the phone data cache.
type CacheConfig struct {
	// DirectoryTTL applies to users, sites, common areas and devices.
	DirectoryTTL time.Duration `koanf:"directory_ttl"`

	// PresenceTTL applies to per-user presence entries. Presence churns
	// faster and must reflect near-real-time state.
	PresenceTTL time.Duration `koanf:"presence_ttl"`

	// RefreshInterval drives the scheduled full refresh service.
	// Zero disables scheduled refreshes.
	RefreshInterval time.Duration `koanf:"refresh_interval"`
}

// RateLimitConfig holds the outbound fixed-window limiter and queue pacing.
type RateLimitConfig struct {
	// MaxRequests per Window for the shared upstream key.
	MaxRequests int           `koanf:"max_requests"`
	Window      time.Duration `koanf:"window"`

	// PacingDelay is the fixed delay between drained queue items.
	PacingDelay time.Duration `koanf:"pacing_delay"`
}

// PushConfig holds the reconnecting push client settings.
type PushConfig struct {
	Enabled              bool          `koanf:"enabled"`
	HeartbeatInterval    time.Duration `koanf:"heartbeat_interval"`
	ReconnectBaseDelay   time.Duration `koanf:"reconnect_base_delay"`
	MaxReconnectAttempts int           `koanf:"max_reconnect_attempts"`
}

// SecurityConfig holds inbound API protection settings.
type SecurityConfig struct {
	// JWTSecret signs the short-lived tokens minted for the browser's
	// push channel (GET /api/v1/websocket/token).
	JWTSecret string `koanf:"jwt_secret"`

	// TokenTTL bounds the lifetime of minted websocket tokens.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// RateLimitReqs/RateLimitWindow configure inbound per-IP limiting.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// Validate checks the configuration for inconsistencies that would
// produce confusing runtime failures.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}
	if c.Cache.DirectoryTTL <= 0 {
		return fmt.Errorf("cache.directory_ttl must be positive, got %s", c.Cache.DirectoryTTL)
	}
	if c.Cache.PresenceTTL <= 0 {
		return fmt.Errorf("cache.presence_ttl must be positive, got %s", c.Cache.PresenceTTL)
	}
	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("rate_limit.max_requests must be positive, got %d", c.RateLimit.MaxRequests)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive, got %s", c.RateLimit.Window)
	}
	if c.Push.MaxReconnectAttempts < 0 {
		return fmt.Errorf("push.max_reconnect_attempts must not be negative, got %d", c.Push.MaxReconnectAttempts)
	}
	// A missing webhook secret in production is tolerated at load time so the
	// server can come up for diagnosis; the webhook ingress answers 500 until
	// the secret is configured.
	return nil
}
