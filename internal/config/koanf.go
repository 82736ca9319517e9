// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/woodson/config.yaml",
	"/etc/woodson/config.yml",
}

// ConfigPathEnvVar is the environment variable that overrides the config
// file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all sensible default values.
// Defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8787,
			Timeout:     30 * time.Second,
			Environment: EnvDevelopment,
		},
		Zoom: ZoomConfig{
			APIBaseURL:    "https://api.zoom.us/v2",
			WebSocketURL:  "",
			WebhookSecret: "",
			PageSize:      100,
		},
		Cache: CacheConfig{
			DirectoryTTL:    15 * time.Minute,
			PresenceTTL:     2 * time.Minute,
			RefreshInterval: 15 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			MaxRequests: 10,
			Window:      time.Second,
			PacingDelay: 100 * time.Millisecond,
		},
		Push: PushConfig{
			Enabled:              false, // Requires zoom.websocket_url
			HeartbeatInterval:    30 * time.Second,
			ReconnectBaseDelay:   time.Second,
			MaxReconnectAttempts: 5,
		},
		Security: SecurityConfig{
			JWTSecret:       "",
			TokenTTL:        time.Hour,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds configuration from layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (if present)
//  3. Environment variables: override any setting
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Env vars arrive as strings; split known slice fields on commas.
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths defines which config paths are parsed as comma-separated
// slices when they come from environment variables.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from the YAML file)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok && strVal != "" {
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - ZOOM_WEBHOOK_SECRET -> zoom.webhook_secret
//   - HTTP_PORT           -> server.port
//   - CACHE_PRESENCE_TTL  -> cache.presence_ttl
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_host":    "server.host",
		"http_port":    "server.port",
		"http_timeout": "server.timeout",
		"environment":  "server.environment",

		// Zoom upstream mappings
		"zoom_api_base_url":   "zoom.api_base_url",
		"zoom_websocket_url":  "zoom.websocket_url",
		"zoom_webhook_secret": "zoom.webhook_secret",
		"zoom_page_size":      "zoom.page_size",

		// Cache mappings
		"cache_directory_ttl":    "cache.directory_ttl",
		"cache_presence_ttl":     "cache.presence_ttl",
		"cache_refresh_interval": "cache.refresh_interval",

		// Outbound rate limit mappings
		"zoom_rate_limit_requests": "rate_limit.max_requests",
		"zoom_rate_limit_window":   "rate_limit.window",
		"zoom_pacing_delay":        "rate_limit.pacing_delay",

		// Push client mappings
		"push_enabled":                "push.enabled",
		"push_heartbeat_interval":     "push.heartbeat_interval",
		"push_reconnect_base_delay":   "push.reconnect_base_delay",
		"push_max_reconnect_attempts": "push.max_reconnect_attempts",

		// Security mappings
		"jwt_secret":          "security.jwt_secret",
		"token_ttl":           "security.token_ttl",
		"rate_limit_requests": "security.rate_limit_reqs",
		"rate_limit_window":   "security.rate_limit_window",
		"cors_origins":        "security.cors_origins",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unmapped keys are skipped so random environment variables do not
	// pollute the config.
	return ""
}
