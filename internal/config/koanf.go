// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

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
	"/etc/acegrocer/config.yaml",
	"/etc/acegrocer/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// devJWTSecret is the fallback signing secret outside production.
// Validate() rejects it in the production posture.
const devJWTSecret = "dev-secret-change-me"

// defaultConfig returns a Config with all defaults applied.
// Defaults are layered first, then overridden by file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        3000,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
			CORSOrigins: []string{},
		},
		Database: DatabaseConfig{
			Path:      "/data/acegrocer.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = use runtime.NumCPU()
			SeedData:  true,
		},
		Security: SecurityConfig{
			JWTSecret:    devJWTSecret,
			SessionTTL:   12 * time.Hour,
			CookieName:   "acegrocer_auth",
			CookieSecure: false,
		},
		RateLimit: RateLimitConfig{
			Enabled:         false,
			DefaultLimit:    30,
			DefaultWindowMS: 60_000,
			// Per-rule overrides default to zero and inherit the defaults above.
			Login:       RuleConfig{},
			Checkout:    RuleConfig{},
			AdminOrders: RuleConfig{},
		},
		Gatekeeper: GatekeeperConfig{
			Scope: []string{"/api/*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Seed: SeedConfig{
			AdminEmail:    "admin@example.com",
			AdminPassword: "ChangeMe123!",
		},
	}
}

// Load builds the configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (if present)
//  3. Environment variables: override any setting
//
// The returned configuration has passed Validate(); callers may use it
// without further checks.
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
	// RATE_LIMIT_LOGIN_LIMIT -> rate_limit.login.limit
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Comma-separated env values for slice fields
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
// Returns the path of the first file found, or empty string if none exists.
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

// sliceConfigPaths defines which config paths are parsed as comma-separated slices.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"gatekeeper.scope",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars arrive as strings but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML or defaults)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
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
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped variables return empty string and are skipped, which keeps
// unrelated environment noise out of the configuration.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - RATE_LIMIT_LOGIN_LIMIT -> rate_limit.login.limit
//   - JWT_SECRET -> security.jwt_secret
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_port":    "server.port",
		"http_host":    "server.host",
		"http_timeout": "server.timeout",
		"environment":  "server.environment",
		"cors_origins": "server.cors_origins",

		// Database mappings
		"duckdb_path":       "database.path",
		"duckdb_max_memory": "database.max_memory",
		"duckdb_threads":    "database.threads",
		"seed_data":         "database.seed_data",

		// Security mappings
		"jwt_secret":    "security.jwt_secret",
		"session_ttl":   "security.session_ttl",
		"cookie_name":   "security.cookie_name",
		"cookie_secure": "security.cookie_secure",

		// Rate limit mappings
		"rate_limit_enabled":                "rate_limit.enabled",
		"rate_limit_default_limit":          "rate_limit.default_limit",
		"rate_limit_default_window_ms":      "rate_limit.default_window_ms",
		"rate_limit_login_limit":            "rate_limit.login.limit",
		"rate_limit_login_window_ms":        "rate_limit.login.window_ms",
		"rate_limit_checkout_limit":         "rate_limit.checkout.limit",
		"rate_limit_checkout_window_ms":     "rate_limit.checkout.window_ms",
		"rate_limit_admin_orders_limit":     "rate_limit.admin_orders.limit",
		"rate_limit_admin_orders_window_ms": "rate_limit.admin_orders.window_ms",

		// Gatekeeper mappings
		"gatekeeper_scope": "gatekeeper.scope",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Seed mappings
		"seed_admin_email":    "seed.admin_email",
		"seed_admin_password": "seed.admin_password",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
