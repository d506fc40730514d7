// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

// Package config provides layered configuration for AceGrocer.
//
// Configuration is loaded from three sources with increasing precedence:
// built-in defaults, an optional YAML config file, and environment
// variables. Malformed configuration is rejected at startup, never at
// per-request time.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the storefront server.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Security   SecurityConfig   `koanf:"security"`
	RateLimit  RateLimitConfig  `koanf:"rate_limit"`
	Gatekeeper GatekeeperConfig `koanf:"gatekeeper"`
	Logging    LoggingConfig    `koanf:"logging"`
	Seed       SeedConfig       `koanf:"seed"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
	CORSOrigins []string      `koanf:"cors_origins"`
}

// IsProduction reports whether the server runs in the hardened posture.
// Production enables Strict-Transport-Security and the strict CSP script-src.
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
	SeedData  bool   `koanf:"seed_data"`
}

// SecurityConfig holds session token and cookie settings.
type SecurityConfig struct {
	// JWTSecret signs session tokens (HMAC-SHA256). Required in production.
	JWTSecret string `koanf:"jwt_secret"`

	// SessionTTL is the lifetime of an issued session token.
	SessionTTL time.Duration `koanf:"session_ttl"`

	// CookieName is the name of the session cookie.
	CookieName string `koanf:"cookie_name"`

	// CookieSecure forces the Secure attribute on the session cookie.
	// When false the attribute is still set for requests arriving over TLS.
	CookieSecure bool `koanf:"cookie_secure"`
}

// RuleConfig holds a per-endpoint rate limit override.
// A zero Limit or WindowMS falls back to the configured defaults.
type RuleConfig struct {
	Limit    int   `koanf:"limit"`
	WindowMS int64 `koanf:"window_ms"`
}

// RateLimitConfig holds the gatekeeper's fixed-window rate limiting settings.
// Windows are expressed in milliseconds to match the wire-level retry hints.
type RateLimitConfig struct {
	// Enabled is the process-wide switch. When off no rule is ever consulted.
	Enabled bool `koanf:"enabled"`

	DefaultLimit    int   `koanf:"default_limit"`
	DefaultWindowMS int64 `koanf:"default_window_ms"`

	Login       RuleConfig `koanf:"login"`
	Checkout    RuleConfig `koanf:"checkout"`
	AdminOrders RuleConfig `koanf:"admin_orders"`
}

// DefaultWindow returns the default window as a duration.
func (c *RateLimitConfig) DefaultWindow() time.Duration {
	return time.Duration(c.DefaultWindowMS) * time.Millisecond
}

// GatekeeperConfig holds the request gatekeeper's route scope.
type GatekeeperConfig struct {
	// Scope lists path globs the gatekeeper intercepts. Entries ending in
	// "/*" match by prefix; other entries match the path exactly.
	// Requests outside the scope bypass the gatekeeper entirely.
	Scope []string `koanf:"scope"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SeedConfig holds initial-data settings applied on first startup.
type SeedConfig struct {
	AdminEmail    string `koanf:"admin_email"`
	AdminPassword string `koanf:"admin_password"`
}

// Validate checks the configuration for programmer errors.
// It is called once at startup; a failure here aborts the process.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}
	if c.Security.CookieName == "" {
		return fmt.Errorf("security.cookie_name must not be empty")
	}
	if c.Security.SessionTTL <= 0 {
		return fmt.Errorf("security.session_ttl must be positive, got %s", c.Security.SessionTTL)
	}
	if c.Server.IsProduction() && c.Security.JWTSecret == devJWTSecret {
		return fmt.Errorf("security.jwt_secret must be set in production")
	}
	if c.RateLimit.DefaultLimit <= 0 {
		return fmt.Errorf("rate_limit.default_limit must be positive, got %d", c.RateLimit.DefaultLimit)
	}
	if c.RateLimit.DefaultWindowMS <= 0 {
		return fmt.Errorf("rate_limit.default_window_ms must be positive, got %d", c.RateLimit.DefaultWindowMS)
	}
	for name, rule := range map[string]RuleConfig{
		"login":        c.RateLimit.Login,
		"checkout":     c.RateLimit.Checkout,
		"admin_orders": c.RateLimit.AdminOrders,
	} {
		if rule.Limit < 0 {
			return fmt.Errorf("rate_limit.%s.limit must not be negative, got %d", name, rule.Limit)
		}
		if rule.WindowMS < 0 {
			return fmt.Errorf("rate_limit.%s.window_ms must not be negative, got %d", name, rule.WindowMS)
		}
	}
	if len(c.Gatekeeper.Scope) == 0 {
		return fmt.Errorf("gatekeeper.scope must list at least one path glob")
	}
	return nil
}
