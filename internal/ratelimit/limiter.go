// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

// Package ratelimit implements fixed-window admission control for the
// request gatekeeper.
//
// Consumption state is a per-(client, rule) window that resets entirely at
// fixed time boundaries. This is deliberately NOT a sliding-window or
// token-bucket scheme: a client can legally send up to 2x the limit across
// a window boundary (one burst just before reset, one just after). That
// tradeoff buys a single map lookup and one integer increment per request
// and must be preserved for compatible behavior.
//
// Windows live in process memory only. A multi-instance deployment
// enforces independent limits per instance; this is an accepted scaling
// limitation, not a bug.
package ratelimit

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/acegrocer/acegrocer/internal/config"
)

// Rule is a configured tuple of route prefix, HTTP method, request limit
// and window duration. A request matches the first rule (in configuration
// order) whose prefix is a prefix of the request path and whose method
// equals the request method.
type Rule struct {
	Name   string
	Prefix string
	Method string
	Limit  int
	Window time.Duration
}

// Decision is the outcome of an admission check.
type Decision struct {
	// Allowed reports whether the request may proceed.
	Allowed bool

	// Limit echoes the matched rule's limit for response headers.
	Limit int

	// Remaining is the budget left in the current window after this
	// request. Zero when rejected.
	Remaining int

	// RetryAfterSec is the number of whole seconds until the window
	// resets. Only meaningful on rejection.
	RetryAfterSec int
}

// window is consumption state for one (client, rule) pair.
// Once now >= resetAt the window is discarded and replaced whole,
// never incrementally repaired.
type window struct {
	count   int
	resetAt time.Time
}

// Limiter decides admission per client and rule using fixed windows.
// All state is guarded by a single mutex so that check-and-increment is
// one atomic step; two concurrent requests can never both take the last
// slot of a window.
type Limiter struct {
	enabled bool
	rules   []Rule

	mu      sync.Mutex
	windows map[string]*window

	// now is the clock; replaceable in tests.
	now func() time.Time
}

// New builds a limiter from configuration. The rule order is fixed
// (login, checkout, admin orders) and significant: first match wins.
// Per-rule overrides of zero inherit the configured defaults.
func New(cfg *config.RateLimitConfig) *Limiter {
	return &Limiter{
		enabled: cfg.Enabled,
		rules: []Rule{
			buildRule("login", "/api/auth/login", "POST", cfg.Login, cfg),
			buildRule("checkout", "/api/checkout", "POST", cfg.Checkout, cfg),
			buildRule("admin_orders", "/api/admin/orders", "PATCH", cfg.AdminOrders, cfg),
		},
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// buildRule materializes one rule, falling back to the default limit and
// window where the override is zero.
func buildRule(name, prefix, method string, rc config.RuleConfig, cfg *config.RateLimitConfig) Rule {
	limit := rc.Limit
	if limit == 0 {
		limit = cfg.DefaultLimit
	}
	windowMS := rc.WindowMS
	if windowMS == 0 {
		windowMS = cfg.DefaultWindowMS
	}
	return Rule{
		Name:   name,
		Prefix: prefix,
		Method: method,
		Limit:  limit,
		Window: time.Duration(windowMS) * time.Millisecond,
	}
}

// Enabled reports the process-wide switch. When false, Admit is never
// consulted and every request passes through.
func (l *Limiter) Enabled() bool {
	return l.enabled
}

// Rules returns the configured rules in match order.
func (l *Limiter) Rules() []Rule {
	return l.rules
}

// Match returns the first rule matching the request method and path.
func (l *Limiter) Match(method, path string) (Rule, bool) {
	for _, r := range l.rules {
		if r.Method == method && len(path) >= len(r.Prefix) && path[:len(r.Prefix)] == r.Prefix {
			return r, true
		}
	}
	return Rule{}, false
}

// Admit performs the fixed-window admission check for one request.
//
// If no live window exists for the (clientKey, rule) pair, a fresh one is
// created with count=1 and the request is allowed. Within a live window
// the count is incremented while below the limit. At the limit the
// request is rejected without incrementing — rejected requests do not
// consume budget.
func (l *Limiter) Admit(clientKey string, rule Rule) Decision {
	key := windowKey(clientKey, rule)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(rule.Window)}
		return Decision{Allowed: true, Limit: rule.Limit, Remaining: rule.Limit - 1}
	}

	if w.count < rule.Limit {
		w.count++
		return Decision{Allowed: true, Limit: rule.Limit, Remaining: rule.Limit - w.count}
	}

	retry := int(math.Ceil(w.resetAt.Sub(now).Seconds()))
	return Decision{Allowed: false, Limit: rule.Limit, RetryAfterSec: retry}
}

// Sweep removes windows whose reset time has elapsed and returns how many
// were removed. Sweeping never touches a live window, so admission
// semantics are unaffected; it only bounds memory held by idle clients.
func (l *Limiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// WindowCount returns the number of tracked windows. Used by the sweeper
// for logging and by tests.
func (l *Limiter) WindowCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// SetClockForTesting replaces the limiter's clock. Test-only.
func (l *Limiter) SetClockForTesting(now func() time.Time) {
	l.now = now
}

// windowKey builds the composite map key for a (client, rule) pair.
func windowKey(clientKey string, rule Rule) string {
	return fmt.Sprintf("%s:%s:%s", clientKey, rule.Method, rule.Prefix)
}
