// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/acegrocer/acegrocer/internal/config"
)

func testConfig() *config.RateLimitConfig {
	return &config.RateLimitConfig{
		Enabled:         true,
		DefaultLimit:    30,
		DefaultWindowMS: 60000,
		Login:           config.RuleConfig{Limit: 5, WindowMS: 60000},
		Checkout:        config.RuleConfig{Limit: 10, WindowMS: 60000},
		AdminOrders:     config.RuleConfig{Limit: 20, WindowMS: 60000},
	}
}

func TestLimiter_AllowsUntilLimitThenRejects(t *testing.T) {
	l := New(testConfig())
	rule, ok := l.Match("POST", "/api/auth/login")
	if !ok {
		t.Fatal("no rule matched POST /api/auth/login")
	}
	if rule.Limit != 5 {
		t.Fatalf("login limit = %d, want 5", rule.Limit)
	}

	for i := 1; i <= 5; i++ {
		d := l.Admit("10.0.0.1", rule)
		if !d.Allowed {
			t.Fatalf("request %d rejected, want allowed", i)
		}
		if d.Remaining != 5-i {
			t.Errorf("request %d: Remaining = %d, want %d", i, d.Remaining, 5-i)
		}
	}

	// 6th and onward are rejected and never consume budget.
	for i := 6; i <= 10; i++ {
		d := l.Admit("10.0.0.1", rule)
		if d.Allowed {
			t.Fatalf("request %d allowed, want rejected", i)
		}
		if d.Remaining != 0 {
			t.Errorf("rejected request: Remaining = %d, want 0", d.Remaining)
		}
		if d.RetryAfterSec < 1 || d.RetryAfterSec > 60 {
			t.Errorf("RetryAfterSec = %d, want within (0, 60]", d.RetryAfterSec)
		}
	}
}

func TestLimiter_WindowRollover(t *testing.T) {
	l := New(testConfig())
	rule, _ := l.Match("POST", "/api/auth/login")

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	l.SetClockForTesting(func() time.Time { return now })

	for i := 0; i < 5; i++ {
		l.Admit("client", rule)
	}
	if d := l.Admit("client", rule); d.Allowed {
		t.Fatal("expected rejection at limit")
	}

	// One millisecond before the reset the window is still live.
	now = now.Add(rule.Window - time.Millisecond)
	if d := l.Admit("client", rule); d.Allowed {
		t.Fatal("expected rejection just before reset")
	}

	// At the boundary the window is replaced whole, full budget again.
	now = now.Add(time.Millisecond)
	d := l.Admit("client", rule)
	if !d.Allowed {
		t.Fatal("expected fresh window at reset boundary")
	}
	if d.Remaining != rule.Limit-1 {
		t.Errorf("Remaining after rollover = %d, want %d", d.Remaining, rule.Limit-1)
	}
}

func TestLimiter_RejectionDoesNotConsumeBudget(t *testing.T) {
	l := New(testConfig())
	rule, _ := l.Match("POST", "/api/auth/login")

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	l.SetClockForTesting(func() time.Time { return now })

	for i := 0; i < 5; i++ {
		l.Admit("c", rule)
	}
	// A burst of rejections must leave the stored count at the limit, so
	// the retry hint stays tied to the original window.
	for i := 0; i < 100; i++ {
		l.Admit("c", rule)
	}

	now = now.Add(rule.Window)
	if d := l.Admit("c", rule); !d.Allowed {
		t.Error("window did not reset after rejected burst; count leaked past limit")
	}
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l := New(testConfig())
	rule, _ := l.Match("POST", "/api/auth/login")

	for i := 0; i < 5; i++ {
		l.Admit("alice", rule)
	}
	if d := l.Admit("alice", rule); d.Allowed {
		t.Fatal("alice should be throttled")
	}
	if d := l.Admit("bob", rule); !d.Allowed {
		t.Error("bob throttled by alice's consumption")
	}
}

func TestLimiter_RulesAreIndependent(t *testing.T) {
	l := New(testConfig())
	login, _ := l.Match("POST", "/api/auth/login")
	checkout, _ := l.Match("POST", "/api/checkout")

	for i := 0; i < 5; i++ {
		l.Admit("c", login)
	}
	if d := l.Admit("c", login); d.Allowed {
		t.Fatal("login should be throttled")
	}
	if d := l.Admit("c", checkout); !d.Allowed {
		t.Error("checkout throttled by login consumption")
	}
}

func TestLimiter_Match(t *testing.T) {
	l := New(testConfig())

	cases := []struct {
		method   string
		path     string
		wantRule string
		wantOK   bool
	}{
		{"POST", "/api/auth/login", "login", true},
		{"POST", "/api/auth/login/", "login", true}, // prefix match
		{"GET", "/api/auth/login", "", false},       // method mismatch
		{"POST", "/api/checkout", "checkout", true},
		{"PATCH", "/api/admin/orders", "admin_orders", true},
		{"GET", "/api/admin/orders", "", false},
		{"POST", "/api/products", "", false},
		{"POST", "/api", "", false},
	}
	for _, tc := range cases {
		rule, ok := l.Match(tc.method, tc.path)
		if ok != tc.wantOK {
			t.Errorf("Match(%s %s) ok = %v, want %v", tc.method, tc.path, ok, tc.wantOK)
			continue
		}
		if ok && rule.Name != tc.wantRule {
			t.Errorf("Match(%s %s) = %s, want %s", tc.method, tc.path, rule.Name, tc.wantRule)
		}
	}
}

func TestLimiter_ZeroOverridesInheritDefaults(t *testing.T) {
	cfg := testConfig()
	cfg.Checkout = config.RuleConfig{} // fully inherited
	l := New(cfg)

	rule, _ := l.Match("POST", "/api/checkout")
	if rule.Limit != 30 {
		t.Errorf("inherited limit = %d, want 30", rule.Limit)
	}
	if rule.Window != time.Minute {
		t.Errorf("inherited window = %s, want 1m", rule.Window)
	}
}

func TestLimiter_SweepRemovesOnlyExpiredWindows(t *testing.T) {
	l := New(testConfig())
	login, _ := l.Match("POST", "/api/auth/login")

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	l.SetClockForTesting(func() time.Time { return now })

	l.Admit("old", login)
	now = now.Add(30 * time.Second)
	l.Admit("fresh", login)

	if n := l.WindowCount(); n != 2 {
		t.Fatalf("WindowCount = %d, want 2", n)
	}

	// "old" expires 60s after creation; "fresh" is still live.
	now = now.Add(31 * time.Second)
	if removed := l.Sweep(); removed != 1 {
		t.Errorf("Sweep removed %d windows, want 1", removed)
	}
	if n := l.WindowCount(); n != 1 {
		t.Errorf("WindowCount after sweep = %d, want 1", n)
	}

	// The surviving live window still enforces its count.
	for i := 0; i < 4; i++ {
		l.Admit("fresh", login)
	}
	if d := l.Admit("fresh", login); d.Allowed {
		t.Error("sweep disturbed a live window")
	}
}

func TestLimiter_DisabledConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	l := New(cfg)
	if l.Enabled() {
		t.Error("Enabled() = true for disabled config")
	}
}

func TestClientKey(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"no headers", nil, UnknownClient},
		{"x-forwarded-for single", map[string]string{"X-Forwarded-For": "203.0.113.9"}, "203.0.113.9"},
		{"x-forwarded-for chain", map[string]string{"X-Forwarded-For": "203.0.113.9, 70.41.3.18, 150.172.238.178"}, "203.0.113.9"},
		{"x-forwarded-for padded", map[string]string{"X-Forwarded-For": "  203.0.113.9 , 70.41.3.18"}, "203.0.113.9"},
		{"x-real-ip fallback", map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7"},
		{"forwarded-for wins over real-ip", map[string]string{"X-Forwarded-For": "203.0.113.9", "X-Real-IP": "198.51.100.7"}, "203.0.113.9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := ClientKey(req); got != tc.want {
				t.Errorf("ClientKey = %q, want %q", got, tc.want)
			}
		})
	}
}
