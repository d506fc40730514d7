// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

// Package middleware provides the request gatekeeper: the single
// interception point every in-scope request passes through.
//
// Per request the gatekeeper stamps a request ID, records the "request
// seen" metric, attaches the fixed security headers, decodes the session
// token into the request context, consults the rate limiter, and — after
// the downstream handler returns or the 429 short-circuit fires — records
// the completed response with its duration.
//
// The gatekeeper itself is never a source of request failure: only a
// deliberate rate-limit rejection produces a non-2xx short-circuit.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/acegrocer/acegrocer/internal/auth"
	"github.com/acegrocer/acegrocer/internal/config"
	"github.com/acegrocer/acegrocer/internal/logging"
	"github.com/acegrocer/acegrocer/internal/metrics"
	"github.com/acegrocer/acegrocer/internal/ratelimit"
)

// Gatekeeper composes the token codec, rate limiter and metrics collector
// into one per-request pipeline. Construct once at startup and mount on
// the router; all fields are read-only after construction.
type Gatekeeper struct {
	codec      *auth.TokenCodec
	cookies    *auth.CookieManager
	limiter    *ratelimit.Limiter
	collector  *metrics.Collector
	scope      []string
	production bool
	csp        string
}

// NewGatekeeper wires the gatekeeper from its collaborators and the
// configured route scope.
func NewGatekeeper(
	cfg *config.Config,
	codec *auth.TokenCodec,
	cookies *auth.CookieManager,
	limiter *ratelimit.Limiter,
	collector *metrics.Collector,
) *Gatekeeper {
	production := cfg.Server.IsProduction()
	return &Gatekeeper{
		codec:      codec,
		cookies:    cookies,
		limiter:    limiter,
		collector:  collector,
		scope:      cfg.Gatekeeper.Scope,
		production: production,
		csp:        cspDirectives(production),
	}
}

// Handler returns the gatekeeper as chi-compatible middleware.
func (g *Gatekeeper) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.inScope(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		routeLabel := r.Method + " " + r.URL.Path

		// Reuse an upstream proxy's request ID when present.
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := logging.ContextWithRequestID(r.Context(), requestID)

		g.collector.RecordRequest(routeLabel)
		setSecurityHeaders(w, g.production, g.csp)

		// Decode the session token for downstream authorization. A bad
		// token is simply an anonymous request, never an error here.
		cred := g.codec.Verify(g.cookies.TokenFromRequest(r))
		ctx = auth.ContextWithCredential(ctx, cred)

		logging.Ctx(ctx).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request received")

		if g.limiter.Enabled() {
			if rule, ok := g.limiter.Match(r.Method, r.URL.Path); ok {
				decision := g.limiter.Admit(ratelimit.ClientKey(r), rule)
				w.Header().Set("RateLimit-Limit", strconv.Itoa(decision.Limit))
				if !decision.Allowed {
					w.Header().Set("RateLimit-Remaining", "0")
					w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfterSec))
					writeThrottled(w)

					durMS := float64(time.Since(start).Microseconds()) / 1000.0
					g.collector.RecordResponse(http.StatusTooManyRequests, durMS, routeLabel)
					logging.Ctx(ctx).Warn().
						Str("rule", rule.Name).
						Int("retry_after_sec", decision.RetryAfterSec).
						Msg("Request rejected by rate limiter")
					return
				}
				w.Header().Set("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			}
		}

		ww := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r.WithContext(ctx))

		durMS := float64(time.Since(start).Microseconds()) / 1000.0
		g.collector.RecordResponse(ww.statusCode, durMS, routeLabel)

		logging.Ctx(ctx).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.statusCode).
			Float64("duration_ms", durMS).
			Msg("Request completed")
	})
}

// inScope reports whether the path matches any configured scope glob.
// Entries ending in "/*" match by prefix, other entries match exactly.
func (g *Gatekeeper) inScope(path string) bool {
	for _, pattern := range g.scope {
		if matchScope(pattern, path) {
			return true
		}
	}
	return false
}

// matchScope matches one scope glob against a request path.
// "/api/*" matches "/api" itself and everything below it.
func matchScope(pattern, path string) bool {
	const suffix = "/*"
	if len(pattern) > len(suffix) && pattern[len(pattern)-len(suffix):] == suffix {
		prefix := pattern[:len(pattern)-len(suffix)]
		return path == prefix || (len(path) > len(prefix) && path[:len(prefix)+1] == prefix+"/")
	}
	return path == pattern
}

// throttledBody is the structured 429 payload.
type throttledBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// writeThrottled emits the 429 short-circuit response.
func writeThrottled(w http.ResponseWriter) {
	var body throttledBody
	body.Error.Code = "RATE_LIMITED"
	body.Error.Message = "Too Many Requests"

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	if data, err := json.Marshal(&body); err == nil {
		_, _ = w.Write(data)
	}
}

// statusResponseWriter wraps http.ResponseWriter to capture the status code.
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code.
func (w *statusResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
