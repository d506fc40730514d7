// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

package middleware

import (
	"net/http"
	"strings"
)

// cspDirectives builds the Content-Security-Policy value. The script-src
// is relaxed only outside the production posture, where bundler dev
// tooling needs eval and inline scripts.
func cspDirectives(production bool) string {
	scriptSrc := "script-src 'self' 'unsafe-eval' 'unsafe-inline'"
	if production {
		scriptSrc = "script-src 'self'"
	}
	return strings.Join([]string{
		"default-src 'self'",
		scriptSrc,
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data:",
		"connect-src 'self'",
		"frame-ancestors 'self'",
	}, "; ")
}

// setSecurityHeaders attaches the fixed security headers to a response.
// Strict-Transport-Security is only sent in the hardened production
// posture; sending it from a dev HTTP listener would poison browsers.
func setSecurityHeaders(w http.ResponseWriter, production bool, csp string) {
	h := w.Header()
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	h.Set("X-Frame-Options", "SAMEORIGIN")
	h.Set("Permissions-Policy", "geolocation=(), microphone=()")
	h.Set("Content-Security-Policy", csp)
	if production {
		h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
	}
}
