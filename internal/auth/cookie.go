// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

package auth

import (
	"net/http"
	"time"

	"github.com/acegrocer/acegrocer/internal/config"
)

// CookieManager sets and clears the session cookie.
type CookieManager struct {
	name       string
	maxAge     time.Duration
	forceHTTPS bool
}

// NewCookieManager creates a cookie manager from the security configuration.
func NewCookieManager(cfg *config.SecurityConfig) *CookieManager {
	return &CookieManager{
		name:       cfg.CookieName,
		maxAge:     cfg.SessionTTL,
		forceHTTPS: cfg.CookieSecure,
	}
}

// TokenFromRequest extracts the raw session token from the request cookie.
// Returns empty string if the cookie is absent.
func (m *CookieManager) TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(m.name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SetSession writes the session cookie on the response.
// The Secure attribute is set when the request arrived over TLS (directly
// or via a TLS-terminating proxy) or when forced by configuration.
func (m *CookieManager) SetSession(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.forceHTTPS || requestIsHTTPS(r),
	})
}

// ClearSession expires the session cookie on the response.
func (m *CookieManager) ClearSession(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.forceHTTPS || requestIsHTTPS(r),
	})
}

// requestIsHTTPS reports whether the request arrived over TLS, checking
// X-Forwarded-Proto for reverse proxy setups.
func requestIsHTTPS(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
