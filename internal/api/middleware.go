// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/acegrocer/acegrocer/internal/auth"
	"github.com/acegrocer/acegrocer/internal/authz"
	"github.com/acegrocer/acegrocer/internal/logging"
	"github.com/acegrocer/acegrocer/internal/models"
)

// corsHandler builds the CORS middleware from the configured origins.
// Credentials must be allowed because the session rides in a cookie.
func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "RateLimit-Limit", "RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// healthRateLimit keeps monitoring probes from being abused while still
// allowing frequent polling.
func healthRateLimit() func(http.Handler) http.Handler {
	return httprate.LimitByRealIP(1000, time.Minute)
}

// authorize gates a route group behind the Casbin policy. The gatekeeper
// has already decoded the session cookie into the request context; an
// anonymous request gets 401, an authenticated one without a matching
// policy gets 403.
func authorize(enforcer *authz.Enforcer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cred := auth.CredentialFromContext(r.Context())
			if cred == nil {
				respondError(w, http.StatusUnauthorized, codeUnauthorized, "Authentication required", nil)
				return
			}
			if !enforcer.Allowed(string(cred.Role), r.URL.Path, r.Method) {
				logging.Ctx(r.Context()).Warn().
					Str("role", string(cred.Role)).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("Authorization denied")
				respondError(w, http.StatusForbidden, codeForbidden, "Forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAdmin short-circuits non-admin requests. Used where the Casbin
// object pattern alone cannot express the rule.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cred := auth.CredentialFromContext(r.Context())
		if cred == nil {
			respondError(w, http.StatusUnauthorized, codeUnauthorized, "Authentication required", nil)
			return
		}
		if cred.Role != models.RoleAdmin {
			respondError(w, http.StatusForbidden, codeForbidden, "Forbidden", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
