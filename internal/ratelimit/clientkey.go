// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

package ratelimit

import (
	"net/http"
	"strings"
)

// UnknownClient is the sentinel client key used when no forwarding header
// identifies the caller.
const UnknownClient = "unknown"

// ClientKey derives the rate-limit client identifier from forwarding
// headers: the first comma-separated X-Forwarded-For element, then
// X-Real-IP, then the "unknown" sentinel.
//
// This is a heuristic, not a security boundary: a client that controls
// these headers can choose its own bucket. Deployments that need a hard
// boundary must pin the headers at a trusted proxy.
func ClientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return UnknownClient
}
