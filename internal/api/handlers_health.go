// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

package api

import (
	"context"
	"net/http"
	"time"
)

// handleHealthLive reports process liveness. It never touches the
// database; a wedged store must not get the process restarted by the
// liveness probe.
func (s *Server) handleHealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleHealthReady reports readiness to serve traffic, including a
// database ping.
func (s *Server) handleHealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"reason": "database unreachable",
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
