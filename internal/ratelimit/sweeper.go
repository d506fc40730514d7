// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

package ratelimit

import (
	"context"
	"time"

	"github.com/acegrocer/acegrocer/internal/logging"
)

// DefaultSweepInterval is how often the sweeper reclaims expired windows.
const DefaultSweepInterval = 5 * time.Minute

// Sweeper periodically removes expired windows from a Limiter. It runs as
// a supervised service under the process supervisor tree and exists only
// to bound memory held by idle client keys; admission semantics do not
// depend on it.
type Sweeper struct {
	limiter  *Limiter
	interval time.Duration
}

// NewSweeper creates a sweeper for the given limiter. A non-positive
// interval falls back to DefaultSweepInterval.
func NewSweeper(limiter *Limiter, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{limiter: limiter, interval: interval}
}

// Serve implements suture.Service. It ticks until the context is canceled.
func (s *Sweeper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := s.limiter.Sweep(); removed > 0 {
				logging.Debug().
					Str("component", "ratelimit").
					Int("removed", removed).
					Int("remaining", s.limiter.WindowCount()).
					Msg("Swept expired rate limit windows")
			}
		}
	}
}

// String identifies the service in supervisor logs.
func (s *Sweeper) String() string {
	return "ratelimit-sweeper"
}
