// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

// Package metrics accumulates request/response counters for the gatekeeper.
//
// The Collector keeps cumulative totals since process start: requests
// seen, responses completed, 4xx/5xx classes, and a latency summary
// (sum, count, min, max), globally and per route label. Requests and
// responses are recorded at different pipeline stages, so responses may
// exceed requests under concurrent in-flight traffic; that divergence is
// intentional and no invariant ties the two together.
//
// Every mutation happens under a single mutex: requests are processed
// concurrently and the recorded counts must reflect serialized updates
// with no lost increments.
//
// The Collector also implements prometheus.Collector (see prometheus.go)
// so the same state backs both the JSON snapshot and the text exposition.
package metrics

import (
	"math"
	"sync"
)

// RouteStats is the per-route counter sub-record.
type RouteStats struct {
	Requests        int64   `json:"requests"`
	Responses       int64   `json:"responses"`
	Errors4xx       int64   `json:"errors4xx"`
	Errors5xx       int64   `json:"errors5xx"`
	TotalDurationMS float64 `json:"totalDurationMs"`
	CountDuration   int64   `json:"countDuration"`
}

// Snapshot is an immutable view of the collector's counters.
// AvgMS is always derived (sum/count, 0 when empty) and MinMS is
// normalized to 0 when nothing has been observed — the internal infinity
// sentinel never leaks to callers.
type Snapshot struct {
	Requests        int64                 `json:"requests"`
	Responses       int64                 `json:"responses"`
	Errors4xx       int64                 `json:"errors4xx"`
	Errors5xx       int64                 `json:"errors5xx"`
	TotalDurationMS float64               `json:"totalDurationMs"`
	CountDuration   int64                 `json:"countDuration"`
	MinMS           float64               `json:"minMs"`
	MaxMS           float64               `json:"maxMs"`
	AvgMS           float64               `json:"avgMs"`
	Routes          map[string]RouteStats `json:"routes"`
}

// Collector accumulates process-wide request metrics.
// Construct one per process with New and pass it by handle; tests build
// isolated instances instead of sharing an ambient singleton.
type Collector struct {
	mu sync.Mutex

	requests        int64
	responses       int64
	errors4xx       int64
	errors5xx       int64
	totalDurationMS float64
	countDuration   int64
	minMS           float64 // +Inf until the first observation
	maxMS           float64

	routes map[string]*RouteStats
}

// New creates a collector with all counters zero and the minimum set to
// positive infinity so the first observation always sets a new minimum.
func New() *Collector {
	return &Collector{
		minMS:  math.Inf(1),
		routes: make(map[string]*RouteStats),
	}
}

// RecordRequest counts one inbound request, globally and under the route
// label when one is supplied. Called before any authorization or business
// logic runs.
func (c *Collector) RecordRequest(routeLabel string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests++
	if r := c.route(routeLabel); r != nil {
		r.Requests++
	}
}

// RecordResponse counts one completed response.
//
// The status is classified into the 4xx bucket for [400,500) and the 5xx
// bucket for >= 500; other statuses touch neither. A finite, non-negative
// durationMS is folded into the latency summary; pass a negative value
// when no duration was observed.
func (c *Collector) RecordResponse(status int, durationMS float64, routeLabel string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.responses++
	if status >= 400 && status < 500 {
		c.errors4xx++
	}
	if status >= 500 {
		c.errors5xx++
	}

	validDuration := durationMS >= 0 && !math.IsInf(durationMS, 0) && !math.IsNaN(durationMS)
	if validDuration {
		c.totalDurationMS += durationMS
		c.countDuration++
		if durationMS < c.minMS {
			c.minMS = durationMS
		}
		if durationMS > c.maxMS {
			c.maxMS = durationMS
		}
	}

	if r := c.route(routeLabel); r != nil {
		r.Responses++
		if status >= 400 && status < 500 {
			r.Errors4xx++
		}
		if status >= 500 {
			r.Errors5xx++
		}
		if validDuration {
			r.TotalDurationMS += durationMS
			r.CountDuration++
		}
	}
}

// Snapshot returns a copy of the current counters with derived fields.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Requests:        c.requests,
		Responses:       c.responses,
		Errors4xx:       c.errors4xx,
		Errors5xx:       c.errors5xx,
		TotalDurationMS: c.totalDurationMS,
		CountDuration:   c.countDuration,
		MaxMS:           c.maxMS,
		Routes:          make(map[string]RouteStats, len(c.routes)),
	}

	if c.countDuration > 0 {
		snap.AvgMS = c.totalDurationMS / float64(c.countDuration)
	}
	if !math.IsInf(c.minMS, 1) {
		snap.MinMS = c.minMS
	}
	for label, r := range c.routes {
		snap.Routes[label] = *r
	}
	return snap
}

// ResetForTesting restores all counters, global and per-route, to their
// initial state. It exists to give test suites a clean slate and is not
// reachable from any request path.
func (c *Collector) ResetForTesting() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests = 0
	c.responses = 0
	c.errors4xx = 0
	c.errors5xx = 0
	c.totalDurationMS = 0
	c.countDuration = 0
	c.minMS = math.Inf(1)
	c.maxMS = 0
	c.routes = make(map[string]*RouteStats)
}

// route returns the sub-record for a label, creating it lazily.
// An empty label means "no per-route tracking" and returns nil.
// Callers must hold c.mu.
func (c *Collector) route(label string) *RouteStats {
	if label == "" {
		return nil
	}
	r, ok := c.routes[label]
	if !ok {
		r = &RouteStats{}
		c.routes[label] = r
	}
	return r
}
