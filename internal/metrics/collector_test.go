// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

package metrics

import (
	"math"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCollector_FreshSnapshotIsZero(t *testing.T) {
	c := New()
	snap := c.Snapshot()

	if snap.Requests != 0 || snap.Responses != 0 || snap.Errors4xx != 0 || snap.Errors5xx != 0 {
		t.Errorf("fresh snapshot has non-zero counters: %+v", snap)
	}
	// The +Inf minimum sentinel must never leak out.
	if snap.MinMS != 0 {
		t.Errorf("fresh MinMS = %v, want 0", snap.MinMS)
	}
	if snap.AvgMS != 0 {
		t.Errorf("fresh AvgMS = %v, want 0", snap.AvgMS)
	}
	if len(snap.Routes) != 0 {
		t.Errorf("fresh snapshot has routes: %v", snap.Routes)
	}
}

func TestCollector_CountsAndLatencySummary(t *testing.T) {
	c := New()

	c.RecordRequest("GET /api/products")
	c.RecordRequest("POST /api/checkout")
	c.RecordResponse(200, 10, "GET /api/products")
	c.RecordResponse(404, 100, "GET /api/products")
	c.RecordResponse(500, 50, "POST /api/checkout")

	snap := c.Snapshot()
	if snap.Requests != 2 {
		t.Errorf("Requests = %d, want 2", snap.Requests)
	}
	// Responses legitimately exceed requests when responses finish for
	// traffic whose request was counted in an earlier snapshot period.
	if snap.Responses != 3 {
		t.Errorf("Responses = %d, want 3", snap.Responses)
	}
	if snap.Errors4xx != 1 {
		t.Errorf("Errors4xx = %d, want 1", snap.Errors4xx)
	}
	if snap.Errors5xx != 1 {
		t.Errorf("Errors5xx = %d, want 1", snap.Errors5xx)
	}
	if snap.MinMS != 10 {
		t.Errorf("MinMS = %v, want 10", snap.MinMS)
	}
	if snap.MaxMS != 100 {
		t.Errorf("MaxMS = %v, want 100", snap.MaxMS)
	}
	wantAvg := 160.0 / 3.0
	if math.Abs(snap.AvgMS-wantAvg) > 1e-9 {
		t.Errorf("AvgMS = %v, want %v", snap.AvgMS, wantAvg)
	}

	products := snap.Routes["GET /api/products"]
	if products.Requests != 1 || products.Responses != 2 || products.Errors4xx != 1 {
		t.Errorf("products route stats = %+v", products)
	}
	if products.TotalDurationMS != 110 || products.CountDuration != 2 {
		t.Errorf("products route durations = %+v", products)
	}
}

func TestCollector_NegativeDurationMeansAbsent(t *testing.T) {
	c := New()
	c.RecordResponse(200, -1, "GET /x")
	c.RecordResponse(200, math.Inf(1), "GET /x")
	c.RecordResponse(200, math.NaN(), "GET /x")

	snap := c.Snapshot()
	if snap.Responses != 3 {
		t.Errorf("Responses = %d, want 3", snap.Responses)
	}
	if snap.CountDuration != 0 {
		t.Errorf("CountDuration = %d, want 0 (no valid durations)", snap.CountDuration)
	}
	if snap.MinMS != 0 || snap.MaxMS != 0 || snap.AvgMS != 0 {
		t.Errorf("latency summary touched by invalid durations: %+v", snap)
	}
}

func TestCollector_StatusBoundaries(t *testing.T) {
	c := New()
	for _, status := range []int{399, 400, 499, 500, 599, 200, 301} {
		c.RecordResponse(status, -1, "")
	}

	snap := c.Snapshot()
	if snap.Errors4xx != 2 {
		t.Errorf("Errors4xx = %d, want 2 (400 and 499)", snap.Errors4xx)
	}
	if snap.Errors5xx != 2 {
		t.Errorf("Errors5xx = %d, want 2 (500 and 599)", snap.Errors5xx)
	}
}

func TestCollector_ResetForTesting(t *testing.T) {
	c := New()
	c.RecordRequest("GET /a")
	c.RecordResponse(500, 42, "GET /a")

	c.ResetForTesting()
	snap := c.Snapshot()
	if snap.Requests != 0 || snap.Responses != 0 || snap.Errors5xx != 0 {
		t.Errorf("counters survived reset: %+v", snap)
	}
	if snap.MinMS != 0 || snap.MaxMS != 0 {
		t.Errorf("latency summary survived reset: %+v", snap)
	}
	if len(snap.Routes) != 0 {
		t.Errorf("routes survived reset: %v", snap.Routes)
	}

	// The minimum sentinel must be re-armed: the next observation sets it.
	c.RecordResponse(200, 7, "")
	if got := c.Snapshot().MinMS; got != 7 {
		t.Errorf("MinMS after reset + observe = %v, want 7", got)
	}
}

func TestCollector_ConcurrentRecording(t *testing.T) {
	c := New()
	const workers = 8
	const perWorker = 500

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				c.RecordRequest("GET /api/products")
				c.RecordResponse(200, 1, "GET /api/products")
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	want := int64(workers * perWorker)
	if snap.Requests != want {
		t.Errorf("Requests = %d, want %d (lost increments)", snap.Requests, want)
	}
	if snap.Responses != want {
		t.Errorf("Responses = %d, want %d (lost increments)", snap.Responses, want)
	}
}

func TestCollector_PrometheusExposition(t *testing.T) {
	c := New()
	c.RecordRequest("GET /api/products")
	c.RecordResponse(200, 12.5, "GET /api/products")
	c.RecordResponse(404, 3.5, "GET /api/products")

	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	got := map[string]float64{}
	for _, fam := range families {
		switch fam.GetName() {
		case "ace_requests_total":
			got[fam.GetName()] = fam.GetMetric()[0].GetCounter().GetValue()
		case "ace_responses_total":
			got[fam.GetName()] = fam.GetMetric()[0].GetCounter().GetValue()
		case "ace_errors4xx_total":
			got[fam.GetName()] = fam.GetMetric()[0].GetCounter().GetValue()
		case "ace_request_duration_ms":
			got[fam.GetName()] = fam.GetMetric()[0].GetSummary().GetSampleSum()
		}
	}

	if got["ace_requests_total"] != 1 {
		t.Errorf("ace_requests_total = %v, want 1", got["ace_requests_total"])
	}
	if got["ace_responses_total"] != 2 {
		t.Errorf("ace_responses_total = %v, want 2", got["ace_responses_total"])
	}
	if got["ace_errors4xx_total"] != 1 {
		t.Errorf("ace_errors4xx_total = %v, want 1", got["ace_errors4xx_total"])
	}
	if got["ace_request_duration_ms"] != 16 {
		t.Errorf("ace_request_duration_ms sum = %v, want 16", got["ace_request_duration_ms"])
	}
}
