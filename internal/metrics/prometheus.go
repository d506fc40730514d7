// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric descriptors for the text exposition. Names keep the historical
// "ace_" prefix so existing scrape configs keep working.
var (
	descRequests = prometheus.NewDesc(
		"ace_requests_total",
		"Total number of requests",
		nil, nil,
	)
	descResponses = prometheus.NewDesc(
		"ace_responses_total",
		"Total number of responses",
		nil, nil,
	)
	descErrors4xx = prometheus.NewDesc(
		"ace_errors4xx_total",
		"Total number of 4xx responses",
		nil, nil,
	)
	descErrors5xx = prometheus.NewDesc(
		"ace_errors5xx_total",
		"Total number of 5xx responses",
		nil, nil,
	)
	descDuration = prometheus.NewDesc(
		"ace_request_duration_ms",
		"Summary of request duration (ms)",
		nil, nil,
	)
	descDurationMin = prometheus.NewDesc(
		"ace_request_duration_ms_min",
		"Minimum observed duration (ms)",
		nil, nil,
	)
	descDurationMax = prometheus.NewDesc(
		"ace_request_duration_ms_max",
		"Maximum observed duration (ms)",
		nil, nil,
	)
	descDurationAvg = prometheus.NewDesc(
		"ace_request_duration_ms_avg",
		"Average observed duration (ms)",
		nil, nil,
	)

	descRouteRequests = prometheus.NewDesc(
		"ace_route_requests_total",
		"Total number of requests per route",
		[]string{"route"}, nil,
	)
	descRouteResponses = prometheus.NewDesc(
		"ace_route_responses_total",
		"Total number of responses per route",
		[]string{"route"}, nil,
	)
	descRouteErrors4xx = prometheus.NewDesc(
		"ace_route_errors4xx_total",
		"Total number of 4xx responses per route",
		[]string{"route"}, nil,
	)
	descRouteErrors5xx = prometheus.NewDesc(
		"ace_route_errors5xx_total",
		"Total number of 5xx responses per route",
		[]string{"route"}, nil,
	)
	descRouteDuration = prometheus.NewDesc(
		"ace_route_request_duration_ms",
		"Summary of request duration per route (ms)",
		[]string{"route"}, nil,
	)
)

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descRequests
	ch <- descResponses
	ch <- descErrors4xx
	ch <- descErrors5xx
	ch <- descDuration
	ch <- descDurationMin
	ch <- descDurationMax
	ch <- descDurationAvg
	ch <- descRouteRequests
	ch <- descRouteResponses
	ch <- descRouteErrors4xx
	ch <- descRouteErrors5xx
	ch <- descRouteDuration
}

// Collect implements prometheus.Collector by emitting const metrics from
// a snapshot, so a scrape sees one consistent view of the counters.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.Snapshot()

	ch <- prometheus.MustNewConstMetric(descRequests, prometheus.CounterValue, float64(snap.Requests))
	ch <- prometheus.MustNewConstMetric(descResponses, prometheus.CounterValue, float64(snap.Responses))
	ch <- prometheus.MustNewConstMetric(descErrors4xx, prometheus.CounterValue, float64(snap.Errors4xx))
	ch <- prometheus.MustNewConstMetric(descErrors5xx, prometheus.CounterValue, float64(snap.Errors5xx))
	ch <- prometheus.MustNewConstSummary(descDuration, uint64(snap.CountDuration), snap.TotalDurationMS, nil)
	ch <- prometheus.MustNewConstMetric(descDurationMin, prometheus.GaugeValue, snap.MinMS)
	ch <- prometheus.MustNewConstMetric(descDurationMax, prometheus.GaugeValue, snap.MaxMS)
	ch <- prometheus.MustNewConstMetric(descDurationAvg, prometheus.GaugeValue, snap.AvgMS)

	for label, r := range snap.Routes {
		ch <- prometheus.MustNewConstMetric(descRouteRequests, prometheus.CounterValue, float64(r.Requests), label)
		ch <- prometheus.MustNewConstMetric(descRouteResponses, prometheus.CounterValue, float64(r.Responses), label)
		ch <- prometheus.MustNewConstMetric(descRouteErrors4xx, prometheus.CounterValue, float64(r.Errors4xx), label)
		ch <- prometheus.MustNewConstMetric(descRouteErrors5xx, prometheus.CounterValue, float64(r.Errors5xx), label)
		ch <- prometheus.MustNewConstSummary(descRouteDuration, uint64(r.CountDuration), r.TotalDurationMS, nil, label)
	}
}
