// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Engine Metrics
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopscope_query_duration_seconds",
			Help:    "Duration of analytics engine computations in seconds (cache misses only)",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	QueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopscope_query_errors_total",
			Help: "Total number of failed analytics computations",
		},
		[]string{"operation"},
	)

	// Result Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopscope_cache_hits_total",
			Help: "Total number of result cache hits",
		},
		[]string{"operation"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopscope_cache_misses_total",
			Help: "Total number of result cache misses",
		},
		[]string{"operation"},
	)

	CacheDisabled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shopscope_cache_disabled",
			Help: "1 once the result cache has disabled itself after a backend failure",
		},
	)

	// Segmentation Metrics
	ClassificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shopscope_classification_duration_seconds",
			Help:    "Duration of full user segmentation runs",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	SegmentUsers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shopscope_segment_users",
			Help: "Number of visitors in each segment of the current assignment",
		},
		[]string{"segment"},
	)

	// Refresh Metrics
	SourceReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopscope_source_reloads_total",
			Help: "Total number of dataset reload attempts",
		},
		[]string{"result"}, // "success", "failure", "rejected"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shopscope_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopscope_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopscope_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shopscope_api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shopscope_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordQuery records one engine computation.
func RecordQuery(operation string, duration time.Duration, err error) {
	QueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		QueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordCacheLookup records a hit or a miss for operation.
func RecordCacheLookup(operation string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(operation).Inc()
		return
	}
	CacheMisses.WithLabelValues(operation).Inc()
}

// RecordClassification records a segmentation run and publishes per-segment sizes.
func RecordClassification(duration time.Duration, sizes map[string]int) {
	ClassificationDuration.Observe(duration.Seconds())
	SetSegmentSizes(sizes)
}

// SetSegmentSizes publishes per-segment sizes without observing a run, for
// assignments restored from a snapshot.
func SetSegmentSizes(sizes map[string]int) {
	for segment, n := range sizes {
		SegmentUsers.WithLabelValues(segment).Set(float64(n))
	}
}

// RecordReload counts a reload attempt by result.
func RecordReload(result string) {
	SourceReloads.WithLabelValues(result).Inc()
}

// SetBreakerState publishes a breaker state as 0 (closed), 1 (half-open) or 2 (open).
func SetBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
