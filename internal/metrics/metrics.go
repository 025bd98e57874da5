// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendgate_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trendgate_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trendgate_api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendgate_api_rate_limit_hits_total",
			Help: "Requests rejected by the inbound rate limiter",
		},
		[]string{"endpoint"},
	)

	// Provider Metrics
	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendgate_provider_requests_total",
			Help: "Outbound trend provider calls",
		},
		[]string{"operation", "result"}, // result: success, rate_limited, error, empty
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trendgate_provider_request_duration_seconds",
			Help:    "Outbound trend provider call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	ProviderRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendgate_provider_retries_total",
			Help: "Retries scheduled by the fetch primitive",
		},
		[]string{"aggregator", "reason"}, // reason: rate_limited, error, empty
	)

	// Aggregation Metrics
	AggregationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendgate_aggregations_total",
			Help: "Aggregation runs by outcome",
		},
		[]string{"aggregator", "outcome"}, // outcome: fresh, cached, rate_limited, empty
	)

	AggregationBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendgate_aggregation_batches_total",
			Help: "Provider batches issued by aggregators",
		},
		[]string{"aggregator"},
	)

	// Fallback Cache Metrics
	FallbackCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendgate_fallback_cache_lookups_total",
			Help: "Fallback cache lookups by result",
		},
		[]string{"store", "result"}, // result: hit, miss
	)

	FallbackCacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trendgate_fallback_cache_entries",
			Help: "Entries currently held by a fallback cache",
		},
		[]string{"store"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: success, failure, rejected
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordProviderCall records one outbound provider round-trip.
func RecordProviderCall(operation, result string, duration time.Duration) {
	ProviderRequestsTotal.WithLabelValues(operation, result).Inc()
	ProviderRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordRetry counts a retry scheduled by an aggregator's fetch loop.
func RecordRetry(aggregator, reason string) {
	ProviderRetries.WithLabelValues(aggregator, reason).Inc()
}

// RecordAggregation counts a finished aggregation run.
func RecordAggregation(aggregator, outcome string) {
	AggregationsTotal.WithLabelValues(aggregator, outcome).Inc()
}

// RecordBatch counts one batch fetch issued by an aggregator.
func RecordBatch(aggregator string) {
	AggregationBatches.WithLabelValues(aggregator).Inc()
}

// RecordFallbackLookup counts a fallback cache hit or miss.
func RecordFallbackLookup(store string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	FallbackCacheLookups.WithLabelValues(store, result).Inc()
}

// SetFallbackEntries publishes the current size of a fallback cache.
func SetFallbackEntries(store string, n int) {
	FallbackCacheEntries.WithLabelValues(store).Set(float64(n))
}
