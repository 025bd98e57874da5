// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

// Package middleware provides HTTP middleware shared by the API router.
//
// RequestID accepts an upstream X-Request-ID or mints a UUID, echoes it on
// the response and stores it, along with a fresh correlation ID, in the
// request context where logging.Ctx picks it up.
//
// PrometheusMetrics records request count, latency and in-flight requests.
// Endpoints are labeled by chi route pattern so path parameters do not
// explode label cardinality.
//
// Both are plain func(http.Handler) http.Handler and compose with chi:
//
//	r := chi.NewRouter()
//	r.Use(middleware.RequestID)
//	r.Use(middleware.PrometheusMetrics)
package middleware
