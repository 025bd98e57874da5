// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

/*
Package api provides the HTTP layer of Trendgate.

Routes:

  - GET, POST /trends: multi-keyword time-series comparison on one 0-100 scale
  - GET, POST /trends_geo: per-keyword region breakdown
  - GET /trends/interest: single-keyword daily timeline
  - GET /health/live, GET /health/ready: probes
  - GET /metrics: Prometheus exposition
  - GET /admin/cache, POST /admin/cache/clear: fallback cache inspection,
    registered only when admin.enabled is set

Every route shares the request-id, real-ip, JSON panic recovery, CORS and
metrics middleware. Trend routes are additionally behind the per-IP
httprate limiter and the optional request timeout.

Success bodies are the aggregator results serialized directly; failures are
{"error": "..."} with 400 for bad input and 500 for anything unexpected.

A days value that is not an integer, or lies outside 1..1825, is bad input:
it gets 400 before any provider call, never 500, and retrying it is
pointless.

Usage Example:

	handler := api.NewHandler(api.Deps{
	    Series:   seriesAggregator,
	    Geo:      geoAggregator,
	    Interest: interestService,
	    State:    state,
	    Breaker:  breaker,
	    Config:   cfg,
	})
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(&cfg.Security, &cfg.Server))
	srv := &http.Server{Addr: ":8080", Handler: router.Setup()}
*/
package api
