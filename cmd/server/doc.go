// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

/*
Package main is the entry point of the Trendgate server.

Trendgate sits between a web front end and the Google Trends web endpoints. It
compares any number of keywords on one 0-100 scale by chaining five-keyword
comparisons through a shared pivot keyword, breaks keyword interest down by
region, and keeps the last good answer of every keyword so that provider rate
limits degrade to slightly stale data instead of errors.

# Application Architecture

	RootSupervisor ("trendgate")
	├── BackgroundSupervisor ("background-layer")
	│   └── Cache statistics reporter
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi)

Component initialization order:

 1. Configuration: koanf v2 defaults, config.yaml, environment variables
 2. Logging: zerolog with JSON or console output
 3. Provider: Google Trends client, outbound rate limiter, circuit breaker
 4. State: fallback caches and rate gates shared by the aggregators
 5. Aggregators: time-series pivot aggregator, geo aggregator, interest lookup
 6. Supervisor Tree: suture v4
 7. HTTP Server: chi router with the middleware stack

# Configuration

The most common environment variables:

	HTTP_PORT=8080
	PROVIDER_BASE_URL=https://trends.google.com
	PROVIDER_LANGUAGE=fr-FR
	TRENDS_GEO=FR
	TRENDS_COOLDOWN=30s
	GEO_DEFAULT_REGION=FR-J
	GEO_VERBOSE=true
	ADMIN_ENABLED=true
	LOG_LEVEL=debug

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server stops accepting
connections and waits up to server.shutdown_timeout for in-flight requests.
*/
package main
