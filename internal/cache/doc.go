// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

/*
Package cache provides the process-lifetime fallback store used when the
trend provider refuses to answer.

A Store keeps the last known value for each key. There is no TTL and no
eviction: entries live until Clear is called or the process exits, and a
later Set simply overwrites the earlier value. The store is safe for
concurrent use and reports hits, misses and size to Prometheus under its
name.

	scores := cache.NewStore[float64]("series")
	scores.Set("bitcoin", 42.5)
	v := scores.GetOr("ethereum", 0)

Geo results are keyed by region, resolution and keyword; use Key to build
those composite keys so every caller agrees on the format.
*/
package cache
