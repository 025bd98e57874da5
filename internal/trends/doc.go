// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

/*
Package trends aggregates search-interest data from a rate limited provider.

The provider compares at most five keywords per request and scales each
comparison independently, so scores from two requests are not comparable.
SeriesAggregator works around this with a pivot: the first keyword is added
to every batch and later batches are rescaled so the pivot keeps the score it
had in the first batch. The merged result is finally rescaled so the largest
score is 100.

GeoAggregator fetches a per-region breakdown for each keyword in turn.

Both aggregators share the same defences against provider throttling:

  - Fetch retries a provider operation up to three times with growing,
    jittered delays.
  - A rate gate (30s for series, 60s for geo) answers repeated requests from
    the fallback cache instead of calling the provider again.
  - Every positive result is kept in a process-lifetime fallback cache and
    served in place of data the provider refused to return.

State owns the caches and gates. It is constructed explicitly and shared by
the aggregators so tests and the admin endpoints can reset it.
*/
package trends
