// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

/*
Package provider talks to the Google Trends web endpoints.

Client implements trends.Provider with the same call sequence as the
public web UI:

 1. GET / once, to collect the NID cookie the API expects.
 2. POST /trends/api/explore with the comparison items; the reply lists
    one widget per view (TIMESERIES, GEO_MAP, ...) with a token.
 3. GET /trends/api/widgetdata/multiline or .../comparedgeo with the
    widget request and token.

Every JSON reply starts with an anti-XSSI prefix such as ")]}'" which is
stripped before decoding.

Throttling is reported as HTTP 429, sometimes only inside a proxy's error
text, so classify checks the status code and reply body for "429" and wraps
matches with trends.ErrRateLimited. Transport errors are never classified as
throttling. No other package inspects error strings.

CircuitBreakerProvider wraps any trends.Provider with sony/gobreaker so a
provider that keeps failing is left alone for a while. Calls rejected by the
open circuit wrap trends.ErrRateLimited.
*/
package provider
