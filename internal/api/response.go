// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/trendgate/internal/logging"
)

// Cache-Control values of successful GET responses.
const (
	cacheControlSeries   = "s-maxage=3600"
	cacheControlGeo      = "s-maxage=7200"
	cacheControlInterest = "public, s-maxage=7200, stale-while-revalidate=14400"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes data with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes {"error": message}.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

// writeCached writes a 200 response, adding Cache-Control for GET requests.
func writeCached(w http.ResponseWriter, r *http.Request, cacheControl string, data any) {
	if r.Method == http.MethodGet {
		w.Header().Set("Cache-Control", cacheControl)
	}
	writeJSON(w, http.StatusOK, data)
}
