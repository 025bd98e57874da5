// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package api

// Client-facing messages of rejected requests.
const (
	msgMissingKeywordsParam = "Missing keywords parameter"
	msgNoValidKeywords      = "No valid keywords"
	msgMissingKeywords      = "Missing keywords"
	msgMissingKeywordParam  = "Missing keyword parameter"
	msgInvalidBody          = "Invalid JSON body"
	msgInvalidDays          = "days must be an integer"
)

// RequestError is a malformed request, answered with 400 and its message.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string { return e.Message }

func badRequest(message string) error {
	return &RequestError{Message: message}
}
