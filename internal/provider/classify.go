// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package provider

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tomtom215/trendgate/internal/trends"
)

// rateLimitMarker is the substring that identifies throttling.
const rateLimitMarker = "429"

// classify wraps err with trends.ErrRateLimited when it reports throttling.
// Transport errors never do: their text carries the request URL, and with it
// the keywords.
func classify(err error) error {
	if err == nil || errors.Is(err, trends.ErrRateLimited) {
		return err
	}
	var se *StatusError
	if errors.As(err, &se) {
		if se.Code == http.StatusTooManyRequests || strings.Contains(se.Body, rateLimitMarker) {
			return fmt.Errorf("%w: %w", trends.ErrRateLimited, err)
		}
		return err
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return err
	}
	if strings.Contains(err.Error(), rateLimitMarker) {
		return fmt.Errorf("%w: %w", trends.ErrRateLimited, err)
	}
	return err
}
