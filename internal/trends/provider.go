// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package trends

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrRateLimited is wrapped by provider errors that signal throttling.
var ErrRateLimited = errors.New("RATE_LIMITED")

// MaxBatchKeywords is the provider's per-request comparison limit.
const MaxBatchKeywords = 5

// Resolution selects the granularity of a region breakdown.
type Resolution string

const (
	ResolutionCity   Resolution = "CITY"
	ResolutionRegion Resolution = "REGION"
)

// ParseResolution upper-cases s and coerces anything unknown to CITY.
func ParseResolution(s string) Resolution {
	switch Resolution(strings.ToUpper(strings.TrimSpace(s))) {
	case ResolutionRegion:
		return ResolutionRegion
	default:
		return ResolutionCity
	}
}

// Payload describes one provider comparison.
type Payload struct {
	Keywords  []string
	Timeframe Timeframe
	Geo       string
}

// Provider starts provider sessions. Implementations must return an error
// wrapping ErrRateLimited when the provider throttles the caller.
type Provider interface {
	BuildPayload(ctx context.Context, p Payload) (Session, error)
}

// Session retrieves results for a payload built by Provider.BuildPayload.
type Session interface {
	InterestOverTime(ctx context.Context) (SeriesFrame, error)
	InterestByRegion(ctx context.Context, resolution Resolution) (RegionFrame, error)
}

// SeriesFrame is the interest-over-time table: one column per keyword,
// one row per timestamp.
type SeriesFrame struct {
	Timestamps []time.Time
	Columns    map[string][]float64
}

// Empty reports whether the provider returned no rows.
func (f SeriesFrame) Empty() bool {
	return len(f.Timestamps) == 0 && len(f.Columns) == 0
}

// Mean returns the column mean for keyword. ok is false when the column is
// missing or has no values.
func (f SeriesFrame) Mean(keyword string) (mean float64, ok bool) {
	col, ok := f.Columns[keyword]
	if !ok || len(col) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range col {
		sum += v
	}
	return sum / float64(len(col)), true
}

// RegionRow is one region of a breakdown with the score of each keyword.
type RegionRow struct {
	Name   string
	Values map[string]int
}

// RegionFrame is the interest-by-region table in provider order.
type RegionFrame struct {
	Rows []RegionRow
}

// Empty reports whether the provider returned no rows.
func (f RegionFrame) Empty() bool {
	return len(f.Rows) == 0
}
