// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package trends

import (
	"fmt"
	"time"
)

// TimeframeLayout is the date layout used by the provider.
const TimeframeLayout = "2006-01-02"

// Timeframe is an inclusive date range.
type Timeframe struct {
	Start time.Time
	End   time.Time
}

// LastDays returns the range [now-days, now].
func LastDays(now time.Time, days int) Timeframe {
	return Timeframe{Start: now.AddDate(0, 0, -days), End: now}
}

// String renders the range as "YYYY-MM-DD YYYY-MM-DD".
func (t Timeframe) String() string {
	return fmt.Sprintf("%s %s", t.Start.Format(TimeframeLayout), t.End.Format(TimeframeLayout))
}
