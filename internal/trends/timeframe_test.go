// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package trends

import (
	"testing"
	"time"
)

func TestLastDaysString(t *testing.T) {
	now := time.Date(2026, 3, 3, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		days int
		want string
	}{
		{7, "2026-02-24 2026-03-03"},
		{1, "2026-03-02 2026-03-03"},
		{30, "2026-02-01 2026-03-03"},
	}
	for _, tt := range tests {
		if got := LastDays(now, tt.days).String(); got != tt.want {
			t.Errorf("LastDays(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestParseResolution(t *testing.T) {
	tests := map[string]Resolution{
		"CITY":    ResolutionCity,
		"region":  ResolutionRegion,
		" Region": ResolutionRegion,
		"country": ResolutionCity,
		"":        ResolutionCity,
	}
	for in, want := range tests {
		if got := ParseResolution(in); got != want {
			t.Errorf("ParseResolution(%q) = %q, want %q", in, got, want)
		}
	}
}
