// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/trends", "200"))
	RecordAPIRequest("GET", "/trends", "200", 120*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/trends", "200"))

	if after-before != 1 {
		t.Errorf("expected counter to grow by 1, grew by %v", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	base := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests) - base; got != 2 {
		t.Errorf("active requests = %v, want 2", got)
	}
	TrackActiveRequest(false)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != base {
		t.Errorf("active requests = %v, want %v", got, base)
	}
}

func TestRecordFallbackLookup(t *testing.T) {
	hits := testutil.ToFloat64(FallbackCacheLookups.WithLabelValues("series-test", "hit"))
	misses := testutil.ToFloat64(FallbackCacheLookups.WithLabelValues("series-test", "miss"))

	RecordFallbackLookup("series-test", true)
	RecordFallbackLookup("series-test", false)
	RecordFallbackLookup("series-test", false)

	if got := testutil.ToFloat64(FallbackCacheLookups.WithLabelValues("series-test", "hit")) - hits; got != 1 {
		t.Errorf("hits grew by %v, want 1", got)
	}
	if got := testutil.ToFloat64(FallbackCacheLookups.WithLabelValues("series-test", "miss")) - misses; got != 2 {
		t.Errorf("misses grew by %v, want 2", got)
	}
}

func TestSetFallbackEntries(t *testing.T) {
	SetFallbackEntries("geo-test", 7)
	if got := testutil.ToFloat64(FallbackCacheEntries.WithLabelValues("geo-test")); got != 7 {
		t.Errorf("entries = %v, want 7", got)
	}
}

func TestRecordProviderCallAndRetry(t *testing.T) {
	tests := []struct {
		operation string
		result    string
	}{
		{"explore", "success"},
		{"multiline", "rate_limited"},
		{"comparedgeo", "error"},
	}
	for _, tt := range tests {
		t.Run(tt.operation, func(t *testing.T) {
			before := testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues(tt.operation, tt.result))
			RecordProviderCall(tt.operation, tt.result, time.Second)
			if got := testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues(tt.operation, tt.result)) - before; got != 1 {
				t.Errorf("counter grew by %v, want 1", got)
			}
		})
	}

	before := testutil.ToFloat64(ProviderRetries.WithLabelValues("geo", "empty"))
	RecordRetry("geo", "empty")
	if got := testutil.ToFloat64(ProviderRetries.WithLabelValues("geo", "empty")) - before; got != 1 {
		t.Errorf("retries grew by %v, want 1", got)
	}
}
