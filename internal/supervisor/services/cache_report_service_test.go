// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/trendgate/internal/cache"
)

// syncBuffer guards a bytes.Buffer written by the service goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestCacheReportService_ReportsEveryStore(t *testing.T) {
	scores := cache.NewStore[float64]("report-series")
	scores.Set("velo", 12)
	scores.Get("velo")
	scores.Get("absent")
	regions := cache.NewStore[[]string]("report-geo")

	out := &syncBuffer{}
	svc := NewCacheReportService(10*time.Millisecond, zerolog.New(out), scores, regions)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(out.String(), "report-geo") && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}

	logs := out.String()
	if !strings.Contains(logs, `"store":"report-series"`) || !strings.Contains(logs, `"hits":1`) {
		t.Errorf("series stats missing from logs: %s", logs)
	}
	if !strings.Contains(logs, `"store":"report-geo"`) {
		t.Errorf("geo stats missing from logs: %s", logs)
	}
}

func TestCacheReportService_DefaultInterval(t *testing.T) {
	svc := NewCacheReportService(0, zerolog.Nop())
	if svc.interval != time.Minute {
		t.Errorf("interval = %v, want 1m", svc.interval)
	}
	if svc.String() != "cache-report" {
		t.Errorf("String() = %q", svc.String())
	}
}
