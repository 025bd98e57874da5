// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package trends

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeProvider records payloads and answers from the configured functions.
type fakeProvider struct {
	mu       sync.Mutex
	payloads []Payload

	build  func(p Payload) error
	series func(p Payload) (SeriesFrame, error)
	region func(p Payload, res Resolution) (RegionFrame, error)
}

func (f *fakeProvider) BuildPayload(_ context.Context, p Payload) (Session, error) {
	f.mu.Lock()
	f.payloads = append(f.payloads, p)
	f.mu.Unlock()

	if f.build != nil {
		if err := f.build(p); err != nil {
			return nil, err
		}
	}
	return &fakeSession{provider: f, payload: p}, nil
}

func (f *fakeProvider) calls() []Payload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Payload(nil), f.payloads...)
}

type fakeSession struct {
	provider *fakeProvider
	payload  Payload
}

func (s *fakeSession) InterestOverTime(context.Context) (SeriesFrame, error) {
	if s.provider.series == nil {
		return SeriesFrame{}, nil
	}
	return s.provider.series(s.payload)
}

func (s *fakeSession) InterestByRegion(_ context.Context, res Resolution) (RegionFrame, error) {
	if s.provider.region == nil {
		return RegionFrame{}, nil
	}
	return s.provider.region(s.payload, res)
}

// recordingSleeper returns immediately and remembers every requested delay.
type recordingSleeper struct {
	mu    sync.Mutex
	delay []time.Duration
}

func (r *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delay = append(r.delay, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *recordingSleeper) delays() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delay...)
}

// newTestRetrier uses the production ladder with jitter fixed at one half.
func newTestRetrier(sleeper Sleeper, limit int) *Retrier {
	return &Retrier{
		Policy:       DefaultRetryPolicy(),
		MessageLimit: limit,
		Name:         "test",
		Sleeper:      sleeper,
		Jitter:       func() float64 { return 0.5 },
		Logger:       zerolog.Nop(),
	}
}

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// means builds a one-row frame whose column means are the given values.
func means(values map[string]float64) SeriesFrame {
	cols := make(map[string][]float64, len(values))
	for k, v := range values {
		cols[k] = []float64{v}
	}
	return SeriesFrame{
		Timestamps: []time.Time{time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)},
		Columns:    cols,
	}
}

func testTimeframe() Timeframe {
	return LastDays(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC), 7)
}

func assertScores(t *testing.T, got, want map[string]float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("scores = %v, want %v", got, want)
	}
	for k, v := range want {
		g, ok := got[k]
		if !ok {
			t.Errorf("missing score for %q", k)
			continue
		}
		if g != v {
			t.Errorf("score[%q] = %v, want %v", k, g, v)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
