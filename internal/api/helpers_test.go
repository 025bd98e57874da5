// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/trendgate/internal/config"
	"github.com/tomtom215/trendgate/internal/trends"
)

var testNow = time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)

type fakeProvider struct {
	mu       sync.Mutex
	payloads []trends.Payload
	res      []trends.Resolution

	series func(p trends.Payload) (trends.SeriesFrame, error)
	region func(p trends.Payload) (trends.RegionFrame, error)
}

func (f *fakeProvider) BuildPayload(_ context.Context, p trends.Payload) (trends.Session, error) {
	f.mu.Lock()
	f.payloads = append(f.payloads, p)
	f.mu.Unlock()
	return &fakeSession{provider: f, payload: p}, nil
}

func (f *fakeProvider) calls() []trends.Payload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]trends.Payload(nil), f.payloads...)
}

func (f *fakeProvider) resolutions() []trends.Resolution {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]trends.Resolution(nil), f.res...)
}

type fakeSession struct {
	provider *fakeProvider
	payload  trends.Payload
}

func (s *fakeSession) InterestOverTime(context.Context) (trends.SeriesFrame, error) {
	if s.provider.series == nil {
		return trends.SeriesFrame{}, nil
	}
	return s.provider.series(s.payload)
}

func (s *fakeSession) InterestByRegion(_ context.Context, res trends.Resolution) (trends.RegionFrame, error) {
	s.provider.mu.Lock()
	s.provider.res = append(s.provider.res, res)
	s.provider.mu.Unlock()
	if s.provider.region == nil {
		return trends.RegionFrame{}, nil
	}
	return s.provider.region(s.payload)
}

type stubBreaker string

func (b stubBreaker) State() string { return string(b) }

type fixture struct {
	provider *fakeProvider
	state    *trends.State
	cfg      *config.Config
	handler  *Handler
	router   http.Handler
}

type fixtureOption func(*config.Config, *Deps)

func withBreaker(state string) fixtureOption {
	return func(_ *config.Config, d *Deps) { d.Breaker = stubBreaker(state) }
}

func withAdminDisabled() fixtureOption {
	return func(c *config.Config, _ *Deps) { c.Admin.Enabled = false }
}

func instantRetrier(name string, limit int) *trends.Retrier {
	r := trends.NewRetrier(name, trends.DefaultRetryPolicy(), limit, zerolog.Nop())
	r.Sleeper = trends.SleeperFunc(func(ctx context.Context, _ time.Duration) error { return ctx.Err() })
	r.Jitter = func() float64 { return 0 }
	return r
}

func newFixture(t *testing.T, p *fakeProvider, opts ...fixtureOption) *fixture {
	t.Helper()

	cfg := config.Defaults()
	cfg.Admin.Enabled = true
	cfg.Security.RateLimitDisabled = true

	clock := func() time.Time { return testNow }
	state := trends.NewState(cfg.Trends.Cooldown, cfg.Geo.Cooldown)
	deps := Deps{
		Series: trends.NewSeriesAggregator(p, state, instantRetrier("series", cfg.Trends.MessageLimit), trends.SeriesConfig{
			Geo:    cfg.Trends.Geo,
			Clock:  clock,
			Logger: zerolog.Nop(),
		}),
		Geo: trends.NewGeoAggregator(p, state, instantRetrier("geo", cfg.Geo.MessageLimit), trends.GeoConfig{
			Clock:  clock,
			Logger: zerolog.Nop(),
		}),
		Interest: trends.NewInterestService(p, cfg.Trends.Geo, zerolog.Nop()),
		State:    state,
		Config:   cfg,
		Clock:    clock,
	}
	for _, opt := range opts {
		opt(cfg, &deps)
	}

	h := NewHandler(deps)
	return &fixture{
		provider: p,
		state:    state,
		cfg:      cfg,
		handler:  h,
		router:   NewRouter(h, NewChiMiddlewareFromConfig(&cfg.Security, &cfg.Server)).Setup(),
	}
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func assertErrorBody(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	got := decode[ErrorResponse](t, rec).Error
	if !strings.Contains(got, want) {
		t.Errorf("error = %q, want it to contain %q", got, want)
	}
}

func seriesOf(columns map[string][]float64) func(trends.Payload) (trends.SeriesFrame, error) {
	return func(p trends.Payload) (trends.SeriesFrame, error) {
		n := 0
		for _, v := range columns {
			n = max(n, len(v))
		}
		ts := make([]time.Time, n)
		for i := range ts {
			ts[i] = testNow.AddDate(0, 0, i-n+1).Truncate(24 * time.Hour)
		}
		frame := trends.SeriesFrame{Timestamps: ts, Columns: map[string][]float64{}}
		for _, kw := range p.Keywords {
			if v, ok := columns[kw]; ok {
				frame.Columns[kw] = v
			}
		}
		return frame, nil
	}
}
