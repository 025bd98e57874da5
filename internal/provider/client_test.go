// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/trendgate/internal/config"
	"github.com/tomtom215/trendgate/internal/trends"
)

const exploreReply = `)]}'
{"widgets":[
 {"id":"TIMESERIES","token":"ts-token","request":{"time":"2026-03-07 2026-03-14"}},
 {"id":"GEO_MAP","token":"geo-token","request":{"geo":{"country":"FR"},"resolution":"COUNTRY"}}
]}`

const multilineReply = `)]}',
{"default":{"timelineData":[
 {"time":"1772841600","formattedTime":"7 mars 2026","value":[10,40],"hasData":[true,true]},
 {"time":"1772928000","formattedTime":"8 mars 2026","value":[30,60],"hasData":[true,true]}
]}}`

const comparedGeoReply = `)]}',
{"default":{"geoMapData":[
 {"geoCode":"FR-J-75","geoName":"Paris","value":[70,10]},
 {"geoCode":"FR-J-92","geoName":"Nanterre","value":[0,55]}
]}}`

type fakeTrends struct {
	t           *testing.T
	exploreCode int
	lastGeoReq  atomic.Value
	explores    atomic.Int32
}

func (f *fakeTrends) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/":
		http.SetCookie(w, &http.Cookie{Name: "NID", Value: "cookie"})
	case explorePath:
		f.explores.Add(1)
		if r.Method != http.MethodPost {
			f.t.Errorf("explore method = %s, want POST", r.Method)
		}
		if r.URL.Query().Get("hl") != "fr-FR" || r.URL.Query().Get("tz") != "60" {
			f.t.Errorf("unexpected explore params %v", r.URL.Query())
		}
		if f.exploreCode != 0 {
			w.WriteHeader(f.exploreCode)
			_, _ = w.Write([]byte("Too Many Requests"))
			return
		}
		_, _ = w.Write([]byte(exploreReply))
	case multilinePath:
		if r.URL.Query().Get("token") != "ts-token" {
			f.t.Errorf("multiline token = %q", r.URL.Query().Get("token"))
		}
		_, _ = w.Write([]byte(multilineReply))
	case comparedGeoPath:
		f.lastGeoReq.Store(r.URL.Query().Get("req"))
		_, _ = w.Write([]byte(comparedGeoReply))
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := config.ProviderConfig{
		BaseURL:        srv.URL,
		Language:       "fr-FR",
		TZOffset:       60,
		UserAgent:      "trendgate-test",
		ConnectTimeout: 2 * time.Second,
		ReadTimeout:    2 * time.Second,
	}
	c, err := NewClient(&cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func payload(keywords ...string) trends.Payload {
	return trends.Payload{
		Keywords:  keywords,
		Timeframe: trends.LastDays(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), 7),
		Geo:       "FR",
	}
}

func TestInterestOverTime(t *testing.T) {
	c := newTestClient(t, &fakeTrends{t: t})

	sess, err := c.BuildPayload(context.Background(), payload("velo", "trottinette"))
	if err != nil {
		t.Fatal(err)
	}
	frame, err := sess.InterestOverTime(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(frame.Timestamps) != 2 || frame.Timestamps[0].Format("2006-01-02") != "2026-03-07" {
		t.Errorf("timestamps = %v", frame.Timestamps)
	}
	if m, _ := frame.Mean("velo"); m != 20 {
		t.Errorf("mean(velo) = %v, want 20", m)
	}
	if m, _ := frame.Mean("trottinette"); m != 50 {
		t.Errorf("mean(trottinette) = %v, want 50", m)
	}
}

func TestInterestByRegionPatchesResolution(t *testing.T) {
	ft := &fakeTrends{t: t}
	c := newTestClient(t, ft)

	sess, err := c.BuildPayload(context.Background(), payload("velo", "trottinette"))
	if err != nil {
		t.Fatal(err)
	}
	frame, err := sess.InterestByRegion(context.Background(), trends.ResolutionCity)
	if err != nil {
		t.Fatal(err)
	}

	if len(frame.Rows) != 2 || frame.Rows[0].Name != "Paris" || frame.Rows[1].Values["trottinette"] != 55 {
		t.Errorf("rows = %+v", frame.Rows)
	}

	var sent map[string]any
	raw, _ := ft.lastGeoReq.Load().(string)
	if err := json.Unmarshal([]byte(raw), &sent); err != nil {
		t.Fatalf("geo request not JSON: %v", err)
	}
	if sent["resolution"] != "CITY" || sent["includeLowSearchVolumeGeos"] != true {
		t.Errorf("widget request not patched: %v", sent)
	}
}

func TestRateLimitClassification(t *testing.T) {
	c := newTestClient(t, &fakeTrends{t: t, exploreCode: http.StatusTooManyRequests})

	_, err := c.BuildPayload(context.Background(), payload("velo"))
	if !errors.Is(err, trends.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusTooManyRequests {
		t.Errorf("expected wrapped StatusError, got %v", err)
	}
}

func TestServerErrorIsNotRateLimit(t *testing.T) {
	c := newTestClient(t, &fakeTrends{t: t, exploreCode: http.StatusInternalServerError})

	_, err := c.BuildPayload(context.Background(), payload("velo"))
	if err == nil || errors.Is(err, trends.ErrRateLimited) {
		t.Fatalf("err = %v, want plain error", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"status 429", &StatusError{Operation: "explore", Code: 429}, true},
		{"proxy text", errors.New("upstream said: 429 Too Many Requests"), true},
		{"already wrapped", trends.ErrRateLimited, true},
		{"timeout", errors.New("i/o timeout"), false},
		{"body mentions 429", &StatusError{Operation: "explore", Code: 503, Body: "error 429 quota"}, true},
		{"server error", &StatusError{Operation: "explore", Code: 500, Body: "boom"}, false},
		{"transport error with 429 keyword", fmt.Errorf("explore: %w", &url.Error{
			Op:  "Get",
			URL: "https://trends.example/trends/api/explore?req=%7B%22keyword%22%3A%22boeing+429%22%7D",
			Err: errors.New("i/o timeout"),
		}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(classify(tt.err), trends.ErrRateLimited); got != tt.want {
				t.Errorf("classify(%v) rate limited = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestMissingWidget(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`)]}'` + "\n" + `{"widgets":[]}`))
	})
	c := newTestClient(t, h)

	sess, err := c.BuildPayload(context.Background(), payload("velo"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sess.InterestOverTime(context.Background()); !errors.Is(err, ErrNoWidget) {
		t.Errorf("err = %v, want ErrNoWidget", err)
	}
}

func TestMalformedResponse(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>captcha</html>"))
	})
	c := newTestClient(t, h)

	if _, err := c.BuildPayload(context.Background(), payload("velo")); !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestWarmUpOnce(t *testing.T) {
	var landing atomic.Int32
	ft := &fakeTrends{t: t}
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			landing.Add(1)
		}
		ft.ServeHTTP(w, r)
	})
	c := newTestClient(t, h)

	for i := 0; i < 3; i++ {
		if _, err := c.BuildPayload(context.Background(), payload("velo")); err != nil {
			t.Fatal(err)
		}
	}
	if n := landing.Load(); n != 1 {
		t.Errorf("landing page fetched %d times, want 1", n)
	}
	if n := ft.explores.Load(); n != 3 {
		t.Errorf("explore called %d times, want 3", n)
	}
}

func TestStatusErrorMessage(t *testing.T) {
	err := &StatusError{Operation: "explore", Code: 429, Body: "slow down"}
	if !strings.Contains(err.Error(), "code 429") || !strings.Contains(err.Error(), "slow down") {
		t.Errorf("Error() = %q", err.Error())
	}
}
