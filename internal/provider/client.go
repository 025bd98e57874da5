// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/trendgate/internal/config"
	"github.com/tomtom215/trendgate/internal/metrics"
	"github.com/tomtom215/trendgate/internal/trends"
)

const (
	explorePath     = "/trends/api/explore"
	multilinePath   = "/trends/api/widgetdata/multiline"
	comparedGeoPath = "/trends/api/widgetdata/comparedgeo"

	// maxBodySize bounds provider replies.
	maxBodySize = 8 << 20

	// maxErrorBody is how much of a failed reply ends up in the error.
	maxErrorBody = 256
)

// ErrMalformedResponse is returned when a reply carries no JSON object.
var ErrMalformedResponse = errors.New("malformed provider response")

// StatusError is a non-200 reply from the provider.
type StatusError struct {
	Operation string
	Code      int
	Body      string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: provider returned a response with code %d", e.Operation, e.Code)
	}
	return fmt.Sprintf("%s: provider returned a response with code %d: %s", e.Operation, e.Code, e.Body)
}

// Client is the HTTP adapter for the trend provider.
type Client struct {
	baseURL   string
	language  string
	tz        string
	userAgent string

	http    *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger

	warmMu sync.Mutex
	warmed bool
}

// NewClient builds a client with a cookie jar, the configured connect and
// read timeouts and an optional outbound rate limiter.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewClient(cfg *config.ProviderConfig, logger zerolog.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: cfg.ConnectTimeout, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}

	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		language:  cfg.Language,
		tz:        strconv.Itoa(cfg.TZOffset),
		userAgent: cfg.UserAgent,
		http: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   cfg.ConnectTimeout + cfg.ReadTimeout,
		},
		logger: logger,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(cfg.Burst, 1))
	}
	return c, nil
}

// warmUp fetches the landing page once so the jar holds the provider's
// session cookie. Failures are logged and retried on the next call.
func (c *Client) warmUp(ctx context.Context) {
	c.warmMu.Lock()
	defer c.warmMu.Unlock()
	if c.warmed {
		return
	}

	geo := c.language
	if i := strings.LastIndex(geo, "-"); i >= 0 {
		geo = geo[i+1:]
	}
	_, err := c.do(ctx, "cookie", http.MethodGet, "/", url.Values{"geo": {geo}}, false)
	if err != nil {
		c.logger.Debug().Err(err).Msg("Cookie warm-up failed")
		return
	}
	c.warmed = true
}

// do performs one request and returns the body with the XSSI prefix removed
// when stripPrefix is set.
func (c *Client) do(ctx context.Context, operation, method, path string, params url.Values, stripPrefix bool) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", operation, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", c.language)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		err = classify(fmt.Errorf("%s: %w", operation, err))
		metrics.RecordProviderCall(operation, resultLabel(err), time.Since(start))
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		metrics.RecordProviderCall(operation, "error", time.Since(start))
		return nil, fmt.Errorf("%s: read body: %w", operation, err)
	}

	if resp.StatusCode != http.StatusOK {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		err := classify(&StatusError{Operation: operation, Code: resp.StatusCode, Body: snippet})
		metrics.RecordProviderCall(operation, resultLabel(err), time.Since(start))
		return nil, err
	}

	metrics.RecordProviderCall(operation, "success", time.Since(start))
	if !stripPrefix {
		return body, nil
	}
	return stripXSSI(operation, body)
}

// stripXSSI drops everything before the first '{'.
func stripXSSI(operation string, body []byte) ([]byte, error) {
	i := bytes.IndexByte(body, '{')
	if i < 0 {
		return nil, fmt.Errorf("%s: %w", operation, ErrMalformedResponse)
	}
	return body[i:], nil
}

func resultLabel(err error) string {
	if errors.Is(err, trends.ErrRateLimited) {
		return "rate_limited"
	}
	return "error"
}
