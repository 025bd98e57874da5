// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package main

import (
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/tomtom215/trendgate/internal/api"
	"github.com/tomtom215/trendgate/internal/config"
	"github.com/tomtom215/trendgate/internal/logging"
	"github.com/tomtom215/trendgate/internal/provider"
	"github.com/tomtom215/trendgate/internal/trends"
)

// application holds the wired components of one server process.
type application struct {
	state  *trends.State
	router http.Handler
	server *http.Server
}

// newProvider builds the Google Trends client, wrapped in the circuit breaker
// when enabled. breaker is nil when the breaker is disabled.
func newProvider(cfg *config.Config) (p trends.Provider, breaker api.BreakerStater, err error) {
	client, err := provider.NewClient(&cfg.Provider, logging.Component("provider"))
	if err != nil {
		return nil, nil, fmt.Errorf("create provider client: %w", err)
	}
	if !cfg.Provider.Breaker.Enabled {
		return client, nil, nil
	}
	cb := provider.NewCircuitBreakerProvider(client, cfg.Provider.Breaker)
	return cb, cb, nil
}

// retryPolicy maps the retry section onto the fetch ladder.
func retryPolicy(c config.RetryConfig) trends.RetryPolicy {
	return trends.RetryPolicy{
		Attempts:        c.Attempts,
		PreDelay:        c.PreDelay,
		PreJitter:       c.PreJitter,
		SettleDelay:     c.SettleDelay,
		SettleJitter:    c.SettleJitter,
		RateLimitStep:   c.RateLimitStep,
		RateLimitJitter: c.RateLimitJitter,
		ErrorDelay:      c.ErrorDelay,
		EmptyStep:       c.EmptyStep,
	}
}

// newApplication wires state, aggregators, handlers and the HTTP server
// around p. breaker may be nil.
func newApplication(cfg *config.Config, p trends.Provider, breaker api.BreakerStater) *application {
	state := trends.NewState(cfg.Trends.Cooldown, cfg.Geo.Cooldown)
	policy := retryPolicy(cfg.Retry)

	seriesLog := logging.Component("series")
	series := trends.NewSeriesAggregator(p, state,
		trends.NewRetrier("series", policy, cfg.Trends.MessageLimit, seriesLog),
		trends.SeriesConfig{Geo: cfg.Trends.Geo, Logger: seriesLog},
	)

	geoLog := logging.Component("geo")
	geo := trends.NewGeoAggregator(p, state,
		trends.NewRetrier("geo", policy, cfg.Geo.MessageLimit, geoLog),
		trends.GeoConfig{
			KeywordDelay:  cfg.Geo.KeywordDelay,
			KeywordJitter: cfg.Geo.KeywordJitter,
			Verbose:       cfg.Geo.Verbose,
			Logger:        geoLog,
		},
	)

	handler := api.NewHandler(api.Deps{
		Series:   series,
		Geo:      geo,
		Interest: trends.NewInterestService(p, cfg.Trends.Geo, logging.Component("interest")),
		State:    state,
		Breaker:  breaker,
		Config:   cfg,
	})
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(&cfg.Security, &cfg.Server)).Setup()

	return &application{
		state:  state,
		router: router,
		server: &http.Server{
			Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}
}
