// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package api

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/trendgate/internal/config"
	"github.com/tomtom215/trendgate/internal/logging"
	"github.com/tomtom215/trendgate/internal/trends"
)

// BreakerStater reports the provider circuit-breaker state.
type BreakerStater interface {
	State() string
}

// Deps are the collaborators of a Handler. Breaker may be nil when the
// circuit breaker is disabled.
type Deps struct {
	Series   *trends.SeriesAggregator
	Geo      *trends.GeoAggregator
	Interest *trends.InterestService
	State    *trends.State
	Breaker  BreakerStater
	Config   *config.Config
	Clock    trends.Clock
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_trends.go: /trends, /trends_geo and /trends/interest
//   - handlers_admin.go: fallback cache inspection and clearing
//   - handlers_health.go: liveness and readiness probes
type Handler struct {
	series    *trends.SeriesAggregator
	geo       *trends.GeoAggregator
	interest  *trends.InterestService
	state     *trends.State
	breaker   BreakerStater
	cfg       *config.Config
	now       trends.Clock
	startTime time.Time
	logger    zerolog.Logger
}

// NewHandler creates a Handler from its dependencies.
func NewHandler(d Deps) *Handler {
	if d.Clock == nil {
		d.Clock = time.Now
	}
	return &Handler{
		series:    d.Series,
		geo:       d.Geo,
		interest:  d.Interest,
		state:     d.State,
		breaker:   d.Breaker,
		cfg:       d.Config,
		now:       d.Clock,
		startTime: d.Clock(),
		logger:    logging.Component("api"),
	}
}

// timeframe is the provider date range ending now.
func (h *Handler) timeframe(days int) trends.Timeframe {
	return trends.LastDays(h.now(), days)
}
