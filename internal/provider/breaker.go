// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package provider

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/trendgate/internal/config"
	"github.com/tomtom215/trendgate/internal/logging"
	"github.com/tomtom215/trendgate/internal/metrics"
	"github.com/tomtom215/trendgate/internal/trends"
)

// BreakerName labels the provider breaker in metrics and logs.
const BreakerName = "trend-provider"

// CircuitBreakerProvider guards every call of a trends.Provider and its
// sessions with one circuit breaker. Rate limits count as failures; a
// cancelled caller does not. Rejected calls wrap trends.ErrRateLimited so the
// aggregators serve fallback values while the circuit is open.
//
// The breaker runs on real time; tests exercise it with a short Timeout.
type CircuitBreakerProvider struct {
	inner trends.Provider
	cb    *gobreaker.CircuitBreaker[any]
	name  string
}

// NewCircuitBreakerProvider wraps inner. The breaker opens once at least
// MinRequests calls were made in the current interval and FailureRatio of
// them failed.
func NewCircuitBreakerProvider(inner trends.Provider, cfg config.BreakerConfig) *CircuitBreakerProvider {
	name := BreakerName
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			trip := ratio >= cfg.FailureRatio
			if trip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", ratio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &CircuitBreakerProvider{inner: inner, cb: cb, name: name}
}

// State returns "closed", "half-open" or "open".
func (p *CircuitBreakerProvider) State() string {
	return stateToString(p.cb.State())
}

func (p *CircuitBreakerProvider) execute(fn func() (any, error)) (any, error) {
	result, err := p.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(p.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, fmt.Errorf("%w: %w", trends.ErrRateLimited, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(p.name, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(p.name).Set(float64(p.cb.Counts().ConsecutiveFailures))
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(p.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(p.name).Set(0)
	return result, nil
}

// BuildPayload implements trends.Provider.
func (p *CircuitBreakerProvider) BuildPayload(ctx context.Context, payload trends.Payload) (trends.Session, error) {
	res, err := p.execute(func() (any, error) {
		return p.inner.BuildPayload(ctx, payload)
	})
	if err != nil {
		return nil, err
	}
	sess, ok := res.(trends.Session)
	if !ok {
		return nil, errors.New("circuit breaker: unexpected result type")
	}
	return &breakerSession{inner: sess, breaker: p}, nil
}

type breakerSession struct {
	inner   trends.Session
	breaker *CircuitBreakerProvider
}

func (s *breakerSession) InterestOverTime(ctx context.Context) (trends.SeriesFrame, error) {
	return castResult[trends.SeriesFrame](s.breaker.execute(func() (any, error) {
		return s.inner.InterestOverTime(ctx)
	}))
}

func (s *breakerSession) InterestByRegion(ctx context.Context, resolution trends.Resolution) (trends.RegionFrame, error) {
	return castResult[trends.RegionFrame](s.breaker.execute(func() (any, error) {
		return s.inner.InterestByRegion(ctx, resolution)
	}))
}

func castResult[T any](result any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, errors.New("circuit breaker: unexpected result type")
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
