// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package trends

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/trendgate/internal/metrics"
)

// OutcomeKind classifies the result of Fetch.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeRateLimited
	OutcomeError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRateLimited:
		return "rate_limited"
	default:
		return "error"
	}
}

// Outcome is the result of a retried provider operation. Data is only
// meaningful for OutcomeSuccess; Empty marks a success without data.
type Outcome[T any] struct {
	Kind    OutcomeKind
	Data    T
	Empty   bool
	Message string
}

// Operation is one provider round-trip split in two phases. Prepare builds
// the payload, Retrieve fetches the result it describes. Retrieve reports
// ok=false when the provider answered with an empty result.
type Operation[T any] struct {
	Prepare  func(ctx context.Context) error
	Retrieve func(ctx context.Context) (data T, ok bool, err error)
}

// Sleeper waits for d or until ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep implements Sleeper.
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// TimerSleeper sleeps on a real timer.
type TimerSleeper struct{}

// Sleep implements Sleeper.
func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Jitter returns a value in [0,1).
type Jitter func() float64

// RetryPolicy is the delay ladder of Fetch. Attempt numbers are 1-based.
type RetryPolicy struct {
	Attempts        int
	PreDelay        time.Duration
	PreJitter       time.Duration
	SettleDelay     time.Duration
	SettleJitter    time.Duration
	RateLimitStep   time.Duration
	RateLimitJitter time.Duration
	ErrorDelay      time.Duration
	EmptyStep       time.Duration
}

// DefaultRetryPolicy returns the production ladder.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:        3,
		PreDelay:        2 * time.Second,
		PreJitter:       2 * time.Second,
		SettleDelay:     time.Second,
		SettleJitter:    time.Second,
		RateLimitStep:   10 * time.Second,
		RateLimitJitter: 5 * time.Second,
		ErrorDelay:      3 * time.Second,
		EmptyStep:       5 * time.Second,
	}
}

// Retrier runs operations under a RetryPolicy.
type Retrier struct {
	Policy RetryPolicy

	// MessageLimit truncates final error messages (in runes).
	MessageLimit int

	// Name labels metrics and log lines, e.g. "series" or "geo".
	Name string

	Sleeper Sleeper
	Jitter  Jitter
	Logger  zerolog.Logger
}

// NewRetrier returns a Retrier on real timers with uniform jitter.
func NewRetrier(name string, policy RetryPolicy, messageLimit int, logger zerolog.Logger) *Retrier {
	return &Retrier{
		Policy:       policy,
		MessageLimit: messageLimit,
		Name:         name,
		Sleeper:      TimerSleeper{},
		Jitter:       rand.Float64,
		Logger:       logger,
	}
}

// jittered returns base + U[0, spread).
func (r *Retrier) jittered(base, spread time.Duration) time.Duration {
	if spread <= 0 || r.Jitter == nil {
		return base
	}
	return base + time.Duration(r.Jitter()*float64(spread))
}

// Fetch runs op with retries. Every attempt is preceded by a jittered pause
// and the two phases are separated by a shorter settle pause. Rate limits
// back off by RateLimitStep per attempt, errors by a flat ErrorDelay and
// empty results by EmptyStep per attempt. When attempts run out the last
// failure decides the outcome; an empty result is a successful outcome.
//
// A cancelled context ends the loop with an OutcomeError carrying ctx.Err().
func Fetch[T any](ctx context.Context, r *Retrier, op Operation[T]) Outcome[T] {
	attempts := r.Policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		last := attempt == attempts

		if err := r.Sleeper.Sleep(ctx, r.jittered(r.Policy.PreDelay, r.Policy.PreJitter)); err != nil {
			return cancelled[T](r, err)
		}

		data, ok, err := runAttempt(ctx, r, op)
		switch {
		case err != nil && isContextErr(ctx, err):
			return cancelled[T](r, err)

		case err != nil && errors.Is(err, ErrRateLimited):
			if last {
				r.Logger.Warn().Int("attempt", attempt).Msg("Provider rate limit persisted, giving up")
				return Outcome[T]{Kind: OutcomeRateLimited, Message: ErrRateLimited.Error()}
			}
			wait := r.jittered(r.Policy.RateLimitStep*time.Duration(attempt), r.Policy.RateLimitJitter)
			r.Logger.Warn().Int("attempt", attempt).Dur("backoff", wait).Msg("Provider rate limited, backing off")
			metrics.RecordRetry(r.Name, "rate_limited")
			if err := r.Sleeper.Sleep(ctx, wait); err != nil {
				return cancelled[T](r, err)
			}

		case err != nil:
			if last {
				r.Logger.Error().Err(err).Int("attempt", attempt).Msg("Provider call failed")
				return Outcome[T]{Kind: OutcomeError, Message: truncate(err.Error(), r.MessageLimit)}
			}
			r.Logger.Warn().Err(err).Int("attempt", attempt).Dur("backoff", r.Policy.ErrorDelay).Msg("Provider call failed, retrying")
			metrics.RecordRetry(r.Name, "error")
			if err := r.Sleeper.Sleep(ctx, r.Policy.ErrorDelay); err != nil {
				return cancelled[T](r, err)
			}

		case !ok:
			if last {
				r.Logger.Debug().Int("attempt", attempt).Msg("Provider returned no data")
				return Outcome[T]{Kind: OutcomeSuccess, Empty: true}
			}
			wait := r.Policy.EmptyStep * time.Duration(attempt)
			r.Logger.Debug().Int("attempt", attempt).Dur("backoff", wait).Msg("Empty provider result, retrying")
			metrics.RecordRetry(r.Name, "empty")
			if err := r.Sleeper.Sleep(ctx, wait); err != nil {
				return cancelled[T](r, err)
			}

		default:
			return Outcome[T]{Kind: OutcomeSuccess, Data: data}
		}
	}

	// unreachable: the final attempt always returns
	return Outcome[T]{Kind: OutcomeSuccess, Empty: true}
}

// runAttempt performs both phases of op with the settle pause in between.
func runAttempt[T any](ctx context.Context, r *Retrier, op Operation[T]) (T, bool, error) {
	var zero T
	if op.Prepare != nil {
		if err := op.Prepare(ctx); err != nil {
			return zero, false, err
		}
	}
	if err := r.Sleeper.Sleep(ctx, r.jittered(r.Policy.SettleDelay, r.Policy.SettleJitter)); err != nil {
		return zero, false, err
	}
	return op.Retrieve(ctx)
}

func cancelled[T any](r *Retrier, err error) Outcome[T] {
	r.Logger.Warn().Err(err).Msg("Fetch abandoned")
	return Outcome[T]{Kind: OutcomeError, Message: truncate(err.Error(), r.MessageLimit)}
}

func isContextErr(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

// truncate cuts s to at most limit runes. limit <= 0 disables truncation.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
