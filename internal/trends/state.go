// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package trends

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/trendgate/internal/cache"
)

// Clock returns the current time.
type Clock func() time.Time

// GeoEntry is one region of a keyword's breakdown.
type GeoEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// RateGate remembers when the last batch started.
type RateGate struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     time.Time
}

// NewRateGate returns a gate that has never been marked.
func NewRateGate(cooldown time.Duration) *RateGate {
	return &RateGate{cooldown: cooldown}
}

// Cooling reports whether now falls inside the cooldown of the last mark.
func (g *RateGate) Cooling(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.last.IsZero() && now.Sub(g.last) < g.cooldown
}

// Mark records now as the start of a batch.
func (g *RateGate) Mark(now time.Time) {
	g.mu.Lock()
	g.last = now
	g.mu.Unlock()
}

// Last returns the last mark, zero if none.
func (g *RateGate) Last() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// Reset forgets the last mark.
func (g *RateGate) Reset() {
	g.Mark(time.Time{})
}

// runLock is a single-slot lock that can be abandoned when ctx ends.
type runLock chan struct{}

func newRunLock() runLock {
	return make(runLock, 1)
}

func (l runLock) acquire(ctx context.Context) error {
	select {
	case l <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l runLock) release() {
	<-l
}

// State is the process-wide fallback data shared by the aggregators.
type State struct {
	Scores  *cache.Store[float64]
	Regions *cache.Store[[]GeoEntry]

	SeriesGate *RateGate
	GeoGate    *RateGate
}

// NewState creates empty caches and unmarked gates.
func NewState(seriesCooldown, geoCooldown time.Duration) *State {
	return &State{
		Scores:     cache.NewStore[float64]("series"),
		Regions:    cache.NewStore[[]GeoEntry]("geo"),
		SeriesGate: NewRateGate(seriesCooldown),
		GeoGate:    NewRateGate(geoCooldown),
	}
}

// Reset clears both caches and both gates and returns the number of
// cache entries dropped.
func (s *State) Reset() int {
	n := s.Scores.Clear() + s.Regions.Clear()
	s.SeriesGate.Reset()
	s.GeoGate.Reset()
	return n
}

// geoKey is the composite cache key of a region breakdown.
func geoKey(region string, resolution Resolution, keyword string) string {
	return cache.Key(region, string(resolution), keyword)
}
