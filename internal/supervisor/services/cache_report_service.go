// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/trendgate/internal/cache"
)

// StatsReporter is a named source of cache statistics; *cache.Store is one.
type StatsReporter interface {
	Name() string
	Stats() cache.Stats
}

// CacheReportService logs the statistics of each store every interval.
type CacheReportService struct {
	stores   []StatsReporter
	interval time.Duration
	logger   zerolog.Logger
}

// NewCacheReportService reports stores every interval (one minute if unset).
//
//nolint:gocritic // zerolog.Logger is passed by value for chaining
func NewCacheReportService(interval time.Duration, logger zerolog.Logger, stores ...StatsReporter) *CacheReportService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CacheReportService{
		stores:   stores,
		interval: interval,
		logger:   logger,
	}
}

// Serve implements suture.Service.
func (s *CacheReportService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.report()
		}
	}
}

func (s *CacheReportService) report() {
	for _, store := range s.stores {
		st := store.Stats()
		s.logger.Info().
			Str("store", store.Name()).
			Int("entries", st.Entries).
			Int64("hits", st.Hits).
			Int64("misses", st.Misses).
			Float64("hit_rate", st.HitRate()).
			Msg("Fallback cache statistics")
	}
}

func (s *CacheReportService) String() string {
	return "cache-report"
}
