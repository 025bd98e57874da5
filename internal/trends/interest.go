// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package trends

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/trendgate/internal/logging"
	"github.com/tomtom215/trendgate/internal/metrics"
)

// NeutralInterest is reported in place of real values when a lookup fails.
const NeutralInterest = 50

// TimelinePoint is one day of a keyword's interest.
type TimelinePoint struct {
	Date  string `json:"date"`
	Value int    `json:"value"`
}

// Interest summarizes one keyword's interest over a timeframe.
type Interest struct {
	Keyword      string          `json:"keyword"`
	CurrentValue int             `json:"currentValue"`
	MaxValue     int             `json:"maxValue"`
	AvgValue     int             `json:"avgValue"`
	Timeline     []TimelinePoint `json:"timeline"`
	Available    bool            `json:"available"`
}

// NeutralFor returns the placeholder reported when a lookup for keyword fails.
func NeutralFor(keyword string) Interest {
	return Interest{
		Keyword:      keyword,
		CurrentValue: NeutralInterest,
		MaxValue:     NeutralInterest,
		AvgValue:     NeutralInterest,
		Timeline:     []TimelinePoint{},
	}
}

// InterestService looks up a single keyword without retries or caching.
type InterestService struct {
	provider Provider
	geo      string
	logger   zerolog.Logger
}

// NewInterestService returns a service comparing keywords within geo.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewInterestService(p Provider, geo string, logger zerolog.Logger) *InterestService {
	return &InterestService{provider: p, geo: geo, logger: logger}
}

// Lookup fetches the daily series of keyword over tf. An empty series is not
// an error: the result is zeroed with Available=false.
func (s *InterestService) Lookup(ctx context.Context, keyword string, tf Timeframe) (Interest, error) {
	log := logging.CtxWith(ctx, s.logger)

	sess, err := s.provider.BuildPayload(ctx, Payload{Keywords: []string{keyword}, Timeframe: tf, Geo: s.geo})
	if err != nil {
		metrics.RecordAggregation("interest", "error")
		return Interest{}, fmt.Errorf("build payload: %w", err)
	}
	frame, err := sess.InterestOverTime(ctx)
	if err != nil {
		metrics.RecordAggregation("interest", "error")
		return Interest{}, fmt.Errorf("interest over time: %w", err)
	}

	values := frame.Columns[keyword]
	if frame.Empty() || len(values) == 0 {
		log.Debug().Str("keyword", keyword).Msg("No interest data")
		metrics.RecordAggregation("interest", "empty")
		return Interest{Keyword: keyword, Timeline: []TimelinePoint{}}, nil
	}

	out := Interest{
		Keyword:   keyword,
		Timeline:  make([]TimelinePoint, 0, len(values)),
		Available: true,
	}
	var sum, peak int
	for i, v := range values {
		n := int(v)
		sum += n
		peak = max(peak, n)
		point := TimelinePoint{Value: n}
		if i < len(frame.Timestamps) {
			point.Date = frame.Timestamps[i].Format(TimeframeLayout)
		}
		out.Timeline = append(out.Timeline, point)
	}
	out.CurrentValue = int(values[len(values)-1])
	out.MaxValue = peak
	out.AvgValue = sum / len(values)

	metrics.RecordAggregation("interest", "fresh")
	return out, nil
}
