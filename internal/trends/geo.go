// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package trends

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/trendgate/internal/logging"
	"github.com/tomtom215/trendgate/internal/metrics"
)

// GeoResult maps each keyword to its region breakdown.
type GeoResult struct {
	Results   map[string][]GeoEntry `json:"results"`
	Error     *string               `json:"error"`
	FromCache bool                  `json:"from_cache"`
}

// GeoConfig configures a GeoAggregator.
type GeoConfig struct {
	// KeywordDelay plus up to KeywordJitter separates consecutive keywords.
	KeywordDelay  time.Duration
	KeywordJitter time.Duration

	// Verbose logs every step at info instead of debug.
	Verbose bool

	Clock  Clock
	Logger zerolog.Logger
}

// GeoAggregator fetches region breakdowns one keyword at a time.
type GeoAggregator struct {
	provider Provider
	state    *State
	retrier  *Retrier
	cfg      GeoConfig
	lock     runLock
}

// NewGeoAggregator wires an aggregator to its provider and shared state.
func NewGeoAggregator(p Provider, state *State, r *Retrier, cfg GeoConfig) *GeoAggregator {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &GeoAggregator{
		provider: p,
		state:    state,
		retrier:  r,
		cfg:      cfg,
		lock:     newRunLock(),
	}
}

// trace returns the event used for per-step logging.
func (a *GeoAggregator) trace(log *zerolog.Logger) *zerolog.Event {
	if a.cfg.Verbose {
		return log.Info()
	}
	return log.Debug()
}

// Aggregate returns the breakdown of every keyword in region at resolution.
// As with SeriesAggregator, the only error returned is a context error while
// waiting for a previous run.
func (a *GeoAggregator) Aggregate(ctx context.Context, keywords []string, region string, tf Timeframe, resolution Resolution) (GeoResult, error) {
	keywords = uniqueKeywords(keywords)
	if len(keywords) == 0 {
		metrics.RecordAggregation("geo", "empty")
		return GeoResult{Results: map[string][]GeoEntry{}, Error: errPtr(NoKeywordsMessage)}, nil
	}

	if err := a.lock.acquire(ctx); err != nil {
		return GeoResult{}, err
	}
	defer a.lock.release()

	log := logging.CtxWith(ctx, a.cfg.Logger)
	now := a.cfg.Clock()

	if a.state.GeoGate.Cooling(now) {
		cached := make(map[string][]GeoEntry)
		for _, kw := range keywords {
			if v, ok := a.state.Regions.Get(geoKey(region, resolution, kw)); ok {
				cached[kw] = v
			}
		}
		if len(cached) > 0 {
			log.Info().Int("cached", len(cached)).Int("requested", len(keywords)).Msg("Rate gate active, serving cached regions")
			metrics.RecordAggregation("geo", "cached")
			return GeoResult{Results: cached, FromCache: true}, nil
		}
	}
	a.state.GeoGate.Mark(now)

	all := make(map[string][]GeoEntry, len(keywords))
	var errs []string

	for i, kw := range keywords {
		a.trace(log).Str("keyword", kw).Int("index", i+1).Int("of", len(keywords)).
			Str("region", region).Str("resolution", string(resolution)).Msg("Fetching region breakdown")

		out := a.fetchKeyword(ctx, kw, region, tf, resolution)
		switch {
		case out.Kind == OutcomeRateLimited:
			for _, rest := range keywords[i:] {
				if _, done := all[rest]; !done {
					all[rest] = a.state.Regions.GetOr(geoKey(region, resolution, rest), []GeoEntry{})
				}
			}
			log.Warn().Str("keyword", kw).Msg("Provider rate limited, returning fallback regions")
			metrics.RecordAggregation("geo", "rate_limited")
			return GeoResult{Results: all, Error: errPtr(ErrRateLimited.Error())}, nil

		case out.Kind == OutcomeError:
			errs = append(errs, fmt.Sprintf("%s: %s", kw, out.Message))
			all[kw] = []GeoEntry{}

		default:
			entries := out.Data
			if entries == nil {
				entries = []GeoEntry{}
			}
			all[kw] = entries
			if len(entries) > 0 {
				a.state.Regions.Set(geoKey(region, resolution, kw), entries)
			}
			a.trace(log).Str("keyword", kw).Int("regions", len(entries)).Msg("Region breakdown fetched")
		}

		if i < len(keywords)-1 {
			if err := a.retrier.Sleeper.Sleep(ctx, a.retrier.jittered(a.cfg.KeywordDelay, a.cfg.KeywordJitter)); err != nil {
				errs = append(errs, fmt.Sprintf("%s: %s", keywords[i+1], err.Error()))
				for _, rest := range keywords[i+1:] {
					all[rest] = a.state.Regions.GetOr(geoKey(region, resolution, rest), []GeoEntry{})
				}
				break
			}
		}
	}

	res := GeoResult{Results: all}
	if len(errs) > 0 {
		res.Error = errPtr(errs[0])
	}
	log.Info().Int("keywords", len(keywords)).Int("errors", len(errs)).Msg("Geo aggregation complete")
	metrics.RecordAggregation("geo", "fresh")
	return res, nil
}

// fetchKeyword runs one retried region lookup and converts the frame into
// positive entries sorted by score, ties kept in provider order.
func (a *GeoAggregator) fetchKeyword(ctx context.Context, keyword, region string, tf Timeframe, resolution Resolution) Outcome[[]GeoEntry] {
	metrics.RecordBatch("geo")

	var sess Session
	out := Fetch(ctx, a.retrier, Operation[RegionFrame]{
		Prepare: func(ctx context.Context) error {
			s, err := a.provider.BuildPayload(ctx, Payload{Keywords: []string{keyword}, Timeframe: tf, Geo: region})
			if err != nil {
				return err
			}
			sess = s
			return nil
		},
		Retrieve: func(ctx context.Context) (RegionFrame, bool, error) {
			f, err := sess.InterestByRegion(ctx, resolution)
			if err != nil {
				return RegionFrame{}, false, err
			}
			return f, !f.Empty(), nil
		},
	})

	res := Outcome[[]GeoEntry]{Kind: out.Kind, Empty: out.Empty, Message: out.Message}
	if out.Kind == OutcomeSuccess {
		res.Data = positiveEntries(out.Data, keyword)
	}
	return res
}

func positiveEntries(f RegionFrame, keyword string) []GeoEntry {
	entries := make([]GeoEntry, 0, len(f.Rows))
	for _, row := range f.Rows {
		if score := row.Values[keyword]; score > 0 {
			entries = append(entries, GeoEntry{Name: row.Name, Score: score})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}
