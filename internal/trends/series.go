// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package trends

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/trendgate/internal/logging"
	"github.com/tomtom215/trendgate/internal/metrics"
)

// NoKeywordsMessage is reported for an empty keyword list.
const NoKeywordsMessage = "No keywords provided"

// pivotChunk is how many non-pivot keywords fit next to the pivot.
const pivotChunk = MaxBatchKeywords - 1

// SeriesResult is the merged interest-over-time comparison.
type SeriesResult struct {
	Scores    map[string]float64 `json:"scores"`
	Error     *string            `json:"error"`
	FromCache bool               `json:"from_cache"`
}

// SeriesConfig configures a SeriesAggregator.
type SeriesConfig struct {
	// Geo is the provider region for time-series comparisons, e.g. "FR".
	Geo    string
	Clock  Clock
	Logger zerolog.Logger
}

// SeriesAggregator compares any number of keywords on one 0-100 scale.
type SeriesAggregator struct {
	provider Provider
	state    *State
	retrier  *Retrier
	geo      string
	now      Clock
	logger   zerolog.Logger
	lock     runLock
}

// NewSeriesAggregator wires an aggregator to its provider and shared state.
func NewSeriesAggregator(p Provider, state *State, r *Retrier, cfg SeriesConfig) *SeriesAggregator {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &SeriesAggregator{
		provider: p,
		state:    state,
		retrier:  r,
		geo:      cfg.Geo,
		now:      cfg.Clock,
		logger:   cfg.Logger,
		lock:     newRunLock(),
	}
}

// Aggregate scores keywords over tf. Runs are serialized per aggregator; the
// only error returned is the context error when ctx ends while waiting for a
// previous run. Provider failures are reported in SeriesResult.Error.
func (a *SeriesAggregator) Aggregate(ctx context.Context, keywords []string, tf Timeframe) (SeriesResult, error) {
	keywords = uniqueKeywords(keywords)
	if len(keywords) == 0 {
		metrics.RecordAggregation("series", "empty")
		return SeriesResult{Scores: map[string]float64{}, Error: errPtr(NoKeywordsMessage)}, nil
	}

	if err := a.lock.acquire(ctx); err != nil {
		return SeriesResult{}, err
	}
	defer a.lock.release()

	log := logging.CtxWith(ctx, a.logger)
	now := a.now()

	if a.state.SeriesGate.Cooling(now) {
		if cached := a.cachedSubset(keywords); len(cached) > 0 {
			log.Info().Int("cached", len(cached)).Int("requested", len(keywords)).Msg("Rate gate active, serving cached scores")
			metrics.RecordAggregation("series", "cached")
			return SeriesResult{Scores: cached, FromCache: true}, nil
		}
		log.Debug().Msg("Rate gate active but nothing cached, fetching anyway")
	}
	a.state.SeriesGate.Mark(now)

	var (
		all  map[string]float64
		errs []string
		ok   bool
	)
	if len(keywords) <= MaxBatchKeywords {
		all, errs, ok = a.single(ctx, keywords, tf)
	} else {
		all, errs, ok = a.pivoted(ctx, keywords, tf)
	}
	if !ok {
		a.fillFromCache(all, keywords)
		log.Warn().Int("keywords", len(keywords)).Msg("Provider rate limited, returning fallback scores")
		metrics.RecordAggregation("series", "rate_limited")
		return SeriesResult{Scores: all, Error: errPtr(ErrRateLimited.Error())}, nil
	}

	for kw, score := range all {
		if score > 0 {
			a.state.Scores.Set(kw, score)
		}
	}
	a.fillFromCache(all, keywords)
	normalizeToMax(all)

	res := SeriesResult{Scores: all}
	if len(errs) > 0 {
		res.Error = errPtr(errs[0])
	}
	log.Info().Int("keywords", len(keywords)).Int("errors", len(errs)).Msg("Time-series aggregation complete")
	metrics.RecordAggregation("series", "fresh")
	return res, nil
}

// single fetches up to MaxBatchKeywords in one comparison. ok is false when
// the provider rate limited the batch.
func (a *SeriesAggregator) single(ctx context.Context, keywords []string, tf Timeframe) (map[string]float64, []string, bool) {
	all := make(map[string]float64, len(keywords))
	out := a.fetchBatch(ctx, keywords, tf)
	switch out.Kind {
	case OutcomeRateLimited:
		return all, nil, false
	case OutcomeError:
		return all, []string{out.Message}, true
	}
	for kw, s := range out.Data {
		all[kw] = s
	}
	return all, nil, true
}

// pivoted compares keywords in pivot batches and rescales every batch onto
// the scale of the first batch that returned the pivot.
func (a *SeriesAggregator) pivoted(ctx context.Context, keywords []string, tf Timeframe) (map[string]float64, []string, bool) {
	log := logging.CtxWith(ctx, a.logger)
	pivot := keywords[0]
	batches := pivotBatches(keywords)
	all := make(map[string]float64, len(keywords))

	var (
		errs     []string
		ref      float64
		haveRef  bool
		nBatches = len(batches)
	)
	for i, batch := range batches {
		log.Debug().Int("batch", i+1).Int("of", nBatches).Strs("keywords", batch).Msg("Fetching pivot batch")

		out := a.fetchBatch(ctx, batch, tf)
		switch out.Kind {
		case OutcomeRateLimited:
			return all, errs, false
		case OutcomeError:
			errs = append(errs, out.Message)
			continue
		}

		scores := out.Data
		chunkPivot, pivotPresent := scores[pivot]
		if !haveRef && pivotPresent {
			ref, haveRef = chunkPivot, true
		}
		for _, kw := range batch {
			raw, present := scores[kw]
			if !present {
				continue
			}
			if haveRef && ref > 0 && pivotPresent && chunkPivot > 0 {
				all[kw] = round1(raw / chunkPivot * ref)
			} else {
				all[kw] = round1(raw)
			}
		}
	}
	return all, errs, true
}

// pivotBatches puts keywords[0] in front of every chunk of the remaining
// keywords, giving ceil((n-1)/4) batches of at most five.
func pivotBatches(keywords []string) [][]string {
	pivot, rest := keywords[0], keywords[1:]
	batches := make([][]string, 0, (len(rest)+pivotChunk-1)/pivotChunk)
	for i := 0; i < len(rest); i += pivotChunk {
		end := min(i+pivotChunk, len(rest))
		batch := make([]string, 0, end-i+1)
		batch = append(batch, pivot)
		batch = append(batch, rest[i:end]...)
		batches = append(batches, batch)
	}
	return batches
}

// fetchBatch runs one retried comparison and reduces each column to its
// mean. Keywords without a column score 0; an empty result yields no scores.
func (a *SeriesAggregator) fetchBatch(ctx context.Context, batch []string, tf Timeframe) Outcome[map[string]float64] {
	metrics.RecordBatch("series")

	var sess Session
	out := Fetch(ctx, a.retrier, Operation[SeriesFrame]{
		Prepare: func(ctx context.Context) error {
			s, err := a.provider.BuildPayload(ctx, Payload{Keywords: batch, Timeframe: tf, Geo: a.geo})
			if err != nil {
				return err
			}
			sess = s
			return nil
		},
		Retrieve: func(ctx context.Context) (SeriesFrame, bool, error) {
			f, err := sess.InterestOverTime(ctx)
			if err != nil {
				return SeriesFrame{}, false, err
			}
			return f, !f.Empty(), nil
		},
	})

	res := Outcome[map[string]float64]{Kind: out.Kind, Empty: out.Empty, Message: out.Message}
	if out.Kind != OutcomeSuccess || out.Empty {
		return res
	}
	res.Data = make(map[string]float64, len(batch))
	for _, kw := range batch {
		mean, _ := out.Data.Mean(kw)
		res.Data[kw] = round1(mean)
	}
	return res
}

func (a *SeriesAggregator) cachedSubset(keywords []string) map[string]float64 {
	cached := make(map[string]float64)
	for _, kw := range keywords {
		if v, ok := a.state.Scores.Get(kw); ok {
			cached[kw] = v
		}
	}
	return cached
}

func (a *SeriesAggregator) fillFromCache(scores map[string]float64, keywords []string) {
	for _, kw := range keywords {
		if _, ok := scores[kw]; !ok {
			scores[kw] = a.state.Scores.GetOr(kw, 0)
		}
	}
}

// normalizeToMax rescales scores in place so the largest becomes 100.
func normalizeToMax(scores map[string]float64) {
	var top float64
	for _, s := range scores {
		top = max(top, s)
	}
	if top <= 0 {
		return
	}
	for kw, s := range scores {
		scores[kw] = round1(s / top * 100)
	}
}

// uniqueKeywords drops repeated keywords, keeping the first occurrence.
func uniqueKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

func errPtr(s string) *string {
	return &s
}
