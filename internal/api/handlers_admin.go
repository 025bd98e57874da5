// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package api

import (
	"net/http"
	"sort"

	"github.com/tomtom215/trendgate/internal/cache"
	"github.com/tomtom215/trendgate/internal/logging"
)

// CacheInspection is the body of GET /admin/cache.
type CacheInspection struct {
	TotalKeys int                    `json:"totalKeys"`
	Keys      []string               `json:"keys"`
	Grouped   map[string][]string    `json:"grouped"`
	Stats     map[string]cache.Stats `json:"stats"`
}

// CacheClearResult is the body of POST /admin/cache/clear.
type CacheClearResult struct {
	Message string `json:"message"`
	Deleted int    `json:"deleted"`
}

// CacheInspect lists every fallback cache key, prefixed with its store name.
func (h *Handler) CacheInspect(w http.ResponseWriter, r *http.Request) {
	out := CacheInspection{
		Keys:    []string{},
		Grouped: make(map[string][]string, 2),
		Stats:   make(map[string]cache.Stats, 2),
	}

	add := func(name string, keys []string, stats cache.Stats) {
		out.Grouped[name] = keys
		out.Stats[name] = stats
		for _, k := range keys {
			out.Keys = append(out.Keys, cache.Key(name, k))
		}
	}
	add(h.state.Scores.Name(), h.state.Scores.Keys(), h.state.Scores.Stats())
	add(h.state.Regions.Name(), h.state.Regions.Keys(), h.state.Regions.Stats())

	sort.Strings(out.Keys)
	out.TotalKeys = len(out.Keys)
	writeJSON(w, http.StatusOK, out)
}

// CacheClear empties the fallback caches and resets both rate gates.
func (h *Handler) CacheClear(w http.ResponseWriter, r *http.Request) {
	deleted := h.state.Reset()

	logging.CtxWith(r.Context(), h.logger).Info().Int("deleted", deleted).Msg("Fallback cache cleared")

	message := "Cache cleared"
	if deleted == 0 {
		message = "Cache already empty"
	}
	writeJSON(w, http.StatusOK, CacheClearResult{Message: message, Deleted: deleted})
}
