// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package cache

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/tomtom215/trendgate/internal/metrics"
)

// KeySeparator joins the parts of a composite key.
const KeySeparator = ":"

// Key builds a composite key such as "FR-J:CITY:bitcoin".
func Key(parts ...string) string {
	return strings.Join(parts, KeySeparator)
}

// Stats is a point-in-time view of a store's counters.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// HitRate returns hits / (hits + misses) as a percentage.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Store is a thread-safe last-known-value map.
type Store[V any] struct {
	name    string
	mu      sync.RWMutex
	entries map[string]V
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewStore creates an empty store whose metrics are labelled with name.
func NewStore[V any](name string) *Store[V] {
	s := &Store[V]{
		name:    name,
		entries: make(map[string]V),
	}
	metrics.SetFallbackEntries(name, 0)
	return s
}

// Name returns the metrics label of the store.
func (s *Store[V]) Name() string {
	return s.name
}

// Get returns the stored value and whether it was present.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	v, ok := s.entries[key]
	s.mu.RUnlock()

	if ok {
		s.hits.Add(1)
	} else {
		s.misses.Add(1)
	}
	metrics.RecordFallbackLookup(s.name, ok)
	return v, ok
}

// GetOr returns the stored value or def when key is unknown.
func (s *Store[V]) GetOr(key string, def V) V {
	if v, ok := s.Get(key); ok {
		return v
	}
	return def
}

// Set stores v under key, replacing any previous value.
func (s *Store[V]) Set(key string, v V) {
	s.mu.Lock()
	s.entries[key] = v
	n := len(s.entries)
	s.mu.Unlock()

	metrics.SetFallbackEntries(s.name, n)
}

// Len returns the number of entries.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Keys returns every key in ascending order.
func (s *Store[V]) Keys() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// Clear drops every entry and returns how many were removed.
// Hit and miss counters are kept.
func (s *Store[V]) Clear() int {
	s.mu.Lock()
	n := len(s.entries)
	s.entries = make(map[string]V)
	s.mu.Unlock()

	metrics.SetFallbackEntries(s.name, 0)
	return n
}

// Stats returns the current counters.
func (s *Store[V]) Stats() Stats {
	return Stats{
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Entries: s.Len(),
	}
}
