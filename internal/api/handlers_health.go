// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package api

import (
	"net/http"
	"time"
)

// breakerDisabled is reported when no circuit breaker wraps the provider.
const breakerDisabled = "disabled"

// HealthStatus is the body of the health probes.
type HealthStatus struct {
	Status  string  `json:"status"`
	Breaker string  `json:"breaker,omitempty"`
	Uptime  float64 `json:"uptime_seconds"`
}

// HealthLive answers as long as the process serves HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthStatus{
		Status: "alive",
		Uptime: h.uptime(),
	})
}

// HealthReady reports 503 while the provider circuit breaker is open.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	state := breakerDisabled
	if h.breaker != nil {
		state = h.breaker.State()
	}

	statusCode := http.StatusOK
	status := "ready"
	if state == "open" {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	writeJSON(w, statusCode, HealthStatus{
		Status:  status,
		Breaker: state,
		Uptime:  h.uptime(),
	})
}

func (h *Handler) uptime() float64 {
	return h.now().Sub(h.startTime).Round(time.Millisecond).Seconds()
}
