// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/trendgate/internal/middleware"
)

// compressionLevel is the gzip level of JSON responses.
const compressionLevel = 5

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler      *Handler
	chi          *ChiMiddleware
	adminEnabled bool
}

// NewRouter creates a router. Admin routes follow handler's admin.enabled.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:      handler,
		chi:          mw,
		adminEnabled: handler.cfg != nil && handler.cfg.Admin.Enabled,
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Recoverer)
	r.Use(router.chi.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(router.chi.RateLimit())
		r.Use(router.chi.Timeout())
		r.Use(chimiddleware.Compress(compressionLevel, "application/json"))

		r.Get("/trends", router.handler.Trends)
		r.Post("/trends", router.handler.Trends)
		r.Get("/trends/interest", router.handler.TrendsInterest)
		r.Get("/trends_geo", router.handler.TrendsGeo)
		r.Post("/trends_geo", router.handler.TrendsGeo)
	})

	if router.adminEnabled {
		r.Get("/admin/cache", router.handler.CacheInspect)
		r.Post("/admin/cache/clear", router.handler.CacheClear)
	}

	return r
}
