// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/trendgate/internal/logging"
	"github.com/tomtom215/trendgate/internal/trends"
)

// interestFailure is the neutral placeholder returned when a lookup fails.
type interestFailure struct {
	trends.Interest
	Error string `json:"error"`
}

// Trends compares keywords over the last days on one 0-100 scale.
//
// GET /trends?keywords=a,b&days=7
// POST /trends {"keywords": ["a", "b"], "days": 7}
func (h *Handler) Trends(w http.ResponseWriter, r *http.Request) {
	var (
		req SeriesRequest
		err error
	)
	if r.Method == http.MethodPost {
		req, err = h.parseSeriesBody(w, r)
	} else {
		req, err = h.parseSeriesQuery(r)
	}
	if err != nil {
		h.respondRequestError(w, r, err)
		return
	}

	res, err := h.series.Aggregate(r.Context(), req.Keywords, h.timeframe(req.Days))
	if err != nil {
		h.respondInternal(w, r, "series aggregation", err)
		return
	}
	writeCached(w, r, cacheControlSeries, res)
}

// TrendsGeo returns the region breakdown of every keyword.
//
// GET /trends_geo?keywords=a,b&geo=FR-J&days=7&resolution=CITY
// POST /trends_geo {"keywords": [...], "geo": "FR-J", "days": 7, "resolution": "REGION"}
func (h *Handler) TrendsGeo(w http.ResponseWriter, r *http.Request) {
	var (
		req GeoRequest
		err error
	)
	if r.Method == http.MethodPost {
		req, err = h.parseGeoBody(w, r)
	} else {
		req, err = h.parseGeoQuery(r)
	}
	if err != nil {
		h.respondRequestError(w, r, err)
		return
	}

	res, err := h.geo.Aggregate(r.Context(), req.Keywords, req.Geo, h.timeframe(req.Days), req.Resolution)
	if err != nil {
		h.respondInternal(w, r, "geo aggregation", err)
		return
	}
	writeCached(w, r, cacheControlGeo, res)
}

// TrendsInterest returns the daily timeline of one keyword. Provider failures
// answer 500 with neutral values so that callers can still render something.
//
// GET /trends/interest?q=velo&days=7
func (h *Handler) TrendsInterest(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseInterestQuery(r)
	if err != nil {
		h.respondRequestError(w, r, err)
		return
	}

	res, err := h.interest.Lookup(r.Context(), req.Keyword, h.timeframe(req.Days))
	if err != nil {
		logging.CtxWith(r.Context(), h.logger).Error().Err(err).Str("keyword", req.Keyword).Msg("Interest lookup failed")
		writeJSON(w, http.StatusInternalServerError, interestFailure{
			Interest: trends.NeutralFor(req.Keyword),
			Error:    err.Error(),
		})
		return
	}
	writeCached(w, r, cacheControlInterest, res)
}

func (h *Handler) respondRequestError(w http.ResponseWriter, r *http.Request, err error) {
	var re *RequestError
	if errors.As(err, &re) {
		logging.CtxWith(r.Context(), h.logger).Debug().Str("reason", re.Message).Msg("Rejected request")
		writeError(w, http.StatusBadRequest, re.Message)
		return
	}
	h.respondInternal(w, r, "request parsing", err)
}

func (h *Handler) respondInternal(w http.ResponseWriter, r *http.Request, operation string, err error) {
	logging.CtxWith(r.Context(), h.logger).Error().Err(err).Str("operation", operation).Msg("Request failed")
	writeError(w, http.StatusInternalServerError, err.Error())
}
