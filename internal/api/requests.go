// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package api

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/trendgate/internal/trends"
	"github.com/tomtom215/trendgate/internal/validation"
)

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 1 << 20

// SeriesRequest is a validated /trends request.
type SeriesRequest struct {
	Keywords []string `json:"keywords" validate:"dive,max=100"`
	Days     int      `json:"days" validate:"min=1,max=1825"`
}

// GeoRequest is a validated /trends_geo request.
type GeoRequest struct {
	Keywords   []string          `json:"keywords" validate:"dive,max=100"`
	Geo        string            `json:"geo" validate:"max=32,geocode"`
	Days       int               `json:"days" validate:"min=1,max=1825"`
	Resolution trends.Resolution `json:"-"`
}

// InterestRequest is a validated /trends/interest request.
type InterestRequest struct {
	Keyword string `json:"q" validate:"max=100"`
	Days    int    `json:"days" validate:"min=1,max=1825"`
}

type seriesBody struct {
	Keywords []string `json:"keywords"`
	Days     *int     `json:"days"`
}

type geoBody struct {
	Keywords   []string `json:"keywords"`
	Geo        string   `json:"geo"`
	Days       *int     `json:"days"`
	Resolution string   `json:"resolution"`
}

// splitKeywords splits a comma-separated list, trimming and dropping blanks.
func splitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// cleanKeywords trims and drops blank entries of a JSON keyword list.
func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, kw := range in {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// queryKeywords reads the keywords query parameter.
func queryKeywords(r *http.Request) ([]string, error) {
	raw := r.URL.Query().Get("keywords")
	if strings.TrimSpace(raw) == "" {
		return nil, badRequest(msgMissingKeywordsParam)
	}
	keywords := splitKeywords(raw)
	if len(keywords) == 0 {
		return nil, badRequest(msgNoValidKeywords)
	}
	return keywords, nil
}

// queryDays reads the days query parameter, falling back to def.
func queryDays(r *http.Request, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("days"))
	if raw == "" {
		return def, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest(msgInvalidDays)
	}
	return days, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return badRequest(msgInvalidBody)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return badRequest(msgInvalidBody)
	}
	return nil
}

func validate(req any) error {
	if verr := validation.ValidateStruct(req); verr != nil {
		return badRequest(verr.Error())
	}
	return nil
}

func (h *Handler) parseSeriesQuery(r *http.Request) (SeriesRequest, error) {
	keywords, err := queryKeywords(r)
	if err != nil {
		return SeriesRequest{}, err
	}
	days, err := queryDays(r, h.cfg.Trends.DefaultDays)
	if err != nil {
		return SeriesRequest{}, err
	}
	req := SeriesRequest{Keywords: keywords, Days: days}
	return req, validate(&req)
}

func (h *Handler) parseSeriesBody(w http.ResponseWriter, r *http.Request) (SeriesRequest, error) {
	var body seriesBody
	if err := decodeBody(w, r, &body); err != nil {
		return SeriesRequest{}, err
	}
	keywords := cleanKeywords(body.Keywords)
	if len(keywords) == 0 {
		return SeriesRequest{}, badRequest(msgMissingKeywords)
	}
	req := SeriesRequest{Keywords: keywords, Days: h.cfg.Trends.DefaultDays}
	if body.Days != nil {
		req.Days = *body.Days
	}
	return req, validate(&req)
}

func (h *Handler) parseGeoQuery(r *http.Request) (GeoRequest, error) {
	keywords, err := queryKeywords(r)
	if err != nil {
		return GeoRequest{}, err
	}
	days, err := queryDays(r, h.cfg.Trends.DefaultDays)
	if err != nil {
		return GeoRequest{}, err
	}
	q := r.URL.Query()
	req := GeoRequest{
		Keywords:   keywords,
		Geo:        h.geoOrDefault(q.Get("geo")),
		Days:       days,
		Resolution: trends.ParseResolution(q.Get("resolution")),
	}
	return req, validate(&req)
}

func (h *Handler) parseGeoBody(w http.ResponseWriter, r *http.Request) (GeoRequest, error) {
	var body geoBody
	if err := decodeBody(w, r, &body); err != nil {
		return GeoRequest{}, err
	}
	keywords := cleanKeywords(body.Keywords)
	if len(keywords) == 0 {
		return GeoRequest{}, badRequest(msgMissingKeywords)
	}
	req := GeoRequest{
		Keywords:   keywords,
		Geo:        h.geoOrDefault(body.Geo),
		Days:       h.cfg.Trends.DefaultDays,
		Resolution: trends.ParseResolution(body.Resolution),
	}
	if body.Days != nil {
		req.Days = *body.Days
	}
	return req, validate(&req)
}

func (h *Handler) parseInterestQuery(r *http.Request) (InterestRequest, error) {
	keyword := strings.TrimSpace(r.URL.Query().Get("q"))
	if keyword == "" {
		return InterestRequest{}, badRequest(msgMissingKeywordParam)
	}
	days, err := queryDays(r, h.cfg.Trends.DefaultDays)
	if err != nil {
		return InterestRequest{}, err
	}
	req := InterestRequest{Keyword: keyword, Days: days}
	return req, validate(&req)
}

func (h *Handler) geoOrDefault(geo string) string {
	if geo = strings.TrimSpace(geo); geo != "" {
		return geo
	}
	return h.cfg.Geo.DefaultRegion
}
