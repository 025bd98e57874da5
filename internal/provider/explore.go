// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/trendgate/internal/trends"
)

// ErrNoWidget is returned when explore did not offer the requested view.
var ErrNoWidget = errors.New("widget not offered by explore")

const (
	widgetTimeseries = "TIMESERIES"
	widgetGeoMap     = "GEO_MAP"
)

type comparisonItem struct {
	Keyword string `json:"keyword"`
	Time    string `json:"time"`
	Geo     string `json:"geo"`
}

type exploreRequest struct {
	ComparisonItem []comparisonItem `json:"comparisonItem"`
	Category       int              `json:"category"`
	Property       string           `json:"property"`
}

type widget struct {
	ID      string          `json:"id"`
	Token   string          `json:"token"`
	Request json.RawMessage `json:"request"`
}

type exploreResponse struct {
	Widgets []widget `json:"widgets"`
}

type multilineResponse struct {
	Default struct {
		TimelineData []struct {
			Time  string    `json:"time"`
			Value []float64 `json:"value"`
		} `json:"timelineData"`
	} `json:"default"`
}

type comparedGeoResponse struct {
	Default struct {
		GeoMapData []struct {
			GeoName string `json:"geoName"`
			Value   []int  `json:"value"`
		} `json:"geoMapData"`
	} `json:"default"`
}

// BuildPayload implements trends.Provider. It runs the explore call and
// keeps the returned widgets for the session.
func (c *Client) BuildPayload(ctx context.Context, p trends.Payload) (trends.Session, error) {
	c.warmUp(ctx)

	items := make([]comparisonItem, 0, len(p.Keywords))
	for _, kw := range p.Keywords {
		items = append(items, comparisonItem{Keyword: kw, Time: p.Timeframe.String(), Geo: p.Geo})
	}
	req, err := json.Marshal(exploreRequest{ComparisonItem: items})
	if err != nil {
		return nil, fmt.Errorf("explore: encode request: %w", err)
	}

	params := url.Values{
		"hl":  {c.language},
		"tz":  {c.tz},
		"req": {string(req)},
	}
	body, err := c.do(ctx, "explore", http.MethodPost, explorePath, params, true)
	if err != nil {
		return nil, err
	}

	var resp exploreResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("explore: decode response: %w", err)
	}
	return &session{client: c, keywords: append([]string(nil), p.Keywords...), widgets: resp.Widgets}, nil
}

// session holds the explore widgets of one payload.
type session struct {
	client   *Client
	keywords []string
	widgets  []widget
}

func (s *session) find(prefix string) (widget, error) {
	for _, w := range s.widgets {
		if strings.HasPrefix(w.ID, prefix) {
			return w, nil
		}
	}
	return widget{}, fmt.Errorf("%s: %w", prefix, ErrNoWidget)
}

func (s *session) widgetParams(w widget, request []byte) url.Values {
	return url.Values{
		"req":   {string(request)},
		"token": {w.Token},
		"tz":    {s.client.tz},
	}
}

// InterestOverTime implements trends.Session.
func (s *session) InterestOverTime(ctx context.Context) (trends.SeriesFrame, error) {
	w, err := s.find(widgetTimeseries)
	if err != nil {
		return trends.SeriesFrame{}, err
	}

	body, err := s.client.do(ctx, "multiline", http.MethodGet, multilinePath, s.widgetParams(w, w.Request), true)
	if err != nil {
		return trends.SeriesFrame{}, err
	}

	var resp multilineResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return trends.SeriesFrame{}, fmt.Errorf("multiline: decode response: %w", err)
	}

	points := resp.Default.TimelineData
	frame := trends.SeriesFrame{}
	if len(points) == 0 {
		return frame, nil
	}
	frame.Timestamps = make([]time.Time, 0, len(points))
	frame.Columns = make(map[string][]float64, len(s.keywords))
	for _, kw := range s.keywords {
		frame.Columns[kw] = make([]float64, 0, len(points))
	}
	for _, pt := range points {
		sec, err := strconv.ParseInt(pt.Time, 10, 64)
		if err != nil {
			return trends.SeriesFrame{}, fmt.Errorf("multiline: bad timestamp %q: %w", pt.Time, err)
		}
		frame.Timestamps = append(frame.Timestamps, time.Unix(sec, 0).UTC())
		for i, kw := range s.keywords {
			var v float64
			if i < len(pt.Value) {
				v = pt.Value[i]
			}
			frame.Columns[kw] = append(frame.Columns[kw], v)
		}
	}
	return frame, nil
}

// InterestByRegion implements trends.Session. The GEO_MAP widget request is
// patched with the resolution and low-volume regions are included.
func (s *session) InterestByRegion(ctx context.Context, resolution trends.Resolution) (trends.RegionFrame, error) {
	w, err := s.find(widgetGeoMap)
	if err != nil {
		return trends.RegionFrame{}, err
	}

	var request map[string]any
	if err := json.Unmarshal(w.Request, &request); err != nil {
		return trends.RegionFrame{}, fmt.Errorf("comparedgeo: decode widget request: %w", err)
	}
	if request == nil {
		request = map[string]any{}
	}
	request["resolution"] = string(resolution)
	request["includeLowSearchVolumeGeos"] = true
	patched, err := json.Marshal(request)
	if err != nil {
		return trends.RegionFrame{}, fmt.Errorf("comparedgeo: encode widget request: %w", err)
	}

	body, err := s.client.do(ctx, "comparedgeo", http.MethodGet, comparedGeoPath, s.widgetParams(w, patched), true)
	if err != nil {
		return trends.RegionFrame{}, err
	}

	var resp comparedGeoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return trends.RegionFrame{}, fmt.Errorf("comparedgeo: decode response: %w", err)
	}

	frame := trends.RegionFrame{Rows: make([]trends.RegionRow, 0, len(resp.Default.GeoMapData))}
	for _, g := range resp.Default.GeoMapData {
		row := trends.RegionRow{Name: g.GeoName, Values: make(map[string]int, len(s.keywords))}
		for i, kw := range s.keywords {
			if i < len(g.Value) {
				row.Values[kw] = g.Value[i]
			}
		}
		frame.Rows = append(frame.Rows, row)
	}
	return frame, nil
}
