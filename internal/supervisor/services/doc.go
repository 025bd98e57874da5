// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

// Package services adapts Trendgate components to suture.Service.
//
// Every service runs until its context is canceled and implements
// fmt.Stringer so supervisor log lines name it:
//
//   - HTTPServerService: ListenAndServe plus graceful Shutdown
//   - CacheReportService: periodic fallback-cache statistics
package services
