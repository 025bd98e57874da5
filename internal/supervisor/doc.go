// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

// Package supervisor runs Trendgate's long-lived services under a suture v4
// supervisor tree.
//
// The tree has two layers below the root:
//
//	trendgate
//	├── background-layer   periodic housekeeping (cache stats reporter)
//	└── api-layer          HTTP server
//
// A crashing background service is restarted with backoff without touching
// the HTTP server. Supervisor events are logged through sutureslog, bridged
// to zerolog by logging.NewSlogLogger.
package supervisor
