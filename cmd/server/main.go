// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/trendgate/internal/config"
	"github.com/tomtom215/trendgate/internal/logging"
	"github.com/tomtom215/trendgate/internal/supervisor"
	"github.com/tomtom215/trendgate/internal/supervisor/services"
)

// cacheReportInterval is how often fallback cache statistics are logged.
const cacheReportInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logCfg.Caller = cfg.Logging.Caller
	logging.Init(logCfg)

	logging.Info().
		Str("provider", cfg.Provider.BaseURL).
		Str("language", cfg.Provider.Language).
		Str("series_geo", cfg.Trends.Geo).
		Str("default_region", cfg.Geo.DefaultRegion).
		Bool("breaker", cfg.Provider.Breaker.Enabled).
		Bool("admin", cfg.Admin.Enabled).
		Msg("Configuration loaded")

	p, breaker, err := newProvider(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize provider")
	}
	app := newApplication(cfg, p, breaker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + time.Second,
	})
	tree.AddBackgroundService(services.NewCacheReportService(
		cacheReportInterval, logging.Component("cache"), app.state.Scores, app.state.Regions,
	))
	tree.AddAPIService(services.NewHTTPServerService(app.server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", app.server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	logging.Info().Msg("Trendgate stopped")
}
