// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateProvider,
		c.validateRetry,
		c.validateAggregators,
		c.validateServer,
		c.validateSecurity,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateProvider() error {
	if err := validateHTTPURL(c.Provider.BaseURL, "PROVIDER_BASE_URL"); err != nil {
		return err
	}
	if c.Provider.ConnectTimeout <= 0 || c.Provider.ReadTimeout <= 0 {
		return errors.New("provider timeouts must be positive")
	}
	if c.Provider.RequestsPerSecond < 0 {
		return fmt.Errorf("PROVIDER_REQUESTS_PER_SECOND must not be negative, got %v", c.Provider.RequestsPerSecond)
	}
	if c.Provider.RequestsPerSecond > 0 && c.Provider.Burst < 1 {
		return fmt.Errorf("PROVIDER_BURST must be at least 1 when throttling is enabled, got %d", c.Provider.Burst)
	}
	if b := c.Provider.Breaker; b.Enabled && (b.FailureRatio <= 0 || b.FailureRatio > 1) {
		return fmt.Errorf("circuit breaker failure_ratio must be in (0,1], got %v", b.FailureRatio)
	}
	return nil
}

func (c *Config) validateRetry() error {
	r := c.Retry
	if r.Attempts < 1 {
		return fmt.Errorf("RETRY_ATTEMPTS must be at least 1, got %d", r.Attempts)
	}
	for name, d := range map[string]int64{
		"pre_delay":         int64(r.PreDelay),
		"pre_jitter":        int64(r.PreJitter),
		"settle_delay":      int64(r.SettleDelay),
		"settle_jitter":     int64(r.SettleJitter),
		"rate_limit_step":   int64(r.RateLimitStep),
		"rate_limit_jitter": int64(r.RateLimitJitter),
		"error_delay":       int64(r.ErrorDelay),
		"empty_step":        int64(r.EmptyStep),
	} {
		if d < 0 {
			return fmt.Errorf("retry.%s must not be negative", name)
		}
	}
	return nil
}

func (c *Config) validateAggregators() error {
	if c.Trends.Cooldown < 0 || c.Geo.Cooldown < 0 {
		return errors.New("cooldowns must not be negative")
	}
	if c.Trends.DefaultDays < 1 {
		return fmt.Errorf("TRENDS_DEFAULT_DAYS must be at least 1, got %d", c.Trends.DefaultDays)
	}
	if c.Trends.MessageLimit < 1 || c.Geo.MessageLimit < 1 {
		return errors.New("error message limits must be positive")
	}
	if strings.TrimSpace(c.Geo.DefaultRegion) == "" {
		return errors.New("GEO_DEFAULT_REGION is required")
	}
	if c.Geo.KeywordDelay < 0 || c.Geo.KeywordJitter < 0 {
		return errors.New("geo keyword delays must not be negative")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RequestTimeout < 0 {
		return errors.New("REQUEST_TIMEOUT must not be negative")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return errors.New("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a known level", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
