// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

// Package config loads Trendgate settings from struct defaults, an optional
// YAML file and mapped environment variables (highest priority).
package config

import "time"

// Config is the root configuration.
type Config struct {
	Provider ProviderConfig `koanf:"provider"`
	Retry    RetryConfig    `koanf:"retry"`
	Trends   TrendsConfig   `koanf:"trends"`
	Geo      GeoConfig      `koanf:"geo"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Admin    AdminConfig    `koanf:"admin"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ProviderConfig configures the outbound trend-data client.
type ProviderConfig struct {
	BaseURL   string `koanf:"base_url"`
	Language  string `koanf:"language"`
	TZOffset  int    `koanf:"tz_offset"`
	UserAgent string `koanf:"user_agent"`

	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`

	// RequestsPerSecond throttles every outbound HTTP call. 0 disables it.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig configures the provider circuit breaker.
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	FailureRatio float64       `koanf:"failure_ratio"`
	MinRequests  uint32        `koanf:"min_requests"`
}

// RetryConfig holds the delay ladder of the retrying fetch primitive.
type RetryConfig struct {
	Attempts        int           `koanf:"attempts"`
	PreDelay        time.Duration `koanf:"pre_delay"`
	PreJitter       time.Duration `koanf:"pre_jitter"`
	SettleDelay     time.Duration `koanf:"settle_delay"`
	SettleJitter    time.Duration `koanf:"settle_jitter"`
	RateLimitStep   time.Duration `koanf:"rate_limit_step"`
	RateLimitJitter time.Duration `koanf:"rate_limit_jitter"`
	ErrorDelay      time.Duration `koanf:"error_delay"`
	EmptyStep       time.Duration `koanf:"empty_step"`
}

// TrendsConfig configures the time-series aggregator.
type TrendsConfig struct {
	Geo          string        `koanf:"geo"`
	Cooldown     time.Duration `koanf:"cooldown"`
	DefaultDays  int           `koanf:"default_days"`
	MessageLimit int           `koanf:"message_limit"`
}

// GeoConfig configures the region-breakdown aggregator.
type GeoConfig struct {
	DefaultRegion string        `koanf:"default_region"`
	Cooldown      time.Duration `koanf:"cooldown"`
	MessageLimit  int           `koanf:"message_limit"`
	KeywordDelay  time.Duration `koanf:"keyword_delay"`
	KeywordJitter time.Duration `koanf:"keyword_jitter"`
	Verbose       bool          `koanf:"verbose"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RequestTimeout bounds a single aggregation request. 0 means no deadline.
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// SecurityConfig holds CORS and inbound rate limiting.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// AdminConfig gates the cache inspection endpoints.
type AdminConfig struct {
	Enabled bool `koanf:"enabled"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load is the entry point used by main.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Defaults returns the built-in configuration with no file or environment
// overrides applied.
func Defaults() *Config {
	return defaultConfig()
}
