// Trendgate - Search Trend Aggregation Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trendgate

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/trendgate/config.yaml",
	"/etc/trendgate/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			BaseURL:           "https://trends.google.com",
			Language:          "fr-FR",
			TZOffset:          60,
			UserAgent:         "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
			ConnectTimeout:    10 * time.Second,
			ReadTimeout:       25 * time.Second,
			RequestsPerSecond: 2,
			Burst:             1,
			Breaker: BreakerConfig{
				Enabled:      true,
				MaxRequests:  1,
				Interval:     time.Minute,
				Timeout:      2 * time.Minute,
				FailureRatio: 0.6,
				MinRequests:  5,
			},
		},
		Retry: RetryConfig{
			Attempts:        3,
			PreDelay:        2 * time.Second,
			PreJitter:       2 * time.Second,
			SettleDelay:     time.Second,
			SettleJitter:    time.Second,
			RateLimitStep:   10 * time.Second,
			RateLimitJitter: 5 * time.Second,
			ErrorDelay:      3 * time.Second,
			EmptyStep:       5 * time.Second,
		},
		Trends: TrendsConfig{
			Geo:          "FR",
			Cooldown:     30 * time.Second,
			DefaultDays:  7,
			MessageLimit: 100,
		},
		Geo: GeoConfig{
			DefaultRegion: "FR-J",
			Cooldown:      60 * time.Second,
			MessageLimit:  200,
			KeywordDelay:  3 * time.Second,
			KeywordJitter: 2 * time.Second,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    10 * time.Minute, // long pivot runs
			IdleTimeout:     2 * time.Minute,
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   60,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf layers defaults, the config file and the environment, then validates.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths arrive from the environment as comma separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				values = append(values, p)
			}
		}
		if err := k.Set(path, values); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
// Unlisted variables are ignored.
var envMappings = map[string]string{
	"provider_base_url":            "provider.base_url",
	"provider_language":            "provider.language",
	"provider_tz_offset":           "provider.tz_offset",
	"provider_user_agent":          "provider.user_agent",
	"provider_connect_timeout":     "provider.connect_timeout",
	"provider_read_timeout":        "provider.read_timeout",
	"provider_requests_per_second": "provider.requests_per_second",
	"provider_burst":               "provider.burst",
	"circuit_breaker_enabled":      "provider.breaker.enabled",
	"circuit_breaker_timeout":      "provider.breaker.timeout",
	"circuit_breaker_min_requests": "provider.breaker.min_requests",

	"retry_attempts":          "retry.attempts",
	"retry_pre_delay":         "retry.pre_delay",
	"retry_pre_jitter":        "retry.pre_jitter",
	"retry_settle_delay":      "retry.settle_delay",
	"retry_settle_jitter":     "retry.settle_jitter",
	"retry_rate_limit_step":   "retry.rate_limit_step",
	"retry_rate_limit_jitter": "retry.rate_limit_jitter",
	"retry_error_delay":       "retry.error_delay",
	"retry_empty_step":        "retry.empty_step",

	"trends_geo":           "trends.geo",
	"trends_cooldown":      "trends.cooldown",
	"trends_default_days":  "trends.default_days",
	"trends_message_limit": "trends.message_limit",

	"geo_default_region": "geo.default_region",
	"geo_cooldown":       "geo.cooldown",
	"geo_message_limit":  "geo.message_limit",
	"geo_keyword_delay":  "geo.keyword_delay",
	"geo_keyword_jitter": "geo.keyword_jitter",
	"geo_verbose":        "geo.verbose",

	"http_host":        "server.host",
	"http_port":        "server.port",
	"read_timeout":     "server.read_timeout",
	"write_timeout":    "server.write_timeout",
	"idle_timeout":     "server.idle_timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"request_timeout":  "server.request_timeout",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"admin_enabled": "admin.enabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
