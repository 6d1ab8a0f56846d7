// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package config

import (
	"fmt"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}

	if err := c.validateSegmentation(); err != nil {
		return err
	}

	if err := c.validateSnapshot(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateNATS(); err != nil {
		return err
	}

	if err := c.validateRefresh(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateRateLimits(); err != nil {
		return err
	}

	return c.validateLogging()
}

var validSourceFormats = map[string]bool{
	"auto":    true,
	"csv":     true,
	"parquet": true,
}

var validTimestampUnits = map[string]bool{
	"native": true,
	"ms":     true,
	"s":      true,
}

// validateSource validates the event log location and format
func (c *Config) validateSource() error {
	if c.Source.Path == "" {
		return fmt.Errorf("SOURCE_PATH is required")
	}
	if !validSourceFormats[c.Source.Format] {
		return fmt.Errorf("SOURCE_FORMAT must be one of: auto, csv, parquet")
	}
	if !validTimestampUnits[c.Source.TimestampUnit] {
		return fmt.Errorf("SOURCE_TIMESTAMP_UNIT must be one of: native, ms, s")
	}
	return nil
}

// validateSegmentation validates rule thresholds.
// Ratios are purchase_ratio bounds and must stay within [0, 1].
func (c *Config) validateSegmentation() error {
	s := c.Segmentation
	if s.HesitantMinViews < 0 || s.ImpulsiveMinViews < 0 || s.CollectorMinAddToCart < 0 {
		return fmt.Errorf("segmentation count thresholds must not be negative")
	}
	for name, ratio := range map[string]float64{
		"HESITANT_MAX_RATIO":  s.HesitantMaxRatio,
		"IMPULSIVE_MIN_RATIO": s.ImpulsiveMinRatio,
		"COLLECTOR_MIN_RATIO": s.CollectorMinRatio,
	} {
		if ratio < 0 || ratio > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %v", name, ratio)
		}
	}
	if s.ImpulsiveMaxHours < 0 {
		return fmt.Errorf("IMPULSIVE_MAX_HOURS must not be negative")
	}
	return nil
}

// validateSnapshot validates the segmentation snapshot store
func (c *Config) validateSnapshot() error {
	switch c.Snapshot.Backend {
	case "file", "badger":
	default:
		return fmt.Errorf("SNAPSHOT_BACKEND must be one of: file, badger")
	}
	if c.Snapshot.Path == "" {
		return fmt.Errorf("SNAPSHOT_PATH is required")
	}
	return nil
}

// validateCache validates the result cache (only if enabled)
func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}
	switch c.Cache.Backend {
	case "memory":
		if c.Cache.Capacity < 1 {
			return fmt.Errorf("CACHE_CAPACITY must be at least 1")
		}
	case "nats":
		if !c.NATS.Enabled {
			return fmt.Errorf("CACHE_BACKEND=nats requires NATS_ENABLED=true")
		}
		if c.Cache.Bucket == "" {
			return fmt.Errorf("CACHE_BUCKET is required for the nats backend")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of: memory, nats")
	}
	if c.Cache.TTL < time.Second {
		return fmt.Errorf("CACHE_TTL must be at least 1s")
	}
	return nil
}

// validateNATS validates NATS configuration (only if enabled)
func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if c.NATS.EmbeddedServer {
		if c.NATS.StoreDir == "" {
			return fmt.Errorf("NATS_STORE_DIR is required for the embedded server")
		}
		if c.NATS.Port < 0 || c.NATS.Port > 65535 {
			return fmt.Errorf("NATS_PORT must be between 0 and 65535")
		}
	} else if c.NATS.URL == "" {
		return fmt.Errorf("NATS_URL is required when NATS_ENABLED=true")
	} else if err := validateNATSURL(c.NATS.URL); err != nil {
		return err
	}
	if c.NATS.ReloadSubject == "" {
		return fmt.Errorf("NATS_RELOAD_SUBJECT is required when NATS_ENABLED=true")
	}
	return nil
}

// validateRefresh validates source refresh configuration (only if enabled)
func (c *Config) validateRefresh() error {
	if !c.Refresh.Enabled {
		return nil
	}
	if c.Refresh.Interval < time.Second {
		return fmt.Errorf("REFRESH_INTERVAL must be at least 1s")
	}
	if c.Refresh.BreakerMaxFailures == 0 {
		return fmt.Errorf("REFRESH_BREAKER_MAX_FAILURES must be at least 1")
	}
	if c.Refresh.ManualPerMinute < 1 {
		return fmt.Errorf("REFRESH_MANUAL_PER_MINUTE must be at least 1")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	for _, origin := range c.Security.CORSOrigins {
		if err := validateOriginURL(origin); err != nil {
			return err
		}
	}
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
