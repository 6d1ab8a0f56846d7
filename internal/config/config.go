// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Data:
//     - Source: the raw event log (CSV or Parquet) loaded into DuckDB
//     - Database: DuckDB configuration (path, memory, threads)
//     - Snapshot: where the segmentation snapshot is persisted
//
//  2. Engine:
//     - Segmentation: thresholds for the Hesitant, Impulsive and Collector rules
//     - Cache: result cache backend (memory or NATS JetStream KV)
//     - Refresh: periodic source fingerprint checks and reload circuit breaker
//
//  3. Infrastructure:
//     - Server: HTTP server configuration
//     - NATS: optional messaging and KV (embedded or external server)
//     - Security: CORS and rate limiting
//
//  4. Observability:
//     - Logging: Log levels and output formats
type Config struct {
	Source       SourceConfig       `koanf:"source"`
	Database     DatabaseConfig     `koanf:"database"`
	Segmentation SegmentationConfig `koanf:"segmentation"`
	Snapshot     SnapshotConfig     `koanf:"snapshot"`
	Cache        CacheConfig        `koanf:"cache"`
	NATS         NATSConfig         `koanf:"nats"`
	Refresh      RefreshConfig      `koanf:"refresh"`
	Server       ServerConfig       `koanf:"server"`
	Security     SecurityConfig     `koanf:"security"`
	Logging      LoggingConfig      `koanf:"logging"`
}

// SourceConfig describes the raw event log.
//
// The file must carry the columns visitorid, timestamp, event, itemid and
// categoryid. Format "auto" picks the reader from the file extension.
type SourceConfig struct {
	Path   string `koanf:"path"`
	Format string `koanf:"format"` // auto, csv, parquet

	// TimestampUnit is "ms" when the timestamp column holds epoch milliseconds
	// (the RetailRocket export) and "native" when it is already a timestamp.
	TimestampUnit string `koanf:"timestamp_unit"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"`                  // Number of DuckDB threads (0 = use NumCPU)
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"` // Whether to preserve insertion order (default true)
	SkipIndexes            bool   `koanf:"skip_indexes"`             // Skip index creation (fast test setup)
}

// SegmentationConfig holds the thresholds of the three behavioral rules.
// Changing any single value changes the rules fingerprint and forces a
// reclassification on the next load.
type SegmentationConfig struct {
	HesitantMinViews        int     `koanf:"hesitant_min_views"`
	HesitantMaxRatio        float64 `koanf:"hesitant_max_ratio"`
	ImpulsiveMinViews       int     `koanf:"impulsive_min_views"`
	ImpulsiveMinRatio       float64 `koanf:"impulsive_min_ratio"`
	ImpulsiveMaxHours       float64 `koanf:"impulsive_max_hours"`
	CollectorMinAddToCart   int     `koanf:"collector_min_addtocart"`
	CollectorMinRatio       float64 `koanf:"collector_min_ratio"`
	ClassifyOnStartup       bool    `koanf:"classify_on_startup"`
	ForceReclassifyOnReload bool    `koanf:"force_reclassify_on_reload"`
}

// SnapshotConfig selects where the segmentation snapshot lives.
type SnapshotConfig struct {
	Backend string `koanf:"backend"` // file, badger
	Path    string `koanf:"path"`
}

// CacheConfig configures the advisory result cache.
type CacheConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Backend  string        `koanf:"backend"` // memory, nats
	TTL      time.Duration `koanf:"ttl"`
	Capacity int           `koanf:"capacity"` // memory backend only
	Bucket   string        `koanf:"bucket"`   // NATS KV bucket name
}

// NATSConfig holds NATS settings used by the KV cache backend and by the
// dataset reload notifications.
type NATSConfig struct {
	Enabled        bool          `koanf:"enabled"`
	URL            string        `koanf:"url"`
	EmbeddedServer bool          `koanf:"embedded_server"`
	Host           string        `koanf:"host"`
	Port           int           `koanf:"port"`
	StoreDir       string        `koanf:"store_dir"`
	MaxMemory      int64         `koanf:"max_memory"`
	MaxStore       int64         `koanf:"max_store"`
	MaxReconnects  int           `koanf:"max_reconnects"`
	ReconnectWait  time.Duration `koanf:"reconnect_wait"`
	ReloadSubject  string        `koanf:"reload_subject"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// RefreshConfig controls how the source is watched and rebuilt.
type RefreshConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`

	// Circuit breaker around reloads
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`

	// ManualPerMinute bounds admin-triggered reclassifications.
	ManualPerMinute int `koanf:"manual_per_minute"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development" || c.Server.Environment == ""
}
