// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

/*
Package config provides centralized configuration management for Shopscope.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file (CONFIG_PATH, ./config.yaml or /etc/shopscope/config.yaml), then
environment variables. Environment variables win.

# Sections

  - source: the raw event log (path, format, timestamp unit)
  - database: DuckDB path, memory limit and threads
  - segmentation: the seven thresholds of the behavioral rules
  - snapshot: segmentation snapshot store (file or badger)
  - cache: result cache backend (memory or nats), TTL and capacity
  - nats: optional NATS connection or embedded server
  - refresh: source watch interval and reload circuit breaker
  - server, security, logging

# Environment Variables

Only mapped variables are read. A few examples:

  - SOURCE_PATH, SOURCE_FORMAT, SOURCE_TIMESTAMP_UNIT
  - DUCKDB_PATH, DUCKDB_MAX_MEMORY
  - HESITANT_MIN_VIEWS, IMPULSIVE_MIN_RATIO, COLLECTOR_MIN_ADDTOCART
  - CACHE_BACKEND, CACHE_TTL
  - NATS_ENABLED, NATS_URL, NATS_EMBEDDED
  - HTTP_PORT, LOG_LEVEL, LOG_FORMAT

Example:

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
*/
package config
