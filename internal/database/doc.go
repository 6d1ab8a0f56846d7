// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

// Package database provides the DuckDB-backed event substrate.
//
// The raw event log (CSV or Parquet) is materialised into a single table:
//
//	events(visitor_id BIGINT, ts TIMESTAMP, event VARCHAR, item_id BIGINT, category_id BIGINT)
//
// Missing categories are stored as -1. The table is rebuilt wholesale by
// Load/Reload with CREATE OR REPLACE and is never mutated otherwise.
//
// # Files
//
//   - database.go: connection lifecycle and pool settings
//   - load.go: table build from the source file and source fingerprint
//   - scan.go: filtered streaming reads (events.Source), WHERE clauses from
//     the query subpackage
//   - errors.go: sentinels and close helpers
//
// Example:
//
//	db, err := database.New(&cfg.Database, &cfg.Source)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	if err := db.Load(ctx); err != nil {
//	    return err // ErrSourceNotFound is fatal at startup
//	}
package database
