// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

/*
Package main is the entry point for the Shopscope server.

Shopscope loads an e-commerce event log (view, addtocart, transaction) into
DuckDB, classifies visitors into behavioral segments and serves funnel,
ranking, cohort and drill-down analytics over a read-only JSON API.

# Application Architecture

	RootSupervisor ("shopscope")
	├── DataSupervisor ("data-layer")
	│   └── Source refresher (fingerprint watch, reload, reclassify)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── Embedded NATS server (optional)
	│   └── Reload subscriber (result cache invalidation)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB, events table built from the source file
 4. Segmentation: snapshot store, classifier, initial classification
 5. NATS: embedded server and JetStream connection (optional)
 6. Result cache: in-memory LRU or NATS KV
 7. Query service and source refresher
 8. HTTP Server: Chi router with middleware stack
 9. Supervisor Tree: Suture v4 process supervision

# Configuration

	SOURCE_PATH=/data/events_with_category.csv
	DUCKDB_PATH=/data/shopscope.duckdb
	SNAPSHOT_BACKEND=file            # file or badger
	CACHE_BACKEND=memory             # memory or nats
	NATS_ENABLED=false
	NATS_EMBEDDED=true
	HTTP_PORT=8000
	LOG_LEVEL=info

See internal/config for the full list.

# Graceful Shutdown

SIGINT or SIGTERM cancels the root context. The supervisor stops every
service (the HTTP server drains in-flight requests), then the database, the
snapshot store and the NATS connection are closed in reverse order.
*/
package main
