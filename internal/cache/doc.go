// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

/*
Package cache provides the advisory result cache of the query service.

Results are stored as encoded bytes under a canonical key built from the
operation name and its parameters:

	key := cache.Key("funnel", map[string]any{"segment": "All", "date_from": nil})
	// "funnel|date_from=None|segment=All"

Two backends implement Backend:

  - MemoryBackend: a capacity-bounded LRU with per-entry TTL
  - NATSBackend: a NATS JetStream KeyValue bucket, shared between replicas

# Advisory Semantics

Results wraps a backend and never lets a cache failure reach the caller.
The first backend error disables the cache for the life of the process:
it is logged once at warn level, shopscope_cache_disabled is set to 1, and
from then on every read is a miss and every write is dropped. Queries keep
working, only slower.

# Thread Safety

All types in this package are safe for concurrent use.
*/
package cache
