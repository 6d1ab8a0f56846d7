// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

/*
Package metrics provides Prometheus instrumentation for Shopscope.

All collectors are registered on the default registry via promauto and are
exposed by the API at GET /metrics.

# Available Metrics

Engine:
  - shopscope_query_duration_seconds{operation}: computation time on cache miss
  - shopscope_query_errors_total{operation}

Result cache:
  - shopscope_cache_hits_total{operation}, shopscope_cache_misses_total{operation}
  - shopscope_cache_disabled: 1 after the first backend failure

Segmentation and refresh:
  - shopscope_classification_duration_seconds
  - shopscope_segment_users{segment}
  - shopscope_source_reloads_total{result}
  - shopscope_circuit_breaker_state{name}

HTTP:
  - shopscope_api_requests_total{method,route,status}
  - shopscope_api_request_duration_seconds{route}
  - shopscope_api_active_requests

Route labels use the chi route pattern (/api/v1/drilldown/{entity_type}/{entity_id})
rather than the raw path to keep cardinality bounded.
*/
package metrics
