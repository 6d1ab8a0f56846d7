// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

/*
Package api exposes the cached query service over HTTP with the chi router.

Every analytics route lives under /api/v1 and accepts the common window
parameters:

  - segment: All, Hesitant, Impulsive or Collector (unknown values mean All)
  - date_from, date_to: optional YYYY-MM-DD bounds, both inclusive

Responses share one envelope:

	{
	  "status": "success",
	  "data": ...,
	  "metadata": {"timestamp": "...", "request_id": "...", "cached": true, "query_time_ms": 3}
	}

Failures carry "status": "error" and an error object with a machine code.
Bad parameters and invalid arguments map to 400 VALIDATION_ERROR, anything
else to 500 INTERNAL_ERROR.

Outside /api/v1 the router serves /health/live, /health/ready and the
Prometheus /metrics endpoint.
*/
package api
