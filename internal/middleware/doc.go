// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

/*
Package middleware provides the chi middleware of the HTTP API.

  - RequestID: X-Request-ID propagation plus request and correlation ids in
    the logging context
  - Stack.CORS and Stack.RateLimit: go-chi/cors and go-chi/httprate, built
    from config.SecurityConfig
  - PrometheusMetrics: request counters and latency labelled by chi route
    pattern, so /api/v1/drilldown/item/42 and /api/v1/drilldown/item/7 share
    one series

The router applies them in this order:

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(stack.CORS())
	r.Use(stack.RateLimit())
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
