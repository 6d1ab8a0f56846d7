// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/shopscope/internal/config"
	"github.com/tomtom215/shopscope/internal/middleware"
)

// Router owns the handler and the middleware stack.
type Router struct {
	handler *Handler
	stack   *middleware.Stack
}

// NewRouter creates a router. security may be nil.
func NewRouter(handler *Handler, security *config.SecurityConfig) *Router {
	stack := middleware.NewStack(security)
	stack.OnLimit = func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusTooManyRequests, &Error{Code: ErrCodeTooManyRequests, Message: "rate limit exceeded"})
	}
	return &Router{handler: handler, stack: stack}
}

// Setup returns the complete HTTP handler.
func (router *Router) Setup() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(router.stack.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, &Error{Code: ErrCodeNotFound, Message: "route not found"})
	})

	// Probes and scrapes are not rate limited.
	r.Group(func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Get("/health/live", h.HealthLive)
		r.Get("/health/ready", h.HealthReady)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.stack.RateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/segments", h.Segments)
		r.Get("/top-items", h.TopItems)
		r.Get("/top-categories", h.TopCategories)
		r.Get("/funnel", h.Funnel)
		r.Get("/event-counts", h.EventCounts)
		r.Get("/active-hours", h.ActiveHours)
		r.Get("/monthly-sales", h.MonthlySales)
		r.Get("/daily-active-users", h.DailyActiveUsers)
		r.Get("/heatmap", h.Heatmap)
		r.Get("/black-horse-items", h.BlackHorseItems)
		r.Get("/segment-trend", h.SegmentTrend)

		r.Get("/drilldown/{entity_type}/{entity_id}", h.Drilldown)
		r.Get("/funnel-stage/{stage}", h.FunnelStageDetail)
		r.Get("/active-hour/{hour}", h.ActiveHourDetail)

		r.Get("/monthly-retention", h.MonthlyRetention)
		r.Get("/daily-retention", h.DailyRetention)
		r.Get("/weekday-users", h.WeekdayUsers)
		r.Get("/cohort-detail/{cohort_month}", h.CohortDetail)

		r.Post("/admin/reclassify", h.Reclassify)
	})

	return r
}
