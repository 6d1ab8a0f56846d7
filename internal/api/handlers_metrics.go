// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/shopscope/internal/analytics"
	"github.com/tomtom215/shopscope/internal/query"
)

// Segments lists the user count of every segment.
func (h *Handler) Segments(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondData(w, r, h.service.Segments(r.Context()), false, start)
}

// TopItems ranks items by an event metric.
func (h *Handler) TopItems(w http.ResponseWriter, r *http.Request) {
	h.topEntities(w, r, "item")
}

// TopCategories ranks categories by an event metric.
func (h *Handler) TopCategories(w http.ResponseWriter, r *http.Request) {
	h.topEntities(w, r, "category")
}

func (h *Handler) topEntities(w http.ResponseWriter, r *http.Request, entity string) {
	start := time.Now()
	q := r.URL.Query()

	limit, err := intParam(q, "limit", defaultLimit)
	if err != nil {
		respondParamError(w, r, err)
		return
	}
	req := topParams{windowParams: readWindow(q), Metric: stringParam(q, "metric", defaultMetric), Limit: limit}
	win, ok := bind(w, r, &req, &req.windowParams)
	if !ok {
		return
	}

	serve(w, r, query.OpTopEntities, start, func(ctx context.Context) (query.Result[[]analytics.TopEntity], error) {
		return h.service.TopEntities(ctx, win, req.Metric, entity, req.Limit)
	})
}

// windowOnly binds the common window parameters and runs fn.
func windowOnly[T any](w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, analytics.Window) (query.Result[T], error)) {
	start := time.Now()
	req := readWindow(r.URL.Query())
	win, ok := bind(w, r, &req, &req)
	if !ok {
		return
	}
	serve(w, r, op, start, func(ctx context.Context) (query.Result[T], error) {
		return fn(ctx, win)
	})
}

// Funnel returns the three stage conversion funnel.
func (h *Handler) Funnel(w http.ResponseWriter, r *http.Request) {
	windowOnly(w, r, query.OpFunnel, h.service.Funnel)
}

// EventCounts returns totals per event type.
func (h *Handler) EventCounts(w http.ResponseWriter, r *http.Request) {
	windowOnly(w, r, query.OpEventCounts, h.service.EventCounts)
}

// ActiveHours returns event counts per hour of day.
func (h *Handler) ActiveHours(w http.ResponseWriter, r *http.Request) {
	windowOnly(w, r, query.OpActiveHours, h.service.ActiveHours)
}

// MonthlySales returns transactions per month.
func (h *Handler) MonthlySales(w http.ResponseWriter, r *http.Request) {
	windowOnly(w, r, query.OpMonthlySales, h.service.MonthlySales)
}

// DailyActiveUsers returns distinct visitors per day.
func (h *Handler) DailyActiveUsers(w http.ResponseWriter, r *http.Request) {
	windowOnly(w, r, query.OpDailyActiveUsers, h.service.DailyActiveUsers)
}

// Heatmap returns event counts per date and hour.
func (h *Handler) Heatmap(w http.ResponseWriter, r *http.Request) {
	windowOnly(w, r, query.OpHeatmap, h.service.Heatmap)
}

// SegmentTrend returns monthly active users of every segment.
func (h *Handler) SegmentTrend(w http.ResponseWriter, r *http.Request) {
	windowOnly(w, r, query.OpSegmentTrend, h.service.SegmentTrend)
}

// MonthlyRetention returns the cohort retention matrix.
func (h *Handler) MonthlyRetention(w http.ResponseWriter, r *http.Request) {
	windowOnly(w, r, query.OpMonthlyRetention, h.service.MonthlyRetention)
}

// WeekdayUsers returns distinct visitors per weekday.
func (h *Handler) WeekdayUsers(w http.ResponseWriter, r *http.Request) {
	windowOnly(w, r, query.OpWeekdayUsers, h.service.WeekdayUsers)
}

// BlackHorseItems returns the fastest growing items.
func (h *Handler) BlackHorseItems(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	topN, err := intParam(q, "top_n", defaultTopN)
	if err != nil {
		respondParamError(w, r, err)
		return
	}
	req := topNParams{windowParams: readWindow(q), TopN: topN}
	win, ok := bind(w, r, &req, &req.windowParams)
	if !ok {
		return
	}

	serve(w, r, query.OpBlackHorseItems, start, func(ctx context.Context) (query.Result[[]analytics.BlackHorseItem], error) {
		return h.service.BlackHorseItems(ctx, win, req.TopN)
	})
}

// DailyRetention returns day-N retention of new users.
func (h *Handler) DailyRetention(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	days, err := intParam(q, "days", defaultDays)
	if err != nil {
		respondParamError(w, r, err)
		return
	}
	req := retentionParams{windowParams: readWindow(q), Days: days}
	win, ok := bind(w, r, &req, &req.windowParams)
	if !ok {
		return
	}

	serve(w, r, query.OpDailyRetention, start, func(ctx context.Context) (query.Result[[]analytics.DayRetention], error) {
		return h.service.DailyRetention(ctx, win, req.Days)
	})
}
