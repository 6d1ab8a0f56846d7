// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/shopscope/internal/analytics"
	"github.com/tomtom215/shopscope/internal/query"
)

// Drilldown profiles one item or category.
func (h *Handler) Drilldown(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	entityType := chi.URLParam(r, "entity_type")
	rawID := chi.URLParam(r, "entity_id")

	entityID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		respondParamError(w, r, &paramError{name: "entity_id", value: rawID})
		return
	}
	req := readWindow(r.URL.Query())
	win, ok := bind(w, r, &req, &req)
	if !ok {
		return
	}

	serve(w, r, query.OpDrilldown, start, func(ctx context.Context) (query.Result[*analytics.Profile], error) {
		return h.service.Drilldown(ctx, win, entityType, entityID)
	})
}

// FunnelStageDetail extends one funnel stage with rankings and dropoff.
func (h *Handler) FunnelStageDetail(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	stage := chi.URLParam(r, "stage")
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

	serve(w, r, query.OpFunnelStageDetail, start, func(ctx context.Context) (query.Result[*analytics.FunnelStageDetail], error) {
		return h.service.FunnelStageDetail(ctx, win, stage, req.TopN)
	})
}

// ActiveHourDetail profiles one hour of day against its neighbours.
func (h *Handler) ActiveHourDetail(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	hour, err := analytics.ParseHour(chi.URLParam(r, "hour"))
	if err != nil {
		respondQueryError(w, r, query.OpActiveHourDetail, err)
		return
	}
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

	serve(w, r, query.OpActiveHourDetail, start, func(ctx context.Context) (query.Result[*analytics.ActiveHourDetail], error) {
		return h.service.ActiveHourDetail(ctx, win, hour, req.TopN)
	})
}

// CohortDetail profiles the users first seen in one month.
func (h *Handler) CohortDetail(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := cohortParams{windowParams: readWindow(r.URL.Query()), CohortMonth: chi.URLParam(r, "cohort_month")}
	win, ok := bind(w, r, &req, &req.windowParams)
	if !ok {
		return
	}

	serve(w, r, query.OpCohortDetail, start, func(ctx context.Context) (query.Result[*analytics.CohortDetail], error) {
		return h.service.CohortDetail(ctx, win, req.CohortMonth)
	})
}
