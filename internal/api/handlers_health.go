// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/shopscope/internal/logging"
)

const readinessTimeout = 2 * time.Second

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptime_seconds"`
}

// HealthLive reports that the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, HealthStatus{Status: "alive", Uptime: time.Since(h.startTime).Seconds()}, false, time.Now())
}

// HealthReady reports whether queries can be served: the substrate is
// loaded and a segmentation is installed.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := h.ready(ctx); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Readiness check failed")
			respondError(w, r, http.StatusServiceUnavailable, &Error{Code: ErrCodeServiceUnavailable, Message: "not ready"})
			return
		}
	}
	respondData(w, r, HealthStatus{Status: "ready", Uptime: time.Since(h.startTime).Seconds()}, false, start)
}
