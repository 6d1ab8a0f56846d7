// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/shopscope/internal/query"
	"github.com/tomtom215/shopscope/internal/segment"
)

// Reclassifier forces a reclassification. *refresh.Refresher satisfies it.
type Reclassifier interface {
	Trigger(ctx context.Context) (*segment.State, error)
}

// ReadinessCheck reports whether the server can answer queries.
type ReadinessCheck func(ctx context.Context) error

// Handler serves the API routes.
type Handler struct {
	service      *query.Service
	reclassifier Reclassifier
	ready        ReadinessCheck
	startTime    time.Time
}

// NewHandler creates a Handler. reclassifier and ready may be nil: the admin
// route then answers 503 and readiness always succeeds.
func NewHandler(service *query.Service, reclassifier Reclassifier, ready ReadinessCheck) *Handler {
	return &Handler{
		service:      service,
		reclassifier: reclassifier,
		ready:        ready,
		startTime:    time.Now(),
	}
}

// serve runs a cached query and writes its envelope.
func serve[T any](w http.ResponseWriter, r *http.Request, op string, start time.Time, fn func(context.Context) (query.Result[T], error)) {
	res, err := fn(r.Context())
	if err != nil {
		respondQueryError(w, r, op, err)
		return
	}
	respondData(w, r, res.Data, res.Cached, start)
}
