// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/shopscope/internal/logging"
	"github.com/tomtom215/shopscope/internal/refresh"
	"github.com/tomtom215/shopscope/internal/segment"
)

// ReclassifyResult is the body of a successful reclassification.
type ReclassifyResult struct {
	Fingerprint  segment.Fingerprint `json:"fingerprint"`
	ClassifiedAt time.Time           `json:"classified_at"`
	Segments     []segment.Count     `json:"segments"`
}

// Reclassify forces a segmentation rebuild and drops every cached result.
func (h *Handler) Reclassify(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.reclassifier == nil {
		respondError(w, r, http.StatusServiceUnavailable, &Error{Code: ErrCodeServiceUnavailable, Message: "reclassification is not available"})
		return
	}

	state, err := h.reclassifier.Trigger(r.Context())
	if errors.Is(err, refresh.ErrThrottled) {
		respondError(w, r, http.StatusTooManyRequests, &Error{Code: ErrCodeTooManyRequests, Message: err.Error()})
		return
	}
	if state == nil {
		respondQueryError(w, r, "reclassify", err)
		return
	}
	if err != nil {
		// The new state is live; only the notification failed.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Reclassified but reload notification failed")
	}

	h.service.Invalidate(r.Context())
	logging.Ctx(r.Context()).Info().
		Str("source_fingerprint", state.Fingerprint.Source).
		Str("rules_fingerprint", state.Fingerprint.Rules).
		Msg("Manual reclassification complete")

	respondData(w, r, ReclassifyResult{
		Fingerprint:  state.Fingerprint,
		ClassifiedAt: state.ClassifiedAt,
		Segments:     h.service.Segments(r.Context()),
	}, false, start)
}
