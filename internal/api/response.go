// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shopscope/internal/analytics"
	"github.com/tomtom215/shopscope/internal/logging"
	"github.com/tomtom215/shopscope/internal/middleware"
	"github.com/tomtom215/shopscope/internal/validation"
)

// Error codes
const (
	ErrCodeValidation         = validation.CodeValidation
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeNotFound           = "NOT_FOUND"
)

// Response is the envelope of every API response.
type Response struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *Error      `json:"error,omitempty"`
}

// Metadata describes how the response was produced.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id,omitempty"`
	Cached      bool      `json:"cached"`
	QueryTimeMS int64     `json:"query_time_ms"`
}

// Error is the error body.
type Error struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, response *Response) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondData writes a success envelope. start is when the handler began
// working on the request.
func respondData(w http.ResponseWriter, r *http.Request, data interface{}, cached bool, start time.Time) {
	respondJSON(w, http.StatusOK, &Response{
		Status: "success",
		Data:   data,
		Metadata: Metadata{
			Timestamp:   time.Now().UTC(),
			RequestID:   middleware.GetRequestID(r.Context()),
			Cached:      cached,
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, apiErr *Error) {
	respondJSON(w, status, &Response{
		Status: "error",
		Metadata: Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: middleware.GetRequestID(r.Context()),
		},
		Error: apiErr,
	})
}

func respondValidation(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondError(w, r, http.StatusBadRequest, &Error{Code: apiErr.Code, Message: apiErr.Message, Details: apiErr.Details})
}

// respondQueryError maps an engine error to a status code. Internal details
// are logged, never returned.
func respondQueryError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, analytics.ErrInvalidArgument) {
		respondError(w, r, http.StatusBadRequest, &Error{Code: ErrCodeValidation, Message: err.Error()})
		return
	}
	logging.Ctx(r.Context()).Error().Err(err).Str("op", op).Msg("Query failed")
	respondError(w, r, http.StatusInternalServerError, &Error{Code: ErrCodeInternal, Message: "internal error"})
}
