// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/shopscope/internal/analytics"
	"github.com/tomtom215/shopscope/internal/validation"
)

// Parameter defaults.
const (
	defaultLimit  = 10
	defaultTopN   = analytics.DefaultTopN
	defaultDays   = analytics.MaxRetentionDays
	defaultMetric = "transaction"
)

type windowParams struct {
	Segment  string `query:"segment"`
	DateFrom string `query:"date_from" validate:"omitempty,isodate"`
	DateTo   string `query:"date_to" validate:"omitempty,isodate"`
}

type topParams struct {
	windowParams
	Metric string `query:"metric" validate:"oneof=view addtocart transaction"`
	Limit  int    `query:"limit" validate:"min=3,max=30"`
}

type topNParams struct {
	windowParams
	TopN int `query:"top_n" validate:"min=5,max=20"`
}

type retentionParams struct {
	windowParams
	Days int `query:"days" validate:"min=0"`
}

type cohortParams struct {
	windowParams
	CohortMonth string `query:"cohort_month" validate:"required,cohortmonth"`
}

// paramError is a parameter that could not be converted to its Go type.
type paramError struct {
	name  string
	value string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("%s must be an integer", e.name)
}

func (e *paramError) apiError() *Error {
	return &Error{
		Code:    ErrCodeValidation,
		Message: e.Error(),
		Details: map[string]interface{}{"field": e.name, "value": e.value},
	}
}

func readWindow(q url.Values) windowParams {
	return windowParams{
		Segment:  strings.TrimSpace(q.Get("segment")),
		DateFrom: strings.TrimSpace(q.Get("date_from")),
		DateTo:   strings.TrimSpace(q.Get("date_to")),
	}
}

func intParam(q url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &paramError{name: name, value: raw}
	}
	return n, nil
}

func stringParam(q url.Values, name, def string) string {
	if v := strings.TrimSpace(q.Get(name)); v != "" {
		return v
	}
	return def
}

// bind validates req and resolves the embedded window. On failure it writes
// a 400 response and returns false.
func bind(w http.ResponseWriter, r *http.Request, req interface{}, wp *windowParams) (analytics.Window, bool) {
	if verr := validation.ValidateStruct(req); verr != nil {
		respondValidation(w, r, verr)
		return analytics.Window{}, false
	}
	win, err := analytics.NewWindow(wp.Segment, wp.DateFrom, wp.DateTo)
	if err != nil {
		respondQueryError(w, r, "window", err)
		return analytics.Window{}, false
	}
	return win, true
}

func respondParamError(w http.ResponseWriter, r *http.Request, err error) {
	var pe *paramError
	if errors.As(err, &pe) {
		respondError(w, r, http.StatusBadRequest, pe.apiError())
		return
	}
	respondError(w, r, http.StatusBadRequest, &Error{Code: ErrCodeValidation, Message: err.Error()})
}
