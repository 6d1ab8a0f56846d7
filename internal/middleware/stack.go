// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/shopscope/internal/config"
)

// Stack builds the CORS and rate limiting middleware from configuration.
type Stack struct {
	cfg  config.SecurityConfig
	cors func(http.Handler) http.Handler

	// OnLimit replaces the default 429 body when set.
	OnLimit http.HandlerFunc
}

// NewStack returns a Stack for cfg. A nil cfg means no CORS origins and the
// default limit of 100 requests per minute.
func NewStack(cfg *config.SecurityConfig) *Stack {
	s := &Stack{}
	if cfg != nil {
		s.cfg = *cfg
	}
	if s.cfg.RateLimitReqs <= 0 {
		s.cfg.RateLimitReqs = 100
	}
	if s.cfg.RateLimitWindow <= 0 {
		s.cfg.RateLimitWindow = time.Minute
	}

	s.cors = cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})
	return s
}

// CORS returns the go-chi/cors handler. It must be global so that OPTIONS
// preflights reach it before routing.
func (s *Stack) CORS() func(http.Handler) http.Handler {
	return s.cors
}

// RateLimit limits requests per client IP. It is a no-op when disabled.
func (s *Stack) RateLimit() func(http.Handler) http.Handler {
	if s.cfg.RateLimitDisabled {
		return func(next http.Handler) http.Handler { return next }
	}

	opts := []httprate.Option{httprate.WithKeyFuncs(httprate.KeyByIP)}
	if s.OnLimit != nil {
		opts = append(opts, httprate.WithLimitHandler(s.OnLimit))
	}
	return httprate.Limit(s.cfg.RateLimitReqs, s.cfg.RateLimitWindow, opts...)
}
