// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/shopscope/internal/logging"
	"github.com/tomtom215/shopscope/internal/metrics"
)

// Results is the advisory cache in front of the query service. Errors from
// the backend never reach callers; the first one disables the cache unless
// the caller's context had already ended.
type Results struct {
	backend  Backend
	ttl      time.Duration
	disabled atomic.Bool
	once     sync.Once
}

// NewResults wraps backend. A nil backend yields a permanently disabled
// cache.
func NewResults(backend Backend, ttl time.Duration) *Results {
	r := &Results{backend: backend, ttl: ttl}
	if backend == nil {
		r.disabled.Store(true)
		metrics.CacheDisabled.Set(1)
		return r
	}
	metrics.CacheDisabled.Set(0)
	return r
}

// Get returns the cached bytes for key. Disabled caches always miss.
func (r *Results) Get(ctx context.Context, op, key string) ([]byte, bool) {
	if r.disabled.Load() {
		metrics.RecordCacheLookup(op, false)
		return nil, false
	}
	v, ok, err := r.backend.Get(ctx, key)
	if err != nil {
		r.disable(ctx, "get", err)
		metrics.RecordCacheLookup(op, false)
		return nil, false
	}
	metrics.RecordCacheLookup(op, ok)
	return v, ok
}

// Set stores value under key. It is a no-op once the cache is disabled.
func (r *Results) Set(ctx context.Context, key string, value []byte) {
	if r.disabled.Load() {
		return
	}
	if err := r.backend.Set(ctx, key, value, r.ttl); err != nil {
		r.disable(ctx, "set", err)
	}
}

// Clear drops every entry. Used when the dataset is reloaded.
func (r *Results) Clear(ctx context.Context) {
	if r.disabled.Load() {
		return
	}
	if err := r.backend.Clear(ctx); err != nil {
		r.disable(ctx, "clear", err)
		return
	}
	logging.Ctx(ctx).Info().Str("backend", r.backend.Name()).Msg("Result cache cleared")
}

// Enabled reports whether the cache still serves reads.
func (r *Results) Enabled() bool {
	return !r.disabled.Load()
}

// Backend returns the backend name, or "none".
func (r *Results) Backend() string {
	if r.backend == nil {
		return "none"
	}
	return r.backend.Name()
}

// disable turns the cache off after a backend failure. Errors caused by the
// caller's own context ending (client gone, request timeout) say nothing
// about the backend and leave the cache on.
func (r *Results) disable(ctx context.Context, action string, err error) {
	if ctx.Err() != nil {
		logging.Ctx(ctx).Debug().
			Err(err).
			Str("backend", r.backend.Name()).
			Str("action", action).
			Msg("Result cache call abandoned by caller")
		return
	}
	r.disabled.Store(true)
	r.once.Do(func() {
		metrics.CacheDisabled.Set(1)
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("backend", r.backend.Name()).
			Str("action", action).
			Msg("Result cache failed, disabling it until restart")
	})
}
