// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/shopscope/internal/config"
)

// Backend stores encoded results. A miss is (nil, false, nil); an error
// means the backend itself failed.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Clear(ctx context.Context) error
	Name() string
}

// Backend names accepted by cache.backend.
const (
	BackendMemory = "memory"
	BackendNATS   = "nats"
)

// NewBackend builds the configured backend. js is only needed for nats and
// may be nil otherwise.
func NewBackend(ctx context.Context, cfg *config.CacheConfig, js jetstream.JetStream) (Backend, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryBackend(cfg.Capacity, cfg.TTL), nil
	case BackendNATS:
		if js == nil {
			return nil, fmt.Errorf("cache backend nats requires a JetStream connection")
		}
		return NewNATSBackend(ctx, js, cfg.Bucket, cfg.TTL)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
