// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// DefaultBucket is the KV bucket used when cache.bucket is empty.
const DefaultBucket = "shopscope-results"

// NATSBackend stores results in a JetStream KeyValue bucket. Keys are
// hashed with StorageKey since KV keys only allow a restricted charset.
// The TTL is a property of the bucket; per-call TTLs are ignored.
type NATSBackend struct {
	kv     jetstream.KeyValue
	bucket string
}

// NewNATSBackend creates the bucket if needed, or updates its TTL.
func NewNATSBackend(ctx context.Context, js jetstream.JetStream, bucket string, ttl time.Duration) (*NATSBackend, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "shopscope query results",
		History:     1,
		TTL:         ttl,
		Storage:     jetstream.FileStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("create kv bucket %s: %w", bucket, err)
	}
	return &NATSBackend{kv: kv, bucket: bucket}, nil
}

// Name implements Backend.
func (n *NATSBackend) Name() string { return BackendNATS }

// Get implements Backend.
func (n *NATSBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, err := n.kv.Get(ctx, StorageKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("kv get: %w", err)
	}
	return entry.Value(), true, nil
}

// Set implements Backend.
func (n *NATSBackend) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	if _, err := n.kv.Put(ctx, StorageKey(key), value); err != nil {
		return fmt.Errorf("kv put: %w", err)
	}
	return nil
}

// Clear purges every key of the bucket.
func (n *NATSBackend) Clear(ctx context.Context) error {
	lister, err := n.kv.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil
		}
		return fmt.Errorf("kv list keys: %w", err)
	}
	defer func() { _ = lister.Stop() }()

	for k := range lister.Keys() {
		if err := n.kv.Purge(ctx, k); err != nil {
			return fmt.Errorf("kv purge %s: %w", k, err)
		}
	}
	return nil
}
