// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package segment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shopscope/internal/config"
)

// ErrSnapshotNotFound is returned by Store.Load when nothing was persisted yet.
var ErrSnapshotNotFound = errors.New("segmentation snapshot not found")

// Fingerprint identifies the inputs an assignment was computed from.
type Fingerprint struct {
	Source string `json:"source"`
	Rules  string `json:"rules"`
}

// Snapshot is the persisted form of an assignment.
type Snapshot struct {
	Fingerprint Fingerprint        `json:"fingerprint"`
	Payload     map[string][]int64 `json:"payload"`
	CreatedAt   time.Time          `json:"created_at"`
}

func encodeSnapshot(s *Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if s.Fingerprint.Source == "" || s.Fingerprint.Rules == "" || s.Payload == nil {
		return nil, fmt.Errorf("unmarshal snapshot: missing fingerprint or payload")
	}
	return &s, nil
}

// Store persists a single snapshot. Save replaces any previous snapshot;
// concurrent saves resolve last-writer-wins.
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, s *Snapshot) error
	Close() error
}

// OpenStore opens the store selected by cfg.Backend.
func OpenStore(cfg *config.SnapshotConfig) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(cfg.Path), nil
	case "badger":
		return OpenBadgerStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.Backend)
	}
}
