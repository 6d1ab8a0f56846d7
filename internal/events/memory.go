// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package events

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sync"
)

// Memory is an in-memory Source. It backs tests and the CLI demo dataset.
type Memory struct {
	mu          sync.RWMutex
	events      []Event
	fingerprint string
}

// NewMemory returns a source over a copy of evs.
func NewMemory(evs []Event) *Memory {
	m := &Memory{}
	m.Replace(evs)
	return m
}

// Replace swaps the whole event set, mirroring a wholesale reload.
func (m *Memory) Replace(evs []Event) {
	cp := make([]Event, len(evs))
	copy(cp, evs)
	for i := range cp {
		cp[i].Timestamp = cp[i].Timestamp.UTC()
	}

	m.mu.Lock()
	m.events = cp
	m.fingerprint = contentHash(cp)
	m.mu.Unlock()
}

// Len returns the number of events.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// Scan implements Source.
func (m *Memory) Scan(ctx context.Context, f Filter, fn func(Event) error) error {
	m.mu.RLock()
	evs := m.events
	m.mu.RUnlock()

	for i := range evs {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if !f.Match(&evs[i]) {
			continue
		}
		if err := fn(evs[i]); err != nil {
			return err
		}
	}
	return nil
}

// Fingerprint implements Source. It is a content hash of the event set.
func (m *Memory) Fingerprint(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fingerprint, nil
}

func contentHash(evs []Event) string {
	h := sha256.New()
	var buf [8]byte
	for i := range evs {
		e := &evs[i]
		binary.LittleEndian.PutUint64(buf[:], uint64(e.VisitorID))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], uint64(e.Timestamp.UnixNano()))
		h.Write(buf[:])
		h.Write([]byte(e.Type))
		binary.LittleEndian.PutUint64(buf[:], uint64(e.ItemID))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], uint64(e.CategoryID))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
