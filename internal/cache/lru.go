// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package cache

import (
	"context"
	"sync"
	"time"
)

const (
	defaultCapacity = 1024
	defaultTTL      = time.Hour
)

type lruEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
	prev      *lruEntry
	next      *lruEntry
}

// MemoryBackend is a capacity-bounded LRU with per-entry TTL. Expired
// entries are dropped lazily on access or when they reach the tail.
//
// Ordering is a doubly-linked list between two sentinels: head.next is the
// most recently used entry and tail.prev the eviction candidate.
type MemoryBackend struct {
	mu         sync.Mutex
	capacity   int
	defaultTTL time.Duration
	items      map[string]*lruEntry
	head       *lruEntry
	tail       *lruEntry
	now        func() time.Time
}

// NewMemoryBackend creates an LRU holding at most capacity entries.
func NewMemoryBackend(capacity int, ttl time.Duration) *MemoryBackend {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	m := &MemoryBackend{
		capacity:   capacity,
		defaultTTL: ttl,
		now:        time.Now,
	}
	m.reset()
	return m
}

func (m *MemoryBackend) reset() {
	m.items = make(map[string]*lruEntry, m.capacity)
	m.head = &lruEntry{}
	m.tail = &lruEntry{}
	m.head.next = m.tail
	m.tail.prev = m.head
}

// Name implements Backend.
func (m *MemoryBackend) Name() string { return BackendMemory }

// Get implements Backend.
func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	if m.now().After(e.expiresAt) {
		m.unlink(e)
		return nil, false, nil
	}
	m.moveToFront(e)
	return e.value, true, nil
}

// Set implements Backend. A non-positive ttl uses the backend default.
func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt := m.now().Add(ttl)
	if e, ok := m.items[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		m.moveToFront(e)
		return nil
	}

	e := &lruEntry{key: key, value: value, expiresAt: expiresAt}
	m.pushFront(e)
	m.items[key] = e
	for len(m.items) > m.capacity {
		m.unlink(m.tail.prev)
	}
	return nil
}

// Clear implements Backend.
func (m *MemoryBackend) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
	return nil
}

// Len returns the number of entries, expired ones included.
func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// list helpers, called with mu held

func (m *MemoryBackend) pushFront(e *lruEntry) {
	e.prev = m.head
	e.next = m.head.next
	m.head.next.prev = e
	m.head.next = e
}

func (m *MemoryBackend) moveToFront(e *lruEntry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	m.pushFront(e)
}

func (m *MemoryBackend) unlink(e *lruEntry) {
	if e == m.head || e == m.tail {
		return
	}
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(m.items, e.key)
}
