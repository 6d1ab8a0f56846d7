// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package segment

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/shopscope/internal/events"
)

// UserStats is the per-visitor aggregate the predicates run on.
type UserStats struct {
	VisitorID     int64
	Views         int64
	AddToCarts    int64
	Transactions  int64
	FirstVisit    time.Time
	FirstPurchase time.Time // zero when the visitor never bought
}

// PurchaseRatio is transactions/(views+1). The +1 keeps zero-view buyers
// finite and damps visitors with very few views.
func (s *UserStats) PurchaseRatio() float64 {
	return float64(s.Transactions) / float64(s.Views+1)
}

// HoursToPurchase is the time from first visit to first purchase, or
// NoPurchaseHours when there was no purchase.
func (s *UserStats) HoursToPurchase() float64 {
	if s.FirstPurchase.IsZero() {
		return NoPurchaseHours
	}
	return s.FirstPurchase.Sub(s.FirstVisit).Hours()
}

// ComputeStats scans the whole substrate once and aggregates per visitor.
// progress, when non-nil, is called with the running event count every
// 100k events.
func ComputeStats(ctx context.Context, src events.Source, progress func(n int64)) (map[int64]*UserStats, error) {
	stats := make(map[int64]*UserStats)
	var n int64

	err := src.Scan(ctx, events.Filter{}, func(e events.Event) error {
		s, ok := stats[e.VisitorID]
		if !ok {
			s = &UserStats{VisitorID: e.VisitorID, FirstVisit: e.Timestamp}
			stats[e.VisitorID] = s
		}
		if e.Timestamp.Before(s.FirstVisit) {
			s.FirstVisit = e.Timestamp
		}
		switch e.Type {
		case events.View:
			s.Views++
		case events.AddToCart:
			s.AddToCarts++
		case events.Transaction:
			s.Transactions++
			if s.FirstPurchase.IsZero() || e.Timestamp.Before(s.FirstPurchase) {
				s.FirstPurchase = e.Timestamp
			}
		}
		n++
		if progress != nil && n%100_000 == 0 {
			progress(n)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("compute user stats: %w", err)
	}
	if progress != nil {
		progress(n)
	}
	return stats, nil
}
