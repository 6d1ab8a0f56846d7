// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

// Package events defines the event record, the filter that is pushed down to
// the substrate and the Source interface the analytics engine reads through.
package events

import (
	"context"
	"fmt"
	"time"
)

// Type is the kind of a user action.
type Type string

const (
	View        Type = "view"
	AddToCart   Type = "addtocart"
	Transaction Type = "transaction"
)

// Types lists the event types in funnel order.
var Types = []Type{View, AddToCart, Transaction}

// ParseType validates s as an event type.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case View, AddToCart, Transaction:
		return Type(s), nil
	default:
		return "", fmt.Errorf("unknown event type %q", s)
	}
}

// NoCategory is the category id of events whose category is missing.
const NoCategory int64 = -1

// Event is one row of the event log. Timestamp is always UTC.
type Event struct {
	VisitorID  int64
	Timestamp  time.Time
	Type       Type
	ItemID     int64
	CategoryID int64
}

// Date returns the UTC calendar date of the event at midnight.
func (e *Event) Date() time.Time {
	y, m, d := e.Timestamp.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Source is a read-only event substrate.
type Source interface {
	// Scan calls fn for every event matching f. Returning an error from fn
	// stops the scan and is returned from Scan.
	Scan(ctx context.Context, f Filter, fn func(Event) error) error

	// Fingerprint identifies the current content of the substrate. It changes
	// whenever the underlying data changes.
	Fingerprint(ctx context.Context) (string, error)
}
