// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package events

import "time"

// VisitorSet is a membership set of visitor ids.
type VisitorSet map[int64]struct{}

// NewVisitorSet builds a set from ids.
func NewVisitorSet(ids []int64) VisitorSet {
	s := make(VisitorSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is in the set.
func (s VisitorSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// Filter narrows a scan. The zero value matches every event.
//
// From and To are calendar dates, inclusive on both ends, compared against the
// UTC date of the event. A nil Visitors set means no visitor restriction; an
// empty non-nil set matches nothing.
type Filter struct {
	From       *time.Time
	To         *time.Time
	Types      []Type
	Hour       *int
	ItemID     *int64
	CategoryID *int64
	Visitors   VisitorSet
}

// WithType returns a copy of f restricted to the given types.
func (f Filter) WithType(types ...Type) Filter {
	f.Types = types
	return f
}

// WithHour returns a copy of f restricted to hour h.
func (f Filter) WithHour(h int) Filter {
	f.Hour = &h
	return f
}

// WithItem returns a copy of f restricted to item id.
func (f Filter) WithItem(id int64) Filter {
	f.ItemID = &id
	return f
}

// WithCategory returns a copy of f restricted to category id.
func (f Filter) WithCategory(id int64) Filter {
	f.CategoryID = &id
	return f
}

// WithVisitors returns a copy of f restricted to the given visitors.
func (f Filter) WithVisitors(s VisitorSet) Filter {
	f.Visitors = s
	return f
}

// Match evaluates every predicate of f against e. Substrates that push the
// predicates down still call Match for the visitor set.
func (f *Filter) Match(e *Event) bool {
	return f.MatchRow(e) && f.MatchVisitor(e.VisitorID)
}

// MatchRow evaluates the predicates that do not depend on segment membership.
func (f *Filter) MatchRow(e *Event) bool {
	if f.From != nil || f.To != nil {
		d := e.Date()
		if f.From != nil && d.Before(*f.From) {
			return false
		}
		if f.To != nil && d.After(*f.To) {
			return false
		}
	}
	if len(f.Types) > 0 {
		ok := false
		for _, t := range f.Types {
			if t == e.Type {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.Hour != nil && e.Timestamp.Hour() != *f.Hour {
		return false
	}
	if f.ItemID != nil && e.ItemID != *f.ItemID {
		return false
	}
	if f.CategoryID != nil && e.CategoryID != *f.CategoryID {
		return false
	}
	return true
}

// MatchVisitor applies the visitor set.
func (f *Filter) MatchVisitor(id int64) bool {
	if f.Visitors == nil {
		return true
	}
	return f.Visitors.Contains(id)
}
