// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/shopscope/internal/events"
	"github.com/tomtom215/shopscope/internal/segment"
)

// DateLayout is the calendar date format accepted for window bounds.
const DateLayout = "2006-01-02"

// SegmentProvider supplies the active segmentation. *segment.Classifier
// satisfies it.
type SegmentProvider interface {
	Current() *segment.Assignment
}

// Engine computes every metric over an event source and the current
// segmentation. It holds no other state and is safe for concurrent use.
type Engine struct {
	src      events.Source
	segments SegmentProvider
}

// NewEngine wires an engine to its substrate and segmentation.
func NewEngine(src events.Source, segments SegmentProvider) *Engine {
	return &Engine{src: src, segments: segments}
}

// Window scopes a computation to a segment and an optional inclusive range
// of calendar dates.
type Window struct {
	Segment segment.Name
	From    *time.Time
	To      *time.Time
}

// NewWindow parses a window. Unknown segments fall back to All; dates must
// be YYYY-MM-DD when present.
func NewWindow(seg, from, to string) (Window, error) {
	w := Window{Segment: segment.ParseName(seg)}
	var err error
	if w.From, err = parseDate("date_from", from); err != nil {
		return Window{}, err
	}
	if w.To, err = parseDate("date_to", to); err != nil {
		return Window{}, err
	}
	return w, nil
}

func parseDate(name, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, invalidf("%s must be YYYY-MM-DD, got %q", name, s)
	}
	return &t, nil
}

// FromString renders the lower bound, or "" when open.
func (w Window) FromString() string { return fmtDate(w.From) }

// ToString renders the upper bound, or "" when open.
func (w Window) ToString() string { return fmtDate(w.To) }

func fmtDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

// filter builds the scan filter for w against assignment a.
func (w Window) filter(a *segment.Assignment) events.Filter {
	return events.Filter{From: w.From, To: w.To, Visitors: a.Visitors(w.Segment)}
}

// scan is the single read path of the engine.
func (e *Engine) scan(ctx context.Context, f events.Filter, fn func(*events.Event)) error {
	err := e.src.Scan(ctx, f, func(ev events.Event) error {
		fn(&ev)
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan events: %w", err)
	}
	return nil
}
