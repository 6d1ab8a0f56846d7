// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package segment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/tomtom215/shopscope/internal/events"
	"github.com/tomtom215/shopscope/internal/logging"
	"github.com/tomtom215/shopscope/internal/metrics"
)

// State is one classification result together with what it was computed from.
type State struct {
	Assignment   *Assignment
	Fingerprint  Fingerprint
	ClassifiedAt time.Time
	FromSnapshot bool
}

// Count is one row of the segments listing.
type Count struct {
	Segment   string `json:"segment"`
	UserCount int    `json:"user_count"`
}

// Classifier owns the current segmentation. Readers call Current, which is a
// lock-free pointer load; Classify swaps in a new state when the source or
// rules fingerprint changes.
type Classifier struct {
	src      events.Source
	store    Store
	rules    Rules
	rulesFP  string
	progress func(int64)

	current atomic.Pointer[State]
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithProgress reports the number of scanned events during recomputation.
func WithProgress(fn func(scanned int64)) Option {
	return func(c *Classifier) { c.progress = fn }
}

// NewClassifier builds a classifier. store may be nil to skip persistence.
func NewClassifier(src events.Source, store Store, rules Rules, opts ...Option) (*Classifier, error) {
	fp, err := rules.Fingerprint()
	if err != nil {
		return nil, err
	}
	c := &Classifier{src: src, store: store, rules: rules, rulesFP: fp}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Rules returns the thresholds in use.
func (c *Classifier) Rules() Rules { return c.rules }

// Fingerprint returns the fingerprint of the current source and rules.
func (c *Classifier) Fingerprint(ctx context.Context) (Fingerprint, error) {
	src, err := c.src.Fingerprint(ctx)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("source fingerprint: %w", err)
	}
	return Fingerprint{Source: src, Rules: c.rulesFP}, nil
}

// Current returns the active assignment. Before the first classification it
// is empty except that All places no restriction on scans.
func (c *Classifier) Current() *Assignment {
	if st := c.current.Load(); st != nil {
		return st.Assignment
	}
	return NewAssignment(nil)
}

// State returns the active state, or nil before the first classification.
func (c *Classifier) State() *State {
	return c.current.Load()
}

// Counts lists every segment with its size, ordered by segment name.
func (c *Classifier) Counts() []Count {
	a := c.Current()
	out := make([]Count, 0, len(Names))
	for _, n := range Names {
		out = append(out, Count{Segment: string(n), UserCount: a.Size(n)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Segment < out[j].Segment })
	return out
}

// Classify makes the active assignment match the current fingerprint.
//
// Without force it first reuses the in-process state, then a persisted
// snapshot, when either carries the same fingerprint. Otherwise it rescans the
// substrate, recomputes and persists. An unreadable snapshot counts as a miss
// and a failed save is logged; neither fails the call.
func (c *Classifier) Classify(ctx context.Context, force bool) (*State, error) {
	fp, err := c.Fingerprint(ctx)
	if err != nil {
		return nil, err
	}
	log := logging.CtxWith(ctx).Str("component", "classifier").Logger()

	if !force {
		if cur := c.current.Load(); cur != nil && cur.Fingerprint == fp {
			return cur, nil
		}
		if st := c.fromSnapshot(ctx, fp); st != nil {
			c.current.Store(st)
			metrics.SetSegmentSizes(st.Assignment.Sizes())
			log.Info().Str("source_fp", short(fp.Source)).Msg("Segmentation restored from snapshot")
			return st, nil
		}
	}

	start := time.Now()
	stats, err := ComputeStats(ctx, c.src, c.progress)
	if err != nil {
		return nil, err
	}
	assignment, err := Classify(ctx, stats, c.rules)
	if err != nil {
		return nil, fmt.Errorf("classify users: %w", err)
	}
	elapsed := time.Since(start)

	st := &State{Assignment: assignment, Fingerprint: fp, ClassifiedAt: time.Now().UTC()}
	c.current.Store(st)
	metrics.RecordClassification(elapsed, assignment.Sizes())

	log.Info().
		Int("users", assignment.Size(All)).
		Int("hesitant", assignment.Size(Hesitant)).
		Int("impulsive", assignment.Size(Impulsive)).
		Int("collector", assignment.Size(Collector)).
		Dur("duration", elapsed).
		Bool("forced", force).
		Msg("Segmentation recomputed")

	if c.store != nil {
		snap := &Snapshot{Fingerprint: fp, Payload: assignment.Payload(), CreatedAt: st.ClassifiedAt}
		if err := c.store.Save(ctx, snap); err != nil {
			log.Warn().Err(err).Msg("Failed to persist segmentation snapshot")
		}
	}
	return st, nil
}

func (c *Classifier) fromSnapshot(ctx context.Context, fp Fingerprint) *State {
	if c.store == nil {
		return nil
	}
	snap, err := c.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrSnapshotNotFound) {
			logging.Ctx(ctx).Warn().Err(err).Msg("Ignoring unreadable segmentation snapshot")
		}
		return nil
	}
	if snap.Fingerprint != fp {
		logging.Ctx(ctx).Debug().
			Str("snapshot_source_fp", short(snap.Fingerprint.Source)).
			Str("current_source_fp", short(fp.Source)).
			Bool("rules_changed", snap.Fingerprint.Rules != fp.Rules).
			Msg("Segmentation snapshot is stale")
		return nil
	}
	return &State{
		Assignment:   assignmentFromPayload(snap.Payload),
		Fingerprint:  fp,
		ClassifiedAt: snap.CreatedAt,
		FromSnapshot: true,
	}
}

func short(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
