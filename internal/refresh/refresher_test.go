// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/shopscope/internal/config"
	"github.com/tomtom215/shopscope/internal/segment"
)

type fakeSubstrate struct {
	mu        sync.Mutex
	fp        string
	reloads   int
	reloadErr error
}

func (f *fakeSubstrate) Fingerprint(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fp, nil
}

func (f *fakeSubstrate) Reload(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return f.reloadErr
}

func (f *fakeSubstrate) set(fp string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fp, f.reloadErr = fp, err
}

type fakeClassifier struct {
	mu     sync.Mutex
	forced []bool
}

func (f *fakeClassifier) Classify(_ context.Context, force bool) (*segment.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forced = append(f.forced, force)
	a := segment.NewAssignment(map[segment.Name][]int64{segment.All: {1, 2}, segment.Hesitant: {2}})
	return &segment.State{Assignment: a, ClassifiedAt: time.Now()}, nil
}

func newTestRefresher(t *testing.T, cfg *config.RefreshConfig, opts ...Option) (*Refresher, *fakeSubstrate, *fakeClassifier, *gochannel.GoChannel) {
	t.Helper()
	ch := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NopLogger{})
	t.Cleanup(func() { _ = ch.Close() })

	sub := &fakeSubstrate{fp: "v1"}
	cls := &fakeClassifier{}
	r := New(cfg, sub, cls, ch, opts...)
	require.NoError(t, r.Prime(context.Background()))
	return r, sub, cls, ch
}

func TestCheckReloadsOnlyOnChange(t *testing.T) {
	t.Parallel()
	r, sub, cls, ch := newTestRefresher(t, &config.RefreshConfig{BreakerMaxFailures: 3, BreakerTimeout: time.Minute}, WithForce(true))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	changed, err := r.Check(ctx)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Zero(t, sub.reloads)

	sub.set("v2", nil)
	changed, err = r.Check(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, sub.reloads)
	assert.Equal(t, []bool{true}, cls.forced)

	changed, err = r.Check(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	invalidated := make(chan struct{}, 4)
	go func() {
		_ = r.Subscribe(ctx, ch, func(context.Context) { invalidated <- struct{}{} })
	}()
	select {
	case <-invalidated:
	case <-ctx.Done():
		t.Fatal("reload notification not delivered")
	}
}

func TestCheckTripsBreaker(t *testing.T) {
	t.Parallel()
	r, sub, _, _ := newTestRefresher(t, &config.RefreshConfig{BreakerMaxFailures: 2, BreakerTimeout: time.Hour})
	ctx := context.Background()

	boom := errors.New("source unreadable")
	sub.set("v2", boom)

	for i := 0; i < 2; i++ {
		_, err := r.Check(ctx)
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, 2, sub.reloads)

	// Open: the reload is not attempted.
	_, err := r.Check(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, boom)
	assert.Equal(t, 2, sub.reloads)
}

func TestTriggerIsThrottled(t *testing.T) {
	t.Parallel()
	r, _, cls, _ := newTestRefresher(t, &config.RefreshConfig{ManualPerMinute: 1})
	ctx := context.Background()

	state, err := r.Trigger(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Assignment.Size(segment.Hesitant))
	assert.Equal(t, []bool{true}, cls.forced)

	_, err = r.Trigger(ctx)
	assert.ErrorIs(t, err, ErrThrottled)
	assert.Len(t, cls.forced, 1)
}

func TestServeStopsOnCancel(t *testing.T) {
	t.Parallel()
	r, sub, _, _ := newTestRefresher(t, &config.RefreshConfig{Interval: 10 * time.Millisecond})
	sub.set("v2", nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Serve(ctx) }()

	require.Eventually(t, func() bool {
		sub.mu.Lock()
		defer sub.mu.Unlock()
		return sub.reloads == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, "source-refresher", r.String())
}

func TestNewPubSubInProcess(t *testing.T) {
	t.Parallel()
	pub, sub, err := NewPubSub(&config.NATSConfig{Enabled: false}, "", watermill.NopLogger{})
	require.NoError(t, err)
	assert.Same(t, pub, sub)
}
