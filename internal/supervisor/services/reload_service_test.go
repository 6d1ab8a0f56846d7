// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*ReloadService)(nil)

type fakeSubscriber struct {
	err   error
	block bool
}

func (f fakeSubscriber) Subscribe(ctx context.Context, _ message.Subscriber, invalidate func(context.Context)) error {
	invalidate(ctx)
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

func TestReloadService(t *testing.T) {
	t.Parallel()

	var calls int
	invalidate := func(context.Context) { calls++ }

	svc := NewReloadService(fakeSubscriber{}, nil, invalidate)
	assert.ErrorIs(t, svc.Serve(context.Background()), errSubscriptionClosed)

	boom := errors.New("subscribe failed")
	svc = NewReloadService(fakeSubscriber{err: boom}, nil, invalidate)
	assert.ErrorIs(t, svc.Serve(context.Background()), boom)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	svc = NewReloadService(fakeSubscriber{block: true}, nil, invalidate)
	assert.ErrorIs(t, svc.Serve(ctx), context.DeadlineExceeded)

	assert.Equal(t, 3, calls)
	assert.Equal(t, "reload-subscriber", svc.String())
}
