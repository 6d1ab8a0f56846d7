// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package services

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"
)

// errSubscriptionClosed makes the supervisor resubscribe.
var errSubscriptionClosed = errors.New("reload subscription closed")

// ReloadSubscriber is the subscription half of *refresh.Refresher.
type ReloadSubscriber interface {
	Subscribe(ctx context.Context, sub message.Subscriber, invalidate func(context.Context)) error
}

// ReloadService keeps the reload notification subscription alive.
type ReloadService struct {
	refresher  ReloadSubscriber
	subscriber message.Subscriber
	invalidate func(context.Context)
}

// NewReloadService wires refresher to sub. invalidate runs once per
// notification.
func NewReloadService(refresher ReloadSubscriber, sub message.Subscriber, invalidate func(context.Context)) *ReloadService {
	return &ReloadService{refresher: refresher, subscriber: sub, invalidate: invalidate}
}

// Serve implements suture.Service.
func (s *ReloadService) Serve(ctx context.Context) error {
	err := s.refresher.Subscribe(ctx, s.subscriber, s.invalidate)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	return errSubscriptionClosed
}

func (s *ReloadService) String() string { return "reload-subscriber" }
