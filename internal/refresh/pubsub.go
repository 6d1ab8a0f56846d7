// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package refresh

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/shopscope/internal/config"
)

// DefaultTopic carries dataset reload notifications.
const DefaultTopic = "dataset.reloaded"

// NewPubSub returns the publisher and subscriber for reload notifications.
// With NATS disabled both are the same in-process gochannel. With NATS
// enabled they use core NATS without a queue group so every replica
// receives every notification.
func NewPubSub(cfg *config.NATSConfig, url string, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error) {
	if !cfg.Enabled {
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, logger)
		return ch, ch, nil
	}

	natsOpts := []natsgo.Option{
		natsgo.Name("shopscope-refresh"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.Timeout(cfg.ConnectTimeout),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("Reload notifications disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("Reload notifications reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
	noJetStream := wmNats.JetStreamConfig{Disabled: true}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   noJetStream,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create reload publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     10 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        noJetStream,
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, nil, fmt.Errorf("create reload subscriber: %w", err)
	}
	return pub, sub, nil
}
