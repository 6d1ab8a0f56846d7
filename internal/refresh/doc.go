// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

/*
Package refresh keeps the event substrate, the segmentation and the result
cache in step with the source file.

A Refresher polls the source fingerprint. When it changes, the substrate is
reloaded and the visitors reclassified behind a circuit breaker, and a
dataset.reloaded message is published through Watermill. Every replica
subscribes to that topic and clears its result cache on receipt.

Transport is the in-process gochannel pub/sub by default, or core NATS
through watermill-nats when nats.enabled is set:

	pub, sub, err := refresh.NewPubSub(&cfg.NATS, natsURL, logging.NewWatermillAdapter())
	r := refresh.New(&cfg.Refresh, db, classifier, pub, refresh.WithForce(cfg.Segmentation.ForceReclassifyOnReload))
	go r.Subscribe(ctx, sub, svc.Invalidate)
*/
package refresh
