// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

// Package broker owns the optional NATS side of Shopscope: an embedded
// JetStream server for single-node deployments and the client connection
// used by the NATS KV result cache.
//
// Reload notifications open their own connections through watermill-nats
// (see the refresh package) and only need the URL returned here.
package broker
