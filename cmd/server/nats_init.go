// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package main

import (
	"context"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/shopscope/internal/broker"
	"github.com/tomtom215/shopscope/internal/config"
	"github.com/tomtom215/shopscope/internal/logging"
)

// NATSComponents holds the NATS pieces for lifecycle management. A nil
// *NATSComponents means NATS is disabled or unreachable.
type NATSComponents struct {
	server *broker.EmbeddedServer
	conn   *broker.Conn
	url    string
}

// InitNATS starts the embedded server when configured and connects to it (or
// to the external URL). It returns nil, nil when NATS is disabled.
func InitNATS(cfg *config.NATSConfig) (*NATSComponents, error) {
	if !cfg.Enabled {
		logging.Info().Msg("NATS disabled, using in-process cache and notifications")
		return nil, nil
	}

	c := &NATSComponents{url: cfg.URL}
	if cfg.EmbeddedServer {
		srv, err := broker.NewEmbeddedServer(cfg)
		if err != nil {
			return nil, err
		}
		c.server = srv
		c.url = srv.ClientURL()
		logging.Info().Str("url", c.url).Str("store_dir", cfg.StoreDir).Msg("Embedded NATS server started")
	}

	conn, err := broker.Connect(cfg, c.url)
	if err != nil {
		c.Shutdown(context.Background())
		return nil, err
	}
	c.conn = conn
	logging.Info().Str("url", c.url).Msg("Connected to NATS")
	return c, nil
}

// JetStream returns the JetStream context, or nil when NATS is unavailable.
func (c *NATSComponents) JetStream() jetstream.JetStream {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.JS
}

// URL returns the client URL, or "" when NATS is unavailable.
func (c *NATSComponents) URL() string {
	if c == nil {
		return ""
	}
	return c.url
}

// Server returns the embedded server, or nil when an external one is used.
func (c *NATSComponents) Server() *broker.EmbeddedServer {
	if c == nil {
		return nil
	}
	return c.server
}

// Shutdown drains the connection, then stops the embedded server. The
// supervisor normally stops the server first; a second Shutdown is harmless.
func (c *NATSComponents) Shutdown(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.conn.Close(); err != nil {
		logging.Warn().Err(err).Msg("Error draining NATS connection")
	}
	if c.server != nil && c.server.IsRunning() {
		if err := c.server.Shutdown(ctx); err != nil {
			logging.Warn().Err(err).Msg("Error stopping embedded NATS server")
		}
	}
}

// effectiveNATS returns the NATS settings the rest of the process should see.
// When NATS was requested but could not be reached, the copy has NATS
// disabled and the cache backend falls back to memory.
func effectiveNATS(cfg *config.Config, nc *NATSComponents) (config.NATSConfig, config.CacheConfig) {
	natsCfg := cfg.NATS
	cacheCfg := cfg.Cache
	if nc != nil {
		return natsCfg, cacheCfg
	}
	if natsCfg.Enabled {
		logging.Warn().Msg("NATS unavailable, degrading to in-process cache and notifications")
	}
	natsCfg.Enabled = false
	if cacheCfg.Backend != "memory" {
		cacheCfg.Backend = "memory"
	}
	return natsCfg, cacheCfg
}
