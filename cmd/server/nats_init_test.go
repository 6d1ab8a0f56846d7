// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/shopscope/internal/config"
)

func TestNATSComponents_Nil(t *testing.T) {
	var c *NATSComponents
	assert.Nil(t, c.JetStream())
	assert.Nil(t, c.Server())
	assert.Empty(t, c.URL())
	c.Shutdown(context.Background())
}

func TestInitNATS_Disabled(t *testing.T) {
	cfg := config.Default()
	cfg.NATS.Enabled = false

	c, err := InitNATS(&cfg.NATS)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestInitNATS_Embedded(t *testing.T) {
	cfg := config.Default()
	cfg.NATS.Enabled = true
	cfg.NATS.EmbeddedServer = true
	cfg.NATS.Port = -1
	cfg.NATS.StoreDir = t.TempDir()
	cfg.NATS.ConnectTimeout = 2 * time.Second

	c, err := InitNATS(&cfg.NATS)
	require.NoError(t, err)
	require.NotNil(t, c)
	defer c.Shutdown(context.Background())

	assert.NotNil(t, c.JetStream())
	require.NotNil(t, c.Server())
	assert.True(t, c.Server().IsRunning())
	assert.Equal(t, c.Server().ClientURL(), c.URL())
}

func TestInitNATS_Unreachable(t *testing.T) {
	cfg := config.Default()
	cfg.NATS.Enabled = true
	cfg.NATS.URL = "nats://127.0.0.1:1"
	cfg.NATS.ConnectTimeout = 200 * time.Millisecond
	cfg.NATS.MaxReconnects = 0

	c, err := InitNATS(&cfg.NATS)
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestEffectiveNATS(t *testing.T) {
	t.Run("degrades when unavailable", func(t *testing.T) {
		cfg := config.Default()
		cfg.NATS.Enabled = true
		cfg.Cache.Backend = "nats"

		natsCfg, cacheCfg := effectiveNATS(cfg, nil)
		assert.False(t, natsCfg.Enabled)
		assert.Equal(t, "memory", cacheCfg.Backend)
		assert.True(t, cfg.NATS.Enabled, "original config must not change")
	})

	t.Run("keeps settings when connected", func(t *testing.T) {
		cfg := config.Default()
		cfg.NATS.Enabled = true
		cfg.Cache.Backend = "nats"

		natsCfg, cacheCfg := effectiveNATS(cfg, &NATSComponents{})
		assert.True(t, natsCfg.Enabled)
		assert.Equal(t, "nats", cacheCfg.Backend)
	})
}
