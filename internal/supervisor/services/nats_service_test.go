// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*NATSServerService)(nil)

type mockNATSServer struct {
	running   atomic.Bool
	shutdowns atomic.Int32
}

func (m *mockNATSServer) IsRunning() bool { return m.running.Load() }

func (m *mockNATSServer) Shutdown(context.Context) error {
	m.shutdowns.Add(1)
	m.running.Store(false)
	return nil
}

func TestNATSServerService_ShutsDownWithTree(t *testing.T) {
	t.Parallel()

	srv := &mockNATSServer{}
	srv.running.Store(true)
	svc := NewNATSServerService(srv, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, svc.Serve(ctx), context.DeadlineExceeded)
	assert.Equal(t, int32(1), srv.shutdowns.Load())
	assert.False(t, srv.IsRunning())
}

func TestNATSServerService_ReportsDeadServer(t *testing.T) {
	t.Parallel()

	srv := &mockNATSServer{}
	svc := NewNATSServerService(srv, time.Second)
	assert.ErrorIs(t, svc.Serve(context.Background()), ErrNATSServerDown)

	srv.running.Store(true)
	svc.pollInterval = 10 * time.Millisecond
	go func() {
		time.Sleep(30 * time.Millisecond)
		srv.running.Store(false)
	}()
	assert.ErrorIs(t, svc.Serve(context.Background()), ErrNATSServerDown)
	assert.Equal(t, "nats-server", svc.String())
}
