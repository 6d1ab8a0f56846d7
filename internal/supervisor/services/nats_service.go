// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package services

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNATSServerDown is returned when the embedded server stopped on its own.
var ErrNATSServerDown = errors.New("embedded NATS server is not running")

// NATSServer is the lifecycle of *broker.EmbeddedServer.
type NATSServer interface {
	IsRunning() bool
	Shutdown(ctx context.Context) error
}

// NATSServerService supervises an embedded NATS server. The server is
// started before the tree because the result cache connects to it during
// startup; the service watches it and stops it on shutdown.
type NATSServerService struct {
	server          NATSServer
	shutdownTimeout time.Duration
	pollInterval    time.Duration
}

// NewNATSServerService wraps server.
func NewNATSServerService(server NATSServer, shutdownTimeout time.Duration) *NATSServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &NATSServerService{server: server, shutdownTimeout: shutdownTimeout, pollInterval: 5 * time.Second}
}

// Serve implements suture.Service. It reports ErrNATSServerDown when the
// server dies underneath it; an in-process server cannot be restarted, so
// the supervisor only logs the repeated failures.
func (s *NATSServerService) Serve(ctx context.Context) error {
	if !s.server.IsRunning() {
		return ErrNATSServerDown
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
			defer cancel()
			if err := s.server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("NATS server shutdown failed: %w", err)
			}
			return ctx.Err()
		case <-ticker.C:
			if !s.server.IsRunning() {
				return ErrNATSServerDown
			}
		}
	}
}

func (s *NATSServerService) String() string { return "nats-server" }
