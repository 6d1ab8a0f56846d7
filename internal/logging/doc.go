// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

// Package logging provides the process-wide zerolog logger for Shopscope.
//
// All packages log through the helpers in this package rather than holding
// their own zerolog instances:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("segment", "Hesitant").Int("users", n).Msg("Segment classified")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Query failed")
//
// Always terminate event chains with Msg() or Send(); an unterminated chain
// is never written.
//
// # Configuration
//
// LOG_LEVEL, LOG_FORMAT and LOG_CALLER are read by the config package and
// handed to Init from cmd/server and cmd/shopscope.
//
// # Adapters
//
// Libraries that expect another logger type write through the same sink:
//
//   - SlogHandler implements slog.Handler for the suture event hook
//   - WatermillAdapter implements watermill.LoggerAdapter for dataset
//     reload notifications
//
// # Correlation
//
// Ctx(ctx) adds request_id (set by the HTTP request id middleware) and
// correlation_id (set once per refresh cycle) when present.
package logging
