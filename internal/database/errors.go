// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package database

import (
	"errors"
	"io"

	"github.com/tomtom215/shopscope/internal/logging"
)

// ErrSourceNotFound is returned by Load when the configured event log does
// not exist.
var ErrSourceNotFound = errors.New("event source not found")

// ErrNotLoaded is returned by Scan before the first successful Load.
var ErrNotLoaded = errors.New("events table not loaded")

// closeWithLog closes a resource and logs any error.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource on error paths where Close errors are not
// actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

func logWarn(err error, msg string) {
	logging.Warn().Err(err).Msg(msg)
}
