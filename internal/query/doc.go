// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

// Package query is the cached query surface of the analytics engine.
//
// Every operation normalises its parameters, builds a cache key from them,
// serves a cached result when one exists and otherwise computes through a
// singleflight group, so identical concurrent requests run the engine once.
// Failed computations, invalid arguments included, are never cached.
package query
