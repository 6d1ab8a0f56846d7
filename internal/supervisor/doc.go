// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

/*
Package supervisor runs the long-lived parts of the server under a
suture v4 supervisor tree.

	shopscope (root)
	├── data-layer
	│   └── source-refresher
	├── messaging-layer
	│   ├── nats-server (embedded, optional)
	│   └── reload-subscriber
	└── api-layer
	    └── http-server

A crashing service is restarted with backoff inside its own layer, so a
lost NATS connection never takes the HTTP API down. Supervisor events are
logged through sutureslog on top of the zerolog slog adapter.

Service wrappers live in the services subpackage.
*/
package supervisor
