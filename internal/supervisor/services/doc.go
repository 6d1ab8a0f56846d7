// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

/*
Package services adapts Shopscope components to suture.Service.

  - HTTPServerService: ListenAndServe plus graceful Shutdown
  - NATSServerService: keeps an already started embedded NATS server under
    supervision and shuts it down with the tree
  - ReloadService: the reload notification subscription, restarted when
    the subscriber channel closes unexpectedly

Every wrapper returns ctx.Err() on shutdown and implements fmt.Stringer so
suture can name it in its event log. The source refresher needs no wrapper;
it implements Serve itself.
*/
package services
