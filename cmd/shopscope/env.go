// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tomtom215/shopscope/internal/analytics"
	"github.com/tomtom215/shopscope/internal/cache"
	"github.com/tomtom215/shopscope/internal/config"
	"github.com/tomtom215/shopscope/internal/database"
	"github.com/tomtom215/shopscope/internal/events"
	"github.com/tomtom215/shopscope/internal/logging"
	"github.com/tomtom215/shopscope/internal/query"
	"github.com/tomtom215/shopscope/internal/segment"
)

// env is the in-process analytics stack a command runs against.
type env struct {
	source     events.Source
	classifier *segment.Classifier
	service    *query.Service
	closers    []io.Closer
}

func (e *env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}

// openEnv builds the stack from the demo dataset or from configuration.
// Nothing is classified yet; progress, when non-nil, observes the scan of
// the first classification.
func openEnv(ctx context.Context, opts *rootOptions, progress func(int64)) (*env, error) {
	logging.Init(logging.Config{Level: opts.logLevel, Format: "console", Timestamp: true, Output: opts.logOutput})

	var classifierOpts []segment.Option
	if progress != nil {
		classifierOpts = append(classifierOpts, segment.WithProgress(progress))
	}

	if opts.demo {
		src := events.NewMemory(demoEvents())
		classifier, err := segment.NewClassifier(src, nil, segment.DefaultRules(), classifierOpts...)
		if err != nil {
			return nil, err
		}
		return newEnv(src, classifier, nil, config.Default().Cache), nil
	}

	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return nil, err
	}

	db, err := database.New(&cfg.Database, &cfg.Source)
	if err != nil {
		return nil, err
	}
	if err := db.Load(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load %s: %w", cfg.Source.Path, err)
	}

	store, err := segment.OpenStore(&cfg.Snapshot)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	classifier, err := segment.NewClassifier(db, store, segment.RulesFromConfig(&cfg.Segmentation), classifierOpts...)
	if err != nil {
		_ = store.Close()
		_ = db.Close()
		return nil, err
	}
	return newEnv(db, classifier, []io.Closer{db, store}, cfg.Cache), nil
}

// newEnv uses the in-memory cache regardless of the configured backend: a
// single CLI invocation never shares results with the server.
func newEnv(src events.Source, classifier *segment.Classifier, closers []io.Closer, cacheCfg config.CacheConfig) *env {
	results := cache.NewResults(cache.NewMemoryBackend(cacheCfg.Capacity, cacheCfg.TTL), cacheCfg.TTL)
	engine := analytics.NewEngine(src, classifier)
	return &env{
		source:     src,
		classifier: classifier,
		service:    query.NewService(engine, classifier, results),
		closers:    closers,
	}
}
