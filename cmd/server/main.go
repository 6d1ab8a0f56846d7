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
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/shopscope/internal/analytics"
	"github.com/tomtom215/shopscope/internal/api"
	"github.com/tomtom215/shopscope/internal/cache"
	"github.com/tomtom215/shopscope/internal/config"
	"github.com/tomtom215/shopscope/internal/database"
	"github.com/tomtom215/shopscope/internal/logging"
	"github.com/tomtom215/shopscope/internal/query"
	"github.com/tomtom215/shopscope/internal/refresh"
	"github.com/tomtom215/shopscope/internal/segment"
	"github.com/tomtom215/shopscope/internal/supervisor"
	"github.com/tomtom215/shopscope/internal/supervisor/services"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.LoadFile(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("source", cfg.Source.Path).
		Str("db_path", cfg.Database.Path).
		Str("snapshot_backend", cfg.Snapshot.Backend).
		Str("cache_backend", cfg.Cache.Backend).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Msg("Starting Shopscope with supervisor tree")

	var cl cleanup
	fatal := func(err error, msg string) {
		cl.run(context.Background())
		logging.Fatal().Err(err).Msg(msg)
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === DATA ===

	db, err := database.New(&cfg.Database, &cfg.Source)
	if err != nil {
		fatal(err, "Failed to initialize database")
	}
	cl.add("database", db)

	if err := db.Load(ctx); err != nil {
		if errors.Is(err, database.ErrSourceNotFound) {
			fatal(err, "Event source not found, set SOURCE_PATH")
		}
		fatal(err, "Failed to load events")
	}
	rows := db.Rows()
	logging.Info().Int64("rows", rows).Msg("Events loaded")

	store, err := segment.OpenStore(&cfg.Snapshot)
	if err != nil {
		fatal(err, "Failed to open segmentation snapshot store")
	}
	cl.add("snapshot store", store)

	classifier, err := segment.NewClassifier(db, store, segment.RulesFromConfig(&cfg.Segmentation))
	if err != nil {
		fatal(err, "Failed to create classifier")
	}

	if cfg.Segmentation.ClassifyOnStartup {
		st, err := classifier.Classify(logging.ContextWithNewCorrelationID(ctx), false)
		if err != nil {
			fatal(err, "Initial classification failed")
		}
		logging.Info().
			Bool("from_snapshot", st.FromSnapshot).
			Time("classified_at", st.ClassifiedAt).
			Msg("Segmentation ready")
	} else {
		// The API reports not ready until this finishes.
		go func() {
			cctx := logging.ContextWithNewCorrelationID(ctx)
			if _, err := classifier.Classify(cctx, false); err != nil && ctx.Err() == nil {
				logging.Ctx(cctx).Error().Err(err).Msg("Background classification failed")
			}
		}()
		logging.Info().Msg("Classification running in background")
	}

	// === MESSAGING ===

	natsComponents, err := InitNATS(&cfg.NATS)
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to initialize NATS")
	}
	cl.addFunc("nats", func(ctx context.Context) error {
		natsComponents.Shutdown(ctx)
		return nil
	})
	natsCfg, cacheCfg := effectiveNATS(cfg, natsComponents)

	backend, err := cache.NewBackend(ctx, &cacheCfg, natsComponents.JetStream())
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to create cache backend, using memory")
		backend = cache.NewMemoryBackend(cacheCfg.Capacity, cacheCfg.TTL)
	}
	if !cacheCfg.Enabled {
		logging.Info().Msg("Result cache disabled")
		backend = nil
	}
	results := cache.NewResults(backend, cacheCfg.TTL)

	engine := analytics.NewEngine(db, classifier)
	service := query.NewService(engine, classifier, results)

	publisher, subscriber, err := refresh.NewPubSub(&natsCfg, natsComponents.URL(), logging.NewWatermillAdapter())
	if err != nil {
		fatal(err, "Failed to create reload notifications")
	}
	cl.add("reload publisher", publisher)
	cl.add("reload subscriber", subscriber)

	refresher := refresh.New(&cfg.Refresh, db, classifier, publisher,
		refresh.WithForce(cfg.Segmentation.ForceReclassifyOnReload),
		refresh.WithTopic(cfg.NATS.ReloadSubject),
	)
	if err := refresher.Prime(ctx); err != nil {
		fatal(err, "Failed to fingerprint source")
	}

	// === API ===

	ready := func(ctx context.Context) error {
		if err := db.Ping(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if classifier.State() == nil {
			return errors.New("segmentation not classified yet")
		}
		return nil
	}

	handler := api.NewHandler(service, refresher, ready)
	router := api.NewRouter(handler, &cfg.Security)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	// === SUPERVISOR TREE ===

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + 5*time.Second,
	})

	// Data layer services
	if cfg.Refresh.Enabled {
		tree.AddDataService(refresher)
		logging.Info().Dur("interval", cfg.Refresh.Interval).Msg("Source refresher added to supervisor tree")
	}

	// Messaging layer services
	if srv := natsComponents.Server(); srv != nil {
		tree.AddMessagingService(services.NewNATSServerService(srv, cfg.Server.ShutdownTimeout))
	}
	tree.AddMessagingService(services.NewReloadService(refresher, subscriber, service.Invalidate))

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(sigCtx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-sigCtx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	cancel()

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	cl.run(shutdownCtx)

	logging.Info().Msg("Application stopped gracefully")
}

// cleanup closes resources in reverse order of registration.
type cleanup struct {
	steps []cleanupStep
}

type cleanupStep struct {
	name string
	fn   func(ctx context.Context) error
}

func (c *cleanup) add(name string, closer io.Closer) {
	c.addFunc(name, func(context.Context) error { return closer.Close() })
}

func (c *cleanup) addFunc(name string, fn func(ctx context.Context) error) {
	c.steps = append(c.steps, cleanupStep{name: name, fn: fn})
}

func (c *cleanup) run(ctx context.Context) {
	for i := len(c.steps) - 1; i >= 0; i-- {
		step := c.steps[i]
		if err := step.fn(ctx); err != nil {
			logging.Error().Err(err).Str("resource", step.name).Msg("Error during cleanup")
		}
	}
	c.steps = nil
}
