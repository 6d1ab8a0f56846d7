// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/shopscope/internal/config"
	"github.com/tomtom215/shopscope/internal/logging"
	"github.com/tomtom215/shopscope/internal/metrics"
	"github.com/tomtom215/shopscope/internal/segment"
)

// ErrThrottled is returned by Trigger when manual refreshes come too fast.
var ErrThrottled = errors.New("manual refresh throttled")

const breakerName = "source-reload"

// Substrate is the reloadable event store. *database.DB satisfies it.
type Substrate interface {
	Fingerprint(ctx context.Context) (string, error)
	Reload(ctx context.Context, reason string) error
}

// Classifier recomputes the segmentation. *segment.Classifier satisfies it.
type Classifier interface {
	Classify(ctx context.Context, force bool) (*segment.State, error)
}

// Reloaded is the payload of a dataset.reloaded message.
type Reloaded struct {
	SourceFingerprint string         `json:"source_fingerprint"`
	Reason            string         `json:"reason"`
	ReloadedAt        time.Time      `json:"reloaded_at"`
	Segments          map[string]int `json:"segments"`
}

// Refresher watches the source and rebuilds derived state when it changes.
type Refresher struct {
	substrate  Substrate
	classifier Classifier
	publisher  message.Publisher
	topic      string
	interval   time.Duration
	force      bool

	breaker *gobreaker.CircuitBreaker[*segment.State]
	limiter *rate.Limiter

	mu   sync.Mutex // serializes Check and Trigger
	last string
}

// Option configures a Refresher.
type Option func(*Refresher)

// WithForce makes every reload recompute the segmentation even when the
// snapshot fingerprint still matches.
func WithForce(force bool) Option {
	return func(r *Refresher) { r.force = force }
}

// WithTopic overrides DefaultTopic.
func WithTopic(topic string) Option {
	return func(r *Refresher) {
		if topic != "" {
			r.topic = topic
		}
	}
}

// New creates a Refresher. Call Prime before Serve so the first tick does
// not reload a source that was just loaded.
func New(cfg *config.RefreshConfig, substrate Substrate, classifier Classifier, publisher message.Publisher, opts ...Option) *Refresher {
	r := &Refresher{
		substrate:  substrate,
		classifier: classifier,
		publisher:  publisher,
		topic:      DefaultTopic,
		interval:   cfg.Interval,
	}
	for _, opt := range opts {
		opt(r)
	}

	perMinute := cfg.ManualPerMinute
	if perMinute <= 0 {
		perMinute = 2
	}
	r.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 3
	}
	r.breaker = gobreaker.NewCircuitBreaker[*segment.State](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetBreakerState(name, int(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Reload circuit breaker changed state")
		},
	})
	metrics.SetBreakerState(breakerName, int(gobreaker.StateClosed))
	return r
}

// Topic returns the notification topic.
func (r *Refresher) Topic() string { return r.topic }

// Prime records the current source fingerprint as already loaded.
func (r *Refresher) Prime(ctx context.Context) error {
	fp, err := r.substrate.Fingerprint(ctx)
	if err != nil {
		return fmt.Errorf("fingerprint source: %w", err)
	}
	r.mu.Lock()
	r.last = fp
	r.mu.Unlock()
	return nil
}

// Check reloads when the source fingerprint changed since the last
// successful reload. It reports whether a reload happened.
func (r *Refresher) Check(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fp, err := r.substrate.Fingerprint(ctx)
	if err != nil {
		metrics.RecordReload("error")
		return false, fmt.Errorf("fingerprint source: %w", err)
	}
	if fp == r.last {
		return false, nil
	}

	state, err := r.breaker.Execute(func() (*segment.State, error) {
		if err := r.substrate.Reload(ctx, "source changed"); err != nil {
			return nil, err
		}
		return r.classifier.Classify(ctx, r.force)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordReload("rejected")
		} else {
			metrics.RecordReload("error")
		}
		return false, fmt.Errorf("reload source: %w", err)
	}

	r.last = fp
	metrics.RecordReload("success")
	if err := r.publish(ctx, fp, "source changed", state); err != nil {
		return true, err
	}
	return true, nil
}

// Trigger forces a reclassification on demand and notifies subscribers.
// Calls are throttled by the manual refresh rate limit.
func (r *Refresher) Trigger(ctx context.Context) (*segment.State, error) {
	if !r.limiter.Allow() {
		return nil, ErrThrottled
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.classifier.Classify(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("reclassify: %w", err)
	}
	if err := r.publish(ctx, r.last, "manual reclassification", state); err != nil {
		return state, err
	}
	return state, nil
}

func (r *Refresher) publish(ctx context.Context, fp, reason string, state *segment.State) error {
	payload, err := json.Marshal(Reloaded{
		SourceFingerprint: fp,
		Reason:            reason,
		ReloadedAt:        time.Now().UTC(),
		Segments:          state.Assignment.Sizes(),
	})
	if err != nil {
		return fmt.Errorf("encode reload notification: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set("correlation_id", id)
	}
	if err := r.publisher.Publish(r.topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", r.topic, err)
	}
	logging.Ctx(ctx).Info().Str("topic", r.topic).Str("reason", reason).Msg("Published dataset reload")
	return nil
}

// Subscribe clears derived caches on every reload notification until ctx
// is done. It implements the body of a supervised service.
func (r *Refresher) Subscribe(ctx context.Context, sub message.Subscriber, invalidate func(context.Context)) error {
	messages, err := sub.Subscribe(ctx, r.topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", r.topic, err)
	}
	for msg := range messages {
		mctx := ctx
		if id := msg.Metadata.Get("correlation_id"); id != "" {
			mctx = logging.ContextWithCorrelationID(ctx, id)
		}

		var ev Reloaded
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			logging.Ctx(mctx).Warn().Err(err).Msg("Malformed reload notification, invalidating anyway")
		}
		invalidate(mctx)
		logging.Ctx(mctx).Info().Str("reason", ev.Reason).Msg("Invalidated results after dataset reload")
		msg.Ack()
	}
	return ctx.Err()
}

// Serve checks the source every interval until ctx is done.
func (r *Refresher) Serve(ctx context.Context) error {
	interval := r.interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			cctx := logging.ContextWithNewCorrelationID(ctx)
			if _, err := r.Check(cctx); err != nil {
				logging.Ctx(cctx).Error().Err(err).Msg("Source refresh failed")
			}
		}
	}
}

// String implements fmt.Stringer for the supervisor.
func (r *Refresher) String() string { return "source-refresher" }
