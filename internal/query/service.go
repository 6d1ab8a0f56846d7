// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package query

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/shopscope/internal/analytics"
	"github.com/tomtom215/shopscope/internal/cache"
	"github.com/tomtom215/shopscope/internal/logging"
	"github.com/tomtom215/shopscope/internal/metrics"
	"github.com/tomtom215/shopscope/internal/segment"
)

// Operation names, used as cache key prefixes and metric labels.
const (
	OpSegments          = "segments"
	OpTopEntities       = "top_entities"
	OpFunnel            = "funnel"
	OpEventCounts       = "event_counts"
	OpActiveHours       = "active_hours"
	OpMonthlySales      = "monthly_sales"
	OpDailyActiveUsers  = "daily_active_users"
	OpHeatmap           = "heatmap"
	OpBlackHorseItems   = "black_horse_items"
	OpSegmentTrend      = "segment_trend"
	OpDrilldown         = "drilldown"
	OpFunnelStageDetail = "funnel_stage_detail"
	OpActiveHourDetail  = "active_hour_detail"
	OpMonthlyRetention  = "monthly_retention"
	OpDailyRetention    = "daily_retention"
	OpWeekdayUsers      = "weekday_users"
	OpCohortDetail      = "cohort_detail"
)

// SegmentCounter reports segment sizes. *segment.Classifier satisfies it.
type SegmentCounter interface {
	Counts() []segment.Count
}

// Result carries a value and whether it came from the cache.
type Result[T any] struct {
	Data   T
	Cached bool
}

// Service is the cached query surface. It is safe for concurrent use.
type Service struct {
	engine   *analytics.Engine
	segments SegmentCounter
	cache    *cache.Results
	group    singleflight.Group

	// generation counts invalidations. Results computed under an older
	// generation are returned but never stored.
	generation atomic.Uint64
	genMu      sync.RWMutex
}

// NewService wires the engine, the classifier and the result cache.
func NewService(engine *analytics.Engine, segments SegmentCounter, results *cache.Results) *Service {
	return &Service{engine: engine, segments: segments, cache: results}
}

// Invalidate drops every cached result. Called after a dataset reload or a
// reclassification.
func (s *Service) Invalidate(ctx context.Context) {
	s.genMu.Lock()
	s.generation.Add(1)
	s.genMu.Unlock()
	s.cache.Clear(ctx)
}

// store writes b unless an invalidation happened since gen was read.
func (s *Service) store(ctx context.Context, gen uint64, op, key string, b []byte) {
	s.genMu.RLock()
	defer s.genMu.RUnlock()
	if s.generation.Load() != gen {
		logging.Ctx(ctx).Debug().Str("op", op).Msg("Dropping result computed before invalidation")
		return
	}
	s.cache.Set(ctx, key, b)
}

// cached serves op from the cache or computes it once per key.
func cached[T any](ctx context.Context, s *Service, op string, params map[string]any, compute func(context.Context) (T, error)) (Result[T], error) {
	key := cache.Key(op, params)

	if b, ok := s.cache.Get(ctx, op, key); ok {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			return Result[T]{Data: v, Cached: true}, nil
		}
		logging.Ctx(ctx).Warn().Str("op", op).Msg("Discarding undecodable cache entry")
	}

	// Callers that join a flight share its result, so one of them going
	// away must not cancel the computation for the rest.
	gen := s.generation.Load()
	flight := strconv.FormatUint(gen, 10) + "#" + key
	v, err, shared := s.group.Do(flight, func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		start := time.Now()
		res, err := compute(fctx)
		metrics.RecordQuery(op, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		if b, mErr := json.Marshal(res); mErr == nil {
			s.store(fctx, gen, op, key, b)
		} else {
			logging.Ctx(fctx).Warn().Err(mErr).Str("op", op).Msg("Failed to encode result for cache")
		}
		return res, nil
	})
	if err != nil {
		return Result[T]{}, err
	}
	if shared {
		logging.Ctx(ctx).Debug().Str("op", op).Msg("Collapsed concurrent query")
	}
	return Result[T]{Data: v.(T)}, nil
}

func windowParams(w analytics.Window, extra map[string]any) map[string]any {
	p := map[string]any{
		"segment":   string(w.Segment),
		"date_from": optional(w.FromString()),
		"date_to":   optional(w.ToString()),
	}
	for k, v := range extra {
		p[k] = v
	}
	return p
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Segments returns the size of every segment. It reads the in-memory
// classification and is not cached.
func (s *Service) Segments(_ context.Context) []segment.Count {
	return s.segments.Counts()
}

// TopEntities ranks items or categories by metric.
func (s *Service) TopEntities(ctx context.Context, w analytics.Window, metric, entity string, limit int) (Result[[]analytics.TopEntity], error) {
	params := windowParams(w, map[string]any{"metric": metric, "entity": entity, "limit": limit})
	return cached(ctx, s, OpTopEntities, params, func(ctx context.Context) ([]analytics.TopEntity, error) {
		return s.engine.TopEntities(ctx, w, metric, entity, limit)
	})
}

// Funnel returns the three-stage funnel.
func (s *Service) Funnel(ctx context.Context, w analytics.Window) (Result[[]analytics.FunnelStage], error) {
	return cached(ctx, s, OpFunnel, windowParams(w, nil), func(ctx context.Context) ([]analytics.FunnelStage, error) {
		return s.engine.Funnel(ctx, w)
	})
}

// EventCounts returns the total per event type.
func (s *Service) EventCounts(ctx context.Context, w analytics.Window) (Result[analytics.EventCounts], error) {
	return cached(ctx, s, OpEventCounts, windowParams(w, nil), func(ctx context.Context) (analytics.EventCounts, error) {
		return s.engine.EventCounts(ctx, w)
	})
}

// ActiveHours returns the 24-hour activity distribution.
func (s *Service) ActiveHours(ctx context.Context, w analytics.Window) (Result[[]analytics.HourValue], error) {
	return cached(ctx, s, OpActiveHours, windowParams(w, nil), func(ctx context.Context) ([]analytics.HourValue, error) {
		return s.engine.ActiveHours(ctx, w)
	})
}

// MonthlySales returns transactions per month.
func (s *Service) MonthlySales(ctx context.Context, w analytics.Window) (Result[[]analytics.MonthValue], error) {
	return cached(ctx, s, OpMonthlySales, windowParams(w, nil), func(ctx context.Context) ([]analytics.MonthValue, error) {
		return s.engine.MonthlySales(ctx, w)
	})
}

// DailyActiveUsers returns distinct visitors per day.
func (s *Service) DailyActiveUsers(ctx context.Context, w analytics.Window) (Result[[]analytics.DailyActive], error) {
	return cached(ctx, s, OpDailyActiveUsers, windowParams(w, nil), func(ctx context.Context) ([]analytics.DailyActive, error) {
		return s.engine.DailyActiveUsers(ctx, w)
	})
}

// Heatmap returns event counts per date and hour.
func (s *Service) Heatmap(ctx context.Context, w analytics.Window) (Result[[]analytics.HeatCell], error) {
	return cached(ctx, s, OpHeatmap, windowParams(w, nil), func(ctx context.Context) ([]analytics.HeatCell, error) {
		return s.engine.Heatmap(ctx, w)
	})
}

// BlackHorseItems returns the fastest growing items.
func (s *Service) BlackHorseItems(ctx context.Context, w analytics.Window, topN int) (Result[[]analytics.BlackHorseItem], error) {
	params := windowParams(w, map[string]any{"top_n": topN})
	return cached(ctx, s, OpBlackHorseItems, params, func(ctx context.Context) ([]analytics.BlackHorseItem, error) {
		return s.engine.BlackHorseItems(ctx, w, topN)
	})
}

// SegmentTrend returns monthly transactions per segment.
func (s *Service) SegmentTrend(ctx context.Context, w analytics.Window) (Result[[]analytics.SegmentMonth], error) {
	// The trend covers every segment, so the window's segment is not part of the key.
	params := map[string]any{"date_from": optional(w.FromString()), "date_to": optional(w.ToString())}
	return cached(ctx, s, OpSegmentTrend, params, func(ctx context.Context) ([]analytics.SegmentMonth, error) {
		return s.engine.SegmentMonthlyTrend(ctx, w)
	})
}

// Drilldown profiles one item or category.
func (s *Service) Drilldown(ctx context.Context, w analytics.Window, entityType string, entityID int64) (Result[*analytics.Profile], error) {
	params := windowParams(w, map[string]any{"entity_type": entityType, "entity_id": entityID})
	return cached(ctx, s, OpDrilldown, params, func(ctx context.Context) (*analytics.Profile, error) {
		return s.engine.Profile(ctx, entityType, entityID, w)
	})
}

// FunnelStageDetail drills into one funnel stage.
func (s *Service) FunnelStageDetail(ctx context.Context, w analytics.Window, stage string, topN int) (Result[*analytics.FunnelStageDetail], error) {
	params := windowParams(w, map[string]any{"stage": stage, "top_n": topN})
	return cached(ctx, s, OpFunnelStageDetail, params, func(ctx context.Context) (*analytics.FunnelStageDetail, error) {
		return s.engine.FunnelStageDetail(ctx, stage, topN, w)
	})
}

// ActiveHourDetail drills into one hour of the day.
func (s *Service) ActiveHourDetail(ctx context.Context, w analytics.Window, hour, topN int) (Result[*analytics.ActiveHourDetail], error) {
	params := windowParams(w, map[string]any{"hour": hour, "top_n": topN})
	return cached(ctx, s, OpActiveHourDetail, params, func(ctx context.Context) (*analytics.ActiveHourDetail, error) {
		return s.engine.ActiveHourDetail(ctx, hour, topN, w)
	})
}

// MonthlyRetention returns the cohort retention matrix.
func (s *Service) MonthlyRetention(ctx context.Context, w analytics.Window) (Result[[]analytics.RetentionRow], error) {
	return cached(ctx, s, OpMonthlyRetention, windowParams(w, nil), func(ctx context.Context) ([]analytics.RetentionRow, error) {
		return s.engine.MonthlyRetention(ctx, w)
	})
}

// DailyRetention returns day-offset retention.
func (s *Service) DailyRetention(ctx context.Context, w analytics.Window, days int) (Result[[]analytics.DayRetention], error) {
	params := windowParams(w, map[string]any{"days": days})
	return cached(ctx, s, OpDailyRetention, params, func(ctx context.Context) ([]analytics.DayRetention, error) {
		return s.engine.DailyRetention(ctx, w, days)
	})
}

// WeekdayUsers returns distinct visitors per weekday.
func (s *Service) WeekdayUsers(ctx context.Context, w analytics.Window) (Result[analytics.WeekdayReport], error) {
	return cached(ctx, s, OpWeekdayUsers, windowParams(w, nil), func(ctx context.Context) (analytics.WeekdayReport, error) {
		return s.engine.WeekdayUsers(ctx, w)
	})
}

// CohortDetail profiles one monthly cohort. The month is normalised before
// keying so 2015-06 and 2015-06-15 share an entry.
func (s *Service) CohortDetail(ctx context.Context, w analytics.Window, cohortMonth string) (Result[*analytics.CohortDetail], error) {
	month, err := analytics.ParseCohortMonth(cohortMonth)
	if err != nil {
		return Result[*analytics.CohortDetail]{}, err
	}
	norm := month.Format("2006-01")
	params := windowParams(w, map[string]any{"cohort_month": norm})
	return cached(ctx, s, OpCohortDetail, params, func(ctx context.Context) (*analytics.CohortDetail, error) {
		return s.engine.CohortDetail(ctx, norm, w)
	})
}
