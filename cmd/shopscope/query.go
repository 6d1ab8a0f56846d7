// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/shopscope/internal/analytics"
	"github.com/tomtom215/shopscope/internal/query"
)

type queryOptions struct {
	segment     string
	from        string
	to          string
	metric      string
	limit       int
	topN        int
	days        int
	entityType  string
	entityID    int64
	stage       string
	hour        string
	cohortMonth string
}

// queryFunc runs one operation and returns its payload.
type queryFunc func(ctx context.Context, svc *query.Service, w analytics.Window, q *queryOptions) (any, error)

// unwrap drops the cache flag, which means nothing for a one-shot process.
func unwrap[T any](r query.Result[T], err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return r.Data, nil
}

var queryOps = map[string]queryFunc{
	"top_items": func(ctx context.Context, svc *query.Service, w analytics.Window, q *queryOptions) (any, error) {
		return unwrap(svc.TopEntities(ctx, w, q.metric, analytics.EntityItem, q.limit))
	},
	"top_categories": func(ctx context.Context, svc *query.Service, w analytics.Window, q *queryOptions) (any, error) {
		return unwrap(svc.TopEntities(ctx, w, q.metric, analytics.EntityCategory, q.limit))
	},
	query.OpFunnel: func(ctx context.Context, svc *query.Service, w analytics.Window, _ *queryOptions) (any, error) {
		return unwrap(svc.Funnel(ctx, w))
	},
	query.OpEventCounts: func(ctx context.Context, svc *query.Service, w analytics.Window, _ *queryOptions) (any, error) {
		return unwrap(svc.EventCounts(ctx, w))
	},
	query.OpActiveHours: func(ctx context.Context, svc *query.Service, w analytics.Window, _ *queryOptions) (any, error) {
		return unwrap(svc.ActiveHours(ctx, w))
	},
	query.OpMonthlySales: func(ctx context.Context, svc *query.Service, w analytics.Window, _ *queryOptions) (any, error) {
		return unwrap(svc.MonthlySales(ctx, w))
	},
	query.OpDailyActiveUsers: func(ctx context.Context, svc *query.Service, w analytics.Window, _ *queryOptions) (any, error) {
		return unwrap(svc.DailyActiveUsers(ctx, w))
	},
	query.OpHeatmap: func(ctx context.Context, svc *query.Service, w analytics.Window, _ *queryOptions) (any, error) {
		return unwrap(svc.Heatmap(ctx, w))
	},
	query.OpBlackHorseItems: func(ctx context.Context, svc *query.Service, w analytics.Window, q *queryOptions) (any, error) {
		return unwrap(svc.BlackHorseItems(ctx, w, q.topN))
	},
	query.OpSegmentTrend: func(ctx context.Context, svc *query.Service, w analytics.Window, _ *queryOptions) (any, error) {
		return unwrap(svc.SegmentTrend(ctx, w))
	},
	query.OpDrilldown: func(ctx context.Context, svc *query.Service, w analytics.Window, q *queryOptions) (any, error) {
		return unwrap(svc.Drilldown(ctx, w, q.entityType, q.entityID))
	},
	query.OpFunnelStageDetail: func(ctx context.Context, svc *query.Service, w analytics.Window, q *queryOptions) (any, error) {
		return unwrap(svc.FunnelStageDetail(ctx, w, q.stage, q.topN))
	},
	query.OpActiveHourDetail: func(ctx context.Context, svc *query.Service, w analytics.Window, q *queryOptions) (any, error) {
		hour, err := analytics.ParseHour(q.hour)
		if err != nil {
			return nil, err
		}
		return unwrap(svc.ActiveHourDetail(ctx, w, hour, q.topN))
	},
	query.OpMonthlyRetention: func(ctx context.Context, svc *query.Service, w analytics.Window, _ *queryOptions) (any, error) {
		return unwrap(svc.MonthlyRetention(ctx, w))
	},
	query.OpDailyRetention: func(ctx context.Context, svc *query.Service, w analytics.Window, q *queryOptions) (any, error) {
		return unwrap(svc.DailyRetention(ctx, w, q.days))
	},
	query.OpWeekdayUsers: func(ctx context.Context, svc *query.Service, w analytics.Window, _ *queryOptions) (any, error) {
		return unwrap(svc.WeekdayUsers(ctx, w))
	},
	query.OpCohortDetail: func(ctx context.Context, svc *query.Service, w analytics.Window, q *queryOptions) (any, error) {
		return unwrap(svc.CohortDetail(ctx, w, q.cohortMonth))
	},
}

func queryOpNames() []string {
	names := make([]string, 0, len(queryOps))
	for name := range queryOps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newQueryCmd(opts *rootOptions) *cobra.Command {
	q := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query <operation>",
		Short: "Run one analytics operation and print the result as JSON",
		Long: "Runs one analytics operation over the optional segment and date window.\n\nOperations:\n  " +
			strings.Join(queryOpNames(), "\n  "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: queryOpNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, ok := queryOps[args[0]]
			if !ok {
				return fmt.Errorf("unknown operation %q, expected one of: %s", args[0], strings.Join(queryOpNames(), ", "))
			}

			w, err := analytics.NewWindow(q.segment, q.from, q.to)
			if err != nil {
				return err
			}

			ctx := ctxOrBackground(cmd)
			e, err := openEnv(ctx, opts, nil)
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			if _, err := e.classifier.Classify(ctx, false); err != nil {
				return err
			}

			data, err := run(ctx, e.service, w, q)
			if err != nil {
				return err
			}
			return printJSON(cmd, data)
		},
	}

	f := cmd.Flags()
	f.StringVar(&q.segment, "segment", "all", "segment: all, hesitant, impulsive, collector")
	f.StringVar(&q.from, "from", "", "first date of the window, YYYY-MM-DD")
	f.StringVar(&q.to, "to", "", "last date of the window, YYYY-MM-DD")
	f.StringVar(&q.metric, "metric", "transaction", "ranking metric for top_items and top_categories")
	f.IntVar(&q.limit, "limit", 10, "ranking size for top_items and top_categories")
	f.IntVar(&q.topN, "top-n", analytics.DefaultTopN, "list size for drill-down operations")
	f.IntVar(&q.days, "days", analytics.MaxRetentionDays, "day offsets for daily_retention")
	f.StringVar(&q.entityType, "entity-type", analytics.EntityItem, "drilldown entity: item or category")
	f.Int64Var(&q.entityID, "entity-id", 0, "drilldown entity id")
	f.StringVar(&q.stage, "stage", "view", "funnel stage for funnel_stage_detail")
	f.StringVar(&q.hour, "hour", "0", "hour of day for active_hour_detail")
	f.StringVar(&q.cohortMonth, "cohort-month", "", "cohort month for cohort_detail, YYYY-MM")
	return cmd
}
