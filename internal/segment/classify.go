// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package segment

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Classify applies the three predicates to stats. Each predicate is an
// independent pass over the table; the passes run concurrently and a visitor
// may land in any number of segments. All always holds every visitor.
func Classify(ctx context.Context, stats map[int64]*UserStats, rules Rules) (*Assignment, error) {
	all := make([]int64, 0, len(stats))
	for id := range stats {
		all = append(all, id)
	}

	passes := []struct {
		name Name
		pred func(*UserStats) bool
	}{
		{Hesitant, rules.IsHesitant},
		{Impulsive, rules.IsImpulsive},
		{Collector, rules.IsCollector},
	}
	results := make([][]int64, len(passes))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range passes {
		g.Go(func() error {
			var ids []int64
			for j, id := range all {
				if j%8192 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				if p.pred(stats[id]) {
					ids = append(ids, id)
				}
			}
			results[i] = ids
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	members := map[Name][]int64{All: all}
	for i, p := range passes {
		members[p.name] = results[i]
	}
	return NewAssignment(members), nil
}
