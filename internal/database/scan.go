// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/shopscope/internal/database/query"
	"github.com/tomtom215/shopscope/internal/events"
)

// Scan streams events matching f in no particular order. Date, type, hour
// and entity predicates run in DuckDB; the visitor set is applied per row.
func (db *DB) Scan(ctx context.Context, f events.Filter, fn func(events.Event) error) error {
	if f.Visitors != nil && len(f.Visitors) == 0 {
		return nil
	}
	if _, ok := db.Loaded(); !ok {
		return ErrNotLoaded
	}

	query, args := scanQuery(&f)
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to scan events: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var (
			e   events.Event
			typ string
		)
		if err := rows.Scan(&e.VisitorID, &e.Timestamp, &typ, &e.ItemID, &e.CategoryID); err != nil {
			return fmt.Errorf("failed to read event row: %w", err)
		}
		if !f.MatchVisitor(e.VisitorID) {
			continue
		}
		e.Type = events.Type(typ)
		e.Timestamp = e.Timestamp.UTC()
		if err := fn(e); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate events: %w", err)
	}
	return nil
}

// scanQuery builds the SELECT for f. Aggregations are order independent,
// so rows are not sorted.
func scanQuery(f *events.Filter) (string, []interface{}) {
	where, args := buildWhere(f)
	return "SELECT visitor_id, ts, event, item_id, category_id FROM events" + where, args
}

// buildWhere translates the row predicates of f into a WHERE clause.
func buildWhere(f *events.Filter) (string, []interface{}) {
	types := make([]string, len(f.Types))
	for i, t := range f.Types {
		types[i] = string(t)
	}
	return query.NewWhereBuilder().
		AddDayRange(f.From, f.To).
		AddEventTypes(types).
		AddHour(f.Hour).
		AddEquals(query.ColItem, f.ItemID).
		AddEquals(query.ColCategory, f.CategoryID).
		BuildWithPrefix()
}
