// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

// Package query provides SQL WHERE clause building for the events table.
//
// Every value is bound as a parameter; only column names from this package
// are ever concatenated into SQL.
//
//	wb := query.NewWhereBuilder().
//	    AddDayRange(f.From, f.To).
//	    AddEventTypes([]string{"transaction"}).
//	    AddEquals(query.ColItem, f.ItemID)
//	where, args := wb.BuildWithPrefix()
//	rows, err := conn.QueryContext(ctx, "SELECT ... FROM events"+where, args...)
package query
