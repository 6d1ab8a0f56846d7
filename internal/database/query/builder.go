// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package query

import (
	"fmt"
	"strings"
	"time"
)

// Column names of the events table.
const (
	ColTimestamp = "ts"
	ColEvent     = "event"
	ColItem      = "item_id"
	ColCategory  = "category_id"
	ColVisitor   = "visitor_id"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.AddDayRange(from, to)
//	wb.AddEventTypes([]string{"view", "addtocart"})
//	whereClause, args := wb.Build()
//	// ts >= ? AND ts < ? AND event IN (?, ?)
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause adds a raw WHERE clause with its arguments.
// This is useful for custom conditions not covered by helper methods.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddDayRange limits events to the inclusive range of UTC calendar dates
// [from, to]. Either bound may be nil. The upper bound is written as a
// half-open comparison against the following midnight so that events late
// on the last day are kept.
//
// Generates:
//   - "ts >= ?" with from's midnight
//   - "ts < ?" with the midnight after to
func (wb *WhereBuilder) AddDayRange(from, to *time.Time) *WhereBuilder {
	if from != nil {
		wb.clauses = append(wb.clauses, ColTimestamp+" >= ?")
		wb.args = append(wb.args, DayStart(*from))
	}
	if to != nil {
		wb.clauses = append(wb.clauses, ColTimestamp+" < ?")
		wb.args = append(wb.args, DayStart(*to).AddDate(0, 0, 1))
	}
	return wb
}

// AddEventTypes adds "event IN (?, ...)". An empty slice is skipped.
func (wb *WhereBuilder) AddEventTypes(types []string) *WhereBuilder {
	return wb.addIn(ColEvent, types)
}

// AddHour keeps events whose UTC hour of day equals *hour. Nil is skipped.
func (wb *WhereBuilder) AddHour(hour *int) *WhereBuilder {
	if hour != nil {
		wb.clauses = append(wb.clauses, "hour("+ColTimestamp+") = ?")
		wb.args = append(wb.args, *hour)
	}
	return wb
}

// AddEquals adds "column = ?" when v is non-nil.
func (wb *WhereBuilder) AddEquals(column string, v *int64) *WhereBuilder {
	if v != nil {
		wb.clauses = append(wb.clauses, column+" = ?")
		wb.args = append(wb.args, *v)
	}
	return wb
}

func (wb *WhereBuilder) addIn(column string, values []string) *WhereBuilder {
	if len(values) == 0 {
		return wb
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		wb.args = append(wb.args, v)
	}
	wb.clauses = append(wb.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
	return wb
}

// Build constructs the final WHERE clause and returns it with arguments.
// Clauses are joined with "AND". Returns ("1=1", []) if no clauses were added.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns " WHERE <clauses>", or "" when the builder is
// empty, ready to append to a FROM clause.
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	if wb.IsEmpty() {
		return "", nil
	}
	whereClause, args := wb.Build()
	return " WHERE " + whereClause, args
}

// Count returns the number of clauses added to the builder.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty returns true if no clauses have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}

// DayStart truncates t to midnight of its UTC calendar date.
func DayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
