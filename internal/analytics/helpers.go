// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/tomtom215/shopscope/internal/events"
	"github.com/tomtom215/shopscope/internal/segment"
)

// round2 rounds half away from zero to two decimals.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// percent returns num/den*100 rounded to two decimals, or 0 when den is 0.
func percent(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return round2(num * 100 / den)
}

func typeIndex(t events.Type) int {
	switch t {
	case events.View:
		return 0
	case events.AddToCart:
		return 1
	case events.Transaction:
		return 2
	default:
		return -1
	}
}

// weekStart returns the Monday of the ISO week containing t, as YYYY-MM-DD.
func weekStart(t time.Time) string {
	y, m, d := t.UTC().Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset).Format(DateLayout)
}

func monthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// monthIndex counts months since year 0 so differences are month_diff.
func monthIndex(t time.Time) int {
	y, m, _ := t.UTC().Date()
	return y*12 + int(m) - 1
}

func monthFromIndex(i int) time.Time {
	return time.Date(i/12, time.Month(i%12+1), 1, 0, 0, 0, 0, time.UTC)
}

// ranked sorts counts by value descending then id ascending and keeps limit.
func ranked(counts map[int64]int64, limit int) [][2]int64 {
	out := make([][2]int64, 0, len(counts))
	for id, n := range counts {
		out = append(out, [2]int64{id, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][1] != out[j][1] {
			return out[i][1] > out[j][1]
		}
		return out[i][0] < out[j][0]
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// segmentDistribution counts how many of visitors belong to each segment.
// All is always present and equals the number of visitors.
func segmentDistribution(a *segment.Assignment, visitors map[int64]struct{}) map[string]int64 {
	out := make(map[string]int64, len(segment.Names))
	for _, n := range segment.Names {
		out[string(n)] = 0
	}
	for id := range visitors {
		out[string(segment.All)]++
		for _, n := range segment.Names[1:] {
			if a.Contains(n, id) {
				out[string(n)]++
			}
		}
	}
	return out
}
