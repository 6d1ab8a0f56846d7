// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyRetention(t *testing.T) {
	t.Parallel()
	e := newTestEngine(shopEvents())

	rows, err := e.MonthlyRetention(context.Background(), allWindow(t))
	require.NoError(t, err)
	assert.Equal(t, []RetentionRow{
		{CohortMonth: "2015-06-01", MonthDiff: 0, UserCount: 2, CohortSize: 2, RetentionRate: 100, ActualMonth: "2015-06-01", MonthlyActiveUsers: 2},
		{CohortMonth: "2015-06-01", MonthDiff: 1, UserCount: 1, CohortSize: 2, RetentionRate: 50, ActualMonth: "2015-07-01", MonthlyActiveUsers: 2},
		{CohortMonth: "2015-07-01", MonthDiff: 0, UserCount: 1, CohortSize: 1, RetentionRate: 100, ActualMonth: "2015-07-01", MonthlyActiveUsers: 2},
	}, rows)

	for _, r := range rows {
		assert.LessOrEqual(t, r.UserCount, r.CohortSize)
	}
}

func TestMonthlyRetentionUsesFilteredFirstVisit(t *testing.T) {
	t.Parallel()
	e := newTestEngine(shopEvents())

	// Visitor 1 first appears in June overall but in July inside the window.
	w, err := NewWindow("All", "2015-07-01", "")
	require.NoError(t, err)
	rows, err := e.MonthlyRetention(context.Background(), w)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2015-07-01", rows[0].CohortMonth)
	assert.Equal(t, int64(2), rows[0].CohortSize)
	assert.Equal(t, 100.0, rows[0].RetentionRate)
}

func TestWeekdayUsers(t *testing.T) {
	t.Parallel()
	e := newTestEngine(shopEvents())

	rep, err := e.WeekdayUsers(context.Background(), allWindow(t))
	require.NoError(t, err)
	require.Len(t, rep.Data, 7)
	assert.Equal(t, WeekdayCount{Weekday: 1, WeekdayName: "周一", UserCount: 2}, rep.Data[0])
	assert.Equal(t, WeekdayCount{Weekday: 2, WeekdayName: "周二", UserCount: 3}, rep.Data[1])
	assert.Equal(t, WeekdayCount{Weekday: 7, WeekdayName: "周日", UserCount: 0}, rep.Data[6])
	assert.Equal(t, 1.0, rep.WeekdayAvg)
	assert.Equal(t, 0.0, rep.WeekendAvg)
}

func TestWeekdayUsersSundayIsSeven(t *testing.T) {
	t.Parallel()
	e := newTestEngine(shopEventsOn("2015-06-07", "2015-06-06"))

	rep, err := e.WeekdayUsers(context.Background(), allWindow(t))
	require.NoError(t, err)
	assert.Equal(t, int64(1), rep.Data[5].UserCount)
	assert.Equal(t, int64(1), rep.Data[6].UserCount)
	assert.Equal(t, 1.0, rep.WeekendAvg)
	assert.Equal(t, 0.0, rep.WeekdayAvg)
}

func TestParseCohortMonth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2015-06", "2015-06-01", true},
		{"2015-06-15", "2015-06-01", true},
		{" 2015-07 ", "2015-07-01", true},
		{"June", "", false},
		{"2015-13", "", false},
		{"2015/06", "", false},
	}
	for _, tt := range tests {
		got, err := ParseCohortMonth(tt.in)
		if !tt.ok {
			assert.True(t, errors.Is(err, ErrInvalidArgument), tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got.Format(DateLayout))
	}
}

func TestCohortDetail(t *testing.T) {
	t.Parallel()
	e := newTestEngine(shopEvents())
	ctx := context.Background()

	d, err := e.CohortDetail(ctx, "2015-06-15", allWindow(t))
	require.NoError(t, err)
	assert.Equal(t, "2015-06", d.CohortMonth)
	assert.Equal(t, "All", d.Segment)
	assert.Equal(t, int64(2), d.CohortSize)
	assert.Equal(t, int64(2), d.CurrentActiveUsers)
	assert.Equal(t, 100.0, d.CurrentRetentionRate)
	assert.Equal(t, EventCounts{View: 6, AddToCart: 2, Transaction: 1}, d.Summary)
	assert.Equal(t, ConversionRates{ViewToCart: 33.33, CartToPurchase: 50, ViewToPurchase: 16.67}, d.ConversionRates)
	assert.Len(t, d.HourlyDistribution, 24)
	assert.Equal(t, map[string]int64{"All": 2, "Hesitant": 1, "Impulsive": 1, "Collector": 0}, d.UserSegmentDistribution)

	july, err := e.CohortDetail(ctx, "2015-07", allWindow(t))
	require.NoError(t, err)
	assert.Equal(t, int64(1), july.CohortSize)
	assert.Equal(t, 100.0, july.CurrentRetentionRate)

	w, err := NewWindow("impulsive", "2015-06-01", "2015-06-30")
	require.NoError(t, err)
	scoped, err := e.CohortDetail(ctx, "2015-06", w)
	require.NoError(t, err)
	assert.Equal(t, int64(1), scoped.CohortSize)
	assert.Equal(t, int64(1), scoped.CurrentActiveUsers)
	assert.Equal(t, 100.0, scoped.CurrentRetentionRate)

	empty, err := e.CohortDetail(ctx, "2014-01", allWindow(t))
	require.NoError(t, err)
	assert.Zero(t, empty.CohortSize)
	assert.Zero(t, empty.CurrentRetentionRate)
	assert.Equal(t, EventCounts{}, empty.Summary)

	_, err = e.CohortDetail(ctx, "last month", allWindow(t))
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestDailyRetention(t *testing.T) {
	t.Parallel()
	e := newTestEngine(shopEvents())
	ctx := context.Background()

	days, err := e.DailyRetention(ctx, allWindow(t), 3)
	require.NoError(t, err)
	assert.Equal(t, []DayRetention{
		{Day: 0, Users: 3, RetentionRate: 100},
		{Day: 1, Users: 1, RetentionRate: 33.33},
		{Day: 2, Users: 0, RetentionRate: 0},
		{Day: 3, Users: 0, RetentionRate: 0},
	}, days)

	clamped, err := e.DailyRetention(ctx, allWindow(t), 90)
	require.NoError(t, err)
	assert.Len(t, clamped, MaxRetentionDays+1)

	none, err := newTestEngine(nil).DailyRetention(ctx, allWindow(t), 2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, none[0].RetentionRate)
}
