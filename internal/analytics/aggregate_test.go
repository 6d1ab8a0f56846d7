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

	"github.com/tomtom215/shopscope/internal/events"
	"github.com/tomtom215/shopscope/internal/segment"
)

func TestTopEntities(t *testing.T) {
	t.Parallel()
	e := newTestEngine(shopEvents())
	ctx := context.Background()

	// Every item has three views; ties resolve by ascending id.
	items, err := e.TopEntities(ctx, allWindow(t), "view", EntityItem, 2)
	require.NoError(t, err)
	assert.Equal(t, []TopEntity{
		{EntityID: 100, Label: "Item 100", Metric: "view", Value: 3},
		{EntityID: 200, Label: "Item 200", Metric: "view", Value: 3},
	}, items)

	cats, err := e.TopEntities(ctx, allWindow(t), "view", EntityCategory, 10)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, TopEntity{EntityID: 20, Label: "Category 20", Metric: "view", Value: 6}, cats[0])
	assert.Equal(t, int64(10), cats[1].EntityID)

	sold, err := e.TopEntities(ctx, allWindow(t), "transaction", EntityItem, 10)
	require.NoError(t, err)
	assert.Equal(t, []TopEntity{{EntityID: 100, Label: "Item 100", Metric: "transaction", Value: 1}}, sold)
}

func TestTopEntitiesInvalid(t *testing.T) {
	t.Parallel()
	e := newTestEngine(shopEvents())

	tests := []struct {
		name, metric, entity string
	}{
		{"bad metric", "click", EntityItem},
		{"bad entity", "view", "brand"},
		{"empty metric", "", EntityCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := e.TopEntities(context.Background(), allWindow(t), tt.metric, tt.entity, 10)
			assert.True(t, errors.Is(err, ErrInvalidArgument), "got %v", err)
		})
	}
}

func TestFunnel(t *testing.T) {
	t.Parallel()
	e := newTestEngine(shopEvents())
	ctx := context.Background()

	stages, err := e.Funnel(ctx, allWindow(t))
	require.NoError(t, err)
	assert.Equal(t, []FunnelStage{
		{Stage: "浏览", Count: 9, Percentage: 100},
		{Stage: "加购", Count: 2, Percentage: 22.22},
		{Stage: "购买", Count: 1, Percentage: 11.11},
	}, stages)

	w, err := NewWindow("Hesitant", "", "")
	require.NoError(t, err)
	stages, err = e.Funnel(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, 100.0, stages[0].Percentage)
	assert.Equal(t, 50.0, stages[1].Percentage)
	assert.Equal(t, 0.0, stages[2].Percentage)
}

func TestFunnelNoViews(t *testing.T) {
	t.Parallel()
	e := newTestEngine([]events.Event{mk(1, at("2015-06-01", 1, 0), events.Transaction, 100)})

	stages, err := e.Funnel(context.Background(), allWindow(t))
	require.NoError(t, err)
	for _, s := range stages {
		assert.Equal(t, 0.0, s.Percentage, s.Stage)
	}
	assert.Equal(t, int64(1), stages[2].Count)
}

func TestFunnelFromSpec(t *testing.T) {
	t.Parallel()
	var evs []events.Event
	for i := 0; i < 100; i++ {
		evs = append(evs, mk(int64(i), at("2015-06-01", 8, 0), events.View, 100))
	}
	for i := 0; i < 20; i++ {
		evs = append(evs, mk(int64(i), at("2015-06-01", 9, 0), events.AddToCart, 100))
	}
	for i := 0; i < 5; i++ {
		evs = append(evs, mk(int64(i), at("2015-06-01", 10, 0), events.Transaction, 100))
	}
	e := newTestEngine(evs)

	stages, err := e.Funnel(context.Background(), allWindow(t))
	require.NoError(t, err)
	assert.Equal(t, 100.0, stages[0].Percentage)
	assert.Equal(t, 20.0, stages[1].Percentage)
	assert.Equal(t, 5.0, stages[2].Percentage)
}

func TestEventCountsWindow(t *testing.T) {
	t.Parallel()
	e := newTestEngine(shopEvents())
	ctx := context.Background()

	c, err := e.EventCounts(ctx, allWindow(t))
	require.NoError(t, err)
	assert.Equal(t, EventCounts{View: 9, AddToCart: 2, Transaction: 1}, c)
	assert.Equal(t, []EventCount{{"view", 9}, {"addtocart", 2}, {"transaction", 1}}, c.Ordered())

	w, err := NewWindow("All", "2015-07-01", "")
	require.NoError(t, err)
	c, err = e.EventCounts(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, EventCounts{View: 4}, c)

	// The upper bound is inclusive of the whole day.
	w, err = NewWindow("All", "", "2015-06-01")
	require.NoError(t, err)
	c, err = e.EventCounts(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, EventCounts{View: 3, AddToCart: 1, Transaction: 1}, c)

	w, err = NewWindow("Hesitant", "", "")
	require.NoError(t, err)
	c, err = e.EventCounts(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, EventCounts{View: 2, AddToCart: 1}, c)

	// Collector has no members.
	w, err = NewWindow("Collector", "", "")
	require.NoError(t, err)
	c, err = e.EventCounts(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, EventCounts{}, c)
}

func TestActiveHours(t *testing.T) {
	t.Parallel()
	e := newTestEngine(shopEvents())

	hours, err := e.ActiveHours(context.Background(), allWindow(t))
	require.NoError(t, err)
	require.Len(t, hours, 24)
	assert.Equal(t, HourValue{Hour: 10, Value: 6}, hours[10])
	assert.Equal(t, HourValue{Hour: 0, Value: 0}, hours[0])

	var total int64
	for _, h := range hours {
		total += h.Value
	}
	assert.Equal(t, int64(12), total)
}

func TestMonthlySalesAndDAU(t *testing.T) {
	t.Parallel()
	e := newTestEngine(shopEvents())
	ctx := context.Background()

	sales, err := e.MonthlySales(ctx, allWindow(t))
	require.NoError(t, err)
	assert.Equal(t, []MonthValue{{Month: "2015-06", Value: 1}}, sales)

	dau, err := e.DailyActiveUsers(ctx, allWindow(t))
	require.NoError(t, err)
	assert.Equal(t, []DailyActive{
		{Date: "2015-06-01", Users: 1},
		{Date: "2015-06-02", Users: 1},
		{Date: "2015-07-06", Users: 1},
		{Date: "2015-07-07", Users: 2},
	}, dau)
}

func TestHeatmap(t *testing.T) {
	t.Parallel()
	e := newTestEngine(shopEvents())

	cells, err := e.Heatmap(context.Background(), allWindow(t))
	require.NoError(t, err)
	require.Len(t, cells, 6)
	assert.Equal(t, HeatCell{Date: "2015-06-01", Hour: 10, Count: 3}, cells[0])
	assert.Equal(t, HeatCell{Date: "2015-07-07", Hour: 20, Count: 1}, cells[5])
}

func TestBlackHorseItems(t *testing.T) {
	t.Parallel()
	sales := map[int64]map[string]int{
		7:  {"2015-06-10": 1, "2015-07-10": 1, "2015-08-10": 3, "2015-09-10": 3},
		8:  {"2015-08-10": 5},
		9:  {"2015-06-10": 2, "2015-09-10": 2},
		10: {"2015-06-10": 4, "2015-09-10": 2},
	}
	var evs []events.Event
	for item, days := range sales {
		for day, n := range days {
			for i := 0; i < n; i++ {
				evs = append(evs, mk(item*100+int64(i), at(day, 12, i), events.Transaction, item))
			}
		}
	}
	e := newTestEngine(evs)

	got, err := e.BlackHorseItems(context.Background(), allWindow(t), 10)
	require.NoError(t, err)
	require.Len(t, got, 3, "item 9 has fewer than five sales")

	assert.Equal(t, int64(8), got[0].ItemID)
	assert.Equal(t, 1000.0, got[0].GrowthRate)
	assert.Equal(t, BlackHorseItem{
		ItemID: 7, Label: "Item 7", FirstHalfAvg: 1, SecondHalfAvg: 3, GrowthRate: 200, TotalSales: 8,
	}, got[1])
	assert.Equal(t, -50.0, got[2].GrowthRate)

	top, err := e.BlackHorseItems(context.Background(), allWindow(t), 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)

	single := newTestEngine(shopEvents())
	none, err := single.BlackHorseItems(context.Background(), allWindow(t), 10)
	require.NoError(t, err)
	assert.Empty(t, none, "a single month has no second half")
}

func TestSegmentMonthlyTrend(t *testing.T) {
	t.Parallel()
	e := newTestEngine(shopEvents())

	w, err := NewWindow("Hesitant", "", "")
	require.NoError(t, err)
	rows, err := e.SegmentMonthlyTrend(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, []SegmentMonth{
		{Month: "2015-06", Segment: string(segment.All), Count: 1},
		{Month: "2015-06", Segment: string(segment.Impulsive), Count: 1},
	}, rows)
}

func TestScanCancelled(t *testing.T) {
	t.Parallel()
	e := newTestEngine(shopEvents())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.EventCounts(ctx, allWindow(t))
	assert.ErrorIs(t, err, context.Canceled)
}
