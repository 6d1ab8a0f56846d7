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
)

// shopEventsOn returns one view by a distinct visitor on each date.
func shopEventsOn(dates ...string) []events.Event {
	out := make([]events.Event, len(dates))
	for i, d := range dates {
		out[i] = mk(int64(i+1), at(d, 12, 0), events.View, 100)
	}
	return out
}

func TestProfileItem(t *testing.T) {
	t.Parallel()
	e := newTestEngine(shopEvents())

	p, err := e.Profile(context.Background(), EntityItem, 100, allWindow(t))
	require.NoError(t, err)
	assert.Equal(t, "商品 100", p.EntityLabel)
	assert.Equal(t, EventCounts{View: 3, AddToCart: 1, Transaction: 1}, p.Summary)
	assert.Equal(t, ConversionRates{ViewToCart: 33.33, CartToPurchase: 100, ViewToPurchase: 33.33}, p.ConversionRates)

	require.Len(t, p.Series, 3)
	assert.Equal(t, Series{Label: "view", Data: []Point{
		{Period: "2015-06-01", Value: 2},
		{Period: "2015-07-06", Value: 1},
	}}, p.Series[0])
	assert.Equal(t, "transaction", p.Series[2].Label)

	require.Len(t, p.HourlyDistribution, 24)
	assert.Equal(t, int64(3), p.HourlyDistribution[10].Count)
	assert.Equal(t, int64(1), p.HourlyDistribution[11].Count)

	require.Len(t, p.Funnel, 3)
	assert.Equal(t, 100.0, p.Funnel[0].Percentage)
	assert.Equal(t, p.ConversionRates.ViewToCart, p.Funnel[1].Percentage)
	assert.Equal(t, p.ConversionRates.ViewToPurchase, p.Funnel[2].Percentage)
}

func TestProfileCategoryAndUnknown(t *testing.T) {
	t.Parallel()
	e := newTestEngine(shopEvents())
	ctx := context.Background()

	c, err := e.Profile(ctx, EntityCategory, 20, allWindow(t))
	require.NoError(t, err)
	assert.Equal(t, "类别 20", c.EntityLabel)
	assert.Equal(t, int64(6), c.Summary.View)

	// Unknown ids yield a zero bundle, not an error.
	z, err := e.Profile(ctx, EntityItem, 999, allWindow(t))
	require.NoError(t, err)
	assert.Equal(t, EventCounts{}, z.Summary)
	assert.Empty(t, z.Series)
	assert.Len(t, z.HourlyDistribution, 24)
	assert.Equal(t, ConversionRates{}, z.ConversionRates)
	for _, s := range z.Funnel {
		assert.Zero(t, s.Percentage)
	}

	_, err = e.Profile(ctx, "brand", 1, allWindow(t))
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestFunnelStageDetail(t *testing.T) {
	t.Parallel()
	e := newTestEngine(shopEvents())
	ctx := context.Background()

	d, err := e.FunnelStageDetail(ctx, "addtocart", 5, allWindow(t))
	require.NoError(t, err)
	assert.Equal(t, "加购", d.StageLabel)
	assert.Equal(t, int64(2), d.Count)
	assert.Equal(t, 22.22, d.Percentage)
	require.Len(t, d.TimeSeries, 1)
	assert.Equal(t, "addtocart", d.TimeSeries[0].Label)
	assert.Equal(t, []TopEntity{
		{EntityID: 100, Label: "Item 100", Metric: "addtocart", Value: 1},
		{EntityID: 200, Label: "Item 200", Metric: "addtocart", Value: 1},
	}, d.TopItems)
	assert.Equal(t, map[string]int64{"All": 2, "Hesitant": 1, "Impulsive": 1, "Collector": 0}, d.UserSegmentDistribution)

	require.NotNil(t, d.DropoffAnalysis)
	assert.Equal(t, Dropoff{
		FromStage: "view", ToStage: "addtocart",
		FromCount: 3, ToCount: 2, DropoffCount: 1,
		DropoffRate: 33.33, ConversionRate: 66.67,
	}, *d.DropoffAnalysis)

	v, err := e.FunnelStageDetail(ctx, "view", 0, allWindow(t))
	require.NoError(t, err)
	assert.Nil(t, v.DropoffAnalysis)
	assert.Equal(t, 100.0, v.Percentage)

	tx, err := e.FunnelStageDetail(ctx, "transaction", 5, allWindow(t))
	require.NoError(t, err)
	assert.Equal(t, int64(2), tx.DropoffAnalysis.FromCount)
	assert.Equal(t, int64(1), tx.DropoffAnalysis.ToCount)

	_, err = e.FunnelStageDetail(ctx, "purchase", 5, allWindow(t))
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestFunnelStageDetailEmptyDropoff(t *testing.T) {
	t.Parallel()
	e := newTestEngine(nil)

	d, err := e.FunnelStageDetail(context.Background(), "transaction", 5, allWindow(t))
	require.NoError(t, err)
	assert.Zero(t, d.DropoffAnalysis.DropoffRate)
	assert.Zero(t, d.DropoffAnalysis.ConversionRate)
	assert.Zero(t, d.Percentage)
}

func TestActiveHourDetail(t *testing.T) {
	t.Parallel()
	e := newTestEngine(shopEvents())
	ctx := context.Background()

	d, err := e.ActiveHourDetail(ctx, 10, 2, allWindow(t))
	require.NoError(t, err)
	assert.Equal(t, int64(6), d.TotalCount)
	assert.Equal(t, 50.0, d.PercentageOfDay)
	assert.Equal(t, EventCounts{View: 4, AddToCart: 2}, d.EventDistribution)
	assert.Equal(t, 50.0, d.ConversionRates.ViewToCart)
	require.Len(t, d.TimeSeries, 1)
	assert.Equal(t, "活动量", d.TimeSeries[0].Label)
	assert.Equal(t, []int64{100, 200}, []int64{d.TopItems[0].EntityID, d.TopItems[1].EntityID})
	assert.Equal(t, int64(3), d.TopItems[0].Value)
	assert.Equal(t, "view", d.TopItems[0].Metric)
	assert.Equal(t, int64(2), d.UserSegmentDistribution["All"])

	c := d.Comparison
	assert.Equal(t, HourNeighbor{Hour: 9, Count: 1, Diff: 5, DiffPercentage: 500}, c.PrevHour)
	assert.Equal(t, HourNeighbor{Hour: 11, Count: 2, Diff: 4, DiffPercentage: 200}, c.NextHour)
	assert.Equal(t, HourAverage{Count: 0.5, Diff: 5.5, DiffPercentage: 1100}, c.Average)
	assert.True(t, c.IsPeak)
	assert.False(t, c.IsValley)
}

func TestActiveHourDetailRanksEveryEventType(t *testing.T) {
	t.Parallel()
	e := newTestEngine([]events.Event{
		mk(1, at("2015-06-01", 10, 0), events.View, 100),
		mk(2, at("2015-06-01", 10, 5), events.AddToCart, 300),
		mk(2, at("2015-06-01", 10, 6), events.AddToCart, 300),
		mk(2, at("2015-06-01", 10, 9), events.Transaction, 300),
		mk(3, at("2015-06-01", 11, 0), events.View, 200),
	})

	d, err := e.ActiveHourDetail(context.Background(), 10, 5, allWindow(t))
	require.NoError(t, err)
	require.Len(t, d.TopItems, 2)
	assert.Equal(t, []int64{300, 100}, []int64{d.TopItems[0].EntityID, d.TopItems[1].EntityID})
	assert.Equal(t, []int64{3, 1}, []int64{d.TopItems[0].Value, d.TopItems[1].Value})
	assert.Equal(t, "view", d.TopItems[0].Metric)
	require.Len(t, d.TopCategories, 2)
	assert.Equal(t, int64(20), d.TopCategories[0].EntityID)
	assert.Equal(t, int64(3), d.TopCategories[0].Value)
}

func TestActiveHourDetailWrapsAndValley(t *testing.T) {
	t.Parallel()
	e := newTestEngine(shopEvents())
	ctx := context.Background()

	d, err := e.ActiveHourDetail(ctx, 0, 5, allWindow(t))
	require.NoError(t, err)
	assert.Equal(t, 23, d.Comparison.PrevHour.Hour)
	assert.Equal(t, 1, d.Comparison.NextHour.Hour)
	assert.Zero(t, d.Comparison.PrevHour.DiffPercentage)
	assert.True(t, d.Comparison.IsValley)
	assert.False(t, d.Comparison.IsPeak)

	late, err := e.ActiveHourDetail(ctx, 23, 5, allWindow(t))
	require.NoError(t, err)
	assert.Equal(t, 0, late.Comparison.NextHour.Hour)

	for _, h := range []int{-1, 24} {
		_, err := e.ActiveHourDetail(ctx, h, 5, allWindow(t))
		assert.True(t, errors.Is(err, ErrInvalidArgument), "hour %d", h)
	}
}

func TestParseHour(t *testing.T) {
	t.Parallel()

	h, err := ParseHour("7")
	require.NoError(t, err)
	assert.Equal(t, 7, h)

	for _, s := range []string{"24", "-1", "noon", ""} {
		_, err := ParseHour(s)
		assert.True(t, errors.Is(err, ErrInvalidArgument), s)
	}
}
