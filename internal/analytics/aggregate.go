// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/shopscope/internal/events"
	"github.com/tomtom215/shopscope/internal/segment"
)

// Entity kinds accepted by TopEntities and Profile.
const (
	EntityItem     = "item"
	EntityCategory = "category"
)

// Funnel stage labels, in funnel order.
var stageLabels = [3]string{"浏览", "加购", "购买"}

// StageLabel returns the display label of an event type.
func StageLabel(t events.Type) string {
	if i := typeIndex(t); i >= 0 {
		return stageLabels[i]
	}
	return string(t)
}

// TopEntity is one row of a ranking.
type TopEntity struct {
	EntityID int64  `json:"entity_id"`
	Label    string `json:"label"`
	Metric   string `json:"metric"`
	Value    int64  `json:"value"`
}

// FunnelStage is one stage of a conversion funnel.
type FunnelStage struct {
	Stage      string  `json:"stage"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// HourValue is the event count of one hour of the day.
type HourValue struct {
	Hour  int   `json:"hour"`
	Value int64 `json:"value"`
}

// EventCounts holds the total per event type. Field order fixes the JSON
// key order to view, addtocart, transaction.
type EventCounts struct {
	View        int64 `json:"view"`
	AddToCart   int64 `json:"addtocart"`
	Transaction int64 `json:"transaction"`
}

func (c *EventCounts) add(t events.Type) {
	switch t {
	case events.View:
		c.View++
	case events.AddToCart:
		c.AddToCart++
	case events.Transaction:
		c.Transaction++
	}
}

// Get returns the count of t.
func (c EventCounts) Get(t events.Type) int64 {
	switch t {
	case events.View:
		return c.View
	case events.AddToCart:
		return c.AddToCart
	case events.Transaction:
		return c.Transaction
	}
	return 0
}

// Ordered returns the counts as a list in funnel order.
func (c EventCounts) Ordered() []EventCount {
	return []EventCount{
		{Event: string(events.View), Count: c.View},
		{Event: string(events.AddToCart), Count: c.AddToCart},
		{Event: string(events.Transaction), Count: c.Transaction},
	}
}

// EventCount is one entry of EventCounts.Ordered.
type EventCount struct {
	Event string `json:"event"`
	Count int64  `json:"count"`
}

// MonthValue is a count for one calendar month (YYYY-MM).
type MonthValue struct {
	Month string `json:"month"`
	Value int64  `json:"value"`
}

// DailyActive is the distinct visitor count of one calendar day.
type DailyActive struct {
	Date  string `json:"date"`
	Users int64  `json:"dau"`
}

// HeatCell is the event count of one (date, hour) pair.
type HeatCell struct {
	Date  string `json:"date"`
	Hour  int    `json:"hour"`
	Count int64  `json:"count"`
}

// BlackHorseItem is an item whose monthly sales grew the most.
type BlackHorseItem struct {
	ItemID        int64   `json:"item_id"`
	Label         string  `json:"label"`
	FirstHalfAvg  float64 `json:"first_half_avg"`
	SecondHalfAvg float64 `json:"second_half_avg"`
	GrowthRate    float64 `json:"growth_rate"`
	TotalSales    int64   `json:"total_sales"`
}

// SegmentMonth is the transaction count of one segment in one month.
type SegmentMonth struct {
	Month   string `json:"month"`
	Segment string `json:"segment"`
	Count   int64  `json:"count"`
}

// Black horse tuning.
const (
	blackHorseMinSales    = 5
	blackHorseNewGrowth   = 1000.0
	blackHorseNoneGrowth  = 0.0
	blackHorseDefaultTopN = 10
)

func entityLabel(kind string, id int64) string {
	if kind == EntityItem {
		return fmt.Sprintf("Item %d", id)
	}
	return fmt.Sprintf("Category %d", id)
}

func toTopEntities(kind, metric string, counts map[int64]int64, limit int) []TopEntity {
	rows := ranked(counts, limit)
	out := make([]TopEntity, len(rows))
	for i, r := range rows {
		out[i] = TopEntity{EntityID: r[0], Label: entityLabel(kind, r[0]), Metric: metric, Value: r[1]}
	}
	return out
}

// TopEntities ranks items or categories by the number of events of metric.
// Ties are broken by ascending entity id.
func (e *Engine) TopEntities(ctx context.Context, w Window, metric, entity string, limit int) ([]TopEntity, error) {
	typ, err := events.ParseType(metric)
	if err != nil {
		return nil, invalidf("metric must be view, addtocart or transaction, got %q", metric)
	}
	if entity != EntityItem && entity != EntityCategory {
		return nil, invalidf("entity must be item or category, got %q", entity)
	}
	if limit < 0 {
		return nil, invalidf("limit must not be negative")
	}

	a := e.segments.Current()
	counts := make(map[int64]int64)
	err = e.scan(ctx, w.filter(a).WithType(typ), func(ev *events.Event) {
		if entity == EntityItem {
			counts[ev.ItemID]++
		} else {
			counts[ev.CategoryID]++
		}
	})
	if err != nil {
		return nil, err
	}
	return toTopEntities(entity, metric, counts, limit), nil
}

// buildFunnel turns stage counts into the three funnel rows. Every stage,
// view included, is 0 when there are no views.
func buildFunnel(c EventCounts) []FunnelStage {
	den := float64(c.View)
	return []FunnelStage{
		{Stage: stageLabels[0], Count: c.View, Percentage: percent(float64(c.View), den)},
		{Stage: stageLabels[1], Count: c.AddToCart, Percentage: percent(float64(c.AddToCart), den)},
		{Stage: stageLabels[2], Count: c.Transaction, Percentage: percent(float64(c.Transaction), den)},
	}
}

// Funnel returns the view, cart and purchase stages with percentages of views.
func (e *Engine) Funnel(ctx context.Context, w Window) ([]FunnelStage, error) {
	c, err := e.EventCounts(ctx, w)
	if err != nil {
		return nil, err
	}
	return buildFunnel(c), nil
}

// EventCounts returns the total count per event type.
func (e *Engine) EventCounts(ctx context.Context, w Window) (EventCounts, error) {
	var c EventCounts
	err := e.scan(ctx, w.filter(e.segments.Current()), func(ev *events.Event) {
		c.add(ev.Type)
	})
	return c, err
}

// ActiveHours returns all 24 hours with their event counts, zero-filled.
func (e *Engine) ActiveHours(ctx context.Context, w Window) ([]HourValue, error) {
	var hours [24]int64
	err := e.scan(ctx, w.filter(e.segments.Current()), func(ev *events.Event) {
		hours[ev.Timestamp.Hour()]++
	})
	if err != nil {
		return nil, err
	}
	return hourValues(hours), nil
}

func hourValues(hours [24]int64) []HourValue {
	out := make([]HourValue, 24)
	for h := range hours {
		out[h] = HourValue{Hour: h, Value: hours[h]}
	}
	return out
}

// MonthlySales returns transaction counts per month in ascending order.
func (e *Engine) MonthlySales(ctx context.Context, w Window) ([]MonthValue, error) {
	counts := make(map[string]int64)
	f := w.filter(e.segments.Current()).WithType(events.Transaction)
	if err := e.scan(ctx, f, func(ev *events.Event) {
		counts[monthKey(ev.Timestamp)]++
	}); err != nil {
		return nil, err
	}

	out := make([]MonthValue, 0, len(counts))
	for m, n := range counts {
		out = append(out, MonthValue{Month: m, Value: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// DailyActiveUsers returns distinct visitors per calendar day, ascending.
func (e *Engine) DailyActiveUsers(ctx context.Context, w Window) ([]DailyActive, error) {
	days := make(map[string]map[int64]struct{})
	if err := e.scan(ctx, w.filter(e.segments.Current()), func(ev *events.Event) {
		d := ev.Timestamp.Format(DateLayout)
		set, ok := days[d]
		if !ok {
			set = make(map[int64]struct{})
			days[d] = set
		}
		set[ev.VisitorID] = struct{}{}
	}); err != nil {
		return nil, err
	}

	out := make([]DailyActive, 0, len(days))
	for d, set := range days {
		out = append(out, DailyActive{Date: d, Users: int64(len(set))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// Heatmap returns event counts per (date, hour), ordered by date then hour.
// Empty cells are omitted.
func (e *Engine) Heatmap(ctx context.Context, w Window) ([]HeatCell, error) {
	type cell struct {
		date string
		hour int
	}
	counts := make(map[cell]int64)
	if err := e.scan(ctx, w.filter(e.segments.Current()), func(ev *events.Event) {
		counts[cell{ev.Timestamp.Format(DateLayout), ev.Timestamp.Hour()}]++
	}); err != nil {
		return nil, err
	}

	out := make([]HeatCell, 0, len(counts))
	for c, n := range counts {
		out = append(out, HeatCell{Date: c.date, Hour: c.hour, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Hour < out[j].Hour
	})
	return out, nil
}

// BlackHorseItems finds items whose average monthly sales grew the most
// between the first and second half of the observed months. The month list
// is split at its midpoint; an odd middle month goes to the second half.
// Averages are taken over the months of a half in which the item sold.
// Items new in the second half get growth 1000; fewer than 5 total sales are
// dropped. Ordered by growth descending, then item id.
func (e *Engine) BlackHorseItems(ctx context.Context, w Window, topN int) ([]BlackHorseItem, error) {
	if topN <= 0 {
		topN = blackHorseDefaultTopN
	}

	sales := make(map[int64]map[int]int64)
	months := make(map[int]struct{})
	f := w.filter(e.segments.Current()).WithType(events.Transaction)
	if err := e.scan(ctx, f, func(ev *events.Event) {
		m := monthIndex(ev.Timestamp)
		months[m] = struct{}{}
		per, ok := sales[ev.ItemID]
		if !ok {
			per = make(map[int]int64)
			sales[ev.ItemID] = per
		}
		per[m]++
	}); err != nil {
		return nil, err
	}

	sorted := make([]int, 0, len(months))
	for m := range months {
		sorted = append(sorted, m)
	}
	sort.Ints(sorted)
	if len(sorted) < 2 {
		return []BlackHorseItem{}, nil
	}
	pivot := sorted[len(sorted)/2]

	out := make([]BlackHorseItem, 0)
	for item, per := range sales {
		var firstSum, secondSum, total int64
		var firstN, secondN int
		for m, n := range per {
			total += n
			if m < pivot {
				firstSum += n
				firstN++
			} else {
				secondSum += n
				secondN++
			}
		}
		if total < blackHorseMinSales {
			continue
		}
		first := avg(firstSum, firstN)
		second := avg(secondSum, secondN)

		growth := blackHorseNoneGrowth
		switch {
		case first > 0:
			growth = (second - first) / first * 100
		case second > 0:
			growth = blackHorseNewGrowth
		}
		out = append(out, BlackHorseItem{
			ItemID:        item,
			Label:         entityLabel(EntityItem, item),
			FirstHalfAvg:  round2(first),
			SecondHalfAvg: round2(second),
			GrowthRate:    round2(growth),
			TotalSales:    total,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].GrowthRate != out[j].GrowthRate {
			return out[i].GrowthRate > out[j].GrowthRate
		}
		return out[i].ItemID < out[j].ItemID
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

func avg(sum int64, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// SegmentMonthlyTrend returns transaction counts per month for every
// segment. The window's segment is ignored; its dates apply.
func (e *Engine) SegmentMonthlyTrend(ctx context.Context, w Window) ([]SegmentMonth, error) {
	a := e.segments.Current()
	type key struct {
		month string
		seg   segment.Name
	}
	counts := make(map[key]int64)
	f := events.Filter{From: w.From, To: w.To}.WithType(events.Transaction)
	if err := e.scan(ctx, f, func(ev *events.Event) {
		m := monthKey(ev.Timestamp)
		counts[key{m, segment.All}]++
		for _, n := range segment.Names[1:] {
			if a.Contains(n, ev.VisitorID) {
				counts[key{m, n}]++
			}
		}
	}); err != nil {
		return nil, err
	}

	out := make([]SegmentMonth, 0, len(counts))
	for k, n := range counts {
		out = append(out, SegmentMonth{Month: k.month, Segment: string(k.seg), Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Segment < out[j].Segment
	})
	return out, nil
}

// dayOf truncates t to its UTC calendar day.
func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
