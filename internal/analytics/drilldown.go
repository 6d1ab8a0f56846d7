// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package analytics

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/tomtom215/shopscope/internal/events"
)

// Point is one bucket of a time series. Period is the ISO week start.
type Point struct {
	Period string `json:"period"`
	Value  int64  `json:"value"`
}

// Series is a labelled weekly time series.
type Series struct {
	Label string  `json:"label"`
	Data  []Point `json:"data"`
}

// ConversionRates are stage-to-stage percentages. A zero denominator gives 0.
type ConversionRates struct {
	ViewToCart     float64 `json:"view_to_cart"`
	CartToPurchase float64 `json:"cart_to_purchase"`
	ViewToPurchase float64 `json:"view_to_purchase"`
}

// HourCount is the event count of one hour of the day.
type HourCount struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// ProfileBundle is the shared shape of entity and cohort profiles.
type ProfileBundle struct {
	Summary            EventCounts     `json:"summary"`
	Series             []Series        `json:"series"`
	ConversionRates    ConversionRates `json:"conversion_rates"`
	HourlyDistribution []HourCount     `json:"hourly_distribution"`
	Funnel             []FunnelStage   `json:"funnel"`
}

// Profile is the drilldown of one item or category.
type Profile struct {
	EntityID    int64  `json:"entity_id"`
	EntityType  string `json:"entity_type"`
	EntityLabel string `json:"entity_label"`
	Segment     string `json:"segment"`
	ProfileBundle
}

// Dropoff compares distinct visitors of two consecutive funnel stages.
type Dropoff struct {
	FromStage      string  `json:"from_stage"`
	ToStage        string  `json:"to_stage"`
	FromCount      int64   `json:"from_count"`
	ToCount        int64   `json:"to_count"`
	DropoffCount   int64   `json:"dropoff_count"`
	DropoffRate    float64 `json:"dropoff_rate"`
	ConversionRate float64 `json:"conversion_rate"`
}

// FunnelStageDetail is the drilldown of one funnel stage.
type FunnelStageDetail struct {
	Stage                   string           `json:"stage"`
	StageLabel              string           `json:"stage_label"`
	Segment                 string           `json:"segment"`
	Count                   int64            `json:"count"`
	Percentage              float64          `json:"percentage"`
	TimeSeries              []Series         `json:"time_series"`
	HourlyDistribution      []HourCount      `json:"hourly_distribution"`
	TopItems                []TopEntity      `json:"top_items"`
	TopCategories           []TopEntity      `json:"top_categories"`
	UserSegmentDistribution map[string]int64 `json:"user_segment_distribution"`
	DropoffAnalysis         *Dropoff         `json:"dropoff_analysis"`
}

// HourNeighbor compares the selected hour with another hour.
type HourNeighbor struct {
	Hour           int     `json:"hour"`
	Count          int64   `json:"count"`
	Diff           int64   `json:"diff"`
	DiffPercentage float64 `json:"diff_percentage"`
}

// HourAverage compares the selected hour with the mean hour of the day.
type HourAverage struct {
	Count          float64 `json:"count"`
	Diff           float64 `json:"diff"`
	DiffPercentage float64 `json:"diff_percentage"`
}

// HourComparison places an hour against its neighbors and the day average.
type HourComparison struct {
	PrevHour HourNeighbor `json:"prev_hour"`
	NextHour HourNeighbor `json:"next_hour"`
	Average  HourAverage  `json:"average"`
	IsPeak   bool         `json:"is_peak"`
	IsValley bool         `json:"is_valley"`
}

// ActiveHourDetail is the drilldown of one hour of the day.
type ActiveHourDetail struct {
	Hour                    int              `json:"hour"`
	Segment                 string           `json:"segment"`
	TotalCount              int64            `json:"total_count"`
	PercentageOfDay         float64          `json:"percentage_of_day"`
	EventDistribution       EventCounts      `json:"event_distribution"`
	ConversionRates         ConversionRates  `json:"conversion_rates"`
	Funnel                  []FunnelStage    `json:"funnel"`
	TimeSeries              []Series         `json:"time_series"`
	TopItems                []TopEntity      `json:"top_items"`
	TopCategories           []TopEntity      `json:"top_categories"`
	UserSegmentDistribution map[string]int64 `json:"user_segment_distribution"`
	Comparison              HourComparison   `json:"comparison"`
}

// Peak and valley thresholds relative to the hourly mean.
const (
	peakFactor   = 1.2
	valleyFactor = 0.8
)

// DefaultTopN is used when a drilldown is asked for a non-positive top N.
const DefaultTopN = 10

const activityLabel = "活动量"

func conversionRates(c EventCounts) ConversionRates {
	return ConversionRates{
		ViewToCart:     percent(float64(c.AddToCart), float64(c.View)),
		CartToPurchase: percent(float64(c.Transaction), float64(c.AddToCart)),
		ViewToPurchase: percent(float64(c.Transaction), float64(c.View)),
	}
}

// weekly accumulates per-label weekly counts.
type weekly map[string]map[string]int64

func (w weekly) add(label, week string) {
	m, ok := w[label]
	if !ok {
		m = make(map[string]int64)
		w[label] = m
	}
	m[week]++
}

// series renders labels in the given order, skipping labels with no data.
func (w weekly) series(labels ...string) []Series {
	out := make([]Series, 0, len(labels))
	for _, l := range labels {
		m, ok := w[l]
		if !ok {
			continue
		}
		pts := make([]Point, 0, len(m))
		for p, v := range m {
			pts = append(pts, Point{Period: p, Value: v})
		}
		sort.Slice(pts, func(i, j int) bool { return pts[i].Period < pts[j].Period })
		out = append(out, Series{Label: l, Data: pts})
	}
	return out
}

func hourCounts(hours *[24]int64) []HourCount {
	out := make([]HourCount, 24)
	for h := range hours {
		out[h] = HourCount{Hour: h, Count: hours[h]}
	}
	return out
}

// profileBundle computes the summary bundle of every event matching f.
func (e *Engine) profileBundle(ctx context.Context, f events.Filter) (*ProfileBundle, error) {
	var (
		summary EventCounts
		hours   [24]int64
		weeks   = make(weekly)
	)
	if err := e.scan(ctx, f, func(ev *events.Event) {
		summary.add(ev.Type)
		hours[ev.Timestamp.Hour()]++
		weeks.add(string(ev.Type), weekStart(ev.Timestamp))
	}); err != nil {
		return nil, err
	}

	return &ProfileBundle{
		Summary:            summary,
		Series:             weeks.series(string(events.View), string(events.AddToCart), string(events.Transaction)),
		ConversionRates:    conversionRates(summary),
		HourlyDistribution: hourCounts(&hours),
		Funnel:             buildFunnel(summary),
	}, nil
}

// Profile drills into one item or category. An id with no events yields a
// zero-filled bundle.
func (e *Engine) Profile(ctx context.Context, entityType string, entityID int64, w Window) (*Profile, error) {
	f := w.filter(e.segments.Current())
	var label string
	switch entityType {
	case EntityItem:
		f = f.WithItem(entityID)
		label = fmt.Sprintf("商品 %d", entityID)
	case EntityCategory:
		f = f.WithCategory(entityID)
		label = fmt.Sprintf("类别 %d", entityID)
	default:
		return nil, invalidf("entity_type must be item or category, got %q", entityType)
	}

	bundle, err := e.profileBundle(ctx, f)
	if err != nil {
		return nil, err
	}
	return &Profile{
		EntityID:      entityID,
		EntityType:    entityType,
		EntityLabel:   label,
		Segment:       string(w.Segment),
		ProfileBundle: *bundle,
	}, nil
}

// ParseHour validates an hour of the day given as text.
func ParseHour(s string) (int, error) {
	h, err := strconv.Atoi(s)
	if err != nil || h < 0 || h > 23 {
		return 0, invalidf("hour must be an integer between 0 and 23, got %q", s)
	}
	return h, nil
}

// FunnelStageDetail drills into one funnel stage. Dropoff compares distinct
// visitors with the previous stage and is nil for view.
func (e *Engine) FunnelStageDetail(ctx context.Context, stage string, topN int, w Window) (*FunnelStageDetail, error) {
	typ, err := events.ParseType(stage)
	if err != nil {
		return nil, invalidf("stage must be view, addtocart or transaction, got %q", stage)
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	a := e.segments.Current()
	var (
		counts     EventCounts
		hours      [24]int64
		weeks      = make(weekly)
		items      = make(map[int64]int64)
		categories = make(map[int64]int64)
		visitors   [3]map[int64]struct{}
	)
	for i := range visitors {
		visitors[i] = make(map[int64]struct{})
	}
	if err := e.scan(ctx, w.filter(a), func(ev *events.Event) {
		counts.add(ev.Type)
		idx := typeIndex(ev.Type)
		if idx >= 0 {
			visitors[idx][ev.VisitorID] = struct{}{}
		}
		if ev.Type != typ {
			return
		}
		hours[ev.Timestamp.Hour()]++
		weeks.add(stage, weekStart(ev.Timestamp))
		items[ev.ItemID]++
		categories[ev.CategoryID]++
	}); err != nil {
		return nil, err
	}

	stageIdx := typeIndex(typ)
	out := &FunnelStageDetail{
		Stage:                   stage,
		StageLabel:              StageLabel(typ),
		Segment:                 string(w.Segment),
		Count:                   counts.Get(typ),
		Percentage:              percent(float64(counts.Get(typ)), float64(counts.View)),
		TimeSeries:              weeks.series(stage),
		HourlyDistribution:      hourCounts(&hours),
		TopItems:                toTopEntities(EntityItem, stage, items, topN),
		TopCategories:           toTopEntities(EntityCategory, stage, categories, topN),
		UserSegmentDistribution: segmentDistribution(a, visitors[stageIdx]),
	}
	if stageIdx > 0 {
		from := int64(len(visitors[stageIdx-1]))
		to := int64(len(visitors[stageIdx]))
		out.DropoffAnalysis = &Dropoff{
			FromStage:      string(events.Types[stageIdx-1]),
			ToStage:        stage,
			FromCount:      from,
			ToCount:        to,
			DropoffCount:   from - to,
			DropoffRate:    percent(float64(from-to), float64(from)),
			ConversionRate: percent(float64(to), float64(from)),
		}
	}
	return out, nil
}

// ActiveHourDetail drills into one hour of the day and compares it with its
// neighbors and with the hourly mean.
func (e *Engine) ActiveHourDetail(ctx context.Context, hour, topN int, w Window) (*ActiveHourDetail, error) {
	if hour < 0 || hour > 23 {
		return nil, invalidf("hour must be between 0 and 23, got %d", hour)
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	a := e.segments.Current()
	var (
		hours      [24]int64
		dist       EventCounts
		weeks      = make(weekly)
		items      = make(map[int64]int64)
		categories = make(map[int64]int64)
		visitors   = make(map[int64]struct{})
	)
	if err := e.scan(ctx, w.filter(a), func(ev *events.Event) {
		h := ev.Timestamp.Hour()
		hours[h]++
		if h != hour {
			return
		}
		dist.add(ev.Type)
		weeks.add(activityLabel, weekStart(ev.Timestamp))
		visitors[ev.VisitorID] = struct{}{}
		// Rankings count every event type in the hour; the label stays "view".
		items[ev.ItemID]++
		categories[ev.CategoryID]++
	}); err != nil {
		return nil, err
	}

	var day int64
	for _, n := range hours {
		day += n
	}
	cur := hours[hour]
	avg := float64(day) / 24

	return &ActiveHourDetail{
		Hour:                    hour,
		Segment:                 string(w.Segment),
		TotalCount:              cur,
		PercentageOfDay:         percent(float64(cur), float64(day)),
		EventDistribution:       dist,
		ConversionRates:         conversionRates(dist),
		Funnel:                  buildFunnel(dist),
		TimeSeries:              weeks.series(activityLabel),
		TopItems:                toTopEntities(EntityItem, string(events.View), items, topN),
		TopCategories:           toTopEntities(EntityCategory, string(events.View), categories, topN),
		UserSegmentDistribution: segmentDistribution(a, visitors),
		Comparison: HourComparison{
			PrevHour: neighbor(&hours, hour, (hour+23)%24),
			NextHour: neighbor(&hours, hour, (hour+1)%24),
			Average: HourAverage{
				Count:          round2(avg),
				Diff:           round2(float64(cur) - avg),
				DiffPercentage: percent(float64(cur)-avg, avg),
			},
			IsPeak:   float64(cur) > avg*peakFactor,
			IsValley: float64(cur) < avg*valleyFactor,
		},
	}, nil
}

func neighbor(hours *[24]int64, cur, other int) HourNeighbor {
	diff := hours[cur] - hours[other]
	return HourNeighbor{
		Hour:           other,
		Count:          hours[other],
		Diff:           diff,
		DiffPercentage: percent(float64(diff), float64(hours[other])),
	}
}
