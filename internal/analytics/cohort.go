// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package analytics

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/shopscope/internal/events"
)

// RetentionRow is the activity of one cohort in one month after it formed.
type RetentionRow struct {
	CohortMonth        string  `json:"cohort_month"`
	MonthDiff          int     `json:"month_diff"`
	UserCount          int64   `json:"user_count"`
	CohortSize         int64   `json:"cohort_size"`
	RetentionRate      float64 `json:"retention_rate"`
	ActualMonth        string  `json:"actual_month"`
	MonthlyActiveUsers int64   `json:"monthly_active_users"`
}

// WeekdayCount is the distinct visitors active on one weekday (1=Mon..7=Sun).
type WeekdayCount struct {
	Weekday     int    `json:"weekday"`
	WeekdayName string `json:"weekday_name"`
	UserCount   int64  `json:"user_count"`
}

// WeekdayReport lists all seven weekdays and the weekday/weekend means.
type WeekdayReport struct {
	Data       []WeekdayCount `json:"data"`
	WeekdayAvg float64        `json:"weekday_avg"`
	WeekendAvg float64        `json:"weekend_avg"`
}

// CohortDetail is the profile of one monthly cohort.
type CohortDetail struct {
	CohortMonth          string  `json:"cohort_month"`
	Segment              string  `json:"segment"`
	CohortSize           int64   `json:"cohort_size"`
	CurrentActiveUsers   int64   `json:"current_active_users"`
	CurrentRetentionRate float64 `json:"current_retention_rate"`
	ProfileBundle
	UserSegmentDistribution map[string]int64 `json:"user_segment_distribution"`
}

// DayRetention is the share of new visitors active n days after their
// first day.
type DayRetention struct {
	Day           int     `json:"day"`
	Users         int64   `json:"users"`
	RetentionRate float64 `json:"retention_rate"`
}

// MaxRetentionDays bounds DailyRetention.
const MaxRetentionDays = 30

var weekdayNames = [8]string{"", "周一", "周二", "周三", "周四", "周五", "周六", "周日"}

// isoWeekday maps time.Weekday (Sunday=0) onto 1=Monday..7=Sunday.
func isoWeekday(t time.Time) int {
	d := int(t.UTC().Weekday())
	if d == 0 {
		return 7
	}
	return d
}

// activity collects, per visitor, the set of months they were active in.
type activity struct {
	first  map[int64]int
	months map[int64]map[int]struct{}
}

func (e *Engine) monthlyActivity(ctx context.Context, f events.Filter) (*activity, error) {
	act := &activity{
		first:  make(map[int64]int),
		months: make(map[int64]map[int]struct{}),
	}
	err := e.scan(ctx, f, func(ev *events.Event) {
		m := monthIndex(ev.Timestamp)
		if cur, ok := act.first[ev.VisitorID]; !ok || m < cur {
			act.first[ev.VisitorID] = m
		}
		set, ok := act.months[ev.VisitorID]
		if !ok {
			set = make(map[int]struct{}, 4)
			act.months[ev.VisitorID] = set
		}
		set[m] = struct{}{}
	})
	if err != nil {
		return nil, err
	}
	return act, nil
}

// MonthlyRetention assigns every visitor to the month of their earliest
// event inside the window and counts, for each later month, how many of a
// cohort were active. Rows are ordered by cohort then month offset.
func (e *Engine) MonthlyRetention(ctx context.Context, w Window) ([]RetentionRow, error) {
	act, err := e.monthlyActivity(ctx, w.filter(e.segments.Current()))
	if err != nil {
		return nil, err
	}

	type cell struct{ cohort, diff int }
	users := make(map[cell]int64)
	mau := make(map[int]int64)
	for id, months := range act.months {
		cohort := act.first[id]
		for m := range months {
			users[cell{cohort, m - cohort}]++
			mau[m]++
		}
	}

	rows := make([]RetentionRow, 0, len(users))
	for c, n := range users {
		size := users[cell{c.cohort, 0}]
		actual := c.cohort + c.diff
		rows = append(rows, RetentionRow{
			CohortMonth:        monthFromIndex(c.cohort).Format(DateLayout),
			MonthDiff:          c.diff,
			UserCount:          n,
			CohortSize:         size,
			RetentionRate:      percent(float64(n), float64(size)),
			ActualMonth:        monthFromIndex(actual).Format(DateLayout),
			MonthlyActiveUsers: mau[actual],
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CohortMonth != rows[j].CohortMonth {
			return rows[i].CohortMonth < rows[j].CohortMonth
		}
		return rows[i].MonthDiff < rows[j].MonthDiff
	})
	return rows, nil
}

// WeekdayUsers counts distinct visitors per weekday. A visitor active on
// Monday and Friday counts once for each.
func (e *Engine) WeekdayUsers(ctx context.Context, w Window) (WeekdayReport, error) {
	var days [8]map[int64]struct{}
	for d := 1; d <= 7; d++ {
		days[d] = make(map[int64]struct{})
	}
	if err := e.scan(ctx, w.filter(e.segments.Current()), func(ev *events.Event) {
		days[isoWeekday(ev.Timestamp)][ev.VisitorID] = struct{}{}
	}); err != nil {
		return WeekdayReport{}, err
	}

	rep := WeekdayReport{Data: make([]WeekdayCount, 0, 7)}
	var weekday, weekend int64
	for d := 1; d <= 7; d++ {
		n := int64(len(days[d]))
		rep.Data = append(rep.Data, WeekdayCount{Weekday: d, WeekdayName: weekdayNames[d], UserCount: n})
		if d <= 5 {
			weekday += n
		} else {
			weekend += n
		}
	}
	rep.WeekdayAvg = round2(float64(weekday) / 5)
	rep.WeekendAvg = round2(float64(weekend) / 2)
	return rep, nil
}

// ParseCohortMonth accepts YYYY-MM or YYYY-MM-DD and returns the first day
// of that month.
func ParseCohortMonth(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01", DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, invalidf("cohort_month must be YYYY-MM or YYYY-MM-DD, got %q", s)
}

// CohortDetail profiles the visitors whose first event in the window falls
// in cohortMonth. A member counts as currently active when it has any event
// in the window.
func (e *Engine) CohortDetail(ctx context.Context, cohortMonth string, w Window) (*CohortDetail, error) {
	month, err := ParseCohortMonth(cohortMonth)
	if err != nil {
		return nil, err
	}
	target := monthIndex(month)

	a := e.segments.Current()
	act, err := e.monthlyActivity(ctx, w.filter(a))
	if err != nil {
		return nil, err
	}

	members := make(events.VisitorSet)
	var active int64
	for id, first := range act.first {
		if first != target {
			continue
		}
		members[id] = struct{}{}
		if len(act.months[id]) > 0 {
			active++
		}
	}

	size := int64(len(members))
	out := &CohortDetail{
		CohortMonth:             month.Format("2006-01"),
		Segment:                 string(w.Segment),
		CohortSize:              size,
		CurrentActiveUsers:      active,
		CurrentRetentionRate:    percent(float64(active), float64(size)),
		UserSegmentDistribution: segmentDistribution(a, members),
	}

	f := events.Filter{From: w.From, To: w.To, Visitors: members}
	bundle, err := e.profileBundle(ctx, f)
	if err != nil {
		return nil, err
	}
	out.ProfileBundle = *bundle
	return out, nil
}

// DailyRetention measures, for day offsets 0..days, the share of visitors
// active that many days after their first day in the window. days is
// clamped to [0, MaxRetentionDays].
func (e *Engine) DailyRetention(ctx context.Context, w Window, days int) ([]DayRetention, error) {
	if days < 0 {
		days = 0
	}
	if days > MaxRetentionDays {
		days = MaxRetentionDays
	}

	first := make(map[int64]time.Time)
	active := make(map[int64]map[time.Time]struct{})
	if err := e.scan(ctx, w.filter(e.segments.Current()), func(ev *events.Event) {
		d := dayOf(ev.Timestamp)
		if cur, ok := first[ev.VisitorID]; !ok || d.Before(cur) {
			first[ev.VisitorID] = d
		}
		set, ok := active[ev.VisitorID]
		if !ok {
			set = make(map[time.Time]struct{}, 2)
			active[ev.VisitorID] = set
		}
		set[d] = struct{}{}
	}); err != nil {
		return nil, err
	}

	counts := make([]int64, days+1)
	for id, start := range first {
		for d := range active[id] {
			n := int(d.Sub(start).Hours() / 24)
			if n >= 0 && n <= days {
				counts[n]++
			}
		}
	}

	total := float64(len(first))
	out := make([]DayRetention, days+1)
	for n := range out {
		out[n] = DayRetention{Day: n, Users: counts[n], RetentionRate: percent(float64(counts[n]), total)}
	}
	return out, nil
}
