// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func fixture() []Event {
	return []Event{
		{VisitorID: 1, Timestamp: ts("2015-06-01T09:00:00Z"), Type: View, ItemID: 10, CategoryID: 100},
		{VisitorID: 1, Timestamp: ts("2015-06-01T09:30:00Z"), Type: AddToCart, ItemID: 10, CategoryID: 100},
		{VisitorID: 2, Timestamp: ts("2015-06-02T23:59:59Z"), Type: View, ItemID: 11, CategoryID: NoCategory},
		{VisitorID: 3, Timestamp: ts("2015-06-03T00:00:00Z"), Type: Transaction, ItemID: 10, CategoryID: 100},
	}
}

func collect(t *testing.T, src Source, f Filter) []Event {
	t.Helper()
	var out []Event
	require.NoError(t, src.Scan(context.Background(), f, func(e Event) error {
		out = append(out, e)
		return nil
	}))
	return out
}

func TestParseType(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"view", "addtocart", "transaction"} {
		got, err := ParseType(s)
		require.NoError(t, err)
		assert.Equal(t, Type(s), got)
	}
	_, err := ParseType("refund")
	assert.Error(t, err)
}

func TestFilterDateWindowInclusive(t *testing.T) {
	t.Parallel()

	src := NewMemory(fixture())
	got := collect(t, src, Filter{From: date("2015-06-02"), To: date("2015-06-02")})
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].VisitorID)
}

func TestFilterPredicates(t *testing.T) {
	t.Parallel()

	src := NewMemory(fixture())
	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 4},
		{"type", Filter{}.WithType(View), 2},
		{"types", Filter{}.WithType(AddToCart, Transaction), 2},
		{"hour", Filter{}.WithHour(9), 2},
		{"item", Filter{}.WithItem(10), 3},
		{"category", Filter{}.WithCategory(NoCategory), 1},
		{"visitors", Filter{}.WithVisitors(NewVisitorSet([]int64{1, 3})), 3},
		{"empty visitor set", Filter{}.WithVisitors(VisitorSet{}), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, collect(t, src, tt.filter), tt.want)
		})
	}
}

func TestScanStopsOnCallbackError(t *testing.T) {
	t.Parallel()

	stop := errors.New("stop")
	n := 0
	err := NewMemory(fixture()).Scan(context.Background(), Filter{}, func(Event) error {
		n++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, n)
}

func TestMemoryFingerprintTracksContent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory(fixture())
	fp1, err := m.Fingerprint(ctx)
	require.NoError(t, err)

	same, _ := NewMemory(fixture()).Fingerprint(ctx)
	assert.Equal(t, fp1, same)

	evs := fixture()
	evs[0].ItemID = 99
	m.Replace(evs)
	fp2, _ := m.Fingerprint(ctx)
	assert.NotEqual(t, fp1, fp2)
}
