// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package main

import (
	"time"

	"github.com/tomtom215/shopscope/internal/events"
)

// demoEvents builds a small deterministic event log spanning May to July
// 2015. Under the default rules it yields six visitors in each behavioral
// segment plus a dozen casual browsers.
func demoEvents() []events.Event {
	start := time.Date(2015, time.May, 3, 0, 0, 0, 0, time.UTC)
	var evs []events.Event

	add := func(visitor int64, at time.Time, typ events.Type, item int64) {
		evs = append(evs, events.Event{
			VisitorID:  visitor,
			Timestamp:  at,
			Type:       typ,
			ItemID:     item,
			CategoryID: 1000 + item%4,
		})
	}

	for i := int64(0); i < 6; i++ {
		first := start.AddDate(0, 0, int(i)*11).Add(time.Duration(9+i) * time.Hour)

		// Hesitant: many views, never buys.
		hesitant := 1 + i
		for v := int64(0); v < 12; v++ {
			add(hesitant, first.Add(time.Duration(v)*26*time.Hour), events.View, 100+(i+v)%8)
		}

		// Impulsive: a few views and a purchase within the hour.
		impulsive := 101 + i
		for v := int64(0); v < 3; v++ {
			add(impulsive, first.Add(time.Duration(v)*10*time.Minute), events.View, 100+i)
		}
		add(impulsive, first.Add(40*time.Minute), events.Transaction, 100+i)
		add(impulsive, first.Add(50*time.Minute), events.Transaction, 104)
		add(impulsive, first.AddDate(0, 1, 0), events.View, 100+i)

		// Collector: fills the cart over days, then buys part of it.
		collector := 201 + i
		for v := int64(0); v < 10; v++ {
			at := first.Add(time.Duration(v) * 7 * time.Hour)
			add(collector, at, events.View, 110+v%5)
			if v%2 == 0 {
				add(collector, at.Add(5*time.Minute), events.AddToCart, 110+v%5)
			}
		}
		add(collector, first.AddDate(0, 0, 4), events.Transaction, 110)
		add(collector, first.AddDate(0, 0, 4).Add(time.Minute), events.Transaction, 112)
	}

	// Casual browsers.
	for i := int64(0); i < 12; i++ {
		at := start.AddDate(0, 0, int(i)*6).Add(time.Duration(12+i%10) * time.Hour)
		add(301+i, at, events.View, 100+i%12)
		add(301+i, at.Add(3*time.Minute), events.View, 101+i%12)
	}
	return evs
}
