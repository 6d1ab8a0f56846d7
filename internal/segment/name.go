// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package segment

import "strings"

// Name identifies a behavioral segment.
type Name string

const (
	All       Name = "All"
	Hesitant  Name = "Hesitant"
	Impulsive Name = "Impulsive"
	Collector Name = "Collector"
)

// Names lists every segment in display order.
var Names = []Name{All, Hesitant, Impulsive, Collector}

// ParseName maps s to a segment. Matching ignores case; anything unknown,
// including the empty string, falls back to All.
func ParseName(s string) Name {
	for _, n := range Names {
		if strings.EqualFold(string(n), strings.TrimSpace(s)) {
			return n
		}
	}
	return All
}
