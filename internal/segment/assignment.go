// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package segment

import (
	"sort"

	"github.com/tomtom215/shopscope/internal/events"
)

// Assignment maps each segment to the ascending, deduplicated ids of its
// members. It is immutable once built.
type Assignment struct {
	members map[Name][]int64
	sets    map[Name]events.VisitorSet
}

// NewAssignment builds an assignment from per-segment id lists. Lists are
// sorted and deduplicated; missing segments are empty.
func NewAssignment(members map[Name][]int64) *Assignment {
	a := &Assignment{
		members: make(map[Name][]int64, len(Names)),
		sets:    make(map[Name]events.VisitorSet, len(Names)),
	}
	for _, n := range Names {
		ids := normalize(members[n])
		a.members[n] = ids
		a.sets[n] = events.NewVisitorSet(ids)
	}
	return a
}

func normalize(ids []int64) []int64 {
	out := make([]int64, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	w := 0
	for i, id := range out {
		if i > 0 && id == out[w-1] {
			continue
		}
		out[w] = id
		w++
	}
	return out[:w]
}

// Members returns the sorted ids of segment n. The slice must not be modified.
func (a *Assignment) Members(n Name) []int64 {
	return a.members[n]
}

// Size returns the number of visitors in n.
func (a *Assignment) Size(n Name) int {
	return len(a.members[n])
}

// Contains reports whether id belongs to n.
func (a *Assignment) Contains(n Name, id int64) bool {
	return a.sets[n].Contains(id)
}

// Visitors returns the membership set used to filter scans. All returns nil,
// meaning no restriction, since every visitor of the substrate is in All.
func (a *Assignment) Visitors(n Name) events.VisitorSet {
	if n == All {
		return nil
	}
	return a.sets[n]
}

// Sizes returns the size of every segment keyed by name.
func (a *Assignment) Sizes() map[string]int {
	out := make(map[string]int, len(Names))
	for _, n := range Names {
		out[string(n)] = len(a.members[n])
	}
	return out
}

// Payload returns the lists keyed by segment name for persistence.
func (a *Assignment) Payload() map[string][]int64 {
	out := make(map[string][]int64, len(Names))
	for _, n := range Names {
		out[string(n)] = a.members[n]
	}
	return out
}

// assignmentFromPayload is the inverse of Payload. Unknown keys are ignored.
func assignmentFromPayload(p map[string][]int64) *Assignment {
	m := make(map[Name][]int64, len(Names))
	for _, n := range Names {
		m[n] = p[string(n)]
	}
	return NewAssignment(m)
}
