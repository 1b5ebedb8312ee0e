// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package coverage reads line coverage reports and classifies lines of the
// "after" version as hit, missed or not annotated.
package coverage

import (
	"sort"
	"strings"
)

// =============================================================================
// LINE SETS
// =============================================================================

// LineSet is a set of 1-based line numbers.
type LineSet map[int]struct{}

// NewLineSet builds a set from line numbers.
func NewLineSet(lines ...int) LineSet {
	set := make(LineSet, len(lines))
	for _, line := range lines {
		set[line] = struct{}{}
	}
	return set
}

// Has reports whether line is in the set.
func (s LineSet) Has(line int) bool {
	_, ok := s[line]
	return ok
}

// Add inserts line into the set.
func (s LineSet) Add(line int) {
	s[line] = struct{}{}
}

// Sorted returns the members in ascending order.
func (s LineSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for line := range s {
		out = append(out, line)
	}
	sort.Ints(out)
	return out
}

// =============================================================================
// FILE COVERAGE
// =============================================================================

// Info is the coverage of one file: every instrumented line and the subset
// that was never executed. Missed is always a subset of All.
type Info struct {
	All    LineSet
	Missed LineSet
}

// NewInfo builds an Info. Missed lines are added to All if a report left
// them out.
func NewInfo(all, missed []int) *Info {
	info := &Info{All: NewLineSet(all...), Missed: NewLineSet(missed...)}
	for line := range info.Missed {
		info.All.Add(line)
	}
	return info
}

// Covered returns the number of instrumented lines that were executed.
func (i *Info) Covered() int {
	return len(i.All) - len(i.Missed)
}

// Percent returns executed lines as a percentage of instrumented lines.
func (i *Info) Percent() float64 {
	if len(i.All) == 0 {
		return 0
	}
	return 100 * float64(i.Covered()) / float64(len(i.All))
}

// =============================================================================
// STATUS
// =============================================================================

// Status is the coverage outcome of one line.
type Status int

const (
	// None means the line carries no annotation
	None Status = iota
	// Hit means the line was executed
	Hit
	// Miss means the line was instrumented but never executed
	Miss
)

// String returns the string representation of a status.
func (s Status) String() string {
	switch s {
	case Hit:
		return "hit"
	case Miss:
		return "miss"
	default:
		return "none"
	}
}

// CSSClass returns the gutter class for the status, "" for None.
func (s Status) CSSClass() string {
	switch s {
	case Hit:
		return "lineno_coverage_hit"
	case Miss:
		return "lineno_coverage_miss"
	default:
		return ""
	}
}

// =============================================================================
// COVERAGE MAP
// =============================================================================

// DefaultCommentMarkers are line prefixes that are never annotated.
var DefaultCommentMarkers = []string{"#", "//"}

// Map classifies lines of one file against its coverage.
// A nil *Map classifies every line as None.
type Map struct {
	info    *Info
	filter  LineSet
	markers []string
}

// NewMap builds a Map. A nil or empty filter admits every line; nil
// markers means DefaultCommentMarkers.
func NewMap(info *Info, filter LineSet, markers []string) *Map {
	if info == nil {
		return nil
	}
	if markers == nil {
		markers = DefaultCommentMarkers
	}
	return &Map{info: info, filter: filter, markers: markers}
}

// Status returns the coverage outcome for a line given its text. Blank and
// comment lines, and lines excluded by the filter, are None.
func (m *Map) Status(line int, text string) Status {
	if m == nil {
		return None
	}

	content := strings.TrimSpace(text)
	if content == "" || m.isComment(content) {
		return None
	}
	if len(m.filter) > 0 && !m.filter.Has(line) {
		return None
	}

	switch {
	case m.info.Missed.Has(line):
		return Miss
	case m.info.All.Has(line):
		return Hit
	default:
		return None
	}
}

func (m *Map) isComment(content string) bool {
	for _, marker := range m.markers {
		if marker != "" && strings.HasPrefix(content, marker) {
			return true
		}
	}
	return false
}
