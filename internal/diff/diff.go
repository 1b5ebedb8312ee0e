// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff aligns the lines of two versions of a file into rows for a
// side-by-side view.
package diff

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// =============================================================================
// LINE REFERENCES
// =============================================================================

// LineRef points at a 1-based line of one version, or at nothing.
// The zero value is Absent.
type LineRef struct {
	index int
}

// Absent is the reference used for the missing side of an added or deleted row.
var Absent = LineRef{}

// Present returns a reference to the 1-based line index.
func Present(index int) LineRef {
	if index < 1 {
		panic(fmt.Sprintf("diff: line index must be >= 1, got %d", index))
	}
	return LineRef{index: index}
}

// Index returns the line index and whether the reference is present.
func (r LineRef) Index() (int, bool) {
	return r.index, r.index > 0
}

// IsPresent reports whether the reference points at a line.
func (r LineRef) IsPresent() bool {
	return r.index > 0
}

// String returns the line number, or "-" when absent.
func (r LineRef) String() string {
	if r.index == 0 {
		return "-"
	}
	return strconv.Itoa(r.index)
}

// =============================================================================
// SIDES
// =============================================================================

// Side selects one pane of the comparison.
type Side int

const (
	// Left is the "before" version
	Left Side = iota
	// Right is the "after" version
	Right
)

// String returns "left" or "right".
func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// =============================================================================
// CHANGE KINDS
// =============================================================================

// ChangeKind classifies an aligned row.
type ChangeKind int

const (
	// Unchanged rows hold the same line on both sides
	Unchanged ChangeKind = iota
	// Modified rows pair a left line with a different right line
	Modified
	// Added rows only exist on the right
	Added
	// Deleted rows only exist on the left
	Deleted
)

// String returns the string representation of a change kind.
func (k ChangeKind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Modified:
		return "modified"
	case Added:
		return "added"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// =============================================================================
// ALIGNED ROWS
// =============================================================================

// AlignedRow is one synchronized output line. At least one side is present.
type AlignedRow struct {
	Left     LineRef // Line in the before version
	Right    LineRef // Line in the after version
	IsChange bool    // True when the row belongs to a changed block
}

// Ref returns the reference for one side of the row.
func (r AlignedRow) Ref(side Side) LineRef {
	if side == Left {
		return r.Left
	}
	return r.Right
}

// Kind classifies the row. It is a pure function of the row.
func (r AlignedRow) Kind() ChangeKind {
	return Classify(r)
}

// Classify derives the change kind of a row.
func Classify(row AlignedRow) ChangeKind {
	switch {
	case !row.Left.IsPresent():
		return Added
	case !row.Right.IsPresent():
		return Deleted
	case row.IsChange:
		return Modified
	default:
		return Unchanged
	}
}

// =============================================================================
// DIFF RESULT
// =============================================================================

// DiffResult is the ordered list of rows for one comparison, together with
// the line sequences the rows point into.
type DiffResult struct {
	Rows  []AlignedRow
	Left  []string // Before lines, tabs expanded
	Right []string // After lines, tabs expanded
}

// Lines returns the line sequence for a side.
func (d *DiffResult) Lines(side Side) []string {
	if side == Left {
		return d.Left
	}
	return d.Right
}

// Text returns the raw text a row references on one side.
// An absent side has no text.
func (d *DiffResult) Text(row AlignedRow, side Side) string {
	idx, ok := row.Ref(side).Index()
	if !ok {
		return ""
	}
	lines := d.Lines(side)
	if idx > len(lines) {
		return ""
	}
	return lines[idx-1]
}

// =============================================================================
// ALIGNMENT
// =============================================================================

// Align pairs the lines of before and after into rows.
//
// Blocks come from a line-level edit script and are emitted in script order.
// Inside a replace block the first min(m, n) lines are paired as
// modifications; the excess lines of the longer side become pure additions
// or deletions placed after the pairs.
func Align(before, after []string) *DiffResult {
	result := &DiffResult{
		Left:  before,
		Right: after,
		Rows:  make([]AlignedRow, 0, max(len(before), len(after))),
	}

	matcher := difflib.NewMatcherWithJunk(before, after, false, nil)
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for i, j := op.I1, op.J1; i < op.I2; i, j = i+1, j+1 {
				result.Rows = append(result.Rows, AlignedRow{
					Left:  Present(i + 1),
					Right: Present(j + 1),
				})
			}
		case 'd':
			for i := op.I1; i < op.I2; i++ {
				result.Rows = append(result.Rows, AlignedRow{Left: Present(i + 1), IsChange: true})
			}
		case 'i':
			for j := op.J1; j < op.J2; j++ {
				result.Rows = append(result.Rows, AlignedRow{Right: Present(j + 1), IsChange: true})
			}
		case 'r':
			m, n := op.I2-op.I1, op.J2-op.J1
			for k := 0; k < max(m, n); k++ {
				row := AlignedRow{IsChange: true}
				if k < m {
					row.Left = Present(op.I1 + k + 1)
				}
				if k < n {
					row.Right = Present(op.J1 + k + 1)
				}
				result.Rows = append(result.Rows, row)
			}
		}
	}

	return result
}

// =============================================================================
// DIFF STATS
// =============================================================================

// DiffStats holds row counts per change kind.
type DiffStats struct {
	Unchanged int
	Modified  int
	Added     int
	Deleted   int
	FileMode  string // "new", "deleted", "modified", "unchanged"
}

// Stats counts the rows of a result by kind.
func Stats(result *DiffResult) DiffStats {
	var stats DiffStats
	for _, row := range result.Rows {
		switch row.Kind() {
		case Unchanged:
			stats.Unchanged++
		case Modified:
			stats.Modified++
		case Added:
			stats.Added++
		case Deleted:
			stats.Deleted++
		}
	}

	switch {
	case len(result.Left) == 0 && len(result.Right) > 0:
		stats.FileMode = "new"
	case len(result.Left) > 0 && len(result.Right) == 0:
		stats.FileMode = "deleted"
	case stats.Modified+stats.Added+stats.Deleted == 0:
		stats.FileMode = "unchanged"
	default:
		stats.FileMode = "modified"
	}

	return stats
}

// HasChanges reports whether any row is not Unchanged.
func (s DiffStats) HasChanges() bool {
	return s.Modified+s.Added+s.Deleted > 0
}

// Summary returns a human-readable summary such as "Modified ~1 +2 -0".
func (s DiffStats) Summary() string {
	var parts []string

	switch s.FileMode {
	case "new":
		parts = append(parts, "New file")
	case "deleted":
		parts = append(parts, "File deleted")
	case "unchanged":
		return "Unchanged"
	default:
		parts = append(parts, "Modified")
	}

	parts = append(parts,
		fmt.Sprintf("~%d", s.Modified),
		fmt.Sprintf("+%d", s.Added),
		fmt.Sprintf("-%d", s.Deleted),
	)

	return strings.Join(parts, " ")
}
