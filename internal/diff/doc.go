// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff aligns the lines of two versions of a file into rows for a
// side-by-side view.
//
// # Key Types
//
//   - LineRef: a 1-based line index or Absent
//   - AlignedRow: left and right references plus a change flag
//   - ChangeKind: Unchanged, Modified, Added or Deleted, derived from a row
//   - DiffResult: ordered rows and the line sequences they point into
//   - DiffStats: per-kind row counts and a short summary
//
// # Usage
//
//	result := diff.Align(beforeLines, afterLines)
//	for _, row := range result.Rows {
//	    fmt.Println(row.Left, row.Right, row.Kind())
//	}
//
// Projecting the rows onto present left references reproduces the before
// lines in order, and likewise for the right side.
package diff
