// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render produces the two HTML panes of a side-by-side comparison.
//
// Compare runs the whole pipeline for one file: tab expansion, alignment,
// one highlighting pass per side, and a PaneRenderer per side. Each pane is
// a <pre> block with one line per aligned row:
//
//	<span class="lineno_q lineno_rightchange lineno_coverage_miss">12</span><span class="right_diff_change">...</span>
//
// Unchanged rows carry no change class. Rows with no line on a side get a
// blank gutter. When the highlighted buffer has no entry for a row, the raw
// text of that side is escaped and used instead.
package render
