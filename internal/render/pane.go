// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"html"
	"strconv"
	"strings"

	"github.com/jeranaias/sidediff/internal/coverage"
	"github.com/jeranaias/sidediff/internal/diff"
	"github.com/jeranaias/sidediff/internal/highlight"
)

// =============================================================================
// CSS CLASS CONTRACT
// =============================================================================

// Class names shared with the page stylesheet.
const (
	ClassLineNo = "lineno_q"

	ClassLineNoLeftChange  = "lineno_leftchange"
	ClassLineNoLeftDel     = "lineno_leftdel"
	ClassLineNoLeftAdd     = "lineno_leftadd"
	ClassLineNoRightChange = "lineno_rightchange"
	ClassLineNoRightDel    = "lineno_rightdel"
	ClassLineNoRightAdd    = "lineno_rightadd"

	ClassLeftDiffChange  = "left_diff_change"
	ClassLeftDiffDel     = "left_diff_del"
	ClassLeftDiffAdd     = "left_diff_add"
	ClassRightDiffChange = "right_diff_change"
	ClassRightDiffDel    = "right_diff_del"
	ClassRightDiffAdd    = "right_diff_add"
)

// lineNoClass returns the gutter class for a row kind on a side.
func lineNoClass(side diff.Side, kind diff.ChangeKind) string {
	switch kind {
	case diff.Modified:
		if side == diff.Left {
			return ClassLineNoLeftChange
		}
		return ClassLineNoRightChange
	case diff.Deleted:
		if side == diff.Left {
			return ClassLineNoLeftDel
		}
		return ClassLineNoRightDel
	case diff.Added:
		if side == diff.Left {
			return ClassLineNoLeftAdd
		}
		return ClassLineNoRightAdd
	default:
		return ""
	}
}

// bodyClass returns the content class for a row kind on a side.
func bodyClass(side diff.Side, kind diff.ChangeKind) string {
	switch kind {
	case diff.Modified:
		if side == diff.Left {
			return ClassLeftDiffChange
		}
		return ClassRightDiffChange
	case diff.Deleted:
		if side == diff.Left {
			return ClassLeftDiffDel
		}
		return ClassRightDiffDel
	case diff.Added:
		if side == diff.Left {
			return ClassLeftDiffAdd
		}
		return ClassRightDiffAdd
	default:
		return ""
	}
}

// =============================================================================
// PANE RENDERER
// =============================================================================

// Line is the markup of one rendered row on one side.
type Line struct {
	Gutter   string          // Line number span
	Body     string          // Content span
	Coverage coverage.Status // Right side only
	Fallback bool            // Body is raw text because no highlight was found
}

// PaneRenderer renders every row of a comparison for one side.
type PaneRenderer struct {
	side     diff.Side
	lookup   *highlight.Lookup
	coverage *coverage.Map
}

// NewPaneRenderer creates a renderer. The coverage map is only consulted
// on the right side and may be nil.
func NewPaneRenderer(side diff.Side, lookup *highlight.Lookup, cov *coverage.Map) *PaneRenderer {
	if side == diff.Left {
		cov = nil
	}
	return &PaneRenderer{side: side, lookup: lookup, coverage: cov}
}

// Lines renders one Line per row, in row order.
func (p *PaneRenderer) Lines(result *diff.DiffResult) []Line {
	width := len(strconv.Itoa(len(result.Lines(p.side))))
	lines := make([]Line, 0, len(result.Rows))

	for _, row := range result.Rows {
		kind := row.Kind()
		ref := row.Ref(p.side)

		line := Line{}
		body, ok := p.lookup.Get(ref)
		if !ok {
			body = html.EscapeString(result.Text(row, p.side))
			line.Fallback = true
		}

		idx, present := ref.Index()
		if present && kind != diff.Unchanged {
			line.Coverage = p.coverage.Status(idx, result.Text(row, p.side))
		}

		number := ""
		if present {
			number = strconv.Itoa(idx)
		}
		line.Gutter = span(padLeft(number, width), ClassLineNo, lineNoClass(p.side, kind), line.Coverage.CSSClass())
		line.Body = span(body, bodyClass(p.side, kind))
		lines = append(lines, line)
	}

	return lines
}

// Render returns the pane as a <pre> block, one line per row.
func (p *PaneRenderer) Render(result *diff.DiffResult) string {
	var sb strings.Builder
	sb.WriteString("<pre>")
	for _, line := range p.Lines(result) {
		sb.WriteString(line.Gutter)
		sb.WriteString(line.Body)
		sb.WriteString("\n")
	}
	sb.WriteString("</pre>")
	return sb.String()
}

// span wraps content in a span carrying the non-empty classes.
func span(content string, classes ...string) string {
	var names []string
	for _, class := range classes {
		if class != "" {
			names = append(names, class)
		}
	}
	if len(names) == 0 {
		return "<span>" + content + "</span>"
	}
	return `<span class="` + strings.Join(names, " ") + `">` + content + "</span>"
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
