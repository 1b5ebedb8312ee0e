// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/sidediff/internal/coverage"
	"github.com/jeranaias/sidediff/internal/diff"
	"github.com/jeranaias/sidediff/internal/highlight"
)

var plain = Options{Highlight: highlight.Options{Disabled: true}}

func paneLines(pane string) []string {
	pane = strings.TrimPrefix(pane, "<pre>")
	pane = strings.TrimSuffix(pane, "</pre>")
	return strings.Split(strings.TrimSuffix(pane, "\n"), "\n")
}

func TestCompare_SingleModification(t *testing.T) {
	frag := Compare("a\nb\nc\n", "a\nx\nc\n", "notes.txt", plain)

	assert.Equal(t, []string{
		`<span class="lineno_q">1</span><span>a</span>`,
		`<span class="lineno_q lineno_leftchange">2</span><span class="left_diff_change">b</span>`,
		`<span class="lineno_q">3</span><span>c</span>`,
	}, paneLines(frag.Left))

	assert.Equal(t, []string{
		`<span class="lineno_q">1</span><span>a</span>`,
		`<span class="lineno_q lineno_rightchange">2</span><span class="right_diff_change">x</span>`,
		`<span class="lineno_q">3</span><span>c</span>`,
	}, paneLines(frag.Right))

	assert.Equal(t, 1, frag.Stats.Modified)
	assert.Equal(t, "", frag.Language)
}

func TestCompare_AbsentSideHasBlankGutter(t *testing.T) {
	frag := Compare("a\n", "a\nb\n", "notes.txt", plain)

	left := paneLines(frag.Left)
	right := paneLines(frag.Right)
	require.Len(t, left, 2)
	require.Len(t, right, 2)

	assert.Equal(t, `<span class="lineno_q lineno_leftadd"> </span><span class="left_diff_add"></span>`, left[1])
	assert.Equal(t, `<span class="lineno_q lineno_rightadd">2</span><span class="right_diff_add">b</span>`, right[1])
}

func TestCompare_DeletedRows(t *testing.T) {
	frag := Compare("p\nq\n", "p2\n", "notes.txt", plain)

	left := paneLines(frag.Left)
	right := paneLines(frag.Right)
	require.Len(t, left, 2)

	assert.Equal(t, `<span class="lineno_q lineno_leftdel">2</span><span class="left_diff_del">q</span>`, left[1])
	assert.Equal(t, `<span class="lineno_q lineno_rightdel"> </span><span class="right_diff_del"></span>`, right[1])
}

func TestCompare_PanesHaveEqualRowCounts(t *testing.T) {
	before := "one\ntwo\nthree\nfour\n"
	after := "zero\none\nthree\n4\nfive\nsix\n"

	frag := Compare(before, after, "notes.txt", plain)

	assert.Len(t, paneLines(frag.Left), len(frag.Diff.Rows))
	assert.Len(t, paneLines(frag.Right), len(frag.Diff.Rows))
}

func TestCompare_GutterWidthFollowsLineCount(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 12; i++ {
		sb.WriteString("line\n")
	}
	frag := Compare(sb.String(), sb.String(), "notes.txt", plain)

	lines := paneLines(frag.Left)
	assert.Equal(t, `<span class="lineno_q"> 1</span><span>line</span>`, lines[0])
	assert.Equal(t, `<span class="lineno_q">12</span><span>line</span>`, lines[11])
}

func TestCompare_CoverageOnChangedRightRows(t *testing.T) {
	before := "x = 0\ny = 0\n# old\nz = 1\n"
	after := "x = 1\ny = 2\n# new\nz = 1\n"
	opts := plain
	opts.Coverage = coverage.NewInfo([]int{1, 2, 3, 4}, []int{2, 4})

	frag := Compare(before, after, "calc.py", opts)
	right := paneLines(frag.Right)
	left := paneLines(frag.Left)
	require.Len(t, right, 4)

	assert.Contains(t, right[0], `class="lineno_q lineno_rightchange lineno_coverage_hit"`)
	assert.Contains(t, right[1], `class="lineno_q lineno_rightchange lineno_coverage_miss"`)
	// Comment lines and unchanged rows are never annotated.
	assert.NotContains(t, right[2], "lineno_coverage")
	assert.NotContains(t, right[3], "lineno_coverage")

	for _, line := range left {
		assert.NotContains(t, line, "lineno_coverage")
	}
}

func TestCompare_CoverageLineFilter(t *testing.T) {
	opts := plain
	opts.Coverage = coverage.NewInfo([]int{1, 2}, []int{1, 2})
	opts.LineFilter = coverage.NewLineSet(2)

	right := paneLines(Compare("a\nb\n", "c\nd\n", "calc.py", opts).Right)

	assert.NotContains(t, right[0], "lineno_coverage")
	assert.Contains(t, right[1], "lineno_coverage_miss")
}

func TestCompare_EscapesPlainText(t *testing.T) {
	frag := Compare("", "if a < b && c > d {\n", "notes.txt", plain)

	right := paneLines(frag.Right)
	require.Len(t, right, 1)
	assert.Contains(t, right[0], "if a &lt; b &amp;&amp; c &gt; d {")
}

func TestCompare_ExpandsTabs(t *testing.T) {
	opts := plain
	opts.TabSize = 4

	frag := Compare("", "\tx\n", "notes.txt", opts)

	assert.Contains(t, frag.Right, "<span class=\"right_diff_add\">    x</span>")
	assert.Equal(t, []string{"    x"}, frag.Diff.Right)
}

func TestCompare_HighlightsGo(t *testing.T) {
	src := "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n"

	frag := Compare(src, src, "main.go", Options{})

	assert.Equal(t, "Go", frag.Language)
	assert.Contains(t, frag.Right, `<span class="kn">package</span>`)
	assert.Len(t, paneLines(frag.Right), 5)
}

func TestCompare_Deterministic(t *testing.T) {
	before := "package main\n\nfunc a() {}\n"
	after := "package main\n\nfunc b() {}\nfunc c() {}\n"

	first := Compare(before, after, "main.go", Options{})
	second := Compare(before, after, "main.go", Options{})

	assert.Equal(t, first.Left, second.Left)
	assert.Equal(t, first.Right, second.Right)
}

func TestPaneRenderer_FallsBackToRawText(t *testing.T) {
	result := diff.Align([]string{"<a>"}, []string{"<b>", "c & d"})

	// Empty buffer: every body falls back to the escaped raw line.
	renderer := NewPaneRenderer(diff.Right, highlight.NewLookup(nil, 0), nil)
	lines := renderer.Lines(result)

	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.True(t, line.Fallback)
	}
	assert.Equal(t, `<span class="right_diff_change">&lt;b&gt;</span>`, lines[0].Body)
	assert.Equal(t, `<span class="right_diff_add">c &amp; d</span>`, lines[1].Body)
}

func TestPaneRenderer_LeftIgnoresCoverage(t *testing.T) {
	result := diff.Align([]string{"a"}, []string{"b"})
	cov := coverage.NewMap(coverage.NewInfo([]int{1}, []int{1}), nil, nil)

	left := NewPaneRenderer(diff.Left, nil, cov).Lines(result)
	right := NewPaneRenderer(diff.Right, nil, cov).Lines(result)

	assert.Equal(t, coverage.None, left[0].Coverage)
	assert.Equal(t, coverage.Miss, right[0].Coverage)
}

func TestClasses(t *testing.T) {
	tests := []struct {
		side   diff.Side
		kind   diff.ChangeKind
		lineNo string
		body   string
	}{
		{diff.Left, diff.Unchanged, "", ""},
		{diff.Left, diff.Modified, "lineno_leftchange", "left_diff_change"},
		{diff.Left, diff.Deleted, "lineno_leftdel", "left_diff_del"},
		{diff.Left, diff.Added, "lineno_leftadd", "left_diff_add"},
		{diff.Right, diff.Unchanged, "", ""},
		{diff.Right, diff.Modified, "lineno_rightchange", "right_diff_change"},
		{diff.Right, diff.Deleted, "lineno_rightdel", "right_diff_del"},
		{diff.Right, diff.Added, "lineno_rightadd", "right_diff_add"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.lineNo, lineNoClass(tt.side, tt.kind), "%s %s", tt.side, tt.kind)
		assert.Equal(t, tt.body, bodyClass(tt.side, tt.kind), "%s %s", tt.side, tt.kind)
	}
}
