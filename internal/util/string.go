// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// DefaultTabSize is the tab stop width used when none is configured.
const DefaultTabSize = 8

// SplitLines splits text into lines. A single trailing newline does not
// produce an extra empty line, and a trailing "\r" is dropped from each line.
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// ExpandTabs replaces each tab with spaces up to the next tab stop and strips
// a trailing line terminator. Columns are display columns, so wide runes
// advance the column by two. A tabSize of zero or less removes tabs.
func ExpandTabs(line string, tabSize int) string {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	if !strings.Contains(line, "\t") {
		return line
	}

	var sb strings.Builder
	sb.Grow(len(line) + tabSize)
	col := 0
	for _, r := range line {
		if r == '\t' {
			if tabSize <= 0 {
				continue
			}
			pad := tabSize - col%tabSize
			sb.WriteString(strings.Repeat(" ", pad))
			col += pad
			continue
		}
		sb.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return sb.String()
}

// ExpandAll applies ExpandTabs to every line.
func ExpandAll(lines []string, tabSize int) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = ExpandTabs(line, tabSize)
	}
	return out
}

// TruncateWidth truncates a string to a maximum display width, appending
// "..." when it had to cut.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}
