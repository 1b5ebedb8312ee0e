// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Shared helper functions used across sidediff commands.

package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/sidediff/internal/coverage"
)

// formatDurationShort formats a short duration string.
func formatDurationShort(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", m, s)
}

// ParseLineSet parses a line filter such as "3,7-9,12" into a LineSet.
// An empty string yields nil (no filter).
func ParseLineSet(s string) (coverage.LineSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	set := coverage.NewLineSet()
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(part, "-")
		start, err := ParseIntWithValidation(strings.TrimSpace(lo), "line number")
		if err != nil {
			return nil, &ValidationError{Field: "lines", Value: s, Reason: err.Error(), Example: "--lines 3,7-9,12"}
		}
		end := start
		if isRange {
			end, err = ParseIntWithValidation(strings.TrimSpace(hi), "line number")
			if err != nil {
				return nil, &ValidationError{Field: "lines", Value: s, Reason: err.Error(), Example: "--lines 3,7-9,12"}
			}
		}
		if end < start {
			return nil, &ValidationError{Field: "lines", Value: part, Reason: "range end before start"}
		}
		for n := start; n <= end; n++ {
			set.Add(n)
		}
	}
	return set, nil
}

// displayPath returns path relative to base when it lies inside base,
// otherwise path unchanged. The result is slash-separated.
func displayPath(path, base string) string {
	if base == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// parseTabSize validates a --tab-size value.
func parseTabSize(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, &ValidationError{Field: "tab-size", Value: s, Reason: "must be a non-negative integer", Example: "--tab-size 4"}
	}
	return n, nil
}
