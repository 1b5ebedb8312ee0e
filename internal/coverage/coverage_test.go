// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package coverage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewInfo_MissedIsSubsetOfAll(t *testing.T) {
	info := NewInfo([]int{2, 4, 5}, []int{4, 9})

	require.Equal(t, []int{2, 4, 5, 9}, info.All.Sorted())
	require.Equal(t, []int{4, 9}, info.Missed.Sorted())
	require.Equal(t, 2, info.Covered())
	require.InDelta(t, 50.0, info.Percent(), 0.001)
}

func TestInfo_PercentEmpty(t *testing.T) {
	require.Zero(t, NewInfo(nil, nil).Percent())
}

func TestMap_Status(t *testing.T) {
	// all lines: {2, 4, 5, 6, 9, 11}, missed: {9, 11}
	info := NewInfo([]int{2, 4, 5, 6, 9, 11}, []int{9, 11})
	m := NewMap(info, nil, nil)

	tests := []struct {
		name string
		line int
		text string
		want Status
	}{
		{"hit", 2, "x = compute()", Hit},
		{"miss", 9, "return err", Miss},
		{"not instrumented", 3, "y := 1", None},
		{"blank line in both sets", 11, "   ", None},
		{"hash comment", 4, "  # explain", None},
		{"slash comment", 5, "// explain", None},
		{"empty", 6, "", None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, m.Status(tt.line, tt.text))
		})
	}
}

func TestMap_LineFilter(t *testing.T) {
	info := NewInfo([]int{1, 2, 3}, []int{3})
	m := NewMap(info, NewLineSet(1, 3), nil)

	require.Equal(t, Hit, m.Status(1, "a()"))
	require.Equal(t, None, m.Status(2, "b()"))
	require.Equal(t, Miss, m.Status(3, "c()"))
}

func TestMap_CustomMarkers(t *testing.T) {
	info := NewInfo([]int{1, 2}, nil)
	m := NewMap(info, nil, []string{"--"})

	require.Equal(t, None, m.Status(1, "-- sql comment"))
	require.Equal(t, Hit, m.Status(2, "# not a comment here"))
}

func TestMap_Nil(t *testing.T) {
	require.Nil(t, NewMap(nil, nil, nil))

	var m *Map
	require.Equal(t, None, m.Status(1, "code()"))
}

func TestStatus_CSSClass(t *testing.T) {
	require.Equal(t, "lineno_coverage_hit", Hit.CSSClass())
	require.Equal(t, "lineno_coverage_miss", Miss.CSSClass())
	require.Equal(t, "", None.CSSClass())
	require.Equal(t, "miss", Miss.String())
}
