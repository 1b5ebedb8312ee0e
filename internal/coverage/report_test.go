// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package coverage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const coberturaSample = `<?xml version="1.0" ?>
<coverage version="7.2" line-rate="0.5">
  <sources>
    <source>src</source>
  </sources>
  <packages>
    <package name="app">
      <classes>
        <class name="calc.py" filename="app/calc.py">
          <lines>
            <line number="1" hits="1"/>
            <line number="2" hits="0"/>
            <line number="4" hits="3"/>
          </lines>
        </class>
        <class name="calc.py$Inner" filename="app/calc.py">
          <lines>
            <line number="2" hits="0"/>
            <line number="6" hits="0"/>
          </lines>
        </class>
      </classes>
    </package>
  </packages>
</coverage>
`

const goProfileSample = `mode: set
example.com/proj/pkg/calc.go:3.20,5.2 1 1
example.com/proj/pkg/calc.go:7.20,9.2 1 0
example.com/proj/pkg/calc.go:9.2,10.3 1 1
`

func TestParseReport_Cobertura(t *testing.T) {
	report, err := ParseReport([]byte(coberturaSample), FormatAuto)
	require.NoError(t, err)
	require.Equal(t, FormatCobertura, report.Format)
	require.Equal(t, []string{"src"}, report.Sources)

	info, ok := report.Files["app/calc.py"]
	require.True(t, ok)
	require.Equal(t, []int{1, 2, 4, 6}, info.All.Sorted())
	require.Equal(t, []int{2, 6}, info.Missed.Sorted())
}

func TestParseReport_GoProfile(t *testing.T) {
	report, err := ParseReport([]byte(goProfileSample), FormatAuto)
	require.NoError(t, err)
	require.Equal(t, FormatGoProfile, report.Format)

	info, ok := report.Files["example.com/proj/pkg/calc.go"]
	require.True(t, ok)
	require.Equal(t, []int{3, 4, 5, 7, 8, 9, 10}, info.All.Sorted())
	// Line 9 is shared with a block that ran.
	require.Equal(t, []int{7, 8}, info.Missed.Sorted())
}

func TestParseReport_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"unrecognized", "not a report", FormatAuto},
		{"truncated xml", "<coverage><packages>", FormatAuto},
		{"class without filename", `<coverage><packages><package><classes><class/></classes></package></packages></coverage>`, FormatCobertura},
		{"bad line number", `<coverage><packages><package><classes><class filename="a.py"><lines><line number="0" hits="1"/></lines></class></classes></package></packages></coverage>`, FormatCobertura},
		{"bad profile line", "mode: set\nthis is not a block\n", FormatAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReport([]byte(tt.data), tt.format)
			require.ErrorIs(t, err, ErrMalformedReport)
		})
	}
}

func TestReport_Find(t *testing.T) {
	cob, err := ParseReport([]byte(coberturaSample), FormatAuto)
	require.NoError(t, err)
	gop, err := ParseReport([]byte(goProfileSample), FormatAuto)
	require.NoError(t, err)

	_, ok := cob.Find("app/calc.py", "")
	require.True(t, ok, "exact path")

	_, ok = cob.Find("src/app/calc.py", "")
	require.True(t, ok, "below declared source")

	_, ok = gop.Find("pkg/calc.go", "")
	require.True(t, ok, "import path suffix")

	_, ok = gop.Find("calc.go", "")
	require.True(t, ok, "base name suffix")

	_, ok = cob.Find("app/other.py", "")
	require.False(t, ok)
}

func TestReport_FindPrefersClosestImportPath(t *testing.T) {
	report, err := ParseReport([]byte("mode: set\n"+
		"example.com/m/cmd/main.go:1.1,1.10 1 0\n"+
		"example.com/m/main.go:1.1,1.10 1 1\n"), FormatGoProfile)
	require.NoError(t, err)

	info, ok := report.Find("main.go", "")
	require.True(t, ok)
	require.False(t, info.Missed.Has(1), "root main.go resolved to cmd/main.go")

	info, ok = report.Find("cmd/main.go", "")
	require.True(t, ok)
	require.True(t, info.Missed.Has(1))
}

func TestReport_FindUsesModulePath(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/m\n\ngo 1.24\n"), 0644))

	report, err := ParseReport([]byte("mode: set\n"+
		"a/main.go:1.1,1.10 1 0\n"+
		"example.com/m/main.go:1.1,1.10 1 1\n"), FormatGoProfile)
	require.NoError(t, err)

	info, ok := report.Find("main.go", root)
	require.True(t, ok)
	require.False(t, info.Missed.Has(1))

	// Without a go.mod the shortest suffix match wins
	info, ok = report.Find("main.go", t.TempDir())
	require.True(t, ok)
	require.True(t, info.Missed.Has(1))
}

func TestParseFormat(t *testing.T) {
	for name, want := range map[string]Format{
		"":          FormatAuto,
		"auto":      FormatAuto,
		"Cobertura": FormatCobertura,
		"xml":       FormatCobertura,
		"goprofile": FormatGoProfile,
		"go":        FormatGoProfile,
	} {
		got, err := ParseFormat(name)
		require.NoError(t, err, name)
		require.Equal(t, want, got, name)
	}

	_, err := ParseFormat("lcov")
	require.Error(t, err)
}
