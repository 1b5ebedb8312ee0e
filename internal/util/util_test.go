// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")

	require.NoError(t, AtomicWriteFile(path, []byte("<html></html>"), 0644))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "<html></html>", string(content))
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "deep", "report.html")

	require.NoError(t, AtomicWriteFile(path, []byte("x"), 0644))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.html")

	require.NoError(t, AtomicWriteFile(path, []byte("initial"), 0644))
	require.NoError(t, AtomicWriteFile(path, []byte("updated"), 0644))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "updated", string(content))

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

// =============================================================================
// LINE TESTS
// =============================================================================

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []string
	}{
		{"empty", "", []string{}},
		{"single line no newline", "line1", []string{"line1"}},
		{"single line with newline", "line1\n", []string{"line1"}},
		{"blank lines kept", "a\n\nb\n", []string{"a", "", "b"}},
		{"only newline", "\n", []string{""}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
		{"two trailing newlines", "a\n\n", []string{"a", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, SplitLines(tt.content))
		})
	}
}

func TestExpandTabs(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		tabSize int
		want    string
	}{
		{"no tabs", "plain", 8, "plain"},
		{"leading tab", "\tx", 8, "        x"},
		{"tab after text", "ab\tc", 4, "ab  c"},
		{"tab on stop", "abcd\te", 4, "abcd    e"},
		{"two tabs", "\t\t", 2, "    "},
		{"wide rune counts twice", "世\tx", 4, "世  x"},
		{"strips newline", "a\tb\n", 2, "a b"},
		{"strips crlf", "ab\r\n", 8, "ab"},
		{"zero removes tabs", "a\tb", 0, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ExpandTabs(tt.line, tt.tabSize))
		})
	}
}

func TestExpandAll(t *testing.T) {
	require.Equal(t, []string{"    a", "b"}, ExpandAll([]string{"\ta", "b"}, 4))
	require.Empty(t, ExpandAll(nil, 4))
}

func TestTruncateWidth(t *testing.T) {
	require.Equal(t, "short", TruncateWidth("short", 10))
	require.Equal(t, "intern...", TruncateWidth("internal/render/pane.go", 9))
	require.Equal(t, "ab", TruncateWidth("abcdef", 2))
	require.Equal(t, "", TruncateWidth("abc", 0))
}

// =============================================================================
// DECODING TESTS
// =============================================================================

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"plain utf8", []byte("héllo\n"), "héllo\n"},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "x = 1\n"...), "x = 1\n"},
		{"utf16 le bom", []byte{0xFF, 0xFE, 'h', 0, 'i', 0}, "hi"},
		{"utf16 be bom", []byte{0xFE, 0xFF, 0, 'o', 0, 'k'}, "ok"},
		{"invalid utf8", []byte{'a', 0xff, 'b'}, "a�b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeText(tt.data)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestReadText_Missing(t *testing.T) {
	_, err := ReadText(filepath.Join(t.TempDir(), "nope.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
