// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/sidediff/internal/coverage"
	"github.com/jeranaias/sidediff/internal/highlight"
	"github.com/jeranaias/sidediff/internal/render"
)

func samplePage(t *testing.T) *Page {
	t.Helper()

	opts := render.Options{Highlight: highlight.Options{Disabled: true}}
	cov := coverage.NewInfo([]int{1, 2}, []int{2})

	return &Page{
		Title:       "Release <1.2>",
		Description: "Changes for **1.2**",
		Files: []FileSection{
			NewFileSection("pkg/b.txt", "", render.Compare("a\nb\n", "a\nc\n", "b.txt", opts), cov),
			NewFileSection("a.txt", "", render.Compare("", "new\n", "a.txt", opts), nil),
		},
	}
}

func TestHTMLExporter_Export(t *testing.T) {
	page := samplePage(t)

	out, err := NewHTMLExporter().Export(page)
	require.NoError(t, err)
	doc := string(out)

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, "<title>Release &lt;1.2&gt;</title>")
	assert.Contains(t, doc, "<strong>1.2</strong>")
	assert.Contains(t, doc, `id="`+Anchor("pkg/b.txt")+`"`)
	assert.Contains(t, doc, `<span class="right_diff_change">c</span>`)
	assert.Contains(t, doc, "coverage 50.0%")
	assert.Contains(t, doc, `class="filelist"`)
	assert.Contains(t, doc, ".chroma")
	assert.Contains(t, doc, ".lineno_coverage_miss")
	for _, id := range []string{"showoriginal", "showmodified", "highlight", "codeprintmargin", "dosyntaxhighlight"} {
		assert.Contains(t, doc, `id="`+id+`"`)
	}
}

func TestHTMLExporter_Deterministic(t *testing.T) {
	first, err := NewHTMLExporter().Export(samplePage(t))
	require.NoError(t, err)
	second, err := NewHTMLExporter().Export(samplePage(t))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHTMLExporter_EmptyPage(t *testing.T) {
	out, err := NewHTMLExporter().Export(&Page{PrintWidth: true})
	require.NoError(t, err)

	doc := string(out)
	assert.Contains(t, doc, "No changes.")
	assert.Contains(t, doc, `class="page_width"`)
	assert.NotContains(t, doc, `class="filelist"`)
}

func TestHTMLExporter_NilPage(t *testing.T) {
	_, err := NewHTMLExporter().Export(nil)
	assert.Error(t, err)
}

func TestHTMLExporter_EscapesPaths(t *testing.T) {
	frag := render.Compare("", "x\n", "a.txt", render.Options{Highlight: highlight.Options{Disabled: true}})
	page := &Page{Files: []FileSection{NewFileSection("<script>.txt", "", frag, nil)}}

	out, err := NewHTMLExporter().Export(page)
	require.NoError(t, err)

	assert.NotContains(t, string(out), "<script>.txt")
	assert.Contains(t, string(out), "&lt;script&gt;.txt")
}

func TestJSONExporter_Export(t *testing.T) {
	page := samplePage(t)
	page.SortFiles()

	out, err := NewJSONExporter().Export(page)
	require.NoError(t, err)

	var decoded struct {
		Title string `json:"title"`
		Files []struct {
			Path     string   `json:"path"`
			Kind     string   `json:"kind"`
			Summary  string   `json:"summary"`
			Coverage *float64 `json:"coverage_percent"`
		} `json:"files"`
		Total struct {
			Added    int `json:"added"`
			Modified int `json:"modified"`
		} `json:"total"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))

	require.Len(t, decoded.Files, 2)
	assert.Equal(t, "a.txt", decoded.Files[0].Path)
	assert.Equal(t, "added", decoded.Files[0].Kind)
	assert.Nil(t, decoded.Files[0].Coverage)
	assert.Equal(t, "pkg/b.txt", decoded.Files[1].Path)
	assert.Equal(t, "Modified ~1 +0 -0", decoded.Files[1].Summary)
	require.NotNil(t, decoded.Files[1].Coverage)
	assert.InDelta(t, 50.0, *decoded.Files[1].Coverage, 0.001)
	assert.Equal(t, 1, decoded.Total.Added)
	assert.Equal(t, 1, decoded.Total.Modified)
}

func TestAnchor_Stable(t *testing.T) {
	assert.Equal(t, Anchor("a/b.go"), Anchor("a/b.go"))
	assert.NotEqual(t, Anchor("a/b.go"), Anchor("a/c.go"))
	assert.True(t, strings.HasPrefix(Anchor("x"), "file-"))
}

func TestNewFileSection_Kind(t *testing.T) {
	opts := render.Options{Highlight: highlight.Options{Disabled: true}}

	assert.Equal(t, "added", NewFileSection("f", "", render.Compare("", "a\n", "f", opts), nil).Kind)
	assert.Equal(t, "removed", NewFileSection("f", "", render.Compare("a\n", "", "f", opts), nil).Kind)
	assert.Equal(t, "modified", NewFileSection("f", "", render.Compare("a\n", "b\n", "f", opts), nil).Kind)
	assert.Equal(t, "removed", NewFileSection("f", "removed", render.Compare("a\n", "b\n", "f", opts), nil).Kind)
}

func TestRenderDescription(t *testing.T) {
	out, err := RenderDescription("")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = RenderDescription("# Title\n\n<script>x</script>")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Title</h1>")
	assert.NotContains(t, out, "<script>")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.html")

	require.NoError(t, WriteFile(samplePage(t), NewHTMLExporter(), path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "</html>")
}

func TestForFormat(t *testing.T) {
	exp, err := ForFormat("html")
	require.NoError(t, err)
	assert.Equal(t, ".html", exp.FileExtension())

	exp, err = ForFormat("json")
	require.NoError(t, err)
	assert.Equal(t, "application/json", exp.MimeType())

	_, err = ForFormat("pdf")
	assert.Error(t, err)
}
