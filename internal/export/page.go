// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/jeranaias/sidediff/internal/coverage"
	"github.com/jeranaias/sidediff/internal/diff"
	"github.com/jeranaias/sidediff/internal/render"
)

// =============================================================================
// PAGE MODEL
// =============================================================================

// Page is one report: a title, an optional markdown description and the
// compared files in display order.
type Page struct {
	Title       string
	Description string // Markdown
	PrintWidth  bool   // Constrain the page to the 80-column print width
	Style       string // Highlight style name, "" for the default
	Files       []FileSection
}

// FileSection is the rendered comparison of one file.
type FileSection struct {
	Path     string // Slash-separated display path
	Kind     string // "added", "removed", "modified"
	Anchor   string // Stable element id derived from Path
	Left     string // Before pane markup
	Right    string // After pane markup
	Stats    diff.DiffStats
	Language string
	Coverage *coverage.Info // Nil when no report entry matched
}

// Summary returns the header line shown above the panes.
func (f FileSection) Summary() string {
	return f.Stats.Summary()
}

// CoveragePercent returns the line coverage of the after file, and false
// when the file has no coverage data.
func (f FileSection) CoveragePercent() (float64, bool) {
	if f.Coverage == nil {
		return 0, false
	}
	return f.Coverage.Percent(), true
}

// NewFileSection wraps a rendered fragment. kind may be empty, in which case
// it is derived from the fragment's statistics.
func NewFileSection(path, kind string, frag *render.Fragment, cov *coverage.Info) FileSection {
	path = filepath.ToSlash(path)
	if kind == "" {
		kind = kindFromMode(frag.Stats.FileMode)
	}
	return FileSection{
		Path:     path,
		Kind:     kind,
		Anchor:   Anchor(path),
		Left:     frag.Left,
		Right:    frag.Right,
		Stats:    frag.Stats,
		Language: frag.Language,
		Coverage: cov,
	}
}

// Anchor returns the element id for a path. The same path always maps to
// the same id.
func Anchor(path string) string {
	return "file-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(filepath.ToSlash(path))).String()
}

// SortFiles orders the sections by path.
func (p *Page) SortFiles() {
	sort.SliceStable(p.Files, func(i, j int) bool {
		return p.Files[i].Path < p.Files[j].Path
	})
}

// Totals sums the statistics of every section.
func (p *Page) Totals() diff.DiffStats {
	var total diff.DiffStats
	for _, f := range p.Files {
		total.Unchanged += f.Stats.Unchanged
		total.Modified += f.Stats.Modified
		total.Added += f.Stats.Added
		total.Deleted += f.Stats.Deleted
	}
	total.FileMode = "modified"
	if !total.HasChanges() {
		total.FileMode = "unchanged"
	}
	return total
}

func kindFromMode(mode string) string {
	switch mode {
	case "new":
		return "added"
	case "deleted":
		return "removed"
	default:
		return "modified"
	}
}
