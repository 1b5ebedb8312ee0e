// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"github.com/jeranaias/sidediff/internal/coverage"
	"github.com/jeranaias/sidediff/internal/diff"
	"github.com/jeranaias/sidediff/internal/highlight"
	"github.com/jeranaias/sidediff/internal/util"
)

// Options configures one comparison.
type Options struct {
	// TabSize is the tab stop width. Zero means util.DefaultTabSize.
	TabSize int

	// Highlight configures the tokenizer for both sides.
	Highlight highlight.Options

	// Coverage of the after file. Nil disables the overlay.
	Coverage *coverage.Info

	// LineFilter restricts coverage annotation to these after-file lines.
	// Nil or empty admits every line.
	LineFilter coverage.LineSet

	// CommentMarkers are prefixes of lines never annotated. Nil means
	// coverage.DefaultCommentMarkers.
	CommentMarkers []string
}

// Fragment is the result of one comparison.
type Fragment struct {
	Left     string           // Before pane markup
	Right    string           // After pane markup
	Diff     *diff.DiffResult // Aligned rows
	Stats    diff.DiffStats
	Language string // Detected language, "" for plain text
}

// Compare aligns two versions of a file and renders both panes. fileName
// is only a hint for language detection.
func Compare(beforeText, afterText, fileName string, opts Options) *Fragment {
	tabSize := opts.TabSize
	if tabSize == 0 {
		tabSize = util.DefaultTabSize
	}

	before := util.ExpandAll(util.SplitLines(beforeText), tabSize)
	after := util.ExpandAll(util.SplitLines(afterText), tabSize)

	result := diff.Align(before, after)

	// One tokenizer pass per side, independent of the alignment.
	leftLookup := highlight.NewLookup(highlight.Tokenize(fileName, before, opts.Highlight), len(before))
	rightLookup := highlight.NewLookup(highlight.Tokenize(fileName, after, opts.Highlight), len(after))

	covMap := coverage.NewMap(opts.Coverage, opts.LineFilter, opts.CommentMarkers)

	language := ""
	if !opts.Highlight.Disabled {
		language = highlight.LanguageFor(fileName, afterText)
	}

	return &Fragment{
		Left:     NewPaneRenderer(diff.Left, leftLookup, nil).Render(result),
		Right:    NewPaneRenderer(diff.Right, rightLookup, covMap).Render(result),
		Diff:     result,
		Stats:    diff.Stats(result),
		Language: language,
	}
}
