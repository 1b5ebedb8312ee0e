// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export assembles rendered comparisons into report documents.
//
// # Key Types
//
//   - Page: title, markdown description and the compared files
//   - FileSection: both panes of one file plus its statistics
//   - Exporter: turns a Page into bytes (HTMLExporter, JSONExporter)
//
// # Usage
//
//	frag := render.Compare(before, after, "main.go", opts)
//	page := &export.Page{Title: "Release diff"}
//	page.Files = append(page.Files, export.NewFileSection("main.go", "", frag, nil))
//	err := export.WriteFile(page, export.NewHTMLExporter(), "sidediff.html", nil)
//
// The HTML page inlines every stylesheet and script, so the file can be
// opened or mailed on its own.
package export
