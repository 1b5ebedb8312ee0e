// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter writes a machine-readable summary of a page. Pane markup is
// not included.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// jsonPage is the document written by JSONExporter.
type jsonPage struct {
	Title string     `json:"title"`
	Files []jsonFile `json:"files"`
	Total jsonStats  `json:"total"`
}

type jsonFile struct {
	Path     string    `json:"path"`
	Kind     string    `json:"kind"`
	Anchor   string    `json:"anchor"`
	Language string    `json:"language,omitempty"`
	Summary  string    `json:"summary"`
	Stats    jsonStats `json:"stats"`
	Coverage *float64  `json:"coverage_percent,omitempty"`
}

type jsonStats struct {
	Unchanged int `json:"unchanged"`
	Modified  int `json:"modified"`
	Added     int `json:"added"`
	Deleted   int `json:"deleted"`
}

// Export converts a page to JSON.
func (e *JSONExporter) Export(page *Page) ([]byte, error) {
	if page == nil {
		return nil, fmt.Errorf("page is nil")
	}

	out := jsonPage{
		Title: page.Title,
		Files: make([]jsonFile, 0, len(page.Files)),
	}
	for _, f := range page.Files {
		entry := jsonFile{
			Path:     f.Path,
			Kind:     f.Kind,
			Anchor:   f.Anchor,
			Language: f.Language,
			Summary:  f.Summary(),
			Stats: jsonStats{
				Unchanged: f.Stats.Unchanged,
				Modified:  f.Stats.Modified,
				Added:     f.Stats.Added,
				Deleted:   f.Stats.Deleted,
			},
		}
		if pct, ok := f.CoveragePercent(); ok {
			entry.Coverage = &pct
		}
		out.Files = append(out.Files, entry)
	}

	total := page.Totals()
	out.Total = jsonStats{
		Unchanged: total.Unchanged,
		Modified:  total.Modified,
		Added:     total.Added,
		Deleted:   total.Deleted,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
