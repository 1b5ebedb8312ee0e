// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/jeranaias/sidediff/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter turns a page into a document.
type Exporter interface {
	// Export renders the page and returns the content.
	Export(page *Page) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".html").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OpenAfterExport opens the file in the default application.
	OpenAfterExport bool

	// Logf receives non-fatal warnings. Nil means silent.
	Logf func(format string, args ...any)
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{}
}

// ForFormat returns the exporter for a format name.
func ForFormat(format string) (Exporter, error) {
	switch format {
	case "", "html", "htm":
		return NewHTMLExporter(), nil
	case "json":
		return NewJSONExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// WriteFile exports a page and writes it atomically to outputPath.
func WriteFile(page *Page, exporter Exporter, outputPath string, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(page)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	if opts.OpenAfterExport {
		if err := openFile(outputPath); err != nil {
			// Non-fatal - file was still created successfully
			if opts.Logf != nil {
				opts.Logf("EXPORT_OPEN_FAILED | path=%s error=%q", outputPath, err)
			}
		}
	}

	return nil
}

// openFile opens a file in the default application for the OS.
func openFile(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
