// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package coverage

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// ErrMalformedReport wraps every failure to parse a coverage report.
var ErrMalformedReport = errors.New("malformed coverage report")

// =============================================================================
// REPORT FORMATS
// =============================================================================

// Format names a coverage report format.
type Format string

const (
	// FormatAuto sniffs the report content
	FormatAuto Format = "auto"
	// FormatCobertura is Cobertura XML (coverage.py, gcovr, JaCoCo converters)
	FormatCobertura Format = "cobertura"
	// FormatGoProfile is the text profile written by go test -coverprofile
	FormatGoProfile Format = "goprofile"
)

// ParseFormat validates a format name. An empty name means FormatAuto.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatCobertura, "xml":
		return FormatCobertura, nil
	case FormatGoProfile, "go":
		return FormatGoProfile, nil
	default:
		return "", fmt.Errorf("unknown coverage format %q, must be one of: auto, cobertura, goprofile", name)
	}
}

// sniffFormat guesses the format from the first meaningful bytes.
func sniffFormat(data []byte) (Format, error) {
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")), " \t\r\n")
	switch {
	case bytes.HasPrefix(trimmed, []byte("<")):
		return FormatCobertura, nil
	case bytes.HasPrefix(trimmed, []byte("mode:")):
		return FormatGoProfile, nil
	default:
		return "", fmt.Errorf("%w: unrecognized content", ErrMalformedReport)
	}
}

// =============================================================================
// REPORT
// =============================================================================

// Report is a parsed coverage report covering any number of files.
type Report struct {
	Path    string
	Format  Format
	Sources []string         // Source roots declared by the report
	Files   map[string]*Info // Keyed by the slash path written in the report
}

// LoadReport reads and parses a report file.
func LoadReport(reportPath string, format Format) (*Report, error) {
	data, err := os.ReadFile(reportPath)
	if err != nil {
		return nil, err
	}

	report, err := ParseReport(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", reportPath, err)
	}
	report.Path = reportPath
	return report, nil
}

// ParseReport parses report bytes in the given format.
func ParseReport(data []byte, format Format) (*Report, error) {
	if format == "" || format == FormatAuto {
		sniffed, err := sniffFormat(data)
		if err != nil {
			return nil, err
		}
		format = sniffed
	}

	switch format {
	case FormatCobertura:
		return parseCobertura(data)
	case FormatGoProfile:
		return parseGoProfile(data)
	default:
		return nil, fmt.Errorf("unsupported coverage format %q", format)
	}
}

// Find returns the coverage of a file given its slash path relative to the
// project root. It tries, in order: the path as written in the report, the
// path below each declared source root, the absolute path, the path below
// the module declared by root's go.mod, and finally the shortest report
// entry ending in "/"+relPath (Go profiles use import paths).
func (r *Report) Find(relPath, root string) (*Info, bool) {
	relPath = path.Clean(filepath.ToSlash(relPath))
	if info, ok := r.Files[relPath]; ok {
		return info, true
	}

	for _, source := range r.Sources {
		prefix := sourcePrefix(source, root)
		if prefix == "" || prefix == "." {
			continue
		}
		if trimmed, ok := strings.CutPrefix(relPath, prefix+"/"); ok {
			if info, ok := r.Files[trimmed]; ok {
				return info, true
			}
		}
	}

	if root != "" {
		if absRoot, err := filepath.Abs(root); err == nil {
			abs := filepath.ToSlash(filepath.Join(absRoot, filepath.FromSlash(relPath)))
			if info, ok := r.Files[abs]; ok {
				return info, true
			}
		}
	}

	if module := modulePath(root); module != "" {
		if info, ok := r.Files[module+"/"+relPath]; ok {
			return info, true
		}
	}

	best := ""
	for key := range r.Files {
		if !strings.HasSuffix(key, "/"+relPath) {
			continue
		}
		if best == "" || len(key) < len(best) || (len(key) == len(best) && key < best) {
			best = key
		}
	}
	if best != "" {
		return r.Files[best], true
	}

	return nil, false
}

// modulePath returns the module path declared by root's go.mod, or "".
func modulePath(root string) string {
	if root == "" {
		root = "."
	}
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return ""
	}
	return modfile.ModulePath(data)
}

// sourcePrefix converts a declared source root into a slash path relative
// to the project root, or "" when it lies outside it.
func sourcePrefix(source, root string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return ""
	}
	if !filepath.IsAbs(source) {
		return path.Clean(filepath.ToSlash(source))
	}
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(absRoot, source)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	return filepath.ToSlash(rel)
}
