// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package coverage

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
)

// =============================================================================
// PROVIDER
// =============================================================================

// Provider parses coverage reports on first use and caches them by path for
// its lifetime. Replacing a report on disk has no effect until the path is
// invalidated, either directly or through a Watcher.
//
// A Provider is safe for concurrent use.
type Provider struct {
	format Format

	mu      sync.Mutex
	reports map[string]*Report
	loads   int

	// Logf receives load notices. Nil means silent.
	Logf func(format string, args ...any)
}

// NewProvider creates a provider that parses reports as format.
func NewProvider(format Format) *Provider {
	if format == "" {
		format = FormatAuto
	}
	return &Provider{
		format:  format,
		reports: make(map[string]*Report),
	}
}

// Load returns the parsed report at path, parsing it at most once until it
// is invalidated. Parse failures are not cached.
func (p *Provider) Load(reportPath string) (*Report, error) {
	key := reportKey(reportPath)

	p.mu.Lock()
	defer p.mu.Unlock()

	if report, ok := p.reports[key]; ok {
		return report, nil
	}

	report, err := LoadReport(reportPath, p.format)
	if err != nil {
		return nil, err
	}
	p.reports[key] = report
	p.loads++
	p.logf("COVERAGE_LOAD | path=%s format=%s files=%d", reportPath, report.Format, len(report.Files))
	return report, nil
}

// Lookup returns the coverage of filePath from the report at reportPath.
// The file is matched by its path relative to root. A missing report, a
// file outside root, or a file the report does not mention all yield
// (nil, false, nil); a malformed report is an error.
func (p *Provider) Lookup(reportPath, filePath, root string) (*Info, bool, error) {
	if reportPath == "" {
		return nil, false, nil
	}

	report, err := p.Load(reportPath)
	if errors.Is(err, fs.ErrNotExist) {
		p.logf("COVERAGE_MISSING | path=%s", reportPath)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	rel, ok := relativeTo(root, filePath)
	if !ok {
		p.logf("COVERAGE_SKIP | file=%s reason=outside_root root=%s", filePath, root)
		return nil, false, nil
	}

	info, ok := report.Find(rel, root)
	if !ok {
		p.logf("COVERAGE_SKIP | file=%s reason=not_in_report", rel)
	}
	return info, ok, nil
}

// Invalidate drops the cached report for path. It reports whether an
// entry was present.
func (p *Provider) Invalidate(reportPath string) bool {
	key := reportKey(reportPath)

	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.reports[key]
	delete(p.reports, key)
	if ok {
		p.logf("COVERAGE_INVALIDATE | path=%s", reportPath)
	}
	return ok
}

// Reset drops every cached report.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = make(map[string]*Report)
}

// Cached reports whether a parsed report for path is in the cache.
func (p *Provider) Cached(reportPath string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.reports[reportKey(reportPath)]
	return ok
}

// Loads returns how many reports have been parsed so far.
func (p *Provider) Loads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loads
}

func (p *Provider) logf(format string, args ...any) {
	if p.Logf != nil {
		p.Logf(format, args...)
	}
}

// reportKey normalizes a report path so "a/../r.xml" and "r.xml" share a
// cache entry.
func reportKey(reportPath string) string {
	if abs, err := filepath.Abs(reportPath); err == nil {
		return abs
	}
	return filepath.Clean(reportPath)
}

// relativeTo returns filePath relative to root as a slash path. An empty
// root means the working directory.
func relativeTo(root, filePath string) (string, bool) {
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	absFile, err := filepath.Abs(filePath)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absRoot, absFile)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
