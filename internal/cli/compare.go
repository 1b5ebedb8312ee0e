// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// compare.go - file and dir command implementation for sidediff.
//
// Command: file <before> <after> [flags]
// Short:   Render a side-by-side diff of two files
//
// Command: dir <before-dir> <after-dir> [flags]
// Short:   Render every changed file of two directory trees
//
// Both commands assemble one page, write it through the selected exporter
// and print a summary line per file. Files of a dir comparison are
// rendered by a bounded worker pool; the page keeps them in path order.
//
// Examples:
//   sidediff file old/main.go new/main.go
//   sidediff file a.py b.py --coverage coverage.xml --lines 10-40
//   sidediff dir v1 v2 --coverage cover.out --workers 4 --format json
//   sidediff dir v1 v2 --coverage cover.out --watch

package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/sidediff/internal/config"
	"github.com/jeranaias/sidediff/internal/coverage"
	"github.com/jeranaias/sidediff/internal/dirscan"
	"github.com/jeranaias/sidediff/internal/export"
	"github.com/jeranaias/sidediff/internal/highlight"
	"github.com/jeranaias/sidediff/internal/render"
	"github.com/jeranaias/sidediff/internal/util"
)

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// HandleFile runs the file command until it completes or, with --watch,
// until interrupted.
func HandleFile(args Args) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunFile(ctx, args)
}

// HandleDir runs the dir command until it completes or, with --watch,
// until interrupted.
func HandleDir(args Args) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunDir(ctx, args)
}

// RunFile compares two files and writes the report.
func RunFile(ctx context.Context, args Args) error {
	r, err := newRunner(CmdFile, args)
	if err != nil {
		return err
	}

	for _, path := range []string{args.Before, args.After} {
		binary, err := dirscan.IsBinaryFile(path)
		if err != nil {
			return &CommandError{Command: "file", Action: "read", Reason: path, Err: err}
		}
		if binary {
			return &InputError{Path: path, Reason: "binary file"}
		}
	}

	name := args.Name
	if name == "" {
		name = args.After
	}
	cwd, _ := os.Getwd()
	job := fileJob{
		display: displayPath(args.After, cwd),
		name:    name,
		covPath: args.After,
		load: func() (string, string, error) {
			before, err := util.ReadText(args.Before)
			if err != nil {
				return "", "", err
			}
			after, err := util.ReadText(args.After)
			if err != nil {
				return "", "", err
			}
			return before, after, nil
		},
	}

	return r.run(ctx, func(context.Context) ([]fileJob, error) {
		return []fileJob{job}, nil
	})
}

// RunDir compares two directory trees and writes the report.
func RunDir(ctx context.Context, args Args) error {
	r, err := newRunner(CmdDir, args)
	if err != nil {
		return err
	}

	return r.run(ctx, func(ctx context.Context) ([]fileJob, error) {
		changes, err := dirscan.Compare(ctx, args.Before, args.After)
		if err != nil {
			return nil, &CommandError{Command: "dir", Action: "scan", Reason: "compare trees", Err: err}
		}

		jobs := make([]fileJob, 0, len(changes))
		for _, c := range changes {
			job := fileJob{
				display: c.Path,
				kind:    c.Kind.String(),
				name:    c.Path,
				load:    c.Load,
			}
			if c.Kind != dirscan.Removed {
				job.covPath = c.After
			}
			jobs = append(jobs, job)
		}
		r.log("DIR_SCAN | before=%s after=%s changed=%d", args.Before, args.After, len(jobs))
		return jobs, nil
	})
}

// =============================================================================
// RUNNER
// =============================================================================

// watchDebounce is how long report changes must settle before re-rendering.
const watchDebounce = 250 * time.Millisecond

// runner holds what every render of one command invocation shares.
type runner struct {
	cmd      Command
	args     Args
	cfg      *config.Config
	provider *coverage.Provider
	lines    coverage.LineSet
	root     string
	logf     func(format string, args ...any)
}

// fileJob is one file to compare.
type fileJob struct {
	display string // Path shown in the page
	kind    string // "" derives the kind from the diff
	name    string // File name used for lexer selection
	covPath string // After file looked up in the report, "" to skip
	load    func() (before, after string, err error)
}

// fileResult is the outcome of one job.
type fileResult struct {
	path    string
	section export.FileSection
	err     error
}

func newRunner(cmd Command, args Args) (*runner, error) {
	cfg, err := loadConfig(args)
	if err != nil {
		return nil, err
	}

	lines, err := ParseLineSet(args.Lines)
	if err != nil {
		return nil, err
	}

	if cfg.Coverage.Watch && cfg.Coverage.Report == "" {
		return nil, &ValidationError{
			Field:   "watch",
			Reason:  "requires a coverage report",
			Example: "--coverage cover.out --watch",
		}
	}

	format, err := coverage.ParseFormat(cfg.Coverage.Format)
	if err != nil {
		return nil, &ValidationError{Field: "coverage-format", Value: cfg.Coverage.Format, Reason: err.Error()}
	}

	r := &runner{
		cmd:      cmd,
		args:     args,
		cfg:      cfg,
		provider: coverage.NewProvider(format),
		lines:    lines,
		root:     cfg.Coverage.Root,
	}

	// Report paths of a tree comparison are relative to the after tree
	if r.root == "" && cmd == CmdDir {
		r.root = args.After
	}

	if cfg.Output.Verbose {
		log.SetOutput(args.stderr())
		r.logf = log.Printf
	}
	r.provider.Logf = r.logf

	return r, nil
}

func (r *runner) log(format string, args ...any) {
	if r.logf != nil {
		r.logf(format, args...)
	}
}

// run renders once and, in watch mode, again after every report change
// until ctx is done.
func (r *runner) run(ctx context.Context, discover func(context.Context) ([]fileJob, error)) error {
	if err := r.render(ctx, discover, r.cfg.Output.Open); err != nil {
		return err
	}
	if !r.cfg.Coverage.Watch {
		return nil
	}
	return r.watch(ctx, func() error {
		return r.render(ctx, discover, false)
	})
}

// render builds the page from the discovered jobs, writes it and prints
// the summary.
func (r *runner) render(ctx context.Context, discover func(context.Context) ([]fileJob, error), open bool) error {
	start := time.Now()

	// A malformed report fails before any file is rendered
	if report := r.cfg.Coverage.Report; report != "" {
		if _, err := r.provider.Load(report); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load coverage report %s: %w", report, err)
		}
	}

	jobs, err := discover(ctx)
	if err != nil {
		return err
	}

	results, err := r.compareAll(ctx, jobs)
	if err != nil {
		return err
	}

	page := r.page()
	var failed []fileResult
	for _, res := range results {
		if res.err != nil {
			r.log("FILE_FAILED | path=%s error=%q", res.path, res.err)
			failed = append(failed, res)
			continue
		}
		page.Files = append(page.Files, res.section)
	}
	page.SortFiles()

	exporter, err := export.ForFormat(r.cfg.Output.Format)
	if err != nil {
		return ErrUnsupportedFormat(r.cfg.Output.Format, []string{"html", "json"})
	}
	outputPath := r.outputPath(exporter)
	opts := &export.Options{OpenAfterExport: open, Logf: r.logf}
	if err := export.WriteFile(page, exporter, outputPath, opts); err != nil {
		return &CommandError{Command: r.cmd.String(), Action: "export", Reason: outputPath, Err: err}
	}

	elapsed := time.Since(start)
	r.log("RENDER_DONE | files=%d failed=%d output=%s duration=%s", len(page.Files), len(failed), outputPath, elapsed)

	if len(failed) > 0 {
		r.printFailures(failed)
		paths := make([]string, len(failed))
		for i, f := range failed {
			paths[i] = f.path
		}
		return &CommandError{
			Command: r.cmd.String(),
			Action:  "render",
			Reason:  fmt.Sprintf("%d of %d files failed (%s)", len(failed), len(results), strings.Join(paths, ", ")),
			Err:     failed[0].err,
		}
	}

	return r.printSummary(page, outputPath, elapsed)
}

// compareAll renders every job with at most workers() in flight. Results
// keep the order of jobs.
func (r *runner) compareAll(ctx context.Context, jobs []fileJob) ([]fileResult, error) {
	results := make([]fileResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.compare(job)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// compare renders one job. A file that cannot be read fails alone.
func (r *runner) compare(job fileJob) fileResult {
	res := fileResult{path: job.display}

	before, after, err := job.load()
	if err != nil {
		res.err = &CommandError{Command: r.cmd.String(), Action: "read", Reason: job.display, Err: err}
		return res
	}

	var cov *coverage.Info
	if job.covPath != "" {
		info, ok, err := r.provider.Lookup(r.cfg.Coverage.Report, job.covPath, r.root)
		if err != nil {
			res.err = err
			return res
		}
		if ok {
			cov = info
		}
	}

	frag := render.Compare(before, after, job.name, r.renderOptions(cov))
	res.section = export.NewFileSection(job.display, job.kind, frag, cov)
	return res
}

func (r *runner) renderOptions(cov *coverage.Info) render.Options {
	return render.Options{
		TabSize: r.cfg.Diff.TabSize,
		Highlight: highlight.Options{
			Disabled: !r.cfg.Highlight.Enabled,
			Logf:     r.logf,
		},
		Coverage:       cov,
		LineFilter:     r.lines,
		CommentMarkers: r.cfg.Coverage.CommentMarkers,
	}
}

func (r *runner) workers() int {
	if r.cfg.Diff.Workers > 0 {
		return r.cfg.Diff.Workers
	}
	return runtime.NumCPU()
}

// page returns an empty page carrying the configured presentation.
func (r *runner) page() *export.Page {
	title := r.cfg.Output.Title
	if title == "" {
		title = fmt.Sprintf("%s vs %s", filepath.ToSlash(r.args.Before), filepath.ToSlash(r.args.After))
	}

	style := ""
	for _, name := range r.cfg.Styles() {
		if highlight.IsKnownStyle(name) {
			style = name
			break
		}
	}

	return &export.Page{
		Title:       title,
		Description: r.cfg.Output.Description,
		PrintWidth:  r.cfg.Output.PrintWidth,
		Style:       style,
	}
}

// outputPath returns where the report goes. The default path takes the
// extension of the selected format.
func (r *runner) outputPath(exporter export.Exporter) string {
	path := r.cfg.Output.Path
	if r.args.Output == "" && path == config.Default().Output.Path {
		path = strings.TrimSuffix(path, filepath.Ext(path)) + exporter.FileExtension()
	}
	return path
}

// =============================================================================
// OUTPUT
// =============================================================================

func (r *runner) printSummary(page *export.Page, outputPath string, elapsed time.Duration) error {
	if r.args.JSON {
		return NewJSONResponse(r.cmd.String(), compareData(page, r.cfg.Output.Format, outputPath, elapsed)).
			Encode(r.args.stdout())
	}

	w := r.args.stdout()
	pathWidth := GetTerminalWidth() - 32
	if pathWidth < 20 {
		pathWidth = 20
	}

	if len(page.Files) == 0 {
		fmt.Fprintf(w, "  %s\n", DimStyle.Render("No changes."))
	}
	for _, f := range page.Files {
		line := fmt.Sprintf("  %s %s  %s", RenderKind(f.Kind), util.TruncateWidth(f.Path, pathWidth), RenderStats(f.Stats))
		if pct, ok := f.CoveragePercent(); ok {
			line += DimStyle.Render(fmt.Sprintf("  cov %.1f%%", pct))
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w, RenderSeparatorAdaptive())
	fmt.Fprintf(w, "%s Wrote %s (%d files, %s)\n",
		SuccessStyle.Render("[OK]"), outputPath, len(page.Files), formatDurationShort(elapsed))
	return nil
}

func (r *runner) printFailures(failed []fileResult) {
	w := r.args.stderr()
	for _, f := range failed {
		fmt.Fprintf(w, "  %s %s: %v\n", ErrorStyle.Render("[ERROR]"), f.path, f.err)
	}
}

// compareData converts a page into the --json result.
func compareData(page *export.Page, format, outputPath string, elapsed time.Duration) CompareData {
	totals := page.Totals()
	data := CompareData{
		Output:     outputPath,
		Format:     format,
		Files:      make([]FileData, 0, len(page.Files)),
		Modified:   totals.Modified,
		Added:      totals.Added,
		Deleted:    totals.Deleted,
		DurationMs: elapsed.Milliseconds(),
	}
	for _, f := range page.Files {
		fd := FileData{
			Path:     f.Path,
			Kind:     f.Kind,
			Summary:  f.Summary(),
			Language: f.Language,
		}
		if pct, ok := f.CoveragePercent(); ok {
			fd.CoveragePercent = &pct
		}
		data.Files = append(data.Files, fd)
	}
	return data
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// loadConfig loads the config file (explicit or from the search path) and
// applies the command-line flags on top.
func loadConfig(args Args) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if args.ConfigFile != "" {
		cfg, err = config.LoadFromPath(args.ConfigFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, &ConfigError{Path: args.ConfigFile, Err: err}
	}

	if err := applyFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

// applyFlags overrides config values with the flags given on the command line.
func applyFlags(cfg *config.Config, args Args) error {
	if args.Verbose {
		cfg.Output.Verbose = true
	}

	if args.TabSize != "" {
		n, err := parseTabSize(args.TabSize)
		if err != nil {
			return err
		}
		cfg.Diff.TabSize = n
	}
	if args.Workers != "" {
		n, err := strconv.Atoi(args.Workers)
		if err != nil || n < 0 {
			return &ValidationError{Field: "workers", Value: args.Workers, Reason: "must be a non-negative integer", Example: "--workers 4"}
		}
		cfg.Diff.Workers = n
	}

	if args.Style != "" {
		cfg.Highlight.Style = args.Style
	}
	if args.NoHighlight {
		cfg.Highlight.Enabled = false
	}

	if args.Coverage != "" {
		cfg.Coverage.Report = args.Coverage
	}
	if args.CoverageFormat != "" {
		cfg.Coverage.Format = args.CoverageFormat
	}
	if args.Root != "" {
		cfg.Coverage.Root = args.Root
	}
	if args.Watch {
		cfg.Coverage.Watch = true
	}

	if args.Output != "" {
		cfg.Output.Path = args.Output
	}
	if args.Format != "" {
		cfg.Output.Format = strings.ToLower(args.Format)
	}
	if args.Title != "" {
		cfg.Output.Title = args.Title
	}
	if args.Description != "" {
		desc, err := readDescription(args.Description)
		if err != nil {
			return err
		}
		cfg.Output.Description = desc
	}
	if args.PrintWidth {
		cfg.Output.PrintWidth = true
	}
	if args.Open {
		cfg.Output.Open = true
	}
	return nil
}

// readDescription returns s, or the content of the file named by s when
// it starts with "@".
func readDescription(s string) (string, error) {
	path, ok := strings.CutPrefix(s, "@")
	if !ok {
		return s, nil
	}
	text, err := util.ReadText(path)
	if err != nil {
		return "", &CommandError{Command: "description", Action: "read", Reason: path, Err: err}
	}
	return text, nil
}
