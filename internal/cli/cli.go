// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing for sidediff.

package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdHelp Command = iota
	CmdFile
	CmdDir
	CmdCSS
	CmdConfig
	CmdVersion
)

// String returns the command name as typed on the command line.
func (c Command) String() string {
	switch c {
	case CmdFile:
		return "file"
	case CmdDir:
		return "dir"
	case CmdCSS:
		return "css"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	default:
		return "help"
	}
}

// Args holds parsed CLI arguments. Empty strings and false booleans mean
// "not given on the command line"; the config file value then applies.
type Args struct {
	// Global flags
	Verbose    bool
	JSON       bool   // Print the command result as a JSON envelope
	ConfigFile string // Explicit config file (--config)

	// Inputs (file: two files, dir: two directories)
	Before string
	After  string

	// Compare flags
	Coverage       string // Coverage report path
	CoverageFormat string // auto, cobertura, goprofile
	Root           string // Project root coverage paths are relative to
	Lines          string // Line filter, e.g. "3,7-9"
	Name           string // File name hint for lexer selection
	Output         string
	Format         string // html or json
	Style          string
	TabSize        string
	Workers        string
	Title          string
	Description    string // Markdown, or @path to read it from a file
	PrintWidth     bool
	NoHighlight    bool
	Open           bool
	Watch          bool

	// Config subcommand
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Output streams; nil means os.Stdout / os.Stderr
	Stdout io.Writer
	Stderr io.Writer
}

func (a Args) stdout() io.Writer {
	if a.Stdout != nil {
		return a.Stdout
	}
	return os.Stdout
}

func (a Args) stderr() io.Writer {
	if a.Stderr != nil {
		return a.Stderr
	}
	return os.Stderr
}

// boolFlags never take a value.
var boolFlags = []string{
	"verbose", "json", "print-width", "no-highlight", "open", "watch",
	"h", "help",
}

var globalFlags = []string{"verbose", "json", "config", "h", "help"}

var compareFlags = []string{
	"coverage", "coverage-format", "root", "lines", "name", "o", "output",
	"format", "style", "tab-size", "title", "description", "print-width",
	"no-highlight", "open", "watch",
}

const usageText = `sidediff - side-by-side HTML diffs with a coverage overlay

Usage:
  sidediff file <before> <after> [flags]   Compare two files
  sidediff dir <before> <after> [flags]    Compare two directory trees
  sidediff css [--style name]              Print the highlight stylesheet
  sidediff config [show|get|set|init|path] Configuration
  sidediff version                         Show version information
  sidediff help                            Show this help

Compare flags:
  -o, --output FILE          Write the report to FILE (default: sidediff.html)
  --format html|json         Report format (default: html)
  --coverage REPORT          Cobertura XML or Go cover profile to overlay
  --coverage-format FMT      auto, cobertura or goprofile (default: auto)
  --root DIR                 Project root the report paths are relative to
  --lines LIST               Only annotate these after-file lines (e.g. 3,7-9)
  --name NAME                File name used to pick the highlighter (file only)
  --style NAME               Highlight style (default: vs)
  --tab-size N               Tab stop width (default: 8)
  --no-highlight             Disable syntax highlighting
  --title TEXT               Page title
  --description TEXT|@FILE   Markdown shown above the diffs
  --print-width              Constrain the page to 80 columns
  --workers N                Files rendered in parallel (dir only, default: CPUs)
  --watch                    Re-render when the coverage report changes
  --open                     Open the report when written

Global flags:
  --config FILE              Use FILE instead of the config search path
  --verbose                  Log events to stderr
  --json                     Print the result as JSON

Config search path:
  ./sidediff.toml, ~/.sidediff/config.toml, ~/.sidediff/config.json

Environment:
  SIDEDIFF_TAB_SIZE, SIDEDIFF_WORKERS, SIDEDIFF_STYLE, SIDEDIFF_NO_HIGHLIGHT,
  SIDEDIFF_COVERAGE, SIDEDIFF_COVERAGE_ROOT, SIDEDIFF_OUTPUT, SIDEDIFF_VERBOSE

Examples:
  sidediff file old/main.go new/main.go
  sidediff file a.py b.py --coverage coverage.xml --root . -o review.html
  sidediff dir release-1.0 release-1.1 --coverage cover.out --workers 4
  sidediff css --style monokai > chroma.css
`

// PrintUsage prints the usage text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// Parse parses os.Args.
func Parse() (Command, Args, error) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses raw command-line arguments (without the program name).
func ParseArgs(raw []string) (Command, Args, error) {
	raw = hoistCommand(raw)
	if len(raw) == 0 {
		return CmdHelp, Args{}, nil
	}

	name := strings.ToLower(raw[0])
	p := NewArgParser(raw[1:], boolFlags...)

	args := Args{
		Verbose:    p.BoolFlag("verbose"),
		JSON:       p.BoolFlag("json"),
		ConfigFile: p.Flag("config"),
	}

	if p.BoolFlag("help") || p.BoolFlag("h") {
		return CmdHelp, args, nil
	}

	switch name {
	case "file", "f":
		if err := parseCompareArgs(&args, p, "file <before> <after>"); err != nil {
			return CmdFile, args, err
		}
		args.Name = p.Flag("name")
		return CmdFile, args, checkUnknown(p, "file", "name")

	case "dir", "d":
		if err := parseCompareArgs(&args, p, "dir <before-dir> <after-dir>"); err != nil {
			return CmdDir, args, err
		}
		args.Workers = p.Flag("workers")
		return CmdDir, args, checkUnknown(p, "dir", "workers")

	case "css":
		args.Style = p.Flag("style")
		return CmdCSS, args, checkUnknown(p, "css", "style")

	case "config":
		args.Subcommand = p.Positional(0)
		args.ConfigKey = p.Positional(1)
		args.ConfigVal = strings.Join(p.PositionalFrom(2), " ")
		return CmdConfig, args, checkUnknown(p, "config")

	case "version", "-v", "--version":
		return CmdVersion, args, nil

	case "help", "-h", "--help":
		return CmdHelp, args, nil

	default:
		return CmdHelp, args, &ValidationError{
			Field:   "command",
			Value:   raw[0],
			Reason:  "unknown command",
			Example: "sidediff help",
		}
	}
}

// hoistCommand moves global flags written before the command name after
// it, so "sidediff --verbose file a b" parses like "sidediff file a b --verbose".
func hoistCommand(raw []string) []string {
	var leading []string
	i := 0
	for i < len(raw) {
		arg := raw[i]
		switch {
		case arg == "--verbose" || arg == "--json":
			leading = append(leading, arg)
			i++
		case arg == "--config" && i+1 < len(raw):
			leading = append(leading, arg, raw[i+1])
			i += 2
		case strings.HasPrefix(arg, "--config="):
			leading = append(leading, arg)
			i++
		default:
			if len(leading) == 0 {
				return raw
			}
			out := append([]string{arg}, raw[i+1:]...)
			return append(out, leading...)
		}
	}
	// Only global flags: show help with them applied
	return append([]string{"help"}, leading...)
}

// parseCompareArgs fills the flags shared by file and dir.
func parseCompareArgs(args *Args, p *ArgParser, usage string) error {
	if p.PositionalCount() != 2 {
		return ErrMissingArgument("inputs", "sidediff "+usage)
	}
	args.Before = p.Positional(0)
	args.After = p.Positional(1)

	args.Coverage = p.Flag("coverage")
	args.CoverageFormat = p.Flag("coverage-format")
	args.Root = p.Flag("root")
	args.Lines = p.Flag("lines")
	args.Output = p.FirstFlag("output", "o")
	args.Format = p.Flag("format")
	args.Style = p.Flag("style")
	args.TabSize = p.Flag("tab-size")
	args.Title = p.Flag("title")
	args.Description = p.Flag("description")
	args.PrintWidth = p.BoolFlag("print-width")
	args.NoHighlight = p.BoolFlag("no-highlight")
	args.Open = p.BoolFlag("open")
	args.Watch = p.BoolFlag("watch")
	return nil
}

func checkUnknown(p *ArgParser, command string, extra ...string) error {
	known := append(append([]string{}, globalFlags...), extra...)
	if command == "file" || command == "dir" {
		known = append(known, compareFlags...)
	}
	if unknown := p.Unknown(known...); len(unknown) > 0 {
		return &ValidationError{
			Field:   "flag",
			Value:   strings.Join(unknown, ", "),
			Reason:  "unknown flag for " + command,
			Example: "sidediff help",
		}
	}
	return nil
}

// HandleVersion prints version information.
func HandleVersion(args Args) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Encode(args.stdout())
	}

	fmt.Fprintf(args.stdout(), "sidediff %s\n", Version)
	fmt.Fprintf(args.stdout(), "  Commit: %s\n", GitCommit)
	fmt.Fprintf(args.stdout(), "  Built:  %s\n", BuildDate)
	fmt.Fprintf(args.stdout(), "  Go:     %s\n", runtime.Version())
	return nil
}

// HandleHelp prints the usage text.
func HandleHelp(args Args) error {
	PrintUsage(args.stdout())
	return nil
}
