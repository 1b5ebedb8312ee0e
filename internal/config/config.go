// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/sidediff/internal/coverage"
	"github.com/jeranaias/sidediff/internal/highlight"
	"github.com/jeranaias/sidediff/internal/util"
)

// LocalFileName is the project-level config file looked up in the working
// directory.
const LocalFileName = "sidediff.toml"

// MaxTabSize bounds diff.tab_size.
const MaxTabSize = 32

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete sidediff configuration.
type Config struct {
	Diff      DiffConfig      `toml:"diff" json:"diff"`
	Highlight HighlightConfig `toml:"highlight" json:"highlight"`
	Coverage  CoverageConfig  `toml:"coverage" json:"coverage"`
	Output    OutputConfig    `toml:"output" json:"output"`
}

// DiffConfig contains line alignment settings.
type DiffConfig struct {
	// TabSize is the tab stop width used before alignment
	TabSize int `toml:"tab_size" json:"tab_size"`
	// Workers bounds the files rendered in parallel by the dir command (0 = one per CPU)
	Workers int `toml:"workers" json:"workers"`
}

// HighlightConfig contains syntax highlighting settings.
type HighlightConfig struct {
	// Enabled turns lexing on; when false every line is plain escaped text
	Enabled bool `toml:"enabled" json:"enabled"`
	// Style is the chroma style used for the page stylesheet
	Style string `toml:"style" json:"style"`
	// FallbackStyle is used when Style is not a registered style
	FallbackStyle string `toml:"fallback_style" json:"fallback_style"`
}

// CoverageConfig contains coverage overlay settings.
type CoverageConfig struct {
	// Report is the path of the coverage report ("" = no overlay)
	Report string `toml:"report" json:"report"`
	// Format is "auto", "cobertura" or "goprofile"
	Format string `toml:"format" json:"format"`
	// Root is the project root report paths are relative to ("" = working directory)
	Root string `toml:"root" json:"root"`
	// CommentMarkers are line prefixes never annotated
	CommentMarkers []string `toml:"comment_markers" json:"comment_markers"`
	// Watch re-renders when the report changes on disk
	Watch bool `toml:"watch" json:"watch"`
}

// OutputConfig contains report output settings.
type OutputConfig struct {
	// Path is where the report is written
	Path string `toml:"path" json:"path"`
	// Format is "html" or "json"
	Format string `toml:"format" json:"format"`
	// Title is shown in the page title bar ("" = derived from the inputs)
	Title string `toml:"title" json:"title"`
	// Description is markdown shown above the files
	Description string `toml:"description" json:"description"`
	// PrintWidth constrains the page to the 80-column print width
	PrintWidth bool `toml:"print_width" json:"print_width"`
	// Open opens the written report in the default application
	Open bool `toml:"open" json:"open"`
	// Verbose enables event logging on stderr
	Verbose bool `toml:"verbose" json:"verbose"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Diff: DiffConfig{
			TabSize: util.DefaultTabSize,
		},
		Highlight: HighlightConfig{
			Enabled:       true,
			Style:         highlight.DefaultStyles[0],
			FallbackStyle: highlight.DefaultStyles[1],
		},
		Coverage: CoverageConfig{
			Format:         string(coverage.FormatAuto),
			CommentMarkers: append([]string(nil), coverage.DefaultCommentMarkers...),
		},
		Output: OutputConfig{
			Path:   "sidediff.html",
			Format: "html",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the sidediff configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".sidediff"), nil
}

// ConfigPathTOML returns the path to the user TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the user JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// SearchPaths returns the config files Load tries, in order.
func SearchPaths() []string {
	paths := []string{LocalFileName}
	if p, err := ConfigPathTOML(); err == nil {
		paths = append(paths, p)
	}
	if p, err := ConfigPathJSON(); err == nil {
		paths = append(paths, p)
	}
	return paths
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the first existing file of SearchPaths,
// or from defaults when none exists. Environment overrides are applied last.
func Load() (*Config, error) {
	for _, path := range SearchPaths() {
		if _, err := os.Stat(path); err == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file path with full
// validation. Keys missing from the file keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	// Determine file type and load accordingly
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		// Default to TOML
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// fillDefaults fills in values a file explicitly left empty.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Diff.TabSize == 0 {
		cfg.Diff.TabSize = defaults.Diff.TabSize
	}
	if cfg.Highlight.Style == "" {
		cfg.Highlight.Style = defaults.Highlight.Style
	}
	if cfg.Highlight.FallbackStyle == "" {
		cfg.Highlight.FallbackStyle = defaults.Highlight.FallbackStyle
	}
	if cfg.Coverage.Format == "" {
		cfg.Coverage.Format = defaults.Coverage.Format
	}
	if cfg.Coverage.CommentMarkers == nil {
		cfg.Coverage.CommentMarkers = defaults.Coverage.CommentMarkers
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = defaults.Output.Path
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = defaults.Output.Format
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML saves the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	var sb strings.Builder

	// Write header comment
	sb.WriteString("# sidediff configuration file\n")
	sb.WriteString("# Keys left out keep their defaults.\n\n")

	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Diff
	if c.Diff.TabSize < 0 || c.Diff.TabSize > MaxTabSize {
		errs = append(errs, ValidationError{
			Field:   "diff.tab_size",
			Message: fmt.Sprintf("must be between 0 and %d, got %d", MaxTabSize, c.Diff.TabSize),
		})
	}
	if c.Diff.Workers < 0 {
		errs = append(errs, ValidationError{
			Field:   "diff.workers",
			Message: fmt.Sprintf("must not be negative, got %d", c.Diff.Workers),
		})
	}

	// Highlight
	if c.Highlight.Style != "" && !highlight.IsKnownStyle(c.Highlight.Style) &&
		!highlight.IsKnownStyle(c.Highlight.FallbackStyle) {
		errs = append(errs, ValidationError{
			Field:   "highlight.style",
			Message: fmt.Sprintf("unknown style '%s' and no usable fallback_style", c.Highlight.Style),
		})
	}

	// Coverage
	if _, err := coverage.ParseFormat(c.Coverage.Format); err != nil {
		errs = append(errs, ValidationError{
			Field:   "coverage.format",
			Message: err.Error(),
		})
	}

	// Output
	if strings.TrimSpace(c.Output.Path) == "" {
		errs = append(errs, ValidationError{
			Field:   "output.path",
			Message: "must not be empty",
		})
	}
	validFormats := map[string]bool{"html": true, "json": true}
	if !validFormats[strings.ToLower(c.Output.Format)] {
		errs = append(errs, ValidationError{
			Field:   "output.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: html, json", c.Output.Format),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - SIDEDIFF_TAB_SIZE: overrides diff.tab_size
//   - SIDEDIFF_WORKERS: overrides diff.workers
//   - SIDEDIFF_STYLE: overrides highlight.style
//   - SIDEDIFF_NO_HIGHLIGHT: disables highlight.enabled
//   - SIDEDIFF_COVERAGE: overrides coverage.report
//   - SIDEDIFF_COVERAGE_ROOT: overrides coverage.root
//   - SIDEDIFF_OUTPUT: overrides output.path
//   - SIDEDIFF_VERBOSE: overrides output.verbose
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SIDEDIFF_TAB_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Diff.TabSize = n
		}
	}
	if v := os.Getenv("SIDEDIFF_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Diff.Workers = n
		}
	}
	if v := os.Getenv("SIDEDIFF_STYLE"); v != "" {
		c.Highlight.Style = v
	}
	if v := os.Getenv("SIDEDIFF_NO_HIGHLIGHT"); v != "" {
		c.Highlight.Enabled = !isTrue(v)
	}
	if v := os.Getenv("SIDEDIFF_COVERAGE"); v != "" {
		c.Coverage.Report = v
	}
	if v := os.Getenv("SIDEDIFF_COVERAGE_ROOT"); v != "" {
		c.Coverage.Root = v
	}
	if v := os.Getenv("SIDEDIFF_OUTPUT"); v != "" {
		c.Output.Path = v
	}
	if v := os.Getenv("SIDEDIFF_VERBOSE"); v != "" {
		c.Output.Verbose = isTrue(v)
	}
}

func isTrue(v string) bool {
	v = strings.ToLower(v)
	return v == "1" || v == "true" || v == "yes"
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "diff.tab_size").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "diff.tab_size").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			return field, nil
		}

		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}

	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	// Handle string input with type conversion
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			field.SetBool(isTrue(strVal))
			return nil
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				var items []string
				for _, item := range strings.Split(strVal, ",") {
					if item = strings.TrimSpace(item); item != "" {
						items = append(items, item)
					}
				}
				if items == nil {
					items = []string{}
				}
				field.Set(reflect.ValueOf(items))
				return nil
			}
		}
	}

	// Direct assignment for matching types
	val := reflect.ValueOf(value)
	if val.IsValid() && val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}

	// Type conversion for compatible types
	if val.IsValid() && val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"diff.tab_size",
		"diff.workers",
		"highlight.enabled",
		"highlight.style",
		"highlight.fallback_style",
		"coverage.report",
		"coverage.format",
		"coverage.root",
		"coverage.comment_markers",
		"coverage.watch",
		"output.path",
		"output.format",
		"output.title",
		"output.description",
		"output.print_width",
		"output.open",
		"output.verbose",
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Coverage.CommentMarkers != nil {
		clone.Coverage.CommentMarkers = append([]string(nil), c.Coverage.CommentMarkers...)
	}
	return &clone
}

// Styles returns the highlight styles to try, in order.
func (c *Config) Styles() []string {
	return []string{c.Highlight.Style, c.Highlight.FallbackStyle}
}

// String returns the config as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
