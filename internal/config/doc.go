// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for sidediff.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - DiffConfig, HighlightConfig, CoverageConfig, OutputConfig: one per file section
//   - ValidationError: a single invalid field
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command line flags (applied by the cli package)
//   - Environment variables (SIDEDIFF_*)
//   - ./sidediff.toml
//   - ~/.sidediff/config.toml
//   - ~/.sidediff/config.json
//   - Built-in defaults
//
// Only the first config file found is read.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	tabSize := cfg.Diff.TabSize
package config
