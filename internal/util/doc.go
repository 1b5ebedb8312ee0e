// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides text and file helpers shared by sidediff packages.
//
// # Key Functions
//
// Text:
//   - SplitLines: split file text into lines without a phantom last line
//   - ExpandTabs, ExpandAll: display-width aware tab expansion
//   - TruncateWidth: width-safe truncation for terminal output
//   - DecodeText, ReadText: BOM-aware decoding of source files
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	text, err := util.ReadText(path)
//	lines := util.ExpandAll(util.SplitLines(text), util.DefaultTabSize)
//
//	// Write files atomically to prevent data loss
//	err := util.AtomicWriteFile(path, data, 0644)
package util
