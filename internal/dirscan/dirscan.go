// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dirscan finds the files that differ between two directory trees.
package dirscan

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/jeranaias/sidediff/internal/util"
)

// sniffLen is how many leading bytes are checked for a NUL byte.
const sniffLen = 8000

// readFile is swapped out by tests.
var readFile = os.ReadFile

// IgnoredDirs are directory names never descended into.
var IgnoredDirs = map[string]bool{
	".git": true,
	".hg":  true,
	".svn": true,
}

// =============================================================================
// CHANGE KINDS
// =============================================================================

// Kind describes how a file differs between the two trees.
type Kind int

const (
	// Modified files exist in both trees with different content
	Modified Kind = iota
	// Added files only exist in the after tree
	Added
	// Removed files only exist in the before tree
	Removed
)

// String returns the string representation of a kind.
func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "modified"
	}
}

// Change is one differing file.
type Change struct {
	Path   string // Slash-separated path relative to both roots
	Kind   Kind
	Before string // Absolute path in the before tree, "" when Added
	After  string // Absolute path in the after tree, "" when Removed
}

// Load reads both versions of the file. A missing side is empty text.
func (c Change) Load() (before, after string, err error) {
	if before, err = readText(c.Before); err != nil {
		return "", "", err
	}
	if after, err = readText(c.After); err != nil {
		return "", "", err
	}
	return before, after, nil
}

func readText(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := readFile(path)
	if err != nil {
		return "", err
	}
	text, err := util.DecodeText(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return text, nil
}

// =============================================================================
// COMPARISON
// =============================================================================

// Compare walks both trees and returns the files whose content differs,
// sorted by path. Identical files, binary files and version control
// directories are skipped. A file that cannot be read is still listed, so
// the error surfaces from its Load and fails that file alone.
func Compare(ctx context.Context, beforeDir, afterDir string) ([]Change, error) {
	beforeRoot, err := root(beforeDir)
	if err != nil {
		return nil, err
	}
	afterRoot, err := root(afterDir)
	if err != nil {
		return nil, err
	}

	beforeFiles, err := listFiles(ctx, beforeRoot)
	if err != nil {
		return nil, err
	}
	afterFiles, err := listFiles(ctx, afterRoot)
	if err != nil {
		return nil, err
	}

	paths := make(map[string]struct{}, len(beforeFiles)+len(afterFiles))
	for p := range beforeFiles {
		paths[p] = struct{}{}
	}
	for p := range afterFiles {
		paths[p] = struct{}{}
	}

	var changes []Change
	for p := range paths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		_, inBefore := beforeFiles[p]
		_, inAfter := afterFiles[p]
		change := Change{Path: p}
		if inBefore {
			change.Before = filepath.Join(beforeRoot, filepath.FromSlash(p))
		}
		if inAfter {
			change.After = filepath.Join(afterRoot, filepath.FromSlash(p))
		}

		switch {
		case !inBefore:
			change.Kind = Added
		case !inAfter:
			change.Kind = Removed
		default:
			change.Kind = Modified
		}

		if differs(change) {
			changes = append(changes, change)
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Path < changes[j].Path
	})
	return changes, nil
}

func root(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}
	return abs, nil
}

// listFiles returns the slash-separated relative paths of regular files
// under dir.
func listFiles(ctx context.Context, dir string) (map[string]struct{}, error) {
	files := make(map[string]struct{})

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Check context
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			if path != dir && IgnoredDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return files, nil
}

// differs reports whether a change should be listed: neither side is
// binary and, for files present on both sides, the content differs.
// Unreadable files are listed.
func differs(c Change) bool {
	var before, after []byte
	var err error

	if c.Before != "" {
		if before, err = readFile(c.Before); err != nil {
			return true
		}
	}
	if c.After != "" {
		if after, err = readFile(c.After); err != nil {
			return true
		}
	}

	if IsBinary(before) || IsBinary(after) {
		return false
	}
	if c.Kind == Modified {
		return !bytes.Equal(before, after)
	}
	return true
}

// IsBinary reports whether data has a NUL byte in its leading bytes.
// UTF-16 text with a byte order mark is not binary.
func IsBinary(data []byte) bool {
	if bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
		return false
	}
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	return bytes.IndexByte(data, 0) >= 0
}

// IsBinaryFile is IsBinary for the head of a file.
func IsBinaryFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, err
	}
	return IsBinary(buf[:n]), nil
}
