// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dirscan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestCompare(t *testing.T) {
	before, after := t.TempDir(), t.TempDir()
	writeTree(t, before, map[string]string{
		"same.txt":       "same\n",
		"changed.go":     "package a\n",
		"gone.txt":       "bye\n",
		"sub/deep.txt":   "one\n",
		".git/HEAD":      "ref: a\n",
		"image.bin":      "\x00\x01\x02",
		"sub/keep/x.txt": "x\n",
	})
	writeTree(t, after, map[string]string{
		"same.txt":       "same\n",
		"changed.go":     "package b\n",
		"new.txt":        "hi\n",
		"sub/deep.txt":   "two\n",
		".git/HEAD":      "ref: b\n",
		"image.bin":      "\x00\x03",
		"sub/keep/x.txt": "x\n",
	})

	changes, err := Compare(context.Background(), before, after)
	require.NoError(t, err)

	got := map[string]Kind{}
	var order []string
	for _, c := range changes {
		got[c.Path] = c.Kind
		order = append(order, c.Path)
	}

	assert.Equal(t, []string{"changed.go", "gone.txt", "new.txt", "sub/deep.txt"}, order)
	assert.Equal(t, Modified, got["changed.go"])
	assert.Equal(t, Removed, got["gone.txt"])
	assert.Equal(t, Added, got["new.txt"])
	assert.Equal(t, Modified, got["sub/deep.txt"])
}

func TestChange_LoadMissingSideIsEmpty(t *testing.T) {
	before, after := t.TempDir(), t.TempDir()
	writeTree(t, after, map[string]string{"new.txt": "hi\n"})

	changes, err := Compare(context.Background(), before, after)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Empty(t, changes[0].Before)

	b, a, err := changes[0].Load()
	require.NoError(t, err)
	assert.Equal(t, "", b)
	assert.Equal(t, "hi\n", a)
}

func TestCompare_UnreadableFileFailsOnlyItsLoad(t *testing.T) {
	before, after := t.TempDir(), t.TempDir()
	writeTree(t, before, map[string]string{"locked.txt": "a\n", "ok.txt": "one\n"})
	writeTree(t, after, map[string]string{"locked.txt": "b\n", "ok.txt": "two\n"})

	locked := filepath.Join(after, "locked.txt")
	orig := readFile
	readFile = func(name string) ([]byte, error) {
		if name == locked {
			return nil, fs.ErrPermission
		}
		return orig(name)
	}
	t.Cleanup(func() { readFile = orig })

	changes, err := Compare(context.Background(), before, after)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "locked.txt", changes[0].Path)
	assert.Equal(t, Modified, changes[0].Kind)

	_, _, err = changes[0].Load()
	assert.ErrorIs(t, err, fs.ErrPermission)

	b, a, err := changes[1].Load()
	require.NoError(t, err)
	assert.Equal(t, "one\n", b)
	assert.Equal(t, "two\n", a)
}

func TestCompare_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := Compare(context.Background(), file, dir)
	assert.Error(t, err)

	_, err = Compare(context.Background(), dir, filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestCompare_Cancelled(t *testing.T) {
	before, after := t.TempDir(), t.TempDir()
	writeTree(t, after, map[string]string{"a.txt": "a\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Compare(ctx, before, after)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsBinary(t *testing.T) {
	assert.False(t, IsBinary([]byte("plain text\n")))
	assert.True(t, IsBinary([]byte("ab\x00cd")))
	assert.False(t, IsBinary([]byte{0xFF, 0xFE, 'a', 0x00}))

	late := make([]byte, sniffLen+10)
	for i := range late {
		late[i] = 'a'
	}
	late[sniffLen+5] = 0
	assert.False(t, IsBinary(late))
}

func TestIsBinaryFile(t *testing.T) {
	dir := t.TempDir()
	text := filepath.Join(dir, "a.txt")
	bin := filepath.Join(dir, "a.bin")
	require.NoError(t, os.WriteFile(text, []byte("hello\n"), 0644))
	require.NoError(t, os.WriteFile(bin, []byte{1, 0, 2}, 0644))

	isBin, err := IsBinaryFile(text)
	require.NoError(t, err)
	assert.False(t, isBin)

	isBin, err = IsBinaryFile(bin)
	require.NoError(t, err)
	assert.True(t, isBin)

	_, err = IsBinaryFile(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "added", Added.String())
	assert.Equal(t, "removed", Removed.String())
	assert.Equal(t, "modified", Modified.String())
}
