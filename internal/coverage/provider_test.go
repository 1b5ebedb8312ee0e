// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package coverage

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeReport(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestProvider_LookupCachesByPath(t *testing.T) {
	root := t.TempDir()
	reportPath := filepath.Join(root, "coverage.xml")
	writeReport(t, reportPath, coberturaSample)

	p := NewProvider(FormatAuto)
	file := filepath.Join(root, "app", "calc.py")

	info, ok, err := p.Lookup(reportPath, file, root)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []int{2, 6}, info.Missed.Sorted())

	// Same report through a different spelling of the path.
	_, _, err = p.Lookup(filepath.Join(root, "app", "..", "coverage.xml"), file, root)
	require.NoError(t, err)
	require.Equal(t, 1, p.Loads())
}

func TestProvider_StaleUntilInvalidated(t *testing.T) {
	root := t.TempDir()
	reportPath := filepath.Join(root, "coverage.xml")
	writeReport(t, reportPath, coberturaSample)
	file := filepath.Join(root, "app", "calc.py")

	p := NewProvider(FormatCobertura)
	_, _, err := p.Lookup(reportPath, file, root)
	require.NoError(t, err)

	writeReport(t, reportPath, strings.ReplaceAll(coberturaSample, `hits="0"`, `hits="5"`))

	info, _, err := p.Lookup(reportPath, file, root)
	require.NoError(t, err)
	require.NotEmpty(t, info.Missed.Sorted(), "cached report is served until invalidated")

	require.True(t, p.Invalidate(reportPath))
	require.False(t, p.Invalidate(reportPath))

	info, _, err = p.Lookup(reportPath, file, root)
	require.NoError(t, err)
	require.Empty(t, info.Missed.Sorted())
	require.Equal(t, 2, p.Loads())
}

func TestProvider_MissingReportIsSkipped(t *testing.T) {
	root := t.TempDir()
	p := NewProvider(FormatAuto)

	info, ok, err := p.Lookup(filepath.Join(root, "absent.xml"), filepath.Join(root, "a.py"), root)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, info)

	info, ok, err = p.Lookup("", filepath.Join(root, "a.py"), root)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, info)
}

func TestProvider_MalformedReportFails(t *testing.T) {
	root := t.TempDir()
	reportPath := filepath.Join(root, "coverage.xml")
	writeReport(t, reportPath, "<coverage><packages>")

	p := NewProvider(FormatAuto)
	_, _, err := p.Lookup(reportPath, filepath.Join(root, "a.py"), root)
	require.ErrorIs(t, err, ErrMalformedReport)
	require.False(t, p.Cached(reportPath))
}

func TestProvider_FileOutsideRootOrReport(t *testing.T) {
	root := t.TempDir()
	reportPath := filepath.Join(root, "coverage.xml")
	writeReport(t, reportPath, coberturaSample)

	p := NewProvider(FormatAuto)

	_, ok, err := p.Lookup(reportPath, filepath.Join(t.TempDir(), "app", "calc.py"), root)
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = p.Lookup(reportPath, filepath.Join(root, "app", "other.py"), root)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestProvider_ConcurrentLoadParsesOnce(t *testing.T) {
	root := t.TempDir()
	reportPath := filepath.Join(root, "cover.out")
	writeReport(t, reportPath, goProfileSample)

	p := NewProvider(FormatAuto)
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Load(reportPath)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, 1, p.Loads())

	p.Reset()
	require.False(t, p.Cached(reportPath))
}

func TestWatcher_InvalidatesOnWrite(t *testing.T) {
	root := t.TempDir()
	reportPath := filepath.Join(root, "coverage.xml")
	writeReport(t, reportPath, coberturaSample)

	p := NewProvider(FormatAuto)
	_, err := p.Load(reportPath)
	require.NoError(t, err)

	w, err := NewWatcher(p, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	changed := make(chan string, 4)
	w.OnChange = func(path string) { changed <- path }

	require.NoError(t, w.Add(reportPath))
	require.NoError(t, w.Watch())

	writeReport(t, reportPath, goProfileSample)

	require.Eventually(t, func() bool { return !p.Cached(reportPath) }, 5*time.Second, 10*time.Millisecond)

	select {
	case got := <-changed:
		require.Equal(t, reportKey(reportPath), got)
	case <-time.After(5 * time.Second):
		t.Fatal("OnChange was not called")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	root := t.TempDir()
	reportPath := filepath.Join(root, "coverage.xml")
	writeReport(t, reportPath, coberturaSample)

	p := NewProvider(FormatAuto)
	_, err := p.Load(reportPath)
	require.NoError(t, err)

	w, err := NewWatcher(p, 10*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Add(reportPath))
	require.NoError(t, w.Watch())

	writeReport(t, filepath.Join(root, "unrelated.txt"), "x")
	time.Sleep(100 * time.Millisecond)

	require.True(t, p.Cached(reportPath))
}
