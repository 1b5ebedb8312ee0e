// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/jeranaias/sidediff/internal/coverage"
)

// watch calls rerender after every settled change of the coverage report
// until ctx is done. Render errors are printed and watching continues.
func (r *runner) watch(ctx context.Context, rerender func() error) error {
	report := r.cfg.Coverage.Report

	w, err := coverage.NewWatcher(r.provider, watchDebounce)
	if err != nil {
		return err
	}
	defer w.Close()

	changed := make(chan struct{}, 1)
	w.Logf = r.logf
	w.OnChange = func(string) {
		select {
		case changed <- struct{}{}:
		default:
		}
	}

	if err := w.Add(report); err != nil {
		return &CommandError{Command: r.cmd.String(), Action: "watch", Reason: report, Err: err}
	}
	if err := w.Watch(); err != nil {
		return err
	}

	fmt.Fprintf(r.args.stderr(), "%s Watching %s (Ctrl+C to stop)\n", DimStyle.Render("[WATCH]"), report)

	for {
		select {
		case <-ctx.Done():
			r.log("WATCH_STOP | report=%s", report)
			return nil
		case <-changed:
			r.log("WATCH_RERENDER | report=%s", report)
			if err := rerender(); err != nil {
				DisplayError(r.args.stderr(), err, false)
			}
		}
	}
}
