// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package coverage

import (
	"bytes"
	"fmt"
	"path"

	"golang.org/x/tools/cover"
)

// parseGoProfile reads a go test -coverprofile file. Every line spanned by
// a block is instrumented; a line is missed when all blocks spanning it
// have a zero count.
func parseGoProfile(data []byte) (*Report, error) {
	profiles, err := cover.ParseProfilesFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}

	report := &Report{
		Format: FormatGoProfile,
		Files:  make(map[string]*Info, len(profiles)),
	}
	for _, profile := range profiles {
		counts := make(map[int]int64)
		for _, block := range profile.Blocks {
			if block.EndLine < block.StartLine || block.StartLine < 1 {
				return nil, fmt.Errorf("%w: %s: bad block %d-%d", ErrMalformedReport, profile.FileName, block.StartLine, block.EndLine)
			}
			for line := block.StartLine; line <= block.EndLine; line++ {
				counts[line] += int64(block.Count)
			}
		}
		report.Files[path.Clean(profile.FileName)] = infoFromCounts(counts)
	}
	return report, nil
}
