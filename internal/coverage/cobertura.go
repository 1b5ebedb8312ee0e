// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package coverage

import (
	"encoding/xml"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

type coberturaXML struct {
	XMLName  xml.Name `xml:"coverage"`
	Sources  []string `xml:"sources>source"`
	Packages []struct {
		Classes []struct {
			Filename string `xml:"filename,attr"`
			Lines    []struct {
				Number int   `xml:"number,attr"`
				Hits   int64 `xml:"hits,attr"`
			} `xml:"lines>line"`
		} `xml:"classes>class"`
	} `xml:"packages>package"`
}

// parseCobertura reads a Cobertura XML report. Classes sharing a file are
// merged; a line is missed only if no entry for it has hits.
func parseCobertura(data []byte) (*Report, error) {
	var doc coberturaXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}

	hits := make(map[string]map[int]int64)
	for _, pkg := range doc.Packages {
		for _, class := range pkg.Classes {
			name := strings.TrimSpace(class.Filename)
			if name == "" {
				return nil, fmt.Errorf("%w: class without filename", ErrMalformedReport)
			}
			name = path.Clean(filepath.ToSlash(name))
			lines, ok := hits[name]
			if !ok {
				lines = make(map[int]int64)
				hits[name] = lines
			}
			for _, line := range class.Lines {
				if line.Number < 1 {
					return nil, fmt.Errorf("%w: %s: invalid line number %d", ErrMalformedReport, name, line.Number)
				}
				lines[line.Number] += line.Hits
			}
		}
	}

	report := &Report{
		Format:  FormatCobertura,
		Sources: doc.Sources,
		Files:   make(map[string]*Info, len(hits)),
	}
	for name, lines := range hits {
		report.Files[name] = infoFromCounts(lines)
	}
	return report, nil
}

func infoFromCounts(counts map[int]int64) *Info {
	info := &Info{All: make(LineSet, len(counts)), Missed: make(LineSet)}
	for line, count := range counts {
		info.All.Add(line)
		if count == 0 {
			info.Missed.Add(line)
		}
	}
	return info
}
