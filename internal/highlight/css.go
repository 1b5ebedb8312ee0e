// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package highlight

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultStyles are tried in order when no style is configured.
var DefaultStyles = []string{"vs", "xcode"}

// ResolveStyle returns the first registered style among names, falling back
// to chroma's fallback style.
func ResolveStyle(names ...string) *chroma.Style {
	for _, name := range names {
		if name == "" {
			continue
		}
		if style := styles.Get(name); style != nil && style.Name == name {
			return style
		}
	}
	return styles.Fallback
}

// IsKnownStyle reports whether name is a registered chroma style.
func IsKnownStyle(name string) bool {
	style := styles.Get(name)
	return style != nil && style.Name == name
}

// StyleCSS returns the stylesheet for the class names Tokenize emits.
// Rules are scoped under the .chroma class.
func StyleCSS(style *chroma.Style) (string, error) {
	if style == nil {
		style = styles.Fallback
	}
	var sb strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&sb, style); err != nil {
		return "", fmt.Errorf("write %s css: %w", style.Name, err)
	}
	return sb.String(), nil
}
