// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/jeranaias/sidediff/internal/highlight"
)

// HandleCSS prints the syntax highlighting stylesheet used by the page.
// The --style flag wins over the configured style and fallback.
func HandleCSS(args Args) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	names := cfg.Styles()
	if args.Style != "" {
		if !highlight.IsKnownStyle(args.Style) {
			return &ValidationError{Field: "style", Value: args.Style, Reason: "unknown style", Example: "--style monokai"}
		}
		names = append([]string{args.Style}, names...)
	}

	style := highlight.ResolveStyle(names...)
	css, err := highlight.StyleCSS(style)
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("css", map[string]interface{}{
			"style": style.Name,
			"css":   css,
		}).Encode(args.stdout())
	}
	fmt.Fprint(args.stdout(), css)
	return nil
}
