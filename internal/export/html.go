// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/jeranaias/sidediff/internal/highlight"
)

// printRuler is the 80-column scale shown above each pane.
const printRuler = "01234567890123456789012345678901234567890123456789012345678901234567890123456789"

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter renders a page as a standalone HTML document with all
// stylesheets and scripts inline.
type HTMLExporter struct{}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{}
}

// Export renders the page. Output depends only on the page, so the same
// input always yields the same bytes.
func (e *HTMLExporter) Export(page *Page) ([]byte, error) {
	if page == nil {
		return nil, fmt.Errorf("page is nil")
	}

	styles := highlight.DefaultStyles
	if page.Style != "" {
		styles = append([]string{page.Style}, styles...)
	}
	syntaxCSS, err := highlight.StyleCSS(highlight.ResolveStyle(styles...))
	if err != nil {
		return nil, err
	}

	description, err := RenderDescription(page.Description)
	if err != nil {
		return nil, err
	}

	title := page.Title
	if title == "" {
		title = "sidediff"
	}

	var sb strings.Builder

	// HTML header
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(title)))
	sb.WriteString("    <meta name=\"generator\" content=\"sidediff\">\n")

	// Embedded CSS
	sb.WriteString("    <style>\n")
	sb.WriteString(resetCSS)
	sb.WriteString(diffCSS)
	sb.WriteString(syntaxCSS)
	sb.WriteString("    </style>\n")

	sb.WriteString("</head>\n")
	sb.WriteString("<body class=\"highlight-on\">\n")

	sb.WriteString(e.renderTopbar(title))

	width := "full_width"
	if page.PrintWidth {
		width = "page_width"
	}
	sb.WriteString(fmt.Sprintf("<main id=\"maincontainer\" class=\"%s\">\n", width))

	if description != "" {
		sb.WriteString("    <div class=\"description\">\n")
		sb.WriteString(description)
		sb.WriteString("    </div>\n")
	}

	if len(page.Files) == 0 {
		sb.WriteString("    <p class=\"nochanges\">No changes.</p>\n")
	}
	if len(page.Files) > 1 {
		sb.WriteString(e.renderFileList(page))
	}
	for _, f := range page.Files {
		sb.WriteString(e.renderFile(f))
	}

	sb.WriteString("</main>\n")

	// Toggle script
	sb.WriteString(toggleScript)

	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

// toggles are the top bar switches: input id and label.
var toggles = []struct{ id, label string }{
	{"showoriginal", "Original"},
	{"showmodified", "Modified"},
	{"highlight", "Highlight"},
	{"codeprintmargin", "Margin"},
	{"dosyntaxhighlight", "Syntax"},
}

// renderTopbar renders the title bar and view switches.
func (e *HTMLExporter) renderTopbar(title string) string {
	var sb strings.Builder

	sb.WriteString("<div id=\"topbar\">\n")
	sb.WriteString(fmt.Sprintf("    <div id=\"filetitle\">%s</div>\n", html.EscapeString(title)))
	sb.WriteString("    <div class=\"switches\">\n")
	for _, t := range toggles {
		sb.WriteString("        <div class=\"switch\">\n")
		sb.WriteString(fmt.Sprintf("            <input id=\"%s\" class=\"toggle menuoption\" type=\"checkbox\" checked>\n", t.id))
		sb.WriteString(fmt.Sprintf("            <label for=\"%s\" data-on=\"&#10004; %s\" data-off=\"%s\"></label>\n", t.id, t.label, t.label))
		sb.WriteString("        </div>\n")
	}
	sb.WriteString("    </div>\n")
	sb.WriteString("</div>\n")

	return sb.String()
}

// renderFileList renders the index of compared files.
func (e *HTMLExporter) renderFileList(page *Page) string {
	var sb strings.Builder

	total := page.Totals()
	sb.WriteString("    <nav class=\"filelist\">\n")
	sb.WriteString(fmt.Sprintf("        <div class=\"filelist-total\">%d files, ~%d +%d -%d</div>\n",
		len(page.Files), total.Modified, total.Added, total.Deleted))
	sb.WriteString("        <ul>\n")
	for _, f := range page.Files {
		sb.WriteString(fmt.Sprintf("            <li><a href=\"#%s\">%s</a> <span class=\"filekind kind-%s\">%s</span></li>\n",
			f.Anchor, html.EscapeString(f.Path), html.EscapeString(f.Kind), html.EscapeString(f.Summary())))
	}
	sb.WriteString("        </ul>\n")
	sb.WriteString("    </nav>\n")

	return sb.String()
}

// renderFile renders the header and both panes of one file.
func (e *HTMLExporter) renderFile(f FileSection) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("    <section class=\"filesection\" id=\"%s\">\n", f.Anchor))

	// File header
	sb.WriteString("        <div class=\"fileheader\">\n")
	sb.WriteString(fmt.Sprintf("            <a class=\"filepath\" href=\"#%s\">%s</a>\n", f.Anchor, html.EscapeString(f.Path)))
	sb.WriteString(fmt.Sprintf("            <span class=\"filekind kind-%s\">%s</span>\n", html.EscapeString(f.Kind), html.EscapeString(f.Kind)))
	sb.WriteString(fmt.Sprintf("            <span class=\"filesummary\">%s</span>\n", html.EscapeString(f.Summary())))
	if f.Language != "" {
		sb.WriteString(fmt.Sprintf("            <span class=\"filelang\">%s</span>\n", html.EscapeString(f.Language)))
	}
	if pct, ok := f.CoveragePercent(); ok {
		sb.WriteString(fmt.Sprintf("            <span class=\"filecoverage\">coverage %.1f%%</span>\n", pct))
	}
	sb.WriteString("        </div>\n")

	sb.WriteString("        <div class=\"panes\">\n")
	sb.WriteString(e.renderPane("leftcode", "&#10092; Original", f.Left))
	sb.WriteString(e.renderPane("rightcode", "&#10093; Modified", f.Right))
	sb.WriteString("        </div>\n")

	sb.WriteString("    </section>\n")

	return sb.String()
}

// renderPane renders one code box around pane markup.
func (e *HTMLExporter) renderPane(class, tab, markup string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("            <div class=\"codebox %s\">\n", class))
	sb.WriteString(fmt.Sprintf("                <div class=\"codefiletab\">%s</div>\n", tab))
	sb.WriteString(fmt.Sprintf("                <div class=\"printmargin\">%s</div>\n", printRuler))
	sb.WriteString("                <div class=\"codecontent chroma\">")
	sb.WriteString(markup)
	sb.WriteString("</div>\n")
	sb.WriteString("            </div>\n")

	return sb.String()
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

const resetCSS = `
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        :root {
            --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            --font-mono: "SF Mono", "Monaco", "Inconsolata", "Fira Code", "Source Code Pro", monospace;
            --bg-primary: #ffffff;
            --bg-secondary: #f7f8fa;
            --bg-tertiary: #e1e4e8;
            --text-primary: #24292e;
            --text-muted: #6a737d;
            --border-color: #e1e4e8;
        }

        body {
            font-family: var(--font-sans);
            font-size: 14px;
            color: var(--text-primary);
            background: var(--bg-secondary);
        }
`

const diffCSS = `
        /* Top bar */
        #topbar {
            position: sticky;
            top: 0;
            z-index: 10;
            display: flex;
            align-items: center;
            justify-content: space-between;
            padding: 8px 16px;
            background: var(--bg-tertiary);
            border-bottom: 1px solid var(--border-color);
        }

        #filetitle {
            font-weight: 600;
            font-size: 16px;
        }

        .switches {
            display: flex;
            gap: 8px;
        }

        .switch input {
            display: none;
        }

        .switch label {
            display: inline-block;
            padding: 4px 10px;
            border: 1px solid var(--border-color);
            border-radius: 4px;
            background: var(--bg-primary);
            cursor: pointer;
            user-select: none;
        }

        .switch label::after {
            content: attr(data-off);
        }

        .switch input:checked + label::after {
            content: attr(data-on);
        }

        /* Layout */
        #maincontainer {
            padding: 16px;
        }

        #maincontainer.page_width .panes {
            grid-template-columns: repeat(2, minmax(0, 90ch));
        }

        .description {
            margin-bottom: 16px;
            padding: 12px 16px;
            background: var(--bg-primary);
            border: 1px solid var(--border-color);
            border-radius: 6px;
            line-height: 1.6;
        }

        .filelist {
            margin-bottom: 16px;
            padding: 12px 16px;
            background: var(--bg-primary);
            border: 1px solid var(--border-color);
            border-radius: 6px;
        }

        .filelist ul {
            list-style: none;
            margin-top: 8px;
        }

        .filesection {
            margin-bottom: 24px;
        }

        .fileheader {
            display: flex;
            gap: 12px;
            align-items: baseline;
            padding: 8px 0;
        }

        .filepath {
            font-family: var(--font-mono);
            font-weight: 600;
            color: var(--text-primary);
            text-decoration: none;
        }

        .filesummary, .filelang, .filecoverage {
            color: var(--text-muted);
        }

        .kind-added { color: #22863a; }
        .kind-removed { color: #cb2431; }
        .kind-modified { color: #b08800; }

        .panes {
            display: grid;
            grid-template-columns: repeat(2, minmax(0, 1fr));
            gap: 8px;
        }

        .hide-original .panes, .hide-modified .panes {
            grid-template-columns: minmax(0, 1fr);
        }

        .hide-original .leftcode, .hide-modified .rightcode {
            display: none;
        }

        /* Code boxes */
        .codebox {
            overflow-x: auto;
            background: var(--bg-primary);
            border: 1px solid var(--border-color);
            border-radius: 6px;
            box-shadow: inset 1px 1px 3px rgba(0, 0, 0, 0.08);
        }

        .codefiletab {
            padding: 4px 12px;
            font-size: 12px;
            color: var(--text-muted);
            border-bottom: 1px solid var(--border-color);
        }

        .printmargin, .codecontent pre {
            font-family: var(--font-mono);
            font-size: 13px;
            line-height: 1.45;
            white-space: pre;
        }

        .printmargin {
            padding: 0 8px;
            color: transparent;
            border-bottom: 1px dashed var(--border-color);
            overflow: hidden;
        }

        .no-margin .printmargin {
            display: none;
        }

        .codecontent pre {
            padding: 4px 8px;
        }

        /* Gutter */
        .lineno_q {
            display: inline-block;
            margin-right: 8px;
            padding: 0 4px;
            color: var(--text-muted);
            border-right: 3px solid transparent;
            user-select: none;
        }

        .highlight-on .lineno_leftchange, .highlight-on .lineno_rightchange { background: #fff5b1; }
        .highlight-on .lineno_leftdel, .highlight-on .lineno_rightdel { background: #ffdce0; }
        .highlight-on .lineno_leftadd, .highlight-on .lineno_rightadd { background: #cdffd8; }

        .lineno_coverage_hit { border-right-color: #28a745; }
        .lineno_coverage_miss { border-right-color: #d73a49; }

        /* Line content */
        .highlight-on .left_diff_change, .highlight-on .right_diff_change { background: #fffbdd; }
        .highlight-on .left_diff_del, .highlight-on .right_diff_del { background: #ffeef0; }
        .highlight-on .left_diff_add, .highlight-on .right_diff_add { background: #e6ffed; }

        .highlight-on .left_diff_add, .highlight-on .right_diff_del {
            background: repeating-linear-gradient(-45deg, #f6f8fa, #f6f8fa 4px, #eaecef 4px, #eaecef 8px);
        }

        @media print {
            #topbar {
                display: none;
            }

            .filesection {
                page-break-inside: avoid;
            }
        }
`

// =============================================================================
// EMBEDDED JAVASCRIPT
// =============================================================================

const toggleScript = `    <script>
        (function() {
            const body = document.body;
            const classes = {
                showoriginal: ['hide-original', false],
                showmodified: ['hide-modified', false],
                highlight: ['highlight-on', true],
                codeprintmargin: ['no-margin', false]
            };

            Object.keys(classes).forEach(function(id) {
                const input = document.getElementById(id);
                input.addEventListener('change', function() {
                    const [name, whenChecked] = classes[id];
                    body.classList.toggle(name, input.checked === whenChecked);
                });
            });

            const syntax = document.getElementById('dosyntaxhighlight');
            syntax.addEventListener('change', function() {
                document.querySelectorAll('.codecontent').forEach(function(el) {
                    el.classList.toggle('chroma', syntax.checked);
                });
            });
        })();
    </script>
`
