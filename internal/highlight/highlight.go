// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package highlight turns a whole file into per-line syntax markup and
// exposes that markup as a lookup by line number.
package highlight

import (
	"html"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/jeranaias/sidediff/internal/diff"
)

// =============================================================================
// BUFFER
// =============================================================================

// Buffer holds highlighted markup for a whole file. Element i is line i+1.
type Buffer []string

// Options configures tokenization.
type Options struct {
	// Disabled skips lexing and returns escaped plain lines.
	Disabled bool

	// Logf receives fallback notices. Nil means silent.
	Logf func(format string, args ...any)
}

// =============================================================================
// TOKENIZER
// =============================================================================

// Tokenize highlights text using a lexer chosen from the file name, then
// from the content. When no lexer applies, or lexing fails, every line is
// returned HTML-escaped and unstyled.
//
// The result has exactly one entry per line of text as split by lines.
func Tokenize(fileName string, lines []string, opts Options) Buffer {
	if opts.Disabled {
		return Plain(lines)
	}

	text := strings.Join(lines, "\n")
	lexer := lexerFor(fileName, text)
	if lexer == nil {
		logf(opts, "LEXER_FALLBACK | file=%s reason=no_lexer", fileName)
		return Plain(lines)
	}

	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, text)
	if err != nil {
		logf(opts, "LEXER_FALLBACK | file=%s reason=%q", fileName, err)
		return Plain(lines)
	}

	buf := make(Buffer, 0, len(lines))
	raw := make([]string, 0, len(lines))
	var line, rawText strings.Builder
	for _, token := range iterator.Tokens() {
		class := cssClass(token.Type)
		parts := strings.Split(token.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				buf = append(buf, line.String())
				raw = append(raw, rawText.String())
				line.Reset()
				rawText.Reset()
			}
			writeToken(&line, class, part)
			rawText.WriteString(part)
		}
	}
	buf = append(buf, line.String())
	raw = append(raw, rawText.String())

	// Lexers may add or drop text (a trailing newline, padding inside
	// block scalars). Any line whose tokens do not spell the source line
	// is replaced by its plain rendering.
	out := Plain(lines)
	mismatched := 0
	for i := range out {
		if i < len(buf) && raw[i] == lines[i] {
			out[i] = buf[i]
		} else {
			mismatched++
		}
	}
	if mismatched > 0 {
		logf(opts, "LEXER_LINE_FALLBACK | file=%s lines=%d", fileName, mismatched)
	}
	return out
}

// Plain is the pass-through tokenizer: each line escaped, no styling.
func Plain(lines []string) Buffer {
	buf := make(Buffer, len(lines))
	for i, line := range lines {
		buf[i] = html.EscapeString(line)
	}
	return buf
}

// LanguageFor returns the detected language name for a file, or "" when
// the pass-through tokenizer would be used.
func LanguageFor(fileName, text string) string {
	lexer := lexerFor(fileName, text)
	if lexer == nil {
		return ""
	}
	return lexer.Config().Name
}

func lexerFor(fileName, text string) chroma.Lexer {
	lexer := lexers.Match(filepath.Base(fileName))
	// Content sniffing only for names without an extension (scripts with a
	// shebang and the like); a known extension with no lexer stays plain.
	if lexer == nil && filepath.Ext(fileName) == "" && strings.TrimSpace(text) != "" {
		lexer = lexers.Analyse(text)
	}
	return lexer
}

func writeToken(sb *strings.Builder, class, value string) {
	if value == "" {
		return
	}
	if class == "" {
		sb.WriteString(html.EscapeString(value))
		return
	}
	sb.WriteString(`<span class="`)
	sb.WriteString(class)
	sb.WriteString(`">`)
	sb.WriteString(html.EscapeString(value))
	sb.WriteString("</span>")
}

// cssClass maps a token type to chroma's short class name, walking up to
// the sub-category and category when the exact type has no class.
func cssClass(tt chroma.TokenType) string {
	for _, t := range []chroma.TokenType{tt, tt.SubCategory(), tt.Category()} {
		if class, ok := chroma.StandardTypes[t]; ok {
			return class
		}
	}
	return ""
}

func logf(opts Options, format string, args ...any) {
	if opts.Logf != nil {
		opts.Logf(format, args...)
	}
}

// =============================================================================
// LOOKUP
// =============================================================================

// Lookup answers "what is the markup for line i" for one version of a file.
type Lookup struct {
	lines []string
}

// NewLookup wraps a buffer for a version with lineCount lines. Buffer
// entries past lineCount are ignored.
func NewLookup(buf Buffer, lineCount int) *Lookup {
	n := min(len(buf), lineCount)
	return &Lookup{lines: buf[:n]}
}

// Get returns the markup for a line reference. It reports false for an
// absent reference and for indices outside the buffer.
func (l *Lookup) Get(ref diff.LineRef) (string, bool) {
	if l == nil {
		return "", false
	}
	idx, ok := ref.Index()
	if !ok || idx > len(l.lines) {
		return "", false
	}
	return l.lines[idx-1], true
}

// Len returns the number of lines the lookup can answer for.
func (l *Lookup) Len() int {
	if l == nil {
		return 0
	}
	return len(l.lines)
}
