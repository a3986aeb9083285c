// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// format.go - Output rendering for owui commands.
//
// Three output formats: text (styled tables, markdown on a TTY), json,
// and yaml. Structured formats are syntax-highlighted when stdout is a
// terminal and pass through unstyled when piped, so `owui ... -f json |
// jq` always sees clean bytes.

package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/owui/internal/util"
)

// markdownRenderer is the global glamour renderer for markdown output.
// nil means fall back to plain text.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		markdownRenderer = nil
	}
}

// RenderMarkdown renders markdown content for terminal display.
// Falls back to the raw text when the renderer is unavailable.
func RenderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// =============================================================================
// STRUCTURED OUTPUT (json / yaml)
// =============================================================================

// MarshalJSON renders v as indented JSON.
func MarshalJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// MarshalYAML renders v as YAML.
func MarshalYAML(v interface{}) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return string(data), nil
}

// RenderStructured renders v in the requested format ("json" or "yaml"),
// syntax-highlighted when stdout is a terminal.
func RenderStructured(v interface{}, format string) (string, error) {
	var text string
	var err error

	switch format {
	case "yaml":
		text, err = MarshalYAML(v)
	default:
		text, err = MarshalJSON(v)
	}
	if err != nil {
		return "", err
	}

	if ColorsEnabled() && IsStdoutTTY() {
		return highlightCode(text, format), nil
	}
	return text, nil
}

// highlightCode applies syntax highlighting using the chroma library.
// Returns the input unchanged when highlighting fails.
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

// =============================================================================
// TABLES
// =============================================================================

// tableGap separates columns.
const tableGap = "  "

// RenderTable renders headers and rows as an aligned text table. Column
// widths follow the widest cell, measured in display cells so wide
// runes line up; cells wider than 48 are truncated with an ellipsis.
func RenderTable(headers []string, rows [][]string) string {
	const maxCell = 48

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = util.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if w := util.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] > maxCell {
			widths[i] = maxCell
		}
	}

	var sb strings.Builder

	headerCells := make([]string, len(headers))
	for i, h := range headers {
		headerCells[i] = util.PadRight(util.TruncateWidth(h, widths[i]), widths[i])
	}
	sb.WriteString(HeaderStyle.Render(strings.TrimRight(strings.Join(headerCells, tableGap), " ")))
	sb.WriteString("\n")

	for _, row := range rows {
		cells := make([]string, 0, len(row))
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			cells = append(cells, util.PadRight(util.TruncateWidth(cell, widths[i]), widths[i]))
		}
		sb.WriteString(strings.TrimRight(strings.Join(cells, tableGap), " "))
		sb.WriteString("\n")
	}

	return sb.String()
}

// MaskToken renders a token safe for display: first eight and last four
// characters with an ellipsis between. Short tokens mask entirely.
func MaskToken(token string) string {
	if len(token) <= 12 {
		return strings.Repeat("*", len(token))
	}
	return token[:8] + "..." + token[len(token)-4:]
}
