// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared lipgloss styles for owui command output.
//
// Every handler renders through this palette so `owui models list` and
// `owui chat show` read like the same program. Styling degrades to
// plain text automatically: the init hook resolves the color profile
// once, and a piped stdout (or NO_COLOR) yields an Ascii profile under
// which lipgloss emits no escape sequences at all.

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func init() {
	// Respects NO_COLOR, FORCE_COLOR, and TTY detection.
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	// TitleStyle heads full-screen output such as `chat show` and the
	// `config init` wizard.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")). // cyan
			MarginBottom(1)

	// SectionStyle marks speaker turns inside a transcript.
	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")). // white
			MarginTop(1)

	// LabelStyle renders the left column of detail views ("Model:",
	// "Server:"). Fixed width keeps values aligned; override via
	// RenderLabel when a view needs wider labels.
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // light gray
			Width(16)

	// ValueStyle renders the right column of detail views.
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // off-white

	// SuccessStyle renders the [OK] marker on confirmations.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")). // green
			Bold(true)

	// ErrorStyle renders "Error:" prefixes and per-file upload failures.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // red
			Bold(true)

	// WarningStyle renders recoverable conditions: interrupted streams,
	// oversized uploads, empty search results.
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // amber

	// DimStyle renders hints and secondary notices ("Use --show to
	// print the full token.").
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")) // dim gray

	// SeparatorStyle renders the rule between a transcript header and
	// its messages.
	SeparatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark gray

	// InfoStyle renders search result ordinals and progress notes.
	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")) // blue

	// HeaderStyle renders table header rows.
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("245")) // light gray
)

// =============================================================================
// RENDER HELPERS
// =============================================================================

// RenderSeparator renders a horizontal rule. Width defaults to 70.
func RenderSeparator(width ...int) string {
	w := 70
	if len(width) > 0 && width[0] > 0 {
		w = width[0]
	}
	return SeparatorStyle.Render(strings.Repeat("-", w))
}

// RenderLabel renders a detail-view label at the standard width, or at
// an explicit width when the view's labels run long.
func RenderLabel(label string, width ...int) string {
	if len(width) > 0 && width[0] > 0 {
		return LabelStyle.Copy().Width(width[0]).Render(label)
	}
	return LabelStyle.Render(label)
}
