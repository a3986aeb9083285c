// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - TTY detection and color gating for owui.
//
// owui is built to sit in pipes: `echo q | owui chat send -m x | jq`
// must behave. That means three separate questions, answered here:
//
//   - is stdin a pipe? (read the prompt from it instead of -p)
//   - is stdout a terminal? (markdown/highlight rendering, colors)
//   - may we prompt interactively? (auth login, config init)
//
// Color control follows https://no-color.org/: NO_COLOR disables,
// FORCE_COLOR overrides detection, otherwise stdout TTY decides.

package cli

import (
	"os"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY reports whether stdin is a terminal, i.e. whether interactive
// prompts are possible.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY reports whether stdout is a terminal. Rendered output
// (markdown, syntax highlight, colors) is gated on this.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsStdinPiped reports whether stdin carries piped or redirected data
// rather than a terminal. `echo hi | owui chat send` reads the prompt
// from the pipe.
func IsStdinPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// =============================================================================
// TERMINAL WIDTH
// =============================================================================

const (
	// defaultTerminalWidth is the fallback when size detection fails
	// (piped stdout has no size).
	defaultTerminalWidth = 80

	// minTerminalWidth is the narrowest width wrapping will honor.
	minTerminalWidth = 40
)

// GetTerminalWidth returns the stdout terminal width, clamped to a
// usable minimum, or 80 when stdout is not a terminal.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultTerminalWidth
	}
	if width < minTerminalWidth {
		return minTerminalWidth
	}
	return width
}

// WrapText wraps text at word boundaries to fit maxWidth columns.
// maxWidth <= 0 means the current terminal width. Existing newlines are
// preserved; transcript bodies in `chat show` go through this.
func WrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		maxWidth = GetTerminalWidth()
	}

	// Margin so wrapped lines do not touch the terminal edge.
	if maxWidth > 10 {
		maxWidth -= 2
	}

	var result strings.Builder
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}

		if len(line) <= maxWidth {
			result.WriteString(line)
			continue
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		currentLine := words[0]
		for _, word := range words[1:] {
			if len(currentLine)+1+len(word) <= maxWidth {
				currentLine += " " + word
			} else {
				result.WriteString(currentLine)
				result.WriteString("\n")
				currentLine = word
			}
		}
		result.WriteString(currentLine)
	}

	return result.String()
}

// =============================================================================
// COLOR CONTROL
// =============================================================================

var (
	colorsEnabled     bool
	colorsEnabledOnce sync.Once
)

// ColorsEnabled reports whether output should be colored. The decision
// is made once per process: NO_COLOR wins, then FORCE_COLOR, then
// stdout TTY detection.
func ColorsEnabled() bool {
	colorsEnabledOnce.Do(func() {
		if os.Getenv("NO_COLOR") != "" {
			colorsEnabled = false
			return
		}
		if os.Getenv("FORCE_COLOR") != "" {
			colorsEnabled = true
			return
		}
		colorsEnabled = IsStdoutTTY()
	})
	return colorsEnabled
}

// ForceColorsEnabled overrides color detection. Only tests use this.
func ForceColorsEnabled(enabled bool) {
	colorsEnabled = enabled
	colorsEnabledOnce = sync.Once{}
	colorsEnabledOnce.Do(func() {
		colorsEnabled = enabled
	})
}

// GetColorProfile resolves the termenv profile for lipgloss: Ascii
// (no styling at all) when colors are off, else terminal detection.
func GetColorProfile() termenv.Profile {
	if !ColorsEnabled() {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}

// =============================================================================
// INTERACTIVE GATING
// =============================================================================

// RequiresTTY returns an error when stdin is not a terminal. Commands
// that prompt (auth login, config init) call this before their first
// prompt so piped invocations fail with a clear message instead of
// hanging.
func RequiresTTY(operation string) error {
	if !IsTTY() {
		return &TTYRequiredError{Operation: operation}
	}
	return nil
}

// TTYRequiredError reports an interactive operation attempted without
// a terminal on stdin.
type TTYRequiredError struct {
	Operation string
}

func (e *TTYRequiredError) Error() string {
	if e.Operation != "" {
		return "stdin is not a terminal; cannot " + e.Operation + " interactively"
	}
	return "stdin is not a terminal; interactive input not available"
}
