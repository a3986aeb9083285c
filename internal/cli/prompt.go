// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// prompt.go - Interactive input for owui commands.
//
// Two kinds of interaction: line prompts (auth login email, config init
// fields) backed by liner for editing support, and no-echo password
// entry via x/term. Destructive commands confirm through
// RequireConfirmation unless --force was given.
//
// All prompts require a TTY. Piped invocations must pass everything via
// flags; prompting into a pipe would hang scripts.

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// ErrPromptAborted reports a Ctrl-C during an interactive prompt. It
// wraps context.Canceled, so an aborted prompt exits with code 0 like
// an interrupted stream.
var ErrPromptAborted = fmt.Errorf("operation cancelled: %w", context.Canceled)

// PromptLine reads one line of input with editing support. An empty
// answer yields defaultValue. Ctrl-C returns ErrPromptAborted.
func PromptLine(label, defaultValue string) (string, error) {
	if err := RequiresTTY("prompt for " + label); err != nil {
		return "", err
	}

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()

	display := label
	if defaultValue != "" {
		display = fmt.Sprintf("%s [%s]", label, defaultValue)
	}

	input, err := line.Prompt(display + ": ")
	if err != nil {
		if err == liner.ErrPromptAborted {
			return "", ErrPromptAborted
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return defaultValue, nil
	}
	return input, nil
}

// PromptPassword reads a secret without echoing it. The trailing
// newline the terminal swallows is replaced on stderr so the next
// output starts on a fresh line.
func PromptPassword(label string) (string, error) {
	if err := RequiresTTY("prompt for " + label); err != nil {
		return "", err
	}

	fmt.Fprintf(os.Stderr, "%s: ", label)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", label, err)
	}
	return string(secret), nil
}

// =============================================================================
// CONFIRMATION HANDLING
// =============================================================================

// RequireConfirmation checks if the user has confirmed a destructive
// action. It implements a consistent pattern across all commands:
//
//  1. If forceFlag is true (--force), return true immediately
//  2. If jsonMode is true, require --force (no interactive prompts)
//  3. If stdin is not a TTY, require --force (can't prompt)
//  4. Otherwise, show interactive prompt and wait for user input
//
// Example:
//
//	confirmed, err := RequireConfirmation(force, "delete model llama3", jsonMode)
//	if err != nil {
//	    return err
//	}
//	if !confirmed {
//	    ShowCancellationMessage()
//	    return nil
//	}
func RequireConfirmation(forceFlag bool, action string, jsonMode bool) (bool, error) {
	if forceFlag {
		return true, nil
	}

	if jsonMode {
		return false, NewUsageError("confirmation required: use --force for destructive actions in JSON mode")
	}

	if !IsTTY() {
		return false, NewUsageError("confirmation required but stdin is not a terminal; use --force")
	}

	fmt.Printf("Are you sure you want to %s? [y/N]: ", action)

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	response := strings.ToLower(strings.TrimSpace(input))
	return response == "y" || response == "yes", nil
}

// ShowCancellationMessage displays a standard cancellation message.
// Use this after RequireConfirmation returns false.
func ShowCancellationMessage() {
	fmt.Println(DimStyle.Render("Cancelled."))
}
