// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jeranaias/owui/internal/config"
	"github.com/jeranaias/owui/internal/history"
	"github.com/jeranaias/owui/internal/openwebui"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"cancelled stream", context.Canceled, ExitSuccess},
		{"wrapped cancellation", fmt.Errorf("stream: %w", context.Canceled), ExitSuccess},
		{"usage error", NewUsageError("missing prompt"), ExitUsageError},
		{"usage error with example", NewUsageErrorWithExample("bad", "owui help"), ExitUsageError},
		{"missing argument", ErrMissingArgument("model ID", "owui models info <id>"), ExitUsageError},
		{"unknown profile", &config.UnknownProfileError{Name: "staging"}, ExitUsageError},
		{"no token", openwebui.ErrNoToken, ExitAuthError},
		{"wrapped no token", fmt.Errorf("%w: run 'owui auth login' first", openwebui.ErrNoToken), ExitAuthError},
		{"auth failure", openwebui.NewAuthError("Authentication required", ""), ExitAuthError},
		{"network failure", openwebui.NewNetworkError("Could not connect", "", errors.New("refused")), ExitNetworkError},
		{"server failure", openwebui.NewServerError(503, "Server error (503)"), ExitServerError},
		{"api failure", openwebui.NewGeneralError("API error (404)"), ExitGeneralError},
		{"plain error", errors.New("something broke"), ExitGeneralError},
		{"wrapped client error", fmt.Errorf("listing models: %w", openwebui.NewAuthError("expired", "")), ExitAuthError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestUsageError_Error(t *testing.T) {
	plain := NewUsageError("Prompt required. Use -p or pipe input.")
	if got := plain.Error(); got != "Prompt required. Use -p or pipe input." {
		t.Errorf("Error() = %q", got)
	}

	withExample := NewUsageErrorWithExample("unknown command: chta", "owui help")
	want := "unknown command: chta\nExample: owui help"
	if got := withExample.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWrapError(t *testing.T) {
	if WrapError(nil, "context") != nil {
		t.Error("WrapError(nil) != nil")
	}

	base := openwebui.NewServerError(500, "Server error (500)")
	wrapped := WrapError(base, "pulling model")
	if wrapped == nil {
		t.Fatal("WrapError() = nil")
	}
	// Wrapping must not hide the classification.
	if GetExitCode(wrapped) != ExitServerError {
		t.Errorf("exit code after wrap = %d, want %d", GetExitCode(wrapped), ExitServerError)
	}
	var clientErr *openwebui.ClientError
	if !errors.As(wrapped, &clientErr) {
		t.Error("errors.As through WrapError failed")
	}
}

func TestChatLookupError(t *testing.T) {
	// Store lookup misses are the user's input problem, not a fault.
	notFound := fmt.Errorf("%w: abc", history.ErrChatNotFound)
	if GetExitCode(chatLookupError(notFound)) != ExitUsageError {
		t.Error("chat-not-found should map to a usage exit")
	}
	if GetExitCode(chatLookupError(history.ErrAmbiguousChat)) != ExitUsageError {
		t.Error("ambiguous prefix should map to a usage exit")
	}

	plain := errors.New("disk exploded")
	if got := chatLookupError(plain); got != plain {
		t.Errorf("chatLookupError(plain) = %v, want passthrough", got)
	}
}
