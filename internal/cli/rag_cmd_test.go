// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Tests for rag command validation. Every case here fails argument
// validation before the handler builds a client, so no server is
// involved.
package cli

import (
	"errors"
	"strings"
	"testing"
)

func TestRAGSearch_Validation(t *testing.T) {
	tests := []struct {
		name       string
		raw        []string
		wantReason string
	}{
		{
			name:       "empty query",
			raw:        []string{"search"},
			wantReason: "Search query cannot be empty",
		},
		{
			name:       "query too short",
			raw:        []string{"search", "hi"},
			wantReason: "at least 3 characters",
		},
		{
			name:       "missing collection",
			raw:        []string{"search", "connection", "pooling"},
			wantReason: "Collection ID is required",
		},
		{
			name:       "non-numeric top-k",
			raw:        []string{"search", "pooling", "-c", "col-1", "-k", "abc"},
			wantReason: "invalid top-k",
		},
		{
			name:       "zero top-k",
			raw:        []string{"search", "pooling", "-c", "col-1", "-k", "0"},
			wantReason: "at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := HandleRAGCommand(Args{Raw: tt.raw})
			var usageErr *UsageError
			if !errors.As(err, &usageErr) {
				t.Fatalf("HandleRAGCommand(%v) error = %v, want *UsageError", tt.raw, err)
			}
			if !strings.Contains(usageErr.Reason, tt.wantReason) {
				t.Errorf("reason = %q, want substring %q", usageErr.Reason, tt.wantReason)
			}
		})
	}
}

func TestRAGSearch_QueryJoinsPositionals(t *testing.T) {
	// A multi-word query without quotes still fails on the missing
	// collection, proving the words were joined rather than dropped.
	err := HandleRAGCommand(Args{Raw: []string{"search", "error", "handling", "patterns"}})
	var usageErr *UsageError
	if !errors.As(err, &usageErr) {
		t.Fatalf("error = %v, want *UsageError", err)
	}
	if !strings.Contains(usageErr.Reason, "Collection ID") {
		t.Errorf("reason = %q, want collection requirement (query should have passed)", usageErr.Reason)
	}
}

func TestRAGDispatch(t *testing.T) {
	tests := []struct {
		name       string
		raw        []string
		wantReason string
	}{
		{"no subcommand", []string{}, "rag requires a subcommand"},
		{"unknown subcommand", []string{"bogus"}, "unknown rag subcommand: bogus"},
		{"unknown files subcommand", []string{"files", "bogus"}, "unknown rag files subcommand: bogus"},
		{"unknown collections subcommand", []string{"collections", "bogus"}, "unknown rag collections subcommand: bogus"},
		{"upload without paths", []string{"files", "upload"}, "missing required argument: file path"},
		{"create without name", []string{"collections", "create"}, "missing required argument: collection name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := HandleRAGCommand(Args{Raw: tt.raw})
			var usageErr *UsageError
			if !errors.As(err, &usageErr) {
				t.Fatalf("HandleRAGCommand(%v) error = %v, want *UsageError", tt.raw, err)
			}
			if !strings.Contains(usageErr.Reason, tt.wantReason) {
				t.Errorf("reason = %q, want substring %q", usageErr.Reason, tt.wantReason)
			}
			if got := GetExitCode(err); got != ExitUsageError {
				t.Errorf("GetExitCode() = %d, want %d", got, ExitUsageError)
			}
		})
	}
}

func TestTruncateSnippet(t *testing.T) {
	tests := []struct {
		name string
		s    string
		max  int
		want string
	}{
		{"shorter than max", "hello", 10, "hello"},
		{"exactly max", "hello", 5, "hello"},
		{"truncated", "hello world", 5, "hello"},
		{"multibyte safe", "日本語のテキスト", 3, "日本語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateSnippet(tt.s, tt.max); got != tt.want {
				t.Errorf("truncateSnippet(%q, %d) = %q, want %q", tt.s, tt.max, got, tt.want)
			}
		})
	}
}
