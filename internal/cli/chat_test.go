// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Tests for the chat command: history file loading, prompt resolution,
// and flag validation. Validation tests exercise HandleChatCommand
// directly; every case here fails before any network or store access.
package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// containsAll reports whether s contains every substring.
func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

// =============================================================================
// HISTORY FILE LOADING
// =============================================================================

func TestLoadHistoryFile(t *testing.T) {
	dir := t.TempDir()

	writeFile := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}

	arrayPath := writeFile("array.json",
		`[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]`)
	wrapperPath := writeFile("wrapper.json",
		`{"messages":[{"role":"user","content":"hi"}]}`)
	invalidPath := writeFile("invalid.json", `{not json`)
	badShapePath := writeFile("badshape.json", `{"turns":[]}`)

	tests := []struct {
		name      string
		path      string
		wantCount int
		wantUsage bool
	}{
		{"empty path means no history", "", 0, false},
		{"bare array", arrayPath, 2, false},
		{"messages wrapper", wrapperPath, 1, false},
		{"missing file", filepath.Join(dir, "missing.json"), 0, true},
		{"invalid JSON", invalidPath, 0, true},
		{"wrong shape", badShapePath, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			messages, err := loadHistoryFile(tt.path)

			if tt.wantUsage {
				var usageErr *UsageError
				if !errors.As(err, &usageErr) {
					t.Fatalf("loadHistoryFile(%q) error = %v, want *UsageError", tt.path, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadHistoryFile(%q) error: %v", tt.path, err)
			}
			if len(messages) != tt.wantCount {
				t.Errorf("loadHistoryFile(%q) = %d messages, want %d", tt.path, len(messages), tt.wantCount)
			}
		})
	}
}

func TestLoadHistoryFile_PreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	content := `[{"role":"user","content":"first"},{"role":"assistant","content":"second"}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	messages, err := loadHistoryFile(path)
	if err != nil {
		t.Fatalf("loadHistoryFile() error: %v", err)
	}
	if messages[0].Role != "user" || messages[0].Content != "first" {
		t.Errorf("messages[0] = %+v, want user/first", messages[0])
	}
	if messages[1].Role != "assistant" || messages[1].Content != "second" {
		t.Errorf("messages[1] = %+v, want assistant/second", messages[1])
	}
}

// =============================================================================
// PROMPT RESOLUTION
// =============================================================================

// Only the flag path runs here: the stdin path depends on how the test
// binary was invoked.
func TestResolvePrompt_FlagWins(t *testing.T) {
	got, err := resolvePrompt("explain goroutines")
	if err != nil {
		t.Fatalf("resolvePrompt() error: %v", err)
	}
	if got != "explain goroutines" {
		t.Errorf("resolvePrompt() = %q, want flag value", got)
	}
}

// =============================================================================
// SEND FLAG VALIDATION
// =============================================================================

func TestChatSend_FlagValidation(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
	}{
		{"non-numeric temperature", []string{"send", "-T", "abc", "-m", "llama3.2", "-p", "hi"}},
		{"non-numeric max-tokens", []string{"send", "--max-tokens", "xyz", "-m", "llama3.2", "-p", "hi"}},
		{"zero max-tokens", []string{"send", "--max-tokens", "0", "-m", "llama3.2", "-p", "hi"}},
		{"negative max-tokens", []string{"send", "--max-tokens", "-5", "-m", "llama3.2", "-p", "hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := HandleChatCommand(Args{Raw: tt.raw})
			var usageErr *UsageError
			if !errors.As(err, &usageErr) {
				t.Fatalf("HandleChatCommand(%v) error = %v, want *UsageError", tt.raw, err)
			}
			if got := GetExitCode(err); got != ExitUsageError {
				t.Errorf("GetExitCode() = %d, want %d", got, ExitUsageError)
			}
		})
	}
}

func TestHandleChatCommand_Dispatch(t *testing.T) {
	t.Run("no subcommand", func(t *testing.T) {
		err := HandleChatCommand(Args{Raw: nil})
		var usageErr *UsageError
		if !errors.As(err, &usageErr) {
			t.Fatalf("error = %v, want *UsageError", err)
		}
		if !containsAll(usageErr.Reason, "send", "list", "export") {
			t.Errorf("usage error should list subcommands, got %q", usageErr.Reason)
		}
	})

	t.Run("unknown subcommand", func(t *testing.T) {
		err := HandleChatCommand(Args{Raw: []string{"bogus"}})
		var usageErr *UsageError
		if !errors.As(err, &usageErr) {
			t.Fatalf("error = %v, want *UsageError", err)
		}
		if !containsAll(usageErr.Reason, "bogus") {
			t.Errorf("usage error should name the subcommand, got %q", usageErr.Reason)
		}
	})
}

// =============================================================================
// SMALL HELPERS
// =============================================================================

func TestShortChatID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"", ""},
		{"abc", "abc"},
		{"exactly8", "exactly8"},
		{"abcdef1234567890", "abcdef12"},
	}

	for _, tt := range tests {
		if got := shortChatID(tt.id); got != tt.want {
			t.Errorf("shortChatID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
