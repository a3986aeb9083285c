// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseGlobalFlags_Extraction(t *testing.T) {
	remaining, args := parseGlobalFlags([]string{
		"-P", "work", "--uri", "http://10.0.0.5:8080", "--token", "sk-abc",
		"-f", "json", "-t", "60", "-q", "--verbose", "--json", "--no-stream",
		"chat", "send", "-p", "hello",
	})

	if args.Profile != "work" {
		t.Errorf("Profile = %q, want work", args.Profile)
	}
	if args.URI != "http://10.0.0.5:8080" {
		t.Errorf("URI = %q, want http://10.0.0.5:8080", args.URI)
	}
	if args.Token != "sk-abc" {
		t.Errorf("Token = %q, want sk-abc", args.Token)
	}
	if args.Format != "json" {
		t.Errorf("Format = %q, want json", args.Format)
	}
	if args.Timeout != 60 {
		t.Errorf("Timeout = %d, want 60", args.Timeout)
	}
	if !args.Quiet || !args.Verbose || !args.JSON || !args.NoStream {
		t.Errorf("bool flags = %v/%v/%v/%v, want all true",
			args.Quiet, args.Verbose, args.JSON, args.NoStream)
	}

	want := []string{"chat", "send", "-p", "hello"}
	if !reflect.DeepEqual(remaining, want) {
		t.Errorf("remaining = %v, want %v", remaining, want)
	}
}

func TestParseGlobalFlags_EqualsForms(t *testing.T) {
	remaining, args := parseGlobalFlags([]string{
		"--profile=home", "--uri=http://localhost:3000", "--timeout=15",
		"--format=yaml", "--token=tok", "models",
	})

	if args.Profile != "home" || args.URI != "http://localhost:3000" ||
		args.Timeout != 15 || args.Format != "yaml" || args.Token != "tok" {
		t.Errorf("parsed = %+v, want all equals-form values set", args)
	}
	if !reflect.DeepEqual(remaining, []string{"models"}) {
		t.Errorf("remaining = %v, want [models]", remaining)
	}
}

func TestParseGlobalFlags_InvalidTimeout(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"not a number", []string{"-t", "abc", "chat"}},
		{"zero", []string{"--timeout", "0", "chat"}},
		{"negative", []string{"--timeout=-5", "chat"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, args := parseGlobalFlags(tt.args)
			if args.Err == nil {
				t.Fatal("Err = nil, want usage error")
			}
			var usageErr *UsageError
			if !errors.As(args.Err, &usageErr) {
				t.Errorf("Err type = %T, want *UsageError", args.Err)
			}
			if GetExitCode(args.Err) != ExitUsageError {
				t.Errorf("exit code = %d, want %d", GetExitCode(args.Err), ExitUsageError)
			}
		})
	}
}

func TestParseGlobalFlags_CaseSensitive(t *testing.T) {
	// -t is the global timeout; -T belongs to chat send (temperature)
	// and must pass through untouched.
	remaining, args := parseGlobalFlags([]string{"chat", "send", "-T", "0.9", "-t", "45"})

	if args.Timeout != 45 {
		t.Errorf("Timeout = %d, want 45", args.Timeout)
	}
	want := []string{"chat", "send", "-T", "0.9"}
	if !reflect.DeepEqual(remaining, want) {
		t.Errorf("remaining = %v, want %v", remaining, want)
	}
}

func TestParseGlobalFlags_CommandFlagsPassThrough(t *testing.T) {
	remaining, _ := parseGlobalFlags([]string{"chat", "send", "-m", "llama3", "--save"})

	want := []string{"chat", "send", "-m", "llama3", "--save"}
	if !reflect.DeepEqual(remaining, want) {
		t.Errorf("remaining = %v, want %v", remaining, want)
	}
}

func TestParseGlobalFlags_Version(t *testing.T) {
	for _, flag := range []string{"-v", "--version"} {
		_, args := parseGlobalFlags([]string{flag})
		if !args.ShowVersion {
			t.Errorf("ShowVersion after %s = false, want true", flag)
		}
	}
}

func TestHandleUnknownCommand(t *testing.T) {
	err := HandleUnknownCommand(Args{Unknown: "chta"})
	if err == nil {
		t.Fatal("HandleUnknownCommand() = nil, want error")
	}
	if !strings.Contains(err.Error(), "chta") {
		t.Errorf("error = %q, want it to name the bad command", err)
	}
	if GetExitCode(err) != ExitUsageError {
		t.Errorf("exit code = %d, want %d", GetExitCode(err), ExitUsageError)
	}
}

func TestUsageTextNamesEveryCommand(t *testing.T) {
	// The help text is the only user-facing command inventory; keep it
	// in step with the dispatch table.
	for _, cmd := range []string{"auth", "chat", "models", "rag", "config", "admin", "version"} {
		if !strings.Contains(usageText, "owui "+cmd) {
			t.Errorf("usage text missing command %q", cmd)
		}
	}
	for _, flag := range []string{"--profile", "--uri", "--token", "--format", "--timeout", "--json", "--no-stream"} {
		if !strings.Contains(usageText, flag) {
			t.Errorf("usage text missing global flag %q", flag)
		}
	}
}
