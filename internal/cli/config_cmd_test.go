// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Tests for the config command. XDG_CONFIG_HOME points at a temp
// directory so nothing touches the real user config.
package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigGet_RequiresKey(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	err := HandleConfigCommand(Args{Raw: []string{"get"}})
	var usageErr *UsageError
	if !errors.As(err, &usageErr) {
		t.Fatalf("error = %v, want *UsageError", err)
	}
	if !strings.Contains(usageErr.Reason, "config key") {
		t.Errorf("reason = %q, want mention of config key", usageErr.Reason)
	}
}

func TestConfigGet_UnknownKey(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	err := HandleConfigCommand(Args{Raw: []string{"get", "bogus.key"}})
	if err == nil {
		t.Fatal("config get bogus.key should fail")
	}
	// Unknown keys are runtime errors (exit 1), not usage errors: the
	// command was well-formed, the key just does not exist.
	if got := GetExitCode(err); got != ExitGeneralError {
		t.Errorf("GetExitCode() = %d, want %d", got, ExitGeneralError)
	}
}

func TestConfigSet_RequiresKeyAndValue(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	for _, raw := range [][]string{
		{"set"},
		{"set", "defaults.model"},
	} {
		err := HandleConfigCommand(Args{Raw: raw})
		var usageErr *UsageError
		if !errors.As(err, &usageErr) {
			t.Errorf("HandleConfigCommand(%v) error = %v, want *UsageError", raw, err)
		}
	}
}

func TestConfigSetThenGet(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := HandleConfigCommand(Args{Raw: []string{"set", "defaults.model", "llama3.2"}}); err != nil {
		t.Fatalf("config set: %v", err)
	}

	// The value must round-trip through the file on disk.
	if err := HandleConfigCommand(Args{Raw: []string{"get", "defaults.model"}}); err != nil {
		t.Fatalf("config get after set: %v", err)
	}
}

func TestConfigInit_RefusesOverwrite(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	cfgDir := filepath.Join(xdg, "openwebui")
	if err := os.MkdirAll(cfgDir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte("version: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	err := HandleConfigCommand(Args{Raw: []string{"init"}})
	if err == nil {
		t.Fatal("config init over an existing file should fail without --force")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("error = %q, want overwrite refusal", err.Error())
	}
	if got := GetExitCode(err); got != ExitGeneralError {
		t.Errorf("GetExitCode() = %d, want %d", got, ExitGeneralError)
	}
}

func TestConfigShow_RequiresFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	err := HandleConfigCommand(Args{Raw: []string{"show"}})
	if err == nil {
		t.Fatal("config show without a config file should fail")
	}
	if !strings.Contains(err.Error(), "no config file") {
		t.Errorf("error = %q, want missing-file message", err.Error())
	}
}

func TestConfigPath_AlwaysSucceeds(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	// path works whether or not the file exists, so scripts can use it
	// unconditionally.
	if err := HandleConfigCommand(Args{Raw: []string{"path"}}); err != nil {
		t.Errorf("config path: %v", err)
	}
}
