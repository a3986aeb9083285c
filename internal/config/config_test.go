// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromPath_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}

	if cfg.DefaultProfile != "default" {
		t.Errorf("DefaultProfile = %q, want default", cfg.DefaultProfile)
	}
	if got := cfg.Profiles["default"].URI; got != DefaultURI {
		t.Errorf("default profile URI = %q, want %q", got, DefaultURI)
	}
	if cfg.Defaults.Timeout != 30 {
		t.Errorf("Defaults.Timeout = %d, want 30", cfg.Defaults.Timeout)
	}
	if !cfg.Defaults.Stream {
		t.Error("Defaults.Stream = false, want true")
	}
	if cfg.Defaults.Format != "text" {
		t.Errorf("Defaults.Format = %q, want text", cfg.Defaults.Format)
	}
	if !cfg.Output.Colors {
		t.Error("Output.Colors = false, want true")
	}
}

func TestLoadFromPath_FileValuesOverrideDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
version: 1
default_profile: work
profiles:
  work:
    uri: https://chat.example.test
defaults:
  model: llama3
  stream: false
  timeout: 60
output:
  colors: false
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}

	if cfg.DefaultProfile != "work" {
		t.Errorf("DefaultProfile = %q, want work", cfg.DefaultProfile)
	}
	if got := cfg.Profiles["work"].URI; got != "https://chat.example.test" {
		t.Errorf("work URI = %q", got)
	}
	if _, stillThere := cfg.Profiles["default"]; stillThere {
		t.Error("profile table kept the built-in default despite the file replacing it")
	}
	if cfg.Defaults.Stream {
		t.Error("Defaults.Stream = true, want false from file")
	}
	if cfg.Defaults.Timeout != 60 {
		t.Errorf("Defaults.Timeout = %d, want 60", cfg.Defaults.Timeout)
	}
	if cfg.Defaults.Model != "llama3" {
		t.Errorf("Defaults.Model = %q, want llama3", cfg.Defaults.Model)
	}
	if cfg.Output.Colors {
		t.Error("Output.Colors = true, want false from file")
	}
	// Unset fields keep their defaults.
	if cfg.Defaults.Format != "text" {
		t.Errorf("Defaults.Format = %q, want text", cfg.Defaults.Format)
	}
	if !cfg.Output.ProgressBars {
		t.Error("Output.ProgressBars = false, want default true")
	}
}

func TestLoadFromPath_MalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("profiles: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("LoadFromPath() accepted malformed YAML")
	}
}

func TestLoadFromPath_BadFormatFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("defaults:\n  format: xml\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatal("LoadFromPath() accepted an unsupported format")
	}
	if !strings.Contains(err.Error(), "format") {
		t.Errorf("error %q does not mention the format", err)
	}
}

func TestSaveToPath_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := Default()
	cfg.Defaults.Model = "mistral"
	cfg.Profiles["prod"] = ProfileConfig{URI: "https://prod.example.test"}

	if err := SaveToPath(cfg, path); err != nil {
		t.Fatalf("SaveToPath() error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file perm = %o, want 0600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if loaded.Defaults.Model != "mistral" {
		t.Errorf("Model = %q, want mistral", loaded.Defaults.Model)
	}
	if got := loaded.Profiles["prod"].URI; got != "https://prod.example.test" {
		t.Errorf("prod URI = %q", got)
	}
}

func TestGetValue(t *testing.T) {
	cfg := Default()
	cfg.Defaults.Model = "llama3"
	cfg.Profiles["prod"] = ProfileConfig{URI: "https://prod.example.test"}

	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "defaults.model", want: "llama3"},
		{key: "defaults.format", want: "text"},
		{key: "defaults.stream", want: "true"},
		{key: "defaults.timeout", want: "30"},
		{key: "output.colors", want: "true"},
		{key: "output.timestamps", want: "false"},
		{key: "profiles.prod", want: "https://prod.example.test"},
		{key: "profiles.prod.uri", want: "https://prod.example.test"},
		{key: "profiles.missing", wantErr: true},
		{key: "defaults.bogus", wantErr: true},
		{key: "bogus.model", wantErr: true},
		{key: "toodeep.a.b.c", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			got, err := cfg.GetValue(tc.key)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("GetValue(%q) succeeded, want error", tc.key)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetValue(%q) error: %v", tc.key, err)
			}
			if got != tc.want {
				t.Errorf("GetValue(%q) = %q, want %q", tc.key, got, tc.want)
			}
		})
	}
}

func TestSetValue(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
		check   func(*Config) bool
	}{
		{
			name: "model", key: "defaults.model", value: "mistral",
			check: func(c *Config) bool { return c.Defaults.Model == "mistral" },
		},
		{
			name: "format valid", key: "defaults.format", value: "json",
			check: func(c *Config) bool { return c.Defaults.Format == "json" },
		},
		{
			name: "format invalid", key: "defaults.format", value: "xml", wantErr: true,
		},
		{
			name: "stream accepts yes", key: "defaults.stream", value: "yes",
			check: func(c *Config) bool { return c.Defaults.Stream },
		},
		{
			name: "stream anything else is false", key: "defaults.stream", value: "off",
			check: func(c *Config) bool { return !c.Defaults.Stream },
		},
		{
			name: "timeout", key: "defaults.timeout", value: "90",
			check: func(c *Config) bool { return c.Defaults.Timeout == 90 },
		},
		{
			name: "timeout rejects zero", key: "defaults.timeout", value: "0", wantErr: true,
		},
		{
			name: "timeout rejects text", key: "defaults.timeout", value: "soon", wantErr: true,
		},
		{
			name: "new profile uri", key: "profiles.staging.uri", value: "http://staging.example.test",
			check: func(c *Config) bool { return c.Profiles["staging"].URI == "http://staging.example.test" },
		},
		{
			name: "profile uri needs scheme", key: "profiles.p.uri", value: "staging.example.test", wantErr: true,
		},
		{
			name: "profile uri rejects ftp", key: "profiles.p.uri", value: "ftp://x", wantErr: true,
		},
		{
			name: "profile field must be uri", key: "profiles.p.token", value: "x", wantErr: true,
		},
		{
			name: "output colors", key: "output.colors", value: "false",
			check: func(c *Config) bool { return !c.Output.Colors },
		},
		{
			name: "unknown section", key: "server.uri", value: "x", wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			err := cfg.SetValue(tc.key, tc.value)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("SetValue(%q, %q) succeeded, want error", tc.key, tc.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetValue(%q, %q) error: %v", tc.key, tc.value, err)
			}
			if !tc.check(cfg) {
				t.Errorf("SetValue(%q, %q) did not apply", tc.key, tc.value)
			}
		})
	}
}
