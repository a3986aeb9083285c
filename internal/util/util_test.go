// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		want     string
	}{
		{"shorter than limit", "abc", 10, "abc"},
		{"exactly at limit", "abcde", 5, "abcde"},
		{"truncated with ellipsis", "abcdefghij", 6, "abc..."},
		{"tiny limit has no ellipsis", "abcdef", 2, "ab"},
		{"zero limit", "abc", 0, ""},
		{"multibyte safe", "héllo wörld", 8, "héllo..."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := TruncateRunes(tc.input, tc.maxRunes); got != tc.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.input, tc.maxRunes, got, tc.want)
			}
		})
	}
}

func TestTruncateWidth_CJK(t *testing.T) {
	// Each CJK character is two columns wide.
	if got := TruncateWidth("日本語テスト", 7); StringWidth(got) > 7 {
		t.Errorf("TruncateWidth produced %q with width %d, want <= 7", got, StringWidth(got))
	}
	if got := TruncateWidth("日本語", 6); got != "日本語" {
		t.Errorf("TruncateWidth(%q, 6) = %q, want unchanged", "日本語", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("PadRight(%q, 5) = %q", "ab", got)
	}
	if got := StringWidth(PadRight("日本", 6)); got != 6 {
		t.Errorf("padded width = %d, want 6", got)
	}
}

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	if err := AtomicWriteFile(path, []byte("version: 1\n"), 0600, 0700); err != nil {
		t.Fatalf("AtomicWriteFile() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if string(data) != "version: 1\n" {
		t.Errorf("content = %q, want %q", data, "version: 1\n")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file perm = %o, want 0600", perm)
	}

	dirInfo, err := os.Stat(filepath.Dir(path))
	if err != nil {
		t.Fatalf("Stat(dir) error: %v", err)
	}
	if perm := dirInfo.Mode().Perm(); perm != 0700 {
		t.Errorf("dir perm = %o, want 0700", perm)
	}
}

func TestAtomicWriteFile_Overwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")

	if err := AtomicWriteFile(path, []byte("old"), 0600, 0700); err != nil {
		t.Fatalf("first write error: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("new"), 0600, 0700); err != nil {
		t.Fatalf("second write error: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "new" {
		t.Errorf("content = %q, want %q", data, "new")
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}
