// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows
// +build !windows

// Unix key material: a random 32-byte key file protected by filesystem
// permissions (0600 file, 0700 directory). Both are verified before
// every read so a loosened mode is reported instead of silently used.

package secrets

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// loadKeyMaterial reads existing key material. The key file missing is
// an error here; save paths go through ensureKeyMaterial instead.
func loadKeyMaterial(path string) ([]byte, error) {
	// SECURITY: Verify directory permissions before reading
	dir := filepath.Dir(path)
	dirInfo, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat key directory: %w", err)
	}
	if mode := dirInfo.Mode().Perm(); mode&0077 != 0 {
		return nil, fmt.Errorf("key directory has insecure permissions (%o): "+
			"must be 0700 or more restrictive, fix with: chmod 700 %s", mode, dir)
	}

	// SECURITY: Verify file permissions before reading
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat key file: %w", err)
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		return nil, fmt.Errorf("key file has insecure permissions (%o): "+
			"must be 0600 or more restrictive, fix with: chmod 600 %s", mode, path)
	}

	material, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	return material, nil
}

// ensureKeyMaterial loads the key material, generating a fresh key file
// on first use.
func ensureKeyMaterial(path string) ([]byte, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return generateKeyMaterial(path)
	}
	return loadKeyMaterial(path)
}

// generateKeyMaterial creates a new random key file with restricted
// permissions (0600 = rw-------, directory 0700 = rwx------).
func generateKeyMaterial(path string) ([]byte, error) {
	material := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, material); err != nil {
		return nil, fmt.Errorf("failed to generate key material: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}

	if err := os.WriteFile(path, material, 0600); err != nil {
		return nil, fmt.Errorf("failed to write key file: %w", err)
	}

	// SECURITY: Verify the file was created with strict permissions
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat key file: %w", err)
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		_ = os.Remove(path)
		return nil, fmt.Errorf("key file was created with insecure permissions (%o) "+
			"and has been deleted, retry the operation", mode)
	}

	return material, nil
}
