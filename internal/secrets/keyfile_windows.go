// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows
// +build windows

// Windows key material: the key file holds the key wrapped with DPAPI
// (Data Protection API), so it can only be unwrapped under the same
// user's logon credentials. Filesystem modes are advisory on Windows,
// which is why the wrapping does the real work here.

package secrets

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/windows"
)

// loadKeyMaterial reads and unwraps existing key material.
func loadKeyMaterial(path string) ([]byte, error) {
	wrapped, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	material, err := dpAPIDecrypt(wrapped)
	if err != nil {
		return nil, fmt.Errorf("DPAPI decryption failed: %w", err)
	}
	return material, nil
}

// ensureKeyMaterial loads the key material, generating a fresh
// DPAPI-wrapped key file on first use.
func ensureKeyMaterial(path string) ([]byte, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return generateKeyMaterial(path)
	}
	return loadKeyMaterial(path)
}

func generateKeyMaterial(path string) ([]byte, error) {
	material := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, material); err != nil {
		return nil, fmt.Errorf("failed to generate key material: %w", err)
	}

	wrapped, err := dpAPIEncrypt(material)
	if err != nil {
		return nil, fmt.Errorf("DPAPI encryption failed: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(path, wrapped, 0600); err != nil {
		return nil, fmt.Errorf("failed to write key file: %w", err)
	}

	return material, nil
}

// =============================================================================
// DPAPI
// =============================================================================

// dataBLOB is the Windows DPAPI data structure.
type dataBLOB struct {
	cbData uint32
	pbData *byte
}

var (
	crypt32                = windows.NewLazySystemDLL("crypt32.dll")
	procCryptProtectData   = crypt32.NewProc("CryptProtectData")
	procCryptUnprotectData = crypt32.NewProc("CryptUnprotectData")
	kernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procLocalFree          = kernel32.NewProc("LocalFree")
)

// dpAPIEncrypt encrypts data bound to the current user's credentials.
func dpAPIEncrypt(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty data")
	}

	dataIn := dataBLOB{
		cbData: uint32(len(data)),
		pbData: &data[0],
	}
	var dataOut dataBLOB

	// dwFlags 0x01 = CRYPTPROTECT_UI_FORBIDDEN (no UI prompts)
	ret, _, err := procCryptProtectData.Call(
		uintptr(unsafe.Pointer(&dataIn)),
		0, // szDataDescr
		0, // pOptionalEntropy
		0, // pvReserved
		0, // pPromptStruct
		0x01,
		uintptr(unsafe.Pointer(&dataOut)),
	)
	if ret == 0 {
		return nil, fmt.Errorf("CryptProtectData failed: %w", err)
	}

	encrypted := make([]byte, dataOut.cbData)
	copy(encrypted, unsafe.Slice(dataOut.pbData, dataOut.cbData))
	procLocalFree.Call(uintptr(unsafe.Pointer(dataOut.pbData)))

	return encrypted, nil
}

// dpAPIDecrypt decrypts DPAPI-wrapped data.
func dpAPIDecrypt(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty data")
	}

	dataIn := dataBLOB{
		cbData: uint32(len(data)),
		pbData: &data[0],
	}
	var dataOut dataBLOB

	ret, _, err := procCryptUnprotectData.Call(
		uintptr(unsafe.Pointer(&dataIn)),
		0, // ppszDataDescr
		0, // pOptionalEntropy
		0, // pvReserved
		0, // pPromptStruct
		0x01,
		uintptr(unsafe.Pointer(&dataOut)),
	)
	if ret == 0 {
		return nil, fmt.Errorf("CryptUnprotectData failed: %w", err)
	}

	decrypted := make([]byte, dataOut.cbData)
	copy(decrypted, unsafe.Slice(dataOut.pbData, dataOut.cbData))
	procLocalFree.Call(uintptr(unsafe.Pointer(dataOut.pbData)))

	return decrypted, nil
}
