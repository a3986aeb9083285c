// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Encrypted file-backed token store.
//
// Entries are serialized as JSON, encrypted with AES-256-GCM, and
// written as a single "ENC:" prefixed base64 blob:
//
//	ENC:base64(salt | nonce | ciphertext+tag)
//
// The AES key is derived from per-machine key material (see the
// keyfile_* files) with PBKDF2-SHA-256 and a fresh salt on every write.

package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/jeranaias/owui/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// EncryptedPrefix marks the token file as encrypted.
const EncryptedPrefix = "ENC:"

// NonceSize is the AES-GCM nonce size (96 bits).
const NonceSize = 12

// KeySize is the AES-256 key size.
const KeySize = 32

// SaltSize is the PBKDF2 salt size.
const SaltSize = 32

// PBKDF2Iterations is the PBKDF2-SHA-256 iteration count.
// OWASP 2023 recommends 600,000+ for PBKDF2-SHA-256.
const PBKDF2Iterations = 600000

const (
	tokenFileName = "tokens.enc"
	keyFileName   = "master.key"
)

// ErrStoreCorrupt indicates the token file exists but cannot be
// decrypted or parsed. Unlike ErrNotFound this is surfaced to the user.
var ErrStoreCorrupt = errors.New("token store is corrupted or was encrypted with a different key")

// =============================================================================
// FILE STORE
// =============================================================================

// FileStore is the default Store: an encrypted JSON file next to the
// config file, with key material held per-machine.
type FileStore struct {
	path    string
	keyPath string
}

// NewFileStore returns a file store rooted at dir (normally the owui
// config directory). No files are created until the first Set.
func NewFileStore(dir string) *FileStore {
	return &FileStore{
		path:    filepath.Join(dir, tokenFileName),
		keyPath: filepath.Join(dir, keyFileName),
	}
}

// entries is the decrypted shape of the token file: service -> key -> secret.
type entries map[string]map[string]string

// Get retrieves the secret stored under service/key.
func (s *FileStore) Get(service, key string) (string, error) {
	ents, err := s.load()
	if err != nil {
		return "", err
	}
	secret, ok := ents[service][key]
	if !ok {
		return "", ErrNotFound
	}
	return secret, nil
}

// Set stores the secret under service/key, replacing any previous value.
func (s *FileStore) Set(service, key, secret string) error {
	ents, err := s.load()
	if errors.Is(err, ErrNotFound) {
		ents = entries{}
		err = nil
	}
	if err != nil {
		return err
	}

	if ents[service] == nil {
		ents[service] = map[string]string{}
	}
	ents[service][key] = secret

	return s.save(ents)
}

// Delete removes the secret stored under service/key. Missing entries
// and a missing token file are not errors.
func (s *FileStore) Delete(service, key string) error {
	ents, err := s.load()
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if _, ok := ents[service][key]; !ok {
		return nil
	}
	delete(ents[service], key)
	if len(ents[service]) == 0 {
		delete(ents, service)
	}

	return s.save(ents)
}

// load reads and decrypts the token file. A missing file maps to
// ErrNotFound so callers treat it as an empty store.
func (s *FileStore) load() (entries, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token store: %w", err)
	}

	content := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(content, EncryptedPrefix) {
		return nil, fmt.Errorf("%w: missing %s header", ErrStoreCorrupt, EncryptedPrefix)
	}
	blob, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(content, EncryptedPrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreCorrupt, err)
	}
	if len(blob) < SaltSize+NonceSize {
		return nil, ErrStoreCorrupt
	}

	material, err := loadKeyMaterial(s.keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load token store key: %w", err)
	}
	// SECURITY: Zero key material to prevent memory disclosure
	defer zeroBytes(material)

	salt := blob[:SaltSize]
	nonce := blob[SaltSize : SaltSize+NonceSize]
	ciphertext := blob[SaltSize+NonceSize:]

	gcm, err := newGCM(deriveKey(material, salt))
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication failed", ErrStoreCorrupt)
	}

	var ents entries
	if err := json.Unmarshal(plaintext, &ents); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreCorrupt, err)
	}
	return ents, nil
}

// save encrypts the entries with a fresh salt and nonce and writes the
// token file atomically with owner-only permissions.
func (s *FileStore) save(ents entries) error {
	plaintext, err := json.Marshal(ents)
	if err != nil {
		return fmt.Errorf("failed to encode token store: %w", err)
	}

	material, err := ensureKeyMaterial(s.keyPath)
	if err != nil {
		return fmt.Errorf("failed to load token store key: %w", err)
	}
	// SECURITY: Zero key material to prevent memory disclosure
	defer zeroBytes(material)

	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	gcm, err := newGCM(deriveKey(material, salt))
	if err != nil {
		return err
	}
	sealed := gcm.Seal(nil, nonce, plaintext, nil)

	blob := make([]byte, 0, SaltSize+NonceSize+len(sealed))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, sealed...)

	out := EncryptedPrefix + base64.StdEncoding.EncodeToString(blob)
	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(s.path, []byte(out), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write token store: %w", err)
	}
	return nil
}

// =============================================================================
// CRYPTO HELPERS
// =============================================================================

// deriveKey derives the AES key from machine key material and a salt
// using PBKDF2-SHA-256 (NIST SP 800-132).
func deriveKey(material, salt []byte) []byte {
	return pbkdf2.Key(material, salt, PBKDF2Iterations, KeySize, sha256.New)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	defer zeroBytes(key)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}
	return gcm, nil
}

// zeroBytes overwrites sensitive byte slices.
// SECURITY: Zero key material to prevent memory disclosure via crash dumps.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
