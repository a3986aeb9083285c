// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package secrets stores API tokens outside the config file.
//
// Tokens live in an encrypted token store, never in config.yaml. The
// store is keyed the way a system keyring would be: a service name and
// a "<profile>:<uri>" entry key, so each profile/server pair carries
// its own token.
//
// The default backend is an AES-256-GCM encrypted file whose key
// material is held per-machine (DPAPI-wrapped on Windows, a 0600 key
// file on Unix). Callers must treat a missing entry and an unusable
// backend differently: ErrNotFound and ErrUnavailable mean "no stored
// token, proceed without one", while any other error means the store
// exists but cannot be read and should surface to the user.
package secrets

import "errors"

// ServiceName is the service under which owui tokens are filed.
const ServiceName = "openwebui-cli"

var (
	// ErrNotFound indicates no token is stored under the given key.
	ErrNotFound = errors.New("token not found in store")
	// ErrUnavailable indicates no usable token backend exists on this
	// system. Resolution treats it like a miss.
	ErrUnavailable = errors.New("token store unavailable")
)

// Store is the token storage contract. Implementations must return
// ErrNotFound for missing entries and ErrUnavailable when the backend
// cannot exist on this system; any other error means the backend is
// present but failing.
type Store interface {
	// Get retrieves the secret stored under service/key.
	Get(service, key string) (string, error)
	// Set stores the secret under service/key, replacing any previous value.
	Set(service, key, secret string) error
	// Delete removes the secret stored under service/key. Deleting a
	// missing entry is not an error.
	Delete(service, key string) error
}

// Key builds the store entry key for a profile/server pair.
func Key(profile, uri string) string {
	return profile + ":" + uri
}
