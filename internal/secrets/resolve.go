// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// resolve.go - Token resolution: explicit value, environment, then store.

package secrets

import (
	"errors"
	"fmt"
	"os"
)

// EnvToken is the environment variable consulted when no explicit
// token is given.
const EnvToken = "OPENWEBUI_TOKEN"

// ResolveToken resolves the API token for one invocation.
//
// Precedence: the explicit value (--token flag), then OPENWEBUI_TOKEN,
// then the store entry for this profile/server pair. An empty
// environment variable counts as unset.
//
// A store miss (ErrNotFound) or an absent backend (ErrUnavailable, nil
// store) is not an error: the token is simply absent and requests
// proceed unauthenticated. A store that exists but cannot be read is
// an error, so a broken store is never mistaken for "not logged in".
func ResolveToken(explicit string, store Store, profile, uri string) (string, bool, error) {
	if explicit != "" {
		return explicit, true, nil
	}
	if env := os.Getenv(EnvToken); env != "" {
		return env, true, nil
	}
	if store == nil {
		return "", false, nil
	}

	token, err := store.Get(ServiceName, Key(profile, uri))
	switch {
	case err == nil:
		return token, true, nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnavailable):
		return "", false, nil
	default:
		return "", false, fmt.Errorf("could not read stored token: %w", err)
	}
}
