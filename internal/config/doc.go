// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and resolves owui configuration.
//
// The on-disk file is YAML at ~/.config/openwebui/config.yaml (or
// $XDG_CONFIG_HOME/openwebui/config.yaml; %APPDATA%\openwebui\config.yaml
// on Windows). A missing file is not an error: built-in defaults apply.
//
// # Key Types
//
//   - Config: the on-disk schema (profiles, defaults, output)
//   - Effective: the immutable per-invocation resolution result
//
// # Resolution Precedence
//
// Every connection field resolves independently, highest priority first:
//   - command-line flag
//   - environment variable (OPENWEBUI_URI, OPENWEBUI_PROFILE)
//   - the selected profile in the config file
//   - built-in default (http://localhost:8080)
//
// The profile itself is chosen by flag, then OPENWEBUI_PROFILE, then the
// file's default_profile. Naming a profile explicitly that does not exist
// is an error; the implicit default profile silently falls back to the
// built-in server.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	eff, err := config.Resolve(cfg, flags)
package config
