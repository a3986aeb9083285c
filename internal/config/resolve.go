// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// resolve.go - Per-invocation resolution of connection settings.

package config

import (
	"fmt"
	"os"
	"time"
)

// Flags carries the global command-line values that participate in
// resolution. Zero values mean the flag was not given.
type Flags struct {
	Profile  string
	URI      string
	Token    string
	Format   string
	Timeout  int
	NoStream bool
}

// Effective is the resolved configuration for one invocation. It is
// built once, before any network activity, and treated as read-only
// afterwards. ServerURI is always present.
type Effective struct {
	ProfileName    string
	ServerURI      string
	Token          string
	HasToken       bool
	TimeoutSeconds int
	Format         string
	Stream         bool
}

// Timeout returns the resolved timeout as a duration.
func (e *Effective) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// UnknownProfileError reports an explicitly requested profile that the
// config file does not define.
type UnknownProfileError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownProfileError) Error() string {
	return fmt.Sprintf("profile %q does not exist in the config file", e.Name)
}

// Resolve computes the effective settings from flags, environment, and
// the config file. Each field resolves independently:
//
//	uri:     --uri > OPENWEBUI_URI > profile.uri > built-in default
//	timeout: --timeout > defaults.timeout > built-in default
//	format:  --format > defaults.format > "text"
//	stream:  --no-stream forces false, else defaults.stream
//
// The profile is selected by --profile, then OPENWEBUI_PROFILE, then
// default_profile. An explicitly selected profile missing from the file
// is an UnknownProfileError; the implicit default quietly falls back to
// the built-in server.
//
// Token resolution happens separately (see the secrets package); the
// Token and HasToken fields start empty here.
func Resolve(cfg *Config, flags Flags) (*Effective, error) {
	profileName := flags.Profile
	explicit := profileName != ""
	if !explicit {
		if env := os.Getenv(EnvProfile); env != "" {
			profileName = env
			explicit = true
		}
	}
	if profileName == "" {
		profileName = cfg.DefaultProfile
	}
	if profileName == "" {
		profileName = DefaultProfileName
	}

	profile, ok := cfg.Profiles[profileName]
	if !ok {
		if explicit {
			return nil, &UnknownProfileError{Name: profileName}
		}
		profile = ProfileConfig{URI: DefaultURI}
	}

	uri := flags.URI
	if uri == "" {
		uri = os.Getenv(EnvURI)
	}
	if uri == "" {
		uri = profile.URI
	}
	if uri == "" {
		uri = DefaultURI
	}

	timeout := flags.Timeout
	if timeout <= 0 {
		timeout = cfg.Defaults.Timeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	format := flags.Format
	if format == "" {
		format = cfg.Defaults.Format
	}
	if format == "" {
		format = DefaultFormat
	}
	if !ValidFormat(format) {
		return nil, fmt.Errorf("unsupported output format %q (expected text, json, or yaml)", format)
	}

	return &Effective{
		ProfileName:    profileName,
		ServerURI:      uri,
		TimeoutSeconds: timeout,
		Format:         format,
		Stream:         !flags.NoStream && cfg.Defaults.Stream,
	}, nil
}
