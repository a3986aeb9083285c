// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// values.go - Dot-notation access to individual config values.
//
// Supported keys:
//
//	defaults.model | defaults.format | defaults.stream | defaults.timeout
//	output.colors | output.progress_bars | output.timestamps
//	profiles.<name>            (reads as the profile URI)
//	profiles.<name>.uri
//
// Values are read and written as strings so `owui config get` output can
// feed scripts directly.

package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// parseBool accepts the permissive true-set; anything else is false.
func parseBool(value string) bool {
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// ValidateURI rejects URIs no HTTP client could use.
func ValidateURI(uri string) error {
	parsed, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("invalid URI %q: %w", uri, err)
	}
	if parsed.Scheme == "" {
		return fmt.Errorf("URI must have a scheme (e.g. http://, https://)")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URI scheme must be 'http' or 'https', got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URI must have a host")
	}
	return nil
}

// GetValue reads one config value by dot-notation key.
func (c *Config) GetValue(key string) (string, error) {
	parts := strings.Split(key, ".")

	switch {
	case len(parts) == 2 && parts[0] == "defaults":
		return c.getDefaultsField(parts[1])
	case len(parts) == 2 && parts[0] == "output":
		return c.getOutputField(parts[1])
	case len(parts) == 2 && parts[0] == "profiles":
		return c.getProfileURI(parts[1])
	case len(parts) == 3 && parts[0] == "profiles":
		if parts[2] != "uri" {
			return "", fmt.Errorf("profile field must be 'uri', got %q", parts[2])
		}
		return c.getProfileURI(parts[1])
	default:
		return "", fmt.Errorf("key format: section.field or profiles.<name>.uri (e.g. 'defaults.model')")
	}
}

func (c *Config) getDefaultsField(field string) (string, error) {
	switch field {
	case "model":
		return c.Defaults.Model, nil
	case "format":
		return c.Defaults.Format, nil
	case "stream":
		return strconv.FormatBool(c.Defaults.Stream), nil
	case "timeout":
		return strconv.Itoa(c.Defaults.Timeout), nil
	default:
		return "", fmt.Errorf("unknown defaults field: %s", field)
	}
}

func (c *Config) getOutputField(field string) (string, error) {
	switch field {
	case "colors":
		return strconv.FormatBool(c.Output.Colors), nil
	case "progress_bars":
		return strconv.FormatBool(c.Output.ProgressBars), nil
	case "timestamps":
		return strconv.FormatBool(c.Output.Timestamps), nil
	default:
		return "", fmt.Errorf("unknown output field: %s", field)
	}
}

func (c *Config) getProfileURI(name string) (string, error) {
	profile, ok := c.Profiles[name]
	if !ok {
		return "", fmt.Errorf("unknown profile: %s", name)
	}
	return profile.URI, nil
}

// SetValue writes one config value by dot-notation key. The caller still
// has to Save the config afterwards.
func (c *Config) SetValue(key, value string) error {
	parts := strings.Split(key, ".")

	switch {
	case len(parts) == 2 && parts[0] == "defaults":
		return c.setDefaultsField(parts[1], value)
	case len(parts) == 2 && parts[0] == "output":
		return c.setOutputField(parts[1], value)
	case len(parts) == 3 && parts[0] == "profiles":
		return c.setProfileField(parts[1], parts[2], value)
	default:
		return fmt.Errorf("key format: section.field or profiles.<name>.uri (e.g. 'defaults.model')")
	}
}

func (c *Config) setDefaultsField(field, value string) error {
	switch field {
	case "model":
		c.Defaults.Model = value
	case "format":
		if !ValidFormat(value) {
			return fmt.Errorf("format must be 'text', 'json', or 'yaml'")
		}
		c.Defaults.Format = value
	case "stream":
		c.Defaults.Stream = parseBool(value)
	case "timeout":
		timeout, err := strconv.Atoi(value)
		if err != nil || timeout <= 0 {
			return fmt.Errorf("timeout must be a positive integer, got %q", value)
		}
		c.Defaults.Timeout = timeout
	default:
		return fmt.Errorf("unknown defaults field: %s", field)
	}
	return nil
}

func (c *Config) setOutputField(field, value string) error {
	switch field {
	case "colors":
		c.Output.Colors = parseBool(value)
	case "progress_bars":
		c.Output.ProgressBars = parseBool(value)
	case "timestamps":
		c.Output.Timestamps = parseBool(value)
	default:
		return fmt.Errorf("unknown output field: %s", field)
	}
	return nil
}

func (c *Config) setProfileField(name, field, value string) error {
	if field != "uri" {
		return fmt.Errorf("profile field must be 'uri', got %q", field)
	}
	if err := ValidateURI(value); err != nil {
		return err
	}
	if c.Profiles == nil {
		c.Profiles = make(map[string]ProfileConfig)
	}
	profile := c.Profiles[name]
	profile.URI = value
	c.Profiles[name] = profile
	return nil
}
