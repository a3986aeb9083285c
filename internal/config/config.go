// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/jeranaias/owui/internal/util"
)

// Built-in defaults, the bottom of every resolution chain.
const (
	ConfigVersion      = 1
	DefaultProfileName = "default"
	DefaultURI         = "http://localhost:8080"
	DefaultFormat      = "text"
	DefaultTimeout     = 30
)

// Environment variables honored during resolution.
const (
	EnvURI     = "OPENWEBUI_URI"
	EnvProfile = "OPENWEBUI_PROFILE"
)

// Output formats accepted by --format and defaults.format.
var validFormats = map[string]bool{
	"text": true,
	"json": true,
	"yaml": true,
}

// ValidFormat reports whether name is a supported output format.
func ValidFormat(name string) bool {
	return validFormats[name]
}

// ProfileConfig names one server.
type ProfileConfig struct {
	URI string `yaml:"uri" json:"uri"`
}

// DefaultsConfig holds per-request defaults.
type DefaultsConfig struct {
	Model   string `yaml:"model,omitempty" json:"model,omitempty"`
	Format  string `yaml:"format" json:"format"`
	Stream  bool   `yaml:"stream" json:"stream"`
	Timeout int    `yaml:"timeout" json:"timeout"`
}

// OutputConfig holds presentation preferences.
type OutputConfig struct {
	Colors       bool `yaml:"colors" json:"colors"`
	ProgressBars bool `yaml:"progress_bars" json:"progress_bars"`
	Timestamps   bool `yaml:"timestamps" json:"timestamps"`
}

// Config is the on-disk configuration schema.
type Config struct {
	Version        int                      `yaml:"version" json:"version"`
	DefaultProfile string                   `yaml:"default_profile" json:"default_profile"`
	Profiles       map[string]ProfileConfig `yaml:"profiles" json:"profiles"`
	Defaults       DefaultsConfig           `yaml:"defaults" json:"defaults"`
	Output         OutputConfig             `yaml:"output" json:"output"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version:        ConfigVersion,
		DefaultProfile: DefaultProfileName,
		Profiles: map[string]ProfileConfig{
			DefaultProfileName: {URI: DefaultURI},
		},
		Defaults: DefaultsConfig{
			Format:  DefaultFormat,
			Stream:  true,
			Timeout: DefaultTimeout,
		},
		Output: OutputConfig{
			Colors:       true,
			ProgressBars: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the owui configuration directory.
func Dir() (string, error) {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "openwebui"), nil
		}
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "openwebui"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "openwebui"), nil
}

// Path returns the config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Exists reports whether a config file is present on disk.
func Exists() bool {
	path, err := Path()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config file, falling back to defaults when it is absent.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads a config file from an explicit location.
//
// Values absent from the file keep their defaults; the profile table is
// replaced wholesale so deleted profiles stay deleted.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config file %s: %w", path, err)
	}

	cfg := Default()
	cfg.Profiles = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in config file %s: %w", path, err)
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// normalize fills gaps a hand-edited file may leave.
func (c *Config) normalize() {
	if c.Version == 0 {
		c.Version = ConfigVersion
	}
	if c.DefaultProfile == "" {
		c.DefaultProfile = DefaultProfileName
	}
	if len(c.Profiles) == 0 {
		c.Profiles = map[string]ProfileConfig{
			DefaultProfileName: {URI: DefaultURI},
		}
	}
	if c.Defaults.Format == "" {
		c.Defaults.Format = DefaultFormat
	}
	if c.Defaults.Timeout <= 0 {
		c.Defaults.Timeout = DefaultTimeout
	}
}

// validate rejects values no command could work with.
func (c *Config) validate() error {
	if !ValidFormat(c.Defaults.Format) {
		return fmt.Errorf("defaults.format must be 'text', 'json', or 'yaml', got %q", c.Defaults.Format)
	}
	return nil
}

// Save writes the configuration atomically with owner-only permissions.
//
// SECURITY: 0600 file under a 0700 directory; profile URIs can reveal
// internal hostnames.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to an explicit location.
func SaveToPath(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	header := []byte("# owui configuration file\n# Generated by owui - edit with care\n\n")
	if err := util.AtomicWriteFile(path, append(header, data...), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
