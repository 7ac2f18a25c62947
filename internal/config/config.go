// Package config handles updater configuration parsing and location
// resolution. The credential and repository coordinates are explicit
// configuration values handed to the release client at construction,
// never process-wide globals.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mkarlen/keyden/internal/types"
)

// Default repository coordinates for released builds.
const (
	DefaultOwner = "mkarlen"
	DefaultRepo  = "keyden"
)

// Updater is the parsed updater configuration.
type Updater struct {
	Owner     string        `yaml:"owner" toml:"owner" json:"owner"`
	Repo      string        `yaml:"repo" toml:"repo" json:"repo"`
	Channel   types.Channel `yaml:"channel,omitempty" toml:"channel,omitempty" json:"channel,omitempty"`
	AssetName string        `yaml:"asset_name,omitempty" toml:"asset_name,omitempty" json:"asset_name,omitempty"` // Overrides the platform asset filename
	Token     string        `yaml:"token,omitempty" toml:"token,omitempty" json:"token,omitempty"`                // Optional bearer credential; supports ${VAR} expansion
}

// Default returns the configuration used when no config file exists.
func Default() *Updater {
	return &Updater{
		Owner:   DefaultOwner,
		Repo:    DefaultRepo,
		Channel: types.ChannelStable,
	}
}

// Find searches for an updater config file in the standard locations.
// Returns an empty path (no error) when none exists, so callers fall
// back to Default.
func Find(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("specified config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	if envPath := os.Getenv("KEYDEN_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	searchPaths := []string{
		filepath.Join(xdgConfig, "keyden"),
		filepath.Join(home, ".keyden"),
		home,
	}

	fileNames := []string{
		"keyden.yaml",
		"keyden.yml",
		"keyden.toml",
		"keyden.json",
		".keyden.yaml",
		".keyden.yml",
		".keyden.toml",
		".keyden.json",
	}

	for _, dir := range searchPaths {
		for _, name := range fileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}

	return "", nil
}

// Load reads and parses an updater config from the given path.
func Load(path string) (*Updater, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	format := detectFormat(path, content)
	if format == FormatUnknown {
		return nil, fmt.Errorf("unable to detect file format for %s", path)
	}

	cfg, err := parse(content, format)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Resolve finds, loads, and validates the updater configuration,
// falling back to defaults when no config file exists.
func Resolve(explicitPath string) (*Updater, error) {
	path, err := Find(explicitPath)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
