// Package settings persists application settings as a flat JSON
// document. A malformed or missing settings file is never fatal: the
// store starts empty and the next Save rewrites it.
package settings

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// Keys used by the update subsystem.
const (
	KeyShowUpdateMessage = "show_update_message"
	KeyUpdatedVersion    = "updated_version"
	KeyLastCheck         = "last_check"
	KeyAutoCheck         = "auto_check"
)

// Store is a flat key-value settings store backed by a JSON file.
type Store struct {
	v    *viper.Viper
	path string
}

// DefaultPath returns the standard settings file location.
func DefaultPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "keyden", "settings.json"), nil
}

// NewStore creates a store bound to the given file path.
func NewStore(path string) *Store {
	v := viper.New()
	v.SetConfigType("json")
	return &Store{v: v, path: path}
}

// Load reads the settings file into the store. A missing file yields
// an empty store; a malformed file is discarded with a warning so a
// corrupt settings file can never wedge the application.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := s.v.ReadConfig(bytes.NewReader(data)); err != nil {
		log.Warn("discarding malformed settings file", "path", s.path, "error", err)
		s.v = viper.New()
		s.v.SetConfigType("json")
	}

	return nil
}

// Get returns the raw value for a key, or nil when unset.
func (s *Store) Get(key string) interface{} {
	return s.v.Get(key)
}

// GetString returns the string value for a key.
func (s *Store) GetString(key string) string {
	return s.v.GetString(key)
}

// GetBool returns the boolean value for a key.
func (s *Store) GetBool(key string) bool {
	return s.v.GetBool(key)
}

// IsSet reports whether the key has a value.
func (s *Store) IsSet(key string) bool {
	return s.v.IsSet(key)
}

// Set stores a value for a key. The change is in-memory until Save.
func (s *Store) Set(key string, value interface{}) {
	s.v.Set(key, value)
}

// All returns every settings key and value.
func (s *Store) All() map[string]interface{} {
	return s.v.AllSettings()
}

// Save writes the settings to disk, creating parent directories as
// needed.
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// MarkUpdated records that an update to the given version was
// installed, so the next launch can surface a notice.
func (s *Store) MarkUpdated(version string) {
	s.Set(KeyShowUpdateMessage, true)
	s.Set(KeyUpdatedVersion, version)
}

// ClearUpdateNotice removes a previously recorded update notice.
func (s *Store) ClearUpdateNotice() {
	s.Set(KeyShowUpdateMessage, false)
	s.Set(KeyUpdatedVersion, "")
}
