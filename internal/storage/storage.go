package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Well-known keys for persisted client state.
const (
	KeyTheme      = "theme"
	KeyRoutingKey = "routing_api_key"
	KeyGeoCache   = "geo_cache"
)

const (
	filePermissions = 0600
	tmpSuffix       = ".tmp"
)

var keyPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Store handles persistence of keyed JSON values
type Store struct {
	dataDir string
}

// New creates a new Store, expanding a leading ~/ and creating the directory.
func New(dataDir string) (*Store, error) {
	dir, err := ExpandHome(dataDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Store{
		dataDir: dir,
	}, nil
}

// ExpandHome expands a leading ~/ to the user's home directory.
func ExpandHome(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dataDir
}

// path returns the file holding a key
func (s *Store) path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return filepath.Join(s.dataDir, key+".json"), nil
}

// Load decodes the value stored under key into v.
// found is false (with a nil error) when nothing is stored under the key.
func (s *Store) Load(key string, v interface{}) (found bool, err error) {
	path, err := s.path(key)
	if err != nil {
		return false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("reading %s: %w", key, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parsing %s: %w", key, err)
	}

	return true, nil
}

// Save stores v under key, replacing any previous value atomically.
func (s *Store) Save(key string, v interface{}) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	tmp := path + tmpSuffix
	if err := os.WriteFile(tmp, data, filePermissions); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", key, err)
	}

	return nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// Has reports whether a value is stored under key.
func (s *Store) Has(key string) bool {
	path, err := s.path(key)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
