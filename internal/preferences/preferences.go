package preferences

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/rec-schedule/internal/crypto"
	"github.com/pfrederiksen/rec-schedule/internal/storage"
)

// Theme is the display theme preference.
type Theme string

const (
	ThemeAuto  Theme = "auto"
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme validates a theme name.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemeAuto, ThemeLight, ThemeDark:
		return t, nil
	}
	return "", fmt.Errorf("invalid theme: %q (must be auto, light or dark)", s)
}

// Store reads and writes preferences through a key-value store.
type Store struct {
	kv     *storage.Store
	sealer *crypto.Sealer
}

// New creates a preference store. sealer may be nil, in which case the API key is stored as-is.
func New(kv *storage.Store, sealer *crypto.Sealer) *Store {
	return &Store{kv: kv, sealer: sealer}
}

// Theme returns the saved theme, or ThemeAuto when none is saved.
func (s *Store) Theme() (Theme, error) {
	var raw string
	found, err := s.kv.Load(storage.KeyTheme, &raw)
	if err != nil {
		return ThemeAuto, fmt.Errorf("loading theme: %w", err)
	}
	if !found {
		return ThemeAuto, nil
	}
	theme, err := ParseTheme(raw)
	if err != nil {
		return ThemeAuto, nil
	}
	return theme, nil
}

// SetTheme saves the theme.
func (s *Store) SetTheme(theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	if err := s.kv.Save(storage.KeyTheme, string(theme)); err != nil {
		return fmt.Errorf("saving theme: %w", err)
	}
	return nil
}

// RoutingKey returns the saved routing API key, or "" when none is saved.
func (s *Store) RoutingKey() (string, error) {
	var raw string
	found, err := s.kv.Load(storage.KeyRoutingKey, &raw)
	if err != nil {
		return "", fmt.Errorf("loading routing key: %w", err)
	}
	if !found {
		return "", nil
	}
	key, err := s.sealer.Open(raw)
	if err != nil {
		return "", fmt.Errorf("opening routing key: %w", err)
	}
	return key, nil
}

// SetRoutingKey saves the routing API key, sealing it when a passphrase is configured.
// An empty key clears the preference.
func (s *Store) SetRoutingKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return s.ClearRoutingKey()
	}

	sealed, err := s.sealer.Seal(key)
	if err != nil {
		return fmt.Errorf("sealing routing key: %w", err)
	}
	if err := s.kv.Save(storage.KeyRoutingKey, sealed); err != nil {
		return fmt.Errorf("saving routing key: %w", err)
	}
	return nil
}

// ClearRoutingKey removes the saved routing API key.
func (s *Store) ClearRoutingKey() error {
	if err := s.kv.Delete(storage.KeyRoutingKey); err != nil {
		return fmt.Errorf("clearing routing key: %w", err)
	}
	return nil
}

// MaskKey shows only the last four characters of a key.
func MaskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
