// Package config loads rec-schedule settings.
//
// Settings are layered: built-in defaults, then an optional YAML file, then a .env file and
// the process environment. Command-line flags are applied last by the cli package.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/rec-schedule/internal/geo"
	"github.com/pfrederiksen/rec-schedule/internal/layout"
	"github.com/pfrederiksen/rec-schedule/internal/storage"
)

// Environment variables read by Load.
const (
	EnvRoutingKey = "ORS_API_KEY"
	EnvData       = "REC_SCHEDULE_DATA"
	EnvPassphrase = "REC_SCHEDULE_PASSPHRASE"
	EnvStateDir   = "REC_SCHEDULE_STATE_DIR"
	EnvLogLevel   = "REC_SCHEDULE_LOG_LEVEL"
	EnvAddr       = "REC_SCHEDULE_ADDR"
)

// DefaultConfigFile is looked up in the state directory when no path is given.
const DefaultConfigFile = "config.yaml"

// Config holds every tunable setting.
type Config struct {
	// Data is a directory or http(s) base URL holding the published schedule files.
	Data string `yaml:"data"`
	// StateDir holds persisted preferences and the geo cache.
	StateDir string `yaml:"state_dir"`
	// Descriptions is an optional JSON file of class descriptions.
	Descriptions string `yaml:"descriptions"`
	Timezone     string `yaml:"timezone"`
	Window       string `yaml:"window"`
	Limit        int    `yaml:"limit"`
	LogLevel     string `yaml:"log_level"`

	Static struct {
		Path   string          `yaml:"path"`
		Origin *geo.Coordinate `yaml:"origin"`
	} `yaml:"static"`

	Routing struct {
		BaseURL string `yaml:"base_url"`
		// APIKey is normally kept out of the file; see ORS_API_KEY and "prefs key".
		APIKey string `yaml:"api_key"`
	} `yaml:"routing"`

	Location struct {
		Lat         *float64 `yaml:"lat"`
		Lng         *float64 `yaml:"lng"`
		IPLookupURL string   `yaml:"ip_lookup_url"`
		UseIP       bool     `yaml:"use_ip"`
	} `yaml:"location"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	// Passphrase seals the routing key at rest. Only read from the environment.
	Passphrase string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		Data:     "data",
		StateDir: "~/.local/share/rec-schedule",
		Timezone: "America/Denver",
		Window:   layout.DefaultWindow.String(),
		LogLevel: "info",
	}
	cfg.Server.Addr = ":8080"
	return cfg
}

// Load builds a configuration from defaults, the YAML file at path (if any), a .env file in
// the working directory (if any) and the environment. A missing file at an explicit path is
// an error; a missing default file is not.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if dir := os.Getenv(EnvStateDir); dir != "" {
			cfg.StateDir = dir
		}
		dir, err := storage.ExpandHome(cfg.StateDir)
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, DefaultConfigFile)
	}

	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	// Existing environment variables win over .env entries.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvData); v != "" {
		c.Data = v
	}
	if v := os.Getenv(EnvStateDir); v != "" {
		c.StateDir = v
	}
	if v := os.Getenv(EnvRoutingKey); v != "" {
		c.Routing.APIKey = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	c.Passphrase = os.Getenv(EnvPassphrase)
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if _, err := layout.ParseWindow(c.Window); err != nil {
		return fmt.Errorf("invalid window: %w", err)
	}
	if c.Limit < 0 {
		return fmt.Errorf("invalid limit: %d", c.Limit)
	}
	if c.Static.Origin != nil && !c.Static.Origin.Valid() {
		return fmt.Errorf("invalid static origin: %v", *c.Static.Origin)
	}
	if (c.Location.Lat == nil) != (c.Location.Lng == nil) {
		return errors.New("location needs both lat and lng")
	}
	if o := c.Origin(); o != nil && !o.Valid() {
		return fmt.Errorf("invalid location: %v", *o)
	}
	return nil
}

// TimeLocation returns the configured timezone.
func (c *Config) TimeLocation() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DefaultWindow returns the configured visible range.
func (c *Config) DefaultWindow() layout.Window {
	w, err := layout.ParseWindow(c.Window)
	if err != nil {
		return layout.DefaultWindow
	}
	return w
}

// Origin returns the fixed user location, or nil when none is configured.
func (c *Config) Origin() *geo.Coordinate {
	if c.Location.Lat == nil || c.Location.Lng == nil {
		return nil
	}
	return &geo.Coordinate{Lat: *c.Location.Lat, Lng: *c.Location.Lng}
}

// SetOrigin sets the fixed user location.
func (c *Config) SetOrigin(lat, lng float64) {
	c.Location.Lat = &lat
	c.Location.Lng = &lng
}

// ParseOrigin parses a "lat,lng" pair.
func ParseOrigin(s string) (geo.Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geo.Coordinate{}, fmt.Errorf("invalid location %q: want lat,lng", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid latitude %q: %w", parts[0], err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid longitude %q: %w", parts[1], err)
	}
	c := geo.Coordinate{Lat: lat, Lng: lng}
	if !c.Valid() {
		return geo.Coordinate{}, fmt.Errorf("location out of range: %s", s)
	}
	return c, nil
}
