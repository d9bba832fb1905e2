// Package config provides configuration management for flowboard.
//
// Config files are YAML, or TOML when the file name ends in .toml.
//
// Config file locations (priority order):
//  1. $FLOWBOARD_CONFIG
//  2. ./flowboard.yaml
//  3. ./flowboard.toml
//  4. $XDG_CONFIG_HOME/flowboard/config.yaml
//  5. ~/.config/flowboard/config.yaml
//  6. /etc/flowboard/config.yaml
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"flowboard/internal/layout"
)

const (
	DefaultAddr            = ":3000"
	DefaultDatabasePath    = "./flowboard.db"
	DefaultReadTimeout     = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = "info"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if isTOML(path) {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, path, fmt.Errorf("parse config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path in the format its extension implies
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(c); err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(DefaultReadTimeout)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Validate rejects values no component can work with
func (c *Config) Validate() error {
	l := c.Layout
	for name, v := range map[string]float64{
		"layout.default_width":  l.DefaultWidth,
		"layout.default_height": l.DefaultHeight,
		"layout.row_bucket":     l.RowBucket,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if l.Gap != nil && *l.Gap < 0 {
		return fmt.Errorf("layout.gap must not be negative")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

// LayoutOptions converts the layout section into layout.Options.
// Unset values take the layout package defaults.
func (c *Config) LayoutOptions() layout.Options {
	opts := layout.DefaultOptions()
	if c.Layout.Gap != nil {
		opts.Gap = *c.Layout.Gap
	}
	if c.Layout.DefaultWidth > 0 {
		opts.DefaultWidth = c.Layout.DefaultWidth
	}
	if c.Layout.DefaultHeight > 0 {
		opts.DefaultHeight = c.Layout.DefaultHeight
	}
	if c.Layout.RowBucket > 0 {
		opts.RowBucket = c.Layout.RowBucket
	}
	if c.Layout.ToolbarOffset != nil {
		opts.ToolbarOffset = *c.Layout.ToolbarOffset
	}
	return opts
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
