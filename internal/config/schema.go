package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure
type Config struct {
	Version   int             `yaml:"version" toml:"version"`
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Database  DatabaseConfig  `yaml:"database" toml:"database"`
	Layout    LayoutConfig    `yaml:"layout" toml:"layout"`
	Workspace WorkspaceConfig `yaml:"workspace" toml:"workspace"`
	Log       LogConfig       `yaml:"log" toml:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string   `yaml:"addr" toml:"addr"`
	ReadTimeout     Duration `yaml:"read_timeout" toml:"read_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// LayoutConfig tunes selection geometry and arrangements.
// Gap and ToolbarOffset are pointers so that an explicit 0 is kept.
type LayoutConfig struct {
	Gap           *float64 `yaml:"gap,omitempty" toml:"gap,omitempty"`
	DefaultWidth  float64  `yaml:"default_width,omitempty" toml:"default_width,omitempty"`
	DefaultHeight float64  `yaml:"default_height,omitempty" toml:"default_height,omitempty"`
	RowBucket     float64  `yaml:"row_bucket,omitempty" toml:"row_bucket,omitempty"`
	ToolbarOffset *float64 `yaml:"toolbar_offset,omitempty" toml:"toolbar_offset,omitempty"`
}

// WorkspaceConfig holds file-system defaults for the editor
type WorkspaceConfig struct {
	// DefaultDirectory is used when a save request names no directory
	DefaultDirectory string `yaml:"default_directory,omitempty" toml:"default_directory,omitempty"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level" toml:"level"` // debug, info, warn, error
}

// Duration wraps time.Duration for YAML and TOML unmarshaling
type Duration time.Duration

// Duration returns the value as a time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}
