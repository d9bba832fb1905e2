package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"flowboard/internal/layout"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %s, want %s", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Database.Path != DefaultDatabasePath {
		t.Errorf("Database.Path = %s, want %s", cfg.Database.Path, DefaultDatabasePath)
	}
	if cfg.Server.ShutdownTimeout.Duration() != DefaultShutdownTimeout {
		t.Errorf("ShutdownTimeout = %s, want %s", cfg.Server.ShutdownTimeout.Duration(), DefaultShutdownTimeout)
	}
	if got := cfg.LayoutOptions(); got != layout.DefaultOptions() {
		t.Errorf("LayoutOptions() = %+v, want defaults", got)
	}
}

func TestLayoutOptions(t *testing.T) {
	zero := 0.0
	offset := 80.0
	cfg := DefaultConfig()
	cfg.Layout = LayoutConfig{
		Gap:           &zero,
		DefaultWidth:  300,
		ToolbarOffset: &offset,
	}

	got := cfg.LayoutOptions()
	want := layout.Options{
		Gap:           0,
		DefaultWidth:  300,
		DefaultHeight: layout.DefaultNodeHeight,
		RowBucket:     layout.DefaultRowBucket,
		ToolbarOffset: 80,
	}
	if got != want {
		t.Errorf("LayoutOptions() = %+v, want %+v", got, want)
	}
}

func TestSaveAndLoad(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), name)

			gap := 32.0
			cfg := DefaultConfig()
			cfg.Server.Addr = "127.0.0.1:4000"
			cfg.Server.ReadTimeout = Duration(time.Minute)
			cfg.Layout.Gap = &gap
			cfg.Workspace.DefaultDirectory = "/srv/generations"

			if err := cfg.Save(configPath); err != nil {
				t.Fatalf("Save() error: %v", err)
			}

			loaded, path, err := LoadFromPath(configPath)
			if err != nil {
				t.Fatalf("LoadFromPath() error: %v", err)
			}
			if path != configPath {
				t.Errorf("path = %s, want %s", path, configPath)
			}
			if loaded.Server.Addr != "127.0.0.1:4000" {
				t.Errorf("Server.Addr = %s, want 127.0.0.1:4000", loaded.Server.Addr)
			}
			if loaded.Server.ReadTimeout.Duration() != time.Minute {
				t.Errorf("ReadTimeout = %s, want 1m", loaded.Server.ReadTimeout.Duration())
			}
			if loaded.Layout.Gap == nil || *loaded.Layout.Gap != 32 {
				t.Errorf("Layout.Gap = %v, want 32", loaded.Layout.Gap)
			}
			if loaded.Workspace.DefaultDirectory != "/srv/generations" {
				t.Errorf("Workspace.DefaultDirectory = %s", loaded.Workspace.DefaultDirectory)
			}
		})
	}
}

func TestLoadTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "flowboard.toml")
	content := `
[server]
addr = ":8080"
shutdown_timeout = "3s"

[layout]
gap = 10.0
row_bucket = 50.0

[log]
level = "debug"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %s, want :8080", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout.Duration() != 3*time.Second {
		t.Errorf("ShutdownTimeout = %s, want 3s", cfg.Server.ShutdownTimeout.Duration())
	}
	opts := cfg.LayoutOptions()
	if opts.Gap != 10 || opts.RowBucket != 50 {
		t.Errorf("LayoutOptions() = %+v", opts)
	}
	if cfg.Database.Path != DefaultDatabasePath {
		t.Errorf("Database.Path default not applied: %s", cfg.Database.Path)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative width", "layout:\n  default_width: -1\n"},
		{"negative gap", "layout:\n  gap: -5\n"},
		{"unknown log level", "log:\n  level: loud\n"},
		{"bad duration", "server:\n  read_timeout: soon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, _, err := LoadFromPath(configPath); err == nil {
				t.Error("LoadFromPath() should fail")
			}
		})
	}
}

func TestFindConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", filepath.Join(tmpDir, "home"))
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	if found := FindConfigPath(); found != "" && found != "/etc/flowboard/config.yaml" {
		t.Errorf("FindConfigPath() = %s, want none", found)
	}

	// TOML in the working directory
	if err := DefaultConfig().Save(filepath.Join(tmpDir, TOMLConfigFileName)); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if found := FindConfigPath(); filepath.Base(found) != TOMLConfigFileName {
		t.Errorf("FindConfigPath() = %s, want %s", found, TOMLConfigFileName)
	}

	// YAML wins over TOML
	if err := DefaultConfig().Save(filepath.Join(tmpDir, ConfigFileName)); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if found := FindConfigPath(); filepath.Base(found) != ConfigFileName {
		t.Errorf("FindConfigPath() = %s, want %s", found, ConfigFileName)
	}

	// Explicit env var wins when it exists
	explicit := filepath.Join(tmpDir, "explicit.yaml")
	if err := DefaultConfig().Save(explicit); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	t.Setenv(EnvConfigPath, explicit)
	if found := FindConfigPath(); found != explicit {
		t.Errorf("FindConfigPath() = %s, want %s", found, explicit)
	}

	// Missing explicit path falls back
	t.Setenv(EnvConfigPath, "/nonexistent/path.yaml")
	if found := FindConfigPath(); filepath.Base(found) != ConfigFileName {
		t.Errorf("FindConfigPath() = %s, want fallback to %s", found, ConfigFileName)
	}
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	if marshaled != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", marshaled)
	}

	var parsed Duration
	if err := parsed.UnmarshalText([]byte("90s")); err != nil {
		t.Fatalf("UnmarshalText() error: %v", err)
	}
	if parsed.Duration() != 90*time.Second {
		t.Errorf("UnmarshalText() = %s, want 1m30s", parsed.Duration())
	}
}
