package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "divevis.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Map.CenterLat != 49.2138 || cfg.Map.CenterLon != -2.1358 || cfg.Map.Zoom != 8 {
		t.Errorf("Map = %+v, want 49.2138,-2.1358 zoom 8", cfg.Map)
	}
	if cfg.Backend.Timeout() != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s", cfg.Backend.Timeout())
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
[backend]
base_url = "http://dives.example:8080"

[panels]
logbook = false

[[presets]]
name = "Gorey"
lat = 49.198
lon = -2.018
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend.BaseURL != "http://dives.example:8080" {
		t.Errorf("BaseURL = %s", cfg.Backend.BaseURL)
	}
	if cfg.Backend.TimeoutSecs != 30 {
		t.Errorf("TimeoutSecs = %d, want default 30", cfg.Backend.TimeoutSecs)
	}
	if cfg.Panels.Logbook {
		t.Error("Logbook panel should be disabled")
	}
	if !cfg.Panels.Prediction || !cfg.Panels.DiveMap {
		t.Error("panels not named in the file should keep their defaults")
	}
	if len(cfg.Presets) != 1 || cfg.Presets[0].Name != "Gorey" {
		t.Errorf("Presets = %+v, want only Gorey", cfg.Presets)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad toml", "[backend\n", "failed to decode"},
		{"unknown key", "[backend]\nbase_uri = \"x\"\n", "unknown config keys: backend.base_uri"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func TestLoadWithFallback(t *testing.T) {
	t.Run("explicit missing path", func(t *testing.T) {
		if _, err := LoadWithFallback(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for explicit missing path")
		}
	})

	t.Run("explicit path", func(t *testing.T) {
		cfg, err := LoadWithFallback(writeConfig(t, "[map]\nzoom = 11\n"))
		if err != nil {
			t.Fatalf("LoadWithFallback() error = %v", err)
		}
		if cfg.Map.Zoom != 11 {
			t.Errorf("Zoom = %d, want 11", cfg.Map.Zoom)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadWithFallback("")
		if err != nil {
			t.Fatalf("LoadWithFallback() error = %v", err)
		}
		if cfg.Backend.BaseURL != Default().Backend.BaseURL {
			t.Errorf("BaseURL = %s, want default", cfg.Backend.BaseURL)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty base url", func(c *Config) { c.Backend.BaseURL = "" }},
		{"base url scheme", func(c *Config) { c.Backend.BaseURL = "127.0.0.1:5000" }},
		{"timeout", func(c *Config) { c.Backend.TimeoutSecs = 0 }},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"sqlite path", func(c *Config) { c.Storage.SQLitePath = "" }},
		{"center lat", func(c *Config) { c.Map.CenterLat = 91 }},
		{"zoom", func(c *Config) { c.Map.Zoom = 0 }},
		{"preset name", func(c *Config) { c.Presets = []PresetConfig{{Name: " "}} }},
		{"duplicate preset", func(c *Config) {
			c.Presets = []PresetConfig{{Name: "A", Lat: 1, Lon: 1}, {Name: "A", Lat: 2, Lon: 2}}
		}},
		{"preset coords", func(c *Config) { c.Presets = []PresetConfig{{Name: "A", Lat: 100}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() error = nil, want error")
			}
		})
	}
}
