package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the application configuration
type Config struct {
	Backend BackendConfig  `toml:"backend"` // Visibility backend connection
	Logging LoggingConfig  `toml:"logging"` // Log output
	Storage StorageConfig  `toml:"storage"` // Local database
	Map     MapConfig      `toml:"map"`     // Dive map defaults
	Panels  PanelsConfig   `toml:"panels"`  // Which panels the TUI shows
	Presets []PresetConfig `toml:"presets"` // Named locations for the weather panel
}

// BackendConfig contains the backend connection settings
type BackendConfig struct {
	BaseURL     string `toml:"base_url"`        // Root URL of the backend (e.g., http://127.0.0.1:5000)
	TimeoutSecs int    `toml:"timeout_seconds"` // Per-request timeout
	UserAgent   string `toml:"user_agent"`      // Sent with every request (empty = built-in value)
}

// Timeout returns the per-request timeout as a duration
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// LoggingConfig contains logging settings. Logs go to a file because the
// terminal belongs to the UI.
type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	File   string `toml:"file"`   // Log file path
	Format string `toml:"format"` // console or json
}

// StorageConfig contains local persistence settings
type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path"` // Presets and prediction history
}

// MapConfig contains the initial dive map view
type MapConfig struct {
	CenterLat float64 `toml:"center_lat"`
	CenterLon float64 `toml:"center_lon"`
	Zoom      int     `toml:"zoom"` // 1 (world) to 18 (street)
}

// PanelsConfig declares which panels exist. The dive map is only built when
// both Dives and DiveMap are enabled.
type PanelsConfig struct {
	Prediction bool `toml:"prediction"`
	Weather    bool `toml:"weather"`
	Dives      bool `toml:"dives"`
	DiveMap    bool `toml:"dive_map"`
	Logbook    bool `toml:"logbook"`
}

// PresetConfig is a named location provisioned into the preset store
type PresetConfig struct {
	Name string  `toml:"name"`
	Lat  float64 `toml:"lat"`
	Lon  float64 `toml:"lon"`
}

// Default returns the configuration used when no file is found
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:     "http://127.0.0.1:5000",
			TimeoutSecs: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			File:   "divevis.log",
			Format: "console",
		},
		Storage: StorageConfig{
			SQLitePath: "data/divevis.db",
		},
		Map: MapConfig{
			CenterLat: 49.2138,
			CenterLon: -2.1358,
			Zoom:      8,
		},
		Panels: PanelsConfig{
			Prediction: true,
			Weather:    true,
			Dives:      true,
			DiveMap:    true,
			Logbook:    true,
		},
		Presets: []PresetConfig{
			{Name: "St Brelade's Bay", Lat: 49.1820, Lon: -2.2020},
			{Name: "Portelet", Lat: 49.1690, Lon: -2.1740},
			{Name: "Bouley Bay", Lat: 49.2500, Lon: -2.0800},
		},
	}
}

// Load reads a TOML file on top of the defaults, so a file only needs the
// keys it changes.
func Load(path string) (*Config, error) {
	config := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	md, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	return config, nil
}

// LoadWithFallback tries preferredPath, then configs/divevis.toml, then
// divevis.toml. An explicitly requested file must exist; otherwise the
// defaults are used when none of the standard locations has a file.
func LoadWithFallback(preferredPath string) (*Config, error) {
	if preferredPath != "" {
		config, err := Load(preferredPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", preferredPath, err)
		}
		return config, nil
	}

	searchPaths := []string{
		"configs/divevis.toml",
		"divevis.toml",
	}
	for _, path := range searchPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		config, err := Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
		return config, nil
	}

	return Default(), nil
}

// Validate checks the configuration for values the application cannot use
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base_url is required")
	}
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return fmt.Errorf("invalid backend base_url: %s (must start with http:// or https://)", c.Backend.BaseURL)
	}
	if c.Backend.TimeoutSecs <= 0 {
		return fmt.Errorf("invalid timeout_seconds: %d (must be > 0)", c.Backend.TimeoutSecs)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid logging format: %q (must be console or json)", c.Logging.Format)
	}

	if c.Storage.SQLitePath == "" {
		return fmt.Errorf("storage sqlite_path is required")
	}

	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 {
		return fmt.Errorf("invalid map center_lat: %v", c.Map.CenterLat)
	}
	if c.Map.CenterLon < -180 || c.Map.CenterLon > 180 {
		return fmt.Errorf("invalid map center_lon: %v", c.Map.CenterLon)
	}
	if c.Map.Zoom < 1 || c.Map.Zoom > 18 {
		return fmt.Errorf("invalid map zoom: %d (must be 1-18)", c.Map.Zoom)
	}

	seen := make(map[string]bool)
	for _, p := range c.Presets {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("preset name is required")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate preset: %s", p.Name)
		}
		seen[p.Name] = true
		if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
			return fmt.Errorf("preset %s has invalid coordinates: %v, %v", p.Name, p.Lat, p.Lon)
		}
	}

	return nil
}
