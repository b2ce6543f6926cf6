package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Config is the demo runner configuration. File values are overridden by
// BIGBANG_* environment variables.
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Demo   DemoConfig   `toml:"demo"`
	Log    LogConfig    `toml:"log"`
}

// EngineConfig holds the loop timing knobs.
type EngineConfig struct {
	// TickInterval is the world tick period.
	TickInterval Duration `toml:"tick_interval" env:"BIGBANG_TICK_INTERVAL"`

	// RefreshInterval is the render scheduler period.
	RefreshInterval Duration `toml:"refresh_interval" env:"BIGBANG_REFRESH_INTERVAL"`

	// MaxFrames stops the loop after this many rendered frames; 0 runs
	// until a stop condition or signal.
	MaxFrames int `toml:"max_frames" env:"BIGBANG_MAX_FRAMES"`
}

// DemoConfig selects and tunes the demo worlds.
type DemoConfig struct {
	// Name is the default demo when none is given on the command line:
	// "counter", "bounce", or "sysmon".
	Name string `toml:"name" env:"BIGBANG_DEMO"`

	// Mouse enables mouse capture for demos that use it.
	Mouse bool `toml:"mouse" env:"BIGBANG_MOUSE"`

	// MetricsInterval is the sysmon demo's fetch cadence.
	MetricsInterval Duration `toml:"metrics_interval" env:"BIGBANG_METRICS_INTERVAL"`
}

// LogConfig controls slog output.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `toml:"level" env:"BIGBANG_LOG_LEVEL"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			TickInterval:    Duration{17 * time.Millisecond},
			RefreshInterval: Duration{16 * time.Millisecond},
		},
		Demo: DemoConfig{
			Name:            "bounce",
			Mouse:           true,
			MetricsInterval: Duration{time.Second},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the standard path. Search order:
//
//  1. $XDG_CONFIG_HOME/bigbang/config.toml
//  2. ~/.config/bigbang/config.toml
//
// If no file exists, defaults are used. Environment overrides apply either
// way.
func Load() (*Config, error) {
	for _, p := range searchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	cfg := Default()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path, falling back
// to defaults if the file does not exist.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if err := applyEnv(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader reads configuration from an io.Reader.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: parse TOML: %w", err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Demo.Name {
	case "counter", "bounce", "sysmon":
	default:
		return fmt.Errorf("config: unknown demo %q", c.Demo.Name)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	if c.Engine.MaxFrames < 0 {
		return fmt.Errorf("config: max_frames must be >= 0, got %d", c.Engine.MaxFrames)
	}
	// A zero interval selects the component's default; negatives are
	// rejected here so they never reach a timer.
	intervals := []struct {
		name string
		d    Duration
	}{
		{"tick_interval", c.Engine.TickInterval},
		{"refresh_interval", c.Engine.RefreshInterval},
		{"metrics_interval", c.Demo.MetricsInterval},
	}
	for _, iv := range intervals {
		if iv.d.Duration < 0 {
			return fmt.Errorf("config: %s must be >= 0, got %s", iv.name, iv.d.Duration)
		}
	}
	return nil
}

// applyEnv overlays BIGBANG_* environment variables onto cfg.
func applyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse environment: %w", err)
	}
	return nil
}

// searchPaths returns the ordered list of config file paths to try.
func searchPaths() []string {
	home, _ := os.UserHomeDir()
	var paths []string

	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		xdg = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdg, "bigbang", "config.toml"))

	defaultXDG := filepath.Join(home, ".config")
	if xdg != defaultXDG {
		paths = append(paths, filepath.Join(defaultXDG, "bigbang", "config.toml"))
	}
	return paths
}
