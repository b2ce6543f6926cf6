package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
	if got := cfg.Engine.TickInterval.Duration; got != 17*time.Millisecond {
		t.Errorf("default tick interval = %v, want 17ms", got)
	}
	if got := cfg.Engine.RefreshInterval.Duration; got != 16*time.Millisecond {
		t.Errorf("default refresh interval = %v, want 16ms", got)
	}
	if cfg.Demo.Name != "bounce" {
		t.Errorf("default demo = %q, want bounce", cfg.Demo.Name)
	}
}

func TestLoadFromReaderParsesTOML(t *testing.T) {
	const doc = `
[engine]
tick_interval = "50ms"
max_frames = 120

[demo]
name = "sysmon"
mouse = false
metrics_interval = "2s"

[log]
level = "debug"
`
	cfg, err := LoadFromReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if got := cfg.Engine.TickInterval.Duration; got != 50*time.Millisecond {
		t.Errorf("tick interval = %v, want 50ms", got)
	}
	// Unset keys keep their defaults.
	if got := cfg.Engine.RefreshInterval.Duration; got != 16*time.Millisecond {
		t.Errorf("refresh interval = %v, want the 16ms default", got)
	}
	if cfg.Engine.MaxFrames != 120 {
		t.Errorf("max frames = %d, want 120", cfg.Engine.MaxFrames)
	}
	if cfg.Demo.Name != "sysmon" || cfg.Demo.Mouse {
		t.Errorf("demo = %+v, want sysmon with mouse off", cfg.Demo)
	}
	if got := cfg.Demo.MetricsInterval.Duration; got != 2*time.Second {
		t.Errorf("metrics interval = %v, want 2s", got)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadFromReaderRejectsBadDuration(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader(`[engine]` + "\n" + `tick_interval = "fast"`))
	if err == nil {
		t.Fatal("expected an error for an unparseable duration")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("BIGBANG_DEMO", "counter")
	t.Setenv("BIGBANG_TICK_INTERVAL", "33ms")
	t.Setenv("BIGBANG_MAX_FRAMES", "5")

	cfg, err := LoadFromReader(strings.NewReader(`[demo]` + "\n" + `name = "bounce"`))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Demo.Name != "counter" {
		t.Errorf("demo = %q, want the environment override counter", cfg.Demo.Name)
	}
	if got := cfg.Engine.TickInterval.Duration; got != 33*time.Millisecond {
		t.Errorf("tick interval = %v, want 33ms", got)
	}
	if cfg.Engine.MaxFrames != 5 {
		t.Errorf("max frames = %d, want 5", cfg.Engine.MaxFrames)
	}
}

func TestLoadFromFileMissingFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFromFile on a missing path: %v", err)
	}
	if cfg.Demo.Name != "bounce" {
		t.Errorf("demo = %q, want the bounce default", cfg.Demo.Name)
	}
}

func TestLoadFromFileReadsDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"warn\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q, want warn", cfg.Log.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown demo", func(c *Config) { c.Demo.Name = "pong" }},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }},
		{"negative max frames", func(c *Config) { c.Engine.MaxFrames = -1 }},
		{"negative tick interval", func(c *Config) { c.Engine.TickInterval = Duration{-time.Millisecond} }},
		{"negative refresh interval", func(c *Config) { c.Engine.RefreshInterval = Duration{-time.Millisecond} }},
		{"negative metrics interval", func(c *Config) { c.Demo.MetricsInterval = Duration{-time.Second} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestValidateAcceptsZeroIntervals(t *testing.T) {
	// Zero means "use the component default" for every interval.
	cfg := Default()
	cfg.Engine.TickInterval = Duration{}
	cfg.Engine.RefreshInterval = Duration{}
	cfg.Demo.MetricsInterval = Duration{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero intervals failed validation: %v", err)
	}
}

func TestDurationTextRoundTrip(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1m30s")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if d.Duration != 90*time.Second {
		t.Errorf("parsed %v, want 1m30s", d.Duration)
	}
	out, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if string(out) != "1m30s" {
		t.Errorf("marshaled %q, want 1m30s", out)
	}
}

func TestDurationRejectsGarbage(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Error("expected an error for a non-duration string")
	}
}
