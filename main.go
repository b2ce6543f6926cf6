// bigbang is a functional event-loop engine for terminal applications.
//
// It merges a periodic ticker, decoded terminal input, and asynchronous
// data fetches into a single sequential world-update cycle: each accepted
// event runs a pure transition over an immutable world state, and each new
// state is handed to a frame-synchronized renderer.
//
// Usage:
//
//	bigbang [flags] [demo]
//
// Demos:
//
//	counter  Batch tick counter, prints one line per frame
//	bounce   Interactive bouncing box (arrows, mouse, q to quit)
//	sysmon   Live CPU/memory monitor fed by an async poller
//
// Flags:
//
//	-config string  Path to configuration file (default: ~/.config/bigbang/config.toml)
//	-frames int     Stop after this many rendered frames (0 = no cap)
//	-tick duration  Tick interval override (e.g. 17ms)
//	-verbose        Enable verbose logging
//	-version        Print version and exit
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitlab.com/tinyland/lab/bigbang/pkg/config"
	"gitlab.com/tinyland/lab/bigbang/pkg/demo"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		frames      = flag.Int("frames", -1, "Stop after this many rendered frames (0 = no cap)")
		tick        = flag.Duration("tick", 0, "Tick interval override")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("bigbang %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Command line overrides beat both file and environment.
	if name := flag.Arg(0); name != "" {
		cfg.Demo.Name = name
	}
	if *frames >= 0 {
		cfg.Engine.MaxFrames = *frames
	}
	if *tick > 0 {
		cfg.Engine.TickInterval = config.Duration{Duration: *tick}
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg, *verbose)

	d, err := demo.ByName(cfg.Demo.Name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// A signal closes stop; the running demo shuts its loop down, which
	// tears down every source before the process exits.
	stop := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		close(stop)
	}()

	logger.Debug("starting demo",
		"demo", cfg.Demo.Name,
		"tick_interval", cfg.Engine.TickInterval.Duration,
		"max_frames", cfg.Engine.MaxFrames,
	)

	start := time.Now()
	if err := d.Run(cfg, logger, stop); err != nil {
		logger.Error("demo failed", "demo", d.Name(), "error", err)
		os.Exit(1)
	}
	logger.Debug("demo finished", "demo", d.Name(), "elapsed", time.Since(start))
}

// loadConfig resolves the configuration from an explicit path or the
// standard search locations.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// newLogger builds the process logger. The -verbose flag wins over the
// configured level.
func newLogger(cfg *config.Config, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
