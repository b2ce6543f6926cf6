// Package demo contains the sample worlds shipped with the bigbang engine:
// a batch counter, an interactive bouncing box, and a live system monitor.
// Each demo builds loop options from the runner configuration and blocks
// until its loop terminates.
package demo

import (
	"fmt"
	"log/slog"
	"os"

	"gitlab.com/tinyland/lab/bigbang/pkg/config"
	"gitlab.com/tinyland/lab/bigbang/pkg/emitter"
	"gitlab.com/tinyland/lab/bigbang/pkg/source"
	"gitlab.com/tinyland/lab/bigbang/pkg/terminal"
)

// Demo is a runnable sample world. Run blocks until the world's loop
// terminates; stop requests arrive through the returned handle in run.
type Demo interface {
	Name() string
	Run(cfg *config.Config, logger *slog.Logger, stop <-chan struct{}) error
}

// ByName returns the demo registered under name.
func ByName(name string) (Demo, error) {
	switch name {
	case "counter":
		return Counter{}, nil
	case "bounce":
		return Bounce{}, nil
	case "sysmon":
		return Sysmon{}, nil
	default:
		return nil, fmt.Errorf("demo: unknown demo %q", name)
	}
}

// inputSources wires a raw-mode terminal into key and mouse listener
// sources. The returned cleanup restores the terminal and shuts nothing
// else down; the loop owns the listeners.
func inputSources(logger *slog.Logger, withMouse bool) (keys, mouse source.Source, cleanup func(), err error) {
	target := emitter.New()
	in, err := terminal.NewInput(os.Stdin, target, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	keys = source.NewListener(source.CategoryKey, target, terminal.EventKeyPress)
	if withMouse {
		mouse = source.NewListener(source.CategoryMouse, target, terminal.EventMouseMove)
	}
	cleanup = func() {
		_ = in.Close()
		target.Close()
	}
	return keys, mouse, cleanup, nil
}
