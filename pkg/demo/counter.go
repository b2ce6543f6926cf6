package demo

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/bigbang/pkg/config"
	"gitlab.com/tinyland/lab/bigbang/pkg/loop"
	"gitlab.com/tinyland/lab/bigbang/pkg/source"
)

// counterFrames is the default frame cap when the configuration leaves
// MaxFrames unset; a batch demo must not run forever.
const counterFrames = 10

// CounterWorld is a two-cell state advanced on every tick: the first cell
// increments modulo 10, the second never changes.
type CounterWorld [2]int

// Counter is the non-interactive demo: tick, transition, render, repeat,
// until the frame cap. One line is printed per frame.
type Counter struct{}

func (Counter) Name() string { return "counter" }

func (Counter) Run(cfg *config.Config, logger *slog.Logger, stop <-chan struct{}) error {
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))

	maxFrames := cfg.Engine.MaxFrames
	if maxFrames == 0 {
		maxFrames = counterFrames
	}

	l, err := loop.Run(loop.Options[CounterWorld]{
		OnTick: func(s CounterWorld, _ source.Event) (CounterWorld, error) {
			return CounterWorld{(s[0] + 1) % 10, s[1]}, nil
		},
		Scheduler: loop.NewImmediate(func(s CounterWorld) {
			fmt.Fprintf(os.Stdout, "%s\n", style.Render(fmt.Sprintf("world = [%d, %d]", s[0], s[1])))
		}),
		MaxFrames:    maxFrames,
		TickInterval: cfg.Engine.TickInterval.Duration,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	go func() {
		select {
		case <-stop:
			l.Shutdown()
		case <-l.Done():
		}
	}()
	return l.Wait()
}
