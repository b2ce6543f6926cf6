package demo

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"gitlab.com/tinyland/lab/bigbang/pkg/config"
	"gitlab.com/tinyland/lab/bigbang/pkg/loop"
	"gitlab.com/tinyland/lab/bigbang/pkg/source"
	"gitlab.com/tinyland/lab/bigbang/pkg/terminal"
)

// BounceWorld is the bouncing-box state. Velocities are cells per tick.
type BounceWorld struct {
	X, Y   int
	VX, VY int
	W, H   int
	Quit   bool
}

// Bounce is the interactive demo: a box bounces around the terminal,
// arrow keys nudge its velocity, mouse movement teleports it, q or ctrl+c
// quits.
type Bounce struct{}

func (Bounce) Name() string { return "bounce" }

func (Bounce) Run(cfg *config.Config, logger *slog.Logger, stop <-chan struct{}) error {
	size := terminal.GetSize()

	keys, mouse, cleanup, err := inputSources(logger, cfg.Demo.Mouse)
	if err != nil {
		return fmt.Errorf("demo: bounce needs an interactive terminal: %w", err)
	}
	defer cleanup()

	screen := terminal.NewScreen(os.Stdout)
	screen.Enter(cfg.Demo.Mouse)
	defer screen.Exit()

	sources := []source.Source{keys}
	if mouse != nil {
		sources = append(sources, mouse)
	}

	initial := BounceWorld{
		X: size.Cols / 2, Y: size.Rows / 2,
		VX: 1, VY: 1,
		W: size.Cols, H: size.Rows,
	}

	l, err := loop.Run(loop.Options[BounceWorld]{
		Initial:         initial,
		OnTick:          bounceTick,
		OnKey:           bounceKey,
		OnMouse:         bounceMouse,
		Draw:            drawBounce(screen),
		StopWhen:        func(s BounceWorld) bool { return s.Quit },
		MaxFrames:       cfg.Engine.MaxFrames,
		TickInterval:    cfg.Engine.TickInterval.Duration,
		RefreshInterval: cfg.Engine.RefreshInterval.Duration,
		Sources:         sources,
		Logger:          logger,
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

// bounceTick advances the box one step, reflecting velocity at the walls.
func bounceTick(s BounceWorld, _ source.Event) (BounceWorld, error) {
	s.X += s.VX
	s.Y += s.VY
	if s.X <= 0 {
		s.X, s.VX = 0, -s.VX
	}
	if s.X >= s.W-1 {
		s.X, s.VX = s.W-1, -s.VX
	}
	if s.Y <= 1 {
		s.Y, s.VY = 1, -s.VY
	}
	if s.Y >= s.H-1 {
		s.Y, s.VY = s.H-1, -s.VY
	}
	return s, nil
}

// bounceKey nudges velocity with the arrows; q, esc, or ctrl+c quits.
func bounceKey(s BounceWorld, ev source.Event) (BounceWorld, error) {
	key, ok := ev.Payload.(terminal.Key)
	if !ok {
		return s, nil
	}
	switch key.Name {
	case "q", "esc", "ctrl+c":
		s.Quit = true
	case "up":
		s.VY--
	case "down":
		s.VY++
	case "left":
		s.VX--
	case "right":
		s.VX++
	}
	return s, nil
}

// bounceMouse teleports the box to the pointer cell.
func bounceMouse(s BounceWorld, ev source.Event) (BounceWorld, error) {
	m, ok := ev.Payload.(terminal.Mouse)
	if !ok {
		return s, nil
	}
	s.X, s.Y = clamp(m.X, 0, s.W-1), clamp(m.Y, 1, s.H-1)
	return s, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// drawBounce returns the render callback: status line on row 0, box at its
// current cell.
func drawBounce(screen *terminal.Screen) func(BounceWorld) {
	boxStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	return func(s BounceWorld) {
		screen.Clear()

		status := fmt.Sprintf(" bounce  pos=(%d,%d) vel=(%d,%d)  arrows: nudge  q: quit", s.X, s.Y, s.VX, s.VY)
		status = ansi.Truncate(status, s.W, "…")
		screen.MoveTo(0, 0)
		fmt.Fprint(os.Stdout, statusStyle.Render(status))

		screen.MoveTo(s.X, s.Y)
		fmt.Fprint(os.Stdout, boxStyle.Render("◼"))

		// Park the cursor out of the way.
		screen.MoveTo(0, s.H-1)
	}
}
