package demo

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"gitlab.com/tinyland/lab/bigbang/pkg/collect"
	"gitlab.com/tinyland/lab/bigbang/pkg/config"
	"gitlab.com/tinyland/lab/bigbang/pkg/loop"
	"gitlab.com/tinyland/lab/bigbang/pkg/source"
	"gitlab.com/tinyland/lab/bigbang/pkg/terminal"
)

// defaultMetricsInterval is the fetch cadence when the configuration
// leaves metrics_interval at zero.
const defaultMetricsInterval = time.Second

// SysmonWorld holds the most recent metrics snapshot alongside fetch
// status. Ticks only age the display; data arrives through the poller
// source.
type SysmonWorld struct {
	Metrics  collect.SysMetrics
	FetchErr error
	Fetches  int
	Quit     bool
}

// Sysmon is the asynchronous-fetch demo: a gopsutil poller feeds CPU and
// memory snapshots into the loop as a custom source while keys arrive from
// the terminal.
type Sysmon struct{}

func (Sysmon) Name() string { return "sysmon" }

func (Sysmon) Run(cfg *config.Config, logger *slog.Logger, stop <-chan struct{}) error {
	keys, _, cleanup, err := inputSources(logger, false)
	if err != nil {
		return fmt.Errorf("demo: sysmon needs an interactive terminal: %w", err)
	}
	defer cleanup()

	screen := terminal.NewScreen(os.Stdout)
	screen.Enter(false)
	defer screen.Exit()

	metricsInterval := cfg.Demo.MetricsInterval.Duration
	if metricsInterval == 0 {
		metricsInterval = defaultMetricsInterval
	}
	poller := collect.NewSysMetricsPoller(metricsInterval)
	size := terminal.GetSize()

	l, err := loop.Run(loop.Options[SysmonWorld]{
		OnKey: sysmonKey,
		OnEvent: map[source.Category]loop.Transition[SysmonWorld]{
			collect.CategorySysMetrics: sysmonData,
		},
		Draw:            drawSysmon(screen, size.Cols),
		StopWhen:        func(s SysmonWorld) bool { return s.Quit },
		MaxFrames:       cfg.Engine.MaxFrames,
		RefreshInterval: cfg.Engine.RefreshInterval.Duration,
		Sources:         []source.Source{keys, poller},
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

func sysmonKey(s SysmonWorld, ev source.Event) (SysmonWorld, error) {
	if key, ok := ev.Payload.(terminal.Key); ok {
		switch key.Name {
		case "q", "esc", "ctrl+c":
			s.Quit = true
		}
	}
	return s, nil
}

// sysmonData folds a poller result into the world. Fetch failures are kept
// on the state and rendered, not treated as loop errors.
func sysmonData(s SysmonWorld, ev source.Event) (SysmonWorld, error) {
	res, ok := ev.Payload.(collect.Result)
	if !ok {
		return s, nil
	}
	s.Fetches++
	if res.Err != nil {
		s.FetchErr = res.Err
		return s, nil
	}
	if m, ok := res.Data.(collect.SysMetrics); ok {
		s.Metrics = m
		s.FetchErr = nil
	}
	return s, nil
}

// gauge renders a fixed-width percentage bar.
func gauge(label string, pct float64, width int, style lipgloss.Style) string {
	if width < 10 {
		width = 10
	}
	barWidth := width - len(label) - 8
	if barWidth < 4 {
		barWidth = 4
	}
	filled := int(pct / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	return fmt.Sprintf("%s %s %5.1f%%", label, style.Render(bar), pct)
}

func drawSysmon(screen *terminal.Screen, width int) func(SysmonWorld) {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	styleFor := func(pct float64) lipgloss.Style {
		switch {
		case pct >= 90:
			return errStyle
		case pct >= 70:
			return warnStyle
		default:
			return okStyle
		}
	}

	return func(s SysmonWorld) {
		screen.Clear()
		screen.MoveTo(0, 0)

		var b strings.Builder
		fmt.Fprintf(&b, "%s\r\n\r\n", titleStyle.Render(" sysmon — q to quit"))
		m := s.Metrics
		fmt.Fprintf(&b, " %s\r\n", gauge("cpu", m.CPUTotal, width-2, styleFor(m.CPUTotal)))
		fmt.Fprintf(&b, " %s\r\n", gauge("mem", m.MemUsedPercent, width-2, styleFor(m.MemUsedPercent)))
		fmt.Fprintf(&b, "\r\n load1 %.2f   fetches %d\r\n", m.Load1, s.Fetches)
		if s.FetchErr != nil {
			fmt.Fprintf(&b, "\r\n %s\r\n", errStyle.Render(ansi.Truncate("fetch: "+s.FetchErr.Error(), width-2, "…")))
		}
		fmt.Fprint(os.Stdout, b.String())
	}
}
