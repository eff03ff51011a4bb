// Package render draws the terminal operator console: a particle density map,
// a telemetry panel, a lifecycle event log and single-key controls.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/engine"
	"github.com/lixenwraith/fusion-sim/event"
	"github.com/lixenwraith/fusion-sim/logging"
)

const (
	panelWidth      = 34
	logLines        = 6
	defaultFrame    = 50 * time.Millisecond
	temperatureStep = 10.0
	confinementStep = 0.05
)

var (
	styleDefault = tcell.StyleDefault
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleLabel   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleValue   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleWarn    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleGood    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleFlash   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleDensity = tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	styleBorder  = tcell.StyleDefault.Foreground(tcell.ColorDarkCyan)
)

// Controller is the command and observation surface the console drives
type Controller interface {
	Snapshot() engine.Snapshot
	Start(reset bool)
	Stop() (core.EpisodeSummary, bool)
	Reset(autostart bool)
	SetTemperature(t float64) float64
	SetConfinement(v float64) float64
	SetReactionMode(m core.ReactionMode) error
	SetPhysicsMode(m core.PhysicsMode) error
}

// Muter toggles audio output; returns the new muted state
type Muter interface {
	ToggleMute() bool
}

// ConsoleOptions carries optional collaborators
type ConsoleOptions struct {
	// Router is dispatched once per frame; the console registers its log handler on it
	Router        *event.Router
	Muter         Muter
	FrameInterval time.Duration
	Logger        *slog.Logger
}

// Console is the interactive tcell operator view
type Console struct {
	screen tcell.Screen
	ctrl   Controller
	router *event.Router
	muter  Muter
	frame  time.Duration
	logger *slog.Logger

	lines []string
	muted bool
}

// NewConsole creates a console over an uninitialized screen
func NewConsole(screen tcell.Screen, ctrl Controller, opts ConsoleOptions) *Console {
	c := &Console{
		screen: screen,
		ctrl:   ctrl,
		router: opts.Router,
		muter:  opts.Muter,
		frame:  opts.FrameInterval,
		logger: logging.OrDiscard(opts.Logger),
	}
	if c.frame <= 0 {
		c.frame = defaultFrame
	}
	if c.router != nil {
		c.router.Register(event.HandlerFunc{
			Types: []event.EventType{
				event.EventEpisodeStart,
				event.EventEpisodeEnd,
				event.EventFault,
				event.EventReset,
				event.EventAdviceApplied,
			},
			Fn: c.logEvent,
		})
	}
	return c
}

// Run initializes the screen and loops until ctx is done or the operator quits
func (c *Console) Run(ctx context.Context) error {
	if err := c.screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	core.OnCrash(c.screen.Fini)
	defer c.screen.Fini()

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	core.Go(func() { c.screen.ChannelEvents(events, quit) })
	defer close(quit)

	ticker := time.NewTicker(c.frame)
	defer ticker.Stop()

	c.Frame()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !c.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			c.Frame()
		}
	}
}

// Frame drains pending events and redraws from a fresh snapshot
func (c *Console) Frame() {
	if c.router != nil {
		c.router.Dispatch()
	}
	c.Draw(c.ctrl.Snapshot())
	c.screen.Show()
}

// HandleEvent applies one input event; returns false when the operator quits
func (c *Console) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return c.handleKey(ev)
	case *tcell.EventResize:
		c.screen.Sync()
	}
	return true
}

func (c *Console) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
	default:
		return true
	}

	snap := c.ctrl.Snapshot()
	switch ev.Rune() {
	case 'q':
		return false
	case ' ':
		if snap.State == engine.StateRunning {
			c.ctrl.Stop()
		} else {
			c.ctrl.Start(false)
		}
	case 'r':
		c.ctrl.Reset(true)
	case 't':
		c.ctrl.SetTemperature(snap.Settings.Temperature - temperatureStep)
	case 'T':
		c.ctrl.SetTemperature(snap.Settings.Temperature + temperatureStep)
	case 'c':
		c.ctrl.SetConfinement(snap.Settings.Confinement - confinementStep)
	case 'C':
		c.ctrl.SetConfinement(snap.Settings.Confinement + confinementStep)
	case 'm':
		next := core.ReactionModeDT
		if snap.Settings.ReactionMode == core.ReactionModeDT {
			next = core.ReactionModeDDDHe3
		}
		if err := c.ctrl.SetReactionMode(next); err != nil {
			c.logger.Warn("reaction mode switch failed", "error", err)
		}
	case 'p':
		next := core.PhysicsTokamak
		if snap.Settings.PhysicsMode == core.PhysicsTokamak {
			next = core.PhysicsOrbital
		}
		if err := c.ctrl.SetPhysicsMode(next); err != nil {
			c.logger.Warn("physics mode switch failed", "error", err)
		}
	case 'a':
		if c.muter != nil {
			c.muted = c.muter.ToggleMute()
		}
	}
	return true
}

func (c *Console) logEvent(ev event.SimEvent) {
	var line string
	switch p := ev.Payload.(type) {
	case *event.EpisodePayload:
		line = fmt.Sprintf("%s #%d wall=%.1f", ev.Type, p.Episode, p.Integrity)
	case *core.EpisodeSummary:
		line = fmt.Sprintf("%s #%d %s score=%.1f", ev.Type, p.Episode, p.Outcome, p.Score)
	case *event.AdvicePayload:
		line = fmt.Sprintf("advice %s: %s", p.Action, p.Rationale)
	default:
		line = ev.Type.String()
	}
	c.lines = append(c.lines, fmt.Sprintf("[%6d] %s", ev.Tick, line))
	if len(c.lines) > logLines {
		c.lines = c.lines[len(c.lines)-logLines:]
	}
}

// Draw renders snap into the back buffer without showing it
func (c *Console) Draw(snap engine.Snapshot) {
	c.screen.Clear()
	w, h := c.screen.Size()

	mapW := w - panelWidth - 2
	mapH := h - logLines - 3
	if mapW >= 4 && mapH >= 4 {
		c.drawBox(0, 0, mapW+2, mapH+2, " plasma ")
		c.drawDensity(snap, 1, 1, mapW, mapH)
	}

	c.drawPanel(snap, max(mapW+2, 0)+1, 0)
	c.drawLog(0, h-logLines-1)
	c.drawText(0, h-1, styleLabel, "spc start/stop  r reset  t/T temp  c/C conf  m reaction  p physics  a mute  q quit")
}

func (c *Console) drawDensity(snap engine.Snapshot, x0, y0, cols, rows int) {
	grid := DensityGrid(snap.Particles, cols, rows)
	for y, row := range grid {
		for x, n := range row {
			if n > 0 {
				c.screen.SetContent(x0+x, y0+y, DensityGlyph(n), nil, styleDensity)
			}
		}
	}
	for _, f := range snap.Flashes {
		if col, row, ok := cellOf(f.X, f.Y, cols, rows); ok && f.Opacity > 0.2 {
			c.screen.SetContent(x0+col, y0+row, '✶', nil, styleFlash)
		}
	}
}

func (c *Console) drawPanel(snap engine.Snapshot, x, y int) {
	t := snap.Telemetry
	s := snap.Settings
	stateStyle := styleGood
	if snap.State == engine.StateFaulted {
		stateStyle = styleWarn
	}
	wallStyle := styleValue
	if snap.Counters.WallIntegrity < 25 {
		wallStyle = styleWarn
	}
	mute := ""
	if c.muted {
		mute = " (muted)"
	}

	c.drawText(x, y, styleTitle, "FUSION CONTROL"+mute)
	rows := []struct {
		label string
		value string
		style tcell.Style
	}{
		{"state", snap.State.String(), stateStyle},
		{"episode", fmt.Sprintf("%d", snap.Episode), styleValue},
		{"ticks", fmt.Sprintf("%d", snap.Counters.Ticks), styleValue},
		{"", "", styleDefault},
		{"temperature", fmt.Sprintf("%.0f", s.Temperature), styleValue},
		{"confinement", fmt.Sprintf("%.2f (eff %.2f)", s.Confinement, snap.EffectiveConfinement), styleValue},
		{"reaction", string(s.ReactionMode), styleValue},
		{"physics", string(s.PhysicsMode), styleValue},
		{"particles", fmt.Sprintf("%d", len(snap.Particles)), styleValue},
		{"", "", styleDefault},
		{"Q factor", fmt.Sprintf("%.3f", t.QFactor), styleValue},
		{"fusion rate", fmt.Sprintf("%d /s", t.FusionRate), styleValue},
		{"safety q", fmt.Sprintf("%.3f", t.SafetyFactor), styleValue},
		{"turbulence", fmt.Sprintf("%.3f", t.Turbulence), styleValue},
		{"fractal dim", fmt.Sprintf("%.3f", t.FractalDimension), styleValue},
		{"lawson", fmt.Sprintf("%.3g", t.LawsonRatio), styleValue},
		{"", "", styleDefault},
		{"energy MeV", fmt.Sprintf("%.1f / %.0f", snap.Counters.EnergyMeV, s.EnergyThreshold), styleValue},
		{"fusions", fmt.Sprintf("%d", snap.Counters.TotalFusions), styleValue},
		{"wall", fmt.Sprintf("%.1f%%", snap.Counters.WallIntegrity), wallStyle},
	}
	for i, r := range rows {
		if r.label == "" {
			continue
		}
		c.drawText(x, y+2+i, styleLabel, r.label)
		c.drawText(x+13, y+2+i, r.style, r.value)
	}

	if snap.LastSummary != nil {
		ls := snap.LastSummary
		c.drawText(x, y+3+len(rows), styleLabel,
			fmt.Sprintf("last #%d %s %.1f", ls.Episode, ls.Outcome, ls.Score))
	}
}

func (c *Console) drawLog(x, y int) {
	for i, line := range c.lines {
		c.drawText(x, y+i, styleLabel, line)
	}
}

func (c *Console) drawBox(x, y, w, h int, title string) {
	for i := x + 1; i < x+w-1; i++ {
		c.screen.SetContent(i, y, '─', nil, styleBorder)
		c.screen.SetContent(i, y+h-1, '─', nil, styleBorder)
	}
	for j := y + 1; j < y+h-1; j++ {
		c.screen.SetContent(x, j, '│', nil, styleBorder)
		c.screen.SetContent(x+w-1, j, '│', nil, styleBorder)
	}
	c.screen.SetContent(x, y, '┌', nil, styleBorder)
	c.screen.SetContent(x+w-1, y, '┐', nil, styleBorder)
	c.screen.SetContent(x, y+h-1, '└', nil, styleBorder)
	c.screen.SetContent(x+w-1, y+h-1, '┘', nil, styleBorder)
	c.drawText(x+2, y, styleTitle, title)
}

func (c *Console) drawText(x, y int, style tcell.Style, s string) {
	for _, r := range s {
		c.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
