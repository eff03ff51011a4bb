package render

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/engine"
	"github.com/lixenwraith/fusion-sim/event"
	"github.com/lixenwraith/fusion-sim/parameter"
)

func newTestConsole(t *testing.T, q *event.Queue, opts ConsoleOptions) (*Console, *engine.Controller, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Failed to init simulation screen: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(120, 40)

	ctrl := engine.NewController(engine.DefaultConfig(), engine.Options{Events: q})
	return NewConsole(screen, ctrl, opts), ctrl, screen
}

func screenText(screen tcell.SimulationScreen) string {
	cells, w, h := screen.GetContents()
	var sb strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			runes := cells[y*w+x].Runes
			if len(runes) == 0 {
				sb.WriteRune(' ')
				continue
			}
			sb.WriteRune(runes[0])
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestDensityGrid(t *testing.T) {
	particles := []core.Particle{
		{X: 0, Y: 0},
		{X: 1, Y: 1},
		{X: parameter.WorldWidth, Y: parameter.WorldHeight},
		{X: -5, Y: 10}, // outside, ignored
	}
	grid := DensityGrid(particles, 10, 5)

	if len(grid) != 5 || len(grid[0]) != 10 {
		t.Fatalf("Expected 5x10 grid, got %dx%d", len(grid), len(grid[0]))
	}
	if grid[0][0] != 2 {
		t.Errorf("Expected 2 particles in top-left cell, got %d", grid[0][0])
	}
	if grid[4][9] != 1 {
		t.Errorf("Expected far corner in last cell, got %d", grid[4][9])
	}

	if DensityGrid(particles, 0, 5) != nil {
		t.Error("Expected nil grid for zero columns")
	}
}

func TestDensityGlyph(t *testing.T) {
	if DensityGlyph(0) != ' ' {
		t.Errorf("Expected blank for empty cell, got %q", DensityGlyph(0))
	}
	if DensityGlyph(1) != '.' {
		t.Errorf("Expected '.' for one particle, got %q", DensityGlyph(1))
	}
	if DensityGlyph(1000) != '@' {
		t.Errorf("Expected saturation at '@', got %q", DensityGlyph(1000))
	}
}

func TestConsoleDrawsPanel(t *testing.T) {
	console, _, screen := newTestConsole(t, nil, ConsoleOptions{})
	console.Frame()

	text := screenText(screen)
	for _, want := range []string{"FUSION CONTROL", "Q factor", "temperature", "idle", "plasma", "q quit"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected screen to contain %q", want)
		}
	}
}

func TestConsoleKeyControls(t *testing.T) {
	console, ctrl, _ := newTestConsole(t, nil, ConsoleOptions{})

	console.HandleEvent(key('T'))
	if got := ctrl.Settings().Temperature; got != parameter.DefaultTemperature+temperatureStep {
		t.Errorf("Expected temperature %v, got %v", parameter.DefaultTemperature+temperatureStep, got)
	}

	console.HandleEvent(key('c'))
	if got := ctrl.Settings().Confinement; got != parameter.DefaultConfinement-confinementStep {
		t.Errorf("Expected confinement %v, got %v", parameter.DefaultConfinement-confinementStep, got)
	}

	console.HandleEvent(key('m'))
	if got := ctrl.Settings().ReactionMode; got != core.ReactionModeDDDHe3 {
		t.Errorf("Expected reaction mode DD_DHe3, got %s", got)
	}

	console.HandleEvent(key('p'))
	if got := ctrl.Settings().PhysicsMode; got != core.PhysicsOrbital {
		t.Errorf("Expected orbital physics, got %s", got)
	}

	console.HandleEvent(key(' '))
	if ctrl.State() != engine.StateRunning {
		t.Errorf("Expected running after space, got %s", ctrl.State())
	}
	console.HandleEvent(key(' '))
	if ctrl.State() != engine.StateIdle {
		t.Errorf("Expected idle after second space, got %s", ctrl.State())
	}
}

func TestConsoleQuitKeys(t *testing.T) {
	console, _, _ := newTestConsole(t, nil, ConsoleOptions{})

	if console.HandleEvent(key('x')) != true {
		t.Error("Expected unbound key to keep running")
	}
	if console.HandleEvent(key('q')) {
		t.Error("Expected 'q' to quit")
	}
	if console.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("Expected Escape to quit")
	}
}

type fakeMuter struct{ muted bool }

func (m *fakeMuter) ToggleMute() bool {
	m.muted = !m.muted
	return m.muted
}

func TestConsoleMuteToggle(t *testing.T) {
	m := &fakeMuter{}
	console, _, screen := newTestConsole(t, nil, ConsoleOptions{Muter: m})

	console.HandleEvent(key('a'))
	if !m.muted {
		t.Fatal("Expected 'a' to mute")
	}
	console.Frame()
	if !strings.Contains(screenText(screen), "(muted)") {
		t.Error("Expected muted marker in panel title")
	}
}

func TestConsoleEventLog(t *testing.T) {
	q := event.NewQueue()
	router := event.NewRouter(q)

	console, ctrl, screen := newTestConsole(t, q, ConsoleOptions{Router: router})
	ctrl.Start(false)
	ctrl.Stop()
	console.Frame()

	text := screenText(screen)
	if !strings.Contains(text, "episode_start") {
		t.Errorf("Expected episode start in log, got:\n%s", text)
	}
	if !strings.Contains(text, "episode_end") {
		t.Errorf("Expected episode end in log, got:\n%s", text)
	}
}
