package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lixenwraith/fusion-sim/advisor"
	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/event"
	"github.com/lixenwraith/fusion-sim/logging"
	"github.com/lixenwraith/fusion-sim/parameter"
	"github.com/lixenwraith/fusion-sim/physics"
	"github.com/lixenwraith/fusion-sim/status"
	"github.com/lixenwraith/fusion-sim/telemetry"
	"github.com/lixenwraith/fusion-sim/vmath"
)

// ErrUnknownAction is returned by ApplyAdvice for an action it cannot route
var ErrUnknownAction = errors.New("engine: unknown advice action")

// State is the episode lifecycle state
type State uint8

const (
	StateIdle State = iota
	StateRunning
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateFaulted:
		return "faulted"
	default:
		return "idle"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Config is the controller's static configuration
type Config struct {
	Seed              uint64
	Settings          core.Settings
	AutoResetOnFault  bool
	TelemetryInterval time.Duration
	HistoryCapacity   int
	// MaxCatchUpSteps bounds the fixed steps a single Advance may run
	MaxCatchUpSteps int
}

// DefaultConfig returns the baseline controller configuration
func DefaultConfig() Config {
	return Config{
		Seed:              1,
		Settings:          core.DefaultSettings(),
		AutoResetOnFault:  true,
		TelemetryInterval: parameter.TelemetryInterval,
		HistoryCapacity:   parameter.HistoryCapacity,
		MaxCatchUpSteps:   8,
	}
}

// Options carries the controller's collaborators; nil fields get no-op defaults
type Options struct {
	Recorder Recorder
	Events   *event.Queue
	Registry *status.Registry
	Clock    Clock
	Logger   *slog.Logger
}

// Snapshot is a deep copy of the observable simulation state
type Snapshot struct {
	State                State                  `json:"state"`
	Episode              uint64                 `json:"episode"`
	Seed                 uint64                 `json:"seed"`
	Settings             core.Settings          `json:"settings"`
	Counters             core.Counters          `json:"counters"`
	EffectiveConfinement float64                `json:"effective_confinement"`
	Particles            []core.Particle        `json:"particles"`
	Flashes              []core.Flash           `json:"flashes"`
	Telemetry            core.TelemetrySnapshot `json:"telemetry"`
	LastSummary          *core.EpisodeSummary   `json:"last_summary,omitempty"`
}

// Controller owns settings and simulation state and serializes every mutation
// Ticks and commands are mutually exclusive under one mutex
type Controller struct {
	mu sync.Mutex

	cfg      Config
	settings core.Settings
	state    State
	sim      *SimulationCore
	agg      *telemetry.Aggregator
	latest   core.TelemetrySnapshot

	episode     uint64
	startedAt   time.Time
	lastSummary *core.EpisodeSummary

	accum       time.Duration
	sinceSample time.Duration

	recorder Recorder
	events   *event.Queue
	gauges   *status.SimGauges
	clock    Clock
	logger   *slog.Logger
}

// NewController creates an Idle controller with a freshly seeded episode
func NewController(cfg Config, opts Options) *Controller {
	if cfg.TelemetryInterval <= 0 {
		cfg.TelemetryInterval = parameter.TelemetryInterval
	}
	if cfg.HistoryCapacity <= 0 {
		cfg.HistoryCapacity = parameter.HistoryCapacity
	}
	if cfg.MaxCatchUpSteps <= 0 {
		cfg.MaxCatchUpSteps = 1
	}

	c := &Controller{
		cfg:      cfg,
		settings: cfg.Settings.Clamp(),
		agg:      telemetry.NewAggregator(cfg.TelemetryInterval, cfg.HistoryCapacity),
		recorder: opts.Recorder,
		events:   opts.Events,
		clock:    opts.Clock,
		logger:   logging.OrDiscard(opts.Logger),
	}
	if c.recorder == nil {
		c.recorder = NopRecorder{}
	}
	if c.clock == nil {
		c.clock = SystemClock{}
	}
	reg := opts.Registry
	if reg == nil {
		reg = status.NewRegistry()
	}
	c.gauges = status.NewSimGauges(reg)

	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()
	return c
}

// === Lifecycle commands ===

// Start moves Idle to Running; counters are zeroed only when reset is true
// A Faulted controller is reset first
func (c *Controller) Start(reset bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startLocked(reset)
}

func (c *Controller) startLocked(reset bool) {
	if c.state == StateFaulted {
		c.resetLocked()
	} else if reset {
		if c.state == StateRunning {
			c.endEpisodeLocked(false)
		}
		c.resetLocked()
	}
	if c.state == StateRunning {
		return
	}

	c.state = StateRunning
	c.startedAt = c.clock.Now()
	c.gauges.State.Store(c.state.String())
	c.emit(event.EventEpisodeStart, &event.EpisodePayload{
		Episode:   c.episode,
		Seed:      c.cfg.Seed,
		Integrity: c.sim.Counters.WallIntegrity,
	})
	c.logger.Info("episode started", "episode", c.episode, "reset", reset,
		"temperature", c.settings.Temperature, "confinement", c.settings.Confinement,
		"reaction_mode", c.settings.ReactionMode, "physics_mode", c.settings.PhysicsMode)
}

// Stop moves Running to Idle and persists the episode summary
// Returns false when nothing was running
func (c *Controller) Stop() (core.EpisodeSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRunning {
		return core.EpisodeSummary{}, false
	}
	summary := c.endEpisodeLocked(false)
	c.state = StateIdle
	c.gauges.State.Store(c.state.String())
	return summary, true
}

// Reset reinitializes ensemble, counters, history and flashes from settings and seed
// A running episode is summarized first; autostart begins the new one immediately
func (c *Controller) Reset(autostart bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRunning {
		c.endEpisodeLocked(false)
	}
	c.resetLocked()
	if autostart {
		c.startLocked(false)
	}
}

func (c *Controller) resetLocked() {
	c.episode++
	c.sim = NewSimulationCore(c.settings, c.cfg.Seed, c.cfg.Seed+c.episode)
	c.agg.Reset()
	c.latest = core.TelemetrySnapshot{}
	c.accum = 0
	c.sinceSample = 0
	c.state = StateIdle

	c.publishGauges()
	c.gauges.Episode.Store(int64(c.episode))
	c.gauges.State.Store(c.state.String())
	c.emit(event.EventReset, &event.EpisodePayload{
		Episode:   c.episode,
		Seed:      c.cfg.Seed,
		Integrity: c.sim.Counters.WallIntegrity,
	})
	c.logger.Debug("simulation reset", "episode", c.episode, "particles", c.sim.Ensemble.Len())
}

// endEpisodeLocked summarizes the current episode and hands it to the recorder
func (c *Controller) endEpisodeLocked(faulted bool) core.EpisodeSummary {
	final, ok := c.agg.History().Latest()
	if !ok {
		final = c.agg.Compute(c.clock.Now(), c.settings, c.sim.Counters, c.sim.Ensemble.Len())
	}
	summary := Summarize(c.episode, c.cfg.Seed, c.startedAt, c.settings, c.sim.Counters, final, faulted)
	c.lastSummary = &summary

	if err := c.recorder.RecordEpisode(context.Background(), summary); err != nil {
		c.gauges.RecorderDrops.Add(1)
		c.logger.Warn("episode summary not recorded", "episode", summary.Episode, "error", err)
	}
	c.emit(event.EventEpisodeEnd, &summary)
	c.logger.Info("episode ended", "episode", summary.Episode, "outcome", summary.Outcome,
		"energy_mev", summary.TotalEnergyMeV, "fusions", summary.TotalFusions, "score", summary.Score)
	return summary
}

// === Tick path ===

// Tick runs one physics step when Running
// A Faulted controller auto-resets to Idle instead when configured to
func (c *Controller) Tick() (StepResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickLocked()
}

func (c *Controller) tickLocked() (StepResult, bool) {
	switch c.state {
	case StateFaulted:
		if c.cfg.AutoResetOnFault {
			c.resetLocked()
		}
		return StepResult{}, false
	case StateIdle:
		return StepResult{}, false
	}

	effC := c.sim.EffectiveConfinement(c.settings)
	res := Step(c.sim, c.settings, effC)
	tick := c.sim.Counters.Ticks

	for _, ev := range res.Events {
		c.emitAt(tick, event.EventFusion, &event.FusionPayload{Event: ev})
	}
	if res.WallHits > 0 {
		c.emitAt(tick, event.EventWallHit, &event.WallHitPayload{
			Hits:      res.WallHits,
			Damage:    res.WallDamage,
			Integrity: c.sim.Counters.WallIntegrity,
		})
	}
	c.publishGauges()

	if c.sim.Counters.WallIntegrity <= 0 {
		c.faultLocked()
	}
	return res, true
}

func (c *Controller) faultLocked() {
	c.logger.Warn("wall integrity exhausted", "episode", c.episode, "tick", c.sim.Counters.Ticks,
		"wall_hits", c.sim.Counters.WallHits)
	c.endEpisodeLocked(true)
	c.state = StateFaulted
	c.gauges.State.Store(c.state.String())
	c.emit(event.EventFault, &event.EpisodePayload{
		Episode:   c.episode,
		Seed:      c.cfg.Seed,
		Integrity: 0,
	})
}

// Advance consumes dt of simulation time in fixed steps, sampling telemetry on its interval
// Returns the number of steps run; leftover time below one tick carries over
func (c *Controller) Advance(dt time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRunning {
		c.accum = 0
		if c.state == StateFaulted {
			c.tickLocked()
		}
		return 0
	}

	c.accum += dt
	steps := 0
	for c.accum >= parameter.TickInterval && steps < c.cfg.MaxCatchUpSteps {
		c.accum -= parameter.TickInterval
		if _, ok := c.tickLocked(); !ok {
			break
		}
		steps++

		c.sinceSample += parameter.TickInterval
		if c.sinceSample >= c.cfg.TelemetryInterval {
			c.sinceSample -= c.cfg.TelemetryInterval
			c.sampleLocked()
		}
		if c.state != StateRunning {
			break
		}
	}
	if c.accum >= parameter.TickInterval {
		// Drop backlog instead of spiralling
		c.accum = 0
	}
	return steps
}

// SampleTelemetry records a telemetry sample and resets the window counters
// Only a Running episode is sampled
func (c *Controller) SampleTelemetry() (core.TelemetrySnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRunning {
		return core.TelemetrySnapshot{}, false
	}
	return c.sampleLocked(), true
}

func (c *Controller) sampleLocked() core.TelemetrySnapshot {
	snap := c.agg.Sample(c.clock.Now(), c.settings, &c.sim.Counters, c.sim.Ensemble.Len())
	c.sim.Counters.ResetWindow()
	c.latest = snap

	c.gauges.FusionRate.Store(int64(snap.FusionRate))
	c.gauges.QFactor.Store(snap.QFactor)
	c.gauges.SafetyFactor.Store(snap.SafetyFactor)
	c.gauges.Lawson.Store(snap.LawsonRatio)
	c.logger.Log(context.Background(), logging.LevelTrace, "telemetry sample",
		"tick", snap.Tick, "rate", snap.FusionRate, "q", snap.QFactor)
	return snap
}

// === Settings commands ===

// SetTemperature clamps and applies t, returning the value in force
func (c *Controller) SetTemperature(t float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.Temperature = core.ClampTemperature(t)
	c.settingsChangedLocked("operator")
	return c.settings.Temperature
}

// SetConfinement clamps and applies v, returning the value in force
func (c *Controller) SetConfinement(v float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.Confinement = core.ClampConfinement(v)
	c.settingsChangedLocked("operator")
	return c.settings.Confinement
}

// SetReactionMode changes the eligible reaction pairs; species mix follows on next reset
func (c *Controller) SetReactionMode(m core.ReactionMode) error {
	if _, err := core.ParseReactionMode(string(m)); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.ReactionMode = m
	c.settingsChangedLocked("operator")
	return nil
}

// SetPhysicsMode switches the force model and converts the live ensemble's kinematics
func (c *Controller) SetPhysicsMode(m core.PhysicsMode) error {
	if _, err := core.ParsePhysicsMode(string(m)); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.settings.PhysicsMode != m {
		c.settings.PhysicsMode = m
		physics.ConvertKinematics(c.sim.Ensemble, m)
	}
	c.settingsChangedLocked("operator")
	return nil
}

// SetParticleCount clamps the initial count used by the next reset
func (c *Controller) SetParticleCount(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.ParticleCount = core.ClampParticleCount(n)
	c.settingsChangedLocked("operator")
	return c.settings.ParticleCount
}

// SetEnergyThreshold sets the outcome classification threshold
func (c *Controller) SetEnergyThreshold(v float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.EnergyThreshold = vmath.Clamp(v, 0, parameter.EnergyThresholdMax)
	c.settingsChangedLocked("operator")
	return c.settings.EnergyThreshold
}

// ApplySettings replaces every setting at once after clamping
func (c *Controller) ApplySettings(s core.Settings, source string) core.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	s = s.Clamp()
	if s.PhysicsMode != c.settings.PhysicsMode {
		physics.ConvertKinematics(c.sim.Ensemble, s.PhysicsMode)
	}
	c.settings = s
	c.settingsChangedLocked(source)
	return c.settings
}

func (c *Controller) settingsChangedLocked(source string) {
	c.emit(event.EventSettingsChanged, &event.SettingsPayload{Settings: c.settings, Source: source})
	c.logger.Debug("settings changed", "source", source,
		"temperature", c.settings.Temperature, "confinement", c.settings.Confinement,
		"reaction_mode", c.settings.ReactionMode, "physics_mode", c.settings.PhysicsMode)
}

// ApplyAdvice routes an advisory decision: adjustments are clamped, restart goes through Reset
func (c *Controller) ApplyAdvice(a advisor.Advice) (core.Settings, error) {
	if err := a.Validate(); err != nil {
		return c.Settings(), err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch a.Action {
	case advisor.ActionNoChange:
	case advisor.ActionRestart:
		wasRunning := c.state == StateRunning
		if wasRunning {
			c.endEpisodeLocked(false)
		}
		c.resetLocked()
		if wasRunning {
			c.startLocked(false)
		}
	case advisor.ActionAdjust:
		if a.Temperature != nil {
			c.settings.Temperature = core.ClampTemperature(*a.Temperature)
		}
		if a.Confinement != nil {
			c.settings.Confinement = core.ClampConfinement(*a.Confinement)
		}
		if a.ReactionMode != nil {
			c.settings.ReactionMode = *a.ReactionMode
		}
		c.settingsChangedLocked("advisor")
	default:
		return c.settings, fmt.Errorf("%w: %q", ErrUnknownAction, a.Action)
	}

	c.emit(event.EventAdviceApplied, &event.AdvicePayload{Action: string(a.Action), Rationale: a.Rationale})
	c.logger.Info("advice applied", "action", a.Action, "rationale", a.Rationale)
	return c.settings, nil
}

// === Observers ===

// State returns the lifecycle state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Settings returns the settings in force
func (c *Controller) Settings() core.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// Telemetry returns the latest sample
func (c *Controller) Telemetry() core.TelemetrySnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// History returns the newest n samples in chronological order; n <= 0 returns all
func (c *Controller) History(n int) []core.TelemetrySnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agg.History().Window(n)
}

// Snapshot returns a deep copy of the observable state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		State:                c.state,
		Episode:              c.episode,
		Seed:                 c.cfg.Seed,
		Settings:             c.settings,
		Counters:             c.sim.Counters,
		EffectiveConfinement: c.sim.EffectiveConfinement(c.settings),
		Particles:            append([]core.Particle(nil), c.sim.Ensemble.Particles...),
		Flashes:              append([]core.Flash(nil), c.sim.Flashes...),
		Telemetry:            c.latest,
	}
	if c.lastSummary != nil {
		s := *c.lastSummary
		snap.LastSummary = &s
	}
	return snap
}

// AdvisorRequest assembles the advisory input from current state
// past is supplied by the caller so storage is never touched under the lock
func (c *Controller) AdvisorRequest(window int, past []core.EpisodeSummary) advisor.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return advisor.Request{
		History:      c.agg.History().Window(window),
		Settings:     c.settings,
		Counters:     c.sim.Counters,
		Reward:       advisor.Reward(c.latest, c.sim.Counters),
		PastEpisodes: past,
	}
}

func (c *Controller) publishGauges() {
	cnt := c.sim.Counters
	c.gauges.Ticks.Store(int64(cnt.Ticks))
	c.gauges.Particles.Store(int64(c.sim.Ensemble.Len()))
	c.gauges.Energy.Store(cnt.EnergyMeV)
	c.gauges.Wall.Store(cnt.WallIntegrity)
	c.gauges.TotalFusions.Store(int64(cnt.TotalFusions))
}

func (c *Controller) emit(t event.EventType, payload any) {
	var tick uint64
	if c.sim != nil {
		tick = c.sim.Counters.Ticks
	}
	c.emitAt(tick, t, payload)
}

func (c *Controller) emitAt(tick uint64, t event.EventType, payload any) {
	if c.events == nil {
		return
	}
	c.events.Push(event.SimEvent{Type: t, Payload: payload, Tick: tick})
}
