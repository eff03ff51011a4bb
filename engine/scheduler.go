package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/fusion-sim/advisor"
	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/logging"
	"github.com/lixenwraith/fusion-sim/parameter"
	"github.com/lixenwraith/fusion-sim/status"
)

// SchedulerConfig sets the three cadences of the scheduler
type SchedulerConfig struct {
	TickInterval      time.Duration
	TelemetryInterval time.Duration
	// AdvisorInterval of zero disables periodic consults
	AdvisorInterval time.Duration
	AdvisorTimeout  time.Duration
	AdvisorWindow   int
	// PastEpisodes is how many ranked summaries accompany a consult
	PastEpisodes int
}

// DefaultSchedulerConfig returns the standard real-time cadences
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		TickInterval:      parameter.TickInterval,
		TelemetryInterval: parameter.TelemetryInterval,
		AdvisorInterval:   parameter.AdvisorInterval,
		AdvisorTimeout:    parameter.AdvisorTimeout,
		AdvisorWindow:     parameter.AdvisorHistoryWindow,
		PastEpisodes:      parameter.PastEpisodeLimit,
	}
}

// SchedulerOptions carries optional collaborators
type SchedulerOptions struct {
	Advisor   advisor.Advisor
	Ranker    EpisodeRanker
	Registry  *status.Registry
	Decisions *logging.DecisionLogger
	Logger    *slog.Logger
}

// Scheduler drives a Controller on a fixed tick with drift correction
// Telemetry is sampled on a slower ticker; advisory consults run off the tick goroutine
type Scheduler struct {
	ctrl *Controller
	cfg  SchedulerConfig

	advisor   advisor.Advisor
	ranker    EpisodeRanker
	decisions *logging.DecisionLogger
	logger    *slog.Logger

	// Tick counter for metrics
	tickCount atomic.Uint64
	advising  atomic.Bool

	// Control
	baseCtx    context.Context
	baseCancel context.CancelFunc
	stopChan   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	running    atomic.Bool

	statCalls  *atomic.Int64
	statErrors *atomic.Int64
}

// NewScheduler creates a stopped scheduler for ctrl
func NewScheduler(ctrl *Controller, cfg SchedulerConfig, opts SchedulerOptions) *Scheduler {
	def := DefaultSchedulerConfig()
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.TelemetryInterval <= 0 {
		cfg.TelemetryInterval = def.TelemetryInterval
	}
	if cfg.AdvisorTimeout <= 0 {
		cfg.AdvisorTimeout = def.AdvisorTimeout
	}
	if cfg.AdvisorWindow <= 0 {
		cfg.AdvisorWindow = def.AdvisorWindow
	}

	reg := opts.Registry
	if reg == nil {
		reg = status.NewRegistry()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		ctrl:       ctrl,
		cfg:        cfg,
		advisor:    opts.Advisor,
		ranker:     opts.Ranker,
		decisions:  opts.Decisions,
		logger:     logging.OrDiscard(opts.Logger),
		baseCtx:    ctx,
		baseCancel: cancel,
		stopChan:   make(chan struct{}),
		statCalls:  reg.Ints.Get(status.KeyAdvisorCalls),
		statErrors: reg.Ints.Get(status.KeyAdvisorErrors),
	}
}

// Start begins the scheduler loop
func (s *Scheduler) Start() {
	if s.running.CompareAndSwap(false, true) {
		s.wg.Add(1)
		core.Go(s.loop)
	}
}

// Stop halts the loop, cancels any in-flight consult and waits for both
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.baseCancel()
		if s.running.CompareAndSwap(true, false) {
			close(s.stopChan)
		}
		s.wg.Wait()
	})
}

// Ticks returns the number of ticks driven so far
func (s *Scheduler) Ticks() uint64 {
	return s.tickCount.Load()
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	nextTickDeadline := time.Now().Add(s.cfg.TickInterval)
	timer := time.NewTimer(s.cfg.TickInterval)
	defer timer.Stop()

	telemetry := time.NewTicker(s.cfg.TelemetryInterval)
	defer telemetry.Stop()

	var consult <-chan time.Time
	if s.advisor != nil && s.cfg.AdvisorInterval > 0 {
		t := time.NewTicker(s.cfg.AdvisorInterval)
		defer t.Stop()
		consult = t.C
	}

	for {
		select {
		case <-s.stopChan:
			return

		case <-timer.C:
			s.ctrl.Tick()
			s.tickCount.Add(1)

			now := time.Now()
			nextTickDeadline = nextTickDeadline.Add(s.cfg.TickInterval)
			maxBehind := s.cfg.TickInterval * 2
			if now.Sub(nextTickDeadline) > maxBehind {
				nextTickDeadline = now.Add(s.cfg.TickInterval)
			}
			sleep := nextTickDeadline.Sub(now)
			if sleep < 0 {
				sleep = 0
			}
			timer.Reset(sleep)

		case <-telemetry.C:
			s.ctrl.SampleTelemetry()

		case <-consult:
			if s.ctrl.State() == StateRunning {
				s.consultAsync()
			}
		}
	}
}

// consultAsync runs one consult off the tick goroutine; overlapping consults are skipped
func (s *Scheduler) consultAsync() {
	if !s.advising.CompareAndSwap(false, true) {
		return
	}
	s.wg.Add(1)
	core.Go(func() {
		defer s.wg.Done()
		defer s.advising.Store(false)
		if _, err := s.Consult(s.baseCtx); err != nil {
			s.logger.Warn("advisory consult failed", "error", err)
		}
	})
}

// Consult asks the advisor once under the configured timeout and applies the result
// Failures leave the simulation untouched
func (s *Scheduler) Consult(ctx context.Context) (advisor.Advice, error) {
	if s.advisor == nil {
		return advisor.Advice{}, advisor.ErrNoAdvisor
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.AdvisorTimeout)
	defer cancel()

	var past []core.EpisodeSummary
	if s.ranker != nil && s.cfg.PastEpisodes > 0 {
		var err error
		past, err = s.ranker.TopEpisodes(ctx, s.cfg.PastEpisodes)
		if err != nil {
			s.logger.Warn("past episodes unavailable", "error", err)
			past = nil
		}
	}

	req := s.ctrl.AdvisorRequest(s.cfg.AdvisorWindow, past)
	s.statCalls.Add(1)
	adv, err := s.advisor.Advise(ctx, req)
	if err != nil {
		s.statErrors.Add(1)
		return advisor.Advice{}, fmt.Errorf("advise: %w", err)
	}

	if _, err := s.ctrl.ApplyAdvice(adv); err != nil {
		s.statErrors.Add(1)
		return adv, fmt.Errorf("apply advice: %w", err)
	}

	s.decisions.Log(map[string]any{
		"action":      adv.Action,
		"rationale":   adv.Rationale,
		"reward":      req.Reward,
		"temperature": req.Settings.Temperature,
		"confinement": req.Settings.Confinement,
		"samples":     len(req.History),
		"past":        len(past),
	})
	return adv, nil
}
