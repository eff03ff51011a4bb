package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/lixenwraith/fusion-sim/advisor"
	"github.com/lixenwraith/fusion-sim/config"
	"github.com/lixenwraith/fusion-sim/engine"
	"github.com/lixenwraith/fusion-sim/event"
	"github.com/lixenwraith/fusion-sim/logging"
	"github.com/lixenwraith/fusion-sim/status"
	"github.com/lixenwraith/fusion-sim/store"
	"github.com/spf13/cobra"
)

// dispatchInterval is how often headless commands drain the event queue
const dispatchInterval = 50 * time.Millisecond

// app bundles the collaborators every subcommand shares
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	decisions *logging.DecisionLogger
	registry  *status.Registry
	queue     *event.Queue
	router    *event.Router
	store     store.EpisodeStore
	recorder  *engine.AsyncRecorder
	advisor   advisor.Advisor
	clock     engine.Clock
	ctrl      *engine.Controller
}

// appOptions adjusts wiring per subcommand
type appOptions struct {
	// Clock overrides the wall clock, used by headless runs
	Clock engine.Clock
	// Seed overrides the configured seed when set
	Seed *uint64
	// LogWriter replaces stderr as the log destination
	LogWriter io.Writer
}

// loadConfig reads --config and --log-level and validates the result
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newApp loads the configuration and wires store, recorder, advisor and controller
func newApp(cmd *cobra.Command, opts appOptions) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if opts.Seed != nil {
		cfg.Simulation.Seed = *opts.Seed
	}

	logOut := opts.LogWriter
	if logOut == nil {
		logOut = cmd.ErrOrStderr()
	}
	logger := logging.NewLogger(cfg.Logging.Level, logOut)

	st, err := openStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		decisions: logging.NewDecisionLogger(cfg.Logging.DecisionDir, cfg.Logging.Level),
		registry:  status.NewRegistry(),
		queue:     event.NewQueue(),
		store:     st,
		advisor:   newAdvisor(cfg.Advisor),
		clock:     opts.Clock,
	}
	a.router = event.NewRouter(a.queue)
	a.registry.Bools.Get(status.KeyAudioEnabled).Store(cfg.Audio.Enabled)
	a.recorder = engine.NewAsyncRecorder(st, cfg.Store.QueueSize, logger)

	a.ctrl = engine.NewController(cfg.EngineConfig(), engine.Options{
		Recorder: a.recorder,
		Events:   a.queue,
		Registry: a.registry,
		Clock:    opts.Clock,
		Logger:   logger,
	})

	logger.Debug("app wired",
		"store", cfg.Store.Driver,
		"advisor", cfg.Advisor.String(),
		"seed", cfg.Simulation.Seed)
	return a, nil
}

// newScheduler wraps the controller in a real-time scheduler with the configured advisor
func (a *app) newScheduler() *engine.Scheduler {
	return engine.NewScheduler(a.ctrl, a.cfg.SchedulerConfig(), engine.SchedulerOptions{
		Advisor:   a.advisor,
		Ranker:    a.store,
		Registry:  a.registry,
		Decisions: a.decisions,
		Logger:    a.logger,
	})
}

// dispatchLoop drains the event queue until ctx is done
// Used by commands without a frame loop of their own
func (a *app) dispatchLoop(ctx context.Context) {
	ticker := time.NewTicker(dispatchInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			a.router.Dispatch()
			return
		case <-ticker.C:
			a.router.Dispatch()
			a.registry.Ints.Get(status.KeyEventsLost).Store(int64(a.queue.Overwritten()))
		}
	}
}

// Close flushes pending summaries and releases the store
func (a *app) Close() {
	a.recorder.Close()
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing store", "error", err)
	}
	a.decisions.Close()
}

func openStore(cfg config.StoreConfig) (store.EpisodeStore, error) {
	switch cfg.Driver {
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	default:
		s, err := store.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("opening episode store: %w", err)
		}
		return s, nil
	}
}

// newAdvisor builds the configured advisor; off yields nil
func newAdvisor(cfg config.AdvisorConfig) advisor.Advisor {
	rule := func() advisor.Advisor {
		r := advisor.NewRuleAdvisor()
		if cfg.Window > 0 {
			r.Window = cfg.Window
		}
		return r
	}
	remote := func() advisor.Advisor {
		return advisor.NewHTTPAdvisor(advisor.HTTPConfig{
			Endpoint: cfg.Endpoint,
			APIKey:   cfg.APIKey,
			Timeout:  cfg.Timeout,
		})
	}

	switch cfg.Mode {
	case config.AdvisorRule:
		return rule()
	case config.AdvisorHTTP:
		return remote()
	case config.AdvisorChain:
		return advisor.Fallback(remote(), rule())
	default:
		return nil
	}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)
	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
