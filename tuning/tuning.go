// Package tuning searches operator settings offline by scoring headless episodes.
package tuning

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/engine"
	"github.com/lixenwraith/fusion-sim/genetic"
	"github.com/lixenwraith/fusion-sim/logging"
	"github.com/lixenwraith/fusion-sim/parameter"
)

// Gene order of a settings genome
const (
	GeneTemperature = iota
	GeneConfinement
	geneCount
)

// Bounds are the search ranges of the tuned settings
var Bounds = []genetic.ParameterBounds{
	GeneTemperature: {Min: parameter.TemperatureMin, Max: parameter.TemperatureMax},
	GeneConfinement: {Min: parameter.ConfinementMin, Max: parameter.ConfinementMax},
}

// Config controls a tuning run
type Config struct {
	// Base supplies the seed and every setting that is not tuned
	Base engine.Config
	// Ticks is the length of one evaluation episode
	Ticks int
	// Episodes is the number of seeds averaged per candidate
	Episodes int
	Genetic  genetic.EngineConfig
	Logger   *slog.Logger
}

// Result is the best settings found with the search statistics
type Result struct {
	Settings core.Settings `json:"settings"`
	Score    float64       `json:"score"`
	// Baseline is the fitness of the untuned base settings
	Baseline float64                      `json:"baseline"`
	History  []genetic.PoolStats[float64] `json:"history"`
}

// Genome encodes the tuned fields of s
func Genome(s core.Settings) []float64 {
	g := make([]float64, geneCount)
	g[GeneTemperature] = s.Temperature
	g[GeneConfinement] = s.Confinement
	return g
}

// Apply writes a genome onto base, clamping each gene
func Apply(base core.Settings, g []float64) core.Settings {
	s := base
	if len(g) > GeneTemperature {
		s.Temperature = core.ClampTemperature(g[GeneTemperature])
	}
	if len(g) > GeneConfinement {
		s.Confinement = core.ClampConfinement(g[GeneConfinement])
	}
	return s
}

// Evaluate runs episodes headless episodes of ticks each with s and returns the mean score
// Episode i uses seed base.Seed+i, so the result is deterministic
func Evaluate(base engine.Config, s core.Settings, ticks, episodes int) float64 {
	episodes = max(1, episodes)
	var total float64
	for i := 0; i < episodes; i++ {
		cfg := base
		cfg.Seed = base.Seed + uint64(i)
		cfg.Settings = s
		cfg.AutoResetOnFault = false
		total += RunEpisode(cfg, ticks).Score
	}
	return total / float64(episodes)
}

// RunEpisode plays one episode of at most ticks steps on a simulated clock
// The episode ends early on wall failure
func RunEpisode(cfg engine.Config, ticks int) core.EpisodeSummary {
	clock := engine.NewManualClock(time.Unix(0, 0).UTC())
	ctrl := engine.NewController(cfg, engine.Options{Clock: clock})

	ctrl.Start(true)
	for i := 0; i < ticks; i++ {
		clock.Advance(parameter.TickInterval)
		ctrl.Advance(parameter.TickInterval)
		if ctrl.State() != engine.StateRunning {
			break
		}
	}
	if summary, ok := ctrl.Stop(); ok {
		return summary
	}
	if last := ctrl.Snapshot().LastSummary; last != nil {
		return *last
	}
	return core.EpisodeSummary{}
}

// Tune evolves temperature and confinement to maximize mean episode score
func Tune(ctx context.Context, cfg Config) (Result, error) {
	logger := logging.OrDiscard(cfg.Logger)
	if cfg.Ticks <= 0 {
		cfg.Ticks = parameter.TuneEpisodeTicks
	}
	if cfg.Episodes <= 0 {
		cfg.Episodes = parameter.TuneEpisodesPerCandidate
	}
	base := cfg.Base.Settings.Clamp()

	evaluate := func(g []float64) float64 {
		return Evaluate(cfg.Base, Apply(base, g), cfg.Ticks, cfg.Episodes)
	}

	gcfg := cfg.Genetic
	if gcfg.Seed == 0 {
		gcfg.Seed = cfg.Base.Seed
	}
	// The untuned settings seed the first pool so the result never regresses below them
	initial := genetic.UniformInitializer(Bounds)
	seeded := false
	ga := genetic.NewEngine[[]float64, float64](
		evaluate,
		func(rng *rand.Rand) []float64 {
			if !seeded {
				seeded = true
				return Genome(base)
			}
			return initial(rng)
		},
		&genetic.TournamentSelector[[]float64, float64]{TournamentSize: parameter.GATournamentSize},
		&genetic.UniformCombiner[[]float64, float64, float64]{MixProbability: parameter.GACrossoverMixProbability},
		&genetic.BoundedPerturbator{Bounds: Bounds, StandardDeviation: parameter.GAPerturbationStdDev},
		gcfg,
	)
	ga.SetTerminator(func(pool *genetic.Pool[[]float64, float64], iteration int) bool {
		logger.Debug("tuning generation", "generation", pool.Generation,
			"best", pool.Stats.BestScore, "average", pool.Stats.AverageScore)
		return false
	})

	_, runErr := ga.Run(ctx)
	best, err := ga.Best()
	if err != nil {
		return Result{}, fmt.Errorf("tuning: %w", err)
	}

	res := Result{
		Settings: Apply(base, best.Data),
		Score:    best.Score,
		Baseline: evaluate(Genome(base)),
		History:  ga.History(),
	}
	logger.Info("tuning finished", "generations", len(res.History)-1,
		"temperature", res.Settings.Temperature, "confinement", res.Settings.Confinement,
		"score", res.Score, "baseline", res.Baseline)
	return res, runErr
}
