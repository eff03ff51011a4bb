package engine

import (
	"math"
	"time"

	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/parameter"
)

// Score weights
const (
	ScorePeakRateWeight = 10.0
	ScoreQWeight        = 50.0
	ScoreWallWeight     = 0.5
)

// ClassifyOutcome derives the episode outcome from energy against the configured threshold
func ClassifyOutcome(energyMeV, threshold float64, faulted bool) core.Outcome {
	switch {
	case faulted:
		return core.OutcomeWallFailure
	case threshold > 0 && energyMeV >= threshold:
		return core.OutcomeIgnition
	case threshold > 0 && energyMeV >= threshold/2:
		return core.OutcomeBreakeven
	case energyMeV > 0:
		return core.OutcomeSubcritical
	default:
		return core.OutcomeCold
	}
}

// Score is the composite ranking value of an episode
func Score(energyMeV float64, peakRate int, finalQ, wall float64) float64 {
	return energyMeV +
		ScorePeakRateWeight*float64(peakRate) +
		ScoreQWeight*math.Max(0, finalQ) +
		ScoreWallWeight*wall
}

// Summarize builds the persistence record for an ended episode
func Summarize(episode, seed uint64, startedAt time.Time, s core.Settings, c core.Counters, final core.TelemetrySnapshot, faulted bool) core.EpisodeSummary {
	return core.EpisodeSummary{
		Episode:        episode,
		Seed:           seed,
		StartedAt:      startedAt,
		Duration:       time.Duration(c.Ticks) * parameter.TickInterval,
		Ticks:          c.Ticks,
		TotalEnergyMeV: c.EnergyMeV,
		TotalFusions:   c.TotalFusions,
		PeakFusionRate: c.PeakFusionRate,
		Outcome:        ClassifyOutcome(c.EnergyMeV, s.EnergyThreshold, faulted),
		Final:          final,
		Settings:       s,
		Score:          Score(c.EnergyMeV, c.PeakFusionRate, final.QFactor, c.WallIntegrity),
	}
}
