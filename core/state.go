package core

import "github.com/lixenwraith/fusion-sim/parameter"

// Counters is the cross-tick mutable simulation state besides the ensemble
type Counters struct {
	// EnergyMeV is cumulative released energy, non-decreasing within an episode
	EnergyMeV float64 `json:"energy_mev"`
	// WallIntegrity runs from 100 down to 0, non-increasing until reset
	WallIntegrity float64 `json:"wall_integrity"`
	// WindowFusions counts fusions since the last telemetry sample
	WindowFusions int `json:"window_fusions"`
	// WindowEnergyMeV is energy released since the last telemetry sample
	WindowEnergyMeV float64 `json:"window_energy_mev"`
	// TotalFusions counts fusions across the episode
	TotalFusions int `json:"total_fusions"`
	// PeakFusionRate is the maximum sampled fusion rate of the episode
	PeakFusionRate int `json:"peak_fusion_rate"`
	// Ticks is the number of physics steps in the episode
	Ticks uint64 `json:"ticks"`
	// WallHits counts boundary contacts
	WallHits int `json:"wall_hits"`
}

// NewCounters returns zeroed counters with an intact wall
func NewCounters() Counters {
	return Counters{WallIntegrity: parameter.WallIntegrityMax}
}

// ResetWindow clears the per-sample accumulators
func (c *Counters) ResetWindow() {
	c.WindowFusions = 0
	c.WindowEnergyMeV = 0
}
