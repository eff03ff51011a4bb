package core

import "time"

// Outcome classifies how an episode ended
type Outcome string

const (
	OutcomeWallFailure Outcome = "wall_failure"
	OutcomeIgnition    Outcome = "ignition"
	OutcomeBreakeven   Outcome = "breakeven"
	OutcomeSubcritical Outcome = "subcritical"
	OutcomeCold        Outcome = "cold"
)

// EpisodeSummary is handed to the persistence collaborator at episode end
type EpisodeSummary struct {
	Episode        uint64            `json:"episode"`
	Seed           uint64            `json:"seed"`
	StartedAt      time.Time         `json:"started_at"`
	Duration       time.Duration     `json:"duration"`
	Ticks          uint64            `json:"ticks"`
	TotalEnergyMeV float64           `json:"total_energy_mev"`
	TotalFusions   int               `json:"total_fusions"`
	PeakFusionRate int               `json:"peak_fusion_rate"`
	Outcome        Outcome           `json:"outcome"`
	Final          TelemetrySnapshot `json:"final"`
	Settings       Settings          `json:"settings"`
	Score          float64           `json:"score"`
}
