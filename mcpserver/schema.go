package mcpserver

import (
	"github.com/lixenwraith/fusion-sim/core"
)

// StateInput defines the input for fusion_state tool.
type StateInput struct{}

// StateOutput defines the output for fusion_state tool.
type StateOutput struct {
	State                string                 `json:"state" jsonschema:"Lifecycle state: idle, running or faulted"`
	Episode              uint64                 `json:"episode" jsonschema:"Current episode number"`
	Settings             core.Settings          `json:"settings" jsonschema:"Operator settings in force"`
	Counters             core.Counters          `json:"counters" jsonschema:"Energy, wall integrity and fusion counters of the episode"`
	EffectiveConfinement float64                `json:"effective_confinement" jsonschema:"Confinement after the wall damage penalty"`
	ParticleCount        int                    `json:"particle_count" jsonschema:"Live particles in the ensemble"`
	Telemetry            core.TelemetrySnapshot `json:"telemetry" jsonschema:"Latest telemetry sample"`
	LastSummary          *core.EpisodeSummary   `json:"last_summary,omitempty" jsonschema:"Summary of the most recently ended episode"`
}

// TelemetryInput defines the input for fusion_telemetry tool.
type TelemetryInput struct {
	Samples int `json:"samples,omitempty" jsonschema:"Number of trailing history samples to return (default 50)"`
}

// TelemetryOutput defines the output for fusion_telemetry tool.
type TelemetryOutput struct {
	Latest  core.TelemetrySnapshot   `json:"latest" jsonschema:"Latest telemetry sample"`
	History []core.TelemetrySnapshot `json:"history" jsonschema:"Trailing samples, oldest first"`
	Count   int                      `json:"count" jsonschema:"Number of history samples returned"`
	Reward  float64                  `json:"reward" jsonschema:"Scalar reward proxy for the current operating point"`
}

// AdjustInput defines the input for fusion_adjust tool.
type AdjustInput struct {
	Temperature  *float64 `json:"temperature,omitempty" jsonschema:"New plasma temperature, clamped to 0..500"`
	Confinement  *float64 `json:"confinement,omitempty" jsonschema:"New magnetic confinement strength, clamped to 0..1.5"`
	ReactionMode string   `json:"reaction_mode,omitempty" jsonschema:"Reaction mode: DT or DD_DHe3"`
	Rationale    string   `json:"rationale,omitempty" jsonschema:"Why this adjustment is proposed"`
}

// AdjustOutput defines the output for fusion_adjust tool.
type AdjustOutput struct {
	Settings core.Settings `json:"settings" jsonschema:"Settings in force after clamping"`
	Message  string        `json:"message" jsonschema:"Human-readable result message"`
}

// RestartInput defines the input for fusion_restart tool.
type RestartInput struct {
	Rationale string `json:"rationale,omitempty" jsonschema:"Why the episode should restart"`
}

// RestartOutput defines the output for fusion_restart tool.
type RestartOutput struct {
	Episode uint64 `json:"episode" jsonschema:"Episode number after the restart"`
	State   string `json:"state" jsonschema:"Lifecycle state after the restart"`
	Message string `json:"message" jsonschema:"Human-readable result message"`
}

// EpisodesInput defines the input for fusion_episodes tool.
type EpisodesInput struct {
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum episodes to return (default 10)"`
	Order string `json:"order,omitempty" jsonschema:"Ranking: top (by score, default) or recent"`
}

// EpisodesOutput defines the output for fusion_episodes tool.
type EpisodesOutput struct {
	Episodes []core.EpisodeSummary `json:"episodes" jsonschema:"Episode summaries in the requested order"`
	Count    int                   `json:"count" jsonschema:"Number of episodes returned"`
}
