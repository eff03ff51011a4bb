package event

import (
	"github.com/lixenwraith/fusion-sim/core"
)

// FusionPayload wraps a detector fusion record
type FusionPayload struct {
	Event core.FusionEvent `json:"event"`
}

// WallHitPayload aggregates boundary contacts of one tick
type WallHitPayload struct {
	Hits      int     `json:"hits"`
	Damage    float64 `json:"damage"`
	Integrity float64 `json:"integrity"`
}

// EpisodePayload identifies the episode a lifecycle event belongs to
type EpisodePayload struct {
	Episode   uint64  `json:"episode"`
	Seed      uint64  `json:"seed"`
	Integrity float64 `json:"integrity"`
}

// SettingsPayload carries the settings in force after a change
type SettingsPayload struct {
	Settings core.Settings `json:"settings"`
	Source   string        `json:"source"` // operator, advisor, config
}

// AdvicePayload reports an applied advisory action
type AdvicePayload struct {
	Action    string `json:"action"`
	Rationale string `json:"rationale"`
}
