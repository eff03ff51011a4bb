// Package advisor defines the advisory collaborator that proposes settings
// changes from recent telemetry and ranked past episodes.
//
// Advisors never touch the simulation directly. The controller clamps any
// adjustment and routes restarts through its own Reset.
package advisor

import (
	"context"
	"errors"
	"fmt"

	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/vmath"
)

// ErrMalformedAdvice is returned when an advisor response fails validation.
var ErrMalformedAdvice = errors.New("advisor: malformed advice")

// ErrNoAdvisor is returned by an empty Chain.
var ErrNoAdvisor = errors.New("advisor: no advisor available")

// Action is the kind of advisory decision.
type Action string

const (
	ActionAdjust   Action = "adjust_parameters"
	ActionRestart  Action = "restart_simulation"
	ActionNoChange Action = "no_change"
)

// Advice is a single advisory decision.
// Temperature, Confinement and ReactionMode are only meaningful for ActionAdjust;
// nil fields leave the current setting untouched.
type Advice struct {
	Action       Action             `json:"action"`
	Temperature  *float64           `json:"temperature,omitempty"`
	Confinement  *float64           `json:"confinement,omitempty"`
	ReactionMode *core.ReactionMode `json:"reaction_mode,omitempty"`
	Rationale    string             `json:"rationale"`
}

// Validate checks the action label and that adjustment values are usable.
func (a Advice) Validate() error {
	switch a.Action {
	case ActionNoChange, ActionRestart:
		return nil
	case ActionAdjust:
	default:
		return fmt.Errorf("%w: unknown action %q", ErrMalformedAdvice, a.Action)
	}

	if a.Temperature == nil && a.Confinement == nil && a.ReactionMode == nil {
		return fmt.Errorf("%w: adjust_parameters without parameters", ErrMalformedAdvice)
	}
	if a.Temperature != nil && !vmath.Finite(*a.Temperature) {
		return fmt.Errorf("%w: non-finite temperature", ErrMalformedAdvice)
	}
	if a.Confinement != nil && !vmath.Finite(*a.Confinement) {
		return fmt.Errorf("%w: non-finite confinement", ErrMalformedAdvice)
	}
	if a.ReactionMode != nil {
		if _, err := core.ParseReactionMode(string(*a.ReactionMode)); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedAdvice, err)
		}
	}
	return nil
}

// NoChange returns a no_change advice with the given rationale.
func NoChange(rationale string) Advice {
	return Advice{Action: ActionNoChange, Rationale: rationale}
}

// Request is everything an advisor gets to look at.
type Request struct {
	History      []core.TelemetrySnapshot `json:"history"`
	Settings     core.Settings            `json:"settings"`
	Counters     core.Counters            `json:"counters"`
	Reward       float64                  `json:"reward"`
	PastEpisodes []core.EpisodeSummary    `json:"past_episodes"`
}

// Latest returns the newest telemetry sample of the request.
func (r Request) Latest() (core.TelemetrySnapshot, bool) {
	if len(r.History) == 0 {
		return core.TelemetrySnapshot{}, false
	}
	return r.History[len(r.History)-1], true
}

// Advisor proposes a decision for the current simulation state.
type Advisor interface {
	Advise(ctx context.Context, req Request) (Advice, error)
}

// Func adapts a plain function to Advisor.
type Func func(ctx context.Context, req Request) (Advice, error)

func (f Func) Advise(ctx context.Context, req Request) (Advice, error) {
	return f(ctx, req)
}

// Reward is the scalar the advisory loop tries to maximise.
// Higher Q and fusion rate are good; turbulence and wall damage are penalised.
func Reward(snap core.TelemetrySnapshot, c core.Counters) float64 {
	wallLoss := (100 - c.WallIntegrity) / 100
	r := snap.QFactor + 0.1*float64(snap.FusionRate) - snap.Turbulence - 0.5*wallLoss
	if !vmath.Finite(r) {
		return 0
	}
	return r
}
