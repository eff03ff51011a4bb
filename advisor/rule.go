package advisor

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/parameter"
)

// Rule thresholds
const (
	// RestartWallIntegrity triggers a restart below this integrity
	RestartWallIntegrity = 20.0

	// SafetyTolerance is the relative |q-φ|/φ band left alone
	SafetyTolerance = 0.1

	// ConfinementStep is the fraction of the gap to the ideal confinement closed per decision
	ConfinementStep = 0.5

	// TemperatureBoost multiplies temperature when the window mean Q is below 1
	TemperatureBoost = 1.1
)

// RuleAdvisor is the deterministic in-process advisor.
// It steers the safety factor toward φ, heats when Q < 1 and restarts a
// nearly failed wall.
type RuleAdvisor struct {
	// Window is the number of trailing samples averaged for Q
	Window int
}

// NewRuleAdvisor creates a rule advisor averaging over the advisor history window.
func NewRuleAdvisor() *RuleAdvisor {
	return &RuleAdvisor{Window: parameter.AdvisorHistoryWindow}
}

func (r *RuleAdvisor) Advise(ctx context.Context, req Request) (Advice, error) {
	if err := ctx.Err(); err != nil {
		return Advice{}, err
	}

	if req.Counters.WallIntegrity < RestartWallIntegrity {
		return Advice{
			Action:    ActionRestart,
			Rationale: fmt.Sprintf("wall integrity %.1f below %.0f", req.Counters.WallIntegrity, RestartWallIntegrity),
		}, nil
	}

	latest, ok := req.Latest()
	if !ok {
		return NoChange("no telemetry yet"), nil
	}

	var (
		adv     = Advice{Action: ActionAdjust}
		reasons []string
	)

	if dev := math.Abs(latest.SafetyFactor-parameter.GoldenRatio) / parameter.GoldenRatio; dev > SafetyTolerance {
		ideal := IdealConfinement(req.Settings.Temperature)
		c := req.Settings.Confinement + ConfinementStep*(ideal-req.Settings.Confinement)
		c = core.ClampConfinement(c)
		if c != req.Settings.Confinement {
			adv.Confinement = &c
			reasons = append(reasons, fmt.Sprintf("q=%.3f off φ by %.0f%%, confinement %.3f→%.3f",
				latest.SafetyFactor, dev*100, req.Settings.Confinement, c))
		}
	}

	if q := r.meanQ(req.History); q < 1 {
		t := core.ClampTemperature(req.Settings.Temperature * TemperatureBoost)
		if t != req.Settings.Temperature {
			adv.Temperature = &t
			reasons = append(reasons, fmt.Sprintf("mean Q %.2f below breakeven, temperature %.1f→%.1f",
				q, req.Settings.Temperature, t))
		}
	}

	if len(reasons) == 0 {
		return NoChange("operating point within tolerance"), nil
	}
	adv.Rationale = strings.Join(reasons, "; ")
	return adv, nil
}

func (r *RuleAdvisor) meanQ(history []core.TelemetrySnapshot) float64 {
	n := r.Window
	if n <= 0 || n > len(history) {
		n = len(history)
	}
	if n == 0 {
		return 0
	}
	var sum float64
	for _, s := range history[len(history)-n:] {
		sum += s.QFactor
	}
	return sum / float64(n)
}

// IdealConfinement is the confinement at which the safety factor equals φ for temperature t.
func IdealConfinement(t float64) float64 {
	tref := parameter.SafetyReferenceTemperature
	return (tref+t)/(2*tref) - 0.5
}
