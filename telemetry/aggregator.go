// Package telemetry derives rolling-window metrics from simulation counters.
//
// The safety-factor, turbulence, fractal-dimension and Lawson proxies are
// illustrative shapes (monotone in their inputs), not validated plasma physics.
package telemetry

import (
	"math"
	"time"

	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/parameter"
	"github.com/lixenwraith/fusion-sim/vmath"
)

// SafetyFactor returns the magnetic safety-factor proxy q
// Increases with confinement, decreases with temperature, equals φ at C = 0.5 and T = Tref
func SafetyFactor(temperature, confinement float64) float64 {
	if temperature < 0 {
		temperature = 0
	}
	if confinement < 0 {
		confinement = 0
	}
	tref := parameter.SafetyReferenceTemperature
	return parameter.GoldenRatio * (0.5 + confinement) * 2 * tref / (tref + temperature)
}

// Turbulence is the relative deviation of q from φ
func Turbulence(q float64) float64 {
	return math.Abs(q-parameter.GoldenRatio) / parameter.GoldenRatio
}

// FractalDimension maps the deviation of q from φ into [1, 2)
func FractalDimension(q float64) float64 {
	return 1 + math.Tanh(math.Abs(q-parameter.GoldenRatio))
}

// InputPower is the modelled heating power in MeV/s
func InputPower(temperature, confinement float64, particleCount int) float64 {
	return parameter.InputPowerCoeff * temperature * confinement * float64(particleCount)
}

// QFactor is the ratio of fusion output rate to modelled input rate
// Zero when either the window or the input is zero
func QFactor(windowEnergyMeV float64, window time.Duration, temperature, confinement float64, particleCount int) float64 {
	secs := window.Seconds()
	in := InputPower(temperature, confinement, particleCount)
	if secs <= 0 || in <= 0 {
		return 0
	}
	q := (windowEnergyMeV / secs) / in
	if !vmath.Finite(q) {
		return 0
	}
	return q
}

// LawsonRatio compares the modelled triple product n·T·τ with the channel's ignition threshold
func LawsonRatio(mode core.ReactionMode, temperature, confinement float64, particleCount int) float64 {
	r := parameter.ReactionDT
	if mode == core.ReactionModeDDDHe3 {
		r = parameter.ReactionDD
	}
	threshold := parameter.Params(r).LawsonTriple
	if threshold <= 0 || particleCount <= 0 {
		return 0
	}
	density := float64(particleCount) / (parameter.WorldWidth * parameter.WorldHeight) * parameter.LawsonDensityScale
	tKeV := temperature * parameter.ThermalKeVPerUnit
	tau := confinement * parameter.LawsonTauScale
	return density * tKeV * tau / threshold
}

// Aggregator samples counters on a fixed cadence into a bounded history
type Aggregator struct {
	window  time.Duration
	history *core.History
}

// NewAggregator creates an aggregator with sampling period window and history capacity
func NewAggregator(window time.Duration, capacity int) *Aggregator {
	if window <= 0 {
		window = parameter.TelemetryInterval
	}
	return &Aggregator{
		window:  window,
		history: core.NewHistory(capacity),
	}
}

// Window returns the sampling period
func (a *Aggregator) Window() time.Duration {
	return a.window
}

// History returns the backing ring; callers copy through Window
func (a *Aggregator) History() *core.History {
	return a.history
}

// Compute derives a snapshot from settings and counters without recording it
func (a *Aggregator) Compute(now time.Time, s core.Settings, c core.Counters, particleCount int) core.TelemetrySnapshot {
	q := SafetyFactor(s.Temperature, s.Confinement)
	return core.TelemetrySnapshot{
		Time:             now,
		Tick:             c.Ticks,
		QFactor:          QFactor(c.WindowEnergyMeV, a.window, s.Temperature, s.Confinement, particleCount),
		FusionRate:       c.WindowFusions,
		ParticleCount:    particleCount,
		SafetyFactor:     q,
		FractalDimension: FractalDimension(q),
		Turbulence:       Turbulence(q),
		LawsonRatio:      LawsonRatio(s.ReactionMode, s.Temperature, s.Confinement, particleCount),
		Temperature:      s.Temperature,
		Confinement:      s.Confinement,
	}
}

// Sample computes a snapshot, appends it to history and raises c.PeakFusionRate
// Resetting the window counters is the caller's job
func (a *Aggregator) Sample(now time.Time, s core.Settings, c *core.Counters, particleCount int) core.TelemetrySnapshot {
	snap := a.Compute(now, s, *c, particleCount)
	if snap.FusionRate > c.PeakFusionRate {
		c.PeakFusionRate = snap.FusionRate
	}
	a.history.Push(snap)
	return snap
}

// Reset drops recorded history
func (a *Aggregator) Reset() {
	a.history.Clear()
}
