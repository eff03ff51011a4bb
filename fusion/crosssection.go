// Package fusion detects close particle pairs, rolls reactions against
// Gamow-weighted cross-sections and applies the reaction product rules.
package fusion

import (
	"math"

	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/parameter"
	"github.com/lixenwraith/fusion-sim/vmath"
)

// ReactionFor returns the channel a species pair can undergo in mode
// DT admits (D,T); DD_DHe3 admits (D,D) and (D,He3). Order of a and b is irrelevant
func ReactionFor(mode core.ReactionMode, a, b core.Species) (parameter.Reaction, bool) {
	if a > b {
		a, b = b, a
	}
	switch mode {
	case core.ReactionModeDT:
		if a == core.SpeciesD && b == core.SpeciesT {
			return parameter.ReactionDT, true
		}
	case core.ReactionModeDDDHe3:
		if a == core.SpeciesD && b == core.SpeciesD {
			return parameter.ReactionDD, true
		}
		if a == core.SpeciesD && b == core.SpeciesHe3 {
			return parameter.ReactionDHe3, true
		}
	}
	return parameter.ReactionNone, false
}

// CollisionEnergy is the keV-equivalent energy of a pair: thermal term plus ½|Δv|²
func CollisionEnergy(temperature float64, a, b *core.Particle) float64 {
	dvx := a.VX - b.VX
	dvy := a.VY - b.VY
	return parameter.ThermalKeVPerUnit*temperature + 0.5*(dvx*dvx+dvy*dvy)
}

// CrossSection returns the reaction cross-section in barns at energyKeV
//
// The shape is σmax·exp(−√(Eg/E))·peak(E/Ep) with a log-Gaussian peak of squared-log
// width PeakShapeWidth. The Gamow slope at Ep is cancelled by shifting the Gaussian
// centre, and the product is normalised at Ep, so σ(Ep) = σmax is the global maximum.
// Returns 0 for E ≤ 0, non-finite E, or an unknown channel.
func CrossSection(r parameter.Reaction, energyKeV float64) float64 {
	p := parameter.Params(r)
	if p.MaxCrossSection <= 0 || p.PeakEnergyKeV <= 0 {
		return 0
	}
	if energyKeV <= 0 || !vmath.Finite(energyKeV) {
		return 0
	}

	w := parameter.PeakShapeWidth
	a := math.Sqrt(p.GamowEnergyKeV / p.PeakEnergyKeV)
	u := math.Log(energyKeV / p.PeakEnergyKeV)
	u0 := -a * w / 4

	gamow := -math.Sqrt(p.GamowEnergyKeV/energyKeV) + a
	peak := -((u-u0)*(u-u0) - u0*u0) / w

	sigma := p.MaxCrossSection * math.Exp(gamow+peak)
	if !vmath.Finite(sigma) {
		return 0
	}
	return sigma
}

// Probability converts a cross-section into a per-roll fusion probability
// Non-decreasing in sigma and confinement, saturating in density at DensitySaturationCount,
// capped at ProbabilityMax
func Probability(sigma, confinement float64, particleCount int) float64 {
	if sigma <= 0 || particleCount <= 0 || !vmath.Finite(sigma) {
		return 0
	}
	if confinement < 0 || confinement != confinement {
		confinement = 0
	}
	boost := 0.5 + 2*confinement
	density := math.Min(1, float64(particleCount)/parameter.DensitySaturationCount)

	prob := 1 - math.Exp(-sigma*parameter.ProbabilityScale*boost*density)
	return vmath.Clamp(prob, 0, parameter.ProbabilityMax)
}
