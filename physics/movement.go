package physics

import (
	"math"

	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/parameter"
	"github.com/lixenwraith/fusion-sim/vmath"
)

// StepResult is the wall accounting of one integration step
type StepResult struct {
	WallDamage float64
	WallHits   int
}

// EffectiveConfinement is confinement minus penalty, floored
func EffectiveConfinement(confinement, penalty float64) float64 {
	eff := confinement - penalty
	if eff < parameter.EffectiveConfinementFloor || eff != eff {
		return parameter.EffectiveConfinementFloor
	}
	return eff
}

// Integrate advances every particle one fixed step under the active force model
func Integrate(ens *core.Ensemble, s core.Settings, effC float64, rng vmath.Source) StepResult {
	s = s.Clamp()
	effC = vmath.Clamp(effC, parameter.EffectiveConfinementFloor, parameter.ConfinementMax)

	if s.PhysicsMode == core.PhysicsOrbital {
		return IntegrateOrbital(ens, s, effC, rng)
	}
	return IntegrateTokamak(ens, s, effC, rng)
}

// ConvertKinematics switches every particle's kinematic state to match mode
// Positions and velocities are preserved
func ConvertKinematics(ens *core.Ensemble, mode core.PhysicsMode) {
	for i := range ens.Particles {
		p := &ens.Particles[i]
		switch mode {
		case core.PhysicsOrbital:
			if _, ok := p.OrbitalState(); !ok {
				p.Kinematics = OrbitFromPosition(p.X, p.Y)
			}
		default:
			p.Kinematics = core.Confined{}
		}
	}
}

// CapSpeed limits the velocity vector magnitude to maxSpeed
// Returns true if velocity was clamped
func CapSpeed(p *core.Particle, maxSpeed float64) bool {
	magSq := p.VX*p.VX + p.VY*p.VY
	if magSq <= maxSpeed*maxSpeed {
		return false
	}
	scale := maxSpeed / math.Sqrt(magSq)
	p.VX *= scale
	p.VY *= scale
	return true
}
