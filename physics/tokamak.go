package physics

import (
	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/parameter"
	"github.com/lixenwraith/fusion-sim/vmath"
)

// IntegrateTokamak applies the confinement force model for one step
// Radial pull and perpendicular gyration scale with effC; thermal jitter with temperature
func IntegrateTokamak(ens *core.Ensemble, s core.Settings, effC float64, rng vmath.Source) StepResult {
	var res StepResult
	center := Center()
	radialGain := parameter.LorentzStrength * effC
	gyroGain := parameter.GyroStrength * effC
	noise := s.Temperature * parameter.ThermalNoise

	for i := range ens.Particles {
		p := &ens.Particles[i]
		p.Kinematics = core.Confined{}

		toCenter := vmath.Vec2{X: center.X - p.X, Y: center.Y - p.Y}
		radial := vmath.V2Normalize(toCenter, parameter.MinForceDistance)
		perp := vmath.V2Perpendicular(radial)

		p.VX += radial.X*radialGain + perp.X*gyroGain
		p.VY += radial.Y*radialGain + perp.Y*gyroGain

		p.VX += (rng.Float64() - 0.5) * noise
		p.VY += (rng.Float64() - 0.5) * noise

		p.VX *= parameter.Damping
		p.VY *= parameter.Damping

		p.X += p.VX
		p.Y += p.VY

		if ReflectBounds(p) {
			res.WallHits++
			res.WallDamage += parameter.WallDamagePerHit
		}
		sanitize(p)
	}
	return res
}
