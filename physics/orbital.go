package physics

import (
	"math"

	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/parameter"
	"github.com/lixenwraith/fusion-sim/vmath"
)

// OrbitFromPosition returns a circular orbit through (x, y) around the field centre
func OrbitFromPosition(x, y float64) core.Orbital {
	c := Center()
	dx, dy := x-c.X, y-c.Y
	r := math.Hypot(dx, dy)
	minR := parameter.OrbitalRefRadius * parameter.MinRadiusRatio
	if r < minR {
		r = minR
	}
	return core.Orbital{
		Radius: r,
		Angle:  math.Atan2(dy, dx),
	}
}

// OrbitalRate returns the Kepler-like angular increment for radius r
// ω ∝ effC / (r/r_ref)^1.5 with the ratio floored to avoid the singularity at r = 0
func OrbitalRate(radius, effC float64) float64 {
	ratio := radius / parameter.OrbitalRefRadius
	if ratio < parameter.MinRadiusRatio || ratio != ratio {
		ratio = parameter.MinRadiusRatio
	}
	return parameter.OrbitalBaseRate * effC / math.Pow(ratio, 1.5)
}

// OrbitalPosition returns the Cartesian position of orbit o
func OrbitalPosition(o core.Orbital) (x, y float64) {
	c := Center()
	rho := o.Radius * (1 + o.Eccentricity*math.Cos(o.Angle+o.Phase))
	return c.X + rho*math.Cos(o.Angle), c.Y + rho*math.Sin(o.Angle)
}

// IntegrateOrbital advances every particle along its orbit for one step
// Velocity is the position delta; wall contact flips phase and decays the orbit
func IntegrateOrbital(ens *core.Ensemble, s core.Settings, effC float64, rng vmath.Source) StepResult {
	var res StepResult
	noise := s.Temperature * parameter.OrbitalNoise

	for i := range ens.Particles {
		p := &ens.Particles[i]
		o, ok := p.OrbitalState()
		if !ok {
			o = OrbitFromPosition(p.X, p.Y)
		}

		o.AngularSpeed = OrbitalRate(o.Radius, effC)
		o.Angle = math.Remainder(o.Angle+o.AngularSpeed+(rng.Float64()-0.5)*noise, 2*math.Pi)

		nx, ny := OrbitalPosition(o)
		if !InBounds(nx, ny) {
			o.Phase = math.Remainder(o.Phase+math.Pi, 2*math.Pi)
			o.Radius *= parameter.OrbitDecay
			res.WallHits++
			res.WallDamage += parameter.WallDamagePerHit
		}
		nx, ny = ClampToBounds(nx, ny)

		p.VX = nx - p.X
		p.VY = ny - p.Y
		p.X, p.Y = nx, ny
		p.Kinematics = o
		sanitize(p)
	}
	return res
}
