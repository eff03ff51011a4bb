package fusion

import (
	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/parameter"
	"github.com/lixenwraith/fusion-sim/physics"
	"github.com/lixenwraith/fusion-sim/vmath"
)

// Result is the outcome of one detection pass
type Result struct {
	Events     []core.FusionEvent
	EnergyMeV  float64
	Fusions    int
	Collisions int
	// Rolls counts random draws, one per eligible proximity pair
	Rolls int
	// EligiblePairs counts proximity pairs whose species could fuse
	EligiblePairs int
}

type pendingProduct struct {
	event    int
	particle core.Particle
}

// Detect scans unordered pairs (i < j) within ProximityRadius, rolls eligible pairs once,
// and applies fusion or elastic scattering. A particle fuses at most once per call.
// The ensemble is mutated in place: reactants are removed and products appended.
// Randomness is drawn only from rng, so a fixed seed reproduces the same events.
func Detect(ens *core.Ensemble, s core.Settings, effC float64, rng vmath.Source, tick uint64) Result {
	var res Result
	n := ens.Len()
	if n < 2 {
		return res
	}

	proxSq := parameter.ProximityRadius * parameter.ProximityRadius
	elasticSq := parameter.ElasticRadius * parameter.ElasticRadius
	consumed := make([]bool, n)
	var products []pendingProduct

	for i := 0; i < n; i++ {
		if consumed[i] {
			continue
		}
		pi := &ens.Particles[i]

		for j := i + 1; j < n; j++ {
			if consumed[j] {
				continue
			}
			pj := &ens.Particles[j]

			distSq := vmath.DistanceSq(pi.X, pi.Y, pj.X, pj.Y)
			if distSq >= proxSq {
				continue
			}

			if reaction, ok := ReactionFor(s.ReactionMode, pi.Species, pj.Species); ok {
				res.EligiblePairs++
				energy := CollisionEnergy(s.Temperature, pi, pj)
				prob := Probability(CrossSection(reaction, energy), effC, n)

				res.Rolls++
				if rng.Float64() < prob {
					consumed[i] = true
					consumed[j] = true

					ev := fuse(pi, pj, reaction, energy, prob, tick)
					res.Events = append(res.Events, ev)
					res.EnergyMeV += ev.EnergyMeV
					res.Fusions++

					if reaction == parameter.ReactionDD {
						products = append(products, pendingProduct{
							event:    len(res.Events) - 1,
							particle: helium3Product(pi, pj, s.PhysicsMode),
						})
					}
					break
				}
			}

			if distSq < elasticSq && physics.ElasticCollision2D(pi, pj) {
				res.Collisions++
			}
		}
	}

	if res.Fusions == 0 {
		return res
	}

	for _, pp := range products {
		res.Events[pp.event].Product = ens.Add(pp.particle)
	}
	ens.Compact(consumed)
	return res
}

// fuse builds the event record for a successful reaction
func fuse(a, b *core.Particle, r parameter.Reaction, energyKeV, prob float64, tick uint64) core.FusionEvent {
	mid := vmath.V2Midpoint(vmath.Vec2{X: a.X, Y: a.Y}, vmath.Vec2{X: b.X, Y: b.Y})
	return core.FusionEvent{
		Tick:         tick,
		Reaction:     r,
		ReactantA:    a.ID,
		ReactantB:    b.ID,
		X:            mid.X,
		Y:            mid.Y,
		EnergyMeV:    parameter.Params(r).YieldMeV,
		CollisionKeV: energyKeV,
		Probability:  prob,
	}
}

// helium3Product returns the He3 born from a D+D reaction at the pair midpoint
// carrying ProductMomentumFraction of the reactants' summed momentum
func helium3Product(a, b *core.Particle, mode core.PhysicsMode) core.Particle {
	pax, pay := a.Momentum()
	pbx, pby := b.Momentum()
	m := core.SpeciesHe3.Mass()
	f := parameter.ProductMomentumFraction

	x, y := physics.ClampToBounds((a.X+b.X)*0.5, (a.Y+b.Y)*0.5)
	p := core.Particle{
		Species:    core.SpeciesHe3,
		X:          x,
		Y:          y,
		VX:         f * (pax + pbx) / m,
		VY:         f * (pay + pby) / m,
		Kinematics: core.Confined{},
	}
	if mode == core.PhysicsOrbital {
		p.Kinematics = physics.OrbitFromPosition(x, y)
	}
	return p
}
