package engine

import (
	"math"

	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/fusion"
	"github.com/lixenwraith/fusion-sim/parameter"
	"github.com/lixenwraith/fusion-sim/physics"
	"github.com/lixenwraith/fusion-sim/vmath"
)

// SimulationCore owns all cross-tick mutable state of one episode
// Only the controller replaces it or zeroes its counters
type SimulationCore struct {
	Ensemble *core.Ensemble
	Counters core.Counters
	Flashes  []core.Flash

	rng      vmath.Source
	flashSeq uint64
}

// NewSimulationCore seeds the ensemble from ensembleSeed and the physics stream from physicsSeed
func NewSimulationCore(s core.Settings, ensembleSeed, physicsSeed uint64) *SimulationCore {
	return &SimulationCore{
		Ensemble: InitEnsemble(s, ensembleSeed),
		Counters: core.NewCounters(),
		rng:      vmath.NewFastRand(physicsSeed),
	}
}

// EffectiveConfinement applies the wall-damage penalty to the configured confinement
func (sc *SimulationCore) EffectiveConfinement(s core.Settings) float64 {
	loss := (parameter.WallIntegrityMax - sc.Counters.WallIntegrity) / parameter.WallIntegrityMax
	return physics.EffectiveConfinement(s.Confinement, parameter.WallPenaltyScale*loss)
}

// InitEnsemble builds the initial particle set for s, deterministic in seed
// Species alternate D/T in DT mode; every third particle is He-3 in DD_DHe3 mode
func InitEnsemble(s core.Settings, seed uint64) *core.Ensemble {
	s = s.Clamp()
	rng := vmath.NewFastRand(seed)
	ens := core.NewEnsemble(s.ParticleCount)

	c := physics.Center()
	spread := parameter.InitialSpreadFraction * math.Min(parameter.WorldWidth, parameter.WorldHeight)
	speed := s.Temperature * parameter.InitialSpeedPerUnit

	for i := 0; i < s.ParticleCount; i++ {
		p := core.Particle{Species: initialSpecies(s.ReactionMode, i)}

		if s.PhysicsMode == core.PhysicsOrbital {
			o := core.Orbital{
				Radius:       rng.Range(parameter.OrbitRadiusMin, parameter.OrbitRadiusMax),
				Angle:        rng.Range(-math.Pi, math.Pi),
				Eccentricity: rng.Range(0, parameter.OrbitEccentricityMax),
				Phase:        rng.Range(-math.Pi, math.Pi),
			}
			p.X, p.Y = physics.ClampToBounds(physics.OrbitalPosition(o))
			p.Kinematics = o
		} else {
			// sqrt for uniform area density
			r := spread * math.Sqrt(rng.Float64())
			theta := rng.Range(0, 2*math.Pi)
			p.X = c.X + r*math.Cos(theta)
			p.Y = c.Y + r*math.Sin(theta)
			p.VX = rng.Range(-speed, speed)
			p.VY = rng.Range(-speed, speed)
			p.Kinematics = core.Confined{}
		}
		ens.Add(p)
	}
	return ens
}

func initialSpecies(mode core.ReactionMode, i int) core.Species {
	if mode == core.ReactionModeDDDHe3 {
		if i%3 == 2 {
			return core.SpeciesHe3
		}
		return core.SpeciesD
	}
	if i%2 == 0 {
		return core.SpeciesD
	}
	return core.SpeciesT
}

// StepResult is the outcome of one physics tick
type StepResult struct {
	WallDamage    float64
	WallHits      int
	EnergyMeV     float64
	Fusions       int
	EligiblePairs int
	Events        []core.FusionEvent
}

// Step advances sc by one fixed tick: integrate, detect, account, age flashes
// Pure with respect to everything outside sc; all randomness comes from sc's stream
func Step(sc *SimulationCore, s core.Settings, effC float64) StepResult {
	tick := sc.Counters.Ticks + 1

	sc.Flashes = core.AgeFlashes(sc.Flashes)

	move := physics.Integrate(sc.Ensemble, s, effC, sc.rng)
	det := fusion.Detect(sc.Ensemble, s, effC, sc.rng, tick)

	c := &sc.Counters
	c.Ticks = tick
	c.WallHits += move.WallHits
	c.WallIntegrity = math.Max(0, c.WallIntegrity-move.WallDamage)
	c.EnergyMeV += det.EnergyMeV
	c.WindowEnergyMeV += det.EnergyMeV
	c.WindowFusions += det.Fusions
	c.TotalFusions += det.Fusions

	for _, ev := range det.Events {
		sc.flashSeq++
		fp := parameter.Params(ev.Reaction)
		sc.Flashes = append(sc.Flashes, core.Flash{
			ID:       sc.flashSeq,
			X:        ev.X,
			Y:        ev.Y,
			Radius:   fp.FlashRadius,
			Opacity:  fp.FlashOpacity,
			Reaction: ev.Reaction,
		})
	}

	return StepResult{
		WallDamage:    move.WallDamage,
		WallHits:      move.WallHits,
		EnergyMeV:     det.EnergyMeV,
		Fusions:       det.Fusions,
		EligiblePairs: det.EligiblePairs,
		Events:        det.Events,
	}
}
