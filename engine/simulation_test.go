package engine

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/parameter"
	"github.com/lixenwraith/fusion-sim/physics"
	"github.com/lixenwraith/fusion-sim/vmath"
)

func TestInitEnsembleDeterministic(t *testing.T) {
	s := core.DefaultSettings()
	a := InitEnsemble(s, 7)
	b := InitEnsemble(s, 7)
	if !reflect.DeepEqual(a.Particles, b.Particles) {
		t.Error("Expected identical ensembles for identical seeds")
	}
	c := InitEnsemble(s, 8)
	if reflect.DeepEqual(a.Particles, c.Particles) {
		t.Error("Expected different ensembles for different seeds")
	}
}

func TestInitEnsembleSpeciesMix(t *testing.T) {
	s := core.DefaultSettings()
	s.ParticleCount = 60

	dt := InitEnsemble(s, 1)
	if dt.Len() != 60 {
		t.Fatalf("Expected 60 particles, got %d", dt.Len())
	}
	if dt.CountSpecies(core.SpeciesD) != 30 || dt.CountSpecies(core.SpeciesT) != 30 {
		t.Errorf("Expected 30 D / 30 T, got %d / %d", dt.CountSpecies(core.SpeciesD), dt.CountSpecies(core.SpeciesT))
	}

	s.ReactionMode = core.ReactionModeDDDHe3
	dd := InitEnsemble(s, 1)
	if dd.CountSpecies(core.SpeciesHe3) != 20 || dd.CountSpecies(core.SpeciesD) != 40 {
		t.Errorf("Expected 40 D / 20 He3, got %d / %d", dd.CountSpecies(core.SpeciesD), dd.CountSpecies(core.SpeciesHe3))
	}
	if dd.CountSpecies(core.SpeciesT) != 0 {
		t.Error("Expected no tritium in DD_DHe3 mode")
	}
}

func TestInitEnsembleTokamakDisc(t *testing.T) {
	s := core.DefaultSettings()
	s.ParticleCount = 200
	ens := InitEnsemble(s, 3)

	c := physics.Center()
	maxR := parameter.InitialSpreadFraction * math.Min(parameter.WorldWidth, parameter.WorldHeight)
	maxV := s.Temperature * parameter.InitialSpeedPerUnit
	for _, p := range ens.Particles {
		if math.Hypot(p.X-c.X, p.Y-c.Y) > maxR+1e-9 {
			t.Errorf("Particle %d outside seeding disc at (%v,%v)", p.ID, p.X, p.Y)
		}
		if math.Abs(p.VX) > maxV || math.Abs(p.VY) > maxV {
			t.Errorf("Particle %d initial speed exceeds %v", p.ID, maxV)
		}
		if _, ok := p.OrbitalState(); ok {
			t.Errorf("Particle %d has orbital kinematics in tokamak mode", p.ID)
		}
	}
}

func TestInitEnsembleOrbital(t *testing.T) {
	s := core.DefaultSettings()
	s.PhysicsMode = core.PhysicsOrbital
	ens := InitEnsemble(s, 5)

	for _, p := range ens.Particles {
		o, ok := p.OrbitalState()
		if !ok {
			t.Fatalf("Particle %d missing orbital kinematics", p.ID)
		}
		if o.Radius < parameter.OrbitRadiusMin || o.Radius >= parameter.OrbitRadiusMax {
			t.Errorf("Orbit radius %v outside seeded range", o.Radius)
		}
		if o.Eccentricity < 0 || o.Eccentricity >= parameter.OrbitEccentricityMax {
			t.Errorf("Eccentricity %v outside seeded range", o.Eccentricity)
		}
		if !physics.InBounds(p.X, p.Y) {
			t.Errorf("Particle %d seeded out of bounds", p.ID)
		}
	}
}

func TestStepAccountsCounters(t *testing.T) {
	s := core.DefaultSettings()
	s.ParticleCount = 120
	sc := NewSimulationCore(s, 11, 12)

	var energy float64
	var fusions, hits int
	for i := 0; i < 200; i++ {
		before := sc.Counters.WallIntegrity
		res := Step(sc, s, sc.EffectiveConfinement(s))
		energy += res.EnergyMeV
		fusions += res.Fusions
		hits += res.WallHits

		if sc.Counters.WallIntegrity > before {
			t.Fatalf("Wall integrity increased at tick %d", i)
		}
		if len(res.Events) != res.Fusions {
			t.Errorf("Expected one event per fusion, got %d events for %d fusions", len(res.Events), res.Fusions)
		}
		if res.Fusions > res.EligiblePairs {
			t.Errorf("More fusions (%d) than eligible pairs (%d)", res.Fusions, res.EligiblePairs)
		}
	}

	c := sc.Counters
	if c.Ticks != 200 {
		t.Errorf("Expected 200 ticks, got %d", c.Ticks)
	}
	if c.EnergyMeV != energy || c.TotalFusions != fusions || c.WallHits != hits {
		t.Errorf("Counters disagree with step results: %+v", c)
	}
	if c.WindowFusions != fusions {
		t.Errorf("Expected window fusions %d without sampling, got %d", fusions, c.WindowFusions)
	}
}

func TestStepEmitsFlashes(t *testing.T) {
	s := core.DefaultSettings()
	// zero rolls: a guaranteed fusion
	sc := &SimulationCore{
		Ensemble: core.NewEnsemble(2),
		Counters: core.NewCounters(),
		rng:      &vmath.SequenceSource{Values: []float64{0}},
	}
	sc.Ensemble.Add(core.Particle{Species: core.SpeciesD, X: 400, Y: 300})
	sc.Ensemble.Add(core.Particle{Species: core.SpeciesT, X: 401, Y: 300})

	res := Step(sc, s, sc.EffectiveConfinement(s))
	if res.Fusions != 1 {
		t.Fatalf("Expected 1 fusion, got %d", res.Fusions)
	}
	if len(sc.Flashes) != 1 {
		t.Fatalf("Expected 1 flash, got %d", len(sc.Flashes))
	}
	f := sc.Flashes[0]
	dt := parameter.Params(parameter.ReactionDT)
	if f.Radius != dt.FlashRadius || f.Opacity != dt.FlashOpacity {
		t.Errorf("Expected DT flash geometry, got %+v", f)
	}
	if sc.Counters.EnergyMeV != dt.YieldMeV {
		t.Errorf("Expected %v MeV, got %v", dt.YieldMeV, sc.Counters.EnergyMeV)
	}

	// next step ages the flash
	Step(sc, s, sc.EffectiveConfinement(s))
	if len(sc.Flashes) != 1 || sc.Flashes[0].Opacity >= f.Opacity || sc.Flashes[0].Radius <= f.Radius {
		t.Errorf("Expected flash to grow and fade, got %+v", sc.Flashes)
	}
}

func TestSummarizeOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		energy  float64
		faulted bool
		want    core.Outcome
	}{
		{"fault wins", 5000, true, core.OutcomeWallFailure},
		{"ignition", 1000, false, core.OutcomeIgnition},
		{"breakeven", 500, false, core.OutcomeBreakeven},
		{"subcritical", 17.6, false, core.OutcomeSubcritical},
		{"cold", 0, false, core.OutcomeCold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyOutcome(tt.energy, 1000, tt.faulted); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}

	s := core.DefaultSettings()
	c := core.NewCounters()
	c.Ticks = 125
	c.EnergyMeV = 35.2
	c.PeakFusionRate = 2
	c.WallIntegrity = 80
	sum := Summarize(3, 9, time.Unix(10, 0), s, c, core.TelemetrySnapshot{QFactor: 1.5}, false)

	if sum.Duration != 2*time.Second {
		t.Errorf("Expected 2s duration, got %v", sum.Duration)
	}
	if want := 35.2 + 20 + 75 + 40; math.Abs(sum.Score-want) > 1e-9 {
		t.Errorf("Expected score %v, got %v", want, sum.Score)
	}
	if sum.Outcome != core.OutcomeSubcritical {
		t.Errorf("Expected subcritical, got %s", sum.Outcome)
	}
	if Score(0, 0, -3, 0) != 0 {
		t.Error("Expected negative Q to contribute nothing")
	}
}
