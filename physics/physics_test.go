package physics

import (
	"math"
	"testing"

	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/parameter"
	"github.com/lixenwraith/fusion-sim/vmath"
)

func seededEnsemble(n int, rng *vmath.FastRand) *core.Ensemble {
	ens := core.NewEnsemble(n)
	for i := 0; i < n; i++ {
		ens.Add(core.Particle{
			Species: core.Species(i % 2),
			X:       rng.Range(MinX, MaxX),
			Y:       rng.Range(MinY, MaxY),
			VX:      rng.Range(-20, 20),
			VY:      rng.Range(-20, 20),
		})
	}
	return ens
}

// TestIntegrateStaysFiniteAndBounded sweeps temperature and confinement for both force models
func TestIntegrateStaysFiniteAndBounded(t *testing.T) {
	temps := []float64{0, 1, 100, 500, 1e9}
	confs := []float64{0.1, 0.5, 1.5, 10}
	modes := []core.PhysicsMode{core.PhysicsTokamak, core.PhysicsOrbital}

	for _, mode := range modes {
		for _, temp := range temps {
			for _, c := range confs {
				rng := vmath.NewFastRand(42)
				ens := seededEnsemble(50, rng)
				s := core.DefaultSettings()
				s.PhysicsMode = mode
				s.Temperature = temp
				s.Confinement = c

				for step := 0; step < 200; step++ {
					Integrate(ens, s, c, rng)
					for _, p := range ens.Particles {
						if !vmath.Finite(p.X) || !vmath.Finite(p.Y) || !vmath.Finite(p.VX) || !vmath.Finite(p.VY) {
							t.Fatalf("%s T=%v C=%v step %d: non-finite particle %+v", mode, temp, c, step, p)
						}
						if !InBounds(p.X, p.Y) {
							t.Fatalf("%s T=%v C=%v step %d: particle out of bounds (%v, %v)", mode, temp, c, step, p.X, p.Y)
						}
					}
				}
			}
		}
	}
}

func TestEffectiveConfinementFloor(t *testing.T) {
	cases := []struct {
		c, penalty, want float64
	}{
		{1.0, 0.2, 0.8},
		{0.2, 0.5, parameter.EffectiveConfinementFloor},
		{0, 0, parameter.EffectiveConfinementFloor},
		{math.NaN(), 0, parameter.EffectiveConfinementFloor},
	}
	for _, tc := range cases {
		got := EffectiveConfinement(tc.c, tc.penalty)
		if math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("EffectiveConfinement(%v, %v): expected %v, got %v", tc.c, tc.penalty, tc.want, got)
		}
	}
}

func TestTokamakWallReflection(t *testing.T) {
	ens := core.NewEnsemble(1)
	ens.Add(core.Particle{Species: core.SpeciesD, X: MaxX - 0.5, Y: parameter.WorldHeight / 2, VX: 10})

	s := core.DefaultSettings()
	s.Temperature = 0
	res := IntegrateTokamak(ens, s, parameter.EffectiveConfinementFloor, vmath.NewFastRand(1))

	if res.WallHits != 1 {
		t.Fatalf("Expected 1 wall hit, got %d", res.WallHits)
	}
	if math.Abs(res.WallDamage-parameter.WallDamagePerHit) > 1e-12 {
		t.Errorf("Expected damage %v, got %v", parameter.WallDamagePerHit, res.WallDamage)
	}
	p := ens.Particles[0]
	if p.VX >= 0 {
		t.Errorf("Expected velocity to point inward after reflection, got %v", p.VX)
	}
	if p.X != MaxX {
		t.Errorf("Expected particle clamped to %v, got %v", MaxX, p.X)
	}
}

func TestNoWallDamageInInterior(t *testing.T) {
	c := Center()
	ens := core.NewEnsemble(1)
	ens.Add(core.Particle{Species: core.SpeciesD, X: c.X + 20, Y: c.Y})

	s := core.DefaultSettings()
	s.Temperature = 0
	for i := 0; i < 50; i++ {
		res := IntegrateTokamak(ens, s, 0.5, vmath.NewFastRand(7))
		if res.WallHits != 0 || res.WallDamage != 0 {
			t.Fatalf("Step %d: expected no wall contact near centre, got %+v", i, res)
		}
	}
}

func TestTokamakCentreIsSingularityFree(t *testing.T) {
	c := Center()
	ens := core.NewEnsemble(1)
	ens.Add(core.Particle{Species: core.SpeciesT, X: c.X, Y: c.Y})

	s := core.DefaultSettings()
	s.Temperature = 0
	IntegrateTokamak(ens, s, parameter.EffectiveConfinementFloor, vmath.NewFastRand(3))

	p := ens.Particles[0]
	if p.VX != 0 || p.VY != 0 {
		t.Errorf("Expected zero force at exact centre, got velocity (%v, %v)", p.VX, p.VY)
	}
}

func TestOrbitalRateGuard(t *testing.T) {
	if r := OrbitalRate(0, 1); !vmath.Finite(r) || r <= 0 {
		t.Errorf("Expected finite positive rate at r=0, got %v", r)
	}
	inner := OrbitalRate(50, 1)
	outer := OrbitalRate(200, 1)
	if inner <= outer {
		t.Errorf("Expected inner orbit faster than outer: %v <= %v", inner, outer)
	}
	if OrbitalRate(100, 0.2) >= OrbitalRate(100, 0.8) {
		t.Error("Expected angular rate to grow with confinement")
	}
}

func TestOrbitalWallContactDecaysOrbit(t *testing.T) {
	ens := core.NewEnsemble(1)
	c := Center()
	ens.Add(core.Particle{
		Species:    core.SpeciesD,
		X:          c.X + 400,
		Y:          c.Y,
		Kinematics: core.Orbital{Radius: 400, Angle: 0},
	})

	s := core.DefaultSettings()
	s.PhysicsMode = core.PhysicsOrbital
	s.Temperature = 0
	res := IntegrateOrbital(ens, s, 0.5, vmath.NewFastRand(9))

	if res.WallHits != 1 {
		t.Fatalf("Expected a wall contact, got %d", res.WallHits)
	}
	o, ok := ens.Particles[0].OrbitalState()
	if !ok {
		t.Fatal("Expected orbital kinematics")
	}
	if math.Abs(o.Radius-400*parameter.OrbitDecay) > 1e-9 {
		t.Errorf("Expected radius %v, got %v", 400*parameter.OrbitDecay, o.Radius)
	}
	if math.Abs(math.Abs(o.Phase)-math.Pi) > 1e-9 {
		t.Errorf("Expected phase reflected to π, got %v", o.Phase)
	}
}

func TestOrbitalVelocityIsPositionDelta(t *testing.T) {
	ens := core.NewEnsemble(1)
	c := Center()
	ens.Add(core.Particle{Species: core.SpeciesD, X: c.X + 100, Y: c.Y})
	x0, y0 := ens.Particles[0].X, ens.Particles[0].Y

	s := core.DefaultSettings()
	s.PhysicsMode = core.PhysicsOrbital
	IntegrateOrbital(ens, s, 0.5, vmath.NewFastRand(11))

	p := ens.Particles[0]
	if math.Abs(p.VX-(p.X-x0)) > 1e-9 || math.Abs(p.VY-(p.Y-y0)) > 1e-9 {
		t.Errorf("Expected velocity equal to displacement, got v=(%v,%v) d=(%v,%v)", p.VX, p.VY, p.X-x0, p.Y-y0)
	}
}

func TestConvertKinematics(t *testing.T) {
	ens := core.NewEnsemble(2)
	c := Center()
	ens.Add(core.Particle{Species: core.SpeciesD, X: c.X + 30, Y: c.Y + 40})
	ens.Add(core.Particle{Species: core.SpeciesT, X: c.X, Y: c.Y})

	ConvertKinematics(ens, core.PhysicsOrbital)
	o, ok := ens.Particles[0].OrbitalState()
	if !ok {
		t.Fatal("Expected orbital state after conversion")
	}
	if math.Abs(o.Radius-50) > 1e-9 {
		t.Errorf("Expected radius 50, got %v", o.Radius)
	}

	ConvertKinematics(ens, core.PhysicsTokamak)
	if _, ok := ens.Particles[0].OrbitalState(); ok {
		t.Error("Expected orbital state dropped after converting back")
	}
}

func TestElasticCollision2D(t *testing.T) {
	a := core.Particle{Species: core.SpeciesD, X: 100, Y: 100, VX: 1}
	b := core.Particle{Species: core.SpeciesD, X: 105, Y: 100, VX: -1}

	if !ElasticCollision2D(&a, &b) {
		t.Fatal("Expected closing pair to collide")
	}
	// Equal masses swap normal components
	if math.Abs(a.VX+1) > 1e-12 || math.Abs(b.VX-1) > 1e-12 {
		t.Errorf("Expected velocity swap, got a=%v b=%v", a.VX, b.VX)
	}

	// Now separating: no change
	before := a
	if ElasticCollision2D(&a, &b) {
		t.Error("Expected separating pair to be ignored")
	}
	if a != before {
		t.Error("Expected separating pair velocities untouched")
	}
}

func TestElasticCollisionConservesMomentum(t *testing.T) {
	a := core.Particle{Species: core.SpeciesD, X: 0, Y: 0, VX: 3, VY: 1}
	b := core.Particle{Species: core.SpeciesT, X: 4, Y: 3, VX: -1, VY: -2}

	pax, pay := a.Momentum()
	pbx, pby := b.Momentum()
	ElasticCollision2D(&a, &b)
	qax, qay := a.Momentum()
	qbx, qby := b.Momentum()

	if math.Abs((pax+pbx)-(qax+qbx)) > 1e-9 || math.Abs((pay+pby)-(qay+qby)) > 1e-9 {
		t.Errorf("Momentum not conserved: before (%v,%v) after (%v,%v)", pax+pbx, pay+pby, qax+qbx, qay+qby)
	}
}
