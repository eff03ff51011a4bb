package core

// Kinematics is the force-model specific state of a particle
// Closed set: Confined (tokamak) or Orbital (Keplerian)
type Kinematics interface {
	isKinematics()
}

// Confined marks a particle driven by the tokamak force model
// Position and velocity live on the Particle itself
type Confined struct{}

// Orbital carries the Keplerian orbit parameters of a particle
type Orbital struct {
	// Radius is the semi-major orbit radius around the field centre
	Radius float64
	// Angle is the current orbital angle in radians
	Angle float64
	// AngularSpeed is the last applied angular increment per step
	AngularSpeed float64
	// Eccentricity in [0, 1) modulates the instantaneous radius
	Eccentricity float64
	// Phase offsets the eccentric modulation; flipped by π on wall contact
	Phase float64
}

func (Confined) isKinematics() {}
func (Orbital) isKinematics()  {}

// OrbitalState returns the orbit parameters when the particle is in orbital mode
func (p *Particle) OrbitalState() (Orbital, bool) {
	o, ok := p.Kinematics.(Orbital)
	return o, ok
}
