package core

// Ensemble is the mutable particle collection owned by the simulation core
// Particle order is the pair-scan order and must stay stable across a tick
type Ensemble struct {
	Particles []Particle
	nextID    uint64
}

// NewEnsemble creates an empty ensemble with capacity for n particles
func NewEnsemble(n int) *Ensemble {
	return &Ensemble{
		Particles: make([]Particle, 0, n),
		nextID:    1,
	}
}

// Add appends p with a freshly assigned ID and returns the ID
func (e *Ensemble) Add(p Particle) uint64 {
	if e.nextID == 0 {
		e.nextID = 1
	}
	p.ID = e.nextID
	e.nextID++
	if p.Kinematics == nil {
		p.Kinematics = Confined{}
	}
	e.Particles = append(e.Particles, p)
	return p.ID
}

// Len returns the particle count
func (e *Ensemble) Len() int {
	return len(e.Particles)
}

// NextID returns the ID the next Add will assign
func (e *Ensemble) NextID() uint64 {
	return e.nextID
}

// Compact removes particles flagged in consumed, preserving order
// consumed must be indexed like Particles
func (e *Ensemble) Compact(consumed []bool) int {
	kept := e.Particles[:0]
	removed := 0
	for i := range e.Particles {
		if i < len(consumed) && consumed[i] {
			removed++
			continue
		}
		kept = append(kept, e.Particles[i])
	}
	// Zero the tail so dropped particles do not linger in the backing array
	for i := len(kept); i < len(e.Particles); i++ {
		e.Particles[i] = Particle{}
	}
	e.Particles = kept
	return removed
}

// Clone returns an independent copy
// Kinematics variants are value types, so a slice copy is a deep copy
func (e *Ensemble) Clone() *Ensemble {
	c := &Ensemble{
		Particles: make([]Particle, len(e.Particles)),
		nextID:    e.nextID,
	}
	copy(c.Particles, e.Particles)
	return c
}

// CountSpecies returns the number of particles of species s
func (e *Ensemble) CountSpecies(s Species) int {
	n := 0
	for i := range e.Particles {
		if e.Particles[i].Species == s {
			n++
		}
	}
	return n
}
