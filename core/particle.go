package core

import (
	"fmt"

	"github.com/lixenwraith/fusion-sim/parameter"
)

// Species is the nuclide tag of a particle
type Species uint8

const (
	SpeciesD Species = iota
	SpeciesT
	SpeciesHe3
)

var speciesNames = [...]string{
	SpeciesD:   "D",
	SpeciesT:   "T",
	SpeciesHe3: "He3",
}

func (s Species) String() string {
	if int(s) < len(speciesNames) {
		return speciesNames[s]
	}
	return fmt.Sprintf("Species(%d)", uint8(s))
}

// Mass returns the species mass in deuteron-relative units
func (s Species) Mass() float64 {
	switch s {
	case SpeciesT:
		return parameter.MassT
	case SpeciesHe3:
		return parameter.MassHe3
	default:
		return parameter.MassD
	}
}

// MarshalText renders the species as its label
func (s Species) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a species label
func (s *Species) UnmarshalText(b []byte) error {
	for i, name := range speciesNames {
		if name == string(b) {
			*s = Species(i)
			return nil
		}
	}
	return fmt.Errorf("unknown species %q", string(b))
}

// Particle is one charged nucleus of the ensemble
type Particle struct {
	ID         uint64     `json:"id"`
	Species    Species    `json:"species"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	VX         float64    `json:"vx"`
	VY         float64    `json:"vy"`
	Kinematics Kinematics `json:"-"`
}

// Momentum returns mass * velocity
func (p *Particle) Momentum() (px, py float64) {
	m := p.Species.Mass()
	return m * p.VX, m * p.VY
}
