package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/lixenwraith/fusion-sim/parameter"
	"github.com/lixenwraith/fusion-sim/vmath"
)

// ErrUnknownMode is returned when a mode label does not parse
var ErrUnknownMode = errors.New("core: unknown mode")

// ReactionMode selects which species pairs may fuse
type ReactionMode string

const (
	ReactionModeDT     ReactionMode = "DT"
	ReactionModeDDDHe3 ReactionMode = "DD_DHe3"
)

// ParseReactionMode validates a reaction mode label
func ParseReactionMode(s string) (ReactionMode, error) {
	switch ReactionMode(s) {
	case ReactionModeDT, ReactionModeDDDHe3:
		return ReactionMode(s), nil
	}
	return "", fmt.Errorf("%w: reaction mode %q", ErrUnknownMode, s)
}

// PhysicsMode selects the force model
type PhysicsMode string

const (
	PhysicsTokamak PhysicsMode = "tokamak"
	PhysicsOrbital PhysicsMode = "orbital"
)

// ParsePhysicsMode validates a physics mode label
func ParsePhysicsMode(s string) (PhysicsMode, error) {
	switch PhysicsMode(s) {
	case PhysicsTokamak, PhysicsOrbital:
		return PhysicsMode(s), nil
	}
	return "", fmt.Errorf("%w: physics mode %q", ErrUnknownMode, s)
}

// Settings is the operator-controlled configuration read by every stage each tick
type Settings struct {
	Temperature     float64      `json:"temperature" yaml:"temperature"`
	Confinement     float64      `json:"confinement" yaml:"confinement"`
	ReactionMode    ReactionMode `json:"reaction_mode" yaml:"reaction_mode"`
	PhysicsMode     PhysicsMode  `json:"physics_mode" yaml:"physics_mode"`
	ParticleCount   int          `json:"particle_count" yaml:"particle_count"`
	EnergyThreshold float64      `json:"energy_threshold" yaml:"energy_threshold"`
}

// DefaultSettings returns the baseline operating point
func DefaultSettings() Settings {
	return Settings{
		Temperature:     parameter.DefaultTemperature,
		Confinement:     parameter.DefaultConfinement,
		ReactionMode:    ReactionModeDT,
		PhysicsMode:     PhysicsTokamak,
		ParticleCount:   parameter.DefaultParticleCount,
		EnergyThreshold: parameter.DefaultEnergyThreshold,
	}
}

// Clamp returns s with every field forced into its documented range
// Unknown mode labels fall back to the defaults
func (s Settings) Clamp() Settings {
	s.Temperature = ClampTemperature(s.Temperature)
	s.Confinement = ClampConfinement(s.Confinement)
	if _, err := ParseReactionMode(string(s.ReactionMode)); err != nil {
		s.ReactionMode = ReactionModeDT
	}
	if _, err := ParsePhysicsMode(string(s.PhysicsMode)); err != nil {
		s.PhysicsMode = PhysicsTokamak
	}
	s.ParticleCount = ClampParticleCount(s.ParticleCount)
	s.EnergyThreshold = vmath.Clamp(s.EnergyThreshold, 0, parameter.EnergyThresholdMax)
	return s
}

func ClampTemperature(t float64) float64 {
	return vmath.Clamp(t, parameter.TemperatureMin, parameter.TemperatureMax)
}

func ClampConfinement(c float64) float64 {
	return vmath.Clamp(c, parameter.ConfinementMin, parameter.ConfinementMax)
}

func ClampParticleCount(n int) int {
	return int(math.Max(parameter.ParticleCountMin, math.Min(parameter.ParticleCountMax, float64(n))))
}
