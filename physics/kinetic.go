package physics

import (
	"math"

	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/parameter"
	"github.com/lixenwraith/fusion-sim/vmath"
)

// Bounds of valid particle centres
const (
	MinX = parameter.ParticleRadius
	MaxX = parameter.WorldWidth - parameter.ParticleRadius
	MinY = parameter.ParticleRadius
	MaxY = parameter.WorldHeight - parameter.ParticleRadius
)

// Center returns the field centre of the simulation area
func Center() vmath.Vec2 {
	return vmath.Vec2{X: parameter.WorldWidth / 2, Y: parameter.WorldHeight / 2}
}

// InBounds reports whether (x, y) is a valid particle centre
func InBounds(x, y float64) bool {
	return x >= MinX && x <= MaxX && y >= MinY && y <= MaxY
}

// ClampToBounds forces a position into the simulation area; NaN maps to the low edge
func ClampToBounds(x, y float64) (float64, float64) {
	return vmath.Clamp(x, MinX, MaxX), vmath.Clamp(y, MinY, MaxY)
}

// ReflectBoundsX handles horizontal boundary contact, returns true if reflection occurred
// Normal speed is inverted toward the interior and scaled by Restitution
func ReflectBoundsX(p *core.Particle) bool {
	if p.X < MinX {
		p.X = MinX
		p.VX = math.Abs(p.VX) * parameter.Restitution
		return true
	}
	if p.X > MaxX {
		p.X = MaxX
		p.VX = -math.Abs(p.VX) * parameter.Restitution
		return true
	}
	return false
}

// ReflectBoundsY handles vertical boundary contact, returns true if reflection occurred
func ReflectBoundsY(p *core.Particle) bool {
	if p.Y < MinY {
		p.Y = MinY
		p.VY = math.Abs(p.VY) * parameter.Restitution
		return true
	}
	if p.Y > MaxY {
		p.Y = MaxY
		p.VY = -math.Abs(p.VY) * parameter.Restitution
		return true
	}
	return false
}

// ReflectBounds handles both axes, returns true if any reflection occurred
func ReflectBounds(p *core.Particle) bool {
	rx := ReflectBoundsX(p)
	ry := ReflectBoundsY(p)
	return rx || ry
}

// sanitize zeroes non-finite velocity and clamps position
func sanitize(p *core.Particle) {
	if !vmath.Finite(p.VX) {
		p.VX = 0
	}
	if !vmath.Finite(p.VY) {
		p.VY = 0
	}
	p.X, p.Y = ClampToBounds(p.X, p.Y)
}
