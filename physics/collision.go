package physics

import (
	"math"

	"github.com/lixenwraith/fusion-sim/core"
)

// ElasticCollision2D exchanges momentum along the line of centres
// Returns false without change for coincident or separating pairs
func ElasticCollision2D(a, b *core.Particle) bool {
	dx := b.X - a.X
	dy := b.Y - a.Y
	distSq := dx*dx + dy*dy
	if distSq == 0 {
		return false
	}

	invDist := 1.0 / math.Sqrt(distSq)
	nx, ny := dx*invDist, dy*invDist

	// Closing speed of a toward b along the normal
	vn := (a.VX-b.VX)*nx + (a.VY-b.VY)*ny
	if vn <= 0 {
		return false
	}

	invA := 1.0 / a.Species.Mass()
	invB := 1.0 / b.Species.Mass()

	// Perfectly elastic: restitution 1
	j := 2.0 * vn / (invA + invB)

	a.VX -= j * invA * nx
	a.VY -= j * invA * ny
	b.VX += j * invB * nx
	b.VY += j * invB * ny
	return true
}
