package vmath

import "math"

// Vec2 is a float64 2D vector for particle kinematics
type Vec2 struct {
	X, Y float64
}

func V2Add(a, b Vec2) Vec2 {
	return Vec2{a.X + b.X, a.Y + b.Y}
}

func V2Sub(a, b Vec2) Vec2 {
	return Vec2{a.X - b.X, a.Y - b.Y}
}

func V2Scale(v Vec2, s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

func V2Dot(a, b Vec2) float64 {
	return a.X*b.X + a.Y*b.Y
}

func V2MagSq(v Vec2) float64 {
	return v.X*v.X + v.Y*v.Y
}

func V2Mag(v Vec2) float64 {
	return math.Sqrt(V2MagSq(v))
}

// V2Normalize returns the unit vector, zero vector below eps
func V2Normalize(v Vec2, eps float64) Vec2 {
	mag := V2Mag(v)
	if mag < eps || mag == 0 {
		return Vec2{}
	}
	inv := 1.0 / mag
	return Vec2{v.X * inv, v.Y * inv}
}

// V2Perpendicular returns the vector rotated +90°
func V2Perpendicular(v Vec2) Vec2 {
	return Vec2{-v.Y, v.X}
}

// V2Midpoint returns the point halfway between a and b
func V2Midpoint(a, b Vec2) Vec2 {
	return Vec2{(a.X + b.X) * 0.5, (a.Y + b.Y) * 0.5}
}

// DistanceSq returns squared distance between two points
func DistanceSq(ax, ay, bx, by float64) float64 {
	dx := bx - ax
	dy := by - ay
	return dx*dx + dy*dy
}
