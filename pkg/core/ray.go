package core

import "math"

// MinTrace is the default offset applied to secondary ray origins to avoid
// re-intersecting the surface they originate from.
const MinTrace = 1e-4

// Ray represents a ray with an origin, a direction, and a half-open
// parametric interval [T0, T1). Intersection routines narrow T1 when they
// find a closer hit; it is never widened.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	T0        float64
	T1        float64
}

// NewRay creates a ray with an unbounded interval [MinTrace, +Inf)
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction, T0: MinTrace, T1: math.Inf(1)}
}

// NewBoundedRay creates a ray with an explicit parametric interval
func NewBoundedRay(origin, direction Vec3, t0, t1 float64) Ray {
	return Ray{Origin: origin, Direction: direction, T0: t0, T1: t1}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// Contains reports whether t lies within the ray's half-open interval
func (r Ray) Contains(t float64) bool {
	return t >= r.T0 && t < r.T1
}
