package core

import "math"

// RayEpsilon is the default minimum distance along a ray segment. Starting
// the interval slightly above zero avoids re-intersecting the surface a
// secondary ray was spawned from.
const RayEpsilon = 1e-4

// Ray represents a ray segment with an origin, a direction, and a valid
// parametric interval [TMin, TMax]. The direction need not be normalized.
//
// TMax is mutable by design: every successful intersection query shrinks it
// to the hit distance, so that subsequent tests along the same traversal only
// look for strictly closer hits. Each ray query owns its own Ray value, which
// keeps concurrent tracing lock-free.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	TMin      float64
	TMax      float64
}

// NewRay creates a new ray covering the default segment [RayEpsilon, +Inf)
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction, TMin: RayEpsilon, TMax: math.Inf(1)}
}

// NewRaySegment creates a new ray covering the segment [tMin, tMax]
func NewRaySegment(origin, direction Vec3, tMin, tMax float64) Ray {
	return Ray{Origin: origin, Direction: direction, TMin: tMin, TMax: tMax}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}
