package core

import "math"

// AABB represents an axis-aligned bounding box given by its min and max
// corners. The empty box (min=+Inf, max=-Inf per component) is the identity
// for Enclose: enclosing anything with it yields the other operand unchanged.
type AABB struct {
	Min Vec3
	Max Vec3
}

// NewAABB creates a new AABB from min and max corners
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB creates an empty AABB
func EmptyAABB() AABB {
	return AABB{
		Min: NewVec3(math.Inf(1), math.Inf(1), math.Inf(1)),
		Max: NewVec3(math.Inf(-1), math.Inf(-1), math.Inf(-1)),
	}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	box := EmptyAABB()
	for _, p := range points {
		box.EnclosePoint(p)
	}
	return box
}

// IsEmpty reports whether the box contains no points
func (aabb AABB) IsEmpty() bool {
	return aabb.Min.X > aabb.Max.X || aabb.Min.Y > aabb.Max.Y || aabb.Min.Z > aabb.Max.Z
}

// Enclose grows the box to contain another box
func (aabb *AABB) Enclose(other AABB) {
	aabb.Min = aabb.Min.Min(other.Min)
	aabb.Max = aabb.Max.Max(other.Max)
}

// EnclosePoint grows the box to contain a point
func (aabb *AABB) EnclosePoint(p Vec3) {
	aabb.Min = aabb.Min.Min(p)
	aabb.Max = aabb.Max.Max(p)
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	aabb.Enclose(other)
	return aabb
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Diagonal returns the extent of the AABB along each axis
func (aabb AABB) Diagonal() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// SurfaceArea returns the surface area of the AABB
func (aabb AABB) SurfaceArea() float64 {
	d := aabb.Diagonal()
	return 2.0 * (d.X*d.Y + d.Y*d.Z + d.Z*d.X)
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the longest extent
func (aabb AABB) LongestAxis() int {
	d := aabb.Diagonal()
	if d.X > d.Y && d.X > d.Z {
		return 0
	}
	if d.Y > d.Z {
		return 1
	}
	return 2
}

// Corner returns one of the 8 corners of the box, selected by the low three
// bits of i (bit 0 = x, bit 1 = y, bit 2 = z)
func (aabb AABB) Corner(i int) Vec3 {
	p := aabb.Min
	if i&1 != 0 {
		p.X = aabb.Max.X
	}
	if i&2 != 0 {
		p.Y = aabb.Max.Y
	}
	if i&4 != 0 {
		p.Z = aabb.Max.Z
	}
	return p
}

// Hit tests the ray against the box with a per-axis slab test, intersecting
// each axis interval with the ray's own [TMin, TMax]. Zero direction
// components produce ±Inf reciprocals, which IEEE arithmetic turns into a
// correctly permissive or correctly empty interval without branching.
func (aabb AABB) Hit(ray *Ray) bool {
	_, ok := aabb.HitDistance(ray)
	return ok
}

// HitDistance performs the slab test and additionally reports the parametric
// entry distance of the ray into the box, clipped to the ray's interval.
// Traversal code uses the entry distance to visit the nearer child first.
func (aabb AABB) HitDistance(ray *Ray) (float64, bool) {
	tMin := ray.TMin
	tMax := ray.TMax

	for axis := 0; axis < 3; axis++ {
		invD := 1.0 / ray.Direction.Axis(axis)
		t0 := (aabb.Min.Axis(axis) - ray.Origin.Axis(axis)) * invD
		t1 := (aabb.Max.Axis(axis) - ray.Origin.Axis(axis)) * invD
		if invD < 0 {
			t0, t1 = t1, t0
		}

		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMax < tMin {
			return 0, false
		}
	}
	return tMin, true
}
