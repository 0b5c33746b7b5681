package core

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Transform stores a general homogeneous coordinate transformation together
// with its inverse. The inverse is computed once at construction and never
// recomputed; it is required for transforming normals, which transform
// contravariantly under non-uniform scale.
//
// Points, free vectors, normals, rays, and boxes each have their own
// transform rule. Using the wrong rule silently produces wrong geometry
// without crashing, so callers must pick the method matching the geometric
// type at hand.
type Transform struct {
	Mat mgl64.Mat4
	Inv mgl64.Mat4

	invT mgl64.Mat4 // cached transpose of Inv, for normals
}

// NewTransform creates a transform from a forward matrix, computing its
// inverse. A singular matrix yields a zero inverse (mgl64 semantics), which
// collapses transformed geometry to empty rather than crashing.
func NewTransform(m mgl64.Mat4) Transform {
	inv := m.Inv()
	return Transform{Mat: m, Inv: inv, invT: inv.Transpose()}
}

// NewTransformPair creates a transform from a forward matrix and its
// already-known inverse
func NewTransformPair(m, inv mgl64.Mat4) Transform {
	return Transform{Mat: m, Inv: inv, invT: inv.Transpose()}
}

// IdentityTransform returns the identity transform
func IdentityTransform() Transform {
	return NewTransformPair(mgl64.Ident4(), mgl64.Ident4())
}

// Translate returns a translation transform
func Translate(t Vec3) Transform {
	return NewTransformPair(mgl64.Translate3D(t.X, t.Y, t.Z), mgl64.Translate3D(-t.X, -t.Y, -t.Z))
}

// Scale returns a (possibly non-uniform) scaling transform
func Scale(s Vec3) Transform {
	return NewTransform(mgl64.Scale3D(s.X, s.Y, s.Z))
}

// Rotate returns a rotation transform of angle degrees about the given axis
func Rotate(axis Vec3, angleDeg float64) Transform {
	a := axis.Normalize()
	return NewTransform(mgl64.HomogRotate3D(mgl64.DegToRad(angleDeg), mgl64.Vec3{a.X, a.Y, a.Z}))
}

// AxisOffset returns the transform taking the canonical basis to the frame
// with basis vectors x, y, z and origin o
func AxisOffset(x, y, z, o Vec3) Transform {
	m := mgl64.Mat4FromCols(
		mgl64.Vec4{x.X, x.Y, x.Z, 0},
		mgl64.Vec4{y.X, y.Y, y.Z, 0},
		mgl64.Vec4{z.X, z.Y, z.Z, 0},
		mgl64.Vec4{o.X, o.Y, o.Z, 1},
	)
	return NewTransform(m)
}

// LookAt returns the transform positioning an object at from, facing at,
// with the given up vector. The local +z axis points from the target back
// toward from.
func LookAt(from, at, up Vec3) Transform {
	dir := from.Subtract(at).Normalize()
	left := up.Cross(dir).Normalize()
	newUp := dir.Cross(left).Normalize()
	return AxisOffset(left, newUp, dir, from)
}

// Inverse returns the inverse transformation
func (t Transform) Inverse() Transform {
	return NewTransformPair(t.Inv, t.Mat)
}

// Mul concatenates two transforms: the result applies other first, then t.
// Forward matrices multiply in one order and inverses in the mirrored order,
// so that (A.Mul(B)).Inverse() == B.Inverse().Mul(A.Inverse()).
func (t Transform) Mul(other Transform) Transform {
	return NewTransformPair(t.Mat.Mul4(other.Mat), other.Inv.Mul4(t.Inv))
}

// Point applies the transformation to a point: the forward matrix applied to
// (p, 1), with the result divided by the 4th (w) component. The divide is
// required for correctness under projective transforms.
func (t Transform) Point(p Vec3) Vec3 {
	r := t.Mat.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	w := r.W()
	return Vec3{r.X() / w, r.Y() / w, r.Z() / w}
}

// Vector applies the transformation to a free direction vector: the forward
// matrix applied to (v, 0), so translation does not apply and no w-divide
// happens.
func (t Transform) Vector(v Vec3) Vec3 {
	r := t.Mat.Mul4x1(mgl64.Vec4{v.X, v.Y, v.Z, 0})
	return Vec3{r.X(), r.Y(), r.Z()}
}

// Normal applies the transformation to a surface normal: the transpose of
// the inverse matrix applied to (n, 0), re-normalized. Using the forward
// matrix here would be a correctness bug under non-uniform scale, not a
// style choice.
func (t Transform) Normal(n Vec3) Vec3 {
	r := t.invT.Mul4x1(mgl64.Vec4{n.X, n.Y, n.Z, 0})
	return Vec3{r.X(), r.Y(), r.Z()}.Normalize()
}

// Ray applies the transformation to a ray, transforming the origin as a
// point and the direction as a vector. TMin and TMax are carried through
// unchanged: the interval deliberately stays in ray-space units, matching
// per-primitive epsilon handling.
func (t Transform) Ray(r Ray) Ray {
	return Ray{
		Origin:    t.Point(r.Origin),
		Direction: t.Vector(r.Direction),
		TMin:      r.TMin,
		TMax:      r.TMax,
	}
}

// Box applies the transformation to a box by transforming all 8 corners as
// points and enclosing the results. This is conservative, not tight, for
// rotation or skew. An empty box stays empty.
func (t Transform) Box(b AABB) AABB {
	if b.IsEmpty() {
		return b
	}
	out := EmptyAABB()
	for i := 0; i < 8; i++ {
		out.EnclosePoint(t.Point(b.Corner(i)))
	}
	return out
}
