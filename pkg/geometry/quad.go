package geometry

import (
	"math"

	"github.com/tessen-dev/goray/pkg/core"
	"github.com/tessen-dev/goray/pkg/stats"
)

// Quad represents a rectangle spanning -Size/2 to Size/2 in the local
// (x,y)-plane at z=0.
type Quad struct {
	XformedSurfaceWithMaterial
	Size core.Vec2 // Half-extent of the quad in the local (x,y) plane

	stats *stats.Collector
}

// NewQuad creates a new quad with the given full extents
func NewQuad(size core.Vec2, material core.Material, xform core.Transform, collector *stats.Collector) *Quad {
	q := &Quad{Size: size.Multiply(0.5), stats: collector}
	q.Xform = xform
	q.Material = material
	return q
}

// Intersect tests if the ray hits the quad's plane within its extents
func (q *Quad) Intersect(ray *core.Ray, hit *core.HitRecord) bool {
	q.stats.QuadTest()

	tray := q.Xform.Inverse().Ray(*ray)
	if tray.Direction.Z == 0 {
		return false
	}
	t := -tray.Origin.Z / tray.Direction.Z
	p := tray.At(t)

	if q.Size.X < math.Abs(p.X) || q.Size.Y < math.Abs(p.Y) {
		return false
	}
	if t < tray.TMin || t > tray.TMax {
		return false
	}

	// project the hit point onto the plane to reduce floating-point drift
	// that could cause spurious re-intersection
	p.Z = 0

	hit.T = t
	hit.Point = q.Xform.Point(p)
	hit.GeoNormal = q.Xform.Normal(core.NewVec3(0, 0, 1))
	hit.ShadeNormal = hit.GeoNormal
	hit.UV = core.NewVec2(p.X/(2*q.Size.X)+0.5, p.Y/(2*q.Size.Y)+0.5)
	hit.Material = q.Material
	ray.TMax = t

	q.stats.QuadHit()
	return true
}

// Bounds returns the quad's world-space bounding box
func (q *Quad) Bounds() core.AABB {
	local := core.NewAABB(
		core.NewVec3(-q.Size.X, -q.Size.Y, 0),
		core.NewVec3(q.Size.X, q.Size.Y, 0),
	)
	return padDegenerateAxes(q.Xform.Box(local))
}

// area returns the world-space area of the quad: the cross product of the
// two transformed edge vectors.
func (q *Quad) area() float64 {
	e1 := q.Xform.Vector(core.NewVec3(2*q.Size.X, 0, 0))
	e2 := q.Xform.Vector(core.NewVec3(0, 2*q.Size.Y, 0))
	return e1.Cross(e2).Length()
}

// Sample picks a point uniformly on the quad and returns it along with the
// direction from origin and the solid-angle density of that direction. The
// uniform area density 1/area is converted to solid-angle measure by
// multiplying with distance²/cosθ.
func (q *Quad) Sample(origin core.Vec3, rv core.Vec2) (core.Vec3, core.Vec3, float64) {
	local := core.NewVec3(
		q.Size.X*(2*rv.X-1),
		q.Size.Y*(2*rv.Y-1),
		0,
	)
	point := q.Xform.Point(local)

	toPoint := point.Subtract(origin)
	dist2 := toPoint.LengthSquared()
	if dist2 == 0 {
		return point, core.Vec3{}, 0
	}
	dir := toPoint.Multiply(1 / math.Sqrt(dist2))

	normal := q.Xform.Normal(core.NewVec3(0, 0, 1))
	cosTheta := math.Abs(normal.Dot(dir))
	if cosTheta < 1e-8 {
		return point, dir, 0
	}

	pdf := dist2 / (cosTheta * q.area())
	return point, dir, pdf
}

// Pdf re-derives the solid-angle density of sampling the given direction
// from origin by intersecting the quad along it.
func (q *Quad) Pdf(origin, dir core.Vec3) float64 {
	ray := core.NewRay(origin, dir)
	var hit core.HitRecord
	if !q.Intersect(&ray, &hit) {
		return 0
	}

	dist2 := hit.Point.Subtract(origin).LengthSquared()
	cosTheta := math.Abs(hit.GeoNormal.Dot(dir.Normalize()))
	if cosTheta < 1e-8 {
		return 0
	}
	return dist2 / (cosTheta * q.area())
}
