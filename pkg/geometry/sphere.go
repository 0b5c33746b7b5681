package geometry

import (
	"math"

	"github.com/tessen-dev/goray/pkg/core"
	"github.com/tessen-dev/goray/pkg/stats"
)

// Sphere represents a sphere of a given radius centered at its local origin.
type Sphere struct {
	XformedSurfaceWithMaterial
	Radius float64

	stats *stats.Collector
}

// NewSphere creates a new sphere
func NewSphere(radius float64, material core.Material, xform core.Transform, collector *stats.Collector) *Sphere {
	s := &Sphere{Radius: radius, stats: collector}
	s.Xform = xform
	s.Material = material
	return s
}

// Intersect tests if the ray hits the sphere, solving the quadratic
// |o + t*d|^2 = r^2 in the sphere's local space.
func (s *Sphere) Intersect(ray *core.Ray, hit *core.HitRecord) bool {
	s.stats.SphereTest()

	tray := s.Xform.Inverse().Ray(*ray)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := tray.Direction.Dot(tray.Direction)
	halfB := tray.Origin.Dot(tray.Direction)
	c := tray.Origin.Dot(tray.Origin) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return false
	}

	// Try the closer root first, then the farther one
	sqrtD := math.Sqrt(discriminant)
	root := (-halfB - sqrtD) / a
	if root < tray.TMin || root > tray.TMax {
		root = (-halfB + sqrtD) / a
		if root < tray.TMin || root > tray.TMax {
			return false
		}
	}

	p := tray.At(root)
	n := p.Multiply(1.0 / s.Radius)

	hit.T = root
	hit.Point = s.Xform.Point(p)
	hit.GeoNormal = s.Xform.Normal(n)
	hit.ShadeNormal = hit.GeoNormal
	hit.UV = core.Vec2{}
	hit.Material = s.Material
	ray.TMax = root

	s.stats.SphereHit()
	return true
}

// Bounds returns the sphere's world-space bounding box
func (s *Sphere) Bounds() core.AABB {
	r := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return s.Xform.Box(core.NewAABB(r.Negate(), r))
}
