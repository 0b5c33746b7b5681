package geometry

import (
	"github.com/tessen-dev/goray/pkg/core"
)

// SurfaceGroup is a collection of surfaces treated as a single surface. It
// implements a naive linear-time intersection that simply tests every child,
// and serves as the base for acceleration structures that do better.
//
// A group carries its own transform positioning it relative to its parent's
// local space, so nested groups can be individually placed.
type SurfaceGroup struct {
	Xform core.Transform

	surfaces []Surface
	bounds   core.AABB
}

// NewSurfaceGroup creates an empty group with the given transform
func NewSurfaceGroup(xform core.Transform) *SurfaceGroup {
	return &SurfaceGroup{Xform: xform, bounds: core.EmptyAABB()}
}

// AddChild appends a child surface and grows the group's local bounds
func (g *SurfaceGroup) AddChild(child Surface) {
	g.surfaces = append(g.surfaces, child)
	g.bounds.Enclose(child.Bounds())
}

// Surfaces returns the group's children in insertion order
func (g *SurfaceGroup) Surfaces() []Surface {
	return g.surfaces
}

// Build is a no-op for the naive group
func (g *SurfaceGroup) Build() error { return nil }

// Intersect transforms the ray into the group's local space and tests every
// child in insertion order, keeping the closest hit. Linear in the number of
// children.
func (g *SurfaceGroup) Intersect(ray *core.Ray, hit *core.HitRecord) bool {
	tray := g.Xform.Inverse().Ray(*ray)
	hitAnything := false

	for _, surface := range g.surfaces {
		if surface.Intersect(&tray, hit) {
			hitAnything = true
		}
	}

	if !hitAnything {
		return false
	}

	// map the hit back into the parent's space
	hit.Point = g.Xform.Point(hit.Point)
	hit.GeoNormal = g.Xform.Normal(hit.GeoNormal)
	hit.ShadeNormal = g.Xform.Normal(hit.ShadeNormal)
	ray.TMax = hit.T
	return true
}

// Bounds returns the world-space bounding box of all children
func (g *SurfaceGroup) Bounds() core.AABB {
	return g.Xform.Box(g.bounds)
}

// LocalBounds returns the union of the children's boxes in the group's
// local space
func (g *SurfaceGroup) LocalBounds() core.AABB {
	return g.bounds
}

// SampleChild picks a child uniformly, remapping rv back into the unit
// interval so the same random draw can be reused for sampling within the
// chosen child. Returns the child and the discrete probability 1/N.
// Sampling an empty group is a logic error and panics.
func (g *SurfaceGroup) SampleChild(rv *float64) (Surface, float64) {
	n := len(g.surfaces)
	if n == 0 {
		panic("geometry: cannot sample a child from an empty SurfaceGroup")
	}

	scaled := *rv * float64(n)
	idx := int(scaled)
	if idx > n-1 {
		idx = n - 1
	}
	*rv = scaled - float64(idx)
	return g.surfaces[idx], 1.0 / float64(n)
}

// Pdf returns the aggregate one-sample density for the collection: each
// child that supports area sampling contributes its own pdf weighted by 1/N.
func (g *SurfaceGroup) Pdf(origin, dir core.Vec3) float64 {
	n := len(g.surfaces)
	if n == 0 {
		return 0
	}

	total := 0.0
	for _, surface := range g.surfaces {
		if sampler, ok := surface.(AreaSampler); ok {
			total += sampler.Pdf(origin, dir)
		}
	}
	return total / float64(n)
}
