package geometry

import (
	"github.com/tessen-dev/goray/pkg/core"
)

// Surface is the contract implemented by every leaf shape and every
// composite in the shape tree.
//
// Surfaces represent the geometry of the scene. A Surface may be an
// individual primitive like a Sphere, or a composite of many smaller
// primitives, like the triangles of a Mesh or the children of a group.
type Surface interface {
	// Intersect tests the ray against the surface. On a hit it fills the
	// record, shrinks ray.TMax to the hit distance so that subsequent tests
	// along the same traversal only find strictly closer hits, and returns
	// true. On a miss it leaves both the ray and the record untouched.
	Intersect(ray *core.Ray, hit *core.HitRecord) bool

	// Bounds returns the surface's world-space axis-aligned bounding box.
	Bounds() core.AABB

	// Build performs any precomputation the surface needs (e.g. building an
	// acceleration structure). It is called exactly once, after the full
	// subtree below the surface is assembled and before the first Intersect.
	Build() error

	// AddChild adds a child surface. Leaf surfaces panic; only composites
	// accept children, and only before Build is called.
	AddChild(child Surface)
}

// Expander is implemented by surfaces that should not appear in the final
// tree themselves, but instead contribute derived surfaces to their parent.
// A Mesh expands into one Triangle per face. The scene builder performs the
// expansion as an explicit step before insertion; Expand is never called
// from AddChild.
type Expander interface {
	Expand() []Surface
}

// AddSurface inserts a surface into a parent, expanding it first when the
// surface is an Expander.
func AddSurface(parent, child Surface) {
	if ex, ok := child.(Expander); ok {
		for _, s := range ex.Expand() {
			parent.AddChild(s)
		}
		return
	}
	parent.AddChild(child)
}

// AreaSampler is implemented by surfaces that support uniform area sampling
// for direct-light integration. Densities are expressed in solid-angle
// measure as seen from the query origin.
type AreaSampler interface {
	// Sample picks a point on the surface using the 2D random variable rv
	// and returns the sampled point, the direction from origin toward it,
	// and the solid-angle density of having sampled that direction.
	Sample(origin core.Vec3, rv core.Vec2) (point, dir core.Vec3, pdf float64)

	// Pdf returns the solid-angle density of sampling the given direction
	// from origin, re-derived by intersecting the surface along it.
	Pdf(origin, dir core.Vec3) float64
}

// baseSurface provides the default Build and AddChild behavior shared by
// surfaces that do not accept children.
type baseSurface struct{}

func (baseSurface) Build() error { return nil }

func (baseSurface) AddChild(child Surface) {
	panic("geometry: this surface does not support children")
}

// XformedSurface positions a surface relative to its parent's local space.
type XformedSurface struct {
	baseSurface
	Xform core.Transform
}

// XformedSurfaceWithMaterial additionally carries the surface's material.
type XformedSurfaceWithMaterial struct {
	XformedSurface
	Material core.Material
}
