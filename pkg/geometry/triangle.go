package geometry

import (
	"fmt"

	"github.com/tessen-dev/goray/pkg/core"
	"github.com/tessen-dev/goray/pkg/stats"
)

// Triangle is one face of a shared Mesh, referenced by face index. The mesh
// data is already in world space, so the triangle applies no transform of
// its own.
type Triangle struct {
	baseSurface
	Mesh *Mesh
	Face int
}

// NewTriangle creates a standalone triangle surface backed by a one-face
// mesh built from inline data. Positions are required; normals and uvs are
// optional. All data is transformed into world space by xform at
// construction.
func NewTriangle(positions [3]core.Vec3, normals *[3]core.Vec3, uvs *[3]core.Vec2, material core.Material, xform core.Transform, collector *stats.Collector) (*Triangle, error) {
	mesh := &Mesh{
		Vs:        []core.Vec3{xform.Point(positions[0]), xform.Point(positions[1]), xform.Point(positions[2])},
		Fv:        [][3]int{{0, 1, 2}},
		Fm:        []int{0},
		Materials: []core.Material{material},
		stats:     collector,
	}
	if normals != nil {
		mesh.Ns = []core.Vec3{xform.Normal(normals[0]), xform.Normal(normals[1]), xform.Normal(normals[2])}
		mesh.Fn = [][3]int{{0, 1, 2}}
	}
	if uvs != nil {
		mesh.UVs = []core.Vec2{uvs[0], uvs[1], uvs[2]}
		mesh.Ft = [][3]int{{0, 1, 2}}
	}
	if err := mesh.validate(); err != nil {
		return nil, fmt.Errorf("triangle: %w", err)
	}
	mesh.computeBounds()
	return &Triangle{Mesh: mesh, Face: 0}, nil
}

// vertex returns the i-th world-space vertex of the face (i must be 0, 1, or 2)
func (t *Triangle) vertex(i int) core.Vec3 {
	return t.Mesh.Vs[t.Mesh.Fv[t.Face][i]]
}

// Intersect tests the ray against this face
func (t *Triangle) Intersect(ray *core.Ray, hit *core.HitRecord) bool {
	m := t.Mesh
	m.stats.TriangleTest()

	fv := m.Fv[t.Face]
	p0, p1, p2 := m.Vs[fv[0]], m.Vs[fv[1]], m.Vs[fv[2]]

	var n0, n1, n2 *core.Vec3
	if len(m.Fn) > t.Face {
		fn := m.Fn[t.Face]
		n0, n1, n2 = &m.Ns[fn[0]], &m.Ns[fn[1]], &m.Ns[fn[2]]
	}
	var t0, t1, t2 *core.Vec2
	if len(m.Ft) > t.Face {
		ft := m.Ft[t.Face]
		t0, t1, t2 = &m.UVs[ft[0]], &m.UVs[ft[1]], &m.UVs[ft[2]]
	}

	if !IntersectTriangle(ray, p0, p1, p2, n0, n1, n2, t0, t1, t2, hit, m.Materials[m.Fm[t.Face]]) {
		return false
	}
	m.stats.TriangleHit()
	return true
}

// IntersectTriangle intersects a ray with a single triangle using the
// Möller-Trumbore algorithm. n0..n2 are optional per-vertex normals for the
// shading normal; t0..t2 are optional per-vertex texture coordinates. On a
// hit the record is filled and ray.TMax shrinks to the hit distance.
func IntersectTriangle(ray *core.Ray, p0, p1, p2 core.Vec3, n0, n1, n2 *core.Vec3, t0, t1, t2 *core.Vec2, hit *core.HitRecord, material core.Material) bool {
	edge1 := p1.Subtract(p0)
	edge2 := p2.Subtract(p0)

	h := ray.Direction.Cross(edge2)
	det := edge1.Dot(h)

	// a near-zero determinant means the ray lies in the plane of the triangle
	if det > -1e-12 && det < 1e-12 {
		return false
	}

	invDet := 1.0 / det
	s := ray.Origin.Subtract(p0)
	u := invDet * s.Dot(h)
	if u < 0 || u > 1 {
		return false
	}

	q := s.Cross(edge1)
	v := invDet * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return false
	}

	tParam := invDet * edge2.Dot(q)
	if tParam < ray.TMin || tParam > ray.TMax {
		return false
	}

	gn := edge1.Cross(edge2).Normalize()

	// interpolate the shading normal from the per-vertex normals when
	// available, otherwise fall back to the geometric normal
	sn := gn
	if n0 != nil && n1 != nil && n2 != nil {
		sn = n0.Multiply(1 - u - v).Add(n1.Multiply(u)).Add(n2.Multiply(v)).Normalize()
	}

	var uv core.Vec2
	if t0 != nil && t1 != nil && t2 != nil {
		uv = t0.Multiply(1 - u - v).Add(t1.Multiply(u)).Add(t2.Multiply(v))
	}

	hit.T = tParam
	hit.Point = ray.At(tParam)
	hit.GeoNormal = gn
	hit.ShadeNormal = sn
	hit.UV = uv
	hit.Material = material
	ray.TMax = tParam

	return true
}

// Bounds encloses the three world-space vertices, padded along any axis
// where the triangle is degenerate so that the box never has zero thickness.
func (t *Triangle) Bounds() core.AABB {
	return padDegenerateAxes(core.NewAABBFromPoints(t.vertex(0), t.vertex(1), t.vertex(2)))
}

// padDegenerateAxes expands near-zero-extent axes of a box by a small
// epsilon. Zero-thickness boxes break box-ray slab tests.
func padDegenerateAxes(box core.AABB) core.AABB {
	d := box.Diagonal()
	if d.X < 1e-4 {
		box.Min.X -= 5e-5
		box.Max.X += 5e-5
	}
	if d.Y < 1e-4 {
		box.Min.Y -= 5e-5
		box.Max.Y += 5e-5
	}
	if d.Z < 1e-4 {
		box.Min.Z -= 5e-5
		box.Max.Z += 5e-5
	}
	return box
}
