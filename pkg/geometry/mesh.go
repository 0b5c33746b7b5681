package geometry

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tessen-dev/goray/pkg/core"
	"github.com/tessen-dev/goray/pkg/loaders"
	"github.com/tessen-dev/goray/pkg/log"
	"github.com/tessen-dev/goray/pkg/stats"
)

var meshLog = log.New("mesh")

// Mesh is a shared, read-only store of triangle mesh data: vertex positions,
// optional normals and texture coordinates, per-face index triples, and one
// material index per face. Positions and normals are transformed into world
// space once at load time, so the triangles referencing them apply no
// further transform.
//
// A Mesh is not itself renderable: on insertion into a scene it expands into
// one Triangle per face, each holding a lightweight face-index view into
// this store. The Mesh must outlive every Triangle referencing it.
type Mesh struct {
	baseSurface

	Vs  []core.Vec3 // Vertex positions (world space)
	Ns  []core.Vec3 // Vertex normals (world space), optional
	UVs []core.Vec2 // Vertex texture coordinates, optional

	Fv [][3]int // Vertex indices per face
	Fn [][3]int // Normal indices per face, optional
	Ft [][3]int // Texture indices per face, optional
	Fm []int    // One material index per face

	Materials []core.Material // All materials referenced by Fm

	bbox  core.AABB
	stats *stats.Collector
}

// NewMeshFromFile loads mesh data from a geometry file (.obj or .ply),
// transforming all positions and normals into world space with xform. All
// faces are assigned the given material.
func NewMeshFromFile(filename string, xform core.Transform, material core.Material, collector *stats.Collector) (*Mesh, error) {
	var data *loaders.MeshData
	var err error

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".obj":
		data, err = loaders.LoadOBJ(filename)
	case ".ply":
		data, err = loaders.LoadPLY(filename)
	default:
		return nil, fmt.Errorf("unsupported mesh file extension %q for %q", ext, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("loading mesh %q: %w", filename, err)
	}

	mesh := &Mesh{
		Vs:        make([]core.Vec3, len(data.Positions)),
		Fv:        data.FaceVertices,
		Fn:        data.FaceNormals,
		Ft:        data.FaceTexCoords,
		Fm:        make([]int, len(data.FaceVertices)),
		UVs:       data.TexCoords,
		Materials: []core.Material{material},
		stats:     collector,
	}
	for i, p := range data.Positions {
		mesh.Vs[i] = xform.Point(p)
	}
	if len(data.Normals) > 0 {
		mesh.Ns = make([]core.Vec3, len(data.Normals))
		for i, n := range data.Normals {
			mesh.Ns[i] = xform.Normal(n)
		}
	}

	if err := mesh.validate(); err != nil {
		return nil, fmt.Errorf("mesh %q: %w", filename, err)
	}
	mesh.computeBounds()

	meshLog.Infof("loaded mesh %q: %d vertices, %d faces", filename, len(mesh.Vs), len(mesh.Fv))
	return mesh, nil
}

// NewMesh creates a mesh directly from already world-space data. Used by the
// standalone triangle surface and by tests.
func NewMesh(vs []core.Vec3, fv [][3]int, material core.Material, collector *stats.Collector) (*Mesh, error) {
	mesh := &Mesh{
		Vs:        vs,
		Fv:        fv,
		Fm:        make([]int, len(fv)),
		Materials: []core.Material{material},
		stats:     collector,
	}
	if err := mesh.validate(); err != nil {
		return nil, err
	}
	mesh.computeBounds()
	return mesh, nil
}

func (m *Mesh) validate() error {
	check := func(faces [][3]int, n int, kind string) error {
		for fi, f := range faces {
			for _, idx := range f {
				if idx < 0 || idx >= n {
					return fmt.Errorf("face %d references %s index %d out of range [0,%d)", fi, kind, idx, n)
				}
			}
		}
		return nil
	}
	if err := check(m.Fv, len(m.Vs), "vertex"); err != nil {
		return err
	}
	if err := check(m.Fn, len(m.Ns), "normal"); err != nil {
		return err
	}
	if err := check(m.Ft, len(m.UVs), "texture"); err != nil {
		return err
	}
	if len(m.Fn) > 0 && len(m.Fn) != len(m.Fv) {
		return fmt.Errorf("have %d normal faces for %d vertex faces", len(m.Fn), len(m.Fv))
	}
	if len(m.Ft) > 0 && len(m.Ft) != len(m.Fv) {
		return fmt.Errorf("have %d texture faces for %d vertex faces", len(m.Ft), len(m.Fv))
	}
	for fi, mi := range m.Fm {
		if mi < 0 || mi >= len(m.Materials) {
			return fmt.Errorf("face %d references material index %d out of range [0,%d)", fi, mi, len(m.Materials))
		}
	}
	return nil
}

func (m *Mesh) computeBounds() {
	m.bbox = core.NewAABBFromPoints(m.Vs...)
}

// Intersect panics: a mesh is never inserted into the tree directly, it
// expands into triangles first.
func (m *Mesh) Intersect(ray *core.Ray, hit *core.HitRecord) bool {
	panic("geometry: Mesh is not directly intersectable; expand it into triangles")
}

// Bounds returns the bounding box of all (world-space) vertices
func (m *Mesh) Bounds() core.AABB {
	return m.bbox
}

// Empty reports whether the mesh has no faces or vertices
func (m *Mesh) Empty() bool {
	return len(m.Fv) == 0 || len(m.Vs) == 0
}

// Expand contributes one Triangle per face, implementing Expander
func (m *Mesh) Expand() []Surface {
	surfaces := make([]Surface, len(m.Fv))
	for i := range m.Fv {
		surfaces[i] = &Triangle{Mesh: m, Face: i}
	}
	return surfaces
}
