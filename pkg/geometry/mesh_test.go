package geometry

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/tessen-dev/goray/pkg/core"
)

func TestNewMesh_ValidatesIndices(t *testing.T) {
	vs := []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0),
	}

	if _, err := NewMesh(vs, [][3]int{{0, 1, 3}}, nil, nil); err == nil {
		t.Error("out-of-range vertex index should be rejected")
	}
	if _, err := NewMesh(vs, [][3]int{{0, 1, -1}}, nil, nil); err == nil {
		t.Error("negative vertex index should be rejected")
	}
	if _, err := NewMesh(vs, [][3]int{{0, 1, 2}}, nil, nil); err != nil {
		t.Errorf("valid mesh rejected: %v", err)
	}
}

func TestMesh_IntersectPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Intersect on a Mesh should panic; meshes expand into triangles")
		}
	}()

	mesh, err := NewMesh(
		[]core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)},
		[][3]int{{0, 1, 2}}, nil, nil,
	)
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}

	ray := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1))
	var hit core.HitRecord
	mesh.Intersect(&ray, &hit)
}

func TestNewMeshFromFile_OBJ(t *testing.T) {
	obj := `# unit quad in the xy-plane
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vn 0 0 1
f 1//1 2//1 3//1
f 1//1 3//1 4//1
`
	path := filepath.Join(t.TempDir(), "quad.obj")
	if err := os.WriteFile(path, []byte(obj), 0o644); err != nil {
		t.Fatal(err)
	}

	xform := core.Translate(core.NewVec3(0, 0, -2))
	mesh, err := NewMeshFromFile(path, xform, "mat", nil)
	if err != nil {
		t.Fatalf("NewMeshFromFile: %v", err)
	}

	if len(mesh.Vs) != 4 || len(mesh.Fv) != 2 {
		t.Fatalf("loaded %d vertices, %d faces; want 4, 2", len(mesh.Vs), len(mesh.Fv))
	}
	// positions were transformed at load time
	approxVec3(t, mesh.Vs[0], core.NewVec3(-1, -1, -2), 1e-12, "transformed vertex")
	// normals pass through the normal rule
	approxVec3(t, mesh.Ns[0], core.NewVec3(0, 0, 1), 1e-12, "transformed normal")

	// the expanded triangles intersect in world space with no extra transform
	group := NewSurfaceGroup(core.IdentityTransform())
	AddSurface(group, mesh)

	ray := core.NewRay(core.NewVec3(0.5, 0.5, 5), core.NewVec3(0, 0, -1))
	var hit core.HitRecord
	if !group.Intersect(&ray, &hit) {
		t.Fatal("expected hit on loaded mesh")
	}
	if math.Abs(hit.T-7) > 1e-12 {
		t.Errorf("t = %v, want 7", hit.T)
	}
	if hit.Material != "mat" {
		t.Errorf("material = %v", hit.Material)
	}
}

func TestNewMeshFromFile_UnsupportedExtension(t *testing.T) {
	if _, err := NewMeshFromFile("model.stl", core.IdentityTransform(), nil, nil); err == nil {
		t.Error("unsupported extension should be rejected")
	}
}

func TestMesh_Bounds(t *testing.T) {
	mesh, err := NewMesh(
		[]core.Vec3{core.NewVec3(-1, 0, 2), core.NewVec3(3, -2, 2), core.NewVec3(0, 5, 4)},
		[][3]int{{0, 1, 2}}, nil, nil,
	)
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}

	b := mesh.Bounds()
	approxVec3(t, b.Min, core.NewVec3(-1, -2, 2), 1e-12, "mesh bounds min")
	approxVec3(t, b.Max, core.NewVec3(3, 5, 4), 1e-12, "mesh bounds max")
}
