package geometry

import (
	"math"
	"testing"

	"github.com/tessen-dev/goray/pkg/core"
)

func TestSurfaceGroup_ClosestHitWins(t *testing.T) {
	group := NewSurfaceGroup(core.IdentityTransform())
	group.AddChild(NewSphere(1, "far", core.Translate(core.NewVec3(0, 0, -10)), nil))
	group.AddChild(NewSphere(1, "near", core.Translate(core.NewVec3(0, 0, -5)), nil))

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	var hit core.HitRecord
	if !group.Intersect(&ray, &hit) {
		t.Fatal("expected hit")
	}
	if hit.Material != "near" {
		t.Errorf("closest hit material = %v, want \"near\"", hit.Material)
	}
	if math.Abs(hit.T-4) > 1e-12 {
		t.Errorf("t = %v, want 4", hit.T)
	}

	// insertion order must not matter
	flipped := NewSurfaceGroup(core.IdentityTransform())
	flipped.AddChild(NewSphere(1, "near", core.Translate(core.NewVec3(0, 0, -5)), nil))
	flipped.AddChild(NewSphere(1, "far", core.Translate(core.NewVec3(0, 0, -10)), nil))

	ray2 := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	var hit2 core.HitRecord
	if !flipped.Intersect(&ray2, &hit2) {
		t.Fatal("expected hit")
	}
	if hit2.Material != "near" || math.Abs(hit2.T-hit.T) > 1e-12 {
		t.Errorf("order-flipped group found %v at t=%v", hit2.Material, hit2.T)
	}
}

func TestSurfaceGroup_BoundsGrowIncrementally(t *testing.T) {
	group := NewSurfaceGroup(core.IdentityTransform())
	if !group.Bounds().IsEmpty() {
		t.Error("empty group should have empty bounds")
	}

	group.AddChild(NewSphere(1, nil, core.IdentityTransform(), nil))
	group.AddChild(NewSphere(1, nil, core.Translate(core.NewVec3(4, 0, 0)), nil))

	b := group.Bounds()
	approxVec3(t, b.Min, core.NewVec3(-1, -1, -1), 1e-12, "group bounds min")
	approxVec3(t, b.Max, core.NewVec3(5, 1, 1), 1e-12, "group bounds max")
}

func TestSurfaceGroup_TransformedGroup(t *testing.T) {
	// a translated group containing a sphere at its local origin
	group := NewSurfaceGroup(core.Translate(core.NewVec3(0, 3, 0)))
	group.AddChild(NewSphere(1, nil, core.IdentityTransform(), nil))

	ray := core.NewRay(core.NewVec3(0, 3, 5), core.NewVec3(0, 0, -1))
	var hit core.HitRecord
	if !group.Intersect(&ray, &hit) {
		t.Fatal("expected hit through group transform")
	}
	approxVec3(t, hit.Point, core.NewVec3(0, 3, 1), 1e-12, "world-space hit point")
	approxVec3(t, hit.GeoNormal, core.NewVec3(0, 0, 1), 1e-12, "world-space normal")

	b := group.Bounds()
	approxVec3(t, b.Min, core.NewVec3(-1, 2, -1), 1e-12, "world bounds min")
	approxVec3(t, b.Max, core.NewVec3(1, 4, 1), 1e-12, "world bounds max")
}

func TestSurfaceGroup_SampleChild(t *testing.T) {
	group := NewSurfaceGroup(core.IdentityTransform())
	for i := 0; i < 4; i++ {
		group.AddChild(NewSphere(1, i, core.Translate(core.NewVec3(float64(3*i), 0, 0)), nil))
	}

	// rv = 0.625 falls in the third bucket and remaps to 0.5
	rv := 0.625
	child, prob := group.SampleChild(&rv)
	if prob != 0.25 {
		t.Errorf("probability = %v, want 0.25", prob)
	}
	if child.(*Sphere).Material != 2 {
		t.Errorf("picked child %v, want 2", child.(*Sphere).Material)
	}
	if math.Abs(rv-0.5) > 1e-12 {
		t.Errorf("remapped rv = %v, want 0.5", rv)
	}

	// rv exactly 1.0 clamps to the last child
	rv = 1.0
	child, _ = group.SampleChild(&rv)
	if child.(*Sphere).Material != 3 {
		t.Errorf("rv=1 picked child %v, want the last one", child.(*Sphere).Material)
	}
}

func TestSurfaceGroup_SampleChild_EmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("sampling an empty group should panic")
		}
	}()

	group := NewSurfaceGroup(core.IdentityTransform())
	rv := 0.5
	group.SampleChild(&rv)
}

func TestSurfaceGroup_Pdf(t *testing.T) {
	quad := NewQuad(core.NewVec2(2, 2), nil, core.IdentityTransform(), nil)
	group := NewSurfaceGroup(core.IdentityTransform())
	group.AddChild(quad)
	// a sphere has no area sampling and contributes nothing to the pdf
	group.AddChild(NewSphere(1, nil, core.Translate(core.NewVec3(100, 0, 0)), nil))

	origin := core.NewVec3(0, 0, 5)
	dir := core.NewVec3(0, 0, -1)

	want := quad.Pdf(origin, dir) / 2
	if got := group.Pdf(origin, dir); math.Abs(got-want) > 1e-12 {
		t.Errorf("group pdf = %v, want %v", got, want)
	}
}

func TestAddSurface_ExpandsMeshes(t *testing.T) {
	mesh, err := NewMesh(
		[]core.Vec3{
			core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0),
			core.NewVec3(1, 1, 0), core.NewVec3(0, 1, 0),
		},
		[][3]int{{0, 1, 2}, {0, 2, 3}},
		nil, nil,
	)
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}

	group := NewSurfaceGroup(core.IdentityTransform())
	AddSurface(group, mesh)

	if got := len(group.Surfaces()); got != 2 {
		t.Fatalf("group has %d children after mesh expansion, want 2", got)
	}
	for i, s := range group.Surfaces() {
		tri, ok := s.(*Triangle)
		if !ok {
			t.Fatalf("child %d is %T, want *Triangle", i, s)
		}
		if tri.Face != i {
			t.Errorf("child %d references face %d", i, tri.Face)
		}
	}
}

func TestLeafSurface_AddChildPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("AddChild on a leaf surface should panic")
		}
	}()

	sphere := NewSphere(1, nil, core.IdentityTransform(), nil)
	sphere.AddChild(NewSphere(1, nil, core.IdentityTransform(), nil))
}
