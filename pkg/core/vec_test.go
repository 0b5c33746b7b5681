package core

import (
	"math"
	"testing"
)

func TestVec3_Cross(t *testing.T) {
	x := NewVec3(1, 0, 0)
	y := NewVec3(0, 1, 0)

	if got := x.Cross(y); got != NewVec3(0, 0, 1) {
		t.Errorf("x cross y = %v, want (0,0,1)", got)
	}
	if got := y.Cross(x); got != NewVec3(0, 0, -1) {
		t.Errorf("y cross x = %v, want (0,0,-1)", got)
	}

	a := NewVec3(2, -3, 1)
	b := NewVec3(4, 0.5, -2)
	c := a.Cross(b)
	if math.Abs(c.Dot(a)) > 1e-12 || math.Abs(c.Dot(b)) > 1e-12 {
		t.Errorf("cross product %v not orthogonal to operands", c)
	}
}

func TestVec3_Normalize(t *testing.T) {
	v := NewVec3(3, -4, 12).Normalize()
	if math.Abs(v.Length()-1) > 1e-12 {
		t.Errorf("normalized length = %v", v.Length())
	}
}

func TestVec3_Axis(t *testing.T) {
	v := NewVec3(1, 2, 3)
	for axis, want := range []float64{1, 2, 3} {
		if got := v.Axis(axis); got != want {
			t.Errorf("Axis(%d) = %v, want %v", axis, got, want)
		}
	}
}

func TestVec3_MinMax(t *testing.T) {
	a := NewVec3(1, 5, -2)
	b := NewVec3(3, 2, -7)

	if got := a.Min(b); got != NewVec3(1, 2, -7) {
		t.Errorf("Min = %v", got)
	}
	if got := a.Max(b); got != NewVec3(3, 5, -2) {
		t.Errorf("Max = %v", got)
	}
}

func TestRay_At(t *testing.T) {
	ray := NewRay(NewVec3(1, 0, 0), NewVec3(0, 2, 0))
	if got := ray.At(1.5); got != NewVec3(1, 3, 0) {
		t.Errorf("At(1.5) = %v, want (1,3,0)", got)
	}

	if ray.TMin != RayEpsilon {
		t.Errorf("default TMin = %v, want RayEpsilon", ray.TMin)
	}
	if !math.IsInf(ray.TMax, 1) {
		t.Errorf("default TMax = %v, want +Inf", ray.TMax)
	}
}
