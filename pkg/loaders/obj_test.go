package loaders

import (
	"strings"
	"testing"

	"github.com/tessen-dev/goray/pkg/core"
)

func TestParseOBJ_TrianglesAndQuads(t *testing.T) {
	obj := `
# comment line
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
f 1/1/1 2/2/1 3/3/1
f 1/1/1 3/3/1 4/4/1
`
	data, err := ParseOBJ(strings.NewReader(obj))
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}

	if len(data.Positions) != 4 {
		t.Errorf("positions = %d, want 4", len(data.Positions))
	}
	if data.Positions[2] != core.NewVec3(1, 1, 0) {
		t.Errorf("position 2 = %v", data.Positions[2])
	}
	if len(data.FaceVertices) != 2 {
		t.Fatalf("faces = %d, want 2", len(data.FaceVertices))
	}
	if data.FaceVertices[0] != [3]int{0, 1, 2} || data.FaceVertices[1] != [3]int{0, 2, 3} {
		t.Errorf("face indices = %v", data.FaceVertices)
	}
	if len(data.FaceNormals) != 2 || data.FaceNormals[0] != [3]int{0, 0, 0} {
		t.Errorf("normal indices = %v", data.FaceNormals)
	}
	if len(data.FaceTexCoords) != 2 || data.FaceTexCoords[1] != [3]int{0, 2, 3} {
		t.Errorf("texcoord indices = %v", data.FaceTexCoords)
	}
}

func TestParseOBJ_FanTriangulation(t *testing.T) {
	obj := `
v 0 0 0
v 1 0 0
v 1 1 0
v 0.5 1.5 0
v 0 1 0
f 1 2 3 4 5
`
	data, err := ParseOBJ(strings.NewReader(obj))
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}

	want := [][3]int{{0, 1, 2}, {0, 2, 3}, {0, 3, 4}}
	if len(data.FaceVertices) != len(want) {
		t.Fatalf("pentagon fan produced %d triangles, want %d", len(data.FaceVertices), len(want))
	}
	for i, w := range want {
		if data.FaceVertices[i] != w {
			t.Errorf("triangle %d = %v, want %v", i, data.FaceVertices[i], w)
		}
	}
	if len(data.FaceNormals) != 0 || len(data.FaceTexCoords) != 0 {
		t.Error("faces without normals or uvs should leave those index lists empty")
	}
}

func TestParseOBJ_NegativeIndices(t *testing.T) {
	obj := `
v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`
	data, err := ParseOBJ(strings.NewReader(obj))
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	if data.FaceVertices[0] != [3]int{0, 1, 2} {
		t.Errorf("face = %v, want [0 1 2]", data.FaceVertices[0])
	}
}

func TestParseOBJ_MissingNormalComponent(t *testing.T) {
	obj := `
v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
f 1/1 2/1 3/1
`
	data, err := ParseOBJ(strings.NewReader(obj))
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	if len(data.FaceTexCoords) != 1 {
		t.Errorf("texcoord faces = %d, want 1", len(data.FaceTexCoords))
	}
	if len(data.FaceNormals) != 0 {
		t.Error("v/vt faces should produce no normal indices")
	}
}

func TestParseOBJ_Errors(t *testing.T) {
	tests := []struct {
		name string
		obj  string
	}{
		{"no faces", "v 0 0 0\n"},
		{"index out of range", "v 0 0 0\nf 1 2 3\n"},
		{"index zero", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{"too few face args", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"bad coordinate", "v 0 zero 0\n"},
		{"inconsistent layout", "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nf 1/1 2 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseOBJ(strings.NewReader(tt.obj)); err == nil {
				t.Error("expected a parse error")
			}
		})
	}
}
