package loaders

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/tessen-dev/goray/pkg/core"
)

func TestParsePLY_ASCII(t *testing.T) {
	ply := `ply
format ascii 1.0
comment a unit square
element vertex 4
property float x
property float y
property float z
property float nx
property float ny
property float nz
element face 2
property list uchar int vertex_indices
end_header
0 0 0 0 0 1
1 0 0 0 0 1
1 1 0 0 0 1
0 1 0 0 0 1
3 0 1 2
3 0 2 3
`
	data, err := ParsePLY(strings.NewReader(ply))
	if err != nil {
		t.Fatalf("ParsePLY: %v", err)
	}

	if len(data.Positions) != 4 || len(data.Normals) != 4 {
		t.Fatalf("got %d positions, %d normals; want 4, 4", len(data.Positions), len(data.Normals))
	}
	if data.Positions[2] != core.NewVec3(1, 1, 0) {
		t.Errorf("position 2 = %v", data.Positions[2])
	}
	if data.Normals[0] != core.NewVec3(0, 0, 1) {
		t.Errorf("normal 0 = %v", data.Normals[0])
	}
	if len(data.FaceVertices) != 2 || data.FaceVertices[1] != [3]int{0, 2, 3} {
		t.Errorf("faces = %v", data.FaceVertices)
	}
	// normals share vertex indices in PLY
	if len(data.FaceNormals) != 2 || data.FaceNormals[1] != data.FaceVertices[1] {
		t.Errorf("normal faces = %v", data.FaceNormals)
	}
	if len(data.TexCoords) != 0 {
		t.Error("no texture coordinates were declared")
	}
}

func TestParsePLY_ASCII_QuadFace(t *testing.T) {
	ply := `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
element face 1
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
1 1 0
0 1 0
4 0 1 2 3
`
	data, err := ParsePLY(strings.NewReader(ply))
	if err != nil {
		t.Fatalf("ParsePLY: %v", err)
	}
	want := [][3]int{{0, 1, 2}, {0, 2, 3}}
	if len(data.FaceVertices) != 2 || data.FaceVertices[0] != want[0] || data.FaceVertices[1] != want[1] {
		t.Errorf("fan-triangulated faces = %v, want %v", data.FaceVertices, want)
	}
}

func TestParsePLY_BinaryLittleEndian(t *testing.T) {
	header := `ply
format binary_little_endian 1.0
element vertex 3
property float x
property float y
property float z
element face 1
property list uchar int vertex_indices
end_header
`
	var buf bytes.Buffer
	buf.WriteString(header)

	writeF32 := func(v float64) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(float32(v)))
		buf.Write(b[:])
	}
	for _, p := range [][3]float64{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}} {
		writeF32(p[0])
		writeF32(p[1])
		writeF32(p[2])
	}
	buf.WriteByte(3) // list count
	for _, idx := range []int32{0, 1, 2} {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(idx))
		buf.Write(b[:])
	}

	data, err := ParsePLY(&buf)
	if err != nil {
		t.Fatalf("ParsePLY: %v", err)
	}
	if len(data.Positions) != 3 {
		t.Fatalf("positions = %d, want 3", len(data.Positions))
	}
	if data.Positions[1] != core.NewVec3(2, 0, 0) {
		t.Errorf("position 1 = %v", data.Positions[1])
	}
	if len(data.FaceVertices) != 1 || data.FaceVertices[0] != [3]int{0, 1, 2} {
		t.Errorf("faces = %v", data.FaceVertices)
	}
	if len(data.Normals) != 0 {
		t.Error("no normals were declared")
	}
}

func TestParsePLY_Errors(t *testing.T) {
	tests := []struct {
		name string
		ply  string
	}{
		{"missing magic", "format ascii 1.0\nend_header\n"},
		{"unsupported format", "ply\nformat binary_big_endian 1.0\nelement vertex 0\nend_header\n"},
		{"face index out of range", `ply
format ascii 1.0
element vertex 1
property float x
property float y
property float z
element face 1
property list uchar int vertex_indices
end_header
0 0 0
3 0 1 2
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePLY(strings.NewReader(tt.ply)); err == nil {
				t.Error("expected a parse error")
			}
		})
	}
}
