package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tessen-dev/goray/pkg/core"
)

// LoadOBJ loads a Wavefront OBJ file and returns its positions, normals,
// texture coordinates and triangulated faces. Polygonal faces with more than
// three vertices are fan-triangulated. Grouping, material library and smoothing
// directives are ignored; only the geometry is read.
func LoadOBJ(filename string) (*MeshData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file: %v", err)
	}
	defer file.Close()

	data, err := ParseOBJ(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", filename, err)
	}
	return data, nil
}

// ParseOBJ reads OBJ geometry from r. Split out from LoadOBJ so tests can
// parse from in-memory strings.
func ParseOBJ(r io.Reader) (*MeshData, error) {
	data := &MeshData{}
	lineNum := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNum++
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 || strings.HasPrefix(tokens[0], "#") {
			continue
		}

		switch tokens[0] {
		case "v":
			v, err := parseObjVec3(tokens)
			if err != nil {
				return nil, fmt.Errorf("line %d: %v", lineNum, err)
			}
			data.Positions = append(data.Positions, v)
		case "vn":
			v, err := parseObjVec3(tokens)
			if err != nil {
				return nil, fmt.Errorf("line %d: %v", lineNum, err)
			}
			data.Normals = append(data.Normals, v)
		case "vt":
			v, err := parseObjVec2(tokens)
			if err != nil {
				return nil, fmt.Errorf("line %d: %v", lineNum, err)
			}
			data.TexCoords = append(data.TexCoords, v)
		case "f":
			if err := parseObjFace(data, tokens[1:]); err != nil {
				return nil, fmt.Errorf("line %d: %v", lineNum, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading OBJ data: %v", err)
	}

	if len(data.FaceVertices) == 0 {
		return nil, fmt.Errorf("no faces found")
	}
	return data, nil
}

// objCorner is one "v", "v/vt", "v//vn" or "v/vt/vn" face argument, resolved
// to zero-based indices. Missing components are -1.
type objCorner struct {
	v, vt, vn int
}

func parseObjFace(data *MeshData, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("face needs at least 3 vertices; got %d", len(args))
	}

	corners := make([]objCorner, len(args))
	for i, arg := range args {
		c, err := parseObjCorner(data, arg)
		if err != nil {
			return fmt.Errorf("face argument %d: %v", i, err)
		}
		// The first corner fixes the index layout for the rest.
		if i > 0 {
			if (c.vt >= 0) != (corners[0].vt >= 0) || (c.vn >= 0) != (corners[0].vn >= 0) {
				return fmt.Errorf("face argument %d: inconsistent index layout", i)
			}
		}
		corners[i] = c
	}

	// Fan triangulation: (0, i, i+1) for each interior corner.
	for i := 1; i+1 < len(corners); i++ {
		a, b, c := corners[0], corners[i], corners[i+1]
		data.FaceVertices = append(data.FaceVertices, [3]int{a.v, b.v, c.v})
		if a.vn >= 0 {
			data.FaceNormals = append(data.FaceNormals, [3]int{a.vn, b.vn, c.vn})
		}
		if a.vt >= 0 {
			data.FaceTexCoords = append(data.FaceTexCoords, [3]int{a.vt, b.vt, c.vt})
		}
	}
	return nil
}

func parseObjCorner(data *MeshData, arg string) (objCorner, error) {
	c := objCorner{v: -1, vt: -1, vn: -1}
	parts := strings.Split(arg, "/")
	if len(parts) > 3 || parts[0] == "" {
		return c, fmt.Errorf("malformed index tuple %q", arg)
	}

	var err error
	if c.v, err = resolveObjIndex(parts[0], len(data.Positions)); err != nil {
		return c, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.vt, err = resolveObjIndex(parts[1], len(data.TexCoords)); err != nil {
			return c, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.vn, err = resolveObjIndex(parts[2], len(data.Normals)); err != nil {
			return c, err
		}
	}
	return c, nil
}

// resolveObjIndex converts an OBJ index to zero-based. OBJ indices are
// 1-based when positive; negative indices count back from the most recently
// declared element.
func resolveObjIndex(token string, listLen int) (int, error) {
	idx, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", token)
	}
	switch {
	case idx > 0:
		idx--
	case idx < 0:
		idx += listLen
	default:
		return 0, fmt.Errorf("index 0 is not valid")
	}
	if idx < 0 || idx >= listLen {
		return 0, fmt.Errorf("index %s out of range (have %d elements)", token, listLen)
	}
	return idx, nil
}

func parseObjVec3(tokens []string) (core.Vec3, error) {
	if len(tokens) < 4 {
		return core.Vec3{}, fmt.Errorf("%q needs 3 coordinates; got %d", tokens[0], len(tokens)-1)
	}
	var coords [3]float64
	for i := 0; i < 3; i++ {
		val, err := strconv.ParseFloat(tokens[i+1], 64)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("invalid coordinate %q", tokens[i+1])
		}
		coords[i] = val
	}
	return core.NewVec3(coords[0], coords[1], coords[2]), nil
}

func parseObjVec2(tokens []string) (core.Vec2, error) {
	if len(tokens) < 3 {
		return core.Vec2{}, fmt.Errorf("%q needs 2 coordinates; got %d", tokens[0], len(tokens)-1)
	}
	u, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return core.Vec2{}, fmt.Errorf("invalid coordinate %q", tokens[1])
	}
	v, err := strconv.ParseFloat(tokens[2], 64)
	if err != nil {
		return core.Vec2{}, fmt.Errorf("invalid coordinate %q", tokens[2])
	}
	return core.NewVec2(u, v), nil
}
