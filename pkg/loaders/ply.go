package loaders

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/tessen-dev/goray/pkg/core"
)

// plyProperty is one property definition from a PLY header.
type plyProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // count type for list properties
	DataType string // element type for list properties
}

// plyHeader is the parsed header of a PLY file.
type plyHeader struct {
	Format      string // "ascii" or "binary_little_endian"
	VertexCount int
	FaceCount   int
	VertexProps []plyProperty
	FaceProps   []plyProperty

	HasNormals   bool
	HasTexCoords bool
}

// LoadPLY loads a PLY file and returns its positions, optional normals and
// texture coordinates, and triangulated faces. ASCII and binary little-endian
// files are supported. Vertex properties other than position, normal and
// texture coordinates are skipped.
func LoadPLY(filename string) (*MeshData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %v", err)
	}
	defer file.Close()

	data, err := ParsePLY(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", filename, err)
	}
	return data, nil
}

// ParsePLY reads PLY data from r. Split out from LoadPLY so tests can parse
// from in-memory buffers.
func ParsePLY(r io.Reader) (*MeshData, error) {
	reader := bufio.NewReader(r)

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %v", err)
	}

	switch header.Format {
	case "ascii":
		return readPLYASCII(reader, header)
	case "binary_little_endian":
		return readPLYBinary(reader, header)
	default:
		return nil, fmt.Errorf("unsupported PLY format: %s", header.Format)
	}
}

func parsePLYHeader(reader *bufio.Reader) (*plyHeader, error) {
	header := &plyHeader{}
	currentElement := ""

	magic, err := readPLYLine(reader)
	if err != nil {
		return nil, err
	}
	if magic != "ply" {
		return nil, fmt.Errorf("missing \"ply\" magic line")
	}

	for {
		line, err := readPLYLine(reader)
		if err != nil {
			return nil, err
		}
		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "comment", "obj_info":
			// Ignored.
		case "format":
			if len(parts) < 3 {
				return nil, fmt.Errorf("malformed format line %q", line)
			}
			header.Format = parts[1]
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("malformed element line %q", line)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil {
				return nil, fmt.Errorf("invalid element count %q", parts[2])
			}
			currentElement = parts[1]
			switch currentElement {
			case "vertex":
				header.VertexCount = count
			case "face":
				header.FaceCount = count
			}
		case "property":
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			switch currentElement {
			case "vertex":
				header.VertexProps = append(header.VertexProps, prop)
				switch prop.Name {
				case "nx", "ny", "nz":
					header.HasNormals = true
				case "u", "s", "texture_u":
					header.HasTexCoords = true
				}
			case "face":
				header.FaceProps = append(header.FaceProps, prop)
			}
		}
	}

	return header, nil
}

func readPLYLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("error reading header: %v", err)
	}
	return strings.TrimSpace(line), nil
}

func parsePLYProperty(parts []string) (plyProperty, error) {
	prop := plyProperty{}
	if len(parts) >= 1 && parts[0] == "list" {
		if len(parts) < 4 {
			return prop, fmt.Errorf("malformed list property %q", strings.Join(parts, " "))
		}
		prop.IsList = true
		prop.ListType = parts[1]
		prop.DataType = parts[2]
		prop.Name = parts[3]
		return prop, nil
	}
	if len(parts) < 2 {
		return prop, fmt.Errorf("malformed property %q", strings.Join(parts, " "))
	}
	prop.Type = parts[0]
	prop.Name = parts[1]
	return prop, nil
}

// plyVertex holds the per-vertex properties we care about; everything else
// in the file is skipped.
type plyVertex struct {
	X, Y, Z    float64
	NX, NY, NZ float64
	U, V       float64
}

func (v *plyVertex) set(name string, value float64) {
	switch name {
	case "x":
		v.X = value
	case "y":
		v.Y = value
	case "z":
		v.Z = value
	case "nx":
		v.NX = value
	case "ny":
		v.NY = value
	case "nz":
		v.NZ = value
	case "u", "s", "texture_u":
		v.U = value
	case "v", "t", "texture_v":
		v.V = value
	}
}

func newPLYMeshData(header *plyHeader) *MeshData {
	data := &MeshData{
		Positions:    make([]core.Vec3, 0, header.VertexCount),
		FaceVertices: make([][3]int, 0, header.FaceCount),
	}
	if header.HasNormals {
		data.Normals = make([]core.Vec3, 0, header.VertexCount)
	}
	if header.HasTexCoords {
		data.TexCoords = make([]core.Vec2, 0, header.VertexCount)
	}
	return data
}

func (d *MeshData) appendPLYVertex(header *plyHeader, v plyVertex) {
	d.Positions = append(d.Positions, core.NewVec3(v.X, v.Y, v.Z))
	if header.HasNormals {
		d.Normals = append(d.Normals, core.NewVec3(v.NX, v.NY, v.NZ))
	}
	if header.HasTexCoords {
		d.TexCoords = append(d.TexCoords, core.NewVec2(v.U, v.V))
	}
}

// appendPLYFace fan-triangulates one face's vertex indices. PLY vertex
// normals and texture coordinates are shared with positions, so face index
// triples are mirrored across all present attributes.
func (d *MeshData) appendPLYFace(header *plyHeader, indices []int) error {
	if len(indices) < 3 {
		return fmt.Errorf("face has %d vertices; need at least 3", len(indices))
	}
	for _, idx := range indices {
		if idx < 0 || idx >= header.VertexCount {
			return fmt.Errorf("face vertex index %d out of range (have %d vertices)", idx, header.VertexCount)
		}
	}
	for i := 1; i+1 < len(indices); i++ {
		tri := [3]int{indices[0], indices[i], indices[i+1]}
		d.FaceVertices = append(d.FaceVertices, tri)
		if header.HasNormals {
			d.FaceNormals = append(d.FaceNormals, tri)
		}
		if header.HasTexCoords {
			d.FaceTexCoords = append(d.FaceTexCoords, tri)
		}
	}
	return nil
}

func readPLYASCII(reader *bufio.Reader, header *plyHeader) (*MeshData, error) {
	data := newPLYMeshData(header)

	for i := 0; i < header.VertexCount; i++ {
		line, err := readPLYLine(reader)
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %v", i, err)
		}
		fields := strings.Fields(line)
		if len(fields) < len(header.VertexProps) {
			return nil, fmt.Errorf("vertex %d: have %d values; header declares %d properties", i, len(fields), len(header.VertexProps))
		}

		var vertex plyVertex
		for pi, prop := range header.VertexProps {
			val, err := strconv.ParseFloat(fields[pi], 64)
			if err != nil {
				return nil, fmt.Errorf("vertex %d: invalid value %q for %s", i, fields[pi], prop.Name)
			}
			vertex.set(prop.Name, val)
		}
		data.appendPLYVertex(header, vertex)
	}

	for i := 0; i < header.FaceCount; i++ {
		line, err := readPLYLine(reader)
		if err != nil {
			return nil, fmt.Errorf("face %d: %v", i, err)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return nil, fmt.Errorf("face %d: empty line", i)
		}
		count, err := strconv.Atoi(fields[0])
		if err != nil || len(fields) < count+1 {
			return nil, fmt.Errorf("face %d: malformed vertex index list", i)
		}
		indices := make([]int, count)
		for j := 0; j < count; j++ {
			indices[j], err = strconv.Atoi(fields[j+1])
			if err != nil {
				return nil, fmt.Errorf("face %d: invalid index %q", i, fields[j+1])
			}
		}
		if err := data.appendPLYFace(header, indices); err != nil {
			return nil, fmt.Errorf("face %d: %v", i, err)
		}
	}

	return data, nil
}

func readPLYBinary(reader *bufio.Reader, header *plyHeader) (*MeshData, error) {
	data := newPLYMeshData(header)

	// Vertex elements are fixed-width, so the whole block can be read in one
	// pass and decoded in place.
	vertexSize := 0
	for _, prop := range header.VertexProps {
		if prop.IsList {
			return nil, fmt.Errorf("list-typed vertex property %q is not supported", prop.Name)
		}
		size, err := plyTypeSize(prop.Type)
		if err != nil {
			return nil, err
		}
		vertexSize += size
	}

	vertexData := make([]byte, vertexSize*header.VertexCount)
	if _, err := io.ReadFull(reader, vertexData); err != nil {
		return nil, fmt.Errorf("failed to read vertex data: %v", err)
	}

	for i := 0; i < header.VertexCount; i++ {
		buf := vertexData[i*vertexSize:]
		var vertex plyVertex
		for _, prop := range header.VertexProps {
			val, size := decodePLYScalar(buf, prop.Type)
			vertex.set(prop.Name, val)
			buf = buf[size:]
		}
		data.appendPLYVertex(header, vertex)
	}

	for i := 0; i < header.FaceCount; i++ {
		for _, prop := range header.FaceProps {
			if !prop.IsList {
				if err := skipPLYScalar(reader, prop.Type); err != nil {
					return nil, fmt.Errorf("face %d: %v", i, err)
				}
				continue
			}

			count, err := readPLYInt(reader, prop.ListType)
			if err != nil {
				return nil, fmt.Errorf("face %d: reading list count: %v", i, err)
			}
			if prop.Name != "vertex_indices" && prop.Name != "vertex_index" {
				for j := 0; j < count; j++ {
					if err := skipPLYScalar(reader, prop.DataType); err != nil {
						return nil, fmt.Errorf("face %d: %v", i, err)
					}
				}
				continue
			}

			indices := make([]int, count)
			for j := 0; j < count; j++ {
				indices[j], err = readPLYInt(reader, prop.DataType)
				if err != nil {
					return nil, fmt.Errorf("face %d: reading index %d: %v", i, j, err)
				}
			}
			if err := data.appendPLYFace(header, indices); err != nil {
				return nil, fmt.Errorf("face %d: %v", i, err)
			}
		}
	}

	return data, nil
}

func plyTypeSize(dataType string) (int, error) {
	switch dataType {
	case "char", "uchar", "int8", "uint8":
		return 1, nil
	case "short", "ushort", "int16", "uint16":
		return 2, nil
	case "int", "uint", "int32", "uint32", "float", "float32":
		return 4, nil
	case "double", "float64":
		return 8, nil
	default:
		return 0, fmt.Errorf("unknown PLY type %q", dataType)
	}
}

// decodePLYScalar decodes one little-endian scalar from buf, returning the
// value as float64 and the number of bytes consumed. buf must hold at least
// one full value of the given type.
func decodePLYScalar(buf []byte, dataType string) (float64, int) {
	switch dataType {
	case "char", "int8":
		return float64(int8(buf[0])), 1
	case "uchar", "uint8":
		return float64(buf[0]), 1
	case "short", "int16":
		return float64(int16(binary.LittleEndian.Uint16(buf))), 2
	case "ushort", "uint16":
		return float64(binary.LittleEndian.Uint16(buf)), 2
	case "int", "int32":
		return float64(int32(binary.LittleEndian.Uint32(buf))), 4
	case "uint", "uint32":
		return float64(binary.LittleEndian.Uint32(buf)), 4
	case "float", "float32":
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(buf))), 4
	case "double", "float64":
		return math.Float64frombits(binary.LittleEndian.Uint64(buf)), 8
	default:
		return 0, len(buf) // unreachable; types validated against plyTypeSize
	}
}

func readPLYInt(reader *bufio.Reader, dataType string) (int, error) {
	size, err := plyTypeSize(dataType)
	if err != nil {
		return 0, err
	}
	var buf [8]byte
	if _, err := io.ReadFull(reader, buf[:size]); err != nil {
		return 0, err
	}
	val, _ := decodePLYScalar(buf[:], dataType)
	return int(val), nil
}

func skipPLYScalar(reader *bufio.Reader, dataType string) error {
	size, err := plyTypeSize(dataType)
	if err != nil {
		return err
	}
	_, err = reader.Discard(size)
	return err
}
