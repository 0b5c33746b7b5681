// Package loaders reads triangle mesh data from common geometry file
// formats. Loaders return raw, untransformed data; callers decide how to
// place it in the scene.
package loaders

import "github.com/tessen-dev/goray/pkg/core"

// MeshData is the raw result of loading a mesh file. Positions are always
// present; normals and texture coordinates are optional and left empty when
// the file does not provide them. Face index slices are parallel: when
// FaceNormals or FaceTexCoords is non-empty it has the same length as
// FaceVertices. All indices are zero-based.
type MeshData struct {
	Positions []core.Vec3
	Normals   []core.Vec3
	TexCoords []core.Vec2

	FaceVertices  [][3]int
	FaceNormals   [][3]int
	FaceTexCoords [][3]int
}
