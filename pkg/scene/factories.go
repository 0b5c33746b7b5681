package scene

import (
	"fmt"

	"github.com/tessen-dev/goray/pkg/core"
	"github.com/tessen-dev/goray/pkg/geometry"
)

// Built-in surface factories. Each reads only the fields it recognizes and
// falls back to documented defaults for the rest.

func makeSphere(b *Builder, params Params) (geometry.Surface, error) {
	radius, err := params.getFloat("radius", 1.0)
	if err != nil {
		return nil, err
	}
	xform, err := params.getTransform("transform")
	if err != nil {
		return nil, err
	}
	material, err := b.FindMaterial(params, "material")
	if err != nil {
		return nil, err
	}
	return geometry.NewSphere(radius, material, xform, b.Stats), nil
}

func makeQuad(b *Builder, params Params) (geometry.Surface, error) {
	size, err := params.getVec2("size", core.NewVec2(1, 1))
	if err != nil {
		return nil, err
	}
	xform, err := params.getTransform("transform")
	if err != nil {
		return nil, err
	}
	material, err := b.FindMaterial(params, "material")
	if err != nil {
		return nil, err
	}
	return geometry.NewQuad(size, material, xform, b.Stats), nil
}

func makeTriangle(b *Builder, params Params) (geometry.Surface, error) {
	positions, err := params.getVec3Slice("positions")
	if err != nil {
		return nil, err
	}
	if len(positions) != 3 {
		return nil, fmt.Errorf("expects exactly 3 \"positions\"; got %d", len(positions))
	}

	var normals *[3]core.Vec3
	if ns, err := params.getVec3Slice("normals"); err != nil {
		return nil, err
	} else if len(ns) == 3 {
		normals = &[3]core.Vec3{ns[0], ns[1], ns[2]}
	} else if len(ns) != 0 {
		return nil, fmt.Errorf("expects exactly 3 \"normals\"; got %d", len(ns))
	}

	var uvs *[3]core.Vec2
	if ts, err := params.getVec2Slice("uvs"); err != nil {
		return nil, err
	} else if len(ts) == 3 {
		uvs = &[3]core.Vec2{ts[0], ts[1], ts[2]}
	} else if len(ts) != 0 {
		return nil, fmt.Errorf("expects exactly 3 \"uvs\"; got %d", len(ts))
	}

	xform, err := params.getTransform("transform")
	if err != nil {
		return nil, err
	}
	material, err := b.FindMaterial(params, "material")
	if err != nil {
		return nil, err
	}
	return geometry.NewTriangle([3]core.Vec3{positions[0], positions[1], positions[2]}, normals, uvs, material, xform, b.Stats)
}

func makeMesh(b *Builder, params Params) (geometry.Surface, error) {
	filename, err := params.requireString("filename", "mesh")
	if err != nil {
		return nil, err
	}
	xform, err := params.getTransform("transform")
	if err != nil {
		return nil, err
	}
	material, err := b.FindMaterial(params, "material")
	if err != nil {
		return nil, err
	}
	return geometry.NewMeshFromFile(filename, xform, material, b.Stats)
}

func makeGroup(b *Builder, params Params) (geometry.Surface, error) {
	xform, err := params.getTransform("transform")
	if err != nil {
		return nil, err
	}
	return geometry.NewSurfaceGroup(xform), nil
}

func makeBVH(b *Builder, params Params) (geometry.Surface, error) {
	name, err := params.getString("split_method", "equal")
	if err != nil {
		return nil, err
	}
	method, err := geometry.ParseSplitMethod(name)
	if err != nil {
		return nil, err
	}
	maxLeafSize, err := params.getInt("max_leaf_size", 1)
	if err != nil {
		return nil, err
	}
	if maxLeafSize < 1 {
		return nil, fmt.Errorf("\"max_leaf_size\" must be at least 1; got %d", maxLeafSize)
	}
	xform, err := params.getTransform("transform")
	if err != nil {
		return nil, err
	}
	return geometry.NewBVH(method, maxLeafSize, xform, b.Stats), nil
}
