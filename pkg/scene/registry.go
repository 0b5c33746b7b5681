// Package scene builds shape trees from JSON scene descriptions. Shape and
// material constructors are resolved through an explicit Registry passed into
// the parse call, so tests and embedders can work with isolated registries
// and no global state.
package scene

import (
	"encoding/json"
	"fmt"

	"github.com/tessen-dev/goray/pkg/core"
	"github.com/tessen-dev/goray/pkg/geometry"
	"github.com/tessen-dev/goray/pkg/stats"
)

// Params is the structured parameter bundle handed to a factory: the fields
// of one JSON object, still raw. Each constructor decodes only the fields it
// recognizes.
type Params map[string]json.RawMessage

// SurfaceFactory builds a surface from its parameter bundle. The Builder
// gives factories access to material resolution and the stats collector.
type SurfaceFactory func(b *Builder, params Params) (geometry.Surface, error)

// MaterialFactory builds a material from its parameter bundle.
type MaterialFactory func(b *Builder, params Params) (core.Material, error)

// Registry maps type tags (the "type" field of a scene JSON object) to
// surface and material constructors. A Registry holds no per-scene state and
// may be shared across parses.
type Registry struct {
	surfaces  map[string]SurfaceFactory
	materials map[string]MaterialFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		surfaces:  make(map[string]SurfaceFactory),
		materials: make(map[string]MaterialFactory),
	}
}

// RegisterSurface binds a surface type tag to its factory. Registering the
// same tag twice is an error.
func (r *Registry) RegisterSurface(name string, factory SurfaceFactory) error {
	if _, exists := r.surfaces[name]; exists {
		return fmt.Errorf("scene: a surface factory for type %q is already registered", name)
	}
	r.surfaces[name] = factory
	return nil
}

// ReplaceSurface binds a surface type tag to a factory, overwriting any
// existing binding. Used by tools and tests that want a variant of the
// default registry, e.g. swapping the accelerator for a naive group.
func (r *Registry) ReplaceSurface(name string, factory SurfaceFactory) {
	r.surfaces[name] = factory
}

// RegisterMaterial binds a material type tag to its factory. Registering the
// same tag twice is an error.
func (r *Registry) RegisterMaterial(name string, factory MaterialFactory) error {
	if _, exists := r.materials[name]; exists {
		return fmt.Errorf("scene: a material factory for type %q is already registered", name)
	}
	r.materials[name] = factory
	return nil
}

// DefaultRegistry returns a registry with the built-in surface types
// (sphere, quad, triangle, mesh, group, bbh) registered. Material shading
// models live outside this module, so no material factories are registered;
// materials of unknown type are carried as *RawMaterial records.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.surfaces["sphere"] = makeSphere
	r.surfaces["quad"] = makeQuad
	r.surfaces["triangle"] = makeTriangle
	r.surfaces["mesh"] = makeMesh
	r.surfaces["group"] = makeGroup
	r.surfaces["bbh"] = makeBVH
	return r
}

// RawMaterial is the record produced for material objects whose type has no
// registered factory: the tag plus its undecoded parameters. Downstream
// shading code can decode Params into whatever model it implements.
type RawMaterial struct {
	Name   string // non-empty for materials declared in the top-level list
	Type   string
	Params Params
}

// Builder carries the per-parse state: the registry in use, the injectable
// stats collector wired into every constructed surface, and the materials
// declared by name so far.
type Builder struct {
	Registry  *Registry
	Stats     *stats.Collector
	materials map[string]core.Material
}

// NewBuilder creates a builder for one parse. collector may be nil to
// disable intersection counting.
func NewBuilder(registry *Registry, collector *stats.Collector) *Builder {
	return &Builder{
		Registry:  registry,
		Stats:     collector,
		materials: make(map[string]core.Material),
	}
}

// CreateSurface constructs a surface from a parameter bundle, dispatching on
// its "type" field.
func (b *Builder) CreateSurface(params Params) (geometry.Surface, error) {
	tag, err := params.requireString("type", "surface")
	if err != nil {
		return nil, err
	}
	factory, ok := b.Registry.surfaces[tag]
	if !ok {
		return nil, fmt.Errorf("no surface factory registered for type %q", tag)
	}
	surface, err := factory(b, params)
	if err != nil {
		return nil, fmt.Errorf("surface %q: %w", tag, err)
	}
	return surface, nil
}

// CreateMaterial constructs a material from a parameter bundle, dispatching
// on its "type" field. Types without a registered factory produce a
// *RawMaterial.
func (b *Builder) CreateMaterial(params Params) (core.Material, error) {
	tag, err := params.requireString("type", "material")
	if err != nil {
		return nil, err
	}
	if factory, ok := b.Registry.materials[tag]; ok {
		material, err := factory(b, params)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", tag, err)
		}
		return material, nil
	}
	name, _ := params.getString("name", "")
	return &RawMaterial{Name: name, Type: tag, Params: params}, nil
}

// DefineMaterial registers a named material instance for later reference.
func (b *Builder) DefineMaterial(name string, material core.Material) error {
	if _, exists := b.materials[name]; exists {
		return fmt.Errorf("a material named %q is already defined", name)
	}
	b.materials[name] = material
	return nil
}

// FindMaterial resolves the material referenced by params[key]. A string
// value names a previously defined material; an object value is built inline
// with CreateMaterial. A missing key yields a nil material.
func (b *Builder) FindMaterial(params Params, key string) (core.Material, error) {
	raw, ok := params[key]
	if !ok {
		return nil, nil
	}

	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		material, ok := b.materials[name]
		if !ok {
			return nil, fmt.Errorf("reference to undefined material %q", name)
		}
		return material, nil
	}

	var inline Params
	if err := json.Unmarshal(raw, &inline); err != nil {
		return nil, fmt.Errorf("%q must be a material name or an inline material object: %s", key, string(raw))
	}
	return b.CreateMaterial(inline)
}

func (p Params) getString(key, def string) (string, error) {
	raw, ok := p[key]
	if !ok {
		return def, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%q must be a string: %s", key, string(raw))
	}
	return s, nil
}

func (p Params) requireString(key, context string) (string, error) {
	raw, ok := p[key]
	if !ok {
		return "", fmt.Errorf("missing %q on %s specification", key, context)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%q must be a string: %s", key, string(raw))
	}
	return s, nil
}

func (p Params) getFloat(key string, def float64) (float64, error) {
	raw, ok := p[key]
	if !ok {
		return def, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("%q must be a number: %s", key, string(raw))
	}
	return f, nil
}

func (p Params) getInt(key string, def int) (int, error) {
	raw, ok := p[key]
	if !ok {
		return def, nil
	}
	var i int
	if err := json.Unmarshal(raw, &i); err != nil {
		return 0, fmt.Errorf("%q must be an integer: %s", key, string(raw))
	}
	return i, nil
}

// getVec2 reads a 2-vector, splatting a single scalar across both
// components.
func (p Params) getVec2(key string, def core.Vec2) (core.Vec2, error) {
	raw, ok := p[key]
	if !ok {
		return def, nil
	}
	var arr []float64
	if err := json.Unmarshal(raw, &arr); err == nil {
		switch len(arr) {
		case 2:
			return core.NewVec2(arr[0], arr[1]), nil
		case 1:
			return core.NewVec2(arr[0], arr[0]), nil
		}
		return core.Vec2{}, fmt.Errorf("%q expects 2 values; got %d", key, len(arr))
	}
	var s float64
	if err := json.Unmarshal(raw, &s); err != nil {
		return core.Vec2{}, fmt.Errorf("%q must be a 2-vector or a scalar: %s", key, string(raw))
	}
	return core.NewVec2(s, s), nil
}

func (p Params) getVec3Slice(key string) ([]core.Vec3, error) {
	raw, ok := p[key]
	if !ok {
		return nil, nil
	}
	var arrs [][3]float64
	if err := json.Unmarshal(raw, &arrs); err != nil {
		return nil, fmt.Errorf("%q must be an array of 3-vectors: %s", key, string(raw))
	}
	vecs := make([]core.Vec3, len(arrs))
	for i, a := range arrs {
		vecs[i] = core.NewVec3(a[0], a[1], a[2])
	}
	return vecs, nil
}

func (p Params) getVec2Slice(key string) ([]core.Vec2, error) {
	raw, ok := p[key]
	if !ok {
		return nil, nil
	}
	var arrs [][2]float64
	if err := json.Unmarshal(raw, &arrs); err != nil {
		return nil, fmt.Errorf("%q must be an array of 2-vectors: %s", key, string(raw))
	}
	vecs := make([]core.Vec2, len(arrs))
	for i, a := range arrs {
		vecs[i] = core.NewVec2(a[0], a[1])
	}
	return vecs, nil
}

// getTransform reads a transform specification, defaulting to the identity
// when the key is absent.
func (p Params) getTransform(key string) (core.Transform, error) {
	raw, ok := p[key]
	if !ok {
		return core.IdentityTransform(), nil
	}
	return ParseTransform(raw)
}
