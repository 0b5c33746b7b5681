package scene

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tessen-dev/goray/pkg/geometry"
	"github.com/tessen-dev/goray/pkg/log"
)

var sceneLog = log.New("scene")

// Scene is the result of parsing a scene description: the built shape tree
// plus the raw sections consumed by collaborators outside this module
// (camera, sampler, integrator, media, background).
type Scene struct {
	// Root is the scene-wide accelerator holding every top-level surface.
	// It has been built and is ready to intersect.
	Root geometry.Surface

	Camera     json.RawMessage
	Sampler    json.RawMessage
	Integrator json.RawMessage
	Media      json.RawMessage
	Background json.RawMessage
}

// ParseFile reads and parses a JSON scene description from disk.
func ParseFile(filename string, b *Builder) (*Scene, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	scene, err := Parse(data, b)
	if err != nil {
		return nil, fmt.Errorf("scene %q: %w", filename, err)
	}
	return scene, nil
}

// Parse builds a scene from a JSON description. The accelerator is created
// from the "accelerator" section, defaulting to a naive linear group; named
// materials from the "materials" list are defined before "surfaces" are
// constructed and inserted. Unrecognized top-level fields are an error.
func Parse(data []byte, b *Builder) (*Scene, error) {
	sceneLog.Infof("parsing scene")

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("scene: invalid JSON: %w", err)
	}
	for key := range top {
		switch key {
		case "accelerator", "materials", "surfaces",
			"camera", "sampler", "integrator", "media", "background":
		default:
			return nil, fmt.Errorf("scene: unsupported top-level field %q", key)
		}
	}

	scene := &Scene{
		Camera:     top["camera"],
		Sampler:    top["sampler"],
		Integrator: top["integrator"],
		Media:      top["media"],
		Background: top["background"],
	}

	root, err := parseAccelerator(b, top["accelerator"])
	if err != nil {
		return nil, err
	}
	scene.Root = root

	if raw, ok := top["materials"]; ok {
		if err := parseMaterials(b, raw); err != nil {
			return nil, err
		}
	}

	if raw, ok := top["surfaces"]; ok {
		var surfaces []Params
		if err := json.Unmarshal(raw, &surfaces); err != nil {
			return nil, fmt.Errorf("scene: \"surfaces\" must be an array of objects: %w", err)
		}
		for i, params := range surfaces {
			surface, err := b.CreateSurface(params)
			if err != nil {
				return nil, fmt.Errorf("scene: surfaces[%d]: %w", i, err)
			}
			// A top-level group builds now so the root sees its final
			// bounds on insertion.
			if err := surface.Build(); err != nil {
				return nil, fmt.Errorf("scene: surfaces[%d]: %w", i, err)
			}
			geometry.AddSurface(root, surface)
		}
	}

	if err := root.Build(); err != nil {
		return nil, fmt.Errorf("scene: building accelerator: %w", err)
	}

	sceneLog.Infof("done parsing scene")
	return scene, nil
}

// parseAccelerator creates the scene-wide accelerator. Without an
// "accelerator" section the scene falls back to a naive linear group.
func parseAccelerator(b *Builder, raw json.RawMessage) (geometry.Surface, error) {
	if raw == nil {
		return makeGroup(b, Params{})
	}
	var params Params
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("scene: \"accelerator\" must be an object: %w", err)
	}
	root, err := b.CreateSurface(params)
	if err != nil {
		return nil, fmt.Errorf("scene: accelerator: %w", err)
	}
	if _, ok := root.(interface{ Surfaces() []geometry.Surface }); !ok {
		tag, _ := params.getString("type", "")
		return nil, fmt.Errorf("scene: accelerator type %q cannot hold child surfaces", tag)
	}
	return root, nil
}

func parseMaterials(b *Builder, raw json.RawMessage) error {
	var materials []Params
	if err := json.Unmarshal(raw, &materials); err != nil {
		return fmt.Errorf("scene: \"materials\" must be an array of objects: %w", err)
	}
	for i, params := range materials {
		name, err := params.requireString("name", "material")
		if err != nil {
			return fmt.Errorf("scene: materials[%d]: %w", i, err)
		}
		material, err := b.CreateMaterial(params)
		if err != nil {
			return fmt.Errorf("scene: materials[%d]: %w", i, err)
		}
		if err := b.DefineMaterial(name, material); err != nil {
			return fmt.Errorf("scene: materials[%d]: %w", i, err)
		}
		sceneLog.Debugf("registered material %q", name)
	}
	return nil
}
