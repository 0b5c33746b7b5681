package scene

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tessen-dev/goray/pkg/core"
)

// ParseTransform parses a transform specification. A specification is either
// a single command object or an array of command objects applied in order
// (each subsequent command pre-multiplies, so the list reads left-to-right as
// "first do this, then that").
//
// Recognized commands:
//
//	{"from": [...], "at": [...], "up": [...]}   look-at placement
//	{"o": [...], "x": [...], "y": [...], "z": [...]}   explicit basis + origin
//	{"translate": [x, y, z]}
//	{"scale": [x, y, z]}  or  {"scale": s}
//	{"rotate": [angleDegrees, axisX, axisY, axisZ]}
//	{"matrix": [16 row-major entries]}
//
// Omitted keys within a command take identity defaults.
func ParseTransform(raw json.RawMessage) (core.Transform, error) {
	var commands []json.RawMessage
	if err := json.Unmarshal(raw, &commands); err == nil {
		xform := core.IdentityTransform()
		for i, cmd := range commands {
			step, err := parseTransformCommand(cmd)
			if err != nil {
				return core.Transform{}, fmt.Errorf("transform command %d: %w", i, err)
			}
			xform = step.Mul(xform)
		}
		return xform, nil
	}

	xform, err := parseTransformCommand(raw)
	if err != nil {
		return core.Transform{}, fmt.Errorf("transform: %w", err)
	}
	return xform, nil
}

func parseTransformCommand(raw json.RawMessage) (core.Transform, error) {
	var cmd map[string]json.RawMessage
	if err := json.Unmarshal(raw, &cmd); err != nil {
		return core.Transform{}, fmt.Errorf("expected an object or an array of objects: %w", err)
	}

	has := func(keys ...string) bool {
		for _, k := range keys {
			if _, ok := cmd[k]; ok {
				return true
			}
		}
		return false
	}

	switch {
	case has("from", "at", "to", "up"):
		from := core.NewVec3(0, 0, 1)
		at := core.NewVec3(0, 0, 0)
		up := core.NewVec3(0, 1, 0)
		if err := parseVec3Field(cmd, "from", &from); err != nil {
			return core.Transform{}, err
		}
		if err := parseVec3Field(cmd, "at", &at); err != nil {
			return core.Transform{}, err
		}
		if err := parseVec3Field(cmd, "to", &at); err != nil {
			return core.Transform{}, err
		}
		if err := parseVec3Field(cmd, "up", &up); err != nil {
			return core.Transform{}, err
		}
		return core.LookAt(from, at, up), nil

	case has("o", "x", "y", "z"):
		o := core.NewVec3(0, 0, 0)
		x := core.NewVec3(1, 0, 0)
		y := core.NewVec3(0, 1, 0)
		z := core.NewVec3(0, 0, 1)
		for key, dst := range map[string]*core.Vec3{"o": &o, "x": &x, "y": &y, "z": &z} {
			if err := parseVec3Field(cmd, key, dst); err != nil {
				return core.Transform{}, err
			}
		}
		return core.AxisOffset(x, y, z, o), nil

	case has("translate"):
		t := core.NewVec3(0, 0, 0)
		if err := parseVec3Field(cmd, "translate", &t); err != nil {
			return core.Transform{}, err
		}
		return core.Translate(t), nil

	case has("scale"):
		s := core.NewVec3(1, 1, 1)
		if err := parseVec3Field(cmd, "scale", &s); err != nil {
			return core.Transform{}, err
		}
		return core.Scale(s), nil

	case has("rotate"):
		var v [4]float64
		if err := json.Unmarshal(cmd["rotate"], &v); err != nil {
			return core.Transform{}, fmt.Errorf("\"rotate\" expects [angleDegrees, axisX, axisY, axisZ]: %w", err)
		}
		return core.Rotate(core.NewVec3(v[1], v[2], v[3]), v[0]), nil

	case has("matrix"):
		var entries []float64
		if err := json.Unmarshal(cmd["matrix"], &entries); err != nil {
			return core.Transform{}, fmt.Errorf("\"matrix\" expects an array of numbers: %w", err)
		}
		if len(entries) != 16 {
			return core.Transform{}, fmt.Errorf("\"matrix\" expects 16 row-major entries; got %d", len(entries))
		}
		var m mgl64.Mat4
		for row := 0; row < 4; row++ {
			for col := 0; col < 4; col++ {
				m.Set(row, col, entries[row*4+col])
			}
		}
		return core.NewTransform(m), nil

	default:
		return core.Transform{}, fmt.Errorf("unrecognized transform command: %s", string(raw))
	}
}

// parseVec3Field fills dst from cmd[key] if present. A single scalar is
// splatted across all three components.
func parseVec3Field(cmd map[string]json.RawMessage, key string, dst *core.Vec3) error {
	raw, ok := cmd[key]
	if !ok {
		return nil
	}

	var arr []float64
	if err := json.Unmarshal(raw, &arr); err == nil {
		switch len(arr) {
		case 3:
			*dst = core.NewVec3(arr[0], arr[1], arr[2])
			return nil
		case 1:
			*dst = core.NewVec3(arr[0], arr[0], arr[0])
			return nil
		default:
			return fmt.Errorf("%q expects 3 values; got %d", key, len(arr))
		}
	}

	var s float64
	if err := json.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("%q expects a 3-vector or a scalar: %s", key, string(raw))
	}
	*dst = core.NewVec3(s, s, s)
	return nil
}
