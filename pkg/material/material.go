package material

import (
	"fmt"

	"github.com/user/portaltracer/pkg/core"
)

// Properties bundles the blend weights used when shading a surface.
// The weights conserve energy: each lies in [0, 1] and together they
// sum to at most 1.
type Properties struct {
	Diffuse     float64 // Weight of the diffuse (albedo) term
	Specular    float64 // Weight of the Phong highlight term
	Reflective  float64 // Weight of the mirror-reflection recursion
	Transparent float64 // Weight of the refraction recursion
}

// Sum returns the total of all blend weights
func (p Properties) Sum() float64 {
	return p.Diffuse + p.Specular + p.Reflective + p.Transparent
}

// Material describes how a surface responds to light
type Material struct {
	Color           ColorSource // Diffuse color or texture
	Shininess       float64     // Phong specular exponent
	Props           Properties
	RefractiveIndex float64 // 1.0 = no bending
}

// New creates a material after validating its coefficients. Validation
// happens here, at scene-construction time, so the per-pixel hot paths
// never have to.
func New(color ColorSource, shininess float64, props Properties, refractiveIndex float64) (*Material, error) {
	if color == nil {
		return nil, fmt.Errorf("material requires a color source")
	}
	if shininess < 0 {
		return nil, fmt.Errorf("shininess must be >= 0, got %f", shininess)
	}
	if refractiveIndex <= 0 {
		return nil, fmt.Errorf("refractive index must be > 0, got %f", refractiveIndex)
	}
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"diffuse", props.Diffuse},
		{"specular", props.Specular},
		{"reflective", props.Reflective},
		{"transparent", props.Transparent},
	} {
		if w.value < 0 || w.value > 1 {
			return nil, fmt.Errorf("%s weight must be in [0, 1], got %f", w.name, w.value)
		}
	}
	if sum := props.Sum(); sum > 1.0+1e-9 {
		return nil, fmt.Errorf("blend weights must sum to <= 1 to conserve energy, got %f", sum)
	}

	return &Material{
		Color:           color,
		Shininess:       shininess,
		Props:           props,
		RefractiveIndex: refractiveIndex,
	}, nil
}

// IsReflective reports whether the material spawns reflection rays
func (m *Material) IsReflective() bool {
	return m.Props.Reflective > 0
}

// IsTransparent reports whether the material spawns refraction rays
func (m *Material) IsTransparent() bool {
	return m.Props.Transparent > 0
}

// HitRecord contains information about a ray-object intersection.
// Records are produced by intersection tests and consumed immediately
// by the shading engine; they are never persisted.
type HitRecord struct {
	T         float64   // Parameter t along the ray
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Surface normal, oriented against the incoming ray
	UV        core.Vec2 // Surface coordinates on the hit face
	Face      int       // Face index of the hit surface (geometry-specific)
	FrontFace bool      // Whether the ray hit the front (outside) face
	Material  *Material // Material of the hit surface
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Multiply(-1)
	}
}

// OutwardNormal returns the geometric surface normal, pointing out of
// the object regardless of which side the ray arrived from.
func (h *HitRecord) OutwardNormal() core.Vec3 {
	if h.FrontFace {
		return h.Normal
	}
	return h.Normal.Multiply(-1)
}
