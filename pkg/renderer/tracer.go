package renderer

import (
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/user/portaltracer/pkg/core"
	"github.com/user/portaltracer/pkg/daylight"
	"github.com/user/portaltracer/pkg/geometry"
	"github.com/user/portaltracer/pkg/material"
)

// originBias is the offset applied to secondary-ray origins along the
// surface normal. Large enough to avoid self-intersection acne, small
// enough not to visibly detach shadows.
const originBias = 1e-4

// QualityConfig bounds the cost of the shading engine
type QualityConfig struct {
	MaxDepth      int // Maximum reflection/refraction recursion depth
	ShadowSamples int // Shadow rays per shading point; 1 = hard shadows
}

// DefaultQualityConfig returns sensible default values. Soft shadows
// dominate per-pixel cost, so the recursion ceiling stays small.
func DefaultQualityConfig() QualityConfig {
	return QualityConfig{
		MaxDepth:      3,
		ShadowSamples: 8,
	}
}

// Tracer resolves pixel colors for one frame: a fixed scene snapshot,
// fixed lighting conditions, and a fixed camera. It holds no mutable
// state besides counters, so one Tracer is shared read-only by all
// render workers.
type Tracer struct {
	cubes  []*geometry.Cube
	camera *Camera
	cond   daylight.Conditions
	config QualityConfig

	raysCast atomic.Int64
}

// NewTracer creates a tracer for one frame's scene snapshot
func NewTracer(cubes []*geometry.Cube, camera *Camera, cond daylight.Conditions, config QualityConfig) *Tracer {
	if config.MaxDepth < 0 {
		config.MaxDepth = 0
	}
	if config.ShadowSamples < 1 {
		config.ShadowSamples = 1
	}
	return &Tracer{
		cubes:  cubes,
		camera: camera,
		cond:   cond,
		config: config,
	}
}

// RaysCast returns the number of rays cast so far, shadow rays excluded
func (tr *Tracer) RaysCast() int64 {
	return tr.raysCast.Load()
}

// PixelColor computes the color of pixel (i, j). The shadow jitter is
// seeded from the pixel coordinates alone, so the result depends only
// on the scene snapshot, never on which worker evaluates the pixel.
func (tr *Tracer) PixelColor(i, j int) core.Vec3 {
	random := rand.New(rand.NewSource(int64(j)*int64(tr.camera.Width()) + int64(i) + 1))
	ray := tr.camera.GetRay(i, j)
	return tr.CastRay(ray, 0, random)
}

// CastRay resolves a color for the ray: nearest intersection, local
// Phong shading with soft shadows, then reflection/refraction recursion
// bounded by the configured depth ceiling.
func (tr *Tracer) CastRay(ray core.Ray, depth int, random *rand.Rand) core.Vec3 {
	tr.raysCast.Add(1)

	hit, isHit := tr.hitScene(ray, originBias, math.Inf(1))
	if !isHit {
		return tr.cond.Sky(ray.Direction)
	}

	mat := hit.Material
	albedo := mat.Color.Evaluate(hit.UV, hit.Point)

	// Ambient term, independent of sun visibility
	color := albedo.Multiply(tr.cond.AmbientIntensity)

	// Direct sun contribution, scaled by the unoccluded shadow
	// fraction. Surfaces facing away from the sun skip the shadow
	// test entirely.
	lightDir := tr.cond.SunDirection
	if diffuse := hit.Normal.Dot(lightDir); diffuse > 0 {
		if lit := tr.litFraction(hit, random); lit > 0 {
			sun := tr.cond.SunColor.Multiply(tr.cond.SunIntensity * lit)

			color = color.Add(albedo.MultiplyVec(sun).Multiply(diffuse * mat.Props.Diffuse))

			if mat.Props.Specular > 0 {
				viewDir := ray.Direction.Negate()
				reflectDir := core.Reflect(lightDir.Negate(), hit.Normal)
				highlight := math.Pow(math.Max(0, reflectDir.Dot(viewDir)), mat.Shininess)
				color = color.Add(sun.Multiply(highlight * mat.Props.Specular))
			}
		}
	}

	// The depth ceiling terminates inter-reflection: local color only
	if depth >= tr.config.MaxDepth {
		return color.Clamp(0, 1)
	}

	reflective := mat.Props.Reflective
	transparent := mat.Props.Transparent
	if reflective == 0 && transparent == 0 {
		return color.Clamp(0, 1)
	}

	final := color.Multiply(1 - reflective - transparent)

	if reflective > 0 {
		reflectDir := core.Reflect(ray.Direction, hit.Normal).Normalize()
		reflectRay := core.NewRay(offsetOrigin(hit, reflectDir), reflectDir)
		final = final.Add(tr.CastRay(reflectRay, depth+1, random).Multiply(reflective))
	}

	if transparent > 0 {
		// Refract against the geometric outward normal; entering vs
		// exiting is decided by which side the ray arrives from.
		refractDir := core.Refract(ray.Direction, hit.OutwardNormal(), mat.RefractiveIndex).Normalize()
		refractRay := core.NewRay(offsetOrigin(hit, refractDir), refractDir)
		final = final.Add(tr.CastRay(refractRay, depth+1, random).Multiply(transparent))
	}

	return final.Clamp(0, 1)
}

// hitScene returns the nearest intersection across all scene cubes
func (tr *Tracer) hitScene(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	var closestHit *material.HitRecord
	closestSoFar := tMax

	for _, cube := range tr.cubes {
		if hit, isHit := cube.Hit(ray, tMin, closestSoFar); isHit {
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, closestHit != nil
}

// litFraction casts jittered shadow rays toward the sun's disk extent
// and returns the unoccluded fraction in [0, 1]. A single sample
// degenerates to a binary hard shadow.
func (tr *Tracer) litFraction(hit *material.HitRecord, random *rand.Rand) float64 {
	samples := tr.config.ShadowSamples
	sunDir := tr.cond.SunDirection
	origin := offsetOrigin(hit, sunDir)

	// Basis perpendicular to the sun direction for disk jitter
	var tangent, bitangent core.Vec3
	jitter := samples > 1 && tr.cond.Softness > 0
	if jitter {
		axis := core.NewVec3(1, 0, 0)
		if math.Abs(sunDir.X) > 0.9 {
			axis = core.NewVec3(0, 1, 0)
		}
		tangent = axis.Cross(sunDir).Normalize()
		bitangent = sunDir.Cross(tangent)
	}

	blocked := 0
	for s := 0; s < samples; s++ {
		dir := sunDir
		if jitter {
			p := core.RandomInUnitDisk(random).Multiply(tr.cond.Softness)
			dir = sunDir.
				Add(tangent.Multiply(p.X)).
				Add(bitangent.Multiply(p.Y)).
				Normalize()
		}
		if tr.occluded(core.NewRay(origin, dir)) {
			blocked++
		}
	}

	return 1 - float64(blocked)/float64(samples)
}

// occluded reports whether anything blocks the ray toward the sun. The
// sun is directional, so any positive-distance hit occludes.
func (tr *Tracer) occluded(ray core.Ray) bool {
	for _, cube := range tr.cubes {
		if _, isHit := cube.Hit(ray, originBias, math.Inf(1)); isHit {
			return true
		}
	}
	return false
}

// offsetOrigin nudges a secondary-ray origin off the surface along the
// normal, on the side the new direction leaves from, preventing
// self-intersection with the surface just hit.
func offsetOrigin(hit *material.HitRecord, direction core.Vec3) core.Vec3 {
	offset := hit.Normal.Multiply(originBias)
	if direction.Dot(hit.Normal) < 0 {
		return hit.Point.Subtract(offset)
	}
	return hit.Point.Add(offset)
}
