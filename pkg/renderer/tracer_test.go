package renderer

import (
	"math"
	"math/rand"
	"testing"

	"github.com/user/portaltracer/pkg/core"
	"github.com/user/portaltracer/pkg/daylight"
	"github.com/user/portaltracer/pkg/geometry"
	"github.com/user/portaltracer/pkg/material"
)

func testCamera(t *testing.T) *Camera {
	t.Helper()
	camera, err := NewCamera(DefaultCameraConfig(64, 48))
	if err != nil {
		t.Fatalf("Failed to create camera: %v", err)
	}
	return camera
}

func mustMaterial(t *testing.T, color core.Vec3, shininess float64, props material.Properties, ior float64) *material.Material {
	t.Helper()
	mat, err := material.New(material.NewSolidColor(color), shininess, props, ior)
	if err != nil {
		t.Fatalf("Failed to create material: %v", err)
	}
	return mat
}

func mustCube(t *testing.T, min, max core.Vec3, mat *material.Material) *geometry.Cube {
	t.Helper()
	cube, err := geometry.NewCube(min, max, mat)
	if err != nil {
		t.Fatalf("Failed to create cube: %v", err)
	}
	return cube
}

// overheadSun returns hard-shadow conditions with the sun straight up
// and a flat gray sky, so expected colors can be computed by hand.
func overheadSun() daylight.Conditions {
	return daylight.Conditions{
		SunDirection:     core.NewVec3(0, 1, 0),
		SunColor:         core.NewVec3(1, 1, 1),
		SunIntensity:     0.5,
		AmbientIntensity: 0.2,
		SkyZenith:        core.NewVec3(0.1, 0.2, 0.3),
		SkyHorizon:       core.NewVec3(0.1, 0.2, 0.3),
		Softness:         0,
	}
}

func TestCastRay_MissReturnsSky(t *testing.T) {
	tracer := NewTracer(nil, testCamera(t), overheadSun(), DefaultQualityConfig())
	random := rand.New(rand.NewSource(1))

	color := tracer.CastRay(core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)), 0, random)

	expected := core.NewVec3(0.1, 0.2, 0.3)
	if color.Subtract(expected).Length() > 1e-9 {
		t.Errorf("Expected sky color %v, got %v", expected, color)
	}
}

func TestCastRay_LitAndUnlitFaces(t *testing.T) {
	// Single opaque diffuse cube, sun overhead, no occluders. The top
	// face gets ambient + diffuse, the bottom face ambient only.
	mat := mustMaterial(t, core.NewVec3(1, 1, 1), 10, material.Properties{Diffuse: 0.8}, 1.0)
	cube := mustCube(t, core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1), mat)

	tracer := NewTracer([]*geometry.Cube{cube}, testCamera(t), overheadSun(), DefaultQualityConfig())
	random := rand.New(rand.NewSource(1))

	top := tracer.CastRay(core.NewRay(core.NewVec3(0, 3, 0), core.NewVec3(0, -1, 0)), 0, random)
	// ambient 0.2 + diffuse 1.0 * 0.5 * 0.8 = 0.6
	expectedTop := core.NewVec3(0.6, 0.6, 0.6)
	if top.Subtract(expectedTop).Length() > 1e-9 {
		t.Errorf("Expected lit face color %v, got %v", expectedTop, top)
	}

	bottom := tracer.CastRay(core.NewRay(core.NewVec3(0, -3, 0), core.NewVec3(0, 1, 0)), 0, random)
	expectedBottom := core.NewVec3(0.2, 0.2, 0.2)
	if bottom.Subtract(expectedBottom).Length() > 1e-9 {
		t.Errorf("Expected unlit face color %v, got %v", expectedBottom, bottom)
	}
}

func TestCastRay_HardShadowBlocksDirectLight(t *testing.T) {
	// Ground slab with a wide blocker hovering above it: the shadowed
	// point keeps only the ambient term. Removing the blocker restores
	// the full direct contribution.
	groundMat := mustMaterial(t, core.NewVec3(1, 1, 1), 10, material.Properties{Diffuse: 0.8}, 1.0)
	ground := mustCube(t, core.NewVec3(-5, -1, -5), core.NewVec3(5, 0, 5), groundMat)
	blocker := mustCube(t, core.NewVec3(-4, 2, -4), core.NewVec3(4, 3, 4), groundMat)

	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))
	config := DefaultQualityConfig()

	shadowed := NewTracer([]*geometry.Cube{ground, blocker}, testCamera(t), overheadSun(), config).
		CastRay(ray, 0, rand.New(rand.NewSource(1)))
	open := NewTracer([]*geometry.Cube{ground}, testCamera(t), overheadSun(), config).
		CastRay(ray, 0, rand.New(rand.NewSource(1)))

	expectedShadowed := core.NewVec3(0.2, 0.2, 0.2)
	if shadowed.Subtract(expectedShadowed).Length() > 1e-9 {
		t.Errorf("Fully blocked point should be ambient only %v, got %v", expectedShadowed, shadowed)
	}
	expectedOpen := core.NewVec3(0.6, 0.6, 0.6)
	if open.Subtract(expectedOpen).Length() > 1e-9 {
		t.Errorf("Unblocked point should get full direct light %v, got %v", expectedOpen, open)
	}
	if shadowed.Luminance() >= open.Luminance() {
		t.Error("Shadowed point must be darker than the open point")
	}
}

func TestCastRay_SoftShadowFractionBounds(t *testing.T) {
	// With a jittered sun disk the lit fraction stays within [0, 1]:
	// fully covered points never dip below ambient, open points never
	// exceed the analytic unshadowed color.
	cond := overheadSun()
	cond.Softness = 0.05

	groundMat := mustMaterial(t, core.NewVec3(1, 1, 1), 10, material.Properties{Diffuse: 0.8}, 1.0)
	ground := mustCube(t, core.NewVec3(-5, -1, -5), core.NewVec3(5, 0, 5), groundMat)
	blocker := mustCube(t, core.NewVec3(-4, 2, -4), core.NewVec3(4, 3, 4), groundMat)

	config := QualityConfig{MaxDepth: 3, ShadowSamples: 16}
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))

	shadowed := NewTracer([]*geometry.Cube{ground, blocker}, testCamera(t), cond, config).
		CastRay(ray, 0, rand.New(rand.NewSource(1)))
	open := NewTracer([]*geometry.Cube{ground}, testCamera(t), cond, config).
		CastRay(ray, 0, rand.New(rand.NewSource(1)))

	ambient := core.NewVec3(0.2, 0.2, 0.2)
	full := core.NewVec3(0.6, 0.6, 0.6)
	if shadowed.Subtract(ambient).Length() > 1e-9 {
		t.Errorf("Point under a wide blocker should still be ambient only, got %v", shadowed)
	}
	if open.Subtract(full).Length() > 1e-9 {
		t.Errorf("Open point should match the unshadowed color %v, got %v", full, open)
	}
}

func TestCastRay_TransparentCubeReproducesBackground(t *testing.T) {
	// Fully transparent cube with refractive index 1.0: rays pass
	// through unbent and return the background color.
	mat := mustMaterial(t, core.NewVec3(1, 0, 0), 10, material.Properties{Transparent: 1}, 1.0)
	cube := mustCube(t, core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1), mat)

	tracer := NewTracer([]*geometry.Cube{cube}, testCamera(t), overheadSun(), DefaultQualityConfig())
	random := rand.New(rand.NewSource(1))

	color := tracer.CastRay(core.NewRay(core.NewVec3(0.3, 0.2, 5), core.NewVec3(0, 0, -1)), 0, random)

	expected := core.NewVec3(0.1, 0.2, 0.3) // flat sky
	if color.Subtract(expected).Length() > 1e-9 {
		t.Errorf("Expected background %v through the transparent cube, got %v", expected, color)
	}
}

func TestCastRay_RecursionStopsAtMaxDepth(t *testing.T) {
	// Two facing mirrors would bounce forever without the ceiling. The
	// ray count proves the recursion stops: one primary cast plus one
	// per allowed bounce.
	mirror := mustMaterial(t, core.NewVec3(1, 1, 1), 10, material.Properties{Reflective: 1}, 1.0)
	left := mustCube(t, core.NewVec3(-5, -5, -2), core.NewVec3(5, 5, -1), mirror)
	right := mustCube(t, core.NewVec3(-5, -5, 1), core.NewVec3(5, 5, 2), mirror)
	cubes := []*geometry.Cube{left, right}

	for _, maxDepth := range []int{0, 1, 3, 5} {
		config := QualityConfig{MaxDepth: maxDepth, ShadowSamples: 1}
		tracer := NewTracer(cubes, testCamera(t), overheadSun(), config)
		random := rand.New(rand.NewSource(1))

		tracer.CastRay(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1)), 0, random)

		expected := int64(maxDepth) + 1
		if rays := tracer.RaysCast(); rays != expected {
			t.Errorf("MaxDepth %d: expected %d rays cast, got %d", maxDepth, expected, rays)
		}
	}
}

func TestCastRay_ReflectionShowsNeighbor(t *testing.T) {
	// A mirror wall next to a bright diffuse cube: the reflected ray
	// must pick up some of the neighbor's color rather than the sky.
	mirror := mustMaterial(t, core.NewVec3(1, 1, 1), 100, material.Properties{Specular: 0, Reflective: 1}, 1.0)
	redMat := mustMaterial(t, core.NewVec3(1, 0, 0), 10, material.Properties{Diffuse: 0.8}, 1.0)

	wall := mustCube(t, core.NewVec3(-5, -5, -2), core.NewVec3(5, 5, -1), mirror)
	red := mustCube(t, core.NewVec3(-5, -5, 4), core.NewVec3(5, 5, 5), redMat)

	cond := overheadSun()
	tracer := NewTracer([]*geometry.Cube{wall, red}, testCamera(t), cond, DefaultQualityConfig())
	random := rand.New(rand.NewSource(1))

	// Straight at the mirror: the reflection continues to the red slab
	color := tracer.CastRay(core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1)), 0, random)

	// The red slab's -Z face is unlit (sun overhead): ambient 0.2 red
	expected := core.NewVec3(0.2, 0, 0)
	if color.Subtract(expected).Length() > 1e-9 {
		t.Errorf("Expected mirrored red %v, got %v", expected, color)
	}
}

func TestPixelColor_DeterministicPerPixel(t *testing.T) {
	mat := mustMaterial(t, core.NewVec3(0.5, 0.6, 0.7), 30,
		material.Properties{Diffuse: 0.6, Specular: 0.2}, 1.0)
	cube := mustCube(t, core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1), mat)

	cond := daylight.NewModel().At(0.25)
	camera := testCamera(t)
	cubes := []*geometry.Cube{cube}

	a := NewTracer(cubes, camera, cond, DefaultQualityConfig())
	b := NewTracer(cubes, camera, cond, DefaultQualityConfig())

	for _, px := range [][2]int{{0, 0}, {13, 7}, {63, 47}, {32, 24}} {
		if ca, cb := a.PixelColor(px[0], px[1]), b.PixelColor(px[0], px[1]); ca != cb {
			t.Errorf("Pixel (%d,%d) not deterministic: %v vs %v", px[0], px[1], ca, cb)
		}
	}
}

func TestCastRay_EnergyStaysBounded(t *testing.T) {
	// Worst case material mix still clamps into the valid range
	glass := mustMaterial(t, core.NewVec3(1, 1, 1), 100,
		material.Properties{Diffuse: 0.3, Specular: 0.2, Reflective: 0.2, Transparent: 0.3}, 1.5)
	cube := mustCube(t, core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1), glass)

	cond := overheadSun()
	cond.SunIntensity = 5 // Deliberately hot light
	tracer := NewTracer([]*geometry.Cube{cube}, testCamera(t), cond, DefaultQualityConfig())
	random := rand.New(rand.NewSource(1))

	color := tracer.CastRay(core.NewRay(core.NewVec3(0.4, 3, 0.2), core.NewVec3(-0.1, -1, 0).Normalize()), 0, random)

	for _, ch := range []float64{color.X, color.Y, color.Z} {
		if ch < 0 || ch > 1 {
			t.Errorf("Channel out of range in %v", color)
		}
		if math.IsNaN(ch) {
			t.Errorf("NaN channel in %v", color)
		}
	}
}
