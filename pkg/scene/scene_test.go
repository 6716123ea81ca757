package scene

import (
	"math"
	"testing"

	"github.com/user/portaltracer/pkg/core"
	"github.com/user/portaltracer/pkg/daylight"
	"github.com/user/portaltracer/pkg/geometry"
	"github.com/user/portaltracer/pkg/material"
	"github.com/user/portaltracer/pkg/renderer"
)

func TestNewScene_Validation(t *testing.T) {
	camera, err := renderer.NewCamera(renderer.DefaultCameraConfig(64, 48))
	if err != nil {
		t.Fatalf("Failed to create camera: %v", err)
	}

	if _, err := NewScene(nil, nil, daylight.NewModel()); err == nil {
		t.Error("Expected error for nil camera")
	}
	if _, err := NewScene(camera, nil, nil); err == nil {
		t.Error("Expected error for nil daylight model")
	}
	if _, err := NewScene(camera, []*geometry.Cube{nil}, daylight.NewModel()); err == nil {
		t.Error("Expected error for nil cube")
	}

	s, err := NewScene(camera, nil, daylight.NewModel())
	if err != nil {
		t.Fatalf("Empty scene should be valid: %v", err)
	}
	if s.GetCamera() != camera {
		t.Error("GetCamera should return the scene camera")
	}
}

func TestNewPortalScene(t *testing.T) {
	s, err := NewPortalScene(640, 480, Textures{})
	if err != nil {
		t.Fatalf("Failed to build portal scene: %v", err)
	}

	if len(s.Cubes) != 18 {
		t.Errorf("Expected 18 blocks in the diorama, got %d", len(s.Cubes))
	}
	if s.Camera == nil || s.Daylight == nil {
		t.Fatal("Scene missing camera or daylight model")
	}
	if s.Camera.Width() != 640 || s.Camera.Height() != 480 {
		t.Errorf("Camera dimensions %dx%d, expected 640x480", s.Camera.Width(), s.Camera.Height())
	}

	// The diorama is built around the origin, inside the camera orbit
	bounds := s.Bounds()
	center := bounds.Center()
	if center.Length() > 3.0 {
		t.Errorf("Diorama center %v too far from the origin", center)
	}
	size := bounds.Size()
	for _, extent := range []float64{size.X, size.Y, size.Z} {
		if extent <= 0 || extent > 12 {
			t.Errorf("Implausible diorama extent %v", size)
		}
	}

	// Every block must intersect with valid material weights; the
	// builder enforces this, so a pass here guards against regressions
	// in the block table.
	for i, cube := range s.Cubes {
		box := cube.BoundingBox()
		if box.Min.X >= box.Max.X || box.Min.Y >= box.Max.Y || box.Min.Z >= box.Max.Z {
			t.Errorf("Block %d has degenerate bounds %v", i, box)
		}
	}
}

func TestNewPortalScene_TextureOverrides(t *testing.T) {
	grass := material.NewSolidColor(core.NewVec3(0.2, 0.9, 0.2))
	s, err := NewPortalScene(64, 48, Textures{Grass: grass})
	if err != nil {
		t.Fatalf("Failed to build portal scene: %v", err)
	}

	// The grass base is the first block
	base := s.Cubes[0]
	hit, isHit := base.Hit(core.NewRay(core.NewVec3(0, 5, 0), core.NewVec3(0, -1, 0)), 0.001, math.Inf(1))
	if !isHit {
		t.Fatal("Expected to hit the grass base from above")
	}
	got := hit.Material.Color.Evaluate(hit.UV, hit.Point)
	want := core.NewVec3(0.2, 0.9, 0.2)
	if got != want {
		t.Errorf("Expected overridden grass color %v, got %v", want, got)
	}
}

func TestPortalScene_RendersDeterministically(t *testing.T) {
	const width, height = 40, 30
	s, err := NewPortalScene(width, height, Textures{})
	if err != nil {
		t.Fatalf("Failed to build portal scene: %v", err)
	}

	render := func(workers int) *renderer.Framebuffer {
		fb, err := renderer.NewFramebuffer(width, height)
		if err != nil {
			t.Fatalf("Failed to create framebuffer: %v", err)
		}
		config := renderer.QualityConfig{MaxDepth: 2, ShadowSamples: 4}
		if _, err := renderer.NewFrameRenderer(workers, config, nil).Render(s, 0.2, fb); err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		return fb
	}

	a, b := render(1), render(4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if a.At(x, y) != b.At(x, y) {
				t.Fatalf("Pixel (%d,%d) differs across worker counts", x, y)
			}
		}
	}
}

func TestWorld_AdvanceTimeWraps(t *testing.T) {
	s, err := NewPortalScene(16, 12, Textures{})
	if err != nil {
		t.Fatalf("Failed to build portal scene: %v", err)
	}

	w := NewWorld(s, 0.9)
	w.AdvanceTime(0.25)
	if math.Abs(w.Time-0.15) > 1e-12 {
		t.Errorf("Expected wrapped time 0.15, got %v", w.Time)
	}

	w.AdvanceTime(-0.3)
	if math.Abs(w.Time-0.85) > 1e-12 {
		t.Errorf("Expected wrapped time 0.85, got %v", w.Time)
	}

	if neg := NewWorld(s, -0.25); math.Abs(neg.Time-0.75) > 1e-12 {
		t.Errorf("Expected wrapped start time 0.75, got %v", neg.Time)
	}
	if big := NewWorld(s, 3.5); math.Abs(big.Time-0.5) > 1e-12 {
		t.Errorf("Expected wrapped start time 0.5, got %v", big.Time)
	}
}
