package scene

import (
	"fmt"
	"math"

	"github.com/user/portaltracer/pkg/daylight"
	"github.com/user/portaltracer/pkg/geometry"
	"github.com/user/portaltracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering. It is shared
// read-only across render workers for the duration of a frame; only
// the single control goroutine mutates it between frames (camera
// orbit, time advance).
type Scene struct {
	Camera   *renderer.Camera
	Cubes    []*geometry.Cube
	Daylight *daylight.Model
}

// NewScene assembles a scene, rejecting invalid input before any
// rendering begins
func NewScene(camera *renderer.Camera, cubes []*geometry.Cube, model *daylight.Model) (*Scene, error) {
	if camera == nil {
		return nil, fmt.Errorf("scene requires a camera")
	}
	if model == nil {
		return nil, fmt.Errorf("scene requires a daylight model")
	}
	for i, cube := range cubes {
		if cube == nil {
			return nil, fmt.Errorf("cube %d is nil", i)
		}
	}
	return &Scene{Camera: camera, Cubes: cubes, Daylight: model}, nil
}

// GetCamera implements renderer.Scene
func (s *Scene) GetCamera() *renderer.Camera {
	return s.Camera
}

// GetCubes implements renderer.Scene
func (s *Scene) GetCubes() []*geometry.Cube {
	return s.Cubes
}

// GetDaylight implements renderer.Scene
func (s *Scene) GetDaylight() *daylight.Model {
	return s.Daylight
}

// Bounds returns the axis-aligned bounds of all scene geometry
func (s *Scene) Bounds() geometry.AABB {
	if len(s.Cubes) == 0 {
		return geometry.AABB{}
	}
	bounds := s.Cubes[0].BoundingBox()
	for _, cube := range s.Cubes[1:] {
		bounds = bounds.Union(cube.BoundingBox())
	}
	return bounds
}

// World couples a scene with the simulated time of day and owns both
// between frames. The host applies input and time deltas here, strictly
// before dispatching the frame's render.
type World struct {
	Scene *Scene
	Time  float64 // Current time in [0, daylight.CycleLength)
}

// NewWorld creates a world starting at the given time of day
func NewWorld(s *Scene, startTime float64) *World {
	w := &World{Scene: s}
	w.Time = wrapTime(startTime)
	return w
}

// AdvanceTime increments the cyclic simulated time
func (w *World) AdvanceTime(delta float64) {
	w.Time = wrapTime(w.Time + delta)
}

func wrapTime(t float64) float64 {
	t = math.Mod(t, daylight.CycleLength)
	if t < 0 {
		t += daylight.CycleLength
	}
	return t
}
