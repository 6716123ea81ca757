package renderer

import (
	"fmt"
	"math"

	"github.com/user/portaltracer/pkg/core"
)

// CameraConfig holds the orbit parameters for camera construction
type CameraConfig struct {
	Target    core.Vec3 // Fixed look-at point
	Up        core.Vec3 // World up hint
	Azimuth   float64   // Radians around the target
	Elevation float64   // Radians above the horizontal plane
	Radius    float64   // Distance from the target
	FOV       float64   // Vertical field of view in radians
	Width     int       // Pixel buffer width
	Height    int       // Pixel buffer height
}

// DefaultCameraConfig matches the diorama's starting viewpoint
func DefaultCameraConfig(width, height int) CameraConfig {
	return CameraConfig{
		Target:    core.NewVec3(0, 0, 0),
		Up:        core.NewVec3(0, 1, 0),
		Azimuth:   0,
		Elevation: 0,
		Radius:    6.5,
		FOV:       math.Pi / 3,
		Width:     width,
		Height:    height,
	}
}

// Orbit limits. Elevation stays clear of the poles so the view basis
// never degenerates; radius stays inside the zoom range.
const (
	maxElevation = math.Pi/2 - 0.05
	minRadius    = 1.0
	maxRadius    = 10.0
)

// Camera maintains orbital view parameters around a fixed target and
// generates one perspective ray per pixel. The orthonormal basis is
// rebuilt whenever the orbit changes; ray generation itself is
// read-only and safe to share across render workers.
type Camera struct {
	target    core.Vec3
	up        core.Vec3
	azimuth   float64
	elevation float64
	radius    float64
	fov       float64
	width     int
	height    int

	// Derived on every orbit change
	eye       core.Vec3
	forward   core.Vec3
	right     core.Vec3
	upBasis   core.Vec3
	aspect    float64
	planeHalf float64 // tan(fov/2)
}

// NewCamera creates an orbital camera, validating the configuration
func NewCamera(config CameraConfig) (*Camera, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("camera dimensions must be positive, got %dx%d", config.Width, config.Height)
	}
	if config.FOV <= 0 || config.FOV >= math.Pi {
		return nil, fmt.Errorf("field of view must be in (0, pi), got %f", config.FOV)
	}
	if config.Up.Length() == 0 {
		return nil, fmt.Errorf("up hint must not be the zero vector")
	}
	if config.Radius <= 0 {
		return nil, fmt.Errorf("orbit radius must be positive, got %f", config.Radius)
	}

	c := &Camera{
		target:    config.Target,
		up:        config.Up.Normalize(),
		azimuth:   config.Azimuth,
		elevation: clamp(config.Elevation, -maxElevation, maxElevation),
		radius:    clamp(config.Radius, minRadius, maxRadius),
		fov:       config.FOV,
		width:     config.Width,
		height:    config.Height,
	}
	c.updateBasis()
	return c, nil
}

// Orbit applies bounded deltas to the orbit parameters and rebuilds the
// view basis. Elevation is clamped away from the poles and radius to
// the zoom range, so host input can never flip or degenerate the view.
func (c *Camera) Orbit(deltaAzimuth, deltaElevation, deltaRadius float64) {
	c.azimuth = math.Mod(c.azimuth+deltaAzimuth, 2*math.Pi)
	c.elevation = clamp(c.elevation+deltaElevation, -maxElevation, maxElevation)
	c.radius = clamp(c.radius+deltaRadius, minRadius, maxRadius)
	c.updateBasis()
}

// Eye returns the camera's world position
func (c *Camera) Eye() core.Vec3 {
	return c.eye
}

// Width returns the pixel buffer width the camera projects onto
func (c *Camera) Width() int {
	return c.width
}

// Height returns the pixel buffer height the camera projects onto
func (c *Camera) Height() int {
	return c.height
}

// updateBasis recomputes the eye position and the orthonormal basis
// from the current orbit parameters
func (c *Camera) updateBasis() {
	offset := core.NewVec3(
		math.Cos(c.elevation)*math.Sin(c.azimuth),
		math.Sin(c.elevation),
		math.Cos(c.elevation)*math.Cos(c.azimuth),
	).Multiply(c.radius)

	c.eye = c.target.Add(offset)
	c.forward = c.target.Subtract(c.eye).Normalize()
	c.right = c.forward.Cross(c.up).Normalize()
	c.upBasis = c.right.Cross(c.forward)

	c.aspect = float64(c.width) / float64(c.height)
	c.planeHalf = math.Tan(c.fov / 2)
}

// GetRay generates the perspective ray through the center of pixel
// (i, j), with (0, 0) the top-left pixel. The pixel is mapped to the
// view plane in camera space and the direction rotated into world space
// by the camera basis.
func (c *Camera) GetRay(i, j int) core.Ray {
	screenX := (2*(float64(i)+0.5)/float64(c.width) - 1) * c.aspect * c.planeHalf
	screenY := (1 - 2*(float64(j)+0.5)/float64(c.height)) * c.planeHalf

	direction := c.right.Multiply(screenX).
		Add(c.upBasis.Multiply(screenY)).
		Add(c.forward).
		Normalize()

	return core.NewRay(c.eye, direction)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
