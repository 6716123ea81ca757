// Package daylight models the time-of-day lighting cycle: sun
// direction, sun color and intensity, ambient level, and sky palette as
// pure functions of a cyclic simulated time.
package daylight

import (
	"math"

	"github.com/user/portaltracer/pkg/core"
)

// CycleLength is the simulated-time span of one full day. Time values
// wrap modulo this length, with t=0 at sunrise, t=0.25 at noon, t=0.5
// at sunset and t=0.75 at midnight.
const CycleLength = 1.0

// Conditions holds the lighting produced for one instant of the cycle
type Conditions struct {
	SunDirection     core.Vec3 // Unit vector pointing toward the sun
	SunColor         core.Vec3
	SunIntensity     float64
	AmbientIntensity float64
	SkyZenith        core.Vec3 // Sky color straight up
	SkyHorizon       core.Vec3 // Sky color at the horizon
	Softness         float64   // Angular extent of the sun disk for soft shadows
}

// Sky returns the background color for a ray leaving the scene in the
// given direction: a vertical gradient between the horizon and zenith
// palettes of the current conditions.
func (c Conditions) Sky(direction core.Vec3) core.Vec3 {
	unit := direction.Normalize()
	// Map direction Y from [-1, 1] to a [0, 1] blend factor
	t := 0.5 * (unit.Y + 1.0)
	return c.SkyHorizon.Lerp(c.SkyZenith, t)
}

// keyframe holds the palette for one band of sun elevation
type keyframe struct {
	sunColor         core.Vec3
	sunIntensity     float64
	ambientIntensity float64
	skyZenith        core.Vec3
	skyHorizon       core.Vec3
}

// Model maps simulated time to lighting conditions. The mapping is a
// pure function: the same t always yields the same Conditions.
type Model struct {
	midday   keyframe
	horizon  keyframe // Shared by sunrise and sunset
	midnight keyframe

	maxElevation float64 // Peak sun elevation in radians
	softness     float64
}

// NewModel returns the default day/night model
func NewModel() *Model {
	return &Model{
		midday: keyframe{
			sunColor:         core.NewVec3(1.0, 0.98, 0.92),
			sunIntensity:     1.4,
			ambientIntensity: 0.35,
			skyZenith:        core.NewVec3(0.22, 0.45, 0.85),
			skyHorizon:       core.NewVec3(0.62, 0.76, 0.94),
		},
		horizon: keyframe{
			sunColor:         core.NewVec3(1.0, 0.55, 0.25),
			sunIntensity:     0.65,
			ambientIntensity: 0.18,
			skyZenith:        core.NewVec3(0.25, 0.22, 0.40),
			skyHorizon:       core.NewVec3(0.95, 0.48, 0.28),
		},
		midnight: keyframe{
			sunColor:         core.NewVec3(0.55, 0.62, 0.85),
			sunIntensity:     0.05, // Faint moonlight, never fully dark
			ambientIntensity: 0.08,
			skyZenith:        core.NewVec3(0.01, 0.01, 0.04),
			skyHorizon:       core.NewVec3(0.04, 0.05, 0.10),
		},
		maxElevation: 1.25,
		softness:     0.05,
	}
}

// At returns the lighting conditions for simulated time t. Time is
// cyclic: t and t+CycleLength produce identical conditions, and the
// interpolation is continuous across the wrap point.
func (m *Model) At(t float64) Conditions {
	phase := 2 * math.Pi * wrap(t)

	// Sun travels an east-to-west arc; sin(phase) is the normalized
	// elevation, continuous and periodic by construction. Spherical to
	// cartesian: azimuth around Y, elevation from the horizon.
	elevation := math.Sin(phase) * m.maxElevation
	azimuth := math.Cos(phase) * (math.Pi / 2)
	dir := core.NewVec3(
		math.Cos(elevation)*math.Sin(azimuth),
		math.Sin(elevation),
		math.Cos(elevation)*math.Cos(azimuth),
	).Normalize()

	key := m.blend(math.Sin(phase))

	return Conditions{
		SunDirection:     dir,
		SunColor:         key.sunColor,
		SunIntensity:     key.sunIntensity,
		AmbientIntensity: key.ambientIntensity,
		SkyZenith:        key.skyZenith,
		SkyHorizon:       key.skyHorizon,
		Softness:         m.softness,
	}
}

// blend interpolates the keyframes by normalized sun elevation in
// [-1, 1]: midnight at -1, the sunrise/sunset palette at 0, midday at
// +1. Piecewise-linear in a continuous quantity, so the palette never
// jumps, even across the cycle boundary.
func (m *Model) blend(elevation float64) keyframe {
	if elevation >= 0 {
		return lerpKeyframe(m.horizon, m.midday, elevation)
	}
	return lerpKeyframe(m.horizon, m.midnight, -elevation)
}

func lerpKeyframe(a, b keyframe, t float64) keyframe {
	return keyframe{
		sunColor:         a.sunColor.Lerp(b.sunColor, t),
		sunIntensity:     a.sunIntensity*(1-t) + b.sunIntensity*t,
		ambientIntensity: a.ambientIntensity*(1-t) + b.ambientIntensity*t,
		skyZenith:        a.skyZenith.Lerp(b.skyZenith, t),
		skyHorizon:       a.skyHorizon.Lerp(b.skyHorizon, t),
	}
}

// wrap maps t into [0, CycleLength)
func wrap(t float64) float64 {
	t = math.Mod(t, CycleLength)
	if t < 0 {
		t += CycleLength
	}
	return t
}
