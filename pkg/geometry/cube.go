package geometry

import (
	"fmt"
	"math"

	"github.com/user/portaltracer/pkg/core"
	"github.com/user/portaltracer/pkg/material"
)

// Face indices for per-face material lookup and UV conventions
const (
	FaceXPos = iota
	FaceXNeg
	FaceYPos
	FaceYNeg
	FaceZPos
	FaceZNeg
	faceCount
)

// parallelEpsilon is the directional-component threshold below which a
// ray is treated as parallel to a slab axis, avoiding division by zero.
const parallelEpsilon = 1e-12

// Cube is an axis-aligned box defined by its min and max corners.
// Cubes are immutable once the scene is constructed.
type Cube struct {
	Min core.Vec3
	Max core.Vec3

	mat           *material.Material
	faceMaterials [faceCount]*material.Material // nil entries fall back to mat
}

// NewCube creates an axis-aligned cube from min/max corners. Zero- or
// negative-extent boxes are rejected here so intersection code never
// sees degenerate geometry.
func NewCube(min, max core.Vec3, mat *material.Material) (*Cube, error) {
	if mat == nil {
		return nil, fmt.Errorf("cube requires a material")
	}
	if min.X >= max.X || min.Y >= max.Y || min.Z >= max.Z {
		return nil, fmt.Errorf("cube must have positive extent on every axis: min %v, max %v", min, max)
	}
	return &Cube{Min: min, Max: max, mat: mat}, nil
}

// NewCubeAt creates an axis-aligned cube from a center point and half-extents
func NewCubeAt(center, halfExtents core.Vec3, mat *material.Material) (*Cube, error) {
	return NewCube(center.Subtract(halfExtents), center.Add(halfExtents), mat)
}

// SetFaceMaterial overrides the material for a single face. Call during
// scene construction only; cubes are shared read-only while rendering.
func (c *Cube) SetFaceMaterial(face int, mat *material.Material) error {
	if face < 0 || face >= faceCount {
		return fmt.Errorf("face index must be in [0, %d), got %d", faceCount, face)
	}
	if mat == nil {
		return fmt.Errorf("face material must not be nil")
	}
	c.faceMaterials[face] = mat
	return nil
}

// MaterialFor returns the material shading the given face
func (c *Cube) MaterialFor(face int) *material.Material {
	if face >= 0 && face < faceCount && c.faceMaterials[face] != nil {
		return c.faceMaterials[face]
	}
	return c.mat
}

// BoundingBox returns the axis-aligned bounding box of the cube
func (c *Cube) BoundingBox() AABB {
	return NewAABB(c.Min, c.Max)
}

// Hit tests the ray against the cube using the slab method and returns
// the nearest hit with t in [tMin, tMax]. The three per-axis parametric
// intervals are intersected; the surviving interval's lower bound is the
// hit if it is past tMin, otherwise the upper bound covers the case of a
// ray starting inside the box. The plane producing the chosen bound
// determines the hit face, and with it the normal, UV, and material.
func (c *Cube) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	tNear, tFar := math.Inf(-1), math.Inf(1)
	nearFace, farFace := -1, -1

	for axis := 0; axis < 3; axis++ {
		origin := component(ray.Origin, axis)
		direction := component(ray.Direction, axis)
		slabMin := component(c.Min, axis)
		slabMax := component(c.Max, axis)

		if math.Abs(direction) < parallelEpsilon {
			// Parallel ray: the slab either always passes or never does
			if origin < slabMin || origin > slabMax {
				return nil, false
			}
			continue
		}

		invDirection := 1.0 / direction
		t1 := (slabMin - origin) * invDirection
		t2 := (slabMax - origin) * invDirection
		face1, face2 := negFace(axis), posFace(axis)
		if t1 > t2 {
			t1, t2 = t2, t1
			face1, face2 = face2, face1
		}

		if t1 > tNear {
			tNear = t1
			nearFace = face1
		}
		if t2 < tFar {
			tFar = t2
			farFace = face2
		}
		if tNear > tFar {
			return nil, false
		}
	}

	t, face := tNear, nearFace
	if t < tMin {
		// Ray origin inside the box: the exit plane is the hit
		t, face = tFar, farFace
	}
	if face < 0 || t < tMin || t > tMax {
		return nil, false
	}

	point := ray.At(t)
	hit := &material.HitRecord{
		T:        t,
		Point:    point,
		UV:       c.faceUV(face, point),
		Face:     face,
		Material: c.MaterialFor(face),
	}
	hit.SetFaceNormal(ray, faceNormal(face))
	return hit, true
}

// faceUV projects the hit point onto the two in-face axes, normalized to
// the face extent. The U direction is flipped on opposing faces so a
// texture wrapped around the cube keeps consistent seams.
func (c *Cube) faceUV(face int, point core.Vec3) core.Vec2 {
	size := c.Max.Subtract(c.Min)
	switch face {
	case FaceXPos:
		return core.NewVec2((c.Max.Z-point.Z)/size.Z, (point.Y-c.Min.Y)/size.Y)
	case FaceXNeg:
		return core.NewVec2((point.Z-c.Min.Z)/size.Z, (point.Y-c.Min.Y)/size.Y)
	case FaceYPos:
		return core.NewVec2((point.X-c.Min.X)/size.X, (c.Max.Z-point.Z)/size.Z)
	case FaceYNeg:
		return core.NewVec2((point.X-c.Min.X)/size.X, (point.Z-c.Min.Z)/size.Z)
	case FaceZPos:
		return core.NewVec2((point.X-c.Min.X)/size.X, (point.Y-c.Min.Y)/size.Y)
	default: // FaceZNeg
		return core.NewVec2((c.Max.X-point.X)/size.X, (point.Y-c.Min.Y)/size.Y)
	}
}

// faceNormal returns the outward unit normal of a face
func faceNormal(face int) core.Vec3 {
	switch face {
	case FaceXPos:
		return core.NewVec3(1, 0, 0)
	case FaceXNeg:
		return core.NewVec3(-1, 0, 0)
	case FaceYPos:
		return core.NewVec3(0, 1, 0)
	case FaceYNeg:
		return core.NewVec3(0, -1, 0)
	case FaceZPos:
		return core.NewVec3(0, 0, 1)
	default:
		return core.NewVec3(0, 0, -1)
	}
}

// posFace and negFace map an axis to the face on its max and min plane
func posFace(axis int) int {
	switch axis {
	case 0:
		return FaceXPos
	case 1:
		return FaceYPos
	default:
		return FaceZPos
	}
}

func negFace(axis int) int {
	switch axis {
	case 0:
		return FaceXNeg
	case 1:
		return FaceYNeg
	default:
		return FaceZNeg
	}
}

func component(v core.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
