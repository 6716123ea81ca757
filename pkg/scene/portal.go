package scene

import (
	"fmt"

	"github.com/user/portaltracer/pkg/core"
	"github.com/user/portaltracer/pkg/daylight"
	"github.com/user/portaltracer/pkg/geometry"
	"github.com/user/portaltracer/pkg/material"
	"github.com/user/portaltracer/pkg/renderer"
)

// Textures optionally overrides the flat block colors of the diorama.
// Nil entries keep the solid default for that block type.
type Textures struct {
	Grass material.ColorSource
	Rock  material.ColorSource
	Lava  material.ColorSource
}

// NewPortalScene builds the portal diorama: a grass base with lava
// pools at its corners, a stepped rock pyramid, and an obsidian portal
// frame around a translucent purple interior.
func NewPortalScene(width, height int, textures Textures) (*Scene, error) {
	grassColor := colorOrDefault(textures.Grass, core.NewVec3(0.1, 0.75, 0.2))
	rockColor := colorOrDefault(textures.Rock, core.NewVec3(0.66, 0.66, 0.66))
	lavaColor := colorOrDefault(textures.Lava, core.NewVec3(1.0, 0.27, 0.0))

	grass, err := material.New(grassColor, 50,
		material.Properties{Diffuse: 0.8, Specular: 0.2}, 1.0)
	if err != nil {
		return nil, fmt.Errorf("grass material: %w", err)
	}
	obsidian, err := material.New(material.NewSolidColor(core.NewVec3(0.03, 0.02, 0.06)), 100,
		material.Properties{Diffuse: 0.1, Specular: 0.7, Reflective: 0.2}, 1.0)
	if err != nil {
		return nil, fmt.Errorf("obsidian material: %w", err)
	}
	portal, err := material.New(material.NewSolidColor(core.NewVec3(0.5, 0.0, 0.5)), 100,
		material.Properties{Diffuse: 0.25, Specular: 0.15, Reflective: 0.1, Transparent: 0.5}, 1.05)
	if err != nil {
		return nil, fmt.Errorf("portal material: %w", err)
	}
	rock, err := material.New(rockColor, 50,
		material.Properties{Diffuse: 0.7, Specular: 0.2, Reflective: 0.1}, 1.0)
	if err != nil {
		return nil, fmt.Errorf("rock material: %w", err)
	}
	lava, err := material.New(lavaColor, 100,
		material.Properties{Diffuse: 0.7, Specular: 0.3}, 1.0)
	if err != nil {
		return nil, fmt.Errorf("lava material: %w", err)
	}

	// Portal frame offset: up and toward the viewer
	const deltaY, deltaZ = 1.5, 1.0

	type block struct {
		min, max core.Vec3
		mat      *material.Material
	}
	blocks := []block{
		// Grass base
		{core.NewVec3(-3.0, -0.5, -3.0), core.NewVec3(3.0, -0.2, 3.0), grass},

		// Lava pools at the base corners
		{core.NewVec3(-3.2, -0.5, -3.2), core.NewVec3(-2.8, 0.0, -2.8), lava},
		{core.NewVec3(2.8, -0.5, -3.2), core.NewVec3(3.2, 0.0, -2.8), lava},
		{core.NewVec3(-3.2, -0.5, 2.8), core.NewVec3(-2.8, 0.0, 3.2), lava},
		{core.NewVec3(2.8, -0.5, 2.8), core.NewVec3(3.2, 0.0, 3.2), lava},

		// Portal frame: vertical sides
		{core.NewVec3(-1.0, 0.2+deltaY, -1.5+deltaZ), core.NewVec3(-0.5, 2.5+deltaY, -0.5+deltaZ), obsidian},
		{core.NewVec3(0.5, 0.2+deltaY, -1.5+deltaZ), core.NewVec3(1.0, 2.5+deltaY, -0.5+deltaZ), obsidian},

		// Portal frame: top and bottom
		{core.NewVec3(-1.0, 2.5+deltaY, -1.5+deltaZ), core.NewVec3(1.0, 3.0+deltaY, -0.5+deltaZ), obsidian},
		{core.NewVec3(-1.0, -0.2+deltaY, -1.5+deltaZ), core.NewVec3(1.0, 0.2+deltaY, -0.5+deltaZ), obsidian},

		// Translucent portal interior
		{core.NewVec3(-0.5, 0.2+deltaY, -1.5+deltaZ), core.NewVec3(0.5, 2.5+deltaY, -0.5+deltaZ), portal},

		// Rock steps climbing the base
		{core.NewVec3(-2.4, -0.3, -2.4), core.NewVec3(2.4, -0.1, 3.1), rock},
		{core.NewVec3(-2.3, -0.1, -2.3), core.NewVec3(2.3, 0.1, 2.9), rock},
		{core.NewVec3(-2.2, 0.1, -2.2), core.NewVec3(2.2, 0.3, 2.7), rock},
		{core.NewVec3(-2.1, 0.3, -2.1), core.NewVec3(2.1, 0.5, 2.5), rock},
		{core.NewVec3(-2.0, 0.5, -2.0), core.NewVec3(2.0, 0.7, 2.3), rock},
		{core.NewVec3(-1.9, 0.7, -1.9), core.NewVec3(1.9, 0.9, 2.1), rock},
		{core.NewVec3(-1.8, 0.9, -1.8), core.NewVec3(1.8, 1.1, 2.0), rock},
		{core.NewVec3(-1.7, 1.1, -1.7), core.NewVec3(1.7, 1.3, 1.8), rock},
	}

	cubes := make([]*geometry.Cube, 0, len(blocks))
	for i, b := range blocks {
		cube, err := geometry.NewCube(b.min, b.max, b.mat)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		cubes = append(cubes, cube)
	}

	camera, err := renderer.NewCamera(renderer.DefaultCameraConfig(width, height))
	if err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}

	return NewScene(camera, cubes, daylight.NewModel())
}

func colorOrDefault(source material.ColorSource, fallback core.Vec3) material.ColorSource {
	if source != nil {
		return source
	}
	return material.NewSolidColor(fallback)
}
