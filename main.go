package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/user/portaltracer/pkg/loaders"
	"github.com/user/portaltracer/pkg/material"
	"github.com/user/portaltracer/pkg/renderer"
	"github.com/user/portaltracer/pkg/scene"
)

func main() {
	// Parse command line flags
	width := flag.Int("width", 800, "Image width in pixels")
	height := flag.Int("height", 600, "Image height in pixels")
	timeOfDay := flag.Float64("time", 0.25, "Time of day in [0, 1): 0.25 is midday, 0.75 is midnight")
	workers := flag.Int("workers", 0, "Render workers; 0 selects the CPU count")
	depth := flag.Int("depth", 3, "Maximum reflection/refraction depth")
	shadowSamples := flag.Int("shadow-samples", 8, "Shadow rays per shading point")
	output := flag.String("output", "", "Output PNG path; default output/snapshot_<time>.png")
	grassTexture := flag.String("grass-texture", "", "Optional image file for the grass base")
	rockTexture := flag.String("rock-texture", "", "Optional image file for the rock steps")
	lavaTexture := flag.String("lava-texture", "", "Optional image file for the lava pools")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		fmt.Println("Portal Tracer")
		fmt.Println("Usage: portaltracer [options]")
		fmt.Println()
		fmt.Println("Renders one snapshot of the portal diorama at the given time of")
		fmt.Println("day and saves it as a PNG.")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	fmt.Println("Starting Portal Tracer...")

	textures, err := loadTextures(*grassTexture, *rockTexture, *lavaTexture)
	if err != nil {
		fmt.Printf("Error loading textures: %v\n", err)
		os.Exit(1)
	}

	portalScene, err := scene.NewPortalScene(*width, *height, textures)
	if err != nil {
		fmt.Printf("Error building scene: %v\n", err)
		os.Exit(1)
	}
	world := scene.NewWorld(portalScene, *timeOfDay)

	fb, err := renderer.NewFramebuffer(*width, *height)
	if err != nil {
		fmt.Printf("Error creating framebuffer: %v\n", err)
		os.Exit(1)
	}

	config := renderer.QualityConfig{MaxDepth: *depth, ShadowSamples: *shadowSamples}
	frameRenderer := renderer.NewFrameRenderer(*workers, config, nil)

	stats, err := frameRenderer.Render(world.Scene, world.Time, fb)
	if err != nil {
		fmt.Printf("Error rendering: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Render completed in %v\n", stats.Duration)
	fmt.Printf("Workers: %d, rays cast: %d (%.1f per pixel)\n",
		stats.Workers, stats.RaysCast, float64(stats.RaysCast)/float64(stats.TotalPixels))

	filename := *output
	if filename == "" {
		if err := os.MkdirAll("output", 0755); err != nil {
			fmt.Printf("Error creating output directory: %v\n", err)
			os.Exit(1)
		}
		filename = filepath.Join("output", fmt.Sprintf("snapshot_%.3f.png", world.Time))
	}

	file, err := os.Create(filename)
	if err != nil {
		fmt.Printf("Error creating file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	if err := png.Encode(file, fb.ToRGBA()); err != nil {
		fmt.Printf("Error saving PNG: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Snapshot saved as %s\n", filename)
}

// loadTextures loads the optional block texture overrides; empty paths
// keep the solid default colors
func loadTextures(grass, rock, lava string) (scene.Textures, error) {
	var textures scene.Textures
	load := func(path string) (material.ColorSource, error) {
		if path == "" {
			return nil, nil
		}
		return loaders.LoadTexture(path)
	}

	var err error
	if textures.Grass, err = load(grass); err != nil {
		return textures, fmt.Errorf("grass texture: %w", err)
	}
	if textures.Rock, err = load(rock); err != nil {
		return textures, fmt.Errorf("rock texture: %w", err)
	}
	if textures.Lava, err = load(lava); err != nil {
		return textures, fmt.Errorf("lava texture: %w", err)
	}
	return textures, nil
}
