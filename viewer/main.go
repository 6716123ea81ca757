package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"

	"github.com/user/portaltracer/pkg/renderer"
	"github.com/user/portaltracer/pkg/scene"
)

const (
	orbitStep = 0.04         // Radians per tick while an arrow key is held
	zoomStep  = 0.1          // Camera radius change per tick
	timeStep  = 1.0 / 1800.0 // Day fraction per tick: one cycle in 30s at 60 TPS
)

// Game drives the interactive viewer: input and time advance in Update,
// one traced frame per tick, presentation in Draw.
type Game struct {
	world    *scene.World
	renderer *renderer.FrameRenderer
	fb       *renderer.Framebuffer
	screen   *ebiten.Image
	paused   bool
}

func NewGame(width, height, workers int, config renderer.QualityConfig) (*Game, error) {
	portalScene, err := scene.NewPortalScene(width, height, scene.Textures{})
	if err != nil {
		return nil, fmt.Errorf("building scene: %w", err)
	}

	fb, err := renderer.NewFramebuffer(width, height)
	if err != nil {
		return nil, fmt.Errorf("creating framebuffer: %w", err)
	}

	return &Game{
		world:    scene.NewWorld(portalScene, 0.25),
		renderer: renderer.NewFrameRenderer(workers, config, nil),
		fb:       fb,
		screen:   ebiten.NewImage(width, height),
	}, nil
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}

	camera := g.world.Scene.Camera
	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		camera.Orbit(-orbitStep, 0, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		camera.Orbit(orbitStep, 0, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyUp) {
		camera.Orbit(0, orbitStep, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyDown) {
		camera.Orbit(0, -orbitStep, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) {
		camera.Orbit(0, 0, -zoomStep)
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		camera.Orbit(0, 0, zoomStep)
	}

	if !g.paused {
		g.world.AdvanceTime(timeStep)
	}

	// Scene mutation is done for this tick; trace the frame
	if _, err := g.renderer.Render(g.world.Scene, g.world.Time, g.fb); err != nil {
		return err
	}
	g.screen.WritePixels(g.fb.ToRGBA().Pix)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.screen, nil)

	status := fmt.Sprintf("time %.3f  |  arrows orbit, W/S zoom, P pause, Esc quit", g.world.Time)
	if g.paused {
		status = "PAUSED  |  " + status
	}
	ebitenutil.DebugPrint(screen, status)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.fb.Width(), g.fb.Height()
}

// printSystemInfo reports the hardware the tracer will saturate and
// returns the logical core count, or 0 if it cannot be determined
func printSystemInfo() int {
	cores := 0
	cpuInfo, err := cpu.Info()
	if err == nil && len(cpuInfo) > 0 {
		cores = len(cpuInfo)
		fmt.Printf("CPU: %s (%d logical cores, %.2f GHz)\n",
			cpuInfo[0].ModelName, cores, cpuInfo[0].Mhz/1000)
	}
	memInfo, err := mem.VirtualMemory()
	if err == nil {
		fmt.Printf("RAM: %d GB total, %.1f%% used\n",
			memInfo.Total/(1024*1024*1024), memInfo.UsedPercent)
	}
	return cores
}

func main() {
	width := flag.Int("width", 320, "Render width in pixels")
	height := flag.Int("height", 240, "Render height in pixels")
	workers := flag.Int("workers", 0, "Render workers; 0 selects the CPU count")
	depth := flag.Int("depth", 3, "Maximum reflection/refraction depth")
	shadowSamples := flag.Int("shadow-samples", 4, "Shadow rays per shading point")
	scale := flag.Int("scale", 2, "Window scale factor")
	flag.Parse()

	fmt.Println("Portal Tracer viewer")
	cores := printSystemInfo()
	if *workers == 0 && cores > 0 {
		*workers = cores
	}

	config := renderer.QualityConfig{MaxDepth: *depth, ShadowSamples: *shadowSamples}
	game, err := NewGame(*width, *height, *workers, config)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(*width**scale, *height**scale)
	ebiten.SetWindowTitle("Portal Tracer")
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
