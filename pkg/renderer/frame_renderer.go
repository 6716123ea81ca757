package renderer

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/user/portaltracer/pkg/core"
	"github.com/user/portaltracer/pkg/daylight"
	"github.com/user/portaltracer/pkg/geometry"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// Scene is the read-only snapshot the renderer consumes for one frame.
// Defined here as an interface to avoid a circular import with the
// scene package.
type Scene interface {
	GetCamera() *Camera
	GetCubes() []*geometry.Cube
	GetDaylight() *daylight.Model
}

// RenderStats summarizes one rendered frame
type RenderStats struct {
	TotalPixels int
	RaysCast    int64
	Workers     int
	Duration    time.Duration
}

// rowTask is one contiguous row range of the framebuffer. Tasks cover
// disjoint rows, so workers never write the same pixel.
type rowTask struct {
	yStart, yEnd int // [yStart, yEnd)
}

// FrameRenderer fills framebuffers from scene snapshots using a fixed
// pool of workers. Pixels are independent, so the only synchronization
// is the join barrier at the end of each frame.
type FrameRenderer struct {
	numWorkers int
	config     QualityConfig
	logger     core.Logger
}

// NewFrameRenderer creates a frame renderer with the given worker
// count; numWorkers <= 0 selects the CPU count
func NewFrameRenderer(numWorkers int, config QualityConfig, logger core.Logger) *FrameRenderer {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}
	logger.Printf("Render pool: %d workers, depth %d, %d shadow samples\n",
		numWorkers, config.MaxDepth, config.ShadowSamples)
	return &FrameRenderer{
		numWorkers: numWorkers,
		config:     config,
		logger:     logger,
	}
}

// NumWorkers returns the number of workers in the pool
func (fr *FrameRenderer) NumWorkers() int {
	return fr.numWorkers
}

// Render fills every pixel of the framebuffer exactly once from the
// scene snapshot at simulated time t, blocking until all row chunks
// complete. The scene must not be mutated while Render runs. The
// result is identical regardless of worker count: per-pixel colors
// depend only on the snapshot and the pixel coordinates.
func (fr *FrameRenderer) Render(s Scene, t float64, fb *Framebuffer) (RenderStats, error) {
	camera := s.GetCamera()
	if camera.Width() != fb.Width() || camera.Height() != fb.Height() {
		return RenderStats{}, fmt.Errorf("camera projects %dx%d but framebuffer is %dx%d",
			camera.Width(), camera.Height(), fb.Width(), fb.Height())
	}

	start := time.Now()
	tracer := NewTracer(s.GetCubes(), camera, s.GetDaylight().At(t), fr.config)

	// Contiguous row chunks, a few per worker so a slow chunk does not
	// leave the rest of the pool idle
	chunkRows := fb.Height() / (fr.numWorkers * 4)
	if chunkRows < 1 {
		chunkRows = 1
	}

	tasks := make(chan rowTask, fb.Height()/chunkRows+1)
	var wg sync.WaitGroup

	for w := 0; w < fr.numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range tasks {
				for y := task.yStart; y < task.yEnd; y++ {
					for x := 0; x < fb.Width(); x++ {
						fb.Set(x, y, tracer.PixelColor(x, y))
					}
				}
			}
		}()
	}

	for y := 0; y < fb.Height(); y += chunkRows {
		end := y + chunkRows
		if end > fb.Height() {
			end = fb.Height()
		}
		tasks <- rowTask{yStart: y, yEnd: end}
	}
	close(tasks)

	// Join barrier: the frame is complete only when every chunk is
	wg.Wait()

	return RenderStats{
		TotalPixels: fb.Width() * fb.Height(),
		RaysCast:    tracer.RaysCast(),
		Workers:     fr.numWorkers,
		Duration:    time.Since(start),
	}, nil
}
