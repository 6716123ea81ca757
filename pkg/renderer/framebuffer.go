package renderer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/user/portaltracer/pkg/core"
)

// Framebuffer is a width x height grid of linear-RGB colors. Its
// dimensions are fixed for the process lifetime; during a frame each
// cell is written exactly once, by exactly one worker.
type Framebuffer struct {
	width  int
	height int
	pixels []core.Vec3 // Row-major: pixels[y*width + x]
}

// NewFramebuffer allocates a framebuffer of the given dimensions
func NewFramebuffer(width, height int) (*Framebuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("framebuffer dimensions must be positive, got %dx%d", width, height)
	}
	return &Framebuffer{
		width:  width,
		height: height,
		pixels: make([]core.Vec3, width*height),
	}, nil
}

// Width returns the buffer width in pixels
func (fb *Framebuffer) Width() int {
	return fb.width
}

// Height returns the buffer height in pixels
func (fb *Framebuffer) Height() int {
	return fb.height
}

// At returns the color stored at pixel (x, y)
func (fb *Framebuffer) At(x, y int) core.Vec3 {
	return fb.pixels[y*fb.width+x]
}

// Set stores a color at pixel (x, y)
func (fb *Framebuffer) Set(x, y int, c core.Vec3) {
	fb.pixels[y*fb.width+x] = c
}

// ToRGBA converts the buffer to an image with gamma correction and
// clamping applied, ready for presentation or PNG encoding
func (fb *Framebuffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
	for y := 0; y < fb.height; y++ {
		for x := 0; x < fb.width; x++ {
			img.SetRGBA(x, y, vec3ToColor(fb.At(x, y)))
		}
	}
	return img
}

// vec3ToColor converts a Vec3 color to RGBA with proper clamping and gamma correction
func vec3ToColor(colorVec core.Vec3) color.RGBA {
	// Apply gamma correction (gamma = 2.0)
	colorVec = colorVec.GammaCorrect(2.0)

	// Clamp to valid color range
	colorVec = colorVec.Clamp(0.0, 1.0)

	return color.RGBA{
		R: uint8(255 * colorVec.X),
		G: uint8(255 * colorVec.Y),
		B: uint8(255 * colorVec.Z),
		A: 255,
	}
}
