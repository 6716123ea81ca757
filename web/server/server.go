package server

import (
	"bytes"
	"fmt"
	"image/png"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/user/portaltracer/pkg/daylight"
	"github.com/user/portaltracer/pkg/renderer"
	"github.com/user/portaltracer/pkg/scene"
)

// Request size ceiling keeps one render from monopolizing the host
const (
	maxDimension  = 1920
	defaultWidth  = 640
	defaultHeight = 480
	maxShadowRays = 64
	maxTraceDepth = 8
)

// Server renders portal diorama snapshots over HTTP
type Server struct {
	port    int
	workers int
}

// NewServer creates a snapshot server; workers <= 0 selects the CPU count
func NewServer(port, workers int) *Server {
	return &Server{port: port, workers: workers}
}

// DaylightResponse reports the lighting conditions at a time of day
type DaylightResponse struct {
	Time             string     `json:"time"`
	SunDirection     [3]float64 `json:"sunDirection"`
	SunColor         [3]float64 `json:"sunColor"`
	SunIntensity     float64    `json:"sunIntensity"`
	AmbientIntensity float64    `json:"ambientIntensity"`
}

// Start runs the server until the listener fails or shuts down
func (s *Server) Start() error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/", s.handleIndex)
	e.GET("/render", s.handleRender)
	e.GET("/daylight", s.handleDaylight)

	return e.Start(fmt.Sprintf(":%d", s.port))
}

func (s *Server) handleIndex(c echo.Context) error {
	return c.String(http.StatusOK,
		"Portal Tracer snapshot server\n"+
			"  GET /render?time=0.25&width=640&height=480\n"+
			"  GET /daylight?time=0.25\n")
}

// handleRender traces one frame at the requested time of day and
// returns it as PNG
func (s *Server) handleRender(c echo.Context) error {
	timeOfDay, err := floatParam(c, "time", 0.25)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	width, err := intParam(c, "width", defaultWidth, 1, maxDimension)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	height, err := intParam(c, "height", defaultHeight, 1, maxDimension)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	depth, err := intParam(c, "depth", 3, 0, maxTraceDepth)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	shadowSamples, err := intParam(c, "shadowSamples", 8, 1, maxShadowRays)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	portalScene, err := scene.NewPortalScene(width, height, scene.Textures{})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	world := scene.NewWorld(portalScene, timeOfDay)

	fb, err := renderer.NewFramebuffer(width, height)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	config := renderer.QualityConfig{MaxDepth: depth, ShadowSamples: shadowSamples}
	if _, err := renderer.NewFrameRenderer(s.workers, config, nil).Render(world.Scene, world.Time, fb); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, fb.ToRGBA()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// handleDaylight reports the lighting conditions at a time of day, for
// clients that schedule renders around sunrise and sunset
func (s *Server) handleDaylight(c echo.Context) error {
	timeOfDay, err := floatParam(c, "time", 0.25)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cond := daylight.NewModel().At(timeOfDay)
	return c.JSON(http.StatusOK, DaylightResponse{
		Time:             fmt.Sprintf("%.4f", timeOfDay),
		SunDirection:     [3]float64{cond.SunDirection.X, cond.SunDirection.Y, cond.SunDirection.Z},
		SunColor:         [3]float64{cond.SunColor.X, cond.SunColor.Y, cond.SunColor.Z},
		SunIntensity:     cond.SunIntensity,
		AmbientIntensity: cond.AmbientIntensity,
	})
}

func floatParam(c echo.Context, name string, fallback float64) (float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return value, nil
}

func intParam(c echo.Context, name string, fallback, min, max int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	if value < min || value > max {
		return 0, fmt.Errorf("%s must be in [%d, %d], got %d", name, min, max, value)
	}
	return value, nil
}
