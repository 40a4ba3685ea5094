package app

import (
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/vkngwrapper/presenter/frame"
	"github.com/vkngwrapper/presenter/gpu"
	"github.com/vkngwrapper/presenter/platform"
)

// Pipeline is render logic that owns device objects.
type Pipeline interface {
	frame.RenderLogic
	Destroy()
}

// PipelineFactory builds the render pipeline once the device and the shared
// render pass exist.
type PipelineFactory func(device gpu.DeviceDriver, renderPass gpu.RenderPass) (Pipeline, error)

// Options configures an Application. The Application takes ownership of
// Connection and closes it during Destroy.
type Options struct {
	Connection platform.Connection
	Loader     gpu.Loader
	Logger     *slog.Logger

	Title  string
	Width  int
	Height int
	X      int
	Y      int
	Screen int

	ClearColor   mgl32.Vec4
	TickInterval time.Duration

	// MaxTicks stops Run after that many ticks. Zero runs until the window
	// is closed.
	MaxTicks int

	EnableValidation bool

	// Pipeline is optional. Without it frames are cleared only.
	Pipeline PipelineFactory
}

// DefaultOptions returns the compile-time configuration. Connection and
// Loader still have to be supplied.
func DefaultOptions() Options {
	return Options{
		Title:            WindowTitle,
		Width:            WindowWidth,
		Height:           WindowHeight,
		ClearColor:       ClearColor,
		TickInterval:     TickInterval,
		EnableValidation: true,
	}
}
