// Package sdlplatform is the SDL2 implementation of the platform boundary.
// SDL must be driven from the thread that opened it; callers lock the OS
// thread before Open.
package sdlplatform

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/vkngwrapper/presenter/internal/logging"
	"github.com/vkngwrapper/presenter/platform"
)

type Connection struct {
	logger     *slog.Logger
	extensions []string
	closed     bool
}

var _ platform.Connection = (*Connection)(nil)

// Open initializes SDL video and loads the Vulkan library.
func Open(logger *slog.Logger) (*Connection, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "initializing sdl")
	}

	if err := sdl.VulkanLoadLibrary(""); err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "loading vulkan library")
	}

	// Only window, pointer and key events are consumed.
	sdl.EventState(sdl.TEXTINPUT, sdl.DISABLE)
	sdl.EventState(sdl.TEXTEDITING, sdl.DISABLE)

	return &Connection{logger: logging.OrNop(logger)}, nil
}

// windowPosition offsets x and y by the origin of the display bounds.
func windowPosition(bounds sdl.Rect, x, y int) (int32, int32) {
	return bounds.X + int32(x), bounds.Y + int32(y)
}

func (c *Connection) CreateWindow(opts platform.WindowOptions) (platform.Window, error) {
	bounds, err := sdl.GetDisplayBounds(opts.Screen)
	if err != nil {
		return nil, errors.Wrapf(err, "reading bounds of display %d", opts.Screen)
	}
	x, y := windowPosition(bounds, opts.X, opts.Y)

	flags := uint32(sdl.WINDOW_VULKAN | sdl.WINDOW_RESIZABLE)
	if opts.Hidden {
		flags |= sdl.WINDOW_HIDDEN
	} else {
		flags |= sdl.WINDOW_SHOWN
	}

	native, err := sdl.CreateWindow(opts.Title, x, y, int32(opts.Width), int32(opts.Height), flags)
	if err != nil {
		return nil, errors.Wrap(err, "creating sdl window")
	}

	id, err := native.GetID()
	if err != nil {
		return nil, errors.CombineErrors(errors.Wrap(err, "reading window id"), native.Destroy())
	}

	c.logger.Debug("window created",
		slog.Uint64("id", uint64(id)),
		slog.Int("screen", opts.Screen),
		slog.Bool("hidden", opts.Hidden),
	)
	return &Window{native: native, id: id}, nil
}

func (c *Connection) PollEvent() sdl.Event {
	return sdl.PollEvent()
}

// RequiredInstanceExtensions asks SDL for the surface extensions using a
// throwaway hidden window. The answer is cached.
func (c *Connection) RequiredInstanceExtensions() ([]string, error) {
	if c.extensions != nil {
		return c.extensions, nil
	}

	probe, err := sdl.CreateWindow("", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, 1, 1, sdl.WINDOW_VULKAN|sdl.WINDOW_HIDDEN)
	if err != nil {
		return nil, errors.Wrap(err, "creating extension probe window")
	}
	c.extensions = probe.VulkanGetInstanceExtensions()

	if err := probe.Destroy(); err != nil {
		return nil, errors.Wrap(err, "destroying extension probe window")
	}
	return c.extensions, nil
}

func (c *Connection) Flush() {
	sdl.PumpEvents()
}

func (c *Connection) Close() error {
	if c.closed {
		return errors.New("sdlplatform: connection already closed")
	}
	c.closed = true

	sdl.VulkanUnloadLibrary()
	sdl.Quit()
	return nil
}

type Window struct {
	native *sdl.Window
	id     uint32
}

var _ platform.Window = (*Window)(nil)

func (w *Window) ID() uint32 {
	return w.id
}

func (w *Window) Size() (int, int) {
	width, height := w.native.GetSize()
	return int(width), int(height)
}

func (w *Window) Position() (int, int) {
	x, y := w.native.GetPosition()
	return int(x), int(y)
}

// SDLWindow exposes the native window for surface creation.
func (w *Window) SDLWindow() *sdl.Window {
	return w.native
}

func (w *Window) Destroy() error {
	if w.native == nil {
		return errors.New("sdlplatform: window already destroyed")
	}

	err := w.native.Destroy()
	w.native = nil
	return err
}
