// Package window binds native windows to GPU presentation surfaces, keeps the
// swapchain of a window alive across resizes, and translates native window
// events into portable ones.
package window

import (
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/vkngwrapper/presenter/gpu"
	"github.com/vkngwrapper/presenter/internal/logging"
	"github.com/vkngwrapper/presenter/platform"
)

type Options struct {
	Title  string
	Width  int
	Height int
	X      int
	Y      int
	Screen int
	Logger *slog.Logger
}

// Window is a native window together with its presentation surface and, when
// its context has a device, a live swapchain.
type Window struct {
	ctx    *gpu.Context
	conn   platform.Connection
	native platform.Window
	logger *slog.Logger

	surface    gpu.Surface
	swapchain  *Swapchain
	translator *EventTranslator
	screen     int
}

// New creates a native window and its surface. When ctx carries a device the
// initial swapchain is built too; otherwise the window is a hidden probe used
// only to query presentation support. Whatever New created is released
// before it returns an error.
func New(ctx *gpu.Context, conn platform.Connection, opts Options) (*Window, error) {
	w := &Window{
		ctx:    ctx,
		conn:   conn,
		logger: logging.OrNop(opts.Logger),
		screen: opts.Screen,
	}

	native, err := conn.CreateWindow(platform.WindowOptions{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		X:      opts.X,
		Y:      opts.Y,
		Screen: opts.Screen,
		Hidden: !ctx.HasDevice(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating native window")
	}
	w.native = native
	w.translator = NewEventTranslator(conn, native, w.logger)
	conn.Flush()

	surface, res, err := ctx.Instance.CreateSurface(native)
	if err := gpu.Check(gpu.SurfaceCreation, res, err); err != nil {
		return nil, errors.CombineErrors(err, w.Destroy())
	}
	w.surface = surface

	if ctx.HasDevice() {
		if err := w.CreateSwapchain(); err != nil {
			return nil, errors.CombineErrors(err, w.Destroy())
		}
	}

	return w, nil
}

func (w *Window) Surface() gpu.Surface {
	return w.surface
}

func (w *Window) Native() platform.Window {
	return w.native
}

// Swapchain returns the live swapchain, or nil for a probe window.
func (w *Window) Swapchain() *Swapchain {
	return w.swapchain
}

// Size returns the last known size of the window.
func (w *Window) Size() (int, int) {
	return w.translator.Size()
}

// Position returns the last known position of the window relative to its
// screen.
func (w *Window) Position() (int, int) {
	return w.translator.Position()
}

func (w *Window) Screen() int {
	return w.screen
}

// Events drains the pending native events for this window.
func (w *Window) Events() []Event {
	return w.translator.Poll()
}

// Destroy releases the per-image resources and the swapchain if any were
// built, then the surface and the native window.
func (w *Window) Destroy() error {
	if w.swapchain != nil {
		w.destroyFramebuffers()
		w.destroyViews()
		w.ctx.Device.DestroySwapchain(w.swapchain.Handle)
		w.swapchain = nil
	}

	if w.surface.Initialized() {
		w.ctx.Instance.DestroySurface(w.surface)
		w.surface = 0
	}

	var err error
	if w.native != nil {
		err = w.native.Destroy()
		w.native = nil
		w.conn.Flush()
	}
	return err
}
