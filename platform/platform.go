// Package platform is the boundary to the native window system: opening a
// connection, creating and destroying windows, and polling raw events.
package platform

import "github.com/veandco/go-sdl2/sdl"

// WindowOptions describes a native window to create.
type WindowOptions struct {
	Title  string
	Width  int
	Height int

	// X and Y are relative to the bounds of the display at Screen.
	X      int
	Y      int
	Screen int

	// Hidden windows are never shown. Used for capability probing.
	Hidden bool
}

// Connection is an open connection to the window system.
type Connection interface {
	// CreateWindow creates and shows a native window. Close requests for the
	// window are delivered as events instead of terminating the process.
	CreateWindow(opts WindowOptions) (Window, error)

	// PollEvent returns the next pending raw event, or nil when the queue is
	// empty. It never blocks.
	PollEvent() sdl.Event

	// RequiredInstanceExtensions lists the instance extensions needed to
	// create presentation surfaces for this window system.
	RequiredInstanceExtensions() ([]string, error)

	// Flush pushes any buffered window-state changes to the window system.
	Flush()

	Close() error
}

// Window is a native window.
type Window interface {
	// ID identifies the window in the events it receives.
	ID() uint32

	Size() (width, height int)
	Position() (x, y int)

	// Destroy unmaps and destroys the window.
	Destroy() error
}
