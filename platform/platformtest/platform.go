// Package platformtest provides a scripted window-system connection for
// tests.
package platformtest

import (
	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/vkngwrapper/presenter/platform"
)

// Connection is a fake platform.Connection. Events are delivered in batches:
// each batch is drained by consecutive PollEvent calls and the nil that ends
// a batch moves the connection on to the next one.
type Connection struct {
	Extensions []string

	// CreateErr, when set, fails the next CreateWindow call.
	CreateErr error

	Windows []*Window
	Flushes int
	Closed  bool

	batches [][]sdl.Event
	nextID  uint32
}

var _ platform.Connection = (*Connection)(nil)

func NewConnection() *Connection {
	return &Connection{
		Extensions: []string{"VK_KHR_surface"},
	}
}

// Queue appends a batch of events that will be returned during one drain of
// the event queue. An empty call queues an empty batch.
func (c *Connection) Queue(events ...sdl.Event) {
	c.batches = append(c.batches, events)
}

func (c *Connection) CreateWindow(opts platform.WindowOptions) (platform.Window, error) {
	if c.CreateErr != nil {
		err := c.CreateErr
		c.CreateErr = nil
		return nil, err
	}

	c.nextID++
	w := &Window{
		id:      c.nextID,
		Options: opts,
		width:   opts.Width,
		height:  opts.Height,
		x:       opts.X,
		y:       opts.Y,
	}
	c.Windows = append(c.Windows, w)
	return w, nil
}

func (c *Connection) PollEvent() sdl.Event {
	if len(c.batches) == 0 {
		return nil
	}
	if len(c.batches[0]) == 0 {
		c.batches = c.batches[1:]
		return nil
	}

	event := c.batches[0][0]
	c.batches[0] = c.batches[0][1:]
	return event
}

func (c *Connection) RequiredInstanceExtensions() ([]string, error) {
	return c.Extensions, nil
}

func (c *Connection) Flush() {
	c.Flushes++
}

func (c *Connection) Close() error {
	if c.Closed {
		return errors.New("platformtest: connection already closed")
	}
	c.Closed = true
	return nil
}

// Window is a fake platform.Window.
type Window struct {
	Options   platform.WindowOptions
	Destroyed bool

	id            uint32
	width, height int
	x, y          int
}

var _ platform.Window = (*Window)(nil)

func (w *Window) ID() uint32 {
	return w.id
}

func (w *Window) Size() (int, int) {
	return w.width, w.height
}

func (w *Window) Position() (int, int) {
	return w.x, w.y
}

// SetSize changes the size the window reports, as a user drag would.
func (w *Window) SetSize(width, height int) {
	w.width, w.height = width, height
}

func (w *Window) Destroy() error {
	if w.Destroyed {
		return errors.Newf("platformtest: window %d already destroyed", w.id)
	}
	w.Destroyed = true
	return nil
}

// Resized builds the native notification sent when a window changes size.
func Resized(windowID uint32, width, height int) *sdl.WindowEvent {
	return &sdl.WindowEvent{
		Type:     sdl.WINDOWEVENT,
		WindowID: windowID,
		Event:    sdl.WINDOWEVENT_SIZE_CHANGED,
		Data1:    int32(width),
		Data2:    int32(height),
	}
}

// Moved builds the native notification sent when a window changes position.
func Moved(windowID uint32, x, y int) *sdl.WindowEvent {
	return &sdl.WindowEvent{
		Type:     sdl.WINDOWEVENT,
		WindowID: windowID,
		Event:    sdl.WINDOWEVENT_MOVED,
		Data1:    int32(x),
		Data2:    int32(y),
	}
}

// CloseRequested builds the native close request for a window.
func CloseRequested(windowID uint32) *sdl.WindowEvent {
	return &sdl.WindowEvent{
		Type:     sdl.WINDOWEVENT,
		WindowID: windowID,
		Event:    sdl.WINDOWEVENT_CLOSE,
	}
}
