package window

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/vkngwrapper/presenter/internal/logging"
	"github.com/vkngwrapper/presenter/platform"
)

// EventTranslator drains the native event queue for one window and converts
// what it finds into Events. It remembers the last known size and position of
// the window so that repeated structural notifications collapse.
type EventTranslator struct {
	conn     platform.Connection
	windowID uint32
	logger   *slog.Logger

	width, height int
	x, y          int
}

// NewEventTranslator interns the identity of native so that close requests
// can be matched against it, and seeds the last known geometry from it.
func NewEventTranslator(conn platform.Connection, native platform.Window, logger *slog.Logger) *EventTranslator {
	t := &EventTranslator{
		conn:     conn,
		windowID: native.ID(),
		logger:   logging.OrNop(logger),
	}
	t.width, t.height = native.Size()
	t.x, t.y = native.Position()
	return t
}

// Size returns the last known window size.
func (t *EventTranslator) Size() (int, int) {
	return t.width, t.height
}

// Position returns the last known window position.
func (t *EventTranslator) Position() (int, int) {
	return t.x, t.y
}

// Poll drains every pending native event without blocking and returns the
// translated events in arrival order.
func (t *EventTranslator) Poll() []Event {
	var events []Event
	for raw := t.conn.PollEvent(); raw != nil; raw = t.conn.PollEvent() {
		if event, ok := t.Translate(raw); ok {
			events = append(events, event)
		}
	}
	return events
}

// Translate converts one native event. The second result is false when the
// event produces nothing: it belongs to another window, repeats the current
// geometry, or is of a class this window does not handle.
func (t *EventTranslator) Translate(raw sdl.Event) (Event, bool) {
	switch e := raw.(type) {
	case *sdl.WindowEvent:
		if e.WindowID != t.windowID {
			return nil, false
		}
		return t.translateWindowEvent(e)

	case *sdl.MouseMotionEvent:
		if e.WindowID != t.windowID {
			return nil, false
		}
		return PointerMoved{Position: mgl32.Vec2{float32(e.X), float32(e.Y)}}, true

	case *sdl.MouseButtonEvent:
		if e.WindowID != t.windowID {
			return nil, false
		}
		position := mgl32.Vec2{float32(e.X), float32(e.Y)}
		if e.Type == sdl.MOUSEBUTTONDOWN {
			return ButtonPressed{Button: e.Button, Position: position}, true
		}
		return ButtonReleased{Button: e.Button, Position: position}, true

	case *sdl.MouseWheelEvent:
		if e.WindowID != t.windowID {
			return nil, false
		}
		return Scrolled{Delta: mgl32.Vec2{float32(e.X), float32(e.Y)}}, true

	case *sdl.KeyboardEvent:
		if e.WindowID != t.windowID {
			return nil, false
		}
		if e.Type == sdl.KEYDOWN {
			return KeyPressed{Scancode: e.Keysym.Scancode}, true
		}
		return KeyReleased{Scancode: e.Keysym.Scancode}, true

	case *sdl.QuitEvent:
		// Closing goes through the per-window close request only.
		return nil, false

	default:
		t.logger.Warn("unhandled native event", slog.Uint64("type", uint64(raw.GetType())))
		return nil, false
	}
}

func (t *EventTranslator) translateWindowEvent(e *sdl.WindowEvent) (Event, bool) {
	switch e.Event {
	case sdl.WINDOWEVENT_SIZE_CHANGED, sdl.WINDOWEVENT_RESIZED:
		width, height := int(e.Data1), int(e.Data2)
		if width == t.width && height == t.height {
			return nil, false
		}
		t.width, t.height = width, height
		return Resized{Width: width, Height: height}, true

	case sdl.WINDOWEVENT_MOVED:
		x, y := int(e.Data1), int(e.Data2)
		if x == t.x && y == t.y {
			return nil, false
		}
		t.x, t.y = x, y
		return Moved{X: x, Y: y}, true

	case sdl.WINDOWEVENT_ENTER:
		return PointerEntered{}, true
	case sdl.WINDOWEVENT_LEAVE:
		return PointerExited{}, true
	case sdl.WINDOWEVENT_FOCUS_GAINED:
		return FocusGained{}, true
	case sdl.WINDOWEVENT_FOCUS_LOST:
		return FocusLost{}, true
	case sdl.WINDOWEVENT_CLOSE:
		return CloseRequested{}, true
	}

	// Shown, exposed, minimized and friends carry nothing the loop uses.
	return nil, false
}
