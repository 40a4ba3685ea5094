package window_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/vkngwrapper/presenter/platform"
	"github.com/vkngwrapper/presenter/platform/platformtest"
	"github.com/vkngwrapper/presenter/window"
)

func newTranslator(t *testing.T, logger *slog.Logger) (*window.EventTranslator, *platformtest.Connection, uint32) {
	t.Helper()

	conn := platformtest.NewConnection()
	native, err := conn.CreateWindow(platform.WindowOptions{Width: 500, Height: 500, X: 10, Y: 20})
	require.NoError(t, err)

	return window.NewEventTranslator(conn, native, logger), conn, native.ID()
}

func TestResizeNotificationsAreDeduplicated(t *testing.T) {
	translator, conn, id := newTranslator(t, nil)

	conn.Queue(
		platformtest.Resized(id, 500, 500),
		platformtest.Resized(id, 500, 500),
	)
	assert.Empty(t, translator.Poll())

	conn.Queue(
		platformtest.Resized(id, 640, 480),
		platformtest.Resized(id, 640, 480),
	)
	assert.Equal(t, []window.Event{window.Resized{Width: 640, Height: 480}}, translator.Poll())

	width, height := translator.Size()
	assert.Equal(t, 640, width)
	assert.Equal(t, 480, height)
}

func TestMoveNotificationsAreDeduplicated(t *testing.T) {
	translator, conn, id := newTranslator(t, nil)

	conn.Queue(
		platformtest.Moved(id, 10, 20),
		platformtest.Moved(id, 30, 40),
		platformtest.Moved(id, 30, 40),
	)
	assert.Equal(t, []window.Event{window.Moved{X: 30, Y: 40}}, translator.Poll())

	x, y := translator.Position()
	assert.Equal(t, 30, x)
	assert.Equal(t, 40, y)
}

func TestCloseRequestOnlyFromOwnWindow(t *testing.T) {
	translator, conn, id := newTranslator(t, nil)

	conn.Queue(
		&sdl.QuitEvent{Type: sdl.QUIT},
		platformtest.CloseRequested(id+1),
	)
	assert.Empty(t, translator.Poll())

	conn.Queue(platformtest.CloseRequested(id))
	assert.Equal(t, []window.Event{window.CloseRequested{}}, translator.Poll())
}

func TestPollDrainsOneBatchInOrder(t *testing.T) {
	translator, conn, id := newTranslator(t, nil)

	conn.Queue(
		&sdl.WindowEvent{Type: sdl.WINDOWEVENT, WindowID: id, Event: sdl.WINDOWEVENT_FOCUS_GAINED},
		&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, WindowID: id, X: 3, Y: 4},
		&sdl.WindowEvent{Type: sdl.WINDOWEVENT, WindowID: id, Event: sdl.WINDOWEVENT_CLOSE},
	)
	conn.Queue(platformtest.Resized(id, 1, 1))

	assert.Equal(t, []window.Event{
		window.FocusGained{},
		window.PointerMoved{Position: mgl32.Vec2{3, 4}},
		window.CloseRequested{},
	}, translator.Poll())
	assert.Equal(t, []window.Event{window.Resized{Width: 1, Height: 1}}, translator.Poll())
	assert.Empty(t, translator.Poll())
}

func TestTranslate(t *testing.T) {
	translator, _, id := newTranslator(t, nil)

	tests := []struct {
		name string
		raw  sdl.Event
		want window.Event
	}{
		{
			name: "pointer entered",
			raw:  &sdl.WindowEvent{Type: sdl.WINDOWEVENT, WindowID: id, Event: sdl.WINDOWEVENT_ENTER},
			want: window.PointerEntered{},
		},
		{
			name: "pointer exited",
			raw:  &sdl.WindowEvent{Type: sdl.WINDOWEVENT, WindowID: id, Event: sdl.WINDOWEVENT_LEAVE},
			want: window.PointerExited{},
		},
		{
			name: "focus lost",
			raw:  &sdl.WindowEvent{Type: sdl.WINDOWEVENT, WindowID: id, Event: sdl.WINDOWEVENT_FOCUS_LOST},
			want: window.FocusLost{},
		},
		{
			name: "key pressed",
			raw:  &sdl.KeyboardEvent{Type: sdl.KEYDOWN, WindowID: id, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_A}},
			want: window.KeyPressed{Scancode: sdl.SCANCODE_A},
		},
		{
			name: "key released",
			raw:  &sdl.KeyboardEvent{Type: sdl.KEYUP, WindowID: id, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_ESCAPE}},
			want: window.KeyReleased{Scancode: sdl.SCANCODE_ESCAPE},
		},
		{
			name: "button pressed",
			raw:  &sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, WindowID: id, Button: sdl.BUTTON_LEFT, X: 5, Y: 6},
			want: window.ButtonPressed{Button: sdl.BUTTON_LEFT, Position: mgl32.Vec2{5, 6}},
		},
		{
			name: "button released",
			raw:  &sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP, WindowID: id, Button: sdl.BUTTON_RIGHT, X: 7, Y: 8},
			want: window.ButtonReleased{Button: sdl.BUTTON_RIGHT, Position: mgl32.Vec2{7, 8}},
		},
		{
			name: "scrolled",
			raw:  &sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, WindowID: id, X: 0, Y: -1},
			want: window.Scrolled{Delta: mgl32.Vec2{0, -1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := translator.Translate(tt.raw)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOtherWindowsAreIgnored(t *testing.T) {
	translator, _, id := newTranslator(t, nil)

	for _, raw := range []sdl.Event{
		platformtest.Resized(id+1, 10, 10),
		&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, WindowID: id + 1},
		&sdl.KeyboardEvent{Type: sdl.KEYDOWN, WindowID: id + 1},
	} {
		_, ok := translator.Translate(raw)
		assert.False(t, ok)
	}
}

func TestUnhandledEventIsReported(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	translator, _, _ := newTranslator(t, logger)

	_, ok := translator.Translate(&sdl.UserEvent{Type: sdl.USEREVENT})
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "unhandled native event")
}
