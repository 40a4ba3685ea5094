package window

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
)

// Event is a portable window event. The set of implementations is closed:
// only the types in this file satisfy it.
type Event interface {
	isEvent()
}

type Moved struct {
	X, Y int
}

type Resized struct {
	Width, Height int
}

type PointerEntered struct{}

type PointerExited struct{}

type PointerMoved struct {
	Position mgl32.Vec2
}

type Scrolled struct {
	Delta mgl32.Vec2
}

type KeyPressed struct {
	Scancode sdl.Scancode
}

type KeyReleased struct {
	Scancode sdl.Scancode
}

type FocusGained struct{}

type FocusLost struct{}

type ButtonPressed struct {
	Button   uint8
	Position mgl32.Vec2
}

type ButtonReleased struct {
	Button   uint8
	Position mgl32.Vec2
}

// CloseRequested is delivered when the user asks the window manager to close
// the window. It is the only event that ends the run loop.
type CloseRequested struct{}

func (Moved) isEvent()          {}
func (Resized) isEvent()        {}
func (PointerEntered) isEvent() {}
func (PointerExited) isEvent()  {}
func (PointerMoved) isEvent()   {}
func (Scrolled) isEvent()       {}
func (KeyPressed) isEvent()     {}
func (KeyReleased) isEvent()    {}
func (FocusGained) isEvent()    {}
func (FocusLost) isEvent()      {}
func (ButtonPressed) isEvent()  {}
func (ButtonReleased) isEvent() {}
func (CloseRequested) isEvent() {}
