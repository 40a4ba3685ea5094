package sdlplatform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veandco/go-sdl2/sdl"
)

func TestWindowPositionIsRelativeToDisplay(t *testing.T) {
	tests := []struct {
		name   string
		bounds sdl.Rect
		x, y   int
		wantX  int32
		wantY  int32
	}{
		{name: "primary display origin", bounds: sdl.Rect{W: 1920, H: 1080}, x: 10, y: 20, wantX: 10, wantY: 20},
		{name: "second display to the right", bounds: sdl.Rect{X: 1920, W: 2560, H: 1440}, x: 0, y: 0, wantX: 1920, wantY: 0},
		{name: "display above", bounds: sdl.Rect{Y: -1080, W: 1920, H: 1080}, x: 5, y: 5, wantX: 5, wantY: -1075},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := windowPosition(tt.bounds, tt.x, tt.y)
			assert.Equal(t, tt.wantX, x)
			assert.Equal(t, tt.wantY, y)
		})
	}
}
