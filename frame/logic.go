package frame

import (
	"github.com/vkngwrapper/presenter/gpu"
	"github.com/vkngwrapper/presenter/window"
)

// Target is what render logic draws into during one tick.
type Target struct {
	RenderPass  gpu.RenderPass
	Framebuffer gpu.Framebuffer
	Extent      gpu.Extent2D
	ImageIndex  int
}

// RenderLogic records draw commands inside the tick's render pass. The
// render pass is already begun when Record is called and is ended after it
// returns.
type RenderLogic interface {
	Record(device gpu.DeviceDriver, buffer gpu.CommandBuffer, target Target) error
}

// EventObserver is implemented by render logic that wants the window events
// the scheduler polled this tick.
type EventObserver interface {
	Observe(event window.Event)
}

// ClearOnly records nothing; the frame is just the render pass clear.
type ClearOnly struct{}

func (ClearOnly) Record(gpu.DeviceDriver, gpu.CommandBuffer, Target) error {
	return nil
}
