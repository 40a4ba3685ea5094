// Package frame runs the per-tick acquire, record, submit and present cycle
// against a window's swapchain.
package frame

import (
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/loov/hrtime"

	"github.com/vkngwrapper/presenter/gpu"
	"github.com/vkngwrapper/presenter/internal/logging"
	"github.com/vkngwrapper/presenter/window"
)

// Surface is the window the scheduler presents to.
type Surface interface {
	Events() []window.Event
	Resize(renderPass gpu.RenderPass) error
	Swapchain() *window.Swapchain
}

// RunState carries the two loop flags between ticks.
type RunState struct {
	KeepRunning  bool
	ResizeWindow bool
}

// Stats counts what the scheduler has done so far.
type Stats struct {
	Ticks     int
	Presented int
	Rebuilds  int
	LastTick  time.Duration
}

type Config struct {
	RenderPass gpu.RenderPass
	ClearColor mgl32.Vec4
	Logic      RenderLogic
	Logger     *slog.Logger
}

// Scheduler owns the semaphores and command buffers of the frame loop. At
// most one frame is in flight: every tick ends by waiting for the device to
// go idle.
type Scheduler struct {
	ctx     *gpu.Context
	surface Surface
	logger  *slog.Logger

	renderPass gpu.RenderPass
	clearColor mgl32.Vec4
	logic      RenderLogic

	sync     SyncPair
	present  Commands
	graphics Commands

	presentQueue  gpu.Queue
	graphicsQueue gpu.Queue

	stats Stats
}

// NewScheduler creates the semaphore pair and a command pool with one buffer
// for each of the present and graphics queue families. On failure the
// objects already created are destroyed.
func NewScheduler(ctx *gpu.Context, surface Surface, cfg Config) (*Scheduler, error) {
	if !ctx.HasDevice() {
		return nil, errors.New("frame scheduler needs a device")
	}

	s := &Scheduler{
		ctx:        ctx,
		surface:    surface,
		logger:     logging.OrNop(cfg.Logger),
		renderPass: cfg.RenderPass,
		clearColor: cfg.ClearColor,
		logic:      cfg.Logic,
	}
	if s.logic == nil {
		s.logic = ClearOnly{}
	}

	device := ctx.Device
	var err error

	s.sync, err = newSyncPair(device)
	if err != nil {
		return nil, err
	}

	s.present, err = newCommands(device, ctx.Families.Present)
	if err != nil {
		s.Destroy()
		return nil, err
	}

	s.graphics, err = newCommands(device, ctx.Families.Graphics)
	if err != nil {
		s.Destroy()
		return nil, err
	}

	s.presentQueue = device.GetQueue(ctx.Families.Present, 0)
	s.graphicsQueue = device.GetQueue(ctx.Families.Graphics, 0)

	return s, nil
}

// SetRenderLogic replaces the logic recorded inside the render pass. A nil
// logic clears only.
func (s *Scheduler) SetRenderLogic(logic RenderLogic) {
	if logic == nil {
		logic = ClearOnly{}
	}
	s.logic = logic
}

func (s *Scheduler) Stats() Stats {
	return s.stats
}

// Destroy releases the command buffers, pools and semaphores. The device
// must be idle.
func (s *Scheduler) Destroy() {
	device := s.ctx.Device
	s.graphics.destroy(device)
	s.present.destroy(device)
	s.sync.destroy(device)
}

// Tick runs one frame: poll events, rebuild the swapchain if a resize is
// pending, acquire an image, record, submit, present and wait for the device
// to go idle. A tick that starts always runs to completion or to an error.
func (s *Scheduler) Tick(state *RunState) error {
	start := hrtime.Now()
	s.stats.Ticks++

	s.poll(state)

	if state.ResizeWindow {
		if err := s.surface.Resize(s.renderPass); err != nil {
			return err
		}
		state.ResizeWindow = false
		s.stats.Rebuilds++
	}

	swapchain := s.surface.Swapchain()
	if swapchain == nil {
		return errors.Wrap(gpu.NewContextError(gpu.SwapchainAcquireNextImage), "window has no swapchain")
	}

	index, err := s.acquire(swapchain, state)
	if err != nil {
		return err
	}

	if err := s.record(swapchain, index); err != nil {
		return err
	}

	if err := s.submit(); err != nil {
		return err
	}

	if err := s.presentImage(swapchain, index, state); err != nil {
		return err
	}

	if err := s.ctx.WaitIdle(); err != nil {
		return err
	}

	s.stats.Presented++
	s.stats.LastTick = hrtime.Since(start)
	s.logger.Debug("frame presented",
		slog.Int("image", index),
		slog.Duration("elapsed", s.stats.LastTick),
	)
	return nil
}

func (s *Scheduler) poll(state *RunState) {
	observer, _ := s.logic.(EventObserver)

	for _, event := range s.surface.Events() {
		switch e := event.(type) {
		case window.CloseRequested:
			state.KeepRunning = false
		case window.Resized:
			s.logger.Debug("window resized", slog.Int("width", e.Width), slog.Int("height", e.Height))
			state.ResizeWindow = true
		case window.Moved, window.PointerEntered, window.PointerExited, window.PointerMoved,
			window.Scrolled, window.KeyPressed, window.KeyReleased, window.FocusGained,
			window.FocusLost, window.ButtonPressed, window.ButtonReleased:
		default:
			s.logger.Warn("unknown window event", slog.Any("event", e))
		}

		if observer != nil {
			observer.Observe(event)
		}
	}
}

func (s *Scheduler) acquire(swapchain *window.Swapchain, state *RunState) (int, error) {
	index, res, err := s.ctx.Device.AcquireNextImage(swapchain.Handle, 0, s.sync.ImageAvailable)
	if err == nil && res == gpu.Suboptimal {
		state.ResizeWindow = true
		return index, nil
	}
	if err != nil || res != gpu.Success {
		if err == nil {
			return 0, gpu.NewError(gpu.SwapchainAcquireNextImage, res)
		}
		return 0, gpu.Check(gpu.SwapchainAcquireNextImage, res, err)
	}
	if index < 0 || index >= len(swapchain.Images) {
		return 0, errors.Wrapf(gpu.NewContextError(gpu.SwapchainAcquireNextImage), "image index %d out of range", index)
	}

	return index, nil
}

func (s *Scheduler) record(swapchain *window.Swapchain, index int) error {
	device := s.ctx.Device
	buffer := s.graphics.Buffer
	image := swapchain.Images[index]

	if !image.Framebuffer.Initialized() {
		return errors.Wrapf(gpu.NewContextError(gpu.FramebufferCreation), "image %d has no framebuffer", index)
	}

	res, err := device.BeginCommandBuffer(buffer)
	if err := gpu.Check(gpu.CommandBufferRecording, res, err); err != nil {
		return err
	}

	err = device.CmdBeginRenderPass(buffer, gpu.RenderPassBeginInfo{
		RenderPass:  s.renderPass,
		Framebuffer: image.Framebuffer,
		Extent:      swapchain.Extent,
		ClearColor:  [4]float32(s.clearColor),
	})
	if err != nil {
		return gpu.Check(gpu.CommandBufferRecording, gpu.Success, err)
	}

	err = s.logic.Record(device, buffer, Target{
		RenderPass:  s.renderPass,
		Framebuffer: image.Framebuffer,
		Extent:      swapchain.Extent,
		ImageIndex:  index,
	})
	if err != nil {
		return errors.Wrap(err, "recording render logic")
	}

	device.CmdEndRenderPass(buffer)

	err = device.CmdPipelineBarrier(buffer, gpu.ImageBarrier{
		Image:     image.Image,
		OldLayout: gpu.ImageLayoutColorAttachmentOptimal,
		NewLayout: gpu.ImageLayoutPresentSrc,
		SrcAccess: gpu.AccessColorAttachmentWrite,
		DstAccess: gpu.AccessMemoryRead,
		SrcStage:  gpu.PipelineStageColorAttachmentOutput,
		DstStage:  gpu.PipelineStageBottomOfPipe,
	})
	if err != nil {
		return gpu.Check(gpu.CommandBufferRecording, gpu.Success, err)
	}

	res, err = device.EndCommandBuffer(buffer)
	return gpu.Check(gpu.CommandBufferRecording, res, err)
}

func (s *Scheduler) submit() error {
	res, err := s.ctx.Device.QueueSubmit(s.graphicsQueue, gpu.SubmitInfo{
		WaitSemaphores:   []gpu.Semaphore{s.sync.ImageAvailable},
		WaitStages:       []gpu.PipelineStage{gpu.PipelineStageColorAttachmentOutput},
		CommandBuffers:   []gpu.CommandBuffer{s.graphics.Buffer},
		SignalSemaphores: []gpu.Semaphore{s.sync.RenderFinished},
	})
	return gpu.Check(gpu.QueueSubmit, res, err)
}

func (s *Scheduler) presentImage(swapchain *window.Swapchain, index int, state *RunState) error {
	res, err := s.ctx.Device.QueuePresent(s.presentQueue, gpu.PresentInfo{
		WaitSemaphores: []gpu.Semaphore{s.sync.RenderFinished},
		Swapchain:      swapchain.Handle,
		ImageIndex:     index,
	})
	if res == gpu.Suboptimal || res == gpu.ErrorOutOfDate {
		state.ResizeWindow = true
		return nil
	}
	return gpu.Check(gpu.QueuePresent, res, err)
}
