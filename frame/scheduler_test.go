package frame_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkngwrapper/presenter/frame"
	"github.com/vkngwrapper/presenter/gpu"
	"github.com/vkngwrapper/presenter/gpu/gputest"
	"github.com/vkngwrapper/presenter/platform/platformtest"
	"github.com/vkngwrapper/presenter/window"
)

const renderPass = gpu.RenderPass(4242)

type fixture struct {
	backend   *gputest.Backend
	conn      *platformtest.Connection
	window    *window.Window
	scheduler *frame.Scheduler
	windowID  uint32
}

func newFixture(t *testing.T, backend *gputest.Backend) *fixture {
	t.Helper()

	instance, _, err := backend.CreateInstance(gpu.InstanceCreateInfo{})
	require.NoError(t, err)
	device, _, err := instance.CreateDevice(1, gpu.DeviceCreateInfo{QueueFamilies: []int{0, 1}})
	require.NoError(t, err)
	ctx := gpu.NewContext(instance, 1, device, gpu.QueueFamilies{Present: 0, Graphics: 1})

	conn := platformtest.NewConnection()
	w, err := window.New(ctx, conn, window.Options{Width: 500, Height: 500})
	require.NoError(t, err)
	require.NoError(t, w.CreateFramebuffers(renderPass))

	scheduler, err := frame.NewScheduler(ctx, w, frame.Config{
		RenderPass: renderPass,
		ClearColor: mgl32.Vec4{1, 1, 1, 1},
	})
	require.NoError(t, err)

	return &fixture{
		backend:   backend,
		conn:      conn,
		window:    w,
		scheduler: scheduler,
		windowID:  w.Native().ID(),
	}
}

func TestSingleTickWithoutEvents(t *testing.T) {
	f := newFixture(t, gputest.New())
	mark := f.backend.Mark()

	state := frame.RunState{KeepRunning: true}
	require.NoError(t, f.scheduler.Tick(&state))

	calls := f.backend.Since(mark)
	assert.Equal(t, 1, gputest.CountIn(calls, "AcquireNextImage"))
	assert.Equal(t, 1, gputest.CountIn(calls, "QueueSubmit"))
	assert.Equal(t, 1, gputest.CountIn(calls, "QueuePresent"))
	assert.Equal(t, 1, gputest.CountIn(calls, "DeviceWaitIdle"))
	assert.Equal(t, "DeviceWaitIdle", calls[len(calls)-1])
	assert.Zero(t, gputest.CountIn(calls, "CreateSwapchain"))

	assert.True(t, state.KeepRunning)
	assert.False(t, state.ResizeWindow)
	assert.Equal(t, 1, f.scheduler.Stats().Presented)
}

func TestTickOrder(t *testing.T) {
	f := newFixture(t, gputest.New())
	mark := f.backend.Mark()

	state := frame.RunState{KeepRunning: true}
	require.NoError(t, f.scheduler.Tick(&state))

	assert.Equal(t, []string{
		"AcquireNextImage",
		"BeginCommandBuffer",
		"CmdBeginRenderPass",
		"CmdEndRenderPass",
		"CmdPipelineBarrier",
		"EndCommandBuffer",
		"QueueSubmit",
		"QueuePresent",
		"DeviceWaitIdle",
	}, f.backend.Since(mark))
}

func TestTickSynchronization(t *testing.T) {
	f := newFixture(t, gputest.New())

	state := frame.RunState{KeepRunning: true}
	require.NoError(t, f.scheduler.Tick(&state))

	assert.Equal(t, []int64{0}, durations(f.backend))

	require.Len(t, f.backend.Submits, 1)
	submit := f.backend.Submits[0]
	require.Len(t, submit.WaitSemaphores, 1)
	require.Len(t, submit.SignalSemaphores, 1)
	assert.Equal(t, []gpu.PipelineStage{gpu.PipelineStageColorAttachmentOutput}, submit.WaitStages)
	assert.NotEqual(t, submit.WaitSemaphores[0], submit.SignalSemaphores[0])

	require.Len(t, f.backend.Presents, 1)
	present := f.backend.Presents[0]
	assert.Equal(t, submit.SignalSemaphores, present.WaitSemaphores)
	assert.Equal(t, f.window.Swapchain().Handle, present.Swapchain)
	assert.Equal(t, 0, present.ImageIndex)

	require.Len(t, f.backend.RenderPasses, 1)
	begin := f.backend.RenderPasses[0]
	assert.Equal(t, [4]float32{1, 1, 1, 1}, begin.ClearColor)
	assert.Equal(t, renderPass, begin.RenderPass)
	assert.Equal(t, f.window.Swapchain().Images[0].Framebuffer, begin.Framebuffer)

	require.Len(t, f.backend.Barriers, 1)
	barrier := f.backend.Barriers[0]
	assert.Equal(t, gpu.ImageLayoutColorAttachmentOptimal, barrier.OldLayout)
	assert.Equal(t, gpu.ImageLayoutPresentSrc, barrier.NewLayout)
	assert.Equal(t, f.window.Swapchain().Images[0].Image, barrier.Image)
}

func durations(b *gputest.Backend) []int64 {
	var out []int64
	for _, d := range b.Acquires {
		out = append(out, int64(d))
	}
	return out
}

func TestCloseRequestFinishesTick(t *testing.T) {
	f := newFixture(t, gputest.New())
	f.conn.Queue(platformtest.CloseRequested(f.windowID))
	mark := f.backend.Mark()

	state := frame.RunState{KeepRunning: true}
	require.NoError(t, f.scheduler.Tick(&state))

	assert.False(t, state.KeepRunning)
	assert.Equal(t, 1, f.backend.Count("QueuePresent"))
	assert.Equal(t, "DeviceWaitIdle", f.backend.Since(mark)[len(f.backend.Since(mark))-1])
}

func TestManyResizeEventsRebuildOnce(t *testing.T) {
	f := newFixture(t, gputest.New())
	f.conn.Queue(
		platformtest.Resized(f.windowID, 600, 600),
		platformtest.Resized(f.windowID, 700, 600),
		platformtest.Resized(f.windowID, 800, 600),
	)
	mark := f.backend.Mark()

	state := frame.RunState{KeepRunning: true}
	require.NoError(t, f.scheduler.Tick(&state))

	calls := f.backend.Since(mark)
	assert.Equal(t, 1, gputest.CountIn(calls, "CreateSwapchain"))
	assert.Equal(t, 1, f.scheduler.Stats().Rebuilds)
	assert.False(t, state.ResizeWindow)

	// The rebuild happens before the image is acquired.
	created, acquired := -1, -1
	for i, c := range calls {
		if c == "CreateSwapchain" {
			created = i
		}
		if c == "AcquireNextImage" {
			acquired = i
		}
	}
	assert.Less(t, created, acquired)
}

func TestResizeEventAndSuboptimalRebuildTwice(t *testing.T) {
	backend := gputest.New()
	f := newFixture(t, backend)
	f.conn.Queue(platformtest.Resized(f.windowID, 640, 480))
	backend.AcquireResults = []gpu.Result{gpu.Suboptimal}
	mark := backend.Mark()

	state := frame.RunState{KeepRunning: true}
	require.NoError(t, f.scheduler.Tick(&state))
	assert.Equal(t, 1, gputest.CountIn(backend.Since(mark), "CreateSwapchain"))
	assert.True(t, state.ResizeWindow)
	assert.Equal(t, 1, gputest.CountIn(backend.Since(mark), "QueuePresent"))

	require.NoError(t, f.scheduler.Tick(&state))
	assert.Equal(t, 2, gputest.CountIn(backend.Since(mark), "CreateSwapchain"))
	assert.False(t, state.ResizeWindow)
	assert.Equal(t, 2, f.scheduler.Stats().Rebuilds)
}

func TestAcquireFailureIsFatal(t *testing.T) {
	for _, res := range []gpu.Result{gpu.NotReady, gpu.ErrorOutOfDate, gpu.ErrorSurfaceLost} {
		t.Run(res.String(), func(t *testing.T) {
			backend := gputest.New()
			f := newFixture(t, backend)
			backend.AcquireResults = []gpu.Result{res}

			state := frame.RunState{KeepRunning: true}
			err := f.scheduler.Tick(&state)
			require.Error(t, err)

			ctx, ok := gpu.ContextOf(err)
			require.True(t, ok)
			assert.Equal(t, gpu.SwapchainAcquireNextImage, ctx)
			got, ok := gpu.ResultOf(err)
			require.True(t, ok)
			assert.Equal(t, res, got)
			assert.Zero(t, backend.Count("QueueSubmit"))
		})
	}
}

func TestPresentOutOfDateRequestsResize(t *testing.T) {
	for _, res := range []gpu.Result{gpu.Suboptimal, gpu.ErrorOutOfDate} {
		t.Run(res.String(), func(t *testing.T) {
			backend := gputest.New()
			f := newFixture(t, backend)
			backend.PresentResults = []gpu.Result{res}

			state := frame.RunState{KeepRunning: true}
			require.NoError(t, f.scheduler.Tick(&state))
			assert.True(t, state.ResizeWindow)
		})
	}
}

func TestPresentFailureIsFatal(t *testing.T) {
	backend := gputest.New()
	f := newFixture(t, backend)
	backend.PresentResults = []gpu.Result{gpu.ErrorDeviceLost}

	state := frame.RunState{KeepRunning: true}
	err := f.scheduler.Tick(&state)
	require.Error(t, err)
	assert.Equal(t, "QueuePresent failed with VK_ERROR_DEVICE_LOST", err.Error())
}

func TestMissingFramebufferFailsTick(t *testing.T) {
	backend := gputest.New()
	f := newFixture(t, backend)
	backend.Fail("CreateFramebuffer", gpu.ErrorOutOfDeviceMemory)
	require.NoError(t, f.window.CreateFramebuffers(renderPass))

	state := frame.RunState{KeepRunning: true}
	err := f.scheduler.Tick(&state)
	require.Error(t, err)

	ctx, ok := gpu.ContextOf(err)
	require.True(t, ok)
	assert.Equal(t, gpu.FramebufferCreation, ctx)
	assert.Zero(t, backend.Count("QueueSubmit"))
}

type recordingLogic struct {
	targets []frame.Target
	events  []window.Event
}

func (l *recordingLogic) Record(device gpu.DeviceDriver, buffer gpu.CommandBuffer, target frame.Target) error {
	l.targets = append(l.targets, target)
	device.CmdDraw(buffer, 3, 1)
	return nil
}

func (l *recordingLogic) Observe(event window.Event) {
	l.events = append(l.events, event)
}

func TestRenderLogicRecordsInsideRenderPass(t *testing.T) {
	backend := gputest.New()
	f := newFixture(t, backend)
	logic := &recordingLogic{}
	f.scheduler.SetRenderLogic(logic)
	f.conn.Queue(platformtest.Moved(f.windowID, 50, 60))
	mark := backend.Mark()

	state := frame.RunState{KeepRunning: true}
	require.NoError(t, f.scheduler.Tick(&state))

	calls := backend.Since(mark)
	assert.Equal(t, []string{"CmdBeginRenderPass", "CmdDraw", "CmdEndRenderPass"}, calls[2:5])

	require.Len(t, logic.targets, 1)
	assert.Equal(t, renderPass, logic.targets[0].RenderPass)
	assert.Equal(t, gpu.Extent2D{Width: 500, Height: 500}, logic.targets[0].Extent)
	assert.Equal(t, []window.Event{window.Moved{X: 50, Y: 60}}, logic.events)
}

func TestNewSchedulerReleasesOnFailure(t *testing.T) {
	backend := gputest.New()
	instance, _, err := backend.CreateInstance(gpu.InstanceCreateInfo{})
	require.NoError(t, err)
	device, _, err := instance.CreateDevice(1, gpu.DeviceCreateInfo{})
	require.NoError(t, err)
	ctx := gpu.NewContext(instance, 1, device, gpu.QueueFamilies{Present: 0, Graphics: 1})

	backend.FailAfter("AllocateCommandBuffers", 1, gpu.ErrorOutOfHostMemory)
	_, err = frame.NewScheduler(ctx, nil, frame.Config{RenderPass: renderPass})
	require.Error(t, err)
	assert.Equal(t, "AllocateCommandBuffers failed with VK_ERROR_OUT_OF_HOST_MEMORY", err.Error())

	live := backend.Live()
	assert.Zero(t, live["Semaphore"])
	assert.Zero(t, live["CommandPool"])
	assert.Zero(t, live["CommandBuffer"])
}

func TestDestroyReleasesSyncAndCommands(t *testing.T) {
	backend := gputest.New()
	f := newFixture(t, backend)

	f.scheduler.Destroy()

	live := backend.Live()
	assert.Zero(t, live["Semaphore"])
	assert.Zero(t, live["CommandPool"])
	assert.Zero(t, live["CommandBuffer"])
	assert.Equal(t, 2, backend.Count("DestroyCommandPool"))
	assert.Equal(t, 2, backend.Count("DestroySemaphore"))
}
