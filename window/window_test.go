package window_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkngwrapper/presenter/gpu"
	"github.com/vkngwrapper/presenter/gpu/gputest"
	"github.com/vkngwrapper/presenter/platform/platformtest"
	"github.com/vkngwrapper/presenter/window"
)

const renderPass = gpu.RenderPass(777)

func newDeviceContext(t *testing.T, backend *gputest.Backend) *gpu.Context {
	t.Helper()

	instance, _, err := backend.CreateInstance(gpu.InstanceCreateInfo{})
	require.NoError(t, err)
	device, _, err := instance.CreateDevice(1, gpu.DeviceCreateInfo{QueueFamilies: []int{0, 1}})
	require.NoError(t, err)

	return gpu.NewContext(instance, 1, device, gpu.QueueFamilies{Present: 0, Graphics: 1})
}

func newWindow(t *testing.T, backend *gputest.Backend) (*window.Window, *platformtest.Connection) {
	t.Helper()

	conn := platformtest.NewConnection()
	w, err := window.New(newDeviceContext(t, backend), conn, window.Options{Title: "test", Width: 500, Height: 500})
	require.NoError(t, err)
	return w, conn
}

func only(calls []string, ops ...string) []string {
	keep := map[string]bool{}
	for _, op := range ops {
		keep[op] = true
	}

	var out []string
	for _, c := range calls {
		if keep[c] {
			out = append(out, c)
		}
	}
	return out
}

func TestNewBuildsInitialSwapchain(t *testing.T) {
	backend := gputest.New()
	w, conn := newWindow(t, backend)

	swapchain := w.Swapchain()
	require.NotNil(t, swapchain)
	assert.Len(t, swapchain.Images, 3)
	assert.Equal(t, gpu.Extent2D{Width: 500, Height: 500}, swapchain.Extent)
	assert.Equal(t, gpu.FormatB8G8R8A8SRGB, swapchain.Format.Format)

	require.Len(t, backend.SwapchainInfos, 1)
	info := backend.SwapchainInfos[0]
	assert.Equal(t, 3, info.MinImageCount)
	assert.Equal(t, []int{1, 0}, info.QueueFamilies)
	assert.False(t, info.OldSwapchain.Initialized())
	assert.Equal(t, gpu.PresentModeFIFO, info.PresentMode)

	require.Len(t, conn.Windows, 1)
	assert.False(t, conn.Windows[0].Options.Hidden)
}

func TestProbeWindowHasNoSwapchain(t *testing.T) {
	backend := gputest.New()
	instance, _, err := backend.CreateInstance(gpu.InstanceCreateInfo{})
	require.NoError(t, err)

	conn := platformtest.NewConnection()
	w, err := window.New(gpu.NewProbeContext(instance), conn, window.Options{Width: 100, Height: 100})
	require.NoError(t, err)

	assert.Nil(t, w.Swapchain())
	assert.True(t, conn.Windows[0].Options.Hidden)
	assert.Zero(t, backend.Count("CreateSwapchain"))

	mark := backend.Mark()
	require.NoError(t, w.Destroy())
	assert.Equal(t, []string{"DestroySurface"}, backend.Since(mark))
	assert.True(t, conn.Windows[0].Destroyed)
}

func TestCreateFramebuffersFillsEverySlot(t *testing.T) {
	backend := gputest.New()
	w, _ := newWindow(t, backend)

	require.NoError(t, w.CreateFramebuffers(renderPass))
	for i, image := range w.Swapchain().Images {
		assert.True(t, image.View.Initialized(), "view %d", i)
		assert.True(t, image.Framebuffer.Initialized(), "framebuffer %d", i)
	}

	// Rebuilding replaces the previous resources instead of leaking them.
	require.NoError(t, w.CreateFramebuffers(renderPass))
	live := backend.Live()
	assert.Equal(t, 3, live["ImageView"])
	assert.Equal(t, 3, live["Framebuffer"])
}

func TestCreateFramebuffersFailureLeavesNullSlot(t *testing.T) {
	backend := gputest.New()
	w, _ := newWindow(t, backend)
	backend.FailAfter("CreateFramebuffer", 1, gpu.ErrorOutOfDeviceMemory)

	require.NoError(t, w.CreateFramebuffers(renderPass))

	images := w.Swapchain().Images
	require.Len(t, images, 3)
	assert.True(t, images[0].Framebuffer.Initialized())
	assert.False(t, images[1].Framebuffer.Initialized())
	assert.False(t, images[1].View.Initialized())
	assert.True(t, images[2].Framebuffer.Initialized())
	assert.Equal(t, 2, backend.Live()["ImageView"])
}

func TestResizeOrder(t *testing.T) {
	backend := gputest.New()
	w, _ := newWindow(t, backend)
	require.NoError(t, w.CreateFramebuffers(renderPass))
	first := w.Swapchain().Handle

	mark := backend.Mark()
	require.NoError(t, w.Resize(renderPass))

	calls := only(backend.Since(mark),
		"DestroyFramebuffer", "DestroyImageView", "CreateSwapchain", "DestroySwapchain",
		"SwapchainImages", "CreateImageView", "CreateFramebuffer", "DeviceWaitIdle",
	)
	assert.Equal(t, []string{
		"DestroyFramebuffer", "DestroyFramebuffer", "DestroyFramebuffer",
		"DestroyImageView", "DestroyImageView", "DestroyImageView",
		"CreateSwapchain",
		"DestroySwapchain",
		"SwapchainImages",
		"CreateImageView", "CreateFramebuffer",
		"CreateImageView", "CreateFramebuffer",
		"CreateImageView", "CreateFramebuffer",
		"DeviceWaitIdle",
	}, calls)

	require.Len(t, backend.SwapchainInfos, 2)
	assert.Equal(t, first, backend.SwapchainInfos[1].OldSwapchain)
	assert.NotEqual(t, first, w.Swapchain().Handle)
}

func TestSequencesMatchImageCountAcrossGenerations(t *testing.T) {
	backend := gputest.New()
	w, _ := newWindow(t, backend)
	require.NoError(t, w.CreateFramebuffers(renderPass))

	for _, count := range []int{2, 5, 3} {
		backend.ImageCount = count
		require.NoError(t, w.Resize(renderPass))

		images := w.Swapchain().Images
		require.Len(t, images, count)
		for _, image := range images {
			assert.True(t, image.Image.Initialized())
			assert.True(t, image.View.Initialized())
			assert.True(t, image.Framebuffer.Initialized())
		}

		live := backend.Live()
		assert.Equal(t, count, live["ImageView"])
		assert.Equal(t, count, live["Framebuffer"])
		assert.Equal(t, 1, live["Swapchain"])
	}
}

func TestSwapchainFailureKeepsPredecessor(t *testing.T) {
	backend := gputest.New()
	w, _ := newWindow(t, backend)
	first := w.Swapchain().Handle
	backend.Fail("CreateSwapchain", gpu.ErrorOutOfDate)

	err := w.Resize(renderPass)
	require.Error(t, err)
	assert.Equal(t, "CreateSwapchain failed with VK_ERROR_OUT_OF_DATE_KHR", err.Error())

	assert.Zero(t, backend.Count("DestroySwapchain"))
	require.NotNil(t, w.Swapchain())
	assert.Equal(t, first, w.Swapchain().Handle)
}

func TestUndefinedExtentUsesClampedWindowSize(t *testing.T) {
	backend := gputest.New()
	backend.Capabilities.CurrentExtent = gpu.Extent2D{Width: gpu.UndefinedExtentSize, Height: gpu.UndefinedExtentSize}
	backend.Capabilities.MaxImageExtent = gpu.Extent2D{Width: 400, Height: 400}

	conn := platformtest.NewConnection()
	w, err := window.New(newDeviceContext(t, backend), conn, window.Options{Width: 500, Height: 300})
	require.NoError(t, err)

	assert.Equal(t, gpu.Extent2D{Width: 400, Height: 300}, w.Swapchain().Extent)
}

func TestImageCountClampedToMaximum(t *testing.T) {
	backend := gputest.New()
	backend.Capabilities.MinImageCount = 3
	backend.Capabilities.MaxImageCount = 3

	newWindow(t, backend)
	assert.Equal(t, 3, backend.SwapchainInfos[0].MinImageCount)
}

func TestDestroyReleasesEverything(t *testing.T) {
	backend := gputest.New()
	w, conn := newWindow(t, backend)
	require.NoError(t, w.CreateFramebuffers(renderPass))

	require.NoError(t, w.Destroy())

	live := backend.Live()
	assert.Zero(t, live["Framebuffer"])
	assert.Zero(t, live["ImageView"])
	assert.Zero(t, live["Swapchain"])
	assert.Zero(t, live["Surface"])
	assert.True(t, conn.Windows[0].Destroyed)

	calls := only(backend.Calls(), "DestroyFramebuffer", "DestroyImageView", "DestroySwapchain", "DestroySurface")
	assert.Equal(t, "DestroySurface", calls[len(calls)-1])
	assert.Equal(t, "DestroySwapchain", calls[len(calls)-2])
}

func TestNewReleasesOnSwapchainFailure(t *testing.T) {
	backend := gputest.New()
	backend.Fail("CreateSwapchain", gpu.ErrorInitializationFailed)

	conn := platformtest.NewConnection()
	_, err := window.New(newDeviceContext(t, backend), conn, window.Options{Width: 500, Height: 500})
	require.Error(t, err)

	ctx, ok := gpu.ContextOf(err)
	require.True(t, ok)
	assert.Equal(t, gpu.SwapchainCreation, ctx)
	assert.Zero(t, backend.Live()["Surface"])
	assert.True(t, conn.Windows[0].Destroyed)
}

func TestNewReleasesOnSurfaceFailure(t *testing.T) {
	backend := gputest.New()
	backend.Fail("CreateSurface", gpu.ErrorNativeWindowInUse)

	conn := platformtest.NewConnection()
	_, err := window.New(newDeviceContext(t, backend), conn, window.Options{Width: 500, Height: 500})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SurfaceCreation failed with VK_ERROR_NATIVE_WINDOW_IN_USE_KHR")
	assert.True(t, conn.Windows[0].Destroyed)
	assert.Zero(t, backend.Count("DestroySurface"))
}
