package gpu

import (
	"time"

	"github.com/vkngwrapper/presenter/platform"
)

// Loader is the global entry point of a GPU backend: it answers queries that
// need no instance and creates instances.
type Loader interface {
	InstanceLayers() ([]LayerProperties, Result, error)

	// InstanceExtensions lists the extensions provided by layer, or by the
	// implementation and implicit layers when layer is empty.
	InstanceExtensions(layer string) ([]ExtensionProperties, Result, error)

	CreateInstance(info InstanceCreateInfo) (InstanceDriver, Result, error)
}

// InstanceDriver exposes the instance-level calls: physical devices, surfaces
// and device creation.
type InstanceDriver interface {
	EnumeratePhysicalDevices() ([]PhysicalDevice, Result, error)
	PhysicalDeviceProperties(device PhysicalDevice) (PhysicalDeviceProperties, error)
	QueueFamilyProperties(device PhysicalDevice) []QueueFamilyProperties
	DeviceLayers(device PhysicalDevice) ([]LayerProperties, Result, error)
	DeviceExtensions(device PhysicalDevice) ([]ExtensionProperties, Result, error)

	CreateSurface(window platform.Window) (Surface, Result, error)
	DestroySurface(surface Surface)
	SurfaceSupport(device PhysicalDevice, surface Surface, queueFamily int) (bool, Result, error)
	SurfaceCapabilities(device PhysicalDevice, surface Surface) (SurfaceCapabilities, Result, error)
	SurfaceFormats(device PhysicalDevice, surface Surface) ([]SurfaceFormat, Result, error)
	SurfacePresentModes(device PhysicalDevice, surface Surface) ([]PresentMode, Result, error)

	CreateDevice(device PhysicalDevice, info DeviceCreateInfo) (DeviceDriver, Result, error)
	DestroyInstance()
}

// DeviceDriver exposes the logical-device calls used by the presentation
// loop.
type DeviceDriver interface {
	DeviceWaitIdle() (Result, error)
	DestroyDevice()
	GetQueue(queueFamily, index int) Queue

	CreateSwapchain(info SwapchainCreateInfo) (Swapchain, Result, error)
	DestroySwapchain(swapchain Swapchain)
	SwapchainImages(swapchain Swapchain) ([]Image, Result, error)
	AcquireNextImage(swapchain Swapchain, timeout time.Duration, signal Semaphore) (int, Result, error)
	QueuePresent(queue Queue, info PresentInfo) (Result, error)

	CreateImageView(image Image, format Format) (ImageView, Result, error)
	DestroyImageView(view ImageView)
	CreateFramebuffer(info FramebufferCreateInfo) (Framebuffer, Result, error)
	DestroyFramebuffer(framebuffer Framebuffer)
	CreateRenderPass(info RenderPassCreateInfo) (RenderPass, Result, error)
	DestroyRenderPass(renderPass RenderPass)

	CreateSemaphore() (Semaphore, Result, error)
	DestroySemaphore(semaphore Semaphore)

	CreateCommandPool(queueFamily int) (CommandPool, Result, error)
	DestroyCommandPool(pool CommandPool)
	AllocateCommandBuffers(pool CommandPool, count int) ([]CommandBuffer, Result, error)
	FreeCommandBuffers(pool CommandPool, buffers []CommandBuffer)

	BeginCommandBuffer(buffer CommandBuffer) (Result, error)
	EndCommandBuffer(buffer CommandBuffer) (Result, error)
	CmdBeginRenderPass(buffer CommandBuffer, info RenderPassBeginInfo) error
	CmdEndRenderPass(buffer CommandBuffer)
	CmdPipelineBarrier(buffer CommandBuffer, barrier ImageBarrier) error
	CmdBindGraphicsPipeline(buffer CommandBuffer, pipeline Pipeline)

	// CmdSetViewport sets the viewport and scissor to cover extent.
	CmdSetViewport(buffer CommandBuffer, extent Extent2D)
	CmdDraw(buffer CommandBuffer, vertexCount, instanceCount int)
	QueueSubmit(queue Queue, info SubmitInfo) (Result, error)

	CreateShaderModule(code []uint32) (ShaderModule, Result, error)
	DestroyShaderModule(module ShaderModule)
	CreatePipelineLayout() (PipelineLayout, Result, error)
	DestroyPipelineLayout(layout PipelineLayout)
	CreateGraphicsPipeline(info GraphicsPipelineCreateInfo) (Pipeline, Result, error)
	DestroyPipeline(pipeline Pipeline)
}
