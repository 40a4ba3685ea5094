// Package gputest provides an instrumented in-memory GPU backend. Every call
// is recorded by name, in order, so tests can assert on the exact sequence of
// GPU operations.
package gputest

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/vkngwrapper/presenter/gpu"
	"github.com/vkngwrapper/presenter/platform"
)

// Device is a physical device reported by the fake backend.
type Device struct {
	Properties     gpu.PhysicalDeviceProperties
	QueueFamilies  []gpu.QueueFamilyProperties
	PresentSupport []bool
	Extensions     []string
}

// Backend implements gpu.Loader, gpu.InstanceDriver and gpu.DeviceDriver.
type Backend struct {
	Layers       []gpu.LayerProperties
	Extensions   []gpu.ExtensionProperties
	Devices      []Device
	Capabilities gpu.SurfaceCapabilities
	Formats      []gpu.SurfaceFormat
	PresentModes []gpu.PresentMode
	ImageCount   int

	// AcquireResults and PresentResults are consumed one per call. Once
	// exhausted, calls succeed.
	AcquireResults []gpu.Result
	PresentResults []gpu.Result

	SwapchainInfos []gpu.SwapchainCreateInfo
	DeviceInfos    []gpu.DeviceCreateInfo
	InstanceInfos  []gpu.InstanceCreateInfo
	Submits        []gpu.SubmitInfo
	Presents       []gpu.PresentInfo
	Barriers       []gpu.ImageBarrier
	RenderPasses   []gpu.RenderPassBeginInfo
	Acquires       []time.Duration

	calls      []string
	failures   map[string]*failure
	live       map[uint64]string
	nextHandle uint64
	nextImage  int
}

type failure struct {
	skip   int
	result gpu.Result
}

var _ gpu.Loader = (*Backend)(nil)
var _ gpu.InstanceDriver = (*Backend)(nil)
var _ gpu.DeviceDriver = (*Backend)(nil)

// New returns a backend with one discrete GPU exposing two graphics queue
// families that can both present, a single B8G8R8A8 sRGB format, FIFO
// presentation and three swapchain images.
func New() *Backend {
	return &Backend{
		Layers: []gpu.LayerProperties{
			{Name: "VK_LAYER_KHRONOS_validation", Description: "Khronos validation layer"},
		},
		Extensions: []gpu.ExtensionProperties{
			{Name: "VK_KHR_surface"},
			{Name: "VK_EXT_debug_utils"},
		},
		Devices: []Device{
			{
				Properties: gpu.PhysicalDeviceProperties{
					Name: "Fake GPU",
					Type: gpu.PhysicalDeviceTypeDiscreteGPU,
				},
				QueueFamilies: []gpu.QueueFamilyProperties{
					{Flags: gpu.QueueGraphics | gpu.QueueTransfer, QueueCount: 1},
					{Flags: gpu.QueueGraphics | gpu.QueueCompute, QueueCount: 1},
				},
				PresentSupport: []bool{true, true},
				Extensions:     []string{"VK_KHR_swapchain"},
			},
		},
		Capabilities: gpu.SurfaceCapabilities{
			MinImageCount:    2,
			MaxImageCount:    8,
			CurrentExtent:    gpu.Extent2D{Width: 500, Height: 500},
			MinImageExtent:   gpu.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:   gpu.Extent2D{Width: 4096, Height: 4096},
			CurrentTransform: gpu.SurfaceTransformIdentity,
		},
		Formats: []gpu.SurfaceFormat{
			{Format: gpu.FormatB8G8R8A8SRGB, ColorSpace: gpu.ColorSpaceSRGBNonlinear},
		},
		PresentModes: []gpu.PresentMode{gpu.PresentModeFIFO},
		ImageCount:   3,
		failures:     map[string]*failure{},
		live:         map[uint64]string{},
	}
}

// Fail makes the next call to op fail with res.
func (b *Backend) Fail(op string, res gpu.Result) {
	b.FailAfter(op, 0, res)
}

// FailAfter lets skip calls to op succeed, then fails the following one with
// res.
func (b *Backend) FailAfter(op string, skip int, res gpu.Result) {
	b.failures[op] = &failure{skip: skip, result: res}
}

// Calls returns every recorded call in order.
func (b *Backend) Calls() []string {
	return append([]string(nil), b.calls...)
}

// Mark returns a position in the call log for use with Since.
func (b *Backend) Mark() int {
	return len(b.calls)
}

// Since returns the calls recorded after mark.
func (b *Backend) Since(mark int) []string {
	return append([]string(nil), b.calls[mark:]...)
}

// Count returns how many times op was called.
func (b *Backend) Count(op string) int {
	return CountIn(b.calls, op)
}

// CountIn returns how many times op appears in calls.
func CountIn(calls []string, op string) int {
	n := 0
	for _, c := range calls {
		if c == op {
			n++
		}
	}
	return n
}

// Live returns the number of created-but-not-destroyed objects per kind.
func (b *Backend) Live() map[string]int {
	out := map[string]int{}
	for _, kind := range b.live {
		out[kind]++
	}
	return out
}

func (b *Backend) record(op string) gpu.Result {
	b.calls = append(b.calls, op)

	f, ok := b.failures[op]
	if !ok {
		return gpu.Success
	}
	if f.skip > 0 {
		f.skip--
		return gpu.Success
	}
	delete(b.failures, op)
	return f.result
}

func (b *Backend) create(kind string) uint64 {
	b.nextHandle++
	b.live[b.nextHandle] = kind
	return b.nextHandle
}

func (b *Backend) destroy(handle uint64) {
	delete(b.live, handle)
}

func failed(op string, res gpu.Result) error {
	return errors.Newf("gputest: %s returned %s", op, res)
}

// Loader

func (b *Backend) InstanceLayers() ([]gpu.LayerProperties, gpu.Result, error) {
	if res := b.record("InstanceLayers"); res.IsError() {
		return nil, res, failed("InstanceLayers", res)
	}
	return b.Layers, gpu.Success, nil
}

func (b *Backend) InstanceExtensions(layer string) ([]gpu.ExtensionProperties, gpu.Result, error) {
	if res := b.record("InstanceExtensions"); res.IsError() {
		return nil, res, failed("InstanceExtensions", res)
	}
	if layer != "" {
		return nil, gpu.Success, nil
	}
	return b.Extensions, gpu.Success, nil
}

func (b *Backend) CreateInstance(info gpu.InstanceCreateInfo) (gpu.InstanceDriver, gpu.Result, error) {
	if res := b.record("CreateInstance"); res.IsError() {
		return nil, res, failed("CreateInstance", res)
	}
	b.InstanceInfos = append(b.InstanceInfos, info)
	b.live[0] = "Instance"
	return b, gpu.Success, nil
}

// InstanceDriver

func (b *Backend) device(handle gpu.PhysicalDevice) Device {
	return b.Devices[int(handle)-1]
}

func (b *Backend) EnumeratePhysicalDevices() ([]gpu.PhysicalDevice, gpu.Result, error) {
	if res := b.record("EnumeratePhysicalDevices"); res.IsError() {
		return nil, res, failed("EnumeratePhysicalDevices", res)
	}
	devices := make([]gpu.PhysicalDevice, len(b.Devices))
	for i := range b.Devices {
		devices[i] = gpu.PhysicalDevice(i + 1)
	}
	return devices, gpu.Success, nil
}

func (b *Backend) PhysicalDeviceProperties(device gpu.PhysicalDevice) (gpu.PhysicalDeviceProperties, error) {
	b.record("PhysicalDeviceProperties")
	return b.device(device).Properties, nil
}

func (b *Backend) QueueFamilyProperties(device gpu.PhysicalDevice) []gpu.QueueFamilyProperties {
	b.record("QueueFamilyProperties")
	return b.device(device).QueueFamilies
}

func (b *Backend) DeviceLayers(device gpu.PhysicalDevice) ([]gpu.LayerProperties, gpu.Result, error) {
	b.record("DeviceLayers")
	return nil, gpu.Success, nil
}

func (b *Backend) DeviceExtensions(device gpu.PhysicalDevice) ([]gpu.ExtensionProperties, gpu.Result, error) {
	if res := b.record("DeviceExtensions"); res.IsError() {
		return nil, res, failed("DeviceExtensions", res)
	}
	var out []gpu.ExtensionProperties
	for _, name := range b.device(device).Extensions {
		out = append(out, gpu.ExtensionProperties{Name: name})
	}
	return out, gpu.Success, nil
}

func (b *Backend) CreateSurface(window platform.Window) (gpu.Surface, gpu.Result, error) {
	if res := b.record("CreateSurface"); res.IsError() {
		return 0, res, failed("CreateSurface", res)
	}
	return gpu.Surface(b.create("Surface")), gpu.Success, nil
}

func (b *Backend) DestroySurface(surface gpu.Surface) {
	b.record("DestroySurface")
	b.destroy(uint64(surface))
}

func (b *Backend) SurfaceSupport(device gpu.PhysicalDevice, surface gpu.Surface, queueFamily int) (bool, gpu.Result, error) {
	if res := b.record("SurfaceSupport"); res.IsError() {
		return false, res, failed("SurfaceSupport", res)
	}
	support := b.device(device).PresentSupport
	return queueFamily < len(support) && support[queueFamily], gpu.Success, nil
}

func (b *Backend) SurfaceCapabilities(device gpu.PhysicalDevice, surface gpu.Surface) (gpu.SurfaceCapabilities, gpu.Result, error) {
	if res := b.record("SurfaceCapabilities"); res.IsError() {
		return gpu.SurfaceCapabilities{}, res, failed("SurfaceCapabilities", res)
	}
	return b.Capabilities, gpu.Success, nil
}

func (b *Backend) SurfaceFormats(device gpu.PhysicalDevice, surface gpu.Surface) ([]gpu.SurfaceFormat, gpu.Result, error) {
	if res := b.record("SurfaceFormats"); res.IsError() {
		return nil, res, failed("SurfaceFormats", res)
	}
	return b.Formats, gpu.Success, nil
}

func (b *Backend) SurfacePresentModes(device gpu.PhysicalDevice, surface gpu.Surface) ([]gpu.PresentMode, gpu.Result, error) {
	if res := b.record("SurfacePresentModes"); res.IsError() {
		return nil, res, failed("SurfacePresentModes", res)
	}
	return b.PresentModes, gpu.Success, nil
}

func (b *Backend) CreateDevice(device gpu.PhysicalDevice, info gpu.DeviceCreateInfo) (gpu.DeviceDriver, gpu.Result, error) {
	if res := b.record("CreateDevice"); res.IsError() {
		return nil, res, failed("CreateDevice", res)
	}
	b.DeviceInfos = append(b.DeviceInfos, info)
	b.live[^uint64(0)] = "Device"
	return b, gpu.Success, nil
}

func (b *Backend) DestroyInstance() {
	b.record("DestroyInstance")
	delete(b.live, 0)
}

// DeviceDriver

func (b *Backend) DeviceWaitIdle() (gpu.Result, error) {
	if res := b.record("DeviceWaitIdle"); res.IsError() {
		return res, failed("DeviceWaitIdle", res)
	}
	return gpu.Success, nil
}

func (b *Backend) DestroyDevice() {
	b.record("DestroyDevice")
	delete(b.live, ^uint64(0))
}

func (b *Backend) GetQueue(queueFamily, index int) gpu.Queue {
	b.record("GetQueue")
	return gpu.Queue(1000 + queueFamily)
}

func (b *Backend) CreateSwapchain(info gpu.SwapchainCreateInfo) (gpu.Swapchain, gpu.Result, error) {
	if res := b.record("CreateSwapchain"); res.IsError() {
		return 0, res, failed("CreateSwapchain", res)
	}
	b.SwapchainInfos = append(b.SwapchainInfos, info)
	return gpu.Swapchain(b.create("Swapchain")), gpu.Success, nil
}

func (b *Backend) DestroySwapchain(swapchain gpu.Swapchain) {
	b.record("DestroySwapchain")
	b.destroy(uint64(swapchain))
}

func (b *Backend) SwapchainImages(swapchain gpu.Swapchain) ([]gpu.Image, gpu.Result, error) {
	if res := b.record("SwapchainImages"); res.IsError() {
		return nil, res, failed("SwapchainImages", res)
	}
	images := make([]gpu.Image, b.ImageCount)
	for i := range images {
		// Swapchain images belong to the presentation engine, so they are
		// not tracked as live objects.
		b.nextHandle++
		images[i] = gpu.Image(b.nextHandle)
	}
	return images, gpu.Success, nil
}

func (b *Backend) AcquireNextImage(swapchain gpu.Swapchain, timeout time.Duration, signal gpu.Semaphore) (int, gpu.Result, error) {
	res := b.record("AcquireNextImage")
	b.Acquires = append(b.Acquires, timeout)
	if res == gpu.Success && len(b.AcquireResults) > 0 {
		res = b.AcquireResults[0]
		b.AcquireResults = b.AcquireResults[1:]
	}
	if res.IsError() {
		return 0, res, failed("AcquireNextImage", res)
	}
	if res != gpu.Success && res != gpu.Suboptimal {
		return 0, res, nil
	}

	index := b.nextImage % b.ImageCount
	b.nextImage++
	return index, res, nil
}

func (b *Backend) QueuePresent(queue gpu.Queue, info gpu.PresentInfo) (gpu.Result, error) {
	res := b.record("QueuePresent")
	b.Presents = append(b.Presents, info)
	if res == gpu.Success && len(b.PresentResults) > 0 {
		res = b.PresentResults[0]
		b.PresentResults = b.PresentResults[1:]
	}
	if res.IsError() {
		return res, failed("QueuePresent", res)
	}
	return res, nil
}

func (b *Backend) CreateImageView(image gpu.Image, format gpu.Format) (gpu.ImageView, gpu.Result, error) {
	if res := b.record("CreateImageView"); res.IsError() {
		return 0, res, failed("CreateImageView", res)
	}
	return gpu.ImageView(b.create("ImageView")), gpu.Success, nil
}

func (b *Backend) DestroyImageView(view gpu.ImageView) {
	b.record("DestroyImageView")
	b.destroy(uint64(view))
}

func (b *Backend) CreateFramebuffer(info gpu.FramebufferCreateInfo) (gpu.Framebuffer, gpu.Result, error) {
	if res := b.record("CreateFramebuffer"); res.IsError() {
		return 0, res, failed("CreateFramebuffer", res)
	}
	return gpu.Framebuffer(b.create("Framebuffer")), gpu.Success, nil
}

func (b *Backend) DestroyFramebuffer(framebuffer gpu.Framebuffer) {
	b.record("DestroyFramebuffer")
	b.destroy(uint64(framebuffer))
}

func (b *Backend) CreateRenderPass(info gpu.RenderPassCreateInfo) (gpu.RenderPass, gpu.Result, error) {
	if res := b.record("CreateRenderPass"); res.IsError() {
		return 0, res, failed("CreateRenderPass", res)
	}
	return gpu.RenderPass(b.create("RenderPass")), gpu.Success, nil
}

func (b *Backend) DestroyRenderPass(renderPass gpu.RenderPass) {
	b.record("DestroyRenderPass")
	b.destroy(uint64(renderPass))
}

func (b *Backend) CreateSemaphore() (gpu.Semaphore, gpu.Result, error) {
	if res := b.record("CreateSemaphore"); res.IsError() {
		return 0, res, failed("CreateSemaphore", res)
	}
	return gpu.Semaphore(b.create("Semaphore")), gpu.Success, nil
}

func (b *Backend) DestroySemaphore(semaphore gpu.Semaphore) {
	b.record("DestroySemaphore")
	b.destroy(uint64(semaphore))
}

func (b *Backend) CreateCommandPool(queueFamily int) (gpu.CommandPool, gpu.Result, error) {
	if res := b.record("CreateCommandPool"); res.IsError() {
		return 0, res, failed("CreateCommandPool", res)
	}
	return gpu.CommandPool(b.create("CommandPool")), gpu.Success, nil
}

func (b *Backend) DestroyCommandPool(pool gpu.CommandPool) {
	b.record("DestroyCommandPool")
	b.destroy(uint64(pool))
}

func (b *Backend) AllocateCommandBuffers(pool gpu.CommandPool, count int) ([]gpu.CommandBuffer, gpu.Result, error) {
	if res := b.record("AllocateCommandBuffers"); res.IsError() {
		return nil, res, failed("AllocateCommandBuffers", res)
	}
	buffers := make([]gpu.CommandBuffer, count)
	for i := range buffers {
		buffers[i] = gpu.CommandBuffer(b.create("CommandBuffer"))
	}
	return buffers, gpu.Success, nil
}

func (b *Backend) FreeCommandBuffers(pool gpu.CommandPool, buffers []gpu.CommandBuffer) {
	b.record("FreeCommandBuffers")
	for _, buffer := range buffers {
		b.destroy(uint64(buffer))
	}
}

func (b *Backend) BeginCommandBuffer(buffer gpu.CommandBuffer) (gpu.Result, error) {
	if res := b.record("BeginCommandBuffer"); res.IsError() {
		return res, failed("BeginCommandBuffer", res)
	}
	return gpu.Success, nil
}

func (b *Backend) EndCommandBuffer(buffer gpu.CommandBuffer) (gpu.Result, error) {
	if res := b.record("EndCommandBuffer"); res.IsError() {
		return res, failed("EndCommandBuffer", res)
	}
	return gpu.Success, nil
}

func (b *Backend) CmdBeginRenderPass(buffer gpu.CommandBuffer, info gpu.RenderPassBeginInfo) error {
	b.record("CmdBeginRenderPass")
	b.RenderPasses = append(b.RenderPasses, info)
	return nil
}

func (b *Backend) CmdEndRenderPass(buffer gpu.CommandBuffer) {
	b.record("CmdEndRenderPass")
}

func (b *Backend) CmdPipelineBarrier(buffer gpu.CommandBuffer, barrier gpu.ImageBarrier) error {
	b.record("CmdPipelineBarrier")
	b.Barriers = append(b.Barriers, barrier)
	return nil
}

func (b *Backend) CmdBindGraphicsPipeline(buffer gpu.CommandBuffer, pipeline gpu.Pipeline) {
	b.record("CmdBindGraphicsPipeline")
}

func (b *Backend) CmdSetViewport(buffer gpu.CommandBuffer, extent gpu.Extent2D) {
	b.record("CmdSetViewport")
}

func (b *Backend) CmdDraw(buffer gpu.CommandBuffer, vertexCount, instanceCount int) {
	b.record("CmdDraw")
}

func (b *Backend) QueueSubmit(queue gpu.Queue, info gpu.SubmitInfo) (gpu.Result, error) {
	if res := b.record("QueueSubmit"); res.IsError() {
		return res, failed("QueueSubmit", res)
	}
	b.Submits = append(b.Submits, info)
	return gpu.Success, nil
}

func (b *Backend) CreateShaderModule(code []uint32) (gpu.ShaderModule, gpu.Result, error) {
	if res := b.record("CreateShaderModule"); res.IsError() {
		return 0, res, failed("CreateShaderModule", res)
	}
	return gpu.ShaderModule(b.create("ShaderModule")), gpu.Success, nil
}

func (b *Backend) DestroyShaderModule(module gpu.ShaderModule) {
	b.record("DestroyShaderModule")
	b.destroy(uint64(module))
}

func (b *Backend) CreatePipelineLayout() (gpu.PipelineLayout, gpu.Result, error) {
	if res := b.record("CreatePipelineLayout"); res.IsError() {
		return 0, res, failed("CreatePipelineLayout", res)
	}
	return gpu.PipelineLayout(b.create("PipelineLayout")), gpu.Success, nil
}

func (b *Backend) DestroyPipelineLayout(layout gpu.PipelineLayout) {
	b.record("DestroyPipelineLayout")
	b.destroy(uint64(layout))
}

func (b *Backend) CreateGraphicsPipeline(info gpu.GraphicsPipelineCreateInfo) (gpu.Pipeline, gpu.Result, error) {
	if res := b.record("CreateGraphicsPipeline"); res.IsError() {
		return 0, res, failed("CreateGraphicsPipeline", res)
	}
	return gpu.Pipeline(b.create("Pipeline")), gpu.Success, nil
}

func (b *Backend) DestroyPipeline(pipeline gpu.Pipeline) {
	b.record("DestroyPipeline")
	b.destroy(uint64(pipeline))
}
