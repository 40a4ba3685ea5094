package vkng

import (
	"time"

	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkngwrapper/presenter/gpu"
)

type queueKey struct {
	family int
	index  int
}

type Device struct {
	driver             core1_0.CoreDeviceDriver
	swapchainExtension khr_swapchain.ExtensionDriver
	surfaces           *handleTable[khr_surface.Surface]

	queues      *handleTable[core1_0.Queue]
	queueByKey  map[queueKey]uint64
	swapchains  *handleTable[khr_swapchain.Swapchain]
	images      *handleTable[core1_0.Image]
	imagesOwned map[uint64][]uint64

	views        *handleTable[core1_0.ImageView]
	framebuffers *handleTable[core1_0.Framebuffer]
	renderPasses *handleTable[core1_0.RenderPass]
	semaphores   *handleTable[core1_0.Semaphore]
	pools        *handleTable[core1_0.CommandPool]
	buffers      *handleTable[core1_0.CommandBuffer]
	modules      *handleTable[core1_0.ShaderModule]
	layouts      *handleTable[core1_0.PipelineLayout]
	pipelines    *handleTable[core1_0.Pipeline]
}

var _ gpu.DeviceDriver = (*Device)(nil)

func newDevice(driver core1_0.CoreDeviceDriver, swapchainExtension khr_swapchain.ExtensionDriver, surfaces *handleTable[khr_surface.Surface]) *Device {
	return &Device{
		driver:             driver,
		swapchainExtension: swapchainExtension,
		surfaces:           surfaces,

		queues:      newHandleTable[core1_0.Queue](),
		queueByKey:  map[queueKey]uint64{},
		swapchains:  newHandleTable[khr_swapchain.Swapchain](),
		images:      newHandleTable[core1_0.Image](),
		imagesOwned: map[uint64][]uint64{},

		views:        newHandleTable[core1_0.ImageView](),
		framebuffers: newHandleTable[core1_0.Framebuffer](),
		renderPasses: newHandleTable[core1_0.RenderPass](),
		semaphores:   newHandleTable[core1_0.Semaphore](),
		pools:        newHandleTable[core1_0.CommandPool](),
		buffers:      newHandleTable[core1_0.CommandBuffer](),
		modules:      newHandleTable[core1_0.ShaderModule](),
		layouts:      newHandleTable[core1_0.PipelineLayout](),
		pipelines:    newHandleTable[core1_0.Pipeline](),
	}
}

func (d *Device) DeviceWaitIdle() (gpu.Result, error) {
	res, err := d.driver.DeviceWaitIdle()
	return result(res), err
}

func (d *Device) DestroyDevice() {
	d.driver.DestroyDevice(nil)
}

func (d *Device) GetQueue(queueFamily, index int) gpu.Queue {
	key := queueKey{family: queueFamily, index: index}
	if handle, ok := d.queueByKey[key]; ok {
		return gpu.Queue(handle)
	}

	handle := d.queues.add(d.driver.GetQueue(queueFamily, index))
	d.queueByKey[key] = handle
	return gpu.Queue(handle)
}

// Swapchains

func (d *Device) CreateSwapchain(info gpu.SwapchainCreateInfo) (gpu.Swapchain, gpu.Result, error) {
	sharingMode := core1_0.SharingModeExclusive
	var queueFamilyIndices []int
	if len(info.QueueFamilies) > 1 {
		sharingMode = core1_0.SharingModeConcurrent
		queueFamilyIndices = info.QueueFamilies
	}

	swapchain, res, err := d.swapchainExtension.CreateSwapchain(nil, khr_swapchain.SwapchainCreateInfo{
		Surface: d.surfaces.lookup(uint64(info.Surface)),

		MinImageCount:    info.MinImageCount,
		ImageFormat:      core1_0.Format(info.Format.Format),
		ImageColorSpace:  khr_surface.ColorSpace(info.Format.ColorSpace),
		ImageExtent:      nativeExtent(info.Extent),
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode:   sharingMode,
		QueueFamilyIndices: queueFamilyIndices,

		PreTransform:   khr_surface.SurfaceTransformFlags(info.PreTransform),
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    khr_surface.PresentMode(info.PresentMode),
		Clipped:        true,
		OldSwapchain:   d.swapchains.lookup(uint64(info.OldSwapchain)),
	})
	if err != nil {
		return 0, result(res), err
	}

	return gpu.Swapchain(d.swapchains.add(swapchain)), result(res), nil
}

func (d *Device) DestroySwapchain(swapchain gpu.Swapchain) {
	native, ok := d.swapchains.remove(uint64(swapchain))
	if !ok {
		return
	}

	d.forgetImages(uint64(swapchain))
	d.swapchainExtension.DestroySwapchain(native, nil)
}

func (d *Device) forgetImages(swapchain uint64) {
	for _, image := range d.imagesOwned[swapchain] {
		d.images.remove(image)
	}
	delete(d.imagesOwned, swapchain)
}

// SwapchainImages returns the images owned by swapchain. The images are
// released together with the swapchain.
func (d *Device) SwapchainImages(swapchain gpu.Swapchain) ([]gpu.Image, gpu.Result, error) {
	images, res, err := d.swapchainExtension.GetSwapchainImages(d.swapchains.lookup(uint64(swapchain)))
	if err != nil {
		return nil, result(res), err
	}

	d.forgetImages(uint64(swapchain))
	handles := make([]gpu.Image, len(images))
	owned := make([]uint64, len(images))
	for idx, image := range images {
		owned[idx] = d.images.add(image)
		handles[idx] = gpu.Image(owned[idx])
	}
	d.imagesOwned[uint64(swapchain)] = owned

	return handles, result(res), nil
}

func (d *Device) AcquireNextImage(swapchain gpu.Swapchain, timeout time.Duration, signal gpu.Semaphore) (int, gpu.Result, error) {
	semaphore := d.semaphores.lookup(uint64(signal))
	index, res, err := d.swapchainExtension.AcquireNextImage(d.swapchains.lookup(uint64(swapchain)), timeout, &semaphore, nil)
	return index, result(res), err
}

func (d *Device) QueuePresent(queue gpu.Queue, info gpu.PresentInfo) (gpu.Result, error) {
	res, err := d.swapchainExtension.QueuePresent(d.queues.lookup(uint64(queue)), khr_swapchain.PresentInfo{
		WaitSemaphores: d.nativeSemaphores(info.WaitSemaphores),
		Swapchains:     []khr_swapchain.Swapchain{d.swapchains.lookup(uint64(info.Swapchain))},
		ImageIndices:   []int{info.ImageIndex},
	})
	return result(res), err
}

// Images, framebuffers and render passes

func (d *Device) CreateImageView(image gpu.Image, format gpu.Format) (gpu.ImageView, gpu.Result, error) {
	view, res, err := d.driver.CreateImageView(nil, core1_0.ImageViewCreateInfo{
		Image:            d.images.lookup(uint64(image)),
		ViewType:         core1_0.ImageViewType2D,
		Format:           core1_0.Format(format),
		SubresourceRange: colorSubresource(),
	})
	if err != nil {
		return 0, result(res), err
	}
	return gpu.ImageView(d.views.add(view)), result(res), nil
}

func (d *Device) DestroyImageView(view gpu.ImageView) {
	if native, ok := d.views.remove(uint64(view)); ok {
		d.driver.DestroyImageView(native, nil)
	}
}

func (d *Device) CreateFramebuffer(info gpu.FramebufferCreateInfo) (gpu.Framebuffer, gpu.Result, error) {
	framebuffer, res, err := d.driver.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
		RenderPass:  d.renderPasses.lookup(uint64(info.RenderPass)),
		Layers:      1,
		Attachments: []core1_0.ImageView{d.views.lookup(uint64(info.Attachment))},
		Width:       info.Extent.Width,
		Height:      info.Extent.Height,
	})
	if err != nil {
		return 0, result(res), err
	}
	return gpu.Framebuffer(d.framebuffers.add(framebuffer)), result(res), nil
}

func (d *Device) DestroyFramebuffer(framebuffer gpu.Framebuffer) {
	if native, ok := d.framebuffers.remove(uint64(framebuffer)); ok {
		d.driver.DestroyFramebuffer(native, nil)
	}
}

// CreateRenderPass builds a single-subpass pass with one color attachment
// that is cleared on load and left in color attachment layout. The
// transition to the present layout is recorded explicitly after the pass.
func (d *Device) CreateRenderPass(info gpu.RenderPassCreateInfo) (gpu.RenderPass, gpu.Result, error) {
	renderPass, res, err := d.driver.CreateRenderPass(nil, core1_0.RenderPassCreateInfo{
		Attachments: []core1_0.AttachmentDescription{
			{
				Format:         core1_0.Format(info.ColorFormat),
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpStore,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    core1_0.ImageLayoutColorAttachmentOptimal,
			},
		},
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				ColorAttachments: []core1_0.AttachmentReference{
					{
						Attachment: 0,
						Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
					},
				},
			},
		},
		SubpassDependencies: []core1_0.SubpassDependency{
			{
				SrcSubpass: core1_0.SubpassExternal,
				DstSubpass: 0,

				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				SrcAccessMask: 0,

				DstStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				DstAccessMask: core1_0.AccessColorAttachmentWrite,
			},
		},
	})
	if err != nil {
		return 0, result(res), err
	}
	return gpu.RenderPass(d.renderPasses.add(renderPass)), result(res), nil
}

func (d *Device) DestroyRenderPass(renderPass gpu.RenderPass) {
	if native, ok := d.renderPasses.remove(uint64(renderPass)); ok {
		d.driver.DestroyRenderPass(native, nil)
	}
}

// Synchronization and commands

func (d *Device) CreateSemaphore() (gpu.Semaphore, gpu.Result, error) {
	semaphore, res, err := d.driver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		return 0, result(res), err
	}
	return gpu.Semaphore(d.semaphores.add(semaphore)), result(res), nil
}

func (d *Device) DestroySemaphore(semaphore gpu.Semaphore) {
	if native, ok := d.semaphores.remove(uint64(semaphore)); ok {
		d.driver.DestroySemaphore(native, nil)
	}
}

func (d *Device) nativeSemaphores(semaphores []gpu.Semaphore) []core1_0.Semaphore {
	out := make([]core1_0.Semaphore, len(semaphores))
	for idx, semaphore := range semaphores {
		out[idx] = d.semaphores.lookup(uint64(semaphore))
	}
	return out
}

// CreateCommandPool creates a pool whose buffers can be re-recorded every
// frame.
func (d *Device) CreateCommandPool(queueFamily int) (gpu.CommandPool, gpu.Result, error) {
	pool, res, err := d.driver.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		Flags:            core1_0.CommandPoolCreateResetBuffer,
		QueueFamilyIndex: queueFamily,
	})
	if err != nil {
		return 0, result(res), err
	}
	return gpu.CommandPool(d.pools.add(pool)), result(res), nil
}

func (d *Device) DestroyCommandPool(pool gpu.CommandPool) {
	if native, ok := d.pools.remove(uint64(pool)); ok {
		d.driver.DestroyCommandPool(native, nil)
	}
}

func (d *Device) AllocateCommandBuffers(pool gpu.CommandPool, count int) ([]gpu.CommandBuffer, gpu.Result, error) {
	buffers, res, err := d.driver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        d.pools.lookup(uint64(pool)),
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	})
	if err != nil {
		return nil, result(res), err
	}

	handles := make([]gpu.CommandBuffer, len(buffers))
	for idx, buffer := range buffers {
		handles[idx] = gpu.CommandBuffer(d.buffers.add(buffer))
	}
	return handles, result(res), nil
}

func (d *Device) FreeCommandBuffers(pool gpu.CommandPool, buffers []gpu.CommandBuffer) {
	natives := make([]core1_0.CommandBuffer, 0, len(buffers))
	for _, buffer := range buffers {
		if native, ok := d.buffers.remove(uint64(buffer)); ok {
			natives = append(natives, native)
		}
	}

	if len(natives) > 0 {
		d.driver.FreeCommandBuffers(natives...)
	}
}

func (d *Device) buffer(buffer gpu.CommandBuffer) core1_0.CommandBuffer {
	return d.buffers.lookup(uint64(buffer))
}

func (d *Device) BeginCommandBuffer(buffer gpu.CommandBuffer) (gpu.Result, error) {
	res, err := d.driver.BeginCommandBuffer(d.buffer(buffer), core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	return result(res), err
}

func (d *Device) EndCommandBuffer(buffer gpu.CommandBuffer) (gpu.Result, error) {
	res, err := d.driver.EndCommandBuffer(d.buffer(buffer))
	return result(res), err
}

func (d *Device) CmdBeginRenderPass(buffer gpu.CommandBuffer, info gpu.RenderPassBeginInfo) error {
	return d.driver.CmdBeginRenderPass(d.buffer(buffer), core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  d.renderPasses.lookup(uint64(info.RenderPass)),
			Framebuffer: d.framebuffers.lookup(uint64(info.Framebuffer)),
			RenderArea: core1_0.Rect2D{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: nativeExtent(info.Extent),
			},
			ClearValues: []core1_0.ClearValue{
				core1_0.ClearValueFloat(info.ClearColor),
			},
		})
}

func (d *Device) CmdEndRenderPass(buffer gpu.CommandBuffer) {
	d.driver.CmdEndRenderPass(d.buffer(buffer))
}

func (d *Device) CmdPipelineBarrier(buffer gpu.CommandBuffer, barrier gpu.ImageBarrier) error {
	return d.driver.CmdPipelineBarrier(d.buffer(buffer),
		core1_0.PipelineStageFlags(barrier.SrcStage),
		core1_0.PipelineStageFlags(barrier.DstStage),
		0, nil, nil,
		[]core1_0.ImageMemoryBarrier{
			{
				OldLayout:           core1_0.ImageLayout(barrier.OldLayout),
				NewLayout:           core1_0.ImageLayout(barrier.NewLayout),
				SrcQueueFamilyIndex: -1,
				DstQueueFamilyIndex: -1,
				Image:               d.images.lookup(uint64(barrier.Image)),
				SubresourceRange:    colorSubresource(),
				SrcAccessMask:       core1_0.AccessFlags(barrier.SrcAccess),
				DstAccessMask:       core1_0.AccessFlags(barrier.DstAccess),
			},
		})
}

func (d *Device) CmdBindGraphicsPipeline(buffer gpu.CommandBuffer, pipeline gpu.Pipeline) {
	d.driver.CmdBindPipeline(d.buffer(buffer), core1_0.PipelineBindPointGraphics, d.pipelines.lookup(uint64(pipeline)))
}

func (d *Device) CmdSetViewport(buffer gpu.CommandBuffer, extent gpu.Extent2D) {
	native := d.buffer(buffer)
	d.driver.CmdSetViewport(native, []core1_0.Viewport{
		{
			X:        0,
			Y:        0,
			Width:    float32(extent.Width),
			Height:   float32(extent.Height),
			MinDepth: 0,
			MaxDepth: 1,
		},
	})
	d.driver.CmdSetScissor(native, []core1_0.Rect2D{
		{
			Offset: core1_0.Offset2D{X: 0, Y: 0},
			Extent: nativeExtent(extent),
		},
	})
}

func (d *Device) CmdDraw(buffer gpu.CommandBuffer, vertexCount, instanceCount int) {
	d.driver.CmdDraw(d.buffer(buffer), vertexCount, instanceCount, 0, 0)
}

func (d *Device) QueueSubmit(queue gpu.Queue, info gpu.SubmitInfo) (gpu.Result, error) {
	stages := make([]core1_0.PipelineStageFlags, len(info.WaitStages))
	for idx, stage := range info.WaitStages {
		stages[idx] = core1_0.PipelineStageFlags(stage)
	}

	buffers := make([]core1_0.CommandBuffer, len(info.CommandBuffers))
	for idx, buffer := range info.CommandBuffers {
		buffers[idx] = d.buffer(buffer)
	}

	res, err := d.driver.QueueSubmit(d.queues.lookup(uint64(queue)), nil,
		core1_0.SubmitInfo{
			WaitSemaphores:   d.nativeSemaphores(info.WaitSemaphores),
			WaitDstStageMask: stages,
			CommandBuffers:   buffers,
			SignalSemaphores: d.nativeSemaphores(info.SignalSemaphores),
		},
	)
	return result(res), err
}
