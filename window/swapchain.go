package window

import (
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/vkngwrapper/presenter/gpu"
)

// SwapchainImage is one presentable image with the view and framebuffer
// built on it. View and Framebuffer are null until CreateFramebuffers runs,
// and stay null for an image whose resources failed to build.
type SwapchainImage struct {
	Image       gpu.Image
	View        gpu.ImageView
	Framebuffer gpu.Framebuffer
}

// Swapchain is the live swapchain of a Window. Keeping the per-image
// resources in one slice keeps images, views and framebuffers the same
// length in every generation.
type Swapchain struct {
	Handle gpu.Swapchain
	Format gpu.SurfaceFormat
	Extent gpu.Extent2D
	Images []SwapchainImage
}

// CreateSwapchain builds a swapchain for the window's surface, passing the
// current swapchain (if any) as the predecessor. The predecessor and its
// per-image resources are destroyed only once the new handle exists.
func (w *Window) CreateSwapchain() error {
	if !w.ctx.HasDevice() {
		return errors.Wrap(gpu.NewContextError(gpu.SwapchainCreation), "window has no device")
	}
	instance := w.ctx.Instance
	device := w.ctx.Device

	capabilities, res, err := instance.SurfaceCapabilities(w.ctx.PhysicalDevice, w.surface)
	if err := gpu.Check(gpu.SurfaceQuery, res, err); err != nil {
		return err
	}

	presentModes, res, err := instance.SurfacePresentModes(w.ctx.PhysicalDevice, w.surface)
	if err := gpu.Check(gpu.SurfaceQuery, res, err); err != nil {
		return err
	}

	formats, res, err := instance.SurfaceFormats(w.ctx.PhysicalDevice, w.surface)
	if err := gpu.Check(gpu.SurfaceQuery, res, err); err != nil {
		return err
	}

	if len(formats) == 0 || len(presentModes) == 0 {
		return errors.Wrap(gpu.NewContextError(gpu.SwapchainCreation), "surface reports no formats or present modes")
	}

	format := formats[0]
	presentMode := presentModes[0]
	extent := w.chooseExtent(capabilities)

	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && capabilities.MaxImageCount < imageCount {
		imageCount = capabilities.MaxImageCount
	}

	var old gpu.Swapchain
	if w.swapchain != nil {
		old = w.swapchain.Handle
	}

	handle, res, err := device.CreateSwapchain(gpu.SwapchainCreateInfo{
		Surface:       w.surface,
		MinImageCount: imageCount,
		Format:        format,
		Extent:        extent,
		PreTransform:  capabilities.CurrentTransform,
		PresentMode:   presentMode,
		QueueFamilies: []int{w.ctx.Families.Graphics, w.ctx.Families.Present},
		OldSwapchain:  old,
	})
	if err := gpu.Check(gpu.SwapchainCreation, res, err); err != nil {
		return err
	}

	if w.swapchain != nil {
		w.destroyFramebuffers()
		w.destroyViews()
		device.DestroySwapchain(old)
		w.swapchain = nil
	}

	images, res, err := device.SwapchainImages(handle)
	if err := gpu.Check(gpu.SwapchainImages, res, err); err != nil {
		device.DestroySwapchain(handle)
		return err
	}

	swapchain := &Swapchain{
		Handle: handle,
		Format: format,
		Extent: extent,
		Images: make([]SwapchainImage, len(images)),
	}
	for i, image := range images {
		swapchain.Images[i].Image = image
	}
	w.swapchain = swapchain

	w.logger.Debug("swapchain created",
		slog.Int("images", len(images)),
		slog.Int("width", extent.Width),
		slog.Int("height", extent.Height),
	)
	return nil
}

func (w *Window) chooseExtent(capabilities gpu.SurfaceCapabilities) gpu.Extent2D {
	if capabilities.CurrentExtent.Width != gpu.UndefinedExtentSize {
		return capabilities.CurrentExtent
	}

	width, height := w.Size()
	return gpu.Extent2D{
		Width:  clamp(width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: clamp(height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CreateFramebuffers builds a view and a framebuffer for every swapchain
// image, first destroying any that already exist. A failure on one image is
// logged and leaves that image's slot null; the remaining images are still
// built.
func (w *Window) CreateFramebuffers(renderPass gpu.RenderPass) error {
	if w.swapchain == nil {
		return errors.Wrap(gpu.NewContextError(gpu.FramebufferCreation), "window has no swapchain")
	}
	device := w.ctx.Device

	w.destroyFramebuffers()
	w.destroyViews()

	for i := range w.swapchain.Images {
		slot := &w.swapchain.Images[i]

		view, res, err := device.CreateImageView(slot.Image, w.swapchain.Format.Format)
		if err := gpu.Check(gpu.ImageViewCreation, res, err); err != nil {
			w.logger.Error("image view creation failed", slog.Int("image", i), slog.Any("error", err))
			continue
		}

		framebuffer, res, err := device.CreateFramebuffer(gpu.FramebufferCreateInfo{
			RenderPass: renderPass,
			Attachment: view,
			Extent:     w.swapchain.Extent,
		})
		if err := gpu.Check(gpu.FramebufferCreation, res, err); err != nil {
			w.logger.Error("framebuffer creation failed", slog.Int("image", i), slog.Any("error", err))
			device.DestroyImageView(view)
			continue
		}

		slot.View = view
		slot.Framebuffer = framebuffer
	}

	return nil
}

// Resize rebuilds the swapchain and its per-image resources for the
// window's current size, then waits for the device to go idle.
func (w *Window) Resize(renderPass gpu.RenderPass) error {
	w.destroyFramebuffers()
	w.destroyViews()

	if err := w.CreateSwapchain(); err != nil {
		return err
	}
	if err := w.CreateFramebuffers(renderPass); err != nil {
		return err
	}

	return w.ctx.WaitIdle()
}

// ReleaseFramebuffers destroys every framebuffer while keeping the views and
// the swapchain. Used during teardown so framebuffers go before the render
// pass they were built against.
func (w *Window) ReleaseFramebuffers() {
	w.destroyFramebuffers()
}

func (w *Window) destroyFramebuffers() {
	if w.swapchain == nil {
		return
	}

	for i := range w.swapchain.Images {
		slot := &w.swapchain.Images[i]
		if slot.Framebuffer.Initialized() {
			w.ctx.Device.DestroyFramebuffer(slot.Framebuffer)
			slot.Framebuffer = 0
		}
	}
}

func (w *Window) destroyViews() {
	if w.swapchain == nil {
		return
	}

	for i := range w.swapchain.Images {
		slot := &w.swapchain.Images[i]
		if slot.View.Initialized() {
			w.ctx.Device.DestroyImageView(slot.View)
			slot.View = 0
		}
	}
}
