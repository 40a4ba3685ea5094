package vkng

import (
	"maps"
	"slices"

	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"

	"github.com/vkngwrapper/presenter/gpu"
)

// The gpu enums carry the native Vulkan values, so conversions are casts.

func result(res common.VkResult) gpu.Result {
	return gpu.Result(res)
}

func extent(e core1_0.Extent2D) gpu.Extent2D {
	return gpu.Extent2D{Width: e.Width, Height: e.Height}
}

func nativeExtent(e gpu.Extent2D) core1_0.Extent2D {
	return core1_0.Extent2D{Width: e.Width, Height: e.Height}
}

func surfaceCapabilities(c *khr_surface.SurfaceCapabilities) gpu.SurfaceCapabilities {
	if c == nil {
		return gpu.SurfaceCapabilities{}
	}

	return gpu.SurfaceCapabilities{
		MinImageCount:    c.MinImageCount,
		MaxImageCount:    c.MaxImageCount,
		CurrentExtent:    extent(c.CurrentExtent),
		MinImageExtent:   extent(c.MinImageExtent),
		MaxImageExtent:   extent(c.MaxImageExtent),
		CurrentTransform: gpu.SurfaceTransform(c.CurrentTransform),
	}
}

func colorSubresource() core1_0.ImageSubresourceRange {
	return core1_0.ImageSubresourceRange{
		AspectMask:     core1_0.ImageAspectColor,
		BaseMipLevel:   0,
		LevelCount:     1,
		BaseArrayLayer: 0,
		LayerCount:     1,
	}
}

func layerProperties(layers map[string]*core1_0.LayerProperties) []gpu.LayerProperties {
	out := make([]gpu.LayerProperties, 0, len(layers))
	for _, name := range slices.Sorted(maps.Keys(layers)) {
		out = append(out, gpu.LayerProperties{
			Name:        name,
			Description: layers[name].Description,
		})
	}
	return out
}

func extensionProperties(extensions map[string]*core1_0.ExtensionProperties) []gpu.ExtensionProperties {
	out := make([]gpu.ExtensionProperties, 0, len(extensions))
	for _, name := range slices.Sorted(maps.Keys(extensions)) {
		out = append(out, gpu.ExtensionProperties{Name: name})
	}
	return out
}
