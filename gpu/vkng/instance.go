package vkng

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v3"

	"github.com/vkngwrapper/presenter/gpu"
	"github.com/vkngwrapper/presenter/platform"
)

// SDLWindow is implemented by platform windows backed by SDL.
type SDLWindow interface {
	SDLWindow() *sdl.Window
}

type Instance struct {
	driver           core1_0.CoreInstanceDriver
	surfaceExtension khr_surface.ExtensionDriver
	debugExtension   ext_debug_utils.ExtensionDriver
	messenger        ext_debug_utils.DebugUtilsMessenger
	logger           *slog.Logger

	physicalDevices *handleTable[core1_0.PhysicalDevice]
	surfaces        *handleTable[khr_surface.Surface]
}

var _ gpu.InstanceDriver = (*Instance)(nil)

func (i *Instance) debugMessengerOptions() ext_debug_utils.DebugUtilsMessengerCreateInfo {
	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.SeverityError | ext_debug_utils.SeverityWarning,
		MessageType:     ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
		UserCallback:    i.logDebug,
	}
}

func (i *Instance) logDebug(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
	level := slog.LevelWarn
	if severity&ext_debug_utils.SeverityError != 0 {
		level = slog.LevelError
	}

	i.logger.Log(context.Background(), level, "validation",
		slog.String("severity", severity.String()),
		slog.String("type", msgType.String()),
		slog.String("message", data.Message),
	)
	return false
}

func (i *Instance) physicalDevice(handle gpu.PhysicalDevice) core1_0.PhysicalDevice {
	return i.physicalDevices.lookup(uint64(handle))
}

// EnumeratePhysicalDevices reports devices in driver order. Handles stay
// stable across calls.
func (i *Instance) EnumeratePhysicalDevices() ([]gpu.PhysicalDevice, gpu.Result, error) {
	devices, res, err := i.driver.EnumeratePhysicalDevices()
	if err != nil {
		return nil, result(res), err
	}

	handles := make([]gpu.PhysicalDevice, len(devices))
	for idx, device := range devices {
		handle := uint64(idx + 1)
		i.physicalDevices.items[handle] = device
		handles[idx] = gpu.PhysicalDevice(handle)
	}
	return handles, result(res), nil
}

func (i *Instance) PhysicalDeviceProperties(device gpu.PhysicalDevice) (gpu.PhysicalDeviceProperties, error) {
	properties, err := i.driver.GetPhysicalDeviceProperties(i.physicalDevice(device))
	if err != nil {
		return gpu.PhysicalDeviceProperties{}, err
	}

	return gpu.PhysicalDeviceProperties{
		Name:              properties.DriverName,
		Type:              gpu.PhysicalDeviceType(properties.DriverType),
		APIVersion:        uint32(properties.APIVersion),
		PipelineCacheUUID: properties.PipelineCacheUUID,
	}, nil
}

func (i *Instance) QueueFamilyProperties(device gpu.PhysicalDevice) []gpu.QueueFamilyProperties {
	families := i.driver.GetPhysicalDeviceQueueFamilyProperties(i.physicalDevice(device))

	out := make([]gpu.QueueFamilyProperties, len(families))
	for idx, family := range families {
		out[idx] = gpu.QueueFamilyProperties{
			Flags:      gpu.QueueFlags(family.QueueFlags),
			QueueCount: family.QueueCount,
		}
	}
	return out
}

func (i *Instance) DeviceLayers(device gpu.PhysicalDevice) ([]gpu.LayerProperties, gpu.Result, error) {
	layers, res, err := i.driver.EnumerateDeviceLayerProperties(i.physicalDevice(device))
	if err != nil {
		return nil, result(res), err
	}
	return layerProperties(layers), result(res), nil
}

func (i *Instance) DeviceExtensions(device gpu.PhysicalDevice) ([]gpu.ExtensionProperties, gpu.Result, error) {
	extensions, res, err := i.driver.EnumerateDeviceExtensionProperties(i.physicalDevice(device))
	if err != nil {
		return nil, result(res), err
	}
	return extensionProperties(extensions), result(res), nil
}

func (i *Instance) CreateSurface(window platform.Window) (gpu.Surface, gpu.Result, error) {
	native, ok := window.(SDLWindow)
	if !ok {
		return 0, gpu.ErrorInitializationFailed, errors.Newf("vkng: window %T is not backed by SDL", window)
	}

	surface, err := vkng_sdl2.CreateSurface(i.driver.Instance(), i.surfaceExtension, native.SDLWindow())
	if err != nil {
		return 0, gpu.ErrorInitializationFailed, err
	}
	return gpu.Surface(i.surfaces.add(surface)), gpu.Success, nil
}

func (i *Instance) DestroySurface(surface gpu.Surface) {
	native, ok := i.surfaces.remove(uint64(surface))
	if !ok {
		return
	}
	i.surfaceExtension.DestroySurface(native, nil)
}

func (i *Instance) SurfaceSupport(device gpu.PhysicalDevice, surface gpu.Surface, queueFamily int) (bool, gpu.Result, error) {
	supported, res, err := i.surfaceExtension.GetPhysicalDeviceSurfaceSupport(i.surfaces.lookup(uint64(surface)), i.physicalDevice(device), queueFamily)
	return supported, result(res), err
}

func (i *Instance) SurfaceCapabilities(device gpu.PhysicalDevice, surface gpu.Surface) (gpu.SurfaceCapabilities, gpu.Result, error) {
	capabilities, res, err := i.surfaceExtension.GetPhysicalDeviceSurfaceCapabilities(i.surfaces.lookup(uint64(surface)), i.physicalDevice(device))
	if err != nil {
		return gpu.SurfaceCapabilities{}, result(res), err
	}
	return surfaceCapabilities(capabilities), result(res), nil
}

func (i *Instance) SurfaceFormats(device gpu.PhysicalDevice, surface gpu.Surface) ([]gpu.SurfaceFormat, gpu.Result, error) {
	formats, res, err := i.surfaceExtension.GetPhysicalDeviceSurfaceFormats(i.surfaces.lookup(uint64(surface)), i.physicalDevice(device))
	if err != nil {
		return nil, result(res), err
	}

	out := make([]gpu.SurfaceFormat, len(formats))
	for idx, format := range formats {
		out[idx] = gpu.SurfaceFormat{
			Format:     gpu.Format(format.Format),
			ColorSpace: gpu.ColorSpace(format.ColorSpace),
		}
	}
	return out, result(res), nil
}

func (i *Instance) SurfacePresentModes(device gpu.PhysicalDevice, surface gpu.Surface) ([]gpu.PresentMode, gpu.Result, error) {
	modes, res, err := i.surfaceExtension.GetPhysicalDeviceSurfacePresentModes(i.surfaces.lookup(uint64(surface)), i.physicalDevice(device))
	if err != nil {
		return nil, result(res), err
	}

	out := make([]gpu.PresentMode, len(modes))
	for idx, mode := range modes {
		out[idx] = gpu.PresentMode(mode)
	}
	return out, result(res), nil
}

func (i *Instance) CreateDevice(device gpu.PhysicalDevice, info gpu.DeviceCreateInfo) (gpu.DeviceDriver, gpu.Result, error) {
	queues := make([]core1_0.DeviceQueueCreateInfo, 0, len(info.QueueFamilies))
	for _, family := range info.QueueFamilies {
		queues = append(queues, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: family,
			QueuePriorities:  []float32{1.0},
		})
	}

	driver, res, err := i.driver.CreateDevice(i.physicalDevice(device), nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queues,
		EnabledExtensionNames: info.Extensions,
	})
	if err != nil {
		return nil, result(res), err
	}

	return newDevice(driver, khr_swapchain.CreateExtensionDriverFromCoreDriver(driver), i.surfaces), result(res), nil
}

// DestroyInstance destroys the debug messenger, if any, and the instance.
// Surfaces must already be gone.
func (i *Instance) DestroyInstance() {
	if i.messenger.Initialized() {
		i.debugExtension.DestroyDebugUtilsMessenger(i.messenger, nil)
		i.messenger = ext_debug_utils.DebugUtilsMessenger{}
	}

	if i.surfaces.len() > 0 {
		i.logger.Warn("destroying instance with live surfaces", slog.Int("surfaces", i.surfaces.len()))
	}

	i.driver.DestroyInstance(nil)
}
