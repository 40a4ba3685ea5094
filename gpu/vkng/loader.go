// Package vkng implements the gpu driver interfaces on top of vkngwrapper.
//
// The gpu package hands out integer handles; each driver keeps a table from
// those handles to the vkngwrapper objects they stand for.
package vkng

import (
	"log/slog"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/v3/khr_surface"

	"github.com/vkngwrapper/presenter/gpu"
	"github.com/vkngwrapper/presenter/internal/logging"
)

type Loader struct {
	driver core1_0.GlobalDriver
	logger *slog.Logger
}

var _ gpu.Loader = (*Loader)(nil)

// NewLoader loads the Vulkan entry points through procAddr, which is a
// vkGetInstanceProcAddr function pointer such as the one returned by
// sdl.VulkanGetVkGetInstanceProcAddr.
func NewLoader(procAddr unsafe.Pointer, logger *slog.Logger) (*Loader, error) {
	driver, err := core.CreateDriverFromProcAddr(procAddr)
	if err != nil {
		return nil, errors.Wrap(err, "loading vulkan")
	}

	return &Loader{driver: driver, logger: logging.OrNop(logger)}, nil
}

func (l *Loader) InstanceLayers() ([]gpu.LayerProperties, gpu.Result, error) {
	layers, res, err := l.driver.AvailableLayers()
	if err != nil {
		return nil, result(res), err
	}
	return layerProperties(layers), result(res), nil
}

func (l *Loader) InstanceExtensions(layer string) ([]gpu.ExtensionProperties, gpu.Result, error) {
	var extensions map[string]*core1_0.ExtensionProperties
	var res common.VkResult
	var err error

	if layer == "" {
		extensions, res, err = l.driver.AvailableExtensions()
	} else {
		extensions, res, err = l.driver.AvailableExtensionsForLayer(layer)
	}
	if err != nil {
		return nil, result(res), err
	}
	return extensionProperties(extensions), result(res), nil
}

func (l *Loader) CreateInstance(info gpu.InstanceCreateInfo) (gpu.InstanceDriver, gpu.Result, error) {
	options := core1_0.InstanceCreateInfo{
		ApplicationName:       info.ApplicationName,
		ApplicationVersion:    common.CreateVersion(1, 0, 0),
		EngineName:            info.EngineName,
		EngineVersion:         common.CreateVersion(1, 0, 0),
		APIVersion:            common.Vulkan1_2,
		EnabledExtensionNames: info.Extensions,
		EnabledLayerNames:     info.Layers,
	}

	for _, extension := range info.Extensions {
		if extension == khr_portability_enumeration.ExtensionName {
			options.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
		}
	}

	instance := &Instance{
		logger:          l.logger,
		physicalDevices: newHandleTable[core1_0.PhysicalDevice](),
		surfaces:        newHandleTable[khr_surface.Surface](),
	}

	if info.DebugMessenger {
		// Chained so that instance creation and destruction are covered too.
		options.Next = instance.debugMessengerOptions()
	}

	driver, res, err := l.driver.CreateInstance(nil, options)
	if err != nil {
		return nil, result(res), err
	}
	instance.driver = driver
	instance.surfaceExtension = khr_surface.CreateExtensionDriverFromCoreDriver(driver)

	if info.DebugMessenger {
		instance.debugExtension = ext_debug_utils.CreateExtensionDriverFromCoreDriver(driver)
		messenger, res, err := instance.debugExtension.CreateDebugUtilsMessenger(nil, instance.debugMessengerOptions())
		if err != nil {
			driver.DestroyInstance(nil)
			return nil, result(res), err
		}
		instance.messenger = messenger
	}

	return instance, result(res), nil
}
