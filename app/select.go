package app

import (
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/vkngwrapper/presenter/gpu"
)

// FamilySupport is what one queue family of a device can do.
type FamilySupport struct {
	Graphics bool
	Present  bool
}

// SelectQueueFamilies picks a present family and a distinct graphics family.
// The present family is the first present-capable family that has a graphics
// partner; the graphics family is the first graphics-capable family other
// than it.
func SelectQueueFamilies(families []FamilySupport) (gpu.QueueFamilies, bool) {
	for present := range families {
		if !families[present].Present {
			continue
		}

		for graphics := range families {
			if graphics != present && families[graphics].Graphics {
				return gpu.QueueFamilies{Present: present, Graphics: graphics}, true
			}
		}
	}

	return gpu.QueueFamilies{}, false
}

// SelectDevice returns the first physical device that is a real GPU, supports
// swapchains, and offers distinct present and graphics queue families for
// surface.
func SelectDevice(instance gpu.InstanceDriver, surface gpu.Surface, logger *slog.Logger) (gpu.PhysicalDevice, gpu.QueueFamilies, error) {
	devices, res, err := instance.EnumeratePhysicalDevices()
	if err := gpu.Check(gpu.NoViablePhysicalDevice, res, err); err != nil {
		return 0, gpu.QueueFamilies{}, err
	}

	for _, device := range devices {
		properties, err := instance.PhysicalDeviceProperties(device)
		if err != nil {
			return 0, gpu.QueueFamilies{}, errors.Wrap(err, "reading device properties")
		}

		if properties.Type == gpu.PhysicalDeviceTypeCPU || properties.Type == gpu.PhysicalDeviceTypeOther {
			logger.Info("skipping device", slog.String("name", properties.Name), slog.String("type", properties.Type.String()))
			continue
		}

		supported, err := supportsSwapchain(instance, device)
		if err != nil {
			return 0, gpu.QueueFamilies{}, err
		}
		if !supported {
			logger.Info("skipping device without swapchain support", slog.String("name", properties.Name))
			continue
		}

		queueFamilies := instance.QueueFamilyProperties(device)
		support := make([]FamilySupport, len(queueFamilies))
		for i, family := range queueFamilies {
			present, res, err := instance.SurfaceSupport(device, surface, i)
			if err := gpu.Check(gpu.SurfaceQuery, res, err); err != nil {
				return 0, gpu.QueueFamilies{}, err
			}

			support[i] = FamilySupport{
				Graphics: family.Flags&gpu.QueueGraphics != 0 && family.QueueCount > 0,
				Present:  present,
			}
		}

		families, ok := SelectQueueFamilies(support)
		if !ok {
			logger.Info("skipping device without distinct present and graphics families", slog.String("name", properties.Name))
			continue
		}

		logger.Info("selected device",
			slog.String("name", properties.Name),
			slog.Int("present_family", families.Present),
			slog.Int("graphics_family", families.Graphics),
		)
		return device, families, nil
	}

	return 0, gpu.QueueFamilies{}, gpu.NewContextError(gpu.NoViablePhysicalDevice)
}

func supportsSwapchain(instance gpu.InstanceDriver, device gpu.PhysicalDevice) (bool, error) {
	return hasDeviceExtension(instance, device, SwapchainExtension)
}

func hasDeviceExtension(instance gpu.InstanceDriver, device gpu.PhysicalDevice, name string) (bool, error) {
	extensions, res, err := instance.DeviceExtensions(device)
	if err := gpu.Check(gpu.DeviceCreation, res, err); err != nil {
		return false, err
	}

	for _, extension := range extensions {
		if extension.Name == name {
			return true, nil
		}
	}
	return false, nil
}
