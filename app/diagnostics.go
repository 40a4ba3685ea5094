package app

import (
	"log/slog"

	"github.com/vkngwrapper/presenter/gpu"
)

// inventory is the set of layers and instance extensions the loader offers.
type inventory struct {
	layers     map[string]bool
	extensions map[string]bool
}

// logInstanceInventory logs every instance layer with its extensions and
// every instance extension, and returns what it found.
func logInstanceInventory(loader gpu.Loader, logger *slog.Logger) (inventory, error) {
	inv := inventory{
		layers:     map[string]bool{},
		extensions: map[string]bool{},
	}

	layers, res, err := loader.InstanceLayers()
	if err := gpu.Check(gpu.InstanceCreation, res, err); err != nil {
		return inv, err
	}

	for _, layer := range layers {
		inv.layers[layer.Name] = true

		extensions, res, err := loader.InstanceExtensions(layer.Name)
		if err := gpu.Check(gpu.InstanceCreation, res, err); err != nil {
			return inv, err
		}
		logger.Info("instance layer",
			slog.String("name", layer.Name),
			slog.String("description", layer.Description),
			slog.Any("extensions", extensionNames(extensions)),
		)
	}

	extensions, res, err := loader.InstanceExtensions("")
	if err := gpu.Check(gpu.InstanceCreation, res, err); err != nil {
		return inv, err
	}
	for _, extension := range extensions {
		inv.extensions[extension.Name] = true
	}
	logger.Info("instance extensions", slog.Any("names", extensionNames(extensions)))

	return inv, nil
}

// logDevices logs the properties, layers, extensions and queue families of
// every physical device.
func logDevices(instance gpu.InstanceDriver, logger *slog.Logger) error {
	devices, res, err := instance.EnumeratePhysicalDevices()
	if err := gpu.Check(gpu.NoViablePhysicalDevice, res, err); err != nil {
		return err
	}

	for _, device := range devices {
		properties, err := instance.PhysicalDeviceProperties(device)
		if err != nil {
			return err
		}

		layers, res, err := instance.DeviceLayers(device)
		if err := gpu.Check(gpu.DeviceCreation, res, err); err != nil {
			return err
		}
		layerNames := make([]string, 0, len(layers))
		for _, layer := range layers {
			layerNames = append(layerNames, layer.Name)
		}

		extensions, res, err := instance.DeviceExtensions(device)
		if err := gpu.Check(gpu.DeviceCreation, res, err); err != nil {
			return err
		}

		logger.Info("physical device",
			slog.String("name", properties.Name),
			slog.String("type", properties.Type.String()),
			slog.String("pipeline_cache_uuid", properties.PipelineCacheUUID.String()),
			slog.Any("layers", layerNames),
			slog.Any("extensions", extensionNames(extensions)),
		)

		for i, family := range instance.QueueFamilyProperties(device) {
			logger.Info("queue family",
				slog.String("device", properties.Name),
				slog.Int("index", i),
				slog.Int("queues", family.QueueCount),
				slog.Bool("graphics", family.Flags&gpu.QueueGraphics != 0),
				slog.Bool("compute", family.Flags&gpu.QueueCompute != 0),
				slog.Bool("transfer", family.Flags&gpu.QueueTransfer != 0),
			)
		}
	}

	return nil
}

func extensionNames(extensions []gpu.ExtensionProperties) []string {
	names := make([]string, 0, len(extensions))
	for _, extension := range extensions {
		names = append(names, extension.Name)
	}
	return names
}
