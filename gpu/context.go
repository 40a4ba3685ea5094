package gpu

// QueueFamilies holds the two queue family indices used for presentation and
// graphics. The indices are always distinct.
type QueueFamilies struct {
	Present  int
	Graphics int
}

// Context is the root of the GPU ownership chain: the instance, the chosen
// physical device and the logical device.
//
// A Context without a device is a probe context. It lends its instance to
// temporary surfaces while devices are examined, never owns queues, pools or
// swapchains, and its Destroy does nothing.
type Context struct {
	Instance       InstanceDriver
	PhysicalDevice PhysicalDevice
	Device         DeviceDriver
	Families       QueueFamilies
}

// NewProbeContext wraps an instance that has no device yet.
func NewProbeContext(instance InstanceDriver) *Context {
	return &Context{Instance: instance}
}

// NewContext wraps a fully opened device. The context takes ownership of both
// the device and the instance.
func NewContext(instance InstanceDriver, physicalDevice PhysicalDevice, device DeviceDriver, families QueueFamilies) *Context {
	return &Context{
		Instance:       instance,
		PhysicalDevice: physicalDevice,
		Device:         device,
		Families:       families,
	}
}

// HasDevice reports whether a logical device is attached.
func (c *Context) HasDevice() bool {
	return c != nil && c.Device != nil
}

// WaitIdle blocks until the device has finished all submitted work. It is a
// no-op on a probe context.
func (c *Context) WaitIdle() error {
	if !c.HasDevice() {
		return nil
	}

	res, err := c.Device.DeviceWaitIdle()
	return Check(DeviceWaitIdle, res, err)
}

// Destroy waits for the device, then destroys the device and the instance.
// A probe context destroys nothing.
func (c *Context) Destroy() error {
	if !c.HasDevice() {
		return nil
	}

	err := c.WaitIdle()

	c.Device.DestroyDevice()
	c.Device = nil

	c.Instance.DestroyInstance()
	c.Instance = nil

	return err
}
