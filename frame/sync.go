package frame

import (
	"github.com/cockroachdb/errors"

	"github.com/vkngwrapper/presenter/gpu"
)

// SyncPair holds the two semaphores of the acquire/render/present protocol.
type SyncPair struct {
	ImageAvailable gpu.Semaphore
	RenderFinished gpu.Semaphore
}

func newSyncPair(device gpu.DeviceDriver) (SyncPair, error) {
	var pair SyncPair

	semaphore, res, err := device.CreateSemaphore()
	if err := gpu.Check(gpu.SemaphoreCreation, res, err); err != nil {
		return pair, err
	}
	pair.ImageAvailable = semaphore

	semaphore, res, err = device.CreateSemaphore()
	if err := gpu.Check(gpu.SemaphoreCreation, res, err); err != nil {
		pair.destroy(device)
		return pair, err
	}
	pair.RenderFinished = semaphore

	return pair, nil
}

func (p *SyncPair) destroy(device gpu.DeviceDriver) {
	if p.RenderFinished.Initialized() {
		device.DestroySemaphore(p.RenderFinished)
		p.RenderFinished = 0
	}
	if p.ImageAvailable.Initialized() {
		device.DestroySemaphore(p.ImageAvailable)
		p.ImageAvailable = 0
	}
}

// Commands is a command pool and its single primary buffer for one queue
// role.
type Commands struct {
	Pool   gpu.CommandPool
	Buffer gpu.CommandBuffer
}

func newCommands(device gpu.DeviceDriver, queueFamily int) (Commands, error) {
	var commands Commands

	pool, res, err := device.CreateCommandPool(queueFamily)
	if err := gpu.Check(gpu.CommandPoolCreation, res, err); err != nil {
		return commands, err
	}
	commands.Pool = pool

	buffers, res, err := device.AllocateCommandBuffers(pool, 1)
	if err := gpu.Check(gpu.CommandBufferAllocation, res, err); err != nil {
		commands.destroy(device)
		return commands, err
	}
	if len(buffers) != 1 {
		commands.destroy(device)
		return commands, errors.Wrapf(gpu.NewContextError(gpu.CommandBufferAllocation), "got %d buffers", len(buffers))
	}
	commands.Buffer = buffers[0]

	return commands, nil
}

func (c *Commands) destroy(device gpu.DeviceDriver) {
	if c.Buffer.Initialized() {
		device.FreeCommandBuffers(c.Pool, []gpu.CommandBuffer{c.Buffer})
		c.Buffer = 0
	}
	if c.Pool.Initialized() {
		device.DestroyCommandPool(c.Pool)
		c.Pool = 0
	}
}
