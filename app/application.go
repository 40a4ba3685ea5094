// Package app is the composition root: it opens the GPU, the window and the
// frame loop in order, runs the loop, and tears everything down in reverse.
package app

import (
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/vkngwrapper/presenter/frame"
	"github.com/vkngwrapper/presenter/gpu"
	"github.com/vkngwrapper/presenter/internal/logging"
	"github.com/vkngwrapper/presenter/platform"
	"github.com/vkngwrapper/presenter/window"
)

type Application struct {
	opts   Options
	logger *slog.Logger

	conn     platform.Connection
	instance gpu.InstanceDriver
	probe    *window.Window
	ctx      *gpu.Context

	window     *window.Window
	renderPass gpu.RenderPass
	scheduler  *frame.Scheduler
	pipeline   Pipeline

	state frame.RunState
}

// New builds the application. If any step fails, everything created before
// it is destroyed in reverse order and the connection is closed.
func New(opts Options) (app *Application, err error) {
	if opts.Connection == nil {
		return nil, errors.New("app: no window system connection")
	}
	if opts.Loader == nil {
		if cerr := opts.Connection.Close(); cerr != nil {
			return nil, errors.CombineErrors(errors.New("app: no GPU loader"), cerr)
		}
		return nil, errors.New("app: no GPU loader")
	}

	a := &Application{
		opts:   opts,
		logger: logging.OrNop(opts.Logger),
		conn:   opts.Connection,
	}
	defer func() {
		if err != nil {
			err = errors.CombineErrors(err, a.Destroy())
			app = nil
		}
	}()

	if err := a.createInstance(); err != nil {
		return nil, err
	}

	physicalDevice, families, err := a.probeDevices()
	if err != nil {
		return nil, err
	}

	if err := a.createDevice(physicalDevice, families); err != nil {
		return nil, err
	}

	a.window, err = window.New(a.ctx, a.conn, window.Options{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		X:      opts.X,
		Y:      opts.Y,
		Screen: opts.Screen,
		Logger: a.logger,
	})
	if err != nil {
		return nil, err
	}

	renderPass, res, err := a.ctx.Device.CreateRenderPass(gpu.RenderPassCreateInfo{
		ColorFormat: a.window.Swapchain().Format.Format,
	})
	if err := gpu.Check(gpu.RenderPassCreation, res, err); err != nil {
		return nil, err
	}
	a.renderPass = renderPass

	if err := a.window.CreateFramebuffers(renderPass); err != nil {
		return nil, err
	}

	a.scheduler, err = frame.NewScheduler(a.ctx, a.window, frame.Config{
		RenderPass: renderPass,
		ClearColor: opts.ClearColor,
		Logger:     a.logger,
	})
	if err != nil {
		return nil, err
	}

	if opts.Pipeline != nil {
		p, err := opts.Pipeline(a.ctx.Device, renderPass)
		if err != nil {
			return nil, errors.Wrap(err, "creating pipeline")
		}
		a.pipeline = p
		a.scheduler.SetRenderLogic(p)
	}

	a.state = frame.RunState{KeepRunning: true}
	return a, nil
}

func (a *Application) createInstance() error {
	inv, err := logInstanceInventory(a.opts.Loader, a.logger)
	if err != nil {
		return err
	}

	required, err := a.conn.RequiredInstanceExtensions()
	if err != nil {
		return errors.Wrap(err, "querying window system extensions")
	}

	info := gpu.InstanceCreateInfo{
		ApplicationName: ApplicationName,
		EngineName:      EngineName,
	}
	for _, extension := range required {
		if !inv.extensions[extension] {
			return errors.Wrapf(gpu.NewError(gpu.InstanceCreation, gpu.ErrorExtensionNotPresent), "missing %s", extension)
		}
		info.Extensions = append(info.Extensions, extension)
	}

	if inv.extensions[PortabilityEnumerationExtension] {
		info.Extensions = append(info.Extensions, PortabilityEnumerationExtension)
	}

	if a.opts.EnableValidation {
		if inv.layers[ValidationLayer] && inv.extensions[DebugUtilsExtension] {
			info.Layers = append(info.Layers, ValidationLayer)
			info.Extensions = append(info.Extensions, DebugUtilsExtension)
			info.DebugMessenger = true
		} else {
			a.logger.Warn("validation layer not available", slog.String("layer", ValidationLayer))
		}
	}

	instance, res, err := a.opts.Loader.CreateInstance(info)
	if err := gpu.Check(gpu.InstanceCreation, res, err); err != nil {
		return err
	}
	a.instance = instance

	return logDevices(instance, a.logger)
}

// probeDevices picks a device by testing presentation support against a
// temporary surface. The temporary window is gone when probeDevices returns.
func (a *Application) probeDevices() (gpu.PhysicalDevice, gpu.QueueFamilies, error) {
	var err error
	a.probe, err = window.New(gpu.NewProbeContext(a.instance), a.conn, window.Options{
		Title:  a.opts.Title,
		Width:  ProbeWindowWidth,
		Height: ProbeWindowHeight,
		Screen: a.opts.Screen,
		Logger: a.logger,
	})
	if err != nil {
		return 0, gpu.QueueFamilies{}, err
	}

	physicalDevice, families, err := SelectDevice(a.instance, a.probe.Surface(), a.logger)
	if err != nil {
		return 0, gpu.QueueFamilies{}, err
	}

	probe := a.probe
	a.probe = nil
	if err := probe.Destroy(); err != nil {
		return 0, gpu.QueueFamilies{}, errors.Wrap(err, "destroying probe window")
	}

	return physicalDevice, families, nil
}

func (a *Application) createDevice(physicalDevice gpu.PhysicalDevice, families gpu.QueueFamilies) error {
	extensions := []string{SwapchainExtension}

	portability, err := hasDeviceExtension(a.instance, physicalDevice, PortabilitySubsetExtension)
	if err != nil {
		return err
	}
	if portability {
		extensions = append(extensions, PortabilitySubsetExtension)
	}

	device, res, err := a.instance.CreateDevice(physicalDevice, gpu.DeviceCreateInfo{
		QueueFamilies: []int{families.Present, families.Graphics},
		Extensions:    extensions,
	})
	if err := gpu.Check(gpu.DeviceCreation, res, err); err != nil {
		return err
	}

	a.ctx = gpu.NewContext(a.instance, physicalDevice, device, families)
	return nil
}

// Window returns the presentation window.
func (a *Application) Window() *window.Window {
	return a.window
}

func (a *Application) State() frame.RunState {
	return a.state
}

func (a *Application) Stats() frame.Stats {
	return a.scheduler.Stats()
}

// Run ticks the frame scheduler until the window is closed, a tick fails, or
// MaxTicks ticks have run. The current tick always completes before the
// close request is honored.
func (a *Application) Run() error {
	ticks := 0
	for a.state.KeepRunning {
		if a.opts.MaxTicks > 0 && ticks >= a.opts.MaxTicks {
			break
		}

		if err := a.scheduler.Tick(&a.state); err != nil {
			return err
		}
		ticks++

		if a.state.KeepRunning && a.opts.TickInterval > 0 {
			time.Sleep(a.opts.TickInterval)
		}
	}

	stats := a.scheduler.Stats()
	a.logger.Info("run finished",
		slog.Int("ticks", stats.Ticks),
		slog.Int("presented", stats.Presented),
		slog.Int("rebuilds", stats.Rebuilds),
	)
	return nil
}

// Destroy tears the application down in reverse construction order. Objects
// that need the device are only touched if a device was ever created.
func (a *Application) Destroy() error {
	var err error

	if a.ctx.HasDevice() {
		err = errors.CombineErrors(err, a.ctx.WaitIdle())

		if a.pipeline != nil {
			a.pipeline.Destroy()
			a.pipeline = nil
		}

		if a.scheduler != nil {
			a.scheduler.Destroy()
			a.scheduler = nil
		}

		if a.window != nil {
			a.window.ReleaseFramebuffers()
		}

		if a.renderPass.Initialized() {
			a.ctx.Device.DestroyRenderPass(a.renderPass)
			a.renderPass = 0
		}

		if a.window != nil {
			err = errors.CombineErrors(err, a.window.Destroy())
			a.window = nil
		}
	}

	if a.probe != nil {
		err = errors.CombineErrors(err, a.probe.Destroy())
		a.probe = nil
	}

	if a.ctx.HasDevice() {
		err = errors.CombineErrors(err, a.ctx.Destroy())
		a.instance = nil
	} else if a.instance != nil {
		a.instance.DestroyInstance()
		a.instance = nil
	}

	if a.conn != nil {
		err = errors.CombineErrors(err, a.conn.Close())
		a.conn = nil
	}

	return err
}
