package main

import (
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/vkngwrapper/presenter/app"
	"github.com/vkngwrapper/presenter/gpu"
	"github.com/vkngwrapper/presenter/gpu/vkng"
	"github.com/vkngwrapper/presenter/pipeline"
	"github.com/vkngwrapper/presenter/platform/sdlplatform"
)

func run(logger *slog.Logger) error {
	conn, err := sdlplatform.Open(logger)
	if err != nil {
		return err
	}

	loader, err := vkng.NewLoader(sdl.VulkanGetVkGetInstanceProcAddr(), logger)
	if err != nil {
		return errors.CombineErrors(err, conn.Close())
	}

	opts := app.DefaultOptions()
	opts.Connection = conn
	opts.Loader = loader
	opts.Logger = logger

	vertex, fragment, ok, err := pipeline.LoadShaders(".")
	if err != nil {
		return err
	}
	if ok {
		opts.Pipeline = func(device gpu.DeviceDriver, renderPass gpu.RenderPass) (app.Pipeline, error) {
			p, err := pipeline.New(device, renderPass, vertex, fragment)
			if err != nil {
				return nil, err
			}
			return p, nil
		}
	} else {
		logger.Info("no shaders found, clearing only")
	}

	application, err := app.New(opts)
	if err != nil {
		return err
	}

	runErr := application.Run()
	destroyErr := application.Destroy()
	if runErr != nil {
		return runErr
	}
	return destroyErr
}

func main() {
	runtime.LockOSThread()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	err := run(logger)
	if err != nil {
		log.Fatalf("%v\n", err)
	}
}
