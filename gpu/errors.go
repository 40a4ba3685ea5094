package gpu

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrorContext names the GPU operation that failed.
type ErrorContext int

const (
	InstanceCreation ErrorContext = iota
	DeviceCreation
	NoViablePhysicalDevice
	SurfaceCreation
	SurfaceQuery
	SwapchainCreation
	SwapchainImages
	ImageViewCreation
	FramebufferCreation
	RenderPassCreation
	PipelineLayoutCreation
	GraphicsPipelineCreation
	ShaderModuleCreation
	SemaphoreCreation
	CommandPoolCreation
	CommandBufferAllocation
	CommandBufferRecording
	QueueSubmit
	QueuePresent
	SwapchainAcquireNextImage
	DeviceWaitIdle
)

var contextNames = [...]string{
	InstanceCreation:          "InstanceCreation",
	DeviceCreation:            "DeviceCreation",
	NoViablePhysicalDevice:    "NoViablePhysicalDeviceFound",
	SurfaceCreation:           "SurfaceCreation",
	SurfaceQuery:              "SurfaceQuery",
	SwapchainCreation:         "CreateSwapchain",
	SwapchainImages:           "GetSwapchainImages",
	ImageViewCreation:         "CreateImageView",
	FramebufferCreation:       "CreateFramebuffer",
	RenderPassCreation:        "CreateRenderPass",
	PipelineLayoutCreation:    "CreatePipelineLayout",
	GraphicsPipelineCreation:  "CreateGraphicsPipeline",
	ShaderModuleCreation:      "CreateShaderModule",
	SemaphoreCreation:         "CreateSemaphore",
	CommandPoolCreation:       "CreateCommandPool",
	CommandBufferAllocation:   "AllocateCommandBuffers",
	CommandBufferRecording:    "RecordCommandBuffer",
	QueueSubmit:               "QueueSubmit",
	QueuePresent:              "QueuePresent",
	SwapchainAcquireNextImage: "SwapchainAcquireNextImage",
	DeviceWaitIdle:            "DeviceWaitIdle",
}

func (c ErrorContext) String() string {
	if c < 0 || int(c) >= len(contextNames) {
		return fmt.Sprintf("ErrorContext(%d)", int(c))
	}
	return contextNames[c]
}

// Error is a failed GPU call: which operation failed and, when the driver
// produced one, the native result code.
type Error struct {
	Context   ErrorContext
	Result    Result
	HasResult bool

	cause error
}

func (e *Error) Error() string {
	switch {
	case e.HasResult:
		return fmt.Sprintf("%s failed with %s", e.Context, e.Result)
	case e.cause != nil:
		return fmt.Sprintf("%s failed: %v", e.Context, e.cause)
	default:
		return fmt.Sprintf("%s failed", e.Context)
	}
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NewError returns an error for ctx carrying the native result code res.
func NewError(ctx ErrorContext, res Result) error {
	return errors.WithStack(&Error{Context: ctx, Result: res, HasResult: true})
}

// NewContextError returns an error for ctx without a native result code.
func NewContextError(ctx ErrorContext) error {
	return errors.WithStack(&Error{Context: ctx})
}

// Check folds the (result, error) pair returned by a driver call into a
// typed error. It returns nil when the call succeeded or returned a
// non-error status code such as Suboptimal.
func Check(ctx ErrorContext, res Result, err error) error {
	if err == nil && !res.IsError() {
		return nil
	}

	gerr := &Error{Context: ctx, cause: err}
	if res != Success {
		gerr.Result = res
		gerr.HasResult = true
	}
	return errors.WithStack(gerr)
}

// ContextOf extracts the failing operation from err, if err carries one.
func ContextOf(err error) (ErrorContext, bool) {
	var gerr *Error
	if !errors.As(err, &gerr) {
		return 0, false
	}
	return gerr.Context, true
}

// ResultOf extracts the native result code from err, if err carries one.
func ResultOf(err error) (Result, bool) {
	var gerr *Error
	if !errors.As(err, &gerr) || !gerr.HasResult {
		return Success, false
	}
	return gerr.Result, true
}
