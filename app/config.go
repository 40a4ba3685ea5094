package app

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	ApplicationName = "presenter"
	EngineName      = "presenter"

	WindowTitle  = "presenter"
	WindowWidth  = 500
	WindowHeight = 500

	ProbeWindowWidth  = 100
	ProbeWindowHeight = 100

	TickInterval = 33 * time.Millisecond

	ValidationLayer = "VK_LAYER_KHRONOS_validation"

	SwapchainExtension              = "VK_KHR_swapchain"
	DebugUtilsExtension             = "VK_EXT_debug_utils"
	PortabilityEnumerationExtension = "VK_KHR_portability_enumeration"
	PortabilitySubsetExtension      = "VK_KHR_portability_subset"
)

var ClearColor = mgl32.Vec4{1, 1, 1, 1}
