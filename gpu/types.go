package gpu

import "github.com/google/uuid"

// Opaque handles. The zero value of every handle is the null handle.
type (
	PhysicalDevice uint64
	Surface        uint64
	Queue          uint64
	Swapchain      uint64
	Image          uint64
	ImageView      uint64
	Framebuffer    uint64
	RenderPass     uint64
	Semaphore      uint64
	CommandPool    uint64
	CommandBuffer  uint64
	ShaderModule   uint64
	PipelineLayout uint64
	Pipeline       uint64
)

func (h PhysicalDevice) Initialized() bool { return h != 0 }
func (h Surface) Initialized() bool        { return h != 0 }
func (h Queue) Initialized() bool          { return h != 0 }
func (h Swapchain) Initialized() bool      { return h != 0 }
func (h Image) Initialized() bool          { return h != 0 }
func (h ImageView) Initialized() bool      { return h != 0 }
func (h Framebuffer) Initialized() bool    { return h != 0 }
func (h RenderPass) Initialized() bool     { return h != 0 }
func (h Semaphore) Initialized() bool      { return h != 0 }
func (h CommandPool) Initialized() bool    { return h != 0 }
func (h CommandBuffer) Initialized() bool  { return h != 0 }
func (h ShaderModule) Initialized() bool   { return h != 0 }
func (h PipelineLayout) Initialized() bool { return h != 0 }
func (h Pipeline) Initialized() bool       { return h != 0 }

type Format int32

const (
	FormatUndefined     Format = 0
	FormatR8G8B8A8UNorm Format = 37
	FormatR8G8B8A8SRGB  Format = 43
	FormatB8G8R8A8UNorm Format = 44
	FormatB8G8R8A8SRGB  Format = 50
)

type ColorSpace int32

const ColorSpaceSRGBNonlinear ColorSpace = 0

type PresentMode int32

const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFIFO        PresentMode = 2
	PresentModeFIFORelaxed PresentMode = 3
)

// SurfaceTransform is a VkSurfaceTransformFlagBitsKHR value.
type SurfaceTransform uint32

const SurfaceTransformIdentity SurfaceTransform = 1

type ImageLayout int32

const (
	ImageLayoutUndefined              ImageLayout = 0
	ImageLayoutColorAttachmentOptimal ImageLayout = 2
	ImageLayoutPresentSrc             ImageLayout = 1000001002
)

type PipelineStage uint32

const (
	PipelineStageTopOfPipe             PipelineStage = 0x00000001
	PipelineStageColorAttachmentOutput PipelineStage = 0x00000400
	PipelineStageBottomOfPipe          PipelineStage = 0x00002000
)

type Access uint32

const (
	AccessColorAttachmentWrite Access = 0x00000100
	AccessMemoryRead           Access = 0x00008000
)

type QueueFlags uint32

const (
	QueueGraphics QueueFlags = 0x1
	QueueCompute  QueueFlags = 0x2
	QueueTransfer QueueFlags = 0x4
)

type PhysicalDeviceType int32

const (
	PhysicalDeviceTypeOther PhysicalDeviceType = iota
	PhysicalDeviceTypeIntegratedGPU
	PhysicalDeviceTypeDiscreteGPU
	PhysicalDeviceTypeVirtualGPU
	PhysicalDeviceTypeCPU
)

func (t PhysicalDeviceType) String() string {
	switch t {
	case PhysicalDeviceTypeIntegratedGPU:
		return "INTEGRATED_GPU"
	case PhysicalDeviceTypeDiscreteGPU:
		return "DISCRETE_GPU"
	case PhysicalDeviceTypeVirtualGPU:
		return "VIRTUAL_GPU"
	case PhysicalDeviceTypeCPU:
		return "CPU"
	default:
		return "DEVICE_TYPE_OTHER"
	}
}

// UndefinedExtentSize is reported as the current extent's width and height
// when the surface size is determined by the swapchain.
const UndefinedExtentSize = -1

type Extent2D struct {
	Width  int
	Height int
}

type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

type SurfaceCapabilities struct {
	MinImageCount    int
	MaxImageCount    int
	CurrentExtent    Extent2D
	MinImageExtent   Extent2D
	MaxImageExtent   Extent2D
	CurrentTransform SurfaceTransform
}

type LayerProperties struct {
	Name        string
	Description string
}

type ExtensionProperties struct {
	Name string
}

type PhysicalDeviceProperties struct {
	Name              string
	Type              PhysicalDeviceType
	APIVersion        uint32
	PipelineCacheUUID uuid.UUID
}

type QueueFamilyProperties struct {
	Flags      QueueFlags
	QueueCount int
}

type InstanceCreateInfo struct {
	ApplicationName string
	EngineName      string
	Layers          []string
	Extensions      []string

	// DebugMessenger installs a validation message callback for the life
	// of the instance.
	DebugMessenger bool
}

type DeviceCreateInfo struct {
	QueueFamilies []int
	Extensions    []string
}

type SwapchainCreateInfo struct {
	Surface       Surface
	MinImageCount int
	Format        SurfaceFormat
	Extent        Extent2D
	PreTransform  SurfaceTransform
	PresentMode   PresentMode

	// QueueFamilies lists the families sharing the images. More than one
	// family selects concurrent sharing.
	QueueFamilies []int

	OldSwapchain Swapchain
}

type RenderPassCreateInfo struct {
	ColorFormat Format
}

type FramebufferCreateInfo struct {
	RenderPass RenderPass
	Attachment ImageView
	Extent     Extent2D
}

type RenderPassBeginInfo struct {
	RenderPass  RenderPass
	Framebuffer Framebuffer
	Extent      Extent2D
	ClearColor  [4]float32
}

type ImageBarrier struct {
	Image     Image
	OldLayout ImageLayout
	NewLayout ImageLayout
	SrcAccess Access
	DstAccess Access
	SrcStage  PipelineStage
	DstStage  PipelineStage
}

type SubmitInfo struct {
	WaitSemaphores   []Semaphore
	WaitStages       []PipelineStage
	CommandBuffers   []CommandBuffer
	SignalSemaphores []Semaphore
}

type PresentInfo struct {
	WaitSemaphores []Semaphore
	Swapchain      Swapchain
	ImageIndex     int
}

type GraphicsPipelineCreateInfo struct {
	Layout         PipelineLayout
	RenderPass     RenderPass
	VertexShader   ShaderModule
	FragmentShader ShaderModule
}
