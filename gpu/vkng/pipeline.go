package vkng

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"

	"github.com/vkngwrapper/presenter/gpu"
)

func (d *Device) CreateShaderModule(code []uint32) (gpu.ShaderModule, gpu.Result, error) {
	module, res, err := d.driver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: code,
	})
	if err != nil {
		return 0, result(res), err
	}
	return gpu.ShaderModule(d.modules.add(module)), result(res), nil
}

func (d *Device) DestroyShaderModule(module gpu.ShaderModule) {
	if native, ok := d.modules.remove(uint64(module)); ok {
		d.driver.DestroyShaderModule(native, nil)
	}
}

func (d *Device) CreatePipelineLayout() (gpu.PipelineLayout, gpu.Result, error) {
	layout, res, err := d.driver.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{})
	if err != nil {
		return 0, result(res), err
	}
	return gpu.PipelineLayout(d.layouts.add(layout)), result(res), nil
}

func (d *Device) DestroyPipelineLayout(layout gpu.PipelineLayout) {
	if native, ok := d.layouts.remove(uint64(layout)); ok {
		d.driver.DestroyPipelineLayout(native, nil)
	}
}

// CreateGraphicsPipeline builds a vertex-input-free triangle list pipeline.
// Viewport and scissor are dynamic so the pipeline outlives swapchain
// rebuilds; the state below only fixes their count.
func (d *Device) CreateGraphicsPipeline(info gpu.GraphicsPipelineCreateInfo) (gpu.Pipeline, gpu.Result, error) {
	pipelines, res, err := d.driver.CreateGraphicsPipelines(nil, nil,
		core1_0.GraphicsPipelineCreateInfo{
			Stages: []core1_0.PipelineShaderStageCreateInfo{
				{
					Stage:  core1_0.StageVertex,
					Module: d.modules.lookup(uint64(info.VertexShader)),
					Name:   "main",
				},
				{
					Stage:  core1_0.StageFragment,
					Module: d.modules.lookup(uint64(info.FragmentShader)),
					Name:   "main",
				},
			},
			VertexInputState: &core1_0.PipelineVertexInputStateCreateInfo{},
			InputAssemblyState: &core1_0.PipelineInputAssemblyStateCreateInfo{
				Topology:               core1_0.PrimitiveTopologyTriangleList,
				PrimitiveRestartEnable: false,
			},
			ViewportState: &core1_0.PipelineViewportStateCreateInfo{
				Viewports: []core1_0.Viewport{{Width: 1, Height: 1, MaxDepth: 1}},
				Scissors:  []core1_0.Rect2D{{Extent: core1_0.Extent2D{Width: 1, Height: 1}}},
			},
			RasterizationState: &core1_0.PipelineRasterizationStateCreateInfo{
				PolygonMode: core1_0.PolygonModeFill,
				CullMode:    core1_0.CullModeBack,
				FrontFace:   core1_0.FrontFaceCounterClockwise,
				LineWidth:   1.0,
			},
			MultisampleState: &core1_0.PipelineMultisampleStateCreateInfo{
				RasterizationSamples: core1_0.Samples1,
				MinSampleShading:     1.0,
			},
			ColorBlendState: &core1_0.PipelineColorBlendStateCreateInfo{
				LogicOp: core1_0.LogicOpCopy,
				Attachments: []core1_0.PipelineColorBlendAttachmentState{
					{
						ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
					},
				},
			},
			DynamicState: &core1_0.PipelineDynamicStateCreateInfo{
				DynamicStates: []core1_0.DynamicState{
					core1_0.DynamicStateViewport,
					core1_0.DynamicStateScissor,
				},
			},
			Layout:            d.layouts.lookup(uint64(info.Layout)),
			RenderPass:        d.renderPasses.lookup(uint64(info.RenderPass)),
			Subpass:           0,
			BasePipelineIndex: -1,
		},
	)
	if err != nil {
		return 0, result(res), err
	}
	if len(pipelines) != 1 {
		return 0, gpu.ErrorUnknown, errors.Newf("vkng: expected 1 pipeline, got %d", len(pipelines))
	}

	return gpu.Pipeline(d.pipelines.add(pipelines[0])), result(res), nil
}

func (d *Device) DestroyPipeline(pipeline gpu.Pipeline) {
	if native, ok := d.pipelines.remove(uint64(pipeline)); ok {
		d.driver.DestroyPipeline(native, nil)
	}
}
