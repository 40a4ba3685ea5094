// Package pipeline builds a graphics pipeline from SPIR-V shaders and records
// a single full-screen draw with it.
package pipeline

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/vkngwrapper/presenter/frame"
	"github.com/vkngwrapper/presenter/gpu"
)

const (
	VertexShaderFile   = "vertex_shader.spv"
	FragmentShaderFile = "fragment_shader.spv"

	spirvMagic = 0x07230203
)

// Pipeline is a graphics pipeline drawing three vertices with no vertex
// input. The vertex shader generates the positions.
type Pipeline struct {
	device   gpu.DeviceDriver
	layout   gpu.PipelineLayout
	pipeline gpu.Pipeline
}

var _ frame.RenderLogic = (*Pipeline)(nil)

// New compiles the two shader stages into a pipeline for renderPass. The
// shader modules are released before New returns.
func New(device gpu.DeviceDriver, renderPass gpu.RenderPass, vertex, fragment []byte) (*Pipeline, error) {
	vertexCode, err := Bytecode(vertex)
	if err != nil {
		return nil, errors.Wrap(err, "vertex shader")
	}
	fragmentCode, err := Bytecode(fragment)
	if err != nil {
		return nil, errors.Wrap(err, "fragment shader")
	}

	vertexModule, res, err := device.CreateShaderModule(vertexCode)
	if err := gpu.Check(gpu.ShaderModuleCreation, res, err); err != nil {
		return nil, err
	}
	defer device.DestroyShaderModule(vertexModule)

	fragmentModule, res, err := device.CreateShaderModule(fragmentCode)
	if err := gpu.Check(gpu.ShaderModuleCreation, res, err); err != nil {
		return nil, err
	}
	defer device.DestroyShaderModule(fragmentModule)

	p := &Pipeline{device: device}

	p.layout, res, err = device.CreatePipelineLayout()
	if err := gpu.Check(gpu.PipelineLayoutCreation, res, err); err != nil {
		return nil, err
	}

	p.pipeline, res, err = device.CreateGraphicsPipeline(gpu.GraphicsPipelineCreateInfo{
		Layout:         p.layout,
		RenderPass:     renderPass,
		VertexShader:   vertexModule,
		FragmentShader: fragmentModule,
	})
	if err := gpu.Check(gpu.GraphicsPipelineCreation, res, err); err != nil {
		p.Destroy()
		return nil, err
	}

	return p, nil
}

// Record binds the pipeline, covers the target with the viewport and draws.
func (p *Pipeline) Record(device gpu.DeviceDriver, buffer gpu.CommandBuffer, target frame.Target) error {
	device.CmdBindGraphicsPipeline(buffer, p.pipeline)
	device.CmdSetViewport(buffer, target.Extent)
	device.CmdDraw(buffer, 3, 1)
	return nil
}

func (p *Pipeline) Destroy() {
	if p.pipeline.Initialized() {
		p.device.DestroyPipeline(p.pipeline)
		p.pipeline = 0
	}
	if p.layout.Initialized() {
		p.device.DestroyPipelineLayout(p.layout)
		p.layout = 0
	}
}

// Bytecode converts a little-endian SPIR-V binary into 32-bit words.
func Bytecode(b []byte) ([]uint32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, errors.Newf("spir-v length %d is not a positive multiple of 4", len(b))
	}

	code := make([]uint32, len(b)/4)
	for i := range code {
		code[i] = binary.LittleEndian.Uint32(b[i*4:])
	}

	if code[0] != spirvMagic {
		return nil, errors.Newf("bad spir-v magic number 0x%08x", code[0])
	}
	return code, nil
}

// LoadShaders reads the vertex and fragment shaders from dir. ok is false,
// with a nil error, when neither file exists.
func LoadShaders(dir string) (vertex, fragment []byte, ok bool, err error) {
	vertex, err = os.ReadFile(filepath.Join(dir, VertexShaderFile))
	if errors.Is(err, os.ErrNotExist) {
		_, statErr := os.Stat(filepath.Join(dir, FragmentShaderFile))
		if errors.Is(statErr, os.ErrNotExist) {
			return nil, nil, false, nil
		}
	}
	if err != nil {
		return nil, nil, false, errors.Wrap(err, "reading vertex shader")
	}

	fragment, err = os.ReadFile(filepath.Join(dir, FragmentShaderFile))
	if err != nil {
		return nil, nil, false, errors.Wrap(err, "reading fragment shader")
	}

	return vertex, fragment, true, nil
}
