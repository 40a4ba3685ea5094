package pipeline

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkngwrapper/presenter/frame"
	"github.com/vkngwrapper/presenter/gpu"
	"github.com/vkngwrapper/presenter/gpu/gputest"
)

func spirv(words ...uint32) []byte {
	b := make([]byte, 4*(len(words)+1))
	binary.LittleEndian.PutUint32(b, spirvMagic)
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[4*(i+1):], w)
	}
	return b
}

func newDevice(t *testing.T) (*gputest.Backend, gpu.DeviceDriver) {
	t.Helper()

	backend := gputest.New()
	instance, _, err := backend.CreateInstance(gpu.InstanceCreateInfo{})
	require.NoError(t, err)
	device, _, err := instance.CreateDevice(1, gpu.DeviceCreateInfo{})
	require.NoError(t, err)
	return backend, device
}

func TestBytecode(t *testing.T) {
	code, err := Bytecode(spirv(0x00010000, 7))
	require.NoError(t, err)
	assert.Equal(t, []uint32{spirvMagic, 0x00010000, 7}, code)

	_, err = Bytecode([]byte{1, 2, 3})
	assert.Error(t, err)

	_, err = Bytecode(nil)
	assert.Error(t, err)

	_, err = Bytecode([]byte{0, 0, 0, 0})
	assert.Error(t, err)
}

func TestNewReleasesShaderModules(t *testing.T) {
	backend, device := newDevice(t)

	p, err := New(device, 9, spirv(1), spirv(2))
	require.NoError(t, err)

	assert.Equal(t, 2, backend.Count("CreateShaderModule"))
	assert.Equal(t, 2, backend.Count("DestroyShaderModule"))
	live := backend.Live()
	assert.Equal(t, 1, live["Pipeline"])
	assert.Equal(t, 1, live["PipelineLayout"])
	assert.Zero(t, live["ShaderModule"])

	p.Destroy()
	live = backend.Live()
	assert.Zero(t, live["Pipeline"])
	assert.Zero(t, live["PipelineLayout"])
}

func TestNewFailureReleasesLayout(t *testing.T) {
	backend, device := newDevice(t)
	backend.Fail("CreateGraphicsPipeline", gpu.ErrorOutOfDeviceMemory)

	_, err := New(device, 9, spirv(1), spirv(2))
	require.Error(t, err)
	assert.Equal(t, "CreateGraphicsPipeline failed with VK_ERROR_OUT_OF_DEVICE_MEMORY", err.Error())

	live := backend.Live()
	assert.Zero(t, live["PipelineLayout"])
	assert.Zero(t, live["ShaderModule"])
}

func TestRecord(t *testing.T) {
	backend, device := newDevice(t)
	p, err := New(device, 9, spirv(1), spirv(2))
	require.NoError(t, err)

	mark := backend.Mark()
	require.NoError(t, p.Record(device, 1, frame.Target{Extent: gpu.Extent2D{Width: 10, Height: 10}}))
	assert.Equal(t, []string{"CmdBindGraphicsPipeline", "CmdSetViewport", "CmdDraw"}, backend.Since(mark))
}

func TestLoadShaders(t *testing.T) {
	dir := t.TempDir()

	_, _, ok, err := LoadShaders(dir)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(dir, VertexShaderFile), spirv(1), 0o644))
	_, _, _, err = LoadShaders(dir)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, FragmentShaderFile), spirv(2), 0o644))
	vertex, fragment, ok, err := LoadShaders(dir)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, spirv(1), vertex)
	assert.Equal(t, spirv(2), fragment)
}
