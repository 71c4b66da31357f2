//go:build !nogpu

// Package gpu registers the hardware device candidates.
//
// Import this package to let chromakey run passes on the GPU through
// gogpu/wgpu. Each HAL backend linked into the binary becomes a candidate:
//
//	"vulkan", "metal", "dx12"  modern contexts, tried first
//	"gles"                     legacy OpenGL ES context
//
// A candidate whose backend is missing on the host, or that cannot create
// a context, fails to open and selection moves on to the next one. When
// none opens the error wraps backend.ErrNoGraphicsCapability.
//
// Usage:
//
//	import _ "github.com/gogpu/chromakey/gpu" // enable GPU candidates
package gpu

import (
	"fmt"

	"github.com/gogpu/chromakey/backend"
	gpuimpl "github.com/gogpu/chromakey/internal/gpu"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/allbackends"
)

// candidates maps candidate names to HAL backend variants.
var candidates = []struct {
	name    string
	variant gputypes.Backend
}{
	{backend.NameVulkan, gputypes.BackendVulkan},
	{backend.NameMetal, gputypes.BackendMetal},
	{backend.NameDX12, gputypes.BackendDX12},
	{backend.NameGLES, gputypes.BackendGL},
}

func init() {
	for _, c := range candidates {
		variant := c.variant
		name := c.name
		backend.Register(name, func() backend.Device {
			return gpuimpl.NewDevice(name, variant)
		})
	}
}

// halProvider is implemented by device providers that expose the HAL
// device and queue behind their WebGPU handles.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// NewDeviceFromProvider wraps a host application's GPU device so passes run
// on it instead of a device of their own. The provider must either expose
// HalDevice/HalQueue or return hal values from Device/Queue.
//
// The returned device is opened by the Keyer like any other and is never
// destroyed by it.
func NewDeviceFromProvider(provider gpucontext.DeviceProvider) (backend.Device, error) {
	if provider == nil {
		return nil, fmt.Errorf("gpu: nil device provider")
	}
	var dev, queue any = provider.Device(), provider.Queue()
	if hp, ok := provider.(halProvider); ok {
		dev, queue = hp.HalDevice(), hp.HalQueue()
	}
	halDev, ok := dev.(hal.Device)
	if !ok || halDev == nil {
		return nil, fmt.Errorf("gpu: provider device is %T, not hal.Device", dev)
	}
	halQueue, ok := queue.(hal.Queue)
	if !ok || halQueue == nil {
		return nil, fmt.Errorf("gpu: provider queue is %T, not hal.Queue", queue)
	}
	name := "shared"
	if info := provider.AdapterInfo(); info.Name != "" {
		name = "shared:" + info.Name
	}
	d, err := gpuimpl.NewSharedDevice(name, halDev, halQueue)
	if err != nil {
		return nil, err
	}
	return d, nil
}
