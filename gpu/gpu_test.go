//go:build !nogpu

package gpu

import (
	"testing"

	"github.com/gogpu/chromakey/backend"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

type fakeProvider struct {
	device hal.Device
	queue  hal.Queue
	name   string
}

func (p *fakeProvider) Device() gpucontext.Device             { return p.device }
func (p *fakeProvider) Queue() gpucontext.Queue               { return p.queue }
func (p *fakeProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }
func (p *fakeProvider) Adapter() gpucontext.Adapter           { return nil }
func (p *fakeProvider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{Name: p.name} }

type fakeHalProvider struct {
	fakeProvider
}

func (p *fakeHalProvider) Device() gpucontext.Device { return "opaque webgpu device" }
func (p *fakeHalProvider) HalDevice() any            { return p.device }
func (p *fakeHalProvider) HalQueue() any             { return p.queue }

func openNoop(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

func TestCandidatesRegistered(t *testing.T) {
	for _, name := range []string{backend.NameVulkan, backend.NameMetal, backend.NameDX12, backend.NameGLES} {
		if !backend.IsRegistered(name) {
			t.Errorf("candidate %q not registered", name)
		}
	}
	defaults := backend.Defaults()
	if len(defaults) == 0 || defaults[0] != backend.NameVulkan {
		t.Errorf("Defaults() = %v, want vulkan first", defaults)
	}
	for _, name := range defaults {
		if name == backend.NameSoftware {
			t.Errorf("Defaults() = %v, must not include software", defaults)
		}
	}
}

func TestNewDeviceFromProvider(t *testing.T) {
	dev, queue := openNoop(t)

	tests := []struct {
		name     string
		provider gpucontext.DeviceProvider
		wantName string
	}{
		{"hal values", &fakeProvider{device: dev, queue: queue, name: "Noop Adapter"}, "shared:Noop Adapter"},
		{"hal provider", &fakeHalProvider{fakeProvider{device: dev, queue: queue}}, "shared"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDeviceFromProvider(tt.provider)
			if err != nil {
				t.Fatalf("NewDeviceFromProvider() error = %v", err)
			}
			if d.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", d.Name(), tt.wantName)
			}
			if err := d.Open(); err != nil {
				t.Errorf("Open() error = %v", err)
			}
			d.Close()
		})
	}
}

func TestNewDeviceFromProviderRejectsForeignHandles(t *testing.T) {
	if _, err := NewDeviceFromProvider(nil); err == nil {
		t.Error("nil provider should fail")
	}
	p := &fakeProvider{}
	if _, err := NewDeviceFromProvider(p); err == nil {
		t.Error("provider without hal handles should fail")
	}
}
