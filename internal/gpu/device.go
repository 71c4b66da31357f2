//go:build !nogpu

package gpu

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/chromakey/backend"
	"github.com/gogpu/chromakey/gpucore"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// defaultMaxDimension is used when the device reports no 2D texture limit.
const defaultMaxDimension = 8192

// Device is a backend.Device on top of a wgpu HAL device.
type Device struct {
	mu  sync.Mutex
	log atomic.Pointer[slog.Logger]

	name    string
	variant gputypes.Backend

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	adapter  string
	external bool
	opened   bool

	maxDim int

	surface   *surface
	vertexBuf hal.Buffer
	paramsBuf hal.Buffer
}

// NewDevice creates an unopened device for a HAL backend variant.
func NewDevice(name string, variant gputypes.Backend) *Device {
	return &Device{name: name, variant: variant}
}

// NewSharedDevice wraps a device and queue owned by the host. Open does not
// create anything and Close leaves the device alive.
func NewSharedDevice(name string, device hal.Device, queue hal.Queue) (*Device, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("gpu: shared device requires a hal device and queue")
	}
	return &Device{
		name:     name,
		device:   device,
		queue:    queue,
		external: true,
	}, nil
}

// Name returns the candidate name.
func (d *Device) Name() string { return d.name }

// Origin returns OriginTopLeft: wgpu textures store row 0 at the top.
func (d *Device) Origin() gpucore.Origin { return gpucore.OriginTopLeft }

// MaxDimension returns the largest surface side the device accepts.
func (d *Device) MaxDimension() int {
	if d.maxDim <= 0 {
		return defaultMaxDimension
	}
	return d.maxDim
}

// Adapter returns the name of the adapter in use, if known.
func (d *Device) Adapter() string { return d.adapter }

// Open creates the instance, picks an adapter and opens the device. A
// discrete or integrated adapter is preferred over anything else.
// Failures wrap backend.ErrNoGraphicsCapability.
func (d *Device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.opened {
		return nil
	}
	limits := gputypes.DefaultLimits()
	d.maxDim = int(limits.MaxTextureDimension2D)

	if d.external {
		d.opened = true
		d.logger().Info("gpu: using shared device", "name", d.name)
		return nil
	}

	instance, openDev, info, err := openHAL(d.variant, limits)
	if err != nil {
		return err
	}

	d.instance = instance
	d.device = openDev.Device
	d.queue = openDev.Queue
	d.adapter = info.Name
	d.opened = true
	d.logger().Info("gpu: device opened", "backend", d.variant.String(), "adapter", d.adapter,
		"type", info.DeviceType.String())
	return nil
}

// openHAL creates an instance of the variant and opens its preferred
// adapter. Some HAL backends enumerate an adapter without a usable native
// context and panic on open; a panic anywhere in the sequence is reported
// as backend.ErrNoGraphicsCapability like any other failure.
func openHAL(variant gputypes.Backend, limits gputypes.Limits) (instance hal.Instance, openDev hal.OpenDevice, info gputypes.AdapterInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			destroyInstance(instance)
			instance, openDev, info = nil, hal.OpenDevice{}, gputypes.AdapterInfo{}
			err = fmt.Errorf("%w: %s: %v", backend.ErrNoGraphicsCapability, variant, r)
		}
	}()

	halBackend, ok := hal.GetBackend(variant)
	if !ok {
		return nil, openDev, info, fmt.Errorf("%w: %s backend not available", backend.ErrNoGraphicsCapability, variant)
	}
	instance, err = halBackend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, openDev, info, fmt.Errorf("%w: create instance: %w", backend.ErrNoGraphicsCapability, err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		destroyInstance(instance)
		return nil, openDev, info, fmt.Errorf("%w: no %s adapters found", backend.ErrNoGraphicsCapability, variant)
	}
	selected := selectAdapter(adapters)
	openDev, err = selected.Adapter.Open(gputypes.Features(0), limits)
	if err != nil {
		destroyInstance(instance)
		return nil, hal.OpenDevice{}, info, fmt.Errorf("%w: open device: %w", backend.ErrNoGraphicsCapability, err)
	}
	return instance, openDev, selected.Info, nil
}

// destroyInstance releases an instance left over by a failed open. A
// backend that panicked once may panic again here; that is ignored.
func destroyInstance(instance hal.Instance) {
	if instance == nil {
		return
	}
	defer func() { _ = recover() }()
	instance.Destroy()
}

// selectAdapter prefers a discrete or integrated GPU and falls back to the
// first adapter.
func selectAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			return &adapters[i]
		}
	}
	return &adapters[0]
}

// Close waits for the GPU and releases every resource. A shared device is
// left open.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.device != nil {
		if err := d.device.WaitIdle(); err != nil {
			d.logger().Warn("gpu: wait idle on close", "err", err)
		}
		d.destroySurface()
		if d.vertexBuf != nil {
			d.device.DestroyBuffer(d.vertexBuf)
			d.vertexBuf = nil
		}
		if d.paramsBuf != nil {
			d.device.DestroyBuffer(d.paramsBuf)
			d.paramsBuf = nil
		}
		if !d.external {
			d.device.Destroy()
		}
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	d.device = nil
	d.queue = nil
	d.opened = false
}

// ready reports whether Open succeeded and Close has not run.
func (d *Device) ready() bool {
	return d.opened && d.device != nil && d.queue != nil
}

var _ backend.Device = (*Device)(nil)
