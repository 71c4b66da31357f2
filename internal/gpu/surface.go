//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/chromakey/backend"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// surface is the offscreen render target. Contents survive from the draw
// submission to the readback copy (StoreOp store, no implicit clear).
type surface struct {
	w, h    int
	texture hal.Texture
	view    hal.TextureView
}

func (s *surface) Width() int  { return s.w }
func (s *surface) Height() int { return s.h }

// Acquire returns the render target, recreating it only when the size
// differs from the current one.
func (d *Device) Acquire(width, height int) (backend.Surface, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready() {
		return nil, backend.ErrNotInitialized
	}
	if width <= 0 || height <= 0 || width > d.MaxDimension() || height > d.MaxDimension() {
		return nil, fmt.Errorf("gpu: invalid surface size %dx%d", width, height)
	}
	if d.surface != nil && d.surface.w == width && d.surface.h == height {
		return d.surface, nil
	}
	d.destroySurface()

	tex, view, err := d.createTexture("chroma_target", width, height,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc)
	if err != nil {
		return nil, fmt.Errorf("create target: %w", err)
	}
	d.surface = &surface{w: width, h: height, texture: tex, view: view}
	d.logger().Debug("gpu: surface created", "width", width, "height", height)
	return d.surface, nil
}

func (d *Device) destroySurface() {
	if d.surface == nil {
		return
	}
	if d.surface.view != nil {
		d.device.DestroyTextureView(d.surface.view)
	}
	if d.surface.texture != nil {
		d.device.DestroyTexture(d.surface.texture)
	}
	d.surface = nil
}

// createTexture creates a single-level RGBA8 2D texture and its view.
func (d *Device) createTexture(label string, width, height int, usage gputypes.TextureUsage) (hal.Texture, hal.TextureView, error) {
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        targetFormat,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, err
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        targetFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, nil, err
	}
	return tex, view, nil
}
