//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/chromakey/backend"
	"github.com/gogpu/chromakey/gpucore"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Draw clears the target to transparent and draws the surface rectangle
// through the program. The call returns once the GPU has finished.
func (d *Device) Draw(bp backend.Program, bs backend.Surface, bt backend.Texture, params gpucore.Params) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready() {
		return backend.ErrNotInitialized
	}
	p, ok := bp.(*program)
	if !ok || p.owner != d {
		return backend.ErrForeignResource
	}
	s, ok := bs.(*surface)
	if !ok || s != d.surface {
		return backend.ErrForeignResource
	}
	t, ok := bt.(*texture)
	if !ok || t.owner != d {
		return backend.ErrForeignResource
	}

	if err := d.ensureBuffers(); err != nil {
		return err
	}
	verts := gpucore.SurfaceRectangle(s.w, s.h)
	if err := d.queue.WriteBuffer(d.vertexBuf, 0, gpucore.PackVertices(verts[:])); err != nil {
		return fmt.Errorf("write vertices: %w", err)
	}
	if err := d.queue.WriteBuffer(d.paramsBuf, 0, params.Pack()); err != nil {
		return fmt.Errorf("write params: %w", err)
	}

	b := p.bindings
	bindGroup, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "chroma_bind_group",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: b.Params, Resource: gputypes.BufferBinding{Buffer: d.paramsBuf.NativeHandle(), Offset: 0, Size: gpucore.ParamsSize}},
			{Binding: b.Texture, Resource: gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()}},
			{Binding: b.Sampler, Resource: gputypes.SamplerBinding{Sampler: p.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	defer d.device.DestroyBindGroup(bindGroup)

	return d.submit("chroma_draw", func(encoder hal.CommandEncoder) {
		rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
			Label: "chroma_pass",
			ColorAttachments: []hal.RenderPassColorAttachment{
				{
					View:       s.view,
					LoadOp:     gputypes.LoadOpClear,
					StoreOp:    gputypes.StoreOpStore,
					ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
				},
			},
		})
		rp.SetPipeline(p.pipeline)
		rp.SetBindGroup(b.Group, bindGroup, nil)
		rp.SetVertexBuffer(0, d.vertexBuf, 0)
		rp.SetViewport(0, 0, float32(s.w), float32(s.h), 0, 1)
		rp.Draw(gpucore.VertexCount, 1, 0, 0)
		rp.End()
	})
}

// ensureBuffers creates the persistent vertex and params buffers.
func (d *Device) ensureBuffers() error {
	if d.vertexBuf == nil {
		buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "chroma_vertices",
			Size:  gpucore.VertexCount * gpucore.VertexStride,
			Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create vertex buffer: %w", err)
		}
		d.vertexBuf = buf
	}
	if d.paramsBuf == nil {
		buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "chroma_params",
			Size:  gpucore.ParamsSize,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create params buffer: %w", err)
		}
		d.paramsBuf = buf
	}
	return nil
}

// submit records commands with record, submits them and waits for the
// device to go idle.
func (d *Device) submit(label string, record func(hal.CommandEncoder)) error {
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Destroy()
	if err := encoder.BeginEncoding(label); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	record(encoder)

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer encoder.ResetAll([]hal.CommandBuffer{cmdBuf})

	if _, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if err := d.device.WaitIdle(); err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	return nil
}
