//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/chromakey/backend"
	"github.com/gogpu/chromakey/gpucore"
	"github.com/gogpu/chromakey/internal/shader"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// targetFormat is the offscreen surface format. Straight RGBA in, straight
// RGBA out; no BGRA swizzle on readback.
const targetFormat = gputypes.TextureFormatRGBA8Unorm

// program owns the GPU objects of a linked chroma key program.
type program struct {
	owner    *Device
	bindings gpucore.Bindings

	vsModule   hal.ShaderModule
	fsModule   hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	sampler    hal.Sampler
}

func (p *program) Bindings() gpucore.Bindings { return p.bindings }

// Destroy releases the program's GPU objects. Safe to call more than once.
func (p *program) Destroy() {
	owner := p.owner
	if owner == nil {
		return
	}
	owner.mu.Lock()
	defer owner.mu.Unlock()
	p.destroyLocked()
}

// destroyLocked is Destroy for callers already holding the owner's lock.
func (p *program) destroyLocked() {
	if p.owner == nil {
		return
	}
	d := p.owner.device
	if d != nil {
		if p.pipeline != nil {
			d.DestroyRenderPipeline(p.pipeline)
		}
		if p.pipeLayout != nil {
			d.DestroyPipelineLayout(p.pipeLayout)
		}
		if p.bindLayout != nil {
			d.DestroyBindGroupLayout(p.bindLayout)
		}
		if p.sampler != nil {
			d.DestroySampler(p.sampler)
		}
		if p.fsModule != nil {
			d.DestroyShaderModule(p.fsModule)
		}
		if p.vsModule != nil {
			d.DestroyShaderModule(p.vsModule)
		}
	}
	*p = program{}
}

// Build validates and links the stages with naga, then creates the shader
// modules, bind layout, sampler and render pipeline. Shader module
// failures wrap ErrCompileFailed; layout and pipeline failures wrap
// ErrLinkFailed.
func (d *Device) Build(vertexSource, fragmentSource string) (backend.Program, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready() {
		return nil, backend.ErrNotInitialized
	}
	linked, err := shader.Build(vertexSource, fragmentSource)
	if err != nil {
		return nil, err
	}

	p := &program{owner: d, bindings: linked.Bindings}
	if err := d.createProgram(p, linked); err != nil {
		p.destroyLocked()
		return nil, err
	}
	d.logger().Debug("gpu: program built", "bindings", fmt.Sprintf("%+v", p.bindings))
	return p, nil
}

func (d *Device) createProgram(p *program, linked *shader.Program) error {
	vs, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "chroma_vertex",
		Source: hal.ShaderSource{WGSL: linked.Vertex.Source},
	})
	if err != nil {
		return fmt.Errorf("%w: vertex module: %w", backend.ErrCompileFailed, err)
	}
	p.vsModule = vs

	fs, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "chroma_fragment",
		Source: hal.ShaderSource{WGSL: linked.Fragment.Source},
	})
	if err != nil {
		return fmt.Errorf("%w: fragment module: %w", backend.ErrCompileFailed, err)
	}
	p.fsModule = fs

	b := p.bindings
	// Bind group layout:
	//   params  (uniform buffer, vertex+fragment)
	//   texture (texture_2d<f32>, fragment)
	//   sampler (non-filtering, fragment)
	bindLayout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "chroma_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    b.Params,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    b.Texture,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    b.Sampler,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeNonFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: bind group layout: %w", backend.ErrLinkFailed, err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "chroma_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("%w: pipeline layout: %w", backend.ErrLinkFailed, err)
	}
	p.pipeLayout = pipeLayout

	// Nearest filtering: classification must see exact texels.
	sampler, err := d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "chroma_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}
	p.sampler = sampler

	replace := gputypes.BlendStateReplace()
	pipeline, err := d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "chroma_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.vsModule,
			EntryPoint: linked.Vertex.Entry,
			Buffers:    vertexLayout(b),
		},
		Fragment: &hal.FragmentState{
			Module:     p.fsModule,
			EntryPoint: linked.Fragment.Entry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    targetFormat,
					Blend:     &replace,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: render pipeline: %w", backend.ErrLinkFailed, err)
	}
	p.pipeline = pipeline
	return nil
}

// vertexLayout returns the vertex buffer layout for the resolved attribute
// locations:
//
//	position  (vec2<f32>) offset 0
//	tex_coord (vec2<f32>) offset 8
func vertexLayout(b gpucore.Bindings) []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: gpucore.VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: b.PositionLocation},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: b.TexCoordLocation},
			},
		},
	}
}
