// Package shader compiles and links the chroma key WGSL program.
//
// Compilation runs the naga front end (parse, lower, validate) on each
// stage. Linking checks the interface between the stages and resolves the
// program handles into a gpucore.Bindings record, once, at build time.
package shader

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/gogpu/chromakey/gpucore"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// Embedded stage sources.
var (
	//go:embed shaders/chroma_vertex.wgsl
	VertexSource string

	//go:embed shaders/chroma_fragment.wgsl
	FragmentSource string
)

// Entry point names of the embedded stages.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)

// Names the linker resolves handles by.
const (
	paramsName   = "params"
	textureName  = "source_texture"
	samplerName  = "source_sampler"
	positionName = "position"
	texCoordName = "tex_coord"
)

// Stage identifies a pipeline stage.
type Stage uint8

const (
	StageVertex Stage = iota
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("Stage(%d)", uint8(s))
	}
}

func (s Stage) irStage() ir.ShaderStage {
	if s == StageFragment {
		return ir.StageFragment
	}
	return ir.StageVertex
}

// Module is one compiled stage.
type Module struct {
	Stage  Stage
	Source string
	Entry  string

	module *ir.Module
	entry  *ir.EntryPoint
}

// Compile parses, lowers and validates a WGSL stage. The source must declare
// exactly one entry point of the requested stage. Failures wrap
// gpucore.ErrCompileFailed and carry the naga diagnostic.
func Compile(stage Stage, source string) (*Module, error) {
	if source == "" {
		return nil, fmt.Errorf("%w: %s stage: empty source", gpucore.ErrCompileFailed, stage)
	}
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s stage: %w", gpucore.ErrCompileFailed, stage, err)
	}
	m, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s stage: %w", gpucore.ErrCompileFailed, stage, err)
	}
	verrs, err := naga.Validate(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %s stage: %w", gpucore.ErrCompileFailed, stage, err)
	}
	if len(verrs) > 0 {
		return nil, fmt.Errorf("%w: %s stage: %w", gpucore.ErrCompileFailed, stage, &verrs[0])
	}

	var entry *ir.EntryPoint
	for i := range m.EntryPoints {
		if m.EntryPoints[i].Stage != stage.irStage() {
			continue
		}
		if entry != nil {
			return nil, fmt.Errorf("%w: %s stage: more than one entry point", gpucore.ErrCompileFailed, stage)
		}
		entry = &m.EntryPoints[i]
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: %s stage: no entry point", gpucore.ErrCompileFailed, stage)
	}
	return &Module{Stage: stage, Source: source, Entry: entry.Name, module: m, entry: entry}, nil
}

// Program is a linked vertex/fragment pair.
type Program struct {
	Vertex   *Module
	Fragment *Module
	Bindings gpucore.Bindings
}

// Link checks that the vertex outputs feed every fragment input, that the
// vertex stage writes the clip position and that both stages agree on the
// params block, then resolves the program handles. Failures wrap
// gpucore.ErrLinkFailed.
func Link(vs, fs *Module) (*Program, error) {
	if vs == nil || fs == nil {
		return nil, fmt.Errorf("%w: missing stage", gpucore.ErrLinkFailed)
	}
	if vs.Stage != StageVertex || fs.Stage != StageFragment {
		return nil, fmt.Errorf("%w: stages are %s and %s", gpucore.ErrLinkFailed, vs.Stage, fs.Stage)
	}

	outputs, writesPosition := vs.outputs()
	if !writesPosition {
		return nil, fmt.Errorf("%w: vertex stage does not write @builtin(position)", gpucore.ErrLinkFailed)
	}
	for name, loc := range fs.inputs() {
		if _, ok := outputs[loc]; !ok {
			return nil, fmt.Errorf("%w: fragment input %q at location %d has no vertex output", gpucore.ErrLinkFailed, name, loc)
		}
	}

	vsParams, vsOK := vs.resource(paramsName)
	fsParams, fsOK := fs.resource(paramsName)
	if !vsOK || !fsOK {
		return nil, fmt.Errorf("%w: both stages must declare %q", gpucore.ErrLinkFailed, paramsName)
	}
	if vsParams != fsParams {
		return nil, fmt.Errorf("%w: %q bound at group %d binding %d in the vertex stage and group %d binding %d in the fragment stage",
			gpucore.ErrLinkFailed, paramsName, vsParams.Group, vsParams.Binding, fsParams.Group, fsParams.Binding)
	}

	b, err := resolve(vs, fs, vsParams)
	if err != nil {
		return nil, err
	}
	return &Program{Vertex: vs, Fragment: fs, Bindings: b}, nil
}

// Build compiles both stages and links them.
func Build(vertexSource, fragmentSource string) (*Program, error) {
	vs, err := Compile(StageVertex, vertexSource)
	if err != nil {
		return nil, err
	}
	fs, err := Compile(StageFragment, fragmentSource)
	if err != nil {
		return nil, err
	}
	return Link(vs, fs)
}

// BuildDefault builds the embedded program.
func BuildDefault() (*Program, error) {
	return Build(VertexSource, FragmentSource)
}

var errUnresolved = errors.New("unresolved handle")

func resolve(vs, fs *Module, params ir.ResourceBinding) (gpucore.Bindings, error) {
	in := vs.inputs()
	pos, ok := in[positionName]
	if !ok {
		return gpucore.Bindings{}, fmt.Errorf("%w: %w: vertex input %q", gpucore.ErrLinkFailed, errUnresolved, positionName)
	}
	uv, ok := in[texCoordName]
	if !ok {
		return gpucore.Bindings{}, fmt.Errorf("%w: %w: vertex input %q", gpucore.ErrLinkFailed, errUnresolved, texCoordName)
	}
	tex, ok := fs.resource(textureName)
	if !ok {
		return gpucore.Bindings{}, fmt.Errorf("%w: %w: %q", gpucore.ErrLinkFailed, errUnresolved, textureName)
	}
	smp, ok := fs.resource(samplerName)
	if !ok {
		return gpucore.Bindings{}, fmt.Errorf("%w: %w: %q", gpucore.ErrLinkFailed, errUnresolved, samplerName)
	}
	if tex.Group != params.Group || smp.Group != params.Group {
		return gpucore.Bindings{}, fmt.Errorf("%w: pass resources must share one bind group", gpucore.ErrLinkFailed)
	}
	return gpucore.Bindings{
		PositionLocation: pos,
		TexCoordLocation: uv,
		Group:            params.Group,
		Params:           params.Binding,
		Texture:          tex.Binding,
		Sampler:          smp.Binding,
	}, nil
}
