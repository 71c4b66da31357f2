package gpucore

import (
	"encoding/binary"
	"math"
)

// ParamsSize is the byte size of the params uniform block.
// Layout (WGSL uniform rules, struct aligned to 16):
//
//	resolution   (vec2<f32>) offset 0
//	texture_size (vec2<f32>) offset 8
//	chroma       (vec3<f32>) offset 16
//	tolerance    (f32)       offset 28
//	flip_y       (f32)       offset 32
//	padding                  36..48
const ParamsSize = 48

// Params are the per-pass pipeline parameters.
type Params struct {
	// Resolution is the target surface size in pixels.
	Resolution [2]float32
	// TextureSize is the source texture size in texels.
	TextureSize [2]float32
	// Chroma is the key color, each channel in [0,1].
	Chroma [3]float32
	// Tolerance is the half-width of the tolerance cube.
	Tolerance float32
	// FlipY is +1 or -1, see FlipY.
	FlipY float32
}

// NewParams builds the params for a width x height pass into a target with
// the given origin.
func NewParams(width, height int, chroma [3]float32, tolerance float32, origin Origin) Params {
	return Params{
		Resolution:  [2]float32{float32(width), float32(height)},
		TextureSize: [2]float32{float32(width), float32(height)},
		Chroma:      chroma,
		Tolerance:   tolerance,
		FlipY:       FlipY(origin),
	}
}

// Pack encodes p in the uniform block layout described by ParamsSize.
func (p Params) Pack() []byte {
	buf := make([]byte, ParamsSize)
	putF32(buf, 0, p.Resolution[0])
	putF32(buf, 4, p.Resolution[1])
	putF32(buf, 8, p.TextureSize[0])
	putF32(buf, 12, p.TextureSize[1])
	putF32(buf, 16, p.Chroma[0])
	putF32(buf, 20, p.Chroma[1])
	putF32(buf, 24, p.Chroma[2])
	putF32(buf, 28, p.Tolerance)
	putF32(buf, 32, p.FlipY)
	return buf
}

func putF32(buf []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
}

// Bindings are the program handles resolved once at build time: where the
// vertex attributes are fed and which bind slots the resources occupy.
type Bindings struct {
	// PositionLocation is the @location of the pixel-space position input.
	PositionLocation uint32
	// TexCoordLocation is the @location of the texture coordinate input.
	TexCoordLocation uint32

	// Group is the bind group holding all pass resources.
	Group uint32
	// Params is the binding slot of the params uniform block.
	Params uint32
	// Texture is the binding slot of the source texture.
	Texture uint32
	// Sampler is the binding slot of the source sampler.
	Sampler uint32
}

// DefaultBindings matches the handles declared by the embedded shaders.
func DefaultBindings() Bindings {
	return Bindings{
		PositionLocation: 0,
		TexCoordLocation: 1,
		Group:            0,
		Params:           0,
		Texture:          1,
		Sampler:          2,
	}
}
