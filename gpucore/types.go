package gpucore

// Vertex is one corner of the pass rectangle.
// Position is in pixel units of the target surface, UV in texture space.
type Vertex struct {
	X, Y float32
	U, V float32
}

// VertexStride is the byte stride of a packed [Vertex].
// Layout per vertex:
//
//	position  (vec2<f32>) = 8 bytes  (location 0)
//	tex_coord (vec2<f32>) = 8 bytes  (location 1)
const VertexStride = 16

// VertexCount is the number of vertices drawn by one pass (two triangles).
const VertexCount = 6

// Origin describes where row 0 of a render target lives.
type Origin uint8

const (
	// OriginTopLeft targets store row 0 at the top (WebGPU textures).
	OriginTopLeft Origin = iota
	// OriginBottomLeft targets store row 0 at the bottom (GL framebuffers).
	OriginBottomLeft
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case OriginTopLeft:
		return "top-left"
	case OriginBottomLeft:
		return "bottom-left"
	default:
		return "unknown"
	}
}

// FlipY returns the vertical flip factor the vertex stage needs so that an
// offscreen target with the given origin reads back in image row order.
//
// Image row 0 carries texture coordinate v=0 at pixel y=0. Without a flip
// pixel y=0 lands at clip y=-1, which is the bottom of the target. For a
// bottom-left origin that is row 0 already; a top-left target needs -1.
func FlipY(o Origin) float32 {
	if o == OriginBottomLeft {
		return 1
	}
	return -1
}
