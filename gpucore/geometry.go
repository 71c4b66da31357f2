package gpucore

import (
	"encoding/binary"
	"math"
)

// Rectangle returns the six vertices of the two triangles covering
// [x, x+width] x [y, y+height], with texture coordinates spanning (0,0)-(1,1).
// The corner order is (x1,y1) (x2,y1) (x1,y2) then (x1,y2) (x2,y1) (x2,y2).
func Rectangle(x, y, width, height float32) [VertexCount]Vertex {
	x1, x2 := x, x+width
	y1, y2 := y, y+height
	return [VertexCount]Vertex{
		{X: x1, Y: y1, U: 0, V: 0},
		{X: x2, Y: y1, U: 1, V: 0},
		{X: x1, Y: y2, U: 0, V: 1},
		{X: x1, Y: y2, U: 0, V: 1},
		{X: x2, Y: y1, U: 1, V: 0},
		{X: x2, Y: y2, U: 1, V: 1},
	}
}

// SurfaceRectangle returns the rectangle covering a whole width x height surface.
func SurfaceRectangle(width, height int) [VertexCount]Vertex {
	return Rectangle(0, 0, float32(width), float32(height))
}

// PackVertices encodes vertices for a vertex buffer with VertexStride.
func PackVertices(vs []Vertex) []byte {
	buf := make([]byte, len(vs)*VertexStride)
	for i, v := range vs {
		off := i * VertexStride
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v.X))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(v.Y))
		binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(v.U))
		binary.LittleEndian.PutUint32(buf[off+12:], math.Float32bits(v.V))
	}
	return buf
}

// VertexStage maps a pixel-space vertex to clip space:
//
//	clip = (position / resolution * 2 - 1) * (1, flipY)
//
// It mirrors vs_main in the embedded vertex shader.
func VertexStage(v Vertex, p Params) (clipX, clipY float32) {
	zeroToOneX := v.X / p.Resolution[0]
	zeroToOneY := v.Y / p.Resolution[1]
	clipX = zeroToOneX*2 - 1
	clipY = (zeroToOneY*2 - 1) * p.FlipY
	return clipX, clipY
}
