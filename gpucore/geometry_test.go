package gpucore

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestSurfaceRectangleSpansSurface(t *testing.T) {
	vs := SurfaceRectangle(640, 480)
	want := []Vertex{
		{0, 0, 0, 0}, {640, 0, 1, 0}, {0, 480, 0, 1},
		{0, 480, 0, 1}, {640, 0, 1, 0}, {640, 480, 1, 1},
	}
	for i := range vs {
		if vs[i] != want[i] {
			t.Errorf("vertex %d = %+v, want %+v", i, vs[i], want[i])
		}
	}
}

func TestVertexStageCorners(t *testing.T) {
	tests := []struct {
		name         string
		origin       Origin
		v            Vertex
		wantX, wantY float32
	}{
		{"top-left origin, first pixel row", OriginTopLeft, Vertex{X: 0, Y: 0}, -1, 1},
		{"top-left origin, last pixel row", OriginTopLeft, Vertex{X: 4, Y: 2}, 1, -1},
		{"bottom-left origin, first pixel row", OriginBottomLeft, Vertex{X: 0, Y: 0}, -1, -1},
		{"bottom-left origin, last pixel row", OriginBottomLeft, Vertex{X: 4, Y: 2}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParams(4, 2, [3]float32{}, 0, tt.origin)
			x, y := VertexStage(tt.v, p)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("VertexStage = (%v, %v), want (%v, %v)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestFlipY(t *testing.T) {
	if FlipY(OriginTopLeft) != -1 {
		t.Errorf("FlipY(top-left) = %v, want -1", FlipY(OriginTopLeft))
	}
	if FlipY(OriginBottomLeft) != 1 {
		t.Errorf("FlipY(bottom-left) = %v, want 1", FlipY(OriginBottomLeft))
	}
}

func TestParamsPackLayout(t *testing.T) {
	p := Params{
		Resolution:  [2]float32{3, 2},
		TextureSize: [2]float32{3, 2},
		Chroma:      [3]float32{0.25, 0.5, 0.75},
		Tolerance:   0.125,
		FlipY:       -1,
	}
	buf := p.Pack()
	if len(buf) != ParamsSize {
		t.Fatalf("len = %d, want %d", len(buf), ParamsSize)
	}
	at := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
	}
	checks := map[int]float32{0: 3, 4: 2, 8: 3, 12: 2, 16: 0.25, 20: 0.5, 24: 0.75, 28: 0.125, 32: -1}
	for off, want := range checks {
		if got := at(off); got != want {
			t.Errorf("offset %d = %v, want %v", off, got, want)
		}
	}
}

func TestPackVertices(t *testing.T) {
	vs := SurfaceRectangle(8, 4)
	buf := PackVertices(vs[:])
	if len(buf) != VertexCount*VertexStride {
		t.Fatalf("len = %d, want %d", len(buf), VertexCount*VertexStride)
	}
	// last vertex: (8, 4, 1, 1)
	off := 5 * VertexStride
	got := []float32{
		math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])),
		math.Float32frombits(binary.LittleEndian.Uint32(buf[off+4:])),
		math.Float32frombits(binary.LittleEndian.Uint32(buf[off+8:])),
		math.Float32frombits(binary.LittleEndian.Uint32(buf[off+12:])),
	}
	want := []float32{8, 4, 1, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("component %d = %v, want %v", i, got[i], want[i])
		}
	}
}
