package backend

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/chromakey/gpucore"
	"github.com/gogpu/chromakey/internal/parallel"
	"github.com/gogpu/chromakey/internal/shader"
)

// softwareMaxDimension bounds software surfaces to 16384 x 16384.
const softwareMaxDimension = 1 << 14

// SoftwareDevice is the CPU reference device. It validates and links the
// WGSL program like a hardware device would, then executes the same vertex
// stage and classification rule in Go over a GL-style framebuffer whose
// row 0 is the bottom row. Rows are shaded in parallel bands.
type SoftwareDevice struct {
	open    bool
	surface *softwareSurface
	pool    *parallel.Pool
}

// init registers the software device on package import.
func init() {
	Register(NameSoftware, func() Device {
		return NewSoftwareDevice()
	})
}

// NewSoftwareDevice creates a new, unopened software device.
func NewSoftwareDevice() *SoftwareDevice {
	return &SoftwareDevice{}
}

// Name returns the candidate name.
func (d *SoftwareDevice) Name() string { return NameSoftware }

// Origin returns OriginBottomLeft: clip y = -1 maps to framebuffer row 0.
func (d *SoftwareDevice) Origin() gpucore.Origin { return gpucore.OriginBottomLeft }

// MaxDimension returns the largest accepted surface side.
func (d *SoftwareDevice) MaxDimension() int { return softwareMaxDimension }

// Open marks the device usable. The CPU is always available.
func (d *SoftwareDevice) Open() error {
	if d.pool == nil {
		d.pool = parallel.NewPool(0)
	}
	d.open = true
	return nil
}

// Close drops the surface and stops the workers.
func (d *SoftwareDevice) Close() {
	if d.pool != nil {
		d.pool.Close()
		d.pool = nil
	}
	d.surface = nil
	d.open = false
}

type softwareProgram struct {
	owner    *SoftwareDevice
	bindings gpucore.Bindings
}

func (p *softwareProgram) Bindings() gpucore.Bindings { return p.bindings }
func (p *softwareProgram) Destroy()                   { p.owner = nil }

// Build compiles and links the WGSL stages. The linked interface must match
// the layout the Go stages implement.
func (d *SoftwareDevice) Build(vertexSource, fragmentSource string) (Program, error) {
	if !d.open {
		return nil, ErrNotInitialized
	}
	prog, err := shader.Build(vertexSource, fragmentSource)
	if err != nil {
		return nil, err
	}
	if prog.Bindings != gpucore.DefaultBindings() {
		return nil, fmt.Errorf("%w: software device requires the default bindings, got %+v", ErrLinkFailed, prog.Bindings)
	}
	return &softwareProgram{owner: d, bindings: prog.Bindings}, nil
}

type softwareSurface struct {
	w, h int
	pix  []byte // RGBA, row 0 at the bottom
}

func (s *softwareSurface) Width() int  { return s.w }
func (s *softwareSurface) Height() int { return s.h }

// Acquire returns the framebuffer, reallocating it when the size changes.
func (d *SoftwareDevice) Acquire(width, height int) (Surface, error) {
	if !d.open {
		return nil, ErrNotInitialized
	}
	if width <= 0 || height <= 0 || width > softwareMaxDimension || height > softwareMaxDimension {
		return nil, fmt.Errorf("backend: invalid surface size %dx%d", width, height)
	}
	if d.surface != nil && d.surface.w == width && d.surface.h == height {
		return d.surface, nil
	}
	d.surface = &softwareSurface{w: width, h: height, pix: make([]byte, width*height*4)}
	return d.surface, nil
}

type softwareTexture struct {
	w, h int
	pix  []byte
}

func (t *softwareTexture) Width() int  { return t.w }
func (t *softwareTexture) Height() int { return t.h }
func (t *softwareTexture) Release()    { t.pix = nil }

// Upload copies img into a tightly packed texture.
func (d *SoftwareDevice) Upload(img *image.NRGBA) (Texture, error) {
	if !d.open {
		return nil, ErrNotInitialized
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		src := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		copy(pix[y*w*4:(y+1)*w*4], src[:w*4])
	}
	return &softwareTexture{w: w, h: h, pix: pix}, nil
}

// Draw clears the surface and rasterizes the two pass triangles.
func (d *SoftwareDevice) Draw(p Program, s Surface, t Texture, params gpucore.Params) error {
	if !d.open {
		return ErrNotInitialized
	}
	prog, ok := p.(*softwareProgram)
	if !ok || prog.owner != d {
		return ErrForeignResource
	}
	surf, ok := s.(*softwareSurface)
	if !ok || surf != d.surface {
		return ErrForeignResource
	}
	tex, ok := t.(*softwareTexture)
	if !ok || tex.pix == nil {
		return ErrForeignResource
	}

	clear(surf.pix)

	verts := gpucore.SurfaceRectangle(surf.w, surf.h)
	var screen [gpucore.VertexCount]screenVertex
	for i, v := range verts {
		cx, cy := gpucore.VertexStage(v, params)
		// viewport: clip -1..1 to 0..w and 0..h, row 0 at clip y = -1
		screen[i] = screenVertex{
			x: (float64(cx) + 1) / 2 * float64(surf.w),
			y: (float64(cy) + 1) / 2 * float64(surf.h),
			u: float64(v.U),
			v: float64(v.V),
		}
	}
	for i := 0; i < gpucore.VertexCount; i += 3 {
		d.rasterize(surf, tex, params, screen[i], screen[i+1], screen[i+2])
	}
	return nil
}

type screenVertex struct {
	x, y float64
	u, v float64
}

func edge(a, b screenVertex, px, py float64) float64 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// rasterize covers every pixel whose center lies inside the triangle and
// runs the fragment stage for it.
func (d *SoftwareDevice) rasterize(s *softwareSurface, t *softwareTexture, p gpucore.Params, v0, v1, v2 screenVertex) {
	area := edge(v0, v1, v2.x, v2.y)
	if area == 0 {
		return
	}
	minX := clampInt(int(math.Floor(math.Min(v0.x, math.Min(v1.x, v2.x)))), 0, s.w-1)
	maxX := clampInt(int(math.Ceil(math.Max(v0.x, math.Max(v1.x, v2.x)))), 0, s.w-1)
	minY := clampInt(int(math.Floor(math.Min(v0.y, math.Min(v1.y, v2.y)))), 0, s.h-1)
	maxY := clampInt(int(math.Ceil(math.Max(v0.y, math.Max(v1.y, v2.y)))), 0, s.h-1)

	d.pool.Rows(minY, maxY+1, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			py := float64(y) + 0.5
			for x := minX; x <= maxX; x++ {
				px := float64(x) + 0.5
				w0 := edge(v1, v2, px, py) / area
				w1 := edge(v2, v0, px, py) / area
				w2 := edge(v0, v1, px, py) / area
				if w0 < 0 || w1 < 0 || w2 < 0 {
					continue
				}
				u := w0*v0.u + w1*v1.u + w2*v2.u
				v := w0*v0.v + w1*v1.v + w2*v2.v
				shade(s, t, p, x, y, u, v)
			}
		}
	})
}

// shade samples t at (u,v) with nearest filtering and clamp-to-edge
// addressing, then applies the classification rule.
func shade(s *softwareSurface, t *softwareTexture, p gpucore.Params, x, y int, u, v float64) {
	tx := clampInt(int(math.Floor(u*float64(t.w))), 0, t.w-1)
	ty := clampInt(int(math.Floor(v*float64(t.h))), 0, t.h-1)
	src := t.pix[(ty*t.w+tx)*4:]
	c := [3]float32{gpucore.Unorm8(src[0]), gpucore.Unorm8(src[1]), gpucore.Unorm8(src[2])}
	if gpucore.Discards(c, p.Chroma, p.Tolerance) {
		return
	}
	copy(s.pix[(y*s.w+x)*4:(y*s.w+x)*4+4], src[:4])
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Read returns the framebuffer rows in memory order.
func (d *SoftwareDevice) Read(s Surface) (*image.NRGBA, error) {
	if !d.open {
		return nil, ErrNotInitialized
	}
	surf, ok := s.(*softwareSurface)
	if !ok || surf != d.surface {
		return nil, ErrForeignResource
	}
	out := image.NewNRGBA(image.Rect(0, 0, surf.w, surf.h))
	copy(out.Pix, surf.pix)
	return out, nil
}
