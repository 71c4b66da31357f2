package chromakey

import (
	"fmt"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/gogpu/chromakey/gpucore"
)

// RGB is a key color with each channel in [0,1].
type RGB struct {
	R, G, B float64
}

// RGBOf converts any color to a key color. Alpha is divided out; a fully
// transparent color yields black.
func RGBOf(c color.Color) RGB {
	cf, _ := colorful.MakeColor(c)
	return RGB{cf.R, cf.G, cf.B}
}

// ParseColor parses a "#rrggbb" or "#rgb" key color.
func ParseColor(s string) (RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: color %q: %w", ErrInvalidConfig, s, err)
	}
	return RGB{c.R, c.G, c.B}, nil
}

// Hex returns the color as "#rrggbb".
func (c RGB) Hex() string {
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().Hex()
}

// Config is the keying configuration: the key color and the half-width of
// the tolerance cube around it.
type Config struct {
	Color     RGB
	Tolerance float64
}

// DefaultConfig returns a near-white key with tolerance 0.05.
func DefaultConfig() Config {
	return Config{
		Color:     RGB{0.99, 0.99, 0.99},
		Tolerance: 0.05,
	}
}

// Validate checks the channel ranges and the tolerance.
func (c Config) Validate() error {
	for _, ch := range [...]struct {
		name string
		v    float64
	}{{"red", c.Color.R}, {"green", c.Color.G}, {"blue", c.Color.B}} {
		if math.IsNaN(ch.v) || ch.v < 0 || ch.v > 1 {
			return fmt.Errorf("%w: %s channel %v outside [0,1]", ErrInvalidConfig, ch.name, ch.v)
		}
	}
	if math.IsNaN(c.Tolerance) || c.Tolerance < 0 {
		return fmt.Errorf("%w: tolerance %v", ErrInvalidConfig, c.Tolerance)
	}
	return nil
}

// key returns the color and tolerance as the float32 values the pass
// compares against.
func (c Config) key() ([3]float32, float32) {
	return [3]float32{float32(c.Color.R), float32(c.Color.G), float32(c.Color.B)}, float32(c.Tolerance)
}

// Discards reports whether c is background under cfg: each of its color
// channels lies within the tolerance cube around the key color. This is
// the rule the compositing pass applies to every pixel; alpha is ignored.
func Discards(c color.Color, cfg Config) bool {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	key, t := cfg.key()
	return gpucore.Discards([3]float32{
		gpucore.Unorm8(n.R), gpucore.Unorm8(n.G), gpucore.Unorm8(n.B),
	}, key, t)
}
