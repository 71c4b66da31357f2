package gpucore

// Discards reports whether color c lies inside the tolerance cube of half
// width t centered at key, i.e. whether the pixel is background.
//
// A channel is inside when |c-k| < t. The center itself is always inside,
// so an exact match is discarded even with t == 0. Points on the cube
// faces (|c-k| == t, t > 0) are kept.
func Discards(c, key [3]float32, t float32) bool {
	return inside(c[0], key[0], t) && inside(c[1], key[1], t) && inside(c[2], key[2], t)
}

func inside(c, k, t float32) bool {
	d := c - k
	if d < 0 {
		d = -d
	}
	return d == 0 || d < t
}

// Unorm8 converts an 8-bit channel to the float a texture sample yields.
func Unorm8(v uint8) float32 {
	return float32(v) / 255
}
