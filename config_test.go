package chromakey

import (
	"errors"
	"image/color"
	"math"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.Color != (RGB{0.99, 0.99, 0.99}) || c.Tolerance != 0.05 {
		t.Errorf("DefaultConfig() = %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"zero", Config{}, false},
		{"white", Config{Color: RGB{1, 1, 1}, Tolerance: 2}, false},
		{"red above 1", Config{Color: RGB{1.5, 0, 0}}, true},
		{"green negative", Config{Color: RGB{0, -0.1, 0}}, true},
		{"blue NaN", Config{Color: RGB{0, 0, math.NaN()}}, true},
		{"negative tolerance", Config{Tolerance: -0.01}, true},
		{"NaN tolerance", Config{Tolerance: math.NaN()}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestOptionsMergeOverDefaults(t *testing.T) {
	k := New(WithTolerance(0.3))
	if got := k.Config(); got.Color != DefaultConfig().Color || got.Tolerance != 0.3 {
		t.Errorf("Config() = %+v", got)
	}

	k = New(WithConfig(Config{Color: RGB{0, 1, 0}, Tolerance: 0.1}), WithColor(0, 0, 1))
	if got := k.Config(); got.Color != (RGB{0, 0, 1}) || got.Tolerance != 0.1 {
		t.Errorf("Config() = %+v, later options must win", got)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    RGB
		wantErr bool
	}{
		{"#00ff00", RGB{0, 1, 0}, false},
		{"#FFFFFF", RGB{1, 1, 1}, false},
		{"#f00", RGB{1, 0, 0}, false},
		{"green", RGB{}, true},
		{"#12345", RGB{}, true},
		{"", RGB{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("ParseColor(%q) error = %v, want ErrInvalidConfig", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseColor(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRGBHex(t *testing.T) {
	if got := (RGB{0, 1, 0}).Hex(); got != "#00ff00" {
		t.Errorf("Hex() = %q", got)
	}
	if got := (RGB{2, -1, 0}).Hex(); got != "#ff0000" {
		t.Errorf("Hex() of out-of-range color = %q, want clamped", got)
	}
}

func TestRGBOf(t *testing.T) {
	if got := RGBOf(color.NRGBA{255, 0, 255, 255}); got != (RGB{1, 0, 1}) {
		t.Errorf("RGBOf(magenta) = %+v", got)
	}
	if got := RGBOf(color.Transparent); got != (RGB{}) {
		t.Errorf("RGBOf(transparent) = %+v", got)
	}
}

func TestDiscards(t *testing.T) {
	cfg := Config{Color: RGB{1, 1, 1}, Tolerance: 0.05}
	tests := []struct {
		name string
		c    color.Color
		want bool
	}{
		{"exact", color.White, true},
		{"near", color.NRGBA{250, 250, 250, 255}, true},
		{"one channel out", color.NRGBA{250, 250, 200, 255}, false},
		{"black", color.Black, false},
		{"alpha ignored", color.NRGBA{255, 255, 255, 10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Discards(tt.c, cfg); got != tt.want {
				t.Errorf("Discards(%v) = %v, want %v", tt.c, got, tt.want)
			}
		})
	}

	zero := Config{Color: RGB{1, 0, 0}}
	if !Discards(color.NRGBA{255, 0, 0, 255}, zero) {
		t.Error("exact key must be discarded at tolerance 0")
	}
	if Discards(color.NRGBA{254, 0, 0, 255}, zero) {
		t.Error("non-key color must be kept at tolerance 0")
	}
}
