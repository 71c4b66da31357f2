package main

import (
	"errors"
	"flag"
	"io"
	"testing"

	"github.com/gogpu/chromakey"
)

func newFlags() (*flag.FlagSet, *string, *float64) {
	def := chromakey.DefaultConfig()
	fs := flag.NewFlagSet("chromakey", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	color := fs.String("color", def.Color.Hex(), "")
	tolerance := fs.Float64("tolerance", def.Tolerance, "")
	return fs, color, tolerance
}

func TestKeyConfig(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    chromakey.Config
		wantErr error
	}{
		{
			name: "defaults match library",
			want: chromakey.DefaultConfig(),
		},
		{
			name: "explicit color",
			args: []string{"-color", "#000000"},
			want: chromakey.Config{Color: chromakey.RGB{}, Tolerance: 0.05},
		},
		{
			name: "explicit tolerance",
			args: []string{"-tolerance", "0.2"},
			want: chromakey.Config{Color: chromakey.DefaultConfig().Color, Tolerance: 0.2},
		},
		{
			name:    "bad color",
			args:    []string{"-color", "green"},
			wantErr: chromakey.ErrInvalidConfig,
		},
		{
			name:    "negative tolerance",
			args:    []string{"-tolerance", "-1"},
			wantErr: chromakey.ErrInvalidConfig,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, color, tolerance := newFlags()
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			got, err := keyConfig(fs, *color, *tolerance)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("keyConfig() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("keyConfig() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("keyConfig() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
