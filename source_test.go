package chromakey

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/image/bmp"
)

func TestWhenReadyDecodedRunsSynchronously(t *testing.T) {
	img := gradient(2, 2)
	ran := false
	WhenReady(Decoded(img), func(got image.Image, err error) {
		if err != nil || got != img {
			t.Errorf("fn(%v, %v)", got, err)
		}
		ran = true
	})
	if !ran {
		t.Error("continuation did not run before WhenReady returned")
	}
}

func TestWhenReadyPendingRunsOnce(t *testing.T) {
	p := NewPending()
	var calls atomic.Int32
	WhenReady(p, func(image.Image, error) { calls.Add(1) })
	WhenReady(p, func(image.Image, error) { calls.Add(1) })
	if calls.Load() != 0 {
		t.Fatal("continuation ran before completion")
	}

	img := gradient(1, 1)
	if !p.Complete(img, nil) {
		t.Error("first Complete() = false")
	}
	if p.Complete(nil, errors.New("late")) {
		t.Error("second Complete() = true")
	}
	if calls.Load() != 2 {
		t.Errorf("continuations ran %d times, want 2 (once each)", calls.Load())
	}

	got, err := p.Image()
	if got != img || err != nil {
		t.Errorf("Image() = %v, %v; want first completion", got, err)
	}

	// After completion WhenReady is synchronous.
	ran := false
	WhenReady(p, func(image.Image, error) { ran = true })
	if !ran {
		t.Error("continuation on a completed source did not run synchronously")
	}
}

func TestPendingNotReady(t *testing.T) {
	p := NewPending()
	if _, err := p.Image(); !errors.Is(err, ErrSourceNotReady) {
		t.Errorf("Image() error = %v, want ErrSourceNotReady", err)
	}
	if _, err := TryImage(p); !errors.Is(err, ErrSourceNotReady) {
		t.Errorf("TryImage() error = %v, want ErrSourceNotReady", err)
	}
	select {
	case <-p.Done():
		t.Error("Done closed before Complete")
	default:
	}
}

// chanSource is a Source that is not a *Pending.
type chanSource struct {
	done chan struct{}
	img  image.Image
}

func (s *chanSource) Done() <-chan struct{}       { return s.done }
func (s *chanSource) Image() (image.Image, error) { return s.img, nil }

func TestWhenReadyForeignSource(t *testing.T) {
	src := &chanSource{done: make(chan struct{}), img: gradient(3, 1)}
	got := make(chan image.Image, 2)
	WhenReady(src, func(img image.Image, _ error) { got <- img })

	close(src.done)
	select {
	case img := <-got:
		if img != src.img {
			t.Error("wrong image")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("continuation never ran")
	}
}

func TestWait(t *testing.T) {
	p := NewPending()
	img := gradient(2, 1)
	go func() {
		time.Sleep(10 * time.Millisecond)
		p.Complete(img, nil)
	}()
	got, err := Wait(context.Background(), p)
	if err != nil || got != img {
		t.Errorf("Wait() = %v, %v", got, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := Wait(ctx, NewPending()); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want DeadlineExceeded", err)
	}
}

func TestDecodeAsync(t *testing.T) {
	want := gradient(4, 3)

	tests := []struct {
		name   string
		encode func(*bytes.Buffer) error
	}{
		{"png", func(b *bytes.Buffer) error { return png.Encode(b, want) }},
		{"bmp", func(b *bytes.Buffer) error { return bmp.Encode(b, fill(4, 3, color.NRGBA{9, 8, 7, 255})) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.encode(&buf); err != nil {
				t.Fatal(err)
			}
			img, err := Wait(context.Background(), DecodeAsync(&buf))
			if err != nil {
				t.Fatalf("decode error = %v", err)
			}
			if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
				t.Errorf("bounds = %v", img.Bounds())
			}
		})
	}
}

func TestDecodeAsyncInvalid(t *testing.T) {
	_, err := Wait(context.Background(), DecodeAsync(strings.NewReader("not an image")))
	if !errors.Is(err, ErrInvalidImage) {
		t.Errorf("error = %v, want ErrInvalidImage", err)
	}

	k := newSoftware(t)
	if _, err := k.Process(context.Background(), DecodeAsync(strings.NewReader(""))); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("Process() error = %v, want ErrInvalidImage", err)
	}
}
