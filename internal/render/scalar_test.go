package render

import (
	"bytes"
	"testing"

	"github.com/zfogg/ascii-chat-sub008/internal/cache"
	"github.com/zfogg/ascii-chat-sub008/internal/rendermode"
)

func TestScalar_MonochromeTwoPixels(t *testing.T) {
	c := cache.New()
	f := &rendermode.Frame{
		Width:  2,
		Height: 1,
		Pixels: []byte{0, 0, 0, 255, 255, 255},
	}
	out, err := Scalar(c, f, []byte(" @"), rendermode.Mode{Kind: rendermode.Monochrome})
	if err != nil {
		t.Fatalf("Scalar: %v", err)
	}
	want := []byte{' ', '@'}
	if !bytes.Equal(out, want) {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestScalar_TwoRowsNewlineBetween(t *testing.T) {
	c := cache.New()
	f := &rendermode.Frame{
		Width:  1,
		Height: 2,
		Pixels: []byte{0, 0, 0, 255, 255, 255},
	}
	out, err := Scalar(c, f, []byte(" @"), rendermode.Mode{Kind: rendermode.Monochrome})
	if err != nil {
		t.Fatalf("Scalar: %v", err)
	}
	want := []byte{' ', '\n', '@'}
	if !bytes.Equal(out, want) {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestScalar_TrueColorSinglePixel(t *testing.T) {
	c := cache.New()
	f := &rendermode.Frame{
		Width:  1,
		Height: 1,
		Pixels: []byte{10, 20, 30},
	}
	out, err := Scalar(c, f, []byte("#"), rendermode.Mode{Kind: rendermode.TrueColor, Target: rendermode.Foreground})
	if err != nil {
		t.Fatalf("Scalar: %v", err)
	}
	if !bytes.Contains(out, []byte("\x1b[38;2;10;20;30m")) {
		t.Errorf("missing truecolor prefix: %q", out)
	}
	if !bytes.Contains(out, []byte("#")) {
		t.Errorf("missing glyph: %q", out)
	}
}

func TestScalar_RejectsShortPixelBuffer(t *testing.T) {
	c := cache.New()
	f := &rendermode.Frame{Width: 2, Height: 2, Pixels: []byte{1, 2, 3}}
	if _, err := Scalar(c, f, []byte(" @"), rendermode.Mode{Kind: rendermode.Monochrome}); err == nil {
		t.Fatal("expected error for short pixel buffer")
	}
}

func TestScalar_MixedWidthPalette(t *testing.T) {
	c := cache.New()
	f := &rendermode.Frame{
		Width:  1,
		Height: 1,
		Pixels: []byte{255, 255, 255},
	}
	out, err := Scalar(c, f, []byte(" α♠🌟"), rendermode.Mode{Kind: rendermode.Monochrome})
	if err != nil {
		t.Fatalf("Scalar: %v", err)
	}
	if !bytes.Equal(out, []byte("🌟")) {
		t.Errorf("got %q, want the highest-luminance glyph", out)
	}
}
