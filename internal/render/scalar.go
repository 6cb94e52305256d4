// Package render converts RGB pixel buffers into UTF-8 ANSI-art text. It
// holds the scalar reference implementation and the SIMD-dispatched
// vector paths (§4.4, §4.5); the palette cache that backs both lives in
// internal/cache, and color/glyph coalescing lives in internal/ansiwriter.
package render

import (
	"fmt"

	"github.com/zfogg/ascii-chat-sub008/internal/ametrics"
	"github.com/zfogg/ascii-chat-sub008/internal/ansiwriter"
	"github.com/zfogg/ascii-chat-sub008/internal/cache"
	"github.com/zfogg/ascii-chat-sub008/internal/palette"
	"github.com/zfogg/ascii-chat-sub008/internal/rendermode"
)

// Scalar renders frame through the palette/mode cache entry, one pixel at
// a time in row-major order: compute luminance, quantize, index the
// luminance table for a glyph, and feed the glyph (plus the raw RGB
// triple, in color modes) to an ansiwriter.Writer. It is the correctness
// reference all other render paths are checked against (§8).
func Scalar(c *cache.Cache, f *rendermode.Frame, paletteBytes []byte, mode rendermode.Mode) ([]byte, error) {
	if f.Width <= 0 || f.Height <= 0 {
		return nil, fmt.Errorf("render: empty frame %dx%d", f.Width, f.Height)
	}
	if len(f.Pixels) < f.Width*f.Height*3 {
		return nil, fmt.Errorf("render: pixel buffer too short: have %d, want %d", len(f.Pixels), f.Width*f.Height*3)
	}

	entry, err := c.LookupOrBuild(paletteBytes, mode)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	w := ansiwriter.New(mode, f.Width*f.Height*8)
	w.UseCachedPrefixes(entry.PrefixForeTrue, entry.PrefixBackTrue, entry.PrefixFore256, entry.PrefixBack256)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			r, g, b := f.Pixel(x, y)
			bucket := palette.QuantizeLuminance(palette.Luminance(r, g, b))
			w.PutPixel(entry.GlyphBytes[bucket], entry.GlyphLen[bucket], r, g, b)
		}
		w.EndRow()
		if y != f.Height-1 {
			w.Newline()
		}
	}

	out := w.Bytes()
	ametrics.FramesRendered.Inc()
	ametrics.FramesRenderedRate.Mark(1)
	ametrics.PixelsRendered.Add(int64(f.Width * f.Height))
	ametrics.OutputBytes.Observe(float64(len(out)))
	return out, nil
}
