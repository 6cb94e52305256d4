package render

import (
	"fmt"

	"github.com/zfogg/ascii-chat-sub008/internal/ametrics"
	"github.com/zfogg/ascii-chat-sub008/internal/ansiwriter"
	"github.com/zfogg/ascii-chat-sub008/internal/cache"
	"github.com/zfogg/ascii-chat-sub008/internal/rendermode"
)

// vectorBackend names the batch-of-pixels kernel selected once at
// startup (§4.5). batch processes count pixels starting at pixels[0],
// writing one glyph index (the quantized luminance bucket) per pixel
// into out.
type vectorBackend struct {
	name  string
	width int // pixels processed per batch call
	batch func(pixels []byte, out []uint8)
}

// selectedBackend is chosen once during package init by detectBackend
// (arch-specific files), per the startup-time dispatch-once rule: ISA
// features are never probed per frame.
var selectedBackend = detectBackend()

// Vector renders frame the same way Scalar does, but computes luminance
// buckets for a whole batch of pixels per backend call instead of one at
// a time. Per §4.5 its output is required to be byte-identical to
// Scalar for the same inputs; BackendName reports which kernel executed,
// for diagnostics only.
func Vector(c *cache.Cache, f *rendermode.Frame, paletteBytes []byte, mode rendermode.Mode) ([]byte, error) {
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

	backend := selectedBackend
	w := ansiwriter.New(mode, f.Width*f.Height*8)
	w.UseCachedPrefixes(entry.PrefixForeTrue, entry.PrefixBackTrue, entry.PrefixFore256, entry.PrefixBack256)
	buckets := make([]uint8, backend.width)

	for y := 0; y < f.Height; y++ {
		rowStart := y * f.Width * 3
		x := 0
		for x < f.Width {
			n := backend.width
			if x+n > f.Width {
				n = f.Width - x
			}
			off := rowStart + x*3
			backend.batch(f.Pixels[off:off+n*3], buckets[:n])
			for i := 0; i < n; i++ {
				r, g, b := f.Pixels[off+i*3], f.Pixels[off+i*3+1], f.Pixels[off+i*3+2]
				glyph, glyphLen := gatherGlyph(entry, buckets[i])
				w.PutPixel(glyph, glyphLen, r, g, b)
			}
			x += n
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

// BackendName reports the name of the vector kernel selected at startup
// (e.g. "amd64-avx2", "arm64-neon", "generic").
func BackendName() string { return selectedBackend.name }
