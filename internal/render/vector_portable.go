package render

import "github.com/zfogg/ascii-chat-sub008/internal/palette"

// batchPortable computes the quantized luminance bucket for each pixel
// in a batch, in plain Go. It implements the same per-pixel formula as
// Scalar; real SIMD backends would replace this function body with
// vectorized arithmetic, but produce numerically identical buckets. The
// buckets this returns are then gathered into glyph bytes by
// gatherGlyph, which is where Entry.FastPath1Byte/ShuffleMasks actually
// get consumed.
func batchPortable(pixels []byte, out []uint8) {
	for i := range out {
		r, g, b := pixels[i*3], pixels[i*3+1], pixels[i*3+2]
		out[i] = palette.QuantizeLuminance(palette.Luminance(r, g, b))
	}
}
