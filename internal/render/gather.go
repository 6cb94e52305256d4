package render

import "github.com/zfogg/ascii-chat-sub008/internal/cache"

// gatherGlyph emulates the table-lookup/shuffle-mask gather a real SIMD
// batch would run for one quantized luminance bucket (§4.5): a uniform
// 1-byte palette goes through the dense FastPath1Byte table (one lookup,
// length always 1); a mixed-width palette gathers through
// ShuffleMasks/ValidMask, compacting out the invalid lanes so no
// interior NUL reaches the bytes PutPixel writes. Both paths reproduce
// exactly what Scalar reads directly off GlyphBytes/GlyphLen.
func gatherGlyph(entry *cache.Entry, bucket uint8) (glyph [4]byte, length uint8) {
	if entry.Uniform1Byte {
		glyph[0] = entry.FastPath1Byte[bucket]
		return glyph, 1
	}

	mask := entry.ShuffleMasks[bucket]
	valid := entry.ValidMask[bucket]
	src := entry.GlyphBytes[bucket]
	var n uint8
	for lane := 0; lane < 4; lane++ {
		if !valid[lane] {
			continue
		}
		glyph[n] = src[mask[lane]]
		n++
	}
	return glyph, n
}
