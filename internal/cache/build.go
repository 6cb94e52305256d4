package cache

import (
	"github.com/zfogg/ascii-chat-sub008/internal/palette"
	"github.com/zfogg/ascii-chat-sub008/internal/rendermode"
)

// buildEntry materializes every precomputed table for one
// (palette, mode) pair. It is pure and allocation-only; no I/O, no
// locking. Callers (lookupOrBuild) are responsible for the
// at-most-one-builder discipline.
func buildEntry(p *palette.Palette, mode rendermode.Mode) *Entry {
	e := &Entry{Palette: p}
	e.Lumin = palette.BuildLuminanceTable(p.Len())

	for i := 0; i < 64; i++ {
		c, err := p.CharAt(e.Lumin[i])
		if err != nil {
			// BuildLuminanceTable guarantees indices within [0, p.Len()),
			// so this can only fire on programmer error.
			panic("cache: luminance table produced out-of-range index")
		}
		e.GlyphBytes[i] = c.Bytes
		e.GlyphLen[i] = uint8(c.Length)
	}

	e.Uniform1Byte = p.IsUniform1Byte()
	if e.Uniform1Byte {
		for i := 0; i < 64; i++ {
			e.FastPath1Byte[i] = e.GlyphBytes[i][0]
		}
	} else {
		buildShuffleMasks(e)
	}

	e.PrefixForeTrue, e.PrefixBackTrue, e.PrefixFore256, e.PrefixBack256 = ansiPrefixTemplates()
	_ = mode // mode only participates in the cache key; tables are mode-agnostic
	return e
}

// buildShuffleMasks computes, for every luminance bucket, the byte-gather
// mask that pulls that bucket's glyph bytes from its 4-byte window into
// dense output positions, and the companion validity mask used for
// null-compaction (§4.5, §9): lane b is valid iff b < GlyphLen[bucket],
// since GlyphBytes stores each glyph's bytes front-packed with no
// interior gaps.
//
// In a real SIMD backend this mask feeds a PSHUFB/TBL instruction; here
// it is precomputed as plain data so the portable vector path in
// internal/render can apply it with ordinary indexing and still produce
// byte-identical output to a true PSHUFB gather.
func buildShuffleMasks(e *Entry) {
	for bucket := 0; bucket < 64; bucket++ {
		length := e.GlyphLen[bucket]
		var mask [4]byte
		var valid [4]bool
		for b := 0; b < 4; b++ {
			mask[b] = byte(b)
			valid[b] = byte(b) < length
		}
		e.ShuffleMasks[bucket] = mask
		e.ValidMask[bucket] = valid
	}
}
