package cache

import "github.com/zfogg/ascii-chat-sub008/internal/palette"

// Entry is the per-(palette, mode) precomputed table set described in
// §3. Values are owned and immutable once published; readers never
// observe a partially initialized Entry.
type Entry struct {
	Palette *palette.Palette
	Lumin   palette.LuminanceTable

	// GlyphBytes[i] holds the up-to-4 raw bytes of the glyph selected by
	// luminance bucket i; GlyphLen[i] is how many of those bytes are
	// valid.
	GlyphBytes [64][4]byte
	GlyphLen   [64]uint8

	// FastPath1Byte is populated only when the palette is uniform
	// 1-byte: a dense u8[64] table of glyph bytes, gating the
	// all-ASCII vector fast path.
	Uniform1Byte  bool
	FastPath1Byte [64]byte

	// ShuffleMasks/ValidMask back the mixed-width vector gather path
	// (§4.5): one entry per luminance bucket, mirroring the 4-byte
	// window in GlyphBytes. ShuffleMasks[i][lane] is the source byte
	// position within GlyphBytes[i] that gather lane should read;
	// ValidMask[i][lane] says whether that lane holds real glyph data or
	// must be compacted out (no interior NUL reaches the writer). On a
	// real SIMD backend this is the PSHUFB/TBL control mask; render.Vector
	// walks it to reproduce Scalar's output byte-for-byte instead of
	// indexing GlyphBytes directly.
	ShuffleMasks [64][4]byte
	ValidMask    [64][4]bool

	// ANSI prefix templates, fixed regardless of palette: only the mode
	// determines their shape, but they are cached alongside the palette
	// entry for single-allocation reuse by the writer.
	PrefixForeTrue []byte
	PrefixBackTrue []byte
	PrefixFore256  []byte
	PrefixBack256  []byte
}

// ansiPrefixTemplates returns the constant prefix skeletons for all four
// color modes (truecolor and 256-color, foreground and background).
// Truecolor/256-color prefixes still need numeric bytes appended by the
// writer; these are the literal-escape portions, computed once.
func ansiPrefixTemplates() (foreTrue, backTrue, fore256, back256 []byte) {
	return []byte("\x1b[38;2;"), []byte("\x1b[48;2;"), []byte("\x1b[38;5;"), []byte("\x1b[48;5;")
}
