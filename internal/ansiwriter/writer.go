// Package ansiwriter emits the coalesced ANSI escape sequences described
// in spec §4.6: truecolor/256-color foreground and background prefixes,
// run-length-encoded glyph repetition, and end-of-row resets. It is the
// only place color and glyph coalescing happens; the scalar and vector
// renderers feed it one pixel at a time and never emit escapes
// themselves.
package ansiwriter

import (
	"strconv"

	"github.com/zfogg/ascii-chat-sub008/internal/rendermode"
)

// rleThreshold is the minimum additional-repeat count at which emitting
// "ESC [ K b" is cheaper than repeating the glyph bytes directly (spec
// §9 open question c: nowhere pinned by the source, K >= 3 is the
// defensible default adopted here).
const rleThreshold = 3

// Writer accumulates one rendered frame's bytes, coalescing identical
// adjacent colors and glyphs per spec §4.6. Color and run state reset at
// the start of every row, matching "Reset: ESC[0m at end of each row".
type Writer struct {
	out  []byte
	mode rendermode.Mode

	colorSet   bool
	curR       uint8
	curG       uint8
	curB       uint8

	haveGlyph bool
	curGlyph  [4]byte
	curLen    uint8
	runExtra  int // additional repeats of curGlyph beyond the one already written

	rowDirty bool // true once any color prefix has been emitted this row

	prefixForeTrue []byte
	prefixBackTrue []byte
	prefixFore256  []byte
	prefixBack256  []byte
}

// New creates a Writer for the given mode with buf as its initial
// capacity hint (e.g. width*height*8). The color prefixes default to
// this package's own literals; callers that already hold a palette
// cache entry should call UseCachedPrefixes to reuse its precomputed
// templates instead.
func New(mode rendermode.Mode, capacityHint int) *Writer {
	return &Writer{
		out:            make([]byte, 0, capacityHint),
		mode:           mode,
		prefixForeTrue: []byte("\x1b[38;2;"),
		prefixBackTrue: []byte("\x1b[48;2;"),
		prefixFore256:  []byte("\x1b[38;5;"),
		prefixBack256:  []byte("\x1b[48;5;"),
	}
}

// UseCachedPrefixes swaps in a palette cache entry's precomputed ANSI
// prefix templates (§3) in place of the Writer's own copy, so the
// cache's single allocation is reused frame after frame instead of the
// writer allocating its own.
func (w *Writer) UseCachedPrefixes(foreTrue, backTrue, fore256, back256 []byte) {
	w.prefixForeTrue = foreTrue
	w.prefixBackTrue = backTrue
	w.prefixFore256 = fore256
	w.prefixBack256 = back256
}

// PutPixel appends one glyph, with the appropriate color prefix if the
// mode is non-monochrome and the color differs from the current row's
// color state.
func (w *Writer) PutPixel(glyph [4]byte, glyphLen uint8, r, g, b uint8) {
	if w.mode.Kind != rendermode.Monochrome {
		if !w.colorSet || r != w.curR || g != w.curG || b != w.curB {
			w.flushRun()
			w.emitColorPrefix(r, g, b)
			w.curR, w.curG, w.curB = r, g, b
			w.colorSet = true
			w.rowDirty = true
		}
	}

	if w.haveGlyph && w.curLen == glyphLen && w.curGlyph == glyph {
		w.runExtra++
		return
	}
	w.flushRun()
	w.curGlyph = glyph
	w.curLen = glyphLen
	w.haveGlyph = true
	w.runExtra = 0
	w.out = append(w.out, glyph[:glyphLen]...)
}

// flushRun closes out the current glyph run, emitting either repeated
// glyph bytes (below threshold) or an RLE escape (at or above
// threshold).
func (w *Writer) flushRun() {
	if !w.haveGlyph || w.runExtra == 0 {
		return
	}
	if w.runExtra >= rleThreshold {
		w.out = append(w.out, 0x1b, '[')
		w.out = strconv.AppendInt(w.out, int64(w.runExtra), 10)
		w.out = append(w.out, 'b')
	} else {
		for i := 0; i < w.runExtra; i++ {
			w.out = append(w.out, w.curGlyph[:w.curLen]...)
		}
	}
	w.runExtra = 0
}

// EndRow closes the current glyph run and, for color modes, emits the
// reset escape; it does not append a newline (the caller decides
// whether this is the last row).
func (w *Writer) EndRow() {
	w.flushRun()
	if w.mode.Kind != rendermode.Monochrome && w.rowDirty {
		w.out = append(w.out, 0x1b, '[', '0', 'm')
	}
	w.colorSet = false
	w.rowDirty = false
	w.haveGlyph = false
}

// Newline appends a row separator. Callers must not call this after the
// final row (spec: "no trailing newline after the final row").
func (w *Writer) Newline() {
	w.out = append(w.out, '\n')
}

// Bytes finalizes the buffer: flushes any pending run (for the case
// EndRow was never called on the final row) and returns the
// accumulated UTF-8 bytes. The Writer must not be reused afterward.
func (w *Writer) Bytes() []byte {
	w.flushRun()
	return w.out
}

func (w *Writer) emitColorPrefix(r, g, b uint8) {
	switch w.mode.Kind {
	case rendermode.TrueColor:
		if w.mode.Target == rendermode.Background {
			w.out = append(w.out, w.prefixBackTrue...)
		} else {
			w.out = append(w.out, w.prefixForeTrue...)
		}
		w.out = strconv.AppendInt(w.out, int64(r), 10)
		w.out = append(w.out, ';')
		w.out = strconv.AppendInt(w.out, int64(g), 10)
		w.out = append(w.out, ';')
		w.out = strconv.AppendInt(w.out, int64(b), 10)
		w.out = append(w.out, 'm')
	case rendermode.Color256:
		n := Quantize256(r, g, b)
		if w.mode.Target == rendermode.Background {
			w.out = append(w.out, w.prefixBack256...)
		} else {
			w.out = append(w.out, w.prefixFore256...)
		}
		w.out = strconv.AppendInt(w.out, int64(n), 10)
		w.out = append(w.out, 'm')
	}
}

// Quantize256 maps an RGB triple to the xterm 6x6x6 color cube index
// (16..231), per spec §4.6.
func Quantize256(r, g, b uint8) int {
	q := func(c uint8) int { return (int(c)*5 + 127) / 255 }
	return 16 + 36*q(r) + 6*q(g) + q(b)
}
