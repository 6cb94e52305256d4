// Package palette parses and indexes the glyph strings used as luminance
// buckets by the renderer. A Palette is built once per distinct glyph
// string and cached by internal/cache; this package only concerns itself
// with parsing and random access, not caching.
package palette

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrMalformedUTF8 is returned by Parse when the input bytes are not
// well-formed UTF-8.
var ErrMalformedUTF8 = errors.New("palette: malformed utf-8")

// ErrEmpty is returned by Parse when the input has zero characters.
var ErrEmpty = errors.New("palette: empty palette")

// Char is one decoded glyph: its byte offset and length within the
// original palette string, plus the raw bytes themselves.
type Char struct {
	Offset int
	Length int // 1..4
	Bytes  [4]byte
}

// Palette is an ordered, parsed sequence of glyphs. The zero value is not
// usable; construct with Parse.
type Palette struct {
	raw   []byte
	chars []Char
}

// Parse decodes a UTF-8 byte string into a Palette in a single pass.
// Parsing failure is fatal to the caller: a malformed palette must never
// reach the renderer.
func Parse(raw []byte) (*Palette, error) {
	if len(raw) == 0 {
		return nil, ErrEmpty
	}
	p := &Palette{
		raw:   append([]byte(nil), raw...),
		chars: make([]Char, 0, len(raw)),
	}
	for i := 0; i < len(p.raw); {
		r, size := utf8.DecodeRune(p.raw[i:])
		if r == utf8.RuneError && size <= 1 {
			return nil, fmt.Errorf("%w: at byte offset %d", ErrMalformedUTF8, i)
		}
		if size > 4 {
			return nil, fmt.Errorf("%w: glyph at offset %d exceeds 4 bytes", ErrMalformedUTF8, i)
		}
		var c Char
		c.Offset = i
		c.Length = size
		copy(c.Bytes[:], p.raw[i:i+size])
		p.chars = append(p.chars, c)
		i += size
	}
	if len(p.chars) == 0 {
		return nil, ErrEmpty
	}
	return p, nil
}

// Len returns the number of glyphs in the palette.
func (p *Palette) Len() int { return len(p.chars) }

// CharAt returns the glyph at index, bounds-checked.
func (p *Palette) CharAt(index int) (Char, error) {
	if index < 0 || index >= len(p.chars) {
		return Char{}, fmt.Errorf("palette: index %d out of range [0,%d)", index, len(p.chars))
	}
	return p.chars[index], nil
}

// Raw returns the original palette bytes. Callers must not mutate the
// returned slice.
func (p *Palette) Raw() []byte { return p.raw }

// FindAll returns every index whose glyph bytes equal the argument. Used
// by tests to measure palette coverage against a palette with duplicate
// glyphs.
func (p *Palette) FindAll(b []byte) []int {
	var out []int
	for i, c := range p.chars {
		if c.Length == len(b) && string(c.Bytes[:c.Length]) == string(b) {
			out = append(out, i)
		}
	}
	return out
}

// IsUniform1Byte reports whether every glyph in the palette is exactly
// one byte, gating the fast 1-byte lookup table path in the cache.
func (p *Palette) IsUniform1Byte() bool {
	for _, c := range p.chars {
		if c.Length != 1 {
			return false
		}
	}
	return true
}

// MaxByteLength returns the longest glyph's byte length, 1..4.
func (p *Palette) MaxByteLength() int {
	max := 1
	for _, c := range p.chars {
		if c.Length > max {
			max = c.Length
		}
	}
	return max
}
