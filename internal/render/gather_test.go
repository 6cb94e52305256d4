package render

import (
	"testing"

	"github.com/zfogg/ascii-chat-sub008/internal/cache"
	"github.com/zfogg/ascii-chat-sub008/internal/rendermode"
)

func TestGatherGlyph_FastPath1Byte(t *testing.T) {
	c := cache.New()
	entry, err := c.LookupOrBuild([]byte(" .:-=+*#%@"), rendermode.Mode{Kind: rendermode.Monochrome})
	if err != nil {
		t.Fatalf("LookupOrBuild: %v", err)
	}
	if !entry.Uniform1Byte {
		t.Fatal("expected a uniform 1-byte palette")
	}

	for bucket := 0; bucket < 64; bucket++ {
		glyph, length := gatherGlyph(entry, uint8(bucket))
		if length != 1 {
			t.Fatalf("bucket %d: got length %d, want 1", bucket, length)
		}
		if glyph[0] != entry.GlyphBytes[bucket][0] {
			t.Errorf("bucket %d: got %q, want %q", bucket, glyph[0], entry.GlyphBytes[bucket][0])
		}
	}
}

func TestGatherGlyph_MixedWidthCompaction(t *testing.T) {
	c := cache.New()
	entry, err := c.LookupOrBuild([]byte(" α♠🌟"), rendermode.Mode{Kind: rendermode.Monochrome})
	if err != nil {
		t.Fatalf("LookupOrBuild: %v", err)
	}
	if entry.Uniform1Byte {
		t.Fatal("expected a mixed-width palette")
	}

	for bucket := 0; bucket < 64; bucket++ {
		wantLen := entry.GlyphLen[bucket]
		glyph, length := gatherGlyph(entry, uint8(bucket))
		if length != wantLen {
			t.Fatalf("bucket %d: got length %d, want %d", bucket, length, wantLen)
		}
		for i := 0; i < int(wantLen); i++ {
			if glyph[i] != entry.GlyphBytes[bucket][i] {
				t.Errorf("bucket %d byte %d: got %#x, want %#x", bucket, i, glyph[i], entry.GlyphBytes[bucket][i])
			}
		}
		for i := int(wantLen); i < 4; i++ {
			if glyph[i] != 0 {
				t.Errorf("bucket %d byte %d: expected null-compacted tail, got %#x", bucket, i, glyph[i])
			}
		}
	}
}
