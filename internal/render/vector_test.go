package render

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/zfogg/ascii-chat-sub008/internal/cache"
	"github.com/zfogg/ascii-chat-sub008/internal/rendermode"
)

func TestVector_MatchesScalar(t *testing.T) {
	modes := []rendermode.Mode{
		{Kind: rendermode.Monochrome},
		{Kind: rendermode.Color256, Target: rendermode.Foreground},
		{Kind: rendermode.TrueColor, Target: rendermode.Background},
	}
	// The uniform-1-byte palette exercises gatherGlyph's FastPath1Byte
	// lane; the mixed-width palette exercises its ShuffleMasks/ValidMask
	// null-compaction lane (§4.5).
	palettes := [][]byte{
		[]byte(" .:-=+*#%@"),
		[]byte(" α♠🌟"),
	}

	rng := rand.New(rand.NewSource(1))
	for _, pal := range palettes {
		for _, mode := range modes {
			width, height := 37, 5 // deliberately not a multiple of any batch width
			pixels := make([]byte, width*height*3)
			rng.Read(pixels)
			f := &rendermode.Frame{Width: width, Height: height, Pixels: pixels}

			scalarOut, err := Scalar(cache.New(), f, pal, mode)
			if err != nil {
				t.Fatalf("Scalar: %v", err)
			}
			vectorOut, err := Vector(cache.New(), f, pal, mode)
			if err != nil {
				t.Fatalf("Vector: %v", err)
			}
			if !bytes.Equal(scalarOut, vectorOut) {
				t.Errorf("palette %q mode %v: vector output diverged from scalar\nscalar: %q\nvector: %q", pal, mode, scalarOut, vectorOut)
			}
		}
	}
}

func TestBackendName_NonEmpty(t *testing.T) {
	if BackendName() == "" {
		t.Error("expected a non-empty backend name")
	}
}
