package cache

import (
	"github.com/zfogg/ascii-chat-sub008/internal/rendermode"
)

// Key identifies one palette cache entry: palette bytes (hashed and
// compared verbatim, never normalized) plus the rendering mode, per §4.3.
type Key struct {
	paletteBytes string // string(palette bytes); comparable map key
	mode         rendermode.Mode
}

// NewKey builds a Key from raw palette bytes and a rendering mode.
func NewKey(paletteBytes []byte, mode rendermode.Mode) Key {
	return Key{paletteBytes: string(paletteBytes), mode: mode}
}
