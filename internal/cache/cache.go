// Package cache implements the process-wide palette cache (§4.3): the
// sole piece of process-wide mutable state in this module. It amortizes
// the cost of building per-palette lookup tables across frames, guarded
// by a single reader-writer lock with an at-most-one-builder discipline
// per key, mirroring the get-or-create pattern in the teacher's
// metrics.Registry (reference/metrics/registry.go).
package cache

import (
	"fmt"
	"sync"

	"github.com/zfogg/ascii-chat-sub008/internal/ametrics"
	"github.com/zfogg/ascii-chat-sub008/internal/palette"
	"github.com/zfogg/ascii-chat-sub008/internal/rendermode"
)

// holder tracks one in-flight or completed build. done is closed exactly
// once, when entry/err become safe to read without additional
// synchronization (the write to entry/err happens-before the close, and
// the close happens-before any receive, per the memory model).
type holder struct {
	done  chan struct{}
	entry *Entry
	err   error
}

// Cache is the process-wide palette cache. The zero value is not usable;
// construct with New.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]*holder
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[Key]*holder)}
}

// DefaultCache is the process-wide cache instance used by the renderer
// when no explicit Cache is supplied. It is the only global mutable
// state in this module (§9).
var DefaultCache = New()

// LookupOrBuild returns the cached Entry for (paletteBytes, mode),
// building it if absent. At most one builder runs concurrently per key;
// a reader that arrives mid-build waits on that build's completion
// rather than retry-spinning or starting a redundant build. A failed
// build is recorded under the key so subsequent lookups fail fast
// without retrying the parse.
func (c *Cache) LookupOrBuild(paletteBytes []byte, mode rendermode.Mode) (*Entry, error) {
	key := NewKey(paletteBytes, mode)

	c.mu.RLock()
	h, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.mu.Lock()
		// Double-check: another writer may have inserted between the
		// RUnlock above and this Lock.
		if h, ok = c.entries[key]; !ok {
			h = &holder{done: make(chan struct{})}
			c.entries[key] = h
			ametrics.CacheSize.Set(int64(len(c.entries)))
			c.mu.Unlock()

			h.entry, h.err = c.build(paletteBytes, mode)
			close(h.done)
			return h.entry, h.err
		}
		c.mu.Unlock()
	}

	<-h.done
	return h.entry, h.err
}

func (c *Cache) build(paletteBytes []byte, mode rendermode.Mode) (*Entry, error) {
	p, err := palette.Parse(paletteBytes)
	if err != nil {
		ametrics.DefaultRegistry.Counter("cache.build_failures").Inc()
		return nil, fmt.Errorf("cache: build failed: %w", err)
	}
	ametrics.DefaultRegistry.Counter("cache.builds").Inc()
	return buildEntry(p, mode), nil
}

// DropAll tears down every cached entry. Must be called only when no
// render operations are in flight; idempotent.
func (c *Cache) DropAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]*holder)
	ametrics.CacheSize.Set(0)
}

// Len reports the number of distinct (palette, mode) entries currently
// cached, including in-flight builds.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
