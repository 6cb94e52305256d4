package ametrics

// Pre-defined metrics for the ascii-chat session daemon. All metrics live
// in DefaultRegistry so they are globally accessible without passing a
// registry around, matching the teacher's standard.go convention.

var (
	// ---- Renderer metrics (CORE A) ----

	// FramesRendered counts completed render() calls.
	FramesRendered = DefaultRegistry.Counter("render.frames")
	// PixelsRendered counts total pixels processed across all renders.
	PixelsRendered = DefaultRegistry.Counter("render.pixels")
	// RenderLatency is the render.latency_ms histogram for render()
	// duration in milliseconds; render.Scalar and render.Vector do not
	// record into it.
	RenderLatency = DefaultRegistry.Histogram("render.latency_ms")
	// OutputBytes records the size in bytes of rendered output.
	OutputBytes = DefaultRegistry.Histogram("render.output_bytes")
	// FramesRenderedRate tracks frames/sec via 1/5/15-minute EWMAs.
	FramesRenderedRate = DefaultRegistry.Meter("render.frames_rate")

	// ---- Palette cache metrics ----

	// CacheBuilds counts palette cache entries built from scratch.
	CacheBuilds = DefaultRegistry.Counter("cache.builds")
	// CacheBuildFailures counts palette cache builds that failed to parse.
	CacheBuildFailures = DefaultRegistry.Counter("cache.build_failures")
	// CacheSize tracks the current number of distinct cache entries.
	CacheSize = DefaultRegistry.Gauge("cache.size")

	// ---- Handshake metrics (CORE B) ----

	// HandshakeAttempts counts handshake state machines started.
	HandshakeAttempts = DefaultRegistry.Counter("handshake.attempts")
	// HandshakeSuccesses counts handshakes that reached Ready.
	HandshakeSuccesses = DefaultRegistry.Counter("handshake.successes")
	// HandshakeFailures counts handshakes that reached Failed.
	HandshakeFailures = DefaultRegistry.Counter("handshake.failures")
	// HandshakeLatency records time-to-Ready in milliseconds.
	HandshakeLatency = DefaultRegistry.Histogram("handshake.latency_ms")

	// ---- Session metrics ----

	// SessionPacketsSent counts encrypted packets sent.
	SessionPacketsSent = DefaultRegistry.Counter("session.packets_sent")
	// SessionPacketsRecv counts encrypted packets received.
	SessionPacketsRecv = DefaultRegistry.Counter("session.packets_recv")
	// SessionBytesSent counts plaintext bytes sent.
	SessionBytesSent = DefaultRegistry.Counter("session.bytes_sent")
	// SessionBytesRecv counts plaintext bytes received.
	SessionBytesRecv = DefaultRegistry.Counter("session.bytes_recv")
	// SessionDecryptFailures counts AEAD authentication failures.
	SessionDecryptFailures = DefaultRegistry.Counter("session.decrypt_failures")
	// SessionPacketsRate tracks encrypted packets/sec sent, via the same
	// 1/5/15-minute EWMAs as FramesRenderedRate.
	SessionPacketsRate = DefaultRegistry.Meter("session.packets_rate")
)
