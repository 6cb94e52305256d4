//go:build !amd64 && !arm64

package render

// detectBackend is the fallback for architectures with no dedicated
// kernel: the portable batch function still applies, just at a smaller
// default width.
func detectBackend() vectorBackend {
	return vectorBackend{name: "generic", width: 8, batch: batchPortable}
}
