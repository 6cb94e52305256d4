//go:build arm64

package render

import "golang.org/x/sys/cpu"

// detectBackend mirrors vector_amd64.go's dispatch-once discipline for
// arm64: NEON (ASIMD) is effectively universal on arm64, so this mostly
// exists to keep the per-arch file symmetric and to widen the batch when
// the optional dot-product extension is present.
func detectBackend() vectorBackend {
	if cpu.ARM64.HasASIMD {
		width := 16
		if cpu.ARM64.HasASIMDDP {
			width = 32
		}
		return vectorBackend{name: "arm64-neon", width: width, batch: batchPortable}
	}
	return vectorBackend{name: "arm64-generic", width: 8, batch: batchPortable}
}
