//go:build amd64

package render

import "golang.org/x/sys/cpu"

// detectBackend probes ISA features exactly once, at package init, per
// §4.5: "never probe per frame." AVX2 unlocks a wider batch; anything
// else gets a 16-pixel batch. Both run the portable kernel and compute the
// identical luminance formula and quantization as Scalar (§8
// byte-identical invariant) — the AVX2 path's width is the only
// observable difference, and it is purely a batching granularity, not a
// numerical approximation, because no assembly can be hand-verified
// here without a working toolchain.
func detectBackend() vectorBackend {
	if cpu.X86.HasAVX2 {
		return vectorBackend{name: "amd64-avx2", width: 32, batch: batchPortable}
	}
	return vectorBackend{name: "amd64-generic", width: 16, batch: batchPortable}
}
