// Package gpu defines the contract between quad and a GPU backend.
//
// quad never talks to a graphics API directly. Every texture it owns and
// every batch it flushes goes through a [Device]. Two implementations ship
// with the module:
//
//   - [github.com/gogpu/quad/gpu/halgpu] renders through gogpu/wgpu HAL
//     (Vulkan, Metal, DX12, GLES, or the noop backend in tests).
//   - [github.com/gogpu/quad/gpu/softgpu] rasterizes on the CPU into an
//     [image.NRGBA]. It is used for headless rendering and for tests that
//     need to inspect pixels.
//
// A Device is owned by a single goroutine. None of the implementations
// are safe for concurrent use.
package gpu
