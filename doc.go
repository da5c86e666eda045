// Package quad provides an immediate-mode 2D drawing layer on top of a
// GPU device abstraction.
//
// # Overview
//
// Every frame, shapes, images and text are tessellated into textured,
// colored triangles, grouped into draw batches by texture, blend mode and
// clip rectangle, and submitted to a [gpu.Device]. Glyphs are rasterized
// on demand into a texture atlas that grows and evicts least recently
// used entries as needed.
//
// # Quick Start
//
//	dev := softgpu.New(512, 512)
//	g, err := quad.NewGraphics(dev)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := g.BeginFrame(); err != nil {
//		log.Fatal(err)
//	}
//	g.Clear(quad.Black)
//	g.FillCircle(256, 256, 100, quad.RGB(1, 0, 0))
//	g.DrawText("hello", 16, 32, quad.White)
//	if err := g.EndFrame(); err != nil {
//		log.Fatal(err)
//	}
//	dev.Present()
//
// # Windowing
//
// [Bridge] adapts window system events (redraw, resize, input, context
// loss and close) to a [Handler]. Optional hooks such as [UpdateHandler]
// and [ContextHandler] are discovered by type assertion.
//
// # Coordinate System
//
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - Coordinates are logical pixels, multiplied by the scale factor
//   - Angles in radians
//
// # Backends
//
// gpu/softgpu rasterizes draw calls on the CPU and is used by tests and
// headless tools. gpu/halgpu renders through a gogpu/wgpu HAL device.
package quad

// Version is the current version of the library.
const Version = "0.1.0"
