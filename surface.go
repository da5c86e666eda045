// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package quad

// SurfaceConfig describes the presentation surface.
type SurfaceConfig struct {
	// Width and Height are the surface size in physical pixels.
	Width, Height int

	// Scale is the ratio of physical to logical pixels.
	Scale float64
}

// LogicalSize returns the surface size in logical pixels.
func (s SurfaceConfig) LogicalSize() (w, h float64) {
	scale := s.Scale
	if scale <= 0 {
		scale = 1
	}
	return float64(s.Width) / scale, float64(s.Height) / scale
}

// SurfaceListener is notified after the surface changes size, for
// resources that track it such as full-screen render targets.
type SurfaceListener interface {
	OnSurfaceResize(cfg SurfaceConfig) error
}

// SurfaceListenerFunc adapts a function to SurfaceListener.
type SurfaceListenerFunc func(cfg SurfaceConfig) error

// OnSurfaceResize implements SurfaceListener.
func (f SurfaceListenerFunc) OnSurfaceResize(cfg SurfaceConfig) error { return f(cfg) }
