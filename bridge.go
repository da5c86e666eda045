// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package quad

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/gogpu/quad/gpu"
)

// Handler draws the application. It is the only required callback.
type Handler interface {
	OnDraw(g *Graphics) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(g *Graphics) error

// OnDraw implements Handler.
func (f HandlerFunc) OnDraw(g *Graphics) error { return f(g) }

// StartHandler is called once before the first frame.
type StartHandler interface {
	OnStart(g *Graphics) error
}

// UpdateHandler is called before every frame with the time since the
// previous one (zero for the first frame).
type UpdateHandler interface {
	OnUpdate(dt time.Duration) error
}

// ResizeHandler is notified after the surface changes.
type ResizeHandler interface {
	OnResize(cfg SurfaceConfig) error
}

// InputHandler receives keyboard and pointer events.
type InputHandler interface {
	OnKey(ev KeyEvent) error
	OnPointer(ev PointerEvent) error
}

// TextInputHandler receives text input.
type TextInputHandler interface {
	OnChar(ev CharEvent) error
}

// ContextHandler is notified when the GPU context is lost and after it
// has been restored and every texture rebuilt.
type ContextHandler interface {
	OnContextLost()
	OnContextRestored(g *Graphics) error
}

// CloseHandler is called during teardown, before textures are released.
type CloseHandler interface {
	OnClose()
}

// Bridge connects a window's event stream to a Handler and a Graphics.
//
// The windowing layer calls the Handle methods, or feeds events to Run.
// Optional hooks are found by type assertion on the handler: see
// StartHandler, UpdateHandler, ResizeHandler, InputHandler,
// TextInputHandler, ContextHandler and CloseHandler.
//
// Bridge is not safe for concurrent use; all events must come from the
// goroutine that owns the GPU context.
type Bridge struct {
	g         *Graphics
	h         Handler
	log       *slog.Logger
	surface   SurfaceConfig
	listeners []SurfaceListener

	started   bool
	lost      bool
	closed    bool
	minimized bool
	lastFrame time.Time

	redraw    bool
	terminate bool
}

// NewBridge creates a bridge drawing to dev with h.
func NewBridge(dev gpu.Device, h Handler, opts ...Option) (*Bridge, error) {
	if h == nil {
		return nil, ErrNilHandler
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	g, err := newGraphics(dev, o)
	if err != nil {
		return nil, err
	}
	surface := SurfaceConfig{Scale: 1}
	if o.surface != nil {
		surface = *o.surface
		if surface.Scale <= 0 {
			surface.Scale = 1
		}
	} else {
		size := dev.Size()
		surface.Width, surface.Height = size.X, size.Y
	}
	return &Bridge{g: g, h: h, log: g.log, surface: surface}, nil
}

// Graphics returns the bridge's Graphics.
func (b *Bridge) Graphics() *Graphics { return b.g }

// Surface returns the current surface configuration.
func (b *Bridge) Surface() SurfaceConfig { return b.surface }

// Closed reports whether the bridge has been torn down.
func (b *Bridge) Closed() bool { return b.closed }

// AddSurfaceListener registers l for surface size changes.
func (b *Bridge) AddSurfaceListener(l SurfaceListener) {
	b.listeners = append(b.listeners, l)
}

// RequestRedraw asks Run to draw a frame after the current event.
func (b *Bridge) RequestRedraw() { b.redraw = true }

// Terminate makes Run tear down and return after the current event.
func (b *Bridge) Terminate() { b.terminate = true }

// HandleRedraw draws and presents one frame. If the handler fails, the
// frame is discarded and the handler's error returned.
func (b *Bridge) HandleRedraw() error {
	switch {
	case b.closed:
		return ErrClosed
	case b.lost:
		return ErrContextLost
	case b.minimized:
		return nil
	}
	b.redraw = false
	if !b.started {
		b.started = true
		if sh, ok := b.h.(StartHandler); ok {
			if err := sh.OnStart(b.g); err != nil {
				return fmt.Errorf("quad: start: %w", err)
			}
		}
	}
	now := time.Now()
	if uh, ok := b.h.(UpdateHandler); ok {
		var dt time.Duration
		if !b.lastFrame.IsZero() {
			dt = now.Sub(b.lastFrame)
		}
		if err := uh.OnUpdate(dt); err != nil {
			return fmt.Errorf("quad: update: %w", err)
		}
	}
	b.lastFrame = now

	if err := b.g.BeginFrame(); err != nil {
		return err
	}
	if err := b.h.OnDraw(b.g); err != nil {
		b.g.AbortFrame()
		return fmt.Errorf("quad: draw: %w", err)
	}
	if err := b.g.EndFrame(); err != nil {
		if isProgrammingError(err) {
			b.log.Warn("quad: frame dropped", "err", err)
		}
		return b.deviceError(err)
	}
	if err := b.g.dev.Present(); err != nil {
		return b.deviceError(fmt.Errorf("quad: present: %w", err))
	}
	return nil
}

// deviceError switches to the lost state when err comes from a lost
// device.
func (b *Bridge) deviceError(err error) error {
	if errors.Is(err, gpu.ErrDeviceLost) {
		b.HandleContextLost()
		return fmt.Errorf("%w: %w", ErrContextLost, err)
	}
	return err
}

// HandleResize applies a new surface size in physical pixels and scale
// factor. A zero size (a minimized window) suspends drawing until the
// next non-zero resize. The glyph atlas is left alone.
func (b *Bridge) HandleResize(width, height int, scale float64) error {
	if b.closed {
		return ErrClosed
	}
	if scale <= 0 {
		scale = b.surface.Scale
	}
	b.surface = SurfaceConfig{Width: width, Height: height, Scale: scale}
	b.g.SetScaleFactor(scale)
	if width <= 0 || height <= 0 {
		b.minimized = true
		return nil
	}
	b.minimized = false
	if !b.lost {
		if err := b.g.dev.Resize(width, height); err != nil {
			return b.deviceError(fmt.Errorf("quad: resize: %w", err))
		}
	}
	var errs []error
	for _, l := range b.listeners {
		if err := l.OnSurfaceResize(b.surface); err != nil {
			errs = append(errs, err)
		}
	}
	if rh, ok := b.h.(ResizeHandler); ok {
		if err := rh.OnResize(b.surface); err != nil {
			errs = append(errs, err)
		}
	}
	b.redraw = true
	return errors.Join(errs...)
}

// HandleContextLost drops the device. Drawing fails with ErrContextLost
// until HandleContextRestored.
func (b *Bridge) HandleContextLost() {
	if b.closed || b.lost {
		return
	}
	b.lost = true
	b.g.AbortFrame()
	b.g.lost = true
	b.log.Warn("quad: GPU context lost")
	if ch, ok := b.h.(ContextHandler); ok {
		ch.OnContextLost()
	}
}

// HandleContextRestored adopts dev and rebuilds every texture on it.
// Texture handles held by the application stay valid.
func (b *Bridge) HandleContextRestored(dev gpu.Device) error {
	if b.closed {
		return ErrClosed
	}
	if dev == nil {
		return ErrNilDevice
	}
	if err := b.g.res.Rebuild(dev); err != nil {
		return fmt.Errorf("quad: rebuild textures: %w", err)
	}
	if b.surface.Width > 0 && b.surface.Height > 0 {
		if err := dev.Resize(b.surface.Width, b.surface.Height); err != nil {
			return fmt.Errorf("quad: resize restored device: %w", err)
		}
	}
	b.g.dev = dev
	b.g.lost = false
	b.lost = false
	b.redraw = true
	b.log.Info("quad: GPU context restored", "textures", b.g.res.Len())
	if ch, ok := b.h.(ContextHandler); ok {
		if err := ch.OnContextRestored(b.g); err != nil {
			return fmt.Errorf("quad: context restored: %w", err)
		}
	}
	return nil
}

// HandleTeardown releases every texture and closes the bridge. It is
// idempotent.
func (b *Bridge) HandleTeardown() {
	if b.closed {
		return
	}
	if ch, ok := b.h.(CloseHandler); ok {
		ch.OnClose()
	}
	b.g.AbortFrame()
	if !b.lost {
		b.g.res.ReleaseAll()
	}
	b.closed = true
	b.log.Info("quad: bridge closed", "frames", b.g.stats.Frames)
}

// Dispatch routes one event to the matching Handle method or handler
// hook. Input events are dropped silently when the handler does not take
// them.
func (b *Bridge) Dispatch(ev Event) error {
	if b.closed {
		return ErrClosed
	}
	switch ev := ev.(type) {
	case RedrawEvent:
		return b.HandleRedraw()
	case ResizeEvent:
		return b.HandleResize(ev.Width, ev.Height, ev.Scale)
	case KeyEvent:
		if ih, ok := b.h.(InputHandler); ok {
			return ih.OnKey(ev)
		}
	case PointerEvent:
		if ih, ok := b.h.(InputHandler); ok {
			return ih.OnPointer(ev)
		}
	case CharEvent:
		if th, ok := b.h.(TextInputHandler); ok {
			return th.OnChar(ev)
		}
	case ContextLostEvent:
		b.HandleContextLost()
	case ContextRestoredEvent:
		return b.HandleContextRestored(ev.Device)
	case CloseEvent:
		b.HandleTeardown()
	default:
		return fmt.Errorf("quad: unknown event %T", ev)
	}
	return nil
}

// Run pumps events until a CloseEvent, Terminate, context cancellation or
// a fatal error. It locks the goroutine to its OS thread for the GPU
// context. Redraws requested with RequestRedraw or by a resize run after
// the event that caused them. ErrContextLost is returned to the caller so
// it can recover the device and call Run again.
func (b *Bridge) Run(ctx context.Context, events <-chan Event) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				b.HandleTeardown()
				return nil
			}
			if err := b.Dispatch(ev); err != nil {
				if errors.Is(err, ErrClosed) {
					return nil
				}
				return err
			}
			if _, isClose := ev.(CloseEvent); isClose {
				return nil
			}
		}
		if b.redraw && !b.lost && !b.terminate {
			if err := b.HandleRedraw(); err != nil {
				return err
			}
		}
		if b.terminate {
			b.HandleTeardown()
			return nil
		}
	}
}
