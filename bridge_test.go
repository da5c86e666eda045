// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package quad

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/quad/gpu/softgpu"
	"github.com/gogpu/quad/resource"
)

// app records every hook the bridge calls.
type app struct {
	starts, updates, draws int
	resizes                []SurfaceConfig
	keys                   []KeyEvent
	chars                  []rune
	pointers               int
	lost, restored, closed int

	tex     resource.TextureHandle
	drawErr error
}

func (a *app) OnStart(g *Graphics) error {
	a.starts++
	h, err := g.Resources().CreateTexture([]byte{0, 255, 0, 255}, 1, 1)
	a.tex = h
	return err
}

func (a *app) OnUpdate(time.Duration) error { a.updates++; return nil }

func (a *app) OnDraw(g *Graphics) error {
	a.draws++
	if a.drawErr != nil {
		g.FillRect(0, 0, 4, 4, Red)
		return a.drawErr
	}
	g.Clear(Black)
	g.DrawImageWith(a.tex, 0, 0, DrawImageOptions{Width: 4, Height: 4})
	return nil
}

func (a *app) OnResize(cfg SurfaceConfig) error { a.resizes = append(a.resizes, cfg); return nil }
func (a *app) OnKey(ev KeyEvent) error          { a.keys = append(a.keys, ev); return nil }
func (a *app) OnPointer(PointerEvent) error     { a.pointers++; return nil }
func (a *app) OnChar(ev CharEvent) error        { a.chars = append(a.chars, ev.Char); return nil }
func (a *app) OnContextLost()                   { a.lost++ }
func (a *app) OnContextRestored(*Graphics) error {
	a.restored++
	return nil
}
func (a *app) OnClose() { a.closed++ }

func newTestBridge(t *testing.T, h Handler) (*Bridge, *softgpu.Device) {
	t.Helper()
	dev := softgpu.New(16, 16)
	b, err := NewBridge(dev, h)
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}
	return b, dev
}

func TestNewBridge(t *testing.T) {
	if _, err := NewBridge(softgpu.New(1, 1), nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("NewBridge(nil handler) = %v, want ErrNilHandler", err)
	}
	if _, err := NewBridge(nil, &app{}); !errors.Is(err, ErrNilDevice) {
		t.Errorf("NewBridge(nil device) = %v, want ErrNilDevice", err)
	}
	b, _ := newTestBridge(t, &app{})
	if s := b.Surface(); s.Width != 16 || s.Height != 16 || s.Scale != 1 {
		t.Errorf("Surface() = %+v, want 16x16 at scale 1", s)
	}
}

func TestBridgeRedraw(t *testing.T) {
	a := &app{}
	b, dev := newTestBridge(t, a)
	for range 2 {
		if err := b.HandleRedraw(); err != nil {
			t.Fatalf("HandleRedraw: %v", err)
		}
	}
	if a.starts != 1 || a.updates != 2 || a.draws != 2 {
		t.Errorf("hooks start=%d update=%d draw=%d, want 1, 2, 2", a.starts, a.updates, a.draws)
	}
	if dev.Frames() != 2 {
		t.Errorf("presented %d frames, want 2", dev.Frames())
	}
	if got := dev.Image().NRGBAAt(2, 2); got.G != 255 || got.R != 0 {
		t.Errorf("pixel = %v, want green texture", got)
	}
}

func TestBridgeDrawErrorDiscardsFrame(t *testing.T) {
	boom := errors.New("boom")
	a := &app{drawErr: boom}
	b, dev := newTestBridge(t, a)
	if err := b.HandleRedraw(); !errors.Is(err, boom) {
		t.Fatalf("HandleRedraw = %v, want handler error", err)
	}
	if dev.Frames() != 0 {
		t.Errorf("presented %d frames, want 0", dev.Frames())
	}
	if got := dev.Image().NRGBAAt(1, 1); got.A != 0 {
		t.Errorf("failed frame drew %v", got)
	}
	if b.Graphics().InFrame() {
		t.Error("frame left open after handler error")
	}
}

func TestBridgeResize(t *testing.T) {
	a := &app{}
	b, dev := newTestBridge(t, a)
	var heard []SurfaceConfig
	b.AddSurfaceListener(SurfaceListenerFunc(func(cfg SurfaceConfig) error {
		heard = append(heard, cfg)
		return nil
	}))

	if err := b.HandleResize(64, 32, 2); err != nil {
		t.Fatalf("HandleResize: %v", err)
	}
	if got := dev.Size(); got.X != 64 || got.Y != 32 {
		t.Errorf("device size = %v, want 64x32", got)
	}
	if b.Graphics().ScaleFactor() != 2 {
		t.Errorf("ScaleFactor = %v, want 2", b.Graphics().ScaleFactor())
	}
	if w, h := b.Graphics().Size(); w != 32 || h != 16 {
		t.Errorf("logical size = %vx%v, want 32x16", w, h)
	}
	if len(heard) != 1 || len(a.resizes) != 1 || a.resizes[0].Width != 64 {
		t.Errorf("listener saw %v, handler saw %v", heard, a.resizes)
	}

	// Minimized: redraw is a no-op until a real size arrives.
	if err := b.HandleResize(0, 0, 2); err != nil {
		t.Fatalf("HandleResize(0, 0): %v", err)
	}
	if err := b.HandleRedraw(); err != nil {
		t.Fatalf("HandleRedraw while minimized: %v", err)
	}
	if a.draws != 0 {
		t.Errorf("drew %d frames while minimized", a.draws)
	}
	if err := b.HandleResize(64, 32, 2); err != nil {
		t.Fatal(err)
	}
	if err := b.HandleRedraw(); err != nil {
		t.Fatal(err)
	}
	if a.draws != 1 {
		t.Errorf("draws = %d after restore, want 1", a.draws)
	}
}

func TestBridgeContextLoss(t *testing.T) {
	a := &app{}
	b, dev := newTestBridge(t, a)
	if err := b.HandleRedraw(); err != nil {
		t.Fatal(err)
	}
	tex := a.tex

	dev.Lose()
	if err := b.HandleRedraw(); !errors.Is(err, ErrContextLost) {
		t.Fatalf("HandleRedraw on lost device = %v, want ErrContextLost", err)
	}
	if a.lost != 1 {
		t.Errorf("OnContextLost called %d times, want 1", a.lost)
	}
	if err := b.HandleRedraw(); !errors.Is(err, ErrContextLost) {
		t.Errorf("HandleRedraw while lost = %v, want ErrContextLost", err)
	}

	fresh := softgpu.New(1, 1)
	if err := b.HandleContextRestored(fresh); err != nil {
		t.Fatalf("HandleContextRestored: %v", err)
	}
	if got := fresh.Size(); got.X != 16 || got.Y != 16 {
		t.Errorf("restored device size = %v, want 16x16", got)
	}
	if a.restored != 1 {
		t.Errorf("OnContextRestored called %d times", a.restored)
	}
	if err := b.HandleRedraw(); err != nil {
		t.Fatalf("HandleRedraw after restore: %v", err)
	}
	if a.tex != tex {
		t.Error("start hook ran again after restore")
	}
	if got := fresh.Image().NRGBAAt(2, 2); got.G != 255 {
		t.Errorf("pixel on restored device = %v, want green texture", got)
	}
}

func TestBridgeTeardown(t *testing.T) {
	a := &app{}
	b, dev := newTestBridge(t, a)
	if err := b.HandleRedraw(); err != nil {
		t.Fatal(err)
	}
	b.HandleTeardown()
	b.HandleTeardown()
	if a.closed != 1 {
		t.Errorf("OnClose called %d times, want 1", a.closed)
	}
	if n := dev.TextureCount(); n != 0 {
		t.Errorf("%d textures left after teardown", n)
	}
	if err := b.HandleRedraw(); !errors.Is(err, ErrClosed) {
		t.Errorf("HandleRedraw after teardown = %v, want ErrClosed", err)
	}
	if err := b.Dispatch(RedrawEvent{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Dispatch after teardown = %v, want ErrClosed", err)
	}
}

func TestBridgeRun(t *testing.T) {
	a := &app{}
	b, dev := newTestBridge(t, a)

	events := make(chan Event, 8)
	events <- ResizeEvent{Width: 32, Height: 32, Scale: 1}
	events <- KeyEvent{Key: gpucontext.KeySpace, Down: true}
	events <- CharEvent{Char: 'a'}
	events <- PointerEvent{Action: PointerDown, X: 1, Y: 1}
	events <- CloseEvent{}

	if err := b.Run(context.Background(), events); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if a.draws != 1 || dev.Frames() != 1 {
		t.Errorf("draws = %d, frames = %d, want one redraw after resize", a.draws, dev.Frames())
	}
	if len(a.keys) != 1 || a.keys[0].Key != gpucontext.KeySpace {
		t.Errorf("keys = %v", a.keys)
	}
	if len(a.chars) != 1 || a.pointers != 1 {
		t.Errorf("chars = %v, pointers = %d", a.chars, a.pointers)
	}
	if !b.Closed() || a.closed != 1 {
		t.Error("bridge not closed after CloseEvent")
	}
}

func TestBridgeRunCancel(t *testing.T) {
	b, _ := newTestBridge(t, HandlerFunc(func(*Graphics) error { return nil }))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Run(ctx, make(chan Event)); !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestBridgeRequestRedrawAndTerminate(t *testing.T) {
	var draws int
	var b *Bridge
	b, _ = newTestBridge(t, HandlerFunc(func(*Graphics) error {
		draws++
		switch draws {
		case 1:
			b.RequestRedraw()
		case 2:
			b.Terminate()
		}
		return nil
	}))
	events := make(chan Event, 1)
	events <- RedrawEvent{}
	if err := b.Run(context.Background(), events); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if draws != 2 || !b.Closed() {
		t.Errorf("draws = %d closed = %v, want 2 and closed", draws, b.Closed())
	}
}
