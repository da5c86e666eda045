// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package halgpu

import (
	"encoding/binary"
	"errors"
	"image"
	"math"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/quad/gpu"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice opens the noop HAL backend.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		t.Fatal("noop backend has no adapters")
	}
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		open.Device.Destroy()
		instance.Destroy()
	})
	return open.Device, open.Queue
}

func newTestDevice(t *testing.T, w, h int) *Device {
	t.Helper()
	hd, q := createNoopDevice(t)
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = w, h
	cfg.Readback = true
	d, err := New(hd, q, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(d.Destroy)
	return d
}

func quadCall(tex gpu.TextureID, blend gpu.BlendMode) gpu.DrawCall {
	c := gpu.Color{R: 1, A: 1}
	return gpu.DrawCall{
		Vertices: []gpu.Vertex{
			gpu.Vertex{X: 0, Y: 0}.WithColor(c),
			gpu.Vertex{X: 4, Y: 0, U: 1}.WithColor(c),
			gpu.Vertex{X: 4, Y: 4, U: 1, V: 1}.WithColor(c),
			gpu.Vertex{X: 0, Y: 4, V: 1}.WithColor(c),
		},
		Indices: []uint16{0, 1, 2, 0, 2, 3},
		Texture: tex,
		Blend:   blend,
	}
}

func TestCompileShader(t *testing.T) {
	words, err := compileShader(quadShaderSource)
	if err != nil {
		t.Fatalf("compileShader: %v", err)
	}
	if len(words) == 0 || words[0] != 0x07230203 {
		t.Errorf("SPIR-V does not start with the magic number: %x", words[:min(1, len(words))])
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"zero width", func(c *Config) { c.Width = 0 }, true},
		{"negative height", func(c *Config) { c.Height = -1 }, true},
		{"no timeout", func(c *Config) { c.FenceTimeout = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.edit(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewCreatesPipelinePerBlendMode(t *testing.T) {
	d := newTestDevice(t, 8, 8)
	for _, mode := range gpu.BlendModes {
		if d.pipes.byBlend[mode] == nil {
			t.Errorf("no pipeline for %v", mode)
		}
	}
	if got := d.Size(); got != image.Pt(8, 8) {
		t.Errorf("Size() = %v, want 8x8", got)
	}
}

func TestNewRejectsNil(t *testing.T) {
	if _, err := New(nil, nil, DefaultConfig()); err == nil {
		t.Error("New(nil, nil) succeeded")
	}
	if _, err := NewFromProvider(nil, DefaultConfig()); !errors.Is(err, ErrNilProvider) {
		t.Errorf("NewFromProvider(nil) = %v, want ErrNilProvider", err)
	}
}

func TestTextureLifecycle(t *testing.T) {
	d := newTestDevice(t, 8, 8)
	id, err := d.CreateTexture(gpu.TextureDescriptor{Label: "t", Width: 2, Height: 2, Format: gputypes.TextureFormatRGBA8Unorm})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	if err := d.UploadTextureRegion(id, image.Rect(0, 0, 2, 1), make([]byte, 8)); err != nil {
		t.Errorf("UploadTextureRegion: %v", err)
	}
	tests := []struct {
		name   string
		id     gpu.TextureID
		region image.Rectangle
		n      int
	}{
		{"outside", id, image.Rect(1, 1, 3, 3), 16},
		{"short data", id, image.Rect(0, 0, 2, 2), 4},
		{"unknown id", id + 10, image.Rect(0, 0, 1, 1), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := d.UploadTextureRegion(tt.id, tt.region, make([]byte, tt.n)); err == nil {
				t.Error("UploadTextureRegion succeeded")
			}
		})
	}
	if _, err := d.CreateTexture(gpu.TextureDescriptor{Width: 0, Height: 2, Format: gputypes.TextureFormatRGBA8Unorm}); err == nil {
		t.Error("zero-width texture created")
	}
	d.DestroyTexture(id)
	d.DestroyTexture(id)
	if d.TextureCount() != 0 {
		t.Errorf("TextureCount() = %d after destroy", d.TextureCount())
	}
}

func TestSubmitAndPresent(t *testing.T) {
	d := newTestDevice(t, 8, 8)
	id, err := d.CreateTexture(gpu.TextureDescriptor{Width: 1, Height: 1, Format: gputypes.TextureFormatRGBA8Unorm})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Clear(gpu.Color{A: 1}); err != nil {
		t.Fatal(err)
	}
	call := quadCall(gpu.NoTexture, gpu.BlendOpaque)
	if err := d.SubmitDraw(call); err != nil {
		t.Fatalf("SubmitDraw: %v", err)
	}
	clipped := quadCall(id, gpu.BlendAlpha)
	clipped.Clip, clipped.HasClip = image.Rect(1, 1, 3, 3), true
	if err := d.SubmitDraw(clipped); err != nil {
		t.Fatalf("SubmitDraw clipped: %v", err)
	}

	// The device keeps its own copy.
	call.Vertices[0].X = 100
	if d.pending[0].Vertices[0].X != 0 {
		t.Error("SubmitDraw aliased the caller's vertices")
	}

	if err := d.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if d.Frames() != 1 || len(d.pending) != 0 || d.clear != nil {
		t.Errorf("after Present frames=%d pending=%d clear=%v", d.Frames(), len(d.pending), d.clear)
	}
	if err := d.Present(); err != nil {
		t.Fatalf("empty Present: %v", err)
	}
}

func TestDestroyTextureWhileFramePending(t *testing.T) {
	d := newTestDevice(t, 8, 8)
	desc := gpu.TextureDescriptor{Width: 1, Height: 1, Format: gputypes.TextureFormatRGBA8Unorm}
	drawn, err := d.CreateTexture(desc)
	if err != nil {
		t.Fatal(err)
	}
	idle, err := d.CreateTexture(desc)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.SubmitDraw(quadCall(drawn, gpu.BlendAlpha)); err != nil {
		t.Fatalf("SubmitDraw: %v", err)
	}
	d.DestroyTexture(drawn)
	d.DestroyTexture(idle)
	if len(d.retired) != 1 {
		t.Errorf("retired = %d, want only the drawn texture", len(d.retired))
	}
	if d.TextureCount() != 0 {
		t.Errorf("TextureCount() = %d, want 0", d.TextureCount())
	}
	if err := d.SubmitDraw(quadCall(drawn, gpu.BlendAlpha)); !errors.Is(err, gpu.ErrUnknownTexture) {
		t.Errorf("SubmitDraw after destroy = %v, want ErrUnknownTexture", err)
	}
	if err := d.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if len(d.retired) != 0 {
		t.Errorf("retired = %d after Present, want 0", len(d.retired))
	}
}

func TestSubmitDrawErrors(t *testing.T) {
	d := newTestDevice(t, 8, 8)
	bad := quadCall(gpu.NoTexture, gpu.BlendAlpha)
	bad.Indices = []uint16{0, 1, 9}
	if err := d.SubmitDraw(bad); !errors.Is(err, gpu.ErrInvalidDrawCall) {
		t.Errorf("out-of-range index = %v, want ErrInvalidDrawCall", err)
	}
	if err := d.SubmitDraw(quadCall(42, gpu.BlendAlpha)); !errors.Is(err, gpu.ErrUnknownTexture) {
		t.Errorf("unknown texture = %v, want ErrUnknownTexture", err)
	}
}

func TestResize(t *testing.T) {
	d := newTestDevice(t, 8, 8)
	if err := d.Resize(32, 16); err != nil {
		t.Fatal(err)
	}
	if d.Size() != image.Pt(32, 16) || d.Image().Bounds().Dx() != 32 {
		t.Errorf("Size() = %v, image %v", d.Size(), d.Image().Bounds())
	}
	if err := d.Resize(0, 16); err == nil {
		t.Error("Resize(0, 16) succeeded")
	}
	if err := d.Present(); err != nil {
		t.Errorf("Present after resize: %v", err)
	}
}

func TestPack(t *testing.T) {
	calls := []pendingDraw{{DrawCall: quadCall(0, gpu.BlendAlpha)}, {DrawCall: gpu.DrawCall{
		Vertices: quadCall(0, gpu.BlendAlpha).Vertices[:3],
		Indices:  []uint16{0, 1, 2},
	}}}
	p := pack(calls)
	if len(p.vertices) != 7*gpu.VertexStride {
		t.Errorf("vertex bytes = %d, want %d", len(p.vertices), 7*gpu.VertexStride)
	}
	if len(p.indices)%4 != 0 || len(p.indices) < 18 {
		t.Errorf("index bytes = %d, want 18 padded to 20", len(p.indices))
	}
	if p.firstIndex[1] != 6 || p.baseVertex[1] != 4 {
		t.Errorf("second call at index %d vertex %d, want 6 and 4", p.firstIndex[1], p.baseVertex[1])
	}
	// Vertex 1 X is 4.
	if x := math.Float32frombits(binary.LittleEndian.Uint32(p.vertices[gpu.VertexStride:])); x != 4 {
		t.Errorf("vertex 1 X = %v, want 4", x)
	}
}

func TestDestroyMakesDeviceUnusable(t *testing.T) {
	hd, q := createNoopDevice(t)
	d, err := New(hd, q, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	d.Destroy()
	if err := d.Present(); !errors.Is(err, gpu.ErrDeviceLost) {
		t.Errorf("Present after Destroy = %v, want ErrDeviceLost", err)
	}
}
