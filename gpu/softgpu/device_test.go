package softgpu

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/quad/gpu"
)

func quad(x0, y0, x1, y1 float32, c gpu.Color) ([]gpu.Vertex, []uint16) {
	vs := []gpu.Vertex{
		{X: x0, Y: y0, U: 0, V: 0},
		{X: x1, Y: y0, U: 1, V: 0},
		{X: x1, Y: y1, U: 1, V: 1},
		{X: x0, Y: y1, U: 0, V: 1},
	}
	for i := range vs {
		vs[i] = vs[i].WithColor(c)
	}
	return vs, []uint16{0, 1, 2, 0, 2, 3}
}

func TestSubmitDrawOpaqueFill(t *testing.T) {
	d := New(8, 8)
	if err := d.Clear(gpu.Color{A: 1}); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	vs, is := quad(2, 2, 6, 6, gpu.Color{R: 1, A: 1})
	if err := d.SubmitDraw(gpu.DrawCall{Vertices: vs, Indices: is, Blend: gpu.BlendOpaque}); err != nil {
		t.Fatalf("SubmitDraw: %v", err)
	}

	img := d.Image()
	if got := img.NRGBAAt(3, 3); got.R != 255 || got.A != 255 {
		t.Errorf("inside pixel = %v, want red", got)
	}
	if got := img.NRGBAAt(1, 1); got.R != 0 {
		t.Errorf("outside pixel = %v, want black", got)
	}
	if got := img.NRGBAAt(6, 6); got.R != 0 {
		t.Errorf("pixel at max edge = %v, want untouched", got)
	}
}

func TestSharedEdgeBlendsOnce(t *testing.T) {
	d := New(4, 4)
	_ = d.Clear(gpu.Color{A: 1})
	vs, is := quad(0, 0, 4, 4, gpu.Color{R: 1, A: 0.5})
	if err := d.SubmitDraw(gpu.DrawCall{Vertices: vs, Indices: is, Blend: gpu.BlendAlpha}); err != nil {
		t.Fatalf("SubmitDraw: %v", err)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if got := d.Image().NRGBAAt(x, y).R; got != 128 {
				t.Fatalf("pixel (%d,%d) R = %d, want 128", x, y, got)
			}
		}
	}
}

func TestBlendModes(t *testing.T) {
	tests := []struct {
		name  string
		blend gpu.BlendMode
		src   gpu.Color
		wantR uint8
		wantB uint8
	}{
		{"alpha", gpu.BlendAlpha, gpu.Color{B: 1, A: 0.5}, 128, 128},
		{"opaque", gpu.BlendOpaque, gpu.Color{B: 1, A: 1}, 0, 255},
		{"additive", gpu.BlendAdditive, gpu.Color{B: 1, A: 0.5}, 255, 128},
		{"premultiplied", gpu.BlendPremultiplied, gpu.Color{B: 0.5, A: 0.5}, 128, 128},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(2, 2)
			_ = d.Clear(gpu.Color{R: 1, A: 1})
			vs, is := quad(0, 0, 2, 2, tt.src)
			if err := d.SubmitDraw(gpu.DrawCall{Vertices: vs, Indices: is, Blend: tt.blend}); err != nil {
				t.Fatalf("SubmitDraw: %v", err)
			}
			got := d.Image().NRGBAAt(1, 1)
			if got.R != tt.wantR || got.B != tt.wantB {
				t.Errorf("pixel = %v, want R=%d B=%d", got, tt.wantR, tt.wantB)
			}
		})
	}
}

func TestTextureSampling(t *testing.T) {
	d := New(4, 4)
	id, err := d.CreateTexture(gpu.TextureDescriptor{Width: 2, Height: 1, Format: gputypes.TextureFormatRGBA8Unorm})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	pix := []byte{255, 0, 0, 255, 0, 255, 0, 255}
	if err := d.UploadTextureRegion(id, image.Rect(0, 0, 2, 1), pix); err != nil {
		t.Fatalf("UploadTextureRegion: %v", err)
	}
	vs, is := quad(0, 0, 4, 4, gpu.Color{R: 1, G: 1, B: 1, A: 1})
	if err := d.SubmitDraw(gpu.DrawCall{Vertices: vs, Indices: is, Texture: id, Blend: gpu.BlendOpaque}); err != nil {
		t.Fatalf("SubmitDraw: %v", err)
	}
	if got := d.Image().NRGBAAt(0, 2); got.R != 255 || got.G != 0 {
		t.Errorf("left half = %v, want red", got)
	}
	if got := d.Image().NRGBAAt(3, 2); got.G != 255 || got.R != 0 {
		t.Errorf("right half = %v, want green", got)
	}
}

func TestClipRect(t *testing.T) {
	d := New(8, 8)
	vs, is := quad(0, 0, 8, 8, gpu.Color{G: 1, A: 1})
	call := gpu.DrawCall{Vertices: vs, Indices: is, Blend: gpu.BlendOpaque, Clip: image.Rect(2, 2, 4, 4), HasClip: true}
	if err := d.SubmitDraw(call); err != nil {
		t.Fatalf("SubmitDraw: %v", err)
	}
	if got := d.Image().NRGBAAt(3, 3).G; got != 255 {
		t.Errorf("inside clip G = %d, want 255", got)
	}
	if got := d.Image().NRGBAAt(5, 5).G; got != 0 {
		t.Errorf("outside clip G = %d, want 0", got)
	}
}

func TestInvalidDrawCall(t *testing.T) {
	d := New(4, 4)
	err := d.SubmitDraw(gpu.DrawCall{Vertices: make([]gpu.Vertex, 2), Indices: []uint16{0, 1, 2}})
	if !errors.Is(err, gpu.ErrInvalidDrawCall) {
		t.Fatalf("err = %v, want ErrInvalidDrawCall", err)
	}
	err = d.SubmitDraw(gpu.DrawCall{Vertices: make([]gpu.Vertex, 3), Indices: []uint16{0, 1, 2}, Texture: 42})
	if !errors.Is(err, gpu.ErrUnknownTexture) {
		t.Fatalf("err = %v, want ErrUnknownTexture", err)
	}
}

func TestUploadErrors(t *testing.T) {
	d := New(4, 4)
	id, _ := d.CreateTexture(gpu.TextureDescriptor{Width: 2, Height: 2, Format: gputypes.TextureFormatRGBA8Unorm})
	if err := d.UploadTextureRegion(id, image.Rect(1, 1, 3, 3), make([]byte, 16)); err == nil {
		t.Error("expected out-of-bounds error")
	}
	if err := d.UploadTextureRegion(id, image.Rect(0, 0, 2, 2), make([]byte, 3)); err == nil {
		t.Error("expected length error")
	}
	if _, err := d.CreateTexture(gpu.TextureDescriptor{Width: 2, Height: 2, Format: gputypes.TextureFormatBGRA8Unorm}); !errors.Is(err, gpu.ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestPresentRecordsFrame(t *testing.T) {
	d := New(4, 4)
	vs, is := quad(0, 0, 1, 1, gpu.Color{A: 1})
	_ = d.SubmitDraw(gpu.DrawCall{Vertices: vs, Indices: is})
	_ = d.SubmitDraw(gpu.DrawCall{Vertices: vs, Indices: is})
	if err := d.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if got := len(d.LastFrame()); got != 2 {
		t.Errorf("LastFrame has %d calls, want 2", got)
	}
	if d.Frames() != 1 {
		t.Errorf("Frames = %d, want 1", d.Frames())
	}
}

func TestLose(t *testing.T) {
	d := New(4, 4)
	if _, err := d.CreateTexture(gpu.TextureDescriptor{Width: 1, Height: 1, Format: gputypes.TextureFormatRGBA8Unorm}); err != nil {
		t.Fatal(err)
	}
	d.Lose()
	if d.TextureCount() != 0 {
		t.Errorf("TextureCount = %d after Lose", d.TextureCount())
	}
	if err := d.Present(); !errors.Is(err, gpu.ErrDeviceLost) {
		t.Errorf("Present err = %v, want ErrDeviceLost", err)
	}
	if _, err := d.CreateTexture(gpu.TextureDescriptor{Width: 1, Height: 1, Format: gputypes.TextureFormatRGBA8Unorm}); !errors.Is(err, gpu.ErrDeviceLost) {
		t.Errorf("CreateTexture err = %v, want ErrDeviceLost", err)
	}
}

func TestResize(t *testing.T) {
	d := New(4, 4)
	if err := d.Resize(10, 6); err != nil {
		t.Fatal(err)
	}
	if got := d.Size(); got != image.Pt(10, 6) {
		t.Errorf("Size = %v, want (10,6)", got)
	}
	if err := d.Resize(0, 6); err == nil {
		t.Error("expected error for zero width")
	}
}
