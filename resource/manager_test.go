package resource

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"slices"
	"testing"

	"github.com/gogpu/quad/gpu/softgpu"
)

func newTestManager(t *testing.T, cfg Config) (*Manager, *softgpu.Device) {
	t.Helper()
	dev := softgpu.New(64, 64)
	m, err := NewManager(dev, cfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m, dev
}

func solid(w, h int, c color.NRGBA) []byte {
	pix := make([]byte, 0, w*h*4)
	for range w * h {
		pix = append(pix, c.R, c.G, c.B, c.A)
	}
	return pix
}

func encodePNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, solid(w, h, c))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"default", func(*Config) {}, ""},
		{"initial not pow2", func(c *Config) { c.InitialAtlasSize = 300 }, "InitialAtlasSize"},
		{"max not pow2", func(c *Config) { c.MaxAtlasSize = 1000 }, "MaxAtlasSize"},
		{"max below initial", func(c *Config) { c.MaxAtlasSize = 128 }, "MaxAtlasSize"},
		{"negative padding", func(c *Config) { c.AtlasPadding = -1 }, "AtlasPadding"},
		{"zero texture size", func(c *Config) { c.MaxTextureSize = 0 }, "MaxTextureSize"},
		{"atlas over texture limit", func(c *Config) { c.MaxTextureSize = 2048 }, "MaxAtlasSize"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(&cfg)
			err := cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestCreateAndRelease(t *testing.T) {
	m, dev := newTestManager(t, DefaultConfig())

	h, err := m.CreateTexture(solid(4, 2, color.NRGBA{R: 255, A: 255}), 4, 2)
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	w, hh, err := m.Size(h)
	if err != nil || w != 4 || hh != 2 {
		t.Fatalf("Size = %d,%d,%v, want 4,2,nil", w, hh, err)
	}
	if dev.TextureCount() != 1 {
		t.Fatalf("device textures = %d, want 1", dev.TextureCount())
	}

	if err := m.Release(h); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if dev.TextureCount() != 0 {
		t.Errorf("device textures after release = %d, want 0", dev.TextureCount())
	}
	if _, _, err := m.Size(h); !errors.Is(err, ErrReleasedHandle) {
		t.Errorf("Size after release = %v, want ErrReleasedHandle", err)
	}
	if err := m.Release(h); !errors.Is(err, ErrReleasedHandle) {
		t.Errorf("double Release = %v, want ErrReleasedHandle", err)
	}

	// The slot is reused with a new generation; the stale handle stays dead.
	h2, err := m.CreateTexture(solid(1, 1, color.NRGBA{A: 255}), 1, 1)
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	if h2 == h {
		t.Fatal("reused slot returned the released handle")
	}
	if _, _, err := m.Size(h); !errors.Is(err, ErrReleasedHandle) {
		t.Errorf("stale handle after reuse = %v, want ErrReleasedHandle", err)
	}
}

func TestInvalidHandles(t *testing.T) {
	m, _ := newTestManager(t, DefaultConfig())
	for _, h := range []TextureHandle{0, makeHandle(7, 1)} {
		if _, _, err := m.Size(h); !errors.Is(err, ErrInvalidHandle) {
			t.Errorf("Size(%#x) = %v, want ErrInvalidHandle", uint64(h), err)
		}
	}
	id, err := m.DeviceTexture(0)
	if err != nil || id != 0 {
		t.Errorf("DeviceTexture(0) = %d,%v, want NoTexture", id, err)
	}
}

func TestCreateTextureErrors(t *testing.T) {
	m, _ := newTestManager(t, DefaultConfig())
	tests := []struct {
		name string
		w, h int
		n    int
		want error
	}{
		{"zero width", 0, 4, 0, ErrInvalidDimensions},
		{"negative height", 4, -1, 0, ErrInvalidDimensions},
		{"too large", 8193, 1, 8193 * 4, ErrTextureTooLarge},
		{"short buffer", 2, 2, 15, ErrPixelLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.CreateTexture(make([]byte, tt.n), tt.w, tt.h)
			if !errors.Is(err, tt.want) {
				t.Errorf("CreateTexture = %v, want %v", err, tt.want)
			}
		})
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d after failed creates, want 0", m.Len())
	}
}

func TestUpdateRegion(t *testing.T) {
	m, dev := newTestManager(t, DefaultConfig())
	h, err := m.CreateTexture(solid(4, 4, color.NRGBA{A: 255}), 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	green := color.NRGBA{G: 255, A: 255}
	if err := m.UpdateRegion(h, image.Rect(1, 1, 3, 2), solid(2, 1, green)); err != nil {
		t.Fatalf("UpdateRegion: %v", err)
	}
	id, _ := m.DeviceTexture(h)
	_, _, pix, _ := dev.TexturePixels(id)
	i := (1*4 + 2) * 4
	if got := pix[i : i+4]; !slices.Equal(got, []byte{0, 255, 0, 255}) {
		t.Errorf("pixel (2,1) = %v, want green", got)
	}
	if err := m.UpdateRegion(h, image.Rect(3, 3, 5, 4), solid(2, 1, green)); !errors.Is(err, ErrRegionOutOfBounds) {
		t.Errorf("out of bounds update = %v, want ErrRegionOutOfBounds", err)
	}
	if err := m.UpdateRegion(h, image.Rect(0, 0, 2, 2), solid(1, 1, green)); !errors.Is(err, ErrPixelLength) {
		t.Errorf("short update = %v, want ErrPixelLength", err)
	}
}

func TestLoadImageScalesToLimit(t *testing.T) {
	cfg := Config{InitialAtlasSize: 16, MaxAtlasSize: 16, AtlasPadding: 1, MaxTextureSize: 16}
	m, _ := newTestManager(t, cfg)
	h, err := m.LoadImage(encodePNG(t, 32, 8, color.NRGBA{B: 255, A: 255}))
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	w, hh, _ := m.Size(h)
	if w != 16 || hh != 4 {
		t.Errorf("Size = %dx%d, want 16x4", w, hh)
	}
	if _, err := m.LoadImage([]byte("not an image")); err == nil {
		t.Error("LoadImage(garbage) = nil error")
	}
}

func TestAtlasTextureIsOwned(t *testing.T) {
	m, _ := newTestManager(t, DefaultConfig())
	a := m.Atlas()
	if _, err := a.Insert(GlyphKey{GlyphID: 1, Size: 12}, coverage(2, 2, 200), GlyphMetrics{}); err != nil {
		t.Fatal(err)
	}
	if err := m.Release(a.Texture()); !errors.Is(err, ErrAtlasOwned) {
		t.Errorf("Release(atlas) = %v, want ErrAtlasOwned", err)
	}
	if err := m.UpdateRegion(a.Texture(), image.Rect(0, 0, 1, 1), make([]byte, 4)); !errors.Is(err, ErrAtlasOwned) {
		t.Errorf("UpdateRegion(atlas) = %v, want ErrAtlasOwned", err)
	}
}

func TestReleaseAll(t *testing.T) {
	m, dev := newTestManager(t, DefaultConfig())
	h, _ := m.CreateTexture(solid(2, 2, color.NRGBA{A: 255}), 2, 2)
	if _, err := m.Atlas().Insert(GlyphKey{GlyphID: 3}, coverage(3, 3, 255), GlyphMetrics{}); err != nil {
		t.Fatal(err)
	}
	m.ReleaseAll()
	if dev.TextureCount() != 0 || m.Len() != 0 || m.Atlas().Len() != 0 {
		t.Fatalf("after ReleaseAll: device=%d manager=%d glyphs=%d, want 0",
			dev.TextureCount(), m.Len(), m.Atlas().Len())
	}
	if _, _, err := m.Size(h); !errors.Is(err, ErrReleasedHandle) {
		t.Errorf("Size after ReleaseAll = %v, want ErrReleasedHandle", err)
	}
	// Still usable.
	if _, err := m.CreateTexture(solid(1, 1, color.NRGBA{}), 1, 1); err != nil {
		t.Errorf("CreateTexture after ReleaseAll: %v", err)
	}
}

func TestRebuildOnNewDevice(t *testing.T) {
	m, old := newTestManager(t, DefaultConfig())
	red := color.NRGBA{R: 255, A: 255}
	raw, err := m.CreateTexture(solid(2, 2, red), 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := m.LoadImage(encodePNG(t, 3, 3, color.NRGBA{B: 255, A: 255}))
	if err != nil {
		t.Fatal(err)
	}
	g, err := m.Atlas().Insert(GlyphKey{GlyphID: 9}, coverage(2, 2, 77), GlyphMetrics{Advance: 3})
	if err != nil {
		t.Fatal(err)
	}

	old.Lose()
	dev := softgpu.New(64, 64)
	if err := m.Rebuild(dev); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if m.Device() != dev {
		t.Fatal("Rebuild did not switch device")
	}
	if dev.TextureCount() != 3 {
		t.Fatalf("rebuilt textures = %d, want 3", dev.TextureCount())
	}

	check := func(h TextureHandle, at image.Point, want []byte) {
		t.Helper()
		id, err := m.DeviceTexture(h)
		if err != nil {
			t.Fatalf("DeviceTexture: %v", err)
		}
		w, _, pix, ok := dev.TexturePixels(id)
		if !ok {
			t.Fatalf("texture %d missing on new device", id)
		}
		i := (at.Y*w + at.X) * 4
		if got := pix[i : i+4]; !slices.Equal(got, want) {
			t.Errorf("pixel %v = %v, want %v", at, got, want)
		}
	}
	check(raw, image.Pt(1, 1), []byte{255, 0, 0, 255})
	check(loaded, image.Pt(2, 2), []byte{0, 0, 255, 255})
	check(m.Atlas().Texture(), g.Rect.Min, []byte{255, 255, 255, 77})
}
