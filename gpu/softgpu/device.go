// Package softgpu implements gpu.Device on the CPU.
//
// Triangles are rasterized at pixel centers with a top-left fill rule,
// textures are sampled nearest-neighbor with clamp-to-edge addressing, and
// blending follows the fixed-function equations of gpu.BlendMode exactly,
// so images rendered here match what a hardware backend produces for
// non-antialiased geometry.
package softgpu

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"slices"

	"github.com/gogpu/quad/gpu"
)

// Device is a software gpu.Device rendering into an NRGBA image.
type Device struct {
	target   *image.NRGBA
	textures map[gpu.TextureID]*texture
	nextID   gpu.TextureID
	lost     bool
	log      *slog.Logger

	pending []gpu.DrawCall
	last    []gpu.DrawCall
	frames  int
}

type texture struct {
	w, h int
	pix  []byte
}

// Option configures a Device.
type Option func(*Device)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(d *Device) {
		if l != nil {
			d.log = l
		}
	}
}

// New creates a device with a transparent target of the given size.
func New(width, height int, opts ...Option) *Device {
	d := &Device{
		target:   image.NewNRGBA(image.Rect(0, 0, max(width, 0), max(height, 0))),
		textures: make(map[gpu.TextureID]*texture),
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var _ gpu.Device = (*Device)(nil)

// CreateTexture implements gpu.Device.
func (d *Device) CreateTexture(desc gpu.TextureDescriptor) (gpu.TextureID, error) {
	if d.lost {
		return gpu.NoTexture, gpu.ErrDeviceLost
	}
	if err := desc.Validate(); err != nil {
		return gpu.NoTexture, err
	}
	d.nextID++
	d.textures[d.nextID] = &texture{w: desc.Width, h: desc.Height, pix: make([]byte, desc.Width*desc.Height*4)}
	d.log.Debug("softgpu: texture created", "id", d.nextID, "label", desc.Label, "w", desc.Width, "h", desc.Height)
	return d.nextID, nil
}

// UploadTextureRegion implements gpu.Device.
func (d *Device) UploadTextureRegion(id gpu.TextureID, region image.Rectangle, pixels []byte) error {
	if d.lost {
		return gpu.ErrDeviceLost
	}
	t, ok := d.textures[id]
	if !ok {
		return fmt.Errorf("%w: %d", gpu.ErrUnknownTexture, id)
	}
	if !region.In(image.Rect(0, 0, t.w, t.h)) || region.Empty() {
		return fmt.Errorf("softgpu: region %v outside texture %dx%d", region, t.w, t.h)
	}
	rw, rh := region.Dx(), region.Dy()
	if len(pixels) != rw*rh*4 {
		return fmt.Errorf("softgpu: %d bytes for %dx%d region", len(pixels), rw, rh)
	}
	for y := 0; y < rh; y++ {
		dst := ((region.Min.Y+y)*t.w + region.Min.X) * 4
		copy(t.pix[dst:dst+rw*4], pixels[y*rw*4:(y+1)*rw*4])
	}
	return nil
}

// DestroyTexture implements gpu.Device.
func (d *Device) DestroyTexture(id gpu.TextureID) {
	delete(d.textures, id)
}

// Clear implements gpu.Device.
func (d *Device) Clear(c gpu.Color) error {
	if d.lost {
		return gpu.ErrDeviceLost
	}
	px := color.NRGBA{R: unorm8(c.R), G: unorm8(c.G), B: unorm8(c.B), A: unorm8(c.A)}
	b := d.target.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			d.target.SetNRGBA(x, y, px)
		}
	}
	d.pending = d.pending[:0]
	return nil
}

// SubmitDraw implements gpu.Device. Geometry is rasterized immediately.
func (d *Device) SubmitDraw(call gpu.DrawCall) error {
	if d.lost {
		return gpu.ErrDeviceLost
	}
	if err := call.Validate(); err != nil {
		return err
	}
	var tex *texture
	if call.Texture != gpu.NoTexture {
		t, ok := d.textures[call.Texture]
		if !ok {
			return fmt.Errorf("%w: %d", gpu.ErrUnknownTexture, call.Texture)
		}
		tex = t
	}
	clip := d.target.Bounds()
	if call.HasClip {
		clip = clip.Intersect(call.Clip)
	}
	for i := 0; i+2 < len(call.Indices); i += 3 {
		d.fillTriangle(
			call.Vertices[call.Indices[i]],
			call.Vertices[call.Indices[i+1]],
			call.Vertices[call.Indices[i+2]],
			tex, call.Blend, clip,
		)
	}
	call.Vertices = slices.Clone(call.Vertices)
	call.Indices = slices.Clone(call.Indices)
	d.pending = append(d.pending, call)
	return nil
}

// Present implements gpu.Device.
func (d *Device) Present() error {
	if d.lost {
		return gpu.ErrDeviceLost
	}
	d.last, d.pending = d.pending, nil
	d.frames++
	return nil
}

// Resize implements gpu.Device. The target is reallocated and cleared.
func (d *Device) Resize(width, height int) error {
	if d.lost {
		return gpu.ErrDeviceLost
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("softgpu: invalid target size %dx%d", width, height)
	}
	d.target = image.NewNRGBA(image.Rect(0, 0, width, height))
	return nil
}

// Size implements gpu.Device.
func (d *Device) Size() image.Point { return d.target.Bounds().Size() }

// Image returns the render target. The returned image aliases device
// memory and is overwritten by subsequent frames.
func (d *Device) Image() *image.NRGBA { return d.target }

// LastFrame returns the draw calls of the most recently presented frame.
func (d *Device) LastFrame() []gpu.DrawCall { return d.last }

// Frames returns the number of presented frames.
func (d *Device) Frames() int { return d.frames }

// TextureCount returns the number of live textures.
func (d *Device) TextureCount() int { return len(d.textures) }

// TexturePixels returns a copy of a texture's RGBA8 contents.
func (d *Device) TexturePixels(id gpu.TextureID) (w, h int, pix []byte, ok bool) {
	t, ok := d.textures[id]
	if !ok {
		return 0, 0, nil, false
	}
	return t.w, t.h, slices.Clone(t.pix), true
}

// Lose simulates a lost context: every texture is dropped and every
// subsequent call fails with gpu.ErrDeviceLost.
func (d *Device) Lose() {
	d.lost = true
	clear(d.textures)
	d.pending = nil
}
