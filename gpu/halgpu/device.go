// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package halgpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"slices"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/quad/gpu"
	"github.com/gogpu/wgpu/hal"
)

// ErrNilProvider is returned by NewFromProvider without a provider.
var ErrNilProvider = errors.New("halgpu: nil device provider")

// texture is a sampled texture with its view and bind group.
type texture struct {
	tex  hal.Texture
	view hal.TextureView
	bind hal.BindGroup
	w, h int
}

// pendingDraw is a submitted call with the texture it was bound to at
// submission.
type pendingDraw struct {
	gpu.DrawCall
	tex *texture
}

// Device is a gpu.Device backed by a HAL device and queue.
type Device struct {
	dev   hal.Device
	queue hal.Queue
	cfg   Config
	log   *slog.Logger

	pipes    pipelines
	viewport hal.Buffer
	white    *texture
	textures map[gpu.TextureID]*texture
	nextID   gpu.TextureID

	target     hal.Texture
	targetView hal.TextureView
	w, h       int

	vertBuf, idxBuf hal.Buffer
	vertCap, idxCap uint64

	pending []pendingDraw
	retired []*texture
	clear   *gpu.Color
	pixels  *image.NRGBA
	frames  int
	lost    bool
}

var _ gpu.Device = (*Device)(nil)

// New creates a device rendering with dev and queue. The caller keeps
// ownership of both; Destroy releases only what the Device created.
func New(dev hal.Device, queue hal.Queue, cfg Config) (*Device, error) {
	if dev == nil || queue == nil {
		return nil, errors.New("halgpu: nil HAL device or queue")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	d := &Device{
		dev:      dev,
		queue:    queue,
		cfg:      cfg,
		log:      log,
		textures: make(map[gpu.TextureID]*texture),
	}
	if err := d.init(); err != nil {
		d.Destroy()
		return nil, err
	}
	log.Debug("halgpu: device ready", "width", cfg.Width, "height", cfg.Height)
	return d, nil
}

// NewFromProvider creates a device on the HAL device and queue shared by
// a windowing provider. The provider must expose them through
// HalDevice() any and HalQueue() any.
func NewFromProvider(p gpucontext.DeviceProvider, cfg Config) (*Device, error) {
	if p == nil {
		return nil, ErrNilProvider
	}
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := p.(halProvider)
	if !ok {
		return nil, fmt.Errorf("halgpu: provider %T does not expose HAL types", p)
	}
	dev, ok := hp.HalDevice().(hal.Device)
	if !ok || dev == nil {
		return nil, errors.New("halgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, errors.New("halgpu: provider HalQueue is not hal.Queue")
	}
	return New(dev, queue, cfg)
}

func (d *Device) init() error {
	if err := d.createPipelines(); err != nil {
		return err
	}
	buf, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "quad_viewport",
		Size:  viewportUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("halgpu: create viewport buffer: %w", err)
	}
	d.viewport = buf

	d.white, err = d.newTexture("quad_white", 1, 1)
	if err != nil {
		return err
	}
	d.writeTexture(d.white, image.Rect(0, 0, 1, 1), []byte{255, 255, 255, 255})
	return d.createTarget(d.cfg.Width, d.cfg.Height)
}

// newTexture creates a sampled RGBA8 texture with its bind group.
func (d *Device) newTexture(label string, w, h int) (*texture, error) {
	tex, err := d.dev.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create texture %q: %w", label, err)
	}
	t := &texture{tex: tex, w: w, h: h}
	t.view, err = d.dev.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.destroyTexture(t)
		return nil, fmt.Errorf("halgpu: create texture view %q: %w", label, err)
	}
	t.bind, err = d.dev.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label + "_bind",
		Layout: d.pipes.layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: d.viewport.NativeHandle(), Offset: 0, Size: viewportUniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: gputypes.TextureViewHandle(t.view.NativeHandle()),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: gputypes.SamplerHandle(d.pipes.sampler.NativeHandle()),
			}},
		},
	})
	if err != nil {
		d.destroyTexture(t)
		return nil, fmt.Errorf("halgpu: create bind group %q: %w", label, err)
	}
	return t, nil
}

func (d *Device) destroyTexture(t *texture) {
	if t == nil {
		return
	}
	if t.bind != nil {
		d.dev.DestroyBindGroup(t.bind)
	}
	if t.view != nil {
		d.dev.DestroyTextureView(t.view)
	}
	if t.tex != nil {
		d.dev.DestroyTexture(t.tex)
	}
}

func (d *Device) writeTexture(t *texture, r image.Rectangle, pixels []byte) {
	d.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(r.Min.X), Y: uint32(r.Min.Y), Z: 0},
			Aspect:   gputypes.TextureAspectAll,
		},
		pixels,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(r.Dx() * 4),
			RowsPerImage: uint32(r.Dy()),
		},
		&hal.Extent3D{Width: uint32(r.Dx()), Height: uint32(r.Dy()), DepthOrArrayLayers: 1},
	)
}

// createTarget (re)creates the offscreen target and updates the viewport
// uniform.
func (d *Device) createTarget(w, h int) error {
	d.destroyTarget()
	tex, err := d.dev.CreateTexture(&hal.TextureDescriptor{
		Label:         "quad_target",
		Size:          hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        targetFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("halgpu: create target: %w", err)
	}
	d.target = tex
	d.targetView, err = d.dev.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "quad_target_view",
	})
	if err != nil {
		d.destroyTarget()
		return fmt.Errorf("halgpu: create target view: %w", err)
	}
	d.w, d.h = w, h
	d.pixels = image.NewNRGBA(image.Rect(0, 0, w, h))

	var vp [viewportUniformSize]byte
	binary.LittleEndian.PutUint32(vp[0:], math.Float32bits(float32(w)))
	binary.LittleEndian.PutUint32(vp[4:], math.Float32bits(float32(h)))
	d.queue.WriteBuffer(d.viewport, 0, vp[:])
	return nil
}

func (d *Device) destroyTarget() {
	if d.targetView != nil {
		d.dev.DestroyTextureView(d.targetView)
		d.targetView = nil
	}
	if d.target != nil {
		d.dev.DestroyTexture(d.target)
		d.target = nil
	}
}

// CreateTexture implements gpu.Device.
func (d *Device) CreateTexture(desc gpu.TextureDescriptor) (gpu.TextureID, error) {
	if d.lost {
		return gpu.NoTexture, gpu.ErrDeviceLost
	}
	if err := desc.Validate(); err != nil {
		return gpu.NoTexture, err
	}
	label := desc.Label
	if label == "" {
		label = "quad_texture"
	}
	t, err := d.newTexture(label, desc.Width, desc.Height)
	if err != nil {
		return gpu.NoTexture, err
	}
	d.nextID++
	d.textures[d.nextID] = t
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
	if region.Empty() || !region.In(image.Rect(0, 0, t.w, t.h)) {
		return fmt.Errorf("halgpu: region %v outside %dx%d texture", region, t.w, t.h)
	}
	if want := region.Dx() * region.Dy() * 4; len(pixels) != want {
		return fmt.Errorf("halgpu: %d bytes for %v region, want %d", len(pixels), region, want)
	}
	d.writeTexture(t, region, pixels)
	return nil
}

// DestroyTexture implements gpu.Device.
func (d *Device) DestroyTexture(id gpu.TextureID) {
	t, ok := d.textures[id]
	if !ok {
		return
	}
	delete(d.textures, id)
	if slices.ContainsFunc(d.pending, func(p pendingDraw) bool { return p.tex == t }) {
		d.retired = append(d.retired, t)
		return
	}
	d.destroyTexture(t)
}

// releaseRetired destroys textures whose destruction waited for the
// pending frame.
func (d *Device) releaseRetired() {
	for _, t := range d.retired {
		d.destroyTexture(t)
	}
	clear(d.retired)
	d.retired = d.retired[:0]
}

// Clear implements gpu.Device. The clear happens as the load operation of
// the frame's render pass.
func (d *Device) Clear(c gpu.Color) error {
	if d.lost {
		return gpu.ErrDeviceLost
	}
	d.clear = &c
	d.pending = d.pending[:0]
	d.releaseRetired()
	return nil
}

// SubmitDraw implements gpu.Device. The call is validated and copied; it
// is rendered by Present.
func (d *Device) SubmitDraw(call gpu.DrawCall) error {
	if d.lost {
		return gpu.ErrDeviceLost
	}
	if err := call.Validate(); err != nil {
		return err
	}
	tex := d.white
	if call.Texture != gpu.NoTexture {
		t, ok := d.textures[call.Texture]
		if !ok {
			return fmt.Errorf("%w: %d", gpu.ErrUnknownTexture, call.Texture)
		}
		tex = t
	}
	if _, ok := d.pipes.byBlend[call.Blend]; !ok && call.Blend != gpu.BlendAuto {
		return fmt.Errorf("%w: blend mode %v", gpu.ErrInvalidDrawCall, call.Blend)
	}
	call.Vertices = slices.Clone(call.Vertices)
	call.Indices = slices.Clone(call.Indices)
	d.pending = append(d.pending, pendingDraw{DrawCall: call, tex: tex})
	return nil
}

// Present implements gpu.Device.
func (d *Device) Present() error {
	if d.lost {
		return gpu.ErrDeviceLost
	}
	err := d.render()
	d.pending = d.pending[:0]
	d.releaseRetired()
	d.clear = nil
	if err != nil {
		return err
	}
	d.frames++
	return nil
}

// Resize implements gpu.Device. The target is recreated and its contents
// are undefined until the next clear.
func (d *Device) Resize(width, height int) error {
	if d.lost {
		return gpu.ErrDeviceLost
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("halgpu: invalid target size %dx%d", width, height)
	}
	if width == d.w && height == d.h {
		return nil
	}
	return d.createTarget(width, height)
}

// Size implements gpu.Device.
func (d *Device) Size() image.Point { return image.Pt(d.w, d.h) }

// Image returns the pixels read back after the last frame. It is only
// updated when Config.Readback is set.
func (d *Device) Image() *image.NRGBA { return d.pixels }

// Frames returns the number of presented frames.
func (d *Device) Frames() int { return d.frames }

// TextureCount returns the number of live textures.
func (d *Device) TextureCount() int { return len(d.textures) }

// Destroy releases every GPU object the device created. The device is
// unusable afterwards.
func (d *Device) Destroy() {
	d.pending = nil
	d.releaseRetired()
	for id, t := range d.textures {
		d.destroyTexture(t)
		delete(d.textures, id)
	}
	d.destroyTexture(d.white)
	d.white = nil
	d.destroyTarget()
	for _, b := range []*hal.Buffer{&d.vertBuf, &d.idxBuf, &d.viewport} {
		if *b != nil {
			d.dev.DestroyBuffer(*b)
			*b = nil
		}
	}
	d.vertCap, d.idxCap = 0, 0
	d.destroyPipelines()
	d.lost = true
}
