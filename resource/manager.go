package resource

import (
	"fmt"
	"image"
	"log/slog"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/quad/gpu"
)

// TextureHandle identifies a texture owned by a Manager. It packs a slot
// index and the slot generation; the zero handle means "no texture".
type TextureHandle uint64

// IsZero reports whether h is the zero handle.
func (h TextureHandle) IsZero() bool { return h == 0 }

func makeHandle(index int, gen uint32) TextureHandle {
	return TextureHandle(uint64(index+1)<<32 | uint64(gen))
}

func (h TextureHandle) split() (index int, gen uint32) {
	return int(h>>32) - 1, uint32(h)
}

// sourceKind records how a texture's contents can be reproduced.
type sourceKind uint8

const (
	sourcePixels  sourceKind = iota // retained RGBA copy
	sourceEncoded                   // retained encoded image bytes
	sourceAtlas                     // contents owned by the glyph atlas
)

type slot struct {
	gen     uint32
	live    bool
	id      gpu.TextureID
	w, h    int
	label   string
	kind    sourceKind
	pixels  []byte
	encoded []byte
}

// Manager owns texture lifetimes on one gpu.Device.
//
// Manager is not safe for concurrent use.
type Manager struct {
	dev   gpu.Device
	cfg   Config
	log   *slog.Logger
	slots []slot
	free  []int
	atlas *GlyphAtlas
}

// NewManager creates a manager for dev.
func NewManager(dev gpu.Device, cfg Config) (*Manager, error) {
	if dev == nil {
		return nil, fmt.Errorf("resource: nil device")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	m := &Manager{dev: dev, cfg: cfg, log: log}
	m.atlas = newGlyphAtlas(m)
	return m, nil
}

// Device returns the device textures are currently created on.
func (m *Manager) Device() gpu.Device { return m.dev }

// Config returns the manager configuration.
func (m *Manager) Config() Config { return m.cfg }

// Atlas returns the glyph atlas.
func (m *Manager) Atlas() *GlyphAtlas { return m.atlas }

// Len returns the number of live textures, including the atlas texture
// once it exists.
func (m *Manager) Len() int {
	n := 0
	for i := range m.slots {
		if m.slots[i].live {
			n++
		}
	}
	return n
}

// CreateTexture creates a texture from tightly packed straight-alpha RGBA8
// pixels. The pixels are copied and retained for Rebuild.
func (m *Manager) CreateTexture(pixels []byte, width, height int) (TextureHandle, error) {
	if err := m.checkSize(width, height); err != nil {
		return 0, err
	}
	if len(pixels) != width*height*4 {
		return 0, fmt.Errorf("%w: %d bytes for %dx%d", ErrPixelLength, len(pixels), width, height)
	}
	s := slot{w: width, h: height, label: "texture", kind: sourcePixels, pixels: slices.Clone(pixels)}
	return m.add(s)
}

// CreateTextureFromImage creates a texture from any image.Image.
func (m *Manager) CreateTextureFromImage(img image.Image) (TextureHandle, error) {
	nrgba := toNRGBA(img)
	b := nrgba.Bounds()
	return m.CreateTexture(nrgba.Pix, b.Dx(), b.Dy())
}

// LoadImage decodes an encoded image (PNG, JPEG, GIF, WebP, BMP, TIFF)
// and creates a texture from it. The encoded bytes are retained instead of
// the pixels; Rebuild decodes them again.
func (m *Manager) LoadImage(data []byte) (TextureHandle, error) {
	img, err := m.decode(data)
	if err != nil {
		return 0, err
	}
	b := img.Bounds()
	s := slot{w: b.Dx(), h: b.Dy(), label: "image", kind: sourceEncoded, encoded: slices.Clone(data)}
	if err := m.upload(&s, img.Pix); err != nil {
		return 0, err
	}
	return m.store(s), nil
}

// decode decodes data and scales it down to MaxTextureSize if needed.
func (m *Manager) decode(data []byte) (*image.NRGBA, error) {
	img, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if limit := m.cfg.MaxTextureSize; b.Dx() > limit || b.Dy() > limit {
		m.log.Warn("resource: image scaled down to texture limit", "w", b.Dx(), "h", b.Dy(), "limit", limit)
		img = fitWithin(img, limit)
	}
	return img, nil
}

// UpdateRegion replaces the pixels inside rect. pixels holds
// rect.Dx()*rect.Dy() tightly packed RGBA8 values.
func (m *Manager) UpdateRegion(h TextureHandle, rect image.Rectangle, pixels []byte) error {
	s, err := m.lookup(h)
	if err != nil {
		return err
	}
	if s.kind == sourceAtlas {
		return ErrAtlasOwned
	}
	if rect.Empty() || !rect.In(image.Rect(0, 0, s.w, s.h)) {
		return fmt.Errorf("%w: %v in %dx%d", ErrRegionOutOfBounds, rect, s.w, s.h)
	}
	if len(pixels) != rect.Dx()*rect.Dy()*4 {
		return fmt.Errorf("%w: %d bytes for %v", ErrPixelLength, len(pixels), rect)
	}
	if s.kind == sourceEncoded {
		// The retained bytes no longer describe the texture; keep pixels.
		img, err := m.decode(s.encoded)
		if err != nil {
			return err
		}
		s.kind, s.pixels, s.encoded = sourcePixels, img.Pix, nil
	}
	rw := rect.Dx() * 4
	for y := 0; y < rect.Dy(); y++ {
		dst := ((rect.Min.Y+y)*s.w + rect.Min.X) * 4
		copy(s.pixels[dst:dst+rw], pixels[y*rw:(y+1)*rw])
	}
	if err := m.dev.UploadTextureRegion(s.id, rect, pixels); err != nil {
		return fmt.Errorf("resource: update region: %w", err)
	}
	return nil
}

// Release destroys the texture. Using h afterwards yields
// ErrReleasedHandle.
func (m *Manager) Release(h TextureHandle) error {
	s, err := m.lookup(h)
	if err != nil {
		return err
	}
	if s.kind == sourceAtlas {
		return ErrAtlasOwned
	}
	m.dev.DestroyTexture(s.id)
	m.retire(h)
	return nil
}

// ReleaseAll destroys every texture, including the glyph atlas. Every
// handle issued so far becomes invalid. The manager stays usable.
func (m *Manager) ReleaseAll() {
	for i := range m.slots {
		s := &m.slots[i]
		if !s.live {
			continue
		}
		m.dev.DestroyTexture(s.id)
		m.retire(makeHandle(i, s.gen))
	}
	m.atlas.reset()
	m.log.Info("resource: all textures released")
}

// Size returns the texture dimensions.
func (m *Manager) Size(h TextureHandle) (width, height int, err error) {
	s, err := m.lookup(h)
	if err != nil {
		return 0, 0, err
	}
	return s.w, s.h, nil
}

// DeviceTexture resolves h to the device texture to bind. The zero handle
// resolves to gpu.NoTexture.
func (m *Manager) DeviceTexture(h TextureHandle) (gpu.TextureID, error) {
	if h.IsZero() {
		return gpu.NoTexture, nil
	}
	s, err := m.lookup(h)
	if err != nil {
		return gpu.NoTexture, err
	}
	return s.id, nil
}

// Rebuild re-creates every live texture on dev from retained source data
// and makes dev the current device. Handles stay valid; only the device
// texture IDs behind them change. It is used after the previous device
// was lost, so the old textures are not destroyed.
func (m *Manager) Rebuild(dev gpu.Device) error {
	if dev == nil {
		return fmt.Errorf("resource: nil device")
	}
	m.dev = dev
	rebuilt := 0
	for i := range m.slots {
		s := &m.slots[i]
		if !s.live {
			continue
		}
		switch s.kind {
		case sourceAtlas:
			if err := m.atlas.rebuild(false); err != nil {
				return err
			}
		case sourceEncoded:
			img, err := m.decode(s.encoded)
			if err != nil {
				return fmt.Errorf("resource: rebuild %s: %w", s.label, err)
			}
			if err := m.upload(s, img.Pix); err != nil {
				return fmt.Errorf("resource: rebuild %s: %w", s.label, err)
			}
		default:
			if err := m.upload(s, s.pixels); err != nil {
				return fmt.Errorf("resource: rebuild %s: %w", s.label, err)
			}
		}
		rebuilt++
	}
	m.log.Info("resource: textures rebuilt", "count", rebuilt)
	return nil
}

func (m *Manager) checkSize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}
	if w > m.cfg.MaxTextureSize || h > m.cfg.MaxTextureSize {
		return fmt.Errorf("%w: %dx%d > %d", ErrTextureTooLarge, w, h, m.cfg.MaxTextureSize)
	}
	return nil
}

// add uploads s.pixels and stores the slot.
func (m *Manager) add(s slot) (TextureHandle, error) {
	if err := m.upload(&s, s.pixels); err != nil {
		return 0, err
	}
	return m.store(s), nil
}

// upload creates the device texture for s and fills it with pixels.
func (m *Manager) upload(s *slot, pixels []byte) error {
	id, err := m.dev.CreateTexture(gpu.TextureDescriptor{
		Label:  s.label,
		Width:  s.w,
		Height: s.h,
		Format: gputypes.TextureFormatRGBA8Unorm,
	})
	if err != nil {
		return fmt.Errorf("resource: create texture: %w", err)
	}
	if err := m.dev.UploadTextureRegion(id, image.Rect(0, 0, s.w, s.h), pixels); err != nil {
		m.dev.DestroyTexture(id)
		return fmt.Errorf("resource: upload texture: %w", err)
	}
	s.id = id
	return nil
}

// store places s in a free slot and returns its handle.
func (m *Manager) store(s slot) TextureHandle {
	s.live = true
	if n := len(m.free); n > 0 {
		i := m.free[n-1]
		m.free = m.free[:n-1]
		s.gen = m.slots[i].gen
		m.slots[i] = s
		return makeHandle(i, s.gen)
	}
	s.gen = 1
	m.slots = append(m.slots, s)
	return makeHandle(len(m.slots)-1, s.gen)
}

// retire frees the slot behind a valid handle and bumps its generation.
func (m *Manager) retire(h TextureHandle) {
	i, _ := h.split()
	s := &m.slots[i]
	*s = slot{gen: s.gen + 1}
	m.free = append(m.free, i)
}

func (m *Manager) lookup(h TextureHandle) (*slot, error) {
	if h.IsZero() {
		return nil, ErrInvalidHandle
	}
	i, gen := h.split()
	if i < 0 || i >= len(m.slots) {
		return nil, fmt.Errorf("%w: %#x", ErrInvalidHandle, uint64(h))
	}
	s := &m.slots[i]
	if !s.live || s.gen != gen {
		return nil, fmt.Errorf("%w: %#x", ErrReleasedHandle, uint64(h))
	}
	return s, nil
}
