package resource

import (
	"cmp"
	"fmt"
	"image"
	"maps"
	"slices"

	"github.com/gogpu/quad/gpu"
	"github.com/gogpu/quad/internal/cache"
	"github.com/gogpu/quad/internal/pack"
)

// GlyphKey identifies one rasterized glyph.
type GlyphKey struct {
	FontID  uint64
	GlyphID uint32
	// Size is the pixel size the glyph was rasterized at.
	Size float32
}

// GlyphMetrics positions a glyph bitmap relative to the pen.
type GlyphMetrics struct {
	// BearingX and BearingY are the offset from the pen position on the
	// baseline to the top-left corner of the bitmap, y down.
	BearingX, BearingY float32

	// Advance is the horizontal pen advance in pixels.
	Advance float32
}

// UV is a normalized texture rectangle.
type UV struct {
	U0, V0, U1, V1 float32
}

// GlyphEntry is an atlas lookup result. Rect and UV are valid only while
// Generation equals the atlas generation.
type GlyphEntry struct {
	Key        GlyphKey
	Rect       image.Rectangle
	UV         UV
	Metrics    GlyphMetrics
	Generation uint64
}

// Empty reports whether the glyph has no bitmap (for example a space).
func (e GlyphEntry) Empty() bool { return e.Rect.Empty() }

type atlasEntry struct {
	key      GlyphKey
	rect     image.Rectangle
	bitmap   *image.Alpha
	metrics  GlyphMetrics
	lastUsed uint64
	seq      uint64
}

// AtlasStats reports atlas activity counters.
type AtlasStats struct {
	Glyphs    int
	Width     int
	Height    int
	Repacks   int
	Evictions int
}

// GlyphAtlas packs glyph bitmaps into one texture owned by a Manager.
//
// Eviction is LRU per atlas generation: a repack at the size cap drops the
// least recently used glyphs, never one used in the current frame, and
// starts a new generation.
type GlyphAtlas struct {
	mgr     *Manager
	handle  TextureHandle
	w, h    int
	packer  *pack.Shelf
	entries map[GlyphKey]*atlasEntry
	lru     *cache.LRU[GlyphKey]
	gen     uint64
	frame   uint64
	seq     uint64
	stats   AtlasStats
}

func newGlyphAtlas(m *Manager) *GlyphAtlas {
	return &GlyphAtlas{
		mgr:     m,
		entries: make(map[GlyphKey]*atlasEntry),
		lru:     cache.NewLRU[GlyphKey](),
	}
}

// Generation returns the current atlas generation. It increases on every
// repack.
func (a *GlyphAtlas) Generation() uint64 { return a.gen }

// Texture returns the atlas texture handle, or the zero handle before the
// first glyph is inserted.
func (a *GlyphAtlas) Texture() TextureHandle { return a.handle }

// Len returns the number of cached glyphs.
func (a *GlyphAtlas) Len() int { return len(a.entries) }

// Size returns the current atlas dimensions.
func (a *GlyphAtlas) Size() (width, height int) { return a.w, a.h }

// Stats returns activity counters.
func (a *GlyphAtlas) Stats() AtlasStats {
	s := a.stats
	s.Glyphs, s.Width, s.Height = len(a.entries), a.w, a.h
	return s
}

// BeginFrame marks the start of frame. Glyphs looked up or inserted from
// now on are protected from eviction until the next BeginFrame.
func (a *GlyphAtlas) BeginFrame(frame uint64) { a.frame = frame }

// Lookup returns the cached entry for key and marks it used.
func (a *GlyphAtlas) Lookup(key GlyphKey) (GlyphEntry, bool) {
	e, ok := a.entries[key]
	if !ok {
		return GlyphEntry{}, false
	}
	a.touch(e)
	return a.entry(e), true
}

// Insert stores a glyph bitmap and returns its entry. A nil or empty
// bitmap stores metrics only. Inserting a key that is already cached
// returns the cached entry.
func (a *GlyphAtlas) Insert(key GlyphKey, bitmap *image.Alpha, metrics GlyphMetrics) (GlyphEntry, error) {
	if e, ok := a.entries[key]; ok {
		a.touch(e)
		return a.entry(e), nil
	}
	e := &atlasEntry{key: key, metrics: metrics}
	if bitmap != nil && !bitmap.Rect.Empty() {
		e.bitmap = bitmap
		r, err := a.ReserveGlyphSlot(bitmap.Rect.Dx(), bitmap.Rect.Dy())
		if err != nil {
			return GlyphEntry{}, err
		}
		e.rect = r
		if err := a.uploadBitmap(e); err != nil {
			return GlyphEntry{}, err
		}
	}
	a.seq++
	e.seq = a.seq
	a.entries[key] = e
	a.touch(e)
	return a.entry(e), nil
}

// ReserveGlyphSlot reserves a w x h rectangle in the atlas texture.
//
// When the atlas is full it grows by doubling up to MaxAtlasSize, or, at
// the cap, evicts least recently used glyphs not used in the current
// frame: enough for the slot and at least half of those candidates. Both cases repack every surviving glyph exactly once and bump the
// generation. ErrAtlasExhausted is returned, with the atlas unchanged,
// when the slot cannot fit even then.
func (a *GlyphAtlas) ReserveGlyphSlot(w, h int) (image.Rectangle, error) {
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, fmt.Errorf("%w: glyph %dx%d", ErrInvalidDimensions, w, h)
	}
	if err := a.ensure(); err != nil {
		return image.Rectangle{}, err
	}
	if r, ok := a.packer.Allocate(w, h); ok {
		return r, nil
	}

	cfg := a.mgr.cfg
	live := a.sortedEntries(nil)
	nw, nh := a.w, a.h
	for {
		if fits(live, nw, nh, cfg.AtlasPadding, w, h) {
			return a.repack(live, nil, nw, nh, w, h)
		}
		if nw >= cfg.MaxAtlasSize && nh >= cfg.MaxAtlasSize {
			break
		}
		if nw <= nh && nw < cfg.MaxAtlasSize {
			nw *= 2
		} else {
			nh *= 2
		}
	}

	// At the cap: evict in LRU order until the slot fits, and at least
	// the older half of the evictable glyphs so the next misses do not
	// each force another repack.
	var candidates []GlyphKey
	for key := range a.lru.FromOldest() {
		e := a.entries[key]
		if e.bitmap == nil || (a.frame != 0 && e.lastUsed >= a.frame) {
			continue
		}
		candidates = append(candidates, key)
	}
	evicted := make(map[GlyphKey]bool)
	for i, key := range candidates {
		evicted[key] = true
		live = a.sortedEntries(evicted)
		if !fits(live, nw, nh, cfg.AtlasPadding, w, h) {
			continue
		}
		if extra := evictBatch(len(candidates)); i+1 < extra {
			wider := maps.Clone(evicted)
			for _, k := range candidates[i+1 : extra] {
				wider[k] = true
			}
			if more := a.sortedEntries(wider); fits(more, nw, nh, cfg.AtlasPadding, w, h) {
				evicted, live = wider, more
			}
		}
		return a.repack(live, evicted, nw, nh, w, h)
	}
	return image.Rectangle{}, fmt.Errorf("%w: %dx%d slot, %d glyphs in use", ErrAtlasExhausted, w, h, len(a.entries))
}

// evictBatch is the minimum number of glyphs evicted from n candidates.
func evictBatch(n int) int { return (n + 1) / 2 }

// fits simulates packing entries followed by a w x h slot.
func fits(entries []*atlasEntry, aw, ah, padding, w, h int) bool {
	p := pack.NewShelf(aw, ah, padding)
	for _, e := range entries {
		if _, ok := p.Allocate(e.rect.Dx(), e.rect.Dy()); !ok {
			return false
		}
	}
	_, ok := p.Allocate(w, h)
	return ok
}

// sortedEntries returns glyphs with bitmaps in packing order, tallest
// first, skipping keys in exclude.
func (a *GlyphAtlas) sortedEntries(exclude map[GlyphKey]bool) []*atlasEntry {
	out := make([]*atlasEntry, 0, len(a.entries))
	for k, e := range a.entries {
		if exclude[k] || e.bitmap == nil {
			continue
		}
		out = append(out, e)
	}
	slices.SortFunc(out, func(x, y *atlasEntry) int {
		if c := cmp.Compare(y.rect.Dy(), x.rect.Dy()); c != 0 {
			return c
		}
		return cmp.Compare(x.seq, y.seq)
	})
	return out
}

// repack moves live into a fresh aw x ah texture, drops evicted, and
// reserves the requested slot.
func (a *GlyphAtlas) repack(live []*atlasEntry, evicted map[GlyphKey]bool, aw, ah, w, h int) (image.Rectangle, error) {
	p := pack.NewShelf(aw, ah, a.mgr.cfg.AtlasPadding)
	moved := make([]image.Rectangle, len(live))
	for i, e := range live {
		r, ok := p.Allocate(e.rect.Dx(), e.rect.Dy())
		if !ok {
			return image.Rectangle{}, fmt.Errorf("resource: atlas repack lost glyph %v", e.key)
		}
		moved[i] = r
	}
	reserved, ok := p.Allocate(w, h)
	if !ok {
		return image.Rectangle{}, fmt.Errorf("resource: atlas repack lost requested slot")
	}

	for i, e := range live {
		e.rect = moved[i]
	}
	for k := range evicted {
		delete(a.entries, k)
		a.lru.Remove(k)
	}
	grown := aw != a.w || ah != a.h
	a.w, a.h, a.packer = aw, ah, p
	if err := a.rebuild(true); err != nil {
		return image.Rectangle{}, err
	}
	a.gen++
	a.stats.Repacks++
	a.stats.Evictions += len(evicted)
	a.mgr.log.Debug("resource: glyph atlas repacked",
		"generation", a.gen, "w", aw, "h", ah, "grown", grown,
		"glyphs", len(a.entries), "evicted", len(evicted))
	return reserved, nil
}

// ensure creates the atlas texture on first use.
func (a *GlyphAtlas) ensure() error {
	if !a.handle.IsZero() {
		return nil
	}
	size := a.mgr.cfg.InitialAtlasSize
	a.w, a.h = size, size
	a.packer = pack.NewShelf(size, size, a.mgr.cfg.AtlasPadding)
	s := slot{w: size, h: size, label: "glyph atlas", kind: sourceAtlas}
	if err := a.mgr.upload(&s, make([]byte, size*size*4)); err != nil {
		return err
	}
	a.handle = a.mgr.store(s)
	return nil
}

// rebuild replaces the atlas device texture with one of the current size
// holding every cached bitmap at its current rectangle. The previous
// texture is destroyed when destroyOld is set; after a device loss it
// belongs to the dead device.
func (a *GlyphAtlas) rebuild(destroyOld bool) error {
	s, err := a.mgr.lookup(a.handle)
	if err != nil {
		return err
	}
	pix := make([]byte, a.w*a.h*4)
	for _, e := range a.entries {
		if e.bitmap != nil {
			blitAlpha(pix, a.w, e.rect.Min, e.bitmap)
		}
	}
	old := s.id
	s.w, s.h = a.w, a.h
	if err := a.mgr.upload(s, pix); err != nil {
		return fmt.Errorf("resource: rebuild glyph atlas: %w", err)
	}
	if destroyOld && old != gpu.NoTexture {
		a.mgr.dev.DestroyTexture(old)
	}
	return nil
}

func (a *GlyphAtlas) uploadBitmap(e *atlasEntry) error {
	s, err := a.mgr.lookup(a.handle)
	if err != nil {
		return err
	}
	w, h := e.rect.Dx(), e.rect.Dy()
	pix := make([]byte, w*h*4)
	blitAlpha(pix, w, image.Point{}, e.bitmap)
	if err := a.mgr.dev.UploadTextureRegion(s.id, e.rect, pix); err != nil {
		return fmt.Errorf("resource: upload glyph: %w", err)
	}
	return nil
}

// blitAlpha writes coverage as white with alpha into an RGBA buffer of the
// given stride in pixels.
func blitAlpha(dst []byte, stride int, at image.Point, src *image.Alpha) {
	b := src.Rect
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			i := ((at.Y+y)*stride + at.X + x) * 4
			dst[i], dst[i+1], dst[i+2] = 255, 255, 255
			dst[i+3] = src.AlphaAt(b.Min.X+x, b.Min.Y+y).A
		}
	}
}

func (a *GlyphAtlas) touch(e *atlasEntry) {
	e.lastUsed = a.frame
	a.lru.Touch(e.key)
}

func (a *GlyphAtlas) entry(e *atlasEntry) GlyphEntry {
	ge := GlyphEntry{Key: e.key, Rect: e.rect, Metrics: e.metrics, Generation: a.gen}
	if !e.rect.Empty() {
		fw, fh := float32(a.w), float32(a.h)
		ge.UV = UV{
			U0: float32(e.rect.Min.X) / fw,
			V0: float32(e.rect.Min.Y) / fh,
			U1: float32(e.rect.Max.X) / fw,
			V1: float32(e.rect.Max.Y) / fh,
		}
	}
	return ge
}

// reset forgets every glyph. The texture itself is released by the
// manager.
func (a *GlyphAtlas) reset() {
	a.handle = 0
	a.w, a.h = 0, 0
	a.packer = nil
	clear(a.entries)
	a.lru.Clear()
	a.gen++
}
