package quad

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/gogpu/quad/gpu"
	"github.com/gogpu/quad/internal/batch"
	"github.com/gogpu/quad/internal/tess"
	"github.com/gogpu/quad/resource"
	"github.com/gogpu/quad/text"
)

// Stats describes the last completed frame.
type Stats struct {
	// Frames counts ended frames, including ones whose submission
	// failed. Aborted frames are not counted.
	Frames uint64

	// Batches and Vertices are the draw calls and vertices of the last
	// frame.
	Batches  int
	Vertices int

	// Glyphs is the number of glyph quads drawn in the last frame.
	Glyphs int

	// AtlasRepacks counts glyph atlas repacks during the last frame.
	AtlasRepacks int

	// FrameTime is the time from BeginFrame to the end of EndFrame.
	FrameTime time.Duration
}

// glyphRef remembers where a glyph quad went so its UVs can be fixed up
// after an atlas repack.
type glyphRef struct {
	span batch.Span
	key  resource.GlyphKey
}

// Graphics records 2D drawing for one frame at a time and submits it to a
// gpu.Device in as few draw calls as possible.
//
// Coordinates are logical pixels with the origin at the top-left corner;
// the surface scale factor maps them to device pixels.
//
// A frame is bracketed by BeginFrame and EndFrame. Errors from drawing
// calls inside a frame, such as drawing a released texture, abort the
// frame: later draws are ignored and EndFrame returns the first error
// without submitting anything.
//
// Graphics is not safe for concurrent use.
type Graphics struct {
	dev    gpu.Device
	res    *resource.Manager
	shaper *text.Shaper
	batch  *batch.Batcher
	build  tess.Builder
	cfg    Config
	log    *slog.Logger

	inFrame    bool
	lost       bool
	failed     error
	frames     uint64
	frameStart time.Time
	clearColor *Color

	blend    gpu.BlendMode
	font     *text.Font
	fontSize float64
	scale    float64
	dash     *Dash

	transform Matrix
	stack     []Matrix
	clips     []image.Rectangle

	glyphs       []glyphRef
	images       []resource.TextureHandle
	atlasGen     uint64
	atlasRepacks int
	atlasIDs     []gpu.TextureID

	stats Stats
}

// NewGraphics creates a Graphics drawing to dev.
func NewGraphics(dev gpu.Device, opts ...Option) (*Graphics, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newGraphics(dev, o)
}

func newGraphics(dev gpu.Device, o options) (*Graphics, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	log := o.logger
	if log == nil {
		log = Logger()
	}
	rc := o.cfg.Resource
	if rc.Logger == nil {
		rc.Logger = log
	}
	res, err := resource.NewManager(dev, rc)
	if err != nil {
		return nil, err
	}
	var sopts []text.ShaperOption
	if o.engine != nil {
		sopts = append(sopts, text.WithEngine(o.engine))
	}
	if o.rasterizer != nil {
		sopts = append(sopts, text.WithRasterizer(o.rasterizer))
	}
	build := tess.Builder{Tolerance: float32(o.cfg.Tolerance)}
	scale := 1.0
	if o.surface != nil && o.surface.Scale > 0 {
		scale = o.surface.Scale
	}
	return &Graphics{
		dev:       dev,
		res:       res,
		shaper:    text.NewShaper(res.Atlas(), sopts...),
		batch:     batch.New(o.cfg.MaxBatchVertices),
		build:     build,
		cfg:       o.cfg,
		log:       log,
		blend:     gpu.BlendAuto,
		font:      text.DefaultFont(),
		fontSize:  o.cfg.FontSize,
		scale:     scale,
		transform: Identity(),
	}, nil
}

// Resources returns the texture manager.
func (g *Graphics) Resources() *resource.Manager { return g.res }

// Shaper returns the text shaper.
func (g *Graphics) Shaper() *text.Shaper { return g.shaper }

// Device returns the current device.
func (g *Graphics) Device() gpu.Device { return g.dev }

// Stats returns statistics for the last completed frame.
func (g *Graphics) Stats() Stats { return g.stats }

// InFrame reports whether a frame is open.
func (g *Graphics) InFrame() bool { return g.inFrame }

// ScaleFactor returns the ratio of device to logical pixels.
func (g *Graphics) ScaleFactor() float64 { return g.scale }

// SetScaleFactor sets the ratio of device to logical pixels. Text is
// rasterized at the scaled size so that it stays sharp.
func (g *Graphics) SetScaleFactor(s float64) {
	if s > 0 && !math.IsInf(s, 0) {
		g.scale = s
	}
}

// Size returns the drawable size in logical pixels.
func (g *Graphics) Size() (w, h float64) {
	if g.dev == nil {
		return 0, 0
	}
	p := g.dev.Size()
	return float64(p.X) / g.scale, float64(p.Y) / g.scale
}

// BeginFrame opens a frame. The transform and clip stacks are reset;
// blend mode, font and dash settings carry over.
func (g *Graphics) BeginFrame() error {
	if g.inFrame {
		return ErrFrameInProgress
	}
	if g.lost || g.dev == nil {
		return ErrContextLost
	}
	g.inFrame = true
	g.failed = nil
	g.clearColor = nil
	g.frameStart = time.Now()
	g.transform = Identity()
	g.stack = g.stack[:0]
	g.clips = g.clips[:0]
	g.glyphs = g.glyphs[:0]
	g.images = g.images[:0]
	g.atlasIDs = g.atlasIDs[:0]
	g.batch.Reset()

	atlas := g.res.Atlas()
	atlas.BeginFrame(g.frames + 1)
	g.atlasGen = atlas.Generation()
	g.atlasRepacks = atlas.Stats().Repacks
	return nil
}

// EndFrame submits the frame. It returns the first error recorded while
// drawing, in which case nothing is submitted, or a submission error
// wrapped with ErrSubmit. Textures drawn in the frame and released before
// EndFrame fail it with resource.ErrReleasedHandle before any submission.
func (g *Graphics) EndFrame() error {
	if !g.inFrame {
		return ErrNoFrame
	}
	g.inFrame = false
	if g.failed != nil {
		g.batch.Reset()
		g.log.Warn("quad: frame aborted", "frame", g.frames+1, "err", g.failed)
		return g.failed
	}

	atlas := g.res.Atlas()
	if atlas.Generation() != g.atlasGen {
		if err := g.refreshGlyphs(); err != nil {
			g.batch.Reset()
			return err
		}
	}

	for _, h := range g.images {
		if _, err := g.res.DeviceTexture(h); err != nil {
			g.batch.Reset()
			err = fmt.Errorf("quad: draw texture: %w", err)
			g.log.Warn("quad: frame aborted", "frame", g.frames+1, "err", err)
			return err
		}
	}

	batches, vertices := len(g.batch.Batches()), g.batch.VertexCount()
	err := g.flush()
	g.frames++
	g.stats.Frames = g.frames
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSubmit, err)
	}
	g.stats = Stats{
		Frames:       g.frames,
		Batches:      batches,
		Vertices:     vertices,
		Glyphs:       len(g.glyphs),
		AtlasRepacks: atlas.Stats().Repacks - g.atlasRepacks,
		FrameTime:    time.Since(g.frameStart),
	}
	g.log.Debug("quad: frame submitted", "frame", g.frames,
		"batches", batches, "vertices", vertices, "glyphs", len(g.glyphs))
	return nil
}

// flush clears the target if requested and submits the batches.
func (g *Graphics) flush() error {
	if g.clearColor != nil {
		if err := g.dev.Clear(g.clearColor.gpu()); err != nil {
			g.batch.Reset()
			return err
		}
	}
	return g.batch.Flush(g.dev, g.dev.Size())
}

// AbortFrame closes an open frame without submitting it.
func (g *Graphics) AbortFrame() {
	if !g.inFrame {
		return
	}
	g.inFrame = false
	g.batch.Reset()
}

// refreshGlyphs points every glyph quad of this frame at the current
// atlas layout and texture.
func (g *Graphics) refreshGlyphs() error {
	atlas := g.res.Atlas()
	for _, ref := range g.glyphs {
		e, ok := atlas.Lookup(ref.key)
		if !ok {
			return fmt.Errorf("quad: glyph %d evicted during its frame", ref.key.GlyphID)
		}
		uv := tess.UV{U0: e.UV.U0, V0: e.UV.V0, U1: e.UV.U1, V1: e.UV.V1}
		if err := g.batch.PatchUV(ref.span, uv); err != nil {
			return err
		}
	}
	id, err := g.res.DeviceTexture(atlas.Texture())
	if err != nil {
		return err
	}
	for _, old := range g.atlasIDs {
		if old != id {
			g.batch.ReplaceTexture(old, id)
		}
	}
	g.log.Debug("quad: glyph quads refreshed after atlas repack",
		"glyphs", len(g.glyphs), "generation", atlas.Generation())
	return nil
}

// fail records the first error of the frame.
func (g *Graphics) fail(err error) {
	if g.failed == nil {
		g.failed = err
	}
}

// active reports whether draw calls should be recorded.
func (g *Graphics) active() bool {
	if !g.inFrame {
		g.log.Warn("quad: draw call outside a frame ignored")
		return false
	}
	return g.failed == nil
}

// Clear discards everything drawn so far in this frame and fills the
// target with c when the frame is submitted.
func (g *Graphics) Clear(c Color) {
	if !g.active() {
		return
	}
	g.batch.Reset()
	g.glyphs = g.glyphs[:0]
	g.images = g.images[:0]
	g.clearColor = &c
}

// SetBlendMode sets the blend mode for subsequent draws. The default,
// gpu.BlendAuto, draws opaque solid colors with gpu.BlendOpaque and
// everything else with gpu.BlendAlpha.
func (g *Graphics) SetBlendMode(m gpu.BlendMode) { g.blend = m }

// BlendMode returns the current blend mode.
func (g *Graphics) BlendMode() gpu.BlendMode { return g.blend }

// SetFont sets the font for text. nil selects the default font.
func (g *Graphics) SetFont(f *text.Font) {
	if f == nil {
		f = text.DefaultFont()
	}
	g.font = f
}

// Font returns the current font.
func (g *Graphics) Font() *text.Font { return g.font }

// SetFontSize sets the text size in logical pixels. Non-positive sizes
// are ignored.
func (g *Graphics) SetFontSize(size float64) {
	if size > 0 && !math.IsInf(size, 0) {
		g.fontSize = size
	}
}

// FontSize returns the text size in logical pixels.
func (g *Graphics) FontSize() float64 { return g.fontSize }

// SetDash sets the dash pattern for lines and outlines. nil draws solid
// lines.
func (g *Graphics) SetDash(d *Dash) { g.dash = d }

// Push saves the current transform.
func (g *Graphics) Push() { g.stack = append(g.stack, g.transform) }

// Pop restores the transform saved by the matching Push.
func (g *Graphics) Pop() error {
	n := len(g.stack)
	if n == 0 {
		g.failInFrame(ErrTransformUnderflow)
		return ErrTransformUnderflow
	}
	g.transform = g.stack[n-1]
	g.stack = g.stack[:n-1]
	return nil
}

// Translate moves the origin by (x, y).
func (g *Graphics) Translate(x, y float64) {
	g.transform = g.transform.Multiply(Translate(x, y))
}

// Scale scales subsequent drawing by (sx, sy).
func (g *Graphics) Scale(sx, sy float64) {
	g.transform = g.transform.Multiply(Scale(sx, sy))
}

// Rotate rotates subsequent drawing by angle radians, clockwise on
// screen.
func (g *Graphics) Rotate(angle float64) {
	g.transform = g.transform.Multiply(Rotate(angle))
}

// RotateAbout rotates subsequent drawing by angle radians around (x, y).
func (g *Graphics) RotateAbout(angle, x, y float64) {
	g.Translate(x, y)
	g.Rotate(angle)
	g.Translate(-x, -y)
}

// Transform returns the current transform.
func (g *Graphics) Transform() Matrix { return g.transform }

// SetTransform replaces the current transform.
func (g *Graphics) SetTransform(m Matrix) { g.transform = m }

// PushClip intersects the clip region with r, in logical surface
// coordinates. The transform does not apply to clip rectangles.
func (g *Graphics) PushClip(r Rect) {
	c := g.deviceRect(r)
	if n := len(g.clips); n > 0 {
		c = c.Intersect(g.clips[n-1])
	}
	g.clips = append(g.clips, c)
}

// PopClip restores the clip region saved by the matching PushClip.
func (g *Graphics) PopClip() error {
	n := len(g.clips)
	if n == 0 {
		g.failInFrame(ErrClipUnderflow)
		return ErrClipUnderflow
	}
	g.clips = g.clips[:n-1]
	return nil
}

func (g *Graphics) failInFrame(err error) {
	if g.inFrame {
		g.fail(err)
	}
}

// deviceRect converts a logical rectangle to device pixels, rounding
// outwards.
func (g *Graphics) deviceRect(r Rect) image.Rectangle {
	x0, y0 := r.X, r.Y
	x1, y1 := r.X+r.W, r.Y+r.H
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	s := g.scale
	return image.Rect(
		int(math.Floor(x0*s)), int(math.Floor(y0*s)),
		int(math.Ceil(x1*s)), int(math.Ceil(y1*s)),
	)
}

// DrawOptions overrides per-call state.
type DrawOptions struct {
	// Clip replaces the clip stack for this call when HasClip is set.
	Clip    Rect
	HasClip bool

	// Blend overrides the current blend mode unless it is BlendAuto.
	Blend gpu.BlendMode
}

// WithClip returns options that clip one call to r.
func WithClip(r Rect) DrawOptions {
	return DrawOptions{Clip: r, HasClip: true}
}

// deviceMatrix maps logical coordinates through the transform to device
// pixels.
func (g *Graphics) deviceMatrix() Matrix {
	return Scale(g.scale, g.scale).Multiply(g.transform)
}

// segments returns the tessellation segment count for a radius in
// logical pixels.
func (g *Graphics) segments(r float64) int {
	return g.build.SegmentsFor(float32(r * g.deviceMatrix().maxScale()))
}

// submit appends the builder's mesh with the current state.
func (g *Graphics) submit(tex gpu.TextureID, opaque bool, opts *DrawOptions) batch.Span {
	none := batch.Span{Batch: -1}
	m := g.build.Mesh()
	if m.Empty() {
		return none
	}
	g.deviceMatrix().apply(m.Vertices)

	st := batch.State{Texture: tex, Blend: g.resolveBlend(tex, opaque, opts)}
	switch {
	case opts != nil && opts.HasClip:
		st.Clip, st.HasClip = g.deviceRect(opts.Clip), true
	case len(g.clips) > 0:
		st.Clip, st.HasClip = g.clips[len(g.clips)-1], true
	}
	if st.HasClip && st.Clip.Empty() {
		return none
	}
	span, err := g.batch.Append(st, m)
	if err != nil {
		g.fail(err)
		return none
	}
	return span
}

func (g *Graphics) resolveBlend(tex gpu.TextureID, opaque bool, opts *DrawOptions) gpu.BlendMode {
	mode := g.blend
	if opts != nil && opts.Blend != gpu.BlendAuto {
		mode = opts.Blend
	}
	if mode != gpu.BlendAuto {
		return mode
	}
	if opaque && tex == gpu.NoTexture {
		return gpu.BlendOpaque
	}
	return gpu.BlendAlpha
}

// texture resolves a handle for drawing, failing the frame on error.
func (g *Graphics) texture(h resource.TextureHandle) (gpu.TextureID, bool) {
	id, err := g.res.DeviceTexture(h)
	if err != nil {
		g.fail(fmt.Errorf("quad: draw texture: %w", err))
		return gpu.NoTexture, false
	}
	if !slices.Contains(g.images, h) {
		g.images = append(g.images, h)
	}
	return id, true
}

// isProgrammingError reports errors that indicate misuse rather than a
// device failure.
func isProgrammingError(err error) bool {
	return errors.Is(err, resource.ErrReleasedHandle) ||
		errors.Is(err, resource.ErrInvalidHandle) ||
		errors.Is(err, ErrClipUnderflow) ||
		errors.Is(err, ErrTransformUnderflow) ||
		errors.Is(err, batch.ErrFlushed)
}
