package text

import (
	"fmt"
	"image"
	"iter"

	"github.com/gogpu/quad/resource"
)

// Glyph is a shaped glyph resolved against the atlas.
type Glyph struct {
	GlyphID uint32

	// Cluster is the byte offset of the glyph's text in Run.Text.
	Cluster int

	// X is the pen position relative to the run origin.
	X float64

	// Advance is the horizontal pen advance.
	Advance float64

	// XOffset and YOffset adjust the glyph from the pen, y down.
	XOffset, YOffset float64

	// BearingX and BearingY place the bitmap's top-left corner relative to
	// the pen on the baseline, y down.
	BearingX, BearingY float64

	// Rect is the bitmap rectangle in the atlas texture; empty for glyphs
	// without ink.
	Rect image.Rectangle

	// UV is Rect normalized to the atlas size.
	UV resource.UV

	// Key identifies the glyph in the atlas.
	Key resource.GlyphKey
}

// Run is the result of shaping one string.
//
// Atlas rectangles and UVs in a Run are valid while the atlas generation
// equals Generation.
type Run struct {
	Text       string
	Font       *Font
	Size       float64
	Generation uint64

	glyphs []Glyph
}

// Glyphs yields the glyphs in visual order. The sequence can be iterated
// any number of times.
func (r Run) Glyphs() iter.Seq[Glyph] {
	return func(yield func(Glyph) bool) {
		for _, g := range r.glyphs {
			if !yield(g) {
				return
			}
		}
	}
}

// Len returns the number of glyphs.
func (r Run) Len() int { return len(r.glyphs) }

// At returns glyph i.
func (r Run) At(i int) Glyph { return r.glyphs[i] }

// Advance returns the total pen advance of the run.
func (r Run) Advance() float64 {
	if len(r.glyphs) == 0 {
		return 0
	}
	last := r.glyphs[len(r.glyphs)-1]
	return last.X + last.Advance
}

// slice returns glyphs [i, j) rebased to start at pen position 0.
func (r Run) slice(i, j int) Run {
	out := r
	out.glyphs = make([]Glyph, j-i)
	copy(out.glyphs, r.glyphs[i:j])
	if len(out.glyphs) > 0 {
		x0 := out.glyphs[0].X
		for k := range out.glyphs {
			out.glyphs[k].X -= x0
		}
	}
	return out
}

// Shaper shapes text and keeps glyph bitmaps in a glyph atlas.
//
// Shaper is not safe for concurrent use.
type Shaper struct {
	atlas  *resource.GlyphAtlas
	engine Engine
	raster Rasterizer
}

// ShaperOption configures a Shaper.
type ShaperOption func(*Shaper)

// WithEngine sets the shaping engine. The default is a HarfbuzzEngine.
func WithEngine(e Engine) ShaperOption {
	return func(s *Shaper) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithRasterizer sets the glyph rasterizer. The default is an
// SFNTRasterizer.
func WithRasterizer(r Rasterizer) ShaperOption {
	return func(s *Shaper) {
		if r != nil {
			s.raster = r
		}
	}
}

// NewShaper creates a shaper that caches glyphs in atlas.
func NewShaper(atlas *resource.GlyphAtlas, opts ...ShaperOption) *Shaper {
	s := &Shaper{
		atlas:  atlas,
		engine: NewHarfbuzzEngine(),
		raster: &SFNTRasterizer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Atlas returns the glyph atlas.
func (s *Shaper) Atlas() *resource.GlyphAtlas { return s.atlas }

// Shape shapes str with f at size pixels per em and resolves every glyph
// in the atlas, rasterizing missing ones. Empty text yields an empty Run.
//
// If inserting a glyph repacks the atlas, the run is resolved once more so
// that every glyph matches Run.Generation.
func (s *Shaper) Shape(str string, f *Font, size float64) (Run, error) {
	if f == nil {
		return Run{}, ErrNilFont
	}
	if _, err := toPPEM(size); err != nil {
		return Run{}, err
	}
	run := Run{Text: str, Font: f, Size: size, Generation: s.atlas.Generation()}
	if str == "" {
		return run, nil
	}
	shaped, err := s.engine.Shape(str, f, size)
	if err != nil {
		return Run{}, fmt.Errorf("text: shape: %w", err)
	}
	run.glyphs = make([]Glyph, len(shaped))
	x := 0.0
	for i, sg := range shaped {
		run.glyphs[i] = Glyph{
			GlyphID: sg.GlyphID,
			Cluster: sg.Cluster,
			X:       x,
			Advance: sg.Advance,
			XOffset: sg.XOffset,
			YOffset: sg.YOffset,
			Key:     resource.GlyphKey{FontID: f.ID(), GlyphID: sg.GlyphID, Size: float32(size)},
		}
		x += sg.Advance
	}
	if err := s.Resolve(&run); err != nil {
		return Run{}, err
	}
	return run, nil
}

// Resolve refreshes the atlas placement of every glyph in run and updates
// run.Generation. Missing glyphs are rasterized again.
func (s *Shaper) Resolve(run *Run) error {
	for range 2 {
		gen := s.atlas.Generation()
		for i := range run.glyphs {
			if err := s.resolve(run.Font, run.Size, &run.glyphs[i]); err != nil {
				return err
			}
		}
		if s.atlas.Generation() == gen {
			run.Generation = gen
			return nil
		}
	}
	return fmt.Errorf("%w: run of %d glyphs does not fit without evicting itself",
		resource.ErrAtlasExhausted, len(run.glyphs))
}

func (s *Shaper) resolve(f *Font, size float64, g *Glyph) error {
	e, ok := s.atlas.Lookup(g.Key)
	if !ok {
		mask, m, err := s.raster.Rasterize(f, g.GlyphID, size)
		if err != nil {
			return err
		}
		e, err = s.atlas.Insert(g.Key, mask, m)
		if err != nil {
			return err
		}
	}
	g.Rect, g.UV = e.Rect, e.UV
	g.BearingX, g.BearingY = float64(e.Metrics.BearingX), float64(e.Metrics.BearingY)
	return nil
}

// Preload rasterizes the glyphs of str into the atlas ahead of drawing.
func (s *Shaper) Preload(str string, f *Font, size float64) error {
	_, err := s.Shape(str, f, size)
	return err
}
