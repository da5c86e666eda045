package text

import (
	"fmt"
	"image"

	"github.com/gogpu/quad/resource"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/vector"
)

// Rasterizer renders a glyph to a coverage mask.
//
// A glyph with no outline (such as a space) yields a nil mask with valid
// metrics.
type Rasterizer interface {
	Rasterize(f *Font, glyph uint32, size float64) (*image.Alpha, resource.GlyphMetrics, error)
}

// SFNTRasterizer fills glyph outlines from golang.org/x/image/font/sfnt
// with the x/image/vector anti-aliasing rasterizer.
type SFNTRasterizer struct {
	ras vector.Rasterizer
}

// Rasterize implements Rasterizer.
func (r *SFNTRasterizer) Rasterize(f *Font, glyph uint32, size float64) (*image.Alpha, resource.GlyphMetrics, error) {
	if f == nil {
		return nil, resource.GlyphMetrics{}, ErrNilFont
	}
	ppem, err := toPPEM(size)
	if err != nil {
		return nil, resource.GlyphMetrics{}, err
	}
	gi := sfnt.GlyphIndex(glyph)
	bounds, adv, err := f.sfnt.GlyphBounds(&f.buf, gi, ppem, font.HintingNone)
	if err != nil {
		return nil, resource.GlyphMetrics{}, fmt.Errorf("text: glyph %d bounds: %w", glyph, err)
	}
	m := resource.GlyphMetrics{Advance: float32(fixedToFloat(adv))}

	// Pixel box around the outline; y grows down from the baseline.
	minX, minY := bounds.Min.X.Floor(), bounds.Min.Y.Floor()
	maxX, maxY := bounds.Max.X.Ceil(), bounds.Max.Y.Ceil()
	w, h := maxX-minX, maxY-minY
	if w <= 0 || h <= 0 {
		return nil, m, nil
	}
	m.BearingX, m.BearingY = float32(minX), float32(minY)

	segs, err := f.sfnt.LoadGlyph(&f.buf, gi, ppem, nil)
	if err != nil {
		return nil, resource.GlyphMetrics{}, fmt.Errorf("text: load glyph %d: %w", glyph, err)
	}
	if len(segs) == 0 {
		return nil, m, nil
	}

	ox, oy := float32(minX), float32(minY)
	pt := func(i int, s sfnt.Segment) (float32, float32) {
		return float32(fixedToFloat(s.Args[i].X)) - ox, float32(fixedToFloat(s.Args[i].Y)) - oy
	}
	r.ras.Reset(w, h)
	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			r.ras.MoveTo(pt(0, s))
		case sfnt.SegmentOpLineTo:
			r.ras.LineTo(pt(0, s))
		case sfnt.SegmentOpQuadTo:
			bx, by := pt(0, s)
			cx, cy := pt(1, s)
			r.ras.QuadTo(bx, by, cx, cy)
		case sfnt.SegmentOpCubeTo:
			bx, by := pt(0, s)
			cx, cy := pt(1, s)
			dx, dy := pt(2, s)
			r.ras.CubeTo(bx, by, cx, cy, dx, dy)
		}
	}
	r.ras.ClosePath()

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	r.ras.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask, m, nil
}
