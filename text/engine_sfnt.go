package text

import (
	"errors"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
)

// SFNTEngine shapes by direct cmap lookup with hmtx advances and kern
// table pairs. It does no substitution or reordering, so it is only
// correct for simple left-to-right scripts.
type SFNTEngine struct{}

// Shape implements Engine.
func (SFNTEngine) Shape(s string, f *Font, size float64) ([]ShapedGlyph, error) {
	if f == nil {
		return nil, ErrNilFont
	}
	ppem, err := toPPEM(size)
	if err != nil {
		return nil, err
	}
	out := make([]ShapedGlyph, 0, len(s))
	var prev sfnt.GlyphIndex
	for i, r := range s {
		gi, err := f.sfnt.GlyphIndex(&f.buf, r)
		if err != nil {
			gi = 0
		}
		adv, err := f.sfnt.GlyphAdvance(&f.buf, gi, ppem, font.HintingNone)
		if err != nil {
			adv = 0
		}
		if n := len(out); n > 0 {
			k, err := f.sfnt.Kern(&f.buf, prev, gi, ppem, font.HintingNone)
			if err == nil {
				out[n-1].Advance += fixedToFloat(k)
			} else if !errors.Is(err, sfnt.ErrNotFound) {
				return nil, err
			}
		}
		out = append(out, ShapedGlyph{GlyphID: uint32(gi), Cluster: i, Advance: fixedToFloat(adv)})
		prev = gi
	}
	return out, nil
}
