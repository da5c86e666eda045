package text

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"math"
	"sync"

	gotext "github.com/go-text/typesetting/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Font is a parsed TrueType or OpenType font. It is size independent;
// sizes are passed per call.
type Font struct {
	data []byte
	sfnt *sfnt.Font
	buf  sfnt.Buffer
	id   uint64
	name string

	// gotext is parsed on first use by HarfbuzzEngine.
	gotext    *gotext.Font
	gotextErr error
}

// Metrics holds vertical font metrics in pixels for one size.
type Metrics struct {
	// Ascent is the distance from the baseline to the top of the line,
	// positive.
	Ascent float64
	// Descent is the distance from the baseline to the bottom of the line,
	// positive.
	Descent float64
	// LineGap is the recommended extra space between lines.
	LineGap float64
}

// LineHeight returns ascent + descent + line gap.
func (m Metrics) LineHeight() float64 { return m.Ascent + m.Descent + m.LineGap }

// ParseFont parses TTF or OTF data. The data is retained.
func ParseFont(data []byte) (*Font, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("text: failed to parse font: %w", err)
	}
	h := fnv.New64a()
	_, _ = h.Write(data)
	ft := &Font{data: data, sfnt: f, id: h.Sum64()}
	if name, err := f.Name(&ft.buf, sfnt.NameIDFamily); err == nil {
		ft.name = name
	}
	return ft, nil
}

var defaultFont = sync.OnceValue(func() *Font {
	f, err := ParseFont(goregular.TTF)
	if err != nil {
		panic("text: embedded Go Regular font: " + err.Error())
	}
	return f
})

// DefaultFont returns the embedded Go Regular font.
func DefaultFont() *Font { return defaultFont() }

// ID identifies the font data. Fonts parsed from identical bytes share an
// ID.
func (f *Font) ID() uint64 { return f.id }

// Name returns the family name, or "" if the font has none.
func (f *Font) Name() string { return f.name }

// NumGlyphs returns the number of glyphs in the font.
func (f *Font) NumGlyphs() int { return f.sfnt.NumGlyphs() }

// GlyphIndex returns the glyph for r, or 0 (.notdef) if the font has no
// mapping.
func (f *Font) GlyphIndex(r rune) uint32 {
	gi, err := f.sfnt.GlyphIndex(&f.buf, r)
	if err != nil {
		return 0
	}
	return uint32(gi)
}

// Metrics returns the vertical metrics at size pixels per em.
func (f *Font) Metrics(size float64) (Metrics, error) {
	ppem, err := toPPEM(size)
	if err != nil {
		return Metrics{}, err
	}
	m, err := f.sfnt.Metrics(&f.buf, ppem, font.HintingNone)
	if err != nil {
		return Metrics{}, fmt.Errorf("text: font metrics: %w", err)
	}
	asc, desc := fixedToFloat(m.Ascent), fixedToFloat(m.Descent)
	return Metrics{
		Ascent:  asc,
		Descent: desc,
		LineGap: max(fixedToFloat(m.Height)-asc-desc, 0),
	}, nil
}

func (f *Font) goText() (*gotext.Font, error) {
	if f.gotext == nil && f.gotextErr == nil {
		face, err := gotext.ParseTTF(bytes.NewReader(f.data))
		if err != nil {
			f.gotextErr = fmt.Errorf("text: failed to parse font for shaping: %w", err)
		} else {
			f.gotext = face.Font
		}
	}
	return f.gotext, f.gotextErr
}

func toPPEM(size float64) (fixed.Int26_6, error) {
	if !(size > 0) || math.IsInf(size, 0) || size > 1<<20 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSize, size)
	}
	return floatToFixed(size), nil
}

// floatToFixed converts a float64 to fixed.Int26_6.
func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

// fixedToFloat converts a fixed.Int26_6 value to float64.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
