package text

import (
	"unicode/utf8"

	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/text/unicode/bidi"
)

// HarfbuzzEngine shapes with the go-text/typesetting HarfBuzz port:
// ligatures, kerning, marks and complex scripts. Mixed-direction text is
// split into bidi runs first and the runs are returned in visual order.
//
// A HarfbuzzEngine is not safe for concurrent use.
type HarfbuzzEngine struct {
	shaper shaping.HarfbuzzShaper

	// Language tags the shaped text; default "en".
	Language language.Language
}

// NewHarfbuzzEngine creates a HarfbuzzEngine.
func NewHarfbuzzEngine() *HarfbuzzEngine {
	return &HarfbuzzEngine{Language: language.NewLanguage("en")}
}

// Shape implements Engine.
func (e *HarfbuzzEngine) Shape(s string, f *Font, size float64) ([]ShapedGlyph, error) {
	if f == nil {
		return nil, ErrNilFont
	}
	ppem, err := toPPEM(size)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, nil
	}
	gf, err := f.goText()
	if err != nil {
		return nil, err
	}
	face := gotext.NewFace(gf)
	runes := []rune(s)

	// Rune index to byte offset, for clusters.
	offsets := make([]int, len(runes)+1)
	for i, n := 0, 0; i < len(runes); i++ {
		offsets[i] = n
		n += utf8.RuneLen(runes[i])
		offsets[i+1] = n
	}

	var out []ShapedGlyph
	for _, r := range bidiRuns(s, len(runes)) {
		dir := di.DirectionLTR
		if r.rtl {
			dir = di.DirectionRTL
		}
		lang := e.Language
		if lang == "" {
			lang = language.NewLanguage("en")
		}
		output := e.shaper.Shape(shaping.Input{
			Text:      runes,
			RunStart:  r.start,
			RunEnd:    r.end,
			Direction: dir,
			Face:      face,
			Size:      ppem,
			Script:    detectScript(runes[r.start:r.end]),
			Language:  lang,
		})
		for _, g := range output.Glyphs {
			out = append(out, ShapedGlyph{
				GlyphID: uint32(g.GlyphID),
				Cluster: offsets[min(max(g.TextIndex(), 0), len(runes))],
				Advance: fixedToFloat(g.Advance),
				XOffset: fixedToFloat(g.XOffset),
				YOffset: -fixedToFloat(g.YOffset),
			})
		}
	}
	return out, nil
}

type dirRun struct {
	start, end int // rune indices, end exclusive
	rtl        bool
}

// bidiRuns splits s into directional runs in visual order.
func bidiRuns(s string, n int) []dirRun {
	whole := []dirRun{{start: 0, end: n}}
	var p bidi.Paragraph
	if _, err := p.SetString(s, bidi.DefaultDirection(bidi.LeftToRight)); err != nil {
		return whole
	}
	ordering, err := p.Order()
	if err != nil || ordering.NumRuns() == 0 {
		return whole
	}
	runs := make([]dirRun, 0, ordering.NumRuns())
	for i := range ordering.NumRuns() {
		run := ordering.Run(i)
		start, end := run.Pos() // rune indices, end inclusive
		if start > end || end >= n {
			return whole
		}
		runs = append(runs, dirRun{start: start, end: end + 1, rtl: run.Direction() == bidi.RightToLeft})
	}
	return runs
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
