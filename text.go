package quad

import (
	"slices"

	"github.com/gogpu/quad/gpu"
	"github.com/gogpu/quad/internal/tess"
	"github.com/gogpu/quad/text"
)

// TextOptions controls DrawTextWith.
type TextOptions struct {
	DrawOptions

	// Font and Size override the current font and font size.
	Font *text.Font
	Size float64

	// MaxWidth wraps lines wider than it, in logical pixels. Zero
	// disables wrapping.
	MaxWidth float64

	// LineHeight is the baseline distance in logical pixels; zero uses
	// the font's line height.
	LineHeight float64

	// Rotation rotates the text by radians around its origin.
	Rotation float64
}

// DrawText draws s with its first baseline starting at (x, y).
func (g *Graphics) DrawText(s string, x, y float64, c Color, opts ...DrawOptions) {
	o := TextOptions{}
	if p := pick(opts); p != nil {
		o.DrawOptions = *p
	}
	g.DrawTextWith(s, x, y, c, o)
}

// DrawTextWrapped draws s broken into lines no wider than maxWidth.
func (g *Graphics) DrawTextWrapped(s string, x, y, maxWidth float64, c Color, opts ...DrawOptions) {
	o := TextOptions{MaxWidth: maxWidth}
	if p := pick(opts); p != nil {
		o.DrawOptions = *p
	}
	g.DrawTextWith(s, x, y, c, o)
}

// DrawTextWith draws text with the full set of options. Newlines always
// start a new line.
func (g *Graphics) DrawTextWith(s string, x, y float64, c Color, o TextOptions) {
	if !g.active() || s == "" {
		return
	}
	f, size := g.textFont(o)
	physical := size * g.scale
	run, err := g.shaper.Shape(s, f, physical)
	if err != nil {
		g.fail(err)
		return
	}
	m, err := f.Metrics(physical)
	if err != nil {
		g.fail(err)
		return
	}
	lineHeight := o.LineHeight
	if lineHeight <= 0 {
		lineHeight = m.LineHeight() / g.scale
	}
	lines := text.Wrap(run, o.MaxWidth*g.scale)

	atlas := g.res.Atlas()
	tex, err := g.res.DeviceTexture(atlas.Texture())
	if err != nil {
		g.fail(err)
		return
	}
	if tex != gpu.NoTexture && !slices.Contains(g.atlasIDs, tex) {
		g.atlasIDs = append(g.atlasIDs, tex)
	}

	saved := g.transform
	g.Translate(x, y)
	if o.Rotation != 0 {
		g.Rotate(o.Rotation)
	}
	inv := 1 / g.scale
	col := c.gpu()
	for i, line := range lines {
		base := float64(i) * lineHeight
		for gl := range line.Run.Glyphs() {
			if gl.Rect.Empty() {
				continue
			}
			g.build.Reset()
			g.build.TexturedRect(
				f32((gl.X+gl.XOffset+gl.BearingX)*inv),
				f32(base+(gl.YOffset+gl.BearingY)*inv),
				f32(float64(gl.Rect.Dx())*inv),
				f32(float64(gl.Rect.Dy())*inv),
				tess.UV{U0: gl.UV.U0, V0: gl.UV.V0, U1: gl.UV.U1, V1: gl.UV.V1},
				col,
			)
			span := g.submit(tex, false, &o.DrawOptions)
			if span.Valid() {
				g.glyphs = append(g.glyphs, glyphRef{span: span, key: gl.Key})
			}
		}
	}
	g.transform = saved
}

func (g *Graphics) textFont(o TextOptions) (*text.Font, float64) {
	f, size := g.font, g.fontSize
	if o.Font != nil {
		f = o.Font
	}
	if o.Size > 0 {
		size = o.Size
	}
	return f, size
}

// MeasureText returns the size of s in logical pixels with the current
// font, or with the font and size in o when given. Height covers ascent
// and descent of every line.
func (g *Graphics) MeasureText(s string, o ...TextOptions) (text.Dimensions, error) {
	var opt TextOptions
	if len(o) > 0 {
		opt = o[len(o)-1]
	}
	f, size := g.textFont(opt)
	physical := size * g.scale
	run, err := g.shaper.Shape(s, f, physical)
	if err != nil {
		return text.Dimensions{}, err
	}
	lines := text.Wrap(run, opt.MaxWidth*g.scale)
	lh := opt.LineHeight * g.scale
	if lh <= 0 {
		m, err := f.Metrics(physical)
		if err != nil {
			return text.Dimensions{}, err
		}
		lh = m.LineHeight()
	}
	d := text.MeasureLines(lines, lh)
	inv := 1 / g.scale
	return text.Dimensions{Width: d.Width * inv, Height: d.Height * inv, Ascent: d.Ascent * inv}, nil
}

// PreloadText rasterizes the glyphs of s at the current font and size so
// that the first frame using them does not pay for it.
func (g *Graphics) PreloadText(s string) error {
	return g.shaper.Preload(s, g.font, g.fontSize*g.scale)
}
