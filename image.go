package quad

import (
	"image"

	"github.com/gogpu/quad/internal/tess"
	"github.com/gogpu/quad/resource"
)

// DrawImageOptions controls DrawImageWith.
type DrawImageOptions struct {
	DrawOptions

	// Src selects a sub-rectangle of the texture in texels. The zero
	// rectangle selects the whole texture.
	Src image.Rectangle

	// Width and Height set the destination size in logical pixels. Zero
	// uses the source size.
	Width, Height float64

	// Rotation rotates the image by radians around Pivot, clockwise on
	// screen. Pivot is relative to the destination's top-left corner.
	Rotation float64
	Pivot    Point

	// FlipX and FlipY mirror the image.
	FlipX, FlipY bool

	// Tint multiplies the texels. The zero value means White.
	Tint Color
}

// DrawImage draws the whole texture with its top-left corner at (x, y),
// one texel per logical pixel.
func (g *Graphics) DrawImage(h resource.TextureHandle, x, y float64, opts ...DrawOptions) {
	o := DrawImageOptions{}
	if p := pick(opts); p != nil {
		o.DrawOptions = *p
	}
	g.DrawImageWith(h, x, y, o)
}

// DrawImageRect draws the texels in src scaled to dst.
func (g *Graphics) DrawImageRect(h resource.TextureHandle, src image.Rectangle, dst Rect, opts ...DrawOptions) {
	o := DrawImageOptions{Src: src, Width: dst.W, Height: dst.H}
	if p := pick(opts); p != nil {
		o.DrawOptions = *p
	}
	g.DrawImageWith(h, dst.X, dst.Y, o)
}

// DrawImageWith draws a texture with the full set of options.
func (g *Graphics) DrawImageWith(h resource.TextureHandle, x, y float64, o DrawImageOptions) {
	if !g.begin() {
		return
	}
	id, ok := g.texture(h)
	if !ok {
		return
	}
	tw, th, err := g.res.Size(h)
	if err != nil {
		g.fail(err)
		return
	}
	src := o.Src
	if src.Empty() {
		src = image.Rect(0, 0, tw, th)
	}
	src = src.Intersect(image.Rect(0, 0, tw, th))
	if src.Empty() {
		return
	}
	w, hh := o.Width, o.Height
	if w == 0 {
		w = float64(src.Dx())
	}
	if hh == 0 {
		hh = float64(src.Dy())
	}
	uv := tess.UV{
		U0: float32(src.Min.X) / float32(tw),
		V0: float32(src.Min.Y) / float32(th),
		U1: float32(src.Max.X) / float32(tw),
		V1: float32(src.Max.Y) / float32(th),
	}
	if o.FlipX {
		uv.U0, uv.U1 = uv.U1, uv.U0
	}
	if o.FlipY {
		uv.V0, uv.V1 = uv.V1, uv.V0
	}
	tint := o.Tint
	if tint == (Color{}) {
		tint = White
	}
	g.build.TexturedRect(0, 0, f32(w), f32(hh), uv, tint.gpu())

	saved := g.transform
	g.Translate(x, y)
	if o.Rotation != 0 {
		g.RotateAbout(o.Rotation, o.Pivot.X, o.Pivot.Y)
	}
	g.submit(id, false, &o.DrawOptions)
	g.transform = saved
}
