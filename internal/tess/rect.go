package tess

import (
	"github.com/chewxy/math32"
	"github.com/gogpu/quad/gpu"
)

// normRect flips negative extents so that (x, y) is the top-left corner.
func normRect(x, y, w, h float32) (float32, float32, float32, float32, bool) {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	return x, y, w, h, w > 0 && h > 0
}

// Rect appends a solid axis-aligned rectangle.
func (b *Builder) Rect(x, y, w, h float32, c gpu.Color) {
	b.TexturedRect(x, y, w, h, UV{}, c)
}

// TexturedRect appends a rectangle mapped to uv. Swapping U0/U1 or V0/V1
// mirrors the image.
func (b *Builder) TexturedRect(x, y, w, h float32, uv UV, c gpu.Color) {
	x, y, w, h, ok := normRect(x, y, w, h)
	if !ok {
		return
	}
	base := b.base()
	b.vertex(Pt(x, y), uv.U0, uv.V0, c)
	b.vertex(Pt(x+w, y), uv.U1, uv.V0, c)
	b.vertex(Pt(x+w, y+h), uv.U1, uv.V1, c)
	b.vertex(Pt(x, y+h), uv.U0, uv.V1, c)
	b.quadIdx(base)
}

// GradientRect appends a rectangle with one color per corner, in the order
// top-left, top-right, bottom-right, bottom-left. Colors interpolate
// bilinearly across the two triangles.
func (b *Builder) GradientRect(x, y, w, h float32, corners [4]gpu.Color) {
	x, y, w, h, ok := normRect(x, y, w, h)
	if !ok {
		return
	}
	base := b.base()
	b.vertex(Pt(x, y), 0, 0, corners[0])
	b.vertex(Pt(x+w, y), 0, 0, corners[1])
	b.vertex(Pt(x+w, y+h), 0, 0, corners[2])
	b.vertex(Pt(x, y+h), 0, 0, corners[3])
	b.quadIdx(base)
}

// StrokeRect appends a rectangular frame of the given thickness drawn
// inside the rectangle. A frame thick enough to close the interior
// degrades to a filled rectangle.
func (b *Builder) StrokeRect(x, y, w, h, thickness float32, c gpu.Color) {
	x, y, w, h, ok := normRect(x, y, w, h)
	if !ok || thickness <= 0 {
		return
	}
	if 2*thickness >= w || 2*thickness >= h {
		b.Rect(x, y, w, h, c)
		return
	}
	t := thickness
	outer := [4]Point{Pt(x, y), Pt(x+w, y), Pt(x+w, y+h), Pt(x, y+h)}
	inner := [4]Point{Pt(x+t, y+t), Pt(x+w-t, y+t), Pt(x+w-t, y+h-t), Pt(x+t, y+h-t)}
	b.ring(outer[:], inner[:], c)
}

// ring joins two closed outlines with the same point count into a band.
func (b *Builder) ring(outer, inner []Point, c gpu.Color) {
	n := uint32(len(outer))
	base := b.base()
	for _, p := range outer {
		b.vertex(p, 0, 0, c)
	}
	for _, p := range inner {
		b.vertex(p, 0, 0, c)
	}
	for i := uint32(0); i < n; i++ {
		j := (i + 1) % n
		b.solidTri(base+i, base+j, base+n+i)
		b.solidTri(base+j, base+n+j, base+n+i)
	}
}

// RoundedRect appends a rectangle with circular corners. The radius is
// clamped to half the shorter side; a radius of zero is a plain rectangle.
// segments is the number of segments per corner, or zero to derive it from
// the radius.
func (b *Builder) RoundedRect(x, y, w, h, radius float32, segments int, c gpu.Color) {
	x, y, w, h, ok := normRect(x, y, w, h)
	if !ok {
		return
	}
	radius = min(radius, w/2, h/2)
	if radius <= 0 {
		b.Rect(x, y, w, h, c)
		return
	}
	if segments <= 0 {
		segments = max(b.SegmentsFor(radius)/4, 2)
	}
	outline := roundedOutline(x, y, w, h, radius, segments)
	b.fan(Pt(x+w/2, y+h/2), outline, c, true)
}

// StrokeRoundedRect appends the outline of a rounded rectangle drawn
// inside its bounds.
func (b *Builder) StrokeRoundedRect(x, y, w, h, radius, thickness float32, segments int, c gpu.Color) {
	x, y, w, h, ok := normRect(x, y, w, h)
	if !ok || thickness <= 0 {
		return
	}
	radius = min(radius, w/2, h/2)
	if 2*thickness >= w || 2*thickness >= h {
		b.RoundedRect(x, y, w, h, radius, segments, c)
		return
	}
	if radius <= 0 {
		b.StrokeRect(x, y, w, h, thickness, c)
		return
	}
	if segments <= 0 {
		segments = max(b.SegmentsFor(radius)/4, 2)
	}
	t := thickness
	outer := roundedOutline(x, y, w, h, radius, segments)
	inner := roundedOutline(x+t, y+t, w-2*t, h-2*t, max(radius-t, 0), segments)
	b.ring(outer, inner, c)
}

// roundedOutline returns the clockwise outline of a rounded rectangle,
// segments+1 points per corner starting at the top-right corner.
func roundedOutline(x, y, w, h, r float32, segments int) []Point {
	centers := [4]Point{
		Pt(x+w-r, y+r),
		Pt(x+w-r, y+h-r),
		Pt(x+r, y+h-r),
		Pt(x+r, y+r),
	}
	out := make([]Point, 0, 4*(segments+1))
	for k, ctr := range centers {
		start := -math32.Pi/2 + float32(k)*math32.Pi/2
		for i := 0; i <= segments; i++ {
			a := start + float32(i)/float32(segments)*math32.Pi/2
			out = append(out, Pt(ctr.X+r*math32.Cos(a), ctr.Y+r*math32.Sin(a)))
		}
	}
	return out
}
