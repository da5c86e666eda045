package quad

import (
	"math"

	"github.com/gogpu/quad/gpu"
	"github.com/gogpu/quad/internal/tess"
)

func pick(opts []DrawOptions) *DrawOptions {
	if len(opts) == 0 {
		return nil
	}
	return &opts[len(opts)-1]
}

// begin resets the builder for a new shape and reports whether drawing is
// active.
func (g *Graphics) begin() bool {
	if !g.active() {
		return false
	}
	g.build.Reset()
	return true
}

// solid submits the built mesh as an untextured shape of color c.
func (g *Graphics) solid(c Color, opts []DrawOptions) {
	g.submit(gpu.NoTexture, c.Opaque(), pick(opts))
}

func f32(v float64) float32 { return float32(v) }

// FillRect fills the rectangle with top-left corner (x, y).
func (g *Graphics) FillRect(x, y, w, h float64, c Color, opts ...DrawOptions) {
	if !g.begin() {
		return
	}
	g.build.Rect(f32(x), f32(y), f32(w), f32(h), c.gpu())
	g.solid(c, opts)
}

// StrokeRect draws a rectangle outline of the given thickness inside the
// rectangle.
func (g *Graphics) StrokeRect(x, y, w, h, thickness float64, c Color, opts ...DrawOptions) {
	if !g.begin() {
		return
	}
	g.build.StrokeRect(f32(x), f32(y), f32(w), f32(h), f32(thickness), c.gpu())
	g.solid(c, opts)
}

// FillRectGradient fills a rectangle with one color per corner, in the
// order top-left, top-right, bottom-right, bottom-left.
func (g *Graphics) FillRectGradient(x, y, w, h float64, corners [4]Color, opts ...DrawOptions) {
	if !g.begin() {
		return
	}
	var gc [4]gpu.Color
	opaque := true
	for i, c := range corners {
		gc[i] = c.gpu()
		opaque = opaque && c.Opaque()
	}
	g.build.GradientRect(f32(x), f32(y), f32(w), f32(h), gc)
	g.submit(gpu.NoTexture, opaque, pick(opts))
}

// FillRoundedRect fills a rectangle with circular corners of radius r.
func (g *Graphics) FillRoundedRect(x, y, w, h, r float64, c Color, opts ...DrawOptions) {
	if !g.begin() {
		return
	}
	g.build.RoundedRect(f32(x), f32(y), f32(w), f32(h), f32(r), g.cornerSegments(r), c.gpu())
	g.solid(c, opts)
}

// StrokeRoundedRect draws a rounded rectangle outline inside the
// rectangle.
func (g *Graphics) StrokeRoundedRect(x, y, w, h, r, thickness float64, c Color, opts ...DrawOptions) {
	if !g.begin() {
		return
	}
	g.build.StrokeRoundedRect(f32(x), f32(y), f32(w), f32(h), f32(r), f32(thickness), g.cornerSegments(r), c.gpu())
	g.solid(c, opts)
}

func (g *Graphics) cornerSegments(r float64) int {
	return max(g.segments(r)/4, 2)
}

// FillCircle fills a circle. The segment count follows from the radius
// and the configured tolerance.
func (g *Graphics) FillCircle(cx, cy, r float64, c Color, opts ...DrawOptions) {
	g.FillCircleSegments(cx, cy, r, 0, c, opts...)
}

// FillCircleSegments fills a circle approximated by the given number of
// segments; segments <= 0 picks one from the radius.
func (g *Graphics) FillCircleSegments(cx, cy, r float64, segments int, c Color, opts ...DrawOptions) {
	if !g.begin() {
		return
	}
	if segments <= 0 {
		segments = g.segments(r)
	}
	g.build.Circle(f32(cx), f32(cy), f32(r), segments, c.gpu())
	g.solid(c, opts)
}

// StrokeCircle draws a circle outline centered on the radius.
func (g *Graphics) StrokeCircle(cx, cy, r, thickness float64, c Color, opts ...DrawOptions) {
	if !g.begin() {
		return
	}
	g.build.StrokeCircle(f32(cx), f32(cy), f32(r), f32(thickness), g.segments(r+thickness/2), c.gpu())
	g.solid(c, opts)
}

// FillEllipse fills an axis-aligned ellipse.
func (g *Graphics) FillEllipse(cx, cy, rx, ry float64, c Color, opts ...DrawOptions) {
	if !g.begin() {
		return
	}
	g.build.Ellipse(f32(cx), f32(cy), f32(rx), f32(ry), g.segments(max(rx, ry)), c.gpu())
	g.solid(c, opts)
}

// StrokeEllipse draws an axis-aligned ellipse outline.
func (g *Graphics) StrokeEllipse(cx, cy, rx, ry, thickness float64, c Color, opts ...DrawOptions) {
	if !g.begin() {
		return
	}
	g.build.StrokeEllipse(f32(cx), f32(cy), f32(rx), f32(ry), f32(thickness), g.segments(max(rx, ry)), c.gpu())
	g.solid(c, opts)
}

// FillArc fills the circular sector from angle a0 to a1 in radians,
// clockwise on screen.
func (g *Graphics) FillArc(cx, cy, r, a0, a1 float64, c Color, opts ...DrawOptions) {
	if !g.begin() {
		return
	}
	g.build.Arc(f32(cx), f32(cy), f32(r), f32(a0), f32(a1), g.segments(r), c.gpu())
	g.solid(c, opts)
}

// StrokeArc draws the arc from angle a0 to a1 as a line.
func (g *Graphics) StrokeArc(cx, cy, r, a0, a1, width float64, c Color, opts ...DrawOptions) {
	if !g.begin() {
		return
	}
	pts := g.build.ArcPoints(f32(cx), f32(cy), f32(r), f32(a0), f32(a1), g.segments(r))
	g.build.Polyline(pts, f32(width), false, g.dash.tess(), c.gpu())
	g.solid(c, opts)
}

// FillTriangle fills the triangle p0 p1 p2.
func (g *Graphics) FillTriangle(p0, p1, p2 Point, c Color, opts ...DrawOptions) {
	if !g.begin() {
		return
	}
	g.build.Triangle(p0.tess(), p1.tess(), p2.tess(), c.gpu())
	g.solid(c, opts)
}

// StrokeTriangle draws the outline of the triangle p0 p1 p2.
func (g *Graphics) StrokeTriangle(p0, p1, p2 Point, width float64, c Color, opts ...DrawOptions) {
	g.StrokePolygon([]Point{p0, p1, p2}, width, c, opts...)
}

// FillPolygon fills a simple polygon, convex or concave. Self-intersecting
// polygons are not supported and render unpredictably. Fewer than three
// distinct points draw nothing.
func (g *Graphics) FillPolygon(pts []Point, c Color, opts ...DrawOptions) {
	if !g.begin() {
		return
	}
	g.build.Polygon(tessPoints(pts), c.gpu())
	g.solid(c, opts)
}

// StrokePolygon draws the closed outline through pts.
func (g *Graphics) StrokePolygon(pts []Point, width float64, c Color, opts ...DrawOptions) {
	if !g.begin() {
		return
	}
	g.build.Polyline(tessPoints(pts), f32(width), true, g.dash.tess(), c.gpu())
	g.solid(c, opts)
}

// FillRegularPolygon fills a regular polygon with the given number of
// sides inscribed in a circle of radius r. rotation is in radians; zero
// puts a vertex straight up.
func (g *Graphics) FillRegularPolygon(cx, cy, r float64, sides int, rotation float64, c Color, opts ...DrawOptions) {
	if sides < 3 {
		return
	}
	pts := make([]Point, sides)
	for i := range pts {
		a := rotation - math.Pi/2 + 2*math.Pi*float64(i)/float64(sides)
		sin, cos := math.Sincos(a)
		pts[i] = Pt(cx+r*cos, cy+r*sin)
	}
	g.FillPolygon(pts, c, opts...)
}

// DrawLine draws a line from (x0, y0) to (x1, y1) with butt caps, using
// the current dash pattern.
func (g *Graphics) DrawLine(x0, y0, x1, y1, width float64, c Color, opts ...DrawOptions) {
	if !g.begin() {
		return
	}
	g.build.Line(tess.Pt(f32(x0), f32(y0)), tess.Pt(f32(x1), f32(y1)), f32(width), g.dash.tess(), c.gpu())
	g.solid(c, opts)
}

// DrawPolyline draws connected line segments through pts with bevel
// joins. closed also connects the last point to the first.
func (g *Graphics) DrawPolyline(pts []Point, width float64, closed bool, c Color, opts ...DrawOptions) {
	if !g.begin() {
		return
	}
	g.build.Polyline(tessPoints(pts), f32(width), closed, g.dash.tess(), c.gpu())
	g.solid(c, opts)
}
