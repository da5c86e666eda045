package tess

import (
	"github.com/chewxy/math32"
	"github.com/gogpu/quad/gpu"
)

// DefaultTolerance is the default maximum chord error in pixels.
const DefaultTolerance = 0.25

// Segment count bounds for a full circle.
const (
	MinSegments = 8
	MaxSegments = 256
)

// SegmentsFor returns the number of segments for a full circle of radius r
// such that no chord deviates from the circle by more than the builder's
// tolerance.
func (b *Builder) SegmentsFor(r float32) int {
	tol := b.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	if r <= tol {
		return MinSegments
	}
	step := math32.Acos(1 - tol/r)
	if step <= math32.Pi/MaxSegments {
		return MaxSegments
	}
	n := int(math32.Ceil(math32.Pi / step))
	return min(max(n, MinSegments), MaxSegments)
}

// Circle appends a filled circle.
func (b *Builder) Circle(cx, cy, r float32, segments int, c gpu.Color) {
	b.Ellipse(cx, cy, r, r, segments, c)
}

// Ellipse appends a filled axis-aligned ellipse. segments <= 0 derives the
// count from the larger radius.
func (b *Builder) Ellipse(cx, cy, rx, ry float32, segments int, c gpu.Color) {
	if rx <= 0 || ry <= 0 {
		return
	}
	if segments <= 0 {
		segments = b.SegmentsFor(max(rx, ry))
	}
	b.fan(Pt(cx, cy), ellipsePoints(cx, cy, rx, ry, 0, 2*math32.Pi, segments, false), c, true)
}

// Arc appends a filled circular sector (pie slice) from angle a0 to a1,
// in radians, clockwise on screen for a1 > a0. A sweep of a full turn or
// more is a circle. segments is the count for a full circle; the sector
// uses a proportional share of it.
func (b *Builder) Arc(cx, cy, r, a0, a1 float32, segments int, c gpu.Color) {
	sweep := a1 - a0
	if r <= 0 || sweep == 0 {
		return
	}
	if math32.Abs(sweep) >= 2*math32.Pi {
		b.Circle(cx, cy, r, segments, c)
		return
	}
	if segments <= 0 {
		segments = b.SegmentsFor(r)
	}
	n := max(int(math32.Ceil(float32(segments)*math32.Abs(sweep)/(2*math32.Pi))), 1)
	b.fan(Pt(cx, cy), ellipsePoints(cx, cy, r, r, a0, sweep, n, true), c, false)
}

// ArcPoints returns the points of a circular arc for use as a polyline.
func (b *Builder) ArcPoints(cx, cy, r, a0, a1 float32, segments int) []Point {
	sweep := a1 - a0
	if r <= 0 || sweep == 0 {
		return nil
	}
	if segments <= 0 {
		segments = b.SegmentsFor(r)
	}
	n := max(int(math32.Ceil(float32(segments)*math32.Abs(sweep)/(2*math32.Pi))), 1)
	return ellipsePoints(cx, cy, r, r, a0, sweep, n, true)
}

// StrokeEllipse appends an elliptical ring centered on the ellipse outline.
// A ring wider than the smaller radius degrades to a filled ellipse.
func (b *Builder) StrokeEllipse(cx, cy, rx, ry, thickness float32, segments int, c gpu.Color) {
	if rx <= 0 || ry <= 0 || thickness <= 0 {
		return
	}
	hw := thickness / 2
	if hw >= min(rx, ry) {
		b.Ellipse(cx, cy, rx+hw, ry+hw, segments, c)
		return
	}
	if segments <= 0 {
		segments = b.SegmentsFor(max(rx, ry) + hw)
	}
	outer := ellipsePoints(cx, cy, rx+hw, ry+hw, 0, 2*math32.Pi, segments, false)
	inner := ellipsePoints(cx, cy, rx-hw, ry-hw, 0, 2*math32.Pi, segments, false)
	b.ring(outer, inner, c)
}

// StrokeCircle appends a circular ring.
func (b *Builder) StrokeCircle(cx, cy, r, thickness float32, segments int, c gpu.Color) {
	b.StrokeEllipse(cx, cy, r, r, thickness, segments, c)
}

// ellipsePoints samples n segments of an ellipse starting at angle a0.
// When closedEnd is set the final point at a0+sweep is included.
func ellipsePoints(cx, cy, rx, ry, a0, sweep float32, n int, closedEnd bool) []Point {
	count := n
	if closedEnd {
		count++
	}
	pts := make([]Point, count)
	for i := range pts {
		a := a0 + sweep*float32(i)/float32(n)
		pts[i] = Pt(cx+rx*math32.Cos(a), cy+ry*math32.Sin(a))
	}
	return pts
}
