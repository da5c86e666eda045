package tess

import (
	"github.com/chewxy/math32"
	"github.com/gogpu/quad/gpu"
)

// Dash is an on/off pattern along a stroke. Pattern alternates dash and
// gap lengths and is assumed to be even-length with a positive sum; Offset
// is where in the pattern the stroke starts.
type Dash struct {
	Pattern []float32
	Offset  float32
}

// Line appends a straight segment of the given width with butt caps.
func (b *Builder) Line(p0, p1 Point, width float32, dash *Dash, c gpu.Color) {
	b.Polyline([]Point{p0, p1}, width, false, dash, c)
}

// Polyline appends a stroked path through pts. Segments are joined with
// bevels; ends are butt caps. closed connects the last point to the first.
// A non-nil dash splits the path into dashes before stroking.
func (b *Builder) Polyline(pts []Point, width float32, closed bool, dash *Dash, c gpu.Color) {
	if width <= 0 {
		return
	}
	pts = dedupe(pts, closed)
	if closed && len(pts) > 2 {
		pts = append(pts, pts[0])
	}
	if len(pts) < 2 {
		return
	}
	if dash == nil || len(dash.Pattern) == 0 {
		b.strokeOpen(pts, width, c)
		return
	}
	for _, run := range applyDash(pts, dash) {
		b.strokeOpen(run, width, c)
	}
}

// strokeOpen emits one quad per segment plus a bevel triangle at each
// interior join.
func (b *Builder) strokeOpen(pts []Point, width float32, c gpu.Color) {
	hw := width / 2
	var prevDir Point
	havePrev := false
	for i := 0; i+1 < len(pts); i++ {
		p, q := pts[i], pts[i+1]
		d := q.sub(p)
		l := math32.Hypot(d.X, d.Y)
		if l == 0 {
			continue
		}
		d = d.mul(1 / l)
		n := Pt(-d.Y, d.X).mul(hw)

		if havePrev {
			turn := prevDir.cross(d)
			if turn != 0 {
				s := float32(-1)
				if turn < 0 {
					s = 1
				}
				pn := Pt(-prevDir.Y, prevDir.X).mul(hw * s)
				b.Triangle(p, p.add(pn), p.add(n.mul(s)), c)
			}
		}

		base := b.base()
		b.vertex(p.add(n), 0, 0, c)
		b.vertex(q.add(n), 0, 0, c)
		b.vertex(q.sub(n), 0, 0, c)
		b.vertex(p.sub(n), 0, 0, c)
		b.quadIdx(base)

		prevDir, havePrev = d, true
	}
}

// applyDash cuts a polyline into the runs covered by the pattern's dashes.
func applyDash(pts []Point, dash *Dash) [][]Point {
	pattern := dash.Pattern
	var total float32
	for _, v := range pattern {
		total += v
	}
	if total <= 0 {
		return [][]Point{pts}
	}

	// Locate the starting position inside the pattern.
	off := math32.Mod(dash.Offset, total)
	if off < 0 {
		off += total
	}
	k := 0
	for off >= pattern[k] {
		off -= pattern[k]
		k = (k + 1) % len(pattern)
	}
	remain := pattern[k] - off
	on := k%2 == 0

	var runs [][]Point
	var cur []Point
	if on {
		cur = []Point{pts[0]}
	}
	for i := 0; i+1 < len(pts); i++ {
		p, q := pts[i], pts[i+1]
		segLen := math32.Hypot(q.X-p.X, q.Y-p.Y)
		pos := float32(0)
		for segLen-pos > remain {
			pos += remain
			at := p.lerp(q, pos/segLen)
			if on {
				cur = append(cur, at)
				runs = append(runs, cur)
				cur = nil
			} else {
				cur = []Point{at}
			}
			on = !on
			k = (k + 1) % len(pattern)
			remain = pattern[k]
		}
		remain -= segLen - pos
		if on {
			cur = append(cur, q)
		}
	}
	if on && len(cur) > 1 {
		runs = append(runs, cur)
	}
	return runs
}

// GlyphQuad is one positioned glyph bitmap.
type GlyphQuad struct {
	X, Y, W, H float32
	UV         UV
}

// Glyphs appends one textured quad per glyph.
func (b *Builder) Glyphs(quads []GlyphQuad, c gpu.Color) {
	for _, g := range quads {
		b.TexturedRect(g.X, g.Y, g.W, g.H, g.UV, c)
	}
}
