package tess

import "github.com/gogpu/quad/gpu"

// Triangle appends a single triangle. Collinear points append nothing.
func (b *Builder) Triangle(p0, p1, p2 Point, c gpu.Color) {
	if p1.sub(p0).cross(p2.sub(p0)) == 0 {
		return
	}
	base := b.base()
	b.vertex(p0, 0, 0, c)
	b.vertex(p1, 0, 0, c)
	b.vertex(p2, 0, 0, c)
	b.tri(base, base+1, base+2)
}

// Polygon appends a filled simple polygon using ear clipping.
//
// The polygon may be concave and in either winding order. It must not
// intersect itself: self-intersecting input produces an unspecified
// triangulation. Fewer than three distinct points, or points that are all
// collinear, append nothing. Collinear vertices are removed without
// emitting a triangle, so every appended triangle has non-zero area.
func (b *Builder) Polygon(pts []Point, c gpu.Color) {
	pts = dedupe(pts, true)
	if len(pts) < 3 {
		return
	}
	area := signedArea(pts)
	if area == 0 {
		return
	}
	orient := float64(1)
	if area < 0 {
		orient = -1
	}

	base := b.base()
	for _, p := range pts {
		b.vertex(p, 0, 0, c)
	}

	// idx is the remaining polygon as indices into pts.
	idx := make([]int, len(pts))
	for i := range idx {
		idx[i] = i
	}

	for len(idx) > 3 {
		n := len(idx)
		clipped := false
		fallback := -1
		for i := 0; i < n; i++ {
			prev, cur, next := idx[(i+n-1)%n], idx[i], idx[(i+1)%n]
			turn := orient * cross3(pts[prev], pts[cur], pts[next])
			if turn == 0 {
				// Collinear: drop the vertex, it bounds no area.
				idx = append(idx[:i], idx[i+1:]...)
				clipped = true
				break
			}
			if turn < 0 {
				continue
			}
			if fallback < 0 {
				fallback = i
			}
			if containsOther(pts, idx, prev, cur, next) {
				continue
			}
			b.tri(base+uint32(prev), base+uint32(cur), base+uint32(next))
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if clipped {
			continue
		}
		// No ear was found, which happens only for self-intersecting
		// input. Clip the first convex vertex to guarantee progress.
		if fallback < 0 {
			return
		}
		i := fallback
		prev, cur, next := idx[(i+n-1)%n], idx[i], idx[(i+1)%n]
		b.tri(base+uint32(prev), base+uint32(cur), base+uint32(next))
		idx = append(idx[:i], idx[i+1:]...)
	}
	if cross3(pts[idx[0]], pts[idx[1]], pts[idx[2]]) != 0 {
		b.tri(base+uint32(idx[0]), base+uint32(idx[1]), base+uint32(idx[2]))
	}
}

// signedArea returns twice the signed area of a closed polygon.
func signedArea(pts []Point) float64 {
	var a float64
	for i := range pts {
		p, q := pts[i], pts[(i+1)%len(pts)]
		a += float64(p.X)*float64(q.Y) - float64(q.X)*float64(p.Y)
	}
	return a
}

// PolygonArea returns the absolute area of a closed polygon.
func PolygonArea(pts []Point) float64 {
	a := signedArea(pts) / 2
	if a < 0 {
		return -a
	}
	return a
}

func cross3(a, b, c Point) float64 {
	return (float64(b.X)-float64(a.X))*(float64(c.Y)-float64(a.Y)) -
		(float64(b.Y)-float64(a.Y))*(float64(c.X)-float64(a.X))
}

// containsOther reports whether any remaining vertex other than the
// triangle's corners lies inside or on the triangle (a, b, c).
func containsOther(pts []Point, idx []int, a, b, c int) bool {
	pa, pb, pc := pts[a], pts[b], pts[c]
	for _, k := range idx {
		if k == a || k == b || k == c {
			continue
		}
		p := pts[k]
		if p == pa || p == pb || p == pc {
			continue
		}
		if inTriangle(p, pa, pb, pc) {
			return true
		}
	}
	return false
}

func inTriangle(p, a, b, c Point) bool {
	d1 := cross3(a, b, p)
	d2 := cross3(b, c, p)
	d3 := cross3(c, a, p)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}
