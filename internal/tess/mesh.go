// Package tess turns shape descriptions into triangle lists.
//
// Every method of Builder appends to one Mesh in local coordinates. The
// caller transforms the vertices and hands the mesh to the batcher.
// Degenerate input (no area, fewer than three distinct points, zero
// width) appends nothing; drawing nothing is always a valid result.
package tess

import "github.com/gogpu/quad/gpu"

// Point is a 2D position.
type Point struct {
	X, Y float32
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float32) Point { return Point{X: x, Y: y} }

func (p Point) add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) mul(s float32) Point { return Point{p.X * s, p.Y * s} }
func (p Point) cross(q Point) float32 { return p.X*q.Y - p.Y*q.X }
func (p Point) lerp(q Point, t float32) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// UV is a texture sub-rectangle in normalized coordinates.
type UV struct {
	U0, V0, U1, V1 float32
}

// FullUV covers a whole texture.
var FullUV = UV{0, 0, 1, 1}

// Mesh is an indexed triangle list. Indices are 32-bit so that a single
// shape may exceed the 16-bit range of one draw call; the batcher splits
// such meshes at triangle boundaries.
type Mesh struct {
	Vertices []gpu.Vertex
	Indices  []uint32
}

// Empty reports whether the mesh has no triangles.
func (m Mesh) Empty() bool { return len(m.Indices) == 0 }

// TriangleCount returns the number of triangles.
func (m Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// Builder appends tessellated shapes to a mesh.
//
// The zero value is ready to use.
type Builder struct {
	mesh Mesh

	// Tolerance is the maximum distance in pixels between a curve and its
	// polygonal approximation, used when a segment count is not given.
	// Zero means DefaultTolerance.
	Tolerance float32
}

// Reset discards all geometry, keeping allocated capacity.
func (b *Builder) Reset() {
	b.mesh.Vertices = b.mesh.Vertices[:0]
	b.mesh.Indices = b.mesh.Indices[:0]
}

// Mesh returns the accumulated geometry. The slices are reused by the next
// Reset.
func (b *Builder) Mesh() Mesh { return b.mesh }

func (b *Builder) base() uint32 { return uint32(len(b.mesh.Vertices)) }

func (b *Builder) vertex(p Point, u, v float32, c gpu.Color) {
	b.mesh.Vertices = append(b.mesh.Vertices, gpu.Vertex{
		X: p.X, Y: p.Y, U: u, V: v,
		R: c.R, G: c.G, B: c.B, A: c.A,
	})
}

func (b *Builder) tri(i0, i1, i2 uint32) {
	b.mesh.Indices = append(b.mesh.Indices, i0, i1, i2)
}

// solidTri appends a triangle unless its vertices are collinear.
func (b *Builder) solidTri(i0, i1, i2 uint32) {
	v0, v1, v2 := b.mesh.Vertices[i0], b.mesh.Vertices[i1], b.mesh.Vertices[i2]
	if Pt(v1.X-v0.X, v1.Y-v0.Y).cross(Pt(v2.X-v0.X, v2.Y-v0.Y)) == 0 {
		return
	}
	b.tri(i0, i1, i2)
}

// quadIdx appends two triangles covering vertices base..base+3 in order.
func (b *Builder) quadIdx(base uint32) {
	b.tri(base, base+1, base+2)
	b.tri(base, base+2, base+3)
}

// fan triangulates a convex outline around center. When closed is set the
// last point connects back to the first. Consecutive duplicate points are
// dropped and collinear triangles skipped so no triangle has zero area.
func (b *Builder) fan(center Point, outline []Point, c gpu.Color, closed bool) {
	outline = dedupe(outline, closed)
	if len(outline) < 2 {
		return
	}
	base := b.base()
	b.vertex(center, 0, 0, c)
	for _, p := range outline {
		b.vertex(p, 0, 0, c)
	}
	n := uint32(len(outline))
	last := n - 1
	if closed && n > 2 {
		last = n
	}
	for i := uint32(0); i < last; i++ {
		b.solidTri(base, base+1+i, base+1+(i+1)%n)
	}
}

func dedupe(pts []Point, closed bool) []Point {
	out := make([]Point, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	for closed && len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}
