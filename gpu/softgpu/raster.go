package softgpu

import (
	"image"
	"math"

	"github.com/gogpu/quad/gpu"
)

// fillTriangle rasterizes one triangle with barycentric interpolation of
// UV and color. Pixels whose centers lie exactly on a shared edge belong to
// the triangle for which that edge is a top or left edge, so adjacent
// triangles never blend a pixel twice.
func (d *Device) fillTriangle(v0, v1, v2 gpu.Vertex, tex *texture, blend gpu.BlendMode, clip image.Rectangle) {
	area := edge(v0.X, v0.Y, v1.X, v1.Y, v2.X, v2.Y)
	if area == 0 {
		return
	}
	if area < 0 {
		v1, v2 = v2, v1
		area = -area
	}

	minX := max(int(math.Floor(float64(min(v0.X, v1.X, v2.X)))), clip.Min.X)
	maxX := min(int(math.Ceil(float64(max(v0.X, v1.X, v2.X)))), clip.Max.X)
	minY := max(int(math.Floor(float64(min(v0.Y, v1.Y, v2.Y)))), clip.Min.Y)
	maxY := min(int(math.Ceil(float64(max(v0.Y, v1.Y, v2.Y)))), clip.Max.Y)
	if minX >= maxX || minY >= maxY {
		return
	}

	tl0 := topLeft(v1, v2)
	tl1 := topLeft(v2, v0)
	tl2 := topLeft(v0, v1)

	for py := minY; py < maxY; py++ {
		cy := float32(py) + 0.5
		for px := minX; px < maxX; px++ {
			cx := float32(px) + 0.5
			w0 := edge(v1.X, v1.Y, v2.X, v2.Y, cx, cy)
			w1 := edge(v2.X, v2.Y, v0.X, v0.Y, cx, cy)
			w2 := edge(v0.X, v0.Y, v1.X, v1.Y, cx, cy)
			if !covers(w0, tl0) || !covers(w1, tl1) || !covers(w2, tl2) {
				continue
			}
			b0, b1, b2 := w0/area, w1/area, w2/area
			src := [4]float32{
				b0*v0.R + b1*v1.R + b2*v2.R,
				b0*v0.G + b1*v1.G + b2*v2.G,
				b0*v0.B + b1*v1.B + b2*v2.B,
				b0*v0.A + b1*v1.A + b2*v2.A,
			}
			if tex != nil {
				t := tex.sample(b0*v0.U+b1*v1.U+b2*v2.U, b0*v0.V+b1*v1.V+b2*v2.V)
				for i := range src {
					src[i] *= t[i]
				}
			}
			d.blendPixel(px, py, src, blend)
		}
	}
}

// edge is the signed parallelogram area of (a, b, p). It is positive when
// p lies to the right of a->b in y-down coordinates.
func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func topLeft(a, b gpu.Vertex) bool {
	return (a.Y == b.Y && b.X > a.X) || b.Y < a.Y
}

func covers(w float32, topLeft bool) bool {
	return w > 0 || (w == 0 && topLeft)
}

func (t *texture) sample(u, v float32) [4]float32 {
	x := clampInt(int(math.Floor(float64(u*float32(t.w)))), 0, t.w-1)
	y := clampInt(int(math.Floor(float64(v*float32(t.h)))), 0, t.h-1)
	i := (y*t.w + x) * 4
	return [4]float32{
		float32(t.pix[i]) / 255,
		float32(t.pix[i+1]) / 255,
		float32(t.pix[i+2]) / 255,
		float32(t.pix[i+3]) / 255,
	}
}

// blendPixel applies the fixed-function equation for mode.
func (d *Device) blendPixel(x, y int, src [4]float32, mode gpu.BlendMode) {
	i := d.target.PixOffset(x, y)
	p := d.target.Pix[i : i+4 : i+4]
	dst := [4]float32{float32(p[0]) / 255, float32(p[1]) / 255, float32(p[2]) / 255, float32(p[3]) / 255}
	sa := src[3]

	var out [4]float32
	switch mode {
	case gpu.BlendOpaque:
		out = src
	case gpu.BlendAdditive:
		for c := 0; c < 3; c++ {
			out[c] = src[c]*sa + dst[c]
		}
		out[3] = sa + dst[3]
	case gpu.BlendPremultiplied:
		for c := 0; c < 3; c++ {
			out[c] = src[c] + dst[c]*(1-sa)
		}
		out[3] = sa + dst[3]*(1-sa)
	default:
		for c := 0; c < 3; c++ {
			out[c] = src[c]*sa + dst[c]*(1-sa)
		}
		out[3] = sa + dst[3]*(1-sa)
	}
	for c := range out {
		p[c] = unorm8(out[c])
	}
}

func unorm8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
