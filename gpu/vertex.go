package gpu

// Vertex is the single vertex layout used by every batch.
//
// Memory layout (32 bytes):
//
//	X, Y        float32  position in target pixels   offset 0
//	U, V        float32  texture coordinate          offset 8
//	R, G, B, A  float32  straight-alpha color        offset 16
type Vertex struct {
	X, Y       float32
	U, V       float32
	R, G, B, A float32
}

// VertexStride is the size of Vertex in bytes.
const VertexStride = 32

// Color is a straight-alpha RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Opaque reports whether the color has full alpha.
func (c Color) Opaque() bool { return c.A >= 1 }

// WithColor returns v with its color replaced.
func (v Vertex) WithColor(c Color) Vertex {
	v.R, v.G, v.B, v.A = c.R, c.G, c.B, c.A
	return v
}

// Color returns the vertex color.
func (v Vertex) Color() Color {
	return Color{R: v.R, G: v.G, B: v.B, A: v.A}
}
