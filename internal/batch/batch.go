// Package batch coalesces meshes that share pipeline state into as few
// draw calls as possible while preserving submission order.
package batch

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/quad/gpu"
	"github.com/gogpu/quad/internal/tess"
)

// MaxVertices is the largest vertex count one batch can address with
// 16-bit indices.
const MaxVertices = gpu.MaxIndexedVertices - 1

var (
	// ErrFlushed is returned by Append and PatchUV after Flush and before
	// Reset.
	ErrFlushed = errors.New("batch: batcher already flushed")

	// ErrInvalidMesh is returned for a mesh whose indices are out of range
	// or not a whole number of triangles.
	ErrInvalidMesh = errors.New("batch: invalid mesh")

	// ErrInvalidSpan is returned by PatchUV for a span that does not
	// address a quad in the current batches.
	ErrInvalidSpan = errors.New("batch: invalid span")
)

// State is the pipeline state shared by every triangle of a batch.
type State struct {
	Texture gpu.TextureID
	Blend   gpu.BlendMode
	Clip    image.Rectangle
	HasClip bool
}

func (s State) normalized() State {
	if !s.HasClip {
		s.Clip = image.Rectangle{}
	}
	return s
}

// Batch is one future draw call.
type Batch struct {
	State    State
	Vertices []gpu.Vertex
	Indices  []uint16
}

// Span locates the vertices of one appended mesh. Batch is -1 when the
// mesh was empty or split across batches.
type Span struct {
	Batch int
	First int
	Count int
}

// Valid reports whether s addresses vertices.
func (s Span) Valid() bool { return s.Batch >= 0 && s.Count > 0 }

// Batcher accumulates meshes into batches.
//
// A Batcher is either accumulating or flushed. Flush submits and moves to
// flushed; Reset returns to accumulating.
//
// Batcher is not safe for concurrent use.
type Batcher struct {
	maxVertices int
	batches     []Batch
	vertices    int
	flushed     bool
}

// New creates a batcher whose batches hold at most maxVertices vertices.
// Values outside [3, MaxVertices] select MaxVertices.
func New(maxVertices int) *Batcher {
	if maxVertices < 3 || maxVertices > MaxVertices {
		maxVertices = MaxVertices
	}
	return &Batcher{maxVertices: maxVertices}
}

// MaxBatchVertices returns the per-batch vertex cap.
func (b *Batcher) MaxBatchVertices() int { return b.maxVertices }

// Flushed reports whether the batcher is in the flushed state.
func (b *Batcher) Flushed() bool { return b.flushed }

// Batches returns the current batches in submission order. The slice is
// owned by the batcher.
func (b *Batcher) Batches() []Batch { return b.batches }

// VertexCount returns the total number of vertices in all batches.
func (b *Batcher) VertexCount() int { return b.vertices }

// Append adds m with state st. It extends the last batch when the state
// matches and the vertices fit; otherwise it starts a new batch. A mesh
// larger than the vertex cap is split at triangle boundaries.
func (b *Batcher) Append(st State, m tess.Mesh) (Span, error) {
	none := Span{Batch: -1}
	if b.flushed {
		return none, ErrFlushed
	}
	if m.Empty() {
		return none, nil
	}
	if err := check(m); err != nil {
		return none, err
	}
	st = st.normalized()
	if len(m.Vertices) > b.maxVertices {
		b.appendSplit(st, m)
		return none, nil
	}

	cur := b.current(st, len(m.Vertices))
	base := len(cur.Vertices)
	cur.Vertices = append(cur.Vertices, m.Vertices...)
	for _, i := range m.Indices {
		cur.Indices = append(cur.Indices, uint16(base+int(i)))
	}
	b.vertices += len(m.Vertices)
	return Span{Batch: len(b.batches) - 1, First: base, Count: len(m.Vertices)}, nil
}

// current returns the batch to append n vertices with st to, starting a
// new one if needed.
func (b *Batcher) current(st State, n int) *Batch {
	if k := len(b.batches); k > 0 {
		last := &b.batches[k-1]
		if last.State == st && len(last.Vertices)+n <= b.maxVertices {
			return last
		}
	}
	b.batches = append(b.batches, Batch{State: st})
	return &b.batches[len(b.batches)-1]
}

// appendSplit copies m triangle by triangle, remapping indices per batch.
func (b *Batcher) appendSplit(st State, m tess.Mesh) {
	cur := b.current(st, 3)
	remap := make(map[uint32]uint16)
	for t := 0; t+2 < len(m.Indices); t += 3 {
		tri := m.Indices[t : t+3]
		need := 0
		for _, i := range tri {
			if _, ok := remap[i]; !ok {
				need++
			}
		}
		if len(cur.Vertices)+need > b.maxVertices {
			b.batches = append(b.batches, Batch{State: st})
			cur = &b.batches[len(b.batches)-1]
			clear(remap)
		}
		for _, i := range tri {
			j, ok := remap[i]
			if !ok {
				j = uint16(len(cur.Vertices))
				cur.Vertices = append(cur.Vertices, m.Vertices[i])
				remap[i] = j
				b.vertices++
			}
			cur.Indices = append(cur.Indices, j)
		}
	}
}

func check(m tess.Mesh) error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices", ErrInvalidMesh, len(m.Indices))
	}
	n := uint32(len(m.Vertices))
	for _, i := range m.Indices {
		if i >= n {
			return fmt.Errorf("%w: index %d with %d vertices", ErrInvalidMesh, i, n)
		}
	}
	return nil
}

// PatchUV rewrites the texture coordinates of a quad appended with
// tess.Builder.TexturedRect.
func (b *Batcher) PatchUV(s Span, uv tess.UV) error {
	if b.flushed {
		return ErrFlushed
	}
	if s.Batch < 0 || s.Batch >= len(b.batches) || s.Count != 4 ||
		s.First < 0 || s.First+4 > len(b.batches[s.Batch].Vertices) {
		return fmt.Errorf("%w: %+v", ErrInvalidSpan, s)
	}
	v := b.batches[s.Batch].Vertices[s.First : s.First+4]
	v[0].U, v[0].V = uv.U0, uv.V0
	v[1].U, v[1].V = uv.U1, uv.V0
	v[2].U, v[2].V = uv.U1, uv.V1
	v[3].U, v[3].V = uv.U0, uv.V1
	return nil
}

// ReplaceTexture rebinds every batch drawing from texture from to
// texture to.
func (b *Batcher) ReplaceTexture(from, to gpu.TextureID) {
	for i := range b.batches {
		if b.batches[i].State.Texture == from {
			b.batches[i].State.Texture = to
		}
	}
}

// Flush submits every batch to dev in order, then drops them and moves to
// the flushed state, also on error. Clip rectangles are limited to the
// target size; a batch clipped away entirely is skipped.
func (b *Batcher) Flush(dev gpu.Device, target image.Point) error {
	if b.flushed {
		return ErrFlushed
	}
	defer b.drop()
	bounds := image.Rectangle{Max: target}
	for i := range b.batches {
		bt := &b.batches[i]
		call := gpu.DrawCall{
			Vertices: bt.Vertices,
			Indices:  bt.Indices,
			Texture:  bt.State.Texture,
			Blend:    bt.State.Blend,
			Clip:     bt.State.Clip,
			HasClip:  bt.State.HasClip,
		}
		if call.HasClip {
			call.Clip = call.Clip.Intersect(bounds)
			if call.Clip.Empty() {
				continue
			}
		}
		if err := dev.SubmitDraw(call); err != nil {
			return fmt.Errorf("batch: submit batch %d of %d: %w", i+1, len(b.batches), err)
		}
	}
	return nil
}

func (b *Batcher) drop() {
	b.batches = nil
	b.vertices = 0
	b.flushed = true
}

// Reset discards any batches and returns to the accumulating state.
func (b *Batcher) Reset() {
	b.batches = b.batches[:0]
	b.vertices = 0
	b.flushed = false
}
