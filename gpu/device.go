package gpu

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
)

// Device errors.
var (
	// ErrDeviceLost is returned by any Device method once the underlying
	// context is gone. Recovery requires a new Device and a resource rebuild.
	ErrDeviceLost = errors.New("gpu: device lost")

	// ErrUnknownTexture is returned when a TextureID was never created on
	// this device or was already destroyed.
	ErrUnknownTexture = errors.New("gpu: unknown texture")

	// ErrUnsupportedFormat is returned for texture formats the backend
	// cannot sample.
	ErrUnsupportedFormat = errors.New("gpu: unsupported texture format")

	// ErrInvalidDrawCall is returned when a DrawCall is malformed.
	ErrInvalidDrawCall = errors.New("gpu: invalid draw call")
)

// TextureID identifies a texture on one Device. IDs are not portable
// between devices. The zero value means "no texture"; backends bind a
// white texel for it so solid geometry samples as the vertex color.
type TextureID uint32

// NoTexture is the zero TextureID.
const NoTexture TextureID = 0

// MaxIndexedVertices is the number of vertices addressable by a uint16
// index buffer.
const MaxIndexedVertices = 1 << 16

// TextureDescriptor describes a texture to create.
type TextureDescriptor struct {
	// Label is an optional debug name.
	Label string

	// Width and Height are the texture size in texels.
	Width, Height int

	// Format is the texel format. Only RGBA8Unorm is required of backends.
	Format gputypes.TextureFormat
}

// Validate reports whether the descriptor can be created.
func (d TextureDescriptor) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("gpu: texture %q has invalid size %dx%d", d.Label, d.Width, d.Height)
	}
	if d.Format != gputypes.TextureFormatRGBA8Unorm {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, d.Format)
	}
	return nil
}

// DrawCall is one batch of indexed triangles sharing texture, blend and
// clip state.
type DrawCall struct {
	// Vertices are positioned in physical target pixels.
	Vertices []Vertex

	// Indices form a triangle list into Vertices.
	Indices []uint16

	// Texture is sampled with each vertex UV and multiplied by the vertex
	// color. NoTexture samples as opaque white.
	Texture TextureID

	// Blend selects how fragments combine with the target.
	Blend BlendMode

	// Clip is the scissor rectangle in target pixels. It is ignored unless
	// HasClip is set.
	Clip    image.Rectangle
	HasClip bool
}

// Validate checks index bounds and triangle completeness.
func (c *DrawCall) Validate() error {
	if len(c.Vertices) > MaxIndexedVertices {
		return fmt.Errorf("%w: %d vertices exceed uint16 indexing", ErrInvalidDrawCall, len(c.Vertices))
	}
	if len(c.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a triangle list", ErrInvalidDrawCall, len(c.Indices))
	}
	n := len(c.Vertices)
	for i, idx := range c.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%w: index %d at %d out of range [0,%d)", ErrInvalidDrawCall, idx, i, n)
		}
	}
	return nil
}

// Device is the GPU abstraction quad renders through.
//
// The call sequence for a frame is Clear (optional), any number of
// SubmitDraw calls in painter's order, then Present. Texture calls may
// happen at any time between frames or inside one. Destroying a texture
// that submitted draws still use takes effect for later calls at once;
// the submitted draws keep sampling it until Present.
type Device interface {
	// CreateTexture allocates a texture. Its contents are undefined until
	// uploaded.
	CreateTexture(desc TextureDescriptor) (TextureID, error)

	// UploadTextureRegion copies tightly packed RGBA8 pixels into region.
	UploadTextureRegion(id TextureID, region image.Rectangle, pixels []byte) error

	// DestroyTexture releases a texture. Unknown IDs are ignored.
	DestroyTexture(id TextureID)

	// Clear sets the color the next frame starts from and drops draws
	// submitted so far in the current frame.
	Clear(c Color) error

	// SubmitDraw records a batch. Backends may render immediately or defer
	// until Present, but must preserve submission order.
	SubmitDraw(call DrawCall) error

	// Present finishes the frame and makes it visible.
	Present() error

	// Resize changes the render target size in physical pixels.
	Resize(width, height int) error

	// Size returns the render target size in physical pixels.
	Size() image.Point
}
