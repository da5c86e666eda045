package text

// ShapedGlyph is one glyph produced by an Engine, in pixels.
type ShapedGlyph struct {
	// GlyphID is the glyph index in the font.
	GlyphID uint32

	// Cluster is the byte offset in the source string of the first
	// character this glyph represents.
	Cluster int

	// Advance is the horizontal pen advance after this glyph.
	Advance float64

	// XOffset and YOffset adjust the glyph from the pen position, y down.
	XOffset, YOffset float64
}

// Engine converts a string into glyphs in visual order.
type Engine interface {
	Shape(s string, f *Font, size float64) ([]ShapedGlyph, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(s string, f *Font, size float64) ([]ShapedGlyph, error)

// Shape implements Engine.
func (fn EngineFunc) Shape(s string, f *Font, size float64) ([]ShapedGlyph, error) {
	return fn(s, f, size)
}
