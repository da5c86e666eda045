// Package text shapes strings into positioned glyphs backed by the glyph
// atlas of a resource.Manager.
//
// The pipeline has three pluggable stages:
//
//   - Engine: maps a string to glyph IDs, advances and offsets
//     (HarfbuzzEngine by default, SFNTEngine as a lightweight fallback)
//   - Rasterizer: renders one glyph to a coverage mask (SFNTRasterizer)
//   - Shaper: ties both to the atlas and returns a Run
//
// # Example usage
//
//	shaper := text.NewShaper(manager.Atlas())
//	run, err := shaper.Shape("Hello, quad!", text.DefaultFont(), 24)
//	if err != nil {
//	    return err
//	}
//	for g := range run.Glyphs() {
//	    // g.Rect, g.UV, g.Bearing...
//	}
//
// A Run is valid for the atlas generation it was shaped against. When the
// atlas repacks, shape again or re-resolve glyphs with Shaper.Resolve.
//
// Shaper and Font are not safe for concurrent use.
package text
