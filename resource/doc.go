// Package resource owns every GPU texture quad draws with.
//
// A [Manager] hands out [TextureHandle] values instead of device texture
// IDs. Handles carry a generation, so a handle used after [Manager.Release]
// is detected instead of silently aliasing a recycled slot. The manager
// keeps enough source data (pixels, encoded image bytes, glyph bitmaps) to
// re-create every live texture on a new device after a context loss; see
// [Manager.Rebuild].
//
// The [GlyphAtlas] packs rasterized glyphs into one texture. When it runs
// out of room it grows by doubling, and at its size cap it evicts the least
// recently used glyphs that were not used in the current frame. Either way
// every live glyph moves, and [GlyphAtlas.Generation] increases: atlas
// rectangles obtained under an older generation must be looked up again.
package resource
