// Package pack places rectangles into a fixed-size 2D area.
package pack

import "image"

// Shelf packs rectangles in horizontal strips.
//
// Each shelf is as tall as the tallest rectangle placed on it so far.
// Rectangles go left to right on the first shelf with room; when none has
// room a new shelf opens below the last one. Glyph bitmaps of one size are
// close to uniform in height, which is the case this layout serves well.
type Shelf struct {
	width, height int
	padding       int
	shelves       []shelf
	used          int
}

type shelf struct {
	y, height, x int
}

// NewShelf creates a packer for a width x height area. padding pixels are
// kept free to the right of and below every rectangle.
func NewShelf(width, height, padding int) *Shelf {
	return &Shelf{
		width:   width,
		height:  height,
		padding: max(padding, 0),
		shelves: make([]shelf, 0, 16),
	}
}

// Allocate reserves a w x h rectangle. It returns false when the area has
// no room left for it.
func (p *Shelf) Allocate(w, h int) (image.Rectangle, bool) {
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}
	pw, ph := w+p.padding, h+p.padding

	for i := range p.shelves {
		s := &p.shelves[i]
		if s.x+pw > p.width {
			continue
		}
		if h > s.height {
			// Only the last shelf may grow taller.
			if i != len(p.shelves)-1 || s.y+ph > p.height {
				continue
			}
			s.height = h
		}
		r := image.Rect(s.x, s.y, s.x+w, s.y+h)
		s.x += pw
		p.used += w * h
		return r, true
	}

	y := 0
	if n := len(p.shelves); n > 0 {
		last := p.shelves[n-1]
		y = last.y + last.height + p.padding
	}
	if pw > p.width || y+ph > p.height {
		return image.Rectangle{}, false
	}
	p.shelves = append(p.shelves, shelf{y: y, height: h, x: pw})
	p.used += w * h
	return image.Rect(0, y, w, y+h), true
}

// Fits reports whether a w x h rectangle could ever be placed in an empty
// area of this size.
func (p *Shelf) Fits(w, h int) bool {
	return w > 0 && h > 0 && w+p.padding <= p.width && h+p.padding <= p.height
}

// Reset clears all allocations and resizes the area.
func (p *Shelf) Reset(width, height int) {
	p.width, p.height = width, height
	p.shelves = p.shelves[:0]
	p.used = 0
}

// Size returns the area dimensions.
func (p *Shelf) Size() (width, height int) { return p.width, p.height }

// Utilization returns the fraction of the area covered by rectangles.
func (p *Shelf) Utilization() float64 {
	if p.width <= 0 || p.height <= 0 {
		return 0
	}
	return float64(p.used) / float64(p.width*p.height)
}
