package pack

import (
	"image"
	"testing"
)

func TestShelfAllocateNoOverlap(t *testing.T) {
	p := NewShelf(64, 64, 1)
	var got []image.Rectangle
	sizes := [][2]int{{10, 12}, {20, 8}, {30, 12}, {15, 15}, {40, 10}, {8, 8}}
	for _, s := range sizes {
		r, ok := p.Allocate(s[0], s[1])
		if !ok {
			t.Fatalf("Allocate(%d,%d) failed", s[0], s[1])
		}
		if r.Dx() != s[0] || r.Dy() != s[1] {
			t.Errorf("Allocate(%d,%d) = %v, wrong size", s[0], s[1], r)
		}
		if !r.In(image.Rect(0, 0, 64, 64)) {
			t.Errorf("rect %v outside area", r)
		}
		for _, prev := range got {
			if r.Overlaps(prev) {
				t.Errorf("rect %v overlaps %v", r, prev)
			}
		}
		got = append(got, r)
	}
}

func TestShelfFull(t *testing.T) {
	p := NewShelf(16, 16, 0)
	for i := 0; i < 4; i++ {
		if _, ok := p.Allocate(8, 8); !ok {
			t.Fatalf("allocation %d failed", i)
		}
	}
	if _, ok := p.Allocate(1, 1); ok {
		t.Error("allocation in full area succeeded")
	}
	if p.Utilization() != 1 {
		t.Errorf("Utilization = %v, want 1", p.Utilization())
	}
}

func TestShelfTooLarge(t *testing.T) {
	p := NewShelf(16, 16, 1)
	if _, ok := p.Allocate(16, 4); ok {
		t.Error("16-wide rect with padding fit in 16-wide area")
	}
	if p.Fits(16, 4) {
		t.Error("Fits(16,4) = true")
	}
	if !p.Fits(15, 15) {
		t.Error("Fits(15,15) = false")
	}
	if _, ok := p.Allocate(0, 4); ok {
		t.Error("zero-width allocation succeeded")
	}
}

func TestShelfReset(t *testing.T) {
	p := NewShelf(8, 8, 0)
	p.Allocate(8, 8)
	p.Reset(16, 8)
	if w, h := p.Size(); w != 16 || h != 8 {
		t.Errorf("Size = %dx%d, want 16x8", w, h)
	}
	r, ok := p.Allocate(16, 8)
	if !ok || r != image.Rect(0, 0, 16, 8) {
		t.Errorf("Allocate after Reset = %v, %v", r, ok)
	}
}
