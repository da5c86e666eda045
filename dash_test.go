package quad

import (
	"math"
	"slices"
	"testing"
)

func TestNewDash(t *testing.T) {
	tests := []struct {
		name    string
		lengths []float64
		wantNil bool
		want    []float32
	}{
		{"even", []float64{5, 3}, false, []float32{5, 3}},
		{"odd duplicated", []float64{5}, false, []float32{5, 5}},
		{"odd three", []float64{4, 2, 1}, false, []float32{4, 2, 1, 4, 2, 1}},
		{"negative made positive", []float64{-4, 2}, false, []float32{4, 2}},
		{"empty", nil, true, nil},
		{"all zero", []float64{0, 0}, true, nil},
		{"infinite", []float64{math.Inf(1)}, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDash(tt.lengths...)
			if tt.wantNil {
				if d != nil {
					t.Fatalf("NewDash(%v) = %+v, want nil", tt.lengths, d)
				}
				return
			}
			got := d.tess()
			if got == nil || !slices.Equal(got.Pattern, tt.want) {
				t.Errorf("pattern = %+v, want %v", got, tt.want)
			}
		})
	}
}

func TestDashWithOffset(t *testing.T) {
	d := NewDash(4, 2).WithOffset(3)
	if d.Offset != 3 || d.tess().Offset != 3 {
		t.Errorf("offset = %v", d.Offset)
	}
	var none *Dash
	if none.WithOffset(1) != nil || none.tess() != nil {
		t.Error("nil dash should stay nil")
	}
}
