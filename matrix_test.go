package quad

import (
	"math"
	"testing"

	"github.com/gogpu/quad/gpu"
)

func TestMatrixTransformPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		in   Point
		want Point
	}{
		{"identity", Identity(), Pt(3, 4), Pt(3, 4)},
		{"translate", Translate(10, -2), Pt(1, 1), Pt(11, -1)},
		{"scale", Scale(2, 3), Pt(1, 1), Pt(2, 3)},
		{"rotate quarter", Rotate(math.Pi / 2), Pt(1, 0), Pt(0, 1)},
		{"translate then scale", Scale(2, 2).Multiply(Translate(1, 1)), Pt(0, 0), Pt(2, 2)},
		{"scale then translate", Translate(1, 1).Multiply(Scale(2, 2)), Pt(1, 0), Pt(3, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformPoint(tt.in)
			if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) {
				t.Errorf("TransformPoint(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMatrixMaxScale(t *testing.T) {
	if got := Scale(2, 5).maxScale(); !near(got, 5) {
		t.Errorf("maxScale = %v, want 5", got)
	}
	if got := Rotate(1).Multiply(Scale(3, 3)).maxScale(); !near(got, 3) {
		t.Errorf("rotated maxScale = %v, want 3", got)
	}
}

func TestMatrixApply(t *testing.T) {
	vs := []gpu.Vertex{{X: 1, Y: 2, U: 0.5}}
	Translate(10, 20).apply(vs)
	if vs[0].X != 11 || vs[0].Y != 22 || vs[0].U != 0.5 {
		t.Errorf("apply = %+v", vs[0])
	}
	if !Identity().IsIdentity() || Translate(1, 0).IsIdentity() {
		t.Error("IsIdentity wrong")
	}
}
