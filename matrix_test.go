package stage

import (
	"math"
	"testing"
)

const matrixEpsilon = 1e-9

func matrixNear(a, b Matrix) bool {
	return math.Abs(a.A-b.A) < matrixEpsilon &&
		math.Abs(a.B-b.B) < matrixEpsilon &&
		math.Abs(a.C-b.C) < matrixEpsilon &&
		math.Abs(a.D-b.D) < matrixEpsilon &&
		math.Abs(a.E-b.E) < matrixEpsilon &&
		math.Abs(a.F-b.F) < matrixEpsilon
}

func TestMatrixTransformPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		p    Point
		want Point
	}{
		{"identity", Identity(), Point{X: 3, Y: 4}, Point{X: 3, Y: 4}},
		{"translate", Translate(10, -5), Point{X: 1, Y: 1}, Point{X: 11, Y: -4}},
		{"scale", Scale(2, 3), Point{X: 4, Y: 5}, Point{X: 8, Y: 15}},
		{"rotate 90", Rotate(math.Pi / 2), Point{X: 1, Y: 0}, Point{X: 0, Y: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformPoint(tt.p)
			if math.Abs(got.X-tt.want.X) > matrixEpsilon || math.Abs(got.Y-tt.want.Y) > matrixEpsilon {
				t.Errorf("TransformPoint(%+v) = %+v, want %+v", tt.p, got, tt.want)
			}
		})
	}
}

func TestMatrixInvert(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
	}{
		{"translate", Translate(7, -3)},
		{"scale", Scale(2, 0.5)},
		{"rotate", Rotate(1.1)},
		{"composite", Translate(5, 5).Multiply(Rotate(0.7)).Multiply(Scale(3, 2))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.Multiply(tt.m.Invert())
			if !matrixNear(got, Identity()) {
				t.Errorf("m * m^-1 = %+v, want identity", got)
			}
		})
	}
}

func TestMatrixTransformVector(t *testing.T) {
	m := Translate(100, 200).Multiply(Scale(2, 2))
	got := m.TransformVector(Point{X: 1, Y: 1})
	want := Point{X: 2, Y: 2}
	if got != want {
		t.Errorf("TransformVector ignores translation: got %+v, want %+v", got, want)
	}
}
