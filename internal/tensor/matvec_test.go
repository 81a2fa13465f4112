package tensor

import (
	"math"
	"testing"
)

func matVecNaive(dst []float32, w *Mat, x []float32) {
	for i := 0; i < w.R; i++ {
		var sum float32
		row := w.Row(i)
		for j := 0; j < w.C; j++ {
			sum += row[j] * x[j]
		}
		dst[i] = sum
	}
}

func TestMatVecMatchesNaive(t *testing.T) {
	w := NewMat(123, 77)
	FillRand(&w, 1)

	x := make([]float32, 77)
	for i := range x {
		x[i] = float32(i%13)*0.01 - 0.05
	}

	want := make([]float32, 123)
	got := make([]float32, 123)

	matVecNaive(want, &w, x)
	MatVec(got, &w, x)

	if maxAbs := maxAbsDiff(want, got); maxAbs > 1e-4 {
		t.Fatalf("max abs diff %g", maxAbs)
	}
}

func TestMatVecEmpty(t *testing.T) {
	w := NewMat(0, 0)
	MatVec(nil, &w, nil) // must not panic
}

func TestMatVecShapeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on shape mismatch")
		}
	}()
	w := NewMat(4, 8)
	MatVec(make([]float32, 4), &w, make([]float32, 4))
}

func TestMatVecSingleRow(t *testing.T) {
	w := NewMatFromData(1, 3, []float32{1, 2, 3})
	x := []float32{4, 5, 6}
	dst := make([]float32, 1)
	MatVec(dst, &w, x)
	if math.Abs(float64(dst[0]-32)) > 1e-6 {
		t.Fatalf("dot = %g, want 32", dst[0])
	}
}
