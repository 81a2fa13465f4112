package tensor

import (
	"math"
	"testing"
)

func gemmNaive(C, A, B *Mat) {
	for i := 0; i < A.R; i++ {
		for j := 0; j < B.C; j++ {
			var sum float32
			for kk := 0; kk < A.C; kk++ {
				sum += A.Row(i)[kk] * B.Row(kk)[j]
			}
			C.Row(i)[j] = sum
		}
	}
}

func maxAbsDiff(a, b []float32) float64 {
	var maxAbs float64
	for i := range a {
		d := math.Abs(float64(a[i] - b[i]))
		if d > maxAbs {
			maxAbs = d
		}
	}
	return maxAbs
}

func TestGemmParMatchesNaive(t *testing.T) {
	A := NewMat(50, 70)
	B := NewMat(70, 45)
	C0 := NewMat(50, 45)
	C1 := NewMat(50, 45)

	FillRand(&A, 1)
	FillRand(&B, 2)

	gemmNaive(&C0, &A, &B)
	cfg := SelectGemmConfig(A.R, A.C, B.C)
	GemmPar(cfg, &C1, &A, &B, 1, 0, 4)

	if maxAbs := maxAbsDiff(C0.Data, C1.Data); maxAbs > 1e-3 {
		t.Fatalf("max abs diff %g", maxAbs)
	}
}

func TestGemmParAlphaBeta(t *testing.T) {
	A := NewMat(33, 29)
	B := NewMat(29, 31)
	C0 := NewMat(33, 31)
	C1 := NewMat(33, 31)

	FillRand(&A, 5)
	FillRand(&B, 6)
	FillRand(&C0, 7)
	copy(C1.Data, C0.Data)

	// Reference: C0 = 2*A*B + 0.5*C0 via naive product.
	ref := NewMat(33, 31)
	gemmNaive(&ref, &A, &B)
	for i := range C0.Data {
		C0.Data[i] = 2*ref.Data[i] + 0.5*C0.Data[i]
	}

	GemmPar(DefaultGemmConfig(), &C1, &A, &B, 2, 0.5, 3)

	if maxAbs := maxAbsDiff(C0.Data, C1.Data); maxAbs > 1e-3 {
		t.Fatalf("max abs diff %g", maxAbs)
	}
}

func TestGemmParSingleWorker(t *testing.T) {
	A := NewMat(17, 23)
	B := NewMat(23, 19)
	C0 := NewMat(17, 19)
	C1 := NewMat(17, 19)

	FillRand(&A, 8)
	FillRand(&B, 9)

	gemmNaive(&C0, &A, &B)
	GemmPar(DefaultGemmConfig(), &C1, &A, &B, 1, 0, 1)

	if maxAbs := maxAbsDiff(C0.Data, C1.Data); maxAbs > 1e-3 {
		t.Fatalf("max abs diff %g", maxAbs)
	}
}

func TestGemmParDimensionMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on dimension mismatch")
		}
	}()
	A := NewMat(4, 5)
	B := NewMat(6, 4)
	C := NewMat(4, 4)
	GemmPar(DefaultGemmConfig(), &C, &A, &B, 1, 0, 1)
}

func TestGemmParNoAllocs(t *testing.T) {
	A := NewMat(16, 16)
	B := NewMat(16, 16)
	C := NewMat(16, 16)

	FillRand(&A, 3)
	FillRand(&B, 4)

	cfg := DefaultGemmConfig()
	allocs := testing.AllocsPerRun(100, func() {
		GemmPar(cfg, &C, &A, &B, 1, 0, 2)
	})

	if allocs != 0 {
		t.Fatalf("unexpected allocs: %v", allocs)
	}
}

func TestGemmAutotunerCachesBest(t *testing.T) {
	t.Parallel()
	tuner := NewGemmAutotuner()
	shape := GemmShape{M: 64, K: 128, N: 64}

	calls := 0
	cfg := tuner.GetConfig(shape, DefaultGemmConfig(), func(cfg GemmConfig) float64 {
		calls++
		// Favor the largest TileK candidate.
		return float64(cfg.TileK)
	})
	if cfg.TileK != 32 {
		t.Fatalf("expected TileK 32 to win, got %d", cfg.TileK)
	}
	if calls == 0 {
		t.Fatal("scoring function never invoked")
	}

	calls = 0
	again := tuner.GetConfig(shape, DefaultGemmConfig(), func(GemmConfig) float64 {
		calls++
		return 0
	})
	if calls != 0 {
		t.Fatalf("expected cached config, scoring ran %d times", calls)
	}
	if again != cfg {
		t.Fatalf("cached config %+v differs from tuned %+v", again, cfg)
	}
}
