package bench

import (
	"context"
	"math"

	"gemmbench/internal/logger"
	"gemmbench/internal/shapes"
	"gemmbench/internal/tensor"
)

// Verification runs every kernel against a naive reference. The table
// shapes are divided by verifyShrink first: at full size a single down
// projection is tens of billions of multiply-adds, far too slow for a
// triple-loop reference, and shrinking N and K changes nothing about
// kernel correctness.
const (
	verifyShrink = 32
	verifyMinDim = 64

	f32Tolerance = 1e-3
	q8Tolerance  = 0.05 // relative L2, quantization error on both operands
	verifyBatch  = 16   // GEMM batch size during verification
)

// VerifyResult is the outcome of checking one kernel on one shape.
type VerifyResult struct {
	Model  string  `json:"model"`
	Role   string  `json:"role"`
	Kernel string  `json:"kernel"`
	N      int64   `json:"n"` // shrunken dims actually verified
	K      int64   `json:"k"`
	Error  float64 `json:"error"`
	OK     bool    `json:"ok"`
}

// Verify checks the f32 GEMM, f32 GEMV, and q8 GEMV kernels against naive
// references on shrunken versions of every table shape.
func Verify(ctx context.Context, models []shapes.Model, workers int, log logger.Logger) ([]VerifyResult, error) {
	if len(models) == 0 {
		models = shapes.Models()
	}
	if log == nil {
		log = logger.Default()
	}
	roles := shapes.Roles()

	var out []VerifyResult
	seed := int64(1)
	for _, model := range models {
		for ri, s := range model.Shapes {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			n := shrinkDim(s.N)
			k := shrinkDim(s.K)

			gemm := verifyGemm(n, k, workers, seed)
			matvec := verifyMatVec(n, k, seed+10)
			quant := verifyQ8(n, k, seed+20)
			seed += 30

			for _, r := range []VerifyResult{gemm, matvec, quant} {
				r.Model = model.Name
				r.Role = roles[ri].String()
				r.N = int64(n)
				r.K = int64(k)
				if !r.OK {
					log.Warn("verification failed",
						"model", r.Model, "role", r.Role, "kernel", r.Kernel, "error", r.Error)
				}
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func shrinkDim(d int64) int {
	v := d / verifyShrink
	if v < verifyMinDim {
		v = verifyMinDim
	}
	return int(v)
}

func verifyGemm(n, k, workers int, seed int64) VerifyResult {
	A := tensor.NewMat(verifyBatch, k)
	B := tensor.NewMat(k, n)
	got := tensor.NewMat(verifyBatch, n)
	want := tensor.NewMat(verifyBatch, n)
	tensor.FillRand(&A, seed)
	tensor.FillRand(&B, seed+1)

	naiveGemm(&want, &A, &B)
	cfg := tensor.SelectGemmConfig(verifyBatch, k, n)
	tensor.GemmPar(cfg, &got, &A, &B, 1, 0, workers)

	diff := maxAbsDiff(want.Data, got.Data)
	return VerifyResult{
		Kernel: "f32-gemm",
		Error:  diff,
		OK:     diff <= f32Tolerance,
	}
}

func verifyMatVec(n, k int, seed int64) VerifyResult {
	w := tensor.NewMat(n, k)
	tensor.FillRand(&w, seed)
	x := make([]float32, k)
	fillVec(x, seed+1)

	want := make([]float32, n)
	got := make([]float32, n)
	naiveMatVec(want, &w, x)
	tensor.MatVec(got, &w, x)

	diff := maxAbsDiff(want, got)
	return VerifyResult{
		Kernel: "f32-matvec",
		Error:  diff,
		OK:     diff <= f32Tolerance,
	}
}

func verifyQ8(n, k int, seed int64) VerifyResult {
	w := tensor.NewMat(n, k)
	tensor.FillRand(&w, seed)
	x := make([]float32, k)
	fillVec(x, seed+1)

	want := make([]float32, n)
	naiveMatVec(want, &w, x)

	qw := tensor.QuantizeQ8(&w)
	got := make([]float32, n)
	tensor.MatVecQ8(got, qw, x)

	rel := relL2Error(want, got)
	return VerifyResult{
		Kernel: "q8-matvec",
		Error:  rel,
		OK:     rel <= q8Tolerance,
	}
}

func naiveGemm(C, A, B *tensor.Mat) {
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

func naiveMatVec(dst []float32, w *tensor.Mat, x []float32) {
	for i := 0; i < w.R; i++ {
		var sum float32
		row := w.Row(i)
		for j := 0; j < w.C; j++ {
			sum += row[j] * x[j]
		}
		dst[i] = sum
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

func relL2Error(want, got []float32) float64 {
	var refNorm, errNorm float64
	for i := range want {
		refNorm += float64(want[i]) * float64(want[i])
		d := float64(got[i] - want[i])
		errNorm += d * d
	}
	if refNorm == 0 {
		return math.Inf(1)
	}
	return math.Sqrt(errNorm) / math.Sqrt(refNorm)
}
