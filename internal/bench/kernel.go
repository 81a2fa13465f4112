package bench

import (
	"fmt"
	"time"

	"gemmbench/internal/shapes"
	"gemmbench/internal/tensor"
)

// Kernel materializes timed benchmark cases for a projection shape.
type Kernel interface {
	Name() string
	// Supports reports whether the kernel can run at batch size m.
	Supports(m int) bool
	// NewCase allocates and fills operands for one (shape, m) instance.
	NewCase(s shapes.Shape, m int, seed int64) (Case, error)
}

// Case is one fully materialized benchmark instance. Run executes a single
// timed repetition; Flops and Bytes describe the work it performs.
type Case struct {
	Run   func()
	Flops float64
	Bytes int64
}

// Kernels returns all benchmark kernels in report order.
func Kernels(workers int) []Kernel {
	return []Kernel{
		F32Gemm{Workers: workers},
		F32MatVec{},
		Q8MatVec{},
	}
}

// KernelsByName resolves kernel names, or all kernels for an empty list.
func KernelsByName(names []string, workers int) ([]Kernel, error) {
	all := Kernels(workers)
	if len(names) == 0 {
		return all, nil
	}
	out := make([]Kernel, 0, len(names))
	for _, name := range names {
		found := false
		for _, k := range all {
			if k.Name() == name {
				out = append(out, k)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown kernel %q", name)
		}
	}
	return out, nil
}

// WithAutotune rebuilds the kernel list so GEMM cases sweep tile
// configurations through a shared autotuner before timing. Tuned configs
// are cached per (m, k, n), so repeated shapes pay the sweep once.
func WithAutotune(kernels []Kernel) []Kernel {
	tuner := tensor.NewGemmAutotuner()
	out := make([]Kernel, len(kernels))
	for i, k := range kernels {
		if g, ok := k.(F32Gemm); ok {
			g.Tuner = tuner
			out[i] = g
			continue
		}
		out[i] = k
	}
	return out
}

// F32Gemm benchmarks the blocked parallel float32 GEMM: C[m,n] = A[m,k] *
// B[k,n] where (n, k) is the projection shape and m the batch size.
type F32Gemm struct {
	Workers int
	Tuner   *tensor.GemmAutotuner
}

func (F32Gemm) Name() string { return "f32-gemm" }

func (F32Gemm) Supports(m int) bool { return m >= 1 }

func (g F32Gemm) NewCase(s shapes.Shape, m int, seed int64) (Case, error) {
	if m < 1 {
		return Case{}, fmt.Errorf("invalid batch size %d", m)
	}
	n, k := int(s.N), int(s.K)

	A := tensor.NewMat(m, k)
	B := tensor.NewMat(k, n)
	C := tensor.NewMat(m, n)
	tensor.FillRand(&A, seed)
	tensor.FillRand(&B, seed+1)

	cfg := tensor.SelectGemmConfig(m, k, n)
	workers := g.Workers
	if g.Tuner != nil {
		cfg = g.Tuner.GetConfig(tensor.GemmShape{M: m, K: k, N: n}, cfg, func(c tensor.GemmConfig) float64 {
			start := time.Now()
			tensor.GemmPar(c, &C, &A, &B, 1, 0, workers)
			elapsed := time.Since(start).Seconds()
			if elapsed <= 0 {
				return 0
			}
			return 1 / elapsed
		})
	}
	return Case{
		Run: func() {
			tensor.GemmPar(cfg, &C, &A, &B, 1, 0, workers)
		},
		Flops: 2 * float64(m) * float64(n) * float64(k),
		Bytes: 4 * int64(m*k+k*n+m*n),
	}, nil
}

// F32MatVec benchmarks the parallel float32 GEMV, the m=1 decode path.
type F32MatVec struct{}

func (F32MatVec) Name() string { return "f32-matvec" }

func (F32MatVec) Supports(m int) bool { return m == 1 }

func (F32MatVec) NewCase(s shapes.Shape, m int, seed int64) (Case, error) {
	if m != 1 {
		return Case{}, fmt.Errorf("matvec requires m=1, got %d", m)
	}
	n, k := int(s.N), int(s.K)

	w := tensor.NewMat(n, k)
	tensor.FillRand(&w, seed)
	x := make([]float32, k)
	fillVec(x, seed+1)
	dst := make([]float32, n)

	return Case{
		Run: func() {
			tensor.MatVec(dst, &w, x)
		},
		Flops: 2 * float64(n) * float64(k),
		Bytes: 4 * int64(n*k+k+n),
	}, nil
}

// Q8MatVec benchmarks the int8 block-quantized GEMV.
type Q8MatVec struct{}

func (Q8MatVec) Name() string { return "q8-matvec" }

func (Q8MatVec) Supports(m int) bool { return m == 1 }

func (Q8MatVec) NewCase(s shapes.Shape, m int, seed int64) (Case, error) {
	if m != 1 {
		return Case{}, fmt.Errorf("matvec requires m=1, got %d", m)
	}
	n, k := int(s.N), int(s.K)

	w := tensor.NewMat(n, k)
	tensor.FillRand(&w, seed)
	qw := tensor.QuantizeQ8(&w)
	x := make([]float32, k)
	fillVec(x, seed+1)
	dst := make([]float32, n)

	return Case{
		Run: func() {
			tensor.MatVecQ8(dst, qw, x)
		},
		Flops: 2 * float64(n) * float64(k),
		// int8 codes dominate; scales add one float32 per 32 codes.
		Bytes: int64(len(qw.Codes)) + 4*int64(len(qw.Scales)+k+n),
	}, nil
}

func fillVec(x []float32, seed int64) {
	w := tensor.NewMatFromData(1, len(x), x)
	tensor.FillRand(&w, seed)
}
