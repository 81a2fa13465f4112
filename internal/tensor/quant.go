package tensor

import (
	"math"
	"runtime"
	"sync"
)

// Weights and activations are quantized in blocks of 32 values with one
// float32 scale per block, the layout used by the AWQ-style checkpoints the
// benchmark shapes come from.
const quantBlockSize = 32

// QuantMat is a row-major int8 block-quantized matrix. Each row holds
// blocks blocks of quantBlockSize codes; the trailing block of a row is
// zero-padded when C is not a multiple of the block size.
type QuantMat struct {
	R, C   int
	blocks int // per row
	Codes  []int8
	Scales []float32
}

// QuantizeQ8 quantizes w into int8 blocks with per-block max-abs scales.
func QuantizeQ8(w *Mat) *QuantMat {
	blocks := (w.C + quantBlockSize - 1) / quantBlockSize
	q := &QuantMat{
		R:      w.R,
		C:      w.C,
		blocks: blocks,
		Codes:  make([]int8, w.R*blocks*quantBlockSize),
		Scales: make([]float32, w.R*blocks),
	}
	for i := 0; i < w.R; i++ {
		row := w.Row(i)
		quantizeBlocksInto(row, q.Codes[i*blocks*quantBlockSize:], q.Scales[i*blocks:i*blocks+blocks])
	}
	return q
}

// quantizeBlocksInto encodes src into int8 blocks. codes must hold at least
// len(scales)*quantBlockSize entries; scales determines the block count.
func quantizeBlocksInto(src []float32, codes []int8, scales []float32) {
	for b := range scales {
		start := b * quantBlockSize
		end := min(start+quantBlockSize, len(src))

		var maxAbs float32
		for _, v := range src[start:end] {
			a := float32(math.Abs(float64(v)))
			if a > maxAbs {
				maxAbs = a
			}
		}

		block := codes[start : start+quantBlockSize]
		if maxAbs == 0 {
			scales[b] = 0
			clearInt8(block)
			continue
		}

		scale := maxAbs / 127
		scales[b] = scale
		inv := 1 / scale
		j := 0
		for ; start+j < end; j++ {
			v := src[start+j] * inv
			block[j] = int8(math.RoundToEven(float64(v)))
		}
		clearInt8(block[j:])
	}
}

func clearInt8(s []int8) {
	for i := range s {
		s[i] = 0
	}
}

// QuantVec is a block-quantized input vector prepared once and reused
// across every row of a quantized matvec.
type QuantVec struct {
	n      int
	codes  []int8
	scales []float32
}

// PrepareQuantVec quantizes x into block form.
func PrepareQuantVec(x []float32) *QuantVec {
	if len(x) == 0 {
		return nil
	}
	blocks := (len(x) + quantBlockSize - 1) / quantBlockSize
	qx := &QuantVec{
		n:      len(x),
		codes:  make([]int8, blocks*quantBlockSize),
		scales: make([]float32, blocks),
	}
	quantizeBlocksInto(x, qx.codes, qx.scales)
	return qx
}

type quantTask struct {
	dst    []float32
	w      *QuantMat
	qx     *QuantVec
	rs, re int
	done   chan struct{}
}

type quantPool struct {
	size      int
	tasks     chan quantTask
	doneSlots chan chan struct{}
}

var quantWorkPool *quantPool

var quantPoolOnce sync.Once

func getQuantPool() *quantPool {
	quantPoolOnce.Do(func() {
		quantWorkPool = newQuantPool()
	})
	return quantWorkPool
}

func newQuantPool() *quantPool {
	size := runtime.GOMAXPROCS(0)
	if size < 1 {
		size = 1
	}
	p := &quantPool{
		size:      size,
		tasks:     make(chan quantTask, size*2),
		doneSlots: make(chan chan struct{}, size),
	}
	for i := 0; i < size; i++ {
		p.doneSlots <- make(chan struct{}, 1)
	}
	for i := 0; i < size; i++ {
		go func() {
			for task := range p.tasks {
				matVecQ8Range(task.dst, task.w, task.qx, task.rs, task.re)
				task.done <- struct{}{}
			}
		}()
	}
	return p
}

// MatVecQ8 computes dst = w * x with int8 block dot products. The input
// vector is quantized once; each block contributes
// scaleW * scaleX * dot(int8 codes) to the row sum.
func MatVecQ8(dst []float32, w *QuantMat, x []float32) {
	if w.R == 0 || w.C == 0 {
		return
	}
	if len(dst) < w.R || len(x) < w.C {
		panic("quant matvec shape mismatch")
	}

	qx := PrepareQuantVec(x[:w.C])

	pool := getQuantPool()
	workers := pool.size
	if workers > w.R {
		workers = w.R
	}

	if workers <= 1 {
		matVecQ8Range(dst, w, qx, 0, w.R)
		return
	}

	chunk := (w.R + workers - 1) / workers
	done := <-pool.doneSlots

	activeWorkers := 0
	for i := 0; i < workers; i++ {
		rs := i * chunk
		re := rs + chunk
		if re > w.R {
			re = w.R
		}
		if rs >= re {
			break
		}
		activeWorkers++
		pool.tasks <- quantTask{
			dst:  dst,
			w:    w,
			qx:   qx,
			rs:   rs,
			re:   re,
			done: done,
		}
	}

	for i := 0; i < activeWorkers; i++ {
		<-done
	}
	pool.doneSlots <- done
}

func matVecQ8Range(dst []float32, w *QuantMat, qx *QuantVec, rs, re int) {
	blocks := w.blocks
	for i := rs; i < re; i++ {
		rowCodes := w.Codes[i*blocks*quantBlockSize:]
		rowScales := w.Scales[i*blocks : i*blocks+blocks]

		var sum float32
		for b := 0; b < blocks; b++ {
			ws := rowScales[b]
			if ws == 0 {
				continue
			}
			xs := qx.scales[b]
			if xs == 0 {
				continue
			}

			wb := rowCodes[b*quantBlockSize : b*quantBlockSize+quantBlockSize]
			xb := qx.codes[b*quantBlockSize : b*quantBlockSize+quantBlockSize]

			var acc int32
			for j := 0; j < quantBlockSize; j += 4 {
				acc += int32(wb[j+0])*int32(xb[j+0]) +
					int32(wb[j+1])*int32(xb[j+1]) +
					int32(wb[j+2])*int32(xb[j+2]) +
					int32(wb[j+3])*int32(xb[j+3])
			}
			sum += ws * xs * float32(acc)
		}
		dst[i] = sum
	}
}
