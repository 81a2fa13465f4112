package tensor

import "runtime"

type gemmTask struct {
	C, A, B     *Mat
	alpha, beta float32
	rs, re      int
	cfg         GemmConfig
	done        chan struct{}
}

type gemmPool struct {
	size      int
	tasks     chan gemmTask
	doneSlots chan chan struct{}
}

func newGemmPool() *gemmPool {
	size := runtime.GOMAXPROCS(0)
	if size < 1 {
		size = 1
	}
	p := &gemmPool{
		size:      size,
		tasks:     make(chan gemmTask, size*2),
		doneSlots: make(chan chan struct{}, size),
	}
	for i := 0; i < size; i++ {
		p.doneSlots <- make(chan struct{}, 1)
	}
	for w := 0; w < size; w++ {
		packB := make([]float32, maxTileK*maxTileN)
		go func(packB []float32) {
			for task := range p.tasks {
				gemmRangeRows(task.C, task.A, task.B, task.alpha, task.beta, task.rs, task.re, packB, task.cfg)
				task.done <- struct{}{}
			}
		}(packB)
	}
	return p
}

var gemmWorkPool = newGemmPool()

// GemmPar computes the matrix product C = alpha*A*B + beta*C using a
// blocked algorithm and parallelising across ranges of output rows.
func GemmPar(cfg GemmConfig, C, A, B *Mat, alpha, beta float32, workers int) {
	if A.C != B.R || C.R != A.R || C.C != B.C {
		panic("gemm: dimension mismatch")
	}
	if C.R == 0 || C.C == 0 {
		return
	}

	cfg.TileM = clampTile(cfg.TileM, maxTileM)
	cfg.TileN = clampTile(cfg.TileN, maxTileN)
	cfg.TileK = clampTile(cfg.TileK, maxTileK)

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > C.R {
		workers = C.R
	}
	if workers <= 1 {
		gemmRangeRows(C, A, B, alpha, beta, 0, C.R, nil, cfg)
		return
	}
	if workers > gemmWorkPool.size {
		workers = gemmWorkPool.size
	}

	chunk := (C.R + workers - 1) / workers

	done := <-gemmWorkPool.doneSlots
	for w := 0; w < workers; w++ {
		rs := w * chunk
		re := rs + chunk
		if re > C.R {
			re = C.R
		}
		gemmWorkPool.tasks <- gemmTask{
			C:     C,
			A:     A,
			B:     B,
			alpha: alpha,
			beta:  beta,
			rs:    rs,
			re:    re,
			cfg:   cfg,
			done:  done,
		}
	}
	for i := 0; i < workers; i++ {
		<-done
	}
	gemmWorkPool.doneSlots <- done
}

// gemmRangeRows performs a blocked GEMM on a contiguous range of rows of C.
func gemmRangeRows(C, A, B *Mat, alpha, beta float32, rs, re int, packB []float32, cfg GemmConfig) {
	if alpha == 1 && beta == 0 {
		gemmRangeRowsAlpha1Beta0(C, A, B, rs, re, packB, cfg)
		return
	}

	if beta == 0 {
		cStride := C.Stride
		n := C.C
		for i := rs; i < re; i++ {
			base := i * cStride
			clear(C.Data[base : base+n])
		}
	} else if beta != 1 {
		cStride := C.Stride
		n := C.C
		for i := rs; i < re; i++ {
			base := i * cStride
			for j := 0; j < n; j++ {
				C.Data[base+j] *= beta
			}
		}
	}

	n := B.C
	k := A.C

	for i0 := rs; i0 < re; i0 += cfg.TileM {
		iMax := min(i0+cfg.TileM, re)
		for k0 := 0; k0 < k; k0 += cfg.TileK {
			kMax := min(k0+cfg.TileK, k)
			for j0 := 0; j0 < n; j0 += cfg.TileN {
				jMax := min(j0+cfg.TileN, n)
				blockUpdateGeneric(C.Data, A.Data, B.Data, C.Stride, A.Stride, B.Stride, alpha, i0, iMax, j0, jMax, k0, kMax)
			}
		}
	}
}

func gemmRangeRowsAlpha1Beta0(C, A, B *Mat, rs, re int, packB []float32, cfg GemmConfig) {
	cStride := C.Stride
	n := C.C
	cData := C.Data

	for i := rs; i < re; i++ {
		base := i * cStride
		clear(cData[base : base+n])
	}

	if cfg.UsePackedB && len(packB) >= cfg.TileK*cfg.TileN {
		gemmRangeRowsPacked(C, A, B, rs, re, packB, cfg)
		return
	}

	k := A.C
	aStride := A.Stride
	bStride := B.Stride
	aData := A.Data
	bData := B.Data

	for i0 := rs; i0 < re; i0 += cfg.TileM {
		iMax := min(i0+cfg.TileM, re)
		for k0 := 0; k0 < k; k0 += cfg.TileK {
			kMax := min(k0+cfg.TileK, k)
			for j0 := 0; j0 < n; j0 += cfg.TileN {
				jMax := min(j0+cfg.TileN, n)
				blockUpdateAlpha1(cData, aData, bData, cStride, aStride, bStride, i0, iMax, j0, jMax, k0, kMax)
			}
		}
	}
}

// gemmRangeRowsPacked copies each B tile into a contiguous scratch buffer
// once and reuses it for every row tile, cutting strided loads out of the
// inner loop. C rows must already be cleared.
func gemmRangeRowsPacked(C, A, B *Mat, rs, re int, packB []float32, cfg GemmConfig) {
	cStride := C.Stride
	n := C.C
	cData := C.Data

	k := A.C
	aStride := A.Stride
	bStride := B.Stride
	aData := A.Data
	bData := B.Data

	for k0 := 0; k0 < k; k0 += cfg.TileK {
		kMax := min(k0+cfg.TileK, k)
		kInner := kMax - k0
		for j0 := 0; j0 < n; j0 += cfg.TileN {
			jMax := min(j0+cfg.TileN, n)
			width := jMax - j0

			packBTile(packB, bData, bStride, k0, kMax, j0, jMax)

			for i0 := rs; i0 < re; i0 += cfg.TileM {
				iMax := min(i0+cfg.TileM, re)
				blockUpdateAlpha1Packed(cData, aData, packB, cStride, aStride, i0, iMax, j0, width, k0, kInner)
			}
		}
	}
}

func packBTile(dst []float32, bData []float32, bStride int, k0, kMax, j0, jMax int) {
	width := jMax - j0
	kInner := kMax - k0
	if width <= 0 || kInner <= 0 {
		return
	}
	if width > maxTileN || kInner > maxTileK {
		panic("packBTile exceeds max tile size")
	}
	for kk := 0; kk < kInner; kk++ {
		srcOff := (k0+kk)*bStride + j0
		copy(dst[kk*width:(kk+1)*width], bData[srcOff:srcOff+width])
	}
}

func blockUpdateGeneric(cData, aData, bData []float32, cStride, aStride, bStride int, alpha float32, i0, iMax, j0, jMax, k0, kMax int) {
	width := jMax - j0
	for i := i0; i < iMax; i++ {
		aRow := aData[i*aStride:]
		cOff := i*cStride + j0
		cRow := cData[cOff : cOff+width]

		for kk := k0; kk < kMax; kk++ {
			aik := aRow[kk] * alpha
			bOff := kk*bStride + j0
			bRow := bData[bOff : bOff+width]

			j := 0
			for ; j+7 < width; j += 8 {
				cRow[j+0] += aik * bRow[j+0]
				cRow[j+1] += aik * bRow[j+1]
				cRow[j+2] += aik * bRow[j+2]
				cRow[j+3] += aik * bRow[j+3]
				cRow[j+4] += aik * bRow[j+4]
				cRow[j+5] += aik * bRow[j+5]
				cRow[j+6] += aik * bRow[j+6]
				cRow[j+7] += aik * bRow[j+7]
			}
			for ; j < width; j++ {
				cRow[j] += aik * bRow[j]
			}
		}
	}
}

func blockUpdateAlpha1(cData, aData, bData []float32, cStride, aStride, bStride int, i0, iMax, j0, jMax, k0, kMax int) {
	width := jMax - j0
	for i := i0; i < iMax; i++ {
		aRow := aData[i*aStride:]
		cOff := i*cStride + j0
		cRow := cData[cOff : cOff+width]

		for kk := k0; kk < kMax; kk++ {
			aik := aRow[kk]
			bOff := kk*bStride + j0
			bRow := bData[bOff : bOff+width]

			j := 0
			for ; j+3 < width; j += 4 {
				cRow[j+0] += aik * bRow[j+0]
				cRow[j+1] += aik * bRow[j+1]
				cRow[j+2] += aik * bRow[j+2]
				cRow[j+3] += aik * bRow[j+3]
			}
			for ; j < width; j++ {
				cRow[j] += aik * bRow[j]
			}
		}
	}
}

// blockUpdateAlpha1Packed consumes a packed B tile arranged as kInner
// contiguous rows of length width.
func blockUpdateAlpha1Packed(cData, aData, packB []float32, cStride, aStride int, i0, iMax, j0, width, k0, kInner int) {
	if width <= 0 || kInner <= 0 {
		return
	}
	for i := i0; i < iMax; i++ {
		aRow := aData[i*aStride:]
		cOff := i*cStride + j0
		cRow := cData[cOff : cOff+width]

		for kk := 0; kk < kInner; kk++ {
			aik := aRow[k0+kk]
			bRow := packB[kk*width : kk*width+width]

			j := 0
			for ; j+7 < width; j += 8 {
				cRow[j+0] += aik * bRow[j+0]
				cRow[j+1] += aik * bRow[j+1]
				cRow[j+2] += aik * bRow[j+2]
				cRow[j+3] += aik * bRow[j+3]
				cRow[j+4] += aik * bRow[j+4]
				cRow[j+5] += aik * bRow[j+5]
				cRow[j+6] += aik * bRow[j+6]
				cRow[j+7] += aik * bRow[j+7]
			}
			for ; j < width; j++ {
				cRow[j] += aik * bRow[j]
			}
		}
	}
}
