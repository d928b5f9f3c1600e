// floatsunrolled is inspired by the SIMD blog post
// https://github.com/camdencheek/simd_blog/blob/main/main.go
//
// Loops are unrolled in batches of UnrollBatch with a scalar tail, so any slice length is accepted.
package floatsunrolled

import "errors"

const UnrollBatch = 4

var (
	ErrSliceLengthMismatch       = errors.New("slices must have equal lengths")
	ErrOutputSliceLengthMismatch = errors.New("output slice length not the same as input")
)

// batched returns the prefix length that is a multiple of UnrollBatch
func batched(n int) int {
	return n - n%UnrollBatch
}

func Dot(a, b []float64) float64 {
	if len(a) != len(b) {
		panic(ErrSliceLengthMismatch)
	}

	var sum float64
	end := batched(len(a))
	for i := 0; i < end; i += UnrollBatch {
		aTmp := a[i : i+UnrollBatch : i+UnrollBatch]
		bTmp := b[i : i+UnrollBatch : i+UnrollBatch]
		s0 := aTmp[0] * bTmp[0]
		s1 := aTmp[1] * bTmp[1]
		s2 := aTmp[2] * bTmp[2]
		s3 := aTmp[3] * bTmp[3]
		sum += s0 + s1 + s2 + s3
	}
	for i := end; i < len(a); i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func output(dst []float64, n int) []float64 {
	if dst == nil {
		return make([]float64, n)
	}
	if len(dst) != n {
		panic(ErrOutputSliceLengthMismatch)
	}
	return dst
}

// SubTo writes s - t into dst, allocating it when nil
func SubTo(dst, s, t []float64) []float64 {
	if len(s) != len(t) {
		panic(ErrSliceLengthMismatch)
	}
	dst = output(dst, len(s))

	end := batched(len(s))
	for i := 0; i < end; i += UnrollBatch {
		dstTmp := dst[i : i+UnrollBatch : i+UnrollBatch]
		sTmp := s[i : i+UnrollBatch : i+UnrollBatch]
		tTmp := t[i : i+UnrollBatch : i+UnrollBatch]
		dstTmp[0] = sTmp[0] - tTmp[0]
		dstTmp[1] = sTmp[1] - tTmp[1]
		dstTmp[2] = sTmp[2] - tTmp[2]
		dstTmp[3] = sTmp[3] - tTmp[3]
	}
	for i := end; i < len(s); i++ {
		dst[i] = s[i] - t[i]
	}
	return dst
}

// SubConstTo writes s - c into dst, allocating it when nil
func SubConstTo(dst []float64, c float64, s []float64) []float64 {
	dst = output(dst, len(s))

	end := batched(len(s))
	for i := 0; i < end; i += UnrollBatch {
		dstTmp := dst[i : i+UnrollBatch : i+UnrollBatch]
		sTmp := s[i : i+UnrollBatch : i+UnrollBatch]
		dstTmp[0] = sTmp[0] - c
		dstTmp[1] = sTmp[1] - c
		dstTmp[2] = sTmp[2] - c
		dstTmp[3] = sTmp[3] - c
	}
	for i := end; i < len(s); i++ {
		dst[i] = s[i] - c
	}
	return dst
}
