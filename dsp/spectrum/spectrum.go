package spectrum

import (
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)

	need := 2 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}

	return buf.data[:n], buf.data[n:need], buf
}

func putScratch(buf *scratchBuf) {
	scratchPool.Put(buf)
}

// Power returns |X[k]|^2 for each complex spectrum bin.
func Power(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	PowerTo(out, in)

	return out
}

// PowerTo writes |X[k]|^2 of in into dst. dst must be at least len(in) long.
// Scratch buffers are pooled, so this does not allocate in steady state.
func PowerTo(dst []float64, in []complex128) {
	if len(in) == 0 {
		return
	}

	re, im, buf := getScratch(len(in))
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}

	vecmath.Power(dst[:len(in)], re, im)
	putScratch(buf)
}

// Frequencies returns the centre frequency of each one-sided bin of an
// n-point transform at sampleRate.
func Frequencies(n int, sampleRate float64) []float64 {
	if n <= 0 {
		return nil
	}

	bins := n/2 + 1
	out := make([]float64, bins)

	df := sampleRate / float64(n)
	for k := range out {
		out[k] = float64(k) * df
	}

	return out
}
