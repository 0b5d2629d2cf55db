package biquad

import (
	"errors"
	"slices"
)

// ErrSignalTooShort is returned by FiltFilt when the input is not longer than
// the reflection padding required by the cascade.
var ErrSignalTooShort = errors.New("biquad: signal too short for zero-phase filtering")

// PadLength returns the number of samples reflected at each edge of the
// input by FiltFilt for a cascade of n sections.
func PadLength(n int) int {
	if n <= 0 {
		return 0
	}

	return 3 * (2*n + 1)
}

// FiltFilt applies the cascade forward and then backward over x and returns
// the zero-phase result in a new slice. x is not modified.
//
// The input is extended by odd reflection of PadLength(len(coeffs)) samples on
// each side. Every section starts from the steady state matching the first
// sample it sees, which removes the start-up step a zero state would cause.
func FiltFilt(coeffs []Coefficients, x []float64) ([]float64, error) {
	if len(coeffs) == 0 {
		return slices.Clone(x), nil
	}

	n := len(x)
	pad := PadLength(len(coeffs))

	if n <= pad {
		return nil, ErrSignalTooShort
	}

	ext := make([]float64, n+2*pad)
	for i := range pad {
		ext[i] = 2*x[0] - x[pad-i]
		ext[pad+n+i] = 2*x[n-1] - x[n-2-i]
	}

	copy(ext[pad:], x)

	runCascade(coeffs, ext)
	slices.Reverse(ext)
	runCascade(coeffs, ext)
	slices.Reverse(ext)

	out := make([]float64, n)
	copy(out, ext[pad:pad+n])

	return out, nil
}

// runCascade filters buf in place through a chain primed for the level of the
// buffer's first sample.
func runCascade(coeffs []Coefficients, buf []float64) {
	chain := NewChain(coeffs)
	chain.Prime(buf[0])
	chain.ProcessBlock(buf)
}
