// Package frequency computes spectral shape descriptors of a one-sided power
// spectral density.
//
// All functions take the PSD together with its ascending bin frequencies and
// an inclusive [lo, hi] Hz range restricting the bins considered. A range with
// no bins, or with zero total power, yields 0.
package frequency

import (
	"math"

	"github.com/cwbudde/algo-eeg/dsp/spectrum"
)

// Shape groups the descriptors computed by Calculate.
type Shape struct {
	Centroid float64 // power-weighted mean frequency (Hz)
	Edge     float64 // frequency below which EdgeFraction of the power lies (Hz)
	Flatness float64 // geometric over arithmetic mean, 0..1
}

// EdgeFraction is the cumulative power fraction used for the spectral edge.
const EdgeFraction = 0.95

// Calculate computes all shape descriptors over [lo, hi].
func Calculate(psd, freqs []float64, lo, hi float64) Shape {
	return Shape{
		Centroid: Centroid(psd, freqs, lo, hi),
		Edge:     EdgeFrequency(psd, freqs, lo, hi, EdgeFraction),
		Flatness: Flatness(psd, freqs, lo, hi),
	}
}

// Centroid returns sum(f*P) / sum(P) over the range.
func Centroid(psd, freqs []float64, lo, hi float64) float64 {
	first, last, ok := spectrum.BandMask(freqs, lo, hi)
	if !ok {
		return 0
	}

	sum, weighted := 0.0, 0.0
	for i := first; i <= last; i++ {
		sum += psd[i]
		weighted += psd[i] * freqs[i]
	}

	if sum <= 0 {
		return 0
	}

	return weighted / sum
}

// EdgeFrequency returns the first bin frequency at which the cumulative power
// reaches fraction (0..1] of the total in range.
func EdgeFrequency(psd, freqs []float64, lo, hi, fraction float64) float64 {
	first, last, ok := spectrum.BandMask(freqs, lo, hi)
	if !ok {
		return 0
	}

	total := 0.0
	for i := first; i <= last; i++ {
		total += psd[i]
	}

	if total <= 0 {
		return 0
	}

	threshold := fraction * total
	cum := 0.0

	for i := first; i <= last; i++ {
		cum += psd[i]
		if cum >= threshold {
			return freqs[i]
		}
	}

	return freqs[last]
}

// Flatness returns the spectral flatness (Wiener entropy) over the range:
// exp(mean(log P)) / mean(P). Any zero bin makes the geometric mean, and so
// the flatness, zero.
func Flatness(psd, freqs []float64, lo, hi float64) float64 {
	first, last, ok := spectrum.BandMask(freqs, lo, hi)
	if !ok {
		return 0
	}

	n := float64(last - first + 1)
	sumLin, sumLog := 0.0, 0.0

	for i := first; i <= last; i++ {
		v := psd[i]
		if v <= 0 {
			return 0
		}

		sumLin += v
		sumLog += math.Log(v)
	}

	meanLin := sumLin / n
	if meanLin == 0 {
		return 0
	}

	return math.Exp(sumLog/n) / meanLin
}
