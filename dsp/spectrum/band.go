package spectrum

// BandMask returns the index range [first, last] of bins whose frequency lies
// in [lo, hi]. ok is false when no bin falls inside the band.
// freqs must be ascending.
func BandMask(freqs []float64, lo, hi float64) (first, last int, ok bool) {
	first, last = -1, -1

	for i, f := range freqs {
		if f < lo {
			continue
		}

		if f > hi {
			break
		}

		if first < 0 {
			first = i
		}

		last = i
	}

	if first < 0 {
		return 0, 0, false
	}

	return first, last, true
}

// Trapezoid integrates y over x with the trapezoidal rule. Fewer than two
// points integrate to zero.
func Trapezoid(y, x []float64) float64 {
	n := min(len(x), len(y))
	if n < 2 {
		return 0
	}

	sum := 0.0
	for i := 1; i < n; i++ {
		sum += 0.5 * (y[i] + y[i-1]) * (x[i] - x[i-1])
	}

	return sum
}

// IntegrateBand integrates psd over the bins inside [lo, hi] Hz.
func IntegrateBand(psd, freqs []float64, lo, hi float64) float64 {
	first, last, ok := BandMask(freqs, lo, hi)
	if !ok {
		return 0
	}

	return Trapezoid(psd[first:last+1], freqs[first:last+1])
}

// BandMax returns the index and value of the largest psd bin inside [lo, hi].
// ok is false when the band selects no bins.
func BandMax(psd, freqs []float64, lo, hi float64) (idx int, value float64, ok bool) {
	first, last, ok := BandMask(freqs, lo, hi)
	if !ok {
		return 0, 0, false
	}

	idx = first
	for i := first + 1; i <= last; i++ {
		if psd[i] > psd[idx] {
			idx = i
		}
	}

	return idx, psd[idx], true
}

// BandMean returns the mean psd value inside [lo, hi] and the number of bins
// averaged.
func BandMean(psd, freqs []float64, lo, hi float64) (float64, int) {
	first, last, ok := BandMask(freqs, lo, hi)
	if !ok {
		return 0, 0
	}

	sum := 0.0
	for i := first; i <= last; i++ {
		sum += psd[i]
	}

	n := last - first + 1

	return sum / float64(n), n
}
