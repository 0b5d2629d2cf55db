package spectrum

// Peak is a local maximum of a sequence.
type Peak struct {
	Index      int
	Value      float64
	Prominence float64
}

// FindPeaks returns the local maxima of y whose topographic prominence is at
// least minProminence, in index order. Endpoints are never peaks. Flat tops
// report their middle sample.
//
// Prominence is the height of a peak above the higher of the two minima found
// between it and the nearest strictly higher sample on either side (or the
// sequence edge).
func FindPeaks(y []float64, minProminence float64) []Peak {
	var peaks []Peak

	n := len(y)
	for i := 1; i < n-1; i++ {
		if y[i] <= y[i-1] {
			continue
		}

		j := i
		for j+1 < n-1 && y[j+1] == y[i] {
			j++
		}

		if y[j+1] < y[i] {
			mid := (i + j) / 2

			prom := prominence(y, mid)
			if prom >= minProminence {
				peaks = append(peaks, Peak{Index: mid, Value: y[mid], Prominence: prom})
			}
		}

		i = j
	}

	return peaks
}

// Highest returns the peak with the largest value; ties resolve to the more
// prominent peak, then to the lower index.
func Highest(peaks []Peak) (Peak, bool) {
	if len(peaks) == 0 {
		return Peak{}, false
	}

	best := peaks[0]
	for _, p := range peaks[1:] {
		if p.Value > best.Value || (p.Value == best.Value && p.Prominence > best.Prominence) {
			best = p
		}
	}

	return best, true
}

func prominence(y []float64, idx int) float64 {
	peak := y[idx]

	leftMin := peak
	for i := idx - 1; i >= 0 && y[i] <= peak; i-- {
		leftMin = min(leftMin, y[i])
	}

	rightMin := peak
	for i := idx + 1; i < len(y) && y[i] <= peak; i++ {
		rightMin = min(rightMin, y[i])
	}

	return peak - max(leftMin, rightMin)
}
