// Package time computes time-domain statistics of sample windows.
package time

import "math"

// Stats holds time-domain window statistics.
type Stats struct {
	Length   int
	Mean     float64
	Variance float64 // population variance
	Std      float64
	RMS      float64
	Min      float64
	Max      float64
}

// Calculate computes all statistics in a single pass using Welford's online
// algorithm for the variance.
func Calculate(signal []float64) Stats {
	n := len(signal)
	if n == 0 {
		return Stats{}
	}

	var (
		mean   float64
		m2     float64
		sumSq  float64
		maxVal = signal[0]
		minVal = signal[0]
	)

	for i, x := range signal {
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)

		sumSq += x * x
		maxVal = max(maxVal, x)
		minVal = min(minVal, x)
	}

	nf := float64(n)
	variance := max(m2/nf, 0)

	return Stats{
		Length:   n,
		Mean:     mean,
		Variance: variance,
		Std:      math.Sqrt(variance),
		RMS:      math.Sqrt(sumSq / nf),
		Min:      minVal,
		Max:      maxVal,
	}
}

// Mean returns the arithmetic mean of the signal using Kahan summation.
func Mean(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	var sum, c float64
	for _, x := range signal {
		y := x - c
		t := sum + y
		c = (t - sum) - y
		sum = t
	}

	return sum / float64(len(signal))
}

// Variance returns the population variance of the signal. A constant signal
// yields exactly 0.
func Variance(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	first := signal[0]
	constant := true

	for _, x := range signal[1:] {
		if x != first {
			constant = false
			break
		}
	}

	if constant {
		return 0
	}

	return Calculate(signal).Variance
}

// RemoveMean subtracts the mean from signal in place and returns the removed
// offset.
func RemoveMean(signal []float64) float64 {
	m := Mean(signal)
	for i := range signal {
		signal[i] -= m
	}

	return m
}
