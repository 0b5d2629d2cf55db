package biquad

import (
	"errors"
	"math"
	"testing"
)

func TestFiltFilt_TwoTapAverageIsZeroPhase(t *testing.T) {
	const (
		sr = 100.0
		f  = 5.0
		n  = 200
	)

	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * f * float64(i) / sr)
	}

	// H = 0.5(1+z^-1): forward/backward magnitude is cos^2(w/2) with no lag.
	coeffs := []Coefficients{{B0: 0.5, B1: 0.5}}

	y, err := FiltFilt(coeffs, x)
	if err != nil {
		t.Fatalf("FiltFilt: %v", err)
	}

	gain := math.Pow(math.Cos(math.Pi*f/sr), 2)
	for i := 5; i < n-5; i++ {
		if !almostEqual(y[i], gain*x[i], 1e-9) {
			t.Fatalf("index %d: got %v, want %v", i, y[i], gain*x[i])
		}
	}
}

func TestFiltFilt_ConstantPassesAtDCGain(t *testing.T) {
	coeffs := []Coefficients{
		{B0: 0.2, B1: 0.4, B2: 0.2, A1: -0.6, A2: 0.2},
		{B0: 0.1, B1: 0.2, B2: 0.1, A1: -0.9, A2: 0.3},
	}

	x := make([]float64, 64)
	for i := range x {
		x[i] = 2.5
	}

	y, err := FiltFilt(coeffs, x)
	if err != nil {
		t.Fatalf("FiltFilt: %v", err)
	}

	g := coeffs[0].DCGain() * coeffs[1].DCGain()
	want := 2.5 * g * g
	for i, v := range y {
		if !almostEqual(v, want, 1e-9) {
			t.Fatalf("index %d: got %v, want %v", i, v, want)
		}
	}

	if x[0] != 2.5 {
		t.Fatal("input was modified")
	}
}

func TestFiltFilt_TooShort(t *testing.T) {
	coeffs := []Coefficients{{B0: 1}}

	_, err := FiltFilt(coeffs, make([]float64, PadLength(1)))
	if !errors.Is(err, ErrSignalTooShort) {
		t.Fatalf("err = %v, want ErrSignalTooShort", err)
	}

	if _, err := FiltFilt(coeffs, make([]float64, PadLength(1)+1)); err != nil {
		t.Fatalf("minimum length rejected: %v", err)
	}
}
