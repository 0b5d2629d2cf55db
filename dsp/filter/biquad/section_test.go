package biquad

import (
	"math"
	"testing"
)

const eps = 1e-12

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestProcessSample_DFIIT(t *testing.T) {
	// Hand-traced DF-II-T with B0=0.25, B1=0.5, B2=0.25, A1=-0.2, A2=0.04
	// and an impulse input.
	c := Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}
	s := NewSection(c)

	want := []float64{0.25, 0.55, 0.35, 0.048}
	for i, w := range want {
		var x float64
		if i == 0 {
			x = 1
		}

		if y := s.ProcessSample(x); !almostEqual(y, w, eps) {
			t.Fatalf("sample %d: got %v, want %v", i, y, w)
		}
	}
}

func TestProcessBlock_MatchesSample(t *testing.T) {
	c := Coefficients{B0: 0.3, B1: -0.1, B2: 0.2, A1: -0.5, A2: 0.1}
	input := []float64{1, -2, 0.5, 3, -1, 0, 0.25, 4}

	ref := NewSection(c)
	want := make([]float64, len(input))
	for i, x := range input {
		want[i] = ref.ProcessSample(x)
	}

	s := NewSection(c)
	buf := append([]float64(nil), input...)
	s.ProcessBlock(buf)

	for i := range buf {
		if !almostEqual(buf[i], want[i], eps) {
			t.Fatalf("index %d: got %v, want %v", i, buf[i], want[i])
		}
	}

	if s.State() != ref.State() {
		t.Fatalf("state mismatch: got %v, want %v", s.State(), ref.State())
	}
}

func TestSteadyState_ConstantInputIsStationary(t *testing.T) {
	c := Coefficients{B0: 0.2, B1: 0.4, B2: 0.2, A1: -0.6, A2: 0.2}
	s := NewSection(c)
	s.SetState(c.SteadyState(3))

	want := 3 * c.DCGain()
	for i := range 20 {
		if y := s.ProcessSample(3); !almostEqual(y, want, 1e-12) {
			t.Fatalf("sample %d: got %v, want %v", i, y, want)
		}
	}
}

func TestDCGain_PoleAtOne(t *testing.T) {
	c := Coefficients{B0: 1, A1: -1}
	if g := c.DCGain(); g != 0 {
		t.Fatalf("DCGain = %v, want 0", g)
	}
}

func TestReset(t *testing.T) {
	s := NewSection(Coefficients{B0: 1, B1: 1, A1: 0.5})
	s.ProcessSample(1)
	s.Reset()

	if s.State() != [2]float64{} {
		t.Fatalf("state after reset: %v", s.State())
	}
}
