package biquad

import (
	"math/cmplx"
	"testing"
)

func twoSectionCoeffs() []Coefficients {
	return []Coefficients{
		{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04},
		{B0: 0.5, B1: -0.3, B2: 0.1, A1: 0.1, A2: -0.05},
	}
}

func TestChain_ProcessSample_MatchesManualCascade(t *testing.T) {
	coeffs := twoSectionCoeffs()
	c := NewChain(coeffs)
	s1 := NewSection(coeffs[0])
	s2 := NewSection(coeffs[1])

	for i, x := range []float64{1, 0.5, -1, 2, 0, -0.25} {
		want := s2.ProcessSample(s1.ProcessSample(x))
		if got := c.ProcessSample(x); !almostEqual(got, want, eps) {
			t.Fatalf("sample %d: got %v, want %v", i, got, want)
		}
	}
}

func TestChain_ProcessBlock_MatchesSample(t *testing.T) {
	input := []float64{1, -1, 0.5, 2, -3, 0.75}

	ref := NewChain(twoSectionCoeffs())
	want := make([]float64, len(input))
	for i, x := range input {
		want[i] = ref.ProcessSample(x)
	}

	c := NewChain(twoSectionCoeffs())
	buf := append([]float64(nil), input...)
	c.ProcessBlock(buf)

	for i := range buf {
		if !almostEqual(buf[i], want[i], eps) {
			t.Fatalf("index %d: got %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestChain_OrderAndSections(t *testing.T) {
	c := NewChain(twoSectionCoeffs())
	if c.NumSections() != 2 || c.Order() != 4 {
		t.Fatalf("sections=%d order=%d, want 2 and 4", c.NumSections(), c.Order())
	}

	c.ProcessSample(1)
	c.Reset()

	for i := range c.NumSections() {
		if c.Section(i).State() != [2]float64{} {
			t.Fatalf("section %d not reset", i)
		}
	}
}

func TestChain_Response_ProductOfSections(t *testing.T) {
	coeffs := twoSectionCoeffs()
	c := NewChain(coeffs)

	const sr = 512.0
	for _, f := range []float64{1, 10, 50, 200} {
		want := coeffs[0].Response(f, sr) * coeffs[1].Response(f, sr)
		if got := c.Response(f, sr); cmplx.Abs(got-want) > 1e-12 {
			t.Fatalf("%v Hz: got %v, want %v", f, got, want)
		}
	}
}

func TestChain_Prime_ConstantInputIsSteady(t *testing.T) {
	coeffs := twoSectionCoeffs()
	c := NewChain(coeffs)
	c.Prime(3)

	want := 3 * coeffs[0].DCGain() * coeffs[1].DCGain()

	for i := range 8 {
		if got := c.ProcessSample(3); !almostEqual(got, want, eps) {
			t.Fatalf("sample %d: got %v, want %v", i, got, want)
		}
	}
}
