package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1, 4, 2, 4)
	want := []float64{0, 2, 0, -2}
	RequireSliceNearlyEqual(t, s, want, 1e-12)
}

func TestDeterministicNoise_Reproducible(t *testing.T) {
	a := DeterministicNoise(42, 1, 32)
	b := DeterministicNoise(42, 1, 32)
	RequireSliceNearlyEqual(t, a, b, 0)

	for i, v := range a {
		if math.Abs(v) > 1 {
			t.Fatalf("index %d out of range: %v", i, v)
		}
	}
}

func TestGaussianSeries_Moments(t *testing.T) {
	x := GaussianSeries(1, 5, 2, 20000)

	mean := 0.0
	for _, v := range x {
		mean += v
	}

	mean /= float64(len(x))
	if math.Abs(mean-5) > 0.1 {
		t.Fatalf("mean = %v, want ~5", mean)
	}
}

func TestMix(t *testing.T) {
	got := Mix([]float64{1, 2, 3}, []float64{1, 1, 1}, DC(0.5, 3))
	RequireSliceNearlyEqual(t, got, []float64{2.5, 3.5, 4.5}, 0)

	if Mix() != nil {
		t.Fatal("Mix() should be nil")
	}
}
