package spectrum

import (
	"testing"

	"github.com/cwbudde/algo-eeg/internal/testutil"
)

func TestPower(t *testing.T) {
	got := Power([]complex128{3 + 4i, 1, 2i, -1 - 1i})
	testutil.RequireSliceNearlyEqual(t, got, []float64{25, 1, 4, 2}, 1e-12)

	if Power(nil) != nil {
		t.Fatal("Power(nil) != nil")
	}
}

func TestFrequencies(t *testing.T) {
	testutil.RequireSliceNearlyEqual(t, Frequencies(8, 512), []float64{0, 64, 128, 192, 256}, 1e-12)

	if Frequencies(0, 512) != nil {
		t.Fatal("Frequencies(0) != nil")
	}
}
