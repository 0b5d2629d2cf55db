package spectrum

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-eeg/internal/testutil"
)

func TestWelch_SinePeakAndPower(t *testing.T) {
	const (
		sr  = 512.0
		n   = 512
		amp = 20.0
	)

	w, err := NewWelch(sr, n)
	if err != nil {
		t.Fatalf("NewWelch: %v", err)
	}

	x := testutil.DeterministicSine(10, sr, amp, n)

	psd, err := w.PSD(x)
	if err != nil {
		t.Fatalf("PSD: %v", err)
	}

	if len(psd) != n/2+1 {
		t.Fatalf("len(psd) = %d, want %d", len(psd), n/2+1)
	}

	testutil.RequireFinite(t, psd)

	peak := 0
	for i := range psd {
		if psd[i] > psd[peak] {
			peak = i
		}
	}

	if f := w.Frequencies()[peak]; math.Abs(f-10) > w.Resolution() {
		t.Fatalf("peak at %v Hz, want 10 Hz", f)
	}

	total := 0.0
	for _, p := range psd {
		total += p * w.Resolution()
	}

	want := amp * amp / 2
	if math.Abs(total-want)/want > 0.02 {
		t.Fatalf("integrated power = %v, want ~%v", total, want)
	}
}

func TestWelch_AveragesOverlappingSegments(t *testing.T) {
	w, err := NewWelch(256, 128)
	if err != nil {
		t.Fatal(err)
	}

	x := testutil.DeterministicNoise(7, 1, 512)

	psd, err := w.PSD(x)
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireFinite(t, psd)

	for i, p := range psd {
		if p < 0 {
			t.Fatalf("bin %d negative: %v", i, p)
		}
	}
}

func TestWelch_Errors(t *testing.T) {
	if _, err := NewWelch(0, 128); !errors.Is(err, ErrInvalidSegment) {
		t.Fatalf("err = %v, want ErrInvalidSegment", err)
	}

	w, err := NewWelch(256, 128)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := w.PSD(make([]float64, 64)); !errors.Is(err, ErrTooShort) {
		t.Fatalf("err = %v, want ErrTooShort", err)
	}
}
