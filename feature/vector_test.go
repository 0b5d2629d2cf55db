package feature

import (
	"encoding/json"
	"testing"
)

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != NumFeatures() || len(names) != NumBands*5+6 {
		t.Fatalf("len(Names()) = %d", len(names))
	}

	required := []string{
		"delta_power", "theta_relative", "alpha_peak_freq", "beta_peak_amp",
		"gamma_snr", "alpha_theta_ratio", "beta_alpha_ratio", "total_power",
	}

	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			t.Fatalf("duplicate key %q", n)
		}

		seen[n] = true
	}

	for _, r := range required {
		if !seen[r] {
			t.Errorf("missing key %q", r)
		}
	}
}

func TestVector_GetSetValues(t *testing.T) {
	var v Vector

	v.Bands[Alpha].Power = 3
	v.TotalPower = 9

	if got, ok := v.Get("alpha_power"); !ok || got != 3 {
		t.Fatalf("Get(alpha_power) = %v, %v", got, ok)
	}

	if _, ok := v.Get("nope"); ok {
		t.Fatal("unknown key reported present")
	}

	if err := v.Set("theta_snr", 1.5); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if v.Bands[Theta].SNR != 1.5 {
		t.Fatalf("theta SNR = %v", v.Bands[Theta].SNR)
	}

	if err := v.Set("nope", 1); err == nil {
		t.Fatal("Set accepted unknown key")
	}

	values := v.Values()
	for i, name := range Names() {
		want, _ := v.Get(name)
		if values[i] != want {
			t.Errorf("Values()[%d] (%s) = %v, want %v", i, name, values[i], want)
		}
	}
}

func TestVector_JSON(t *testing.T) {
	var v Vector

	v.Bands[Gamma].PeakFreq = 40
	v.SpectralFlatness = 0.25

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var flat map[string]float64
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("Unmarshal flat: %v", err)
	}

	if flat["gamma_peak_freq"] != 40 || len(flat) != NumFeatures() {
		t.Fatalf("flat map = %v", flat)
	}

	var back Vector
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if back != v {
		t.Fatalf("round trip = %+v, want %+v", back, v)
	}
}

func TestBand(t *testing.T) {
	for _, b := range Bands() {
		parsed, err := ParseBand(b.String())
		if err != nil || parsed != b {
			t.Errorf("ParseBand(%q) = %v, %v", b.String(), parsed, err)
		}

		if !b.Range().Valid() {
			t.Errorf("%s range invalid", b)
		}
	}

	if _, err := ParseBand("kappa"); err == nil {
		t.Error("ParseBand accepted unknown band")
	}

	if Band(9).Valid() || Band(9).String() != "band(9)" {
		t.Error("out-of-range band misreported")
	}

	if got := Alpha.Range(); got != (Range{8, 12}) {
		t.Errorf("alpha range = %v", got)
	}
}
