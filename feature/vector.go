package feature

import (
	"encoding/json"
	"fmt"
)

// BandFeatures holds the per-band part of a feature vector.
type BandFeatures struct {
	Power    float64 // PSD integral over the band
	Relative float64 // Power / TotalPower, in [0,1]
	PeakFreq float64 // Hz
	PeakAmp  float64 // PSD value at PeakFreq
	SNR      float64 // Power / (TotalPower - Power)
}

// Vector is the feature set computed for one window.
type Vector struct {
	Bands [NumBands]BandFeatures

	AlphaThetaRatio float64
	BetaAlphaRatio  float64
	TotalPower      float64 // time-domain variance of the conditioned window

	SpectralCentroid float64
	SpectralEdge     float64
	SpectralFlatness float64
}

// Band returns the features of band b.
func (v *Vector) Band(b Band) BandFeatures {
	return v.Bands[b]
}

type field struct {
	name string
	ptr  func(v *Vector) *float64
}

var fields = buildFields()

var fieldIndex = func() map[string]int {
	m := make(map[string]int, len(fields))
	for i, f := range fields {
		m[f.name] = i
	}

	return m
}()

func buildFields() []field {
	out := make([]field, 0, NumBands*5+6)

	for _, b := range Bands() {
		name := b.String()
		out = append(out,
			field{name + "_power", func(v *Vector) *float64 { return &v.Bands[b].Power }},
			field{name + "_relative", func(v *Vector) *float64 { return &v.Bands[b].Relative }},
			field{name + "_peak_freq", func(v *Vector) *float64 { return &v.Bands[b].PeakFreq }},
			field{name + "_peak_amp", func(v *Vector) *float64 { return &v.Bands[b].PeakAmp }},
			field{name + "_snr", func(v *Vector) *float64 { return &v.Bands[b].SNR }},
		)
	}

	return append(out,
		field{"alpha_theta_ratio", func(v *Vector) *float64 { return &v.AlphaThetaRatio }},
		field{"beta_alpha_ratio", func(v *Vector) *float64 { return &v.BetaAlphaRatio }},
		field{"total_power", func(v *Vector) *float64 { return &v.TotalPower }},
		field{"spectral_centroid", func(v *Vector) *float64 { return &v.SpectralCentroid }},
		field{"spectral_edge_freq", func(v *Vector) *float64 { return &v.SpectralEdge }},
		field{"spectral_flatness", func(v *Vector) *float64 { return &v.SpectralFlatness }},
	)
}

// Names returns the feature keys in their canonical order. The returned slice
// is a copy.
func Names() []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.name
	}

	return out
}

// NumFeatures is the length of Names().
func NumFeatures() int {
	return len(fields)
}

// Values returns the feature values in the order of Names().
func (v Vector) Values() []float64 {
	out := make([]float64, len(fields))
	for i, f := range fields {
		out[i] = *f.ptr(&v)
	}

	return out
}

// Get returns the value stored under a feature key.
func (v Vector) Get(name string) (float64, bool) {
	i, ok := fieldIndex[name]
	if !ok {
		return 0, false
	}

	return *fields[i].ptr(&v), true
}

// Set stores value under a feature key.
func (v *Vector) Set(name string, value float64) error {
	i, ok := fieldIndex[name]
	if !ok {
		return fmt.Errorf("feature: unknown key %q", name)
	}

	*fields[i].ptr(v) = value

	return nil
}

// Map returns the vector as a key/value map.
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, len(fields))
	for _, f := range fields {
		m[f.name] = *f.ptr(&v)
	}

	return m
}

// MarshalJSON encodes the vector as a flat object keyed by feature name.
func (v Vector) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Map())
}

// UnmarshalJSON decodes a flat feature object. Unknown keys are rejected.
func (v *Vector) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	*v = Vector{}

	for name, value := range m {
		if err := v.Set(name, value); err != nil {
			return err
		}
	}

	return nil
}
