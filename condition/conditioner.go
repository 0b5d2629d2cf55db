// Package condition cleans raw biosignal windows before spectral analysis.
//
// A [Conditioner] runs three stages over each window: adaptive artifact
// suppression, a zero-phase mains notch and a zero-phase Butterworth
// band-pass. Windows too short for the zero-phase padding come back as zeros.
package condition

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/cwbudde/algo-eeg/dsp/filter/biquad"
	"github.com/cwbudde/algo-eeg/dsp/filter/design"
	timestats "github.com/cwbudde/algo-eeg/stats/time"
)

// Config parameterises a Conditioner.
type Config struct {
	SampleRate float64

	MainsHz float64 // notch centre; 0 disables the notch
	NotchQ  float64

	BandLowHz  float64
	BandHighHz float64
	BandOrder  int // Butterworth prototype order, one biquad section per order

	Neighbourhood int     // artifact replacement half-width in samples
	ArtifactSigma float64 // threshold = mean + ArtifactSigma*std
}

// DefaultConfig returns the conditioner defaults for a 512 Hz, 50 Hz mains
// recording.
func DefaultConfig() Config {
	return Config{
		SampleRate:    512,
		MainsHz:       50,
		NotchQ:        30,
		BandLowHz:     1,
		BandHighHz:    45,
		BandOrder:     2,
		Neighbourhood: 10,
		ArtifactSigma: 3,
	}
}

// Conditioner applies artifact suppression, notch and band-pass filtering.
// Coefficients are designed once; Process is safe for concurrent use.
type Conditioner struct {
	cfg      Config
	notch    []biquad.Coefficients
	bandpass []biquad.Coefficients
}

// New designs the filters described by cfg. The band-pass high edge is
// clamped just below Nyquist and the notch is dropped when the mains
// frequency is not below Nyquist.
func New(cfg Config) (*Conditioner, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("condition: invalid sample rate %g", cfg.SampleRate)
	}

	if cfg.Neighbourhood < 0 || cfg.ArtifactSigma <= 0 {
		return nil, fmt.Errorf("condition: invalid artifact parameters (n=%d, sigma=%g)",
			cfg.Neighbourhood, cfg.ArtifactSigma)
	}

	nyquist := cfg.SampleRate / 2
	c := &Conditioner{cfg: cfg}

	if cfg.MainsHz > 0 && cfg.MainsHz < nyquist {
		if cfg.NotchQ <= 0 {
			return nil, fmt.Errorf("condition: invalid notch Q %g", cfg.NotchQ)
		}

		c.notch = []biquad.Coefficients{design.Notch(cfg.MainsHz, cfg.NotchQ, cfg.SampleRate)}
	}

	high := min(cfg.BandHighHz, 0.99*nyquist)

	bp, err := design.ButterworthBandpass(cfg.BandLowHz, high, cfg.BandOrder, cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("condition: band-pass %g-%g Hz: %w", cfg.BandLowHz, high, err)
	}

	c.bandpass = bp

	return c, nil
}

// Config returns the conditioner configuration.
func (c *Conditioner) Config() Config {
	return c.cfg
}

// MinLength is the shortest window Process filters; shorter windows produce
// zeros.
func (c *Conditioner) MinLength() int {
	return biquad.PadLength(max(len(c.notch), len(c.bandpass))) + 1
}

// Process returns a cleaned copy of window with the same length.
func (c *Conditioner) Process(window []float64) []float64 {
	clean := SuppressArtifacts(window, c.cfg.Neighbourhood, c.cfg.ArtifactSigma)

	for _, stage := range [][]biquad.Coefficients{c.notch, c.bandpass} {
		if len(stage) == 0 {
			continue
		}

		// FiltFilt only fails on windows shorter than its padding.
		out, err := biquad.FiltFilt(stage, clean)
		if err != nil {
			return make([]float64, len(window))
		}

		clean = out
	}

	return clean
}

// SuppressArtifacts replaces every sample whose magnitude exceeds
// mean + sigma*std with the median of its ±n neighbours that are themselves
// within the threshold, or with the whole-window median when no such
// neighbour exists. Replacement medians are taken from the original samples.
// The input is not modified.
func SuppressArtifacts(window []float64, n int, sigma float64) []float64 {
	out := make([]float64, len(window))
	copy(out, window)

	if len(window) == 0 {
		return out
	}

	st := timestats.Calculate(window)
	threshold := st.Mean + sigma*st.Std

	flagged := make([]bool, len(window))
	found := false

	for i, v := range window {
		if math.Abs(v) > threshold {
			flagged[i] = true
			found = true
		}
	}

	if !found {
		return out
	}

	global, err := stats.Median(window)
	if err != nil {
		global = 0
	}

	neighbours := make([]float64, 0, 2*n)

	for i := range window {
		if !flagged[i] {
			continue
		}

		neighbours = neighbours[:0]

		for j := max(0, i-n); j <= min(len(window)-1, i+n); j++ {
			if j != i && !flagged[j] {
				neighbours = append(neighbours, window[j])
			}
		}

		m, err := stats.Median(neighbours)
		if err != nil {
			m = global
		}

		out[i] = m
	}

	return out
}
