package feature

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-eeg/dsp/spectrum"
	"github.com/cwbudde/algo-eeg/stats/frequency"
	timestats "github.com/cwbudde/algo-eeg/stats/time"
)

// Epsilon floors every denominator in ratio and SNR features.
const Epsilon = 1e-10

// Config parameterises an Extractor.
type Config struct {
	SampleRate float64
	WindowSize int

	// PeakProminence is the minimum peak prominence as a fraction of the
	// band's maximum PSD value.
	PeakProminence float64

	// ShapeRange limits the spectral shape descriptors.
	ShapeRange Range
}

// DefaultConfig returns the extractor defaults for a 512 Hz stream.
func DefaultConfig() Config {
	return Config{
		SampleRate:     512,
		WindowSize:     512,
		PeakProminence: 0.1,
		ShapeRange:     Range{Lo: 1, Hi: 45},
	}
}

// Spectrum is the PSD a vector was derived from.
type Spectrum struct {
	Freqs []float64
	PSD   []float64
}

// PeakSNR returns the maximum PSD inside signal divided by the mean PSD over
// the noise bands. The noise mean pools the bins of both bands. The result is
// NaN when signal selects no bins or neither noise band does.
func (s Spectrum) PeakSNR(signal Range, noise ...Range) float64 {
	_, peak, ok := spectrum.BandMax(s.PSD, s.Freqs, signal.Lo, signal.Hi)
	if !ok {
		return math.NaN()
	}

	sum, bins := 0.0, 0

	for _, r := range noise {
		mean, n := spectrum.BandMean(s.PSD, s.Freqs, r.Lo, r.Hi)
		sum += mean * float64(n)
		bins += n
	}

	if bins == 0 {
		return math.NaN()
	}

	return peak / max(sum/float64(bins), Epsilon)
}

// Extractor computes feature vectors from fixed-size windows.
//
// An Extractor owns the Welch estimator and its FFT scratch and is not safe
// for concurrent use.
type Extractor struct {
	cfg   Config
	welch *spectrum.Welch
	buf   []float64
}

// NewExtractor validates cfg and prepares the PSD estimator.
func NewExtractor(cfg Config) (*Extractor, error) {
	if cfg.PeakProminence < 0 {
		return nil, fmt.Errorf("feature: negative peak prominence %g", cfg.PeakProminence)
	}

	welch, err := spectrum.NewWelch(cfg.SampleRate, cfg.WindowSize)
	if err != nil {
		return nil, fmt.Errorf("feature: %w", err)
	}

	return &Extractor{
		cfg:   cfg,
		welch: welch,
		buf:   make([]float64, cfg.WindowSize),
	}, nil
}

// Config returns the extractor configuration.
func (e *Extractor) Config() Config {
	return e.cfg
}

// MinLength returns the shortest window Extract turns into features.
func (e *Extractor) MinLength() int {
	return e.cfg.WindowSize
}

// Extract computes the feature vector of the most recent WindowSize samples
// of window. The input is not modified. A window shorter than MinLength
// yields a zero vector and an empty spectrum; an error is returned only when
// the PSD estimate itself fails.
func (e *Extractor) Extract(window []float64) (Vector, Spectrum, error) {
	if len(window) < e.cfg.WindowSize {
		return Vector{}, Spectrum{}, nil
	}

	copy(e.buf, window[len(window)-e.cfg.WindowSize:])
	timestats.RemoveMean(e.buf)

	psd, err := e.welch.PSD(e.buf)
	if err != nil {
		return Vector{}, Spectrum{}, fmt.Errorf("feature: %w", err)
	}

	sp := Spectrum{Freqs: e.welch.Frequencies(), PSD: psd}

	var v Vector

	v.TotalPower = max(timestats.Variance(e.buf), 0)

	for _, b := range Bands() {
		v.Bands[b] = e.bandFeatures(sp, b.Range(), v.TotalPower)
	}

	v.AlphaThetaRatio = v.Bands[Alpha].Power / (v.Bands[Theta].Power + Epsilon)
	v.BetaAlphaRatio = v.Bands[Beta].Power / (v.Bands[Alpha].Power + Epsilon)

	shape := frequency.Calculate(sp.PSD, sp.Freqs, e.cfg.ShapeRange.Lo, e.cfg.ShapeRange.Hi)
	v.SpectralCentroid = shape.Centroid
	v.SpectralEdge = shape.Edge
	v.SpectralFlatness = shape.Flatness

	return v, sp, nil
}

func (e *Extractor) bandFeatures(sp Spectrum, r Range, total float64) BandFeatures {
	var bf BandFeatures

	bf.Power = spectrum.IntegrateBand(sp.PSD, sp.Freqs, r.Lo, r.Hi)
	if total > 0 {
		bf.Relative = min(max(bf.Power/total, 0), 1)
	}

	bf.PeakFreq, bf.PeakAmp = e.peak(sp, r)
	bf.SNR = bf.Power / max(total-bf.Power, Epsilon)

	return bf
}

// peak picks the highest local maximum whose prominence clears the configured
// fraction of the band maximum, falling back to the band argmax and, for an
// empty band, to its midpoint with zero amplitude.
func (e *Extractor) peak(sp Spectrum, r Range) (freq, amp float64) {
	first, last, ok := spectrum.BandMask(sp.Freqs, r.Lo, r.Hi)
	if !ok {
		return r.Mid(), 0
	}

	band := sp.PSD[first : last+1]

	bandMax := band[0]
	argMax := 0

	for i, p := range band {
		if p > bandMax {
			bandMax, argMax = p, i
		}
	}

	if p, found := spectrum.Highest(spectrum.FindPeaks(band, e.cfg.PeakProminence*bandMax)); found {
		return sp.Freqs[first+p.Index], p.Value
	}

	return sp.Freqs[first+argMax], bandMax
}
