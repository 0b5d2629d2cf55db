package spectrum

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-eeg/dsp/window"
)

var (
	// ErrTooShort is returned when the input holds fewer samples than one segment.
	ErrTooShort = errors.New("spectrum: signal shorter than one segment")
	// ErrInvalidSegment is returned for non-positive segment sizes or sample rates.
	ErrInvalidSegment = errors.New("spectrum: invalid segment configuration")
)

// WelchOption configures a Welch estimator.
type WelchOption func(*welchConfig)

type welchConfig struct {
	overlap float64
	window  window.Type
}

// WithOverlap sets the fractional segment overlap in [0, 1). Default 0.5.
func WithOverlap(fraction float64) WelchOption {
	return func(c *welchConfig) {
		if fraction >= 0 && fraction < 1 {
			c.overlap = fraction
		}
	}
}

// WithWindow selects the segment taper. Default Hann.
func WithWindow(t window.Type) WelchOption {
	return func(c *welchConfig) {
		c.window = t
	}
}

// Welch estimates one-sided power spectral density with Welch's averaged
// periodogram method. Each segment has its mean removed and is tapered with a
// periodic window before the FFT. Output is density-scaled (units^2/Hz).
//
// A Welch value owns FFT scratch space and is not safe for concurrent use.
type Welch struct {
	sampleRate float64
	segment    int
	step       int
	taper      []float64
	scale      float64

	plan *algofft.Plan[complex128]
	in   []complex128
	out  []complex128
	seg  []float64
	pow  []float64
}

// NewWelch creates an estimator for the given sample rate and segment length.
func NewWelch(sampleRate float64, segment int, opts ...WelchOption) (*Welch, error) {
	if sampleRate <= 0 || segment < 2 {
		return nil, ErrInvalidSegment
	}

	cfg := welchConfig{overlap: 0.5, window: window.TypeHann}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	taper := window.Generate(cfg.window, segment, window.WithPeriodic())

	powerSum, err := window.PowerSum(taper)
	if err != nil {
		return nil, err
	}

	plan, err := algofft.NewPlan64(segment)
	if err != nil {
		return nil, fmt.Errorf("spectrum: fft plan for %d points: %w", segment, err)
	}

	step := segment - int(cfg.overlap*float64(segment))
	if step < 1 {
		step = 1
	}

	return &Welch{
		sampleRate: sampleRate,
		segment:    segment,
		step:       step,
		taper:      taper,
		scale:      1 / (sampleRate * powerSum),
		plan:       plan,
		in:         make([]complex128, segment),
		out:        make([]complex128, segment),
		seg:        make([]float64, segment),
		pow:        make([]float64, segment),
	}, nil
}

// Segment returns the segment length in samples.
func (w *Welch) Segment() int { return w.segment }

// Resolution returns the bin spacing in Hz.
func (w *Welch) Resolution() float64 { return w.sampleRate / float64(w.segment) }

// Frequencies returns the bin frequencies matching the PSD output.
func (w *Welch) Frequencies() []float64 {
	return Frequencies(w.segment, w.sampleRate)
}

// PSD returns the one-sided power spectral density of x (length
// Segment()/2+1). Segments that do not fit completely at the tail are
// ignored.
func (w *Welch) PSD(x []float64) ([]float64, error) {
	if len(x) < w.segment {
		return nil, ErrTooShort
	}

	bins := w.segment/2 + 1
	psd := make([]float64, bins)

	count := 0
	for start := 0; start+w.segment <= len(x); start += w.step {
		if err := w.accumulate(psd, x[start:start+w.segment]); err != nil {
			return nil, err
		}

		count++
	}

	norm := w.scale / float64(count)
	vecmath.ScaleBlock(psd, psd, norm)

	// Fold negative frequencies into the one-sided estimate. DC is never
	// doubled, nor is Nyquist when the segment length is even.
	last := bins
	if w.segment%2 == 0 {
		last = bins - 1
	}

	for k := 1; k < last; k++ {
		psd[k] *= 2
	}

	return psd, nil
}

func (w *Welch) accumulate(psd, segment []float64) error {
	mean := 0.0
	for _, v := range segment {
		mean += v
	}

	mean /= float64(len(segment))

	for i, v := range segment {
		w.seg[i] = v - mean
	}

	if err := window.ApplyCoefficientsInPlace(w.seg, w.taper); err != nil {
		return err
	}

	for i, v := range w.seg {
		w.in[i] = complex(v, 0)
	}

	if err := w.plan.Forward(w.out, w.in); err != nil {
		return fmt.Errorf("spectrum: forward fft: %w", err)
	}

	PowerTo(w.pow, w.out)
	vecmath.AddBlockInPlace(psd, w.pow[:len(psd)])

	return nil
}
