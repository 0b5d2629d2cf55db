// Package smooth provides the per-window temporal smoothing applied to scalar
// calibration metrics.
package smooth

import (
	"fmt"
	"math"
)

// DefaultAlpha is the EMA weight given to the newest value.
const DefaultAlpha = 0.3

// DefaultMinSNR is the peak SNR below which a contribution is forced to zero.
const DefaultMinSNR = 0.2

// EMA is an exponential moving average. The zero value is not usable; create
// one with NewEMA. An EMA is owned by a single caller and is not safe for
// concurrent use.
type EMA struct {
	alpha   float64
	value   float64
	primed  bool
	samples int
}

// NewEMA returns an EMA with weight alpha in (0, 1].
func NewEMA(alpha float64) (*EMA, error) {
	if !(alpha > 0 && alpha <= 1) {
		return nil, fmt.Errorf("smooth: alpha %g outside (0, 1]", alpha)
	}

	return &EMA{alpha: alpha}, nil
}

// Update folds x into the average and returns the new smoothed value. The
// first update returns x unchanged.
func (e *EMA) Update(x float64) float64 {
	if !e.primed {
		e.value = x
		e.primed = true
	} else {
		e.value = e.alpha*x + (1-e.alpha)*e.value
	}

	e.samples++

	return e.value
}

// Value returns the current smoothed value and whether any update happened.
func (e *EMA) Value() (float64, bool) {
	return e.value, e.primed
}

// Alpha returns the smoothing weight.
func (e *EMA) Alpha() float64 {
	return e.alpha
}

// Count returns the number of updates since the last reset.
func (e *EMA) Count() int {
	return e.samples
}

// Reset forgets all history.
func (e *EMA) Reset() {
	e.value = 0
	e.primed = false
	e.samples = 0
}

// Contribution weights a relative band power by its peak-SNR quality. When
// snr reaches minSNR the result is relative*snr/(snr+1); otherwise, including
// NaN snr, it is zero.
func Contribution(relative, snr, minSNR float64) float64 {
	if math.IsNaN(snr) || snr < minSNR {
		return 0
	}

	return relative * snr / (snr + 1)
}
