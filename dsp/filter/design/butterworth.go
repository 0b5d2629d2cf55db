package design

import (
	"errors"
	"math"
	"math/cmplx"
	"sort"

	"github.com/cwbudde/algo-eeg/dsp/filter/biquad"
)

// ErrInvalidParams is returned when band edges, order or sample rate cannot
// produce a stable band-pass design.
var ErrInvalidParams = errors.New("design: invalid band-pass parameters")

// ButterworthBandpass designs a digital Butterworth band-pass filter from an
// order-N analog prototype. The result has 2N poles arranged as N biquad
// sections, each with zeros at z=1 and z=-1. The cascade is normalized to unit
// gain at the geometric centre of the (pre-warped) pass-band.
func ButterworthBandpass(lowHz, highHz float64, order int, sampleRate float64) ([]biquad.Coefficients, error) {
	if order < 1 || sampleRate <= 0 || lowHz <= 0 || highHz <= lowHz || highHz >= sampleRate/2 {
		return nil, ErrInvalidParams
	}

	fs2 := 2 * sampleRate
	wl := fs2 * math.Tan(math.Pi*lowHz/sampleRate)
	wh := fs2 * math.Tan(math.Pi*highHz/sampleRate)
	bw := wh - wl
	w0 := math.Sqrt(wl * wh)

	poles := make([]complex128, 0, 2*order)

	for k := range order {
		m := float64(-order + 1 + 2*k)
		p := -cmplx.Exp(complex(0, math.Pi*m/float64(2*order)))

		pb := p * complex(bw/2, 0)
		disc := cmplx.Sqrt(pb*pb - complex(w0*w0, 0))

		for _, s := range []complex128{pb + disc, pb - disc} {
			poles = append(poles, (complex(fs2, 0)+s)/(complex(fs2, 0)-s))
		}
	}

	sections := pairPoles(poles)
	if len(sections) != order {
		return nil, ErrInvalidParams
	}

	center := sampleRate / math.Pi * math.Atan(w0/fs2)

	gain := cmplx.Abs(biquad.CascadeResponse(sections, center, sampleRate))
	if gain == 0 || math.IsNaN(gain) || math.IsInf(gain, 0) {
		return nil, ErrInvalidParams
	}

	sections[0].B0 /= gain
	sections[0].B2 /= gain

	return sections, nil
}

// pairPoles groups digital poles into second-order denominators. Complex poles
// are matched with their conjugates; leftover real poles are paired in order.
func pairPoles(poles []complex128) []biquad.Coefficients {
	const imagTol = 1e-12

	var (
		upper []complex128
		reals []float64
	)

	for _, p := range poles {
		switch {
		case imag(p) > imagTol:
			upper = append(upper, p)
		case math.Abs(imag(p)) <= imagTol:
			reals = append(reals, real(p))
		}
	}

	sort.Float64s(reals)

	out := make([]biquad.Coefficients, 0, len(upper)+len(reals)/2)
	for _, p := range upper {
		out = append(out, biquad.Coefficients{
			B0: 1, B1: 0, B2: -1,
			A1: -2 * real(p),
			A2: real(p)*real(p) + imag(p)*imag(p),
		})
	}

	for i := 0; i+1 < len(reals); i += 2 {
		r1, r2 := reals[i], reals[i+1]
		out = append(out, biquad.Coefficients{
			B0: 1, B1: 0, B2: -1,
			A1: -(r1 + r2),
			A2: r1 * r2,
		})
	}

	return out
}
