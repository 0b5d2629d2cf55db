package significance

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// WelchTTest runs a two-sided unequal-variance t-test of a against b. Samples
// with fewer than two values give t=0, p=1. When both variances are zero the
// p-value is 1 for equal means and 0 otherwise.
func WelchTTest(a, b []float64) (t, p float64) {
	na, nb := float64(len(a)), float64(len(b))
	if na < 2 || nb < 2 {
		return 0, 1
	}

	ma, va := stat.MeanVariance(a, nil)
	mb, vb := stat.MeanVariance(b, nil)

	sa, sb := va/na, vb/nb
	se := math.Sqrt(sa + sb)

	if se == 0 {
		if ma == mb {
			return 0, 1
		}

		return math.Copysign(math.Inf(1), ma-mb), 0
	}

	t = (ma - mb) / se
	df := (sa + sb) * (sa + sb) / (sa*sa/(na-1) + sb*sb/(nb-1))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p = 2 * dist.Survival(math.Abs(t))

	return t, min(p, 1)
}

// MannWhitneyU runs a two-sided Mann-Whitney U test using the normal
// approximation with tie correction and continuity correction. u is the
// statistic of a. Empty samples or a zero tie-corrected variance give p=1.
func MannWhitneyU(a, b []float64) (u, p float64) {
	n1, n2 := len(a), len(b)
	if n1 == 0 || n2 == 0 {
		return 0, 1
	}

	ranks, tieTerm := midRanks(a, b)

	r1 := 0.0
	for _, r := range ranks[:n1] {
		r1 += r
	}

	fn1, fn2 := float64(n1), float64(n2)
	n := fn1 + fn2

	u = r1 - fn1*(fn1+1)/2
	mu := fn1 * fn2 / 2

	variance := fn1 * fn2 / 12 * ((n + 1) - tieTerm/(n*(n-1)))
	if variance <= 0 || n < 2 {
		return u, 1
	}

	uMax := max(u, fn1*fn2-u)
	z := (uMax - mu - 0.5) / math.Sqrt(variance)
	p = 2 * distuv.UnitNormal.Survival(z)

	return u, min(p, 1)
}

// midRanks ranks the concatenation of a and b, averaging ranks across ties.
// It also returns sum(t^3 - t) over tie groups.
func midRanks(a, b []float64) ([]float64, float64) {
	n := len(a) + len(b)

	values := make([]float64, 0, n)
	values = append(values, a...)
	values = append(values, b...)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(i, j int) bool { return values[order[i]] < values[order[j]] })

	ranks := make([]float64, n)
	tieTerm := 0.0

	for i := 0; i < n; {
		j := i
		for j+1 < n && values[order[j+1]] == values[order[i]] {
			j++
		}

		rank := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = rank
		}

		if t := float64(j - i + 1); t > 1 {
			tieTerm += t*t*t - t
		}

		i = j + 1
	}

	return ranks, tieTerm
}

// CohensD is the standardised mean difference (mean(a)-mean(b))/pooled std.
// It is 0 when the pooled standard deviation is 0 or undefined.
func CohensD(a, b []float64) float64 {
	na, nb := float64(len(a)), float64(len(b))
	if na == 0 || nb == 0 || na+nb <= 2 {
		return 0
	}

	ma, va := meanVariance(a)
	mb, vb := meanVariance(b)

	pooled := math.Sqrt(((na-1)*va + (nb-1)*vb) / (na + nb - 2))
	if pooled == 0 || math.IsNaN(pooled) {
		return 0
	}

	return (ma - mb) / pooled
}

// meanVariance is stat.MeanVariance with a zero variance for single values.
func meanVariance(x []float64) (mean, variance float64) {
	if len(x) < 2 {
		return stat.Mean(x, nil), 0
	}

	return stat.MeanVariance(x, nil)
}

// Magnitude classifies an absolute effect size.
type Magnitude string

const (
	Small  Magnitude = "small"
	Medium Magnitude = "medium"
	Large  Magnitude = "large"
)

// ClassifyEffect maps |d| to a Magnitude: below 0.5 small, up to 0.8 medium,
// above 0.8 large.
func ClassifyEffect(d float64) Magnitude {
	d = math.Abs(d)

	switch {
	case d < 0.5:
		return Small
	case d <= 0.8:
		return Medium
	default:
		return Large
	}
}
