package significance

import (
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// DistanceTolerance absorbs rounding when comparing shuffled and observed
// cosine distances.
const DistanceTolerance = 1e-12

// CosineResult reports the similarity of the mean task and mean baseline
// vectors and its permutation p-value.
type CosineResult struct {
	Similarity  float64 `json:"similarity"`
	Distance    float64 `json:"distance"`
	PValue      float64 `json:"p_value"`
	Iterations  int     `json:"iterations"`
	Significant bool    `json:"significant"`
}

// CosineTest compares task against baseline by cosine similarity. The p-value
// is the fraction of iterations in which a random permutation of the
// baseline components lies at least as far from task as baseline itself.
// A zero-norm input yields similarity 0, distance 1 and p 1.
func CosineTest(task, baseline []float64, iterations int, seed uint64, alpha float64) CosineResult {
	res := CosineResult{Distance: 1, PValue: 1, Iterations: max(iterations, 0)}

	u, ok := unit(task)
	if !ok {
		return res
	}

	v, ok := unit(baseline)
	if !ok {
		return res
	}

	res.Similarity = floats.Dot(u, v)
	res.Distance = 1 - res.Similarity

	if iterations <= 0 {
		return res
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	shuffled := slices.Clone(v)
	hits := 0

	for range iterations {
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		if 1-floats.Dot(u, shuffled) >= res.Distance-DistanceTolerance {
			hits++
		}
	}

	res.PValue = float64(hits) / float64(iterations)
	res.Significant = res.PValue < alpha

	return res
}

func unit(x []float64) ([]float64, bool) {
	if len(x) == 0 {
		return nil, false
	}

	norm := floats.Norm(x, 2)
	if norm == 0 {
		return nil, false
	}

	out := slices.Clone(x)
	floats.Scale(1/norm, out)

	return out, true
}
