package quantify

import "github.com/agenthands/causet/internal/core/model"

// linkDraw is one link's freshly drawn estimate vectors. All three
// vectors share the run's sample size.
type linkDraw struct {
	link        *model.Link
	credibility []float64
	strength    []float64
	confidence  []float64
}

// normalizeWeights turns raw per-link samples into normalized
// contribution weights. The weight numerator is credibility x
// confidence (m1 x m3, the canonical formula); the denominator Z[p] is
// that product summed elementwise over every parallel link from parent
// p into the target.
//
// Invariant: for a fixed parent, the weights of its links sum to 1 at
// every sample index.
//
// A zero denominator at any index is a DegenerateWeightError unless
// substituteZero is set, in which case the weight is 0 there.
func normalizeWeights(parents []string, draws map[string][]*linkDraw, size int, substituteZero bool) (map[string][]float64, error) {
	weights := make(map[string][]float64)

	for _, p := range parents {
		z := make([]float64, size)
		numerators := make([][]float64, len(draws[p]))

		for i, d := range draws[p] {
			num := make([]float64, size)
			for j := range num {
				num[j] = d.credibility[j] * d.confidence[j]
				z[j] += num[j]
			}
			numerators[i] = num
		}

		for i, d := range draws[p] {
			w := make([]float64, size)
			for j := range w {
				if z[j] == 0 {
					if !substituteZero {
						return nil, &DegenerateWeightError{Parent: p}
					}
					continue // weight stays 0
				}
				w[j] = numerators[i][j] / z[j]
			}
			weights[d.link.ID] = w
		}
	}

	return weights, nil
}
