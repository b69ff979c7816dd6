package quantify

import "math"

// aggregate reduces each parent's links into one sampled
// conditional-probability vector.
//
// Arithmetic: cp[p] = sum over links of weight * strength (elementwise).
// Geometric:  cp[p] = product over links of strength ^ weight,
// starting from the all-ones vector.
//
// Both require at least one contributing link per parent.
func aggregate(method Method, parents []string, draws map[string][]*linkDraw, weights map[string][]float64, size int) (map[string][]float64, error) {
	cp := make(map[string][]float64, len(parents))

	for _, p := range parents {
		if len(draws[p]) == 0 {
			return nil, &NoEvidenceError{Parent: p}
		}

		v := make([]float64, size)
		if method == Geometric {
			for j := range v {
				v[j] = 1
			}
		}

		for _, d := range draws[p] {
			w := weights[d.link.ID]
			switch method {
			case Arithmetic:
				for j := range v {
					v[j] += w[j] * d.strength[j]
				}
			case Geometric:
				for j := range v {
					v[j] *= math.Pow(d.strength[j], w[j])
				}
			}
		}
		cp[p] = v
	}

	return cp, nil
}
