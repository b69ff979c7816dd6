package quantify

import "golang.org/x/sync/errgroup"

// combineSubsets enumerates every non-empty subset of the parent arena
// by index mask and combines each subset's aggregated conditional
// probabilities with noisy-OR:
//
//	combo = 1 - product over p in S of (1 - cp[p])   (elementwise)
//
// Combination is commutative, so each mask's result is independent of
// iteration order; when more than one worker is configured the masks
// are combined concurrently, each writing its own CPT entry slot.
func (q *Quantifier) combineSubsets(cp map[string][]float64) CPT {
	k := len(q.parents)
	total := 1<<k - 1
	entries := make([]Entry, total)

	combine := func(mask int) Entry {
		members := make([]string, 0, k)
		combo := make([]float64, q.cfg.SampleSize)
		for j := range combo {
			combo[j] = 1
		}
		for i := 0; i < k; i++ {
			if mask&(1<<i) == 0 {
				continue
			}
			members = append(members, q.parents[i])
			v := cp[q.parents[i]]
			for j := range combo {
				combo[j] *= 1 - v[j]
			}
		}
		for j := range combo {
			combo[j] = 1 - combo[j]
		}
		// The arena is sorted, so members come out in canonical order.
		return summarize(members, combo)
	}

	if q.cfg.Workers > 1 {
		var g errgroup.Group
		g.SetLimit(q.cfg.Workers)
		for mask := 1; mask <= total; mask++ {
			mask := mask
			g.Go(func() error {
				entries[mask-1] = combine(mask)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for mask := 1; mask <= total; mask++ {
			entries[mask-1] = combine(mask)
		}
	}

	cpt := make(CPT, total)
	for _, e := range entries {
		cpt[SubsetKey(e.Members)] = e
	}
	return cpt
}
