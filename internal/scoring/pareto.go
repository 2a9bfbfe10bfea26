package scoring

// ParetoCandidate is a shortlisted comparable described by how similar it is
// and how much it had to be adjusted.
type ParetoCandidate struct {
	ID                 string  `json:"id"`
	Similarity         float64 `json:"similarity"`
	GrossAdjustmentPct float64 `json:"gross_adjustment_pct"` // lower is better
}

// ComputeFrontier returns the Pareto-optimal candidates from the input set,
// in input order. A candidate is dominated if another candidate is at least
// as similar and needs no more gross adjustment, and is strictly better on
// one of the two. O(n^2), fine for shortlist sizes.
func ComputeFrontier(candidates []ParetoCandidate) []ParetoCandidate {
	if len(candidates) <= 1 {
		return candidates
	}

	var frontier []ParetoCandidate
	for i := range candidates {
		dominated := false
		for j := range candidates {
			if i == j {
				continue
			}
			if dominates(candidates[j], candidates[i]) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, candidates[i])
		}
	}
	return frontier
}

// dominates returns true if a dominates b.
func dominates(a, b ParetoCandidate) bool {
	if a.Similarity < b.Similarity || a.GrossAdjustmentPct > b.GrossAdjustmentPct {
		return false
	}
	return a.Similarity > b.Similarity || a.GrossAdjustmentPct < b.GrossAdjustmentPct
}
