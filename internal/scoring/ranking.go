package scoring

import (
	"sort"

	"github.com/MikeSquared-Agency/Comps/internal/property"
)

// Ranking defaults.
const (
	DefaultMinScore = 50.0
	DefaultTopN     = 5
)

// Scored is anything carrying an attached similarity score.
type Scored interface {
	Similarity() (float64, bool)
}

// Ranked pairs a scored comparable with its full similarity result and its
// position in the caller's input.
type Ranked struct {
	Comparable property.ComparableProperty `json:"comparable"`
	Result     SimilarityResult            `json:"similarity"`
	Index      int                         `json:"index"`
}

// Similarity implements Scored.
func (r Ranked) Similarity() (float64, bool) {
	return r.Result.Score, true
}

// Rank scores every comparable independently with w and returns them sorted
// by score descending. Ties keep input order. The input slice and its records
// are not modified; each Ranked holds a copy with SimilarityScore,
// DistanceMiles and FactorScores attached.
func (s *Scorer) Rank(subject property.SubjectProperty, comps []property.ComparableProperty, w Weights) []Ranked {
	out := make([]Ranked, 0, len(comps))
	for i, c := range comps {
		res := s.ScoreWith(subject, c, w)

		score := res.Score
		miles := res.DistanceMiles
		c.SimilarityScore = &score
		c.DistanceMiles = &miles
		c.FactorScores = make(map[string]float64, len(res.FactorScores))
		for k, v := range res.FactorScores {
			c.FactorScores[k] = v
		}

		out = append(out, Ranked{Comparable: c, Result: res, Index: i})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Result.Score > out[j].Result.Score
	})
	return out
}

// ScoreAll scores comps with the scorer's weights and returns copies sorted
// by similarity descending.
func (s *Scorer) ScoreAll(subject property.SubjectProperty, comps []property.ComparableProperty) []property.ComparableProperty {
	return s.ScoreAllWith(subject, comps, s.weights)
}

// ScoreAllWith is ScoreAll with an explicit weight vector.
func (s *Scorer) ScoreAllWith(subject property.SubjectProperty, comps []property.ComparableProperty, w Weights) []property.ComparableProperty {
	ranked := s.Rank(subject, comps, w)
	out := make([]property.ComparableProperty, len(ranked))
	for i, r := range ranked {
		out[i] = r.Comparable
	}
	return out
}

// FilterByMinScore keeps entries whose similarity is at least threshold.
// Unscored entries are dropped. Order is preserved.
func FilterByMinScore[T Scored](scored []T, threshold float64) []T {
	out := make([]T, 0, len(scored))
	for _, item := range scored {
		if score, ok := item.Similarity(); ok && score >= threshold {
			out = append(out, item)
		}
	}
	return out
}

// TopN returns the first n entries of an already sorted list. A list shorter
// than n is returned whole; n <= 0 yields an empty list.
func TopN[T any](scored []T, n int) []T {
	if n <= 0 {
		return []T{}
	}
	if n > len(scored) {
		n = len(scored)
	}
	out := make([]T, n)
	copy(out, scored[:n])
	return out
}
