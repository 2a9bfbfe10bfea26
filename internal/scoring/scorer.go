package scoring

import (
	"math"
	"time"

	"github.com/MikeSquared-Agency/Comps/internal/geo"
	"github.com/MikeSquared-Agency/Comps/internal/property"
)

// SimilarityResult captures the complete similarity output for one
// subject and comparable pair.
type SimilarityResult struct {
	Score               float64            `json:"score"`
	FactorScores        map[string]float64 `json:"factor_scores"`
	FactorContributions map[string]float64 `json:"factor_contributions"`
	Factors             []FactorResult     `json:"factors"`
	Confidence          float64            `json:"confidence"`
	MissingFactors      []string           `json:"missing_factors"`
	DistanceMiles       float64            `json:"distance_miles"`
}

// Scorer orchestrates the ten-factor weighted additive similarity model.
// A Scorer holds only immutable configuration and is safe for concurrent use.
type Scorer struct {
	weights       Weights
	now           func() time.Time
	propertyTypes Classifier
	styles        Classifier
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithClock sets the time source used for recency scoring.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) { s.now = now }
}

// WithPropertyTypeGroups replaces the property type partition.
func WithPropertyTypeGroups(groups map[string][]string) Option {
	return func(s *Scorer) { s.propertyTypes = NewClassifier(groups) }
}

// WithStyleGroups replaces the architectural style partition.
func WithStyleGroups(groups map[string][]string) Option {
	return func(s *Scorer) { s.styles = NewClassifier(groups) }
}

// NewScorer creates a Scorer with the given default weights.
func NewScorer(weights Weights, opts ...Option) *Scorer {
	s := &Scorer{
		weights:       weights,
		now:           time.Now,
		propertyTypes: defaultPropertyTypes,
		styles:        defaultStyles,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the scorer's default weights.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score computes the similarity of comp to subject using the scorer's weights.
func (s *Scorer) Score(subject property.SubjectProperty, comp property.ComparableProperty) SimilarityResult {
	return s.ScoreWith(subject, comp, s.weights)
}

// ScoreWith computes the similarity of comp to subject using w. The weights
// are applied as given; callers wanting a normalized vector call
// NormalizeWeights first.
func (s *Scorer) ScoreWith(subject property.SubjectProperty, comp property.ComparableProperty, w Weights) SimilarityResult {
	miles := geo.HaversineMiles(subject.Latitude, subject.Longitude, comp.Latitude, comp.Longitude)

	var saleDate *time.Time
	if t, ok := comp.SaleTime(); ok {
		saleDate = &t
	}

	factors := []FactorResult{
		DistanceScore(miles),
		SqftScore(subject.Sqft, comp.Sqft),
		LotSizeScore(subject.LotSizeSqft, comp.LotSizeSqft),
		BedroomScore(subject.Bedrooms, comp.Bedrooms),
		BathroomScore(subject.Bathrooms, comp.Bathrooms),
		AgeScore(subject.YearBuilt, comp.YearBuilt),
		RecencyScore(saleDate, s.now()),
		s.propertyTypes.compare(FactorPropertyType, subject.PropertyType, comp.PropertyType, propertyTypeGroup, propertyTypeOther),
		s.styles.compare(FactorStyle, subject.Style, comp.Style, styleGroup, styleOther),
		FeatureScore(subject.FeatureFlags(), comp.FeatureFlags()),
	}

	weights := w.asList()
	result := SimilarityResult{
		FactorScores:        make(map[string]float64, len(factors)),
		FactorContributions: make(map[string]float64, len(factors)),
		MissingFactors:      make([]string, 0),
		DistanceMiles:       round(miles, 2),
	}

	var total float64
	var complete int
	for i := range factors {
		factors[i].Weight = weights[i]
		factors[i].Weighted = factors[i].Score * weights[i]
		total += factors[i].Weighted

		result.FactorScores[factors[i].Name] = factors[i].Score
		result.FactorContributions[factors[i].Name] = factors[i].Weighted
		if factors[i].Available {
			complete++
		} else {
			result.MissingFactors = append(result.MissingFactors, factors[i].Name)
		}
	}

	result.Score = round(total, 1)
	result.Factors = factors
	result.Confidence = round(float64(complete)/float64(len(factors))*100, 1)
	return result
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
