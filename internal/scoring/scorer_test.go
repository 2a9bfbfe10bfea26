package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Comps/internal/property"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// milesNorth returns the latitude offset for roughly the given distance.
func milesNorth(miles float64) float64 {
	return miles / 69.09
}

func testSubject() property.SubjectProperty {
	return property.SubjectProperty{
		ID: "subject",
		Attributes: property.Attributes{
			Latitude:     40.5187,
			Longitude:    -78.3947,
			Sqft:         property.Float(1500),
			LotSizeSqft:  property.Float(8000),
			Bedrooms:     property.Int(3),
			Bathrooms:    property.Float(2),
			YearBuilt:    property.Int(1985),
			PropertyType: "Single Family",
			Style:        "Ranch",
			HasGarage:    property.Bool(true),
			HasPool:      property.Bool(false),
			HasBasement:  property.Bool(true),
		},
	}
}

func twinComparable() property.ComparableProperty {
	s := testSubject()
	attrs := s.Attributes
	attrs.Latitude += milesNorth(0.01)
	return property.ComparableProperty{
		ID:         "twin",
		Attributes: attrs,
		SalePrice:  200000,
		SaleDate:   fixedNow.AddDate(0, 0, -3).Format("2006-01-02"),
	}
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	w := DefaultWeights()
	if err := w.Validate(); err != nil {
		t.Errorf("default weights invalid: %v", err)
	}
	if math.Abs(w.Sum()-1.0) > 1e-4 {
		t.Errorf("default weights sum to %f, expected 1.0", w.Sum())
	}
}

func TestScoreNearIdenticalComparable(t *testing.T) {
	s := NewScorer(DefaultWeights(), WithClock(fixedClock))
	r := s.Score(testSubject(), twinComparable())

	assert.Greater(t, r.Score, 95.0)
	assert.Equal(t, 100.0, r.Confidence)
	assert.Empty(t, r.MissingFactors)
	assert.InDelta(t, 0.01, r.DistanceMiles, 0.005)
	assert.Len(t, r.FactorScores, 10)
	assert.Len(t, r.Factors, 10)
}

func TestScoreDissimilarComparable(t *testing.T) {
	s := NewScorer(DefaultWeights(), WithClock(fixedClock))
	subject := testSubject()

	comp := twinComparable()
	comp.Latitude = subject.Latitude + milesNorth(2.5)
	comp.Sqft = property.Float(2340)
	comp.Bedrooms = property.Int(5)
	comp.Bathrooms = property.Float(3)
	comp.YearBuilt = property.Int(2005)
	comp.HasPool = property.Bool(true)

	r := s.Score(subject, comp)
	assert.Less(t, r.Score, 70.0)
	assert.InDelta(t, 2.5, r.DistanceMiles, 0.05)
	assert.Equal(t, 0.0, r.FactorScores[FactorSqft])
	assert.Equal(t, 0.0, r.FactorScores[FactorBedrooms])
	assert.Equal(t, 50.0, r.FactorScores[FactorBathrooms])
}

func TestScoreMissingDataLowersConfidence(t *testing.T) {
	s := NewScorer(DefaultWeights(), WithClock(fixedClock))
	comp := property.ComparableProperty{
		Attributes: property.Attributes{Latitude: 40.5187, Longitude: -78.3947},
		SalePrice:  150000,
	}
	r := s.Score(testSubject(), comp)

	// Only distance has data on both sides.
	assert.Equal(t, 10.0, r.Confidence)
	assert.ElementsMatch(t, []string{
		FactorSqft, FactorLotSize, FactorBedrooms, FactorBathrooms, FactorAge,
		FactorRecency, FactorPropertyType, FactorStyle, FactorFeatures,
	}, r.MissingFactors)
	for _, name := range r.MissingFactors {
		assert.Equal(t, NeutralScore, r.FactorScores[name], name)
	}
}

func TestContributionsSumToScore(t *testing.T) {
	s := NewScorer(DefaultWeights(), WithClock(fixedClock))
	weightSets := []Weights{
		DefaultWeights(),
		{Distance: 1},
		{Sqft: 0.5, Bedrooms: 0.25, Features: 0.25},
		{Distance: 3, Sqft: 2, Age: 1}, // not normalized
	}
	comp := twinComparable()
	comp.Sqft = property.Float(1700)
	comp.YearBuilt = property.Int(1979)

	for _, w := range weightSets {
		r := s.ScoreWith(testSubject(), comp, w)
		var sum float64
		for _, c := range r.FactorContributions {
			sum += c
		}
		assert.InDelta(t, r.Score, sum, 0.05+1e-9)
	}
}

func TestCustomWeightsChangeResult(t *testing.T) {
	s := NewScorer(DefaultWeights(), WithClock(fixedClock))
	comp := twinComparable()
	comp.Sqft = property.Float(2000)

	def := s.Score(testSubject(), comp)
	sizeHeavy := s.ScoreWith(testSubject(), comp, Weights{Sqft: 0.9, Distance: 0.1})
	assert.Less(t, sizeHeavy.Score, def.Score)
	assert.Equal(t, def, s.Score(testSubject(), comp))
}

func TestScoreIsIdempotentAndDoesNotMutate(t *testing.T) {
	s := NewScorer(DefaultWeights(), WithClock(fixedClock))
	subject := testSubject()
	comp := twinComparable()

	first := s.Score(subject, comp)
	second := s.Score(subject, comp)
	require.Equal(t, first, second)

	assert.Nil(t, comp.SimilarityScore)
	assert.Nil(t, comp.FactorScores)
	assert.Equal(t, 1500.0, *subject.Sqft)
}

func TestScorerCustomGroups(t *testing.T) {
	s := NewScorer(DefaultWeights(),
		WithClock(fixedClock),
		WithPropertyTypeGroups(map[string][]string{"rural": {"farm", "ranch land"}}),
	)
	subject := testSubject()
	subject.PropertyType = "Farm"
	comp := twinComparable()
	comp.PropertyType = "Ranch Land"

	r := s.Score(subject, comp)
	assert.Equal(t, 80.0, r.FactorScores[FactorPropertyType])
}
