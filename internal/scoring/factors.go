package scoring

import (
	"math"
	"time"

	"github.com/MikeSquared-Agency/Comps/internal/property"
)

// Factor names, used as keys in SimilarityResult maps and weight tables.
const (
	FactorDistance     = "distance"
	FactorSqft         = "sqft"
	FactorLotSize      = "lot_size"
	FactorBedrooms     = "bedrooms"
	FactorBathrooms    = "bathrooms"
	FactorAge          = "age"
	FactorRecency      = "recency"
	FactorPropertyType = "property_type"
	FactorStyle        = "style"
	FactorFeatures     = "features"
)

// FactorNames lists the ten similarity factors in scoring order.
var FactorNames = []string{
	FactorDistance, FactorSqft, FactorLotSize, FactorBedrooms, FactorBathrooms,
	FactorAge, FactorRecency, FactorPropertyType, FactorStyle, FactorFeatures,
}

// Score bounds and decay limits.
const (
	MaxScore     = 100.0
	NeutralScore = 50.0

	maxDistanceMiles  = 3.0
	maxSqftDiffPct    = 50.0
	maxLotDiffPct     = 100.0
	maxYearDiff       = 20.0
	maxRecencyMonths  = 12.0
	avgDaysPerMonth   = 30.4375
	propertyTypeGroup = 80.0
	propertyTypeOther = 20.0
	styleGroup        = 75.0
	styleOther        = 40.0
)

// FactorResult captures one factor's contribution to the similarity score.
type FactorResult struct {
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Weight    float64 `json:"weight"`
	Weighted  float64 `json:"weighted"`
	Available bool    `json:"available"`
	Reason    string  `json:"reason"`
}

func missing(name, reason string) FactorResult {
	return FactorResult{Name: name, Score: NeutralScore, Available: false, Reason: reason}
}

func available(name string, score float64, reason string) FactorResult {
	return FactorResult{Name: name, Score: clamp(score, 0, MaxScore), Available: true, Reason: reason}
}

// --- Individual factor calculators ---

// DistanceScore decays from 100 at 0 miles to 0 at 3 miles. The curve is
// quadratic so the score drops fastest close to the subject.
func DistanceScore(miles float64) FactorResult {
	if miles < 0 || math.IsNaN(miles) {
		miles = 0
	}
	if miles >= maxDistanceMiles {
		return available(FactorDistance, 0, "beyond 3 miles")
	}
	r := 1 - miles/maxDistanceMiles
	return available(FactorDistance, MaxScore*r*r, "great-circle distance")
}

// SqftScore is linear in the percent difference measured against the
// subject: 0% scores 100, 50% or more scores 0.
func SqftScore(subject, comp *float64) FactorResult {
	s, okS := property.Value(subject)
	c, okC := property.Value(comp)
	if !okS || !okC {
		return missing(FactorSqft, "sqft unknown")
	}
	pct := math.Abs(c-s) / math.Abs(s) * 100
	return available(FactorSqft, MaxScore*(1-pct/maxSqftDiffPct), "relative to subject sqft")
}

// LotSizeScore is linear in the percent difference: 0% scores 100, 100% or
// more scores 0.
func LotSizeScore(subject, comp *float64) FactorResult {
	s, okS := property.Value(subject)
	c, okC := property.Value(comp)
	if !okS || !okC {
		return missing(FactorLotSize, "lot size unknown")
	}
	pct := math.Abs(c-s) / math.Abs(s) * 100
	return available(FactorLotSize, MaxScore*(1-pct/maxLotDiffPct), "relative to subject lot size")
}

// BedroomScore steps 100 / 50 / 0 for a difference of 0 / 1 / 2+ bedrooms.
func BedroomScore(subject, comp *int) FactorResult {
	s, okS := property.IntValue(subject)
	c, okC := property.IntValue(comp)
	if !okS || !okC {
		return missing(FactorBedrooms, "bedroom count unknown")
	}
	return available(FactorBedrooms, countStep(math.Abs(float64(c-s))), "bedroom difference")
}

// BathroomScore uses the bedroom tiers with half-bath resolution, so a
// difference of 0.5 scores 75 and 1.5 scores 25.
func BathroomScore(subject, comp *float64) FactorResult {
	s, okS := property.Value(subject)
	c, okC := property.Value(comp)
	if !okS || !okC {
		return missing(FactorBathrooms, "bathroom count unknown")
	}
	diff := math.Round(math.Abs(c-s)*2) / 2
	return available(FactorBathrooms, countStep(diff), "bathroom difference")
}

func countStep(diff float64) float64 {
	return clamp(MaxScore-50*diff, 0, MaxScore)
}

// AgeScore is linear in the year-built difference, reaching 0 at 20 years.
func AgeScore(subjectYear, compYear *int) FactorResult {
	s, okS := property.IntValue(subjectYear)
	c, okC := property.IntValue(compYear)
	if !okS || !okC {
		return missing(FactorAge, "year built unknown")
	}
	diff := math.Abs(float64(c - s))
	return available(FactorAge, MaxScore*(1-diff/maxYearDiff), "year built difference")
}

// RecencyScore decays with the age of the sale. Future-dated and same-day
// sales score 100; the loss accelerates with age and reaches 0 at 12 months.
func RecencyScore(saleDate *time.Time, now time.Time) FactorResult {
	if saleDate == nil || saleDate.IsZero() {
		return missing(FactorRecency, "sale date unknown")
	}
	months := MonthsBetween(*saleDate, now)
	if months <= 0 {
		return available(FactorRecency, MaxScore, "sale not in the past")
	}
	if months >= maxRecencyMonths {
		return available(FactorRecency, 0, "sold 12 or more months ago")
	}
	r := months / maxRecencyMonths
	return available(FactorRecency, MaxScore*(1-r*r), "months since sale")
}

// MonthsBetween returns the fractional number of average-length months from
// start to end. It is negative when end precedes start.
func MonthsBetween(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24 / avgDaysPerMonth
}

// PropertyTypeScore compares property types using the default group table:
// 100 exact, 80 same group, 20 otherwise.
func PropertyTypeScore(subject, comp string) FactorResult {
	return defaultPropertyTypes.compare(FactorPropertyType, subject, comp, propertyTypeGroup, propertyTypeOther)
}

// StyleScore compares architectural styles: 100 exact, 75 same group, 40
// otherwise.
func StyleScore(subject, comp string) FactorResult {
	return defaultStyles.compare(FactorStyle, subject, comp, styleGroup, styleOther)
}

// FeatureScore is the fraction of boolean features that agree, among those
// defined on both sides, scaled to 0-100.
func FeatureScore(subject, comp []property.NamedFlag) FactorResult {
	compFlags := make(map[string]*bool, len(comp))
	for _, f := range comp {
		compFlags[f.Name] = f.Value
	}

	var defined, matched int
	for _, f := range subject {
		s, okS := property.Flag(f.Value)
		c, okC := property.Flag(compFlags[f.Name])
		if !okS || !okC {
			continue
		}
		defined++
		if s == c {
			matched++
		}
	}
	if defined == 0 {
		return missing(FactorFeatures, "no features defined on both sides")
	}
	return available(FactorFeatures, MaxScore*float64(matched)/float64(defined), "matching features")
}

func clamp(v, min, max float64) float64 {
	if math.IsNaN(v) {
		return min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
