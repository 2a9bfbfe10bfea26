package scoring

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/MikeSquared-Agency/Comps/internal/geo"
	"github.com/MikeSquared-Agency/Comps/internal/property"
)

// SelectionCriteria bounds how far a comparable may stray from the subject
// before it is dropped ahead of ranking. A zero bound disables that check.
// Data missing on either side never excludes a comparable.
type SelectionCriteria struct {
	MaxDistanceMiles      float64 `json:"max_distance_miles" yaml:"max_distance_miles"`
	SqftTolerancePct      float64 `json:"sqft_tolerance_pct" yaml:"sqft_tolerance_pct"`
	MaxBedroomDiff        int     `json:"max_bedroom_diff" yaml:"max_bedroom_diff"`
	MaxBathroomDiff       float64 `json:"max_bathroom_diff" yaml:"max_bathroom_diff"`
	MaxAgeDiffYears       int     `json:"max_age_diff_years" yaml:"max_age_diff_years"`
	MaxSaleAgeMonths      float64 `json:"max_sale_age_months" yaml:"max_sale_age_months"`
	RequireCompatibleType bool    `json:"require_compatible_type" yaml:"require_compatible_type"`
}

// DefaultSelectionCriteria returns the standard pre-ranking filter.
func DefaultSelectionCriteria() SelectionCriteria {
	return SelectionCriteria{
		MaxDistanceMiles:      3,
		SqftTolerancePct:      30,
		MaxBedroomDiff:        2,
		MaxBathroomDiff:       2,
		MaxAgeDiffYears:       25,
		MaxSaleAgeMonths:      12,
		RequireCompatibleType: true,
	}
}

// Validate rejects negative bounds.
func (c SelectionCriteria) Validate() error {
	switch {
	case c.MaxDistanceMiles < 0:
		return fmt.Errorf("max_distance_miles must not be negative, got %f", c.MaxDistanceMiles)
	case c.SqftTolerancePct < 0:
		return fmt.Errorf("sqft_tolerance_pct must not be negative, got %f", c.SqftTolerancePct)
	case c.MaxBedroomDiff < 0:
		return fmt.Errorf("max_bedroom_diff must not be negative, got %d", c.MaxBedroomDiff)
	case c.MaxBathroomDiff < 0:
		return fmt.Errorf("max_bathroom_diff must not be negative, got %f", c.MaxBathroomDiff)
	case c.MaxAgeDiffYears < 0:
		return fmt.Errorf("max_age_diff_years must not be negative, got %d", c.MaxAgeDiffYears)
	case c.MaxSaleAgeMonths < 0:
		return fmt.Errorf("max_sale_age_months must not be negative, got %f", c.MaxSaleAgeMonths)
	}
	return nil
}

// Rejection records why a comparable was dropped by Select. Reasons use the
// similarity factor names.
type Rejection struct {
	ComparableID string   `json:"comparable_id"`
	Reasons      []string `json:"reasons"`
}

// Select splits comps into those meeting c and those rejected, preserving
// input order in both. The input slice is not modified.
func (s *Scorer) Select(subject property.SubjectProperty, comps []property.ComparableProperty, c SelectionCriteria) ([]property.ComparableProperty, []Rejection) {
	kept := make([]property.ComparableProperty, 0, len(comps))
	var rejected []Rejection
	now := s.now()
	for _, comp := range comps {
		reasons := s.violations(subject, comp, c, now)
		if len(reasons) == 0 {
			kept = append(kept, comp)
			continue
		}
		rejected = append(rejected, Rejection{ComparableID: comp.ID, Reasons: reasons})
	}
	return kept, rejected
}

// FilterComparables applies c with the default property type groups and the
// current time, returning only the comparables that pass.
func FilterComparables(subject property.SubjectProperty, comps []property.ComparableProperty, c SelectionCriteria) []property.ComparableProperty {
	kept, _ := NewScorer(DefaultWeights()).Select(subject, comps, c)
	return kept
}

func (s *Scorer) violations(subject property.SubjectProperty, comp property.ComparableProperty, c SelectionCriteria, now time.Time) []string {
	var out []string

	if c.MaxDistanceMiles > 0 && located(subject.Attributes) && located(comp.Attributes) {
		miles := geo.HaversineMiles(subject.Latitude, subject.Longitude, comp.Latitude, comp.Longitude)
		if miles > c.MaxDistanceMiles {
			out = append(out, FactorDistance)
		}
	}

	if c.SqftTolerancePct > 0 {
		sv, okS := property.Value(subject.Sqft)
		cv, okC := property.Value(comp.Sqft)
		if okS && okC && math.Abs(cv-sv)/sv*100 > c.SqftTolerancePct {
			out = append(out, FactorSqft)
		}
	}

	if c.MaxBedroomDiff > 0 {
		sv, okS := property.IntValue(subject.Bedrooms)
		cv, okC := property.IntValue(comp.Bedrooms)
		if okS && okC && absInt(sv-cv) > c.MaxBedroomDiff {
			out = append(out, FactorBedrooms)
		}
	}

	if c.MaxBathroomDiff > 0 {
		sv, okS := property.Value(subject.Bathrooms)
		cv, okC := property.Value(comp.Bathrooms)
		if okS && okC && math.Abs(sv-cv) > c.MaxBathroomDiff {
			out = append(out, FactorBathrooms)
		}
	}

	if c.MaxAgeDiffYears > 0 {
		sv, okS := property.IntValue(subject.YearBuilt)
		cv, okC := property.IntValue(comp.YearBuilt)
		if okS && okC && absInt(sv-cv) > c.MaxAgeDiffYears {
			out = append(out, FactorAge)
		}
	}

	if c.MaxSaleAgeMonths > 0 {
		if sold, ok := comp.SaleTime(); ok && MonthsBetween(sold, now) > c.MaxSaleAgeMonths {
			out = append(out, FactorRecency)
		}
	}

	if c.RequireCompatibleType && !s.propertyTypes.Compatible(subject.PropertyType, comp.PropertyType) {
		out = append(out, FactorPropertyType)
	}
	return out
}

// Compatible reports whether two labels are the same or share a group. An
// empty label is compatible with anything.
func (c Classifier) Compatible(a, b string) bool {
	na, nb := normalizeLabel(a), normalizeLabel(b)
	if na == "" || nb == "" || na == nb {
		return true
	}
	ga, okA := c.groups[na]
	gb, okB := c.groups[nb]
	return okA && okB && ga == gb
}

// Members returns the sorted labels sharing label's group, including label
// itself. An ungrouped label is only compatible with itself.
func (c Classifier) Members(label string) []string {
	n := normalizeLabel(label)
	if n == "" {
		return nil
	}
	id, ok := c.groups[n]
	if !ok {
		return []string{n}
	}
	var out []string
	for l, g := range c.groups {
		if g == id {
			out = append(out, l)
		}
	}
	sort.Strings(out)
	return out
}

// CompatiblePropertyTypes returns the property type labels in the same
// default group as label.
func CompatiblePropertyTypes(label string) []string {
	return defaultPropertyTypes.Members(label)
}

// located reports whether a record carries coordinates. 0,0 is treated as
// missing.
func located(a property.Attributes) bool {
	return a.Latitude != 0 || a.Longitude != 0
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
