package property

import (
	"strings"
	"time"
)

// Attributes holds the physical, locational, and feature data shared by
// subjects and comparables. Optional numeric fields are pointers; nil means
// unknown. A present value of exactly zero is also treated as unknown by the
// scoring and adjustment engines (see Value).
type Attributes struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	State     string  `json:"state,omitempty" yaml:"state,omitempty"`

	Sqft         *float64 `json:"sqft,omitempty" yaml:"sqft,omitempty"`
	LotSizeSqft  *float64 `json:"lot_size_sqft,omitempty" yaml:"lot_size_sqft,omitempty"`
	Bedrooms     *int     `json:"bedrooms,omitempty" yaml:"bedrooms,omitempty"`
	Bathrooms    *float64 `json:"bathrooms,omitempty" yaml:"bathrooms,omitempty"`
	YearBuilt    *int     `json:"year_built,omitempty" yaml:"year_built,omitempty"`
	GarageSpaces *int     `json:"garage_spaces,omitempty" yaml:"garage_spaces,omitempty"`
	Stories      *int     `json:"stories,omitempty" yaml:"stories,omitempty"`

	PropertyType string `json:"property_type,omitempty" yaml:"property_type,omitempty"`
	Style        string `json:"style,omitempty" yaml:"style,omitempty"`

	HasGarage        *bool `json:"has_garage,omitempty" yaml:"has_garage,omitempty"`
	HasPool          *bool `json:"has_pool,omitempty" yaml:"has_pool,omitempty"`
	HasBasement      *bool `json:"has_basement,omitempty" yaml:"has_basement,omitempty"`
	BasementFinished *bool `json:"basement_finished,omitempty" yaml:"basement_finished,omitempty"`
	HasCentralAir    *bool `json:"has_central_air,omitempty" yaml:"has_central_air,omitempty"`
	HasFireplace     *bool `json:"has_fireplace,omitempty" yaml:"has_fireplace,omitempty"`

	// Extended attributes used by the price adjustment engine.
	Condition        string   `json:"condition,omitempty" yaml:"condition,omitempty"`
	LocationQuality  string   `json:"location_quality,omitempty" yaml:"location_quality,omitempty"`
	BasementType     string   `json:"basement_type,omitempty" yaml:"basement_type,omitempty"`
	BasementSqft     *float64 `json:"basement_sqft,omitempty" yaml:"basement_sqft,omitempty"`
	FireplaceCount   *int     `json:"fireplace_count,omitempty" yaml:"fireplace_count,omitempty"`
	HardwoodFloors   *bool    `json:"hardwood_floors,omitempty" yaml:"hardwood_floors,omitempty"`
	UpdatedKitchen   *bool    `json:"updated_kitchen,omitempty" yaml:"updated_kitchen,omitempty"`
	UpdatedBathrooms *bool    `json:"updated_bathrooms,omitempty" yaml:"updated_bathrooms,omitempty"`
	DeckPatioSqft    *float64 `json:"deck_patio_sqft,omitempty" yaml:"deck_patio_sqft,omitempty"`
	Waterfront       *bool    `json:"waterfront,omitempty" yaml:"waterfront,omitempty"`
	View             *bool    `json:"view,omitempty" yaml:"view,omitempty"`
	CornerLot        *bool    `json:"corner_lot,omitempty" yaml:"corner_lot,omitempty"`
	CulDeSac         *bool    `json:"cul_de_sac,omitempty" yaml:"cul_de_sac,omitempty"`
}

// NamedFlag pairs a boolean feature with its name.
type NamedFlag struct {
	Name  string
	Value *bool
}

// FeatureFlags returns the boolean features compared by the similarity
// features factor, in a fixed order.
func (a Attributes) FeatureFlags() []NamedFlag {
	return []NamedFlag{
		{Name: "has_garage", Value: a.HasGarage},
		{Name: "has_pool", Value: a.HasPool},
		{Name: "has_basement", Value: a.HasBasement},
		{Name: "basement_finished", Value: a.BasementFinished},
		{Name: "has_central_air", Value: a.HasCentralAir},
		{Name: "has_fireplace", Value: a.HasFireplace},
	}
}

// SubjectProperty is the property being evaluated.
type SubjectProperty struct {
	ID         string `json:"id,omitempty" yaml:"id,omitempty"`
	Address    string `json:"address,omitempty" yaml:"address,omitempty"`
	Attributes `yaml:",inline"`
}

// ComparableProperty is a historical sale used as a reference point for the
// subject. SimilarityScore, DistanceMiles and FactorScores are populated by
// the ranking layer on a copy of the record.
type ComparableProperty struct {
	ID         string `json:"id,omitempty" yaml:"id,omitempty"`
	Address    string `json:"address,omitempty" yaml:"address,omitempty"`
	Attributes `yaml:",inline"`

	SalePrice         float64  `json:"sale_price" yaml:"sale_price"`
	SaleDate          string   `json:"sale_date,omitempty" yaml:"sale_date,omitempty"`
	SellerConcessions *float64 `json:"seller_concessions,omitempty" yaml:"seller_concessions,omitempty"`

	SimilarityScore *float64           `json:"similarity_score,omitempty" yaml:"similarity_score,omitempty"`
	DistanceMiles   *float64           `json:"distance_miles,omitempty" yaml:"distance_miles,omitempty"`
	FactorScores    map[string]float64 `json:"factor_scores,omitempty" yaml:"factor_scores,omitempty"`
}

var saleDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// SaleTime parses SaleDate. The second return is false when the date is
// empty or not in a recognised ISO-8601 layout.
func (c ComparableProperty) SaleTime() (time.Time, bool) {
	s := strings.TrimSpace(c.SaleDate)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range saleDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Value reports a float as present only when it is non-nil and non-zero.
// Zero is indistinguishable from "no data" in the upstream records, so it is
// treated as missing everywhere.
func Value(p *float64) (float64, bool) {
	if p == nil || *p == 0 {
		return 0, false
	}
	return *p, true
}

// IntValue is Value for integer fields.
func IntValue(p *int) (int, bool) {
	if p == nil || *p == 0 {
		return 0, false
	}
	return *p, true
}

// Flag reports a boolean feature and whether it is defined.
func Flag(p *bool) (bool, bool) {
	if p == nil {
		return false, false
	}
	return *p, true
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Similarity returns the attached similarity score, if the record has been
// scored.
func (c ComparableProperty) Similarity() (float64, bool) {
	if c.SimilarityScore == nil {
		return 0, false
	}
	return *c.SimilarityScore, true
}
