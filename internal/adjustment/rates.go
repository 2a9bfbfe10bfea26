package adjustment

import (
	"fmt"
	"strings"
)

// SqftPerAcre converts lot square footage to acres.
const SqftPerAcre = 43560.0

// Caps are maximum line-item magnitudes as a fraction of sale price. A cap of
// 0 allows no adjustment for that factor.
type Caps struct {
	Sqft        float64 `json:"sqft" yaml:"sqft"`
	LotSize     float64 `json:"lot_size" yaml:"lot_size"`
	Bedrooms    float64 `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms   float64 `json:"bathrooms" yaml:"bathrooms"`
	Age         float64 `json:"age" yaml:"age"`
	Garage      float64 `json:"garage" yaml:"garage"`
	Pool        float64 `json:"pool" yaml:"pool"`
	Basement    float64 `json:"basement" yaml:"basement"`
	Features    float64 `json:"features" yaml:"features"`
	Premium     float64 `json:"premium" yaml:"premium"`
	Concessions float64 `json:"concessions" yaml:"concessions"`
}

// FeatureRates are the dollar values of the additional features bundle.
type FeatureRates struct {
	CentralAir       float64 `json:"central_air" yaml:"central_air"`
	Fireplace        float64 `json:"fireplace" yaml:"fireplace"`
	HardwoodFloors   float64 `json:"hardwood_floors" yaml:"hardwood_floors"`
	UpdatedKitchen   float64 `json:"updated_kitchen" yaml:"updated_kitchen"`
	UpdatedBathrooms float64 `json:"updated_bathrooms" yaml:"updated_bathrooms"`
	DeckPatioPerSqft float64 `json:"deck_patio_per_sqft" yaml:"deck_patio_per_sqft"`
}

// PremiumRates are the flat dollar values of premium site features.
type PremiumRates struct {
	Waterfront float64 `json:"waterfront" yaml:"waterfront"`
	View       float64 `json:"view" yaml:"view"`
	CornerLot  float64 `json:"corner_lot" yaml:"corner_lot"`
	CulDeSac   float64 `json:"cul_de_sac" yaml:"cul_de_sac"`
}

// Rates is the paired-sales rate table. It is configuration data: the
// engine never modifies it.
type Rates struct {
	PricePerSqft   float64 `json:"price_per_sqft" yaml:"price_per_sqft"`
	PricePerAcre   float64 `json:"price_per_acre" yaml:"price_per_acre"`
	Bedroom        float64 `json:"bedroom" yaml:"bedroom"`
	FullBath       float64 `json:"full_bath" yaml:"full_bath"`
	HalfBath       float64 `json:"half_bath" yaml:"half_bath"`
	AgePerYear     float64 `json:"age_per_year" yaml:"age_per_year"`
	GaragePerSpace float64 `json:"garage_per_space" yaml:"garage_per_space"`
	Pool           float64 `json:"pool" yaml:"pool"`

	BasementTiers   map[string]float64 `json:"basement_tiers" yaml:"basement_tiers"`
	BasementPerSqft float64            `json:"basement_per_sqft" yaml:"basement_per_sqft"`

	// ConditionTiers maps a rating to a fraction of sale price.
	ConditionTiers map[string]float64 `json:"condition_tiers" yaml:"condition_tiers"`
	// LocationFraction is applied when the comparable's location is rated
	// above or below the subject's.
	LocationFraction float64 `json:"location_fraction" yaml:"location_fraction"`

	MonthlyAppreciation float64 `json:"monthly_appreciation" yaml:"monthly_appreciation"`
	MaxTimeMonths       float64 `json:"max_time_months" yaml:"max_time_months"`
	MaxTimeFraction     float64 `json:"max_time_fraction" yaml:"max_time_fraction"`

	Features FeatureRates `json:"features" yaml:"features"`
	Premium  PremiumRates `json:"premium" yaml:"premium"`
	Caps     Caps         `json:"caps" yaml:"caps"`

	// FlagThresholdPct is the gross adjustment percent above which a
	// comparable is flagged as unreliable.
	FlagThresholdPct float64 `json:"flag_threshold_pct" yaml:"flag_threshold_pct"`

	// RegionalMultipliers scale every dollar rate by state code.
	RegionalMultipliers map[string]float64 `json:"regional_multipliers" yaml:"regional_multipliers"`
}

// DefaultRates returns the built-in rate table.
func DefaultRates() Rates {
	return Rates{
		PricePerSqft:   50,
		PricePerAcre:   10000,
		Bedroom:        5000,
		FullBath:       7500,
		HalfBath:       3500,
		AgePerYear:     1000,
		GaragePerSpace: 5000,
		Pool:           15000,
		BasementTiers: map[string]float64{
			"none":       0,
			"unfinished": 5000,
			"partial":    10000,
			"finished":   20000,
		},
		BasementPerSqft: 15,
		ConditionTiers: map[string]float64{
			"poor":      -0.10,
			"fair":      -0.05,
			"average":   0,
			"good":      0.05,
			"excellent": 0.10,
		},
		LocationFraction:    0.05,
		MonthlyAppreciation: 0.003,
		MaxTimeMonths:       12,
		MaxTimeFraction:     0.036,
		Features: FeatureRates{
			CentralAir:       3000,
			Fireplace:        2000,
			HardwoodFloors:   4000,
			UpdatedKitchen:   10000,
			UpdatedBathrooms: 5000,
			DeckPatioPerSqft: 15,
		},
		Premium: PremiumRates{
			Waterfront: 50000,
			View:       15000,
			CornerLot:  3000,
			CulDeSac:   5000,
		},
		Caps: Caps{
			Sqft:        0.15,
			LotSize:     0.10,
			Bedrooms:    0.08,
			Bathrooms:   0.06,
			Age:         0.10,
			Garage:      0.05,
			Pool:        0.05,
			Basement:    0.08,
			Features:    0.10,
			Premium:     0.15,
			Concessions: 0.06,
		},
		FlagThresholdPct: 25,
		RegionalMultipliers: map[string]float64{
			"CA": 1.8,
			"NY": 1.5,
			"MA": 1.5,
			"WA": 1.4,
			"CO": 1.3,
			"FL": 1.1,
			"TX": 1.0,
			"PA": 0.9,
			"OH": 0.8,
			"WV": 0.7,
		},
	}
}

// Multiplier returns the regional multiplier for a state code, 1.0 when the
// state is unknown.
func (r Rates) Multiplier(state string) float64 {
	m, ok := r.RegionalMultipliers[strings.ToUpper(strings.TrimSpace(state))]
	if !ok || m <= 0 {
		return 1
	}
	return m
}

// ForState returns a copy of r with every dollar-denominated rate scaled by
// the state's regional multiplier. Fractions and caps are unchanged.
func (r Rates) ForState(state string) Rates {
	m := r.Multiplier(state)
	if m == 1 {
		return r
	}
	out := r
	out.PricePerSqft *= m
	out.PricePerAcre *= m
	out.Bedroom *= m
	out.FullBath *= m
	out.HalfBath *= m
	out.AgePerYear *= m
	out.GaragePerSpace *= m
	out.Pool *= m
	out.BasementPerSqft *= m
	out.BasementTiers = make(map[string]float64, len(r.BasementTiers))
	for k, v := range r.BasementTiers {
		out.BasementTiers[k] = v * m
	}
	out.Features = FeatureRates{
		CentralAir:       r.Features.CentralAir * m,
		Fireplace:        r.Features.Fireplace * m,
		HardwoodFloors:   r.Features.HardwoodFloors * m,
		UpdatedKitchen:   r.Features.UpdatedKitchen * m,
		UpdatedBathrooms: r.Features.UpdatedBathrooms * m,
		DeckPatioPerSqft: r.Features.DeckPatioPerSqft * m,
	}
	out.Premium = PremiumRates{
		Waterfront: r.Premium.Waterfront * m,
		View:       r.Premium.View * m,
		CornerLot:  r.Premium.CornerLot * m,
		CulDeSac:   r.Premium.CulDeSac * m,
	}
	return out
}

// Validate checks the table for values the engine cannot use.
func (r Rates) Validate() error {
	caps := map[string]float64{
		"sqft": r.Caps.Sqft, "lot_size": r.Caps.LotSize, "bedrooms": r.Caps.Bedrooms,
		"bathrooms": r.Caps.Bathrooms, "age": r.Caps.Age, "garage": r.Caps.Garage,
		"pool": r.Caps.Pool, "basement": r.Caps.Basement, "features": r.Caps.Features,
		"premium": r.Caps.Premium, "concessions": r.Caps.Concessions,
	}
	for name, c := range caps {
		if c < 0 || c > 1 {
			return fmt.Errorf("cap for %s must be within [0, 1], got %f", name, c)
		}
	}
	if r.MaxTimeMonths < 0 {
		return fmt.Errorf("max time months must not be negative, got %f", r.MaxTimeMonths)
	}
	if r.MaxTimeFraction < 0 || r.MaxTimeFraction > 1 {
		return fmt.Errorf("max time fraction must be within [0, 1], got %f", r.MaxTimeFraction)
	}
	if r.MonthlyAppreciation < 0 {
		return fmt.Errorf("monthly appreciation must not be negative, got %f", r.MonthlyAppreciation)
	}
	if r.FlagThresholdPct <= 0 {
		return fmt.Errorf("flag threshold must be positive, got %f", r.FlagThresholdPct)
	}
	for state, m := range r.RegionalMultipliers {
		if m <= 0 {
			return fmt.Errorf("regional multiplier for %s must be positive, got %f", state, m)
		}
	}
	return nil
}
