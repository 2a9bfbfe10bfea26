package adjustment

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeSquared-Agency/Comps/internal/property"
	"github.com/MikeSquared-Agency/Comps/internal/scoring"
)

// Category groups adjustment line items.
type Category string

const (
	CategoryPhysical  Category = "physical"
	CategoryLocation  Category = "location"
	CategoryCondition Category = "condition"
	CategoryTime      Category = "time"
	CategoryFeatures  Category = "features"
	CategoryFinancing Category = "financing"
)

// Adjustment factor names.
const (
	FactorSqft        = "sqft"
	FactorLotSize     = "lot_size"
	FactorBedrooms    = "bedrooms"
	FactorBathrooms   = "bathrooms"
	FactorAge         = "age"
	FactorCondition   = "condition"
	FactorLocation    = "location_quality"
	FactorGarage      = "garage"
	FactorPool        = "pool"
	FactorBasement    = "basement"
	FactorTime        = "market_time"
	FactorFeatures    = "additional_features"
	FactorPremium     = "premium_features"
	FactorConcessions = "seller_concessions"
)

// factorConfidence reflects how objective each adjustment is. Counts are
// reliable; condition and location ratings are judgement calls.
var factorConfidence = map[string]float64{
	FactorSqft:        90,
	FactorLotSize:     80,
	FactorBedrooms:    95,
	FactorBathrooms:   95,
	FactorAge:         85,
	FactorCondition:   60,
	FactorLocation:    55,
	FactorGarage:      90,
	FactorPool:        85,
	FactorBasement:    75,
	FactorTime:        80,
	FactorFeatures:    70,
	FactorPremium:     65,
	FactorConcessions: 90,
}

// PriceAdjustment is one itemized dollar adjustment to a comparable's sale
// price. Positive amounts raise the comparable toward a better subject.
type PriceAdjustment struct {
	Category          Category `json:"category"`
	Factor            string   `json:"factor"`
	Description       string   `json:"description"`
	SubjectValue      any      `json:"subject_value"`
	ComparableValue   any      `json:"comparable_value"`
	AdjustmentAmount  float64  `json:"adjustment_amount"`
	AdjustmentPercent float64  `json:"adjustment_percent"`
	WasCapped         bool     `json:"was_capped"`
	Confidence        float64  `json:"confidence"`
}

// input bundles everything a factor calculator needs.
type input struct {
	subject property.SubjectProperty
	comp    property.ComparableProperty
	rates   Rates
	now     time.Time
}

// adjuster computes one line item; false means the factor does not apply.
type adjuster func(in input) (PriceAdjustment, bool)

// adjusters lists every factor in report order.
var adjusters = []adjuster{
	sqftAdjustment,
	lotSizeAdjustment,
	bedroomAdjustment,
	bathroomAdjustment,
	ageAdjustment,
	conditionAdjustment,
	locationAdjustment,
	garageAdjustment,
	poolAdjustment,
	basementAdjustment,
	timeAdjustment,
	featuresAdjustment,
	premiumAdjustment,
	concessionsAdjustment,
}

// item caps raw against maxFraction of the sale price and builds the line.
func (in input) item(cat Category, factor, desc string, subjectValue, compValue any, raw, maxFraction float64) PriceAdjustment {
	price := in.comp.SalePrice
	capped, wasCapped := ApplyCap(raw, maxFraction, price)
	amount := roundCents(capped)
	return PriceAdjustment{
		Category:          cat,
		Factor:            factor,
		Description:       desc,
		SubjectValue:      subjectValue,
		ComparableValue:   compValue,
		AdjustmentAmount:  amount,
		AdjustmentPercent: percentOf(amount, price),
		WasCapped:         wasCapped,
		Confidence:        factorConfidence[factor],
	}
}

// uncapped builds a line whose size is bounded by its rate table alone.
func (in input) uncapped(cat Category, factor, desc string, subjectValue, compValue any, raw float64) PriceAdjustment {
	amount := roundCents(raw)
	return PriceAdjustment{
		Category:          cat,
		Factor:            factor,
		Description:       desc,
		SubjectValue:      subjectValue,
		ComparableValue:   compValue,
		AdjustmentAmount:  amount,
		AdjustmentPercent: percentOf(amount, in.comp.SalePrice),
		Confidence:        factorConfidence[factor],
	}
}

func sqftAdjustment(in input) (PriceAdjustment, bool) {
	s, okS := property.Value(in.subject.Sqft)
	c, okC := property.Value(in.comp.Sqft)
	if !okS || !okC {
		return PriceAdjustment{}, false
	}
	diff := s - c
	desc := fmt.Sprintf("%+.0f sqft at $%.2f/sqft", diff, in.rates.PricePerSqft)
	return in.item(CategoryPhysical, FactorSqft, desc, s, c, diff*in.rates.PricePerSqft, in.rates.Caps.Sqft), true
}

func lotSizeAdjustment(in input) (PriceAdjustment, bool) {
	s, okS := property.Value(in.subject.LotSizeSqft)
	c, okC := property.Value(in.comp.LotSizeSqft)
	if !okS || !okC {
		return PriceAdjustment{}, false
	}
	diffAcres := (s - c) / SqftPerAcre
	desc := fmt.Sprintf("%+.3f acres at $%.0f/acre", diffAcres, in.rates.PricePerAcre)
	return in.item(CategoryPhysical, FactorLotSize, desc, s, c, diffAcres*in.rates.PricePerAcre, in.rates.Caps.LotSize), true
}

func bedroomAdjustment(in input) (PriceAdjustment, bool) {
	s, okS := property.IntValue(in.subject.Bedrooms)
	c, okC := property.IntValue(in.comp.Bedrooms)
	if !okS || !okC || s == c {
		return PriceAdjustment{}, false
	}
	diff := s - c
	desc := fmt.Sprintf("%+d bedroom(s) at $%.0f each", diff, in.rates.Bedroom)
	return in.item(CategoryPhysical, FactorBedrooms, desc, s, c, float64(diff)*in.rates.Bedroom, in.rates.Caps.Bedrooms), true
}

func bathroomAdjustment(in input) (PriceAdjustment, bool) {
	s, okS := property.Value(in.subject.Bathrooms)
	c, okC := property.Value(in.comp.Bathrooms)
	if !okS || !okC {
		return PriceAdjustment{}, false
	}
	diff := math.Round((s-c)*2) / 2
	if diff == 0 {
		return PriceAdjustment{}, false
	}
	full := math.Trunc(math.Abs(diff))
	half := math.Abs(diff) - full
	raw := full * in.rates.FullBath
	if half > 0 {
		raw += in.rates.HalfBath
	}
	raw = math.Copysign(raw, diff)
	desc := fmt.Sprintf("%+.1f bathroom(s): %.0f full, %.0f half", diff, full, half*2)
	return in.item(CategoryPhysical, FactorBathrooms, desc, s, c, raw, in.rates.Caps.Bathrooms), true
}

func ageAdjustment(in input) (PriceAdjustment, bool) {
	s, okS := property.IntValue(in.subject.YearBuilt)
	c, okC := property.IntValue(in.comp.YearBuilt)
	if !okS || !okC || s == c {
		return PriceAdjustment{}, false
	}
	diff := s - c
	desc := fmt.Sprintf("built %d vs %d (%+d years) at $%.0f/year", s, c, diff, in.rates.AgePerYear)
	return in.item(CategoryPhysical, FactorAge, desc, s, c, float64(diff)*in.rates.AgePerYear, in.rates.Caps.Age), true
}

func conditionAdjustment(in input) (PriceAdjustment, bool) {
	s := normalize(in.subject.Condition)
	c := normalize(in.comp.Condition)
	sPct, okS := in.rates.ConditionTiers[s]
	cPct, okC := in.rates.ConditionTiers[c]
	if !okS || !okC || s == c {
		return PriceAdjustment{}, false
	}
	fraction := sPct - cPct
	desc := fmt.Sprintf("condition %s vs %s (%+.1f%%)", s, c, fraction*100)
	return in.uncapped(CategoryCondition, FactorCondition, desc, s, c, fraction*in.comp.SalePrice), true
}

// Relative location ratings describe the comparable against the subject.
const (
	locationSuperior = "superior"
	locationInferior = "inferior"
	locationSimilar  = "similar"
)

// locationRank orders absolute location quality labels.
var locationRank = map[string]int{
	"poor":          1,
	"below average": 1,
	"fair":          2,
	"average":       2,
	"typical":       2,
	"good":          3,
	"above average": 3,
	"excellent":     3,
}

// locationAdjustment reads a comparable rated superior, inferior or similar
// as already relative to the subject. Any other label is an absolute rating
// and is ranked against the subject's.
func locationAdjustment(in input) (PriceAdjustment, bool) {
	s := normalize(in.subject.LocationQuality)
	c := normalize(in.comp.LocationQuality)

	var superior bool
	switch c {
	case locationSimilar:
		return PriceAdjustment{}, false
	case locationSuperior:
		superior = true
	case locationInferior:
		superior = false
	default:
		sRank, okS := locationRank[s]
		cRank, okC := locationRank[c]
		if !okS || !okC || sRank == cRank {
			return PriceAdjustment{}, false
		}
		superior = cRank > sRank
	}

	fraction := in.rates.LocationFraction
	desc := "comparable location inferior"
	if superior {
		fraction = -fraction
		desc = "comparable location superior"
	}
	return in.uncapped(CategoryLocation, FactorLocation, desc, s, c, fraction*in.comp.SalePrice), true
}

func garageAdjustment(in input) (PriceAdjustment, bool) {
	s, okS := property.IntValue(in.subject.GarageSpaces)
	c, okC := property.IntValue(in.comp.GarageSpaces)
	if !okS || !okC {
		return PriceAdjustment{}, false
	}
	diff := s - c
	desc := fmt.Sprintf("%+d garage space(s) at $%.0f each", diff, in.rates.GaragePerSpace)
	return in.item(CategoryPhysical, FactorGarage, desc, s, c, float64(diff)*in.rates.GaragePerSpace, in.rates.Caps.Garage), true
}

func poolAdjustment(in input) (PriceAdjustment, bool) {
	s, okS := property.Flag(in.subject.HasPool)
	c, okC := property.Flag(in.comp.HasPool)
	if !okS || !okC || s == c {
		return PriceAdjustment{}, false
	}
	raw := in.rates.Pool
	desc := "subject has pool, comparable does not"
	if c {
		raw = -raw
		desc = "comparable has pool, subject does not"
	}
	return in.item(CategoryFeatures, FactorPool, desc, s, c, raw, in.rates.Caps.Pool), true
}

func basementAdjustment(in input) (PriceAdjustment, bool) {
	sType := normalize(in.subject.BasementType)
	cType := normalize(in.comp.BasementType)
	sTier, okS := in.rates.BasementTiers[sType]
	cTier, okC := in.rates.BasementTiers[cType]
	if !okS || !okC {
		return PriceAdjustment{}, false
	}

	raw := sTier - cTier
	var sizeDiff float64
	sSqft, okSS := property.Value(in.subject.BasementSqft)
	cSqft, okCS := property.Value(in.comp.BasementSqft)
	if okSS && okCS {
		sizeDiff = sSqft - cSqft
		raw += sizeDiff * in.rates.BasementPerSqft
	}
	if sType == cType && sizeDiff == 0 {
		return PriceAdjustment{}, false
	}

	desc := fmt.Sprintf("basement %s vs %s, %+.0f sqft", sType, cType, sizeDiff)
	return in.item(CategoryPhysical, FactorBasement, desc, sType, cType, raw, in.rates.Caps.Basement), true
}

func timeAdjustment(in input) (PriceAdjustment, bool) {
	sold, ok := in.comp.SaleTime()
	if !ok || in.comp.SalePrice <= 0 {
		return PriceAdjustment{}, false
	}
	months := scoring.MonthsBetween(sold, in.now)
	if months <= 0 {
		return PriceAdjustment{}, false
	}

	wasCapped := false
	effective := months
	if effective > in.rates.MaxTimeMonths {
		effective = in.rates.MaxTimeMonths
		wasCapped = true
	}
	fraction := effective * in.rates.MonthlyAppreciation
	if fraction > in.rates.MaxTimeFraction {
		fraction = in.rates.MaxTimeFraction
		wasCapped = true
	}

	amount := roundCents(fraction * in.comp.SalePrice)
	desc := fmt.Sprintf("%.1f months of appreciation at %.2f%%/month", effective, in.rates.MonthlyAppreciation*100)
	return PriceAdjustment{
		Category:          CategoryTime,
		Factor:            FactorTime,
		Description:       desc,
		SubjectValue:      in.now.Format("2006-01-02"),
		ComparableValue:   sold.Format("2006-01-02"),
		AdjustmentAmount:  amount,
		AdjustmentPercent: percentOf(amount, in.comp.SalePrice),
		WasCapped:         wasCapped,
		Confidence:        factorConfidence[FactorTime],
	}, true
}

func featuresAdjustment(in input) (PriceAdjustment, bool) {
	r := in.rates.Features
	s, c := in.subject, in.comp

	var raw float64
	var parts []string
	subjectVals := map[string]any{}
	compVals := map[string]any{}

	flag := func(name string, sp, cp *bool, rate float64) {
		sv, okS := property.Flag(sp)
		cv, okC := property.Flag(cp)
		if !okS || !okC || sv == cv {
			return
		}
		subjectVals[name], compVals[name] = sv, cv
		if sv {
			raw += rate
		} else {
			raw -= rate
		}
		parts = append(parts, name)
	}
	flag("central_air", s.HasCentralAir, c.HasCentralAir, r.CentralAir)
	flag("hardwood_floors", s.HardwoodFloors, c.HardwoodFloors, r.HardwoodFloors)
	flag("updated_kitchen", s.UpdatedKitchen, c.UpdatedKitchen, r.UpdatedKitchen)
	flag("updated_bathrooms", s.UpdatedBathrooms, c.UpdatedBathrooms, r.UpdatedBathrooms)

	if sf, okS := property.IntValue(s.FireplaceCount); okS {
		if cf, okC := property.IntValue(c.FireplaceCount); okC && sf != cf {
			subjectVals["fireplaces"], compVals["fireplaces"] = sf, cf
			raw += float64(sf-cf) * r.Fireplace
			parts = append(parts, "fireplaces")
		}
	}
	if sd, okS := property.Value(s.DeckPatioSqft); okS {
		if cd, okC := property.Value(c.DeckPatioSqft); okC && sd != cd {
			subjectVals["deck_patio_sqft"], compVals["deck_patio_sqft"] = sd, cd
			raw += (sd - cd) * r.DeckPatioPerSqft
			parts = append(parts, "deck_patio_sqft")
		}
	}

	if len(parts) == 0 {
		return PriceAdjustment{}, false
	}
	desc := "feature differences: " + strings.Join(parts, ", ")
	return in.item(CategoryFeatures, FactorFeatures, desc, subjectVals, compVals, raw, in.rates.Caps.Features), true
}

func premiumAdjustment(in input) (PriceAdjustment, bool) {
	r := in.rates.Premium
	s, c := in.subject, in.comp

	var raw float64
	var defined int
	var parts []string
	subjectVals := map[string]any{}
	compVals := map[string]any{}

	flag := func(name string, sp, cp *bool, rate float64) {
		sv, okS := property.Flag(sp)
		cv, okC := property.Flag(cp)
		if !okS || !okC {
			return
		}
		defined++
		subjectVals[name], compVals[name] = sv, cv
		if sv == cv {
			return
		}
		if sv {
			raw += rate
		} else {
			raw -= rate
		}
		parts = append(parts, name)
	}
	flag("waterfront", s.Waterfront, c.Waterfront, r.Waterfront)
	flag("view", s.View, c.View, r.View)
	flag("corner_lot", s.CornerLot, c.CornerLot, r.CornerLot)
	flag("cul_de_sac", s.CulDeSac, c.CulDeSac, r.CulDeSac)

	if defined == 0 {
		return PriceAdjustment{}, false
	}
	desc := "premium features match"
	if len(parts) > 0 {
		desc = "premium feature differences: " + strings.Join(parts, ", ")
	}
	return in.item(CategoryLocation, FactorPremium, desc, subjectVals, compVals, raw, in.rates.Caps.Premium), true
}

func concessionsAdjustment(in input) (PriceAdjustment, bool) {
	amount, ok := property.Value(in.comp.SellerConcessions)
	if !ok || amount < 0 {
		return PriceAdjustment{}, false
	}
	desc := fmt.Sprintf("seller concessions of $%.0f removed from sale price", amount)
	return in.item(CategoryFinancing, FactorConcessions, desc, nil, amount, -amount, in.rates.Caps.Concessions), true
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func roundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// percentOf returns amount as a percentage of price rounded to two places, 0
// when price is not positive.
func percentOf(amount, price float64) float64 {
	return exactPercent(decimal.NewFromFloat(amount), price).Round(2).InexactFloat64()
}

// exactPercent is percentOf without rounding.
func exactPercent(amount decimal.Decimal, price float64) decimal.Decimal {
	if price <= 0 {
		return decimal.Zero
	}
	return amount.Div(decimal.NewFromFloat(price)).Mul(decimal.NewFromInt(100))
}
