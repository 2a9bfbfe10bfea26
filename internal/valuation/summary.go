package valuation

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

// Summary basis values.
const (
	BasisUnflagged = "unflagged"
	BasisAll       = "all"
	BasisNone      = "none"
)

// Confidence levels.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Confidence blend. A summary built from fullConfidenceCount or more
// comparables earns the whole count share.
const (
	fullConfidenceCount   = 5
	countShare            = 0.3
	similarityShare       = 0.4
	adjustmentShare       = 0.3
	flaggedBasisDiscount  = 0.5
	highConfidenceAbove   = 80.0
	mediumConfidenceAbove = 50.0
)

// Summary describes the spread of adjusted prices across the shortlist.
// Flagged comparables are left out unless every comparable was flagged.
type Summary struct {
	Basis        string  `json:"basis"`
	Count        int     `json:"count"`
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	WeightedMean float64 `json:"weighted_mean"`

	// Low and High bracket the weighted mean by one standard deviation,
	// clipped to the observed adjusted prices.
	Low             float64 `json:"low"`
	High            float64 `json:"high"`
	Confidence      float64 `json:"confidence"`
	ConfidenceLevel string  `json:"confidence_level"`
}

// Summarize computes the adjusted price summary for rows. Comparables without
// a positive sale price carry no price signal and are skipped.
func Summarize(rows []Row) (Summary, error) {
	basis := BasisUnflagged
	selected := pick(rows, false)
	if len(selected) == 0 {
		basis = BasisAll
		selected = pick(rows, true)
	}
	if len(selected) == 0 {
		return Summary{Basis: BasisNone, ConfidenceLevel: ConfidenceLow}, nil
	}

	prices := make([]float64, len(selected))
	for i, r := range selected {
		prices[i] = r.Adjustment.AdjustedPrice
	}

	mean, err := stats.Mean(prices)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to compute mean adjusted price: %w", err)
	}
	median, err := stats.Median(prices)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to compute median adjusted price: %w", err)
	}
	lo, err := stats.Min(prices)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to compute min adjusted price: %w", err)
	}
	hi, err := stats.Max(prices)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to compute max adjusted price: %w", err)
	}
	var stdev float64
	if len(prices) > 1 {
		stdev, err = stats.StandardDeviationSample(prices)
		if err != nil {
			return Summary{}, fmt.Errorf("failed to compute adjusted price deviation: %w", err)
		}
	}
	weighted := weightedMean(selected, mean)

	conf, err := summaryConfidence(selected, basis)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Basis:           basis,
		Count:           len(selected),
		Mean:            cents(mean),
		Median:          cents(median),
		StdDev:          cents(stdev),
		Min:             cents(lo),
		Max:             cents(hi),
		WeightedMean:    cents(weighted),
		Low:             cents(math.Max(lo, weighted-stdev)),
		High:            cents(math.Min(hi, weighted+stdev)),
		Confidence:      conf,
		ConfidenceLevel: confidenceLevel(conf),
	}, nil
}

// summaryConfidence blends how many comparables back the summary with their
// average similarity and average adjustment confidence, on a 0-100 scale.
// A summary that had to fall back to flagged comparables is discounted.
func summaryConfidence(rows []Row, basis string) (float64, error) {
	similarity := make([]float64, len(rows))
	adjusted := make([]float64, len(rows))
	for i, r := range rows {
		similarity[i] = r.Similarity.Score
		adjusted[i] = r.Adjustment.Confidence
	}
	avgSimilarity, err := stats.Mean(similarity)
	if err != nil {
		return 0, fmt.Errorf("failed to compute mean similarity: %w", err)
	}
	avgAdjustment, err := stats.Mean(adjusted)
	if err != nil {
		return 0, fmt.Errorf("failed to compute mean adjustment confidence: %w", err)
	}

	count := math.Min(float64(len(rows)), fullConfidenceCount) / fullConfidenceCount * 100
	c := countShare*count + similarityShare*avgSimilarity + adjustmentShare*avgAdjustment
	if basis == BasisAll {
		c *= flaggedBasisDiscount
	}
	c = math.Max(0, math.Min(100, c))
	return decimal.NewFromFloat(c).Round(1).InexactFloat64(), nil
}

func confidenceLevel(c float64) string {
	switch {
	case c > highConfidenceAbove:
		return ConfidenceHigh
	case c > mediumConfidenceAbove:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func pick(rows []Row, includeFlagged bool) []Row {
	var out []Row
	for _, r := range rows {
		if r.Comparable.SalePrice <= 0 {
			continue
		}
		if r.Adjustment.ShouldFlag && !includeFlagged {
			continue
		}
		out = append(out, r)
	}
	return out
}

// weightedMean weights each adjusted price by its similarity score, falling
// back to the plain mean when every score is zero.
func weightedMean(rows []Row, fallback float64) float64 {
	total := decimal.Zero
	weight := decimal.Zero
	for _, r := range rows {
		w := decimal.NewFromFloat(r.Similarity.Score)
		total = total.Add(decimal.NewFromFloat(r.Adjustment.AdjustedPrice).Mul(w))
		weight = weight.Add(w)
	}
	if weight.IsZero() {
		return fallback
	}
	return total.Div(weight).InexactFloat64()
}

func cents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
