package adjustment

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeSquared-Agency/Comps/internal/property"
)

// noAdjustmentConfidence is reported when no line item applies.
const noAdjustmentConfidence = 50.0

// AdjustmentResult is the full adjustment grid for one comparable.
type AdjustmentResult struct {
	OriginalPrice          float64           `json:"original_price"`
	Adjustments            []PriceAdjustment `json:"adjustments"`
	GrossAdjustment        float64           `json:"gross_adjustment"`
	NetAdjustment          float64           `json:"net_adjustment"`
	AdjustedPrice          float64           `json:"adjusted_price"`
	TotalAdjustmentPercent float64           `json:"total_adjustment_percent"`
	GrossAdjustmentPercent float64           `json:"gross_adjustment_percent"`
	ShouldFlag             bool              `json:"should_flag"`
	Warnings               []string          `json:"warnings"`
	Confidence             float64           `json:"confidence"`
}

// Engine computes paired-sales price adjustments. It holds only immutable
// configuration and is safe for concurrent use.
type Engine struct {
	rates Rates
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used for market time adjustments.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine using rates.
func NewEngine(rates Rates, opts ...Option) *Engine {
	e := &Engine{rates: rates, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rates returns the engine's base rate table.
func (e *Engine) Rates() Rates {
	return e.rates
}

// Adjust itemizes the differences between subject and comp and converts
// them into an adjusted sale price for the comparable.
func (e *Engine) Adjust(subject property.SubjectProperty, comp property.ComparableProperty) AdjustmentResult {
	in := input{
		subject: subject,
		comp:    comp,
		rates:   e.rates.ForState(subject.State),
		now:     e.now(),
	}

	items := make([]PriceAdjustment, 0, len(adjusters))
	for _, fn := range adjusters {
		if adj, ok := fn(in); ok {
			items = append(items, adj)
		}
	}
	return summarize(comp.SalePrice, items, in.rates.FlagThresholdPct)
}

func summarize(price float64, items []PriceAdjustment, thresholdPct float64) AdjustmentResult {
	gross := decimal.Zero
	net := decimal.Zero
	capped := 0
	for _, adj := range items {
		amount := decimal.NewFromFloat(adj.AdjustmentAmount)
		net = net.Add(amount)
		gross = gross.Add(amount.Abs())
		if adj.WasCapped {
			capped++
		}
	}

	original := decimal.NewFromFloat(price)
	res := AdjustmentResult{
		OriginalPrice:   price,
		Adjustments:     items,
		GrossAdjustment: gross.Round(2).InexactFloat64(),
		NetAdjustment:   net.Round(2).InexactFloat64(),
		AdjustedPrice:   original.Add(net).Round(2).InexactFloat64(),
		Warnings:        []string{},
	}
	grossPct := exactPercent(gross, price)
	res.TotalAdjustmentPercent = exactPercent(net, price).Round(2).InexactFloat64()
	res.GrossAdjustmentPercent = grossPct.Round(2).InexactFloat64()

	// Flag and discount on the unrounded ratio so 25.004% is not read as 25%.
	if grossPct.GreaterThan(decimal.NewFromFloat(thresholdPct)) {
		res.ShouldFlag = true
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"gross adjustment of %.1f%% exceeds %.0f%% threshold; comparable may not be reliable",
			res.GrossAdjustmentPercent, thresholdPct))
	}
	if capped > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"%d adjustment(s) reached their maximum and were capped", capped))
	}

	res.Confidence = confidence(items, grossPct.InexactFloat64())
	return res
}

// confidence averages line-item confidence and discounts it by the share of
// the price that had to be adjusted.
func confidence(items []PriceAdjustment, grossPct float64) float64 {
	if len(items) == 0 {
		return noAdjustmentConfidence
	}
	var sum float64
	for _, adj := range items {
		sum += adj.Confidence
	}
	c := sum / float64(len(items)) * (1 - grossPct/100)
	c = math.Max(0, math.Min(100, c))
	return math.Round(c*10) / 10
}
