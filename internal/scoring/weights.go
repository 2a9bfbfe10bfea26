package scoring

import (
	"fmt"
	"math"
)

// weightTolerance is the allowed deviation of a weight set's sum from 1.0.
const weightTolerance = 0.001

// Weights defines the relative importance of each similarity factor.
// Weights are non-negative and sum to 1.0 (±0.001 tolerance).
type Weights struct {
	Distance     float64 `json:"distance" yaml:"distance"`
	Sqft         float64 `json:"sqft" yaml:"sqft"`
	LotSize      float64 `json:"lot_size" yaml:"lot_size"`
	Bedrooms     float64 `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms    float64 `json:"bathrooms" yaml:"bathrooms"`
	Age          float64 `json:"age" yaml:"age"`
	Recency      float64 `json:"recency" yaml:"recency"`
	PropertyType float64 `json:"property_type" yaml:"property_type"`
	Style        float64 `json:"style" yaml:"style"`
	Features     float64 `json:"features" yaml:"features"`
}

// DefaultWeights returns the built-in weight distribution. Location and size
// dominate, as they do in appraisal practice.
func DefaultWeights() Weights {
	return Weights{
		Distance:     0.20,
		Sqft:         0.20,
		LotSize:      0.05,
		Bedrooms:     0.10,
		Bathrooms:    0.10,
		Age:          0.10,
		Recency:      0.10,
		PropertyType: 0.05,
		Style:        0.03,
		Features:     0.07,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	var sum float64
	for _, v := range w.asList() {
		sum += v
	}
	return sum
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w Weights) Validate() error {
	for i, v := range w.asList() {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("negative weight for %s: %f", FactorNames[i], v)
		}
	}
	if math.Abs(w.Sum()-1.0) > weightTolerance {
		return fmt.Errorf("weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	return nil
}

// ValidateWeights reports whether w is usable as-is: every weight is
// non-negative and the sum is within ±0.001 of 1.0.
func ValidateWeights(w Weights) bool {
	return w.Validate() == nil
}

// NormalizeWeights rescales w so it sums to 1.0 while preserving the ratios
// between weights. Negative entries are treated as zero. When nothing
// positive remains the default weights are returned.
func NormalizeWeights(w Weights) Weights {
	list := w.asList()
	var sum float64
	for i, v := range list {
		if v < 0 || math.IsNaN(v) {
			list[i] = 0
			continue
		}
		sum += v
	}
	if sum == 0 || math.IsInf(sum, 0) {
		return DefaultWeights()
	}
	for i := range list {
		list[i] /= sum
	}
	return fromList(list)
}

// ByFactor returns the weight for a factor name, or 0 for unknown names.
func (w Weights) ByFactor(name string) float64 {
	for i, n := range FactorNames {
		if n == name {
			return w.asList()[i]
		}
	}
	return 0
}

func (w Weights) asList() []float64 {
	return []float64{
		w.Distance, w.Sqft, w.LotSize, w.Bedrooms, w.Bathrooms,
		w.Age, w.Recency, w.PropertyType, w.Style, w.Features,
	}
}

func fromList(l []float64) Weights {
	return Weights{
		Distance:     l[0],
		Sqft:         l[1],
		LotSize:      l[2],
		Bedrooms:     l[3],
		Bathrooms:    l[4],
		Age:          l[5],
		Recency:      l[6],
		PropertyType: l[7],
		Style:        l[8],
		Features:     l[9],
	}
}
