package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateWeights(t *testing.T) {
	tests := []struct {
		name string
		w    Weights
		want bool
	}{
		{"defaults", DefaultWeights(), true},
		{"single factor", Weights{Distance: 1}, true},
		{"within tolerance", Weights{Distance: 0.5, Sqft: 0.5009}, true},
		{"outside tolerance", Weights{Distance: 0.5, Sqft: 0.502}, false},
		{"negative", Weights{Distance: 1.2, Sqft: -0.2}, false},
		{"all zero", Weights{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateWeights(tt.w))
		})
	}
}

func TestNormalizeWeights(t *testing.T) {
	t.Run("preserves proportions", func(t *testing.T) {
		n := NormalizeWeights(Weights{Distance: 10, Sqft: 5})
		assert.InDelta(t, 1.0, n.Sum(), 1e-9)
		assert.InDelta(t, 2.0, n.Distance/n.Sqft, 1e-9)
		assert.Equal(t, 0.0, n.Bedrooms)
		assert.True(t, ValidateWeights(n))
	})

	t.Run("already normalized", func(t *testing.T) {
		n := NormalizeWeights(DefaultWeights())
		assert.InDelta(t, 1.0, n.Sum(), 1e-9)
		assert.InDelta(t, DefaultWeights().Distance, n.Distance, 1e-9)
	})

	t.Run("all zero falls back to defaults", func(t *testing.T) {
		assert.Equal(t, DefaultWeights(), NormalizeWeights(Weights{}))
	})

	t.Run("negative entries ignored", func(t *testing.T) {
		n := NormalizeWeights(Weights{Distance: 3, Sqft: 1, Age: -4})
		assert.Equal(t, 0.0, n.Age)
		assert.InDelta(t, 0.75, n.Distance, 1e-9)
	})

	t.Run("many magnitudes", func(t *testing.T) {
		for _, scale := range []float64{1e-6, 0.3, 7, 1e6} {
			w := Weights{
				Distance: 2 * scale, Sqft: 3 * scale, LotSize: scale, Bedrooms: scale,
				Bathrooms: scale, Age: scale, Recency: scale, PropertyType: scale,
				Style: scale, Features: scale,
			}
			assert.InDelta(t, 1.0, NormalizeWeights(w).Sum(), 1e-9)
		}
	})
}

func TestWeightsByFactor(t *testing.T) {
	w := DefaultWeights()
	assert.Equal(t, w.Sqft, w.ByFactor(FactorSqft))
	assert.Equal(t, w.Features, w.ByFactor(FactorFeatures))
	assert.Equal(t, 0.0, w.ByFactor("garage"))
}
