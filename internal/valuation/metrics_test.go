package valuation

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metricValue(t *testing.T, c prometheus.Collector) *dto.Metric {
	t.Helper()
	ch := make(chan prometheus.Metric, 1)
	go func() {
		c.Collect(ch)
		close(ch)
	}()
	var out *dto.Metric
	for m := range ch {
		var d dto.Metric
		require.NoError(t, m.Write(&d))
		out = &d
	}
	require.NotNil(t, out, "collector produced no metric")
	return out
}

func counterVecValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	c, err := vec.GetMetricWithLabelValues(labels...)
	require.NoError(t, err)
	return metricValue(t, c).GetCounter().GetValue()
}

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()
	require.NotNil(t, m)
	assert.Len(t, m.Collectors(), 8)
}

func TestMetricsRegister(t *testing.T) {
	t.Run("successful registration", func(t *testing.T) {
		m := NewMetrics()
		reg := prometheus.NewRegistry()
		require.NoError(t, m.Register(reg))

		m.IncAnalyses(WeightsDefault)
		m.ObserveSimilarity(88.2)
		m.ObserveAdjustment(12.5, false)
		m.IncCapped("age")
		m.IncExcluded([]string{"distance"})

		families, err := reg.Gather()
		require.NoError(t, err)

		found := map[string]bool{}
		for _, f := range families {
			found[f.GetName()] = true
		}
		for _, name := range []string{
			MetricAnalysesTotal, MetricComparablesExcluded, MetricComparablesScoredTotal, MetricComparablesShortlisted,
			MetricComparablesFlaggedTotal, MetricAdjustmentsCappedTotal,
			MetricSimilarityScore, MetricGrossAdjustmentPercent,
		} {
			assert.True(t, found[name], "metric %s not gathered", name)
		}
	})

	t.Run("duplicate registration fails", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		require.NoError(t, NewMetrics().Register(reg))
		assert.Error(t, NewMetrics().Register(reg))
	})
}

func TestMetricsObserve(t *testing.T) {
	m := NewMetrics()

	m.ObserveSimilarity(91)
	m.ObserveSimilarity(47)
	m.ObserveAdjustment(31, true)
	m.ObserveAdjustment(8, false)
	m.IncCapped("pool")
	m.IncCapped("pool")
	m.IncAnalyses(WeightsNormalized)
	m.IncExcluded([]string{"sqft", "age"})
	m.IncExcluded([]string{"sqft"})

	assert.Equal(t, 2.0, metricValue(t, m.scoredTotal).GetCounter().GetValue())
	assert.Equal(t, uint64(2), metricValue(t, m.similarityScore).GetHistogram().GetSampleCount())
	assert.Equal(t, 2.0, metricValue(t, m.shortlistedTotal).GetCounter().GetValue())
	assert.Equal(t, 1.0, metricValue(t, m.flaggedTotal).GetCounter().GetValue())
	assert.Equal(t, 39.0, metricValue(t, m.grossAdjustmentPc).GetHistogram().GetSampleSum())
	assert.Equal(t, 2.0, counterVecValue(t, m.cappedTotal, "pool"))
	assert.Equal(t, 1.0, counterVecValue(t, m.analysesTotal, WeightsNormalized))
	assert.Equal(t, 0.0, counterVecValue(t, m.analysesTotal, WeightsDefault))
	assert.Equal(t, 2.0, counterVecValue(t, m.excludedTotal, "sqft"))
	assert.Equal(t, 1.0, counterVecValue(t, m.excludedTotal, "age"))
}
