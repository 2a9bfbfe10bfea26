package valuation

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names.
const (
	MetricAnalysesTotal           = "comps_analyses_total"
	MetricComparablesExcluded     = "comps_comparables_excluded_total"
	MetricComparablesScoredTotal  = "comps_comparables_scored_total"
	MetricComparablesShortlisted  = "comps_comparables_shortlisted_total"
	MetricComparablesFlaggedTotal = "comps_comparables_flagged_total"
	MetricAdjustmentsCappedTotal  = "comps_adjustments_capped_total"
	MetricSimilarityScore         = "comps_similarity_score"
	MetricGrossAdjustmentPercent  = "comps_gross_adjustment_percent"
)

// Weight source labels for MetricAnalysesTotal.
const (
	WeightsDefault    = "default"
	WeightsCustom     = "custom"
	WeightsNormalized = "normalized"
)

// Metrics contains Prometheus metrics for valuation runs.
// All operations are thread-safe.
type Metrics struct {
	analysesTotal     *prometheus.CounterVec
	excludedTotal     *prometheus.CounterVec
	scoredTotal       prometheus.Counter
	shortlistedTotal  prometheus.Counter
	flaggedTotal      prometheus.Counter
	cappedTotal       *prometheus.CounterVec
	similarityScore   prometheus.Histogram
	grossAdjustmentPc prometheus.Histogram
}

// NewMetrics creates and returns a new Metrics instance with all collectors initialized.
// The metrics are not registered; call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		analysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricAnalysesTotal,
				Help: "Total number of comparable analyses by weight source",
			},
			[]string{"weights"},
		),
		excludedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricComparablesExcluded,
				Help: "Total number of selection criteria failed by excluded comparables, by criterion",
			},
			[]string{"reason"},
		),
		scoredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricComparablesScoredTotal,
				Help: "Total number of comparables scored for similarity",
			},
		),
		shortlistedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricComparablesShortlisted,
				Help: "Total number of comparables that made the shortlist",
			},
		),
		flaggedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricComparablesFlaggedTotal,
				Help: "Total number of shortlisted comparables flagged for excessive gross adjustment",
			},
		),
		cappedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricAdjustmentsCappedTotal,
				Help: "Total number of adjustment line items limited by their cap, by factor",
			},
			[]string{"factor"},
		),
		similarityScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricSimilarityScore,
				Help:    "Distribution of comparable similarity scores",
				Buckets: prometheus.LinearBuckets(10, 10, 10),
			},
		),
		grossAdjustmentPc: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricGrossAdjustmentPercent,
				Help:    "Distribution of gross adjustment as a percent of sale price",
				Buckets: []float64{5, 10, 15, 20, 25, 30, 40, 50},
			},
		),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// IncAnalyses counts one analysis run.
func (m *Metrics) IncAnalyses(weights string) {
	m.analysesTotal.WithLabelValues(weights).Inc()
}

// IncExcluded counts each criterion an excluded comparable failed.
func (m *Metrics) IncExcluded(reasons []string) {
	for _, r := range reasons {
		m.excludedTotal.WithLabelValues(r).Inc()
	}
}

// ObserveSimilarity records a scored comparable.
func (m *Metrics) ObserveSimilarity(score float64) {
	m.scoredTotal.Inc()
	m.similarityScore.Observe(score)
}

// ObserveAdjustment records a shortlisted comparable's adjustment grid.
func (m *Metrics) ObserveAdjustment(grossPct float64, flagged bool) {
	m.shortlistedTotal.Inc()
	m.grossAdjustmentPc.Observe(grossPct)
	if flagged {
		m.flaggedTotal.Inc()
	}
}

// IncCapped counts a capped adjustment line item.
func (m *Metrics) IncCapped(factor string) {
	m.cappedTotal.WithLabelValues(factor).Inc()
}

// Collectors returns all Prometheus collectors.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.analysesTotal,
		m.excludedTotal,
		m.scoredTotal,
		m.shortlistedTotal,
		m.flaggedTotal,
		m.cappedTotal,
		m.similarityScore,
		m.grossAdjustmentPc,
	}
}
