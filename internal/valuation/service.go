package valuation

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Comps/internal/adjustment"
	"github.com/MikeSquared-Agency/Comps/internal/property"
	"github.com/MikeSquared-Agency/Comps/internal/scoring"
)

// Request is one subject with its candidate comparables. Weights overrides
// the scorer's default weights when set.
type Request struct {
	Subject     property.SubjectProperty      `json:"subject" yaml:"subject"`
	Comparables []property.ComparableProperty `json:"comparables" yaml:"comparables"`
	Weights     *scoring.Weights              `json:"weights,omitempty" yaml:"weights,omitempty"`
}

// Row is a shortlisted comparable with its similarity and adjustment grid.
type Row struct {
	Comparable property.ComparableProperty `json:"comparable"`
	Similarity scoring.SimilarityResult    `json:"similarity"`
	Adjustment adjustment.AdjustmentResult `json:"adjustment"`
	// Preferred marks comparables no other shortlisted comparable beats on
	// both similarity and gross adjustment.
	Preferred bool `json:"preferred"`
}

// Report is the outcome of one analysis.
type Report struct {
	RunID       string                        `json:"run_id"`
	GeneratedAt time.Time                     `json:"generated_at"`
	Subject     property.SubjectProperty      `json:"subject"`
	Weights     scoring.Weights               `json:"weights"`
	Excluded    []scoring.Rejection           `json:"excluded"`
	Ranked      []property.ComparableProperty `json:"ranked"`
	Shortlist   []Row                         `json:"shortlist"`
	Summary     Summary                       `json:"summary"`
}

// Options controls shortlist selection. Selection is applied before
// ranking; its zero value keeps every comparable.
type Options struct {
	MinScore         float64
	TopN             int
	NormalizeWeights bool
	Selection        scoring.SelectionCriteria
}

// DefaultOptions returns the standard shortlist settings.
func DefaultOptions() Options {
	return Options{
		MinScore:         scoring.DefaultMinScore,
		TopN:             scoring.DefaultTopN,
		NormalizeWeights: true,
		Selection:        scoring.DefaultSelectionCriteria(),
	}
}

// Service runs the rank, shortlist and adjust pipeline for a subject.
type Service struct {
	scorer  *scoring.Scorer
	engine  *adjustment.Engine
	opts    Options
	metrics *Metrics
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock sets the time source for report timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithRunIDs sets the run id generator.
func WithRunIDs(newID func() string) ServiceOption {
	return func(s *Service) { s.newID = newID }
}

// NewService creates a Service. metrics may be nil.
func NewService(scorer *scoring.Scorer, engine *adjustment.Engine, opts Options, metrics *Metrics, logger *slog.Logger, options ...ServiceOption) *Service {
	s := &Service{
		scorer:  scorer,
		engine:  engine,
		opts:    opts,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Analyze drops comparables outside the selection criteria, scores the rest,
// shortlists the most similar ones and builds an adjustment grid for each.
func (s *Service) Analyze(req Request) Report {
	runID := s.newID()
	logger := s.logger.With("run_id", runID, "subject_id", req.Subject.ID)

	weights, source := s.resolveWeights(req.Weights, logger)

	candidates, excluded := s.scorer.Select(req.Subject, req.Comparables, s.opts.Selection)
	if excluded == nil {
		excluded = []scoring.Rejection{}
	}
	for _, r := range excluded {
		if s.metrics != nil {
			s.metrics.IncExcluded(r.Reasons)
		}
		logger.Debug("comparable excluded", "comparable_id", r.ComparableID, "reasons", r.Reasons)
	}

	ranked := s.scorer.Rank(req.Subject, candidates, weights)
	scored := make([]property.ComparableProperty, len(ranked))
	for i, r := range ranked {
		scored[i] = r.Comparable
		if s.metrics != nil {
			s.metrics.ObserveSimilarity(r.Result.Score)
		}
		logger.Debug("comparable scored", "comparable_id", r.Comparable.ID,
			"score", r.Result.Score, "confidence", r.Result.Confidence,
			"distance_miles", r.Result.DistanceMiles, "missing", r.Result.MissingFactors)
	}

	shortlist := scoring.TopN(scoring.FilterByMinScore(ranked, s.opts.MinScore), s.opts.TopN)

	rows := make([]Row, 0, len(shortlist))
	flagged := 0
	for _, r := range shortlist {
		adj := s.engine.Adjust(req.Subject, r.Comparable)
		rows = append(rows, Row{
			Comparable: r.Comparable,
			Similarity: r.Result,
			Adjustment: adj,
		})

		if adj.ShouldFlag {
			flagged++
			logger.Warn("comparable flagged", "comparable_id", r.Comparable.ID,
				"gross_adjustment_pct", adj.GrossAdjustmentPercent, "warnings", adj.Warnings)
		}
		if s.metrics != nil {
			s.metrics.ObserveAdjustment(adj.GrossAdjustmentPercent, adj.ShouldFlag)
			for _, item := range adj.Adjustments {
				if item.WasCapped {
					s.metrics.IncCapped(item.Factor)
				}
			}
		}
	}
	markPreferred(rows)

	summary, err := Summarize(rows)
	if err != nil {
		logger.Error("failed to summarize adjusted prices", "error", err)
		summary = Summary{Basis: BasisNone, ConfidenceLevel: ConfidenceLow}
	}
	if s.metrics != nil {
		s.metrics.IncAnalyses(source)
	}
	logger.Info("analysis complete",
		"comparables", len(req.Comparables),
		"excluded", len(excluded),
		"shortlisted", len(rows),
		"flagged", flagged,
		"weights", source,
		"adjusted_mean", summary.Mean,
		"confidence_level", summary.ConfidenceLevel)

	return Report{
		RunID:       runID,
		GeneratedAt: s.now().UTC(),
		Subject:     req.Subject,
		Weights:     weights,
		Excluded:    excluded,
		Ranked:      scored,
		Shortlist:   rows,
		Summary:     summary,
	}
}

// resolveWeights picks the weights for a run. Custom weights that do not
// validate are normalized when enabled and used as given otherwise.
func (s *Service) resolveWeights(custom *scoring.Weights, logger *slog.Logger) (scoring.Weights, string) {
	if custom == nil {
		return s.scorer.Weights(), WeightsDefault
	}
	w := *custom
	if scoring.ValidateWeights(w) {
		return w, WeightsCustom
	}
	if s.opts.NormalizeWeights {
		logger.Warn("custom weights invalid, normalizing", "sum", w.Sum())
		return scoring.NormalizeWeights(w), WeightsNormalized
	}
	logger.Warn("custom weights invalid, using as given", "sum", w.Sum())
	return w, WeightsCustom
}

func markPreferred(rows []Row) {
	candidates := make([]scoring.ParetoCandidate, len(rows))
	for i, r := range rows {
		candidates[i] = scoring.ParetoCandidate{
			ID:                 strconv.Itoa(i),
			Similarity:         r.Similarity.Score,
			GrossAdjustmentPct: r.Adjustment.GrossAdjustmentPercent,
		}
	}
	for _, c := range scoring.ComputeFrontier(candidates) {
		i, _ := strconv.Atoi(c.ID)
		rows[i].Preferred = true
	}
}
