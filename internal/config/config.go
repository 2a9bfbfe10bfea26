package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Comps/internal/adjustment"
	"github.com/MikeSquared-Agency/Comps/internal/scoring"
)

type Config struct {
	Scoring    ScoringConfig    `yaml:"scoring"`
	Adjustment adjustment.Rates `yaml:"adjustment"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

type ScoringConfig struct {
	Weights          scoring.Weights `yaml:"weights"`
	MinScore         float64         `yaml:"min_score"`
	TopN             int             `yaml:"top_n"`
	NormalizeWeights bool            `yaml:"normalize_weights"`

	// Selection drops comparables before they are scored.
	Selection scoring.SelectionCriteria `yaml:"selection"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	// Textfile is written in the Prometheus text format after each run.
	// Empty disables metric export.
	Textfile string `yaml:"textfile"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Scoring: ScoringConfig{
			Weights:          scoring.DefaultWeights(),
			MinScore:         scoring.DefaultMinScore,
			TopN:             scoring.DefaultTopN,
			NormalizeWeights: true,
			Selection:        scoring.DefaultSelectionCriteria(),
		},
		Adjustment: adjustment.DefaultRates(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// Validate reports the first setting the engine cannot run with.
func (c *Config) Validate() error {
	if err := c.Scoring.Weights.Validate(); err != nil && !c.Scoring.NormalizeWeights {
		return fmt.Errorf("scoring weights: %w", err)
	}
	if c.Scoring.MinScore < 0 || c.Scoring.MinScore > scoring.MaxScore {
		return fmt.Errorf("scoring min_score must be within [0, 100], got %f", c.Scoring.MinScore)
	}
	if c.Scoring.TopN < 0 {
		return fmt.Errorf("scoring top_n must not be negative, got %d", c.Scoring.TopN)
	}
	if err := c.Scoring.Selection.Validate(); err != nil {
		return fmt.Errorf("scoring selection: %w", err)
	}
	if err := c.Adjustment.Validate(); err != nil {
		return fmt.Errorf("adjustment rates: %w", err)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging format must be json or text, got %q", c.Logging.Format)
	}
	return nil
}

// ScoringWeights returns the configured weights, normalized when they do not
// validate and normalization is enabled.
func (c *Config) ScoringWeights() scoring.Weights {
	w := c.Scoring.Weights
	if c.Scoring.NormalizeWeights && !scoring.ValidateWeights(w) {
		return scoring.NormalizeWeights(w)
	}
	return w
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("COMPS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("COMPS_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("COMPS_MIN_SCORE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Scoring.MinScore = f
		}
	}
	if v := os.Getenv("COMPS_TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scoring.TopN = n
		}
	}
	if v := os.Getenv("COMPS_NORMALIZE_WEIGHTS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Scoring.NormalizeWeights = b
		}
	}
	if v := os.Getenv("COMPS_MAX_DISTANCE_MILES"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Scoring.Selection.MaxDistanceMiles = f
		}
	}
	if v := os.Getenv("COMPS_MAX_SALE_AGE_MONTHS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Scoring.Selection.MaxSaleAgeMonths = f
		}
	}
	if v := os.Getenv("COMPS_METRICS_FILE"); v != "" {
		cfg.Metrics.Textfile = v
	}
	if v := os.Getenv("COMPS_FLAG_THRESHOLD_PCT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Adjustment.FlagThresholdPct = f
		}
	}
	if v := os.Getenv("COMPS_MONTHLY_APPRECIATION"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Adjustment.MonthlyAppreciation = f
		}
	}
}
