package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MikeSquared-Agency/Comps/internal/adjustment"
	"github.com/MikeSquared-Agency/Comps/internal/config"
	"github.com/MikeSquared-Agency/Comps/internal/report"
	"github.com/MikeSquared-Agency/Comps/internal/scoring"
	"github.com/MikeSquared-Agency/Comps/internal/valuation"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	format := flag.String("format", report.FormatJSON, "report format: json or csv")
	outPath := flag.String("out", "", "write the report to this file instead of stdout")
	metricsFile := flag.String("metrics-file", "", "write Prometheus metrics to this textfile (overrides config)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] request.json|request.yaml ...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// Reports go to stdout, so logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}
	logger = newLogger(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)

	if *metricsFile != "" {
		cfg.Metrics.Textfile = *metricsFile
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// Metrics
	reg := prometheus.NewRegistry()
	metrics := valuation.NewMetrics()
	if err := metrics.Register(reg); err != nil {
		logger.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	// Engines
	weights := cfg.ScoringWeights()
	if weights != cfg.Scoring.Weights {
		logger.Warn("configured weights do not sum to 1, normalized", "sum", cfg.Scoring.Weights.Sum())
	}
	scorer := scoring.NewScorer(weights)
	engine := adjustment.NewEngine(cfg.Adjustment)
	svc := valuation.NewService(scorer, engine, valuation.Options{
		MinScore:         cfg.Scoring.MinScore,
		TopN:             cfg.Scoring.TopN,
		NormalizeWeights: cfg.Scoring.NormalizeWeights,
		Selection:        cfg.Scoring.Selection,
	}, metrics, logger)

	failed := 0
	reports := make([]valuation.Report, 0, flag.NArg())
	for _, path := range flag.Args() {
		req, err := valuation.LoadRequest(path)
		if err != nil {
			logger.Error("failed to load request", "path", path, "error", err)
			failed++
			continue
		}
		reports = append(reports, svc.Analyze(req))
	}

	if err := writeReports(*outPath, reports, strings.ToLower(*format)); err != nil {
		logger.Error("failed to write report", "error", err)
		os.Exit(1)
	}

	if cfg.Metrics.Textfile != "" {
		if err := prometheus.WriteToTextfile(cfg.Metrics.Textfile, reg); err != nil {
			logger.Error("failed to write metrics textfile", "path", cfg.Metrics.Textfile, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("run complete", "requests", flag.NArg(), "analyzed", len(reports), "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func writeReports(path string, reports []valuation.Report, format string) error {
	if path == "" {
		return report.WriteAll(os.Stdout, reports, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := report.WriteAll(f, reports, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
