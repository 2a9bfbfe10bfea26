package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Comps/internal/config"
	"github.com/MikeSquared-Agency/Comps/internal/report"
	"github.com/MikeSquared-Agency/Comps/internal/valuation"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))

	logger.Warn("comparable flagged", "comparable_id", "c1")
	assert.Contains(t, buf.String(), "comparable_id=c1")

	buf.Reset()
	logger = newLogger(config.LoggingConfig{Level: "bogus", Format: "json"}, &buf)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
	logger.Info("analysis complete")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
}

func TestWriteReportsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	reports := []valuation.Report{{RunID: "run-1"}}

	require.NoError(t, writeReports(path, reports, report.FormatCSV))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "run_id,"))

	assert.Error(t, writeReports(filepath.Join(t.TempDir(), "missing", "out.json"), reports, report.FormatJSON))
}
