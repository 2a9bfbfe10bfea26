package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Comps/internal/adjustment"
	"github.com/MikeSquared-Agency/Comps/internal/property"
	"github.com/MikeSquared-Agency/Comps/internal/scoring"
	"github.com/MikeSquared-Agency/Comps/internal/valuation"
)

func testReport() valuation.Report {
	return valuation.Report{
		RunID:       "run-1",
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Subject:     property.SubjectProperty{ID: "subject", Address: "412 Maple Ave"},
		Weights:     scoring.DefaultWeights(),
		Shortlist: []valuation.Row{
			{
				Comparable: property.ComparableProperty{ID: "c1", Address: "418 Maple Ave", SalePrice: 200000},
				Similarity: scoring.SimilarityResult{Score: 91.4},
				Preferred:  true,
				Adjustment: adjustment.AdjustmentResult{
					OriginalPrice: 200000,
					AdjustedPrice: 185000,
					Adjustments: []adjustment.PriceAdjustment{
						{
							Category:          adjustment.CategoryPhysical,
							Factor:            adjustment.FactorSqft,
							Description:       "-100 sqft at $50.00/sqft",
							AdjustmentAmount:  -5000,
							AdjustmentPercent: -2.5,
							Confidence:        90,
						},
						{
							Category:          adjustment.CategoryFeatures,
							Factor:            adjustment.FactorPool,
							Description:       "comparable has pool, subject does not",
							AdjustmentAmount:  -10000,
							AdjustmentPercent: -5,
							WasCapped:         true,
							Confidence:        85,
						},
					},
				},
			},
			{
				Comparable: property.ComparableProperty{ID: "c2", SalePrice: 210000},
				Similarity: scoring.SimilarityResult{Score: 77},
				Adjustment: adjustment.AdjustmentResult{
					OriginalPrice: 210000,
					AdjustedPrice: 210000,
					Adjustments:   []adjustment.PriceAdjustment{},
				},
			},
		},
		Summary: valuation.Summary{Basis: valuation.BasisUnflagged, Count: 2, Mean: 197500},
	}
}

func TestLines(t *testing.T) {
	rows := Lines(testReport())
	require.Len(t, rows, 3)

	assert.Equal(t, "c1", rows[0].ComparableID)
	assert.Equal(t, "sqft", rows[0].Factor)
	assert.Equal(t, -5000.0, rows[0].Amount)
	assert.True(t, rows[0].Preferred)

	assert.Equal(t, "pool", rows[1].Factor)
	assert.True(t, rows[1].Capped)
	assert.Equal(t, 185000.0, rows[1].AdjustedPrice)

	// Comparables without line items still appear.
	assert.Equal(t, "c2", rows[2].ComparableID)
	assert.Empty(t, rows[2].Factor)
	assert.Equal(t, 210000.0, rows[2].AdjustedPrice)

	assert.Empty(t, Lines(valuation.Report{}))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testReport(), FormatCSV))

	header, _, _ := strings.Cut(buf.String(), "\n")
	assert.True(t, strings.HasPrefix(header, "run_id,subject_id,comparable_id"))

	var decoded []LineRow
	require.NoError(t, gocsv.Unmarshal(strings.NewReader(buf.String()), &decoded))
	assert.Equal(t, Lines(testReport()), decoded)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testReport(), FormatJSON))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.Equal(t, "2025-06-01T12:00:00Z", decoded["generated_at"])

	shortlist, ok := decoded["shortlist"].([]any)
	require.True(t, ok)
	require.Len(t, shortlist, 2)
	first := shortlist[0].(map[string]any)
	assert.Equal(t, true, first["preferred"])

	summary := decoded["summary"].(map[string]any)
	assert.Equal(t, "unflagged", summary["basis"])
	assert.Equal(t, 197500.0, summary["mean"])
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, testReport(), "xml"))
}

func TestWriteAllCSVSingleHeader(t *testing.T) {
	second := testReport()
	second.RunID = "run-2"

	var buf bytes.Buffer
	require.NoError(t, WriteAll(&buf, []valuation.Report{testReport(), second}, FormatCSV))
	assert.Equal(t, 1, strings.Count(buf.String(), "run_id,"))

	var decoded []LineRow
	require.NoError(t, gocsv.Unmarshal(strings.NewReader(buf.String()), &decoded))
	require.Len(t, decoded, 6)
	assert.Equal(t, "run-2", decoded[5].RunID)
}

func TestWriteAllJSONStream(t *testing.T) {
	second := testReport()
	second.RunID = "run-2"

	var buf bytes.Buffer
	require.NoError(t, WriteAll(&buf, []valuation.Report{testReport(), second}, FormatJSON))

	dec := json.NewDecoder(&buf)
	var ids []string
	for dec.More() {
		var r valuation.Report
		require.NoError(t, dec.Decode(&r))
		ids = append(ids, r.RunID)
	}
	assert.Equal(t, []string{"run-1", "run-2"}, ids)
}

func TestWriteAllUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteAll(&buf, []valuation.Report{testReport()}, "xml"))
}
