// Package report renders valuation reports for people and spreadsheets.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/MikeSquared-Agency/Comps/internal/valuation"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// LineRow is one adjustment line item in the CSV export. Comparables without
// any line item still get a row with the adjustment columns left empty.
type LineRow struct {
	RunID         string  `csv:"run_id"`
	SubjectID     string  `csv:"subject_id"`
	ComparableID  string  `csv:"comparable_id"`
	Address       string  `csv:"address"`
	SalePrice     float64 `csv:"sale_price"`
	Similarity    float64 `csv:"similarity"`
	Preferred     bool    `csv:"preferred"`
	Flagged       bool    `csv:"flagged"`
	Category      string  `csv:"category"`
	Factor        string  `csv:"factor"`
	Description   string  `csv:"description"`
	Amount        float64 `csv:"amount"`
	Percent       float64 `csv:"percent"`
	Capped        bool    `csv:"capped"`
	Confidence    float64 `csv:"confidence"`
	AdjustedPrice float64 `csv:"adjusted_price"`
}

// Write renders r to w in the given format.
func Write(w io.Writer, r valuation.Report, format string) error {
	switch format {
	case FormatJSON, "":
		return WriteJSON(w, r)
	case FormatCSV:
		return WriteCSV(w, r)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// WriteAll renders several reports to w. JSON output is a stream of
// documents; CSV output is a single table with one header.
func WriteAll(w io.Writer, reports []valuation.Report, format string) error {
	if format == FormatCSV {
		var rows []LineRow
		for _, r := range reports {
			rows = append(rows, Lines(r)...)
		}
		if err := gocsv.Marshal(&rows, w); err != nil {
			return fmt.Errorf("encode csv: %w", err)
		}
		return nil
	}
	for _, r := range reports {
		if err := Write(w, r, format); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r valuation.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteCSV writes the shortlist's adjustment grid as CSV.
func WriteCSV(w io.Writer, r valuation.Report) error {
	rows := Lines(r)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	return nil
}

// Lines flattens the shortlist into one row per adjustment line item.
func Lines(r valuation.Report) []LineRow {
	var rows []LineRow
	for _, row := range r.Shortlist {
		base := LineRow{
			RunID:         r.RunID,
			SubjectID:     r.Subject.ID,
			ComparableID:  row.Comparable.ID,
			Address:       row.Comparable.Address,
			SalePrice:     row.Comparable.SalePrice,
			Similarity:    row.Similarity.Score,
			Preferred:     row.Preferred,
			Flagged:       row.Adjustment.ShouldFlag,
			AdjustedPrice: row.Adjustment.AdjustedPrice,
		}
		if len(row.Adjustment.Adjustments) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, adj := range row.Adjustment.Adjustments {
			line := base
			line.Category = string(adj.Category)
			line.Factor = adj.Factor
			line.Description = adj.Description
			line.Amount = adj.AdjustmentAmount
			line.Percent = adj.AdjustmentPercent
			line.Capped = adj.WasCapped
			line.Confidence = adj.Confidence
			rows = append(rows, line)
		}
	}
	return rows
}
