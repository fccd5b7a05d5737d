// Package cleaning turns a raw uploaded sales table into numeric records fit
// for training: currency parsing, missing-value drops and IQR outlier
// removal on the two target columns.
package cleaning

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/adhassan/salescast/internal/core/domain"
)

// Stats summarizes one cleaning pass for logging and the dataset registry.
type Stats struct {
	TotalRows   int `json:"total_rows"`
	DroppedRows int `json:"dropped_rows"`
	Outliers    int `json:"outliers"`
	Kept        int `json:"kept"`
}

// Clean parses and filters an uploaded table. Missing required columns fail
// with ErrBadFormat; rows with missing numeric values are dropped; the
// outlier filter runs on Sales first and then on Profit over the already
// sales-filtered rows. The order changes which quartiles the profit filter
// sees and is kept for reproducibility.
func Clean(table domain.RawTable) ([]domain.CleanRecord, Stats, error) {
	colIdx := make(map[string]int, len(table.Columns))
	for i, name := range table.Columns {
		colIdx[strings.TrimSpace(name)] = i
	}
	for _, name := range domain.RequiredColumns() {
		if _, ok := colIdx[name]; !ok {
			return nil, Stats{}, domain.WrapError(domain.ErrBadFormat, "clean dataset",
				fmt.Errorf("missing required column %q", name))
		}
	}

	stats := Stats{TotalRows: len(table.Rows)}

	records := make([]domain.CleanRecord, 0, len(table.Rows))
	for rowNum, row := range table.Rows {
		rec, ok, err := parseRow(row, colIdx, rowNum)
		if err != nil {
			return nil, Stats{}, err
		}
		if !ok {
			stats.DroppedRows++
			continue
		}
		records = append(records, rec)
	}

	logConsistency(records)

	filtered := filterIQR(records, func(r domain.CleanRecord) float64 { return r.Sales })
	filtered = filterIQR(filtered, func(r domain.CleanRecord) float64 { return r.Profit })
	stats.Outliers = len(records) - len(filtered)
	stats.Kept = len(filtered)

	slog.Debug("dataset cleaned",
		"total", stats.TotalRows,
		"dropped", stats.DroppedRows,
		"outliers", stats.Outliers,
		"kept", stats.Kept,
	)
	return filtered, stats, nil
}

func parseRow(row []string, colIdx map[string]int, rowNum int) (domain.CleanRecord, bool, error) {
	cell := func(name string) string {
		idx := colIdx[name]
		if idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	year, ok := parseIntCell(cell(domain.ColYear))
	if !ok {
		return domain.CleanRecord{}, false, nil
	}
	month, ok := parseIntCell(cell(domain.ColMonthNumber))
	if !ok {
		return domain.CleanRecord{}, false, nil
	}

	values := make(map[string]float64, 8)
	for _, name := range domain.NumericColumns() {
		v, missing, err := ParseNumeric(cell(name))
		if err != nil {
			return domain.CleanRecord{}, false, domain.WrapError(domain.ErrBadFormat, "clean dataset",
				fmt.Errorf("row %d, column %q: %w", rowNum+1, name, err))
		}
		if missing {
			return domain.CleanRecord{}, false, nil
		}
		values[name] = v
	}

	return domain.CleanRecord{
		Year:               year,
		Month:              month,
		UnitsSold:          values[domain.ColUnitsSold],
		ManufacturingPrice: values[domain.ColManufacturingPrice],
		SalePrice:          values[domain.ColSalePrice],
		GrossSales:         values[domain.ColGrossSales],
		Discounts:          values[domain.ColDiscounts],
		Sales:              values[domain.ColSales],
		COGS:               values[domain.ColCOGS],
		Profit:             values[domain.ColProfit],
	}, true, nil
}

// ParseNumeric applies the accounting conventions of the source files:
// thousands separators and dollar signs are stripped, "(N)" is a negative
// amount and a bare "-" (or empty cell) marks a missing value.
func ParseNumeric(raw string) (value float64, missing bool, err error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") && len(s) > 2 {
		s = "-" + strings.TrimSpace(s[1:len(s)-1])
	}

	if s == "" || s == "-" {
		return 0, true, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("unparseable numeric value %q", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, true, nil
	}
	return v, false, nil
}

func parseIntCell(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}

// filterIQR keeps records within [Q1 − 1.5·IQR, Q3 + 1.5·IQR] of the given
// column, with quartiles computed over the records passed in.
func filterIQR(records []domain.CleanRecord, column func(domain.CleanRecord) float64) []domain.CleanRecord {
	if len(records) == 0 {
		return records
	}
	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = column(r)
	}
	sort.Float64s(values)

	q1 := quantile(values, 0.25)
	q3 := quantile(values, 0.75)
	iqr := q3 - q1
	lo := q1 - 1.5*iqr
	hi := q3 + 1.5*iqr

	kept := make([]domain.CleanRecord, 0, len(records))
	for _, r := range records {
		v := column(r)
		if v >= lo && v <= hi {
			kept = append(kept, r)
		}
	}
	return kept
}

// quantile linearly interpolates between order statistics, matching the
// method the source data was originally profiled with.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// logConsistency cross-checks the derived columns. Diagnostic only; records
// are kept regardless of mismatches.
func logConsistency(records []domain.CleanRecord) {
	mismatched := 0
	for _, r := range records {
		if math.Abs((r.GrossSales-r.Discounts)-r.Sales) > 0.01 ||
			math.Abs((r.Sales-r.COGS)-r.Profit) > 0.01 {
			mismatched++
		}
	}
	if mismatched > 0 {
		slog.Debug("derived column mismatches", "rows", mismatched)
	}
}
