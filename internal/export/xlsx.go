// Package export writes the augmented results table and its summary to an
// Excel workbook.
package export

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/nao1215/csmareport/internal/model"
	"github.com/xuri/excelize/v2"
)

// Sheet names.
const (
	ResultsSheet = "Results"
	SummarySheet = "Summary"
)

// defaultSheet is created by excelize.NewFile and removed before saving.
const defaultSheet = "Sheet1"

// ErrNilTable is returned when WriteXLSX is called without a table.
var ErrNilTable = errors.New("no table to export")

// WriteXLSX writes t to a Results sheet and, when s is not nil, the summary
// figures to a Summary sheet. Non-finite numbers are written as text.
func WriteXLSX(path string, t *model.Table, s *model.Summary) (err error) {
	if t == nil {
		return ErrNilTable
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := writeResults(f, t, bold); err != nil {
		return err
	}
	if s != nil {
		if err := writeSummary(f, s, bold); err != nil {
			return err
		}
	}
	if err := f.DeleteSheet(defaultSheet); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeResults(f *excelize.File, t *model.Table, headerStyle int) error {
	if _, err := f.NewSheet(ResultsSheet); err != nil {
		return err
	}

	columns := model.InputColumns()
	if t.Derived() {
		columns = append(columns, model.ColumnPerNodeThroughput)
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = string(c)
	}
	if err := f.SetSheetRow(ResultsSheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetRowStyle(ResultsSheet, 1, 1, headerStyle); err != nil {
		return err
	}

	for i, r := range t.Rows() {
		row := make([]any, 0, len(columns))
		row = append(row, r.Nodes)
		for _, c := range columns[1:] {
			v, err := r.Value(c)
			if err != nil {
				return err
			}
			row = append(row, cellValue(v))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ResultsSheet, cell, &row); err != nil {
			return err
		}
	}

	return f.SetColWidth(ResultsSheet, "A", "F", 20)
}

func writeSummary(f *excelize.File, s *model.Summary, headerStyle int) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}

	rows := [][]any{
		{"Metric", "Value", "Nodes"},
		{"Minimum Throughput (Mbps)", cellValue(s.MinThroughput), s.MinThroughputNodes},
		{"Maximum Throughput (Mbps)", cellValue(s.MaxThroughput), s.MaxThroughputNodes},
		{"Minimum PDR", cellValue(s.MinPDR), s.MinPDRNodes},
		{"Baseline Delay (ms)", cellValue(s.BaselineDelay), s.BaselineNodes},
		{"Peak Delay (ms)", cellValue(s.PeakDelay), s.PeakNodes},
		{"Delay Increase Factor", cellValue(s.DelayIncreaseFactor), ""},
		{"Delay Lookup", string(s.Lookup), ""},
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(SummarySheet, 1, 1, headerStyle); err != nil {
		return err
	}

	return f.SetColWidth(SummarySheet, "A", "A", 28)
}

// cellValue keeps finite numbers numeric and spells out the rest.
func cellValue(v float64) any {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return v
}
