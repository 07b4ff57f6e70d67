package export

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/csmareport/internal/model"
	"github.com/xuri/excelize/v2"
)

func readSheet(t *testing.T, path, sheet string) [][]string {
	t.Helper()

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("failed to read sheet %s: %v", sheet, err)
	}
	return rows
}

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	t.Run("writes results and summary sheets", func(t *testing.T) {
		t.Parallel()

		table := model.NewTable("", []model.Row{
			{Nodes: 2, Throughput: 10, PDR: 0.99, Delay: 5, Collisions: 0},
			{Nodes: 0, Throughput: 7, PDR: 0.5, Delay: 9, Collisions: 3},
		})
		table.Derive()
		summary := &model.Summary{
			MinThroughput:       7,
			MinThroughputNodes:  0,
			MaxThroughput:       10,
			MaxThroughputNodes:  2,
			Lookup:              model.LookupPosition,
			DelayIncreaseFactor: 1.8,
		}

		path := filepath.Join(t.TempDir(), "nested", "results.xlsx")
		if err := WriteXLSX(path, table, summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		results := readSheet(t, path, ResultsSheet)
		wantHeader := []string{"Nodes", "Throughput", "PDR", "Delay", "Collisions", "PerNodeThroughput"}
		if diff := cmp.Diff(wantHeader, results[0]); diff != "" {
			t.Errorf("header mismatch (-want +got):\n%s", diff)
		}
		if len(results) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(results))
		}
		if results[1][5] != "5" {
			t.Errorf("expected per-node throughput 5, got %q", results[1][5])
		}
		if results[2][5] != "+Inf" {
			t.Errorf("expected +Inf, got %q", results[2][5])
		}

		summaryRows := readSheet(t, path, SummarySheet)
		if summaryRows[0][0] != "Metric" {
			t.Errorf("unexpected summary header %v", summaryRows[0])
		}
		if summaryRows[2][0] != "Maximum Throughput (Mbps)" || summaryRows[2][1] != "10" || summaryRows[2][2] != "2" {
			t.Errorf("unexpected maximum row %v", summaryRows[2])
		}

		f, err := excelize.OpenFile(path)
		if err != nil {
			t.Fatalf("failed to open workbook: %v", err)
		}
		defer f.Close()
		if diff := cmp.Diff([]string{ResultsSheet, SummarySheet}, f.GetSheetList()); diff != "" {
			t.Errorf("sheet list mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("summary sheet is omitted without summary", func(t *testing.T) {
		t.Parallel()

		table := model.NewTable("", []model.Row{{Nodes: 2, Throughput: 10}})
		path := filepath.Join(t.TempDir(), "results.xlsx")
		if err := WriteXLSX(path, table, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		f, err := excelize.OpenFile(path)
		if err != nil {
			t.Fatalf("failed to open workbook: %v", err)
		}
		defer f.Close()
		if diff := cmp.Diff([]string{ResultsSheet}, f.GetSheetList()); diff != "" {
			t.Errorf("sheet list mismatch (-want +got):\n%s", diff)
		}

		results := readSheet(t, path, ResultsSheet)
		if len(results[0]) != 5 {
			t.Errorf("expected 5 columns before derive, got %v", results[0])
		}
	})

	t.Run("nil table returns ErrNilTable", func(t *testing.T) {
		t.Parallel()

		if err := WriteXLSX(filepath.Join(t.TempDir(), "x.xlsx"), nil, nil); !errors.Is(err, ErrNilTable) {
			t.Errorf("expected ErrNilTable, got %v", err)
		}
	})
}
