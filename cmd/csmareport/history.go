package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/nao1215/csmareport/internal/config"
	"github.com/nao1215/csmareport/internal/database"
	"github.com/nao1215/csmareport/internal/model"
	"github.com/spf13/cobra"
)

// Change directions of a compared metric.
const (
	changeImproved  = "improved"
	changeWorsened  = "worsened"
	changeUnchanged = "unchanged"
)

// defaultHistoryLimit is the number of runs listed without --limit.
const defaultHistoryLimit = 20

// errNotEnoughRuns is returned when a comparison needs two runs.
var errNotEnoughRuns = errors.New("at least 2 runs are required for comparison")

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [results.csv]",
		Short: "List and compare stored report runs",
		Long: `History shows the runs recorded by 'csmareport report'.

Without an argument every stored run is listed. With a results file only the
runs of that file are listed. --compare shows how each summary metric moved
between the latest run and the one before it (or the run given with
--with-run-id).

Examples:
  # List the latest runs of every results file
  csmareport history

  # List the runs of one file
  csmareport history results.csv

  # Compare the two latest runs of a file
  csmareport history --compare results.csv

  # Compare the latest run with run 3, as JSON
  csmareport history --compare --with-run-id 3 --json results.csv

  # List every results file in the database
  csmareport history --inputs`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to list (0 lists all)")
	cmd.Flags().BoolP("inputs", "L", false,
		"List every results file with stored runs")
	cmd.Flags().Bool("compare", false,
		"Compare the latest run with an earlier one")
	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Compare with a specific run by ID (use the list to see IDs)")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listInputs, err := cmd.Flags().GetBool("inputs")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	compare, err := cmd.Flags().GetBool("compare")
	if err != nil {
		return err
	}
	withRunID, err := cmd.Flags().GetInt64("with-run-id")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// Validate before opening the database so a usage error never
	// creates it.
	if withRunID != 0 && !compare {
		return errors.New("--with-run-id requires --compare")
	}

	var input string
	if len(args) > 0 {
		input = historyKey(args[0])
	} else if compare {
		input = historyKey(config.DefaultInputFile)
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case listInputs:
		return listHistoryInputs(ctx, db, out, jsonOutput)
	case compare:
		return runComparison(ctx, db, out, input, withRunID, jsonOutput)
	default:
		return listHistory(ctx, db, out, input, limit, jsonOutput)
	}
}

// listHistoryInputs lists every results file with stored runs.
func listHistoryInputs(ctx context.Context, db *database.HistoryDB, out io.Writer, jsonOutput bool) error {
	inputs, err := db.ListInputs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list inputs: %w", err)
	}

	if jsonOutput {
		if inputs == nil {
			inputs = []string{}
		}
		return writeJSON(out, inputs)
	}

	if len(inputs) == 0 {
		fmt.Fprintln(out, "No runs found in the history database.")
		fmt.Fprintln(out, "\nUse 'csmareport report <results.csv>' to record one.")
		return nil
	}

	fmt.Fprintf(out, "Results files (%d):\n\n", len(inputs))
	for _, input := range inputs {
		fmt.Fprintf(out, "  • %s\n", input)
	}
	fmt.Fprintln(out, "\nUse 'csmareport history <results.csv>' to see the runs of a file.")

	return nil
}

// listHistory lists stored runs, newest first. An empty input lists the
// runs of every file.
func listHistory(ctx context.Context, db *database.HistoryDB, out io.Writer, input string, limit int, jsonOutput bool) error {
	records, err := db.ListRuns(ctx, input, limit)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if jsonOutput {
		if records == nil {
			records = []database.RunRecord{}
		}
		return writeJSON(out, records)
	}

	if len(records) == 0 {
		if input == "" {
			fmt.Fprintln(out, "No runs found in the history database.")
		} else {
			fmt.Fprintf(out, "No run history found for %s\n", input)
		}
		fmt.Fprintln(out, "\nUse 'csmareport report' to record a run.")
		return nil
	}

	if input == "" {
		fmt.Fprintf(out, "Run history (%d runs):\n\n", len(records))
	} else {
		fmt.Fprintf(out, "Run history for %s (%d runs):\n\n", input, len(records))
	}
	fmt.Fprintf(out, "  %-6s  %-19s  %5s  %-8s  %-18s  %s\n", "ID", "Date", "Rows", "Lookup", "Max Throughput", "Delay Factor")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 78))

	for _, r := range records {
		maxThroughput, factor := "N/A", "N/A"
		if r.Summary != nil {
			maxThroughput = r.Summary.FormatValue(model.ColumnThroughput, r.Summary.MaxThroughput) + " Mbps"
			factor = fmt.Sprintf("%.2fx", r.Summary.DelayIncreaseFactor)
		}
		fmt.Fprintf(out, "  %-6d  %-19s  %5d  %-8s  %-18s  %s\n",
			r.ID,
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			r.RowCount,
			r.Lookup,
			maxThroughput,
			factor,
		)
		if input == "" {
			fmt.Fprintf(out, "          %s\n", r.InputPath)
		}
	}

	fmt.Fprintln(out, "\nUse 'csmareport history --compare <results.csv>' to compare the latest two runs.")

	return nil
}

// ComparisonResult holds the result of comparing two stored runs.
type ComparisonResult struct {
	// InputPath is the results file both runs read.
	InputPath string `json:"input_path"`

	// Previous is the earlier run.
	Previous database.RunRecord `json:"previous"`

	// Current is the later run.
	Current database.RunRecord `json:"current"`

	// Metrics lists the change of each summary metric.
	Metrics []MetricChange `json:"metrics"`
}

// MetricChange is the movement of one summary metric between two runs.
type MetricChange struct {
	// Name is the metric's display name.
	Name string `json:"name"`

	// Previous and Current are the metric values. Non-finite values are
	// encoded as null.
	Previous float64 `json:"-"`
	Current  float64 `json:"-"`

	// Delta is Current - Previous.
	Delta float64 `json:"-"`

	// Direction is "improved", "worsened" or "unchanged".
	Direction string `json:"direction"`
}

// MarshalJSON implements json.Marshaler.
func (m MetricChange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name      string   `json:"name"`
		Previous  *float64 `json:"previous"`
		Current   *float64 `json:"current"`
		Delta     *float64 `json:"delta"`
		Direction string   `json:"direction"`
	}{
		Name:      m.Name,
		Previous:  finitePtr(m.Previous),
		Current:   finitePtr(m.Current),
		Delta:     finitePtr(m.Delta),
		Direction: m.Direction,
	})
}

func finitePtr(v float64) *float64 {
	if !model.IsFinite(v) {
		return nil
	}
	return &v
}

// runComparison compares the latest run of input with the previous one,
// or with the run withRunID when it is set.
func runComparison(ctx context.Context, db *database.HistoryDB, out io.Writer, input string, withRunID int64, jsonOutput bool) error {
	records, err := db.LatestRuns(ctx, input, 2)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no run history found for %s", input)
	}

	current := records[0]
	var previous database.RunRecord

	if withRunID > 0 {
		r, err := db.GetRun(ctx, withRunID)
		if err != nil {
			return fmt.Errorf("failed to get run with ID %d: %w", withRunID, err)
		}
		if r.InputPath != input {
			return fmt.Errorf("run ID %d belongs to %s, not %s", withRunID, r.InputPath, input)
		}
		if r.ID == current.ID {
			return fmt.Errorf("run ID %d is the latest run; choose an earlier one", withRunID)
		}
		previous = *r
	} else {
		if len(records) < 2 {
			return fmt.Errorf("%w (found %d)", errNotEnoughRuns, len(records))
		}
		previous = records[1]
	}

	if previous.Summary == nil || current.Summary == nil {
		return database.ErrNoSummary
	}

	result := compareRuns(previous, current)

	if jsonOutput {
		return writeJSON(out, result)
	}
	writeComparisonText(out, result)
	return nil
}

// compareRuns computes the metric changes from previous to current.
func compareRuns(previous, current database.RunRecord) *ComparisonResult {
	p, c := previous.Summary, current.Summary

	// higherIsBetter marks metrics where growth is an improvement.
	metrics := []struct {
		name           string
		prev, cur      float64
		higherIsBetter bool
	}{
		{"Minimum Throughput (Mbps)", p.MinThroughput, c.MinThroughput, true},
		{"Maximum Throughput (Mbps)", p.MaxThroughput, c.MaxThroughput, true},
		{"Minimum PDR", p.MinPDR, c.MinPDR, true},
		{"Baseline Delay (ms)", p.BaselineDelay, c.BaselineDelay, false},
		{"Peak Delay (ms)", p.PeakDelay, c.PeakDelay, false},
		{"Delay Increase Factor", p.DelayIncreaseFactor, c.DelayIncreaseFactor, false},
	}

	result := &ComparisonResult{
		InputPath: current.InputPath,
		Previous:  previous,
		Current:   current,
		Metrics:   make([]MetricChange, 0, len(metrics)),
	}

	for _, m := range metrics {
		delta := m.cur - m.prev
		result.Metrics = append(result.Metrics, MetricChange{
			Name:      m.name,
			Previous:  m.prev,
			Current:   m.cur,
			Delta:     delta,
			Direction: direction(delta, m.higherIsBetter),
		})
	}

	return result
}

// direction classifies a delta. NaN deltas are unchanged.
func direction(delta float64, higherIsBetter bool) string {
	switch {
	case math.IsNaN(delta) || delta == 0:
		return changeUnchanged
	case (delta > 0) == higherIsBetter:
		return changeImproved
	default:
		return changeWorsened
	}
}

// writeComparisonText writes the comparison as a table.
func writeComparisonText(out io.Writer, result *ComparisonResult) {
	fmt.Fprintf(out, "Comparison for %s\n\n", result.InputPath)
	fmt.Fprintf(out, "  Previous: #%-5d %s (%s lookup)\n",
		result.Previous.ID, result.Previous.Timestamp.Local().Format("2006-01-02 15:04:05"), result.Previous.Lookup)
	fmt.Fprintf(out, "  Current:  #%-5d %s (%s lookup)\n\n",
		result.Current.ID, result.Current.Timestamp.Local().Format("2006-01-02 15:04:05"), result.Current.Lookup)

	if result.Previous.Lookup != result.Current.Lookup {
		fmt.Fprintln(out, "  Note: the runs used different delay lookups; delay figures may not be comparable.")
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "  %-26s  %12s  %12s  %12s  %s\n", "Metric", "Previous", "Current", "Delta", "Change")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 78))
	for _, m := range result.Metrics {
		fmt.Fprintf(out, "  %-26s  %12s  %12s  %12s  %s\n",
			m.Name,
			model.FormatNumber(m.Previous),
			model.FormatNumber(m.Current),
			formatDelta(m.Delta),
			m.Direction,
		)
	}
}

// formatDelta formats a signed change with four decimals.
func formatDelta(d float64) string {
	if !model.IsFinite(d) {
		return model.FormatNumber(d)
	}
	return fmt.Sprintf("%+.4f", d)
}

// writeJSON writes v as indented JSON.
func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
