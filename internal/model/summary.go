package model

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// DelayLookup selects how the baseline and peak delay rows are found.
type DelayLookup string

const (
	// LookupPosition reads the baseline and peak delay at fixed row
	// positions (0 and 28 by default). The simulator writes one row per
	// node count from 2 to 30, so those positions hold 2 and 30 nodes.
	LookupPosition DelayLookup = "position"

	// LookupNodes reads the baseline and peak delay from the first rows
	// whose Nodes value matches, independent of row order.
	LookupNodes DelayLookup = "nodes"
)

// ParseDelayLookup converts a string into a DelayLookup.
// The empty string maps to LookupPosition.
func ParseDelayLookup(s string) (DelayLookup, error) {
	switch DelayLookup(strings.ToLower(strings.TrimSpace(s))) {
	case "", LookupPosition:
		return LookupPosition, nil
	case LookupNodes:
		return LookupNodes, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidLookup, s)
	}
}

// Default lookup targets.
const (
	DefaultBaselineRow   = 0
	DefaultPeakRow       = 28
	DefaultBaselineNodes = 2
	DefaultPeakNodes     = 30
)

// SummaryOptions configures how NewSummary locates the delay rows.
type SummaryOptions struct {
	// Lookup is the delay lookup mode.
	Lookup DelayLookup

	// BaselineRow and PeakRow are the positions used by LookupPosition.
	BaselineRow int
	PeakRow     int

	// BaselineNodes and PeakNodes are the node counts used by LookupNodes.
	BaselineNodes int
	PeakNodes     int
}

// DefaultSummaryOptions returns positional lookup of rows 0 and 28, with
// node targets 2 and 30 for when the mode is switched to LookupNodes.
func DefaultSummaryOptions() SummaryOptions {
	return SummaryOptions{
		Lookup:        LookupPosition,
		BaselineRow:   DefaultBaselineRow,
		PeakRow:       DefaultPeakRow,
		BaselineNodes: DefaultBaselineNodes,
		PeakNodes:     DefaultPeakNodes,
	}
}

// Summary holds the figures printed in the performance summary.
// None of them depend on the derived per-node throughput column.
type Summary struct {
	MinThroughput      float64
	MinThroughputNodes int

	MaxThroughput      float64
	MaxThroughputNodes int

	MinPDR      float64
	MinPDRNodes int

	// Lookup records which mode located the delay rows.
	Lookup DelayLookup

	// BaselineRow and PeakRow are the positions the delays were read from.
	BaselineRow int
	PeakRow     int

	// BaselineNodes and PeakNodes are the node counts of those rows.
	BaselineNodes int
	PeakNodes     int

	BaselineDelay float64
	PeakDelay     float64

	// DelayIncreaseFactor is PeakDelay / BaselineDelay.
	DelayIncreaseFactor float64

	// IntegerColumns lists the summarized columns that print as integers.
	IntegerColumns []Column
}

// NewSummary computes the performance summary of t.
//
// Minimum and maximum follow first occurrence on ties and skip NaN values.
// With LookupPosition a table shorter than PeakRow+1 rows fails with
// ErrRowOutOfRange; with LookupNodes a missing node count fails with
// ErrNodesNotFound.
func NewSummary(t *Table, opts SummaryOptions) (*Summary, error) {
	if t.Len() == 0 {
		return nil, ErrEmptyTable
	}

	s := &Summary{Lookup: opts.Lookup}
	if s.Lookup == "" {
		s.Lookup = LookupPosition
	}

	idx, err := argExtreme(t, ColumnThroughput, less)
	if err != nil {
		return nil, err
	}
	s.MinThroughput, s.MinThroughputNodes = t.rows[idx].Throughput, t.rows[idx].Nodes

	idx, err = argExtreme(t, ColumnThroughput, greater)
	if err != nil {
		return nil, err
	}
	s.MaxThroughput, s.MaxThroughputNodes = t.rows[idx].Throughput, t.rows[idx].Nodes

	idx, err = argExtreme(t, ColumnPDR, less)
	if err != nil {
		return nil, err
	}
	s.MinPDR, s.MinPDRNodes = t.rows[idx].PDR, t.rows[idx].Nodes

	s.BaselineRow, s.PeakRow, err = delayRows(t, s.Lookup, opts)
	if err != nil {
		return nil, err
	}

	baseline, err := t.Row(s.BaselineRow)
	if err != nil {
		return nil, err
	}
	peak, err := t.Row(s.PeakRow)
	if err != nil {
		return nil, err
	}

	s.BaselineNodes, s.BaselineDelay = baseline.Nodes, baseline.Delay
	s.PeakNodes, s.PeakDelay = peak.Nodes, peak.Delay
	s.DelayIncreaseFactor = s.PeakDelay / s.BaselineDelay

	for _, c := range []Column{ColumnThroughput, ColumnPDR, ColumnDelay} {
		if t.IsInteger(c) {
			s.IntegerColumns = append(s.IntegerColumns, c)
		}
	}

	return s, nil
}

// delayRows resolves the baseline and peak positions for the lookup mode.
func delayRows(t *Table, mode DelayLookup, opts SummaryOptions) (int, int, error) {
	switch mode {
	case LookupPosition:
		return opts.BaselineRow, opts.PeakRow, nil
	case LookupNodes:
		baseline, err := t.IndexOfNodes(opts.BaselineNodes)
		if err != nil {
			return 0, 0, err
		}
		peak, err := t.IndexOfNodes(opts.PeakNodes)
		if err != nil {
			return 0, 0, err
		}
		return baseline, peak, nil
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidLookup, string(mode))
	}
}

func less(a, b float64) bool    { return a < b }
func greater(a, b float64) bool { return a > b }

// argExtreme returns the position of the first value in column c for which
// no later value is strictly better according to better. NaN is skipped.
func argExtreme(t *Table, c Column, better func(a, b float64) bool) (int, error) {
	values, err := t.Column(c)
	if err != nil {
		return 0, err
	}
	best := -1
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if best < 0 || better(v, values[best]) {
			best = i
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoComparableValues, string(c))
	}
	return best, nil
}

// Lines returns the six summary lines in print order, without the report
// heading and without trailing newlines.
func (s *Summary) Lines() []string {
	return []string{
		fmt.Sprintf("Minimum Throughput: %s Mbps at %d nodes", s.FormatValue(ColumnThroughput, s.MinThroughput), s.MinThroughputNodes),
		fmt.Sprintf("Maximum Throughput: %s Mbps at %d nodes", s.FormatValue(ColumnThroughput, s.MaxThroughput), s.MaxThroughputNodes),
		fmt.Sprintf("Minimum PDR: %s at %d nodes", s.FormatValue(ColumnPDR, s.MinPDR), s.MinPDRNodes),
		fmt.Sprintf("Average Delay at %d nodes: %s ms", s.BaselineNodes, s.FormatValue(ColumnDelay, s.BaselineDelay)),
		fmt.Sprintf("Average Delay at %d nodes: %s ms", s.PeakNodes, s.FormatValue(ColumnDelay, s.PeakDelay)),
		fmt.Sprintf("Delay Increase Factor: %.2fx", s.DelayIncreaseFactor),
	}
}

// FormatValue formats a summarized value of column c, without a
// fractional part when the column was read as integers.
func (s *Summary) FormatValue(c Column, v float64) string {
	return formatValue(slices.Contains(s.IntegerColumns, c), v)
}

// formatValue prints finite values of integer columns as plain integers
// and everything else with FormatNumber.
func formatValue(integer bool, v float64) string {
	if integer && IsFinite(v) && v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return FormatNumber(v)
}

// FormatNumber formats v the way the summary prints measurements: the
// shortest decimal that round-trips, with ".0" appended to integral values
// so that 10 prints as "10.0". Very large or very small magnitudes use
// exponent notation, and non-finite values print as "inf", "-inf" or "nan".
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	abs := math.Abs(v)
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
