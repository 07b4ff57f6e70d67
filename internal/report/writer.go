package report

import (
	"io"

	"github.com/nao1215/csmareport/internal/model"
)

// Writer defines the interface for report output.
// Implementations render a finished run in one format.
type Writer interface {
	// Write outputs the full run report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(run *model.Run) (int, error)

	// WriteSummary outputs only the performance summary.
	WriteSummary(summary *model.Summary) (int, error)
}

// MultiWriter writes to multiple Writers in order.
// Our Writer renders runs rather than raw bytes, so io.MultiWriter
// does not fit.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the run to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(run *model.Run) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(run)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteSummary outputs the summary to all configured Writers.
func (m *MultiWriter) WriteSummary(summary *model.Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSummary(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// summaryOf returns the run's summary or ErrNoSummary.
func summaryOf(run *model.Run) (*model.Summary, error) {
	if run == nil {
		return nil, ErrNilRun
	}
	if run.Summary == nil {
		return nil, ErrNoSummary
	}
	return run.Summary, nil
}
