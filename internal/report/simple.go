package report

import (
	"io"
	"strings"

	"github.com/nao1215/csmareport/internal/model"
)

// Heading lines of the text summary. The underline is one character
// shorter than the heading.
const (
	SummaryHeading   = "Performance Summary Report:"
	SummaryUnderline = "=========================="
)

// SimpleWriter outputs the performance summary as plain text.
// The output is the heading, an underline of '=' characters and the six
// summary lines, one per line.
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run's summary.
func (w *SimpleWriter) Write(run *model.Run) (int, error) {
	summary, err := summaryOf(run)
	if err != nil {
		return 0, err
	}
	return w.WriteSummary(summary)
}

// WriteSummary outputs the summary block.
func (w *SimpleWriter) WriteSummary(summary *model.Summary) (int, error) {
	if summary == nil {
		return 0, ErrNoSummary
	}

	var sb strings.Builder
	sb.WriteString(SummaryHeading)
	sb.WriteString("\n")
	sb.WriteString(SummaryUnderline)
	sb.WriteString("\n")
	for _, line := range summary.Lines() {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return w.output.Write([]byte(sb.String()))
}
