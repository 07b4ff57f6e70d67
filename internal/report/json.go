package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/csmareport/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
// Non-finite measurements are written as null.
type JSONWriter struct {
	baseWriter

	// version is stamped into full reports.
	version string

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// WithVersion sets the tool version recorded in full reports.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport wraps a run with output-only fields.
type JSONReport struct {
	// Version is the csmareport version that generated this report.
	Version string `json:"version,omitempty"`

	// Run holds the run metadata, summary and artifacts.
	Run *model.Run `json:"run"`

	// Rows is the augmented result table.
	Rows []model.Row `json:"rows,omitempty"`

	// NonFiniteRows lists the positions whose per-node throughput is
	// not finite.
	NonFiniteRows []int `json:"non_finite_rows,omitempty"`
}

// NewJSONReport builds the wrapper for run.
func NewJSONReport(run *model.Run, version string) *JSONReport {
	r := &JSONReport{
		Version: version,
		Run:     run,
	}
	if run.Table != nil {
		r.Rows = run.Table.Rows()
		if run.Table.Derived() {
			r.NonFiniteRows = run.Table.NonFiniteRows()
		}
	}
	return r
}

// Write outputs the full run in JSON format.
func (w *JSONWriter) Write(run *model.Run) (int, error) {
	if _, err := summaryOf(run); err != nil {
		return 0, err
	}
	return w.writeJSON(NewJSONReport(run, w.version))
}

// WriteSummary outputs only the summary in JSON format.
func (w *JSONWriter) WriteSummary(summary *model.Summary) (int, error) {
	if summary == nil {
		return 0, ErrNoSummary
	}
	return w.writeJSON(summary)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	data = append(data, '\n')

	return w.output.Write(data)
}
