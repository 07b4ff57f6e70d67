package report

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nao1215/csmareport/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MarkdownWriter outputs reports in GitHub Flavored Markdown.
// This format is designed for documentation and sharing: the written
// charts are embedded as images next to the summary and result tables.
type MarkdownWriter struct {
	baseWriter

	// imageBase, when set, makes embedded image paths relative to it.
	imageBase string
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithImageBase makes image links relative to dir, which should be the
// directory the Markdown file is written to.
func WithImageBase(dir string) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.imageBase = dir
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the full run report in Markdown format.
func (w *MarkdownWriter) Write(run *model.Run) (int, error) {
	summary, err := summaryOf(run)
	if err != nil {
		return 0, err
	}

	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	w.writeSummary(md, summary)
	w.writeCharts(md, run)
	w.writeResults(md, run.Table)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSummary outputs only the summary section in Markdown format.
func (w *MarkdownWriter) WriteSummary(summary *model.Summary) (int, error) {
	if summary == nil {
		return 0, ErrNoSummary
	}

	md := markdown.NewMarkdown(w.output)
	w.writeSummary(md, summary)

	return len(md.String()), md.Build()
}

// writeHeader writes the report title and run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.Run) {
	md.H1("CSMA/CA Performance Report")
	md.PlainText("")

	rows := 0
	if run.Table != nil {
		rows = run.Table.Len()
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Input", "`" + run.InputPath + "`"},
			{"Run ID", "`" + run.ID + "`"},
			{"Date", run.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Rows", strconv.Itoa(rows)},
			{"Steps", stepList(run.PerformedSteps)},
		},
	})
	md.PlainText("")
}

// writeSummary writes the summary table and the delay increase factor.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, s *model.Summary) {
	md.H2("Performance Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value", "Nodes"},
		Rows: [][]string{
			{"Minimum Throughput", s.FormatValue(model.ColumnThroughput, s.MinThroughput) + " Mbps", strconv.Itoa(s.MinThroughputNodes)},
			{"Maximum Throughput", s.FormatValue(model.ColumnThroughput, s.MaxThroughput) + " Mbps", strconv.Itoa(s.MaxThroughputNodes)},
			{"Minimum PDR", s.FormatValue(model.ColumnPDR, s.MinPDR), strconv.Itoa(s.MinPDRNodes)},
			{"Baseline Delay", s.FormatValue(model.ColumnDelay, s.BaselineDelay) + " ms", strconv.Itoa(s.BaselineNodes)},
			{"Peak Delay", s.FormatValue(model.ColumnDelay, s.PeakDelay) + " ms", strconv.Itoa(s.PeakNodes)},
		},
	})
	md.PlainText("")

	md.PlainTextf("**Delay Increase Factor:** %.2fx (%s lookup, rows %d and %d)",
		s.DelayIncreaseFactor, titleCase(string(s.Lookup)), s.BaselineRow, s.PeakRow)
	md.PlainText("")
}

// writeCharts embeds every image written during the run.
func (w *MarkdownWriter) writeCharts(md *markdown.Markdown, run *model.Run) {
	images := []struct {
		kind  model.ArtifactKind
		title string
	}{
		{model.ArtifactPanel, "Performance Panel"},
		{model.ArtifactCollisions, "Collision Analysis"},
	}

	var written bool
	for _, img := range images {
		a, ok := run.Artifact(img.kind)
		if !ok {
			continue
		}
		if !written {
			md.H2("Charts")
			md.PlainText("")
			written = true
		}
		md.H3(img.title)
		md.PlainText("")
		md.PlainText(markdown.Image(img.title, w.imagePath(a.Path)))
		md.PlainText("")
	}

	if a, ok := run.Artifact(model.ArtifactWorkbook); ok {
		md.Note("The augmented table was also exported to `" + a.Path + "`.")
		md.PlainText("")
	}
}

// writeResults writes the augmented table and flags non-finite rows.
func (w *MarkdownWriter) writeResults(md *markdown.Markdown, t *model.Table) {
	if t == nil || t.Len() == 0 {
		return
	}

	md.H2("Results")
	md.PlainText("")

	header := []string{"Nodes", "Throughput (Mbps)", "PDR", "Delay (ms)", "Collisions"}
	if t.Derived() {
		header = append(header, "Per-Node Throughput (Mbps)")
	}

	rows := make([][]string, 0, t.Len())
	for _, r := range t.Rows() {
		row := []string{
			strconv.Itoa(r.Nodes),
			t.FormatValue(model.ColumnThroughput, r.Throughput),
			t.FormatValue(model.ColumnPDR, r.PDR),
			t.FormatValue(model.ColumnDelay, r.Delay),
			t.FormatValue(model.ColumnCollisions, r.Collisions),
		}
		if t.Derived() {
			row = append(row, t.FormatValue(model.ColumnPerNodeThroughput, r.PerNodeThroughput))
		}
		rows = append(rows, row)
	}

	md.Table(markdown.TableSet{
		Header: header,
		Rows:   rows,
	})
	md.PlainText("")

	if bad := t.NonFiniteRows(); len(bad) > 0 {
		md.Warningf(
			"%d row(s) have a non-finite per-node throughput (rows %s). These points are left out of the per-node chart.",
			len(bad), joinInts(bad),
		)
		md.PlainText("")
	}

	w.writeCollisionShare(md, t)
}

// writeCollisionShare writes a mermaid pie chart of how collisions are
// spread over the node counts. Counts are rounded to whole collisions.
func (w *MarkdownWriter) writeCollisionShare(md *markdown.Markdown, t *model.Table) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Collision Share by Node Count"),
		piechart.WithShowData(true),
	)

	var n int
	for _, r := range t.Rows() {
		c := math.Round(r.Collisions)
		if !model.IsFinite(c) || c <= 0 {
			continue
		}
		chart.LabelAndIntValue(strconv.Itoa(r.Nodes)+" nodes", uint64(c))
		n++
	}
	if n == 0 {
		return
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [csmareport](https://github.com/nao1215/csmareport)*")
}

// imagePath returns p relative to the image base when possible.
func (w *MarkdownWriter) imagePath(p string) string {
	if w.imageBase == "" {
		return filepath.ToSlash(p)
	}
	absBase, err := filepath.Abs(w.imageBase)
	if err != nil {
		return filepath.ToSlash(p)
	}
	absPath, err := filepath.Abs(p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// titleCase turns an identifier such as "render_panel" into "Render Panel".
func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}

// stepList renders performed step names for display.
func stepList(steps []string) string {
	if len(steps) == 0 {
		return "-"
	}
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = titleCase(s)
	}
	return strings.Join(names, ", ")
}

func joinInts(v []int) string {
	s := make([]string, len(v))
	for i, n := range v {
		s[i] = fmt.Sprint(n)
	}
	return strings.Join(s, ", ")
}
