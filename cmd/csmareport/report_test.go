package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"github.com/nao1215/csmareport/internal/config"
	"github.com/nao1215/csmareport/internal/database"
	"github.com/nao1215/csmareport/internal/log"
	"github.com/nao1215/csmareport/internal/model"
)

// scenarioCSV returns a results file with a header and the first n of 29
// rows for node counts 2..30.
func scenarioCSV(n int) string {
	var b strings.Builder
	b.WriteString("Nodes,Throughput,PDR,Delay,Collisions\n")
	b.WriteString("2,10.0,0.99,5.0,0\n")
	for i := 1; i < 28; i++ {
		fmt.Fprintf(&b, "%d,%g,%g,%g,%d\n", i+2, 12.0+float64(i), 0.98-float64(i)*0.01, 5.0+float64(i)*1.5, i*4)
	}
	b.WriteString("30,40.0,0.70,55.0,120\n")

	lines := strings.SplitAfter(b.String(), "\n")
	return strings.Join(lines[:n+1], "")
}

// writeCSV writes content to a results file in dir.
func writeCSV(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "results.csv")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test csv: %v", err)
	}
	return path
}

const wantSummary = "Performance Summary Report:\n" +
	"==========================\n" +
	"Minimum Throughput: 10.0 Mbps at 2 nodes\n" +
	"Maximum Throughput: 40.0 Mbps at 30 nodes\n" +
	"Minimum PDR: 0.7 at 30 nodes\n" +
	"Average Delay at 2 nodes: 5.0 ms\n" +
	"Average Delay at 30 nodes: 55.0 ms\n" +
	"Delay Increase Factor: 11.00x\n"

// newTestReportCmd returns a report command that writes to out. Outside the
// root command nothing silences cobra, so usage and error text are turned
// off here the same way the root command does.
func newTestReportCmd(out io.Writer) *cobra.Command {
	cmd := NewReportCmd()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	return cmd
}

// executeReport runs the report command against a fresh copy of csv in a
// temporary directory. The images are written next to the input, display
// and history are disabled, and the resolution is kept low.
func executeReport(t *testing.T, csv string, args ...string) (dir, stdout string, err error) {
	t.Helper()

	dir = t.TempDir()
	input := writeCSV(t, dir, csv)

	base := []string{
		input,
		"--show=false",
		"--no-history",
		"--dpi", "30",
		"--panel-output", filepath.Join(dir, "panel.png"),
		"--collision-output", filepath.Join(dir, "collisions.png"),
	}

	var out bytes.Buffer
	cmd := newTestReportCmd(&out)
	cmd.SetArgs(append(base, args...))

	err = cmd.Execute()
	return dir, out.String(), err
}

// TestNewReportCmd tests the report command flags.
func TestNewReportCmd(t *testing.T) {
	t.Parallel()

	cmd := NewReportCmd()

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"panel-output", "", config.DefaultPanelOutput},
		{"collision-output", "", config.DefaultCollisionOutput},
		{"dpi", "", "300"},
		{"show", "", "true"},
		{"lookup", "l", "position"},
		{"baseline-nodes", "", "2"},
		{"peak-nodes", "", "30"},
		{"config", "c", ""},
		{"json", "j", "false"},
		{"markdown", "m", "false"},
		{"output", "o", ""},
		{"xlsx", "x", ""},
		{"no-history", "", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

// TestRunReportCmd tests report runs end to end.
func TestRunReportCmd(t *testing.T) {
	t.Parallel()

	t.Run("prints the text summary and writes both images", func(t *testing.T) {
		t.Parallel()

		dir, out, err := executeReport(t, scenarioCSV(29))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(wantSummary, out); diff != "" {
			t.Errorf("summary mismatch (-want +got):\n%s", diff)
		}
		for _, name := range []string{"panel.png", "collisions.png"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
				t.Errorf("expected %s: %v", name, err)
			}
		}
	})

	t.Run("nodes lookup", func(t *testing.T) {
		t.Parallel()

		_, out, err := executeReport(t, scenarioCSV(29), "--lookup", "nodes", "--baseline-nodes", "3", "--peak-nodes", "30")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Average Delay at 3 nodes: 6.5 ms\n") {
			t.Errorf("expected baseline delay of the 3 node row, got:\n%s", out)
		}
	})

	t.Run("short table fails after the images are written", func(t *testing.T) {
		t.Parallel()

		dir, out, err := executeReport(t, scenarioCSV(28))
		if !errors.Is(err, model.ErrRowOutOfRange) {
			t.Fatalf("expected ErrRowOutOfRange, got %v", err)
		}
		if out != "" {
			t.Errorf("expected no summary output, got %q", out)
		}
		if _, err := os.Stat(filepath.Join(dir, "panel.png")); err != nil {
			t.Errorf("expected the panel to be written before the failure: %v", err)
		}
	})

	t.Run("missing input", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		cmd := newTestReportCmd(&out)
		cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.csv"), "--show=false", "--no-history"})

		if err := cmd.Execute(); err == nil {
			t.Error("expected error for a missing input file")
		}
	})

	t.Run("json report", func(t *testing.T) {
		t.Parallel()

		_, out, err := executeReport(t, scenarioCSV(29), "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got struct {
			Version string `json:"version"`
			Run     struct {
				Summary struct {
					MinPDR float64 `json:"min_pdr"`
				} `json:"summary"`
				PerformedSteps []string `json:"performed_steps"`
			} `json:"run"`
			Rows []json.RawMessage `json:"rows"`
		}
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if got.Version == "" {
			t.Error("expected a version")
		}
		if got.Run.Summary.MinPDR != 0.70 {
			t.Errorf("expected min PDR 0.70, got %v", got.Run.Summary.MinPDR)
		}
		if len(got.Rows) != 29 {
			t.Errorf("expected 29 rows, got %d", len(got.Rows))
		}
		want := []string{"load", "derive", "render_panel", "render_collisions", "summarize"}
		if diff := cmp.Diff(want, got.Run.PerformedSteps); diff != "" {
			t.Errorf("steps mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("markdown report file and workbook", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		reportPath := filepath.Join(dir, "out", "report.md")
		xlsxPath := filepath.Join(dir, "out", "results.xlsx")

		_, out, err := executeReport(t, scenarioCSV(29),
			"--markdown", "-o", reportPath, "--xlsx", xlsxPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != "" {
			t.Errorf("expected nothing on stdout, got %q", out)
		}

		content, err := os.ReadFile(reportPath)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.Contains(string(content), "# CSMA/CA Performance Report") {
			t.Error("expected markdown title")
		}
		if _, err := os.Stat(xlsxPath); err != nil {
			t.Errorf("expected workbook: %v", err)
		}

		if runtime.GOOS != "windows" {
			info, err := os.Stat(reportPath)
			if err != nil {
				t.Fatalf("failed to stat report: %v", err)
			}
			if perm := info.Mode().Perm(); perm != 0600 {
				t.Errorf("expected permissions 0600, got %o", perm)
			}
		}
	})

	t.Run("configuration errors", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			args []string
			want error
		}{
			{"conflicting formats", []string{"--json", "--markdown"}, config.ErrConflictingReportFormats},
			{"invalid lookup", []string{"--lookup", "middle"}, config.ErrInvalidLookup},
			{"invalid dpi", []string{"--dpi", "0"}, config.ErrInvalidDPI},
			{"invalid nodes", []string{"--peak-nodes=-1"}, config.ErrInvalidNodes},
			{"missing config file", []string{"-c", filepath.Join(t.TempDir(), "nope.yaml")}, config.ErrConfigNotFound},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				_, _, err := executeReport(t, scenarioCSV(29), tt.args...)
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})

	t.Run("invalid config file", func(t *testing.T) {
		t.Parallel()

		cfgPath := filepath.Join(t.TempDir(), "charts.yaml")
		content := "charts:\n  throughput:\n    color: \"not-a-color\"\n"
		if err := os.WriteFile(cfgPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		_, _, err := executeReport(t, scenarioCSV(29), "-c", cfgPath)
		if !errors.Is(err, config.ErrInvalidColor) {
			t.Errorf("expected ErrInvalidColor, got %v", err)
		}
	})
}

// TestRunReportIsRepeatable tests that the same input yields the same
// summary text on every run.
func TestRunReportIsRepeatable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{name: "default lookup"},
		{name: "node lookup", args: []string{"--lookup", "nodes", "--baseline-nodes", "3", "--peak-nodes", "29"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, first, err := executeReport(t, scenarioCSV(29), tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			_, second, err := executeReport(t, scenarioCSV(29), tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if first == "" {
				t.Fatal("expected summary output")
			}
			if diff := cmp.Diff(first, second); diff != "" {
				t.Errorf("summary mismatch between runs (-first +second):\n%s", diff)
			}
		})
	}
}

// TestRunReportSavesHistory tests that a successful run is recorded.
func TestRunReportSavesHistory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.InputPath = writeCSV(t, dir, scenarioCSV(29))
	cfg.PanelOutput = filepath.Join(dir, "panel.png")
	cfg.CollisionOutput = filepath.Join(dir, "collisions.png")
	cfg.DPI = 30
	cfg.Show = false
	cfg.DBDir = filepath.Join(dir, "db")

	var out bytes.Buffer
	if err := runReport(t.Context(), cfg, log.NewLogger(io.Discard, false), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	records, err := db.ListRuns(t.Context(), historyKey(cfg.InputPath), 0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 run, got %d", len(records))
	}
	if records[0].RowCount != 29 {
		t.Errorf("expected 29 rows, got %d", records[0].RowCount)
	}
	if records[0].Summary == nil || records[0].Summary.DelayIncreaseFactor != 11.0 {
		t.Errorf("unexpected stored summary %+v", records[0].Summary)
	}
}

// TestRunReportSkipsHistoryOnFailure tests that failed runs are not recorded.
func TestRunReportSkipsHistoryOnFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.InputPath = writeCSV(t, dir, scenarioCSV(5))
	cfg.PanelOutput = filepath.Join(dir, "panel.png")
	cfg.CollisionOutput = filepath.Join(dir, "collisions.png")
	cfg.DPI = 30
	cfg.Show = false
	cfg.DBDir = filepath.Join(dir, "db")

	err := runReport(t.Context(), cfg, log.NewLogger(io.Discard, false), io.Discard)
	if !errors.Is(err, model.ErrRowOutOfRange) {
		t.Fatalf("expected ErrRowOutOfRange, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.DBDir, database.FileName)); !os.IsNotExist(err) {
		t.Errorf("expected no history database, got %v", err)
	}
}

// TestHistoryKey tests that history keys are absolute.
func TestHistoryKey(t *testing.T) {
	t.Parallel()

	got := historyKey("results.csv")
	if !filepath.IsAbs(got) {
		t.Errorf("expected absolute path, got %q", got)
	}
	if filepath.Base(got) != "results.csv" {
		t.Errorf("expected base results.csv, got %q", got)
	}
}

// TestSetupLogger tests logger format selection.
func TestSetupLogger(t *testing.T) {
	t.Parallel()

	var text, js bytes.Buffer
	setupLogger(&text, false, false).Warn("hello", "rate", 1.5)
	setupLogger(&js, false, true).Warn("hello", "rate", 1.5)

	if !strings.Contains(text.String(), "msg=hello") {
		t.Errorf("expected text record, got %q", text.String())
	}
	if !json.Valid(bytes.TrimSpace(js.Bytes())) {
		t.Errorf("expected JSON record, got %q", js.String())
	}

	var quiet bytes.Buffer
	setupLogger(&quiet, false, false).Info("hidden")
	if quiet.Len() != 0 {
		t.Errorf("expected info to be filtered without verbose, got %q", quiet.String())
	}
}
