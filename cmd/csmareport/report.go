package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/csmareport/internal/config"
	"github.com/nao1215/csmareport/internal/database"
	"github.com/nao1215/csmareport/internal/log"
	"github.com/nao1215/csmareport/internal/model"
	"github.com/nao1215/csmareport/internal/pipeline"
	"github.com/nao1215/csmareport/internal/report"
	"github.com/spf13/cobra"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [results.csv]",
		Short: "Draw the performance charts and print the summary",
		Long: `Report loads a CSMA/CA simulation results file and produces:
- a 2x2 panel of throughput, per-node throughput, PDR and delay against nodes
- a chart of estimated collisions against nodes
- a performance summary on stdout

The results file must have the columns Nodes, Throughput, PDR, Delay and
Collisions. It defaults to ` + config.DefaultInputFile + `.

Examples:
  # Report on the default results file
  csmareport report

  # Write the images to a directory without opening them
  csmareport report --show=false --panel-output out/panel.png --collision-output out/collisions.png

  # Read the delays by node count instead of row position
  csmareport report --lookup nodes --baseline-nodes 2 --peak-nodes 30 results.csv

  # Write a Markdown report and an Excel workbook
  csmareport report --markdown -o out/report.md --xlsx out/results.xlsx

Configuration file (.csmareport) example:
  title: "CSMA/CA Performance Analysis"
  defaults:
    xLabel: "Number of Nodes"
  charts:
    throughput:
      color: "#1f77b4"
    collisions:
      title: "Collisions"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runReportCmd,
	}

	// Image flags
	cmd.Flags().String("panel-output", config.DefaultPanelOutput,
		"Output path of the 2x2 performance panel")
	cmd.Flags().String("collision-output", config.DefaultCollisionOutput,
		"Output path of the collision chart")
	cmd.Flags().Int("dpi", config.DefaultDPI,
		"Resolution of both images in dots per inch")
	cmd.Flags().Bool("show", true,
		"Open each image with the system viewer after it is written")

	// Summary flags
	cmd.Flags().StringP("lookup", "l", string(model.LookupPosition),
		"How the baseline and peak delay rows are found: position or nodes")
	cmd.Flags().Int("baseline-nodes", model.DefaultBaselineNodes,
		"Node count of the baseline delay row (with --lookup nodes)")
	cmd.Flags().Int("peak-nodes", model.DefaultPeakNodes,
		"Node count of the peak delay row (with --lookup nodes)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .csmareport in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().StringP("xlsx", "x", "",
		"Also export the table and summary to an Excel workbook")

	// History flags
	cmd.Flags().Bool("no-history", false,
		"Do not record this run in the history database")

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose, getBoolFlag(cmd, "log-json"))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runReport(ctx, cfg, logger, cmd.OutOrStdout())
}

// getBoolFlag retrieves a boolean flag from the command or the root's
// persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	if len(args) > 0 {
		cfg.InputPath = args[0]
	}

	if cfg.PanelOutput, err = cmd.Flags().GetString("panel-output"); err != nil {
		return nil, err
	}
	if cfg.CollisionOutput, err = cmd.Flags().GetString("collision-output"); err != nil {
		return nil, err
	}
	if cfg.DPI, err = cmd.Flags().GetInt("dpi"); err != nil {
		return nil, err
	}
	if cfg.Show, err = cmd.Flags().GetBool("show"); err != nil {
		return nil, err
	}

	if cfg.Lookup, err = cmd.Flags().GetString("lookup"); err != nil {
		return nil, err
	}
	if cfg.BaselineNodes, err = cmd.Flags().GetInt("baseline-nodes"); err != nil {
		return nil, err
	}
	if cfg.PeakNodes, err = cmd.Flags().GetInt("peak-nodes"); err != nil {
		return nil, err
	}

	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}

	// An explicitly named config file must exist. Without one, a missing
	// .csmareport simply means no overrides.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	switch {
	case configPath != "":
		cfg.Charts, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case explicitConfigPath:
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.Charts = &config.File{
			Charts: make(map[string]config.ChartConfig),
		}
	}

	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	if cfg.XLSXFile, err = cmd.Flags().GetString("xlsx"); err != nil {
		return nil, err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noHistory
	cfg.DBDir = config.XDGDataDir()

	cfg.Verbose = getBoolFlag(cmd, "verbose")

	return cfg, nil
}

// setupLogger creates a structured logger on w based on verbosity.
func setupLogger(w io.Writer, verbose, jsonFormat bool) *slog.Logger {
	if jsonFormat {
		return log.NewJSONLogger(w, verbose)
	}
	return log.NewLogger(w, verbose)
}

// runReport executes the report pipeline, writes the report to out (or
// the configured file) and records the run in the history database.
func runReport(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	logger.Info("starting report",
		"input", cfg.InputPath,
		"lookup", cfg.Lookup,
		"dpi", cfg.DPI,
		"show", cfg.Show,
		"saveToDB", cfg.SaveToDB,
	)

	p := pipeline.DefaultPipeline(cfg, []pipeline.Option{pipeline.WithLogger(logger)})
	run := model.NewRun(historyKey(cfg.InputPath))

	if err := p.Execute(ctx, run); err != nil {
		return err
	}

	if err := outputReport(cfg, run, out); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.SaveToDB {
		if err := saveRun(ctx, cfg.DBDir, run, logger); err != nil {
			logger.Error("failed to save run", "input", run.InputPath, "error", err)
		}
	}

	return nil
}

// historyKey returns the absolute form of path, under which runs of the
// same file are grouped in the history database.
func historyKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// outputReport writes the run report in the requested format.
func outputReport(cfg *config.Config, run *model.Run, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		var opts []report.MarkdownWriterOption
		if cfg.ReportFile != "" {
			opts = append(opts, report.WithImageBase(filepath.Dir(cfg.ReportFile)))
		}
		w = report.NewMarkdownWriter(output, opts...)
	default:
		w = report.NewSimpleWriter(output)
	}

	_, err := w.Write(run)
	return err
}

// saveRun records the run in the history database under dbDir.
func saveRun(ctx context.Context, dbDir string, run *model.Run, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	id, err := db.SaveRun(ctx, run)
	if err != nil {
		return err
	}

	logger.Info("run saved to history", "id", id, "input", run.InputPath, "db", db.Path())
	return nil
}
