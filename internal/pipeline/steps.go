package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/csmareport/internal/chart"
	"github.com/nao1215/csmareport/internal/config"
	"github.com/nao1215/csmareport/internal/dataset"
	"github.com/nao1215/csmareport/internal/export"
	"github.com/nao1215/csmareport/internal/model"
	"github.com/nao1215/csmareport/internal/viewer"
)

// Step names.
const (
	StepLoad             = "load"
	StepDerive           = "derive"
	StepRenderPanel      = "render_panel"
	StepRenderCollisions = "render_collisions"
	StepSummarize        = "summarize"
	StepExportXLSX       = "export_xlsx"
)

// LoadStep reads the run's input file into a table.
type LoadStep struct {
	load func(path string) (*model.Table, error)
}

// NewLoadStep creates a load step backed by dataset.Load.
func NewLoadStep() *LoadStep {
	return &LoadStep{load: dataset.Load}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return StepLoad
}

// Do executes the load step.
func (s *LoadStep) Do(_ context.Context, run *model.Run) error {
	table, err := s.load(run.InputPath)
	if err != nil {
		return err
	}
	run.Table = table
	return nil
}

// DeriveStep adds the per-node throughput column and warns about rows
// where it is not finite.
type DeriveStep struct {
	logger *slog.Logger
}

// NewDeriveStep creates a derive step.
func NewDeriveStep(logger *slog.Logger) *DeriveStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeriveStep{logger: logger}
}

// Name returns the step name.
func (s *DeriveStep) Name() string {
	return StepDerive
}

// Do executes the derive step.
func (s *DeriveStep) Do(_ context.Context, run *model.Run) error {
	if run.Table == nil {
		return ErrNoTable
	}

	run.Table.Derive()

	for _, i := range run.Table.NonFiniteRows() {
		row, err := run.Table.Row(i)
		if err != nil {
			return err
		}
		s.logger.Warn("non-finite per-node throughput",
			"row", i,
			"nodes", row.Nodes,
			"throughput", row.Throughput,
			"value", row.PerNodeThroughput,
		)
	}
	return nil
}

// RenderStep writes one image and optionally opens it.
type RenderStep struct {
	name   string
	kind   model.ArtifactKind
	path   string
	render func(t *model.Table, path string) error
	opener viewer.Opener
	logger *slog.Logger
}

// RenderStepOption configures a RenderStep.
type RenderStepOption func(*RenderStep)

// WithOpener displays the image with o after it is written.
// A nil opener disables display.
func WithOpener(o viewer.Opener) RenderStepOption {
	return func(s *RenderStep) {
		s.opener = o
	}
}

// WithRenderLogger sets a custom logger for the render step.
func WithRenderLogger(logger *slog.Logger) RenderStepOption {
	return func(s *RenderStep) {
		s.logger = logger
	}
}

// NewRenderPanelStep creates the step writing the 2x2 performance panel.
func NewRenderPanelStep(r *chart.Renderer, path string, opts ...RenderStepOption) *RenderStep {
	return newRenderStep(StepRenderPanel, model.ArtifactPanel, path, r.RenderPanel, opts)
}

// NewRenderCollisionsStep creates the step writing the collision chart.
func NewRenderCollisionsStep(r *chart.Renderer, path string, opts ...RenderStepOption) *RenderStep {
	return newRenderStep(StepRenderCollisions, model.ArtifactCollisions, path, r.RenderCollisions, opts)
}

func newRenderStep(name string, kind model.ArtifactKind, path string, render func(*model.Table, string) error, opts []RenderStepOption) *RenderStep {
	s := &RenderStep{
		name:   name,
		kind:   kind,
		path:   path,
		render: render,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *RenderStep) Name() string {
	return s.name
}

// Do renders the image. A failure to open the viewer is logged, not returned.
func (s *RenderStep) Do(_ context.Context, run *model.Run) error {
	if run.Table == nil {
		return ErrNoTable
	}

	if err := s.render(run.Table, s.path); err != nil {
		return err
	}
	run.AddArtifact(s.kind, s.path)
	s.logger.Info("image written", "kind", s.kind, "path", s.path)

	if s.opener != nil {
		if err := s.opener(s.path); err != nil {
			s.logger.Warn("failed to open image viewer", "path", s.path, "error", err)
		}
	}
	return nil
}

// SummarizeStep computes the summary figures.
type SummarizeStep struct {
	opts model.SummaryOptions
}

// NewSummarizeStep creates a summarize step.
func NewSummarizeStep(opts model.SummaryOptions) *SummarizeStep {
	return &SummarizeStep{opts: opts}
}

// Name returns the step name.
func (s *SummarizeStep) Name() string {
	return StepSummarize
}

// Do executes the summarize step.
func (s *SummarizeStep) Do(_ context.Context, run *model.Run) error {
	if run.Table == nil {
		return ErrNoTable
	}

	summary, err := model.NewSummary(run.Table, s.opts)
	if err != nil {
		return err
	}
	run.Summary = summary
	return nil
}

// ExportStep writes the augmented table and summary to an XLSX workbook.
type ExportStep struct {
	path string
}

// NewExportStep creates an export step writing to path.
func NewExportStep(path string) *ExportStep {
	return &ExportStep{path: path}
}

// Name returns the step name.
func (s *ExportStep) Name() string {
	return StepExportXLSX
}

// Do executes the export step.
func (s *ExportStep) Do(_ context.Context, run *model.Run) error {
	if run.Table == nil {
		return ErrNoTable
	}

	if err := export.WriteXLSX(s.path, run.Table, run.Summary); err != nil {
		return err
	}
	run.AddArtifact(model.ArtifactWorkbook, s.path)
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// Opener displays each written image. Nil disables display.
	Opener viewer.Opener
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineOpener replaces the image viewer.
func WithPipelineOpener(o viewer.Opener) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Opener = o
	}
}

// DefaultPipeline creates the report pipeline for cfg:
// load, derive, render_panel, render_collisions, summarize, and
// export_xlsx when cfg.XLSXFile is set.
//
// Images are opened with viewer.Open when cfg.Show is true, unless
// WithPipelineOpener supplies another opener.
func DefaultPipeline(cfg *config.Config, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	pc := &DefaultPipelineConfig{}
	if cfg.Show {
		pc.Opener = viewer.Open
	}
	for _, opt := range configOpts {
		opt(pc)
	}
	if !cfg.Show {
		pc.Opener = nil
	}

	renderer := chart.NewRenderer(
		chart.WithDPI(cfg.DPI),
		chart.WithConfig(cfg.Charts),
		chart.WithLogger(p.logger),
	)
	renderOpts := []RenderStepOption{
		WithOpener(pc.Opener),
		WithRenderLogger(p.logger),
	}

	p.AddSteps(
		NewLoadStep(),
		NewDeriveStep(p.logger),
		NewRenderPanelStep(renderer, cfg.PanelOutput, renderOpts...),
		NewRenderCollisionsStep(renderer, cfg.CollisionOutput, renderOpts...),
		NewSummarizeStep(cfg.SummaryOptions()),
	)
	if cfg.XLSXFile != "" {
		p.AddStep(NewExportStep(cfg.XLSXFile))
	}

	return p
}
