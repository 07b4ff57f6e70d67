package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/csmareport/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the run as
// left by the previous steps.
type Step interface {
	// Do executes the pipeline step.
	Do(ctx context.Context, run *model.Run) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
// Cancellation is checked before each step. The first failing step stops
// the run; its error is recorded in the run and returned.
func (p *Pipeline) Execute(ctx context.Context, run *model.Run) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			run.Error = ctx.Err()
			run.ErrorMessage = ctx.Err().Error()
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"input", run.InputPath,
		)

		if err := step.Do(ctx, run); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"input", run.InputPath,
				"error", err,
			)
			run.Error = err
			run.ErrorMessage = err.Error()
			return err
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"input", run.InputPath,
		)
		run.PerformedSteps = append(run.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
