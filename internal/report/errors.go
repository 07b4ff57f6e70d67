package report

import "errors"

var (
	// ErrNilRun is returned when a writer is given a nil run.
	ErrNilRun = errors.New("report: run is nil")

	// ErrNoSummary is returned when the run has not been summarized.
	ErrNoSummary = errors.New("report: run has no summary")
)
